package core

// Action represents a semantic game action, abstracted from physical key presses.
type Action int

const (
	ActionNone          Action = iota
	ActionShiftLeft            // Left, H
	ActionShiftRight           // Right, L
	ActionSoftDrop             // Down, J
	ActionHardDrop             // Space
	ActionRotateLeft           // Z
	ActionRotateRight          // X, Up, K
	ActionRotate180            // V
	ActionHold                 // C
	ActionPause                // P - pause/unpause game
	ActionRestart              // R - restart after game over
	ActionBack                 // B, Escape - back to the mode picker
	ActionQuit                 // Q, Ctrl+C - exit game/session
	ActionReplayToggle         // Enter - play/pause the replay
	ActionReplayReverse        // Backspace - play the replay backwards
	ActionSeekStart            // Home - jump to the first frame
	ActionSeekEnd              // End - jump to the last frame
	ActionNextTimeline         // Tab - cycle recorded timelines
)

var actionNames = [...]string{
	ActionNone:          "None",
	ActionShiftLeft:     "ShiftLeft",
	ActionShiftRight:    "ShiftRight",
	ActionSoftDrop:      "SoftDrop",
	ActionHardDrop:      "HardDrop",
	ActionRotateLeft:    "RotateLeft",
	ActionRotateRight:   "RotateRight",
	ActionRotate180:     "Rotate180",
	ActionHold:          "Hold",
	ActionPause:         "Pause",
	ActionRestart:       "Restart",
	ActionBack:          "Back",
	ActionQuit:          "Quit",
	ActionReplayToggle:  "ReplayToggle",
	ActionReplayReverse: "ReplayReverse",
	ActionSeekStart:     "SeekStart",
	ActionSeekEnd:       "SeekEnd",
	ActionNextTimeline:  "NextTimeline",
}

// String returns a human-readable name for the action.
func (a Action) String() string {
	if a < 0 || int(a) >= len(actionNames) {
		return "Unknown"
	}
	return actionNames[a]
}

// InputFrame is the set of actions pressed during one simulation tick.
type InputFrame struct {
	Actions map[Action]bool
}

// NewInputFrame creates an empty input frame.
func NewInputFrame() InputFrame {
	return InputFrame{Actions: make(map[Action]bool)}
}

// Set marks an action as triggered for this frame.
func (f *InputFrame) Set(a Action) {
	if f.Actions == nil {
		f.Actions = make(map[Action]bool)
	}
	f.Actions[a] = true
}

// Has returns true if the given action was triggered this frame.
func (f InputFrame) Has(a Action) bool {
	return f.Actions[a]
}

// Empty reports whether no action was triggered.
func (f InputFrame) Empty() bool {
	return len(f.Actions) == 0
}

// Clear resets all actions for the next frame.
func (f *InputFrame) Clear() {
	clear(f.Actions)
}

// Clone creates a copy of this input frame.
func (f InputFrame) Clone() InputFrame {
	c := NewInputFrame()
	for k, v := range f.Actions {
		c.Actions[k] = v
	}
	return c
}
