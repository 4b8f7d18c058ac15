package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-stacker/internal/core"
)

// KeyMapper translates Bubble Tea key messages to game actions.
// This centralizes key bindings and makes them testable.
type KeyMapper struct {
	bindings map[string]core.Action
}

// defaultBindings are the in-game keys. Vim-style keys mirror the arrows.
var defaultBindings = map[string]core.Action{
	"left":      core.ActionShiftLeft,
	"h":         core.ActionShiftLeft,
	"right":     core.ActionShiftRight,
	"l":         core.ActionShiftRight,
	"down":      core.ActionSoftDrop,
	"j":         core.ActionSoftDrop,
	" ":         core.ActionHardDrop,
	"z":         core.ActionRotateLeft,
	"up":        core.ActionRotateRight,
	"x":         core.ActionRotateRight,
	"k":         core.ActionRotateRight,
	"v":         core.ActionRotate180,
	"c":         core.ActionHold,
	"p":         core.ActionPause,
	"r":         core.ActionRestart,
	"enter":     core.ActionReplayToggle,
	"backspace": core.ActionReplayReverse,
	"home":      core.ActionSeekStart,
	"end":       core.ActionSeekEnd,
	"tab":       core.ActionNextTimeline,
	"b":         core.ActionBack,
	"esc":       core.ActionBack,
}

// NewKeyMapper creates a new key mapper with default bindings.
func NewKeyMapper() *KeyMapper {
	return &KeyMapper{bindings: defaultBindings}
}

// MapKey translates a key message to a game action.
// Returns the action (may be ActionNone) and whether it's a quit request.
func (km *KeyMapper) MapKey(msg tea.KeyMsg) (action core.Action, isQuit bool) {
	key := msg.String()

	switch key {
	case "ctrl+c", "q":
		return core.ActionQuit, true
	}

	if a, ok := km.bindings[key]; ok {
		return a, false
	}
	return core.ActionNone, false
}

// MapKeyToFrame updates an input frame based on a key message.
// Returns true if the key was a quit request.
func (km *KeyMapper) MapKeyToFrame(msg tea.KeyMsg, frame *core.InputFrame) bool {
	action, isQuit := km.MapKey(msg)
	if action != core.ActionNone {
		frame.Set(action)
	}
	return isQuit
}

// MenuAction represents a menu-specific action derived from input.
type MenuAction int

const (
	MenuActionNone MenuAction = iota
	MenuActionUp
	MenuActionDown
	MenuActionSelect
	MenuActionBack
	MenuActionRecords
	MenuActionQuit
)

// MapKeyToMenuAction translates a key to a menu action.
func (km *KeyMapper) MapKeyToMenuAction(msg tea.KeyMsg) MenuAction {
	switch msg.String() {
	case "ctrl+c", "q":
		return MenuActionQuit
	case "w", "up", "k":
		return MenuActionUp
	case "s", "down", "j":
		return MenuActionDown
	case "enter", " ":
		return MenuActionSelect
	case "b", "esc":
		return MenuActionBack
	case "tab":
		return MenuActionRecords
	}

	return MenuActionNone
}
