package board

import "cmp"

// RotateCommand is the rotation requested for one tick.
type RotateCommand uint8

const (
	RotateNone RotateCommand = iota
	RotateLeft
	RotateRight
	Rotate180
)

// Apply returns r turned by the command.
func (c RotateCommand) Apply(r Rotation) Rotation {
	switch c {
	case RotateLeft:
		return r.RotateLeft()
	case RotateRight:
		return r.RotateRight()
	case Rotate180:
		return r.Rotate180()
	default:
		return r
	}
}

// Controller is the debounced input for a single tick. Shift is a signed
// column count, negative meaning left.
type Controller struct {
	Shift    int
	HardDrop bool
	SoftDrop bool
	Rotation RotateCommand
	Hold     bool
}

// AnyActivation reports whether any input other than hard drop is active.
func (c Controller) AnyActivation() bool {
	return c.Shift != 0 || c.SoftDrop || c.Rotation != RotateNone || c.Hold
}

// Repeater turns a held/released signal into shift activations with a
// delayed auto-repeat: one activation on press, the next after InitialDelay,
// then one every RepeatDelay while still held. A zero InitialDelay waits
// RepeatDelay instead.
type Repeater struct {
	held    bool
	elapsed uint32 // ms since press
	next    uint32 // elapsed value of the next repeat
	pressed uint64 // ordinal of the tick the press started on
}

// Tick advances the repeater by dt milliseconds and returns how many
// activations fired. tick is the caller's tick ordinal, used to decide which
// of two held directions was pressed last.
func (r *Repeater) Tick(held bool, dt uint32, tick uint64, s Settings) int {
	if !held {
		*r = Repeater{}
		return 0
	}
	if !r.held {
		*r = Repeater{held: true, next: cmp.Or(s.InitialDelay, s.RepeatDelay), pressed: tick}
		return 1
	}

	r.elapsed += dt
	fired := 0
	for r.elapsed >= r.next {
		fired++
		if s.RepeatDelay == 0 {
			// Instant repeat: the engine clamps the shift to the wall.
			r.next = r.elapsed + 1
			return 1 << 16
		}
		r.next += s.RepeatDelay
	}
	return fired
}

// Held reports whether the repeater is currently pressed.
func (r *Repeater) Held() bool {
	return r.held
}

// ResolveShift combines the activations of the left and right repeaters into
// one signed shift. When both are held the later press wins; a tie goes to
// left.
func ResolveShift(left, right *Repeater, leftFired, rightFired int) int {
	switch {
	case left.held && right.held:
		if right.pressed > left.pressed {
			return rightFired
		}
		return -leftFired
	case left.held:
		return -leftFired
	case right.held:
		return rightFired
	}
	return 0
}
