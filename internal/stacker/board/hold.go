package board

// HoldState is the status of the hold slot.
type HoldState uint8

const (
	HoldEmpty    HoldState = iota // nothing held yet
	HoldReady                     // holding a piece that may be swapped in
	HoldInactive                  // holding a piece; swapping is locked until the next lock
)

// Hold is the reserve slot. Kind is meaningless when State is HoldEmpty.
type Hold struct {
	State HoldState
	Kind  MinoKind
}

// HeldKind returns the held piece, if any.
func (h Hold) HeldKind() (MinoKind, bool) {
	if h.State == HoldEmpty {
		return E, false
	}
	return h.Kind, true
}

// Activate re-enables a held piece after a lock. Empty and Ready are kept.
func (h *Hold) Activate() {
	if h.State == HoldInactive {
		h.State = HoldReady
	}
}

func (h Hold) String() string {
	switch h.State {
	case HoldReady:
		return "ready(" + h.Kind.String() + ")"
	case HoldInactive:
		return "inactive(" + h.Kind.String() + ")"
	default:
		return "empty"
	}
}
