package board

// Phase is the lifecycle state of a board, derived from its fields.
type Phase uint8

const (
	PhaseAbsent   Phase = iota // no active piece
	PhaseFalling               // active piece can still drop
	PhaseLocking               // active piece is resting; lock delay is running
	PhaseGameOver              // a spawn failed; the board accepts no more input
)

func (p Phase) String() string {
	switch p {
	case PhaseFalling:
		return "falling"
	case PhaseLocking:
		return "locking"
	case PhaseGameOver:
		return "game over"
	default:
		return "absent"
	}
}

// Board is the complete state of one playfield. Several boards can be run
// independently; nothing is shared between them except read-only Tables.
type Board struct {
	Matrix   Matrix
	Bounds   Bounds
	Active   *Mino
	Hold     Hold
	Queue    PieceQueue
	Clock    DropClock
	Settings Settings
	Over     bool
}

// NewBoard creates an empty board. No piece is active until Begin.
func NewBoard(bounds Bounds, queue PieceQueue, settings Settings) *Board {
	return &Board{
		Matrix:   NewMatrix(bounds.True),
		Bounds:   bounds,
		Queue:    queue,
		Settings: settings,
	}
}

// Begin spawns the first piece from the queue. It reports false, and marks
// the board over, when the spawn point is already blocked.
func (b *Board) Begin(t Tables) bool {
	if b.Over {
		return false
	}
	if b.Active != nil {
		return true
	}
	if !b.spawn(b.Queue.Peek(), t) {
		b.Over = true
		return false
	}
	b.Queue.Take()
	return true
}

// Clear resets the board for a new round with a fresh queue. Matrix cells
// are emptied without recording updates.
func (b *Board) Clear(queue PieceQueue) {
	b.Matrix.Reset()
	b.Active = nil
	b.Hold = Hold{}
	b.Queue = queue
	b.Clock = DropClock{}
	b.Over = false
}

// Clone returns a deep copy, excluding pending matrix updates.
func (b *Board) Clone() *Board {
	c := *b
	c.Matrix = b.Matrix.Clone()
	c.Queue = b.Queue.Clone()
	if b.Active != nil {
		m := *b.Active
		c.Active = &m
	}
	return &c
}

// Phase reports the lifecycle state.
func (b *Board) Phase(t Tables) Phase {
	switch {
	case b.Over:
		return PhaseGameOver
	case b.Active == nil:
		return PhaseAbsent
	case b.DropHeight(t) == 0:
		return PhaseLocking
	default:
		return PhaseFalling
	}
}

// spawn places kind at the spawn point facing Up. On failure the board is
// left untouched.
func (b *Board) spawn(kind MinoKind, t Tables) bool {
	m := Mino{Kind: kind, Position: b.Bounds.Spawn, Rotation: Up}
	if !HasFreeSpace(&b.Matrix, m, t) {
		return false
	}
	b.Active = &m
	b.Clock = DropClock{}
	return true
}

// DropHeight returns how many rows the active piece can fall.
func (b *Board) DropHeight(t Tables) int {
	if b.Active == nil {
		return 0
	}
	return b.maximumValid(t, V(0, -1))
}

// MaxShift returns how many columns the active piece can move in direction
// dir (-1 left, +1 right).
func (b *Board) MaxShift(t Tables, dir int) int {
	if b.Active == nil || dir == 0 {
		return 0
	}
	if dir < 0 {
		return b.maximumValid(t, V(-1, 0))
	}
	return b.maximumValid(t, V(1, 0))
}

// Ghost returns the active piece moved to where a hard drop would lock it.
func (b *Board) Ghost(t Tables) (Mino, bool) {
	if b.Active == nil {
		return Mino{}, false
	}
	h := b.DropHeight(t)
	return b.Active.Moved(V(0, -h)), true
}

// maximumValid probes step, 2*step, ... and returns the largest multiple at
// which the active piece still fits.
func (b *Board) maximumValid(t Tables, step Vec) int {
	limit := max(b.Bounds.True.X, b.Bounds.True.Y)
	n := 0
	for n < limit {
		next := b.Active.Moved(V(step.X*(n+1), step.Y*(n+1)))
		if !HasFreeSpace(&b.Matrix, next, t) {
			break
		}
		n++
	}
	return n
}
