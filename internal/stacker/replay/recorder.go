package replay

import "github.com/vovakirdan/tui-stacker/internal/stacker/board"

// Recorder accumulates the items of one live segment.
type Recorder struct {
	parent      int
	branchIndex int
	baseTick    uint64
	items       []Item
	marks       []Mark

	seen   bool
	active *board.Mino
	queue  board.PieceQueue
	hold   board.Hold
}

// NewRecorder starts a root segment at tick 0.
func NewRecorder() *Recorder {
	return &Recorder{parent: -1}
}

// BaseTick is the record time the segment starts at.
func (r *Recorder) BaseTick() uint64 {
	return r.baseTick
}

// Len returns the number of recorded items.
func (r *Recorder) Len() int {
	return len(r.items)
}

// Items returns the recorded items. The slice must not be modified.
func (r *Recorder) Items() []Item {
	return r.items
}

// Baseline records b's current active piece, queue and hold as already
// known, so only later changes are emitted. Used when a segment continues
// from a replayed board.
func (r *Recorder) Baseline(b *board.Board) {
	r.seen = true
	r.active = cloneMino(b.Active)
	r.queue = b.Queue.Clone()
	r.hold = b.Hold
}

// Record appends the changes of one tick. Active, queue and hold are
// compared against the last recorded values; matrix changes are taken
// from the board's update buffer, which the caller drains afterwards.
// tick must not go backwards; an earlier value is raised to the last one.
func (r *Recorder) Record(tick uint64, b *board.Board) {
	tick = r.stamp(tick)

	if !r.seen || !sameMino(r.active, b.Active) {
		r.active = cloneMino(b.Active)
		r.items = append(r.items, Item{Time: tick, Kind: ActiveChange, Active: cloneMino(b.Active)})
	}
	if !r.seen || !r.queue.Equal(&b.Queue) {
		r.queue = b.Queue.Clone()
		r.items = append(r.items, Item{Time: tick, Kind: QueueChange, Queue: b.Queue.Clone()})
	}
	if !r.seen || r.hold != b.Hold {
		r.hold = b.Hold
		r.items = append(r.items, Item{Time: tick, Kind: HoldChange, Hold: b.Hold})
	}
	r.seen = true

	for _, u := range b.Matrix.Updates {
		r.items = append(r.items, Item{Time: tick, Kind: MatrixChange, Cell: u})
	}
}

// Mark pins a scoring event to tick, clamped like Record.
func (r *Recorder) Mark(tick uint64, lines, points int) {
	r.marks = append(r.marks, Mark{Tick: r.stamp(tick), Lines: lines, Points: points})
}

func (r *Recorder) stamp(tick uint64) uint64 {
	if n := len(r.items); n > 0 && tick < r.items[n-1].Time {
		tick = r.items[n-1].Time
	}
	return max(tick, r.baseTick)
}

func cloneMino(m *board.Mino) *board.Mino {
	if m == nil {
		return nil
	}
	c := *m
	return &c
}

func sameMino(a, b *board.Mino) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
