package board

import (
	"math/rand/v2"
	"slices"
)

// DefaultWindowSize is the number of upcoming pieces kept visible.
const DefaultWindowSize = 5

// bag is the order a fresh 7-bag starts in before it is shuffled.
var bag = [7]MinoKind{Z, S, T, L, J, I, O}

// PieceQueue is the upcoming-piece window. It is a plain value: the window
// and the generator state together fully determine every future draw, so a
// copy taken at any moment replays identically.
type PieceQueue struct {
	Window     []MinoKind
	WindowSize int
	RNG        rand.PCG
}

// NewPieceQueue creates a queue seeded with seed and fills its window.
func NewPieceQueue(seed uint64, windowSize int) PieceQueue {
	if windowSize <= 0 {
		windowSize = DefaultWindowSize
	}
	q := PieceQueue{
		WindowSize: windowSize,
		RNG:        *rand.NewPCG(seed, seed^0x9e3779b97f4a7c15),
	}
	q.refill()
	return q
}

// Peek returns the next piece without consuming it.
func (q *PieceQueue) Peek() MinoKind {
	if len(q.Window) == 0 {
		q.refill()
	}
	return q.Window[0]
}

// Take removes and returns the next piece, topping the window back up with
// whole shuffled bags.
func (q *PieceQueue) Take() MinoKind {
	k := q.Peek()
	q.Window = slices.Delete(q.Window, 0, 1)
	q.refill()
	return k
}

// Upcoming returns the first n pieces of the window.
func (q *PieceQueue) Upcoming(n int) []MinoKind {
	return q.Window[:min(n, len(q.Window))]
}

func (q *PieceQueue) refill() {
	r := rand.New(&q.RNG)
	for len(q.Window) < q.WindowSize {
		next := bag
		r.Shuffle(len(next), func(i, j int) { next[i], next[j] = next[j], next[i] })
		q.Window = append(q.Window, next[:]...)
	}
}

// Clone returns an independent copy.
func (q PieceQueue) Clone() PieceQueue {
	q.Window = slices.Clone(q.Window)
	return q
}

// Equal reports whether two queues will produce the same pieces forever.
func (q *PieceQueue) Equal(o *PieceQueue) bool {
	return q.WindowSize == o.WindowSize && q.RNG == o.RNG && slices.Equal(q.Window, o.Window)
}
