package replay_test

import (
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/vovakirdan/tui-stacker/internal/stacker/board"
	"github.com/vovakirdan/tui-stacker/internal/stacker/replay"
	"github.com/vovakirdan/tui-stacker/internal/stacker/tables"
)

const dt = 1.0 / 60

var pcgEqual = cmp.Comparer(func(a, b rand.PCG) bool { return a == b })

// state is the part of a board a record captures.
type state struct {
	Cells  [][]board.MinoKind
	Active *board.Mino
	Hold   board.Hold
	Queue  board.PieceQueue
}

func stateOf(b *board.Board) state {
	return state{
		Cells:  b.Matrix.Clone().Data,
		Active: b.Active,
		Hold:   b.Hold,
		Queue:  b.Queue.Clone(),
	}
}

func diffState(want, got *board.Board) string {
	return cmp.Diff(stateOf(want), stateOf(got), pcgEqual)
}

func randomController(r *rand.Rand) board.Controller {
	return board.Controller{
		Shift:    r.IntN(3) - 1,
		SoftDrop: r.IntN(3) == 0,
		HardDrop: r.IntN(25) == 0,
		Rotation: board.RotateCommand(r.IntN(6) % 4),
		Hold:     r.IntN(40) == 0,
	}
}

// play runs b for ticks updates, recording each one at firstTick+i. snaps[i]
// is the board after the tick recorded at firstTick+i.
func play(t *testing.T, b *board.Board, rec *replay.Recorder, firstTick uint64, ticks int, r *rand.Rand) []*board.Board {
	t.Helper()
	tbl := tables.MustDefault()
	snaps := make([]*board.Board, 0, ticks)
	for i := 0; i < ticks; i++ {
		if i > 0 || firstTick > 0 {
			board.Update(b, randomController(r), tbl, dt)
		}
		rec.Record(firstTick+uint64(i), b)
		b.Matrix.DrainUpdates()
		snaps = append(snaps, b.Clone())
	}
	return snaps
}

// simulate records a fresh game of ticks ticks starting at tick 0.
func simulate(t *testing.T, ticks int, seed uint64) (*replay.Recorder, []*board.Board, *board.Board) {
	t.Helper()
	s := board.DefaultSettings()
	s.GravityPower = 0.2
	b := board.NewBoard(board.DefaultBounds(), board.NewPieceQueue(seed, 5), s)
	if !b.Begin(tables.MustDefault()) {
		t.Fatal("Begin() = false")
	}
	rec := replay.NewRecorder()
	snaps := play(t, b, rec, 0, ticks, rand.New(rand.NewPCG(seed, 7)))
	return rec, snaps, b
}

// snapAt returns the expected board at record time f, holding the last
// snapshot once the game is over.
func snapAt(snaps []*board.Board, first uint64, f uint64) *board.Board {
	i := int(f - first)
	if i >= len(snaps) {
		i = len(snaps) - 1
	}
	return snaps[i]
}
