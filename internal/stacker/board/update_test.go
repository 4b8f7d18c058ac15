package board_test

import (
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/vovakirdan/tui-stacker/internal/stacker/board"
	"github.com/vovakirdan/tui-stacker/internal/stacker/tables"
)

const tick = 1.0 / 60

var pcgEqual = cmp.Comparer(func(a, b rand.PCG) bool { return a == b })

func newBoard(t *testing.T, settings board.Settings) (*board.Board, board.Tables) {
	t.Helper()
	tbl := tables.MustDefault()
	b := board.NewBoard(board.DefaultBounds(), board.NewPieceQueue(1, 5), settings)
	if !b.Begin(tbl) {
		t.Fatal("Begin() = false on empty board")
	}
	return b, tbl
}

func still() board.Settings {
	s := board.DefaultSettings()
	s.GravityPower = 0
	return s
}

func TestBeginSpawnsFromQueue(t *testing.T) {
	tbl := tables.MustDefault()
	q := board.NewPieceQueue(3, 5)
	first := q.Peek()
	b := board.NewBoard(board.DefaultBounds(), q, board.DefaultSettings())

	if !b.Begin(tbl) {
		t.Fatal("Begin() = false")
	}
	want := board.Mino{Kind: first, Position: board.V(4, 22), Rotation: board.Up}
	if *b.Active != want {
		t.Errorf("Active = %+v, want %+v", *b.Active, want)
	}
	if len(b.Queue.Window) != 6 {
		t.Errorf("queue window len = %d, want 6 after one take", len(b.Queue.Window))
	}
	if got := b.Phase(tbl); got != board.PhaseFalling {
		t.Errorf("Phase() = %v, want falling", got)
	}
}

func TestGravityAccumulates(t *testing.T) {
	s := board.DefaultSettings()
	s.GravityPower = 0.25
	b, tbl := newBoard(t, s)

	for i := 0; i < 4; i++ {
		board.Update(b, board.Controller{}, tbl, tick)
	}
	if b.Active.Position.Y != 22 {
		t.Fatalf("after 4 ticks Y = %d, want 22 (fall must exceed 1)", b.Active.Position.Y)
	}

	board.Update(b, board.Controller{}, tbl, tick)
	if b.Active.Position.Y != 21 {
		t.Errorf("after 5 ticks Y = %d, want 21", b.Active.Position.Y)
	}
	if b.Clock.Fall != 0.25 {
		t.Errorf("Clock.Fall = %v, want 0.25", b.Clock.Fall)
	}
}

func TestSoftDropMultipliesGravity(t *testing.T) {
	s := board.DefaultSettings()
	s.GravityPower = 0.25
	s.SoftDropPower = 10
	b, tbl := newBoard(t, s)

	board.Update(b, board.Controller{SoftDrop: true}, tbl, tick)
	if b.Active.Position.Y != 20 {
		t.Errorf("Y = %d, want 20", b.Active.Position.Y)
	}
	if b.Clock.Fall != 0.5 {
		t.Errorf("Clock.Fall = %v, want 0.5", b.Clock.Fall)
	}
}

func TestGravityNeverPassesFloor(t *testing.T) {
	s := board.DefaultSettings()
	s.GravityPower = 30
	b, tbl := newBoard(t, s)
	b.Active = &board.Mino{Kind: board.O, Position: board.V(4, 3)}

	board.Update(b, board.Controller{}, tbl, tick)
	if b.Active.Position.Y != 0 {
		t.Errorf("Y = %d, want 0", b.Active.Position.Y)
	}
	if got := b.Phase(tbl); got != board.PhaseLocking {
		t.Errorf("Phase() = %v, want locking", got)
	}
}

func TestHardDropLocksAndSpawns(t *testing.T) {
	b, tbl := newBoard(t, still())
	next := b.Queue.Peek()

	res := board.Update(b, board.Controller{HardDrop: true, Shift: 3, Hold: true}, tbl, tick)
	if !res.Locked || res.GameOver {
		t.Fatalf("Update() = %+v, want locked", res)
	}
	if res.Held {
		t.Error("hard drop must end the tick before hold")
	}
	if n := b.Matrix.FilledCount(); n != 4 {
		t.Errorf("FilledCount() = %d, want 4", n)
	}
	if len(b.Matrix.Updates) != 4 {
		t.Errorf("Updates len = %d, want 4", len(b.Matrix.Updates))
	}
	for _, u := range b.Matrix.Updates {
		if u.Loc.Y > 1 {
			t.Errorf("cell %v locked above the floor", u.Loc)
		}
	}
	if b.Active == nil || b.Active.Kind != next {
		t.Errorf("Active = %+v, want fresh %s", b.Active, next)
	}
}

func TestLockDelay(t *testing.T) {
	s := still()
	s.LockDelay = 0.1
	b, tbl := newBoard(t, s)
	b.Active = &board.Mino{Kind: board.O, Position: board.V(4, 0)}

	// 0.1s at 60 ticks per second: six ticks reach the delay, the seventh
	// exceeds it.
	for i := 0; i < 6; i++ {
		if res := board.Update(b, board.Controller{}, tbl, tick); res.Locked {
			t.Fatalf("locked early on tick %d", i+1)
		}
	}
	res := board.Update(b, board.Controller{}, tbl, tick)
	if !res.Locked {
		t.Fatalf("not locked after exceeding delay, Clock = %+v", b.Clock)
	}
	if k, _ := b.Matrix.Get(board.V(4, 0)); k != board.O {
		t.Errorf("(4,0) = %v, want O", k)
	}
}

func TestMoveResetsLockTimer(t *testing.T) {
	s := still()
	s.LockDelay = 0.5
	b, tbl := newBoard(t, s)
	b.Active = &board.Mino{Kind: board.O, Position: board.V(4, 0)}

	for i := 0; i < 5; i++ {
		board.Update(b, board.Controller{}, tbl, tick)
	}
	board.Update(b, board.Controller{Shift: 1}, tbl, tick)
	if b.Clock.Lock != 0 {
		t.Errorf("Clock.Lock = %v after shift, want 0", b.Clock.Lock)
	}

	b.Active.Position.X = 8 // against the right wall
	board.Update(b, board.Controller{Shift: 1}, tbl, tick)
	if b.Clock.Lock == 0 {
		t.Error("blocked shift reset the lock timer")
	}
}

func TestShiftClamps(t *testing.T) {
	tests := []struct {
		name  string
		shift int
		wantX int
	}{
		{"one left", -1, 3},
		{"one right", 1, 5},
		{"far left", -100, 1},
		{"far right", 100, 8},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b, tbl := newBoard(t, still())
			b.Active = &board.Mino{Kind: board.T, Position: board.V(4, 22)}
			board.Update(b, board.Controller{Shift: tc.shift}, tbl, tick)
			if b.Active.Position.X != tc.wantX {
				t.Errorf("X = %d, want %d", b.Active.Position.X, tc.wantX)
			}
		})
	}
}

func TestRotationUsesKicks(t *testing.T) {
	b, tbl := newBoard(t, still())
	b.Active = &board.Mino{Kind: board.T, Position: board.V(0, 10), Rotation: board.Right}

	// In place the Up shape would poke through the left wall; the first
	// right->up kick (+1, 0) makes it fit.
	board.Update(b, board.Controller{Rotation: board.RotateLeft}, tbl, tick)
	want := board.Mino{Kind: board.T, Position: board.V(1, 10), Rotation: board.Up}
	if *b.Active != want {
		t.Errorf("Active = %+v, want %+v", *b.Active, want)
	}
}

func TestRotationInPlace(t *testing.T) {
	tests := []struct {
		cmd  board.RotateCommand
		want board.Rotation
	}{
		{board.RotateRight, board.Right},
		{board.RotateLeft, board.Left},
		{board.Rotate180, board.Down},
	}

	for _, tc := range tests {
		t.Run(tc.want.String(), func(t *testing.T) {
			b, tbl := newBoard(t, still())
			b.Active = &board.Mino{Kind: board.T, Position: board.V(4, 10)}
			board.Update(b, board.Controller{Rotation: tc.cmd}, tbl, tick)
			if b.Active.Rotation != tc.want || b.Active.Position != board.V(4, 10) {
				t.Errorf("Active = %+v, want rotation %v in place", *b.Active, tc.want)
			}
		})
	}
}

func TestRotationBlockedIsNoop(t *testing.T) {
	b, tbl := newBoard(t, still())
	b.Active = &board.Mino{Kind: board.I, Position: board.V(4, 0)}
	// Wall the piece in so neither the rotation nor any kick fits.
	for y := 0; y < 4; y++ {
		for x := 0; x < 10; x++ {
			if y == 0 && x >= 3 && x <= 6 {
				continue
			}
			b.Matrix.Data[y][x] = board.G
		}
	}
	before := *b.Active

	board.Update(b, board.Controller{Rotation: board.RotateRight}, tbl, tick)
	if *b.Active != before {
		t.Errorf("Active = %+v, want unchanged %+v", *b.Active, before)
	}
}

func TestHoldSequence(t *testing.T) {
	b, tbl := newBoard(t, still())
	first := b.Active.Kind
	second := b.Queue.Peek()

	res := board.Update(b, board.Controller{Hold: true}, tbl, tick)
	if !res.Held {
		t.Fatal("first hold did not swap")
	}
	if b.Active.Kind != second {
		t.Errorf("Active = %s, want %s from queue", b.Active.Kind, second)
	}
	if b.Hold != (board.Hold{State: board.HoldInactive, Kind: first}) {
		t.Errorf("Hold = %v, want inactive(%s)", b.Hold, first)
	}

	if res := board.Update(b, board.Controller{Hold: true}, tbl, tick); res.Held {
		t.Error("hold swapped while inactive")
	}

	board.Update(b, board.Controller{HardDrop: true}, tbl, tick)
	if b.Hold.State != board.HoldReady {
		t.Fatalf("Hold = %v after lock, want ready", b.Hold)
	}

	current := b.Active.Kind
	board.Update(b, board.Controller{Hold: true}, tbl, tick)
	if b.Active.Kind != first {
		t.Errorf("Active = %s, want held %s", b.Active.Kind, first)
	}
	if b.Hold != (board.Hold{State: board.HoldInactive, Kind: current}) {
		t.Errorf("Hold = %v, want inactive(%s)", b.Hold, current)
	}
	if b.Active.Position != board.V(4, 22) || b.Active.Rotation != board.Up {
		t.Errorf("swapped piece at %+v, want spawn point facing up", *b.Active)
	}
}

func blockSpawn(b *board.Board) {
	for y := 20; y < 26; y++ {
		for x := 0; x < 9; x++ {
			b.Matrix.Data[y][x] = board.G
		}
	}
}

func TestHardDropGameOver(t *testing.T) {
	b, tbl := newBoard(t, still())
	blockSpawn(b)
	b.Active = &board.Mino{Kind: b.Active.Kind, Position: board.V(4, 30)}

	res := board.Update(b, board.Controller{HardDrop: true}, tbl, tick)
	if !res.Locked || !res.GameOver {
		t.Fatalf("Update() = %+v, want locked and game over", res)
	}
	if got := b.Phase(tbl); got != board.PhaseGameOver {
		t.Errorf("Phase() = %v, want game over", got)
	}

	b.Matrix.DrainUpdates()
	before := b.Clone()
	board.Update(b, board.Controller{HardDrop: true, Shift: -1}, tbl, tick)
	if diff := cmp.Diff(before, b, pcgEqual); diff != "" {
		t.Errorf("board changed after game over (-before +after):\n%s", diff)
	}
}

func TestHoldGameOverLeavesSlot(t *testing.T) {
	b, tbl := newBoard(t, still())
	blockSpawn(b)
	b.Active = &board.Mino{Kind: b.Active.Kind, Position: board.V(4, 30)}

	res := board.Update(b, board.Controller{Hold: true}, tbl, tick)
	if !res.GameOver {
		t.Fatalf("Update() = %+v, want game over", res)
	}
	if b.Hold.State != board.HoldEmpty {
		t.Errorf("Hold = %v, want empty", b.Hold)
	}
}

func TestUpdateDeterministic(t *testing.T) {
	run := func() *board.Board {
		s := board.DefaultSettings()
		s.GravityPower = 0.1
		b, tbl := newBoard(t, s)
		r := rand.New(rand.NewPCG(11, 22))
		for i := 0; i < 3000 && !b.Over; i++ {
			c := board.Controller{
				Shift:    r.IntN(5) - 2,
				SoftDrop: r.IntN(4) == 0,
				HardDrop: r.IntN(30) == 0,
				Rotation: board.RotateCommand(r.IntN(4)),
				Hold:     r.IntN(20) == 0,
			}
			board.Update(b, c, tbl, tick)
			b.Matrix.DrainUpdates()
		}
		return b
	}

	a, b := run(), run()
	if diff := cmp.Diff(a, b, pcgEqual); diff != "" {
		t.Errorf("runs diverged (-a +b):\n%s", diff)
	}
	if a.Matrix.FilledCount() == 0 {
		t.Error("nothing was ever locked")
	}
}
