package board

import "math"

// Result reports what happened during one Update.
type Result struct {
	Locked   bool // the active piece was locked into the matrix
	Cleared  int  // rows removed by that lock
	Held     bool // the active piece was swapped with the hold slot
	GameOver bool // the board entered the game-over state this tick
}

// Update advances b by one tick. dt is the elapsed time in seconds and only
// feeds the lock delay; gravity is measured per tick.
//
// The order is fixed: hard drop (which ends the tick), then gravity or the
// lock timer, then rotation, then shift, then hold. Moves that do not fit
// are dropped silently.
func Update(b *Board, c Controller, t Tables, dt float64) Result {
	if b.Over || b.Active == nil {
		return Result{}
	}

	if c.HardDrop {
		return b.hardDrop(t)
	}

	if h := b.DropHeight(t); h == 0 {
		b.Clock.Lock += dt
		if b.Clock.Lock > b.Settings.LockDelay {
			return b.hardDrop(t)
		}
	} else {
		g := b.Settings.GravityPower
		if c.SoftDrop {
			g *= b.Settings.SoftDropPower
		}
		b.Clock.Fall += g
		if b.Clock.Fall > 1 {
			whole, frac := math.Modf(b.Clock.Fall)
			b.Clock.Fall = frac
			*b.Active = b.Active.Moved(V(0, -min(int(whole), h)))
		}
	}

	moved := false
	if c.Rotation != RotateNone && b.rotate(c.Rotation, t) {
		moved = true
	}
	if c.Shift != 0 && b.shift(c.Shift, t) {
		moved = true
	}
	if moved {
		b.Clock.Lock = 0
	}

	var res Result
	if c.Hold {
		res = b.swapHold(t)
	}
	return res
}

// hardDrop drops the active piece to the floor, locks it, re-arms the hold
// slot and spawns the next piece.
func (b *Board) hardDrop(t Tables) Result {
	m := b.Active.Moved(V(0, -b.DropHeight(t)))
	res := Result{Locked: true}
	res.Cleared = LockPiece(&b.Matrix, m, t)
	b.Active = nil
	b.Hold.Activate()

	if b.spawn(b.Queue.Peek(), t) {
		b.Queue.Take()
	} else {
		b.Over = true
		res.GameOver = true
	}
	return res
}

func (b *Board) rotate(cmd RotateCommand, t Tables) bool {
	from := b.Active.Rotation
	to := cmd.Apply(from)
	if from == to {
		return false
	}
	if b.tryRotation(to, Vec{}, t) {
		return true
	}
	for _, kick := range t.KickOffsets(b.Active.Kind, from, to) {
		if b.tryRotation(to, kick, t) {
			return true
		}
	}
	return false
}

func (b *Board) tryRotation(to Rotation, kick Vec, t Tables) bool {
	cand := b.Active.Rotated(to, kick)
	if !HasFreeSpace(&b.Matrix, cand, t) {
		return false
	}
	*b.Active = cand
	return true
}

func (b *Board) shift(n int, t Tables) bool {
	dir := 1
	if n < 0 {
		dir, n = -1, -n
	}
	n = min(n, b.MaxShift(t, dir))
	if n == 0 {
		return false
	}
	*b.Active = b.Active.Moved(V(dir*n, 0))
	return true
}

// swapHold exchanges the active piece with the hold slot. The replacement
// is validated at the spawn point before anything is committed; if it does
// not fit the board is over and the hold slot keeps its old contents.
func (b *Board) swapHold(t Tables) Result {
	var next MinoKind
	fromQueue := false
	switch b.Hold.State {
	case HoldInactive:
		return Result{}
	case HoldEmpty:
		next, fromQueue = b.Queue.Peek(), true
	case HoldReady:
		next = b.Hold.Kind
	}

	held := b.Active.Kind
	if !b.spawn(next, t) {
		b.Active = nil
		b.Over = true
		return Result{GameOver: true}
	}
	if fromQueue {
		b.Queue.Take()
	}
	b.Hold = Hold{State: HoldInactive, Kind: held}
	return Result{Held: true}
}
