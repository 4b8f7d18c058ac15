package stacker

import (
	"slices"

	"github.com/vovakirdan/tui-stacker/internal/core"
	"github.com/vovakirdan/tui-stacker/internal/stacker/board"
)

// controller turns one frame of key presses into the board's input.
//
// Terminals report presses but not releases, so a key counts as held for
// HeldTicks ticks after its last press event. Key auto-repeat keeps it held.
func (g *Game) controller(in core.InputFrame) board.Controller {
	for a, on := range in.Actions {
		if on {
			g.lastSeen[a] = g.frames
		}
	}
	window := uint64(max(1, g.cfg.Handling.HeldTicks))
	held := func(a core.Action) bool {
		t, ok := g.lastSeen[a]
		return ok && g.frames-t < window
	}

	s := g.board.Settings
	dt := uint32(1000 / g.rt.TickRate)
	lf := g.left.Tick(held(core.ActionShiftLeft), dt, g.frames, s)
	rf := g.right.Tick(held(core.ActionShiftRight), dt, g.frames, s)

	c := board.Controller{
		Shift:    board.ResolveShift(&g.left, &g.right, lf, rf),
		SoftDrop: held(core.ActionSoftDrop),
		HardDrop: in.Has(core.ActionHardDrop),
		Hold:     in.Has(core.ActionHold),
	}
	switch {
	case in.Has(core.ActionRotateLeft):
		c.Rotation = board.RotateLeft
	case in.Has(core.ActionRotateRight):
		c.Rotation = board.RotateRight
	case in.Has(core.ActionRotate180):
		c.Rotation = board.Rotate180
	}
	return c
}

// review runs one PostGame tick: replay controls, then playback.
func (g *Game) review(in core.InputFrame, c board.Controller) {
	now := g.wallUnits()
	p := g.player
	playing, reverse := p.Playing()

	switch {
	case in.Has(core.ActionReplayToggle):
		if playing {
			p.Pause()
		} else {
			if p.AtEnd() {
				p.Seek(g.board, 0)
			}
			p.Play(now)
		}
	case in.Has(core.ActionReplayReverse):
		if playing && reverse {
			p.Pause()
		} else {
			p.Reverse(now)
		}
	case in.Has(core.ActionSeekStart):
		p.Seek(g.board, 0)
	case in.Has(core.ActionSeekEnd):
		p.Seek(g.board, g.complete.LastFrame())
	case in.Has(core.ActionNextTimeline):
		g.nextTimeline()
	case c.AnyActivation():
		if g.branch() {
			return
		}
	}

	p.Advance(now)
	p.Sync(g.board)
	g.lastUpdates = append(g.lastUpdates, g.board.Matrix.DrainUpdates()...)
	g.score, g.lines = g.complete.Totals(p.Frame())
}

// branch starts a new live segment from the frame on screen. The input
// that triggered it is consumed. It reports false when the frame has no
// active piece to continue with.
func (g *Game) branch() bool {
	p := g.player
	if g.board.Active == nil {
		return false
	}
	p.Pause()
	p.Sync(g.board)
	g.lastUpdates = append(g.lastUpdates, g.board.Matrix.DrainUpdates()...)

	frame := p.Frame()
	g.rec = g.complete.Branch(p.Index(), frame)
	g.rec.Baseline(g.board)
	g.player = nil

	g.board.Over = false
	g.board.Clock = board.DropClock{}
	g.score, g.lines = g.complete.Totals(frame)
	g.applyDifficulty()

	g.segTicks = 0
	g.phase = PhasePlaying
	return true
}

// nextTimeline views the next leaf in creation order, wrapping around.
func (g *Game) nextTimeline() {
	leaves := g.complete.Leaves()
	if len(leaves) < 2 {
		return
	}
	i := slices.Index(leaves, g.complete.Leaf())
	next := leaves[(i+1)%len(leaves)]
	//nolint:errcheck // next comes from Leaves, so it exists
	g.player.SwitchTimeline(g.board, next)
	g.lastUpdates = append(g.lastUpdates, g.board.Matrix.DrainUpdates()...)
}
