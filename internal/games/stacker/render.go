package stacker

import (
	"fmt"
	"slices"

	"github.com/vovakirdan/tui-stacker/internal/core"
	"github.com/vovakirdan/tui-stacker/internal/stacker/board"
	"github.com/vovakirdan/tui-stacker/internal/stacker/replay"
)

// Visual characters for rendering
const (
	blockGlyph = "██"
	ghostGlyph = "░░"
	emptyGlyph = " ·"
	bufferRows = 4 // rows drawn above the legal area
	sideWidth  = 12
)

var kindColors = map[board.MinoKind]core.Color{
	board.T: core.ColorMagenta,
	board.O: core.ColorYellow,
	board.L: core.ColorOrange,
	board.J: core.ColorBlue,
	board.S: core.ColorGreen,
	board.Z: core.ColorRed,
	board.I: core.ColorCyan,
	board.G: core.ColorGray,
}

// layout places the panels for one frame.
type layout struct {
	well    core.Rect // matrix box including its border
	rows    int       // matrix rows visible inside the box
	cols    int
	hold    core.Rect
	next    core.Rect
	hud     core.Rect
	barY    int
	preview int
}

func (g *Game) layout(dst *core.Screen) layout {
	b := g.board.Bounds
	cols := min(b.Legal.X, b.True.X)
	rows := min(b.Legal.Y+bufferRows, b.True.Y, max(dst.Height()-3, 1))

	l := layout{rows: rows, cols: cols, preview: g.cfg.Queue.Preview}
	wellW := cols*2 + 2
	l.well = core.NewRect((dst.Width()-wellW)/2, 0, wellW, rows+2)
	l.barY = l.well.Bottom()
	l.hold = core.NewRect(l.well.X-sideWidth-1, 0, sideWidth, 5)
	l.hud = core.NewRect(l.hold.X, l.hold.Bottom()+1, sideWidth, 10)

	fit := max((rows-1)/3, 0)
	l.preview = core.Clamp(l.preview, 0, fit)
	l.next = core.NewRect(l.well.Right()+1, 0, sideWidth, l.preview*3+2)
	return l
}

// Render draws the current game state to the screen.
func (g *Game) Render(dst *core.Screen) {
	dst.Clear()
	if g.board == nil {
		msg := "stacker unavailable"
		if g.err != nil {
			msg = g.err.Error()
		}
		dst.DrawTextCentered(dst.Height()/2, msg)
		return
	}

	l := g.layout(dst)
	g.drawWell(dst, l)
	g.drawHold(dst, l.hold)
	g.drawNext(dst, l)
	g.drawHUD(dst, l.hud)
	if g.phase == PhasePostGame {
		g.drawTimeline(dst, l)
	}

	switch {
	case g.paused:
		drawMessage(dst, l.well, "PAUSED", "P to resume")
	case g.phase == PhaseReady:
		drawMessage(dst, l.well, "READY", "move to start")
	}
}

func (g *Game) drawWell(dst *core.Screen, l layout) {
	dst.DrawBox(l.well, core.ColorGray)
	b := g.board
	inner := l.well.Inset(1)

	// Board rows grow upward; screen rows grow downward.
	cell := func(x, y int, glyph string, c core.Color) {
		if y >= l.rows || x >= l.cols {
			return
		}
		dst.DrawTextColored(inner.X+x*2, inner.Y+l.rows-1-y, glyph, c)
	}

	for y := 0; y < l.rows; y++ {
		for x := 0; x < l.cols; x++ {
			k, _ := b.Matrix.Get(board.V(x, y))
			switch {
			case k != board.E:
				cell(x, y, blockGlyph, kindColors[k])
			case y < b.Bounds.Legal.Y:
				cell(x, y, emptyGlyph, core.ColorDarkGray)
			}
		}
	}

	if ghost, ok := b.Ghost(g.tables); ok && g.phase != PhasePostGame {
		for _, v := range g.tables.Cells(ghost) {
			if k, _ := b.Matrix.Get(v); k == board.E {
				cell(v.X, v.Y, ghostGlyph, kindColors[ghost.Kind])
			}
		}
	}
	if a := b.Active; a != nil {
		for _, v := range g.tables.Cells(*a) {
			cell(v.X, v.Y, blockGlyph, kindColors[a.Kind])
		}
	}
}

func (g *Game) drawHold(dst *core.Screen, r core.Rect) {
	dst.DrawBox(r, core.ColorGray)
	dst.DrawText(r.X+2, r.Y, " HOLD ")

	k, ok := g.board.Hold.HeldKind()
	if !ok {
		return
	}
	c := kindColors[k]
	if g.board.Hold.State == board.HoldInactive {
		c = core.ColorDarkGray
	}
	g.drawPiece(dst, r.X+2, r.Y+2, k, c)
}

func (g *Game) drawNext(dst *core.Screen, l layout) {
	if l.preview == 0 {
		return
	}
	r := l.next
	dst.DrawBox(r, core.ColorGray)
	dst.DrawText(r.X+2, r.Y, " NEXT ")
	for i, k := range g.board.Queue.Upcoming(l.preview) {
		g.drawPiece(dst, r.X+2, r.Y+1+i*3, k, kindColors[k])
	}
}

// drawPiece draws kind in its spawn rotation with its top-left at (x, y).
func (g *Game) drawPiece(dst *core.Screen, x, y int, kind board.MinoKind, c core.Color) {
	cells := g.tables.Shape(kind, board.Up)
	if len(cells) == 0 {
		return
	}
	minX, maxY := cells[0].X, cells[0].Y
	for _, v := range cells {
		minX = min(minX, v.X)
		maxY = max(maxY, v.Y)
	}
	for _, v := range cells {
		dst.DrawTextColored(x+(v.X-minX)*2, y+maxY-v.Y, blockGlyph, c)
	}
}

func (g *Game) drawHUD(dst *core.Screen, r core.Rect) {
	lines := []string{
		g.mode.Title,
		"",
		fmt.Sprintf("Score %d", g.score),
		fmt.Sprintf("Lines %d", g.lines),
		fmt.Sprintf("Level %d", g.level()),
		"Time  " + formatTicks(g.clockTicks()),
	}
	if g.mode.LineGoal > 0 {
		lines = append(lines, fmt.Sprintf("Goal  %d", max(g.mode.LineGoal-g.lines, 0)))
	}
	for i, s := range lines {
		dst.DrawText(r.X, r.Y+i, s)
	}

	if g.phase == PhasePostGame {
		y := r.Y + len(lines) + 1
		dst.DrawTextColored(r.X, y, g.playbackLabel(), core.ColorBrightWhite)
		if leaves := g.complete.Leaves(); len(leaves) > 1 {
			dst.DrawText(r.X, y+1, fmt.Sprintf("Timeline %d/%d", slices.Index(leaves, g.complete.Leaf())+1, len(leaves)))
		}
	}
}

// clockTicks is the record time shown on the HUD.
func (g *Game) clockTicks() uint64 {
	switch {
	case g.rec != nil:
		return g.recordTick()
	case g.player != nil:
		return g.player.Frame()
	}
	return 0
}

func (g *Game) playbackLabel() string {
	playing, reverse := g.player.Playing()
	switch {
	case !playing:
		return "❚❚ REPLAY"
	case reverse:
		return "◀ REPLAY"
	default:
		return "▶ REPLAY"
	}
}

// drawTimeline draws the replay progress bar under the well, with a tick
// wherever the viewed path has a branch.
func (g *Game) drawTimeline(dst *core.Screen, l layout) {
	width := l.well.W
	filled := int(g.player.Progress()*float64(width) + 0.5)
	for x := 0; x < width; x++ {
		if x < filled {
			dst.SetCell(l.well.X+x, l.barY, core.Cell{Rune: '━', Color: core.ColorCyan})
		} else {
			dst.SetCell(l.well.X+x, l.barY, core.Cell{Rune: '─', Color: core.ColorDarkGray})
		}
	}

	last := g.complete.LastFrame()
	if last == 0 {
		return
	}
	for _, link := range g.complete.Chain() {
		for _, bp := range g.complete.Branches(link.Segment) {
			if bp.Tick > last {
				continue
			}
			x := int(bp.Tick * uint64(width-1) / last)
			dst.SetCell(l.well.X+x, l.barY, core.Cell{Rune: '┼', Color: core.ColorYellow})
		}
	}
}

// drawMessage draws a message box centered in r.
func drawMessage(dst *core.Screen, r core.Rect, title, subtitle string) {
	w := max(len(title), len(subtitle)) + 4
	box := core.NewRect(r.X+(r.W-w)/2, r.Y+(r.H-5)/2, w, 5)
	dst.FillRect(box, core.Cell{Rune: ' '})
	dst.DrawBox(box, core.ColorBrightWhite)
	dst.DrawText(box.X+(w-len(title))/2, box.Y+1, title)
	dst.DrawText(box.X+(w-len(subtitle))/2, box.Y+3, subtitle)
}

// formatTicks renders record time as m:ss.cc.
func formatTicks(t uint64) string {
	d := replay.Duration(t)
	cs := d.Milliseconds() / 10
	return fmt.Sprintf("%d:%02d.%02d", cs/6000, cs/100%60, cs%100)
}

// Help lists the key bindings for the current phase.
func (g *Game) Help() string {
	if g.phase == PhasePostGame {
		return "enter play/pause · bksp reverse · home/end seek · tab timeline · move to branch · r new game"
	}
	return "←→ move · ↓ soft · space hard · z/x rotate · v 180 · c hold · p pause"
}
