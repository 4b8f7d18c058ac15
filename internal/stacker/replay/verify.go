package replay

import (
	"fmt"

	"github.com/vovakirdan/tui-stacker/internal/stacker/board"
)

// Mismatch is a frame where two passes over a record left different boards.
type Mismatch struct {
	Leaf  int
	Frame uint64
	Pass  string
	Field string
}

func (m Mismatch) String() string {
	return fmt.Sprintf("timeline %d frame %d: %s differs on %s pass", m.Leaf, m.Frame, m.Field, m.Pass)
}

// Verify replays every timeline of rec headlessly: forward to the end,
// back to the start, then forward again, comparing the board at every
// stride frames with the first forward pass. newBoard must return a board
// with none of the record applied. The viewed timeline is restored.
func Verify(rec *CompleteRecord, newBoard func() *board.Board, stride uint64) []Mismatch {
	if rec.Len() == 0 {
		return nil
	}
	stride = max(stride, 1)
	viewed := rec.Leaf()
	defer rec.Switch(viewed) //nolint:errcheck // viewed was valid on entry

	var out []Mismatch
	for _, leaf := range rec.Leaves() {
		if err := rec.Switch(leaf); err != nil {
			out = append(out, Mismatch{Leaf: leaf, Pass: "switch", Field: err.Error()})
			continue
		}
		out = append(out, verifyPath(rec, leaf, newBoard(), stride)...)
	}
	return out
}

func verifyPath(rec *CompleteRecord, leaf int, b *board.Board, stride uint64) []Mismatch {
	last := rec.LastFrame()
	var frames []uint64
	for f := uint64(0); f < last; f += stride {
		frames = append(frames, f)
	}
	frames = append(frames, last)

	p := NewPlayerAtStart(rec)
	want := make([]*board.Board, len(frames))
	for i, f := range frames {
		p.Seek(b, f)
		b.Matrix.DrainUpdates()
		want[i] = b.Clone()
	}

	var out []Mismatch
	check := func(i int, pass string) {
		if field := boardDiff(want[i], b); field != "" {
			out = append(out, Mismatch{Leaf: leaf, Frame: frames[i], Pass: pass, Field: field})
		}
	}
	for i := len(frames) - 1; i >= 0; i-- {
		p.Seek(b, frames[i])
		b.Matrix.DrainUpdates()
		check(i, "reverse")
	}
	for i := range frames {
		p.Seek(b, frames[i])
		b.Matrix.DrainUpdates()
		check(i, "forward")
	}
	return out
}

// boardDiff names the first recorded field that differs, or "".
func boardDiff(a, b *board.Board) string {
	switch {
	case !a.Matrix.Equal(&b.Matrix):
		return "matrix"
	case (a.Active == nil) != (b.Active == nil), a.Active != nil && *a.Active != *b.Active:
		return "active"
	case a.Hold != b.Hold:
		return "hold"
	case !a.Queue.Equal(&b.Queue):
		return "queue"
	}
	return ""
}
