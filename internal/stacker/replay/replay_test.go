package replay_test

import (
	"math/rand/v2"
	"slices"
	"testing"
	"time"

	"github.com/vovakirdan/tui-stacker/internal/stacker/board"
	"github.com/vovakirdan/tui-stacker/internal/stacker/replay"
)

func TestDiscretize(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want uint64
	}{
		{0, 0},
		{-time.Second, 0},
		{8 * time.Millisecond, 0},
		{9 * time.Millisecond, 1},
		{time.Second / 60, 1},
		{time.Second, 60},
		{90 * time.Second, 5400},
	}

	for _, tc := range tests {
		if got := replay.Discretize(tc.d); got != tc.want {
			t.Errorf("Discretize(%v) = %d, want %d", tc.d, got, tc.want)
		}
	}

	// Tick n of a 60Hz loop lands on unit n.
	for n := 0; n < 1000; n++ {
		d := time.Duration(n) * time.Second / 60
		if got := replay.Discretize(d); got != uint64(n) {
			t.Fatalf("tick %d discretized to %d", n, got)
		}
	}
}

func TestApplyUndoCell(t *testing.T) {
	b := board.NewBoard(board.DefaultBounds(), board.NewPieceQueue(1, 5), board.DefaultSettings())
	b.Matrix.Data[0][0] = board.L

	it := replay.Item{Kind: replay.MatrixChange, Cell: board.MatrixUpdate{Loc: board.V(0, 0), Old: board.L, New: board.T}}
	replay.Apply(b, it)
	if k, _ := b.Matrix.Get(board.V(0, 0)); k != board.T {
		t.Fatalf("after Apply (0,0) = %v, want T", k)
	}
	replay.Undo(b, it)
	if k, _ := b.Matrix.Get(board.V(0, 0)); k != board.L {
		t.Errorf("after Undo (0,0) = %v, want L", k)
	}
	if n := len(b.Matrix.DrainUpdates()); n != 2 {
		t.Errorf("update buffer got %d entries, want 2", n)
	}
}

func TestRecorderEmitsOnlyChanges(t *testing.T) {
	b := board.NewBoard(board.DefaultBounds(), board.NewPieceQueue(1, 5), board.DefaultSettings())
	b.Active = &board.Mino{Kind: board.T, Position: board.V(4, 22)}
	rec := replay.NewRecorder()

	rec.Record(0, b)
	kinds := make([]replay.DataKind, 0, rec.Len())
	for _, it := range rec.Items() {
		kinds = append(kinds, it.Kind)
	}
	want := []replay.DataKind{replay.ActiveChange, replay.QueueChange, replay.HoldChange}
	if !slices.Equal(kinds, want) {
		t.Fatalf("first tick kinds = %v, want %v", kinds, want)
	}

	rec.Record(1, b)
	if rec.Len() != 3 {
		t.Errorf("idle tick added %d items", rec.Len()-3)
	}

	b.Active.Position.Y--
	b.Matrix.Set(board.V(0, 0), board.G)
	rec.Record(2, b)
	got := rec.Items()[3:]
	if len(got) != 2 || got[0].Kind != replay.ActiveChange || got[1].Kind != replay.MatrixChange {
		t.Fatalf("tick 2 items = %+v, want active then matrix", got)
	}
	if got[0].Active.Position.Y != 21 {
		t.Errorf("recorded Y = %d, want 21", got[0].Active.Position.Y)
	}

	b.Active.Position.Y--
	if got[0].Active.Position.Y != 21 {
		t.Error("recorded item aliases the live piece")
	}

	rec.Record(1, b)
	if last := rec.Items()[rec.Len()-1]; last.Time != 2 {
		t.Errorf("time went backwards: %d", last.Time)
	}
}

func TestSeekMatchesLiveBoard(t *testing.T) {
	rec, snaps, final := simulate(t, 900, 3)
	complete := replay.NewCompleteRecord()
	complete.Finalize(rec)

	b := final.Clone()
	p := replay.NewPlayer(complete)
	if !p.AtEnd() || p.Frame() != complete.LastFrame() {
		t.Fatalf("new player at index %d frame %d, want end", p.Index(), p.Frame())
	}

	for _, f := range []uint64{899, 450, 0, 700, 10, 11, 899, 123, 0, 1} {
		p.Seek(b, f)
		if diff := diffState(snapAt(snaps, 0, f), b); diff != "" {
			t.Fatalf("Seek(%d) mismatch (-want +got):\n%s", f, diff)
		}
	}
}

func TestPlaybackRoundTripRestoresFinalBoard(t *testing.T) {
	rec, _, final := simulate(t, 600, 9)
	complete := replay.NewCompleteRecord()
	complete.Finalize(rec)

	b := final.Clone()
	p := replay.NewPlayer(complete)

	now := uint64(1000)
	p.Reverse(now)
	for {
		now += 7
		p.Advance(now)
		p.Sync(b)
		if playing, _ := p.Playing(); !playing {
			break
		}
	}
	if p.Frame() != 0 {
		t.Fatalf("reverse playback stopped at frame %d, want 0", p.Frame())
	}

	p.Play(now)
	for {
		now += 13
		p.Advance(now)
		p.Sync(b)
		if playing, _ := p.Playing(); !playing {
			break
		}
	}
	if !p.AtEnd() {
		t.Fatalf("forward playback stopped at index %d of %d", p.Index(), complete.Len())
	}
	if diff := diffState(final, b); diff != "" {
		t.Errorf("board after round trip differs (-want +got):\n%s", diff)
	}
}

func TestAdvanceWhilePaused(t *testing.T) {
	rec, _, _ := simulate(t, 120, 1)
	complete := replay.NewCompleteRecord()
	complete.Finalize(rec)
	p := replay.NewPlayer(complete)

	before := p.Frame()
	p.Advance(5000)
	if p.Frame() != before || !p.CaughtUp() {
		t.Errorf("paused player moved: frame %d -> %d", before, p.Frame())
	}

	p.Toggle(10, true)
	p.Advance(15)
	if p.Frame() != before-5 {
		t.Errorf("reverse frame = %d, want %d", p.Frame(), before-5)
	}
	p.Toggle(15, true)
	if playing, _ := p.Playing(); playing {
		t.Error("Toggle did not pause")
	}
}

func TestLocateAcrossSegments(t *testing.T) {
	rec, _, final := simulate(t, 200, 5)
	complete := replay.NewCompleteRecord()
	complete.Finalize(rec)

	b := final.Clone()
	p := replay.NewPlayer(complete)
	p.Seek(b, 80)
	ix := p.Index()

	branch := complete.Branch(ix, 80)
	if complete.Len() != ix {
		t.Fatalf("Len() after Branch = %d, want %d", complete.Len(), ix)
	}
	b.Matrix.DrainUpdates()
	b.Over = false
	branch.Baseline(b)
	play(t, b, branch, 81, 100, rand.New(rand.NewPCG(50, 50)))
	complete.Finalize(branch)

	if complete.Len() != ix+branch.Len() {
		t.Fatalf("Len() = %d, want %d", complete.Len(), ix+branch.Len())
	}
	for i := 0; i < complete.Len(); i++ {
		link, off := complete.Locate(i)
		chain := complete.Chain()
		if i < ix && (chain[link].Segment != 0 || off != i) {
			t.Fatalf("Locate(%d) = (%d, %d), want root offset %d", i, link, off, i)
		}
		if i >= ix && (chain[link].Segment != 1 || off != i-ix) {
			t.Fatalf("Locate(%d) = (%d, %d), want branch offset %d", i, link, off, i-ix)
		}
	}

	times := make([]uint64, complete.Len())
	for i := range times {
		times[i] = complete.Get(i).Time
	}
	if !slices.IsSorted(times) {
		t.Error("item times are not non-decreasing across segments")
	}
	if got := complete.PartitionPoint(80); got != ix {
		t.Errorf("PartitionPoint(80) = %d, want %d", got, ix)
	}
	if got := len(complete.Slice(ix-3, ix+3)); got != 6 {
		t.Errorf("Slice across the seam returned %d items, want 6", got)
	}
}

func TestPlayerAtStartRebuildsBoard(t *testing.T) {
	rec, snaps, final := simulate(t, 300, 17)
	complete := replay.NewCompleteRecord()
	complete.Finalize(rec)

	b := board.NewBoard(board.DefaultBounds(), board.PieceQueue{}, board.DefaultSettings())
	p := replay.NewPlayerAtStart(complete)
	if p.Index() != 0 || p.Frame() != 0 {
		t.Fatalf("start player at index %d frame %d", p.Index(), p.Frame())
	}

	p.Seek(b, 0)
	if diff := diffState(snaps[0], b); diff != "" {
		t.Fatalf("Seek(0) on a blank board (-want +got):\n%s", diff)
	}
	p.Seek(b, complete.LastFrame())
	if diff := diffState(final, b); diff != "" {
		t.Errorf("Seek(end) on a blank board (-want +got):\n%s", diff)
	}
}
