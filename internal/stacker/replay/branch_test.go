package replay_test

import (
	"bytes"
	"math/rand/v2"
	"slices"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/vovakirdan/tui-stacker/internal/stacker/board"
	"github.com/vovakirdan/tui-stacker/internal/stacker/replay"
	"github.com/vovakirdan/tui-stacker/internal/stacker/tables"
)

type timeline struct {
	complete *replay.CompleteRecord
	rootSnap []*board.Board
	forkSnap []*board.Board
	forkAt   uint64
	final    *board.Board
}

// branched records a 400 tick game, rewinds to tick 150 and plays a
// different 300 tick continuation from there.
func branched(t *testing.T) timeline {
	t.Helper()
	rec, rootSnap, final := simulate(t, 400, 21)
	complete := replay.NewCompleteRecord()
	complete.Finalize(rec)

	b := final.Clone()
	p := replay.NewPlayer(complete)
	const forkAt = 150
	p.Seek(b, forkAt)
	b.Matrix.DrainUpdates()
	b.Over = false
	b.Clock = board.DropClock{}

	fork := complete.Branch(p.Index(), forkAt)
	fork.Baseline(b)
	forkSnap := play(t, b, fork, forkAt+1, 300, rand.New(rand.NewPCG(99, 1)))
	complete.Finalize(fork)

	return timeline{complete: complete, rootSnap: rootSnap, forkSnap: forkSnap, forkAt: forkAt, final: b}
}

func TestBranchKeepsBothTimelines(t *testing.T) {
	tl := branched(t)
	c := tl.complete

	if got := c.Leaves(); !slices.Equal(got, []int{0, 1}) {
		t.Fatalf("Leaves() = %v, want [0 1]", got)
	}
	if got := c.Leaf(); got != 1 {
		t.Errorf("Leaf() = %d, want 1", got)
	}
	bp := c.Branches(0)
	if len(bp) != 1 || bp[0] != (replay.BranchPoint{Tick: tl.forkAt, Segment: 1}) {
		t.Errorf("Branches(0) = %+v, want one at tick %d", bp, tl.forkAt)
	}
	if len(c.Branches(1)) != 0 {
		t.Errorf("Branches(1) = %+v, want none", c.Branches(1))
	}
	if seg := c.Segments()[1]; seg.Parent != 0 || seg.BranchTick != tl.forkAt {
		t.Errorf("segment 1 = parent %d tick %d", seg.Parent, seg.BranchTick)
	}
}

func TestReplayAcrossBranch(t *testing.T) {
	tl := branched(t)
	b := tl.final.Clone()
	p := replay.NewPlayer(tl.complete)

	// Before the fork the new timeline replays the original game.
	for _, f := range []uint64{tl.forkAt, 100, 0} {
		p.Seek(b, f)
		if diff := diffState(snapAt(tl.rootSnap, 0, f), b); diff != "" {
			t.Fatalf("Seek(%d) mismatch (-want +got):\n%s", f, diff)
		}
	}
	// After it, the continuation.
	for _, f := range []uint64{tl.forkAt + 1, 300, 449} {
		p.Seek(b, f)
		if diff := diffState(snapAt(tl.forkSnap, tl.forkAt+1, f), b); diff != "" {
			t.Fatalf("Seek(%d) mismatch (-want +got):\n%s", f, diff)
		}
	}
}

func TestSwitchTimeline(t *testing.T) {
	tl := branched(t)
	b := tl.final.Clone()
	p := replay.NewPlayer(tl.complete)

	p.Seek(b, 300)
	if err := p.SwitchTimeline(b, 0); err != nil {
		t.Fatalf("SwitchTimeline(0) error = %v", err)
	}
	if p.Frame() > tl.forkAt {
		t.Errorf("after switch frame = %d, want <= %d", p.Frame(), tl.forkAt)
	}
	if diff := diffState(snapAt(tl.rootSnap, 0, p.Frame()), b); diff != "" {
		t.Fatalf("board after switch (-want +got):\n%s", diff)
	}

	p.Seek(b, 399)
	if diff := diffState(snapAt(tl.rootSnap, 0, 399), b); diff != "" {
		t.Fatalf("old timeline end mismatch (-want +got):\n%s", diff)
	}

	if err := p.SwitchTimeline(b, 7); err == nil {
		t.Error("SwitchTimeline(7) error = nil, want error")
	}
}

func TestCodecRoundTrip(t *testing.T) {
	tl := branched(t)

	var buf bytes.Buffer
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	if err := replay.Encode(&buf, tl.complete, replay.Header{Game: "stacker", Seed: 21, Score: 300, CreatedAt: created}); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	got, h, err := replay.Decode(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if h.Game != "stacker" || h.Seed != 21 || h.Segments != 2 || !h.CreatedAt.Equal(created) {
		t.Errorf("header = %+v", h)
	}
	if h.Frames != tl.complete.LastFrame() {
		t.Errorf("header frames = %d, want %d", h.Frames, tl.complete.LastFrame())
	}
	if got.Leaf() != tl.complete.Leaf() || got.Len() != tl.complete.Len() {
		t.Fatalf("decoded leaf/len = %d/%d, want %d/%d", got.Leaf(), got.Len(), tl.complete.Leaf(), tl.complete.Len())
	}
	if diff := cmp.Diff(tl.complete.Segments(), got.Segments(), pcgEqual); diff != "" {
		t.Errorf("segments differ (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(tl.complete.Branches(0), got.Branches(0)); diff != "" {
		t.Errorf("branch index differs (-want +got):\n%s", diff)
	}

	// A decoded record drives a board just like the original.
	b := tl.final.Clone()
	p := replay.NewPlayer(got)
	p.Seek(b, 42)
	if diff := diffState(snapAt(tl.rootSnap, 0, 42), b); diff != "" {
		t.Errorf("decoded Seek(42) mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, _, err := replay.Decode(bytes.NewReader([]byte("not a record"))); err == nil {
		t.Error("Decode(garbage) error = nil, want error")
	}
}

func TestTotalsFollowViewedPath(t *testing.T) {
	b := board.NewBoard(board.DefaultBounds(), board.NewPieceQueue(4, 5), board.DefaultSettings())
	if !b.Begin(tables.MustDefault()) {
		t.Fatal("Begin() = false")
	}
	wiggle := func(rec *replay.Recorder, from, to uint64, marks map[uint64][2]int) {
		for tick := from; tick < to; tick++ {
			b.Active.Position.X = 3 + int(tick%3)
			rec.Record(tick, b)
			if m, ok := marks[tick]; ok {
				rec.Mark(tick, m[0], m[1])
			}
		}
	}

	complete := replay.NewCompleteRecord()
	root := replay.NewRecorder()
	wiggle(root, 0, 300, map[uint64][2]int{10: {1, 100}, 200: {2, 300}})
	complete.Finalize(root)

	fork := complete.Branch(complete.PartitionPoint(150), 150)
	wiggle(fork, 151, 250, map[uint64][2]int{160: {4, 800}})
	complete.Finalize(fork)

	tests := []struct {
		name          string
		leaf          int
		frame         uint64
		points, lines int
	}{
		{"fork end", 1, 1000, 900, 5},
		{"fork before its mark", 1, 155, 100, 1},
		{"before any mark", 1, 5, 0, 0},
		{"root end", 0, 1000, 400, 3},
		{"root mid", 0, 150, 100, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := complete.Switch(tt.leaf); err != nil {
				t.Fatal(err)
			}
			points, lines := complete.Totals(tt.frame)
			if points != tt.points || lines != tt.lines {
				t.Errorf("Totals(%d) = %d, %d; want %d, %d", tt.frame, points, lines, tt.points, tt.lines)
			}
		})
	}

	var buf bytes.Buffer
	if err := replay.Encode(&buf, complete, replay.Header{Game: "stacker"}); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	got, _, err := replay.Decode(&buf)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if err := got.Switch(1); err != nil {
		t.Fatal(err)
	}
	if points, _ := got.Totals(1000); points != 900 {
		t.Errorf("decoded Totals = %d, want 900", points)
	}
}

func TestBranchAtEndExtendsTimeline(t *testing.T) {
	rec, _, final := simulate(t, 50, 8)
	complete := replay.NewCompleteRecord()
	complete.Finalize(rec)

	b := final.Clone()
	last := complete.LastFrame()
	tail := complete.Branch(complete.Len(), last)
	tail.Baseline(b)
	play(t, b, tail, last+1, 30, rand.New(rand.NewPCG(3, 3)))
	complete.Finalize(tail)

	// The root is now a prefix of the tail, not a timeline of its own.
	if got := complete.Leaves(); !slices.Equal(got, []int{1}) {
		t.Errorf("Leaves() = %v, want [1]", got)
	}
}
