package replay

import "github.com/vovakirdan/tui-stacker/internal/stacker/board"

type playback struct {
	recordFrame uint64 // replay frame when playback started
	realFrame   uint64 // wall-clock frame when playback started
	reverse     bool
}

// Player walks a board along a CompleteRecord. The board it drives must
// already reflect the first Index() items of the viewed path; NewPlayer
// assumes the board is at the end of the record.
type Player struct {
	rec     *CompleteRecord
	frame   uint64
	ix      int
	nextIx  int
	playing *playback
}

// NewPlayer returns a paused player positioned at the end of rec.
func NewPlayer(rec *CompleteRecord) *Player {
	return &Player{
		rec:    rec,
		frame:  rec.LastFrame(),
		ix:     rec.Len(),
		nextIx: rec.Len(),
	}
}

// NewPlayerAtStart returns a paused player for a board that has none of
// rec's items applied yet, such as a freshly cleared board.
func NewPlayerAtStart(rec *CompleteRecord) *Player {
	return &Player{rec: rec}
}

// Record returns the record being played.
func (p *Player) Record() *CompleteRecord {
	return p.rec
}

// Frame returns the target record time.
func (p *Player) Frame() uint64 {
	return p.frame
}

// Index returns how many items of the viewed path are applied.
func (p *Player) Index() int {
	return p.ix
}

// Playing reports whether playback is running and in which direction.
func (p *Player) Playing() (playing, reverse bool) {
	if p.playing == nil {
		return false, false
	}
	return true, p.playing.reverse
}

// CaughtUp reports whether the board matches the target frame.
func (p *Player) CaughtUp() bool {
	return p.ix == p.nextIx
}

// AtEnd reports whether every item of the viewed path is applied.
func (p *Player) AtEnd() bool {
	return p.ix == p.rec.Len()
}

// Progress returns the position within the record in [0, 1].
func (p *Player) Progress() float64 {
	last := p.rec.LastFrame()
	if last == 0 {
		return 1
	}
	return float64(p.frame) / float64(last)
}

// Play starts forward playback from the current frame. now is the
// wall-clock frame.
func (p *Player) Play(now uint64) {
	p.start(now, false)
}

// Reverse starts backward playback from the current frame.
func (p *Player) Reverse(now uint64) {
	p.start(now, true)
}

func (p *Player) start(now uint64, reverse bool) {
	p.playing = &playback{recordFrame: p.frame, realFrame: now, reverse: reverse}
}

// Pause stops advancing the target frame.
func (p *Player) Pause() {
	p.playing = nil
}

// Toggle pauses a running playback or resumes in the last direction.
func (p *Player) Toggle(now uint64, reverse bool) {
	if p.playing != nil {
		p.Pause()
		return
	}
	p.start(now, reverse)
}

// Advance moves the target frame to match the wall clock and pauses at
// either end of the record. Call Sync to bring the board along.
func (p *Player) Advance(now uint64) {
	if p.playing == nil {
		return
	}
	pb := p.playing
	elapsed := uint64(0)
	if now > pb.realFrame {
		elapsed = now - pb.realFrame
	}

	last := p.rec.LastFrame()
	if pb.reverse {
		if elapsed >= pb.recordFrame {
			p.frame = 0
			p.playing = nil
		} else {
			p.frame = pb.recordFrame - elapsed
		}
	} else {
		p.frame = pb.recordFrame + elapsed
		if p.frame >= last {
			p.frame = last
			p.playing = nil
		}
	}
	p.nextIx = p.rec.PartitionPoint(p.frame)
}

// Seek pauses playback and moves the board to frame.
func (p *Player) Seek(b *board.Board, frame uint64) {
	p.playing = nil
	p.frame = min(frame, p.rec.LastFrame())
	p.nextIx = p.rec.PartitionPoint(p.frame)
	p.Sync(b)
}

// Sync applies or reverts items until the board matches the target frame.
func (p *Player) Sync(b *board.Board) {
	switch {
	case p.nextIx > p.ix:
		for i := p.ix; i < p.nextIx; i++ {
			Apply(b, p.rec.Get(i))
		}
	case p.nextIx < p.ix:
		for i := p.ix - 1; i >= p.nextIx; i-- {
			Undo(b, p.rec.Get(i))
		}
		p.restoreSparse(b, p.nextIx)
	}
	p.ix = p.nextIx
}

// restoreSparse sets the active piece, hold and queue to their latest
// values among the first n items.
func (p *Player) restoreSparse(b *board.Board, n int) {
	var haveActive, haveHold, haveQueue bool
	for i := n - 1; i >= 0 && !(haveActive && haveHold && haveQueue); i-- {
		it := p.rec.Get(i)
		switch {
		case it.Kind == ActiveChange && !haveActive:
			haveActive = true
		case it.Kind == HoldChange && !haveHold:
			haveHold = true
		case it.Kind == QueueChange && !haveQueue:
			haveQueue = true
		default:
			continue
		}
		Apply(b, it)
	}
	if !haveActive {
		b.Active = nil
	}
	if !haveHold {
		b.Hold = board.Hold{}
	}
}

// SwitchTimeline moves the view to the path ending with leaf. The board is
// first rewound to the prefix both paths share, so it stays consistent.
func (p *Player) SwitchTimeline(b *board.Board, leaf int) error {
	shared, err := p.rec.SharedPrefix(leaf)
	if err != nil {
		return err
	}
	if p.ix > shared {
		p.nextIx = shared
		p.Sync(b)
	}
	if err := p.rec.Switch(leaf); err != nil {
		return err
	}

	p.playing = nil
	p.frame = 0
	if p.ix > 0 {
		p.frame = p.rec.Get(p.ix - 1).Time
	}
	p.nextIx = p.ix
	return nil
}
