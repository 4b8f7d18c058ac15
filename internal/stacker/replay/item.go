// Package replay records a board as a stream of timestamped state changes
// and plays that stream back in either direction.
//
// A live game appends to a Recorder. When the game ends the Recorder is
// finalized into a CompleteRecord, a tree of segments of which one
// root-to-leaf path is viewed at a time. A Player moves a board along that
// path: forward by applying items, backward by undoing matrix changes and
// looking up the latest active piece, hold and queue values.
package replay

import (
	"fmt"
	"time"

	"github.com/vovakirdan/tui-stacker/internal/stacker/board"
)

// UnitsPerSecond is the resolution of record timestamps.
const UnitsPerSecond = 60

// Discretize converts elapsed time into record units, rounding to the
// nearest unit. Recording and playback must both go through it.
func Discretize(d time.Duration) uint64 {
	if d <= 0 {
		return 0
	}
	return uint64((d*UnitsPerSecond + time.Second/2) / time.Second)
}

// Duration converts record units back into elapsed time.
func Duration(units uint64) time.Duration {
	return time.Duration(units) * time.Second / UnitsPerSecond
}

// DataKind selects which field of an Item is meaningful.
type DataKind uint8

const (
	ActiveChange DataKind = iota
	QueueChange
	HoldChange
	MatrixChange
)

func (k DataKind) String() string {
	switch k {
	case ActiveChange:
		return "active"
	case QueueChange:
		return "queue"
	case HoldChange:
		return "hold"
	case MatrixChange:
		return "matrix"
	default:
		return fmt.Sprintf("DataKind(%d)", uint8(k))
	}
}

// Item is one recorded change. Active, Queue and Hold changes carry the full
// new value. Matrix changes carry a single reversible cell update.
type Item struct {
	Time   uint64
	Kind   DataKind
	Active *board.Mino // nil when the board has no active piece
	Queue  board.PieceQueue
	Hold   board.Hold
	Cell   board.MatrixUpdate
}

// Apply overwrites the matching board field with the recorded value.
// Matrix changes also land in the matrix update buffer.
func Apply(b *board.Board, it Item) {
	switch it.Kind {
	case ActiveChange:
		if it.Active == nil {
			b.Active = nil
		} else {
			m := *it.Active
			b.Active = &m
		}
	case QueueChange:
		b.Queue = it.Queue.Clone()
	case HoldChange:
		b.Hold = it.Hold
	case MatrixChange:
		b.Matrix.Set(it.Cell.Loc, it.Cell.New)
	}
}

// Undo reverts a matrix change. Other kinds are not invertible on their own
// and are ignored; Player restores them by looking back in the record.
func Undo(b *board.Board, it Item) {
	if it.Kind != MatrixChange {
		return
	}
	inv := it.Cell.Invert()
	b.Matrix.Set(inv.Loc, inv.New)
}
