package replay

import (
	"bufio"
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/vovakirdan/tui-stacker/internal/stacker/board"
)

// Header describes an encoded record. It is written as a JSON line ahead of
// the body so tools can inspect it without decoding the items.
type Header struct {
	Version   int       `json:"version"`
	Game      string    `json:"game"`
	Seed      uint64    `json:"seed"`
	Score     int       `json:"score"`
	Lines     int       `json:"lines"`
	Frames    uint64    `json:"frames"`
	Segments  int       `json:"segments"`
	CreatedAt time.Time `json:"created_at"`

	// Bounds is the matrix geometry the record was played on. Records
	// without it use the reader's configured geometry.
	Bounds *board.Bounds `json:"bounds,omitempty"`
}

const codecVersion = 1

type recordDTO struct {
	Segments []segmentDTO
	Leaf     int
}

type segmentDTO struct {
	Parent      int
	BranchIndex int
	BranchTick  uint64
	Items       []itemDTO
	Marks       []Mark
}

type itemDTO struct {
	Time   uint64
	Kind   DataKind
	Active *board.Mino
	Queue  *queueDTO
	Hold   board.Hold
	Cell   board.MatrixUpdate
}

type queueDTO struct {
	Window     []board.MinoKind
	WindowSize int
	RNG        []byte
}

// Encode writes rec to w as a zstd stream holding the JSON header line and
// a gob body. Header.Version, Segments and Frames are filled in.
func Encode(w io.Writer, rec *CompleteRecord, h Header) error {
	h.Version = codecVersion
	h.Segments = len(rec.segments)
	h.Frames = rec.LastFrame()

	dto := recordDTO{Leaf: rec.leaf}
	for _, s := range rec.segments {
		sd := segmentDTO{Parent: s.Parent, BranchIndex: s.BranchIndex, BranchTick: s.BranchTick, Marks: s.Marks}
		sd.Items = make([]itemDTO, len(s.Items))
		for i, it := range s.Items {
			d, err := toItemDTO(it)
			if err != nil {
				return err
			}
			sd.Items[i] = d
		}
		dto.Segments = append(dto.Segments, sd)
	}

	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return fmt.Errorf("replay: zstd writer: %w", err)
	}
	bw := bufio.NewWriter(enc)

	hb, err := json.Marshal(h)
	if err != nil {
		return fmt.Errorf("replay: encode header: %w", err)
	}
	if _, err := bw.Write(append(hb, '\n')); err != nil {
		return fmt.Errorf("replay: write header: %w", err)
	}
	if err := gob.NewEncoder(bw).Encode(&dto); err != nil {
		return fmt.Errorf("replay: gob encode: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("replay: flush: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("replay: close zstd: %w", err)
	}
	return nil
}

// Decode reads a record written by Encode. The view is restored to the
// timeline that was viewed when it was encoded.
func Decode(r io.Reader) (*CompleteRecord, Header, error) {
	var h Header

	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, h, fmt.Errorf("replay: zstd reader: %w", err)
	}
	defer dec.Close()
	br := bufio.NewReader(dec)

	line, err := br.ReadBytes('\n')
	if err != nil {
		return nil, h, fmt.Errorf("replay: read header: %w", err)
	}
	if err := json.Unmarshal(line, &h); err != nil {
		return nil, h, fmt.Errorf("replay: decode header: %w", err)
	}
	if h.Version != codecVersion {
		return nil, h, fmt.Errorf("replay: unsupported version %d", h.Version)
	}

	var dto recordDTO
	if err := gob.NewDecoder(br).Decode(&dto); err != nil {
		return nil, h, fmt.Errorf("replay: gob decode: %w", err)
	}

	rec := NewCompleteRecord()
	for id, sd := range dto.Segments {
		if sd.Parent >= id || sd.Parent < -1 {
			return nil, h, fmt.Errorf("replay: segment %d has invalid parent %d", id, sd.Parent)
		}
		if sd.Parent >= 0 && sd.BranchIndex > len(dto.Segments[sd.Parent].Items) {
			return nil, h, fmt.Errorf("replay: segment %d branches past its parent", id)
		}
		s := Segment{Parent: sd.Parent, BranchIndex: sd.BranchIndex, BranchTick: sd.BranchTick, Marks: sd.Marks}
		s.Items = make([]Item, len(sd.Items))
		for i, d := range sd.Items {
			it, err := fromItemDTO(d)
			if err != nil {
				return nil, h, fmt.Errorf("replay: segment %d item %d: %w", id, i, err)
			}
			s.Items[i] = it
		}
		rec.add(s)
	}
	if len(rec.segments) > 0 {
		if err := rec.Switch(dto.Leaf); err != nil {
			return nil, h, err
		}
	}
	return rec, h, nil
}

func toItemDTO(it Item) (itemDTO, error) {
	d := itemDTO{Time: it.Time, Kind: it.Kind, Active: it.Active, Hold: it.Hold, Cell: it.Cell}
	if it.Kind == QueueChange {
		state, err := it.Queue.RNG.MarshalBinary()
		if err != nil {
			return d, fmt.Errorf("replay: encode queue: %w", err)
		}
		d.Queue = &queueDTO{Window: it.Queue.Window, WindowSize: it.Queue.WindowSize, RNG: state}
	}
	return d, nil
}

func fromItemDTO(d itemDTO) (Item, error) {
	it := Item{Time: d.Time, Kind: d.Kind, Active: d.Active, Hold: d.Hold, Cell: d.Cell}
	if d.Kind > MatrixChange {
		return it, fmt.Errorf("unknown kind %d", d.Kind)
	}
	if d.Kind == QueueChange {
		if d.Queue == nil {
			return it, errors.New("queue change without queue")
		}
		it.Queue = board.PieceQueue{Window: d.Queue.Window, WindowSize: d.Queue.WindowSize}
		if err := it.Queue.RNG.UnmarshalBinary(d.Queue.RNG); err != nil {
			return it, fmt.Errorf("queue generator: %w", err)
		}
	}
	return it, nil
}
