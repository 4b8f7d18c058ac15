package replay

import (
	"cmp"
	"fmt"
	"slices"
	"sort"

	"github.com/kamstrup/intmap"
)

// Segment is one stretch of recorded play. A root segment has Parent -1.
// A branch segment continues its parent after the parent's first
// BranchIndex items, starting at record time BranchTick.
type Segment struct {
	Parent      int
	BranchIndex int
	BranchTick  uint64
	Items       []Item
	Marks       []Mark
}

// Mark is a scoring event pinned to a record time within its segment.
type Mark struct {
	Tick   uint64
	Lines  int
	Points int
}

// Link is one element of the viewed path: the first Len items of a segment.
type Link struct {
	Segment int
	Len     int
}

// BranchPoint names a child segment and the tick it diverges at.
type BranchPoint struct {
	Tick    uint64
	Segment int
}

// CompleteRecord stores every finalized segment and views one path through
// them as a single flat sequence of items.
type CompleteRecord struct {
	segments []Segment
	branches []*intmap.Map[uint64, []int] // per segment: branch tick -> children

	chain       []Link
	separations []int // separations[k] is the flat index of chain[k]'s first item
	total       int
	leaf        int
}

// NewCompleteRecord returns an empty record.
func NewCompleteRecord() *CompleteRecord {
	return &CompleteRecord{leaf: -1}
}

// Finalize stores the recorder's items as a new segment and switches the
// view to end with it. It returns the segment id.
func (c *CompleteRecord) Finalize(r *Recorder) int {
	return c.add(Segment{
		Parent:      r.parent,
		BranchIndex: r.branchIndex,
		BranchTick:  r.baseTick,
		Items:       slices.Clone(r.items),
		Marks:       slices.Clone(r.marks),
	})
}

func (c *CompleteRecord) add(s Segment) int {
	id := len(c.segments)
	c.segments = append(c.segments, s)
	c.branches = append(c.branches, intmap.New[uint64, []int](4))
	if s.Parent >= 0 {
		m := c.branches[s.Parent]
		kids, _ := m.Get(s.BranchTick)
		m.Put(s.BranchTick, append(kids, id))
	}
	c.view(id)
	return id
}

// Len returns the number of items on the viewed path.
func (c *CompleteRecord) Len() int {
	return c.total
}

// Leaf returns the segment the viewed path ends with, or -1 when empty.
func (c *CompleteRecord) Leaf() int {
	return c.leaf
}

// Segments returns all stored segments. The slice must not be modified.
func (c *CompleteRecord) Segments() []Segment {
	return c.segments
}

// Chain returns the viewed path.
func (c *CompleteRecord) Chain() []Link {
	return slices.Clone(c.chain)
}

// Totals sums the marks on the viewed path up to record time frame. Marks
// of a segment past the tick its next link branches at are not counted.
func (c *CompleteRecord) Totals(frame uint64) (points, lines int) {
	for k, link := range c.chain {
		limit := frame
		if k+1 < len(c.chain) {
			limit = min(limit, c.segments[c.chain[k+1].Segment].BranchTick)
		}
		for _, m := range c.segments[link.Segment].Marks {
			if m.Tick <= limit {
				points += m.Points
				lines += m.Lines
			}
		}
	}
	return points, lines
}

// Locate maps a flat index to its chain link and the offset within that
// link's segment. i must be in [0, Len()).
func (c *CompleteRecord) Locate(i int) (link, offset int) {
	k := sort.Search(len(c.separations), func(k int) bool { return c.separations[k] > i }) - 1
	return k, i - c.separations[k]
}

// Get returns the item at flat index i. i must be in [0, Len()).
func (c *CompleteRecord) Get(i int) Item {
	k, off := c.Locate(i)
	return c.segments[c.chain[k].Segment].Items[off]
}

// Slice returns the items in [lo, hi), clamped to the viewed path.
func (c *CompleteRecord) Slice(lo, hi int) []Item {
	lo, hi = max(lo, 0), min(hi, c.total)
	if lo >= hi {
		return nil
	}
	out := make([]Item, 0, hi-lo)
	for i := lo; i < hi; i++ {
		out = append(out, c.Get(i))
	}
	return out
}

// LastFrame returns the time of the last viewed item.
func (c *CompleteRecord) LastFrame() uint64 {
	if c.total == 0 {
		return 0
	}
	return c.Get(c.total - 1).Time
}

// PartitionPoint returns the number of leading items with Time <= t.
func (c *CompleteRecord) PartitionPoint(t uint64) int {
	return sort.Search(c.total, func(i int) bool { return c.Get(i).Time > t })
}

// Branch cuts the viewed path after its first ix items and returns a
// recorder for a new segment starting there at record time tick. The items
// that followed are kept in their segment and stay reachable with Switch.
func (c *CompleteRecord) Branch(ix int, tick uint64) *Recorder {
	ix = max(0, min(ix, c.total))
	if len(c.chain) == 0 {
		return &Recorder{parent: -1, baseTick: tick}
	}

	var k, off int
	if ix == c.total {
		k = len(c.chain) - 1
		off = c.chain[k].Len
	} else {
		k, off = c.Locate(ix)
	}

	c.chain = c.chain[:k+1]
	c.chain[k].Len = off
	c.leaf = c.chain[k].Segment
	c.reindex()

	return &Recorder{parent: c.chain[k].Segment, branchIndex: off, baseTick: tick}
}

// Branches lists the children of a segment ordered by branch tick.
func (c *CompleteRecord) Branches(seg int) []BranchPoint {
	if seg < 0 || seg >= len(c.branches) {
		return nil
	}
	var out []BranchPoint
	for tick, kids := range c.branches[seg].All() {
		for _, id := range kids {
			out = append(out, BranchPoint{Tick: tick, Segment: id})
		}
	}
	slices.SortFunc(out, func(a, b BranchPoint) int {
		if a.Tick != b.Tick {
			return cmp.Compare(a.Tick, b.Tick)
		}
		return a.Segment - b.Segment
	})
	return out
}

// Leaves returns the segments that end a distinct timeline, in creation
// order. A segment ends one unless a child continues from its last item,
// which makes its timeline a prefix of the child's.
func (c *CompleteRecord) Leaves() []int {
	prefix := make([]bool, len(c.segments))
	for _, s := range c.segments {
		if s.Parent >= 0 && s.BranchIndex == len(c.segments[s.Parent].Items) {
			prefix[s.Parent] = true
		}
	}
	var out []int
	for id := range c.segments {
		if !prefix[id] {
			out = append(out, id)
		}
	}
	return out
}

// Switch views the path ending with segment leaf.
func (c *CompleteRecord) Switch(leaf int) error {
	if leaf < 0 || leaf >= len(c.segments) {
		return fmt.Errorf("replay: no segment %d", leaf)
	}
	c.view(leaf)
	return nil
}

// SharedPrefix returns how many leading items the viewed path has in common
// with the path ending with leaf.
func (c *CompleteRecord) SharedPrefix(leaf int) (int, error) {
	if leaf < 0 || leaf >= len(c.segments) {
		return 0, fmt.Errorf("replay: no segment %d", leaf)
	}
	return commonPrefix(c.chain, c.pathTo(leaf)), nil
}

func (c *CompleteRecord) view(leaf int) {
	c.chain = c.pathTo(leaf)
	c.leaf = leaf
	c.reindex()
}

// pathTo builds the chain from the root down to leaf.
func (c *CompleteRecord) pathTo(leaf int) []Link {
	var chain []Link
	n := len(c.segments[leaf].Items)
	for id := leaf; id >= 0; id = c.segments[id].Parent {
		chain = append(chain, Link{Segment: id, Len: n})
		n = c.segments[id].BranchIndex
	}
	slices.Reverse(chain)
	return chain
}

func (c *CompleteRecord) reindex() {
	c.separations = c.separations[:0]
	c.total = 0
	for _, l := range c.chain {
		c.separations = append(c.separations, c.total)
		c.total += l.Len
	}
}

func commonPrefix(a, b []Link) int {
	n := 0
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i].Segment != b[i].Segment {
			break
		}
		n += min(a[i].Len, b[i].Len)
		if a[i].Len != b[i].Len {
			break
		}
	}
	return n
}
