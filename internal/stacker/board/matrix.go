package board

import "strings"

// Bounds describes the playfield geometry. True is the full grid, including
// the hidden rows above the visible area. Legal is the visible region that
// the player is meant to see; it never exceeds True.
type Bounds struct {
	True  Vec
	Legal Vec
	Spawn Vec
}

// DefaultBounds returns a 10x40 grid with a 10x20 visible region and the
// spawn point two rows above it.
func DefaultBounds() Bounds {
	return Bounds{
		True:  V(10, 40),
		Legal: V(10, 20),
		Spawn: V(4, 22),
	}
}

// LegalOrigin returns the bottom-left cell of the legal region. The region
// is centered horizontally and rests on the floor.
func (b Bounds) LegalOrigin() Vec {
	return V((b.True.X-b.Legal.X)/2, 0)
}

// UpdateAction classifies a cell change for renderers.
type UpdateAction uint8

const (
	Insert UpdateAction = iota
	Erase
	Replace
)

// MatrixUpdate records one cell change. Old and New make the change
// reversible: applying Invert() undoes it exactly.
type MatrixUpdate struct {
	Loc Vec
	Old MinoKind
	New MinoKind
}

// Invert returns the change that restores the old value.
func (u MatrixUpdate) Invert() MatrixUpdate {
	return MatrixUpdate{Loc: u.Loc, Old: u.New, New: u.Old}
}

// Action reports whether the change fills, empties or repaints the cell.
func (u MatrixUpdate) Action() UpdateAction {
	switch {
	case u.New == E:
		return Erase
	case u.Old == E:
		return Insert
	default:
		return Replace
	}
}

// Matrix is the grid of settled cells, stored bottom row first. Updates
// collects every cell change since the last DrainUpdates call.
type Matrix struct {
	Data    [][]MinoKind
	Updates []MatrixUpdate
}

// NewMatrix allocates an empty grid of size.X columns by size.Y rows.
func NewMatrix(size Vec) Matrix {
	data := make([][]MinoKind, size.Y)
	for y := range data {
		data[y] = make([]MinoKind, size.X)
	}
	return Matrix{Data: data}
}

// Size returns the grid dimensions.
func (m *Matrix) Size() Vec {
	if len(m.Data) == 0 {
		return Vec{}
	}
	return V(len(m.Data[0]), len(m.Data))
}

// Get returns the cell at pos. The second result is false when pos lies
// outside the grid; such positions count as blocked.
func (m *Matrix) Get(pos Vec) (MinoKind, bool) {
	if pos.Y < 0 || pos.Y >= len(m.Data) {
		return E, false
	}
	row := m.Data[pos.Y]
	if pos.X < 0 || pos.X >= len(row) {
		return E, false
	}
	return row[pos.X], true
}

// Free reports whether pos is inside the grid and empty.
func (m *Matrix) Free(pos Vec) bool {
	k, ok := m.Get(pos)
	return ok && k == E
}

// Set overwrites one cell and appends the change to Updates. Writes outside
// the grid and writes that change nothing are ignored.
func (m *Matrix) Set(pos Vec, kind MinoKind) {
	old, ok := m.Get(pos)
	if !ok || old == kind {
		return
	}
	m.Data[pos.Y][pos.X] = kind
	m.Updates = append(m.Updates, MatrixUpdate{Loc: pos, Old: old, New: kind})
}

// DrainUpdates returns the pending cell changes and empties the buffer.
func (m *Matrix) DrainUpdates() []MatrixUpdate {
	out := m.Updates
	m.Updates = nil
	return out
}

// Reset empties every cell without recording updates.
func (m *Matrix) Reset() {
	for y := range m.Data {
		clear(m.Data[y])
	}
	m.Updates = nil
}

// Clone returns a deep copy of the grid. Pending updates are not copied.
func (m *Matrix) Clone() Matrix {
	data := make([][]MinoKind, len(m.Data))
	for y, row := range m.Data {
		data[y] = append([]MinoKind(nil), row...)
	}
	return Matrix{Data: data}
}

// Equal compares cell contents only.
func (m *Matrix) Equal(o *Matrix) bool {
	if len(m.Data) != len(o.Data) {
		return false
	}
	for y := range m.Data {
		if len(m.Data[y]) != len(o.Data[y]) {
			return false
		}
		for x := range m.Data[y] {
			if m.Data[y][x] != o.Data[y][x] {
				return false
			}
		}
	}
	return true
}

// FilledCount returns the number of non-empty cells.
func (m *Matrix) FilledCount() int {
	n := 0
	for _, row := range m.Data {
		for _, k := range row {
			if k != E {
				n++
			}
		}
	}
	return n
}

// String draws the grid top row first, '.' for empty cells.
func (m *Matrix) String() string {
	var sb strings.Builder
	for y := len(m.Data) - 1; y >= 0; y-- {
		for _, k := range m.Data[y] {
			if k == E {
				sb.WriteByte('.')
			} else {
				sb.WriteString(k.String())
			}
		}
		if y > 0 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// HasFreeSpace reports whether every cell of mino is inside the grid and
// empty.
func HasFreeSpace(m *Matrix, mino Mino, t Tables) bool {
	shape := t.Shape(mino.Kind, mino.Rotation)
	if len(shape) == 0 {
		return false
	}
	for _, off := range shape {
		if !m.Free(mino.Position.Add(off)) {
			return false
		}
	}
	return true
}

// LockPiece writes mino into the grid, removes completed rows and returns
// how many were removed. Rows above a cleared row move down by one; the
// freed top row becomes empty. Every cell that ends up different from its
// pre-lock value is appended to m.Updates in row-major order, bottom row
// first.
func LockPiece(m *Matrix, mino Mino, t Tables) int {
	before := m.Clone()

	for _, pos := range t.Cells(mino) {
		if _, ok := m.Get(pos); ok {
			m.Data[pos.Y][pos.X] = mino.Kind
		}
	}

	cleared := 0
	for ix := 0; ix < len(m.Data); {
		if !rowFull(m.Data[ix]) {
			ix++
			continue
		}
		row := m.Data[ix]
		copy(m.Data[ix:], m.Data[ix+1:])
		clear(row)
		m.Data[len(m.Data)-1] = row
		cleared++
	}

	for y := range m.Data {
		for x := range m.Data[y] {
			if old, cur := before.Data[y][x], m.Data[y][x]; old != cur {
				m.Updates = append(m.Updates, MatrixUpdate{Loc: V(x, y), Old: old, New: cur})
			}
		}
	}
	return cleared
}

func rowFull(row []MinoKind) bool {
	for _, k := range row {
		if k == E {
			return false
		}
	}
	return true
}
