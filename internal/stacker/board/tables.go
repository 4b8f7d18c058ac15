package board

// ShapeKey selects the cell offsets of a piece in one orientation.
type ShapeKey struct {
	Kind     MinoKind
	Rotation Rotation
}

// ShapeTable maps every (kind, rotation) pair to its four cell offsets
// relative to the piece position.
type ShapeTable map[ShapeKey][]Vec

// KickKey selects the wall-kick candidates of a rotation.
type KickKey struct {
	Kind     MinoKind
	From, To Rotation
}

// KickTable maps a rotation transition to its ordered kick offsets. The zero
// offset is implied and always tried first; it is never stored.
type KickTable map[KickKey][]Vec

// Tables bundles the shape and kick data the engine needs. A Tables value is
// immutable once loaded and may be shared between boards.
type Tables struct {
	Shapes ShapeTable
	Kicks  KickTable
}

// Shape returns the cell offsets of kind in rotation r.
func (t Tables) Shape(kind MinoKind, r Rotation) []Vec {
	return t.Shapes[ShapeKey{Kind: kind, Rotation: r}]
}

// KickOffsets returns the kick candidates for a transition, or nil when the
// table has none.
func (t Tables) KickOffsets(kind MinoKind, from, to Rotation) []Vec {
	return t.Kicks[KickKey{Kind: kind, From: from, To: to}]
}

// Cells returns the absolute matrix positions covered by m.
func (t Tables) Cells(m Mino) []Vec {
	shape := t.Shape(m.Kind, m.Rotation)
	cells := make([]Vec, len(shape))
	for i, off := range shape {
		cells[i] = m.Position.Add(off)
	}
	return cells
}
