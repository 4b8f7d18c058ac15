// Package board implements the falling-block playfield: the matrix and its
// collision rules, the 7-bag piece queue, the hold slot, the per-tick
// controller snapshot and the update engine that ties them together.
//
// Everything here is pure and deterministic. Given the same starting Board,
// the same Tables and the same sequence of Controller values and time deltas,
// Update produces bit-identical boards. The package does no I/O and keeps no
// global state; several boards can be simulated side by side.
package board

import "fmt"

// MinoKind identifies a piece type or the contents of a matrix cell.
// The zero value E marks an empty cell.
type MinoKind uint8

const (
	E MinoKind = iota // empty
	T
	O
	L
	J
	S
	Z
	I
	G // garbage
)

var kindNames = [...]string{"E", "T", "O", "L", "J", "S", "Z", "I", "G"}

// String returns the single-letter name of the kind.
func (k MinoKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("MinoKind(%d)", uint8(k))
}

// Standard reports whether k is one of the seven playable pieces.
func (k MinoKind) Standard() bool {
	return k >= T && k <= I
}

// StandardKinds lists the seven playable pieces.
func StandardKinds() []MinoKind {
	return []MinoKind{T, O, L, J, S, Z, I}
}

// ParseMinoKind converts a single-letter name back into a MinoKind.
func ParseMinoKind(s string) (MinoKind, error) {
	for i, name := range kindNames {
		if name == s {
			return MinoKind(i), nil
		}
	}
	return E, fmt.Errorf("board: unknown mino kind %q", s)
}

// Rotation is one of the four orientations of a piece.
type Rotation uint8

const (
	Up Rotation = iota
	Right
	Down
	Left
)

var rotationNames = [...]string{"up", "right", "down", "left"}

func (r Rotation) String() string {
	if int(r) < len(rotationNames) {
		return rotationNames[r]
	}
	return fmt.Sprintf("Rotation(%d)", uint8(r))
}

// ParseRotation converts a lower-case rotation name into a Rotation.
func ParseRotation(s string) (Rotation, error) {
	for i, name := range rotationNames {
		if name == s {
			return Rotation(i), nil
		}
	}
	return Up, fmt.Errorf("board: unknown rotation %q", s)
}

// RotateRight turns the piece a quarter turn clockwise.
func (r Rotation) RotateRight() Rotation {
	return (r + 1) % 4
}

// RotateLeft turns the piece a quarter turn counter-clockwise.
func (r Rotation) RotateLeft() Rotation {
	return (r + 3) % 4
}

// Rotate180 flips the piece to the opposite orientation.
func (r Rotation) Rotate180() Rotation {
	return (r + 2) % 4
}

// Vec is an integer offset or position on the matrix. Y grows upward:
// row 0 is the floor.
type Vec struct {
	X, Y int
}

// V is shorthand for Vec{X: x, Y: y}.
func V(x, y int) Vec {
	return Vec{X: x, Y: y}
}

// Add returns the component-wise sum.
func (v Vec) Add(o Vec) Vec {
	return Vec{X: v.X + o.X, Y: v.Y + o.Y}
}

func (v Vec) String() string {
	return fmt.Sprintf("(%d,%d)", v.X, v.Y)
}

// Mino is a piece placed on the matrix.
type Mino struct {
	Kind     MinoKind
	Position Vec
	Rotation Rotation
}

// Moved returns a copy of m translated by d.
func (m Mino) Moved(d Vec) Mino {
	m.Position = m.Position.Add(d)
	return m
}

// Rotated returns a copy of m turned to r and translated by kick.
func (m Mino) Rotated(r Rotation, kick Vec) Mino {
	m.Rotation = r
	m.Position = m.Position.Add(kick)
	return m
}
