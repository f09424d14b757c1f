package world

import "fmt"

// TileScale is the number of world units spanned by one map cell on each axis.
const TileScale = 1024

// HeightStep is the world-unit elevation of one terrain height level.
const HeightStep = 512

// WPos is a fixed-point world position. Z is elevation above the ground plane.
type WPos struct {
	X, Y, Z int32
}

// WVec is a fixed-point world displacement.
type WVec struct {
	X, Y, Z int32
}

// CPos is an integer map cell coordinate.
type CPos struct {
	X, Y int
}

// NewWPos is a shorthand constructor used heavily by tests and map code.
func NewWPos(x, y, z int32) WPos { return WPos{X: x, Y: y, Z: z} }

// Add offsets the position by v.
func (p WPos) Add(v WVec) WPos {
	return WPos{X: p.X + v.X, Y: p.Y + v.Y, Z: p.Z + v.Z}
}

// Sub returns the vector from q to p.
func (p WPos) Sub(q WPos) WVec {
	return WVec{X: p.X - q.X, Y: p.Y - q.Y, Z: p.Z - q.Z}
}

// Cell returns the map cell containing the ground projection of p.
func (p WPos) Cell() CPos {
	return CPos{X: floorDiv(int(p.X), TileScale), Y: floorDiv(int(p.Y), TileScale)}
}

func (p WPos) String() string { return fmt.Sprintf("%d,%d,%d", p.X, p.Y, p.Z) }

// Add returns the sum of two vectors.
func (v WVec) Add(o WVec) WVec {
	return WVec{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

// Scale multiplies the vector by n/d using integer math.
func (v WVec) Scale(n, d int32) WVec {
	return WVec{X: v.X * n / d, Y: v.Y * n / d, Z: v.Z * n / d}
}

// LengthSquared is the squared euclidean length.
func (v WVec) LengthSquared() int64 {
	return int64(v.X)*int64(v.X) + int64(v.Y)*int64(v.Y) + int64(v.Z)*int64(v.Z)
}

// CenterOfCell returns the ground-level center of a cell.
func CenterOfCell(c CPos) WPos {
	return WPos{
		X: int32(c.X*TileScale + TileScale/2),
		Y: int32(c.Y*TileScale + TileScale/2),
	}
}

// TopLeftOfCell returns the ground-level top-left corner of a cell.
func TopLeftOfCell(c CPos) WPos {
	return WPos{X: int32(c.X * TileScale), Y: int32(c.Y * TileScale)}
}

// Lerp interpolates between a and b at t/total.
func Lerp(a, b WPos, t, total int32) WPos {
	if total == 0 {
		return b
	}
	return a.Add(b.Sub(a).Scale(t, total))
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
