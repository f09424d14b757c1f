package render

import (
	"image"
	"math"

	"github.com/spacehole-rogue/skirmish/internal/world"
)

// Float2 is a continuous screen-space coordinate.
type Float2 struct {
	X, Y float32
}

// Add returns the component-wise sum.
func (f Float2) Add(o Float2) Float2 { return Float2{X: f.X + o.X, Y: f.Y + o.Y} }

// Sub returns the component-wise difference.
func (f Float2) Sub(o Float2) Float2 { return Float2{X: f.X - o.X, Y: f.Y - o.Y} }

// Scale multiplies both components by s.
func (f Float2) Scale(s float32) Float2 { return Float2{X: f.X * s, Y: f.Y * s} }

// Point converts to an integer point rounding half away from zero.
func (f Float2) Point() image.Point {
	return image.Point{X: int(math.Round(float64(f.X))), Y: int(math.Round(float64(f.Y)))}
}

// PointToFloat2 converts an integer point.
func PointToFloat2(p image.Point) Float2 { return Float2{X: float32(p.X), Y: float32(p.Y)} }

// Transform maps between world space and world-screen pixels. One map cell is
// TileSize pixels wide; elevation shifts a point up the screen.
//
// All conversions round half away from zero.
type Transform struct {
	TileSize int
}

// NewTransform returns a transform for tiles of tileSize pixels.
func NewTransform(tileSize int) Transform {
	return Transform{TileSize: tileSize}
}

func (t Transform) scale() float64 {
	return float64(t.TileSize) / world.TileScale
}

// ScreenPosition returns the sub-pixel screen position of p.
func (t Transform) ScreenPosition(p world.WPos) Float2 {
	s := t.scale()
	return Float2{X: float32(s * float64(p.X)), Y: float32(s * float64(p.Y-p.Z))}
}

// ScreenPxPosition returns the screen position of p rounded to whole pixels.
func (t Transform) ScreenPxPosition(p world.WPos) image.Point {
	s := t.scale()
	return image.Point{
		X: int(math.Round(s * float64(p.X))),
		Y: int(math.Round(s * float64(p.Y-p.Z))),
	}
}

// ScreenVector returns the sub-pixel screen displacement of v.
func (t Transform) ScreenVector(v world.WVec) Float2 {
	s := t.scale()
	return Float2{X: float32(s * float64(v.X)), Y: float32(s * float64(v.Y-v.Z))}
}

// ScreenPxOffset returns the screen displacement of v rounded to whole pixels.
func (t Transform) ScreenPxOffset(v world.WVec) image.Point {
	s := t.scale()
	return image.Point{
		X: int(math.Round(s * float64(v.X))),
		Y: int(math.Round(s * float64(v.Y-v.Z))),
	}
}

// ScreenZPosition returns the depth of p in screen units. offset breaks ties
// between items sharing a position.
func (t Transform) ScreenZPosition(p world.WPos, offset int) float32 {
	return float32(t.scale() * float64(int64(p.Y)+int64(p.Z)+int64(offset)))
}

// Position maps a screen pixel back to the ground plane (Z = 0).
func (t Transform) Position(px image.Point) world.WPos {
	inv := t.PixelUnits()
	return world.WPos{
		X: int32(math.Round(float64(px.X) * inv)),
		Y: int32(math.Round(float64(px.Y) * inv)),
	}
}

// PixelUnits is the number of world units covered by one screen pixel.
func (t Transform) PixelUnits() float64 {
	return world.TileScale / float64(t.TileSize)
}

// DepthKey is the integer painter's-order key of a position: further away
// (smaller Y) and lower (smaller Z) sort first.
func DepthKey(p world.WPos, offset int) int64 {
	return int64(p.Y) + int64(p.Z) + int64(offset)
}
