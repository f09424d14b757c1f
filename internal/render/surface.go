package render

import (
	"image"
	"image/color"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/spacehole-rogue/skirmish/internal/voxel"
)

// Sprite is a palette-indexed image. Anchor is the pixel inside Image that
// lands on the draw position.
type Sprite struct {
	Image  *image.Paletted
	Anchor image.Point
}

// Size returns the sprite size in pixels.
func (s *Sprite) Size() image.Point { return s.Image.Rect.Size() }

// Bounds returns the screen rectangle covered when drawn at pos with scale.
func (s *Sprite) Bounds(pos Float2, scale float32) image.Rectangle {
	tl := pos.Sub(PointToFloat2(s.Anchor).Scale(scale))
	br := tl.Add(PointToFloat2(s.Size()).Scale(scale))
	return image.Rectangle{Min: floorPoint(tl), Max: ceilPoint(br)}
}

// Surface is the drawing backend. Positions are world-screen pixels; the
// surface applies the viewport scroll and zoom set by SetViewport. Scissor
// rectangles are in window pixels.
type Surface interface {
	SetPalette(bank PaletteSource)
	SetViewport(scroll Float2, zoom float32)
	EnableScissor(r image.Rectangle)
	DisableScissor()
	DrawSprite(s *Sprite, pos Float2, pal *PaletteReference, scale, alpha float32)
	DrawLine(a, b Float2, width float32, c color.RGBA)
	FillRect(tl, br Float2, c color.RGBA)
	DrawText(text string, pos Float2, c color.RGBA)
	Flush()
}

// VoxelRasterizer turns voxel models into indexed images. Rasterize is only
// valid between BeginFrame and EndFrame.
type VoxelRasterizer interface {
	BeginFrame()
	Rasterize(m *voxel.Model, t mgl32.Mat4) (*image.Paletted, image.Point, error)
	EndFrame()
}
