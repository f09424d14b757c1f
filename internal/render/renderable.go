package render

import (
	"image"
	"image/color"

	"github.com/spacehole-rogue/skirmish/internal/voxel"
	"github.com/spacehole-rogue/skirmish/internal/world"
)

// Renderable is one frame-local draw instruction. Renderables are created
// during collection and dropped when the frame ends.
type Renderable interface {
	Pos() world.WPos
	ZOffset() int
	Render(wr *WorldRenderer)
}

// PreRenderer is implemented by renderables that need the voxel pre-pass.
type PreRenderer interface {
	BeforeRender(wr *WorldRenderer) error
}

// DebugGeometryRenderer is implemented by renderables that can outline themselves.
type DebugGeometryRenderer interface {
	RenderDebugGeometry(wr *WorldRenderer)
}

var (
	debugSpriteColor = color.RGBA{255, 0, 0, 255}
	debugVoxelColor  = color.RGBA{0, 255, 255, 255}
	debugAnchorColor = color.RGBA{255, 255, 0, 255}
)

// SpriteRenderable draws an indexed sprite.
type SpriteRenderable struct {
	sprite  *Sprite
	pos     world.WPos
	offset  world.WVec
	zOffset int
	palette *PaletteReference
	scale   float32
	alpha   float32
}

// NewSpriteRenderable creates an opaque sprite renderable.
func NewSpriteRenderable(s *Sprite, pos world.WPos, offset world.WVec, zOffset int, pal *PaletteReference, scale float32) SpriteRenderable {
	return SpriteRenderable{sprite: s, pos: pos, offset: offset, zOffset: zOffset, palette: pal, scale: scale, alpha: 1}
}

func (r SpriteRenderable) Pos() world.WPos            { return r.pos.Add(r.offset) }
func (r SpriteRenderable) ZOffset() int               { return r.zOffset }
func (r SpriteRenderable) Palette() *PaletteReference { return r.palette }

// WithAlpha returns a copy drawn with alpha a.
func (r SpriteRenderable) WithAlpha(a float32) SpriteRenderable {
	r.alpha = a
	return r
}

func (r SpriteRenderable) Render(wr *WorldRenderer) {
	wr.Surface().DrawSprite(r.sprite, wr.ScreenPosition(r.Pos()), r.palette, r.scale, r.alpha)
}

// ScreenBounds returns the world-screen rectangle covered by the sprite.
func (r SpriteRenderable) ScreenBounds(wr *WorldRenderer) image.Rectangle {
	return r.sprite.Bounds(wr.ScreenPosition(r.Pos()), r.scale)
}

func (r SpriteRenderable) RenderDebugGeometry(wr *WorldRenderer) {
	outline(wr, r.ScreenBounds(wr), debugSpriteColor)
	anchor := wr.ScreenPosition(r.Pos())
	wr.Surface().DrawLine(anchor.Add(Float2{X: -2}), anchor.Add(Float2{X: 2}), 1, debugAnchorColor)
}

// VoxelRenderable draws a voxel model. The model is rasterized during the
// voxel pre-pass; the resulting sprite lives only for the current frame.
type VoxelRenderable struct {
	model   *voxel.Model
	pos     world.WPos
	zOffset int
	facing  float32
	scale   float32
	palette *PaletteReference

	sprite *Sprite
}

// NewVoxelRenderable creates a voxel renderable facing the given angle (radians).
func NewVoxelRenderable(m *voxel.Model, pos world.WPos, zOffset int, facing, scale float32, pal *PaletteReference) *VoxelRenderable {
	return &VoxelRenderable{model: m, pos: pos, zOffset: zOffset, facing: facing, scale: scale, palette: pal}
}

func (r *VoxelRenderable) Pos() world.WPos { return r.pos }
func (r *VoxelRenderable) ZOffset() int    { return r.zOffset }

func (r *VoxelRenderable) BeforeRender(wr *WorldRenderer) error {
	img, anchor, err := wr.Voxels().Rasterize(r.model, voxel.Transform(r.facing, r.scale))
	if err != nil {
		return err
	}
	r.sprite = &Sprite{Image: img, Anchor: anchor}
	return nil
}

func (r *VoxelRenderable) Render(wr *WorldRenderer) {
	if r.sprite == nil {
		return
	}
	wr.Surface().DrawSprite(r.sprite, wr.ScreenPosition(r.pos), r.palette, 1, 1)
}

func (r *VoxelRenderable) RenderDebugGeometry(wr *WorldRenderer) {
	if r.sprite == nil {
		return
	}
	outline(wr, r.sprite.Bounds(wr.ScreenPosition(r.pos), 1), debugVoxelColor)
}

// LineRenderable draws a polyline through world positions.
type LineRenderable struct {
	points  []world.WPos
	width   float32
	color   color.RGBA
	zOffset int
}

// NewLineRenderable creates a polyline. It needs at least two points to draw.
func NewLineRenderable(points []world.WPos, width float32, c color.RGBA, zOffset int) LineRenderable {
	return LineRenderable{points: points, width: width, color: c, zOffset: zOffset}
}

func (r LineRenderable) Pos() world.WPos {
	if len(r.points) == 0 {
		return world.WPos{}
	}
	return r.points[0]
}

func (r LineRenderable) ZOffset() int { return r.zOffset }

func (r LineRenderable) Render(wr *WorldRenderer) {
	for i := 1; i < len(r.points); i++ {
		wr.Surface().DrawLine(wr.ScreenPosition(r.points[i-1]), wr.ScreenPosition(r.points[i]), r.width, r.color)
	}
}

// RectRenderable draws a pixel rectangle anchored on a world position, such
// as a selection box or a health bar.
type RectRenderable struct {
	pos    world.WPos
	rect   image.Rectangle // relative to the screen position of pos
	color  color.RGBA
	filled bool
}

// NewRectRenderable creates a rectangle outline, or a filled box when filled is set.
func NewRectRenderable(pos world.WPos, rect image.Rectangle, c color.RGBA, filled bool) RectRenderable {
	return RectRenderable{pos: pos, rect: rect, color: c, filled: filled}
}

func (r RectRenderable) Pos() world.WPos { return r.pos }
func (r RectRenderable) ZOffset() int    { return 0 }

func (r RectRenderable) Render(wr *WorldRenderer) {
	rect := r.rect.Add(wr.ScreenPxPosition(r.pos))
	if r.filled {
		wr.Surface().FillRect(PointToFloat2(rect.Min), PointToFloat2(rect.Max), r.color)
		return
	}
	outline(wr, rect, r.color)
}

// TextRenderable draws a short label offset in pixels from a world position.
type TextRenderable struct {
	pos    world.WPos
	offset image.Point
	text   string
	color  color.RGBA
}

// NewTextRenderable creates a text label.
func NewTextRenderable(pos world.WPos, offset image.Point, text string, c color.RGBA) TextRenderable {
	return TextRenderable{pos: pos, offset: offset, text: text, color: c}
}

func (r TextRenderable) Pos() world.WPos { return r.pos }
func (r TextRenderable) ZOffset() int    { return 0 }
func (r TextRenderable) Text() string    { return r.text }

func (r TextRenderable) Render(wr *WorldRenderer) {
	at := wr.ScreenPxPosition(r.pos).Add(r.offset)
	wr.Surface().DrawText(r.text, PointToFloat2(at), r.color)
}

func outline(wr *WorldRenderer, r image.Rectangle, c color.RGBA) {
	s := wr.Surface()
	tl := PointToFloat2(r.Min)
	br := PointToFloat2(r.Max)
	tr := Float2{X: br.X, Y: tl.Y}
	bl := Float2{X: tl.X, Y: br.Y}
	s.DrawLine(tl, tr, 1, c)
	s.DrawLine(tr, br, 1, c)
	s.DrawLine(br, bl, 1, c)
	s.DrawLine(bl, tl, 1, c)
}
