// Package voxel rasterizes palette-indexed voxel models into sprites for the
// per-frame voxel pre-pass.
package voxel

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrFrameClosed is returned when a model is rasterized outside BeginFrame/EndFrame.
var ErrFrameClosed = errors.New("voxel frame not open")

// Voxel is one filled cell of a model. Index is a palette index; 0 is never drawn.
type Voxel struct {
	X, Y, Z uint8
	Index   uint8
}

// Model is a small indexed voxel volume. Its origin is the bottom center of the volume.
type Model struct {
	Name   string
	SizeX  int
	SizeY  int
	SizeZ  int
	Voxels []Voxel
}

// Box builds a solid model of the given size, coloring the top layer with top
// and the rest with side.
func Box(name string, sx, sy, sz int, side, top uint8) *Model {
	m := &Model{Name: name, SizeX: sx, SizeY: sy, SizeZ: sz}
	for z := 0; z < sz; z++ {
		idx := side
		if z == sz-1 {
			idx = top
		}
		for y := 0; y < sy; y++ {
			for x := 0; x < sx; x++ {
				m.Voxels = append(m.Voxels, Voxel{X: uint8(x), Y: uint8(y), Z: uint8(z), Index: idx})
			}
		}
	}
	return m
}

// Transform builds the model matrix for a facing (radians, clockwise from north) and a pixel scale.
func Transform(facing float32, scale float32) mgl32.Mat4 {
	return mgl32.Scale3D(scale, scale, scale).Mul4(mgl32.HomogRotate3DZ(facing))
}

// Renderer is a CPU rasterizer. One frame of rasterization happens between
// BeginFrame and EndFrame; sprites produced in a frame belong to that frame only.
type Renderer struct {
	open     bool
	frame    uint64
	rendered int
}

// NewRenderer returns an idle rasterizer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// BeginFrame opens a rasterization window.
func (r *Renderer) BeginFrame() {
	r.open = true
	r.frame++
	r.rendered = 0
}

// EndFrame closes the rasterization window.
func (r *Renderer) EndFrame() {
	r.open = false
}

// Rendered returns how many models were rasterized in the current or last frame.
func (r *Renderer) Rendered() int { return r.rendered }

// Rasterize projects m through t and returns an indexed image plus the pixel
// position of the model origin inside that image.
//
// Projection matches the world transform: screen x = x, screen y = y - z.
func (r *Renderer) Rasterize(m *Model, t mgl32.Mat4) (*image.Paletted, image.Point, error) {
	if !r.open {
		return nil, image.Point{}, fmt.Errorf("rasterize %q: %w", m.Name, ErrFrameClosed)
	}
	r.rendered++

	type projected struct {
		x, y  float32
		depth float32
		index uint8
	}

	pts := make([]projected, 0, len(m.Voxels))
	minX, minY := float32(math.Inf(1)), float32(math.Inf(1))
	maxX, maxY := float32(math.Inf(-1)), float32(math.Inf(-1))
	cx := float32(m.SizeX) / 2
	cy := float32(m.SizeY) / 2
	for _, v := range m.Voxels {
		if v.Index == 0 {
			continue
		}
		local := mgl32.Vec4{float32(v.X) + 0.5 - cx, float32(v.Y) + 0.5 - cy, float32(v.Z) + 0.5, 1}
		p := t.Mul4x1(local)
		sx, sy := p.X(), p.Y()-p.Z()
		pts = append(pts, projected{x: sx, y: sy, depth: p.Y() + p.Z(), index: v.Index})
		minX = min(minX, sx)
		minY = min(minY, sy)
		maxX = max(maxX, sx)
		maxY = max(maxY, sy)
	}

	size := voxelPixelSize(t)
	if len(pts) == 0 {
		return image.NewPaletted(image.Rect(0, 0, 1, 1), indexPalette), image.Point{}, nil
	}

	x0 := int(math.Floor(float64(minX))) - size/2
	y0 := int(math.Floor(float64(minY))) - size/2
	x1 := int(math.Ceil(float64(maxX))) + size
	y1 := int(math.Ceil(float64(maxY))) + size
	img := image.NewPaletted(image.Rect(0, 0, x1-x0, y1-y0), indexPalette)
	depth := make([]float32, len(img.Pix))
	for i := range depth {
		depth[i] = float32(math.Inf(-1))
	}

	for _, p := range pts {
		px := int(math.Floor(float64(p.x))) - x0 - size/2
		py := int(math.Floor(float64(p.y))) - y0 - size/2
		for dy := 0; dy < size; dy++ {
			for dx := 0; dx < size; dx++ {
				x, y := px+dx, py+dy
				if x < 0 || y < 0 || x >= img.Rect.Dx() || y >= img.Rect.Dy() {
					continue
				}
				i := y*img.Stride + x
				if p.depth >= depth[i] {
					depth[i] = p.depth
					img.Pix[i] = p.index
				}
			}
		}
	}
	return img, image.Point{X: -x0, Y: -y0}, nil
}

// voxelPixelSize is the edge length, in pixels, of one voxel after t.
func voxelPixelSize(t mgl32.Mat4) int {
	s := t.Col(0).Vec3().Len()
	n := int(math.Round(float64(s)))
	if n < 1 {
		return 1
	}
	return n
}

var indexPalette = func() color.Palette {
	p := make(color.Palette, 256)
	for i := range p {
		p[i] = color.Gray{Y: uint8(i)}
	}
	return p
}()
