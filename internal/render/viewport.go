package render

import (
	"image"
	"math"

	"github.com/spacehole-rogue/skirmish/internal/world"
)

const (
	DefaultMinZoom = 0.25
	DefaultMaxZoom = 4
)

// Viewport tracks the visible part of the world. It is mutated by camera
// controls between frames and only read while a frame is drawn.
type Viewport struct {
	transform Transform
	window    image.Point
	mapBounds image.Rectangle

	scroll  Float2 // world-screen pixel at the window's top-left corner
	zoom    float32
	minZoom float32
	maxZoom float32
}

// NewViewport creates a viewport over m for a window of the given size.
func NewViewport(t Transform, m *world.Map, window image.Point, zoom float32) *Viewport {
	vp := &Viewport{
		transform: t,
		window:    window,
		mapBounds: image.Rectangle{
			Min: t.ScreenPxPosition(m.TopLeft()),
			Max: t.ScreenPxPosition(m.BottomRight()),
		},
		zoom:    1,
		minZoom: DefaultMinZoom,
		maxZoom: DefaultMaxZoom,
	}
	vp.SetZoom(zoom)
	return vp
}

// SetZoomLimits changes the zoom clamp range. Non-positive limits are ignored.
func (vp *Viewport) SetZoomLimits(minZoom, maxZoom float32) {
	if minZoom <= 0 || maxZoom < minZoom {
		Logger().Warn("ignoring zoom limits", "min", minZoom, "max", maxZoom)
		return
	}
	vp.minZoom, vp.maxZoom = minZoom, maxZoom
	vp.SetZoom(vp.zoom)
}

// Zoom returns the current zoom factor (always > 0).
func (vp *Viewport) Zoom() float32 { return vp.zoom }

// SetZoom changes the zoom keeping the view center fixed.
func (vp *Viewport) SetZoom(z float32) {
	if math.IsNaN(float64(z)) {
		return
	}
	center := vp.centerPx()
	vp.zoom = min(max(z, vp.minZoom), vp.maxZoom)
	vp.scroll = center.Sub(vp.halfWindow())
	vp.clamp()
}

// Resize updates the window size in pixels.
func (vp *Viewport) Resize(w, h int) {
	center := vp.centerPx()
	vp.window = image.Point{X: w, Y: h}
	vp.scroll = center.Sub(vp.halfWindow())
	vp.clamp()
}

// WindowSize returns the window size in pixels.
func (vp *Viewport) WindowSize() image.Point { return vp.window }

// Center scrolls so that p is in the middle of the window.
func (vp *Viewport) Center(p world.WPos) {
	vp.scroll = vp.transform.ScreenPosition(p).Sub(vp.halfWindow())
	vp.clamp()
}

// Scroll moves the view by delta window pixels.
func (vp *Viewport) Scroll(delta Float2) {
	vp.scroll = vp.scroll.Add(delta.Scale(1 / vp.zoom))
	vp.clamp()
}

// TopLeftPx returns the world-screen pixel shown at the window's top-left corner.
func (vp *Viewport) TopLeftPx() Float2 { return vp.scroll }

// BottomRightPx returns the world-screen pixel shown at the window's bottom-right corner.
func (vp *Viewport) BottomRightPx() Float2 {
	return vp.scroll.Add(PointToFloat2(vp.window).Scale(1 / vp.zoom))
}

// TopLeft returns the ground position at the top-left of the view.
func (vp *Viewport) TopLeft() world.WPos {
	return vp.transform.Position(floorPoint(vp.TopLeftPx()))
}

// BottomRight returns the ground position at the bottom-right of the view.
func (vp *Viewport) BottomRight() world.WPos {
	return vp.transform.Position(ceilPoint(vp.BottomRightPx()))
}

// VisibleBounds returns the visible rectangle in world-screen pixels.
func (vp *Viewport) VisibleBounds() image.Rectangle {
	return image.Rectangle{Min: floorPoint(vp.TopLeftPx()), Max: ceilPoint(vp.BottomRightPx())}
}

// MapBounds returns the map rectangle in world-screen pixels.
func (vp *Viewport) MapBounds() image.Rectangle { return vp.mapBounds }

// ScissorBounds returns the visible part of the map in window pixels.
func (vp *Viewport) ScissorBounds() image.Rectangle {
	r := vp.mapBounds.Intersect(vp.VisibleBounds())
	if r.Empty() {
		return image.Rectangle{}
	}
	tl := PointToFloat2(r.Min).Sub(vp.scroll).Scale(vp.zoom)
	br := PointToFloat2(r.Max).Sub(vp.scroll).Scale(vp.zoom)
	out := image.Rectangle{Min: floorPoint(tl), Max: ceilPoint(br)}
	return out.Intersect(image.Rectangle{Max: vp.window})
}

// WorldToViewPx converts a world-screen pixel to a window pixel.
func (vp *Viewport) WorldToViewPx(p image.Point) image.Point {
	return PointToFloat2(p).Sub(vp.scroll).Scale(vp.zoom).Point()
}

// ViewToWorldPx converts a window pixel to a world-screen pixel.
func (vp *Viewport) ViewToWorldPx(v image.Point) image.Point {
	return PointToFloat2(v).Scale(1 / vp.zoom).Add(vp.scroll).Point()
}

// ViewToWorld converts a window pixel to a ground position.
func (vp *Viewport) ViewToWorld(v image.Point) world.WPos {
	return vp.transform.Position(vp.ViewToWorldPx(v))
}

func (vp *Viewport) halfWindow() Float2 {
	return PointToFloat2(vp.window).Scale(0.5 / vp.zoom)
}

func (vp *Viewport) centerPx() Float2 {
	return vp.scroll.Add(vp.halfWindow())
}

// clamp keeps the view center inside the map.
func (vp *Viewport) clamp() {
	half := vp.halfWindow()
	c := vp.scroll.Add(half)
	c.X = min(max(c.X, float32(vp.mapBounds.Min.X)), float32(vp.mapBounds.Max.X))
	c.Y = min(max(c.Y, float32(vp.mapBounds.Min.Y)), float32(vp.mapBounds.Max.Y))
	vp.scroll = c.Sub(half)
}

func floorPoint(f Float2) image.Point {
	return image.Point{X: int(math.Floor(float64(f.X))), Y: int(math.Floor(float64(f.Y)))}
}

func ceilPoint(f Float2) image.Point {
	return image.Point{X: int(math.Ceil(float64(f.X))), Y: int(math.Ceil(float64(f.Y)))}
}
