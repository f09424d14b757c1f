package game

import (
	"cmp"
	"image"
	"slices"

	"github.com/spacehole-rogue/skirmish/internal/render"
	"github.com/spacehole-rogue/skirmish/internal/world"
)

// ScreenMap is a spatial index of actor screen bounds, binned in
// world-screen pixels.
type ScreenMap struct {
	transform render.Transform
	binSize   int
	cols      int
	rows      int
	bins      [][]*Actor
	bounds    map[uint32]image.Rectangle
}

// NewScreenMap creates an index over m with square bins of binSize pixels.
func NewScreenMap(t render.Transform, m *world.Map, binSize int) *ScreenMap {
	br := t.ScreenPxPosition(m.BottomRight())
	cols := max(1, (br.X+binSize-1)/binSize)
	rows := max(1, (br.Y+binSize-1)/binSize)
	return &ScreenMap{
		transform: t,
		binSize:   binSize,
		cols:      cols,
		rows:      rows,
		bins:      make([][]*Actor, cols*rows),
		bounds:    make(map[uint32]image.Rectangle),
	}
}

// Add indexes a, replacing any previous entry.
func (sm *ScreenMap) Add(a *Actor) {
	sm.Remove(a)
	b := a.ScreenBounds(sm.transform)
	sm.bounds[a.id] = b
	sm.forBins(b, func(i int) {
		sm.bins[i] = append(sm.bins[i], a)
	})
}

// Update re-indexes a after it moved.
func (sm *ScreenMap) Update(a *Actor) {
	if b, ok := sm.bounds[a.id]; ok && b == a.ScreenBounds(sm.transform) {
		return
	}
	sm.Add(a)
}

// Remove drops a from the index.
func (sm *ScreenMap) Remove(a *Actor) {
	b, ok := sm.bounds[a.id]
	if !ok {
		return
	}
	sm.forBins(b, func(i int) {
		sm.bins[i] = slices.DeleteFunc(sm.bins[i], func(o *Actor) bool { return o.id == a.id })
	})
	delete(sm.bounds, a.id)
}

// Len returns the number of indexed actors.
func (sm *ScreenMap) Len() int { return len(sm.bounds) }

// InBox returns the actors whose bounds intersect r, ordered by ID.
func (sm *ScreenMap) InBox(r image.Rectangle) []*Actor {
	seen := make(map[uint32]struct{})
	var out []*Actor
	sm.forBins(r, func(i int) {
		for _, a := range sm.bins[i] {
			if _, ok := seen[a.id]; ok {
				continue
			}
			seen[a.id] = struct{}{}
			if sm.bounds[a.id].Overlaps(r) {
				out = append(out, a)
			}
		}
	})
	slices.SortFunc(out, byID)
	return out
}

// At returns the actors whose bounds contain the world-screen pixel p,
// nearest (largest depth) first.
func (sm *ScreenMap) At(p image.Point) []*Actor {
	out := sm.InBox(image.Rectangle{Min: p, Max: p.Add(image.Pt(1, 1))})
	slices.SortStableFunc(out, func(a, b *Actor) int {
		return cmp.Compare(render.DepthKey(b.CenterPosition(), 0), render.DepthKey(a.CenterPosition(), 0))
	})
	return out
}

func (sm *ScreenMap) forBins(r image.Rectangle, fn func(i int)) {
	if r.Empty() {
		return
	}
	x0 := clampInt(floorDiv(r.Min.X, sm.binSize), 0, sm.cols-1)
	y0 := clampInt(floorDiv(r.Min.Y, sm.binSize), 0, sm.rows-1)
	x1 := clampInt(floorDiv(r.Max.X-1, sm.binSize), 0, sm.cols-1)
	y1 := clampInt(floorDiv(r.Max.Y-1, sm.binSize), 0, sm.rows-1)
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			fn(y*sm.cols + x)
		}
	}
}

func byID(a, b *Actor) int { return cmp.Compare(a.id, b.id) }

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func clampInt(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
