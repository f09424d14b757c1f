package render

import (
	"cmp"
	"slices"
)

// SortRenderables orders r back to front in place. Items with equal depth
// keep their collection order, so identical input always gives identical output.
func SortRenderables(r []Renderable) {
	slices.SortStableFunc(r, compareDepth)
}

func compareDepth(a, b Renderable) int {
	return cmp.Compare(DepthKey(a.Pos(), a.ZOffset()), DepthKey(b.Pos(), b.ZOffset()))
}
