package render

import (
	"fmt"
	"image"

	"github.com/spacehole-rogue/skirmish/internal/voxel"
	"github.com/spacehole-rogue/skirmish/internal/world"
)

// DefaultTerrainPalette is the palette used by the terrain pass unless
// Settings names another one.
const DefaultTerrainPalette = "terrain"

// Settings are the user-facing render options.
type Settings struct {
	// ShowShellmap renders menu background worlds. When false a shellmap
	// frame stops after the palette refresh.
	ShowShellmap bool
	// ShowRollovers draws overlays for actors under the cursor.
	ShowRollovers  bool
	TerrainPalette string
}

// DeveloperMode holds the local player's debug switches. The same value is
// shared with whoever toggles it, so changes apply from the next frame.
type DeveloperMode struct {
	ShowDebugGeometry bool
}

// Options configure a WorldRenderer. Zero fields get defaults.
type Options struct {
	Settings Settings
	DevMode  *DeveloperMode
	Tileset  Tileset
	Voxels   VoxelRasterizer
	Bank     PaletteBank
}

// FrameStats summarize the last drawn frame.
type FrameStats struct {
	Frame        uint64
	Actors       int
	Renderables  int
	Effects      int
	TerrainCells int
	Overlays     int
}

// WorldRenderer draws one world. It is not safe for concurrent use; the
// caller must not mutate the world while Draw runs.
type WorldRenderer struct {
	world    World
	surface  Surface
	viewport *Viewport
	palettes *PaletteRegistry
	voxels   VoxelRasterizer
	terrain  *TerrainRenderer
	settings Settings
	devMode  *DeveloperMode

	frame       uint64
	renderables []Renderable
	stats       FrameStats
}

// NewWorldRenderer creates a renderer for w and lets every palette provider
// register its palettes.
func NewWorldRenderer(w World, s Surface, vp *Viewport, opts Options) (*WorldRenderer, error) {
	if opts.Bank == nil {
		opts.Bank = NewHardwarePalette()
	}
	if opts.Voxels == nil {
		opts.Voxels = voxel.NewRenderer()
	}
	if opts.DevMode == nil {
		opts.DevMode = &DeveloperMode{}
	}
	if opts.Settings.TerrainPalette == "" {
		opts.Settings.TerrainPalette = DefaultTerrainPalette
	}

	wr := &WorldRenderer{
		world:    w,
		surface:  s,
		viewport: vp,
		palettes: NewPaletteRegistry(opts.Bank),
		voxels:   opts.Voxels,
		settings: opts.Settings,
		devMode:  opts.DevMode,
	}

	for _, a := range wr.paletteActors() {
		for _, t := range a.Traits() {
			pp, ok := t.(PaletteProvider)
			if !ok {
				continue
			}
			if err := pp.InitPalette(wr); err != nil {
				return nil, fmt.Errorf("init palettes of actor %d: %w", a.ID(), err)
			}
		}
	}

	if opts.Tileset != nil {
		pal, err := wr.Palette(opts.Settings.TerrainPalette)
		if err != nil {
			return nil, fmt.Errorf("terrain: %w", err)
		}
		wr.terrain = NewTerrainRenderer(w.Map(), opts.Tileset, pal)
	}
	return wr, nil
}

func (wr *WorldRenderer) World() World               { return wr.world }
func (wr *WorldRenderer) Surface() Surface           { return wr.surface }
func (wr *WorldRenderer) Viewport() *Viewport        { return wr.viewport }
func (wr *WorldRenderer) Transform() Transform       { return wr.viewport.transform }
func (wr *WorldRenderer) Voxels() VoxelRasterizer    { return wr.voxels }
func (wr *WorldRenderer) Palettes() *PaletteRegistry { return wr.palettes }
func (wr *WorldRenderer) DevMode() *DeveloperMode    { return wr.devMode }
func (wr *WorldRenderer) Settings() Settings         { return wr.settings }

// Frame returns the number of Draw calls so far.
func (wr *WorldRenderer) Frame() uint64 { return wr.frame }

// Stats returns the statistics of the last frame.
func (wr *WorldRenderer) Stats() FrameStats { return wr.stats }

// Palette resolves a palette name. Unknown names are an error.
func (wr *WorldRenderer) Palette(name string) (*PaletteReference, error) {
	return wr.palettes.Palette(name)
}

// AddPalette registers a palette. Only valid while palette providers run or
// before the first frame.
func (wr *WorldRenderer) AddPalette(name string, p Palette, allowModifiers bool) error {
	return wr.palettes.AddPalette(name, p, allowModifiers)
}

// ScreenPosition is Transform().ScreenPosition.
func (wr *WorldRenderer) ScreenPosition(p world.WPos) Float2 {
	return wr.viewport.transform.ScreenPosition(p)
}

// ScreenPxPosition is Transform().ScreenPxPosition.
func (wr *WorldRenderer) ScreenPxPosition(p world.WPos) image.Point {
	return wr.viewport.transform.ScreenPxPosition(p)
}

// paletteActors returns the world actor followed by every other actor.
func (wr *WorldRenderer) paletteActors() []Actor {
	all := wr.world.Actors()
	out := make([]Actor, 0, len(all)+1)
	wa := wr.world.WorldActor()
	if wa != nil {
		out = append(out, wa)
	}
	for _, a := range all {
		if wa != nil && a.ID() == wa.ID() {
			continue
		}
		out = append(out, a)
	}
	return out
}

// RefreshPalette rebuilds the modifiable palettes from the current world
// state and uploads the bank.
func (wr *WorldRenderer) RefreshPalette() {
	var mods []PaletteModifier
	for _, a := range wr.paletteActors() {
		if a.Destroyed() {
			continue
		}
		for _, t := range a.Traits() {
			if m, ok := t.(PaletteModifier); ok {
				mods = append(mods, m)
			}
		}
	}
	wr.palettes.Refresh(mods, wr.surface)
}

// Draw renders one frame. Any error aborts the frame.
func (wr *WorldRenderer) Draw() error {
	wr.frame++
	defer func() { wr.renderables = nil }()

	if err := wr.draw(); err != nil {
		return fmt.Errorf("frame %d: %w", wr.frame, err)
	}
	Logger().Debug("frame drawn",
		"frame", wr.stats.Frame,
		"actors", wr.stats.Actors,
		"renderables", wr.stats.Renderables,
		"effects", wr.stats.Effects,
		"terrain", wr.stats.TerrainCells,
		"overlays", wr.stats.Overlays)
	return nil
}

func (wr *WorldRenderer) draw() error {
	wr.stats = FrameStats{Frame: wr.frame}
	wr.RefreshPalette()

	if wr.world.Type() == WorldTypeShellmap && !wr.settings.ShowShellmap {
		return nil
	}

	fs, err := wr.collect()
	if err != nil {
		return err
	}
	SortRenderables(fs.world)
	wr.renderables = append(fs.world, fs.effects...)
	wr.stats.Actors = fs.actors
	wr.stats.Renderables = len(wr.renderables)
	wr.stats.Effects = len(fs.effects)

	vp := wr.viewport
	wr.surface.SetViewport(vp.TopLeftPx(), vp.Zoom())

	if err := wr.prepare(wr.renderables); err != nil {
		return err
	}

	wr.surface.EnableScissor(vp.ScissorBounds())
	if wr.terrain != nil {
		wr.stats.TerrainCells = wr.terrain.Draw(wr)
	}
	wr.surface.Flush()

	for _, r := range wr.renderables {
		r.Render(wr)
	}

	for _, a := range wr.world.Actors() {
		if !a.IsInWorld() || a.Destroyed() {
			continue
		}
		for _, t := range a.Traits() {
			if pr, ok := t.(PostRenderer); ok {
				pr.RenderAfterWorld(a, wr)
			}
		}
	}

	if og := wr.world.OrderGenerator(); og != nil {
		og.RenderAfterWorld(wr, wr.world)
	}

	shroud := wr.world.RenderShroud()
	for _, a := range wr.paletteActors() {
		for _, t := range a.Traits() {
			if sr, ok := t.(ShroudRenderer); ok {
				sr.RenderShroud(wr, shroud)
			}
		}
	}

	if wr.devMode.ShowDebugGeometry {
		for _, r := range wr.renderables {
			if dg, ok := r.(DebugGeometryRenderer); ok {
				dg.RenderDebugGeometry(wr)
			}
		}
	}

	wr.surface.DisableScissor()

	if err := wr.drawOverlays(); err != nil {
		return err
	}
	wr.surface.Flush()
	return nil
}

// prepare runs the voxel pre-pass over r.
func (wr *WorldRenderer) prepare(r []Renderable) error {
	wr.voxels.BeginFrame()
	defer wr.voxels.EndFrame()
	for _, item := range r {
		pr, ok := item.(PreRenderer)
		if !ok {
			continue
		}
		if err := pr.BeforeRender(wr); err != nil {
			return fmt.Errorf("prepare renderable: %w", err)
		}
	}
	return nil
}

// drawOverlays draws selection decorations followed by rollover
// decorations, outside the scissor region.
func (wr *WorldRenderer) drawOverlays() error {
	var overlays []Renderable
	selected := make(map[uint32]struct{})
	for _, a := range wr.world.Selection() {
		if a.Destroyed() {
			continue
		}
		selected[a.ID()] = struct{}{}
		for _, t := range a.Traits() {
			if sd, ok := t.(SelectionDecorator); ok {
				overlays = append(overlays, sd.RenderSelection(a, wr)...)
			}
		}
	}

	if wr.settings.ShowRollovers {
		for _, a := range wr.world.Rollover() {
			if a.Destroyed() {
				continue
			}
			if _, ok := selected[a.ID()]; ok {
				continue
			}
			for _, t := range a.Traits() {
				if rd, ok := t.(RolloverDecorator); ok {
					overlays = append(overlays, rd.RenderRollover(a, wr)...)
				}
			}
		}
	}

	if len(overlays) == 0 {
		return nil
	}
	if err := wr.prepare(overlays); err != nil {
		return err
	}
	for _, r := range overlays {
		r.Render(wr)
	}
	wr.stats.Overlays = len(overlays)
	return nil
}
