package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"log/slog"
	"math"
	"os"
	"path"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/spacehole-rogue/skirmish/assets"
	"github.com/spacehole-rogue/skirmish/internal/config"
	"github.com/spacehole-rogue/skirmish/internal/game"
	"github.com/spacehole-rogue/skirmish/internal/glyph"
	"github.com/spacehole-rogue/skirmish/internal/graphics"
	"github.com/spacehole-rogue/skirmish/internal/render"
	"github.com/spacehole-rogue/skirmish/internal/tileset"
	"github.com/spacehole-rogue/skirmish/internal/world"
)

const (
	scrollSpeed = 8   // window pixels per tick
	zoomStep    = 1.1 // per wheel notch
	dragSlop    = 4   // window pixels before a click becomes a box
	fireDamage  = 25  // per shell
	commsMax    = 6   // max visible messages
	hudMargin   = 8
	lineHeight  = glyph.Height
)

// army is spawned around each player's start cell.
var army = []struct {
	kind   game.UnitKind
	dx, dy int
}{
	{game.UnitDepot, 0, 0},
	{game.UnitTank, 2, -1},
	{game.UnitTank, 2, 1},
	{game.UnitHarvester, -2, 1},
	{game.UnitInfantry, 1, 2},
	{game.UnitInfantry, -1, 2},
	{game.UnitScout, 0, -2},
}

// Game is the Ebitengine game struct. It owns rendering and input.
// All gameplay state lives in sim.
type Game struct {
	cfg      config.Config
	log      *slog.Logger
	sim      *game.Sim
	surface  *graphics.Surface
	viewport *render.Viewport
	renderer *render.WorldRenderer
	devMode  *render.DeveloperMode

	dragFrom image.Point
	dragging bool
	err      error
}

func NewGame(cfg config.Config, log *slog.Logger) (*Game, error) {
	m, spawns, err := loadMap(cfg.Map)
	if err != nil {
		return nil, err
	}

	atlas := glyph.NewAtlas()
	art := tileset.New(atlas)
	t := render.NewTransform(cfg.Render.TileSize)
	sim := game.NewSim(m, art, t)

	for _, pc := range cfg.Palettes {
		c, err := config.ParseColor(pc.Remap)
		if err != nil {
			return nil, err
		}
		sim.AddPalette(game.PaletteFromRemap{Name: pc.Name, Remap: c, Modifiable: pc.Modifiable})
	}

	var home world.CPos
	for i, pc := range cfg.Players {
		c, err := config.ParseColor(pc.Color)
		if err != nil {
			return nil, err
		}
		p := sim.AddPlayer(pc.Name, c, pc.Local)
		start := spawns[i%len(spawns)]
		if pc.Local {
			home = start
		}
		for _, u := range army {
			sim.Spawn(u.kind, p, m.ClampCell(world.CPos{X: start.X + u.dx, Y: start.Y + u.dy}))
		}
	}

	devMode := &render.DeveloperMode{}
	if local := sim.LocalPlayer(); local != nil {
		devMode = local.DevMode
		local.Shroud.Disable(cfg.Debug.DisableShroud)
	}
	devMode.ShowDebugGeometry = cfg.Debug.Geometry

	window := image.Pt(cfg.Window.Width, cfg.Window.Height)
	vp := render.NewViewport(t, m, window, cfg.Render.Zoom)
	vp.SetZoomLimits(cfg.Render.MinZoom, cfg.Render.MaxZoom)
	vp.Center(m.CenterOfCell(home))

	surface := graphics.NewSurface(atlas)
	wr, err := render.NewWorldRenderer(sim, surface, vp, render.Options{
		Settings: render.Settings{
			ShowShellmap:   cfg.Render.ShowShellmap,
			ShowRollovers:  cfg.Render.ShowRollovers,
			TerrainPalette: cfg.Render.TerrainPalette,
		},
		DevMode: devMode,
		Tileset: art,
	})
	if err != nil {
		return nil, fmt.Errorf("create renderer: %w", err)
	}

	log.Info("skirmish ready", "map", m.Name, "size", fmt.Sprintf("%dx%d", m.Width, m.Height), "players", len(cfg.Players))
	return &Game{
		cfg:      cfg,
		log:      log,
		sim:      sim,
		surface:  surface,
		viewport: vp,
		renderer: wr,
		devMode:  devMode,
	}, nil
}

// loadMap returns the configured map and its start cells.
func loadMap(mc config.Map) (*world.Map, []world.CPos, error) {
	if mc.File != "" {
		data, err := assets.Maps.ReadFile(path.Join("maps", mc.File))
		if err != nil {
			return nil, nil, fmt.Errorf("load map: %w", err)
		}
		layout, err := world.LoadMapLayout(data)
		if err != nil {
			return nil, nil, fmt.Errorf("parse map %s: %w", mc.File, err)
		}
		spawns := layout.SpawnCells()
		if len(spawns) == 0 {
			return nil, nil, fmt.Errorf("map %s has no spawn cells", mc.File)
		}
		return layout.ToMap(), spawns, nil
	}

	terrain, ok := world.ParseTerrain(mc.Terrain)
	if !ok {
		return nil, nil, fmt.Errorf("unknown terrain %q", mc.Terrain)
	}
	m := world.GenerateMap("Skirmish", mc.Seed, mc.Width, mc.Height, terrain)
	return m, []world.CPos{{X: 3, Y: m.Height - 4}, {X: m.Width - 4, Y: 3}}, nil
}

func (g *Game) Update() error {
	if g.err != nil {
		return g.err
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF1) {
		g.devMode.ShowDebugGeometry = !g.devMode.ShowDebugGeometry
	}

	g.updateCamera()
	g.updateMouse()
	g.sim.Tick()
	return nil
}

func (g *Game) updateCamera() {
	var d render.Float2
	if ebiten.IsKeyPressed(ebiten.KeyW) || ebiten.IsKeyPressed(ebiten.KeyUp) {
		d.Y--
	}
	if ebiten.IsKeyPressed(ebiten.KeyS) || ebiten.IsKeyPressed(ebiten.KeyDown) {
		d.Y++
	}
	if ebiten.IsKeyPressed(ebiten.KeyA) || ebiten.IsKeyPressed(ebiten.KeyLeft) {
		d.X--
	}
	if ebiten.IsKeyPressed(ebiten.KeyD) || ebiten.IsKeyPressed(ebiten.KeyRight) {
		d.X++
	}
	if d != (render.Float2{}) {
		g.viewport.Scroll(d.Scale(scrollSpeed / g.viewport.Zoom()))
	}

	if _, wy := ebiten.Wheel(); wy != 0 {
		g.viewport.SetZoom(g.viewport.Zoom() * float32(math.Pow(zoomStep, wy)))
	}
}

func (g *Game) updateMouse() {
	cursor := image.Pt(ebiten.CursorPosition())
	g.sim.SetRolloverAt(g.viewport.ViewToWorldPx(cursor))

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		g.dragFrom = cursor
		g.dragging = true
	}
	if g.dragging && inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		g.dragging = false
		d := cursor.Sub(g.dragFrom)
		if abs(d.X) <= dragSlop && abs(d.Y) <= dragSlop {
			g.sim.SelectAt(g.viewport.ViewToWorldPx(cursor))
		} else {
			box := image.Rectangle{Min: g.viewport.ViewToWorldPx(g.dragFrom), Max: g.viewport.ViewToWorldPx(cursor)}
			g.sim.SelectBox(box)
		}
	}

	if len(g.sim.Selected()) == 0 {
		g.sim.Orders().Clear()
		return
	}
	target := g.viewport.ViewToWorld(cursor)
	g.sim.Orders().SetTarget(target)

	switch {
	case inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight):
		g.sim.IssueMove(target)
	case inpututil.IsKeyJustPressed(ebiten.KeyF):
		for _, a := range g.sim.Selected() {
			g.sim.Fire(a, target, fireDamage)
		}
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.surface.Begin(screen)
	if err := g.renderer.Draw(); err != nil {
		g.log.Error("draw world", "err", err, "frame", g.renderer.Frame())
		g.err = err
		return
	}
	g.drawHUD()
}

// drawHUD writes the status line and recent messages in window space.
func (g *Game) drawHUD() {
	g.surface.SetViewport(render.Float2{}, 1)

	stats := g.renderer.Stats()
	status := fmt.Sprintf("%s  FPS %.0f  actors %d  draws %d  sprites %d  zoom %.2f",
		g.cfg.Window.Title, ebiten.ActualFPS(), stats.Actors, g.surface.Drawn(), g.surface.CachedSprites(), g.viewport.Zoom())
	g.surface.DrawText(status, render.Float2{X: hudMargin, Y: hudMargin}, render.CGA[render.ColorWhite])

	cell := g.viewport.ViewToWorld(image.Pt(ebiten.CursorPosition())).Cell()
	g.surface.DrawText(g.sim.DescribeCell(cell), render.Float2{X: hudMargin, Y: hudMargin + lineHeight}, render.CGA[render.ColorLightCyan])

	msgs := g.sim.Log.Recent(commsMax)
	y := float32(g.viewport.WindowSize().Y - hudMargin - len(msgs)*lineHeight)
	for _, m := range msgs {
		g.surface.DrawText(m.Text, render.Float2{X: hudMargin, Y: y}, m.Priority.Color())
		y += lineHeight
	}
	g.surface.Flush()
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if ws := g.viewport.WindowSize(); ws.X != outsideWidth || ws.Y != outsideHeight {
		g.viewport.Resize(outsideWidth, outsideHeight)
	}
	return outsideWidth, outsideHeight
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func main() {
	cfgPath := flag.String("config", "", "path to a TOML settings file")
	mapFile := flag.String("map", "", "bundled map to play, e.g. ridge.json")
	flag.Parse()

	cfg := config.Default()
	if *cfgPath != "" {
		var err error
		if cfg, err = config.Load(*cfgPath); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
	if *mapFile != "" {
		cfg.Map.File = *mapFile
	}

	level, err := cfg.Log.SlogLevel()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	render.SetLogger(logger.With("component", "render"))

	g, err := NewGame(cfg, logger)
	if err != nil {
		logger.Error("start skirmish", "err", err)
		os.Exit(1)
	}

	ebiten.SetWindowSize(cfg.Window.Width, cfg.Window.Height)
	ebiten.SetWindowTitle(cfg.Window.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		logger.Error("run", "err", err)
		os.Exit(1)
	}
}
