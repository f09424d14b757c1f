package game

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"slices"

	"github.com/mlange-42/ark/ecs"

	"github.com/spacehole-rogue/skirmish/internal/render"
	"github.com/spacehole-rogue/skirmish/internal/tileset"
	"github.com/spacehole-rogue/skirmish/internal/voxel"
	"github.com/spacehole-rogue/skirmish/internal/world"
)

// Tick intervals and durations (at 60 TPS)
const (
	flashTicks     = 8  // palette flash after a hit
	explosionTicks = 24 // blast lifetime
	shellFlight    = 30 // projectile flight time
	rotationPeriod = 12 // water color cycle step
	sightRadius    = 5  // cells revealed around each unit
	screenBinSize  = 64 // screen map bin, in pixels
)

// UnitKind selects a unit template.
type UnitKind uint8

const (
	UnitTank UnitKind = iota
	UnitHarvester
	UnitInfantry
	UnitScout
	UnitDepot
)

type unitType struct {
	name     string
	glyph    byte
	model    *voxel.Model
	health   int
	speed    int32   // world units per tick, zero for static units
	size     float32 // footprint in tiles
	altitude int32   // flight height above the ground
	trail    bool
}

var unitTypes = map[UnitKind]unitType{
	UnitTank:      {name: "Tank", glyph: tileset.GlyphTank, health: 100, speed: 48, size: 1},
	UnitHarvester: {name: "Harvester", glyph: tileset.GlyphHarvest, health: 160, speed: 32, size: 1},
	UnitInfantry:  {name: "Rifleman", glyph: tileset.GlyphInfantry, health: 40, speed: 24, size: 0.5},
	UnitScout: {
		name: "Scout", health: 60, speed: 96, size: 1, altitude: 2 * world.HeightStep, trail: true,
		model: voxel.Box("scout", 3, 5, 2, render.RemapStart+6, render.RemapStart+14),
	},
	UnitDepot: {
		name: "Depot", health: 400, size: 2,
		model: voxel.Box("depot", 8, 8, 5, render.RemapStart+4, render.RemapStart+12),
	},
}

// Sim is the skirmish simulation. It owns all actors and is the world the
// renderer draws.
type Sim struct {
	ECS   *ecs.World
	Log   *MessageLog
	Ticks uint64

	terrain   *world.Map
	art       *tileset.Tileset
	transform render.Transform
	kind      render.WorldType

	positions *ecs.Map[Position]
	facings   *ecs.Map[Facing]
	movers    *ecs.Map[Mover]
	trails    *ecs.Map[Trail]
	bodies    *ecs.Map2[Position, Facing]
	moving    *ecs.Filter3[Position, Facing, Mover]

	nextID     uint32
	actors     []*Actor
	byEntity   map[ecs.Entity]*Actor
	worldActor *Actor
	players    []*Player
	local      *Player
	screenMap  *ScreenMap

	effects  []Effect
	spawned  []Effect
	orders   *MoveOrderGenerator
	selected []*Actor
	rollover []*Actor
	flash    *FlashModifier
}

var _ render.World = (*Sim)(nil)

// NewSim creates a simulation on map m. art supplies unit sprites and t is
// the transform used for screen-space lookups.
func NewSim(m *world.Map, art *tileset.Tileset, t render.Transform) *Sim {
	w := ecs.NewWorld(256)
	s := &Sim{
		ECS:       w,
		Log:       NewMessageLog(50),
		terrain:   m,
		art:       art,
		transform: t,
		positions: ecs.NewMap[Position](w),
		facings:   ecs.NewMap[Facing](w),
		movers:    ecs.NewMap[Mover](w),
		trails:    ecs.NewMap[Trail](w),
		bodies:    ecs.NewMap2[Position, Facing](w),
		moving:    ecs.NewFilter3[Position, Facing, Mover](w),
		byEntity:  make(map[ecs.Entity]*Actor),
		screenMap: NewScreenMap(t, m, screenBinSize),
		flash:     NewFlashModifier(),
	}
	s.orders = NewMoveOrderGenerator(s)

	wa := s.newActor("World", nil)
	wa.inWorld = true
	wa.traits = []any{
		PaletteFromBase{Name: PaletteTerrain, Modifiable: true},
		PaletteFromBase{Name: PaletteEffect},
		PaletteFromBase{Name: PaletteShadow},
		RotationModifier{
			Palette: PaletteTerrain,
			Start:   render.WaterStart,
			Length:  render.WaterSize,
			Period:  rotationPeriod,
			Clock:   func() uint64 { return s.Ticks },
		},
		s.flash,
		ShroudOverlay{},
	}
	s.worldActor = wa

	s.Log.Add(fmt.Sprintf("Battlefield %s, %dx%d.", m.Name, m.Width, m.Height), MsgInfo)
	return s
}

func (s *Sim) newActor(name string, owner *Player) *Actor {
	s.nextID++
	a := &Actor{id: s.nextID, name: name, owner: owner, sim: s}
	s.actors = append(s.actors, a)
	return a
}

// SetType switches between a regular game and a menu background.
func (s *Sim) SetType(k render.WorldType) { s.kind = k }

// AddPlayer adds a side. The local player's shroud is the one rendered and
// its defeat grays out the world.
func (s *Sim) AddPlayer(name string, c color.RGBA, local bool) *Player {
	p := &Player{
		Name:    name,
		Color:   c,
		Shroud:  world.NewShroud(s.terrain),
		DevMode: &render.DeveloperMode{},
	}
	pa := s.newActor(name, p)
	pa.traits = []any{PlayerColorPalette{Player: p}}
	p.actor = pa
	s.players = append(s.players, p)
	if local {
		s.local = p
		s.worldActor.AddTrait(GrayscaleModifier{Player: p})
	}
	return p
}

// AddPalette registers p through the world actor. It must be called before
// the renderer is created.
func (s *Sim) AddPalette(p PaletteFromRemap) { s.worldActor.AddTrait(p) }

// Players returns every side in the order they were added.
func (s *Sim) Players() []*Player { return s.players }

// LocalPlayer returns the locally controlled side, or nil.
func (s *Sim) LocalPlayer() *Player { return s.local }

// Spawn places a new unit of kind for owner at the center of cell.
func (s *Sim) Spawn(kind UnitKind, owner *Player, cell world.CPos) *Actor {
	ut := unitTypes[kind]
	pos := s.terrain.CenterOfCell(cell)
	pos.Z += ut.altitude
	e := s.bodies.NewEntity(&Position{WPos: pos}, &Facing{})
	if ut.trail {
		s.trails.Add(e, &Trail{})
	}

	a := s.newActor(ut.name, owner)
	a.kind = kind
	a.entity = e
	a.body = true
	a.inWorld = true
	a.health = ut.health
	a.maxHealth = ut.health
	a.radius = max(1, int(ut.size*float32(s.transform.TileSize)/2))
	if ut.model != nil {
		a.traits = append(a.traits, RenderVoxels{Model: ut.model, Scale: float32(s.transform.TileSize) / 8})
	} else {
		a.traits = append(a.traits, RenderSprites{Glyph: ut.glyph, Scale: ut.size})
	}
	a.traits = append(a.traits, SelectionDecorations{}, HiddenUnderShroud{})
	if ut.trail {
		a.traits = append(a.traits, Contrail{})
	}

	s.byEntity[e] = a
	s.screenMap.Add(a)
	if owner != nil {
		owner.units++
	}
	s.updateVision()
	return a
}

// Actor returns the actor with the given ID, or nil.
func (s *Sim) Actor(id uint32) *Actor {
	i, ok := slices.BinarySearchFunc(s.actors, id, func(a *Actor, id uint32) int {
		switch {
		case a.id < id:
			return -1
		case a.id > id:
			return 1
		}
		return 0
	})
	if !ok {
		return nil
	}
	return s.actors[i]
}

// Damage removes n health from a, flashing its owner's colors. The actor is
// destroyed when its health runs out.
func (s *Sim) Damage(a *Actor, n int) {
	if a.destroyed || a.maxHealth == 0 {
		return
	}
	a.health -= n
	if a.owner != nil {
		s.flash.Flash(a.owner.PaletteName(), flashTicks)
	}
	if a.health <= 0 {
		s.Kill(a)
	}
}

// Kill destroys a. It stays in Actors until the end of the tick.
func (s *Sim) Kill(a *Actor) {
	if a.destroyed {
		return
	}
	pos := a.CenterPosition()
	a.destroyed = true
	a.inWorld = false
	s.screenMap.Remove(a)
	if a.body && s.ECS.Alive(a.entity) {
		delete(s.byEntity, a.entity)
		s.ECS.RemoveEntity(a.entity)
	}
	s.spawned = append(s.spawned, NewExplosion(s, pos, explosionTicks))

	p := a.owner
	if p == nil {
		return
	}
	s.Log.Add(fmt.Sprintf("%s %s destroyed.", p.Name, a.name), MsgCombat)
	p.units--
	if p.units <= 0 && !p.Defeated {
		p.Defeated = true
		prio := MsgWarning
		if p == s.local {
			prio = MsgCritical
		}
		s.Log.Add(fmt.Sprintf("%s has been defeated.", p.Name), prio)
	}
}

// Fire launches a shell from a towards target.
func (s *Sim) Fire(a *Actor, target world.WPos, damage int) {
	if a.destroyed || !a.body {
		return
	}
	s.AddEffect(NewProjectile(s, a.CenterPosition(), target, shellFlight, damage))
}

// AddEffect starts e on the next tick.
func (s *Sim) AddEffect(e Effect) { s.spawned = append(s.spawned, e) }

// impact damages every unit within one cell of at.
func (s *Sim) impact(at world.WPos, damage int) {
	s.spawned = append(s.spawned, NewExplosion(s, at, explosionTicks))
	for _, a := range s.actors {
		if a.destroyed || !a.body {
			continue
		}
		d := a.CenterPosition().Sub(at)
		d.Z = 0
		if d.LengthSquared() <= world.TileScale*world.TileScale {
			s.Damage(a, damage)
		}
	}
}

// FlashModifier returns the palette flash shared by all players.
func (s *Sim) FlashModifier() *FlashModifier { return s.flash }

// Orders returns the move preview.
func (s *Sim) Orders() *MoveOrderGenerator { return s.orders }

// Select replaces the selection.
func (s *Sim) Select(actors ...*Actor) {
	s.selected = s.selected[:0]
	for _, a := range actors {
		if a != nil && !a.destroyed {
			s.selected = append(s.selected, a)
		}
	}
}

// Selected returns the selected actors.
func (s *Sim) Selected() []*Actor { return s.selected }

// SelectAt selects the local unit under the world-screen pixel p, or clears
// the selection when there is none. It returns the selected actor.
func (s *Sim) SelectAt(p image.Point) *Actor {
	for _, a := range s.screenMap.At(p) {
		if a.owner == s.local {
			s.Select(a)
			return a
		}
	}
	s.Select()
	return nil
}

// SelectBox selects every local unit overlapping the world-screen rectangle r.
func (s *Sim) SelectBox(r image.Rectangle) int {
	var hits []*Actor
	for _, a := range s.screenMap.InBox(r.Canon()) {
		if a.owner == s.local {
			hits = append(hits, a)
		}
	}
	s.Select(hits...)
	return len(hits)
}

// SetRolloverAt marks the nearest actor under the world-screen pixel p.
// Enemies the local player cannot see are skipped.
func (s *Sim) SetRolloverAt(p image.Point) {
	s.rollover = s.rollover[:0]
	for _, a := range s.screenMap.At(p) {
		if !s.hiddenFromLocal(a) {
			s.rollover = append(s.rollover, a)
			return
		}
	}
}

// DescribeCell returns a one-line description of c for the cursor readout.
// Cells the local player has never explored are not described.
func (s *Sim) DescribeCell(c world.CPos) string {
	t := s.terrain.Get(c)
	if t.Kind == world.TileVoid {
		return t.Describe()
	}
	if sh := s.RenderShroud(); sh != nil && !sh.IsExplored(c) {
		return fmt.Sprintf("%d,%d Unexplored", c.X, c.Y)
	}
	if t.Height > 0 {
		return fmt.Sprintf("%d,%d %s, height %d", c.X, c.Y, t.Describe(), t.Height)
	}
	return fmt.Sprintf("%d,%d %s", c.X, c.Y, t.Describe())
}

// hiddenFromLocal reports whether a belongs to another side and stands on a
// cell the local player does not currently see.
func (s *Sim) hiddenFromLocal(a *Actor) bool {
	shroud := s.RenderShroud()
	if shroud == nil || a.owner == s.local {
		return false
	}
	return !shroud.IsVisible(a.CenterPosition().Cell())
}

// IssueMove orders every selected local unit to target and returns the
// number of units that accepted the order.
func (s *Sim) IssueMove(target world.WPos) int {
	n := 0
	for _, a := range s.orders.units() {
		speed := unitTypes[a.kind].speed
		if speed == 0 {
			continue
		}
		if s.movers.Has(a.entity) {
			m := s.movers.Get(a.entity)
			m.Target, m.Speed = target, speed
		} else {
			s.movers.Add(a.entity, &Mover{Target: target, Speed: speed})
		}
		n++
	}
	s.orders.Clear()
	if n > 0 {
		c := target.Cell()
		s.Log.Add(fmt.Sprintf("%d unit(s) moving to %d,%d.", n, c.X, c.Y), MsgOrder)
	}
	return n
}

// Tick advances the simulation by one step.
func (s *Sim) Tick() {
	s.Ticks++
	s.tickMovement()
	s.tickEffects()
	s.flash.Tick()
	s.updateVision()
	s.reap()
}

func (s *Sim) tickMovement() {
	var arrived []ecs.Entity
	var moved []*Actor

	query := s.moving.Query()
	for query.Next() {
		pos, face, mv := query.Get()
		e := query.Entity()
		d := mv.Target.Sub(pos.WPos)
		d.Z = 0
		dist := math.Sqrt(float64(d.LengthSquared()))
		if dist > 0 {
			face.Angle = float32(math.Atan2(float64(d.X), float64(-d.Y)))
		}
		if dist <= float64(mv.Speed) {
			pos.X, pos.Y = mv.Target.X, mv.Target.Y
			arrived = append(arrived, e)
		} else {
			pos.X += int32(math.Round(float64(d.X) * float64(mv.Speed) / dist))
			pos.Y += int32(math.Round(float64(d.Y) * float64(mv.Speed) / dist))
		}
		a := s.byEntity[e]
		pos.Z = int32(s.terrain.Get(pos.Cell()).Height) * world.HeightStep
		if a != nil {
			pos.Z += unitTypes[a.kind].altitude
			moved = append(moved, a)
		}
		if s.trails.Has(e) {
			s.trails.Get(e).Push(pos.WPos)
		}
	}

	for _, e := range arrived {
		s.movers.Remove(e)
	}
	for _, a := range moved {
		s.screenMap.Update(a)
	}
}

func (s *Sim) tickEffects() {
	live := s.effects[:0]
	for _, e := range s.effects {
		if e.Tick(s) {
			live = append(live, e)
		}
	}
	clear(s.effects[len(live):])
	s.effects = append(live, s.spawned...)
	s.spawned = s.spawned[:0]
}

func (s *Sim) updateVision() {
	if s.local == nil {
		return
	}
	sh := s.local.Shroud
	sh.ResetVisibility()
	for _, a := range s.actors {
		if a.owner == s.local && a.body && !a.destroyed {
			sh.Reveal(a.CenterPosition().Cell(), sightRadius)
		}
	}
}

// reap drops destroyed actors.
func (s *Sim) reap() {
	gone := func(a *Actor) bool { return a.destroyed }
	s.actors = slices.DeleteFunc(s.actors, gone)
	s.selected = slices.DeleteFunc(s.selected, gone)
	s.rollover = slices.DeleteFunc(s.rollover, gone)
}

// render.World

func (s *Sim) Type() render.WorldType { return s.kind }
func (s *Sim) Map() *world.Map        { return s.terrain }

func (s *Sim) ActorsInBox(tl, br world.WPos) []render.Actor {
	r := image.Rectangle{
		Min: s.transform.ScreenPxPosition(tl),
		Max: s.transform.ScreenPxPosition(br),
	}
	return toRender(s.screenMap.InBox(r.Canon()))
}

func (s *Sim) Actors() []render.Actor    { return toRender(s.actors) }
func (s *Sim) WorldActor() render.Actor  { return s.worldActor }
func (s *Sim) Selection() []render.Actor { return toRender(s.selected) }
func (s *Sim) Rollover() []render.Actor  { return toRender(s.rollover) }

func (s *Sim) LocalPlayerActor() render.Actor {
	if s.local == nil {
		return nil
	}
	return s.local.actor
}

func (s *Sim) Effects() []any {
	out := make([]any, len(s.effects))
	for i, e := range s.effects {
		out[i] = e
	}
	return out
}

func (s *Sim) OrderGenerator() render.OrderGenerator {
	if s.orders == nil {
		return nil
	}
	return s.orders
}

func (s *Sim) RenderShroud() *world.Shroud {
	if s.local == nil {
		return nil
	}
	return s.local.Shroud
}

func toRender(actors []*Actor) []render.Actor {
	out := make([]render.Actor, len(actors))
	for i, a := range actors {
		out[i] = a
	}
	return out
}
