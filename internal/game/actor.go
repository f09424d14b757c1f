package game

import (
	"image"
	"image/color"

	"github.com/mlange-42/ark/ecs"

	"github.com/spacehole-rogue/skirmish/internal/render"
	"github.com/spacehole-rogue/skirmish/internal/world"
)

// Actor is a simulation object. Units carry an ECS entity with their
// position; the world actor and player actors do not.
type Actor struct {
	id     uint32
	name   string
	owner  *Player
	sim    *Sim
	kind   UnitKind
	entity ecs.Entity
	body   bool
	traits []any

	health    int
	maxHealth int
	radius    int // screen-space half size in pixels

	inWorld   bool
	destroyed bool
}

var _ render.Actor = (*Actor)(nil)

func (a *Actor) ID() uint32         { return a.id }
func (a *Actor) Name() string       { return a.name }
func (a *Actor) Owner() *Player     { return a.owner }
func (a *Actor) IsInWorld() bool    { return a.inWorld }
func (a *Actor) Destroyed() bool    { return a.destroyed }
func (a *Actor) Traits() []any      { return a.traits }
func (a *Actor) Health() int        { return a.health }
func (a *Actor) MaxHealth() int     { return a.maxHealth }
func (a *Actor) HasBody() bool      { return a.body }
func (a *Actor) AddTrait(t any)     { a.traits = append(a.traits, t) }
func (a *Actor) Entity() ecs.Entity { return a.entity }
func (a *Actor) Kind() UnitKind     { return a.kind }

// CenterPosition returns the actor's position, or the origin for actors
// without a body.
func (a *Actor) CenterPosition() world.WPos {
	if !a.body || !a.sim.ECS.Alive(a.entity) {
		return world.WPos{}
	}
	return a.sim.positions.Get(a.entity).WPos
}

// Facing returns the actor's facing in radians.
func (a *Actor) Facing() float32 {
	if !a.body || !a.sim.ECS.Alive(a.entity) {
		return 0
	}
	return a.sim.facings.Get(a.entity).Angle
}

// ScreenBounds returns the world-screen pixel rectangle the actor occupies.
func (a *Actor) ScreenBounds(t render.Transform) image.Rectangle {
	c := t.ScreenPxPosition(a.CenterPosition())
	return image.Rect(c.X-a.radius, c.Y-a.radius, c.X+a.radius, c.Y+a.radius)
}

// Player is one side of the skirmish.
type Player struct {
	Name     string
	Color    color.RGBA
	Shroud   *world.Shroud
	DevMode  *render.DeveloperMode
	Defeated bool

	actor *Actor
	units int
}

// PaletteName returns the name of the player's team-color palette.
func (p *Player) PaletteName() string { return "player-" + p.Name }

// Actor returns the player actor.
func (p *Player) Actor() *Actor { return p.actor }
