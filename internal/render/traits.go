package render

import "github.com/spacehole-rogue/skirmish/internal/world"

// WorldType distinguishes regular games from menu backgrounds and the editor.
type WorldType uint8

const (
	WorldTypeRegular WorldType = iota
	WorldTypeShellmap
	WorldTypeEditor
)

// Actor is the renderer's view of a simulation actor. The renderer never
// mutates actors.
type Actor interface {
	ID() uint32
	CenterPosition() world.WPos
	IsInWorld() bool
	Destroyed() bool
	// Traits returns the actor's trait instances; render capabilities are
	// discovered by interface assertion.
	Traits() []any
}

// World is the simulation state consumed by one frame. Callers guarantee it is
// not mutated while Draw runs.
type World interface {
	Type() WorldType
	Map() *world.Map
	// ActorsInBox returns actors whose screen bounds intersect the ground
	// rectangle tl..br, in a stable order.
	ActorsInBox(tl, br world.WPos) []Actor
	// Actors returns every actor in a stable order.
	Actors() []Actor
	WorldActor() Actor
	// LocalPlayerActor returns the locally controlled player's actor, or nil.
	LocalPlayerActor() Actor
	Effects() []any
	// OrderGenerator returns the active command preview, or nil.
	OrderGenerator() OrderGenerator
	Selection() []Actor
	Rollover() []Actor
	// RenderShroud returns the shroud of the player being rendered, or nil
	// when everything is revealed.
	RenderShroud() *world.Shroud
}

// ActorRenderer produces an actor's world renderables.
type ActorRenderer interface {
	Render(self Actor, wr *WorldRenderer) ([]Renderable, error)
}

// RenderModifier filters or rewrites an actor's renderables after every
// ActorRenderer has run.
type RenderModifier interface {
	ModifyRender(self Actor, wr *WorldRenderer, r []Renderable) []Renderable
}

// PostRenderer draws directly after the world renderables (contrails, decals).
type PostRenderer interface {
	RenderAfterWorld(self Actor, wr *WorldRenderer)
}

// ShroudRenderer draws the fog-of-war overlay.
type ShroudRenderer interface {
	RenderShroud(wr *WorldRenderer, shroud *world.Shroud)
}

// SelectionDecorator produces overlays for selected actors.
type SelectionDecorator interface {
	RenderSelection(self Actor, wr *WorldRenderer) []Renderable
}

// RolloverDecorator produces overlays for actors under the cursor.
type RolloverDecorator interface {
	RenderRollover(self Actor, wr *WorldRenderer) []Renderable
}

// PaletteProvider registers palettes once when the world renderer is created.
type PaletteProvider interface {
	InitPalette(wr *WorldRenderer) error
}

// EffectRenderer produces a transient effect's renderables.
type EffectRenderer interface {
	Render(wr *WorldRenderer) ([]Renderable, error)
}

// OrderGenerator is the active UI command preview.
type OrderGenerator interface {
	Render(wr *WorldRenderer, w World) ([]Renderable, error)
	RenderAfterWorld(wr *WorldRenderer, w World)
}
