package render

import "fmt"

// frameSet is the materialized output of one collection pass.
type frameSet struct {
	world   []Renderable
	effects []Renderable
	actors  int
}

// visibleActors returns the actors in the viewport box followed by the world
// actor and the local player actor, without duplicates.
func (wr *WorldRenderer) visibleActors() []Actor {
	inBox := wr.world.ActorsInBox(wr.viewport.TopLeft(), wr.viewport.BottomRight())
	actors := make([]Actor, 0, len(inBox)+2)
	seen := make(map[uint32]struct{}, len(inBox)+2)
	add := func(a Actor) {
		if a == nil {
			return
		}
		if _, ok := seen[a.ID()]; ok {
			return
		}
		seen[a.ID()] = struct{}{}
		actors = append(actors, a)
	}
	for _, a := range inBox {
		add(a)
	}
	add(wr.world.WorldActor())
	add(wr.world.LocalPlayerActor())
	return actors
}

func (wr *WorldRenderer) renderActor(a Actor) ([]Renderable, error) {
	var out []Renderable
	traits := a.Traits()
	for _, t := range traits {
		ar, ok := t.(ActorRenderer)
		if !ok {
			continue
		}
		r, err := ar.Render(a, wr)
		if err != nil {
			return nil, fmt.Errorf("actor %d: %w", a.ID(), err)
		}
		out = append(out, r...)
	}
	for _, t := range traits {
		if m, ok := t.(RenderModifier); ok {
			out = m.ModifyRender(a, wr, out)
		}
	}
	return out, nil
}

func (wr *WorldRenderer) collect() (frameSet, error) {
	var fs frameSet
	for _, a := range wr.visibleActors() {
		fs.actors++
		r, err := wr.renderActor(a)
		if err != nil {
			return frameSet{}, err
		}
		fs.world = append(fs.world, r...)
	}

	if og := wr.world.OrderGenerator(); og != nil {
		r, err := og.Render(wr, wr.world)
		if err != nil {
			return frameSet{}, fmt.Errorf("order generator: %w", err)
		}
		fs.world = append(fs.world, r...)
	}

	for i, e := range wr.world.Effects() {
		er, ok := e.(EffectRenderer)
		if !ok {
			continue
		}
		r, err := er.Render(wr)
		if err != nil {
			return frameSet{}, fmt.Errorf("effect %d: %w", i, err)
		}
		fs.effects = append(fs.effects, r...)
	}
	return fs, nil
}

// GenerateRenderables collects and sorts this frame's renderables. Effects
// are appended after the sorted world renderables and always draw on top.
func (wr *WorldRenderer) GenerateRenderables() ([]Renderable, error) {
	fs, err := wr.collect()
	if err != nil {
		return nil, err
	}
	SortRenderables(fs.world)
	return append(fs.world, fs.effects...), nil
}
