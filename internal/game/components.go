package game

import "github.com/spacehole-rogue/skirmish/internal/world"

// ECS components. Only actors with a body in the world carry them.

// Position is an actor's center in world space.
type Position struct {
	world.WPos
}

// Facing is the direction an actor points, in radians.
type Facing struct {
	Angle float32
}

// Mover moves an actor in a straight line towards Target.
type Mover struct {
	Target world.WPos
	Speed  int32 // world units per tick
}

// trailLength is the number of positions kept by a Trail.
const trailLength = 12

// Trail is a ring buffer of recent positions used for contrails.
type Trail struct {
	Points [trailLength]world.WPos
	Next   int
	Count  int
}

// Push records p as the newest position.
func (t *Trail) Push(p world.WPos) {
	t.Points[t.Next] = p
	t.Next = (t.Next + 1) % trailLength
	t.Count = min(t.Count+1, trailLength)
}

// Recent returns the recorded positions, oldest first.
func (t *Trail) Recent() []world.WPos {
	out := make([]world.WPos, 0, t.Count)
	start := (t.Next - t.Count + trailLength) % trailLength
	for i := 0; i < t.Count; i++ {
		out = append(out, t.Points[(start+i)%trailLength])
	}
	return out
}
