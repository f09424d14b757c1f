package game

import (
	"image"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacehole-rogue/skirmish/internal/render"
	"github.com/spacehole-rogue/skirmish/internal/world"
)

func TestNewSimWorldActor(t *testing.T) {
	s, blue, _ := newTestSim(t)

	wa := s.WorldActor()
	require.NotNil(t, wa)
	assert.True(t, wa.IsInWorld())
	assert.Same(t, blue.Actor(), s.LocalPlayerActor())
	assert.Equal(t, render.WorldTypeRegular, s.Type())
	assert.Len(t, s.Actors(), 3, "world actor and two player actors")
	assert.NotEmpty(t, s.Log.Recent(1))
}

func TestNoLocalPlayer(t *testing.T) {
	m := world.NewMap("empty", 4, 4, world.TerrainDesert)
	s := NewSim(m, nil, render.NewTransform(testTileSize))
	s.AddPlayer("Red", red, false)

	assert.Nil(t, s.LocalPlayerActor())
	assert.Nil(t, s.RenderShroud())
	assert.Nil(t, s.LocalPlayer())
}

func TestSpawn(t *testing.T) {
	m := world.NewMap("hills", 8, 8, world.TerrainTemperate)
	m.Set(world.CPos{X: 2, Y: 2}, world.Tile{Kind: world.TileClear, Height: 1})
	s := NewSim(m, nil, render.NewTransform(testTileSize))
	p := s.AddPlayer("Blue", blue, true)

	tank := s.Spawn(UnitTank, p, world.CPos{X: 2, Y: 2})
	assert.Equal(t, world.NewWPos(2560, 2560, world.HeightStep), tank.CenterPosition())
	assert.Equal(t, "Tank", tank.Name())
	assert.Equal(t, 100, tank.Health())
	assert.True(t, tank.HasBody())
	assert.Same(t, tank, s.Actor(tank.ID()))

	scout := s.Spawn(UnitScout, p, world.CPos{X: 5, Y: 5})
	assert.Equal(t, int32(2*world.HeightStep), scout.CenterPosition().Z, "aircraft fly above the ground")
	assert.True(t, s.trails.Has(scout.Entity()))
	assert.False(t, s.trails.Has(tank.Entity()))

	assert.Nil(t, s.Actor(999))
}

func TestIssueMoveOnlyMovesLocalSelection(t *testing.T) {
	s, blue, red := newTestSim(t)
	mine := s.Spawn(UnitTank, blue, world.CPos{X: 1, Y: 1})
	depot := s.Spawn(UnitDepot, blue, world.CPos{X: 4, Y: 4})
	theirs := s.Spawn(UnitTank, red, world.CPos{X: 8, Y: 8})

	s.Select(mine, depot, theirs)
	target := world.CenterOfCell(world.CPos{X: 1, Y: 6})
	assert.Equal(t, 1, s.IssueMove(target), "static and enemy units ignore the order")
	assert.Equal(t, MsgOrder, s.Log.Recent(1)[0].Priority)

	theirStart := theirs.CenterPosition()
	s.Tick()
	assert.Equal(t, theirStart, theirs.CenterPosition())
	assert.Equal(t, int32(1536+48), mine.CenterPosition().Y)
	assert.InDelta(t, math.Pi, float64(mine.Facing()), 1e-6, "facing south")

	for range 200 {
		s.Tick()
	}
	assert.Equal(t, target, mine.CenterPosition())
	assert.False(t, s.movers.Has(mine.Entity()))
}

func TestIssueMoveClearsPreview(t *testing.T) {
	s, blue, _ := newTestSim(t)
	s.Select(s.Spawn(UnitTank, blue, world.CPos{X: 1, Y: 1}))
	s.Orders().SetTarget(world.CenterOfCell(world.CPos{X: 3, Y: 3}))

	s.IssueMove(world.CenterOfCell(world.CPos{X: 3, Y: 3}))
	_, active := s.Orders().Target()
	assert.False(t, active)
}

func TestScoutLeavesTrail(t *testing.T) {
	s, blue, _ := newTestSim(t)
	scout := s.Spawn(UnitScout, blue, world.CPos{X: 1, Y: 1})
	s.Select(scout)
	s.IssueMove(world.CenterOfCell(world.CPos{X: 14, Y: 1}))

	for range 5 {
		s.Tick()
	}
	trail := s.trails.Get(scout.Entity()).Recent()
	require.Len(t, trail, 5)
	for i := 1; i < len(trail); i++ {
		assert.Greater(t, trail[i].X, trail[i-1].X, "oldest first")
	}
	assert.Equal(t, scout.CenterPosition(), trail[4])
}

func TestTrailRingBuffer(t *testing.T) {
	var tr Trail
	for i := range trailLength + 3 {
		tr.Push(world.NewWPos(int32(i), 0, 0))
	}
	got := tr.Recent()
	require.Len(t, got, trailLength)
	assert.Equal(t, int32(3), got[0].X)
	assert.Equal(t, int32(trailLength+2), got[trailLength-1].X)
}

func TestDamageFlashesAndKills(t *testing.T) {
	s, blue, red := newTestSim(t)
	s.Spawn(UnitTank, blue, world.CPos{X: 1, Y: 1})
	enemy := s.Spawn(UnitInfantry, red, world.CPos{X: 8, Y: 8})

	s.Damage(enemy, 10)
	assert.Equal(t, 30, enemy.Health())
	assert.True(t, s.FlashModifier().Active(red.PaletteName()))
	assert.False(t, s.FlashModifier().Active(blue.PaletteName()))

	s.Damage(enemy, 30)
	assert.True(t, enemy.Destroyed())
	assert.False(t, enemy.IsInWorld())
	assert.True(t, red.Defeated)
	assert.False(t, blue.Defeated)
	assert.False(t, s.ECS.Alive(enemy.Entity()))
	assert.Contains(t, s.Actors(), render.Actor(enemy), "kept until the end of the tick")

	s.Tick()
	assert.NotContains(t, s.Actors(), render.Actor(enemy))
	assert.Nil(t, s.Actor(enemy.ID()))
	require.Len(t, s.Effects(), 1)
	assert.IsType(t, &Explosion{}, s.Effects()[0])

	for range flashTicks {
		s.Tick()
	}
	assert.False(t, s.FlashModifier().Active(red.PaletteName()))
}

func TestLocalDefeatIsCritical(t *testing.T) {
	s, blue, _ := newTestSim(t)
	a := s.Spawn(UnitInfantry, blue, world.CPos{X: 1, Y: 1})
	s.Kill(a)
	s.Kill(a)

	assert.True(t, blue.Defeated)
	assert.Equal(t, MsgCritical, s.Log.Recent(1)[0].Priority)
}

func TestFireDamagesOnImpact(t *testing.T) {
	s, blue, red := newTestSim(t)
	gun := s.Spawn(UnitTank, blue, world.CPos{X: 1, Y: 1})
	target := s.Spawn(UnitTank, red, world.CPos{X: 6, Y: 1})
	bystander := s.Spawn(UnitTank, red, world.CPos{X: 6, Y: 5})

	s.Fire(gun, target.CenterPosition(), 25)
	assert.Empty(t, s.Effects(), "effects start on the next tick")
	s.Tick()
	require.Len(t, s.Effects(), 1)
	shell, ok := s.Effects()[0].(*Projectile)
	require.True(t, ok)
	assert.Greater(t, shell.Position(shellFlight/2).Z, int32(0), "shells arc")

	for range shellFlight {
		s.Tick()
	}
	assert.Equal(t, 75, target.Health())
	assert.Equal(t, 100, bystander.Health())
	require.Len(t, s.Effects(), 1)
	assert.IsType(t, &Explosion{}, s.Effects()[0])

	for range explosionTicks {
		s.Tick()
	}
	assert.Empty(t, s.Effects())
}

func TestVision(t *testing.T) {
	s, blue, red := newTestSim(t)
	s.Spawn(UnitTank, blue, world.CPos{X: 2, Y: 2})
	s.Spawn(UnitTank, red, world.CPos{X: 13, Y: 13})

	sh := s.RenderShroud()
	require.Same(t, blue.Shroud, sh)
	assert.True(t, sh.IsVisible(world.CPos{X: 2, Y: 2}))
	assert.True(t, sh.IsVisible(world.CPos{X: 6, Y: 2}))
	assert.False(t, sh.IsExplored(world.CPos{X: 13, Y: 13}))
}

func TestSelectAt(t *testing.T) {
	s, blue, red := newTestSim(t)
	mine := s.Spawn(UnitTank, blue, world.CPos{X: 2, Y: 2})
	theirs := s.Spawn(UnitTank, red, world.CPos{X: 5, Y: 2})

	assert.Same(t, mine, s.SelectAt(screenPx(s, mine)))
	assert.Equal(t, []*Actor{mine}, s.Selected())

	assert.Nil(t, s.SelectAt(screenPx(s, theirs)), "enemy units cannot be selected")
	assert.Empty(t, s.Selected())

	s.SetRolloverAt(screenPx(s, theirs))
	require.Len(t, s.Rollover(), 1)
	assert.Equal(t, theirs.ID(), s.Rollover()[0].ID())

	s.SetRolloverAt(screenPx(s, theirs).Add(screenPx(s, theirs)))
	assert.Empty(t, s.Rollover())
}

func TestSelectBox(t *testing.T) {
	s, blue, red := newTestSim(t)
	s.Spawn(UnitTank, blue, world.CPos{X: 1, Y: 1})
	s.Spawn(UnitInfantry, blue, world.CPos{X: 2, Y: 1})
	s.Spawn(UnitTank, red, world.CPos{X: 2, Y: 2})
	s.Spawn(UnitTank, blue, world.CPos{X: 10, Y: 10})

	box := image.Rectangle{Min: image.Pt(60, 40), Max: image.Pt(0, 0)}
	assert.Equal(t, 2, s.SelectBox(box), "corners in any order")
}

func TestActorsInBoxUsesScreenBounds(t *testing.T) {
	s, blue, _ := newTestSim(t)
	s.Spawn(UnitTank, blue, world.CPos{X: 1, Y: 1})
	far := s.Spawn(UnitTank, blue, world.CPos{X: 12, Y: 12})

	got := s.ActorsInBox(world.TopLeftOfCell(world.CPos{X: 10, Y: 10}), world.TopLeftOfCell(world.CPos{X: 16, Y: 16}))
	require.Len(t, got, 1)
	assert.Equal(t, far.ID(), got[0].ID())
}

func TestDescribeCell(t *testing.T) {
	s, blue, _ := newTestSim(t)
	s.Map().Set(world.CPos{X: 3, Y: 2}, world.Tile{Kind: world.TileRock, Height: 1})
	s.Spawn(UnitTank, blue, world.CPos{X: 2, Y: 2})

	assert.Equal(t, "2,2 Clear ground", s.DescribeCell(world.CPos{X: 2, Y: 2}))
	assert.Equal(t, "3,2 Rock formation, height 1", s.DescribeCell(world.CPos{X: 3, Y: 2}))
	assert.Equal(t, "14,14 Unexplored", s.DescribeCell(world.CPos{X: 14, Y: 14}))
	assert.Equal(t, "Outside the map", s.DescribeCell(world.CPos{X: -1, Y: 0}))

	blue.Shroud.Disable(true)
	assert.Equal(t, "14,14 Clear ground", s.DescribeCell(world.CPos{X: 14, Y: 14}))
}

func TestMessageLog(t *testing.T) {
	l := NewMessageLog(3)
	l.Add("one", MsgInfo)
	l.Add("two", MsgWarning)
	l.Add("a rather long message that certainly needs to wrap onto a second line", MsgCombat)

	msgs := l.Recent(10)
	require.Len(t, msgs, 3)
	assert.Equal(t, "two", msgs[0].Text)
	for _, m := range msgs[1:] {
		assert.LessOrEqual(t, len(m.Text), 40)
		assert.Equal(t, MsgCombat, m.Priority)
	}
	assert.Equal(t, render.CGA[render.ColorYellow], MsgWarning.Color())
}
