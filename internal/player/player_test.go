package player

import (
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voxelcore/internal/physics"
	"voxelcore/internal/world"
)

func newTestPlayer(g *world.Grid) *Player {
	return New(g, rand.New(rand.NewSource(1)))
}

// settle ticks until the player stands on the ground.
func settle(t *testing.T, p *Player) {
	t.Helper()
	for i := 0; i < 600; i++ {
		p.Tick(Intent{})
		if p.OnGround && p.Velocity.Y() == 0 {
			return
		}
	}
	t.Fatalf("player never landed, box %+v", p.Box)
}

func TestSpawn(t *testing.T) {
	g := world.New(16, 16, 8)
	p := newTestPlayer(g)

	assert.GreaterOrEqual(t, p.Position.X(), float32(0))
	assert.Less(t, p.Position.X(), float32(16))
	assert.GreaterOrEqual(t, p.Position.Z(), float32(0))
	assert.Less(t, p.Position.Z(), float32(16))
	assert.Equal(t, float32(18), p.Position.Y())
	assert.InDelta(t, 0.6, p.Box.X1-p.Box.X0, 1e-6)
	assert.InDelta(t, 1.8, p.Box.Y1-p.Box.Y0, 1e-6)
	assert.False(t, p.OnGround)
}

func TestFallsOntoTerrain(t *testing.T) {
	g := world.New(16, 16, 8)
	p := newTestPlayer(g)
	settle(t, p)

	// surface is y=5, so the feet rest on y=6
	assert.InDelta(t, 6, p.Box.Y0, 1e-4)
	assert.InDelta(t, 6+PlayerEyeHeight, p.Position.Y(), 1e-4)
	assert.False(t, physics.Collides(g, p.Box))
}

func TestWalkForward(t *testing.T) {
	g := world.New(32, 32, 8)
	p := newTestPlayer(g)
	p.SetPos(16, 10, 16)
	settle(t, p)

	start := p.Position
	for i := 0; i < 20; i++ {
		p.Tick(Intent{Forward: 1})
	}
	// yaw 0 looks down -Z
	assert.Less(t, p.Position.Z(), start.Z())
	assert.InDelta(t, start.X(), p.Position.X(), 1e-4)

	p.Yaw = 90
	x := p.Position.X()
	for i := 0; i < 20; i++ {
		p.Tick(Intent{Forward: 1})
	}
	assert.Greater(t, p.Position.X(), x)
}

func TestSprintIsFaster(t *testing.T) {
	g := world.New(64, 64, 8)
	walk := newTestPlayer(g)
	walk.SetPos(32, 10, 40)
	settle(t, walk)
	run := newTestPlayer(g)
	run.SetPos(32, 10, 40)
	settle(t, run)

	for i := 0; i < 30; i++ {
		walk.Tick(Intent{Forward: 1})
		run.Tick(Intent{Forward: 1, Sprint: true})
	}
	assert.Less(t, run.Position.Z(), walk.Position.Z())
}

func TestJumpOnlyFromGround(t *testing.T) {
	g := world.New(16, 16, 8)
	p := newTestPlayer(g)
	p.SetPos(8, 12, 8)

	// mid-air jump does nothing
	p.Tick(Intent{Jump: true})
	assert.Less(t, p.Velocity.Y(), float32(0))

	settle(t, p)
	y := p.Position.Y()
	p.Tick(Intent{Jump: true})
	assert.Greater(t, p.Position.Y(), y)
	assert.Greater(t, p.Velocity.Y(), float32(0))
	assert.False(t, p.OnGround)
}

func TestWallStopsHorizontalVelocity(t *testing.T) {
	g := world.New(16, 16, 8)
	// wall across z=4 in front of the player
	for x := 0; x < 16; x++ {
		for y := 6; y < 8; y++ {
			g.SetBlock(x, y, 4, world.BlockTypeRock)
		}
	}
	p := newTestPlayer(g)
	p.SetPos(8, 7, 6)
	settle(t, p)

	for i := 0; i < 60; i++ {
		p.Tick(Intent{Forward: 1})
	}
	assert.InDelta(t, 5, p.Box.Z0, 1e-4)
	assert.Equal(t, float32(0), p.Velocity.Z())
}

func TestMoveRelativeIgnoresTinyInput(t *testing.T) {
	p := newTestPlayer(world.NewEmpty(4, 4, 4))
	p.MoveRelative(0.05, 0.05, 1)
	assert.Equal(t, mgl32.Vec3{}, p.Velocity)

	p.MoveRelative(1, 1, 0.02)
	assert.InDelta(t, 0.02, mgl32.Vec2{p.Velocity.X(), p.Velocity.Z()}.Len(), 1e-6)
}

func TestTurnClampsPitch(t *testing.T) {
	p := newTestPlayer(world.NewEmpty(4, 4, 4))
	p.Turn(100, 0)
	assert.InDelta(t, 15, p.Yaw, 1e-5)

	p.Turn(0, -10000)
	assert.Equal(t, float32(MaxPitch), p.Pitch)
	p.Turn(0, 10000)
	assert.Equal(t, float32(-MaxPitch), p.Pitch)
}

func TestReset(t *testing.T) {
	g := world.New(16, 16, 8)
	p := newTestPlayer(g)
	settle(t, p)
	p.Velocity = mgl32.Vec3{1, 1, 1}
	p.Reset()
	assert.Equal(t, float32(18), p.Position.Y())
	assert.Equal(t, mgl32.Vec3{}, p.Velocity)
	assert.Equal(t, p.Position, p.PrevPosition)
}

func TestEyePosInterpolates(t *testing.T) {
	p := newTestPlayer(world.NewEmpty(4, 4, 4))
	p.PrevPosition = mgl32.Vec3{0, 0, 0}
	p.Position = mgl32.Vec3{2, 4, 6}
	assert.Equal(t, mgl32.Vec3{}, p.EyePos(0))
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, p.EyePos(0.5))
}

func TestViewMatrixMatchesLookDir(t *testing.T) {
	p := newTestPlayer(world.NewEmpty(4, 4, 4))
	p.SetPos(1, 2, 3)
	for _, angles := range [][2]float32{{0, 0}, {37, 20}, {-120, -45}, {200, 89}} {
		p.Yaw, p.Pitch = angles[0], angles[1]
		target := p.Position.Add(p.LookDir().Mul(5))
		v := p.ViewMatrix(1).Mul4x1(target.Vec4(1))
		assert.InDelta(t, 0, v.X(), 1e-4, "yaw %v pitch %v", angles[0], angles[1])
		assert.InDelta(t, 0, v.Y(), 1e-4, "yaw %v pitch %v", angles[0], angles[1])
		assert.InDelta(t, -5-CameraBackOffset, v.Z(), 1e-4, "yaw %v pitch %v", angles[0], angles[1])
	}
}

func TestLookDir(t *testing.T) {
	p := newTestPlayer(world.NewEmpty(4, 4, 4))
	// cos(pi/2) is not exactly zero in float32, so compare per component
	assertVec := func(want, got mgl32.Vec3) {
		t.Helper()
		for i := range want {
			assert.InDelta(t, want[i], got[i], 1e-5, "axis %d: want %v got %v", i, want, got)
		}
	}
	assertVec(mgl32.Vec3{0, 0, -1}, p.LookDir())
	p.Pitch = 90
	assertVec(mgl32.Vec3{0, -1, 0}, p.LookDir())
	p.Pitch, p.Yaw = 0, 90
	assertVec(mgl32.Vec3{1, 0, 0}, p.LookDir())
}

func TestBreakAndPlace(t *testing.T) {
	g := world.New(16, 16, 8)
	p := newTestPlayer(g)
	p.SetPos(8.5, 7, 8.5)
	settle(t, p)

	// look straight down at the grass under the feet
	p.Pitch = 90
	hit, ok := p.Pick(1, physics.DefaultReach)
	require.True(t, ok)
	assert.Equal(t, [3]int{8, 5, 8}, hit.Position())
	assert.Equal(t, physics.FaceTop, hit.Face)

	// placing into the player's own box is refused
	assert.False(t, p.Place(hit, world.BlockTypeRock))
	assert.True(t, g.IsAir(8, 6, 8))

	assert.True(t, p.Break(hit))
	assert.True(t, g.IsAir(8, 5, 8))
	assert.False(t, p.Break(hit), "already air")

	// place on the side of a block away from the player
	side := physics.HitResult{X: 2, Y: 5, Z: 2, Face: physics.FaceTop}
	assert.True(t, p.Place(side, world.BlockTypeRock))
	assert.Equal(t, world.BlockTypeRock, g.Block(2, 6, 2))
	assert.False(t, p.Place(side, world.BlockTypeRock), "cell occupied")

	edge := physics.HitResult{X: 0, Y: 5, Z: 0, Face: physics.FaceLeft}
	assert.False(t, p.Place(edge, world.BlockTypeRock), "outside the grid")
}

func BenchmarkTick(b *testing.B) {
	g := world.New(64, 64, 32)
	p := newTestPlayer(g)
	p.SetPos(32, 30, 32)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p.Tick(Intent{Forward: 1, Strafe: float32(i%3 - 1)})
		if i%500 == 0 {
			p.SetPos(32, 30, 32)
		}
	}
}
