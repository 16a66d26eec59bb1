package player

import (
	"math/rand"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"voxelcore/internal/physics"
	"voxelcore/internal/world"
)

const (
	PlayerEyeHeight = 1.62
	PlayerHalfWidth = 0.3
	// the box is centred on the spawn point, not the feet
	PlayerHalfHeight = 0.9

	SpawnHeight = 10

	DefaultSensitivity = 0.15
	MaxPitch           = 90.0
)

// Player is the single body moved by input. Position is the eye point,
// derived from the collision box after every move.
type Player struct {
	PrevPosition mgl32.Vec3
	Position     mgl32.Vec3
	Velocity     mgl32.Vec3
	Box          physics.AABB
	OnGround     bool

	// Yaw and Pitch are in degrees. Positive pitch looks down.
	Yaw   float32
	Pitch float32

	Sensitivity float32

	grid *world.Grid
	rng  *rand.Rand
}

// New places a player at a random column of grid, SpawnHeight blocks above
// its top. A nil rng is seeded from the clock.
func New(grid *world.Grid, rng *rand.Rand) *Player {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	p := &Player{
		grid:        grid,
		rng:         rng,
		Sensitivity: DefaultSensitivity,
	}
	p.Reset()
	return p
}

// Reset respawns the player at a new random column and clears its motion.
func (p *Player) Reset() {
	x := p.rng.Float32() * float32(p.grid.Width)
	y := float32(p.grid.Depth + SpawnHeight)
	z := p.rng.Float32() * float32(p.grid.Height)
	p.SetPos(x, y, z)
	p.Velocity = mgl32.Vec3{}
	p.OnGround = false
}

// SetPos moves the player without collision and resets interpolation.
func (p *Player) SetPos(x, y, z float32) {
	p.Position = mgl32.Vec3{x, y, z}
	p.PrevPosition = p.Position
	p.Box = physics.AABB{
		X0: x - PlayerHalfWidth, Y0: y - PlayerHalfHeight, Z0: z - PlayerHalfWidth,
		X1: x + PlayerHalfWidth, Y1: y + PlayerHalfHeight, Z1: z + PlayerHalfWidth,
	}
}

// Turn applies a mouse delta. Pitch is clamped to straight up and down.
func (p *Player) Turn(dx, dy float32) {
	p.Yaw += dx * p.Sensitivity
	p.Pitch -= dy * p.Sensitivity
	if p.Pitch < -MaxPitch {
		p.Pitch = -MaxPitch
	}
	if p.Pitch > MaxPitch {
		p.Pitch = MaxPitch
	}
}
