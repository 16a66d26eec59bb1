package player

import (
	"math"

	"voxelcore/internal/physics"
	"voxelcore/internal/profiling"
)

const (
	JumpVelocity       = 0.12
	GroundAcceleration = 0.02
	AirAcceleration    = 0.005
	SprintMultiplier   = 1.3
	Gravity            = 0.005

	HorizontalDrag = 0.91
	VerticalDrag   = 0.98
	GroundFriction = 0.8
)

// Intent is the movement requested for one tick.
type Intent struct {
	// Forward is +1 for forward, -1 for back.
	Forward float32
	// Strafe is +1 for right, -1 for left.
	Strafe float32
	Jump   bool
	Sprint bool
}

// Tick advances the player by one fixed step.
func (p *Player) Tick(in Intent) {
	defer profiling.Track("player.Tick")()
	p.PrevPosition = p.Position

	if in.Jump && p.OnGround {
		p.Velocity[1] = JumpVelocity
	}

	speed := float32(AirAcceleration)
	if p.OnGround {
		speed = GroundAcceleration
	}
	if in.Sprint {
		speed *= SprintMultiplier
	}
	p.MoveRelative(in.Strafe, in.Forward, speed)

	p.Velocity[1] -= Gravity
	p.Move(p.Velocity.X(), p.Velocity.Y(), p.Velocity.Z())

	p.Velocity[0] *= HorizontalDrag
	p.Velocity[1] *= VerticalDrag
	p.Velocity[2] *= HorizontalDrag
	if p.OnGround {
		p.Velocity[0] *= GroundFriction
		p.Velocity[2] *= GroundFriction
	}
}

// MoveRelative accelerates along the look yaw. The input vector is
// normalised to speed; inputs shorter than 0.1 are ignored.
func (p *Player) MoveRelative(strafe, forward, speed float32) {
	dist := strafe*strafe + forward*forward
	if dist < 0.01 {
		return
	}
	dist = speed / float32(math.Sqrt(float64(dist)))
	strafe *= dist
	forward *= dist

	yaw := float64(p.Yaw) * math.Pi / 180
	sin := float32(math.Sin(yaw))
	cos := float32(math.Cos(yaw))
	p.Velocity[0] += strafe*cos + forward*sin
	p.Velocity[2] += strafe*sin - forward*cos
}

// Move sweeps the box through the grid, zeroes velocity on every blocked
// axis and updates Position and OnGround.
func (p *Player) Move(dx, dy, dz float32) physics.MoveResult {
	res := physics.Move(p.grid, &p.Box, dx, dy, dz)
	p.OnGround = res.Grounded
	if res.BlockedX {
		p.Velocity[0] = 0
	}
	if res.BlockedY {
		p.Velocity[1] = 0
	}
	if res.BlockedZ {
		p.Velocity[2] = 0
	}

	p.Position[0] = (p.Box.X0 + p.Box.X1) / 2
	p.Position[1] = p.Box.Y0 + PlayerEyeHeight
	p.Position[2] = (p.Box.Z0 + p.Box.Z1) / 2
	return res
}
