package player

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// CameraBackOffset pulls the camera slightly behind the eye.
const CameraBackOffset = 0.3

// EyePos interpolates the eye between the last two ticks; a is in [0, 1).
func (p *Player) EyePos(a float32) mgl32.Vec3 {
	return p.PrevPosition.Add(p.Position.Sub(p.PrevPosition).Mul(a))
}

// ViewMatrix returns the world-to-camera transform at interpolation a.
func (p *Player) ViewMatrix(a float32) mgl32.Mat4 {
	eye := p.EyePos(a)
	return mgl32.Translate3D(0, 0, -CameraBackOffset).
		Mul4(mgl32.HomogRotate3DX(mgl32.DegToRad(p.Pitch))).
		Mul4(mgl32.HomogRotate3DY(mgl32.DegToRad(p.Yaw))).
		Mul4(mgl32.Translate3D(-eye.X(), -eye.Y(), -eye.Z()))
}

// LookDir is the unit vector the camera faces. Yaw 0 looks down -Z.
func (p *Player) LookDir() mgl32.Vec3 {
	yaw := float64(mgl32.DegToRad(p.Yaw))
	pitch := float64(mgl32.DegToRad(p.Pitch))
	cp := math.Cos(pitch)
	return mgl32.Vec3{
		float32(math.Sin(yaw) * cp),
		float32(-math.Sin(pitch)),
		float32(-math.Cos(yaw) * cp),
	}
}
