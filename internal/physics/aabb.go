package physics

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Epsilon is the gap left between a clipped mover and an obstacle. Touching
// faces never intersect, so zero cannot produce penetration.
const Epsilon float32 = 0

// AABB is an axis-aligned box. Methods return new values except Translate.
type AABB struct {
	X0, Y0, Z0 float32
	X1, Y1, Z1 float32
}

// NewAABB builds a box from its two corners.
func NewAABB(min, max mgl32.Vec3) AABB {
	return AABB{min.X(), min.Y(), min.Z(), max.X(), max.Y(), max.Z()}
}

// BlockAABB is the unit box of the block at (x, y, z).
func BlockAABB(x, y, z int) AABB {
	fx, fy, fz := float32(x), float32(y), float32(z)
	return AABB{fx, fy, fz, fx + 1, fy + 1, fz + 1}
}

// Min returns the lower corner.
func (b AABB) Min() mgl32.Vec3 { return mgl32.Vec3{b.X0, b.Y0, b.Z0} }

// Max returns the upper corner.
func (b AABB) Max() mgl32.Vec3 { return mgl32.Vec3{b.X1, b.Y1, b.Z1} }

// Center returns the middle of the box.
func (b AABB) Center() mgl32.Vec3 {
	return mgl32.Vec3{(b.X0 + b.X1) / 2, (b.Y0 + b.Y1) / 2, (b.Z0 + b.Z1) / 2}
}

// Expand grows the box toward the signed motion on each axis. The result
// covers the box at its start and at its destination.
func (b AABB) Expand(dx, dy, dz float32) AABB {
	out := b
	if dx < 0 {
		out.X0 += dx
	} else if dx > 0 {
		out.X1 += dx
	}
	if dy < 0 {
		out.Y0 += dy
	} else if dy > 0 {
		out.Y1 += dy
	}
	if dz < 0 {
		out.Z0 += dz
	} else if dz > 0 {
		out.Z1 += dz
	}
	return out
}

// Grow pads the box by the same amount on both sides of each axis.
func (b AABB) Grow(dx, dy, dz float32) AABB {
	return AABB{b.X0 - dx, b.Y0 - dy, b.Z0 - dz, b.X1 + dx, b.Y1 + dy, b.Z1 + dz}
}

// ClipXCollide shortens dx so that moving stops at the face of b. The delta
// passes through unchanged when the boxes do not overlap on Y and Z, or when
// moving is not headed into b.
func (b AABB) ClipXCollide(moving AABB, dx float32) float32 {
	if moving.Y1 <= b.Y0 || moving.Y0 >= b.Y1 {
		return dx
	}
	if moving.Z1 <= b.Z0 || moving.Z0 >= b.Z1 {
		return dx
	}
	if dx > 0 && moving.X1 <= b.X0 {
		if limit := b.X0 - moving.X1 - Epsilon; limit < dx {
			dx = limit
		}
	}
	if dx < 0 && moving.X0 >= b.X1 {
		if limit := b.X1 - moving.X0 + Epsilon; limit > dx {
			dx = limit
		}
	}
	return dx
}

// ClipYCollide is ClipXCollide for the vertical axis.
func (b AABB) ClipYCollide(moving AABB, dy float32) float32 {
	if moving.X1 <= b.X0 || moving.X0 >= b.X1 {
		return dy
	}
	if moving.Z1 <= b.Z0 || moving.Z0 >= b.Z1 {
		return dy
	}
	if dy > 0 && moving.Y1 <= b.Y0 {
		if limit := b.Y0 - moving.Y1 - Epsilon; limit < dy {
			dy = limit
		}
	}
	if dy < 0 && moving.Y0 >= b.Y1 {
		if limit := b.Y1 - moving.Y0 + Epsilon; limit > dy {
			dy = limit
		}
	}
	return dy
}

// ClipZCollide is ClipXCollide for the Z axis.
func (b AABB) ClipZCollide(moving AABB, dz float32) float32 {
	if moving.X1 <= b.X0 || moving.X0 >= b.X1 {
		return dz
	}
	if moving.Y1 <= b.Y0 || moving.Y0 >= b.Y1 {
		return dz
	}
	if dz > 0 && moving.Z1 <= b.Z0 {
		if limit := b.Z0 - moving.Z1 - Epsilon; limit < dz {
			dz = limit
		}
	}
	if dz < 0 && moving.Z0 >= b.Z1 {
		if limit := b.Z1 - moving.Z0 + Epsilon; limit > dz {
			dz = limit
		}
	}
	return dz
}

// Intersects uses strict inequalities, so boxes sharing a face do not intersect.
func (b AABB) Intersects(o AABB) bool {
	if o.X1 <= b.X0 || o.X0 >= b.X1 {
		return false
	}
	if o.Y1 <= b.Y0 || o.Y0 >= b.Y1 {
		return false
	}
	return o.Z1 > b.Z0 && o.Z0 < b.Z1
}

// Translate moves the box in place.
func (b *AABB) Translate(dx, dy, dz float32) {
	b.X0 += dx
	b.Y0 += dy
	b.Z0 += dz
	b.X1 += dx
	b.Y1 += dy
	b.Z1 += dz
}
