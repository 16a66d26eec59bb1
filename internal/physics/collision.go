package physics

import (
	"math"

	"voxelcore/internal/profiling"
	"voxelcore/internal/world"
)

// SolidBoxesIn returns the unit box of every solid block touched by region,
// scanning x, then y, then z in ascending order. The block range is
// floor(min) .. floor(max)+1 per axis, clamped to the grid.
func SolidBoxesIn(g *world.Grid, region AABB) []AABB {
	x0 := clampInt(floor(region.X0), 0, g.Width)
	x1 := clampInt(floor(region.X1)+1, 0, g.Width)
	y0 := clampInt(floor(region.Y0), 0, g.Depth)
	y1 := clampInt(floor(region.Y1)+1, 0, g.Depth)
	z0 := clampInt(floor(region.Z0), 0, g.Height)
	z1 := clampInt(floor(region.Z1)+1, 0, g.Height)

	var boxes []AABB
	for x := x0; x < x1; x++ {
		for y := y0; y < y1; y++ {
			for z := z0; z < z1; z++ {
				if g.IsSolid(x, y, z) {
					boxes = append(boxes, BlockAABB(x, y, z))
				}
			}
		}
	}
	return boxes
}

// Collides reports whether box overlaps any solid block.
func Collides(g *world.Grid, box AABB) bool {
	for _, c := range SolidBoxesIn(g, box) {
		if c.Intersects(box) {
			return true
		}
	}
	return false
}

// MoveResult describes how far a box actually moved.
type MoveResult struct {
	DX, DY, DZ float32
	// Grounded is set when downward motion was stopped.
	Grounded bool
	// BlockedX/Y/Z are set for every axis whose delta was shortened.
	BlockedX, BlockedY, BlockedZ bool
}

// Move sweeps box by (dx, dy, dz) through the grid, translating it in place.
// Obstacles are gathered once over the whole sweep; the axes are then
// resolved in the fixed order Y, X, Z, each against every obstacle.
func Move(g *world.Grid, box *AABB, dx, dy, dz float32) MoveResult {
	defer profiling.Track("physics.Move")()
	dxOrg, dyOrg, dzOrg := dx, dy, dz
	obstacles := SolidBoxesIn(g, box.Expand(dx, dy, dz))

	for i := range obstacles {
		dy = obstacles[i].ClipYCollide(*box, dy)
	}
	box.Translate(0, dy, 0)

	for i := range obstacles {
		dx = obstacles[i].ClipXCollide(*box, dx)
	}
	box.Translate(dx, 0, 0)

	for i := range obstacles {
		dz = obstacles[i].ClipZCollide(*box, dz)
	}
	box.Translate(0, 0, dz)

	return MoveResult{
		DX:       dx,
		DY:       dy,
		DZ:       dz,
		Grounded: dyOrg != dy && dyOrg < 0,
		BlockedX: dxOrg != dx,
		BlockedY: dyOrg != dy,
		BlockedZ: dzOrg != dz,
	}
}

func floor(v float32) int {
	return int(math.Floor(float64(v)))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
