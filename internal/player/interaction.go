package player

import (
	"voxelcore/internal/physics"
	"voxelcore/internal/world"
)

// Pick casts the look ray from the interpolated eye.
func (p *Player) Pick(a, reach float32) (physics.HitResult, bool) {
	return physics.Pick(p.grid, p.EyePos(a), p.LookDir(), reach)
}

// Break clears the struck block. It reports whether anything changed.
func (p *Player) Break(hit physics.HitResult) bool {
	if !p.grid.IsSolid(hit.X, hit.Y, hit.Z) {
		return false
	}
	p.grid.SetBlock(hit.X, hit.Y, hit.Z, world.BlockTypeAir)
	return true
}

// Place puts t in front of the struck face. Placement is refused outside
// the grid, into an occupied cell, or where the block would overlap the
// player.
func (p *Player) Place(hit physics.HitResult, t world.BlockType) bool {
	a := hit.Adjacent()
	x, y, z := a[0], a[1], a[2]
	if !p.grid.Contains(x, y, z) || !p.grid.IsAir(x, y, z) {
		return false
	}
	if physics.BlockAABB(x, y, z).Intersects(p.Box) {
		return false
	}
	p.grid.SetBlock(x, y, z, t)
	return true
}
