package world

import (
	"github.com/go-gl/mathgl/mgl32"
)

// ChunkSize is the default edge length of a chunk window.
const ChunkSize = 16

// ChunkCoord addresses a chunk by its index along each axis.
type ChunkCoord struct {
	X, Y, Z int
}

// Chunk is a window [X0,X1)×[Y0,Y1)×[Z0,Z1) onto a Grid. It holds no block
// data, only the window and whether derived geometry is stale.
type Chunk struct {
	Coord                  ChunkCoord
	X0, Y0, Z0, X1, Y1, Z1 int
	dirty                  bool
}

// NewChunk creates a dirty chunk covering the given window.
func NewChunk(coord ChunkCoord, x0, y0, z0, x1, y1, z1 int) *Chunk {
	return &Chunk{
		Coord: coord,
		X0:    x0,
		Y0:    y0,
		Z0:    z0,
		X1:    x1,
		Y1:    y1,
		Z1:    z1,
		dirty: true,
	}
}

// IsDirty reports whether the chunk needs to be rebuilt
func (c *Chunk) IsDirty() bool {
	return c.dirty
}

// MarkDirty flags the chunk for a rebuild
func (c *Chunk) MarkDirty() {
	c.dirty = true
}

// SetClean marks the chunk as clean (after rebuilding)
func (c *Chunk) SetClean() {
	c.dirty = false
}

// Contains reports whether a block coordinate lies inside the window.
func (c *Chunk) Contains(x, y, z int) bool {
	return x >= c.X0 && x < c.X1 && y >= c.Y0 && y < c.Y1 && z >= c.Z0 && z < c.Z1
}

// Min returns the lower corner of the window in world space.
func (c *Chunk) Min() mgl32.Vec3 {
	return mgl32.Vec3{float32(c.X0), float32(c.Y0), float32(c.Z0)}
}

// Max returns the upper corner of the window in world space.
func (c *Chunk) Max() mgl32.Vec3 {
	return mgl32.Vec3{float32(c.X1), float32(c.Y1), float32(c.Z1)}
}

// Center returns the middle of the window.
func (c *Chunk) Center() mgl32.Vec3 {
	return c.Min().Add(c.Max()).Mul(0.5)
}

// Partition cuts the grid into size³ windows. Windows on the far edges are
// clipped to the grid. Chunks are returned in ascending x, y, z order.
func Partition(g *Grid, size int) []*Chunk {
	if size <= 0 {
		size = ChunkSize
	}
	nx := ceilDiv(g.Width, size)
	ny := ceilDiv(g.Depth, size)
	nz := ceilDiv(g.Height, size)

	chunks := make([]*Chunk, 0, nx*ny*nz)
	for cx := 0; cx < nx; cx++ {
		for cy := 0; cy < ny; cy++ {
			for cz := 0; cz < nz; cz++ {
				x0, y0, z0 := cx*size, cy*size, cz*size
				chunks = append(chunks, NewChunk(
					ChunkCoord{cx, cy, cz},
					x0, y0, z0,
					min(x0+size, g.Width), min(y0+size, g.Depth), min(z0+size, g.Height),
				))
			}
		}
	}
	return chunks
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
