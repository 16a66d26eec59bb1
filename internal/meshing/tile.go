package meshing

import (
	"voxelcore/internal/physics"
	"voxelcore/internal/world"
)

// Atlas layout: a 16×16 grid of cells on a square texture.
const (
	AtlasCells = 16
	// cellUV is a hair under 1/16 so sampling never bleeds into the next cell.
	cellUV float32 = 0.0624375
)

// Shade multipliers per face class.
const (
	shadeY float32 = 1.0
	shadeZ float32 = 0.8
	shadeX float32 = 0.6
)

// BlockSource is the grid view a tile needs to decide visibility and light.
type BlockSource interface {
	IsSolid(x, y, z int) bool
	Brightness(x, y, z int) float32
}

// Tile generates the faces of one block type.
type Tile struct {
	Block world.BlockType
	Atlas int
}

var tiles [256]*Tile

func registerTile(b world.BlockType, atlas int) *Tile {
	t := &Tile{Block: b, Atlas: atlas}
	tiles[b] = t
	return t
}

var (
	RockTile  = registerTile(world.BlockTypeRock, 1)
	GrassTile = registerTile(world.BlockTypeGrass, 0)
)

// TileFor returns the tile registered for a block type, or nil.
func TileFor(b world.BlockType) *Tile {
	return tiles[b]
}

// shade returns the brightness of the neighbour cell times the face class
// multiplier, and whether the face belongs to the requested layer. Layer 0
// takes faces at exactly full brightness for their class, layer 1 the rest.
func shade(g BlockSource, layer int, nx, ny, nz int, mul float32) (float32, bool) {
	br := g.Brightness(nx, ny, nz) * mul
	lit := br == mul
	return br, lit != (layer == 1)
}

// Render emits every exposed face of the block at (x, y, z) that falls into
// layer. Faces against a solid neighbour are skipped.
func (t *Tile) Render(b *Batcher, g BlockSource, layer, x, y, z int) {
	u0 := float32(t.Atlas) / AtlasCells
	u1 := u0 + cellUV
	v0 := float32(0)
	v1 := v0 + cellUV

	x0, y0, z0 := float32(x), float32(y), float32(z)
	x1, y1, z1 := x0+1, y0+1, z0+1

	if !g.IsSolid(x, y-1, z) {
		if br, ok := shade(g, layer, x, y-1, z, shadeY); ok {
			b.Color(br, br, br)
			b.VertexUV(x0, y0, z1, u0, v1)
			b.VertexUV(x0, y0, z0, u0, v0)
			b.VertexUV(x1, y0, z0, u1, v0)
			b.VertexUV(x1, y0, z1, u1, v1)
		}
	}
	if !g.IsSolid(x, y+1, z) {
		if br, ok := shade(g, layer, x, y+1, z, shadeY); ok {
			b.Color(br, br, br)
			b.VertexUV(x1, y1, z1, u1, v1)
			b.VertexUV(x1, y1, z0, u1, v0)
			b.VertexUV(x0, y1, z0, u0, v0)
			b.VertexUV(x0, y1, z1, u0, v1)
		}
	}
	if !g.IsSolid(x, y, z-1) {
		if br, ok := shade(g, layer, x, y, z-1, shadeZ); ok {
			b.Color(br, br, br)
			b.VertexUV(x0, y1, z0, u1, v0)
			b.VertexUV(x1, y1, z0, u0, v0)
			b.VertexUV(x1, y0, z0, u0, v1)
			b.VertexUV(x0, y0, z0, u1, v1)
		}
	}
	if !g.IsSolid(x, y, z+1) {
		if br, ok := shade(g, layer, x, y, z+1, shadeZ); ok {
			b.Color(br, br, br)
			b.VertexUV(x0, y1, z1, u0, v0)
			b.VertexUV(x0, y0, z1, u0, v1)
			b.VertexUV(x1, y0, z1, u1, v1)
			b.VertexUV(x1, y1, z1, u1, v0)
		}
	}
	if !g.IsSolid(x-1, y, z) {
		if br, ok := shade(g, layer, x-1, y, z, shadeX); ok {
			b.Color(br, br, br)
			b.VertexUV(x0, y1, z1, u1, v0)
			b.VertexUV(x0, y1, z0, u0, v0)
			b.VertexUV(x0, y0, z0, u0, v1)
			b.VertexUV(x0, y0, z1, u1, v1)
		}
	}
	if !g.IsSolid(x+1, y, z) {
		if br, ok := shade(g, layer, x+1, y, z, shadeX); ok {
			b.Color(br, br, br)
			b.VertexUV(x1, y0, z1, u0, v1)
			b.VertexUV(x1, y0, z0, u1, v1)
			b.VertexUV(x1, y1, z0, u1, v0)
			b.VertexUV(x1, y1, z1, u0, v0)
		}
	}
}

// RenderFace emits one untextured face of the block at (x, y, z) with the
// same winding Render uses. The caller picks the batch layout.
func RenderFace(b *Batcher, x, y, z int, face physics.Face) {
	x0, y0, z0 := float32(x), float32(y), float32(z)
	x1, y1, z1 := x0+1, y0+1, z0+1

	switch face {
	case physics.FaceBottom:
		b.Vertex(x0, y0, z1)
		b.Vertex(x0, y0, z0)
		b.Vertex(x1, y0, z0)
		b.Vertex(x1, y0, z1)
	case physics.FaceTop:
		b.Vertex(x1, y1, z1)
		b.Vertex(x1, y1, z0)
		b.Vertex(x0, y1, z0)
		b.Vertex(x0, y1, z1)
	case physics.FaceFront:
		b.Vertex(x0, y1, z0)
		b.Vertex(x1, y1, z0)
		b.Vertex(x1, y0, z0)
		b.Vertex(x0, y0, z0)
	case physics.FaceBack:
		b.Vertex(x0, y1, z1)
		b.Vertex(x0, y0, z1)
		b.Vertex(x1, y0, z1)
		b.Vertex(x1, y1, z1)
	case physics.FaceLeft:
		b.Vertex(x0, y1, z1)
		b.Vertex(x0, y1, z0)
		b.Vertex(x0, y0, z0)
		b.Vertex(x0, y0, z1)
	case physics.FaceRight:
		b.Vertex(x1, y0, z1)
		b.Vertex(x1, y0, z0)
		b.Vertex(x1, y1, z0)
		b.Vertex(x1, y1, z1)
	}
}
