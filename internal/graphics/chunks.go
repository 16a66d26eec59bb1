package graphics

import (
	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/pkg/errors"

	"voxelcore/internal/meshing"
	"voxelcore/internal/profiling"
	"voxelcore/internal/world"
)

// floats per interleaved vertex: position, uv, color
const vertexStride = 3 + 2 + 3

type layerMesh struct {
	vao, vbo uint32
	indices  int32
}

// ChunkResources keeps one vertex array per uploaded batch, per chunk
// layer. All arrays share a single quad index buffer.
type ChunkResources struct {
	meshes  map[world.ChunkCoord]*[meshing.LayerCount][]layerMesh
	ebo     uint32
	scratch []float32
}

// NewChunkResources allocates the shared index buffer. Requires a current
// GL context.
func NewChunkResources() *ChunkResources {
	c := &ChunkResources{
		meshes: make(map[world.ChunkCoord]*[meshing.LayerCount][]layerMesh),
	}

	quads := meshing.MaxVertices / 4
	indices := make([]uint32, 0, quads*6)
	for q := uint32(0); q < uint32(quads); q++ {
		base := q * 4
		indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	}
	gl.GenBuffers(1, &c.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, c.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*4, gl.Ptr(indices), gl.STATIC_DRAW)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, 0)
	return c
}

// Upload replaces the geometry of one chunk layer.
func (c *ChunkResources) Upload(coord world.ChunkCoord, layer int, batches []meshing.Batch) error {
	defer profiling.Track("graphics.Upload")()
	l, ok := c.meshes[coord]
	if !ok {
		l = &[meshing.LayerCount][]layerMesh{}
		c.meshes[coord] = l
	}
	deleteMeshes(l[layer])
	l[layer] = l[layer][:0]

	for _, b := range batches {
		if b.Vertices == 0 {
			continue
		}
		l[layer] = append(l[layer], c.upload(b))
	}
	gl.BindVertexArray(0)
	if code := gl.GetError(); code != gl.NO_ERROR {
		return errors.Errorf("upload chunk %v layer %d: gl error 0x%x", coord, layer, code)
	}
	return nil
}

func (c *ChunkResources) upload(b meshing.Batch) layerMesh {
	c.scratch = interleave(c.scratch[:0], b)

	var m layerMesh
	gl.GenVertexArrays(1, &m.vao)
	gl.BindVertexArray(m.vao)

	gl.GenBuffers(1, &m.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(c.scratch)*4, gl.Ptr(c.scratch), gl.STATIC_DRAW)

	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, vertexStride*4, 0)
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointerWithOffset(1, 2, gl.FLOAT, false, vertexStride*4, 3*4)
	gl.EnableVertexAttribArray(2)
	gl.VertexAttribPointerWithOffset(2, 3, gl.FLOAT, false, vertexStride*4, 5*4)

	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, c.ebo)
	m.indices = int32(b.Quads() * 6)
	return m
}

// interleave packs a batch into position/uv/color records. Missing
// attributes default to uv 0 and white.
func interleave(dst []float32, b meshing.Batch) []float32 {
	for i := 0; i < b.Vertices; i++ {
		dst = append(dst, b.Positions[i*3], b.Positions[i*3+1], b.Positions[i*3+2])
		if b.HasTexture() {
			dst = append(dst, b.TexCoords[i*2], b.TexCoords[i*2+1])
		} else {
			dst = append(dst, 0, 0)
		}
		if b.HasColor() {
			dst = append(dst, b.Colors[i*3], b.Colors[i*3+1], b.Colors[i*3+2])
		} else {
			dst = append(dst, 1, 1, 1)
		}
	}
	return dst
}

// Draw issues the draw calls of one chunk layer with whatever program is
// bound.
func (c *ChunkResources) Draw(coord world.ChunkCoord, layer int) error {
	l, ok := c.meshes[coord]
	if !ok {
		return nil
	}
	for _, m := range l[layer] {
		gl.BindVertexArray(m.vao)
		gl.DrawElements(gl.TRIANGLES, m.indices, gl.UNSIGNED_INT, gl.PtrOffset(0))
	}
	gl.BindVertexArray(0)
	if code := gl.GetError(); code != gl.NO_ERROR {
		return errors.Errorf("draw chunk %v layer %d: gl error 0x%x", coord, layer, code)
	}
	return nil
}

// Release frees the chunk's buffers.
func (c *ChunkResources) Release(coord world.ChunkCoord) {
	l, ok := c.meshes[coord]
	if !ok {
		return
	}
	for i := range l {
		deleteMeshes(l[i])
	}
	delete(c.meshes, coord)
}

// Dispose frees everything including the shared index buffer.
func (c *ChunkResources) Dispose() {
	for coord := range c.meshes {
		c.Release(coord)
	}
	if c.ebo != 0 {
		gl.DeleteBuffers(1, &c.ebo)
		c.ebo = 0
	}
}

func deleteMeshes(ms []layerMesh) {
	for i := range ms {
		gl.DeleteVertexArrays(1, &ms[i].vao)
		gl.DeleteBuffers(1, &ms[i].vbo)
	}
}
