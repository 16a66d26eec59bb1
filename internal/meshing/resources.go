package meshing

import (
	"voxelcore/internal/world"
)

// Layers: 0 holds fully lit faces, 1 the shaded ones.
const (
	LayerLit    = 0
	LayerShaded = 1
	LayerCount  = 2
)

// Resources maps chunk identity to whatever the renderer keeps for it.
// Upload replaces a layer as a whole; Draw on a chunk that was never
// uploaded draws nothing.
type Resources interface {
	Upload(coord world.ChunkCoord, layer int, batches []Batch) error
	Draw(coord world.ChunkCoord, layer int) error
	Release(coord world.ChunkCoord)
}

// MemoryResources keeps chunk geometry in memory and counts draws. It backs
// headless runs and tests.
type MemoryResources struct {
	layers map[world.ChunkCoord]*[LayerCount][]Batch
	draws  map[world.ChunkCoord]int
	// DrawSink, when set, receives every batch drawn.
	DrawSink Sink
}

// NewMemoryResources creates an empty table.
func NewMemoryResources() *MemoryResources {
	return &MemoryResources{
		layers: make(map[world.ChunkCoord]*[LayerCount][]Batch),
		draws:  make(map[world.ChunkCoord]int),
	}
}

// Upload stores batches for the chunk layer.
func (m *MemoryResources) Upload(coord world.ChunkCoord, layer int, batches []Batch) error {
	l, ok := m.layers[coord]
	if !ok {
		l = &[LayerCount][]Batch{}
		m.layers[coord] = l
	}
	l[layer] = batches
	return nil
}

// Draw counts the draw and forwards the layer to DrawSink.
func (m *MemoryResources) Draw(coord world.ChunkCoord, layer int) error {
	m.draws[coord]++
	l, ok := m.layers[coord]
	if !ok || m.DrawSink == nil {
		return nil
	}
	for _, b := range l[layer] {
		if err := m.DrawSink.Submit(b); err != nil {
			return err
		}
	}
	return nil
}

// Release drops the chunk.
func (m *MemoryResources) Release(coord world.ChunkCoord) {
	delete(m.layers, coord)
	delete(m.draws, coord)
}

// Layer returns the stored batches of one chunk layer.
func (m *MemoryResources) Layer(coord world.ChunkCoord, layer int) []Batch {
	if l, ok := m.layers[coord]; ok {
		return l[layer]
	}
	return nil
}

// Draws returns how often the chunk was drawn.
func (m *MemoryResources) Draws(coord world.ChunkCoord) int {
	return m.draws[coord]
}
