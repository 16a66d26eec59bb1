package meshing

import (
	"github.com/pkg/errors"

	"voxelcore/internal/logging"
	"voxelcore/internal/profiling"
	"voxelcore/internal/world"
)

// DefaultRebuildBudget is the number of chunks rebuilt per frame.
const DefaultRebuildBudget = 2

// Visibility decides whether a chunk window is worth drawing.
type Visibility interface {
	CubeIn(x0, y0, z0, x1, y1, z1 float32) bool
}

// Mesher owns the chunk partition of a grid and keeps each chunk's geometry
// in a Resources table. Dirty chunks are rebuilt lazily when rendered, at
// most budget of them per frame; the rest keep showing stale geometry.
type Mesher struct {
	grid       *world.Grid
	size       int
	chunks     []*world.Chunk
	byCoord    map[world.ChunkCoord]*world.Chunk
	nx, ny, nz int
	resources  Resources
	sub        *world.Subscription

	budget           int
	rebuiltThisFrame int
	updates          int

	batcher  *Batcher
	recorder *Recorder
	pool     *BuildPool
	visible  []*world.Chunk
}

// NewMesher partitions grid into size³ chunks, all initially dirty, and
// subscribes to its change events.
func NewMesher(grid *world.Grid, size, budget int, resources Resources) *Mesher {
	if size <= 0 {
		size = world.ChunkSize
	}
	if budget < 0 {
		budget = 0
	}
	m := &Mesher{
		grid:      grid,
		size:      size,
		chunks:    world.Partition(grid, size),
		byCoord:   make(map[world.ChunkCoord]*world.Chunk),
		nx:        (grid.Width + size - 1) / size,
		ny:        (grid.Depth + size - 1) / size,
		nz:        (grid.Height + size - 1) / size,
		resources: resources,
		sub:       grid.Subscribe(),
		budget:    budget,
		recorder:  &Recorder{},
	}
	m.batcher = NewBatcher(m.recorder)
	for _, c := range m.chunks {
		m.byCoord[c.Coord] = c
	}
	logging.Debug("meshing: %d chunks of %d³ over %dx%dx%d grid", len(m.chunks), size, grid.Width, grid.Depth, grid.Height)
	return m
}

// SetWorkers builds the chunks rebuilt within one frame on n goroutines.
// n <= 1 builds them on the calling goroutine.
func (m *Mesher) SetWorkers(n int) {
	if m.pool != nil {
		m.pool.Shutdown()
		m.pool = nil
	}
	if n > 1 {
		m.pool = NewBuildPool(m.grid, n)
	}
}

// Close stops listening to the grid and releases every chunk resource.
func (m *Mesher) Close() {
	m.grid.Unsubscribe(m.sub)
	m.SetWorkers(0)
	for _, c := range m.chunks {
		m.resources.Release(c.Coord)
	}
}

// Chunks returns the partition in ascending x, y, z order.
func (m *Mesher) Chunks() []*world.Chunk {
	return m.chunks
}

// Chunk returns the chunk at coord, or nil.
func (m *Mesher) Chunk(coord world.ChunkCoord) *world.Chunk {
	return m.byCoord[coord]
}

// SetBudget changes the per-frame rebuild limit.
func (m *Mesher) SetBudget(budget int) {
	if budget < 0 {
		budget = 0
	}
	m.budget = budget
}

// Budget returns the per-frame rebuild limit.
func (m *Mesher) Budget() int {
	return m.budget
}

// BeginFrame resets the rebuild counter. Call once at the start of a frame.
func (m *Mesher) BeginFrame() {
	m.rebuiltThisFrame = 0
}

// RebuiltThisFrame returns how many chunks were rebuilt since BeginFrame.
func (m *Mesher) RebuiltThisFrame() int {
	return m.rebuiltThisFrame
}

// Updates returns the total number of chunk rebuilds.
func (m *Mesher) Updates() int {
	return m.updates
}

// DirtyCount returns the number of chunks waiting for a rebuild.
func (m *Mesher) DirtyCount() int {
	n := 0
	for _, c := range m.chunks {
		if c.IsDirty() {
			n++
		}
	}
	return n
}

// RequestRender draws one layer of a chunk. A dirty chunk is rebuilt first,
// both layers at once, if the frame budget allows; otherwise the previous
// geometry is drawn and the rebuild waits for a later frame.
func (m *Mesher) RequestRender(coord world.ChunkCoord, layer int) error {
	c := m.byCoord[coord]
	if c == nil {
		return nil
	}
	if c.IsDirty() && m.rebuiltThisFrame < m.budget {
		if err := m.rebuild(c); err != nil {
			return err
		}
	}
	if err := m.resources.Draw(coord, layer); err != nil {
		return errors.Wrapf(err, "draw chunk %v layer %d", coord, layer)
	}
	return nil
}

// RenderVisible requests layer for every chunk the visibility test accepts.
func (m *Mesher) RenderVisible(v Visibility, layer int) error {
	defer profiling.Track("meshing.RenderVisible")()
	m.visible = m.visible[:0]
	for _, c := range m.chunks {
		if v != nil && !v.CubeIn(float32(c.X0), float32(c.Y0), float32(c.Z0), float32(c.X1), float32(c.Y1), float32(c.Z1)) {
			continue
		}
		m.visible = append(m.visible, c)
	}
	if err := m.prebuild(m.visible); err != nil {
		return err
	}
	for _, c := range m.visible {
		if err := m.RequestRender(c.Coord, layer); err != nil {
			return err
		}
	}
	return nil
}

// prebuild rebuilds, on the pool, the same chunks RequestRender would pick
// in order: the first dirty ones until the budget runs out.
func (m *Mesher) prebuild(chunks []*world.Chunk) error {
	if m.pool == nil {
		return nil
	}
	var jobs []*buildJob
	for _, c := range chunks {
		if m.rebuiltThisFrame+len(jobs) >= m.budget {
			break
		}
		if c.IsDirty() {
			jobs = append(jobs, &buildJob{chunk: c})
		}
	}
	if len(jobs) < 2 {
		return nil
	}
	m.pool.Build(jobs)
	for _, job := range jobs {
		if job.err != nil {
			return errors.Wrapf(job.err, "build chunk %v", job.chunk.Coord)
		}
		if err := m.commit(job.chunk, job.layers); err != nil {
			return err
		}
	}
	return nil
}

func (m *Mesher) rebuild(c *world.Chunk) error {
	defer profiling.Track("meshing.RebuildChunk")()
	var layers [LayerCount][]Batch
	for layer := 0; layer < LayerCount; layer++ {
		batches, err := m.buildLayer(c, layer)
		if err != nil {
			return errors.Wrapf(err, "build chunk %v layer %d", c.Coord, layer)
		}
		layers[layer] = batches
	}
	return m.commit(c, layers)
}

// commit uploads freshly built layers and counts the rebuild.
func (m *Mesher) commit(c *world.Chunk, layers [LayerCount][]Batch) error {
	m.rebuiltThisFrame++
	m.updates++
	profiling.Add("meshing.ChunkRebuilds", 1)
	c.SetClean()

	for layer, batches := range layers {
		if err := m.resources.Upload(c.Coord, layer, batches); err != nil {
			c.MarkDirty()
			return errors.Wrapf(err, "upload chunk %v layer %d", c.Coord, layer)
		}
	}
	return nil
}

// BuildLayer generates one layer of a chunk without touching budget or
// resources.
func (m *Mesher) BuildLayer(coord world.ChunkCoord, layer int) ([]Batch, error) {
	c := m.byCoord[coord]
	if c == nil {
		return nil, errors.Errorf("no chunk at %v", coord)
	}
	return m.buildLayer(c, layer)
}

func (m *Mesher) buildLayer(c *world.Chunk, layer int) ([]Batch, error) {
	return buildChunkLayer(m.grid, m.batcher, m.recorder, c, layer)
}

// MarkDirty flags one chunk.
func (m *Mesher) MarkDirty(coord world.ChunkCoord) {
	if c := m.byCoord[coord]; c != nil {
		c.MarkDirty()
	}
}

// MarkAllDirty flags every chunk.
func (m *Mesher) MarkAllDirty() {
	for _, c := range m.chunks {
		c.MarkDirty()
	}
}

// MarkRegionDirty flags every chunk overlapping the inclusive block range.
func (m *Mesher) MarkRegionDirty(x0, y0, z0, x1, y1, z1 int) {
	cx0, cx1 := m.chunkRange(x0, x1, m.nx)
	cy0, cy1 := m.chunkRange(y0, y1, m.ny)
	cz0, cz1 := m.chunkRange(z0, z1, m.nz)
	for cx := cx0; cx <= cx1; cx++ {
		for cy := cy0; cy <= cy1; cy++ {
			for cz := cz0; cz <= cz1; cz++ {
				m.MarkDirty(world.ChunkCoord{X: cx, Y: cy, Z: cz})
			}
		}
	}
}

func (m *Mesher) chunkRange(lo, hi, n int) (int, int) {
	a := floorDiv(lo, m.size)
	b := floorDiv(hi, m.size)
	if a < 0 {
		a = 0
	}
	if b >= n {
		b = n - 1
	}
	return a, b
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && (a < 0) {
		q--
	}
	return q
}

// ProcessEvents drains the grid's change events and marks affected chunks.
// A changed block also dirties the chunks holding its six neighbours, since
// their face culling depends on it.
func (m *Mesher) ProcessEvents() {
	for _, e := range m.sub.Drain() {
		switch e.Kind {
		case world.TileChanged:
			m.MarkRegionDirty(e.X-1, e.Y-1, e.Z-1, e.X+1, e.Y+1, e.Z+1)
		case world.LightColumnChanged:
			m.MarkRegionDirty(e.X-1, e.Y0-1, e.Z-1, e.X+1, e.Y1+1, e.Z+1)
		case world.AllChanged:
			m.MarkAllDirty()
		}
	}
}
