package meshing

import (
	"context"
	"sync"

	"voxelcore/internal/profiling"
	"voxelcore/internal/world"
)

// buildJob asks for both layers of one chunk.
type buildJob struct {
	chunk  *world.Chunk
	layers [LayerCount][]Batch
	err    error
	done   *sync.WaitGroup
}

// BuildPool generates chunk geometry on a fixed set of goroutines. Each
// worker owns its batcher, so jobs never share vertex buffers. The grid must
// not change while a Build call is running.
type BuildPool struct {
	grid   *world.Grid
	jobs   chan *buildJob
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewBuildPool starts workers goroutines reading grid.
func NewBuildPool(grid *world.Grid, workers int) *BuildPool {
	if workers < 1 {
		workers = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	p := &BuildPool{
		grid:   grid,
		jobs:   make(chan *buildJob, workers*2),
		ctx:    ctx,
		cancel: cancel,
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

func (p *BuildPool) worker() {
	defer p.wg.Done()

	rec := &Recorder{}
	b := NewBatcher(rec)
	for {
		select {
		case job, ok := <-p.jobs:
			if !ok {
				return
			}
			for layer := 0; layer < LayerCount; layer++ {
				batches, err := buildChunkLayer(p.grid, b, rec, job.chunk, layer)
				if err != nil {
					job.err = err
					break
				}
				job.layers[layer] = batches
			}
			job.done.Done()
		case <-p.ctx.Done():
			return
		}
	}
}

// Build runs the jobs and waits for all of them. Results are written into
// each job.
func (p *BuildPool) Build(jobs []*buildJob) {
	defer profiling.Track("meshing.PoolBuild")()
	var done sync.WaitGroup
	done.Add(len(jobs))
	for _, job := range jobs {
		job.done = &done
		select {
		case p.jobs <- job:
		case <-p.ctx.Done():
			done.Done()
		}
	}
	done.Wait()
}

// Shutdown stops the workers. Build must not be called afterwards.
func (p *BuildPool) Shutdown() {
	p.cancel()
	p.wg.Wait()
}

// buildChunkLayer tessellates one layer of a chunk through b, which must
// feed rec.
func buildChunkLayer(grid *world.Grid, b *Batcher, rec *Recorder, c *world.Chunk, layer int) ([]Batch, error) {
	rec.Reset()
	b.Init()
	for x := c.X0; x < c.X1; x++ {
		for y := c.Y0; y < c.Y1; y++ {
			for z := c.Z0; z < c.Z1; z++ {
				t := TileFor(grid.Block(x, y, z))
				if t == nil {
					continue
				}
				t.Render(b, grid, layer, x, y, z)
			}
		}
	}
	if err := b.Flush(); err != nil {
		return nil, err
	}
	return rec.Take(), nil
}
