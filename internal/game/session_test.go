package game

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voxelcore/internal/config"
	"voxelcore/internal/meshing"
	"voxelcore/internal/physics"
	"voxelcore/internal/storage"
	"voxelcore/internal/world"
)

type scriptedControls struct {
	frames []FrameInput
}

func (c *scriptedControls) Poll() FrameInput {
	if len(c.frames) == 0 {
		return FrameInput{}
	}
	in := c.frames[0]
	c.frames = c.frames[1:]
	return in
}

// recordingRenderer logs frame calls; as a meshing.Sink it also logs the
// chunk batches drawn through MemoryResources.
type recordingRenderer struct {
	calls      []string
	highlights [][]meshing.Batch
	failEnd    error
}

func (r *recordingRenderer) BeginFrame(proj, view mgl32.Mat4) { r.calls = append(r.calls, "begin") }

func (r *recordingRenderer) SetFog(enabled bool) {
	r.calls = append(r.calls, fmt.Sprintf("fog=%v", enabled))
}

func (r *recordingRenderer) DrawHighlight(batches []meshing.Batch, alpha float32) error {
	r.calls = append(r.calls, "highlight")
	r.highlights = append(r.highlights, batches)
	return nil
}

func (r *recordingRenderer) EndFrame() error {
	r.calls = append(r.calls, "end")
	return r.failEnd
}

func (r *recordingRenderer) Submit(b meshing.Batch) error {
	r.calls = append(r.calls, "chunk")
	return nil
}

type failingResources struct {
	*meshing.MemoryResources
}

func (failingResources) Draw(world.ChunkCoord, int) error { return errors.New("context lost") }

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.World.Width, cfg.World.Height, cfg.World.Depth = 32, 32, 16
	cfg.Render.RebuildBudget = 64
	return cfg
}

// newTestSession builds a session on default terrain with the player
// standing at the centre, looking straight down.
func newTestSession(t *testing.T, res meshing.Resources, frames ...FrameInput) (*Session, *recordingRenderer, *storage.MemoryStore) {
	t.Helper()
	prevBudget, prevFog := config.GetRebuildBudget(), config.GetFogEnabled()
	t.Cleanup(func() {
		config.SetRebuildBudget(prevBudget)
		config.SetFogEnabled(prevFog)
	})
	config.SetFogEnabled(true)

	cfg := testConfig()
	g := world.New(cfg.World.Width, cfg.World.Height, cfg.World.Depth)
	store := &storage.MemoryStore{Codec: storage.CodecGzip}
	r := &recordingRenderer{}
	if mem, ok := res.(*meshing.MemoryResources); ok {
		mem.DrawSink = r
	}
	s := NewSession(cfg, g, store, res, r, &scriptedControls{frames: frames})
	t.Cleanup(s.Close)

	clock := &fakeClock{t: time.Unix(0, 0)}
	s.Timer = newTimerWithClock(60, func() time.Time {
		clock.Step(50 * time.Millisecond)
		return clock.Now()
	})

	// surface is y=10, so the feet rest on y=11
	s.Player.SetPos(16.5, 11+0.9, 16.5)
	s.Player.Pitch = 90
	return s, r, store
}

func TestFrameRenderPassOrder(t *testing.T) {
	s, r, _ := newTestSession(t, meshing.NewMemoryResources())
	// overhang: the grass below it goes into the shaded layer
	s.Grid.SetBlock(20, 14, 20, world.BlockTypeRock)
	require.NoError(t, s.Frame())

	require.NotEmpty(t, r.calls)
	assert.Equal(t, "begin", r.calls[0])
	assert.Equal(t, "end", r.calls[len(r.calls)-1])

	idx := func(call string) int {
		for i, c := range r.calls {
			if c == call {
				return i
			}
		}
		return -1
	}
	unfogged, fogged, hl := idx("fog=false"), idx("fog=true"), idx("highlight")
	require.True(t, unfogged >= 0 && fogged > unfogged && hl > fogged, "calls: %v", r.calls)
	assert.Contains(t, r.calls[unfogged:fogged], "chunk", "lit layer drawn without fog")
	assert.Contains(t, r.calls[fogged:hl], "chunk", "shaded layer drawn with fog")
}

func TestFramePicksBlockUnderFeet(t *testing.T) {
	s, r, _ := newTestSession(t, meshing.NewMemoryResources())
	require.NoError(t, s.Frame())

	require.True(t, s.HasHit)
	assert.Equal(t, [3]int{16, 10, 16}, s.Hit.Position())
	assert.Equal(t, physics.FaceTop, s.Hit.Face)
	assert.True(t, s.Player.OnGround)

	require.Len(t, r.highlights, 1)
	require.Len(t, r.highlights[0], 1)
	hl := r.highlights[0][0]
	assert.Equal(t, 4, hl.Vertices)
	assert.False(t, hl.HasTexture())
	// top face sits on y=11
	for i := 0; i < hl.Vertices; i++ {
		assert.Equal(t, float32(11), hl.Positions[i*3+1])
	}
}

func TestFrameBreakRebuildsChunk(t *testing.T) {
	res := meshing.NewMemoryResources()
	s, _, _ := newTestSession(t, res, FrameInput{}, FrameInput{Break: true})
	s.Player.SetPos(8.5, 11+0.9, 8.5)
	require.NoError(t, s.Frame())
	require.Zero(t, s.Mesher.DirtyCount())
	updates := s.Mesher.Updates()

	require.NoError(t, s.Frame())
	assert.True(t, s.Grid.IsAir(8, 10, 8))
	// the broken block and its neighbours all lie inside chunk (0,0,0)
	assert.Equal(t, updates+1, s.Mesher.Updates())
	assert.Zero(t, s.Mesher.DirtyCount())
}

func TestFramePlaceIntoPlayerIsRefused(t *testing.T) {
	s, _, _ := newTestSession(t, meshing.NewMemoryResources(), FrameInput{Place: true})
	require.NoError(t, s.Frame())
	assert.True(t, s.Grid.IsAir(16, 11, 16))
}

func TestFrameSave(t *testing.T) {
	s, _, store := newTestSession(t, meshing.NewMemoryResources(), FrameInput{Save: true})
	require.Zero(t, store.Size())
	require.NoError(t, s.Frame())
	assert.NotZero(t, store.Size())

	loaded := world.NewEmpty(32, 32, 16)
	require.NoError(t, loaded.Load(store))
	assert.Equal(t, s.Grid.Bytes(), loaded.Bytes())
}

func TestFrameToggleFog(t *testing.T) {
	s, r, _ := newTestSession(t, meshing.NewMemoryResources(), FrameInput{ToggleFog: true})
	require.NoError(t, s.Frame())
	assert.False(t, config.GetFogEnabled())
	assert.NotContains(t, r.calls, "fog=true")
}

func TestFrameQuit(t *testing.T) {
	s, r, _ := newTestSession(t, meshing.NewMemoryResources(), FrameInput{Quit: true})
	require.NoError(t, s.Frame())
	assert.True(t, s.Done())
	assert.Empty(t, r.calls)
}

func TestFrameReportsBackendFailure(t *testing.T) {
	s, _, _ := newTestSession(t, failingResources{meshing.NewMemoryResources()})
	err := s.Frame()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "context lost")

	s2, r2, _ := newTestSession(t, meshing.NewMemoryResources())
	r2.failEnd = errors.New("swap failed")
	assert.Error(t, s2.Frame())
}

func TestFrameHonoursRebuildBudget(t *testing.T) {
	s, _, _ := newTestSession(t, meshing.NewMemoryResources())
	config.SetRebuildBudget(1)
	total := len(s.Mesher.Chunks())
	require.NoError(t, s.Frame())
	assert.LessOrEqual(t, s.Mesher.RebuiltThisFrame(), 1)
	assert.GreaterOrEqual(t, s.Mesher.DirtyCount(), total-1)
}
