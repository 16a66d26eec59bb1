package game

import (
	"fmt"
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"voxelcore/internal/config"
	"voxelcore/internal/culling"
	"voxelcore/internal/logging"
	"voxelcore/internal/meshing"
	"voxelcore/internal/physics"
	"voxelcore/internal/player"
	"voxelcore/internal/profiling"
	"voxelcore/internal/world"
)

// FrameInput is everything the controls report for one frame.
type FrameInput struct {
	Intent player.Intent
	// LookDX and LookDY are the mouse movement since the last frame,
	// positive dy meaning up.
	LookDX, LookDY float32

	Place, Break  bool
	Save          bool
	ResetPosition bool
	ToggleFog     bool
	ShowProfile   bool
	Quit          bool
}

// Controls is polled once at the start of every frame.
type Controls interface {
	Poll() FrameInput
}

// Renderer is the frame-level part of the graphics backend. Chunk geometry
// goes through meshing.Resources instead.
type Renderer interface {
	BeginFrame(proj, view mgl32.Mat4)
	SetFog(enabled bool)
	DrawHighlight(batches []meshing.Batch, alpha float32) error
	EndFrame() error
}

// Session runs one loaded level: it ticks the player, applies edits and
// drives the chunk renderer.
type Session struct {
	Grid   *world.Grid
	Player *player.Player
	Mesher *meshing.Mesher
	Timer  *Timer
	Store  world.Store

	Hit    physics.HitResult
	HasHit bool

	controls Controls
	renderer Renderer

	fov, near, far float32
	aspect         float32
	reach          float32

	highlight   *meshing.Batcher
	highlightTo *meshing.Recorder

	start            time.Time
	done             bool
	Frames           int
	lastFPSCheckTime time.Time
	lastUpdates      int
	status           string
}

// NewSession wires a grid to its mesher, player and backends. The grid is
// expected to be loaded already.
func NewSession(cfg *config.Config, grid *world.Grid, store world.Store, res meshing.Resources, r Renderer, c Controls) *Session {
	cfg.Apply()
	p := player.New(grid, nil)
	p.Sensitivity = cfg.Player.Sensitivity

	rec := &meshing.Recorder{}
	s := &Session{
		Grid:             grid,
		Player:           p,
		Mesher:           meshing.NewMesher(grid, cfg.World.ChunkSize, config.GetRebuildBudget(), res),
		Timer:            NewTimer(float64(cfg.Game.TicksPerSecond)),
		Store:            store,
		controls:         c,
		renderer:         r,
		fov:              cfg.Render.FOV,
		near:             cfg.Render.Near,
		far:              cfg.Render.Far,
		aspect:           float32(cfg.Render.WindowWidth) / float32(cfg.Render.WindowHeight),
		reach:            cfg.Player.Reach,
		highlight:        meshing.NewBatcher(rec),
		highlightTo:      rec,
		start:            time.Now(),
		lastFPSCheckTime: time.Now(),
	}
	s.Mesher.SetWorkers(cfg.Render.MeshWorkers)
	logging.Info("session: %dx%dx%d grid, %d chunks", grid.Width, grid.Height, grid.Depth, len(s.Mesher.Chunks()))
	return s
}

// Close releases the mesher's resources.
func (s *Session) Close() {
	s.Mesher.Close()
}

// Done reports whether the player asked to quit.
func (s *Session) Done() bool {
	return s.done
}

// SetViewport updates the projection aspect ratio.
func (s *Session) SetViewport(width, height int) {
	if width > 0 && height > 0 {
		s.aspect = float32(width) / float32(height)
	}
}

// Status is the frame rate line of the last full second.
func (s *Session) Status() string {
	return s.status
}

// Save writes the grid to the store.
func (s *Session) Save() error {
	if s.Store == nil {
		return nil
	}
	return s.Grid.Save(s.Store)
}

// Frame runs one frame: ticks, look, pick, edits, then the render passes.
// Only backend failures are returned; persistence failures are logged.
func (s *Session) Frame() error {
	defer profiling.Track("game.Frame")()
	in := s.controls.Poll()
	if in.Quit {
		s.done = true
		return nil
	}

	if in.ResetPosition {
		s.Player.Reset()
	}
	s.Timer.Advance()
	func() {
		defer profiling.Track("player.Ticks")()
		for i := 0; i < s.Timer.Ticks; i++ {
			s.Player.Tick(in.Intent)
		}
	}()

	s.Player.Turn(in.LookDX, in.LookDY)
	s.Hit, s.HasHit = s.Player.Pick(s.Timer.A, s.reach)
	s.applyActions(in)

	s.Mesher.SetBudget(config.GetRebuildBudget())
	s.Mesher.ProcessEvents()
	s.Mesher.BeginFrame()
	if err := s.render(); err != nil {
		return err
	}

	s.countFrame()
	return nil
}

func (s *Session) applyActions(in FrameInput) {
	if s.HasHit {
		if in.Break {
			s.Player.Break(s.Hit)
		}
		if in.Place {
			s.Player.Place(s.Hit, world.BlockTypeRock)
		}
	}
	if in.Save {
		if err := s.Save(); err != nil {
			logging.Warn("save failed: %v", err)
		}
	}
	if in.ToggleFog {
		config.SetFogEnabled(!config.GetFogEnabled())
	}
	if in.ShowProfile {
		logging.Info("frame: %s", profiling.TopN(5))
	}
}

func (s *Session) render() error {
	defer profiling.Track("game.Render")()
	proj := mgl32.Perspective(mgl32.DegToRad(s.fov), s.aspect, s.near, s.far)
	view := s.Player.ViewMatrix(s.Timer.A)
	frustum := culling.New(proj, view)

	s.renderer.BeginFrame(proj, view)

	s.renderer.SetFog(false)
	if err := s.Mesher.RenderVisible(frustum, meshing.LayerLit); err != nil {
		return errors.Wrap(err, "render lit layer")
	}
	s.renderer.SetFog(config.GetFogEnabled())
	if err := s.Mesher.RenderVisible(frustum, meshing.LayerShaded); err != nil {
		return errors.Wrap(err, "render shaded layer")
	}

	if s.HasHit {
		if err := s.drawHighlight(); err != nil {
			return err
		}
	}
	s.renderer.SetFog(false)
	return s.renderer.EndFrame()
}

func (s *Session) drawHighlight() error {
	s.highlightTo.Reset()
	s.highlight.Init()
	s.highlight.Plain()
	meshing.RenderFace(s.highlight, s.Hit.X, s.Hit.Y, s.Hit.Z, s.Hit.Face)
	if err := s.highlight.Flush(); err != nil {
		return errors.Wrap(err, "build highlight")
	}
	ms := float64(time.Since(s.start).Milliseconds())
	alpha := float32(math.Sin(ms/100))*0.2 + 0.4
	if err := s.renderer.DrawHighlight(s.highlightTo.Take(), alpha); err != nil {
		return errors.Wrap(err, "draw highlight")
	}
	return nil
}

func (s *Session) countFrame() {
	s.Frames++
	if time.Since(s.lastFPSCheckTime) >= time.Second {
		updates := s.Mesher.Updates()
		s.status = fmt.Sprintf("%d fps, %d chunk updates", s.Frames, updates-s.lastUpdates)
		logging.Debug("%s", s.status)
		s.lastUpdates = updates
		s.Frames = 0
		s.lastFPSCheckTime = time.Now()
	}
}
