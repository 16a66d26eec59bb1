package main

import (
	"sync"
	"time"

	"github.com/faiface/mainthread"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/pkg/errors"
	"github.com/xlab/closer"

	"voxelcore/internal/config"
	"voxelcore/internal/game"
	"voxelcore/internal/graphics"
	"voxelcore/internal/input"
	"voxelcore/internal/logging"
	"voxelcore/internal/profiling"
	"voxelcore/internal/storage"
	"voxelcore/internal/world"
)

// slowFrame is the frame time above which the top profiling entries are
// logged.
const slowFrame = 50 * time.Millisecond

type app struct {
	window    *glfw.Window
	input     *input.InputManager
	renderer  *graphics.Renderer
	resources *graphics.ChunkResources
	session   *game.Session
	exporter  *profiling.Exporter

	// held for the whole frame so an interrupt cannot save mid-edit
	mu    sync.Mutex
	saved bool
}

func run(cfg *config.Config) error {
	codec, err := storage.ParseCodec(cfg.World.Compression)
	if err != nil {
		return err
	}
	store := storage.NewFileStore(cfg.World.SavePath, codec)

	grid := world.New(cfg.World.Width, cfg.World.Height, cfg.World.Depth)
	// a missing or damaged level keeps the generated terrain
	_ = grid.Load(store)

	a := &app{input: input.NewInputManager()}
	if cfg.Metrics.Listen != "" {
		a.exporter = profiling.NewExporter()
		a.exporter.StartHTTP(cfg.Metrics.Listen)
	}

	defer mainthread.Call(a.teardown)
	mainthread.Call(func() {
		err = a.setup(cfg, grid, store)
	})
	if err != nil {
		return err
	}
	closer.Bind(a.saveOnce)

	for {
		var done bool
		mainthread.Call(func() {
			done, err = a.frame()
		})
		if err != nil {
			return err
		}
		if done {
			break
		}
	}
	a.saveOnce()
	return nil
}

func (a *app) setup(cfg *config.Config, grid *world.Grid, store world.Store) error {
	window, err := setupWindow(cfg)
	if err != nil {
		return err
	}
	a.window = window

	width, height := window.GetFramebufferSize()
	a.renderer, err = graphics.NewRenderer(width, height, cfg.Render.Atlas, cfg.Render.FogDensity)
	if err != nil {
		return errors.Wrap(err, "create renderer")
	}
	a.resources = graphics.NewChunkResources()
	a.session = game.NewSession(cfg, grid, store, a.resources, a.renderer, windowControls{im: a.input})
	a.session.SetViewport(width, height)

	a.input.SetCallbacks(window)
	window.SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
		a.renderer.SetViewport(width, height)
		a.session.SetViewport(width, height)
	})
	window.SetFocusCallback(func(w *glfw.Window, focused bool) {
		if focused {
			a.input.ResetCursor()
		}
	})
	return nil
}

func (a *app) frame() (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	profiling.ResetFrame()
	start := time.Now()

	func() { defer profiling.Track("glfw.PollEvents")(); glfw.PollEvents() }()
	if a.window.ShouldClose() {
		return true, nil
	}

	a.renderer.SetOverlay([]string{a.session.Status()})
	if err := a.session.Frame(); err != nil {
		return true, err
	}
	if a.session.Done() {
		return true, nil
	}

	func() { defer profiling.Track("glfw.SwapBuffers")(); a.window.SwapBuffers() }()
	a.input.PostUpdate()

	if a.exporter != nil {
		a.exporter.Publish()
	}
	if d := time.Since(start); d > slowFrame {
		logging.Debug("slow frame: %v (glfw %v). Top tasks: %s", d, profiling.SumWithPrefix("glfw."), profiling.TopN(5))
	}
	return false, nil
}

func (a *app) saveOnce() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.saved || a.session == nil {
		return
	}
	a.saved = true
	if err := a.session.Save(); err != nil {
		logging.Error("save on exit: %v", err)
	}
}

func (a *app) teardown() {
	if a.session != nil {
		a.session.Close()
	}
	if a.resources != nil {
		a.resources.Dispose()
	}
	if a.renderer != nil {
		a.renderer.Dispose()
	}
	if a.window != nil {
		a.window.Destroy()
	}
	glfw.Terminate()
}
