package main

import (
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/pkg/errors"

	"voxelcore/internal/config"
)

func setupWindow(cfg *config.Config) (*glfw.Window, error) {
	if err := glfw.Init(); err != nil {
		return nil, errors.Wrap(err, "init glfw")
	}

	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)

	window, err := glfw.CreateWindow(cfg.Render.WindowWidth, cfg.Render.WindowHeight, "voxelcore", nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, errors.Wrap(err, "create window")
	}
	window.MakeContextCurrent()

	if cfg.Render.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}
	window.SetInputMode(glfw.CursorMode, glfw.CursorDisabled)

	return window, nil
}
