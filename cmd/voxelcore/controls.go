package main

import (
	"voxelcore/internal/game"
	"voxelcore/internal/input"
	"voxelcore/internal/player"
)

// windowControls turns the input manager's state into per-frame input.
type windowControls struct {
	im *input.InputManager
}

func (c windowControls) Poll() game.FrameInput {
	forward, strafe := c.im.MovementAxes()
	dx, dy := c.im.MouseDelta()
	return game.FrameInput{
		Intent: player.Intent{
			Forward: forward,
			Strafe:  strafe,
			Jump:    c.im.IsActive(input.ActionJump),
			Sprint:  c.im.IsActive(input.ActionSprint),
		},
		LookDX:        float32(dx),
		LookDY:        float32(dy),
		Place:         c.im.JustPressed(input.ActionPlace),
		Break:         c.im.JustPressed(input.ActionBreak),
		Save:          c.im.JustPressed(input.ActionSave),
		ResetPosition: c.im.JustPressed(input.ActionResetPosition),
		ToggleFog:     c.im.JustPressed(input.ActionToggleFog),
		ShowProfile:   c.im.JustPressed(input.ActionToggleProfiling),
		Quit:          c.im.JustPressed(input.ActionQuit),
	}
}
