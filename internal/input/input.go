package input

import (
	"sync"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// Action represents a logical game action, not a physical key
type Action int

// Action constants using iota
const (
	ActionMoveForward Action = iota
	ActionMoveBackward
	ActionMoveLeft
	ActionMoveRight
	ActionJump
	ActionSprint
	ActionPlace
	ActionBreak
	ActionSave
	ActionResetPosition
	ActionToggleFog
	ActionToggleProfiling
	ActionQuit
	ActionCount // Sentinel value for array sizing
)

// InputManager manages keyboard and mouse input state and maps physical keys/buttons to logical actions
type InputManager struct {
	mu sync.RWMutex

	// Key to action mapping (one key can map to multiple actions)
	keyToActions map[glfw.Key][]Action

	// Mouse button to action mapping
	mouseButtonToActions map[glfw.MouseButton][]Action

	// Current frame state (indexed by Action)
	currentState [ActionCount]bool

	// Previous frame state (for edge detection)
	prevState [ActionCount]bool

	// Just pressed/released flags (reset each frame)
	justPressed  [ActionCount]bool
	justReleased [ActionCount]bool

	// Cursor movement accumulated since the last MouseDelta call
	lastX, lastY   float64
	dx, dy         float64
	firstCursorPos bool
}

// NewInputManager creates a new InputManager with default key bindings
func NewInputManager() *InputManager {
	im := &InputManager{
		keyToActions:         make(map[glfw.Key][]Action),
		mouseButtonToActions: make(map[glfw.MouseButton][]Action),
		firstCursorPos:       true,
	}

	// Set default key bindings
	im.BindKey(glfw.KeyW, ActionMoveForward)
	im.BindKey(glfw.KeyUp, ActionMoveForward)
	im.BindKey(glfw.KeyS, ActionMoveBackward)
	im.BindKey(glfw.KeyDown, ActionMoveBackward)
	im.BindKey(glfw.KeyA, ActionMoveLeft)
	im.BindKey(glfw.KeyLeft, ActionMoveLeft)
	im.BindKey(glfw.KeyD, ActionMoveRight)
	im.BindKey(glfw.KeyRight, ActionMoveRight)
	im.BindKey(glfw.KeySpace, ActionJump)
	im.BindKey(glfw.KeyLeftSuper, ActionJump)
	im.BindKey(glfw.KeyLeftControl, ActionSprint)
	im.BindKey(glfw.KeyEnter, ActionSave)
	im.BindKey(glfw.KeyR, ActionResetPosition)
	im.BindKey(glfw.KeyF, ActionToggleFog)
	im.BindKey(glfw.KeyV, ActionToggleProfiling)
	im.BindKey(glfw.KeyEscape, ActionQuit)

	// Set default mouse button bindings
	im.BindMouseButton(glfw.MouseButtonLeft, ActionPlace)
	im.BindMouseButton(glfw.MouseButtonRight, ActionBreak)

	return im
}

// BindKey binds a physical key to a logical action
// Multiple keys can be bound to the same action (e.g., WASD and arrow keys)
func (im *InputManager) BindKey(key glfw.Key, action Action) {
	im.mu.Lock()
	defer im.mu.Unlock()

	if action < 0 || action >= ActionCount {
		return
	}

	im.keyToActions[key] = append(im.keyToActions[key], action)
}

// UnbindKey removes all action bindings for a key
func (im *InputManager) UnbindKey(key glfw.Key) {
	im.mu.Lock()
	defer im.mu.Unlock()

	delete(im.keyToActions, key)
}

// BindMouseButton binds a mouse button to a logical action
func (im *InputManager) BindMouseButton(button glfw.MouseButton, action Action) {
	im.mu.Lock()
	defer im.mu.Unlock()

	if action < 0 || action >= ActionCount {
		return
	}

	im.mouseButtonToActions[button] = append(im.mouseButtonToActions[button], action)
}

// UnbindMouseButton removes all action bindings for a mouse button
func (im *InputManager) UnbindMouseButton(button glfw.MouseButton) {
	im.mu.Lock()
	defer im.mu.Unlock()

	delete(im.mouseButtonToActions, button)
}

// HandleKeyEvent processes a key event and updates internal state
// This can be called from a custom key callback
func (im *InputManager) HandleKeyEvent(key glfw.Key, action glfw.Action) {
	im.mu.RLock()
	actions, exists := im.keyToActions[key]
	im.mu.RUnlock()

	if !exists {
		return
	}

	isPressed := action == glfw.Press || action == glfw.Repeat

	im.mu.Lock()
	for _, act := range actions {
		if act >= 0 && act < ActionCount {
			// Detect edges immediately when event arrives
			if isPressed && !im.currentState[act] {
				im.justPressed[act] = true
			}
			if !isPressed && im.currentState[act] {
				im.justReleased[act] = true
			}
			im.currentState[act] = isPressed
		}
	}
	im.mu.Unlock()
}

// HandleMouseButtonEvent processes a mouse button event and updates internal state
// This can be called from a custom mouse button callback
func (im *InputManager) HandleMouseButtonEvent(button glfw.MouseButton, action glfw.Action) {
	im.mu.RLock()
	actions, exists := im.mouseButtonToActions[button]
	im.mu.RUnlock()

	if !exists {
		return
	}

	isPressed := action == glfw.Press

	im.mu.Lock()
	for _, act := range actions {
		if act >= 0 && act < ActionCount {
			// Detect edges immediately when event arrives
			if isPressed && !im.currentState[act] {
				im.justPressed[act] = true
			}
			if !isPressed && im.currentState[act] {
				im.justReleased[act] = true
			}
			im.currentState[act] = isPressed
		}
	}
	im.mu.Unlock()
}

// HandleCursorPos accumulates cursor movement. The first position only
// primes the tracker. Upward motion yields a positive dy.
func (im *InputManager) HandleCursorPos(xpos, ypos float64) {
	im.mu.Lock()
	defer im.mu.Unlock()

	if im.firstCursorPos {
		im.lastX, im.lastY = xpos, ypos
		im.firstCursorPos = false
		return
	}
	im.dx += xpos - im.lastX
	im.dy += im.lastY - ypos
	im.lastX, im.lastY = xpos, ypos
}

// MouseDelta returns and clears the cursor movement since the last call.
func (im *InputManager) MouseDelta() (dx, dy float64) {
	im.mu.Lock()
	defer im.mu.Unlock()

	dx, dy = im.dx, im.dy
	im.dx, im.dy = 0, 0
	return dx, dy
}

// ResetCursor forgets the last cursor position, e.g. after the cursor was
// recaptured.
func (im *InputManager) ResetCursor() {
	im.mu.Lock()
	defer im.mu.Unlock()

	im.firstCursorPos = true
	im.dx, im.dy = 0, 0
}

// MovementAxes returns the held movement keys as forward and strafe values
// in [-1, 1].
func (im *InputManager) MovementAxes() (forward, strafe float32) {
	if im.IsActive(ActionMoveForward) {
		forward++
	}
	if im.IsActive(ActionMoveBackward) {
		forward--
	}
	if im.IsActive(ActionMoveRight) {
		strafe++
	}
	if im.IsActive(ActionMoveLeft) {
		strafe--
	}
	return forward, strafe
}

// SetCallbacks routes the window's key, mouse button and cursor events
// into this input manager. Call once during initialization.
func (im *InputManager) SetCallbacks(window *glfw.Window) {
	window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		im.HandleKeyEvent(key, action)
	})
	window.SetMouseButtonCallback(func(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		im.HandleMouseButtonEvent(button, action)
	})
	window.SetCursorPosCallback(func(w *glfw.Window, xpos, ypos float64) {
		im.HandleCursorPos(xpos, ypos)
	})
}

// PostUpdate must be called at the end of each frame to update edge detection states
// This should be called after all input checks are done
func (im *InputManager) PostUpdate() {
	im.mu.Lock()
	defer im.mu.Unlock()

	// Reset edge flags and update prev state
	for i := range ActionCount {
		im.justPressed[i] = false
		im.justReleased[i] = false
		im.prevState[i] = im.currentState[i]
	}
}

// IsActive returns true if the action is currently being held down
func (im *InputManager) IsActive(action Action) bool {
	if action < 0 || action >= ActionCount {
		return false
	}

	im.mu.RLock()
	defer im.mu.RUnlock()

	return im.currentState[action]
}

// JustPressed returns true only if the action was pressed in the current frame
func (im *InputManager) JustPressed(action Action) bool {
	if action < 0 || action >= ActionCount {
		return false
	}

	im.mu.RLock()
	defer im.mu.RUnlock()

	return im.justPressed[action]
}

// JustReleased returns true only if the action was released in the current frame
func (im *InputManager) JustReleased(action Action) bool {
	if action < 0 || action >= ActionCount {
		return false
	}

	im.mu.RLock()
	defer im.mu.RUnlock()

	return im.justReleased[action]
}
