package engine

import (
	"sync"

	"github.com/go-gl/glfw/v3.3/glfw"

	"asciimosaic/pkg/config"
)

// Action is a runtime parameter change requested from the keyboard
type Action int

const (
	ToggleSource Action = iota + 1
	IncreaseDistortion
	DecreaseDistortion
	RebuildAtlas
	Quit
)

func (a Action) String() string {
	switch a {
	case ToggleSource:
		return "toggle source"
	case IncreaseDistortion:
		return "increase distortion"
	case DecreaseDistortion:
		return "decrease distortion"
	case RebuildAtlas:
		return "rebuild atlas"
	case Quit:
		return "quit"
	}
	return "unknown"
}

type keyBinding struct {
	key    glfw.Key
	action Action
}

var keyBindings = []keyBinding{
	{glfw.KeyEscape, Quit},
	{glfw.KeySpace, ToggleSource},
	{glfw.KeyUp, IncreaseDistortion},
	{glfw.KeyDown, DecreaseDistortion},
	{glfw.KeyR, RebuildAtlas},
}

// Params are the runtime-adjustable material parameters
type Params struct {
	UseSceneTexture bool
	Distortion      float64
}

// Apply changes the parameters for an action and reports whether they changed
func (p *Params) Apply(a Action) bool {
	switch a {
	case ToggleSource:
		p.UseSceneTexture = !p.UseSceneTexture
		return true
	case IncreaseDistortion, DecreaseDistortion:
		step := config.BarrelDistortionStep
		if a == DecreaseDistortion {
			step = -step
		}
		k := config.ClampDistortion(p.Distortion + step)
		changed := k != p.Distortion
		p.Distortion = k
		return changed
	}
	return false
}

// InputHandler tracks the bound keys between frames and collects files
// dropped on the window.
type InputHandler struct {
	window       *glfw.Window
	currentKeys  map[glfw.Key]bool
	previousKeys map[glfw.Key]bool

	mutex sync.Mutex
	drops []string
}

// NewInputHandler installs the drop callback on window
func NewInputHandler(window *glfw.Window) *InputHandler {
	handler := &InputHandler{
		window:       window,
		currentKeys:  make(map[glfw.Key]bool),
		previousKeys: make(map[glfw.Key]bool),
	}

	window.SetDropCallback(func(_ *glfw.Window, names []string) {
		handler.mutex.Lock()
		handler.drops = append(handler.drops, names...)
		handler.mutex.Unlock()
	})

	return handler
}

// Update samples the bound keys
func (ih *InputHandler) Update() {
	ih.previousKeys, ih.currentKeys = ih.currentKeys, ih.previousKeys
	for _, b := range keyBindings {
		ih.currentKeys[b.key] = ih.window.GetKey(b.key) == glfw.Press
	}
}

// IsKeyPressed reports whether key went down this frame
func (ih *InputHandler) IsKeyPressed(key glfw.Key) bool {
	return ih.currentKeys[key] && !ih.previousKeys[key]
}

// Actions returns the actions whose keys went down this frame
func (ih *InputHandler) Actions() []Action {
	return pressedActions(ih.currentKeys, ih.previousKeys)
}

// TakeDrops returns and clears the dropped file paths
func (ih *InputHandler) TakeDrops() []string {
	ih.mutex.Lock()
	defer ih.mutex.Unlock()
	drops := ih.drops
	ih.drops = nil
	return drops
}

func pressedActions(current, previous map[glfw.Key]bool) []Action {
	var actions []Action
	for _, b := range keyBindings {
		if current[b.key] && !previous[b.key] {
			actions = append(actions, b.action)
		}
	}
	return actions
}
