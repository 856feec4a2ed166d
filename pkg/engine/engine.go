package engine

import (
	"fmt"
	"time"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"

	"asciimosaic/internal/logger"
	"asciimosaic/internal/rng"
	"asciimosaic/pkg/config"
	"asciimosaic/pkg/glyph"
	"asciimosaic/pkg/layout"
	"asciimosaic/pkg/scene"
	"asciimosaic/pkg/shader"
)

// defaultImageSize is the edge of the generated fallback image
const defaultImageSize = 512

// Engine owns the window, the GL resources and the frame loop
type Engine struct {
	window *glfw.Window
	config *config.Config
	logger *logger.Logger
	input  *InputHandler

	params  Params
	palette shader.Palette

	glyphs   *glyph.Builder
	dict     glyph.Dictionary
	atlas    *glyph.Atlas
	atlasTex uint32
	textures TextureStore

	compositor    *scene.Compositor
	target        *OffscreenTarget
	sceneRenderer *SceneRenderer
	camera        *scene.Camera
	mesh          *InstancedMesh
	materials     *MaterialCache
	images        *ImageSlot
	frames        *FrameOrchestrator
	clock         *Clock

	width     int
	height    int
	isRunning bool
	frameRate int
}

// NewEngine opens the window and builds every GPU resource
func NewEngine(cfg *config.Config, log *logger.Logger) (*Engine, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize GLFW: %w", err)
	}

	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	window, err := glfw.CreateWindow(cfg.Window.Width, cfg.Window.Height, cfg.Window.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("failed to create GLFW window: %w", err)
	}
	window.MakeContextCurrent()

	if err := gl.Init(); err != nil {
		window.Destroy()
		glfw.Terminate()
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	if cfg.Window.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}
	log.Infof("OpenGL %s, GLSL %s", gl.GoStr(gl.GetString(gl.VERSION)), gl.GoStr(gl.GetString(gl.SHADING_LANGUAGE_VERSION)))

	e := &Engine{
		window:    window,
		config:    cfg,
		logger:    log,
		textures:  GLTextures{},
		frameRate: cfg.Window.FrameRate,
		params: Params{
			UseSceneTexture: cfg.Material.UseSceneTexture,
			Distortion:      config.ClampDistortion(cfg.Material.BarrelDistortion),
		},
	}
	e.width, e.height = window.GetFramebufferSize()

	if err := e.initResources(); err != nil {
		e.cleanup()
		return nil, err
	}

	e.input = NewInputHandler(window)
	window.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		e.resize(width, height)
	})

	return e, nil
}

// initResources builds the atlas, the scene, the layout and the passes
func (e *Engine) initResources() error {
	cfg := e.config

	palette, err := shader.ParsePalette(cfg.Material.Palette)
	if err != nil {
		return fmt.Errorf("invalid palette: %w", err)
	}
	e.palette = palette

	e.dict, err = glyph.NewDictionary(cfg.Atlas.Dictionary)
	if err != nil {
		return err
	}
	e.glyphs, err = glyph.NewBuilder(glyph.Options{
		CellSize:   cfg.Atlas.CellSize,
		FontSize:   cfg.Atlas.FontSize,
		GlowFrom:   cfg.Atlas.GlowFrom,
		GlowPasses: cfg.Atlas.GlowPasses,
	})
	if err != nil {
		return fmt.Errorf("failed to create glyph builder: %w", err)
	}
	if err := e.rebuildAtlas(); err != nil {
		return err
	}

	sceneRand := rng.New(cfg.Scene.Seed)
	e.logger.Debugf("Scene seed %d", sceneRand.Seed())
	e.compositor = scene.New(cfg.Scene, sceneRand)
	e.compositor.Camera().SetAspect(e.width, e.height)

	e.target, err = NewOffscreenTarget(e.width, e.height)
	if err != nil {
		return fmt.Errorf("failed to create off-screen target: %w", err)
	}
	e.sceneRenderer, err = NewSceneRenderer(CompileProgram)
	if err != nil {
		return err
	}

	e.camera = scene.NewCamera(cfg.Scene)
	e.camera.SetAspect(e.width, e.height)

	layoutRand := rng.New(cfg.Layout.Seed)
	e.logger.Debugf("Layout seed %d", layoutRand.Seed())
	extentW, extentH := e.camera.VisibleExtent(cfg.Scene.CameraZ)
	attrs, edge, err := layout.Build(cfg.Layout, extentW, extentH, layoutRand)
	if err != nil {
		return err
	}
	e.mesh, err = NewInstancedMesh(float32(edge), attrs)
	if err != nil {
		return err
	}
	e.logger.Infof("Mosaic: %s layout, %d instances, glyph edge %.3f", cfg.Layout.Mode, attrs.Len(), edge)

	e.images = NewImageSlot(e.textures, e.logger.With("image"))
	switch {
	case cfg.Material.Image != "":
		if err := e.images.Load(cfg.Material.Image); err != nil {
			e.logger.Warnf("Static image unavailable: %v", err)
		}
	case cfg.Material.DefaultImage:
		if err := e.images.Replace(scene.GradientImage(defaultImageSize, defaultImageSize)); err != nil {
			return err
		}
	}

	e.materials = NewMaterialCache(CompileProgram)
	e.frames = NewFrameOrchestrator(
		e.compositor,
		&OffscreenScenePass{Compositor: e.compositor, Target: e.target, Renderer: e.sceneRenderer},
		&ScreenMosaicPass{
			Camera:    e.camera,
			Mesh:      e.mesh,
			Materials: e.materials,
			Inputs:    e.materialInputs,
			Viewport:  func() (int, int) { return e.width, e.height },
		},
		e.logger.With("frame"),
	)

	return nil
}

// rebuildAtlas renders the dictionary again and swaps the atlas texture
func (e *Engine) rebuildAtlas() error {
	start := time.Now()
	atlas, err := e.glyphs.Build(e.dict)
	if err != nil {
		return fmt.Errorf("failed to build glyph atlas: %w", err)
	}
	tex, err := e.textures.Upload(atlas.Image)
	if err != nil {
		return fmt.Errorf("failed to upload glyph atlas: %w", err)
	}

	prev := e.atlasTex
	e.atlas, e.atlasTex = atlas, tex
	e.textures.Release(prev)

	e.logger.Infof("Glyph atlas: %d glyphs, %dx%d px in %v",
		atlas.Len(), atlas.Image.Rect.Dx(), atlas.Image.Rect.Dy(), time.Since(start).Round(time.Millisecond))
	return nil
}

func (e *Engine) materialInputs() MaterialInputs {
	image, _ := e.images.Texture()
	return MaterialInputs{
		Atlas:           e.atlasTex,
		GlyphCount:      e.atlas.Len(),
		SceneTexture:    e.target.Texture(),
		ImageTexture:    image,
		UseSceneTexture: e.params.UseSceneTexture,
		Distortion:      e.params.Distortion,
		Palette:         e.palette,
	}
}

// Run starts the main loop
func (e *Engine) Run() {
	e.isRunning = true
	e.clock = NewClock()

	for e.isRunning && !e.window.ShouldClose() {
		frameStart := time.Now()

		e.processInput()

		// uploads land between frames
		e.images.ApplyPending()

		elapsed, delta := e.clock.Tick()
		if err := e.frames.Frame(elapsed, delta); err != nil {
			e.logger.Errorf("Frame failed: %v", err)
			e.isRunning = false
		}

		e.window.SwapBuffers()
		glfw.PollEvents()

		if e.frameRate > 0 {
			frameTime := time.Since(frameStart)
			targetFrameTime := time.Second / time.Duration(e.frameRate)
			if frameTime < targetFrameTime {
				time.Sleep(targetFrameTime - frameTime)
			}
		}
	}

	e.cleanup()
}

// processInput applies key actions and queues dropped images
func (e *Engine) processInput() {
	e.input.Update()

	for _, action := range e.input.Actions() {
		switch action {
		case Quit:
			e.isRunning = false
		case RebuildAtlas:
			if err := e.rebuildAtlas(); err != nil {
				e.logger.Errorf("Atlas rebuild failed: %v", err)
			}
		default:
			if e.params.Apply(action) {
				e.logger.Infof("%s: scene texture %t, barrel distortion %+.2f",
					action, e.params.UseSceneTexture, e.params.Distortion)
			}
		}
	}

	for _, path := range e.input.TakeDrops() {
		e.logger.Debugf("Queued dropped file %s", path)
		e.images.Queue(path)
	}
}

// resize keeps the target and both camera aspects in sync with the framebuffer
func (e *Engine) resize(width, height int) {
	if width <= 0 || height <= 0 {
		// minimized
		return
	}
	e.logger.Debugf("Framebuffer resized to %dx%d", width, height)
	e.width, e.height = width, height
	e.target.Resize(width, height)
	e.compositor.Camera().SetAspect(width, height)
	e.camera.SetAspect(width, height)
}

// cleanup releases resources in reverse order of creation
func (e *Engine) cleanup() {
	e.logger.Info("Shutting down engine...")
	if e.materials != nil {
		e.materials.Close()
	}
	if e.images != nil {
		e.images.Close()
	}
	if e.mesh != nil {
		e.mesh.Close()
	}
	if e.sceneRenderer != nil {
		e.sceneRenderer.Close()
	}
	if e.target != nil {
		e.target.Close()
	}
	if e.atlasTex != 0 {
		e.textures.Release(e.atlasTex)
		e.atlasTex = 0
	}
	e.window.Destroy()
	glfw.Terminate()
}
