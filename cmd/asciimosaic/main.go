package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"log"
	"os"
	"os/signal"
	"runtime"

	"github.com/disintegration/imaging"
	"github.com/gdamore/tcell/v2"

	"asciimosaic/internal/logger"
	"asciimosaic/internal/rng"
	"asciimosaic/pkg/config"
	"asciimosaic/pkg/engine"
	"asciimosaic/pkg/glyph"
	"asciimosaic/pkg/preview"
	"asciimosaic/pkg/scene"
	"asciimosaic/pkg/shader"
)

func init() {
	// GLFW requires the program to be running on the main thread
	runtime.LockOSThread()
}

func main() {
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	previewMode := flag.String("preview", "", "Output: window or terminal (overrides config)")
	imagePath := flag.String("image", "", "Static image used as brightness source (overrides config)")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn, error (overrides config)")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		if _, statErr := os.Stat(*configPath); statErr == nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
		// missing file: run on defaults
	}
	if *previewMode != "" {
		cfg.Preview.Mode = *previewMode
	}
	if *imagePath != "" {
		cfg.Material.Image = *imagePath
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	switch cfg.Preview.Mode {
	case config.PreviewTerminal:
		err = runTerminal(cfg)
	default:
		err = runWindow(cfg)
	}
	if err != nil {
		log.Fatal(err)
	}
}

func runWindow(cfg *config.Config) error {
	logger, err := logger.NewMultiLogger(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		return err
	}
	defer logger.Close()
	logger.Info("Starting asciimosaic...")

	mosaic, err := engine.NewEngine(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize engine: %w", err)
	}

	logger.Info("Engine initialized, starting render loop...")
	mosaic.Run()
	return nil
}

// runTerminal draws the mosaic of a static image with tcell. The terminal is
// owned by the UI, so logs go to the configured file or nowhere.
func runTerminal(cfg *config.Config) error {
	var log *logger.Logger
	if cfg.Log.File != "" {
		l, err := logger.NewFileLogger(cfg.Log.Level, cfg.Log.File)
		if err != nil {
			return err
		}
		log = l
	} else {
		log = logger.NewWriterLogger("fatal", os.Stderr)
	}
	defer log.Close()

	dict, err := glyph.NewDictionary(cfg.Atlas.Dictionary)
	if err != nil {
		return err
	}
	palette, err := shader.ParsePalette(cfg.Material.Palette)
	if err != nil {
		return err
	}

	var img image.Image
	if cfg.Material.Image != "" {
		img, err = imaging.Open(cfg.Material.Image, imaging.AutoOrientation(true))
		if err != nil {
			return fmt.Errorf("open image %s: %w", cfg.Material.Image, err)
		}
	} else {
		img = scene.GradientImage(256, 256)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	term := preview.NewTerminal(screen, dict, palette, rng.New(cfg.Layout.Seed), log.With("preview"))
	term.SetImage(img)
	term.SetDistortion(cfg.Material.BarrelDistortion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log.Info("Terminal preview started")
	if err := term.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
