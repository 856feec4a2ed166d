package engine

import (
	"fmt"
	"image"
	"sync"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // register webp with image.Decode

	"asciimosaic/internal/logger"
)

// ImageSlot owns the uploaded static image texture. At most one texture is
// live; a replaced texture is released exactly once, after its successor is
// committed. Replacements requested from callbacks are queued and applied
// between frames.
type ImageSlot struct {
	store   TextureStore
	log     *logger.Logger
	mutex   sync.Mutex
	current uint32
	live    bool
	pending []string
}

// NewImageSlot creates an empty slot
func NewImageSlot(store TextureStore, log *logger.Logger) *ImageSlot {
	return &ImageSlot{store: store, log: log}
}

// Texture returns the live texture, if any
func (s *ImageSlot) Texture() (uint32, bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.current, s.live
}

// Replace uploads img and commits it as the live texture
func (s *ImageSlot) Replace(img image.Image) error {
	id, err := s.store.Upload(img)
	if err != nil {
		return fmt.Errorf("upload image: %w", err)
	}

	s.mutex.Lock()
	prev, hadPrev := s.current, s.live
	s.current, s.live = id, true
	s.mutex.Unlock()

	if hadPrev {
		s.store.Release(prev)
	}
	return nil
}

// Load decodes the image at path and replaces the live texture with it
func (s *ImageSlot) Load(path string) error {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("open image %s: %w", path, err)
	}
	if err := s.Replace(img); err != nil {
		return err
	}
	s.log.Infof("Loaded image %s (%dx%d)", path, img.Bounds().Dx(), img.Bounds().Dy())
	return nil
}

// Queue records a path to load at the next frame boundary
func (s *ImageSlot) Queue(path string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.pending = append(s.pending, path)
}

// ApplyPending loads queued images in order. Only the last one that decodes
// stays live; failures are logged and leave the current texture in place.
func (s *ImageSlot) ApplyPending() {
	s.mutex.Lock()
	paths := s.pending
	s.pending = nil
	s.mutex.Unlock()

	for _, p := range paths {
		if err := s.Load(p); err != nil {
			s.log.Warnf("Image upload failed: %v", err)
		}
	}
}

// Close releases the live texture
func (s *ImageSlot) Close() {
	s.mutex.Lock()
	prev, hadPrev := s.current, s.live
	s.current, s.live = 0, false
	s.pending = nil
	s.mutex.Unlock()

	if hadPrev {
		s.store.Release(prev)
	}
}
