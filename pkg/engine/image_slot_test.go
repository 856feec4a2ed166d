package engine

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"asciimosaic/internal/logger"
	"asciimosaic/pkg/scene"
)

type fakeStore struct {
	next     uint32
	released map[uint32]int
	uploads  []image.Rectangle
	fail     error
}

func newFakeStore() *fakeStore {
	return &fakeStore{next: 100, released: make(map[uint32]int)}
}

func (s *fakeStore) Upload(img image.Image) (uint32, error) {
	if s.fail != nil {
		return 0, s.fail
	}
	s.next++
	s.uploads = append(s.uploads, img.Bounds())
	return s.next, nil
}

func (s *fakeStore) Release(id uint32) {
	s.released[id]++
}

func testLogger() (*logger.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return logger.NewWriterLogger("debug", &buf), &buf
}

func writePNG(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, scene.GradientImage(w, h)))
	return path
}

func TestImageSlot_ReplaceReleasesPreviousOnce(t *testing.T) {
	store := newFakeStore()
	log, _ := testLogger()
	slot := NewImageSlot(store, log)

	_, live := slot.Texture()
	assert.False(t, live)

	require.NoError(t, slot.Replace(scene.GradientImage(4, 4)))
	first, live := slot.Texture()
	require.True(t, live)

	require.NoError(t, slot.Replace(scene.GradientImage(8, 8)))
	second, _ := slot.Texture()
	assert.NotEqual(t, first, second)
	assert.Equal(t, 1, store.released[first])
	assert.Zero(t, store.released[second])

	slot.Close()
	assert.Equal(t, 1, store.released[second])
	_, live = slot.Texture()
	assert.False(t, live)

	slot.Close()
	assert.Equal(t, 1, store.released[second], "closing twice releases nothing more")
	assert.Equal(t, 1, store.released[first])
}

func TestImageSlot_FailedUploadKeepsCurrent(t *testing.T) {
	store := newFakeStore()
	log, _ := testLogger()
	slot := NewImageSlot(store, log)
	require.NoError(t, slot.Replace(scene.GradientImage(4, 4)))
	before, _ := slot.Texture()

	store.fail = errors.New("out of memory")
	assert.Error(t, slot.Replace(scene.GradientImage(4, 4)))

	after, live := slot.Texture()
	assert.True(t, live)
	assert.Equal(t, before, after)
	assert.Empty(t, store.released)
}

func TestImageSlot_QueueAppliesBetweenFrames(t *testing.T) {
	dir := t.TempDir()
	good := writePNG(t, dir, "a.png", 6, 3)
	missing := filepath.Join(dir, "missing.png")

	store := newFakeStore()
	log, buf := testLogger()
	slot := NewImageSlot(store, log)

	slot.Queue(good)
	slot.Queue(missing)
	_, live := slot.Texture()
	assert.False(t, live, "nothing uploads until ApplyPending")

	slot.ApplyPending()

	id, live := slot.Texture()
	assert.True(t, live)
	assert.Equal(t, uint32(101), id)
	require.Len(t, store.uploads, 1)
	assert.Equal(t, image.Rect(0, 0, 6, 3), store.uploads[0])
	assert.Contains(t, buf.String(), "Image upload failed")

	slot.ApplyPending()
	assert.Len(t, store.uploads, 1, "queue is drained")
}
