package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGradientImage(t *testing.T) {
	img := GradientImage(64, 64)
	center := img.NRGBAAt(32, 32)
	corner := img.NRGBAAt(0, 0)

	assert.Greater(t, center.R, uint8(240))
	assert.Less(t, corner.R, uint8(10))
	assert.Equal(t, uint8(255), corner.A)
	assert.Equal(t, img.NRGBAAt(10, 20), img.NRGBAAt(53, 20), "mirror symmetric")
	assert.Equal(t, img.NRGBAAt(20, 10), img.NRGBAAt(20, 53))
}
