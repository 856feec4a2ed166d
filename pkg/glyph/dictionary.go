package glyph

import (
	"errors"
	"math"
)

// ErrEmptyDictionary is returned when a dictionary has no glyphs
var ErrEmptyDictionary = errors.New("glyph dictionary is empty")

// Dictionary is an immutable ordered set of glyphs, sparsest first.
// The position of a glyph is its atlas cell and its brightness bucket.
type Dictionary struct {
	runes []rune
}

// NewDictionary creates a dictionary from the characters of s
func NewDictionary(s string) (Dictionary, error) {
	runes := []rune(s)
	if len(runes) == 0 {
		return Dictionary{}, ErrEmptyDictionary
	}
	return Dictionary{runes: runes}, nil
}

// Len returns the glyph count N
func (d Dictionary) Len() int {
	return len(d.runes)
}

// Rune returns the glyph at index i
func (d Dictionary) Rune(i int) rune {
	return d.runes[i]
}

// String returns the glyphs as a string
func (d Dictionary) String() string {
	return string(d.runes)
}

// Index maps a brightness to its glyph index floor(b*N), clamped to [0, N-1].
// Jittered brightness can reach 1.0 and above; those select the densest glyph.
func (d Dictionary) Index(brightness float64) int {
	return BucketIndex(brightness, len(d.runes))
}

// ForBrightness returns the glyph selected by brightness
func (d Dictionary) ForBrightness(brightness float64) rune {
	return d.runes[d.Index(brightness)]
}

// BucketIndex returns clamp(floor(b*n), 0, n-1)
func BucketIndex(brightness float64, n int) int {
	if n <= 0 {
		return 0
	}
	i := int(math.Floor(brightness * float64(n)))
	if i < 0 {
		return 0
	}
	if i > n-1 {
		return n - 1
	}
	return i
}
