package strip

import (
	"errors"
	"fmt"
)

var (
	// ErrPixelRange is returned when a pixel index falls outside [0, NumPixels).
	ErrPixelRange = errors.New("pixel index out of range")

	// ErrDevice wraps hardware transport failures. The engine never retries a
	// failed device call; a partially rendered strip is the caller's problem
	// to resolve.
	ErrDevice = errors.New("strip device error")
)

// Strip is the minimal pixel sink the animation engine renders into.
//
// SetPixel stages a color for one pixel; nothing reaches the hardware until
// Show flushes the staged state. Implementations are not safe for concurrent
// use: only one rendering operation may be in flight against a Strip at a
// time, and callers must serialize access (see wake.Runner).
type Strip interface {
	// SetPixel stages color c for pixel i. Fails with ErrPixelRange if i is
	// outside [0, NumPixels).
	SetPixel(i int, c Color) error
	// Show flushes all staged pixel writes to the hardware.
	Show() error
	// NumPixels reports the number of addressable pixels.
	NumPixels() int
}

// Fill stages the same color on every pixel of s. It does not Show.
func Fill(s Strip, c Color) error {
	for i := 0; i < s.NumPixels(); i++ {
		if err := s.SetPixel(i, c); err != nil {
			return err
		}
	}
	return nil
}

// Clear stages black on every pixel and flushes, turning the strip off.
func Clear(s Strip) error {
	if err := Fill(s, Black); err != nil {
		return err
	}
	return s.Show()
}

// checkIndex validates i against n pixels.
func checkIndex(i, n int) error {
	if i < 0 || i >= n {
		return fmt.Errorf("%w: %d (strip has %d pixels)", ErrPixelRange, i, n)
	}
	return nil
}
