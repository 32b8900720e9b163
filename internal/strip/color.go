// Package strip defines the LED strip device abstraction: a packed RGBW
// color value and the minimal pixel sink interface the animation engine
// renders into. Concrete devices (serial-attached controller, test mock)
// live alongside the interface.
package strip

import (
	"errors"
	"fmt"
)

// ErrColorRange is returned when a color channel falls outside [0, 255].
var ErrColorRange = errors.New("color channel out of range")

// Color is a packed 32-bit color value: (white<<24)|(red<<16)|(green<<8)|blue.
// This matches the wire layout of WS281x-style controllers, so a Color can be
// handed to a device without further conversion.
type Color uint32

// Black is the all-channels-off color.
const Black Color = 0

// NewColor packs red, green and blue channels into a Color. Each channel must
// be in [0, 255].
func NewColor(red, green, blue int) (Color, error) {
	return NewColorRGBW(red, green, blue, 0)
}

// NewColorRGBW packs red, green, blue and white channels into a Color. Each
// channel must be in [0, 255].
func NewColorRGBW(red, green, blue, white int) (Color, error) {
	for _, ch := range [...]int{red, green, blue, white} {
		if ch < 0 || ch > 255 {
			return 0, fmt.Errorf("%w: %d", ErrColorRange, ch)
		}
	}
	return Color(white)<<24 | Color(red)<<16 | Color(green)<<8 | Color(blue), nil
}

// MustColor is NewColor for constant colors known to be in range. It panics on
// a bad channel value.
func MustColor(red, green, blue int) Color {
	c, err := NewColor(red, green, blue)
	if err != nil {
		panic(err)
	}
	return c
}

// RGB returns the red, green and blue channels of c.
func (c Color) RGB() (red, green, blue int) {
	return int(c >> 16 & 0xff), int(c >> 8 & 0xff), int(c & 0xff)
}

// White returns the white channel of c.
func (c Color) White() int {
	return int(c >> 24 & 0xff)
}

func (c Color) String() string {
	r, g, b := c.RGB()
	if w := c.White(); w != 0 {
		return fmt.Sprintf("rgbw(%d,%d,%d,%d)", r, g, b, w)
	}
	return fmt.Sprintf("rgb(%d,%d,%d)", r, g, b)
}

// clamp8 rounds v to the nearest integer and clamps it to [0, 255].
func clamp8(v float64) int {
	n := int(v + 0.5)
	if v < 0 {
		n = 0
	}
	if n > 255 {
		n = 255
	}
	return n
}

// ClampColor builds a Color from float channel values, rounding to nearest
// and clamping each channel to [0, 255]. Used by the mapper and the
// transition engine, where interpolation can step slightly outside the range.
func ClampColor(red, green, blue float64) Color {
	c, _ := NewColor(clamp8(red), clamp8(green), clamp8(blue))
	return c
}

// Scale multiplies every RGB channel of c by factor, clamping the result.
// The white channel is left untouched.
func (c Color) Scale(factor float64) Color {
	r, g, b := c.RGB()
	s := ClampColor(float64(r)*factor, float64(g)*factor, float64(b)*factor)
	return s | Color(c.White())<<24
}
