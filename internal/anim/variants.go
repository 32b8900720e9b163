package anim

import (
	"github.com/glowline/wakelight/internal/strip"
)

// The strip demo animations. They predate the image pipeline and survive as
// test patterns for checking wiring and pixel order after reassembling the
// frame.

// ColorWipe sweeps a color across the strip one pixel per frame.
type ColorWipe struct {
	color strip.Color
	n     int
	frame int
}

func NewColorWipe(n int, c strip.Color) *ColorWipe {
	return &ColorWipe{color: c, n: n}
}

func (w *ColorWipe) Frames() int { return w.n }

func (w *ColorWipe) Next() (Frame, bool) {
	if w.frame >= w.n {
		return nil, false
	}
	w.frame++
	f := SolidFrame(w.n, strip.Black)
	for i := 0; i < w.frame; i++ {
		f[i] = w.color
	}
	return f, true
}

// TheatreChase lights every third pixel, walking the lit set one pixel per
// frame.
type TheatreChase struct {
	color      strip.Color
	n          int
	iterations int
	frame      int
}

func NewTheatreChase(n int, c strip.Color, iterations int) *TheatreChase {
	return &TheatreChase{color: c, n: n, iterations: iterations}
}

func (t *TheatreChase) Frames() int { return t.iterations }

func (t *TheatreChase) Next() (Frame, bool) {
	if t.frame >= t.iterations {
		return nil, false
	}
	f := SolidFrame(t.n, strip.Black)
	for i := 0; i < t.n; i += 3 {
		f[(i+t.frame)%t.n] = t.color
	}
	t.frame++
	return f, true
}

// Wheel maps a position in [0, 255] onto the red→green→blue color wheel.
func Wheel(pos int) strip.Color {
	pos &= 255
	switch {
	case pos < 85:
		return strip.MustColor(pos*3, 255-pos*3, 0)
	case pos < 170:
		pos -= 85
		return strip.MustColor(255-pos*3, 0, pos*3)
	default:
		pos -= 170
		return strip.MustColor(0, pos*3, 255-pos*3)
	}
}

// Rainbow cycles the color wheel across the strip, one wheel step per frame.
type Rainbow struct {
	n      int
	cycles int
	frame  int
}

func NewRainbow(n, cycles int) *Rainbow {
	return &Rainbow{n: n, cycles: cycles}
}

func (r *Rainbow) Frames() int { return 256 * r.cycles }

func (r *Rainbow) Next() (Frame, bool) {
	if r.frame >= 256*r.cycles {
		return nil, false
	}
	f := make(Frame, r.n)
	for i := range f {
		f[i] = Wheel(i + r.frame)
	}
	r.frame++
	return f, true
}

// AlternateColors rotates a repeating palette along the strip.
type AlternateColors struct {
	palette []strip.Color
	n       int
	count   int
	frame   int
}

// NewAlternateColors rotates palette across n pixels for count frames. A nil
// palette defaults to red, green, blue.
func NewAlternateColors(n int, palette []strip.Color, count int) *AlternateColors {
	if len(palette) == 0 {
		palette = []strip.Color{
			strip.MustColor(255, 0, 0),
			strip.MustColor(0, 255, 0),
			strip.MustColor(0, 0, 255),
		}
	}
	return &AlternateColors{palette: palette, n: n, count: count}
}

func (a *AlternateColors) Frames() int { return a.count }

func (a *AlternateColors) Next() (Frame, bool) {
	if a.frame >= a.count {
		return nil, false
	}
	a.frame++
	f := make(Frame, a.n)
	for i := range f {
		f[i] = a.palette[(i+a.frame)%len(a.palette)]
	}
	return f, true
}

var (
	_ Animation = (*ColorWipe)(nil)
	_ Animation = (*TheatreChase)(nil)
	_ Animation = (*Rainbow)(nil)
	_ Animation = (*AlternateColors)(nil)
)
