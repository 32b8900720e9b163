// Package anim is the transition engine: finite frame sequences that move an
// LED strip between color states, and the player that paces them against a
// wall-clock budget.
//
// Animations are pull-based iterators. The player asks for the next frame,
// renders it, and sleeps whatever is left of the frame's share of the budget.
// All randomness is injected so tests can pin exact frame sequences.
package anim

import "github.com/glowline/wakelight/internal/strip"

// Frame is one complete strip state, one color per pixel. An animation owns
// the frame it is mutating and hands out clones, so a caller can never
// observe a frame changing underneath an in-flight render.
type Frame []strip.Color

// SolidFrame returns an n-pixel frame filled with c.
func SolidFrame(n int, c strip.Color) Frame {
	f := make(Frame, n)
	for i := range f {
		f[i] = c
	}
	return f
}

// Clone returns an independent copy of f.
func (f Frame) Clone() Frame {
	out := make(Frame, len(f))
	copy(out, f)
	return out
}
