package anim

import (
	"errors"
	"fmt"
	"time"

	"github.com/glowline/wakelight/internal/strip"
)

// ErrFrameMismatch is returned when an animation produces frames whose length
// does not match the strip.
var ErrFrameMismatch = errors.New("frame length does not match strip")

// Animation is a finite, ordered sequence of frames. Frames reports the total
// number of frames the sequence will produce, fixed at construction, so the
// player can divide a time budget evenly before consuming anything. Next
// returns the next frame, or ok=false once the sequence is exhausted.
type Animation interface {
	Frames() int
	Next() (f Frame, ok bool)
}

// Player paces animation frames onto a strip against a wall-clock budget.
//
// For an N-frame animation the target inter-frame interval is budget/N.
// Render latency is measured per frame and subtracted from the sleep; a frame
// that overruns its slot is followed immediately by the next one, letting the
// schedule drift late rather than dropping frames. On natural completion the
// player sleeps out any remaining budget, so Play blocks for at least the
// full budget — the wake-up sequence relies on "20 minutes" meaning 20
// minutes even when rendering is fast.
type Player struct {
	Strip strip.Strip

	// Stop, when non-nil, is polled once per frame boundary. Returning true
	// abandons the remaining frames and returns immediately without padding
	// out the budget. This is the engine's only cancellation point: a frame
	// render that has already started always completes, and a hung device
	// call blocks indefinitely.
	Stop func() bool
}

// Play renders a to completion, blocking the calling goroutine for at least
// budget unless stopped early. Device errors propagate immediately; the strip
// may be left partially rendered and the caller decides whether to resume or
// blank it.
func (p *Player) Play(a Animation, budget time.Duration) error {
	start := time.Now()
	total := a.Frames()
	if total <= 0 {
		if budget > 0 {
			time.Sleep(budget)
		}
		return nil
	}
	interval := budget / time.Duration(total)

	for {
		if p.Stop != nil && p.Stop() {
			return nil
		}
		frame, ok := a.Next()
		if !ok {
			break
		}

		frameStart := time.Now()
		if err := p.render(frame); err != nil {
			return err
		}
		if sleep := interval - time.Since(frameStart); sleep > 0 {
			time.Sleep(sleep)
		}
	}

	if remaining := budget - time.Since(start); remaining > 0 {
		time.Sleep(remaining)
	}
	return nil
}

func (p *Player) render(f Frame) error {
	if len(f) != p.Strip.NumPixels() {
		return fmt.Errorf("%w: frame has %d pixels, strip has %d",
			ErrFrameMismatch, len(f), p.Strip.NumPixels())
	}
	for i, c := range f {
		if err := p.Strip.SetPixel(i, c); err != nil {
			return err
		}
	}
	return p.Strip.Show()
}
