package anim

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/tanema/gween/ease"

	"github.com/glowline/wakelight/internal/strip"
)

// channelDelta is the per-step float increment for one pixel's channels.
type channelDelta struct {
	r, g, b float64
}

// LerpFade fades between two frames by linear interpolation: a per-pixel
// delta of (target−old)/steps, with frame k showing old + delta·k. The final
// frame is exactly the target. An optional easing curve reshapes the ramp
// (ease.Linear behavior when nil); the endpoints are unchanged either way.
type LerpFade struct {
	old    Frame
	deltas []channelDelta
	steps  int
	step   int
	fn     ease.TweenFunc
}

// NewLerpFade builds a linear fade from old to target over steps frames.
func NewLerpFade(old, target Frame, steps int, fn ease.TweenFunc) (*LerpFade, error) {
	if len(old) != len(target) {
		return nil, fmt.Errorf("%w: old has %d pixels, target has %d", ErrBadTransition, len(old), len(target))
	}
	if len(old) == 0 {
		return nil, fmt.Errorf("%w: empty frames", ErrBadTransition)
	}
	if steps < 1 {
		return nil, fmt.Errorf("%w: steps %d", ErrBadTransition, steps)
	}
	deltas := make([]channelDelta, len(old))
	for i := range old {
		or, og, ob := old[i].RGB()
		tr, tg, tb := target[i].RGB()
		deltas[i] = channelDelta{
			r: float64(tr-or) / float64(steps),
			g: float64(tg-og) / float64(steps),
			b: float64(tb-ob) / float64(steps),
		}
	}
	return &LerpFade{old: old.Clone(), deltas: deltas, steps: steps, fn: fn}, nil
}

func (l *LerpFade) Frames() int { return l.steps }

func (l *LerpFade) Next() (Frame, bool) {
	if l.step >= l.steps {
		return nil, false
	}
	l.step++
	return l.frameAt(l.step), true
}

// frameAt computes the fully interpolated frame for step k in [1, steps].
func (l *LerpFade) frameAt(k int) Frame {
	eff := float64(k)
	if l.fn != nil {
		eff = float64(l.fn(float32(k), 0, 1, float32(l.steps))) * float64(l.steps)
	}
	out := make(Frame, len(l.old))
	for i, c := range l.old {
		r, g, b := c.RGB()
		out[i] = strip.ClampColor(
			float64(r)+l.deltas[i].r*eff,
			float64(g)+l.deltas[i].g*eff,
			float64(b)+l.deltas[i].b*eff,
		)
	}
	return out
}

var _ Animation = (*LerpFade)(nil)

// DitherLerpFade combines both strategies: the outer loop interpolates
// between old and target over steps increments, and each interpolated frame
// is applied to the displayed state through a dither queue at batch
// granularity. Brightness ramps smoothly without every pixel updating in
// lockstep, which masks the strip's per-update latency.
type DitherLerpFade struct {
	lerp    *LerpFade
	current Frame
	pending Frame // outer frame currently being dithered in
	queue   []int
	batch   int
	rng     *rand.Rand
	total   int
}

// NewDitherLerpFade builds the combined fade. rng seeds the per-step shuffle;
// nil means time-seeded.
func NewDitherLerpFade(old, target Frame, steps, batch int, rng *rand.Rand) (*DitherLerpFade, error) {
	if batch < 1 {
		return nil, fmt.Errorf("%w: batch size %d", ErrBadTransition, batch)
	}
	lerp, err := NewLerpFade(old, target, steps, nil)
	if err != nil {
		return nil, err
	}
	perStep := int(math.Ceil(float64(len(old)) / float64(batch)))
	return &DitherLerpFade{
		lerp:    lerp,
		current: old.Clone(),
		batch:   batch,
		rng:     rng,
		total:   steps * perStep,
	}, nil
}

func (d *DitherLerpFade) Frames() int { return d.total }

func (d *DitherLerpFade) Next() (Frame, bool) {
	if len(d.queue) == 0 {
		next, ok := d.lerp.Next()
		if !ok {
			return nil, false
		}
		d.pending = next
		d.queue = shuffledIndices(len(d.current), d.rng)
	}
	for i := 0; i < d.batch && len(d.queue) > 0; i++ {
		idx := d.queue[len(d.queue)-1]
		d.queue = d.queue[:len(d.queue)-1]
		d.current[idx] = d.pending[idx]
	}
	return d.current.Clone(), true
}

var _ Animation = (*DitherLerpFade)(nil)
