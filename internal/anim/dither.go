package anim

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"
)

// ErrBadTransition is returned for mismatched frame lengths or invalid
// parameters when constructing a transition.
var ErrBadTransition = errors.New("invalid transition parameters")

// minSwitchTime is the rough per-LED cost of staging and flushing one pixel
// update on the hardware. The batch size is derived from it so that no single
// dither step blows its share of the time budget.
const minSwitchTime = 5 * time.Millisecond

// BatchSize computes how many pixels each dither step should switch so that
// ledCount switches complete within ditherTime:
// ceil(ledCount / max(1, round(ditherTime/5ms))), clamped to [1, ledCount].
func BatchSize(ledCount int, ditherTime time.Duration) int {
	switches := int(math.Round(ditherTime.Seconds() / minSwitchTime.Seconds()))
	if switches < 1 {
		switches = 1
	}
	batch := int(math.Ceil(float64(ledCount) / float64(switches)))
	if batch < 1 {
		batch = 1
	}
	if batch > ledCount {
		batch = ledCount
	}
	return batch
}

// DitherFade fades between two frames by overwriting pixels with their target
// color in a random order, batch pixels per frame. Pixels whose old and
// target colors already match still take their turn in the queue — skipping
// them would make the fade's timing depend on image content.
//
// The shuffle order comes from rng, so a fixed seed reproduces the exact
// frame sequence.
type DitherFade struct {
	current Frame
	target  Frame
	queue   []int // pending pixel indices, consumed from the tail
	batch   int
	total   int
}

// NewDitherFade builds a dithered fade from old to target switching batch
// pixels per frame. rng may be nil, in which case a time-seeded source is
// used and the sequence is not reproducible.
func NewDitherFade(old, target Frame, batch int, rng *rand.Rand) (*DitherFade, error) {
	if len(old) != len(target) {
		return nil, fmt.Errorf("%w: old has %d pixels, target has %d", ErrBadTransition, len(old), len(target))
	}
	if len(old) == 0 {
		return nil, fmt.Errorf("%w: empty frames", ErrBadTransition)
	}
	if batch < 1 {
		return nil, fmt.Errorf("%w: batch size %d", ErrBadTransition, batch)
	}
	d := &DitherFade{
		current: old.Clone(),
		target:  target.Clone(),
		queue:   shuffledIndices(len(old), rng),
		batch:   batch,
		total:   int(math.Ceil(float64(len(old)) / float64(batch))),
	}
	return d, nil
}

func (d *DitherFade) Frames() int { return d.total }

func (d *DitherFade) Next() (Frame, bool) {
	if len(d.queue) == 0 {
		return nil, false
	}
	for i := 0; i < d.batch && len(d.queue) > 0; i++ {
		idx := d.queue[len(d.queue)-1]
		d.queue = d.queue[:len(d.queue)-1]
		d.current[idx] = d.target[idx]
	}
	return d.current.Clone(), true
}

func shuffledIndices(n int, rng *rand.Rand) []int {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return rng.Perm(n)
}

var _ Animation = (*DitherFade)(nil)
