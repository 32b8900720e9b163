// Package wake orchestrates the morning sequence: look up the weather, pick
// a display, and drive the strip through dithered transitions inside the
// configured time budget.
//
// A Runner owns exactly one strip. Only one sequence may run against it at a
// time; concurrent calls fail fast with ErrBusy instead of interleaving
// pixel writes.
package wake

import (
	"errors"
	"fmt"
	"log"
	"math"
	"math/rand"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/glowline/wakelight/internal/anim"
	"github.com/glowline/wakelight/internal/mapdb"
	"github.com/glowline/wakelight/internal/mapper"
	"github.com/glowline/wakelight/internal/strip"
	"github.com/glowline/wakelight/internal/weather"
)

// ErrBusy is returned when a sequence is requested while another is still
// running on the same strip.
var ErrBusy = errors.New("an animation is already running on this strip")

// DefaultBlendSteps is the number of brightness increments for revealing an
// image.
const DefaultBlendSteps = 256

// brightnessExponent shapes the image reveal: perceived brightness rises
// smoothly when the scale factor follows (step/steps)^2.3.
const brightnessExponent = 2.3

// WeatherSource provides the current condition. *weather.Client satisfies
// it; tests inject fixed conditions.
type WeatherSource interface {
	Current(location string) (weather.Condition, error)
}

// Runner executes wake sequences on one strip.
type Runner struct {
	Strip    strip.Strip
	Mapper   *mapper.Mapper
	DB       *mapdb.DB     // optional run log
	Weather  WeatherSource // optional; nil always behaves as Unknown
	ImageDir string
	Location string

	// Rand seeds transition shuffles; nil means time-seeded.
	Rand *rand.Rand
	// Steps overrides DefaultBlendSteps (tests use a handful).
	Steps int
	// Gamma, when positive, applies a power-law correction to mapped colors
	// before display.
	Gamma float64

	mu      sync.Mutex
	stopped atomic.Bool
	last    anim.Frame
}

// Stop requests cooperative termination of the running sequence. The current
// frame completes; the sequence ends at the next frame boundary. Stop is
// safe to call when nothing is running.
func (r *Runner) Stop() { r.stopped.Store(true) }

// dawnTeal is the barely-lit color the sequence opens with, so the room is
// not pitch black while the display ramps.
var dawnTeal = strip.MustColor(0, 1, 1)

// On runs the wake sequence: weather lookup, a dither up to dawnTeal over
// half the budget, then a dark-to-bright reveal of the chosen display over
// budget. Returns ErrBusy if a sequence is already running.
func (r *Runner) On(budget time.Duration) error {
	return r.run(budget, false)
}

// Off reverses the display down over budget, then dithers the remainder out
// to black over half the budget.
func (r *Runner) Off(budget time.Duration) error {
	return r.run(budget, true)
}

func (r *Runner) run(budget time.Duration, reverse bool) error {
	if !r.mu.TryLock() {
		return ErrBusy
	}
	defer r.mu.Unlock()
	r.stopped.Store(false)

	cond := r.lookupWeather()
	plan := weather.PlanFor(cond)

	var runID string
	if r.DB != nil {
		id, err := r.DB.StartRun(cond.String(), reverse)
		if err != nil {
			log.Printf("[Wake] failed to record run start: %v", err)
		} else {
			runID = id
		}
	}
	log.Printf("[Wake] starting %s sequence for %s over %s", direction(reverse), cond, budget)

	var err error
	if !reverse {
		err = r.ditherTo(dawnTeal, budget/2)
	}
	if err == nil && !r.stopped.Load() {
		if plan.Sunrise() {
			err = r.sunrise(budget, reverse)
		} else {
			err = r.displayImage(filepath.Join(r.ImageDir, plan.Image), budget, reverse)
		}
	}
	if err == nil && reverse && !r.stopped.Load() {
		err = r.ditherTo(strip.Black, budget/2)
	}

	if runID != "" {
		if ferr := r.DB.FinishRun(runID, err); ferr != nil {
			log.Printf("[Wake] failed to record run finish: %v", ferr)
		}
	}
	if err != nil {
		return fmt.Errorf("%s sequence: %w", direction(reverse), err)
	}
	log.Printf("[Wake] %s sequence complete", direction(reverse))
	return nil
}

// lookupWeather never fails the sequence: any error degrades to Unknown,
// which plans the baseline sunrise.
func (r *Runner) lookupWeather() weather.Condition {
	if r.Weather == nil {
		return weather.Unknown
	}
	cond, err := r.Weather.Current(r.Location)
	if err != nil {
		log.Printf("[Wake] weather lookup failed, using sunrise fallback: %v", err)
		return weather.Unknown
	}
	return cond
}

// displayImage reveals (or hides, when reverse) the mapped image by stepping
// brightness through (step/steps)^2.3, applying each step as a dither fade
// within its share of the budget.
func (r *Runner) displayImage(path string, budget time.Duration, reverse bool) error {
	colors, err := r.Mapper.MapFile(path)
	if err != nil {
		return err
	}
	if r.Gamma > 0 {
		strip.GammaAdjustAll(colors, r.Gamma)
	}
	full := anim.Frame(colors)

	steps := r.Steps
	if steps <= 0 {
		steps = DefaultBlendSteps
	}
	perStep := budget / time.Duration(steps)
	n := r.Strip.NumPixels()
	batch := anim.BatchSize(n, perStep)

	for i := 0; i < steps; i++ {
		if r.stopped.Load() {
			return nil
		}
		step := i + 1
		if reverse {
			step = steps - 1 - i
		}
		frac := math.Pow(float64(step)/float64(steps), brightnessExponent)
		target := scaleFrame(full, frac)
		if err := r.fadeTo(target, batch, perStep); err != nil {
			return err
		}
	}
	return nil
}

// Sunrise colors from the procedural animation: a sky that brightens toward
// light blue with a warm band sweeping up the strip.
var (
	skyBlue    = strip.MustColor(135, 206, 235)
	sunriseAmb = strip.MustColor(255, 191, 39)
)

// sunrise runs the procedural sunrise: per step, the sky brightens by the
// step fraction while a band one tenth of the strip wide, anchored at
// frac·n, carries the sunrise color. Each step dithers in over its share of
// the budget.
func (r *Runner) sunrise(budget time.Duration, reverse bool) error {
	steps := r.Steps
	if steps <= 0 {
		steps = DefaultBlendSteps
	}
	perStep := budget / time.Duration(steps)
	n := r.Strip.NumPixels()
	batch := anim.BatchSize(n, perStep)
	bandWidth := n / 10

	for i := 0; i < steps; i++ {
		if r.stopped.Load() {
			return nil
		}
		step := i + 1
		if reverse {
			step = steps - 1 - i
		}
		frac := float64(step) / float64(steps)

		sky := floorScale(skyBlue, frac)
		band := floorScale(sunriseAmb, frac)
		target := anim.SolidFrame(n, sky)
		bandStart := int(frac * float64(n))
		for p := bandStart; p < bandStart+bandWidth && p < n; p++ {
			target[p] = band
		}
		if err := r.fadeTo(target, batch, perStep); err != nil {
			return err
		}
	}
	return nil
}

// ditherTo fades the whole strip to a single color within budget.
func (r *Runner) ditherTo(c strip.Color, budget time.Duration) error {
	n := r.Strip.NumPixels()
	return r.fadeTo(anim.SolidFrame(n, c), anim.BatchSize(n, budget), budget)
}

// fadeTo dithers the strip from its last known state to target within
// budget, updating the tracked state on success.
func (r *Runner) fadeTo(target anim.Frame, batch int, budget time.Duration) error {
	current := r.last
	if current == nil {
		current = anim.SolidFrame(r.Strip.NumPixels(), strip.Black)
	}
	fade, err := anim.NewDitherFade(current, target, batch, r.Rand)
	if err != nil {
		return err
	}
	player := &anim.Player{Strip: r.Strip, Stop: r.stopped.Load}
	if err := player.Play(fade, budget); err != nil {
		return err
	}
	r.last = target.Clone()
	return nil
}

func direction(reverse bool) string {
	if reverse {
		return "wind-down"
	}
	return "wake-up"
}

// scaleFrame multiplies every color by factor.
func scaleFrame(f anim.Frame, factor float64) anim.Frame {
	out := make(anim.Frame, len(f))
	for i, c := range f {
		out[i] = c.Scale(factor)
	}
	return out
}

// floorScale scales c by factor but keeps every channel at least 1, so the
// strip visibly holds the hue from the first step of a ramp.
func floorScale(c strip.Color, factor float64) strip.Color {
	red, green, blue := c.RGB()
	at := func(ch int) float64 {
		v := float64(ch) * factor
		if v < 1 {
			return 1
		}
		return v
	}
	return strip.ClampColor(at(red), at(green), at(blue))
}
