package wake

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"math/rand"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/glowline/wakelight/internal/layout"
	"github.com/glowline/wakelight/internal/mapdb"
	"github.com/glowline/wakelight/internal/mapper"
	"github.com/glowline/wakelight/internal/strip"
	"github.com/glowline/wakelight/internal/weather"
)

type fixedWeather struct {
	cond weather.Condition
	err  error
}

func (f fixedWeather) Current(string) (weather.Condition, error) { return f.cond, f.err }

// lineMapper builds a mapper over n LEDs laid out in a horizontal line.
func lineMapper(t *testing.T, n int) *mapper.Mapper {
	t.Helper()
	lay := &layout.Layout{
		IDs:       make([]int, n),
		Positions: make([]layout.Position, n),
	}
	for i := 0; i < n; i++ {
		lay.IDs[i] = i
		lay.Positions[i] = layout.Position{X: float64(i), Y: 0}
	}
	m, err := mapper.New(lay, nil)
	if err != nil {
		t.Fatalf("mapper.New: %v", err)
	}
	return m
}

// writeSolidImage writes a solid-color PNG under dir with the given name.
// The mapper decodes by content, not extension, so a .jpg name is fine.
func writeSolidImage(t *testing.T, dir, name string, c color.RGBA) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func TestSunriseEndsAtFullSky(t *testing.T) {
	mock := strip.NewMockStrip(20)
	r := &Runner{
		Strip: mock,
		Steps: 4,
		Rand:  rand.New(rand.NewSource(1)),
	}
	if err := r.On(20 * time.Millisecond); err != nil {
		t.Fatalf("On: %v", err)
	}
	if mock.ShowCount == 0 {
		t.Fatal("no frames rendered")
	}
	for i, c := range mock.Current() {
		if c != skyBlue {
			t.Fatalf("pixel %d = %v after full sunrise, want sky blue", i, c)
		}
	}

	// The sequence opens by dithering up to the dawn teal before the sunrise
	// takes over.
	sawTeal := false
	for _, frame := range mock.Frames {
		all := true
		for _, c := range frame {
			if c != dawnTeal {
				all = false
				break
			}
		}
		if all {
			sawTeal = true
			break
		}
	}
	if !sawTeal {
		t.Error("no frame showed the full dawn teal prelude")
	}
}

func TestImageSequenceEndsAtFullImage(t *testing.T) {
	dir := t.TempDir()
	writeSolidImage(t, dir, "sunrise.jpg", color.RGBA{R: 255, A: 255})

	mock := strip.NewMockStrip(10)
	r := &Runner{
		Strip:    mock,
		Mapper:   lineMapper(t, 10),
		Weather:  fixedWeather{cond: weather.Clear},
		ImageDir: dir,
		Steps:    4,
		Rand:     rand.New(rand.NewSource(1)),
	}
	if err := r.On(20 * time.Millisecond); err != nil {
		t.Fatalf("On: %v", err)
	}
	want := strip.MustColor(255, 0, 0)
	for i, c := range mock.Current() {
		if c != want {
			t.Fatalf("pixel %d = %v after full reveal, want %v", i, c, want)
		}
	}
}

func TestOffEndsDark(t *testing.T) {
	dir := t.TempDir()
	writeSolidImage(t, dir, "sunrise.jpg", color.RGBA{R: 200, G: 100, A: 255})

	mock := strip.NewMockStrip(10)
	r := &Runner{
		Strip:    mock,
		Mapper:   lineMapper(t, 10),
		Weather:  fixedWeather{cond: weather.Clear},
		ImageDir: dir,
		Steps:    3,
		Rand:     rand.New(rand.NewSource(1)),
	}
	if err := r.On(10 * time.Millisecond); err != nil {
		t.Fatalf("On: %v", err)
	}
	if err := r.Off(10 * time.Millisecond); err != nil {
		t.Fatalf("Off: %v", err)
	}
	for i, c := range mock.Current() {
		if c != strip.Black {
			t.Fatalf("pixel %d = %v after wind-down, want black", i, c)
		}
	}
}

func TestWeatherFailureFallsBackToSunrise(t *testing.T) {
	mock := strip.NewMockStrip(15)
	r := &Runner{
		Strip: mock,
		// No Mapper: if the failure path tried to load an image it would
		// dereference nil. The sunrise needs no mapper.
		Weather: fixedWeather{err: errors.New("api down")},
		Steps:   2,
		Rand:    rand.New(rand.NewSource(1)),
	}
	if err := r.On(10 * time.Millisecond); err != nil {
		t.Fatalf("On with failing weather: %v", err)
	}
	if mock.ShowCount == 0 {
		t.Fatal("fallback sunrise rendered no frames")
	}
}

func TestConcurrentRunRejected(t *testing.T) {
	r := &Runner{Strip: strip.NewMockStrip(5), Steps: 2}
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.On(time.Millisecond); !errors.Is(err, ErrBusy) {
		t.Fatalf("On while busy = %v, want ErrBusy", err)
	}
}

// stopAfter asks the runner to stop once a number of frames have rendered.
type stopAfter struct {
	*strip.MockStrip
	runner *Runner
	after  int
}

func (s *stopAfter) Show() error {
	if err := s.MockStrip.Show(); err != nil {
		return err
	}
	if s.ShowCount >= s.after {
		s.runner.Stop()
	}
	return nil
}

func TestStopEndsSequenceEarly(t *testing.T) {
	r := &Runner{Steps: 16, Rand: rand.New(rand.NewSource(1))}
	mock := &stopAfter{MockStrip: strip.NewMockStrip(10), runner: r, after: 2}
	r.Strip = mock

	if err := r.On(16 * time.Millisecond); err != nil {
		t.Fatalf("On: %v", err)
	}
	if mock.ShowCount >= 16 {
		t.Fatalf("rendered %d frames after stop, expected an early end", mock.ShowCount)
	}
}

func TestRunsAreRecorded(t *testing.T) {
	db, err := mapdb.Open(filepath.Join(t.TempDir(), "wakelight.db"))
	if err != nil {
		t.Fatalf("mapdb.Open: %v", err)
	}
	defer db.Close()

	r := &Runner{
		Strip: strip.NewMockStrip(8),
		DB:    db,
		Steps: 2,
		Rand:  rand.New(rand.NewSource(1)),
	}
	if err := r.On(5 * time.Millisecond); err != nil {
		t.Fatalf("On: %v", err)
	}

	runs, err := db.RecentRuns(5)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("got %d runs, want 1", len(runs))
	}
	if runs[0].Condition != "Unknown" {
		t.Errorf("condition = %q, want Unknown", runs[0].Condition)
	}
	if runs[0].FinishedAt == nil {
		t.Error("run never finished")
	}
}
