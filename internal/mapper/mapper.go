package mapper

import (
	"crypto/sha256"
	"fmt"
	"image"
	"log"
	"os"

	// The wake-light displays JPEG and PNG weather images.
	_ "image/jpeg"
	_ "image/png"

	xdraw "golang.org/x/image/draw"

	"github.com/glowline/wakelight/internal/layout"
	"github.com/glowline/wakelight/internal/strip"
)

// DefaultMaxDim bounds the longer image axis before mapping. A 4000px photo
// adds nothing over a 160px thumbnail when the output is 150 LEDs, and the
// nearest-LED query runs once per pixel.
const DefaultMaxDim = 160

// Result is a completed mapping. Colors is indexed by strip address, ready
// for SetPixel. Counts is indexed by layout row and records how many image
// pixels each LED region claimed (kept for the diagnostics page, which walks
// layout rows).
type Result struct {
	Colors []strip.Color
	Counts []int
}

// Mapper maps images onto a fixed LED layout.
type Mapper struct {
	index  *layout.Index
	ids    []int  // layout row -> strip address
	digest string // layout identity for cache keys
	cache  Cache  // may be nil
	// MaxDim bounds the longer image axis before mapping; zero means
	// DefaultMaxDim.
	MaxDim int
}

// New builds a Mapper over lay. The layout is normalized into the unit
// square before indexing; lay itself is not modified. cache may be nil to
// disable caching.
//
// lay.IDs must be a permutation of [0, len): the strip winds through the
// frame in an arbitrary order, and IDs is how a layout row finds its strip
// address.
func New(lay *layout.Layout, cache Cache) (*Mapper, error) {
	norm := &layout.Layout{
		IDs:       lay.IDs,
		Positions: append([]layout.Position(nil), lay.Positions...),
	}
	if err := norm.Normalize(); err != nil {
		return nil, err
	}
	ix, err := layout.NewIndex(norm.Positions)
	if err != nil {
		return nil, err
	}
	ids, err := checkIDs(lay.IDs, len(lay.Positions))
	if err != nil {
		return nil, err
	}
	return &Mapper{
		index:  ix,
		ids:    ids,
		digest: layoutDigest(norm.Positions, ids),
		cache:  cache,
	}, nil
}

// layoutDigest hashes the normalized positions and strip addresses, so the
// cache key changes when any LED moves or the winding order is re-measured.
func layoutDigest(positions []layout.Position, ids []int) string {
	h := sha256.New()
	for i, p := range positions {
		fmt.Fprintf(h, "%d:%g:%g;", ids[i], p.X, p.Y)
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}

// checkIDs verifies ids is a permutation of [0, n). Nil means the identity
// mapping (row i drives strip pixel i).
func checkIDs(ids []int, n int) ([]int, error) {
	if ids == nil {
		ids = make([]int, n)
		for i := range ids {
			ids[i] = i
		}
		return ids, nil
	}
	if len(ids) != n {
		return nil, fmt.Errorf("%w: %d IDs for %d positions", layout.ErrInvalidInput, len(ids), n)
	}
	seen := make([]bool, n)
	for _, id := range ids {
		if id < 0 || id >= n || seen[id] {
			return nil, fmt.Errorf("%w: IDs are not a permutation of [0, %d)", layout.ErrInvalidInput, n)
		}
		seen[id] = true
	}
	return append([]int(nil), ids...), nil
}

// LedCount reports the number of LEDs the mapper targets.
func (m *Mapper) LedCount() int { return m.index.Len() }

// MapImage maps img onto the layout without touching the cache.
func (m *Mapper) MapImage(img image.Image) (*Result, error) {
	img = m.downscale(img)
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w < 1 || h < 1 {
		return nil, fmt.Errorf("%w: empty image", layout.ErrInvalidInput)
	}

	n := m.index.Len()
	regions := make([]regionPixels, n)
	counts := make([]int, n)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			led := m.index.Nearest(float64(x)/float64(w), float64(y)/float64(h))
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			// RGBA returns 16-bit channels; scale back to 8-bit samples.
			regions[led].add(float64(r>>8), float64(g>>8), float64(b>>8))
			counts[led]++
		}
	}

	// Region colors come out indexed by layout row; route each through IDs
	// to its strip address.
	resolved := resolveRegionColors(regions, n)
	colors := make([]strip.Color, n)
	for row, c := range resolved {
		colors[m.ids[row]] = c
	}

	return &Result{
		Colors: colors,
		Counts: counts,
	}, nil
}

// MapFile maps the image file at path, consulting the cache first. The cache
// key covers both the image bytes and the layout, so moving an LED
// invalidates every cached mapping. Any cache failure is logged and treated
// as a miss.
func (m *Mapper) MapFile(path string) ([]strip.Color, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	key := Key(data, m.digest)

	if m.cache != nil {
		colors, ok, err := m.cache.Get(key)
		if err != nil {
			log.Printf("[Mapper] cache read for %s failed, recomputing: %v", path, err)
		} else if ok {
			if len(colors) == m.index.Len() {
				return colors, nil
			}
			log.Printf("[Mapper] cached mapping for %s has %d colors, want %d; recomputing", path, len(colors), m.index.Len())
		}
	}

	img, _, err := image.Decode(bytesReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image %s: %w", path, err)
	}
	res, err := m.MapImage(img)
	if err != nil {
		return nil, err
	}

	if m.cache != nil {
		if err := m.cache.Put(key, res.Colors); err != nil {
			log.Printf("[Mapper] cache write for %s failed: %v", path, err)
		}
	}
	return res.Colors, nil
}

// downscale resizes img so its longer axis is at most MaxDim, preserving
// aspect ratio. Images already within the bound pass through untouched.
func (m *Mapper) downscale(img image.Image) image.Image {
	maxDim := m.MaxDim
	if maxDim <= 0 {
		maxDim = DefaultMaxDim
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxDim && h <= maxDim {
		return img
	}
	scale := float64(maxDim) / float64(w)
	if h > w {
		scale = float64(maxDim) / float64(h)
	}
	dst := image.NewRGBA(image.Rect(0, 0, int(float64(w)*scale), int(float64(h)*scale)))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst
}
