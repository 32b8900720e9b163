// Package mapper turns a source image into one representative color per LED.
//
// Every image pixel is assigned to the LED whose normalized position is
// nearest in image-normalized coordinates (pixel (x,y) → (x/W, y/H)); each
// LED's color is then the single-cluster centroid of the pixels it claimed.
// Mapping a photo is the expensive step on the Pi, so results are cached
// through the Cache interface keyed by image content identity.
package mapper

import (
	"gonum.org/v1/gonum/stat"

	"github.com/glowline/wakelight/internal/strip"
)

// regionPixels collects the RGB samples claimed by one LED region, one
// channel slice per channel so the means fall straight out of stat.Mean.
type regionPixels struct {
	r, g, b []float64
}

func (rp *regionPixels) add(r, g, b float64) {
	rp.r = append(rp.r, r)
	rp.g = append(rp.g, g)
	rp.b = append(rp.b, b)
}

// resolveRegionColors computes the representative color for each of ledCount
// LED regions. A region with a single pixel uses it directly; a region with
// more takes the per-channel arithmetic mean (the k=1 clustering centroid).
// Regions that claimed no pixels default to black.
//
// The whole [0, ledCount) range is covered. The historical implementation
// iterated [min assigned, max assigned) and left the outermost LEDs at
// whatever color they previously held; lighting unclaimed LEDs black is the
// documented deviation.
func resolveRegionColors(regions []regionPixels, ledCount int) []strip.Color {
	colors := make([]strip.Color, ledCount)
	for i := 0; i < ledCount; i++ {
		rp := &regions[i]
		switch len(rp.r) {
		case 0:
			colors[i] = strip.Black
		case 1:
			colors[i] = strip.ClampColor(rp.r[0], rp.g[0], rp.b[0])
		default:
			colors[i] = strip.ClampColor(
				stat.Mean(rp.r, nil),
				stat.Mean(rp.g, nil),
				stat.Mean(rp.b, nil),
			)
		}
	}
	return colors
}
