package strip

import "math"

// DefaultGamma is a reasonable exponent for sRGB-ish LED output.
const DefaultGamma = 2.2

// GammaAdjust applies a power-law brightness correction to c's RGB channels:
// 255 * (channel/255)^exponent. Perceived LED brightness is strongly
// non-linear, so low channel values need to be pushed down harder than a
// linear scale would.
func GammaAdjust(c Color, exponent float64) Color {
	r, g, b := c.RGB()
	adj := func(ch int) float64 {
		return 255.0 * math.Pow(float64(ch)/255.0, exponent)
	}
	out := ClampColor(adj(r), adj(g), adj(b))
	return out | Color(c.White())<<24
}

// GammaAdjustAll applies GammaAdjust to every color in colors, in place.
func GammaAdjustAll(colors []Color, exponent float64) {
	for i, c := range colors {
		colors[i] = GammaAdjust(c, exponent)
	}
}
