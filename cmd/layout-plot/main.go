// Command layout-plot renders the LED layout as a PNG scatter plot, with
// each LED colored by the image it would display. Useful for sanity-checking
// a freshly measured layout CSV before mounting the strip.
package main

import (
	"flag"
	"image"
	"image/color"
	"log"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/glowline/wakelight/internal/layout"
	"github.com/glowline/wakelight/internal/mapper"
)

var (
	layoutPath = flag.String("layout", "layout.csv", "LED layout CSV")
	imagePath  = flag.String("image", "", "Optional image to map onto the layout")
	outPath    = flag.String("out", "layout.png", "Output PNG path")
)

func main() {
	flag.Parse()

	lay, err := layout.LoadCSV(*layoutPath)
	if err != nil {
		log.Fatalf("failed to load layout: %v", err)
	}

	norm := &layout.Layout{
		IDs:       lay.IDs,
		Positions: append([]layout.Position(nil), lay.Positions...),
	}
	if err := norm.Normalize(); err != nil {
		log.Fatalf("failed to normalize layout: %v", err)
	}

	// Default glyph color when no image is given.
	glyphs := make([]color.Color, len(norm.Positions))
	for i := range glyphs {
		glyphs[i] = color.RGBA{R: 128, G: 128, B: 128, A: 255}
	}

	if *imagePath != "" {
		m, err := mapper.New(lay, nil)
		if err != nil {
			log.Fatalf("failed to build mapper: %v", err)
		}
		f, err := os.Open(*imagePath)
		if err != nil {
			log.Fatalf("failed to open image: %v", err)
		}
		img, _, err := image.Decode(f)
		f.Close()
		if err != nil {
			log.Fatalf("failed to decode image: %v", err)
		}
		res, err := m.MapImage(img)
		if err != nil {
			log.Fatalf("failed to map image: %v", err)
		}
		// Colors come back in strip order; plot glyphs walk layout rows.
		for row := range norm.Positions {
			red, green, blue := res.Colors[lay.IDs[row]].RGB()
			glyphs[row] = color.RGBA{R: uint8(red), G: uint8(green), B: uint8(blue), A: 255}
		}
	}

	pts := make(plotter.XYs, len(norm.Positions))
	for i, pos := range norm.Positions {
		// Image rows grow downward; flip Y so the plot matches the photo.
		pts[i] = plotter.XY{X: pos.X, Y: 1 - pos.Y}
	}

	p := plot.New()
	p.Title.Text = "LED Layout"
	p.X.Label.Text = "X"
	p.Y.Label.Text = "Y"
	p.X.Min, p.X.Max = -0.05, 1.05
	p.Y.Min, p.Y.Max = -0.05, 1.05

	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		log.Fatalf("failed to build scatter: %v", err)
	}
	scatter.GlyphStyleFunc = func(i int) draw.GlyphStyle {
		return draw.GlyphStyle{
			Color:  glyphs[i],
			Radius: vg.Points(4),
			Shape:  draw.CircleGlyph{},
		}
	}
	p.Add(scatter)

	if err := p.Save(8*vg.Inch, 8*vg.Inch, *outPath); err != nil {
		log.Fatalf("failed to save plot: %v", err)
	}
	log.Printf("wrote %s (%d LEDs)", *outPath, len(pts))
}
