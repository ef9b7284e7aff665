package dashboard

import (
	"bytes"
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/kailas-cloud/foodmap/internal/domain/restaurant"
)

// PreviewSize is the PNG canvas size.
type PreviewSize struct {
	Width  vg.Length
	Height vg.Length
}

// DefaultPreviewSize is 8x6 inches.
var DefaultPreviewSize = PreviewSize{Width: 8 * vg.Inch, Height: 6 * vg.Inch}

// namedColors covers the marker colors of the price labels.
var namedColors = map[string]color.RGBA{
	"yellow": {R: 0xff, G: 0xff, B: 0x00, A: 0xff},
	"orange": {R: 0xff, G: 0xa5, B: 0x00, A: 0xff},
	"red":    {R: 0xff, G: 0x00, B: 0x00, A: 0xff},
	"grey":   {R: 0x80, G: 0x80, B: 0x80, A: 0xff},
}

// RenderPreview draws the same scatter as BuildFigure on lon/lat axes, without
// map tiles. Marker area is proportional to rating.
func RenderPreview(ds Dataset, title string, size PreviewSize) ([]byte, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Longitude"
	p.Y.Label.Text = "Latitude"
	p.Legend.Top = true
	p.Legend.Left = false
	p.Add(plotter.NewGrid())

	maxRating := ds.MaxRating()
	for _, g := range ds.Groups() {
		if len(g.Restaurants) == 0 {
			continue
		}
		s, err := scatterFor(g, maxRating)
		if err != nil {
			return nil, fmt.Errorf("scatter %q: %w", g.Label, err)
		}
		p.Add(s)
		p.Legend.Add(legendName(g.Label), s)
	}

	wt, err := p.WriterTo(size.Width, size.Height, "png")
	if err != nil {
		return nil, fmt.Errorf("render preview: %w", err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("encode preview: %w", err)
	}
	return buf.Bytes(), nil
}

func scatterFor(g restaurant.Group, maxRating float64) (*plotter.Scatter, error) {
	pts := make(plotter.XYs, len(g.Restaurants))
	for i, r := range g.Restaurants {
		pts[i] = plotter.XY{X: r.Longitude(), Y: r.Latitude()}
	}

	s, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, err
	}

	c := parseColor(g.Label.Color())
	s.GlyphStyle.Color = c
	s.GlyphStyle.Shape = draw.CircleGlyph{}
	s.GlyphStyle.Radius = vg.Points(SizeMax / 2)
	s.GlyphStyleFunc = func(i int) draw.GlyphStyle {
		return draw.GlyphStyle{
			Color:  c,
			Shape:  draw.CircleGlyph{},
			Radius: vg.Points(markerRadius(g.Restaurants[i].Rating(), maxRating)),
		}
	}
	return s, nil
}

// markerRadius maps rating to radius in points, area scaled so the top rating
// reaches SizeMax diameter.
func markerRadius(rating, maxRating float64) float64 {
	if maxRating <= 0 || rating <= 0 {
		return 0.5
	}
	return SizeMax / 2 * math.Sqrt(rating/maxRating)
}

func legendName(l restaurant.PriceLabel) string {
	if l == restaurant.Unlabeled {
		return "(unlabeled)"
	}
	return string(l)
}

func parseColor(s string) color.RGBA {
	if c, ok := namedColors[s]; ok {
		return c
	}
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 {
		return color.RGBA{A: 0xff}
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{A: 0xff}
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}
}
