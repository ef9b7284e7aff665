package dashboard

import (
	"github.com/kailas-cloud/foodmap/internal/domain/restaurant"
)

// SizeMax is the marker diameter in pixels of the highest rated restaurant.
const SizeMax = 10

// Figure is a plotly figure document.
type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

// Trace is one scattermapbox series, one per price label.
type Trace struct {
	Type          string     `json:"type"`
	Name          string     `json:"name"`
	LegendGroup   string     `json:"legendgroup"`
	ShowLegend    bool       `json:"showlegend"`
	Mode          string     `json:"mode"`
	Subplot       string     `json:"subplot"`
	Lat           []float64  `json:"lat"`
	Lon           []float64  `json:"lon"`
	HoverText     []string   `json:"hovertext"`
	CustomData    [][]string `json:"customdata"`
	HoverTemplate string     `json:"hovertemplate"`
	Marker        Marker     `json:"marker"`
}

// Marker styles the points of a trace.
type Marker struct {
	Color    string    `json:"color"`
	Size     []float64 `json:"size"`
	SizeMode string    `json:"sizemode"`
	SizeRef  float64   `json:"sizeref"`
}

// Layout is the figure layout.
type Layout struct {
	Mapbox Mapbox `json:"mapbox"`
	Legend Legend `json:"legend"`
	Margin Margin `json:"margin"`
}

// Mapbox configures the base map.
type Mapbox struct {
	Style       string   `json:"style"`
	AccessToken string   `json:"accesstoken"`
	Zoom        float64  `json:"zoom"`
	Center      LatLon   `json:"center"`
	Domain      XYDomain `json:"domain"`
}

// LatLon is a map center.
type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// XYDomain is the paper fraction a subplot occupies.
type XYDomain struct {
	X [2]float64 `json:"x"`
	Y [2]float64 `json:"y"`
}

// Legend places the legend horizontally above the map, right aligned.
type Legend struct {
	Title       Title   `json:"title"`
	Orientation string  `json:"orientation"`
	YAnchor     string  `json:"yanchor"`
	Y           float64 `json:"y"`
	XAnchor     string  `json:"xanchor"`
	X           float64 `json:"x"`
	ItemSizing  string  `json:"itemsizing"`
}

// Title is a text title.
type Title struct {
	Text string `json:"text"`
}

// Margin is the plot margin in pixels.
type Margin struct {
	T int `json:"t"`
}

// MapOptions are the base map settings.
type MapOptions struct {
	Token string
	Style string
	Zoom  float64
}

func hoverTemplate(l restaurant.PriceLabel) string {
	return "<b>%{hovertext}</b><br><br>price_labels=" + string(l) + "<br>rating=%{marker.size}" +
		"<br>latitudes=%{lat}<br>longitudes=%{lon}<br>image_url=%{customdata[0]}<extra></extra>"
}

// BuildFigure lays out the dataset as a map scatter: a trace per label in legend
// order, colored by label and sized by rating. Empty known labels still get a trace
// so the legend is stable.
func BuildFigure(ds Dataset, opts MapOptions) Figure {
	sizeRef := 1.0
	if m := ds.MaxRating(); m > 0 {
		sizeRef = 2 * m / (SizeMax * SizeMax)
	}

	groups := ds.Groups()
	traces := make([]Trace, 0, len(groups))
	for _, g := range groups {
		traces = append(traces, buildTrace(g, sizeRef))
	}

	center := ds.Center()
	return Figure{
		Data: traces,
		Layout: Layout{
			Mapbox: Mapbox{
				Style:       opts.Style,
				AccessToken: opts.Token,
				Zoom:        opts.Zoom,
				Center:      LatLon{Lat: center.Lat, Lon: center.Lon},
				Domain:      XYDomain{X: [2]float64{0, 1}, Y: [2]float64{0, 1}},
			},
			Legend: Legend{
				Title:       Title{Text: "Price"},
				Orientation: "h",
				YAnchor:     "bottom",
				Y:           1.02,
				XAnchor:     "right",
				X:           1,
				ItemSizing:  "constant",
			},
			Margin: Margin{T: 60},
		},
	}
}

func buildTrace(g restaurant.Group, sizeRef float64) Trace {
	n := len(g.Restaurants)
	t := Trace{
		Type:          "scattermapbox",
		Name:          string(g.Label),
		LegendGroup:   string(g.Label),
		ShowLegend:    true,
		Mode:          "markers",
		Subplot:       "mapbox",
		Lat:           make([]float64, n),
		Lon:           make([]float64, n),
		HoverText:     make([]string, n),
		CustomData:    make([][]string, n),
		HoverTemplate: hoverTemplate(g.Label),
		Marker: Marker{
			Color:    g.Label.Color(),
			Size:     make([]float64, n),
			SizeMode: "area",
			SizeRef:  sizeRef,
		},
	}
	for i, r := range g.Restaurants {
		t.Lat[i] = r.Latitude()
		t.Lon[i] = r.Longitude()
		t.HoverText[i] = r.Address()
		t.CustomData[i] = []string{r.ImageURL()}
		t.Marker.Size[i] = r.Rating()
	}
	return t
}
