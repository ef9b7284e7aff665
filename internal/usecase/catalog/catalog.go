package catalog

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/foodmap/internal/domain"
	"github.com/kailas-cloud/foodmap/internal/domain/geo"
	"github.com/kailas-cloud/foodmap/internal/domain/restaurant"
	"github.com/kailas-cloud/foodmap/internal/metrics"
	"github.com/kailas-cloud/foodmap/internal/repository/feed"
)

// Catalog is the labelled dataset, built once at startup. Read-only after Build.
type Catalog struct {
	source      string
	loadedAt    time.Time
	restaurants []restaurant.Restaurant
	groups      []restaurant.Group
	center      geo.Point
	maxRating   float64
}

// Build fetches, decodes and labels the dataset.
func Build(ctx context.Context, src Source, format feed.Format, logger *zap.Logger) (*Catalog, error) {
	start := time.Now()

	if format == "" {
		format = feed.FormatFromLocation(src.Name())
	}

	data, err := src.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("load dataset %s: %w", src.Name(), err)
	}

	rows, err := feed.Decode(format, data)
	if err != nil {
		return nil, fmt.Errorf("decode dataset %s: %w", src.Name(), err)
	}

	c := New(rows)
	c.source = src.Name()
	c.loadedAt = time.Now()

	elapsed := time.Since(start)
	metrics.DatasetLoadDuration.Observe(elapsed.Seconds())
	for _, g := range c.groups {
		metrics.DatasetRecords.WithLabelValues(labelValue(g.Label)).Set(float64(len(g.Restaurants)))
	}

	logger.Info("Dataset loaded",
		zap.String("source", c.source),
		zap.String("format", string(format)),
		zap.Int("records", len(c.restaurants)),
		zap.Duration("elapsed", elapsed),
	)
	return c, nil
}

// New labels rows and derives grouping and map center. rows is not retained.
func New(rows []restaurant.Restaurant) *Catalog {
	labelled := restaurant.UniqueIDs(restaurant.Annotate(rows))

	pts := make([]geo.Point, len(labelled))
	var maxRating float64
	for i, r := range labelled {
		pts[i] = geo.Point{Lat: r.Latitude(), Lon: r.Longitude()}
		if r.Rating() > maxRating {
			maxRating = r.Rating()
		}
	}
	center, _ := geo.Centroid(pts)

	return &Catalog{
		restaurants: labelled,
		groups:      restaurant.GroupByLabel(labelled),
		center:      center,
		maxRating:   maxRating,
	}
}

// Source is the dataset location the catalog was loaded from.
func (c *Catalog) Source() string { return c.source }

// LoadedAt is when Build finished.
func (c *Catalog) LoadedAt() time.Time { return c.loadedAt }

// Len returns the number of restaurants.
func (c *Catalog) Len() int { return len(c.restaurants) }

// Restaurants returns a copy of all restaurants in dataset order.
func (c *Catalog) Restaurants() []restaurant.Restaurant {
	out := make([]restaurant.Restaurant, len(c.restaurants))
	copy(out, c.restaurants)
	return out
}

// Groups returns the legend buckets: every known label in legend order, then
// Unlabeled when present.
func (c *Catalog) Groups() []restaurant.Group {
	out := make([]restaurant.Group, len(c.groups))
	for i, g := range c.groups {
		rs := make([]restaurant.Restaurant, len(g.Restaurants))
		copy(rs, g.Restaurants)
		out[i] = restaurant.Group{Label: g.Label, Restaurants: rs}
	}
	return out
}

// Center is the mean of all coordinates.
func (c *Catalog) Center() geo.Point { return c.center }

// MaxRating is the largest rating in the dataset, 0 when empty.
func (c *Catalog) MaxRating() float64 { return c.maxRating }

// Filter returns restaurants carrying label. Accepts any known label or Unlabeled.
func (c *Catalog) Filter(label restaurant.PriceLabel) []restaurant.Restaurant {
	var out []restaurant.Restaurant
	for _, r := range c.restaurants {
		if r.Label() == label {
			out = append(out, r)
		}
	}
	return out
}

// ParseLabel resolves a query value to a label. "unlabeled" selects rows
// without a known label.
func ParseLabel(s string) (restaurant.PriceLabel, error) {
	if s == UnlabeledParam {
		return restaurant.Unlabeled, nil
	}
	l := restaurant.PriceLabel(s)
	if !l.IsKnown() {
		return "", fmt.Errorf("%w: %q", domain.ErrUnknownLabel, s)
	}
	return l, nil
}

// UnlabeledParam is the query value for rows whose tier matched no label.
const UnlabeledParam = "unlabeled"

func labelValue(l restaurant.PriceLabel) string {
	if l == restaurant.Unlabeled {
		return UnlabeledParam
	}
	return string(l)
}
