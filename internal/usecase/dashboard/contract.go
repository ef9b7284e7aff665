package dashboard

import (
	"github.com/kailas-cloud/foodmap/internal/domain/geo"
	"github.com/kailas-cloud/foodmap/internal/domain/restaurant"
)

// Dataset is the read side of the catalog the dashboard draws.
type Dataset interface {
	Groups() []restaurant.Group
	Center() geo.Point
	MaxRating() float64
}
