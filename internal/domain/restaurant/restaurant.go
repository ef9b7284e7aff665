package restaurant

import (
	"fmt"
	"math"
	"strconv"

	"github.com/google/uuid"

	"github.com/kailas-cloud/foodmap/internal/domain/geo"
)

// idNamespace scopes restaurant UUIDs so they never collide with other v5 IDs.
var idNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://foodmap.kailas.cloud/restaurant"))

// Restaurant is one dataset row (immutable value object).
type Restaurant struct {
	id        uuid.UUID
	latitude  float64
	longitude float64
	address   string
	tier      PriceTier
	rating    float64
	imageURL  string
	label     PriceLabel
}

// New validates coordinates and rating and creates an unlabelled Restaurant.
func New(lat, lon float64, address string, tier PriceTier, rating float64, imageURL string) (Restaurant, error) {
	if !geo.ValidateCoordinates(lat, lon) {
		return Restaurant{}, fmt.Errorf("coordinates out of range: lat=%v lon=%v", lat, lon)
	}
	if math.IsNaN(rating) || math.IsInf(rating, 0) || rating < 0 {
		return Restaurant{}, fmt.Errorf("rating must be a finite non-negative number, got %v", rating)
	}
	return Restaurant{
		id:        stableID(lat, lon, address),
		latitude:  lat,
		longitude: lon,
		address:   address,
		tier:      tier,
		rating:    rating,
		imageURL:  imageURL,
	}, nil
}

func stableID(lat, lon float64, address string) uuid.UUID {
	return uuid.NewSHA1(idNamespace, []byte(idKey(lat, lon, address)))
}

func idKey(lat, lon float64, address string) string {
	return strconv.FormatFloat(lat, 'f', -1, 64) + "," + strconv.FormatFloat(lon, 'f', -1, 64) + "|" + address
}

// UniqueIDs returns a copy of rs where repeated rows (same coordinates and
// address) get distinct IDs. The first occurrence keeps its plain ID, the
// n-th repeat is keyed with "#n".
func UniqueIDs(rs []Restaurant) []Restaurant {
	out := make([]Restaurant, len(rs))
	seen := make(map[uuid.UUID]int, len(rs))
	for i, r := range rs {
		base := stableID(r.latitude, r.longitude, r.address)
		if n := seen[base]; n > 0 {
			key := idKey(r.latitude, r.longitude, r.address) + "#" + strconv.Itoa(n)
			r.id = uuid.NewSHA1(idNamespace, []byte(key))
		} else {
			r.id = base
		}
		seen[base]++
		out[i] = r
	}
	return out
}

// ID returns a UUID v5 derived from coordinates and address. Repeated rows
// share it until UniqueIDs runs.
func (r Restaurant) ID() uuid.UUID { return r.id }

// Latitude returns the latitude in degrees.
func (r Restaurant) Latitude() float64 { return r.latitude }

// Longitude returns the longitude in degrees.
func (r Restaurant) Longitude() float64 { return r.longitude }

// Address returns the full street address.
func (r Restaurant) Address() string { return r.address }

// Tier returns the raw price tier.
func (r Restaurant) Tier() PriceTier { return r.tier }

// Rating returns the numeric rating.
func (r Restaurant) Rating() float64 { return r.rating }

// ImageURL returns the photo URL.
func (r Restaurant) ImageURL() string { return r.imageURL }

// Label returns the derived price label. Empty until Annotate runs.
func (r Restaurant) Label() PriceLabel { return r.label }
