package feed

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/kailas-cloud/foodmap/internal/domain"
	"github.com/kailas-cloud/foodmap/internal/domain/restaurant"
)

// Column names every dataset must carry.
const (
	ColLatitude  = "latitudes"
	ColLongitude = "longitudes"
	ColAddress   = "full_address"
	ColPrice     = "price"
	ColRating    = "rating"
	ColImageURL  = "image_url"
)

// RequiredColumns lists the dataset columns in the order they are validated.
func RequiredColumns() []string {
	return []string{ColLatitude, ColLongitude, ColAddress, ColPrice, ColRating, ColImageURL}
}

// missingMarkers are cell values read as "no value", the same set pandas treats as NaN.
var missingMarkers = map[string]struct{}{
	"": {}, "#N/A": {}, "#N/A N/A": {}, "#NA": {}, "-1.#IND": {}, "-1.#QNAN": {},
	"-NaN": {}, "-nan": {}, "1.#IND": {}, "1.#QNAN": {}, "<NA>": {}, "N/A": {},
	"NA": {}, "NULL": {}, "NaN": {}, "None": {}, "n/a": {}, "nan": {}, "null": {},
}

func isMissing(cell string) bool {
	_, ok := missingMarkers[cell]
	return ok
}

// Decode parses data in the given format into unlabelled restaurants.
func Decode(format Format, data []byte) ([]restaurant.Restaurant, error) {
	switch format {
	case FormatParquet:
		return DecodeParquet(data)
	case FormatCSV, "":
		return DecodeCSV(data)
	}
	return nil, fmt.Errorf("unsupported dataset format %q", format)
}

// DecodeCSV parses a CSV dataset with a header row. Extra columns are ignored.
func DecodeCSV(data []byte) ([]restaurant.Restaurant, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	// Scraped names carry bare quotes inside unquoted fields.
	r.LazyQuotes = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, domain.ErrEmptyDataset
	}
	if err != nil {
		return nil, fmt.Errorf("%w: header: %w", domain.ErrMalformedDataset, err)
	}

	idx, err := indexColumns(header)
	if err != nil {
		return nil, err
	}

	var out []restaurant.Restaurant
	for line := 2; ; line++ {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", domain.ErrMalformedDataset, line, err)
		}

		rest, err := rowFromCSV(rec, idx)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", domain.ErrMalformedDataset, line, err)
		}
		out = append(out, rest)
	}

	if len(out) == 0 {
		return nil, domain.ErrEmptyDataset
	}
	return out, nil
}

// csvColumns holds the position of each required column in the header.
type csvColumns struct {
	lat, lon, address, price, rating, image int
}

func indexColumns(header []string) (csvColumns, error) {
	pos := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, dup := pos[name]; !dup {
			pos[name] = i
		}
	}

	var missing []string
	lookup := func(name string) int {
		i, ok := pos[name]
		if !ok {
			missing = append(missing, name)
			return -1
		}
		return i
	}

	cols := csvColumns{
		lat:     lookup(ColLatitude),
		lon:     lookup(ColLongitude),
		address: lookup(ColAddress),
		price:   lookup(ColPrice),
		rating:  lookup(ColRating),
		image:   lookup(ColImageURL),
	}
	if len(missing) > 0 {
		return csvColumns{}, fmt.Errorf("%w: %s", domain.ErrMissingColumn, strings.Join(missing, ", "))
	}
	return cols, nil
}

func rowFromCSV(rec []string, c csvColumns) (restaurant.Restaurant, error) {
	cell := func(i int) string {
		if i < len(rec) {
			return rec[i]
		}
		return ""
	}

	lat, err := parseFloat(ColLatitude, cell(c.lat))
	if err != nil {
		return restaurant.Restaurant{}, err
	}
	lon, err := parseFloat(ColLongitude, cell(c.lon))
	if err != nil {
		return restaurant.Restaurant{}, err
	}
	rating, err := parseFloat(ColRating, cell(c.rating))
	if err != nil {
		return restaurant.Restaurant{}, err
	}

	tier := restaurant.TierAbsent
	if price := cell(c.price); !isMissing(price) {
		tier = restaurant.PriceTier(price)
	}

	address := cell(c.address)
	if isMissing(address) {
		address = ""
	}
	image := cell(c.image)
	if isMissing(image) {
		image = ""
	}

	return restaurant.New(lat, lon, address, tier, rating, image)
}

func parseFloat(col, s string) (float64, error) {
	s = strings.TrimSpace(s)
	if isMissing(s) {
		return 0, fmt.Errorf("%s is empty", col)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", col, err)
	}
	return v, nil
}
