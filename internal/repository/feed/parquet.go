package feed

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/parquet-go/parquet-go"

	"github.com/kailas-cloud/foodmap/internal/domain"
	"github.com/kailas-cloud/foodmap/internal/domain/restaurant"
)

// parquetRow is a raw row of a restaurants parquet file.
type parquetRow struct {
	Latitude    *float64 `parquet:"latitudes"`
	Longitude   *float64 `parquet:"longitudes"`
	FullAddress *string  `parquet:"full_address"`
	Price       *string  `parquet:"price"`
	Rating      *float64 `parquet:"rating"`
	ImageURL    *string  `parquet:"image_url"`
}

// DecodeParquet parses a parquet dataset. Null price means absent tier.
func DecodeParquet(data []byte) ([]restaurant.Restaurant, error) {
	f, err := parquet.OpenFile(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: open parquet: %w", domain.ErrMalformedDataset, err)
	}
	if err := checkParquetColumns(f); err != nil {
		return nil, err
	}
	if f.NumRows() == 0 {
		return nil, domain.ErrEmptyDataset
	}

	rows, err := parquet.Read[parquetRow](bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: read parquet: %w", domain.ErrMalformedDataset, err)
	}

	out := make([]restaurant.Restaurant, 0, len(rows))
	for i := range rows {
		r, err := rowFromParquet(&rows[i])
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %w", domain.ErrMalformedDataset, i, err)
		}
		out = append(out, r)
	}
	return out, nil
}

func checkParquetColumns(f *parquet.File) error {
	present := make(map[string]struct{})
	for _, path := range f.Schema().Columns() {
		if len(path) > 0 {
			present[path[0]] = struct{}{}
		}
	}
	var missing []string
	for _, c := range RequiredColumns() {
		if _, ok := present[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", domain.ErrMissingColumn, strings.Join(missing, ", "))
	}
	return nil
}

func rowFromParquet(row *parquetRow) (restaurant.Restaurant, error) {
	if row.Latitude == nil || row.Longitude == nil {
		return restaurant.Restaurant{}, fmt.Errorf("coordinates are null")
	}
	if row.Rating == nil {
		return restaurant.Restaurant{}, fmt.Errorf("%s is null", ColRating)
	}

	tier := restaurant.TierAbsent
	if row.Price != nil && !isMissing(*row.Price) {
		tier = restaurant.PriceTier(*row.Price)
	}

	return restaurant.New(*row.Latitude, *row.Longitude, deref(row.FullAddress), tier, *row.Rating, deref(row.ImageURL))
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
