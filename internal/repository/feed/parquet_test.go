package feed

import (
	"bytes"
	"errors"
	"testing"

	"github.com/parquet-go/parquet-go"

	"github.com/kailas-cloud/foodmap/internal/domain"
	"github.com/kailas-cloud/foodmap/internal/domain/restaurant"
)

func ptr[T any](v T) *T { return &v }

func writeParquet[T any](t *testing.T, rows []T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := parquet.Write(&buf, rows); err != nil {
		t.Fatalf("write parquet: %v", err)
	}
	return buf.Bytes()
}

func TestDecodeParquet_Valid(t *testing.T) {
	data := writeParquet(t, []parquetRow{
		{
			Latitude: ptr(41.76), Longitude: ptr(-72.68), FullAddress: ptr("302 Asylum St"),
			Price: ptr("$$"), Rating: ptr(4.5), ImageURL: ptr("http://x/a.jpg"),
		},
		{
			Latitude: ptr(41.77), Longitude: ptr(-72.67), FullAddress: ptr("12 Park St"),
			Rating: ptr(4.0), ImageURL: ptr("http://x/b.jpg"),
		},
	})

	rs, err := DecodeParquet(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rs) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rs))
	}
	if rs[0].Tier() != restaurant.TierMid || rs[0].ImageURL() != "http://x/a.jpg" {
		t.Errorf("unexpected first row: tier=%q image=%q", rs[0].Tier(), rs[0].ImageURL())
	}
	if !rs[1].Tier().IsAbsent() {
		t.Errorf("null price must be absent, got %q", rs[1].Tier())
	}
}

func TestDecodeParquet_NullCoordinates(t *testing.T) {
	data := writeParquet(t, []parquetRow{{Longitude: ptr(-72.0), Rating: ptr(3.0)}})
	if _, err := DecodeParquet(data); !errors.Is(err, domain.ErrMalformedDataset) {
		t.Fatalf("expected ErrMalformedDataset, got %v", err)
	}
}

type partialRow struct {
	Latitude  *float64 `parquet:"latitudes"`
	Longitude *float64 `parquet:"longitudes"`
}

func TestDecodeParquet_MissingColumn(t *testing.T) {
	data := writeParquet(t, []partialRow{{Latitude: ptr(41.0), Longitude: ptr(-72.0)}})
	if _, err := DecodeParquet(data); !errors.Is(err, domain.ErrMissingColumn) {
		t.Fatalf("expected ErrMissingColumn, got %v", err)
	}
}

func TestDecodeParquet_Garbage(t *testing.T) {
	if _, err := DecodeParquet([]byte("not a parquet file")); !errors.Is(err, domain.ErrMalformedDataset) {
		t.Fatalf("expected ErrMalformedDataset, got %v", err)
	}
}

func TestDecode_DispatchesParquet(t *testing.T) {
	data := writeParquet(t, []parquetRow{{
		Latitude: ptr(41.0), Longitude: ptr(-72.0), Price: ptr("$"), Rating: ptr(5.0),
	}})
	rs, err := Decode(FormatParquet, data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rs) != 1 || rs[0].Tier() != restaurant.TierLow {
		t.Errorf("unexpected rows: %+v", rs)
	}
}
