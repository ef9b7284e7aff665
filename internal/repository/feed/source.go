package feed

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"
)

// Source fetches the raw dataset bytes from one location.
type Source interface {
	// Name identifies the location, e.g. the URL. Used as cache key input and in logs.
	Name() string
	Fetch(ctx context.Context) ([]byte, error)
}

// Format is the dataset encoding.
type Format string

// Supported formats.
const (
	FormatCSV     Format = "csv"
	FormatParquet Format = "parquet"
)

// ParseFormat validates an explicit format name; empty means detect from the location.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatParquet:
		return FormatParquet, nil
	case "":
		return "", nil
	}
	return "", fmt.Errorf("unsupported dataset format %q", s)
}

// FormatFromLocation picks the format by file extension, defaulting to CSV.
func FormatFromLocation(location string) Format {
	p := location
	if u, err := url.Parse(location); err == nil && u.Path != "" {
		p = u.Path
	}
	if strings.EqualFold(path.Ext(p), ".parquet") {
		return FormatParquet
	}
	return FormatCSV
}

// IsS3 reports whether location uses the s3:// scheme.
func IsS3(location string) bool {
	return strings.HasPrefix(location, "s3://")
}
