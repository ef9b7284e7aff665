package catalog

import "context"

// Source provides the raw dataset bytes.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]byte, error)
}
