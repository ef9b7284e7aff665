package health

import "context"

// CachePinger checks dataset cache availability.
type CachePinger interface {
	Ping(ctx context.Context) error
}

// DatasetState reports the loaded catalog size.
type DatasetState interface {
	Len() int
}
