package domain

import "errors"

// KeyPrefix is the namespace for every key foodmap writes to the KV store.
const KeyPrefix = "foodmap:"

var (
	// ErrDatasetUnavailable signals that the dataset feed could not be fetched.
	ErrDatasetUnavailable = errors.New("dataset unavailable")
	// ErrMalformedDataset signals rows that cannot be decoded into restaurants.
	ErrMalformedDataset = errors.New("malformed dataset")
	// ErrMissingColumn signals a required dataset column is absent.
	ErrMissingColumn = errors.New("missing required column")
	// ErrEmptyDataset signals a feed without a single restaurant row.
	ErrEmptyDataset = errors.New("empty dataset")
	// ErrTokenMissing signals the map access token file is absent or blank.
	ErrTokenMissing = errors.New("map access token missing")
	// ErrUnknownLabel signals a price label filter outside the known buckets.
	ErrUnknownLabel = errors.New("unknown price label")
)
