package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kailas-cloud/foodmap/internal/domain"
)

// DefaultMaxBytes caps the dataset body size.
const DefaultMaxBytes int64 = 64 << 20

// HTTPSource downloads the dataset with a single GET.
type HTTPSource struct {
	url      string
	client   *http.Client
	maxBytes int64
}

// NewHTTPSource creates an HTTP source. timeout bounds the whole request.
func NewHTTPSource(url string, timeout time.Duration) *HTTPSource {
	return &HTTPSource{
		url:      url,
		client:   &http.Client{Timeout: timeout},
		maxBytes: DefaultMaxBytes,
	}
}

// WithClient replaces the HTTP client (tests, custom transports).
func (s *HTTPSource) WithClient(c *http.Client) *HTTPSource {
	if c != nil {
		s.client = c
	}
	return s
}

// WithMaxBytes overrides the body size cap.
func (s *HTTPSource) WithMaxBytes(n int64) *HTTPSource {
	if n > 0 {
		s.maxBytes = n
	}
	return s
}

// Name returns the URL.
func (s *HTTPSource) Name() string { return s.url }

// Fetch downloads the body. Non-2xx responses and oversized bodies are errors.
func (s *HTTPSource) Fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: get %s: %w", domain.ErrDatasetUnavailable, s.url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: get %s: status %d", domain.ErrDatasetUnavailable, s.url, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", domain.ErrDatasetUnavailable, err)
	}
	if int64(len(data)) > s.maxBytes {
		return nil, fmt.Errorf("%w: body exceeds %d bytes", domain.ErrDatasetUnavailable, s.maxBytes)
	}
	return data, nil
}
