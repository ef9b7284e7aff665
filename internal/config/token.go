package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/kailas-cloud/foodmap/internal/domain"
)

// ReadToken reads the map access token from path, trimming surrounding whitespace.
// A missing or blank file is ErrTokenMissing.
func ReadToken(path string) (string, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: %s not found", domain.ErrTokenMissing, path)
	}
	if err != nil {
		return "", fmt.Errorf("read token %s: %w", path, err)
	}

	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", fmt.Errorf("%w: %s is empty", domain.ErrTokenMissing, path)
	}
	return token, nil
}
