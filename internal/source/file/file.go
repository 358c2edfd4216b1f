// Package file implements a record source backed by a JSON document, the
// shape the catalog ships with when no database is configured.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"catalogcore/pkg/domain"
)

const defaultPath = "catalog.json"

// Source reads the full record collection from a JSON array on disk.
type Source struct {
	path string
}

// New constructs a file source. An empty path falls back to ./catalog.json.
func New(path string) *Source {
	if path == "" {
		path = defaultPath
	}
	return &Source{path: path}
}

// Fetch reads and decodes the record collection.
func (s *Source) Fetch(ctx context.Context) ([]domain.Feature, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	payload, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", s.path, err)
	}
	var records []domain.Feature
	if err := json.Unmarshal(payload, &records); err != nil {
		return nil, fmt.Errorf("decode catalog %s: %w", s.path, err)
	}
	return records, nil
}
