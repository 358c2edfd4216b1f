// Package sqlite implements a record source reading the feature catalog from
// an embedded SQLite database. Vertical tags and competitor statuses are
// stored as JSON columns.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"catalogcore/pkg/domain"
)

const defaultPath = "catalog.db"

// Source reads the record collection from a sqlite file. The database is
// opened per Fetch; the catalog is loaded once at startup, so holding a
// connection open buys nothing.
type Source struct {
	path string
}

// New constructs a sqlite source. An empty path falls back to ./catalog.db.
func New(path string) *Source {
	if path == "" {
		path = defaultPath
	}
	return &Source{path: path}
}

const selectFeatures = `SELECT id, title, description, area, country,
	business_benefits, vertical, differentiator, competitor, note
	FROM features ORDER BY rowid`

// Fetch reads every feature row in insertion order.
func (s *Source) Fetch(ctx context.Context) ([]domain.Feature, error) {
	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", s.path, err)
	}
	defer func() { _ = db.Close() }()

	rows, err := db.QueryContext(ctx, selectFeatures)
	if err != nil {
		return nil, fmt.Errorf("select features: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []domain.Feature
	for rows.Next() {
		record, err := scanFeature(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate features: %w", err)
	}
	return records, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFeature(row rowScanner) (domain.Feature, error) {
	var (
		f                            domain.Feature
		area, country, benefits     sql.NullString
		verticalJSON, competitorRaw sql.NullString
		note                        sql.NullString
		differentiator              int
	)
	if err := row.Scan(&f.ID, &f.Title, &f.Description, &area, &country,
		&benefits, &verticalJSON, &differentiator, &competitorRaw, &note); err != nil {
		return domain.Feature{}, fmt.Errorf("scan feature: %w", err)
	}
	f.Area = area.String
	f.Country = country.String
	f.BusinessBenefits = benefits.String
	f.Note = note.String
	f.Differentiator = differentiator != 0
	if verticalJSON.Valid && verticalJSON.String != "" {
		if err := json.Unmarshal([]byte(verticalJSON.String), &f.Vertical); err != nil {
			return domain.Feature{}, fmt.Errorf("decode vertical for %s: %w", f.ID, err)
		}
	}
	if competitorRaw.Valid && competitorRaw.String != "" {
		if err := json.Unmarshal([]byte(competitorRaw.String), &f.Competitor); err != nil {
			return domain.Feature{}, fmt.Errorf("decode competitor for %s: %w", f.ID, err)
		}
	}
	return f, nil
}
