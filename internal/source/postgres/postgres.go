// Package postgres implements a record source reading the feature catalog
// from PostgreSQL, for deployments that manage catalog content centrally.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver

	"catalogcore/pkg/domain"
)

const (
	driverName = "pgx"
	defaultDSN = "postgres://localhost/catalogcore?sslmode=disable"
)

// Source reads the record collection from a Postgres catalog table.
type Source struct {
	dsn string
}

// New constructs a postgres source. An empty DSN falls back to a local
// default so development environments work without configuration.
func New(dsn string) *Source {
	if dsn == "" {
		dsn = defaultDSN
	}
	return &Source{dsn: dsn}
}

const selectFeatures = `SELECT id, title, description, area, country,
	business_benefits, vertical, differentiator, competitor, note
	FROM features ORDER BY position`

// Fetch connects, reads every feature row in catalog order, and closes the
// connection. The catalog is loaded once at startup, so no pool is kept.
func (s *Source) Fetch(ctx context.Context) ([]domain.Feature, error) {
	db, err := sql.Open(driverName, s.dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	defer func() { _ = db.Close() }()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

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

func scanFeature(rows *sql.Rows) (domain.Feature, error) {
	var (
		f                        domain.Feature
		area, country, benefits  sql.NullString
		verticalRaw, competitors []byte
		note                     sql.NullString
	)
	if err := rows.Scan(&f.ID, &f.Title, &f.Description, &area, &country,
		&benefits, &verticalRaw, &f.Differentiator, &competitors, &note); err != nil {
		return domain.Feature{}, fmt.Errorf("scan feature: %w", err)
	}
	f.Area = area.String
	f.Country = country.String
	f.BusinessBenefits = benefits.String
	f.Note = note.String
	if len(verticalRaw) > 0 {
		if err := json.Unmarshal(verticalRaw, &f.Vertical); err != nil {
			return domain.Feature{}, fmt.Errorf("decode vertical for %s: %w", f.ID, err)
		}
	}
	if len(competitors) > 0 {
		if err := json.Unmarshal(competitors, &f.Competitor); err != nil {
			return domain.Feature{}, fmt.Errorf("decode competitor for %s: %w", f.ID, err)
		}
	}
	return f, nil
}
