// Package postgis stores named places and their grid codes in a
// PostGIS-enabled PostgreSQL database.
package postgis

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/1F47E/nato-grid/pkg/models"
	_ "github.com/lib/pq"
)

const batchSize = 1000

type PlaceStore struct {
	db *sql.DB
}

// NewPlaceStore opens a PostGIS connection using a lib/pq DSN
func NewPlaceStore(ctx context.Context, dsn string) (*PlaceStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &PlaceStore{db: db}, nil
}

// InitSchema creates the places table and its spatial index if missing
func (p *PlaceStore) InitSchema(ctx context.Context) error {
	queries := []string{
		`CREATE EXTENSION IF NOT EXISTS postgis;`,

		`CREATE TABLE IF NOT EXISTS grid_places (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			code TEXT NOT NULL,
			location GEOMETRY(POINT, 4326) NOT NULL
		);`,

		`CREATE INDEX IF NOT EXISTS idx_grid_places_code ON grid_places (code);`,
		`CREATE INDEX IF NOT EXISTS idx_grid_places_location ON grid_places USING GIST (location);`,
	}

	for _, query := range queries {
		if _, err := p.db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query '%s': %w", query, err)
		}
	}

	return nil
}

// UpsertPlaces writes places in batched transactions, replacing rows with the same id
func (p *PlaceStore) UpsertPlaces(ctx context.Context, places []*models.Place) error {
	const query = `
		INSERT INTO grid_places (id, name, code, location)
		VALUES ($1, $2, $3, ST_SetSRID(ST_MakePoint($4, $5), 4326))
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, code = EXCLUDED.code, location = EXCLUDED.location
	`

	for start := 0; start < len(places); start += batchSize {
		end := start + batchSize
		if end > len(places) {
			end = len(places)
		}
		if err := p.upsertBatch(ctx, query, places[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (p *PlaceStore) upsertBatch(ctx context.Context, query string, places []*models.Place) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, place := range places {
		if place == nil || place.Location == nil {
			continue
		}
		if _, err := stmt.ExecContext(ctx, place.ID, place.Name, place.Code,
			place.Location.Lon, place.Location.Lat); err != nil {
			return fmt.Errorf("failed to insert place %s: %w", place.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}
	return nil
}

// QueryBox returns the places inside a bounding box
func (p *PlaceStore) QueryBox(ctx context.Context, box models.BoundingBox) ([]*models.Place, error) {
	query := `
		SELECT id, name, code, ST_Y(location) AS lat, ST_X(location) AS lon
		FROM grid_places
		WHERE location && ST_MakeEnvelope($1, $2, $3, $4, 4326)
		ORDER BY name
	`

	rows, err := p.db.QueryContext(ctx, query,
		box.BottomLeft.Lon, box.BottomLeft.Lat,
		box.TopRight.Lon, box.TopRight.Lat)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	return scanPlaces(rows)
}

// FindByCode returns every place stored under a short code
func (p *PlaceStore) FindByCode(ctx context.Context, code string) ([]*models.Place, error) {
	query := `
		SELECT id, name, code, ST_Y(location) AS lat, ST_X(location) AS lon
		FROM grid_places
		WHERE code = $1
		ORDER BY name
	`

	rows, err := p.db.QueryContext(ctx, query, code)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	return scanPlaces(rows)
}

func scanPlaces(rows *sql.Rows) ([]*models.Place, error) {
	var results []*models.Place
	for rows.Next() {
		var (
			place    models.Place
			lat, lon float64
		)
		if err := rows.Scan(&place.ID, &place.Name, &place.Code, &lat, &lon); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		place.Location = &models.Location{Lat: lat, Lon: lon}
		results = append(results, &place)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return results, nil
}

// Count returns the number of stored places
func (p *PlaceStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := p.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM grid_places").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count places: %w", err)
	}
	return count, nil
}

// Close closes the database connection
func (p *PlaceStore) Close() error {
	return p.db.Close()
}
