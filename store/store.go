package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
	"price-tracker/internal/types"
)

// TimestampLayout is how observation times are written to the timestamp column.
// Rows written by earlier versions of the tool use the same layout.
const TimestampLayout = "2006-01-02 15:04:05.000000"

var timestampLayouts = []string{
	TimestampLayout,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999",
}

const schema = `
CREATE TABLE IF NOT EXISTS products (
    id INTEGER PRIMARY KEY,
    name TEXT,
    price REAL,
    website TEXT,
    url TEXT,
    timestamp DATETIME,
    description TEXT,
    rating REAL,
    num_reviews INTEGER,
    availability TEXT,
    UNIQUE(name, website, timestamp)
);`

// Store is the price history kept in a single SQLite file
type Store struct {
	db *sqlx.DB
}

type observationRow struct {
	Name         string          `db:"name"`
	Price        sql.NullFloat64 `db:"price"`
	Website      string          `db:"website"`
	URL          string          `db:"url"`
	Timestamp    string          `db:"timestamp"`
	Description  string          `db:"description"`
	Rating       float64         `db:"rating"`
	NumReviews   int             `db:"num_reviews"`
	Availability string          `db:"availability"`
}

// Open opens the database at dsn and creates the products table if needed
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dsn, err)
	}
	// one connection keeps ":memory:" databases alive and serializes writers
	db.SetMaxOpenConns(1)

	if err = db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", dsn, err)
	}

	s := &Store{db: db}
	if err := s.ensureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Save records an observation. Records without a name or a known price are
// ignored and reported as not saved. An existing row with the same name, site
// and timestamp is replaced.
func (s *Store) Save(ctx context.Context, record types.Record) (bool, error) {
	if !record.Valid() {
		return false, nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := insertRecord(ctx, tx, record); err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit: %w", err)
	}
	return true, nil
}

// SaveAll saves every valid record in one transaction and returns how many were written
func (s *Store) SaveAll(ctx context.Context, records []types.Record) (int, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	saved := 0
	for _, r := range records {
		if !r.Valid() {
			continue
		}
		if err := insertRecord(ctx, tx, r); err != nil {
			return 0, err
		}
		saved++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return saved, nil
}

func insertRecord(ctx context.Context, tx *sqlx.Tx, r types.Record) error {
	_, err := tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO products
		(name, price, website, url, timestamp, description, rating, num_reviews, availability)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Name, *r.Price, r.Site, r.URL, r.ObservedAt.In(time.Local).Format(TimestampLayout),
		r.Description, r.Rating, r.ReviewCount, r.Availability,
	)
	if err != nil {
		return fmt.Errorf("save %q from %s: %w", r.Name, r.Site, err)
	}
	return nil
}

// History returns the observations whose name contains nameQuery
// (case-sensitive) and that have a price, newest first
func (s *Store) History(ctx context.Context, nameQuery string) ([]types.Observation, error) {
	var rows []observationRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT
		  COALESCE(name, '') AS name, price, COALESCE(website, '') AS website,
		  COALESCE(url, '') AS url, COALESCE(timestamp, '') AS timestamp,
		  COALESCE(description, '') AS description, COALESCE(rating, 0) AS rating,
		  COALESCE(num_reviews, 0) AS num_reviews, COALESCE(availability, '') AS availability
		FROM products
		WHERE instr(name, ?) > 0 AND price IS NOT NULL
		ORDER BY timestamp DESC`, nameQuery)
	if err != nil {
		return nil, fmt.Errorf("history %q: %w", nameQuery, err)
	}

	out := make([]types.Observation, 0, len(rows))
	for _, row := range rows {
		out = append(out, types.Observation{
			Name:         row.Name,
			Price:        row.Price.Float64,
			Site:         row.Website,
			URL:          row.URL,
			ObservedAt:   parseTimestamp(row.Timestamp),
			Description:  row.Description,
			Rating:       row.Rating,
			ReviewCount:  row.NumReviews,
			Availability: row.Availability,
		})
	}
	return out, nil
}

// Count returns the number of stored rows
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM products`); err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

func parseTimestamp(v string) time.Time {
	v = strings.TrimSpace(v)
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, v, time.Local); err == nil {
			return t
		}
	}
	return time.Time{}
}
