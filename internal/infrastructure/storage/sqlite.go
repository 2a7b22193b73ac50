package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/samalsubrat/mk-price-tracker/internal/domain"
	logx "github.com/samalsubrat/mk-price-tracker/pkg/logger"
)

//go:embed schema.sql
var Schema string

// SQLiteStore persists the catalog in SQLite. Every refresh writes its rows
// under a new run id and then moves the catalog_state pointer to that run,
// so readers only ever see a complete catalog.
type SQLiteStore struct {
	db     *sql.DB
	logger zerolog.Logger
}

func wrapOpen(err error) error {
	return fmt.Errorf("open catalog db: %w", err)
}

// Open opens (creating if needed) the database at path and applies the schema.
// Use ":memory:" for a throwaway database.
func Open(path string) (*SQLiteStore, error) {
	dsn := "file::memory:"
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, wrapOpen(err)
		}
		dsn = "file:" + path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	} else {
		dsn += "?_pragma=foreign_keys(1)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, wrapOpen(err)
	}

	// SQLite allows a single writer; one connection also keeps ":memory:" alive
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, wrapOpen(err)
	}

	return &SQLiteStore{
		db:     db,
		logger: logx.Component("storage"),
	}, nil
}

// Close closes the database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ReplaceCatalog writes the projection under runID and makes it current.
// Group rows are upserted by group_key and listing rows by link. A failure
// leaves the previous catalog untouched and wraps domain.ErrGroupTableWrite
// or domain.ErrListingTableWrite to name the table that failed.
func (s *SQLiteStore) ReplaceCatalog(ctx context.Context, runID string, projection domain.Projection) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %v", domain.ErrStorageUnavailable, err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	// Step 1: Stage groups under the new run
	if err = insertGroups(ctx, tx, runID, projection.Groups); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrGroupTableWrite, err)
	}

	// Step 2: Stage listings under the new run
	if err = insertListings(ctx, tx, runID, projection.Listings); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrListingTableWrite, err)
	}

	// Step 3: Swap the pointer and drop older runs
	if err = swapCurrentRun(ctx, tx, runID); err != nil {
		return fmt.Errorf("%w: swap: %v", domain.ErrStorageUnavailable, err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", domain.ErrStorageUnavailable, err)
	}

	s.logger.Debug().
		Str("run", runID).
		Int("groups", len(projection.Groups)).
		Int("listings", len(projection.Listings)).
		Msg("catalog replaced")

	return nil
}

func insertGroups(ctx context.Context, tx *sql.Tx, runID string, groups []domain.GroupRow) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO product_groups (run_id, group_key, position, base_name, price, stock, category)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (run_id, group_key) DO UPDATE SET
			position = excluded.position,
			base_name = excluded.base_name,
			price = excluded.price,
			stock = excluded.stock,
			category = excluded.category`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, g := range groups {
		if _, err := stmt.ExecContext(ctx, runID, g.GroupKey, i, g.BaseName, g.Price, string(g.Stock), g.Category); err != nil {
			return fmt.Errorf("group %q: %w", g.GroupKey, err)
		}
	}
	return nil
}

func insertListings(ctx context.Context, tx *sql.Tx, runID string, listings []domain.ListingRow) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO products (run_id, link, group_key, position, name, image, price, stock, category, vendor)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (run_id, link) DO UPDATE SET
			group_key = excluded.group_key,
			position = excluded.position,
			name = excluded.name,
			image = excluded.image,
			price = excluded.price,
			stock = excluded.stock,
			category = excluded.category,
			vendor = excluded.vendor`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, l := range listings {
		if _, err := stmt.ExecContext(ctx, runID, l.Link, l.GroupKey, l.Position, l.Name, l.Image, l.Price, l.Stock, l.Category, l.Vendor); err != nil {
			return fmt.Errorf("listing %q: %w", l.Link, err)
		}
	}
	return nil
}

func swapCurrentRun(ctx context.Context, tx *sql.Tx, runID string) error {
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO catalog_state (id, current_run, updated_at) VALUES (1, ?, ?)
		ON CONFLICT (id) DO UPDATE SET current_run = excluded.current_run, updated_at = excluded.updated_at`,
		runID, time.Now().UTC().Format(time.RFC3339Nano)); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM products WHERE run_id <> ?`, runID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM product_groups WHERE run_id <> ?`, runID); err != nil {
		return err
	}
	return nil
}

// CurrentRun returns the id and time of the visible catalog run.
// An empty id means no catalog has been stored yet.
func (s *SQLiteStore) CurrentRun(ctx context.Context) (string, time.Time, error) {
	var runID, updatedAt string
	err := s.db.QueryRowContext(ctx, `SELECT current_run, updated_at FROM catalog_state WHERE id = 1`).Scan(&runID, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return "", time.Time{}, nil
	}
	if err != nil {
		return "", time.Time{}, err
	}

	ts, err := time.Parse(time.RFC3339Nano, updatedAt)
	if err != nil {
		return runID, time.Time{}, fmt.Errorf("parse updated_at: %w", err)
	}
	return runID, ts, nil
}

// LoadCatalog returns the current run's groups in catalog order and its
// listings ordered by group and member position.
func (s *SQLiteStore) LoadCatalog(ctx context.Context) ([]domain.GroupRow, []domain.ListingRow, error) {
	runID, _, err := s.CurrentRun(ctx)
	if err != nil {
		return nil, nil, err
	}
	if runID == "" {
		return []domain.GroupRow{}, []domain.ListingRow{}, nil
	}

	groups, err := s.loadGroups(ctx, runID)
	if err != nil {
		return nil, nil, err
	}

	listings, err := s.loadListings(ctx, runID)
	if err != nil {
		return nil, nil, err
	}

	return groups, listings, nil
}

func (s *SQLiteStore) loadGroups(ctx context.Context, runID string) ([]domain.GroupRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT group_key, base_name, price, stock, category
		FROM product_groups WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	groups := []domain.GroupRow{}
	for rows.Next() {
		var g domain.GroupRow
		var stock string
		if err := rows.Scan(&g.GroupKey, &g.BaseName, &g.Price, &stock, &g.Category); err != nil {
			return nil, err
		}
		g.Stock = domain.StockStatus(stock)
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

func (s *SQLiteStore) loadListings(ctx context.Context, runID string) ([]domain.ListingRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT group_key, position, name, link, image, price, stock, category, vendor
		FROM products WHERE run_id = ? ORDER BY group_key, position`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	listings := []domain.ListingRow{}
	for rows.Next() {
		var l domain.ListingRow
		if err := rows.Scan(&l.GroupKey, &l.Position, &l.Name, &l.Link, &l.Image, &l.Price, &l.Stock, &l.Category, &l.Vendor); err != nil {
			return nil, err
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}
