package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// snapshotRowID is the primary key of the single row holding the collection.
const snapshotRowID = 1

const (
	loadSnapshotSQL = `SELECT products FROM product_snapshots WHERE id = $1`
	saveSnapshotSQL = `
INSERT INTO product_snapshots (id, products, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (id) DO UPDATE SET products = EXCLUDED.products, updated_at = EXCLUDED.updated_at`
)

// PgStore implements ProductStore using PostgreSQL as the data store.
// The collection is kept as one JSONB document, so each Save is a single atomic upsert.
type PgStore struct {
	db *pgxpool.Pool
}

// NewPgStore creates a new instance of ProductStore using a PostgreSQL connection pool.
func NewPgStore(dbp *pgxpool.Pool) *PgStore {
	return &PgStore{db: dbp}
}

// Load reads the snapshot row. A missing row is an empty collection.
func (p *PgStore) Load(ctx context.Context) ([]Product, error) {
	var data []byte
	err := p.db.QueryRow(ctx, loadSnapshotSQL, snapshotRowID).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return []Product{}, nil
		}
		return nil, fmt.Errorf("failed to load products snapshot: %w", err)
	}
	return decodeSnapshot(data)
}

// Save upserts the snapshot row with the whole collection.
func (p *PgStore) Save(ctx context.Context, products []Product) error {
	data, err := encodeSnapshot(products)
	if err != nil {
		return err
	}
	if _, err := p.db.Exec(ctx, saveSnapshotSQL, snapshotRowID, data); err != nil {
		return fmt.Errorf("failed to save products snapshot: %w", err)
	}
	return nil
}

// Ping checks the database connection.
func (p *PgStore) Ping(ctx context.Context) error {
	return p.db.Ping(ctx)
}
