package storage

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// DB is the Postgres Backend. It wraps a pgxpool.Pool.
type DB struct {
	Pool *pgxpool.Pool
}

// Compile-time check: *DB satisfies Backend.
var _ Backend = (*DB)(nil)

// New creates a new DB with a connection pool.
func New(ctx context.Context, dsn string) (*DB, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("creating pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &DB{Pool: pool}, nil
}

// Close closes the connection pool.
func (db *DB) Close() error {
	db.Pool.Close()
	return nil
}

// RunMigrations applies all pending embedded migrations.
func RunMigrations(dsn string) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("opening migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, dsn)
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

const documentColumns = `id, owner, description, public, files, created_at, updated_at`

func scanDocument(row pgx.Row) (*Document, error) {
	var d Document
	err := row.Scan(&d.ID, &d.Owner, &d.Description, &d.Public, &d.Files, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if d.Files == nil {
		d.Files = map[string]string{}
	}
	return &d, nil
}

func (db *DB) List(ctx context.Context, owner string) ([]Document, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT `+documentColumns+`
		FROM documents
		WHERE owner = $1
		ORDER BY created_at
	`, owner)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	out := make([]Document, 0)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

func (db *DB) Create(ctx context.Context, owner, description string, public bool, files map[string]string) (*Document, error) {
	now := time.Now().UTC()
	d, err := scanDocument(db.Pool.QueryRow(ctx, `
		INSERT INTO documents (id, owner, description, public, files, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		RETURNING `+documentColumns,
		newID(), owner, description, public, copyFiles(files), now))
	if err != nil {
		return nil, fmt.Errorf("creating document: %w", err)
	}
	return d, nil
}

func (db *DB) Get(ctx context.Context, owner, id string) (*Document, error) {
	d, err := scanDocument(db.Pool.QueryRow(ctx, `
		SELECT `+documentColumns+`
		FROM documents
		WHERE id = $1 AND owner = $2
	`, id, owner))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("getting document: %w", err)
	}
	return d, nil
}

// Update merges files into the stored JSONB object, so files not named in
// the request keep their content.
func (db *DB) Update(ctx context.Context, owner, id string, files map[string]string) (*Document, error) {
	d, err := scanDocument(db.Pool.QueryRow(ctx, `
		UPDATE documents
		SET files = files || $3::jsonb, updated_at = NOW()
		WHERE id = $1 AND owner = $2
		RETURNING `+documentColumns,
		id, owner, copyFiles(files)))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("updating document: %w", err)
	}
	return d, nil
}
