package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/marcboeker/go-duckdb/v2"
)

// DuckDBStore implements Store on an embedded DuckDB database. The dbPath
// can be ":memory:" or a file path for persistent storage.
type DuckDBStore struct {
	db     *sql.DB
	dbPath string
	logger *slog.Logger
}

// NewDuckDBStore opens (but does not initialize) a DuckDB-backed store.
func NewDuckDBStore(dbPath string, logger *slog.Logger) (*DuckDBStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("duckdb", dbPath)
	if err != nil {
		return nil, NewStorageError("open", "", fmt.Errorf("failed to open DuckDB database: %w", err))
	}

	// Single writer pattern as recommended for DuckDB.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	return &DuckDBStore{db: db, dbPath: dbPath, logger: logger}, nil
}

// Initialize implements Store; it creates the schema when missing.
func (d *DuckDBStore) Initialize(ctx context.Context) error {
	d.logger.Info("initializing DuckDB store", "db_path", d.dbPath)

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS addresses (
			address    VARCHAR PRIMARY KEY,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS check_history (
			request_id   VARCHAR PRIMARY KEY,
			address      VARCHAR NOT NULL,
			record_count INTEGER NOT NULL,
			total_amount DOUBLE NOT NULL,
			unit_price   DOUBLE NOT NULL,
			total_value  DOUBLE NOT NULL,
			checked_at   TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_check_history_address
			ON check_history (address, checked_at)`,
	}

	for _, stmt := range stmts {
		if _, err := d.db.ExecContext(ctx, stmt); err != nil {
			return NewStorageError("initialize", "", fmt.Errorf("schema creation failed: %w", err))
		}
	}
	return nil
}

// Save implements AddressStore.
func (d *DuckDBStore) Save(ctx context.Context, address string) error {
	if address == "" {
		return NewStorageError("save", "addresses", fmt.Errorf("empty address"))
	}

	_, err := d.db.ExecContext(ctx,
		`INSERT INTO addresses (address, created_at)
		 VALUES (?, now())
		 ON CONFLICT (address) DO NOTHING`, address)
	if err != nil {
		return NewStorageError("save", "addresses", err)
	}
	return nil
}

// List implements AddressStore.
func (d *DuckDBStore) List(ctx context.Context) ([]SavedAddress, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT address, created_at FROM addresses ORDER BY created_at, address`)
	if err != nil {
		return nil, NewStorageError("list", "addresses", err)
	}
	defer rows.Close()

	var out []SavedAddress
	for rows.Next() {
		var a SavedAddress
		if err := rows.Scan(&a.Address, &a.CreatedAt); err != nil {
			return nil, NewStorageError("list", "addresses", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, NewStorageError("list", "addresses", err)
	}
	return out, nil
}

// Record implements HistoryStore.
func (d *DuckDBStore) Record(ctx context.Context, snap CheckSnapshot) error {
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO check_history
			(request_id, address, record_count, total_amount, unit_price, total_value, checked_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		snap.RequestID, snap.Address, snap.RecordCount,
		snap.TotalAmount, snap.UnitPrice, snap.TotalValue, snap.CheckedAt)
	if err != nil {
		return NewStorageError("record", "check_history", err)
	}
	return nil
}

// History implements HistoryStore.
func (d *DuckDBStore) History(ctx context.Context, address string) ([]CheckSnapshot, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT request_id, address, record_count, total_amount, unit_price, total_value, checked_at
		 FROM check_history
		 WHERE address = ?
		 ORDER BY checked_at DESC`, address)
	if err != nil {
		return nil, NewStorageError("history", "check_history", err)
	}
	defer rows.Close()

	var out []CheckSnapshot
	for rows.Next() {
		var s CheckSnapshot
		if err := rows.Scan(&s.RequestID, &s.Address, &s.RecordCount,
			&s.TotalAmount, &s.UnitPrice, &s.TotalValue, &s.CheckedAt); err != nil {
			return nil, NewStorageError("history", "check_history", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, NewStorageError("history", "check_history", err)
	}
	return out, nil
}

// Close implements Store.
func (d *DuckDBStore) Close() error {
	return d.db.Close()
}
