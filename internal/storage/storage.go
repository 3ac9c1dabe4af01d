// Package storage persists the user's saved address book and the history
// of schedule checks. Two backends implement the interfaces: an in-memory
// store for tests and ephemeral runs, and a DuckDB store for persistence.
package storage

import (
	"context"
	"fmt"
	"time"
)

// SavedAddress is one entry of the address book.
type SavedAddress struct {
	Address   string    `json:"address" db:"address"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// CheckSnapshot records the aggregate outcome of one schedule check.
type CheckSnapshot struct {
	RequestID   string    `json:"request_id" db:"request_id"`
	Address     string    `json:"address" db:"address"`
	RecordCount int       `json:"record_count" db:"record_count"`
	TotalAmount float64   `json:"total_amount" db:"total_amount"`
	UnitPrice   float64   `json:"unit_price" db:"unit_price"`
	TotalValue  float64   `json:"total_value" db:"total_value"`
	CheckedAt   time.Time `json:"checked_at" db:"checked_at"`
}

// AddressStore manages the saved address book.
type AddressStore interface {
	// Save adds an address to the book. Saving an address that is already
	// present is a no-op, not an error.
	Save(ctx context.Context, address string) error

	// List returns all saved addresses, oldest first.
	List(ctx context.Context) ([]SavedAddress, error)
}

// HistoryStore keeps check snapshots per address.
type HistoryStore interface {
	// Record appends one snapshot.
	Record(ctx context.Context, snap CheckSnapshot) error

	// History returns the snapshots for an address, newest first.
	History(ctx context.Context, address string) ([]CheckSnapshot, error)
}

// Store combines both persistence concerns plus lifecycle management.
type Store interface {
	AddressStore
	HistoryStore

	// Initialize prepares the backend (schema creation for databases).
	Initialize(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}

// StorageError wraps a backend failure with operation context.
type StorageError struct {
	Operation string
	Table     string
	Err       error
}

// Error implements the error interface for StorageError.
func (e *StorageError) Error() string {
	if e.Table != "" {
		return fmt.Sprintf("storage operation %s on %s failed: %v", e.Operation, e.Table, e.Err)
	}
	return fmt.Sprintf("storage operation %s failed: %v", e.Operation, e.Err)
}

// Unwrap returns the underlying error.
func (e *StorageError) Unwrap() error {
	return e.Err
}

// NewStorageError creates a StorageError with operation context.
func NewStorageError(operation, table string, err error) *StorageError {
	return &StorageError{Operation: operation, Table: table, Err: err}
}
