package storage

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

// MemoryStore is a thread-safe in-memory implementation of Store.
type MemoryStore struct {
	mu sync.RWMutex

	// addresses keyed by address for idempotent saves; order reconstructed
	// from CreatedAt on List.
	addresses map[string]SavedAddress

	// history keyed by address, append order.
	history map[string][]CheckSnapshot

	closed bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		addresses: make(map[string]SavedAddress),
		history:   make(map[string][]CheckSnapshot),
	}
}

// Initialize implements Store; the memory backend needs no setup.
func (m *MemoryStore) Initialize(ctx context.Context) error {
	return ctx.Err()
}

// Save implements AddressStore.
func (m *MemoryStore) Save(ctx context.Context, address string) error {
	if err := ctx.Err(); err != nil {
		return NewStorageError("save", "addresses", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return NewStorageError("save", "addresses", errors.New("store is closed"))
	}
	if address == "" {
		return NewStorageError("save", "addresses", errors.New("empty address"))
	}
	if _, exists := m.addresses[address]; exists {
		return nil
	}
	m.addresses[address] = SavedAddress{Address: address, CreatedAt: time.Now().UTC()}
	return nil
}

// List implements AddressStore.
func (m *MemoryStore) List(ctx context.Context) ([]SavedAddress, error) {
	if err := ctx.Err(); err != nil {
		return nil, NewStorageError("list", "addresses", err)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, NewStorageError("list", "addresses", errors.New("store is closed"))
	}

	out := make([]SavedAddress, 0, len(m.addresses))
	for _, a := range m.addresses {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Address < out[j].Address
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// Record implements HistoryStore.
func (m *MemoryStore) Record(ctx context.Context, snap CheckSnapshot) error {
	if err := ctx.Err(); err != nil {
		return NewStorageError("record", "check_history", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return NewStorageError("record", "check_history", errors.New("store is closed"))
	}
	m.history[snap.Address] = append(m.history[snap.Address], snap)
	return nil
}

// History implements HistoryStore.
func (m *MemoryStore) History(ctx context.Context, address string) ([]CheckSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, NewStorageError("history", "check_history", err)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, NewStorageError("history", "check_history", errors.New("store is closed"))
	}

	snaps := m.history[address]
	out := make([]CheckSnapshot, len(snaps))
	copy(out, snaps)
	// newest first
	sort.SliceStable(out, func(i, j int) bool { return out[i].CheckedAt.After(out[j].CheckedAt) })
	return out, nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
