package transaction

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Repository persists imported transactions. Implementations are
// opaque to the import pipeline; a per-transaction failure must be
// returned as an error, never panic.
type Repository interface {
	AddTransaction(ctx context.Context, tx *Transaction) (uuid.UUID, error)
	AddBatch(ctx context.Context, txs []*Transaction) (int, error)
}

// MemoryRepository is an in-memory Repository used for local runs and tests.
type MemoryRepository struct {
	mu  sync.RWMutex
	txs map[uuid.UUID]*Transaction
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{txs: make(map[uuid.UUID]*Transaction)}
}

// AddTransaction stores a single transaction.
func (r *MemoryRepository) AddTransaction(ctx context.Context, tx *Transaction) (uuid.UUID, error) {
	if err := ctx.Err(); err != nil {
		return uuid.Nil, err
	}
	if err := tx.Validate(); err != nil {
		return uuid.Nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.txs[tx.ID] = tx
	return tx.ID, nil
}

// AddBatch stores transactions one by one and returns how many succeeded.
func (r *MemoryRepository) AddBatch(ctx context.Context, txs []*Transaction) (int, error) {
	saved := 0
	for _, tx := range txs {
		if _, err := r.AddTransaction(ctx, tx); err != nil {
			if ctx.Err() != nil {
				return saved, err
			}
			continue
		}
		saved++
	}
	return saved, nil
}

// Len returns the number of stored transactions.
func (r *MemoryRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.txs)
}

// All returns a snapshot of the stored transactions.
func (r *MemoryRepository) All() []*Transaction {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Transaction, 0, len(r.txs))
	for _, tx := range r.txs {
		out = append(out, tx)
	}
	return out
}
