package transaction

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the subset of pgxpool.Pool the repository needs. It is satisfied
// by *pgxpool.Pool and by pgxmock pools in tests.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository implements Repository using PostgreSQL.
// Amounts are stored as minor units alongside the currency code.
type PostgresRepository struct {
	db DB
}

// NewPostgresRepository creates a PostgreSQL-backed repository.
func NewPostgresRepository(db DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// AddTransaction inserts a single transaction.
func (r *PostgresRepository) AddTransaction(ctx context.Context, tx *Transaction) (uuid.UUID, error) {
	if err := tx.Validate(); err != nil {
		return uuid.Nil, err
	}

	query := `
		INSERT INTO transactions (id, occurred_at, title, amount_minor, currency, is_expense, category, note, source)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`

	var id uuid.UUID
	err := r.db.QueryRow(ctx, query,
		tx.ID, tx.Date, tx.Title, tx.Amount.Amount(), tx.Currency(),
		tx.IsExpense, tx.Category, tx.Note, tx.Source,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to insert transaction: %w", err)
	}
	return id, nil
}

// AddBatch inserts transactions one by one, skipping failures, and
// returns how many were saved. A cancelled context stops the batch.
func (r *PostgresRepository) AddBatch(ctx context.Context, txs []*Transaction) (int, error) {
	saved := 0
	for _, tx := range txs {
		if err := ctx.Err(); err != nil {
			return saved, err
		}
		if _, err := r.AddTransaction(ctx, tx); err != nil {
			continue
		}
		saved++
	}
	return saved, nil
}
