package normalizer

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/davidbugayov/statement-importer/internal/domain/categorization"
)

// DB is the subset of pgxpool.Pool the override store uses. pgxmock
// satisfies it too.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// OverrideStore persists user-defined keyword-to-category rules.
// Overrides outrank the built-in rule table: a user who files their
// gym under health wins over whatever the defaults say.
type OverrideStore struct {
	db DB
}

// NewOverrideStore creates a store backed by Postgres.
func NewOverrideStore(db DB) *OverrideStore {
	return &OverrideStore{db: db}
}

// Upsert saves one override, replacing any previous category for the
// keyword.
func (s *OverrideStore) Upsert(ctx context.Context, keyword, category string) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO category_overrides (keyword, category, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (keyword) DO UPDATE SET category = $2, updated_at = NOW()`,
		keyword, category)
	if err != nil {
		return fmt.Errorf("upsert category override: %w", err)
	}
	return nil
}

// Delete removes an override.
func (s *OverrideStore) Delete(ctx context.Context, keyword string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM category_overrides WHERE keyword = $1`, keyword)
	if err != nil {
		return fmt.Errorf("delete category override: %w", err)
	}
	return nil
}

// LoadRules reads all overrides as categorization rules, newest
// first. Callers prepend them to the built-in table so they win on
// priority.
func (s *OverrideStore) LoadRules(ctx context.Context) ([]categorization.Rule, error) {
	rows, err := s.db.Query(ctx, `
		SELECT keyword, category
		FROM category_overrides
		ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("load category overrides: %w", err)
	}
	defer rows.Close()

	var rules []categorization.Rule
	for rows.Next() {
		var keyword, category string
		if err := rows.Scan(&keyword, &category); err != nil {
			return nil, fmt.Errorf("scan category override: %w", err)
		}
		rules = append(rules, categorization.Rule{
			Keywords: []string{keyword},
			Category: category,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read category overrides: %w", err)
	}
	return rules, nil
}
