// Package transaction defines the imported transaction model and its
// persistence contract. Amounts are signed: expenses are negative,
// income is positive, and the IsExpense flag always agrees with the sign.
package transaction

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/davidbugayov/statement-importer/pkg/money"
)

// Transaction is a single imported statement operation.
type Transaction struct {
	ID        uuid.UUID
	Date      time.Time
	Title     string
	Amount    *money.Money
	IsExpense bool
	Category  string
	Note      string
	Source    string
}

// New builds a transaction from an unsigned amount and a direction flag,
// normalizing the sign so it always agrees with IsExpense.
func New(date time.Time, title string, amount *money.Money, isExpense bool, source string) *Transaction {
	signed := amount.Abs()
	if isExpense {
		signed = signed.Negate()
	}
	return &Transaction{
		ID:        uuid.New(),
		Date:      date,
		Title:     title,
		Amount:    signed,
		IsExpense: isExpense,
		Source:    source,
	}
}

// Validate reports whether the transaction is internally consistent.
func (t *Transaction) Validate() error {
	if t == nil {
		return fmt.Errorf("nil transaction")
	}
	if t.Date.IsZero() {
		return fmt.Errorf("transaction %s: missing date", t.ID)
	}
	if t.Amount.IsZero() && t.Title == "" {
		return fmt.Errorf("transaction %s: empty", t.ID)
	}
	if t.IsExpense && t.Amount.IsPositive() {
		return fmt.Errorf("transaction %s: expense with positive amount", t.ID)
	}
	if !t.IsExpense && t.Amount.IsNegative() {
		return fmt.Errorf("transaction %s: income with negative amount", t.ID)
	}
	return nil
}

// Currency returns the transaction currency code.
func (t *Transaction) Currency() string {
	return t.Amount.Currency()
}
