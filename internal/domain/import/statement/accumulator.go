package statement

import (
	"strings"
	"time"
)

// MaxDescriptionLines bounds how many continuation lines an open
// transaction may absorb before further text is ignored.
const MaxDescriptionLines = 10

// Accumulator collects the pieces of a transaction that is split
// across several lines. It is finalizable once the date, document
// number and amount have all been seen.
type Accumulator struct {
	Date      time.Time
	DocID     string
	Amount    string
	IsExpense bool
	Currency  string

	desc      strings.Builder
	descLines int
	hasAmount bool
}

// NewAccumulator starts an accumulator for the transaction-start line.
func NewAccumulator(date time.Time, docID, currency string) *Accumulator {
	return &Accumulator{Date: date, DocID: docID, Currency: currency}
}

// SetAmount records the parsed amount string and direction.
func (a *Accumulator) SetAmount(amount string, isExpense bool) {
	a.Amount = amount
	a.IsExpense = isExpense
	a.hasAmount = true
}

// AppendDescription adds a continuation line, up to the budget.
// Returns false when the line was dropped.
func (a *Accumulator) AppendDescription(line string) bool {
	if a.descLines >= MaxDescriptionLines {
		return false
	}
	if a.desc.Len() > 0 {
		a.desc.WriteByte(' ')
	}
	a.desc.WriteString(strings.TrimSpace(line))
	a.descLines++
	return true
}

// Description returns the accumulated description text.
func (a *Accumulator) Description() string {
	return a.desc.String()
}

// Finalizable reports whether every required field has been seen.
func (a *Accumulator) Finalizable() bool {
	return a != nil && !a.Date.IsZero() && a.DocID != "" && a.hasAmount
}
