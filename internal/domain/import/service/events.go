package service

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Event is one element of an import's event stream. The stream is a
// sequence of Progress events followed by exactly one terminal event,
// either Success or Failure, after which the channel is closed.
type Event interface {
	importEvent()
}

// Progress reports how far the import has advanced. Current runs from
// 0 to Total.
type Progress struct {
	Current int
	Total   int
	Message string
}

func (Progress) importEvent() {}

// Success is the happy terminal event.
type Success struct {
	// Imported is the number of transactions persisted.
	Imported int
	// Skipped counts discarded partial transactions, unparseable
	// rows and persistence failures.
	Skipped int
	// TotalAmount is the signed sum of all imported transactions.
	// It is a plain decimal because a statement may mix currencies.
	TotalAmount decimal.Decimal
}

func (Success) importEvent() {}

// Failure is the terminal event for an import that produced nothing.
type Failure struct {
	Message string
	Err     error
}

func (Failure) importEvent() {}

func (f Failure) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("%s: %v", f.Message, f.Err)
	}
	return f.Message
}

// Unwrap exposes the underlying cause to errors.Is and errors.As.
func (f Failure) Unwrap() error { return f.Err }
