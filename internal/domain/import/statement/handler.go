package statement

import (
	"github.com/davidbugayov/statement-importer/internal/domain/import/extractor"
	"github.com/davidbugayov/statement-importer/internal/domain/transaction"
)

// Handler is a bank statement strategy. The orchestrator only ever
// talks to this interface; adding a bank means adding a Handler and
// registering it.
type Handler interface {
	// Descriptor describes the bank's statement format.
	Descriptor() Descriptor
	// Supports reports whether this handler reads the given file type.
	Supports(typ extractor.FileType) bool
	// Validate checks whether the document head looks like this
	// bank's statement.
	Validate(lines []string) bool
	// SkipHeaders finds the first transaction line.
	SkipHeaders(lines []string) (int, error)
	// NewParser returns a fresh line parser. One parser serves one
	// import; parsers carry per-import accumulator state and must
	// never be shared between invocations.
	NewParser() LineParser
}

// LineParser is the per-import transaction line state machine. Lines
// are fed one at a time; a non-nil return is a completed transaction.
type LineParser interface {
	// ParseLine consumes one line and returns a transaction when one
	// is completed by this line, or nil.
	ParseLine(line string) *transaction.Transaction
	// Flush finalizes a trailing open accumulator at end of input.
	Flush() *transaction.Transaction
	// Skipped reports how many partially-parsed transactions were
	// discarded as unrecoverable.
	Skipped() int
}

// BulkParser is an optional capability for row-oriented formats where
// parsing the whole document at once is more natural than a line
// state machine.
type BulkParser interface {
	ParseAll(text string) ([]*transaction.Transaction, int, error)
}
