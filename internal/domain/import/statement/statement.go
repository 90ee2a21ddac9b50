// Package statement holds the machinery shared by all bank statement
// handlers: format validation, header skipping and the line-parser
// contract. Bank-specific packages build on these pieces.
package statement

import (
	"errors"
	"strings"
)

// Scan bounds. Validation only looks at the head of the document;
// header skipping gives up after a fixed number of lines so a
// malformed file cannot stall the import.
const (
	MaxValidationLines = 30
	MaxHeaderSkipLines = 300
)

// Sentinel errors shared by handlers and the orchestrator.
var (
	ErrHeaderNotFound  = errors.New("statement table header not found")
	ErrInvalidFormat   = errors.New("file does not match statement format")
	ErrEmptyFile       = errors.New("file contains no extractable text")
	ErrNoTransactions  = errors.New("no transactions found in statement")
	ErrUnsupportedFile = errors.New("unsupported file type for this bank")
)

// Descriptor describes what a bank's statement looks like: the tokens
// that identify the bank, the statement title, and the transaction
// table header. All matching is case-insensitive substring matching.
type Descriptor struct {
	BankName        string
	Source          string
	BankTokens      []string
	TitleTokens     []string
	TableMarkers    []string
	DefaultCurrency string
}

// ValidateFormat checks the first MaxValidationLines lines of the
// document for a bank token AND a title token AND a table marker.
// All three must be present; one bank's statement must never pass
// another bank's check on a shared word.
func ValidateFormat(lines []string, desc Descriptor) bool {
	limit := len(lines)
	if limit > MaxValidationLines {
		limit = MaxValidationLines
	}

	var hasBank, hasTitle, hasMarker bool
	for _, line := range lines[:limit] {
		lower := strings.ToLower(line)
		if !hasBank && containsAny(lower, desc.BankTokens) {
			hasBank = true
		}
		if !hasTitle && containsAny(lower, desc.TitleTokens) {
			hasTitle = true
		}
		if !hasMarker && containsAny(lower, desc.TableMarkers) {
			hasMarker = true
		}
		if hasBank && hasTitle && hasMarker {
			return true
		}
	}
	return false
}

// SkipHeaders returns the index of the first line after the
// transaction table marker. It scans at most MaxHeaderSkipLines lines
// and returns ErrHeaderNotFound when no marker appears.
func SkipHeaders(lines []string, desc Descriptor) (int, error) {
	limit := len(lines)
	if limit > MaxHeaderSkipLines {
		limit = MaxHeaderSkipLines
	}

	for i := 0; i < limit; i++ {
		lower := strings.ToLower(lines[i])
		if containsAny(lower, desc.TableMarkers) {
			return i + 1, nil
		}
	}
	return 0, ErrHeaderNotFound
}

func containsAny(lower string, tokens []string) bool {
	for _, tok := range tokens {
		if strings.Contains(lower, strings.ToLower(tok)) {
			return true
		}
	}
	return false
}

// SplitLines breaks extracted text into lines, dropping blank ones.
func SplitLines(text string) []string {
	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		if trimmed := strings.TrimSpace(l); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return lines
}
