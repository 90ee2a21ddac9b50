// Package ozon implements the Ozon Bank statement handler. Ozon PDF
// statements come in two layouts: a single-line table row with date,
// description, signed amount and currency, and a multi-line layout
// where each transaction starts with a date/time/document-number line
// and the amount arrives on its own line.
package ozon

import (
	"log/slog"
	"strings"

	"github.com/davidbugayov/statement-importer/internal/domain/categorization"
	"github.com/davidbugayov/statement-importer/internal/domain/import/extractor"
	"github.com/davidbugayov/statement-importer/internal/domain/import/statement"
)

const (
	// BankName is the display name of the bank.
	BankName = "Ozon Банк"
	// Source is the source label stamped on imported transactions.
	Source = "Ozon"
)

// Handler implements statement.Handler for Ozon Bank.
type Handler struct {
	detector *categorization.Detector
	logger   *slog.Logger
}

// NewHandler creates an Ozon statement handler.
func NewHandler(detector *categorization.Detector, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{detector: detector, logger: logger}
}

// Descriptor describes the Ozon statement format.
func (h *Handler) Descriptor() statement.Descriptor {
	return statement.Descriptor{
		BankName: BankName,
		Source:   Source,
		BankTokens: []string{
			"ozon", "озон",
		},
		TitleTokens: []string{
			"выписка по счёту", "выписка по счету",
			"информация по счёту",
			"история операций",
			"справка о движении средств",
		},
		TableMarkers: []string{
			"дата операции",
			"дата и время",
			"история операций",
		},
		DefaultCurrency: "RUB",
	}
}

// Supports reports the file types Ozon statements arrive in.
func (h *Handler) Supports(typ extractor.FileType) bool {
	return typ == extractor.FileTypePDF || typ == extractor.FileTypeText
}

// Validate requires all three of: a bank indicator, a statement title
// and a transaction table header within the validation window. The
// table header check matches column combinations rather than single
// words so that another bank's "Дата" column cannot satisfy it.
func (h *Handler) Validate(lines []string) bool {
	limit := len(lines)
	if limit > statement.MaxValidationLines {
		limit = statement.MaxValidationLines
	}

	var hasBank, hasTitle, hasMarker bool
	for _, line := range lines[:limit] {
		lower := strings.ToLower(line)
		if !hasBank && (strings.Contains(lower, "ozon") || strings.Contains(lower, "озон")) {
			hasBank = true
		}
		if !hasTitle && hasStatementTitle(lower) {
			hasTitle = true
		}
		if !hasMarker && isTableHeader(lower) {
			hasMarker = true
		}
	}

	valid := hasBank && hasTitle && hasMarker
	h.logger.Debug("ozon format check",
		"bank", hasBank, "title", hasTitle, "marker", hasMarker, "valid", valid)
	return valid
}

// SkipHeaders scans for the transaction table header and returns the
// index of the first data line after it.
func (h *Handler) SkipHeaders(lines []string) (int, error) {
	limit := len(lines)
	if limit > statement.MaxHeaderSkipLines {
		limit = statement.MaxHeaderSkipLines
	}

	for i := 0; i < limit; i++ {
		lower := strings.ToLower(lines[i])
		if isTableHeader(lower) {
			return i + 1, nil
		}
	}
	return 0, statement.ErrHeaderNotFound
}

// NewParser returns a fresh per-import line parser.
func (h *Handler) NewParser() statement.LineParser {
	return newLineParser(h.detector, h.logger)
}

func hasStatementTitle(lower string) bool {
	for _, title := range []string{
		"выписка по счёту", "выписка по счету",
		"информация по счёту",
		"история операций",
		"справка о движении средств",
	} {
		if strings.Contains(lower, title) {
			return true
		}
	}
	return false
}

func isTableHeader(lower string) bool {
	if strings.Contains(lower, "дата операции") &&
		strings.Contains(lower, "документ") &&
		strings.Contains(lower, "сумма") {
		return true
	}
	if strings.Contains(lower, "дата и время") &&
		strings.Contains(lower, "описание операции") &&
		strings.Contains(lower, "сумма") {
		return true
	}
	if strings.Contains(lower, "дата") &&
		strings.Contains(lower, "описание") &&
		strings.Contains(lower, "сумма") {
		return true
	}
	return strings.Contains(lower, "история операций")
}
