// Package csvimport implements a configurable handler for CSV
// statement exports. Columns are addressed positionally through a
// Config, the way most banks' CSV exports are described, with an
// additional header-mapped bulk path for files with recognizable
// column names.
package csvimport

import (
	"encoding/csv"
	"log/slog"
	"strings"

	"github.com/davidbugayov/statement-importer/internal/domain/categorization"
	"github.com/davidbugayov/statement-importer/internal/domain/import/extractor"
	"github.com/davidbugayov/statement-importer/internal/domain/import/normalizer"
	"github.com/davidbugayov/statement-importer/internal/domain/import/statement"
)

// Config describes one bank's CSV export layout.
type Config struct {
	BankName string
	Source   string
	// Delimiter between fields. Zero means sniff it from the data.
	Delimiter rune
	// DateFormat is the Go layout of the date column.
	DateFormat string
	// Positional column indices.
	DateColumn   int
	DescColumn   int
	AmountColumn int
	// CategoryColumn is optional; -1 disables it and the detector
	// assigns categories instead.
	CategoryColumn  int
	DefaultCurrency string
}

// DefaultConfig returns a layout matching common Russian bank CSV
// exports: date;description;amount with a sniffed delimiter.
func DefaultConfig() Config {
	return Config{
		BankName:        "CSV выписка",
		Source:          "CSV",
		DateFormat:      "02.01.2006",
		DateColumn:      0,
		DescColumn:      1,
		AmountColumn:    2,
		CategoryColumn:  -1,
		DefaultCurrency: "RUB",
	}
}

// Header tokens used to recognize a statement-like CSV header row.
var (
	dateHeaderTokens   = []string{"дата", "date", "datum"}
	amountHeaderTokens = []string{"сумма", "amount", "value", "valor"}
)

// Handler implements statement.Handler for CSV exports.
type Handler struct {
	cfg      Config
	detector *categorization.Detector
	logger   *slog.Logger
}

// NewHandler creates a CSV statement handler.
func NewHandler(cfg Config, detector *categorization.Detector, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.DateFormat == "" {
		cfg.DateFormat = "02.01.2006"
	}
	return &Handler{cfg: cfg, detector: detector, logger: logger}
}

// Descriptor describes the configured CSV format.
func (h *Handler) Descriptor() statement.Descriptor {
	return statement.Descriptor{
		BankName:        h.cfg.BankName,
		Source:          h.cfg.Source,
		BankTokens:      dateHeaderTokens,
		TitleTokens:     dateHeaderTokens,
		TableMarkers:    amountHeaderTokens,
		DefaultCurrency: h.cfg.DefaultCurrency,
	}
}

// Supports accepts CSV and plain-text files.
func (h *Handler) Supports(typ extractor.FileType) bool {
	return typ == extractor.FileTypeCSV || typ == extractor.FileTypeText
}

// Validate accepts a file whose first line is a header row naming a
// date column and an amount column, or whose first line already
// parses as a data record.
func (h *Handler) Validate(lines []string) bool {
	if len(lines) == 0 {
		return false
	}

	header := strings.ToLower(lines[0])
	if containsAny(header, dateHeaderTokens) && containsAny(header, amountHeaderTokens) {
		return true
	}

	// Headerless exports: the first record must parse.
	p := h.newRowParser()
	return p.ParseLine(lines[0]) != nil
}

// SkipHeaders returns 1 when the first line is a header row, 0 for
// headerless exports. CSV files carry no multi-line preamble.
func (h *Handler) SkipHeaders(lines []string) (int, error) {
	if len(lines) == 0 {
		return 0, statement.ErrHeaderNotFound
	}
	header := strings.ToLower(lines[0])
	if containsAny(header, dateHeaderTokens) && containsAny(header, amountHeaderTokens) {
		return 1, nil
	}
	return 0, nil
}

// NewParser returns a fresh per-import row parser.
func (h *Handler) NewParser() statement.LineParser {
	return h.newRowParser()
}

func (h *Handler) newRowParser() *rowParser {
	return &rowParser{
		cfg:       h.cfg,
		detector:  h.detector,
		sanitizer: normalizer.NewSanitizer(),
		logger:    h.logger,
	}
}

func containsAny(lower string, tokens []string) bool {
	for _, tok := range tokens {
		if strings.Contains(lower, tok) {
			return true
		}
	}
	return false
}

func splitRecord(line string, delimiter rune) ([]string, error) {
	r := csv.NewReader(strings.NewReader(line))
	r.Comma = delimiter
	r.LazyQuotes = true
	r.TrimLeadingSpace = true
	return r.Read()
}
