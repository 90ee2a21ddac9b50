package csvimport

import (
	"log/slog"
	"strings"
	"time"

	"github.com/davidbugayov/statement-importer/internal/domain/categorization"
	"github.com/davidbugayov/statement-importer/internal/domain/import/normalizer"
	"github.com/davidbugayov/statement-importer/internal/domain/import/sniffer"
	"github.com/davidbugayov/statement-importer/internal/domain/transaction"
	"github.com/davidbugayov/statement-importer/pkg/money"
)

// Fallback date layouts tried after the configured one.
var fallbackDateFormats = []string{
	"02.01.2006",
	"2006-01-02",
	"02/01/2006",
	"02.01.2006 15:04:05",
	"2006-01-02 15:04:05",
}

// rowParser parses one CSV record per line using positional columns.
// Records that fail to parse are counted as skipped, malformed rows
// never abort the import.
type rowParser struct {
	cfg       Config
	detector  *categorization.Detector
	sanitizer *normalizer.Sanitizer
	logger    *slog.Logger
	delim     rune // resolved on the first record
	skipped   int
}

func (p *rowParser) ParseLine(line string) *transaction.Transaction {
	if strings.TrimSpace(line) == "" {
		return nil
	}

	fields, err := splitRecord(line, p.delimiter(line))
	if err != nil {
		p.skipped++
		p.logf("malformed csv record", "error", err)
		return nil
	}

	maxCol := p.cfg.DateColumn
	if p.cfg.DescColumn > maxCol {
		maxCol = p.cfg.DescColumn
	}
	if p.cfg.AmountColumn > maxCol {
		maxCol = p.cfg.AmountColumn
	}
	if len(fields) <= maxCol {
		p.skipped++
		p.logf("csv record has too few columns", "columns", len(fields))
		return nil
	}

	date, ok := p.parseDate(fields[p.cfg.DateColumn])
	if !ok {
		p.skipped++
		p.logf("unparseable date", "value", fields[p.cfg.DateColumn])
		return nil
	}

	raw := strings.TrimSpace(fields[p.cfg.AmountColumn])
	amount, err := money.NewFromString(raw, p.currency())
	if err != nil {
		p.skipped++
		p.logf("unparseable amount", "value", raw, "error", err)
		return nil
	}

	isExpense := strings.HasPrefix(raw, "-") || amount.IsNegative()
	desc := strings.TrimSpace(fields[p.cfg.DescColumn])
	title := p.sanitizer.Clean(desc)
	if title == "" {
		title = "Операция"
	}

	tx := transaction.New(date, title, amount, isExpense, p.cfg.Source)
	tx.Category = p.category(fields, desc)
	return tx
}

// Flush is a no-op: CSV rows never span lines.
func (p *rowParser) Flush() *transaction.Transaction { return nil }

func (p *rowParser) Skipped() int { return p.skipped }

func (p *rowParser) parseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(p.cfg.DateFormat, value); err == nil {
		return t, true
	}
	for _, layout := range fallbackDateFormats {
		if layout == p.cfg.DateFormat {
			continue
		}
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func (p *rowParser) category(fields []string, desc string) string {
	if p.cfg.CategoryColumn >= 0 && p.cfg.CategoryColumn < len(fields) {
		if cat := strings.TrimSpace(fields[p.cfg.CategoryColumn]); cat != "" {
			return cat
		}
	}
	if p.detector != nil {
		return p.detector.Detect(desc)
	}
	return categorization.CategoryUncategorized
}

// delimiter resolves the field delimiter once, sniffing it from the
// first record when the config leaves it unset.
func (p *rowParser) delimiter(line string) rune {
	if p.delim == 0 {
		if p.cfg.Delimiter != 0 {
			p.delim = p.cfg.Delimiter
		} else {
			p.delim = sniffer.DetectDelimiter([]string{line})
		}
	}
	return p.delim
}

func (p *rowParser) currency() string {
	if p.cfg.DefaultCurrency != "" {
		return p.cfg.DefaultCurrency
	}
	return money.RUB
}

func (p *rowParser) logf(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}
