package ozon

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/davidbugayov/statement-importer/internal/domain/categorization"
	"github.com/davidbugayov/statement-importer/internal/domain/import/normalizer"
	"github.com/davidbugayov/statement-importer/internal/domain/import/statement"
	"github.com/davidbugayov/statement-importer/internal/domain/transaction"
	"github.com/davidbugayov/statement-importer/pkg/money"
)

const dateTimeLayout = "02.01.2006 15:04:05"

// Compiled once; line parsers share them, they carry no match state.
var (
	// Single-line table row: date, optional time, description, signed
	// amount, currency, optional trailing balance columns.
	combinedLineRe = regexp.MustCompile(
		`^(\d{2}\.\d{2}\.\d{4})\s+` + // 1: date
			`((\d{2}:\d{2}:\d{2})|(\d{2}:\d{2})|\s*)\s*` + // 2-4: time, optional
			`(.+?)\s+` + // 5: description, lazy
			`([+\-])?\s*([\d\s.,]+\d)\s+` + // 6: sign, 7: amount
			`([A-ZА-Я]{3})` + // 8: currency
			`(?:\s+[+\-]?\s*[\d\s.,]+\d\s+[A-ZА-Я]{3})?.*$`) // trailing balance, ignored

	// Multi-line layout: a transaction starts with date, time and
	// document number on a line of their own.
	startLineRe = regexp.MustCompile(
		`^(\d{2}\.\d{2}\.\d{4})\s+(\d{2}:\d{2}:\d{2})\s+(\d+)\s*$`)

	// Amount line of the multi-line layout. A missing sign means income.
	amountLineRe = regexp.MustCompile(
		`^([+\-])?\s*(\d[\d\s.,]*)\s*$`)

	skipPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^Итого:`),
		regexp.MustCompile(`(?i)^Перенесено со страницы`),
		regexp.MustCompile(`(?i)^Продолжение на странице`),
		regexp.MustCompile(`(?i)^Обороты по сч[её]ту за период`),
		regexp.MustCompile(`(?i)^Входящий остаток на начало периода`),
		regexp.MustCompile(`(?i)^Исходящий остаток на конец периода`),
		regexp.MustCompile(`(?i)^Страница \d+ из \d+`),
		regexp.MustCompile(`(?i)^Сформировано .* \d{2}:\d{2}:\d{2}`),
		regexp.MustCompile(`(?i)^Подпись Банка`),
		regexp.MustCompile(`(?i)^Выписка по сч[её]ту №`),
		regexp.MustCompile(`(?i)^Период: с .* по `),
		regexp.MustCompile(`(?i)^ДАТА И ВРЕМЯ\s+ОПИСАНИЕ ОПЕРАЦИИ\s+СУММА`),
	}
)

// lineParser is the per-import state machine. One instance serves one
// import invocation; the open accumulator is the only mutable state.
type lineParser struct {
	detector  *categorization.Detector
	sanitizer *normalizer.Sanitizer
	logger    *slog.Logger
	acc       *statement.Accumulator
	skipped   int
}

func newLineParser(detector *categorization.Detector, logger *slog.Logger) *lineParser {
	return &lineParser{
		detector:  detector,
		sanitizer: normalizer.NewSanitizer(),
		logger:    logger,
	}
}

// ParseLine consumes one statement line. A non-nil result is a
// completed transaction; noise lines and partial lines return nil.
func (p *lineParser) ParseLine(line string) *transaction.Transaction {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || p.shouldSkip(trimmed) {
		return nil
	}

	if m := combinedLineRe.FindStringSubmatch(trimmed); m != nil {
		return p.parseCombined(m, trimmed)
	}

	if m := startLineRe.FindStringSubmatch(trimmed); m != nil {
		return p.startTransaction(m)
	}

	if p.acc != nil {
		if m := amountLineRe.FindStringSubmatch(trimmed); m != nil {
			return p.completeWithAmount(m)
		}
		if !p.acc.AppendDescription(trimmed) {
			p.logger.Debug("description budget exceeded", "line", trimmed)
		}
		return nil
	}

	p.logger.Debug("line matches no transaction pattern", "line", trimmed)
	return nil
}

// Flush finalizes a trailing open transaction at end of input.
func (p *lineParser) Flush() *transaction.Transaction {
	tx := p.finalize()
	p.acc = nil
	return tx
}

// Skipped reports how many partial transactions were discarded.
func (p *lineParser) Skipped() int {
	return p.skipped
}

// parseCombined builds a transaction from a single-line table row. A
// combined row is authoritative: any open multi-line accumulator is a
// parsing artifact at this point and is discarded as skipped.
func (p *lineParser) parseCombined(m []string, line string) *transaction.Transaction {
	p.discardOpen("combined line interrupts open transaction")

	dateStr, timeStr := m[1], m[3]
	if timeStr == "" {
		if m[4] != "" {
			timeStr = m[4] + ":00"
		} else {
			timeStr = "00:00:00"
		}
	}
	when, err := time.Parse(dateTimeLayout, dateStr+" "+timeStr)
	if err != nil {
		p.logger.Warn("unparseable date on combined line", "line", line, "error", err)
		return nil
	}

	amount, err := money.NewFromString(m[7], normalizeCurrency(m[8], p.logger))
	if err != nil {
		p.logger.Warn("unparseable amount on combined line", "line", line, "error", err)
		return nil
	}

	isExpense := m[6] == "-"
	desc := strings.TrimSpace(m[5])

	// Categorization reads the raw description; the cleaned form is
	// only for display.
	tx := transaction.New(when, p.sanitizer.Clean(desc), amount, isExpense, Source)
	tx.Category = p.detector.Detect(desc)
	return tx
}

// startTransaction opens a new accumulator for the multi-line layout
// and returns the previous transaction if one was completed.
func (p *lineParser) startTransaction(m []string) *transaction.Transaction {
	prev := p.finalize()

	when, err := time.Parse(dateTimeLayout, m[1]+" "+m[2])
	if err != nil {
		p.logger.Warn("unparseable start line date", "date", m[1], "time", m[2], "error", err)
		p.acc = nil
		return prev
	}

	p.acc = statement.NewAccumulator(when, m[3], money.RUB)
	return prev
}

// completeWithAmount records the amount line and closes the open
// transaction. An unparseable amount keeps the accumulator open; a
// later line may still complete it.
func (p *lineParser) completeWithAmount(m []string) *transaction.Transaction {
	raw := m[2]
	if _, err := money.NewFromString(raw, money.RUB); err != nil {
		p.logger.Warn("unparseable amount line", "amount", raw, "error", err)
		return nil
	}

	p.acc.SetAmount(raw, m[1] == "-")
	tx := p.finalize()
	p.acc = nil
	return tx
}

// finalize converts the open accumulator into a transaction, or
// counts it skipped when required fields never arrived.
func (p *lineParser) finalize() *transaction.Transaction {
	if p.acc == nil {
		return nil
	}
	if !p.acc.Finalizable() {
		p.discardOpen("incomplete transaction discarded")
		return nil
	}

	amount, err := money.NewFromString(p.acc.Amount, p.acc.Currency)
	if err != nil {
		p.logger.Warn("accumulated amount failed to parse", "amount", p.acc.Amount, "error", err)
		p.discardOpen("unparseable accumulated amount")
		return nil
	}

	desc := p.acc.Description()
	title := p.sanitizer.Clean(desc)
	if title == "" {
		title = fmt.Sprintf("Операция №%s", p.acc.DocID)
	}

	tx := transaction.New(p.acc.Date, title, amount, p.acc.IsExpense, Source)
	tx.Category = p.detector.Detect(desc)
	tx.Note = fmt.Sprintf("Документ №%s", p.acc.DocID)
	p.acc = nil
	return tx
}

func (p *lineParser) discardOpen(reason string) {
	if p.acc == nil {
		return
	}
	p.logger.Debug(reason, "document", p.acc.DocID)
	p.skipped++
	p.acc = nil
}

func (p *lineParser) shouldSkip(trimmed string) bool {
	for _, re := range skipPatterns {
		if re.MatchString(trimmed) {
			return true
		}
	}

	lower := strings.ToLower(trimmed)
	// Repeated table header rows inside page breaks.
	if strings.Contains(lower, "описание операции") &&
		strings.Contains(lower, "сумма") &&
		strings.Contains(lower, "баланс") {
		return true
	}
	if strings.Contains(lower, "дата операции") &&
		strings.Contains(lower, "документ") &&
		strings.Contains(lower, "назначение") {
		return true
	}
	return false
}

// normalizeCurrency maps statement currency spellings to ISO codes.
// Unknown currencies degrade to RUB rather than fail the transaction.
func normalizeCurrency(raw string, logger *slog.Logger) string {
	switch strings.ToUpper(raw) {
	case "RUB", "РУБ":
		return money.RUB
	case "USD":
		return money.USD
	case "EUR":
		return money.EUR
	case "KZT":
		return money.KZT
	case "BYN":
		return money.BYN
	default:
		logger.Warn("unknown statement currency, assuming RUB", "currency", raw)
		return money.RUB
	}
}
