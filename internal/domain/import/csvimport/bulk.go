package csvimport

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/davidbugayov/statement-importer/internal/domain/import/sniffer"
	"github.com/davidbugayov/statement-importer/internal/domain/transaction"
	"github.com/davidbugayov/statement-importer/pkg/money"
)

// row maps CSV columns by header name. Tags carry the common Russian
// and English spellings so one struct covers most bank exports.
type row struct {
	Date        string `csv:"Дата,Date,Дата операции,Transaction Date"`
	Description string `csv:"Описание,Description,Назначение платежа,Merchant"`
	Amount      string `csv:"Сумма,Amount,Сумма операции,Value"`
	Category    string `csv:"Категория,Category"`
}

// ParseAll parses the whole document through header-name mapping.
// Used when the file carries a recognizable header row; rows that
// fail to parse are skipped and counted, never fatal.
func (h *Handler) ParseAll(text string) ([]*transaction.Transaction, int, error) {
	delim := h.cfg.Delimiter
	if delim == 0 {
		delim = sniffer.DetectDelimiter(strings.Split(text, "\n"))
	}

	gocsv.SetCSVReader(func(in io.Reader) gocsv.CSVReader {
		r := csv.NewReader(in)
		r.Comma = delim
		r.LazyQuotes = true
		r.TrimLeadingSpace = true
		r.FieldsPerRecord = -1
		return r
	})

	var rows []*row
	if err := gocsv.Unmarshal(strings.NewReader(text), &rows); err != nil {
		return nil, 0, fmt.Errorf("csv unmarshal: %w", err)
	}

	p := h.newRowParser()
	txs := make([]*transaction.Transaction, 0, len(rows))
	skipped := 0
	for _, r := range rows {
		tx, ok := p.fromRow(r)
		if !ok {
			skipped++
			continue
		}
		txs = append(txs, tx)
	}
	return txs, skipped, nil
}

func (p *rowParser) fromRow(r *row) (*transaction.Transaction, bool) {
	date, ok := p.parseDate(r.Date)
	if !ok {
		p.logf("unparseable date", "value", r.Date)
		return nil, false
	}

	raw := strings.TrimSpace(r.Amount)
	amount, err := money.NewFromString(raw, p.currency())
	if err != nil {
		p.logf("unparseable amount", "value", raw, "error", err)
		return nil, false
	}

	desc := strings.TrimSpace(r.Description)
	title := p.sanitizer.Clean(desc)
	if title == "" {
		title = "Операция"
	}

	tx := transaction.New(date, title, amount, strings.HasPrefix(raw, "-") || amount.IsNegative(), p.cfg.Source)
	if cat := strings.TrimSpace(r.Category); cat != "" {
		tx.Category = cat
	} else if p.detector != nil {
		tx.Category = p.detector.Detect(desc)
	}
	return tx, true
}
