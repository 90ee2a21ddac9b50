// Package service orchestrates a statement import end to end: text
// extraction, format detection, header skipping, line parsing,
// categorized persistence. Progress and the final outcome are
// delivered as an event stream so callers can drive a UI off it.
package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/davidbugayov/statement-importer/internal/domain/import/extractor"
	"github.com/davidbugayov/statement-importer/internal/domain/import/registry"
	"github.com/davidbugayov/statement-importer/internal/domain/import/statement"
	"github.com/davidbugayov/statement-importer/internal/domain/transaction"
)

const (
	progressTotal = 100

	// Progress checkpoints per pipeline stage. Parsing covers the
	// widest band because it dominates wall time on large files.
	progressExtracted = 5
	progressValidated = 10
	progressParseFrom = 20
	progressParseTo   = 70
	progressPersistTo = 95

	// At most this many progress events are emitted during the line
	// loop regardless of file size.
	maxParseProgressEvents = 1000
)

// DefaultBatchSize is the persistence batch size used when the
// configured one is not positive.
const DefaultBatchSize = 50

// Service runs statement imports.
type Service struct {
	registry  *registry.Registry
	repo      transaction.Repository
	logger    *slog.Logger
	batchSize int
}

// New creates an import service.
func New(reg *registry.Registry, repo transaction.Repository, logger *slog.Logger, batchSize int) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Service{registry: reg, repo: repo, logger: logger, batchSize: batchSize}
}

// Import runs the pipeline for one statement file. It returns
// immediately; events arrive on the returned channel, ending with
// exactly one Success or Failure, after which the channel is closed.
// Cancelling the context stops the import at the next checkpoint.
func (s *Service) Import(ctx context.Context, src extractor.Source) <-chan Event {
	events := make(chan Event, 1)
	go func() {
		defer close(events)
		s.run(ctx, src, events)
	}()
	return events
}

func (s *Service) run(ctx context.Context, src extractor.Source, events chan<- Event) {
	emit := func(e Event) {
		select {
		case events <- e:
		case <-ctx.Done():
		}
	}
	fail := func(msg string, err error) {
		s.logger.Error("import failed", "path", src.Path, "error", err)
		emit(Failure{Message: msg, Err: err})
	}

	emit(Progress{Current: 0, Total: progressTotal, Message: "extracting text"})

	text, err := extractor.Extract(ctx, src)
	if err != nil {
		fail("text extraction failed", err)
		return
	}
	if strings.TrimSpace(text) == "" {
		fail("empty statement", statement.ErrEmptyFile)
		return
	}

	lines := statement.SplitLines(text)
	if len(lines) == 0 {
		fail("empty statement", statement.ErrEmptyFile)
		return
	}
	emit(Progress{Current: progressExtracted, Total: progressTotal, Message: "detecting format"})

	handler, err := s.registry.Detect(src.Type, lines)
	if err != nil {
		fail("format not recognized", statement.ErrInvalidFormat)
		return
	}
	desc := handler.Descriptor()
	s.logger.Info("statement format detected", "bank", desc.BankName, "path", src.Path)
	emit(Progress{Current: progressValidated, Total: progressTotal, Message: "skipping headers"})

	start, err := handler.SkipHeaders(lines)
	if err != nil {
		fail("transaction table not found", err)
		return
	}
	emit(Progress{Current: progressParseFrom, Total: progressTotal, Message: "parsing transactions"})

	txs, skipped, err := s.parse(ctx, handler, lines, start, emit)
	if err != nil {
		fail("import cancelled", err)
		return
	}
	if len(txs) == 0 {
		fail("no transactions parsed", statement.ErrNoTransactions)
		return
	}

	imported, persistSkipped, err := s.persist(ctx, txs, emit)
	if err != nil {
		fail("import cancelled", err)
		return
	}
	skipped += persistSkipped

	total := decimal.Zero
	for _, tx := range txs {
		total = total.Add(tx.Amount.ToDecimal())
	}

	s.logger.Info("import finished",
		"bank", desc.BankName,
		"imported", imported,
		"skipped", skipped,
		"total", total.String())

	emit(Progress{Current: progressTotal, Total: progressTotal, Message: "done"})
	emit(Success{Imported: imported, Skipped: skipped, TotalAmount: total})
}

// parse feeds data lines through the handler's parser. Handlers that
// can parse the whole document at once take the bulk path; the header
// row is kept because bulk parsers map columns by name.
func (s *Service) parse(ctx context.Context, handler statement.Handler, lines []string, start int, emit func(Event)) ([]*transaction.Transaction, int, error) {
	if bp, ok := handler.(statement.BulkParser); ok && start > 0 {
		text := strings.Join(lines[start-1:], "\n")
		txs, skipped, err := bp.ParseAll(text)
		if err == nil {
			emit(Progress{Current: progressParseTo, Total: progressTotal, Message: "parsing transactions"})
			return txs, skipped, nil
		}
		s.logger.Warn("bulk parse failed, falling back to line parser", "error", err)
	}

	data := lines[start:]
	step := 10
	if len(data)/step > maxParseProgressEvents {
		step = len(data) / maxParseProgressEvents
	}

	parser := handler.NewParser()
	var txs []*transaction.Transaction
	for i, line := range data {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}
		if tx := parser.ParseLine(line); tx != nil {
			txs = append(txs, tx)
		}
		if i > 0 && i%step == 0 {
			cur := progressParseFrom + (progressParseTo-progressParseFrom)*i/len(data)
			emit(Progress{Current: cur, Total: progressTotal, Message: "parsing transactions"})
		}
	}
	if tx := parser.Flush(); tx != nil {
		txs = append(txs, tx)
	}
	return txs, parser.Skipped(), nil
}

// persist writes transactions in batches. A transaction the
// repository refuses is counted as skipped, never fatal; only
// cancellation aborts.
func (s *Service) persist(ctx context.Context, txs []*transaction.Transaction, emit func(Event)) (int, int, error) {
	emit(Progress{Current: progressParseTo, Total: progressTotal, Message: "saving transactions"})

	saved := 0
	for off := 0; off < len(txs); off += s.batchSize {
		if err := ctx.Err(); err != nil {
			return 0, 0, err
		}
		end := off + s.batchSize
		if end > len(txs) {
			end = len(txs)
		}
		n, err := s.repo.AddBatch(ctx, txs[off:end])
		if err != nil {
			return 0, 0, err
		}
		saved += n

		cur := progressParseTo + (progressPersistTo-progressParseTo)*end/len(txs)
		emit(Progress{Current: cur, Total: progressTotal, Message: "saving transactions"})
	}
	return saved, len(txs) - saved, nil
}
