// Package registry selects the right bank statement handler for an
// uploaded file. Handlers are tried in registration order: the first
// one that supports the file type and validates the document head
// wins.
package registry

import (
	"errors"
	"log/slog"

	"github.com/davidbugayov/statement-importer/internal/domain/import/extractor"
	"github.com/davidbugayov/statement-importer/internal/domain/import/statement"
)

// ErrNoHandler is returned when no registered handler recognizes the
// document.
var ErrNoHandler = errors.New("no handler recognizes this statement format")

// Registry holds the ordered set of bank statement handlers.
type Registry struct {
	handlers []statement.Handler
	logger   *slog.Logger
}

// New creates a registry. Handlers can be passed here or added later
// with Register.
func New(logger *slog.Logger, handlers ...statement.Handler) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{handlers: handlers, logger: logger}
}

// Register appends a handler. Order matters: more specific formats
// must be registered before catch-all ones.
func (r *Registry) Register(h statement.Handler) {
	r.handlers = append(r.handlers, h)
}

// Handlers returns the registered handlers in registration order.
func (r *Registry) Handlers() []statement.Handler {
	return r.handlers
}

// Detect picks the first handler that supports the file type and
// whose Validate accepts the document head.
func (r *Registry) Detect(typ extractor.FileType, lines []string) (statement.Handler, error) {
	head := lines
	if len(head) > statement.MaxValidationLines {
		head = head[:statement.MaxValidationLines]
	}

	for _, h := range r.handlers {
		if !h.Supports(typ) {
			continue
		}
		if h.Validate(head) {
			r.logger.Debug("statement format detected",
				"bank", h.Descriptor().BankName,
				"file_type", string(typ))
			return h, nil
		}
	}
	return nil, ErrNoHandler
}
