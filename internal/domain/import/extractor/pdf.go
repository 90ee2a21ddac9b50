package extractor

import (
	"bytes"
	"context"
	"fmt"

	"github.com/dslipak/pdf"
)

// PDFExtractor pulls the embedded text layer out of a PDF statement.
// It does not render pages or run OCR; a scanned statement with no
// text layer extracts to an empty string.
type PDFExtractor struct{}

// Extract reads the full plain text of the PDF.
func (e *PDFExtractor) Extract(ctx context.Context, src Source) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	r, err := pdf.Open(src.Path)
	if err != nil {
		return "", fmt.Errorf("failed to open pdf %s: %w", src.Path, err)
	}

	text, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to extract pdf text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(text); err != nil {
		return "", fmt.Errorf("failed to read pdf text: %w", err)
	}
	return buf.String(), nil
}
