package extractor

import (
	"bytes"
	"context"
	"fmt"
	"os"
)

// TextExtractor reads plain-text and CSV statements as-is, stripping a
// UTF-8 BOM and normalizing line endings.
type TextExtractor struct{}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Extract reads the whole file.
func (e *TextExtractor) Extract(ctx context.Context, src Source) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	data, err := os.ReadFile(src.Path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", src.Path, err)
	}

	data = bytes.TrimPrefix(data, utf8BOM)
	data = bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n"))
	return string(data), nil
}
