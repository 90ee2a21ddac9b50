package extractor

import (
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ExcelExtractor flattens an XLSX workbook into tab-separated lines so
// the same line parsers work for spreadsheet statements. Only the
// first sheet is read; bank statement exports carry one sheet.
type ExcelExtractor struct{}

// Extract reads every row of the first sheet, one line per row.
func (e *ExcelExtractor) Extract(ctx context.Context, src Source) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	f, err := excelize.OpenFile(src.Path)
	if err != nil {
		return "", fmt.Errorf("failed to open workbook %s: %w", src.Path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", nil
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return "", fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}

	var sb strings.Builder
	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(strings.Join(row, "\t"))
	}
	return sb.String(), nil
}
