// Package extractor turns statement files into plain text. Each file
// type has its own extractor; the pipeline only ever sees the
// resulting line-oriented text.
package extractor

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// FileType identifies the statement file format.
type FileType string

const (
	FileTypePDF  FileType = "pdf"
	FileTypeCSV  FileType = "csv"
	FileTypeXLSX FileType = "xlsx"
	FileTypeText FileType = "txt"
)

// Source identifies a statement file to import.
type Source struct {
	Path string
	Type FileType
}

// NewSource builds a Source, inferring the file type from the
// extension when typ is empty.
func NewSource(path string, typ FileType) Source {
	if typ == "" {
		typ = DetectFileType(path)
	}
	return Source{Path: path, Type: typ}
}

// DetectFileType infers the file type from the path extension.
// Unknown extensions are treated as plain text.
func DetectFileType(path string) FileType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return FileTypePDF
	case ".csv":
		return FileTypeCSV
	case ".xlsx", ".xls":
		return FileTypeXLSX
	default:
		return FileTypeText
	}
}

// Extractor extracts the raw text of a statement file. An empty string
// with a nil error means the file was read successfully but contained
// no text.
type Extractor interface {
	Extract(ctx context.Context, src Source) (string, error)
}

// ForType returns the extractor for a file type.
func ForType(typ FileType) (Extractor, error) {
	switch typ {
	case FileTypePDF:
		return &PDFExtractor{}, nil
	case FileTypeXLSX:
		return &ExcelExtractor{}, nil
	case FileTypeCSV, FileTypeText:
		return &TextExtractor{}, nil
	default:
		return nil, fmt.Errorf("unsupported file type %q", typ)
	}
}

// Extract is a convenience that dispatches on the source file type.
func Extract(ctx context.Context, src Source) (string, error) {
	ex, err := ForType(src.Type)
	if err != nil {
		return "", err
	}
	return ex.Extract(ctx, src)
}
