// Package sniffer infers the shape of delimited statement exports:
// the field delimiter, the header row and a fingerprint that
// identifies the column layout of a bank.
package sniffer

import (
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"strings"
)

// Delimiters tried in order of preference. Semicolon first: Russian
// bank exports use comma as the decimal separator.
var candidates = []rune{';', '\t', ',', '|'}

// Column names that identify a statement header row, lowercase.
var headerKeywords = []string{
	"дата", "date",
	"описание", "назначение", "description", "merchant",
	"сумма", "amount", "value",
	"категория", "category",
	"дебет", "debit", "кредит", "credit",
	"баланс", "balance",
}

// Detection is the inferred file shape.
type Detection struct {
	Delimiter   rune
	HeaderIndex int // -1 when no header row was found
	Headers     []string
	// Fingerprint hashes the normalized header names. Files from the
	// same bank export produce the same fingerprint.
	Fingerprint string
}

const maxSampleLines = 10

// DetectDelimiter picks the delimiter that splits the sample lines
// into a consistent number of fields greater than one. Falls back to
// semicolon when nothing splits cleanly.
func DetectDelimiter(lines []string) rune {
	sample := lines
	if len(sample) > maxSampleLines {
		sample = sample[:maxSampleLines]
	}

	best := ';'
	bestFields := 1
	for _, delim := range candidates {
		fields, consistent := fieldCounts(sample, delim)
		if !consistent || fields < 2 {
			continue
		}
		if fields > bestFields {
			best = delim
			bestFields = fields
		}
	}
	return best
}

// Sniff detects the delimiter and locates the header row within the
// first sample lines. The second return value is false when no
// header row was found.
func Sniff(lines []string) (Detection, bool) {
	det := Detection{Delimiter: DetectDelimiter(lines), HeaderIndex: -1}

	sample := lines
	if len(sample) > maxSampleLines {
		sample = sample[:maxSampleLines]
	}
	for i, line := range sample {
		fields, err := splitLine(line, det.Delimiter)
		if err != nil || len(fields) < 2 {
			continue
		}
		if countHeaderKeywords(fields) >= 2 {
			det.HeaderIndex = i
			det.Headers = fields
			det.Fingerprint = fingerprint(fields)
			return det, true
		}
	}
	return det, false
}

func fieldCounts(lines []string, delim rune) (int, bool) {
	count := 0
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields, err := splitLine(line, delim)
		if err != nil {
			return 0, false
		}
		if count == 0 {
			count = len(fields)
			continue
		}
		if len(fields) != count {
			return 0, false
		}
	}
	return count, count > 0
}

func splitLine(line string, delim rune) ([]string, error) {
	r := csv.NewReader(strings.NewReader(line))
	r.Comma = delim
	r.LazyQuotes = true
	r.TrimLeadingSpace = true
	return r.Read()
}

func countHeaderKeywords(fields []string) int {
	matched := 0
	for _, f := range fields {
		lower := strings.ToLower(strings.TrimSpace(f))
		for _, kw := range headerKeywords {
			if strings.Contains(lower, kw) {
				matched++
				break
			}
		}
	}
	return matched
}

func fingerprint(headers []string) string {
	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = strings.ToLower(strings.TrimSpace(h))
	}
	sum := sha256.Sum256([]byte(strings.Join(normalized, "|")))
	return hex.EncodeToString(sum[:])
}
