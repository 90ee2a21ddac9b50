// Package normalizer cleans raw transaction descriptions into
// readable titles and loads user-defined category overrides.
package normalizer

import (
	"regexp"
	"strings"
	"unicode"
)

// Payment-system noise commonly prefixed to Russian statement
// descriptions. Matching is case-insensitive and longest-first.
var noisePrefixes = []string{
	"оплата товаров и услуг ",
	"оплата покупки ",
	"покупка по карте ",
	"операция по карте ",
	"перевод по сбп ",
	"pos ",
	"payment ",
	"purchase ",
}

var (
	// Terminal and authorization references trailing the merchant name.
	refSuffixRe = regexp.MustCompile(`\s+\d{4,}$`)
	// Masked card numbers like *1234 or **** 1234 anywhere in the line.
	cardMaskRe = regexp.MustCompile(`\*+\s*\d{4}`)
	// Trailing city or country tags separated by slashes: "OZON/MOSCOW/RU".
	locationRe = regexp.MustCompile(`/[A-Za-z .-]+(/[A-Za-z]{2})?$`)
	spacesRe   = regexp.MustCompile(`\s+`)
)

// Sanitizer cleans merchant descriptions. The zero value is usable.
type Sanitizer struct{}

// NewSanitizer creates a description sanitizer.
func NewSanitizer() *Sanitizer {
	return &Sanitizer{}
}

// Clean strips payment-system noise from a raw description and fixes
// casing. The result is meant to be shown as the transaction title;
// categorization still runs on the raw description.
func (s *Sanitizer) Clean(raw string) string {
	result := strings.TrimSpace(raw)
	if result == "" {
		return result
	}

	lower := strings.ToLower(result)
	for _, prefix := range noisePrefixes {
		if strings.HasPrefix(lower, prefix) {
			result = strings.TrimSpace(result[len(prefix):])
			break
		}
	}

	result = cardMaskRe.ReplaceAllString(result, "")
	result = locationRe.ReplaceAllString(result, "")
	result = refSuffixRe.ReplaceAllString(result, "")
	result = spacesRe.ReplaceAllString(result, " ")
	result = strings.TrimSpace(result)

	if result == "" {
		// Everything was noise; better the raw text than nothing.
		return strings.TrimSpace(raw)
	}
	if isShouting(result) {
		result = titleCase(result)
	}
	return result
}

// isShouting reports whether the text has letters and none of them
// are lowercase. Bank terminals love all-caps merchant names.
func isShouting(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			hasLetter = true
			if unicode.IsLower(r) {
				return false
			}
		}
	}
	return hasLetter
}

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, word := range words {
		runes := []rune(word)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
