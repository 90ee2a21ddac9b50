package categorization

import (
	"strings"
	"sync"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// FuzzyMatcher catches near-miss keyword spellings that the exact
// engine misses ("OZN.RU", "WLDBERRIES"). It is intentionally the
// slow path and only consulted when the engine finds nothing.
type FuzzyMatcher struct {
	patterns []fuzzyPattern
	mu       sync.RWMutex
}

type fuzzyPattern struct {
	normalized string
	category   string
	cleanName  string
	priority   int
}

// NewFuzzyMatcher creates a fuzzy matcher from the same rule table the
// engine uses. Only keywords long enough to carry signal are indexed;
// short generic tokens produce too many false positives under edit
// distance.
func NewFuzzyMatcher(rules []Rule) *FuzzyMatcher {
	fm := &FuzzyMatcher{}
	fm.Build(rules)
	return fm
}

const minFuzzyKeywordLen = 4

// Build constructs the fuzzy pattern list from the rule table.
func (fm *FuzzyMatcher) Build(rules []Rule) {
	fm.mu.Lock()
	defer fm.mu.Unlock()

	fm.patterns = fm.patterns[:0]
	for i, rule := range rules {
		priority := len(rules) - i
		for _, kw := range rule.Keywords {
			upper := strings.ToUpper(strings.TrimSpace(kw))
			if len([]rune(upper)) < minFuzzyKeywordLen {
				continue
			}
			fm.patterns = append(fm.patterns, fuzzyPattern{
				normalized: upper,
				category:   rule.Category,
				cleanName:  rule.CleanName,
				priority:   priority,
			})
		}
	}
}

// Match returns the best fuzzy hit with a score at or above threshold
// (0-100), or nil. Ties are broken by rule priority.
func (fm *FuzzyMatcher) Match(description string, threshold int) *MatchResult {
	fm.mu.RLock()
	defer fm.mu.RUnlock()

	if len(fm.patterns) == 0 {
		return nil
	}

	normalized := strings.ToUpper(description)

	var best *MatchResult
	bestScore := threshold - 1

	for _, p := range fm.patterns {
		score := fuzzyScore(normalized, p.normalized)
		if score > bestScore || (score == bestScore && best != nil && p.priority > best.Priority) {
			bestScore = score
			best = &MatchResult{
				Keyword:   p.normalized,
				Category:  p.category,
				CleanName: p.cleanName,
				Priority:  p.priority,
			}
		}
	}
	return best
}

// fuzzyScore rates the similarity of a description to a keyword (0-100)
// using containment, Levenshtein distance and subsequence ranking.
func fuzzyScore(description, keyword string) int {
	if description == keyword {
		return 100
	}
	if strings.Contains(description, keyword) {
		return 100
	}

	// Best word-level distance: statement descriptions are noisy
	// multi-token strings while keywords are single brands.
	best := 0
	for _, word := range strings.FieldsFunc(description, func(r rune) bool {
		return r == ' ' || r == '.' || r == ',' || r == '/' || r == '*'
	}) {
		if s := wordScore(word, keyword); s > best {
			best = s
		}
	}
	return best
}

func wordScore(word, keyword string) int {
	wr := []rune(word)
	kr := []rune(keyword)
	maxLen := len(wr)
	if len(kr) > maxLen {
		maxLen = len(kr)
	}
	if maxLen == 0 {
		return 0
	}

	distance := fuzzy.LevenshteinDistance(word, keyword)
	levScore := 100 * (maxLen - distance) / maxLen

	seqScore := 0
	if fuzzy.MatchNormalizedFold(keyword, word) {
		seqScore = 70
	}

	if levScore > seqScore {
		return levScore
	}
	return seqScore
}

// PatternCount returns the number of fuzzy patterns loaded.
func (fm *FuzzyMatcher) PatternCount() int {
	fm.mu.RLock()
	defer fm.mu.RUnlock()
	return len(fm.patterns)
}
