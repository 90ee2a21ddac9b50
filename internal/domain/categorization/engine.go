package categorization

import (
	"strings"
	"sync"

	"github.com/cloudflare/ahocorasick"
)

// MatchResult is a single keyword hit with its rule metadata.
type MatchResult struct {
	Keyword   string // the keyword that matched
	Category  string
	CleanName string
	Priority  int // higher wins; derived from rule order
}

// Engine is a multi-pattern keyword matcher built on the Aho-Corasick
// algorithm: one pass over the description finds every keyword
// regardless of how many rules are loaded.
type Engine struct {
	matcher  *ahocorasick.Matcher
	keywords []string      // unique keywords in matcher order
	metadata []MatchResult // metadata per keyword
	mu       sync.RWMutex  // protects rebuilding the matcher
}

// NewEngine creates an engine from an ordered rule table.
func NewEngine(rules []Rule) *Engine {
	e := &Engine{}
	e.Build(rules)
	return e
}

// Build constructs the matcher from the rule table. Earlier rules get
// higher priority. Duplicate keywords keep their first (highest
// priority) rule.
func (e *Engine) Build(rules []Rule) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(rules) == 0 {
		e.matcher = nil
		e.keywords = nil
		e.metadata = nil
		return
	}

	seen := make(map[string]bool)
	keywords := make([]string, 0, len(rules)*2)
	metadata := make([]MatchResult, 0, len(rules)*2)

	for i, rule := range rules {
		priority := len(rules) - i
		for _, kw := range rule.Keywords {
			upper := strings.ToUpper(strings.TrimSpace(kw))
			if upper == "" || seen[upper] {
				continue
			}
			seen[upper] = true
			keywords = append(keywords, upper)
			metadata = append(metadata, MatchResult{
				Keyword:   kw,
				Category:  rule.Category,
				CleanName: rule.CleanName,
				Priority:  priority,
			})
		}
	}

	e.keywords = keywords
	e.metadata = metadata

	if len(keywords) == 0 {
		e.matcher = nil
		return
	}

	bytePatterns := make([][]byte, len(keywords))
	for i, k := range keywords {
		bytePatterns[i] = []byte(k)
	}
	e.matcher = ahocorasick.NewMatcher(bytePatterns)
}

// Match returns the highest-priority keyword hit for the description,
// or nil when nothing matches.
func (e *Engine) Match(description string) *MatchResult {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.matchLocked(description)
}

// MatchBatch categorizes multiple descriptions under a single lock.
func (e *Engine) MatchBatch(descriptions []string) []*MatchResult {
	e.mu.RLock()
	defer e.mu.RUnlock()

	results := make([]*MatchResult, len(descriptions))
	for i, desc := range descriptions {
		results[i] = e.matchLocked(desc)
	}
	return results
}

func (e *Engine) matchLocked(description string) *MatchResult {
	if e.matcher == nil || len(e.keywords) == 0 {
		return nil
	}

	normalized := strings.ToUpper(description)
	matches := e.matcher.Match([]byte(normalized))
	if len(matches) == 0 {
		return nil
	}

	var best *MatchResult
	for _, idx := range matches {
		if idx < 0 || idx >= len(e.metadata) {
			continue
		}
		m := &e.metadata[idx]
		if best == nil || m.Priority > best.Priority {
			copy := *m
			best = &copy
		}
	}
	return best
}

// KeywordCount returns the number of keywords loaded in the engine.
func (e *Engine) KeywordCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.keywords)
}
