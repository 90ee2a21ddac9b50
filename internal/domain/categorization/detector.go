package categorization

import "log/slog"

// DefaultFuzzyThreshold is the minimum score (0-100) for a fuzzy hit
// to be trusted.
const DefaultFuzzyThreshold = 75

// Detector assigns a category to a transaction description. Exact
// keyword matching runs first; the fuzzy matcher is consulted only
// when the engine finds nothing.
type Detector struct {
	engine    *Engine
	fuzzy     *FuzzyMatcher
	threshold int
	logger    *slog.Logger
}

// NewDetector builds a detector from the default rule table.
func NewDetector(logger *slog.Logger) *Detector {
	return NewDetectorWithRules(DefaultRules(), logger)
}

// NewDetectorWithRules builds a detector from a custom rule table.
func NewDetectorWithRules(rules []Rule, logger *slog.Logger) *Detector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Detector{
		engine:    NewEngine(rules),
		fuzzy:     NewFuzzyMatcher(rules),
		threshold: DefaultFuzzyThreshold,
		logger:    logger,
	}
}

// Detect returns the category for a description, falling back to
// CategoryUncategorized when nothing matches.
func (d *Detector) Detect(description string) string {
	if description == "" {
		return CategoryUncategorized
	}

	if m := d.engine.Match(description); m != nil {
		return m.Category
	}

	if m := d.fuzzy.Match(description, d.threshold); m != nil {
		d.logger.Debug("fuzzy category match",
			"description", description,
			"keyword", m.Keyword,
			"category", m.Category)
		return m.Category
	}

	return CategoryUncategorized
}

// DetectBatch categorizes descriptions in bulk, sharing one engine pass
// per description.
func (d *Detector) DetectBatch(descriptions []string) []string {
	out := make([]string, len(descriptions))
	matches := d.engine.MatchBatch(descriptions)
	for i, m := range matches {
		if m != nil {
			out[i] = m.Category
			continue
		}
		if fm := d.fuzzy.Match(descriptions[i], d.threshold); fm != nil {
			out[i] = fm.Category
			continue
		}
		out[i] = CategoryUncategorized
	}
	return out
}
