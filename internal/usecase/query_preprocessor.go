package usecase

import (
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/text/unicode/norm"
)

// QueryPreprocessor canonicalises search terms for cache keys and duplicate checks.
// Only case, Unicode composition and whitespace are folded; noise words and
// punctuation are kept because "Type A RCD" and "Type RCD" are different products.
type QueryPreprocessor struct {
	logger zerolog.Logger
}

// NewQueryPreprocessor creates a new query preprocessor
func NewQueryPreprocessor(logger zerolog.Logger) *QueryPreprocessor {
	return &QueryPreprocessor{logger: logger}
}

// Normalize trims, NFC-composes, lower-cases and collapses whitespace
func (p *QueryPreprocessor) Normalize(term string) string {
	if strings.TrimSpace(term) == "" {
		return ""
	}

	cleaned := strings.ToLower(norm.NFC.String(term))
	cleaned = strings.Join(strings.Fields(cleaned), " ")

	p.logger.Debug().Str("input", term).Str("output", cleaned).Msg("normalized search term")

	return cleaned
}

// DistinctAlternates drops blank phrasings, phrasings equal to the original name
// and repeats, keeping at most max in their original order.
func (p *QueryPreprocessor) DistinctAlternates(original string, alternates []string, max int) []string {
	if max <= 0 || len(alternates) == 0 {
		return nil
	}

	seen := map[string]bool{p.Normalize(original): true}
	kept := make([]string, 0, max)
	for _, alt := range alternates {
		alt = strings.TrimSpace(alt)
		key := p.Normalize(alt)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		kept = append(kept, alt)
		if len(kept) == max {
			break
		}
	}
	return kept
}
