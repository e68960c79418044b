package expansion

import (
	"context"
	"strings"
)

// tradeSynonyms groups names UK wholesalers use for the same product.
// Every entry in a group is interchangeable with every other.
var tradeSynonyms = [][]string{
	{"t&e", "twin and earth", "twin & earth", "6242y"},
	{"swa", "steel wire armoured", "armoured cable"},
	{"consumer unit", "cu", "fuse board", "distribution board"},
	{"rcbo", "residual current breaker with overcurrent"},
	{"mcb", "miniature circuit breaker", "circuit breaker"},
	{"rcd", "residual current device"},
	{"fcu", "fused connection unit", "fused spur"},
	{"jb", "junction box"},
	{"double socket", "twin socket", "2 gang socket"},
	{"single socket", "1 gang socket"},
	{"downlight", "recessed spotlight", "spotlight"},
	{"pir", "motion sensor", "occupancy sensor"},
	{"wago", "lever connector", "wago connector"},
	{"cat6", "cat 6", "ethernet cable"},
	{"tri rated", "tri rated cable", "panel wire"},
	{"flex", "flexible cable", "3183y"},
	{"smoke alarm", "smoke detector"},
	{"isolator", "isolator switch", "rotary isolator"},
}

// SynonymExpander suggests alternative phrasings from a fixed trade vocabulary
type SynonymExpander struct {
	index map[string]int
}

// NewSynonymExpander builds an expander over the built-in trade vocabulary
func NewSynonymExpander() *SynonymExpander {
	index := make(map[string]int)
	for i, group := range tradeSynonyms {
		for _, alias := range group {
			index[normalizeTerm(alias)] = i
		}
	}
	return &SynonymExpander{index: index}
}

// ExpandTerms rewrites the first known trade phrase in name with its synonyms.
// Longer phrases win over shorter ones they contain. Unknown names yield no alternatives.
func (s *SynonymExpander) ExpandTerms(ctx context.Context, name string) ([]string, error) {
	norm := normalizeTerm(name)
	if norm == "" {
		return nil, nil
	}

	phrase, group, ok := s.longestKnownPhrase(norm)
	if !ok {
		return nil, nil
	}

	padded := " " + norm + " "
	out := make([]string, 0, maxSuggestions)
	for _, alias := range tradeSynonyms[group] {
		alias = normalizeTerm(alias)
		if alias == phrase {
			continue
		}
		rewritten := strings.Replace(padded, " "+phrase+" ", " "+alias+" ", 1)
		out = append(out, strings.TrimSpace(rewritten))
		if len(out) == maxSuggestions {
			break
		}
	}
	return out, nil
}

// longestKnownPhrase finds the longest vocabulary phrase that occurs in norm as whole words
func (s *SynonymExpander) longestKnownPhrase(norm string) (string, int, bool) {
	words := strings.Fields(norm)
	for size := len(words); size > 0; size-- {
		for start := 0; start+size <= len(words); start++ {
			candidate := strings.Join(words[start:start+size], " ")
			if group, ok := s.index[candidate]; ok {
				return candidate, group, true
			}
		}
	}
	return "", 0, false
}

func normalizeTerm(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return ""
	}
	s = strings.ReplaceAll(s, "_", " ")
	s = strings.ReplaceAll(s, "-", " ")
	return strings.Join(strings.Fields(s), " ")
}
