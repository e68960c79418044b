package expansion

import (
	"encoding/json"
	"fmt"
	"strings"
)

// maxSuggestions caps how many phrasings a provider returns
const maxSuggestions = 3

func buildExpansionPrompt(name string) string {
	return fmt.Sprintf(`You help UK electricians find products in wholesaler catalogs.

Given the material name below, suggest up to %d alternative search phrases a UK electrical
wholesaler would use for the same product: trade names, cable codes, expanded abbreviations
or common shorthand. Keep sizes, ratings and quantities unchanged. Do not repeat the input.

Material: %q

Respond with JSON only, no prose:
{"alternatives": ["phrase one", "phrase two"]}`, maxSuggestions, name)
}

// parseAlternatives extracts phrasings from a model reply.
// It accepts {"alternatives": [...]} or a bare array, optionally inside a markdown fence.
func parseAlternatives(text string) ([]string, error) {
	cleaned := stripCodeFence(text)
	if cleaned == "" {
		return nil, fmt.Errorf("empty model output")
	}

	var raw []string
	if strings.HasPrefix(cleaned, "[") {
		if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
			return nil, fmt.Errorf("decode alternatives array: %w", err)
		}
	} else {
		var wrapped struct {
			Alternatives []string `json:"alternatives"`
		}
		if err := json.Unmarshal([]byte(cleaned), &wrapped); err != nil {
			return nil, fmt.Errorf("decode alternatives object: %w", err)
		}
		raw = wrapped.Alternatives
	}

	out := make([]string, 0, maxSuggestions)
	for _, alt := range raw {
		alt = strings.TrimSpace(alt)
		if alt == "" {
			continue
		}
		out = append(out, alt)
		if len(out) == maxSuggestions {
			break
		}
	}
	return out, nil
}

func stripCodeFence(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		// drop the language tag line, e.g. ```json
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
