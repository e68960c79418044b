package expansion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/elecmate/materials-compare/internal/domain"
)

const (
	defaultGeminiBaseURL = "https://generativelanguage.googleapis.com"
	defaultGeminiTimeout = 8 * time.Second
)

// GeminiConfig holds settings for the Gemini expansion provider
type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// GeminiExpander asks a Gemini model for alternative catalog search phrases
type GeminiExpander struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewGeminiExpander creates a Gemini-backed TermExpander
func NewGeminiExpander(cfg GeminiConfig, logger zerolog.Logger) *GeminiExpander {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultGeminiBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultGeminiTimeout
	}

	return &GeminiExpander{
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.With().Str("component", "gemini_expander").Logger(),
	}
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// ExpandTerms returns up to three alternative phrasings for name
func (g *GeminiExpander) ExpandTerms(ctx context.Context, name string) ([]string, error) {
	if g.apiKey == "" || g.model == "" {
		return nil, fmt.Errorf("%w: gemini api key and model are required", domain.ErrCollaboratorMisconfigured)
	}
	if strings.TrimSpace(name) == "" {
		return nil, nil
	}

	payload := map[string]any{
		"contents": []map[string]any{
			{
				"parts": []map[string]string{
					{"text": buildExpansionPrompt(name)},
				},
			},
		},
		"generationConfig": map[string]any{
			"temperature":      0.2,
			"maxOutputTokens":  256,
			"responseMimeType": "application/json",
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", g.baseURL, g.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrExpansionFailure, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrExpansionFailure, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", domain.ErrExpansionFailure, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: gemini rejected credentials (status %d)", domain.ErrCollaboratorMisconfigured, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: gemini status %d", domain.ErrExpansionFailure, resp.StatusCode)
	}

	var result geminiResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", domain.ErrExpansionFailure, err)
	}
	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("%w: empty gemini response", domain.ErrExpansionFailure)
	}

	alternatives, err := parseAlternatives(result.Candidates[0].Content.Parts[0].Text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrExpansionFailure, err)
	}

	g.logger.Debug().Str("item", name).Strs("alternatives", alternatives).Msg("expanded search terms")
	return alternatives, nil
}
