package gemini

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"newsdesk/internal/services"
)

// Analysis is the structured result expected from a single-item analysis
// call. The JSON contract is fixed: any response missing a required key is a
// parse failure.
type Analysis struct {
	Summary              string   `json:"summary"`
	ProvocativeHeadlines []string `json:"provocativeHeadlines"`
	MatchedKeywords      []string `json:"matchedKeywords"`
	SuggestedKeywords    []string `json:"suggestedKeywords"`
	ProvocativeKeywords  []string `json:"provocativeKeywords"`
}

// ItemAnalysis couples an Analysis with the content item it belongs to inside
// a batch response.
type ItemAnalysis struct {
	ContentID int64 `json:"contentId"`
	Analysis
}

// BatchAnalysis is the structured result expected from a combined batch call.
type BatchAnalysis struct {
	Items []ItemAnalysis `json:"items"`
}

var requiredAnalysisKeys = []string{
	"summary",
	"provocativeHeadlines",
	"matchedKeywords",
	"suggestedKeywords",
	"provocativeKeywords",
}

// DecodeAnalysis parses a single-item analysis payload, enforcing the fixed
// response schema. Failures are tagged services.ErrParse.
func DecodeAnalysis(content string) (*Analysis, error) {
	raw, err := decodeRawObject(content)
	if err != nil {
		return nil, err
	}
	if err := requireKeys(raw, requiredAnalysisKeys); err != nil {
		return nil, err
	}
	var parsed Analysis
	if err := DecodeModelJSON(content, &parsed); err != nil {
		return nil, services.Wrap(services.ErrParse, "gemini", "decode analysis", "", err)
	}
	return &parsed, nil
}

// DecodeBatchAnalysis parses a batch payload: a top-level items array where
// each entry follows the single-item schema plus a contentId.
func DecodeBatchAnalysis(content string) (*BatchAnalysis, error) {
	raw, err := decodeRawObject(content)
	if err != nil {
		return nil, err
	}
	if _, ok := raw["items"]; !ok {
		return nil, services.Wrap(services.ErrParse, "gemini", "decode batch", "missing items key", nil)
	}
	var parsed BatchAnalysis
	if err := DecodeModelJSON(content, &parsed); err != nil {
		return nil, services.Wrap(services.ErrParse, "gemini", "decode batch", "", err)
	}
	for i, item := range parsed.Items {
		if item.ContentID == 0 {
			return nil, services.Wrap(services.ErrParse, "gemini", "decode batch",
				fmt.Sprintf("item %d missing contentId", i), nil)
		}
	}
	return &parsed, nil
}

func decodeRawObject(content string) (map[string]json.RawMessage, error) {
	var raw map[string]json.RawMessage
	if err := DecodeModelJSON(content, &raw); err != nil {
		return nil, services.Wrap(services.ErrParse, "gemini", "decode payload", "", err)
	}
	return raw, nil
}

func requireKeys(raw map[string]json.RawMessage, keys []string) error {
	for _, key := range keys {
		if _, ok := raw[key]; !ok {
			return services.Wrap(services.ErrParse, "gemini", "decode payload",
				fmt.Sprintf("missing required key %q", key), nil)
		}
	}
	return nil
}

// DecodeModelJSON decodes JSON from a model response, tolerating common
// formatting quirks (code fences, leading prose around the object).
func DecodeModelJSON(content string, target any) error {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return errors.New("empty payload")
	}

	directErr := json.Unmarshal([]byte(trimmed), target)
	if directErr == nil {
		return nil
	}

	sanitized := sanitizeJSONPayload(trimmed)
	if sanitized == "" || sanitized == trimmed {
		return fmt.Errorf("%w (payload snippet: %s)", directErr, summarizePayloadSnippet(trimmed))
	}

	sanitizedErr := json.Unmarshal([]byte(sanitized), target)
	if sanitizedErr == nil {
		return nil
	}
	return fmt.Errorf("%w (sanitized payload snippet: %s)", sanitizedErr, summarizePayloadSnippet(sanitized))
}

func sanitizeJSONPayload(content string) string {
	trimmed := strings.TrimSpace(stripCodeFenceBlock(content))
	if trimmed == "" {
		return ""
	}
	if trimmed[0] == '{' || trimmed[0] == '[' {
		return trimmed
	}
	if start := strings.Index(trimmed, "{"); start >= 0 {
		if end := strings.LastIndex(trimmed, "}"); end > start {
			return strings.TrimSpace(trimmed[start : end+1])
		}
	}
	if start := strings.Index(trimmed, "["); start >= 0 {
		if end := strings.LastIndex(trimmed, "]"); end > start {
			return strings.TrimSpace(trimmed[start : end+1])
		}
	}
	return trimmed
}

func stripCodeFenceBlock(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	body := trimmed[3:]
	body = strings.TrimLeft(body, " \t\r\n")
	if len(body) >= 4 && strings.EqualFold(body[:4], "json") {
		body = body[4:]
		body = strings.TrimLeft(body, " \t\r\n")
	}
	if idx := strings.LastIndex(body, "```"); idx >= 0 {
		body = body[:idx]
	}
	return strings.TrimSpace(body)
}

func summarizePayloadSnippet(content string) string {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return "<empty>"
	}
	replacer := strings.NewReplacer("\r", " ", "\n", " ", "\t", " ")
	clean := replacer.Replace(trimmed)
	clean = strings.Join(strings.Fields(clean), " ")
	const limit = 160
	runes := []rune(clean)
	if len(runes) > limit {
		clean = string(runes[:limit]) + "..."
	}
	return clean
}
