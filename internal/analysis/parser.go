package analysis

import (
	"encoding/json"
	"fmt"
	"strings"

	"BrewPress/internal/domain"
)

// rawAnalysis mirrors the prompted JSON shape but tolerates the model's
// habit of flattening list fields into plain strings.
type rawAnalysis struct {
	Summary        string          `json:"summary"`
	SummaryPoints  json.RawMessage `json:"summary_points"`
	Importance     int             `json:"importance"`
	Sentiment      string          `json:"sentiment"`
	TargetAudience string          `json:"target_audience"`
	SuggestedTags  json.RawMessage `json:"suggested_tags"`
	Category       string          `json:"category"`
	BeerRelated    bool            `json:"is_beer_related"`
	Description    string          `json:"content_description"`
}

// Parse extracts the analysis record from free-form model output. The model
// is prompted to answer with bare JSON but routinely wraps it in prose or
// markdown fences, so this is a best-effort extraction: the first balanced
// object substring is decoded, anything around it is ignored.
func Parse(raw string) (domain.Analysis, error) {
	object, ok := firstJSONObject(stripFences(raw))
	if !ok {
		return domain.Analysis{}, fmt.Errorf("no JSON object in model output: %w", domain.ErrParse)
	}

	var parsed rawAnalysis
	if err := json.Unmarshal([]byte(object), &parsed); err != nil {
		return domain.Analysis{}, fmt.Errorf("decode model output: %v: %w", err, domain.ErrParse)
	}

	return domain.Analysis{
		Summary:        strings.TrimSpace(parsed.Summary),
		SummaryPoints:  asList(parsed.SummaryPoints),
		Importance:     clampImportance(parsed.Importance),
		Sentiment:      normalizeSentiment(parsed.Sentiment),
		TargetAudience: strings.TrimSpace(parsed.TargetAudience),
		SuggestedTags:  asList(parsed.SuggestedTags),
		Category:       strings.TrimSpace(parsed.Category),
		BeerRelated:    parsed.BeerRelated,
		Description:    strings.TrimSpace(parsed.Description),
	}, nil
}

// stripFences drops a surrounding ```json ... ``` block when present.
func stripFences(raw string) string {
	cleaned := strings.TrimSpace(raw)
	if strings.HasPrefix(cleaned, "```json") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
	} else if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```")
	} else {
		return cleaned
	}
	cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")
	return strings.TrimSpace(cleaned)
}

// firstJSONObject returns the first balanced {...} substring, honoring string
// literals and escapes so braces inside values do not break the count.
func firstJSONObject(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}

// asList accepts either a JSON string array or a single delimited string and
// normalizes both to an ordered slice. Japanese-style 、 delimiters count too.
func asList(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}

	var items []string
	if err := json.Unmarshal(raw, &items); err == nil {
		return trimNonEmpty(items)
	}

	var joined string
	if err := json.Unmarshal(raw, &joined); err != nil {
		return nil
	}
	joined = strings.ReplaceAll(joined, "、", ",")
	return trimNonEmpty(strings.Split(joined, ","))
}

func trimNonEmpty(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// clampImportance forces the score into 1..5; an absent score lands on the
// midpoint rather than failing the whole record.
func clampImportance(v int) int {
	switch {
	case v == 0:
		return 3
	case v < 1:
		return 1
	case v > 5:
		return 5
	}
	return v
}

func normalizeSentiment(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case domain.SentimentPositive:
		return domain.SentimentPositive
	case domain.SentimentNegative:
		return domain.SentimentNegative
	default:
		return domain.SentimentNeutral
	}
}
