package analysis

import (
	"errors"
	"reflect"
	"testing"

	"BrewPress/internal/domain"
)

func TestParseBareJSON(t *testing.T) {
	t.Parallel()

	raw := `{
		"summary": "新しいIPAが発売された。",
		"summary_points": ["発売日決定", "限定醸造", "全国流通"],
		"importance": 4,
		"sentiment": "positive",
		"target_audience": "クラフトビール愛好家",
		"suggested_tags": ["IPA", "新製品"],
		"category": "新製品",
		"is_beer_related": true,
		"content_description": "新製品発表の記事"
	}`

	a, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if a.Summary != "新しいIPAが発売された。" {
		t.Fatalf("unexpected summary: %q", a.Summary)
	}
	if a.Importance != 4 {
		t.Fatalf("unexpected importance: %d", a.Importance)
	}
	if a.Sentiment != domain.SentimentPositive {
		t.Fatalf("unexpected sentiment: %q", a.Sentiment)
	}
	if !a.BeerRelated {
		t.Fatal("expected beer-related flag")
	}
	if want := []string{"IPA", "新製品"}; !reflect.DeepEqual(a.SuggestedTags, want) {
		t.Fatalf("unexpected tags: %v", a.SuggestedTags)
	}
}

func TestParseProseWrappedJSON(t *testing.T) {
	t.Parallel()

	raw := "Here is the analysis you asked for:\n" +
		`{"summary": "s", "importance": 2, "sentiment": "negative", "category": "イベント", "is_beer_related": true}` +
		"\nLet me know if you need anything else."

	a, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if a.Category != "イベント" {
		t.Fatalf("unexpected category: %q", a.Category)
	}
	if a.Sentiment != domain.SentimentNegative {
		t.Fatalf("unexpected sentiment: %q", a.Sentiment)
	}
}

func TestParseMarkdownFencedJSON(t *testing.T) {
	t.Parallel()

	raw := "```json\n{\"summary\": \"fenced\", \"importance\": 5, \"is_beer_related\": true}\n```"

	a, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if a.Summary != "fenced" {
		t.Fatalf("unexpected summary: %q", a.Summary)
	}
}

func TestParseTagsAsCommaString(t *testing.T) {
	t.Parallel()

	raw := `{"suggested_tags": "IPA, ラガー、スタウト", "summary_points": "one, two", "is_beer_related": true}`

	a, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if want := []string{"IPA", "ラガー", "スタウト"}; !reflect.DeepEqual(a.SuggestedTags, want) {
		t.Fatalf("unexpected tags: %v", a.SuggestedTags)
	}
	if want := []string{"one", "two"}; !reflect.DeepEqual(a.SummaryPoints, want) {
		t.Fatalf("unexpected points: %v", a.SummaryPoints)
	}
}

func TestParseBracesInsideStrings(t *testing.T) {
	t.Parallel()

	raw := `{"summary": "об } этом { написано", "is_beer_related": true}`

	a, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if a.Summary == "" {
		t.Fatal("summary lost")
	}
}

func TestParseFailures(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		raw  string
	}{
		{"no object", "the model refused to answer"},
		{"unbalanced", `prefix {"summary": "x"`},
		{"not decodable", `{"importance": "very high"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse(tc.raw)
			if !errors.Is(err, domain.ErrParse) {
				t.Fatalf("expected parse failure, got %v", err)
			}
		})
	}
}

func TestParseLenientDefaults(t *testing.T) {
	t.Parallel()

	a, err := Parse(`{"is_beer_related": true}`)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if a.Importance != 3 {
		t.Fatalf("expected midpoint importance, got %d", a.Importance)
	}
	if a.Sentiment != domain.SentimentNeutral {
		t.Fatalf("expected neutral sentiment, got %q", a.Sentiment)
	}
	if a.SuggestedTags != nil {
		t.Fatalf("expected no tags, got %v", a.SuggestedTags)
	}
}
