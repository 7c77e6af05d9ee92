package render

import (
	"strings"
	"testing"

	"BrewPress/internal/domain"
)

func sampleAnalysis() domain.Analysis {
	return domain.Analysis{
		Summary:        "限定スタウトが発表された。",
		SummaryPoints:  []string{"冬季限定", "樽熟成", "数量限定"},
		Importance:     4,
		Sentiment:      domain.SentimentPositive,
		TargetAudience: "スタウト好き",
		SuggestedTags:  []string{"スタウト", "限定醸造"},
	}
}

func sampleArticle() domain.RawArticle {
	return domain.RawArticle{
		ID:           42,
		Title:        "限定スタウト",
		SourceName:   "Brewery Times",
		SourceURL:    "https://brewerytimes.example",
		OriginalLink: "https://brewerytimes.example/stout",
	}
}

func TestRenderDeterministic(t *testing.T) {
	t.Parallel()

	a, article := sampleAnalysis(), sampleArticle()
	first := Render(a, article)
	for i := 0; i < 5; i++ {
		if again := Render(a, article); again != first {
			t.Fatal("render output drifted between identical calls")
		}
	}
}

func TestRenderContent(t *testing.T) {
	t.Parallel()

	out := Render(sampleAnalysis(), sampleArticle())

	for _, want := range []string{
		"限定スタウトが発表された。",
		"<a href=\"https://brewerytimes.example\">Brewery Times</a>",
		"元記事を読む",
		"★★★★☆",
		"ポジティブ",
		"<li>冬季限定</li>",
		"対象読者: スタウト好き",
		"<span class=\"tag-chip\">スタウト</span>",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("rendered body missing %q:\n%s", want, out)
		}
	}
}

func TestRenderWithoutSourceMetadata(t *testing.T) {
	t.Parallel()

	out := Render(sampleAnalysis(), domain.RawArticle{ID: 7})
	if strings.Contains(out, "source-attribution") {
		t.Fatal("attribution block rendered without source metadata")
	}
}

func TestRenderEscapesValues(t *testing.T) {
	t.Parallel()

	a := sampleAnalysis()
	a.Summary = `<script>alert("x")</script>`
	out := Render(a, domain.RawArticle{})
	if strings.Contains(out, "<script>") {
		t.Fatal("summary not escaped")
	}
}

func TestExcerpt(t *testing.T) {
	t.Parallel()

	a := sampleAnalysis()
	if got := Excerpt(a, sampleArticle()); got != a.Summary {
		t.Fatalf("unexpected excerpt: %q", got)
	}

	a.Summary = strings.Repeat("あ", 200)
	got := Excerpt(a, sampleArticle())
	if len([]rune(got)) != 121 || !strings.HasSuffix(got, "…") {
		t.Fatalf("long excerpt not truncated: %d runes", len([]rune(got)))
	}

	empty := domain.Analysis{}
	if got := Excerpt(empty, sampleArticle()); got != "限定スタウト" {
		t.Fatalf("expected title fallback, got %q", got)
	}
}
