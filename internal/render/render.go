package render

import (
	"fmt"
	"html"
	"strings"

	"BrewPress/internal/domain"
)

const excerptLimit = 120

// Render composes the enriched HTML body for one post. Output depends only on
// the inputs: same analysis and article always produce identical bytes.
func Render(a domain.Analysis, article domain.RawArticle) string {
	var b strings.Builder

	writeAttribution(&b, article)

	b.WriteString("<div class=\"ai-summary\">\n")
	b.WriteString("<p>" + html.EscapeString(a.Summary) + "</p>\n")
	b.WriteString("</div>\n")

	b.WriteString("<div class=\"ai-analysis\">\n")
	fmt.Fprintf(&b, "<span class=\"badge importance\">重要度 %s</span>\n", stars(a.Importance))
	fmt.Fprintf(&b, "<span class=\"badge sentiment sentiment-%s\">%s</span>\n",
		html.EscapeString(a.Sentiment), sentimentLabel(a.Sentiment))

	if len(a.SummaryPoints) > 0 {
		b.WriteString("<ul class=\"key-points\">\n")
		for _, point := range a.SummaryPoints {
			b.WriteString("<li>" + html.EscapeString(point) + "</li>\n")
		}
		b.WriteString("</ul>\n")
	}

	if a.TargetAudience != "" {
		b.WriteString("<p class=\"audience\">対象読者: " + html.EscapeString(a.TargetAudience) + "</p>\n")
	}

	if len(a.SuggestedTags) > 0 {
		b.WriteString("<p class=\"tags\">")
		for i, tag := range a.SuggestedTags {
			if i > 0 {
				b.WriteString(" ")
			}
			b.WriteString("<span class=\"tag-chip\">" + html.EscapeString(tag) + "</span>")
		}
		b.WriteString("</p>\n")
	}

	b.WriteString("</div>\n")
	return b.String()
}

// Excerpt derives the short teaser stored alongside the post.
func Excerpt(a domain.Analysis, article domain.RawArticle) string {
	text := strings.TrimSpace(a.Summary)
	if text == "" {
		text = strings.TrimSpace(a.Description)
	}
	if text == "" {
		text = strings.TrimSpace(article.Title)
	}

	runes := []rune(text)
	if len(runes) <= excerptLimit {
		return text
	}
	return string(runes[:excerptLimit]) + "…"
}

func writeAttribution(b *strings.Builder, article domain.RawArticle) {
	if article.SourceName == "" && article.SourceURL == "" && article.OriginalLink == "" {
		return
	}

	b.WriteString("<div class=\"source-attribution\">\n")
	switch {
	case article.SourceName != "" && article.SourceURL != "":
		fmt.Fprintf(b, "<p>出典: <a href=\"%s\">%s</a></p>\n",
			html.EscapeString(article.SourceURL), html.EscapeString(article.SourceName))
	case article.SourceName != "":
		b.WriteString("<p>出典: " + html.EscapeString(article.SourceName) + "</p>\n")
	case article.SourceURL != "":
		fmt.Fprintf(b, "<p>出典: <a href=\"%s\">%s</a></p>\n",
			html.EscapeString(article.SourceURL), html.EscapeString(article.SourceURL))
	}
	if article.OriginalLink != "" {
		fmt.Fprintf(b, "<p><a href=\"%s\">元記事を読む</a></p>\n", html.EscapeString(article.OriginalLink))
	}
	b.WriteString("</div>\n")
}

func stars(importance int) string {
	if importance < 1 {
		importance = 1
	}
	if importance > 5 {
		importance = 5
	}
	return strings.Repeat("★", importance) + strings.Repeat("☆", 5-importance)
}

func sentimentLabel(sentiment string) string {
	switch sentiment {
	case domain.SentimentPositive:
		return "ポジティブ"
	case domain.SentimentNegative:
		return "ネガティブ"
	default:
		return "ニュートラル"
	}
}
