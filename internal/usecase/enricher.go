package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"BrewPress/internal/analysis"
	"BrewPress/internal/domain"
	"BrewPress/internal/ports"
	"BrewPress/internal/render"
)

const pendingPageSize = 20

// Analyzer is the throttled model call the enricher runs once per post.
type Analyzer interface {
	Analyze(ctx context.Context, prompt string) (string, error)
}

// ImageResolver conditionally attaches a cover image to a post.
type ImageResolver interface {
	Resolve(ctx context.Context, article domain.RawArticle, a domain.Analysis) domain.ImageOutcome
}

// EnricherDeps wires all driven adapters into the enrichment workflow.
type EnricherDeps struct {
	Store      ports.ContentStore
	Gateway    Analyzer
	Resolver   *analysis.Resolver
	Images     ImageResolver
	Repository ports.EnrichmentRepository
	Logger     *slog.Logger

	// Now and Shuffle exist so tests control time and ordering.
	Now     func() time.Time
	Shuffle func(n int, swap func(i, j int))
}

// Enricher walks one post through analyze, classify, image resolution,
// render, and write-back. Per-post failures never abort the batch.
type Enricher struct {
	store      ports.ContentStore
	gateway    Analyzer
	resolver   *analysis.Resolver
	images     ImageResolver
	repository ports.EnrichmentRepository
	logger     *slog.Logger
	now        func() time.Time
	shuffle    func(n int, swap func(i, j int))
}

// Outcome is the terminal state of one post's enrichment.
type Outcome string

const (
	OutcomeDone    Outcome = "done"
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed"
)

// Stats accumulates per-post outcomes over a batch run.
type Stats struct {
	Done    int
	Skipped int
	Failed  int
}

// NewEnricher constructs the orchestration component.
func NewEnricher(deps EnricherDeps) *Enricher {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	shuffle := deps.Shuffle
	if shuffle == nil {
		shuffle = rand.Shuffle
	}
	return &Enricher{
		store:      deps.Store,
		gateway:    deps.Gateway,
		resolver:   deps.Resolver,
		images:     deps.Images,
		repository: deps.Repository,
		logger:     deps.Logger,
		now:        now,
		shuffle:    shuffle,
	}
}

// ProcessBatch fetches every pending post, shuffles the batch, and enriches
// the posts one at a time. The shuffle avoids hammering one source pattern in
// a fixed order across runs; processing stays strictly sequential so the
// external rate limits see one call at a time.
func (e *Enricher) ProcessBatch(ctx context.Context) (Stats, error) {
	pending, err := e.fetchAllPending(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("fetch pending: %w", err)
	}

	pending, err = e.dropAlreadyEnriched(ctx, pending)
	if err != nil {
		return Stats{}, fmt.Errorf("filter enriched: %w", err)
	}

	e.shuffle(len(pending), func(i, j int) {
		pending[i], pending[j] = pending[j], pending[i]
	})

	var stats Stats
	for _, article := range pending {
		switch e.processOne(ctx, article) {
		case OutcomeDone:
			stats.Done++
		case OutcomeSkipped:
			stats.Skipped++
		case OutcomeFailed:
			stats.Failed++
		}
	}

	e.info("batch finished", "done", stats.Done, "skipped", stats.Skipped, "failed", stats.Failed)
	return stats, nil
}

// ProcessByID enriches a single post.
func (e *Enricher) ProcessByID(ctx context.Context, id int) (Outcome, error) {
	article, err := e.store.FetchByID(ctx, id)
	if err != nil {
		return OutcomeFailed, fmt.Errorf("fetch post %d: %w", id, err)
	}
	return e.processOne(ctx, article), nil
}

func (e *Enricher) fetchAllPending(ctx context.Context) ([]domain.RawArticle, error) {
	var all []domain.RawArticle
	for page := 1; ; page++ {
		batch, err := e.store.FetchPending(ctx, page, pendingPageSize)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", page, err)
		}
		all = append(all, batch...)
		if len(batch) < pendingPageSize {
			return all, nil
		}
	}
}

func (e *Enricher) dropAlreadyEnriched(ctx context.Context, articles []domain.RawArticle) ([]domain.RawArticle, error) {
	if e.repository == nil || len(articles) == 0 {
		return articles, nil
	}

	ids := make([]int, len(articles))
	for i, article := range articles {
		ids[i] = article.ID
	}

	done, err := e.repository.AlreadyEnriched(ctx, ids)
	if err != nil {
		return nil, err
	}

	kept := articles[:0]
	for _, article := range articles {
		if !done[article.ID] {
			kept = append(kept, article)
		}
	}
	return kept, nil
}

// processOne runs the per-post state machine. Every failure is absorbed here:
// it is logged with the post id and reported as an outcome, never propagated.
func (e *Enricher) processOne(ctx context.Context, article domain.RawArticle) Outcome {
	raw, err := e.gateway.Analyze(ctx, e.buildAnalysisPrompt(article))
	if err != nil {
		e.warn("analysis call failed", "post", article.ID, "error", err)
		return OutcomeFailed
	}

	parsed, err := analysis.Parse(raw)
	if err != nil {
		e.warn("analysis unparseable", "post", article.ID, "error", err)
		return OutcomeFailed
	}

	assignment, relevant := e.resolver.Resolve(parsed)
	if !relevant {
		e.info("post out of domain, skipping", "post", article.ID)
		return OutcomeSkipped
	}

	outcome := domain.ImageOutcome{Needed: false}
	if e.images != nil {
		outcome = e.images.Resolve(ctx, article, parsed)
	}

	status := domain.StatusDraft
	if article.HasCoverImage() || outcome.Resolved() {
		status = domain.StatusPublish
	}

	payload := domain.UpdatePayload{
		Categories: assignment.IDs(),
		Date:       e.publishDate(article),
		Content:    render.Render(parsed, article),
		Excerpt:    render.Excerpt(parsed, article),
		Status:     status,
		Meta:       e.buildMeta(article, parsed),
	}

	id, err := e.store.Update(ctx, article.ID, payload)
	if err != nil {
		e.warn("write-back failed", "post", article.ID, "error", err)
		return OutcomeFailed
	}
	if id <= 0 {
		e.warn("write-back returned no id", "post", article.ID,
			"error", fmt.Errorf("update response without id: %w", domain.ErrWrite))
		return OutcomeFailed
	}

	e.recordEnriched(ctx, article.ID, status)
	e.info("post enriched", "post", article.ID, "status", status,
		"categories", payload.Categories, "image", outcome)
	return OutcomeDone
}

// publishDate keeps the post's original publication date when the source
// supplied a parseable one, otherwise stamps the enrichment time.
func (e *Enricher) publishDate(article domain.RawArticle) time.Time {
	raw := strings.TrimSpace(article.PublishedAt)
	if raw == "" {
		return e.now()
	}

	layouts := []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed
		}
	}
	return e.now()
}

func (e *Enricher) buildMeta(article domain.RawArticle, parsed domain.Analysis) map[string]string {
	meta := make(map[string]string, len(article.Meta)+6)
	for k, v := range article.Meta {
		meta[k] = v
	}
	meta["ai_importance"] = fmt.Sprintf("%d", parsed.Importance)
	meta["ai_sentiment"] = parsed.Sentiment
	meta["ai_target_audience"] = parsed.TargetAudience
	meta["ai_tags"] = strings.Join(parsed.SuggestedTags, ",")
	meta["ai_description"] = parsed.Description
	meta["ai_enriched"] = "1"
	return meta
}

func (e *Enricher) buildAnalysisPrompt(article domain.RawArticle) string {
	names := e.resolver.CategoryNames()

	var b strings.Builder
	b.WriteString("あなたはクラフトビール専門ニュースサイトの編集者です。以下の記事を分析してください。\n\n")
	b.WriteString("タイトル: " + article.Title + "\n")
	if article.SourceName != "" {
		b.WriteString("出典: " + article.SourceName + "\n")
	}
	b.WriteString("\n本文:\n" + article.Content + "\n\n")
	b.WriteString("カテゴリは次から1つ選んでください: " + strings.Join(names, " / ") + "\n")
	b.WriteString(`JSONのみで回答してください:
{
  "summary": "記事の要約",
  "summary_points": ["要点1", "要点2", "要点3"],
  "importance": 1-5の整数,
  "sentiment": "positive|neutral|negative",
  "target_audience": "想定読者",
  "suggested_tags": ["タグ"],
  "category": "カテゴリ名",
  "is_beer_related": true/false,
  "content_description": "記事内容の短い説明"
}`)
	return b.String()
}

func (e *Enricher) recordEnriched(ctx context.Context, postID int, status domain.Status) {
	if e.repository == nil {
		return
	}
	record := domain.EnrichmentRecord{PostID: postID, Status: status, EnrichedAt: e.now()}
	if err := e.repository.SaveEnriched(ctx, record); err != nil {
		e.warn("enrichment record not saved", "post", postID, "error", err)
	}
}

func (e *Enricher) info(msg string, args ...any) {
	if e.logger != nil {
		e.logger.Info(msg, args...)
	}
}

func (e *Enricher) warn(msg string, args ...any) {
	if e.logger != nil {
		e.logger.Warn(msg, args...)
	}
}
