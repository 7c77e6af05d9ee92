package media

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"

	"BrewPress/internal/analysis"
	"BrewPress/internal/domain"
	"BrewPress/internal/ports"
)

const maxPromptCandidates = 10

// PromptRunner is the throttled model call the resolver uses once per post to
// pick an image URL.
type PromptRunner interface {
	Analyze(ctx context.Context, prompt string) (string, error)
}

// Resolver discovers, downloads, and uploads a cover image for posts that
// arrive without one.
type Resolver struct {
	runner     PromptRunner
	downloader ports.Downloader
	store      ports.ContentStore
	logger     *slog.Logger
}

// NewResolver wires the resolver's collaborators.
func NewResolver(runner PromptRunner, downloader ports.Downloader, store ports.ContentStore, logger *slog.Logger) *Resolver {
	return &Resolver{runner: runner, downloader: downloader, store: store, logger: logger}
}

// Resolve attaches a cover image when the post needs one. Every failure on
// the way degrades to a skip outcome rather than an error: a post without a
// cover is still publishable as draft. A successful upload whose attachment
// write fails still counts as resolved; the orphaned reference is logged and
// left in place.
func (r *Resolver) Resolve(ctx context.Context, article domain.RawArticle, a domain.Analysis) domain.ImageOutcome {
	if article.HasCoverImage() {
		return domain.ImageOutcome{Needed: false}
	}

	answer, err := r.discover(ctx, article, a)
	if err != nil || !answer.Found {
		if err != nil {
			r.warn("image discovery failed", "post", article.ID, "error", err)
		}
		return domain.ImageOutcome{Needed: true, Skipped: domain.SkipNoImageFound}
	}

	data, err := r.downloader.Download(ctx, answer.ImageURL)
	if err != nil {
		r.warn("image download failed", "post", article.ID, "url", answer.ImageURL, "error", err)
		return domain.ImageOutcome{Needed: true, Skipped: domain.SkipDownloadFailed}
	}

	filename := uploadFilename(answer.ImageURL)
	mediaID, err := r.store.UploadMedia(ctx, data, filename, article.Title, a.Description)
	if err != nil || mediaID <= 0 {
		r.warn("image upload failed", "post", article.ID, "error", err)
		return domain.ImageOutcome{Needed: true, Skipped: domain.SkipUploadFailed}
	}

	outcome := domain.ImageOutcome{Needed: true, MediaID: mediaID, Attached: true}
	if err := r.store.SetFeaturedMedia(ctx, article.ID, mediaID); err != nil {
		// Upload stands even when attachment fails; the media item stays
		// referenced by id in the outcome.
		r.warn("featured media attachment failed", "post", article.ID, "media", mediaID, "error", err)
		outcome.Attached = false
	}
	return outcome
}

func (r *Resolver) discover(ctx context.Context, article domain.RawArticle, a domain.Analysis) (analysis.ImageAnswer, error) {
	raw, err := r.runner.Analyze(ctx, buildImagePrompt(article, a))
	if err != nil {
		return analysis.ImageAnswer{}, fmt.Errorf("image prompt: %w", err)
	}
	return analysis.ParseImageAnswer(raw)
}

func buildImagePrompt(article domain.RawArticle, a domain.Analysis) string {
	var b strings.Builder
	b.WriteString("以下の記事HTMLから、アイキャッチ画像として最適な画像URLを1つ選んでください。\n")
	b.WriteString("記事内容: " + a.Description + "\n")

	if candidates := imageCandidates(article.Content); len(candidates) > 0 {
		b.WriteString("候補URL:\n")
		for _, c := range candidates {
			b.WriteString("- " + c + "\n")
		}
	}

	b.WriteString("\nHTML:\n" + article.Content + "\n\n")
	b.WriteString(`JSONのみで回答してください: {"found": true/false, "image_url": "..."}`)
	return b.String()
}

// imageCandidates lists the post's <img> sources so the model picks from real
// URLs instead of inventing one.
func imageCandidates(content string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return nil
	}

	var candidates []string
	seen := map[string]struct{}{}
	doc.Find("img[src]").Each(func(_ int, sel *goquery.Selection) {
		src, _ := sel.Attr("src")
		src = strings.TrimSpace(src)
		if !strings.HasPrefix(src, "http") {
			return
		}
		if _, ok := seen[src]; ok {
			return
		}
		seen[src] = struct{}{}
		if len(candidates) < maxPromptCandidates {
			candidates = append(candidates, src)
		}
	})
	return candidates
}

func uploadFilename(imageURL string) string {
	ext := ".jpg"
	if parsed, err := url.Parse(imageURL); err == nil {
		if e := strings.ToLower(path.Ext(parsed.Path)); e == ".png" || e == ".gif" || e == ".webp" || e == ".jpeg" || e == ".jpg" {
			ext = e
		}
	}
	return "cover-" + uuid.NewString() + ext
}

func (r *Resolver) warn(msg string, args ...any) {
	if r.logger != nil {
		r.logger.Warn(msg, args...)
	}
}
