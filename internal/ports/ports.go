package ports

import (
	"context"

	"BrewPress/internal/domain"
)

// ContentStore is the WordPress-style backend the pipeline reads from and
// writes enriched posts back to.
type ContentStore interface {
	FetchPending(ctx context.Context, page, perPage int) ([]domain.RawArticle, error)
	FetchByID(ctx context.Context, id int) (domain.RawArticle, error)
	Update(ctx context.Context, id int, payload domain.UpdatePayload) (int, error)
	UploadMedia(ctx context.Context, data []byte, filename, title, altText string) (int, error)
	SetFeaturedMedia(ctx context.Context, postID, mediaID int) error
}

// Generator is a single prompt/response round trip against a generative model.
// Implementations flag rate-limit failures so the gateway can retry them.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Downloader fetches remote image bytes with a bounded timeout.
type Downloader interface {
	Download(ctx context.Context, url string) ([]byte, error)
}

// EnrichmentRepository records which posts earlier runs already enriched.
type EnrichmentRepository interface {
	AlreadyEnriched(ctx context.Context, ids []int) (map[int]bool, error)
	SaveEnriched(ctx context.Context, record domain.EnrichmentRecord) error
}
