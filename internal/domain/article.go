package domain

import "time"

// Status enumerates the write-back states a post can end up in.
type Status string

const (
	StatusDraft   Status = "draft"
	StatusPublish Status = "publish"
)

// RawArticle is a pending post as fetched from the content store. The core
// never mutates it; enrichment output goes into a fresh UpdatePayload.
type RawArticle struct {
	ID            int
	Title         string
	Content       string
	FeaturedMedia int
	Status        Status
	SourceName    string
	SourceURL     string
	OriginalLink  string
	PublishedAt   string
	Meta          map[string]string
}

// HasCoverImage reports whether the post already carries a featured image.
func (a RawArticle) HasCoverImage() bool {
	return a.FeaturedMedia > 0
}

// Sentiment values the analysis prompt is allowed to answer with.
const (
	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"
)

// Analysis is the validated record extracted from the model's answer.
type Analysis struct {
	Summary        string   `json:"summary"`
	SummaryPoints  []string `json:"summary_points"`
	Importance     int      `json:"importance"`
	Sentiment      string   `json:"sentiment"`
	TargetAudience string   `json:"target_audience"`
	SuggestedTags  []string `json:"suggested_tags"`
	Category       string   `json:"category"`
	BeerRelated    bool     `json:"is_beer_related"`
	Description    string   `json:"content_description"`
}

// CategoryAssignment is the resolved classification for one post: the primary
// category id plus, for high-importance posts, the featured category id.
type CategoryAssignment struct {
	Primary  int
	Featured int // 0 when not assigned
}

// IDs returns the assignment as the id set the store update expects.
func (c CategoryAssignment) IDs() []int {
	if c.Featured > 0 {
		return []int{c.Primary, c.Featured}
	}
	return []int{c.Primary}
}

// ImageOutcome reports what the image resolver did for one post.
type ImageOutcome struct {
	Needed   bool
	MediaID  int
	Attached bool
	Skipped  string // reason, empty unless skipped
}

// Resolved reports whether a cover image was uploaded for the post.
func (o ImageOutcome) Resolved() bool {
	return o.Needed && o.MediaID > 0
}

// Image-skip reasons.
const (
	SkipNoImageFound   = "no-image-found"
	SkipDownloadFailed = "download-failed"
	SkipUploadFailed   = "upload-failed"
)

// UpdatePayload is the write-back record for one enriched post.
type UpdatePayload struct {
	Categories []int
	Date       time.Time
	Content    string
	Excerpt    string
	Status     Status
	Meta       map[string]string
}

// EnrichmentRecord is persisted per completed post so later runs can skip it.
type EnrichmentRecord struct {
	PostID     int
	Status     Status
	EnrichedAt time.Time
}
