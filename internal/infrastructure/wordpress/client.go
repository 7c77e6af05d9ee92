package wordpress

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"BrewPress/internal/domain"
	"BrewPress/internal/ports"
)

// Client talks to the site's REST API for posts and media.
type Client struct {
	baseURL  string
	username string
	password string
	http     *http.Client
}

var _ ports.ContentStore = (*Client)(nil)

// NewClient wires base URL and application-password credentials.
func NewClient(baseURL, username, password string) *Client {
	return &Client{
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		username: username,
		password: password,
		http:     &http.Client{Timeout: 30 * time.Second},
	}
}

// post is the wire shape of a WordPress post, trimmed to what the pipeline reads.
type post struct {
	ID            int            `json:"id"`
	Date          string         `json:"date"`
	Status        string         `json:"status"`
	FeaturedMedia int            `json:"featured_media"`
	Title         rendered       `json:"title"`
	Content       rendered       `json:"content"`
	Meta          map[string]any `json:"meta"`
}

type rendered struct {
	Rendered string `json:"rendered"`
}

// FetchPending returns one page of draft posts awaiting enrichment. An empty
// or short page signals the end of pagination to the caller.
func (c *Client) FetchPending(ctx context.Context, page, perPage int) ([]domain.RawArticle, error) {
	query := url.Values{}
	query.Set("status", "draft")
	query.Set("page", strconv.Itoa(page))
	query.Set("per_page", strconv.Itoa(perPage))
	query.Set("orderby", "date")
	query.Set("context", "edit")

	var posts []post
	err := c.doJSON(ctx, http.MethodGet, "/wp-json/wp/v2/posts?"+query.Encode(), nil, &posts)
	if err != nil {
		// WordPress answers 400 rest_post_invalid_page_number past the last
		// page; treat it as an empty page.
		if isInvalidPage(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch pending page %d: %w: %w", page, domain.ErrNetwork, err)
	}

	articles := make([]domain.RawArticle, 0, len(posts))
	for _, p := range posts {
		articles = append(articles, toRawArticle(p))
	}
	return articles, nil
}

// FetchByID loads a single post with edit context.
func (c *Client) FetchByID(ctx context.Context, id int) (domain.RawArticle, error) {
	var p post
	err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/wp-json/wp/v2/posts/%d?context=edit", id), nil, &p)
	if err != nil {
		if isNotFound(err) {
			return domain.RawArticle{}, fmt.Errorf("post %d: %w", id, domain.ErrNotFound)
		}
		return domain.RawArticle{}, fmt.Errorf("fetch post %d: %w: %w", id, domain.ErrNetwork, err)
	}
	return toRawArticle(p), nil
}

// Update writes the enriched payload back and returns the id the store
// acknowledged with.
func (c *Client) Update(ctx context.Context, id int, payload domain.UpdatePayload) (int, error) {
	body := map[string]any{
		"categories": payload.Categories,
		"date":       payload.Date.Format("2006-01-02T15:04:05"),
		"content":    payload.Content,
		"excerpt":    payload.Excerpt,
		"status":     string(payload.Status),
	}
	if len(payload.Meta) > 0 {
		body["meta"] = payload.Meta
	}

	var resp struct {
		ID int `json:"id"`
	}
	if err := c.doJSON(ctx, http.MethodPost, fmt.Sprintf("/wp-json/wp/v2/posts/%d", id), body, &resp); err != nil {
		return 0, fmt.Errorf("update post %d: %w: %w", id, domain.ErrNetwork, err)
	}
	if resp.ID == 0 {
		return 0, fmt.Errorf("update post %d acknowledged without id: %w", id, domain.ErrWrite)
	}
	return resp.ID, nil
}

// UploadMedia pushes image bytes to the media endpoint and names them.
func (c *Client) UploadMedia(ctx context.Context, data []byte, filename, title, altText string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/wp-json/wp/v2/media", bytes.NewReader(data))
	if err != nil {
		return 0, fmt.Errorf("build media request: %w", err)
	}
	req.SetBasicAuth(c.username, c.password)
	req.Header.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	req.Header.Set("Content-Type", contentTypeFor(filename))

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("upload media: %w: %w", domain.ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return 0, fmt.Errorf("upload media: %w", statusError(resp))
	}

	var media struct {
		ID int `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&media); err != nil {
		return 0, fmt.Errorf("decode media response: %w", err)
	}
	if media.ID == 0 {
		return 0, fmt.Errorf("media upload acknowledged without id: %w", domain.ErrWrite)
	}

	// Title and alt text land in a follow-up write; losing them is not worth
	// failing the upload over.
	_ = c.doJSON(ctx, http.MethodPost, fmt.Sprintf("/wp-json/wp/v2/media/%d", media.ID),
		map[string]any{"title": title, "alt_text": altText}, nil)

	return media.ID, nil
}

// SetFeaturedMedia attaches an uploaded image as the post's cover.
func (c *Client) SetFeaturedMedia(ctx context.Context, postID, mediaID int) error {
	err := c.doJSON(ctx, http.MethodPost, fmt.Sprintf("/wp-json/wp/v2/posts/%d", postID),
		map[string]any{"featured_media": mediaID}, nil)
	if err != nil {
		return fmt.Errorf("set featured media on post %d: %w: %w", postID, domain.ErrNetwork, err)
	}
	return nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, payload, v any) error {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal payload: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.SetBasicAuth(c.username, c.password)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return statusError(resp)
	}

	if v == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// apiError carries the status line and the REST error code WordPress returns.
type apiError struct {
	StatusCode int
	Status     string
	Code       string
}

func (e *apiError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("store returned %s (%s)", e.Status, e.Code)
	}
	return fmt.Sprintf("store returned %s", e.Status)
}

func statusError(resp *http.Response) error {
	apiErr := &apiError{StatusCode: resp.StatusCode, Status: resp.Status}

	var body struct {
		Code string `json:"code"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err := json.Unmarshal(raw, &body); err == nil {
		apiErr.Code = body.Code
	}
	return apiErr
}

func isInvalidPage(err error) bool {
	var apiErr *apiError
	return errors.As(err, &apiErr) && apiErr.Code == "rest_post_invalid_page_number"
}

func isNotFound(err error) bool {
	var apiErr *apiError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

func contentTypeFor(filename string) string {
	switch {
	case strings.HasSuffix(filename, ".png"):
		return "image/png"
	case strings.HasSuffix(filename, ".gif"):
		return "image/gif"
	case strings.HasSuffix(filename, ".webp"):
		return "image/webp"
	default:
		return "image/jpeg"
	}
}

func toRawArticle(p post) domain.RawArticle {
	meta := make(map[string]string, len(p.Meta))
	for k, v := range p.Meta {
		switch value := v.(type) {
		case string:
			meta[k] = value
		case float64:
			meta[k] = strconv.FormatFloat(value, 'f', -1, 64)
		case bool:
			meta[k] = strconv.FormatBool(value)
		}
	}

	return domain.RawArticle{
		ID:            p.ID,
		Title:         p.Title.Rendered,
		Content:       p.Content.Rendered,
		FeaturedMedia: p.FeaturedMedia,
		Status:        domain.Status(p.Status),
		SourceName:    meta["source_name"],
		SourceURL:     meta["source_url"],
		OriginalLink:  meta["original_link"],
		PublishedAt:   firstNonEmpty(meta["original_date"], p.Date),
		Meta:          meta,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
