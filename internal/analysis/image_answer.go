package analysis

import (
	"encoding/json"
	"fmt"
	"strings"

	"BrewPress/internal/domain"
)

// ImageAnswer is the model's verdict when asked to pick a cover image URL out
// of a post's raw HTML.
type ImageAnswer struct {
	Found    bool   `json:"found"`
	ImageURL string `json:"image_url"`
}

// ParseImageAnswer extracts the image verdict with the same prose tolerance
// as Parse. An answer claiming found without a usable URL counts as not found.
func ParseImageAnswer(raw string) (ImageAnswer, error) {
	object, ok := firstJSONObject(stripFences(raw))
	if !ok {
		return ImageAnswer{}, fmt.Errorf("no JSON object in image answer: %w", domain.ErrParse)
	}

	var answer ImageAnswer
	if err := json.Unmarshal([]byte(object), &answer); err != nil {
		return ImageAnswer{}, fmt.Errorf("decode image answer: %v: %w", err, domain.ErrParse)
	}

	answer.ImageURL = strings.TrimSpace(answer.ImageURL)
	if answer.ImageURL == "" || !strings.HasPrefix(answer.ImageURL, "http") {
		answer.Found = false
		answer.ImageURL = ""
	}
	return answer, nil
}
