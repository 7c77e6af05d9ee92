package analysis

import (
	"sort"

	"BrewPress/internal/domain"
)

// Default category ids as provisioned on the production site.
const (
	DefaultCategoryNewProducts  = 12
	DefaultCategoryIndustryNews = 13
	DefaultCategoryEvents       = 14
	DefaultCategoryDeepDive     = 15
	DefaultCategoryBeerCulture  = 16
	DefaultCategoryFeatured     = 21
)

// featuredThreshold is the importance score at which a post additionally
// lands in the featured category.
const featuredThreshold = 4

// Resolver maps analysis output onto the site's fixed category set. It holds
// an immutable copy of the lookup table and performs no I/O.
type Resolver struct {
	categories map[string]int
	fallback   int
	featured   int
}

// DefaultCategoryTable is the site's five-entry name-to-id mapping.
func DefaultCategoryTable() map[string]int {
	return map[string]int{
		"新製品":     DefaultCategoryNewProducts,
		"業界ニュース":  DefaultCategoryIndustryNews,
		"イベント":    DefaultCategoryEvents,
		"深掘り":     DefaultCategoryDeepDive,
		"ビアカルチャー": DefaultCategoryBeerCulture,
	}
}

// NewResolver copies the lookup table so later config mutation cannot leak in.
// Zero fallback/featured ids revert to the site defaults.
func NewResolver(table map[string]int, fallback, featured int) *Resolver {
	if len(table) == 0 {
		table = DefaultCategoryTable()
	}
	categories := make(map[string]int, len(table))
	for name, id := range table {
		categories[name] = id
	}
	if fallback == 0 {
		fallback = DefaultCategoryIndustryNews
	}
	if featured == 0 {
		featured = DefaultCategoryFeatured
	}
	return &Resolver{categories: categories, fallback: fallback, featured: featured}
}

// CategoryNames lists the table's names in sorted order, for prompt building.
func (r *Resolver) CategoryNames() []string {
	names := make([]string, 0, len(r.categories))
	for name := range r.categories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve decides the category assignment for one analysis. The second result
// is false when the post is out of domain; the caller must drop the post
// without any write-back.
func (r *Resolver) Resolve(a domain.Analysis) (domain.CategoryAssignment, bool) {
	if !a.BeerRelated {
		return domain.CategoryAssignment{}, false
	}

	assignment := domain.CategoryAssignment{Primary: r.fallback}
	if id, ok := r.categories[a.Category]; ok {
		assignment.Primary = id
	}
	if a.Importance >= featuredThreshold {
		assignment.Featured = r.featured
	}
	return assignment, true
}
