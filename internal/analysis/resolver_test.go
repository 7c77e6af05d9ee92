package analysis

import (
	"reflect"
	"testing"

	"BrewPress/internal/domain"
)

func TestResolveFeaturedThreshold(t *testing.T) {
	t.Parallel()

	r := NewResolver(nil, 0, 0)
	for importance := 1; importance <= 5; importance++ {
		a := domain.Analysis{BeerRelated: true, Category: "深掘り", Importance: importance}
		assignment, ok := r.Resolve(a)
		if !ok {
			t.Fatalf("importance %d: unexpected skip", importance)
		}
		hasFeatured := assignment.Featured == DefaultCategoryFeatured
		if importance >= 4 && !hasFeatured {
			t.Fatalf("importance %d: featured category missing", importance)
		}
		if importance < 4 && hasFeatured {
			t.Fatalf("importance %d: featured category assigned", importance)
		}
	}
}

func TestResolveCategoryTable(t *testing.T) {
	t.Parallel()

	r := NewResolver(nil, 0, 0)
	cases := []struct {
		category string
		want     int
	}{
		{"新製品", DefaultCategoryNewProducts},
		{"業界ニュース", DefaultCategoryIndustryNews},
		{"イベント", DefaultCategoryEvents},
		{"深掘り", DefaultCategoryDeepDive},
		{"ビアカルチャー", DefaultCategoryBeerCulture},
		{"未知のカテゴリ", DefaultCategoryIndustryNews},
		{"", DefaultCategoryIndustryNews},
	}

	for _, tc := range cases {
		a := domain.Analysis{BeerRelated: true, Category: tc.category, Importance: 2}
		assignment, ok := r.Resolve(a)
		if !ok {
			t.Fatalf("category %q: unexpected skip", tc.category)
		}
		if assignment.Primary != tc.want {
			t.Fatalf("category %q: expected id %d, got %d", tc.category, tc.want, assignment.Primary)
		}
		if assignment.Featured != 0 {
			t.Fatalf("category %q: unexpected featured id %d", tc.category, assignment.Featured)
		}
	}
}

func TestResolveSkipsIrrelevant(t *testing.T) {
	t.Parallel()

	r := NewResolver(nil, 0, 0)
	a := domain.Analysis{BeerRelated: false, Category: "深掘り", Importance: 5}

	if _, ok := r.Resolve(a); ok {
		t.Fatal("expected skip for out-of-domain post")
	}
}

func TestResolveDeterministic(t *testing.T) {
	t.Parallel()

	r := NewResolver(nil, 0, 0)
	a := domain.Analysis{BeerRelated: true, Category: "深掘り", Importance: 5}

	first, _ := r.Resolve(a)
	for i := 0; i < 10; i++ {
		again, _ := r.Resolve(a)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("resolution drifted: %v vs %v", first, again)
		}
	}

	if want := []int{DefaultCategoryDeepDive, DefaultCategoryFeatured}; !reflect.DeepEqual(first.IDs(), want) {
		t.Fatalf("unexpected id set: %v", first.IDs())
	}
}

func TestResolveCustomTable(t *testing.T) {
	t.Parallel()

	r := NewResolver(map[string]int{"深掘り": 99}, 7, 8)

	assignment, ok := r.Resolve(domain.Analysis{BeerRelated: true, Category: "深掘り", Importance: 4})
	if !ok {
		t.Fatal("unexpected skip")
	}
	if assignment.Primary != 99 || assignment.Featured != 8 {
		t.Fatalf("unexpected assignment: %+v", assignment)
	}

	assignment, _ = r.Resolve(domain.Analysis{BeerRelated: true, Category: "その他", Importance: 1})
	if assignment.Primary != 7 {
		t.Fatalf("expected custom fallback 7, got %d", assignment.Primary)
	}
}
