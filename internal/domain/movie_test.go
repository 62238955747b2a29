package domain

import "testing"

func TestEnrich_UnknownRatingKeepsListingFields(t *testing.T) {
	m := Enrich(ListingItem{Title: "Movie B", VenueCount: 1}, UnknownRating())
	if m.Title != "Movie B" || m.VenueCount != 1 {
		t.Fatalf("排片字段不应丢失：%+v", m)
	}
	if m.Rating != "0" || m.Votes != 0 || m.Found {
		t.Fatalf("未知评分应为 0/0：%+v", m)
	}
}

func TestEnrich_EmptyRatingTextBecomesZero(t *testing.T) {
	m := Enrich(ListingItem{Title: "X"}, RatingInfo{Rating: "  ", Votes: 3, Found: true})
	if m.Rating != "0" {
		t.Fatalf("空评分文本应规范化为 0，实际 %q", m.Rating)
	}
}

func TestRatingValue(t *testing.T) {
	cases := map[string]float64{
		"7.5":   7.5,
		" 8.1 ": 8.1,
		"6,9":   6.9,
		"0":     0,
		"":      0,
		"n/a":   0,
	}
	for in, want := range cases {
		got := EnrichedMovie{Rating: in}.RatingValue()
		if got != want {
			t.Fatalf("RatingValue(%q)=%v，期望 %v", in, got, want)
		}
	}
}
