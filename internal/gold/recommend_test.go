package gold

import "testing"

func TestSummarizeRecommendationsPriceRange(t *testing.T) {
	rows := []FactRow{
		factRow(1, 0, "Early Spring", 15),
		factRow(2, 0, "Early Spring", 150),
	}

	summaries := SummarizeRecommendations(rows)
	if len(summaries) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(summaries))
	}
	if summaries[0].PriceRange != RangeExtremelyCheap {
		t.Errorf("price range = %q, want %q", summaries[0].PriceRange, RangeExtremelyCheap)
	}
	if summaries[1].PriceRange != RangeModerate {
		t.Errorf("price range = %q, want %q", summaries[1].PriceRange, RangeModerate)
	}
}

func TestSummarizeRecommendationsStickyPictureAndAmenities(t *testing.T) {
	older := factRow(1, 0, "Early Winter", 100)
	older.PictureURL = "old.jpg"
	older.Amenities = ""

	newer := factRow(1, 1, "Early Spring", 120)
	newer.PictureURL = "new.jpg"
	newer.Amenities = `{"Connectivity":["wifi"]}`

	summaries := SummarizeRecommendations([]FactRow{older, newer})
	if len(summaries) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(summaries))
	}
	for _, s := range summaries {
		if s.PictureURL != "new.jpg" {
			t.Errorf("season %s picture = %q, want latest new.jpg", s.Season, s.PictureURL)
		}
		if s.Amenities != `{"Connectivity":["wifi"]}` {
			t.Errorf("season %s amenities = %q, want latest non-empty", s.Season, s.Amenities)
		}
	}
}

func TestSummarizeRecommendationsOnePerListingSeason(t *testing.T) {
	rows := []FactRow{
		factRow(1, 0, "Early Spring", 80),
		factRow(1, 4, "Early Spring", 95),
	}

	summaries := SummarizeRecommendations(rows)
	if len(summaries) != 1 {
		t.Fatalf("expected 1 row per (listing, season), got %d", len(summaries))
	}
	if summaries[0].Price != 95 {
		t.Errorf("price = %v, want most recent period's 95", summaries[0].Price)
	}
}
