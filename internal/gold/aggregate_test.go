package gold

import (
	"reflect"
	"testing"
)

func factRow(id int64, dateID int, season string, price float64) FactRow {
	return FactRow{
		ID:            id,
		DateID:        dateID,
		Season:        season,
		Neighbourhood: "old town",
		CityName:      "Madrid",
		PropertyType:  "Entire home",
		RoomType:      "Entire home/apt",
		Accommodates:  2,
		Bedrooms:      1,
		Bathrooms:     1,
		Price:         price,
	}
}

func TestAggregateListingsLatestWinsAndMeans(t *testing.T) {
	older := factRow(1, 0, "Early Winter", 100)
	older.PictureURL = "old.jpg"
	older.Amenities = `{"Connectivity":["wifi"],"Outdoor & Leisure":["pool"]}`

	newer := factRow(1, 1, "Early Spring", 120)
	newer.PictureURL = "new.jpg"
	newer.Amenities = `{"Connectivity":["wifi"]}`

	aggs := AggregateListings([]FactRow{older, newer})
	if len(aggs) != 1 {
		t.Fatalf("expected 1 aggregate, got %d", len(aggs))
	}
	a := aggs[0]

	if a.Price != 110 {
		t.Errorf("mean price = %v, want 110", a.Price)
	}
	if a.PictureURL != "new.jpg" {
		t.Errorf("picture = %q, want most recent period's", a.PictureURL)
	}
	if a.Amenities != `{"Connectivity":["wifi"]}` {
		t.Errorf("amenities = %q, want most recent period's", a.Amenities)
	}
	expected := map[string]float64{"Early Winter": 100, "Early Spring": 120}
	if !reflect.DeepEqual(a.SeasonalPrices, expected) {
		t.Errorf("seasonal prices = %v, want %v", a.SeasonalPrices, expected)
	}
}

func TestAggregateListingsSeasonalPricesMostRecentWins(t *testing.T) {
	// Same season observed in two different years: the later period's
	// price must win.
	rows := []FactRow{
		factRow(1, 0, "Early Spring", 80),
		factRow(1, 4, "Early Spring", 95),
		factRow(1, 2, "Early Winter", 70),
	}

	aggs := AggregateListings(rows)
	if len(aggs) != 1 {
		t.Fatalf("expected 1 aggregate, got %d", len(aggs))
	}
	sp := aggs[0].SeasonalPrices
	if len(sp) != 2 {
		t.Fatalf("seasonal prices has %d keys, want 2 (one per distinct season)", len(sp))
	}
	if sp["Early Spring"] != 95 {
		t.Errorf("Early Spring price = %v, want most recent 95", sp["Early Spring"])
	}
	if sp["Early Winter"] != 70 {
		t.Errorf("Early Winter price = %v, want 70", sp["Early Winter"])
	}
}

func TestAggregateListingsRoundsCountMeans(t *testing.T) {
	a := factRow(1, 0, "Early Spring", 100)
	a.Bedrooms = 1
	a.Accommodates = 2

	b := factRow(1, 1, "Early Summer", 100)
	b.Bedrooms = 2
	b.Accommodates = 3

	aggs := AggregateListings([]FactRow{a, b})
	if got := aggs[0].Bedrooms; got != 2 {
		t.Errorf("bedrooms = %d, want mean 1.5 rounded to 2", got)
	}
	if got := aggs[0].Accommodates; got != 3 {
		t.Errorf("accommodates = %d, want mean 2.5 rounded to 3", got)
	}
}

func TestAggregateListingsReviewScore(t *testing.T) {
	score := 4.0
	scored := factRow(1, 0, "Early Spring", 100)
	scored.ReviewScore = &score

	unscored := factRow(1, 1, "Early Summer", 100)
	unscored.ReviewMissing = true

	aggs := AggregateListings([]FactRow{scored, unscored})
	a := aggs[0]

	// Mean over observed scores only; missing periods don't dilute it.
	if a.ReviewScore == nil || *a.ReviewScore != 4.0 {
		t.Errorf("review score = %v, want 4.0", a.ReviewScore)
	}
	// review_missing is the rounded mean of the missing flags (0.5 -> 1).
	if a.ReviewMissing != 1 {
		t.Errorf("review missing = %d, want 1", a.ReviewMissing)
	}

	never := factRow(2, 0, "Early Spring", 100)
	never.ReviewMissing = true
	aggs = AggregateListings([]FactRow{never})
	if aggs[0].ReviewScore != nil {
		t.Errorf("review score = %v, want nil when never reviewed", aggs[0].ReviewScore)
	}
}

func TestAggregateListingsDeterministic(t *testing.T) {
	rows := []FactRow{
		factRow(3, 0, "Early Spring", 50),
		factRow(1, 1, "Early Summer", 75),
		factRow(1, 0, "Early Spring", 60),
		factRow(2, 1, "Early Summer", 90),
	}

	first := AggregateListings(rows)
	second := AggregateListings(rows)
	if !reflect.DeepEqual(first, second) {
		t.Error("repeated aggregation over the same input differs")
	}
	for i := 1; i < len(first); i++ {
		if first[i-1].ID >= first[i].ID {
			t.Fatalf("output not ordered by id: %v then %v", first[i-1].ID, first[i].ID)
		}
	}
}
