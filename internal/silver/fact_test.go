package silver

import (
	"testing"
)

// dimensionsFor mirrors the dimension build: every distinct natural
// value in the cleaned rows gets a surrogate key, and neighbourhoods
// are keyed per city but only when a polygon exists for the name.
func dimensionsFor(cleaned []CleanedListingPeriod, polygonNames ...string) *Dimensions {
	dims := &Dimensions{
		CityID:          make(map[string]int),
		PropertyID:      make(map[string]int),
		RoomTypeID:      make(map[string]int),
		DateID:          make(map[string]int),
		NeighbourhoodID: make(map[NeighbourhoodKey]int),
	}
	for i, v := range distinctSorted(cleaned, func(c CleanedListingPeriod) string { return c.City }) {
		dims.CityID[v] = i
	}
	for i, v := range distinctSorted(cleaned, func(c CleanedListingPeriod) string { return c.PropertyType }) {
		dims.PropertyID[v] = i
	}
	for i, v := range distinctSorted(cleaned, func(c CleanedListingPeriod) string { return c.RoomType }) {
		dims.RoomTypeID[v] = i
	}
	ordered, _ := SortPeriods(distinctSorted(cleaned, func(c CleanedListingPeriod) string { return c.Period }))
	for i, v := range ordered {
		dims.DateID[v] = i
	}

	hasPolygon := make(map[string]bool, len(polygonNames))
	for _, name := range polygonNames {
		hasPolygon[name] = true
	}
	next := 0
	for _, c := range cleaned {
		if !hasPolygon[c.Neighbourhood] {
			continue
		}
		key := NeighbourhoodKey{Name: c.Neighbourhood, CityID: dims.CityID[c.City]}
		if _, ok := dims.NeighbourhoodID[key]; !ok {
			dims.NeighbourhoodID[key] = next
			next++
		}
	}
	return dims
}

// Every row that survives cleaning must resolve against dimensions
// derived from the same rows; only a missing polygon may drop a row,
// and that drop is never an error.
func TestResolveKeysReferentialCompleteness(t *testing.T) {
	raw := []RawSnapshot{baseRaw(1), baseRaw(2), baseRaw(3)}
	raw[1].City = strPtr("Barcelona")
	raw[1].Neighbourhood = strPtr("Gràcia")
	raw[2].Quarter = strPtr("Q4")
	raw[2].Year = i64Ptr(23)

	cleaned := NewCleaner(discardLogger()).Clean(raw)
	if len(cleaned) != 3 {
		t.Fatalf("expected 3 cleaned rows, got %d", len(cleaned))
	}

	dims := dimensionsFor(cleaned, "centro", "gràcia")
	for _, c := range cleaned {
		keys, ok, err := resolveKeys(c, dims)
		if err != nil {
			t.Fatalf("listing %d period %s: %v", c.ID, c.Period, err)
		}
		if !ok {
			t.Fatalf("listing %d dropped despite a matching polygon", c.ID)
		}
		if keys.dateID != dims.DateID[c.Period] {
			t.Errorf("listing %d date_id = %d, want %d", c.ID, keys.dateID, dims.DateID[c.Period])
		}
		if keys.cityID != dims.CityID[c.City] {
			t.Errorf("listing %d city_id = %d, want %d", c.ID, keys.cityID, dims.CityID[c.City])
		}
	}
}

func TestResolveKeysMissingNeighbourhoodDrops(t *testing.T) {
	cleaned := NewCleaner(discardLogger()).Clean([]RawSnapshot{baseRaw(1)})
	if len(cleaned) != 1 {
		t.Fatalf("expected 1 cleaned row, got %d", len(cleaned))
	}

	dims := dimensionsFor(cleaned) // no polygons at all
	_, ok, err := resolveKeys(cleaned[0], dims)
	if err != nil {
		t.Fatalf("missing polygon must drop, not error: %v", err)
	}
	if ok {
		t.Error("row with no matching polygon resolved")
	}
}

func TestResolveKeysUnknownDimensionValueErrors(t *testing.T) {
	cleaned := NewCleaner(discardLogger()).Clean([]RawSnapshot{baseRaw(1)})
	if len(cleaned) != 1 {
		t.Fatalf("expected 1 cleaned row, got %d", len(cleaned))
	}

	dims := dimensionsFor(cleaned, "centro")
	stranger := cleaned[0]
	stranger.PropertyType = "Castle"

	if _, _, err := resolveKeys(stranger, dims); err == nil {
		t.Error("expected an error for a property type absent from its dimension")
	}
}
