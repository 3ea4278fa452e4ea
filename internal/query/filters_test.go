package query

import (
	"reflect"
	"testing"
)

func TestWhereClauseEmpty(t *testing.T) {
	clause, args := Filters{}.recommendationsClause()
	if clause != "WHERE 1=1" {
		t.Errorf("clause = %q, want WHERE 1=1", clause)
	}
	if len(args) != 0 {
		t.Errorf("args = %v, want none", args)
	}
}

func TestRecommendationsClauseNumbering(t *testing.T) {
	f := Filters{
		City:         "Madrid",
		Season:       "Early Spring",
		Accommodates: 2,
		Nights:       7,
		PriceRange:   "Cheap ($50-$100)",
	}
	clause, args := f.recommendationsClause()

	expected := "WHERE 1=1 AND city_name = $1 AND season = $2 AND accommodates = $3" +
		" AND minimum_nights <= $4 AND maximum_nights >= $5 AND price_range = $6"
	if clause != expected {
		t.Errorf("clause = %q, want %q", clause, expected)
	}

	expectedArgs := []interface{}{"Madrid", "Early Spring", 2, 7, 7, "Cheap ($50-$100)"}
	if !reflect.DeepEqual(args, expectedArgs) {
		t.Errorf("args = %v, want %v", args, expectedArgs)
	}
}

// The aggregated catalog table has no season or price_range column, so
// those filters must never reach its SQL even when set; the remaining
// placeholders renumber from $1 without gaps.
func TestListingsClauseOmitsSeasonalPredicates(t *testing.T) {
	f := Filters{
		City:       "Madrid",
		Season:     "Early Spring",
		Nights:     3,
		PriceRange: "Very Expensive (>$300)",
	}
	clause, args := f.listingsClause()

	expected := "WHERE 1=1 AND city_name = $1 AND minimum_nights <= $2 AND maximum_nights >= $3"
	if clause != expected {
		t.Errorf("clause = %q, want %q", clause, expected)
	}

	expectedArgs := []interface{}{"Madrid", 3, 3}
	if !reflect.DeepEqual(args, expectedArgs) {
		t.Errorf("args = %v, want %v", args, expectedArgs)
	}
}

func TestWhereClauseApostropheStaysParameterized(t *testing.T) {
	f := Filters{Neighbourhood: "l'antiga esquerra"}
	clause, args := f.listingsClause()

	if clause != "WHERE 1=1 AND neighbourhood = $1" {
		t.Errorf("clause = %q", clause)
	}
	if len(args) != 1 || args[0] != "l'antiga esquerra" {
		t.Errorf("args = %v, want the raw neighbourhood value", args)
	}
}
