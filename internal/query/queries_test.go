package query

import (
	"reflect"
	"testing"
)

func TestSortByRankSeasons(t *testing.T) {
	seasons := []string{"Early Winter", "Early Spring", "Early Autumn", "Early Summer"}
	sortByRank(seasons, seasonOrder)

	expected := []string{"Early Spring", "Early Summer", "Early Autumn", "Early Winter"}
	if !reflect.DeepEqual(seasons, expected) {
		t.Errorf("seasons = %v, want %v", seasons, expected)
	}
}

func TestSortByRankUnrankedLast(t *testing.T) {
	ranges := []string{"Mystery Bucket", "Very Cheap ($20-$50)", "Extremely Cheap (<$20)"}
	sortByRank(ranges, priceRangeOrder)

	expected := []string{"Extremely Cheap (<$20)", "Very Cheap ($20-$50)", "Mystery Bucket"}
	if !reflect.DeepEqual(ranges, expected) {
		t.Errorf("ranges = %v, want %v", ranges, expected)
	}
}
