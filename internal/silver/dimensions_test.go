package silver

import (
	"reflect"
	"testing"
)

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		year    int
		quarter int
		wantErr bool
	}{
		{"two digit year", "Q1_24", 2024, 1, false},
		{"four digit year", "Q3_2023", 2023, 3, false},
		{"fourth quarter", "Q4_23", 2023, 4, false},
		{"bad quarter", "Q5_24", 0, 0, true},
		{"no underscore", "Q124", 0, 0, true},
		{"empty", "", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			year, quarter, err := ParsePeriod(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParsePeriod(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err == nil && (year != tt.year || quarter != tt.quarter) {
				t.Errorf("ParsePeriod(%q) = (%d, %d), want (%d, %d)",
					tt.input, year, quarter, tt.year, tt.quarter)
			}
		})
	}
}

func TestSortPeriods(t *testing.T) {
	// Lexical order would put Q1_24 before Q4_23; calendar order must not.
	got, err := SortPeriods([]string{"Q2_24", "Q4_23", "Q3_24", "Q1_24"})
	if err != nil {
		t.Fatalf("SortPeriods error: %v", err)
	}
	expected := []string{"Q4_23", "Q1_24", "Q2_24", "Q3_24"}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("SortPeriods = %v, want %v", got, expected)
	}
}

func TestSortPeriodsRejectsBadLabel(t *testing.T) {
	if _, err := SortPeriods([]string{"Q1_24", "FY24"}); err == nil {
		t.Fatal("expected error for unparsable label")
	}
}

func TestDistinctSorted(t *testing.T) {
	cleaned := []CleanedListingPeriod{
		{City: "Madrid"},
		{City: "Barcelona"},
		{City: "Madrid"},
		{City: ""},
	}
	got := distinctSorted(cleaned, func(c CleanedListingPeriod) string { return c.City })
	expected := []string{"Barcelona", "Madrid"}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("distinctSorted = %v, want %v", got, expected)
	}
}
