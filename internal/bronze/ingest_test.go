package bronze

import (
	"strings"
	"testing"
)

func TestParseNullableInt(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected interface{}
	}{
		{"empty", "", nil},
		{"plain integer", "3", int64(3)},
		{"float-encoded integer", "2.0", int64(2)},
		{"garbage", "many", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseNullableInt(tt.input); got != tt.expected {
				t.Errorf("parseNullableInt(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestParseNullableFloat(t *testing.T) {
	if got := parseNullableFloat(""); got != nil {
		t.Errorf("parseNullableFloat(\"\") = %v, want nil", got)
	}
	if got := parseNullableFloat("4.85"); got != 4.85 {
		t.Errorf("parseNullableFloat(\"4.85\") = %v, want 4.85", got)
	}
	if got := parseNullableFloat("n/a"); got != nil {
		t.Errorf("parseNullableFloat(\"n/a\") = %v, want nil", got)
	}
}

func TestIsCorruptRecord(t *testing.T) {
	columnMap := map[string]int{"id": 0, "city": 1}

	tests := []struct {
		name     string
		record   []string
		expected bool
	}{
		{"known corrupt row", []string{"1176931079717865040", "Madrid"}, true},
		{"same id different city", []string{"1176931079717865040", "Barcelona"}, false},
		{"different id", []string{"42", "Madrid"}, false},
		{"unparsable id", []string{"abc", "Madrid"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isCorruptRecord(tt.record, columnMap); got != tt.expected {
				t.Errorf("isCorruptRecord(%v) = %v, want %v", tt.record, got, tt.expected)
			}
		})
	}
}

func TestInsertRawSQL(t *testing.T) {
	sql := insertRawSQL()

	if !strings.HasPrefix(sql, "INSERT INTO bronze.listings_raw (id, ") {
		t.Errorf("unexpected insert prefix: %s", sql)
	}
	if !strings.HasSuffix(sql, "ON CONFLICT (id, quarter, year) DO NOTHING") {
		t.Errorf("insert must ignore replayed snapshots: %s", sql)
	}
	if n := strings.Count(sql, "$"); n != len(rawColumns) {
		t.Errorf("placeholder count = %d, want %d", n, len(rawColumns))
	}
}
