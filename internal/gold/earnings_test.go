package gold

import "testing"

func verifiedRow(id int64, dateID int, season, verified string) FactRow {
	r := factRow(id, dateID, season, 100)
	r.HostSuperhost = "true"
	r.HostIdentityVerified = &verified
	return r
}

func TestAddCalendarCountSumsDuplicateRows(t *testing.T) {
	pivot := make(map[CalendarKey]Availability)
	addCalendarCount(pivot, 1, "Early Spring", 1, 30)
	addCalendarCount(pivot, 1, "Early Spring", 1, 15)
	addCalendarCount(pivot, 1, "Early Spring", 0, 40)
	addCalendarCount(pivot, 1, "Early Spring", 0, 5)
	addCalendarCount(pivot, 2, "Early Spring", 1, 7)

	got := pivot[CalendarKey{ID: 1, Season: "Early Spring"}]
	if got.AvailableDays != 45 {
		t.Errorf("available days = %d, want repeated rows summed to 45", got.AvailableDays)
	}
	if got.UnavailableDays != 45 {
		t.Errorf("unavailable days = %d, want repeated rows summed to 45", got.UnavailableDays)
	}
	if other := pivot[CalendarKey{ID: 2, Season: "Early Spring"}]; other.AvailableDays != 7 {
		t.Errorf("other listing available days = %d, want 7", other.AvailableDays)
	}
}

func TestSummarizeEarningsPivotDefaults(t *testing.T) {
	rows := []FactRow{verifiedRow(1, 0, "Early Spring", "true")}

	// No calendar entry for this listing/season at all.
	summaries := SummarizeEarnings(rows, map[CalendarKey]Availability{})
	if len(summaries) != 1 {
		t.Fatalf("expected 1 row, got %d", len(summaries))
	}
	if summaries[0].AvailableDays != 0 || summaries[0].UnavailableDays != 0 {
		t.Errorf("missing calendar combination = (%d, %d), want (0, 0)",
			summaries[0].AvailableDays, summaries[0].UnavailableDays)
	}
}

func TestSummarizeEarningsCalendarJoin(t *testing.T) {
	rows := []FactRow{verifiedRow(1, 0, "Early Spring", "true")}
	calendar := map[CalendarKey]Availability{
		{ID: 1, Season: "Early Spring"}: {AvailableDays: 60, UnavailableDays: 31},
	}

	summaries := SummarizeEarnings(rows, calendar)
	if summaries[0].AvailableDays != 60 {
		t.Errorf("available days = %d, want 60", summaries[0].AvailableDays)
	}
	if summaries[0].UnavailableDays != 31 {
		t.Errorf("unavailable days = %d, want 31", summaries[0].UnavailableDays)
	}
}

func TestSummarizeEarningsHostRecoding(t *testing.T) {
	tests := []struct {
		name      string
		superhost string
		expected  int
	}{
		{"superhost true", "true", 1},
		{"superhost false", "false", 0},
		{"superhost unknown", "unknown", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := verifiedRow(1, 0, "Early Spring", "false")
			r.HostSuperhost = tt.superhost
			summaries := SummarizeEarnings([]FactRow{r}, nil)
			if got := summaries[0].HostSuperhost; got != tt.expected {
				t.Errorf("superhost code = %d, want %d", got, tt.expected)
			}
			if got := summaries[0].HostVerified; got != 0 {
				t.Errorf("verified code = %d, want 0", got)
			}
		})
	}
}

func TestSummarizeEarningsExcludesUnverifiedStatus(t *testing.T) {
	withStatus := verifiedRow(1, 0, "Early Spring", "true")
	withoutStatus := factRow(2, 0, "Early Spring", 100)
	withoutStatus.HostSuperhost = "true"

	summaries := SummarizeEarnings([]FactRow{withStatus, withoutStatus}, nil)
	if len(summaries) != 1 {
		t.Fatalf("expected 1 row, got %d", len(summaries))
	}
	if summaries[0].ID != 1 {
		t.Errorf("surviving row id = %d, want 1", summaries[0].ID)
	}
}

func TestSummarizeEarningsMostRecentPerSeason(t *testing.T) {
	older := verifiedRow(1, 0, "Early Spring", "true")
	older.Price = 80
	newer := verifiedRow(1, 4, "Early Spring", "true")
	newer.Price = 95

	summaries := SummarizeEarnings([]FactRow{older, newer}, nil)
	if len(summaries) != 1 {
		t.Fatalf("expected 1 row per (listing, season), got %d", len(summaries))
	}
	if summaries[0].Price != 95 {
		t.Errorf("price = %v, want most recent period's 95", summaries[0].Price)
	}
}
