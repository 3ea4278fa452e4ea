package gold

import (
	"fmt"
	"sort"
)

// CalendarKey addresses one listing's availability in one season.
type CalendarKey struct {
	ID     int64
	Season string
}

// Availability is the pivoted calendar fact: day counts by flag.
// Combinations absent from the calendar are zero, never null.
type Availability struct {
	AvailableDays   int
	UnavailableDays int
}

// EarningsRow is one gold.earnings_summary row: a listing in one
// season with availability counts and integer-recoded host flags.
type EarningsRow struct {
	ID               int64
	Season           string
	NeighbourhoodID  int
	Neighbourhood    string
	CityName         string
	PropertyType     string
	RoomType         string
	Accommodates     int
	Bedrooms         int
	Bathrooms        int
	Latitude         float64
	Longitude        float64
	HostSuperhost    int
	HostVerified     int
	HostResponseTime string
	ReviewMissing    int
	ReviewScore      *float64
	Amenities        string
	UnavailableDays  int
	AvailableDays    int
	Price            float64
}

// addCalendarCount folds one calendar row into the pivot. The calendar
// table carries no uniqueness constraint, so repeated rows for the same
// (listing, season, flag) sum their day counts instead of overwriting.
func addCalendarCount(pivot map[CalendarKey]Availability, id int64, season string, available, count int) {
	key := CalendarKey{ID: id, Season: season}
	entry := pivot[key]
	if available == 1 {
		entry.AvailableDays += count
	} else {
		entry.UnavailableDays += count
	}
	pivot[key] = entry
}

// fetchCalendar pivots silver.calendar into per-(listing, season) day
// counts.
func (b *Builder) fetchCalendar() (map[CalendarKey]Availability, error) {
	rows, err := b.db.Query(`SELECT id, season, available, count FROM silver.calendar`)
	if err != nil {
		return nil, fmt.Errorf("failed to read silver.calendar: %w", err)
	}
	defer rows.Close()

	pivot := make(map[CalendarKey]Availability)
	for rows.Next() {
		var id int64
		var season string
		var available, count int
		if err := rows.Scan(&id, &season, &available, &count); err != nil {
			return nil, fmt.Errorf("failed to scan calendar row: %w", err)
		}
		addCalendarCount(pivot, id, season, available, count)
	}
	return pivot, rows.Err()
}

// SummarizeEarnings resolves fact rows to one row per (listing,
// season), joined against the pivoted calendar. When a listing was
// observed twice in the same season the most recent period wins.
// Listings with an unreported identity-verification status are
// excluded: verification is mandatory here, unlike superhost status,
// which keeps its own unknown code.
func SummarizeEarnings(rows []FactRow, calendar map[CalendarKey]Availability) []EarningsRow {
	latest := make(map[CalendarKey]FactRow)
	for _, r := range rows {
		key := CalendarKey{ID: r.ID, Season: r.Season}
		if cur, ok := latest[key]; !ok || r.DateID > cur.DateID {
			latest[key] = r
		}
	}

	keys := make([]CalendarKey, 0, len(latest))
	for key := range latest {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].ID != keys[j].ID {
			return keys[i].ID < keys[j].ID
		}
		return keys[i].Season < keys[j].Season
	})

	summaries := make([]EarningsRow, 0, len(keys))
	for _, key := range keys {
		r := latest[key]
		if r.HostIdentityVerified == nil {
			continue
		}

		availability := calendar[key]
		row := EarningsRow{
			ID:               r.ID,
			Season:           r.Season,
			NeighbourhoodID:  r.NeighbourhoodID,
			Neighbourhood:    r.Neighbourhood,
			CityName:         r.CityName,
			PropertyType:     r.PropertyType,
			RoomType:         r.RoomType,
			Accommodates:     r.Accommodates,
			Bedrooms:         r.Bedrooms,
			Bathrooms:        r.Bathrooms,
			Latitude:         r.Latitude,
			Longitude:        r.Longitude,
			HostSuperhost:    recodeSuperhost(r.HostSuperhost),
			HostVerified:     recodeFlag(*r.HostIdentityVerified),
			HostResponseTime: r.HostResponseTime,
			ReviewScore:      r.ReviewScore,
			Amenities:        r.Amenities,
			UnavailableDays:  availability.UnavailableDays,
			AvailableDays:    availability.AvailableDays,
			Price:            r.Price,
		}
		if r.ReviewMissing {
			row.ReviewMissing = 1
		}
		summaries = append(summaries, row)
	}
	return summaries
}

// recodeSuperhost maps the tri-state superhost flag to its integer
// code: true 1, false 0, unknown 2.
func recodeSuperhost(flag string) int {
	switch flag {
	case "true":
		return 1
	case "false":
		return 0
	default:
		return 2
	}
}

func recodeFlag(flag string) int {
	if flag == "true" {
		return 1
	}
	return 0
}

func (b *Builder) buildEarningsSummary(rows []FactRow, calendar map[CalendarKey]Availability) error {
	if _, err := b.db.Exec(`DROP TABLE IF EXISTS gold.earnings_summary`); err != nil {
		return fmt.Errorf("failed to drop gold.earnings_summary: %w", err)
	}
	_, err := b.db.Exec(`
		CREATE TABLE gold.earnings_summary (
			id bigint NOT NULL,
			neighbourhood_id integer,
			neighbourhood varchar(100),
			city_name varchar(50),
			season varchar(20) NOT NULL,
			property_type varchar(50),
			room_type varchar(50),
			accommodates integer,
			bedrooms integer,
			bathrooms integer,
			latitude double precision,
			longitude double precision,
			host_is_superhost smallint,
			host_identity_verified smallint,
			host_response_time varchar(50),
			review_missing integer,
			review_scores_rating double precision,
			categorized_amenities jsonb,
			unavailable_days integer,
			available_days integer,
			price_float double precision
		)`)
	if err != nil {
		return fmt.Errorf("failed to create gold.earnings_summary: %w", err)
	}

	stmt, err := b.db.Prepare(`
		INSERT INTO gold.earnings_summary
			(id, neighbourhood_id, neighbourhood, city_name, season,
			 property_type, room_type, accommodates, bedrooms, bathrooms,
			 latitude, longitude, host_is_superhost, host_identity_verified,
			 host_response_time, review_missing, review_scores_rating,
			 categorized_amenities, unavailable_days, available_days, price_float)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
			$14, $15, $16, $17, $18, $19, $20, $21)`)
	if err != nil {
		return fmt.Errorf("failed to prepare earnings_summary insert: %w", err)
	}
	defer stmt.Close()

	summaries := SummarizeEarnings(rows, calendar)
	for _, s := range summaries {
		var review interface{}
		if s.ReviewScore != nil {
			review = *s.ReviewScore
		}
		if _, err := stmt.Exec(
			s.ID, s.NeighbourhoodID, nullIfEmpty(s.Neighbourhood),
			nullIfEmpty(s.CityName), s.Season, nullIfEmpty(s.PropertyType),
			nullIfEmpty(s.RoomType), s.Accommodates, s.Bedrooms, s.Bathrooms,
			s.Latitude, s.Longitude, s.HostSuperhost, s.HostVerified,
			nullIfEmpty(s.HostResponseTime), s.ReviewMissing, review,
			nullIfEmpty(s.Amenities), s.UnavailableDays, s.AvailableDays, s.Price,
		); err != nil {
			return fmt.Errorf("failed to insert earnings row for listing %d: %w", s.ID, err)
		}
	}

	_, err = b.db.Exec(`ALTER TABLE gold.earnings_summary ADD CONSTRAINT pk_earnings_summary PRIMARY KEY (id, season)`)
	if err != nil {
		return fmt.Errorf("failed to key gold.earnings_summary: %w", err)
	}

	b.log.Info("gold.earnings_summary built", "rows", len(summaries))
	return nil
}
