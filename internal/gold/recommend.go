package gold

import (
	"fmt"
	"sort"
)

// RecommendationRow is one gold.recommendations_summary row: a listing
// in one season with presentation fields for the search surface and a
// derived price bucket.
type RecommendationRow struct {
	ID               int64
	Season           string
	Name             string
	Description      string
	ListingURL       string
	PictureURL       string
	CityName         string
	Neighbourhood    string
	RoomType         string
	Accommodates     int
	Bedrooms         int
	Bathrooms        int
	Latitude         float64
	Longitude        float64
	HostName         string
	HostAbout        string
	HostResponseTime string
	HostPictureURL   string
	MinNights        int
	MaxNights        int
	ReviewScore      *float64
	Amenities        string
	Price            float64
	PriceRange       string
}

// SummarizeRecommendations resolves fact rows to one row per (listing,
// season), most recent period winning within a season. The picture and
// amenities are sticky across the whole listing: a period missing
// either takes the listing's most recent non-empty value, so older
// seasons still render in search results.
func SummarizeRecommendations(rows []FactRow) []RecommendationRow {
	latestPicture := make(map[int64]string)
	latestAmenities := make(map[int64]string)
	latestDateForPicture := make(map[int64]int)
	latestDateForAmenities := make(map[int64]int)
	for _, r := range rows {
		if r.PictureURL != "" && r.DateID >= latestDateForPicture[r.ID] {
			latestPicture[r.ID] = r.PictureURL
			latestDateForPicture[r.ID] = r.DateID
		}
		if r.Amenities != "" && r.DateID >= latestDateForAmenities[r.ID] {
			latestAmenities[r.ID] = r.Amenities
			latestDateForAmenities[r.ID] = r.DateID
		}
	}

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

	summaries := make([]RecommendationRow, 0, len(keys))
	for _, key := range keys {
		r := latest[key]

		amenities := r.Amenities
		if amenities == "" {
			amenities = latestAmenities[r.ID]
		}

		summaries = append(summaries, RecommendationRow{
			ID:               r.ID,
			Season:           r.Season,
			Name:             r.Name,
			Description:      r.Description,
			ListingURL:       r.ListingURL,
			PictureURL:       latestPicture[r.ID],
			CityName:         r.CityName,
			Neighbourhood:    r.Neighbourhood,
			RoomType:         r.RoomType,
			Accommodates:     r.Accommodates,
			Bedrooms:         r.Bedrooms,
			Bathrooms:        r.Bathrooms,
			Latitude:         r.Latitude,
			Longitude:        r.Longitude,
			HostName:         r.HostName,
			HostAbout:        r.HostAbout,
			HostResponseTime: r.HostResponseTime,
			HostPictureURL:   r.HostPictureURL,
			MinNights:        r.MinNights,
			MaxNights:        r.MaxNights,
			ReviewScore:      r.ReviewScore,
			Amenities:        amenities,
			Price:            r.Price,
			PriceRange:       PriceRange(r.Price),
		})
	}
	return summaries
}

func (b *Builder) buildRecommendationsSummary(rows []FactRow) error {
	if _, err := b.db.Exec(`DROP TABLE IF EXISTS gold.recommendations_summary`); err != nil {
		return fmt.Errorf("failed to drop gold.recommendations_summary: %w", err)
	}
	_, err := b.db.Exec(`
		CREATE TABLE gold.recommendations_summary (
			id bigint NOT NULL,
			name varchar(255),
			description text,
			listing_url text,
			picture_url text,
			season varchar(20) NOT NULL,
			city_name varchar(50),
			neighbourhood varchar(100),
			room_type varchar(50),
			accommodates integer,
			bedrooms integer,
			bathrooms integer,
			latitude double precision,
			longitude double precision,
			host_name varchar(100),
			host_about text,
			host_response_time varchar(50),
			host_picture_url text,
			minimum_nights integer,
			maximum_nights integer,
			review_scores_rating double precision,
			categorized_amenities jsonb,
			price_float double precision,
			price_range varchar(30)
		)`)
	if err != nil {
		return fmt.Errorf("failed to create gold.recommendations_summary: %w", err)
	}

	stmt, err := b.db.Prepare(`
		INSERT INTO gold.recommendations_summary
			(id, name, description, listing_url, picture_url, season,
			 city_name, neighbourhood, room_type, accommodates, bedrooms,
			 bathrooms, latitude, longitude, host_name, host_about,
			 host_response_time, host_picture_url, minimum_nights,
			 maximum_nights, review_scores_rating, categorized_amenities,
			 price_float, price_range)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
			$14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24)`)
	if err != nil {
		return fmt.Errorf("failed to prepare recommendations_summary insert: %w", err)
	}
	defer stmt.Close()

	summaries := SummarizeRecommendations(rows)
	for _, s := range summaries {
		var review interface{}
		if s.ReviewScore != nil {
			review = *s.ReviewScore
		}
		if _, err := stmt.Exec(
			s.ID, nullIfEmpty(s.Name), nullIfEmpty(s.Description),
			nullIfEmpty(s.ListingURL), nullIfEmpty(s.PictureURL), s.Season,
			nullIfEmpty(s.CityName), nullIfEmpty(s.Neighbourhood),
			nullIfEmpty(s.RoomType), s.Accommodates, s.Bedrooms, s.Bathrooms,
			s.Latitude, s.Longitude, nullIfEmpty(s.HostName),
			nullIfEmpty(s.HostAbout), nullIfEmpty(s.HostResponseTime),
			nullIfEmpty(s.HostPictureURL), s.MinNights, s.MaxNights,
			review, nullIfEmpty(s.Amenities), s.Price, s.PriceRange,
		); err != nil {
			return fmt.Errorf("failed to insert recommendation row for listing %d: %w", s.ID, err)
		}
	}

	_, err = b.db.Exec(`ALTER TABLE gold.recommendations_summary ADD CONSTRAINT pk_recommendations_summary PRIMARY KEY (id, season)`)
	if err != nil {
		return fmt.Errorf("failed to key gold.recommendations_summary: %w", err)
	}

	b.log.Info("gold.recommendations_summary built", "rows", len(summaries))
	return nil
}
