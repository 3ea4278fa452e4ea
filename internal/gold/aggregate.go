package gold

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
)

// ListingAggregate is one gold.listings_aggregated row: a listing
// collapsed across every observed period. Categorical attributes take
// the most recent period's value, numeric measures are averaged.
type ListingAggregate struct {
	ID              int64
	NeighbourhoodID int
	Neighbourhood   string
	CityName        string
	PropertyType    string
	RoomType        string
	Accommodates    int
	Bedrooms        int
	Bathrooms       int
	MinNights       int
	MaxNights       int
	ListingURL      string
	PictureURL      string
	Latitude        float64
	Longitude       float64
	ReviewMissing   int
	ReviewScore     *float64
	Amenities       string
	Price           float64
	SeasonalPrices  map[string]float64
}

// AggregateListings collapses fact rows to one aggregate per listing.
// Output is ordered by listing id, so repeated runs over the same
// input produce identical output.
func AggregateListings(rows []FactRow) []ListingAggregate {
	groups := make(map[int64][]FactRow)
	for _, r := range rows {
		groups[r.ID] = append(groups[r.ID], r)
	}

	ids := make([]int64, 0, len(groups))
	for id := range groups {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	aggregates := make([]ListingAggregate, 0, len(ids))
	for _, id := range ids {
		periods := groups[id]
		// Ascending by period so the final loop iteration, and the last
		// write per season, is the most recent observation.
		sort.Slice(periods, func(i, j int) bool { return periods[i].DateID < periods[j].DateID })
		latest := periods[len(periods)-1]

		agg := ListingAggregate{
			ID:              id,
			NeighbourhoodID: latest.NeighbourhoodID,
			Neighbourhood:   latest.Neighbourhood,
			CityName:        latest.CityName,
			PropertyType:    latest.PropertyType,
			RoomType:        latest.RoomType,
			ListingURL:      latest.ListingURL,
			PictureURL:      latest.PictureURL,
			Amenities:       latest.Amenities,
			SeasonalPrices:  make(map[string]float64, len(periods)),
		}

		var accommodates, bedrooms, bathrooms, minNights, maxNights float64
		var latitude, longitude, price, reviewMissing float64
		var reviewSum float64
		reviewN := 0
		for _, p := range periods {
			accommodates += float64(p.Accommodates)
			bedrooms += float64(p.Bedrooms)
			bathrooms += float64(p.Bathrooms)
			minNights += float64(p.MinNights)
			maxNights += float64(p.MaxNights)
			latitude += p.Latitude
			longitude += p.Longitude
			price += p.Price
			if p.ReviewMissing {
				reviewMissing++
			}
			if p.ReviewScore != nil {
				reviewSum += *p.ReviewScore
				reviewN++
			}
			agg.SeasonalPrices[p.Season] = p.Price
		}

		n := float64(len(periods))
		agg.Accommodates = roundMean(accommodates, n)
		agg.Bedrooms = roundMean(bedrooms, n)
		agg.Bathrooms = roundMean(bathrooms, n)
		agg.MinNights = roundMean(minNights, n)
		agg.MaxNights = roundMean(maxNights, n)
		agg.ReviewMissing = roundMean(reviewMissing, n)
		agg.Latitude = latitude / n
		agg.Longitude = longitude / n
		agg.Price = price / n
		if reviewN > 0 {
			mean := reviewSum / float64(reviewN)
			agg.ReviewScore = &mean
		}

		aggregates = append(aggregates, agg)
	}
	return aggregates
}

func roundMean(sum, n float64) int {
	return int(math.Round(sum / n))
}

func (b *Builder) buildListingsAggregated(rows []FactRow) error {
	if _, err := b.db.Exec(`DROP TABLE IF EXISTS gold.listings_aggregated`); err != nil {
		return fmt.Errorf("failed to drop gold.listings_aggregated: %w", err)
	}
	_, err := b.db.Exec(`
		CREATE TABLE gold.listings_aggregated (
			id bigint NOT NULL,
			neighbourhood_id integer,
			neighbourhood varchar(100),
			city_name varchar(50),
			property_type varchar(50),
			room_type varchar(50),
			accommodates integer,
			bedrooms integer,
			bathrooms integer,
			minimum_nights integer,
			maximum_nights integer,
			listing_url text,
			picture_url text,
			latitude double precision,
			longitude double precision,
			review_missing integer,
			review_scores_rating double precision,
			categorized_amenities jsonb,
			price_float double precision,
			seasonal_prices jsonb
		)`)
	if err != nil {
		return fmt.Errorf("failed to create gold.listings_aggregated: %w", err)
	}

	stmt, err := b.db.Prepare(`
		INSERT INTO gold.listings_aggregated
			(id, neighbourhood_id, neighbourhood, city_name, property_type,
			 room_type, accommodates, bedrooms, bathrooms, minimum_nights,
			 maximum_nights, listing_url, picture_url, latitude, longitude,
			 review_missing, review_scores_rating, categorized_amenities,
			 price_float, seasonal_prices)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
			$14, $15, $16, $17, $18, $19, $20)`)
	if err != nil {
		return fmt.Errorf("failed to prepare listings_aggregated insert: %w", err)
	}
	defer stmt.Close()

	aggregates := AggregateListings(rows)
	for _, a := range aggregates {
		seasonal, err := json.Marshal(a.SeasonalPrices)
		if err != nil {
			return fmt.Errorf("failed to encode seasonal prices for listing %d: %w", a.ID, err)
		}

		var review interface{}
		if a.ReviewScore != nil {
			review = *a.ReviewScore
		}
		if _, err := stmt.Exec(
			a.ID, a.NeighbourhoodID, nullIfEmpty(a.Neighbourhood),
			nullIfEmpty(a.CityName), nullIfEmpty(a.PropertyType),
			nullIfEmpty(a.RoomType), a.Accommodates, a.Bedrooms,
			a.Bathrooms, a.MinNights, a.MaxNights,
			nullIfEmpty(a.ListingURL), nullIfEmpty(a.PictureURL),
			a.Latitude, a.Longitude, a.ReviewMissing, review,
			nullIfEmpty(a.Amenities), a.Price, string(seasonal),
		); err != nil {
			return fmt.Errorf("failed to insert aggregate for listing %d: %w", a.ID, err)
		}
	}

	_, err = b.db.Exec(`ALTER TABLE gold.listings_aggregated ADD CONSTRAINT pk_listings_aggregated PRIMARY KEY (id)`)
	if err != nil {
		return fmt.Errorf("failed to key gold.listings_aggregated: %w", err)
	}

	b.log.Info("gold.listings_aggregated built", "listings", len(aggregates))
	return nil
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
