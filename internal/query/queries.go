package query

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"sort"
)

// Store is the read-only query surface the dashboard consumes. It
// never mutates pipeline-owned tables.
type Store struct {
	db *sql.DB
}

// NewStore wraps an open database handle.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// seasonOrder fixes the display order of seasons; it follows the
// calendar, not the alphabet.
var seasonOrder = map[string]int{
	"Early Spring": 1,
	"Early Summer": 2,
	"Early Autumn": 3,
	"Early Winter": 4,
}

// priceRangeOrder fixes the display order of price buckets from
// cheapest to most expensive.
var priceRangeOrder = map[string]int{
	"Extremely Cheap (<$20)":  1,
	"Very Cheap ($20-$50)":    2,
	"Cheap ($50-$100)":        3,
	"Moderate ($100-$200)":    4,
	"Expensive ($200-$300)":   5,
	"Very Expensive (>$300)":  6,
}

// Cities lists the distinct city names.
func (s *Store) Cities() ([]string, error) {
	return s.stringColumn(`SELECT DISTINCT city_name FROM silver.city ORDER BY city_name`)
}

// RoomTypes lists the distinct room types.
func (s *Store) RoomTypes() ([]string, error) {
	return s.stringColumn(`SELECT DISTINCT room_type FROM silver.room_types ORDER BY room_type`)
}

// AccommodatesValues lists the distinct guest capacities observed in
// the fact table.
func (s *Store) AccommodatesValues() ([]int, error) {
	rows, err := s.db.Query(`SELECT DISTINCT accommodates FROM silver.listings ORDER BY accommodates`)
	if err != nil {
		return nil, fmt.Errorf("failed to query accommodates values: %w", err)
	}
	defer rows.Close()

	var values []int
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("failed to scan accommodates value: %w", err)
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

// Neighbourhood is one neighbourhood dimension entry.
type Neighbourhood struct {
	ID   int    `json:"neighbourhood_id"`
	Name string `json:"neighbourhood"`
}

// NeighbourhoodsByCity lists the neighbourhoods of one city.
func (s *Store) NeighbourhoodsByCity(city string) ([]Neighbourhood, error) {
	rows, err := s.db.Query(`
		SELECT DISTINCT n.neighbourhood, n.neighbourhood_id
		FROM silver.neighbourhoods n
		JOIN silver.city c ON n.city_id = c.city_id
		WHERE c.city_name = $1
		ORDER BY n.neighbourhood`, city)
	if err != nil {
		return nil, fmt.Errorf("failed to query neighbourhoods for %q: %w", city, err)
	}
	defer rows.Close()

	var neighbourhoods []Neighbourhood
	for rows.Next() {
		var n Neighbourhood
		if err := rows.Scan(&n.Name, &n.ID); err != nil {
			return nil, fmt.Errorf("failed to scan neighbourhood: %w", err)
		}
		neighbourhoods = append(neighbourhoods, n)
	}
	return neighbourhoods, rows.Err()
}

// Seasons lists the observed seasons in calendar order.
func (s *Store) Seasons() ([]string, error) {
	seasons, err := s.stringColumn(`SELECT DISTINCT season FROM silver.listings`)
	if err != nil {
		return nil, err
	}
	sortByRank(seasons, seasonOrder)
	return seasons, nil
}

// PriceRangeOptions lists the observed price buckets from cheapest to
// most expensive.
func (s *Store) PriceRangeOptions() ([]string, error) {
	ranges, err := s.stringColumn(`SELECT DISTINCT price_range FROM gold.recommendations_summary`)
	if err != nil {
		return nil, err
	}
	sortByRank(ranges, priceRangeOrder)
	return ranges, nil
}

// ListingSummary is one gold.listings_aggregated row as served to the
// dashboard.
type ListingSummary struct {
	ID              int64              `json:"id"`
	NeighbourhoodID int                `json:"neighbourhood_id"`
	Neighbourhood   *string            `json:"neighbourhood"`
	CityName        *string            `json:"city_name"`
	PropertyType    *string            `json:"property_type"`
	RoomType        *string            `json:"room_type"`
	Accommodates    int                `json:"accommodates"`
	Bedrooms        int                `json:"bedrooms"`
	Bathrooms       int                `json:"bathrooms"`
	MinimumNights   int                `json:"minimum_nights"`
	MaximumNights   int                `json:"maximum_nights"`
	ListingURL      *string            `json:"listing_url"`
	PictureURL      *string            `json:"picture_url"`
	Latitude        float64            `json:"latitude"`
	Longitude       float64            `json:"longitude"`
	ReviewMissing   int                `json:"review_missing"`
	ReviewScore     *float64           `json:"review_scores_rating"`
	Amenities       map[string][]string `json:"categorized_amenities"`
	Price           float64            `json:"price_float"`
	SeasonalPrices  map[string]float64 `json:"seasonal_prices"`
}

// SearchListings returns the aggregated listing catalog matching the
// filters, newest listing ids first.
func (s *Store) SearchListings(f Filters) ([]ListingSummary, error) {
	clause, args := f.listingsClause()
	rows, err := s.db.Query(`
		SELECT
			id, neighbourhood_id, neighbourhood, city_name, property_type,
			room_type, accommodates, bedrooms, bathrooms, minimum_nights,
			maximum_nights, listing_url, picture_url, latitude, longitude,
			review_missing, review_scores_rating, categorized_amenities,
			price_float, seasonal_prices
		FROM gold.listings_aggregated
		`+clause+`
		ORDER BY id DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search listings: %w", err)
	}
	defer rows.Close()

	var listings []ListingSummary
	for rows.Next() {
		var l ListingSummary
		var review sql.NullFloat64
		var amenities, seasonal sql.NullString
		if err := rows.Scan(
			&l.ID, &l.NeighbourhoodID, &l.Neighbourhood, &l.CityName,
			&l.PropertyType, &l.RoomType, &l.Accommodates, &l.Bedrooms,
			&l.Bathrooms, &l.MinimumNights, &l.MaximumNights,
			&l.ListingURL, &l.PictureURL, &l.Latitude, &l.Longitude,
			&l.ReviewMissing, &review, &amenities, &l.Price, &seasonal,
		); err != nil {
			return nil, fmt.Errorf("failed to scan listing summary: %w", err)
		}
		if review.Valid {
			v := review.Float64
			l.ReviewScore = &v
		}
		if err := decodeJSONColumn(amenities, &l.Amenities); err != nil {
			return nil, fmt.Errorf("bad amenities JSON for listing %d: %w", l.ID, err)
		}
		if err := decodeJSONColumn(seasonal, &l.SeasonalPrices); err != nil {
			return nil, fmt.Errorf("bad seasonal prices JSON for listing %d: %w", l.ID, err)
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

// Recommendation is one gold.recommendations_summary row as served to
// the dashboard search surface.
type Recommendation struct {
	ID               int64               `json:"id"`
	Name             *string             `json:"name"`
	Description      *string             `json:"description"`
	ListingURL       *string             `json:"listing_url"`
	PictureURL       *string             `json:"picture_url"`
	Season           string              `json:"season"`
	CityName         *string             `json:"city_name"`
	Neighbourhood    *string             `json:"neighbourhood"`
	RoomType         *string             `json:"room_type"`
	Accommodates     int                 `json:"accommodates"`
	Bedrooms         int                 `json:"bedrooms"`
	Bathrooms        int                 `json:"bathrooms"`
	Latitude         float64             `json:"latitude"`
	Longitude        float64             `json:"longitude"`
	HostName         *string             `json:"host_name"`
	HostAbout        *string             `json:"host_about"`
	HostResponseTime *string             `json:"host_response_time"`
	HostPictureURL   *string             `json:"host_picture_url"`
	MinimumNights    int                 `json:"minimum_nights"`
	MaximumNights    int                 `json:"maximum_nights"`
	ReviewScore      *float64            `json:"review_scores_rating"`
	Amenities        map[string][]string `json:"categorized_amenities"`
	Price            float64             `json:"price_float"`
	PriceRange       string              `json:"price_range"`
}

// SearchRecommendations returns the recommendation rows matching the
// filters, newest listing ids first.
func (s *Store) SearchRecommendations(f Filters) ([]Recommendation, error) {
	clause, args := f.recommendationsClause()
	rows, err := s.db.Query(`
		SELECT
			id, name, description, listing_url, picture_url, season,
			city_name, neighbourhood, room_type, accommodates, bedrooms,
			bathrooms, latitude, longitude, host_name, host_about,
			host_response_time, host_picture_url, minimum_nights,
			maximum_nights, review_scores_rating, categorized_amenities,
			price_float, price_range
		FROM gold.recommendations_summary
		`+clause+`
		ORDER BY id DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search recommendations: %w", err)
	}
	defer rows.Close()

	var recommendations []Recommendation
	for rows.Next() {
		var r Recommendation
		var review sql.NullFloat64
		var amenities sql.NullString
		if err := rows.Scan(
			&r.ID, &r.Name, &r.Description, &r.ListingURL, &r.PictureURL,
			&r.Season, &r.CityName, &r.Neighbourhood, &r.RoomType,
			&r.Accommodates, &r.Bedrooms, &r.Bathrooms, &r.Latitude,
			&r.Longitude, &r.HostName, &r.HostAbout, &r.HostResponseTime,
			&r.HostPictureURL, &r.MinimumNights, &r.MaximumNights,
			&review, &amenities, &r.Price, &r.PriceRange,
		); err != nil {
			return nil, fmt.Errorf("failed to scan recommendation: %w", err)
		}
		if review.Valid {
			v := review.Float64
			r.ReviewScore = &v
		}
		if err := decodeJSONColumn(amenities, &r.Amenities); err != nil {
			return nil, fmt.Errorf("bad amenities JSON for listing %d: %w", r.ID, err)
		}
		recommendations = append(recommendations, r)
	}
	return recommendations, rows.Err()
}

// NeighbourhoodStats summarizes a neighbourhood's earnings rows for
// the host estimate view. The price interval is a 95% confidence
// interval around the mean nightly price (normal approximation); with
// fewer than two observations it collapses to the mean.
type NeighbourhoodStats struct {
	Neighbourhood   string  `json:"neighbourhood"`
	Listings        int     `json:"listings"`
	AvgAccommodates float64 `json:"avg_accommodates"`
	AvgBedrooms     float64 `json:"avg_bedrooms"`
	AvgBathrooms    float64 `json:"avg_bathrooms"`
	MeanPrice       float64 `json:"mean_price"`
	PriceLowerBound float64 `json:"price_lower_bound"`
	PriceUpperBound float64 `json:"price_upper_bound"`
}

// NeighbourhoodStats computes the earnings-view statistics for one
// neighbourhood.
func (s *Store) NeighbourhoodStats(neighbourhood string) (NeighbourhoodStats, error) {
	stats := NeighbourhoodStats{Neighbourhood: neighbourhood}
	var stddev sql.NullFloat64
	err := s.db.QueryRow(`
		SELECT
			COUNT(*),
			COALESCE(AVG(accommodates), 0),
			COALESCE(AVG(bedrooms), 0),
			COALESCE(AVG(bathrooms), 0),
			COALESCE(AVG(price_float), 0),
			STDDEV_SAMP(price_float)
		FROM gold.earnings_summary
		WHERE neighbourhood = $1`, neighbourhood).Scan(
		&stats.Listings, &stats.AvgAccommodates, &stats.AvgBedrooms,
		&stats.AvgBathrooms, &stats.MeanPrice, &stddev)
	if err != nil {
		return stats, fmt.Errorf("failed to query stats for %q: %w", neighbourhood, err)
	}

	stats.PriceLowerBound = stats.MeanPrice
	stats.PriceUpperBound = stats.MeanPrice
	if stats.Listings > 1 && stddev.Valid && stddev.Float64 > 0 {
		margin := 1.96 * stddev.Float64 / math.Sqrt(float64(stats.Listings))
		stats.PriceLowerBound = stats.MeanPrice - margin
		stats.PriceUpperBound = stats.MeanPrice + margin
	}
	return stats, nil
}

// NeighbourhoodLocation returns the average coordinates of a
// neighbourhood's listings within a city.
func (s *Store) NeighbourhoodLocation(city, neighbourhood string) (lat, lon float64, err error) {
	err = s.db.QueryRow(`
		SELECT COALESCE(AVG(latitude), 0), COALESCE(AVG(longitude), 0)
		FROM gold.earnings_summary
		WHERE city_name = $1 AND neighbourhood = $2`, city, neighbourhood).Scan(&lat, &lon)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to query location for %q: %w", neighbourhood, err)
	}
	return lat, lon, nil
}

// NeighbourhoodGeometry is one neighbourhood polygon for the hotspot
// map.
type NeighbourhoodGeometry struct {
	ID       int             `json:"neighbourhood_id"`
	Name     string          `json:"neighbourhood"`
	Geometry json.RawMessage `json:"geometry"`
}

// NeighbourhoodGeometries returns every neighbourhood polygon.
func (s *Store) NeighbourhoodGeometries() ([]NeighbourhoodGeometry, error) {
	rows, err := s.db.Query(`
		SELECT neighbourhood_id, neighbourhood, geometry
		FROM silver.neighbourhoods
		WHERE geometry IS NOT NULL
		ORDER BY neighbourhood_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query neighbourhood geometries: %w", err)
	}
	defer rows.Close()

	var geometries []NeighbourhoodGeometry
	for rows.Next() {
		var g NeighbourhoodGeometry
		var geometry []byte
		if err := rows.Scan(&g.ID, &g.Name, &geometry); err != nil {
			return nil, fmt.Errorf("failed to scan neighbourhood geometry: %w", err)
		}
		g.Geometry = json.RawMessage(geometry)
		geometries = append(geometries, g)
	}
	return geometries, rows.Err()
}

// decodeJSONColumn unmarshals a nullable JSON column; nulls leave the
// target at its zero value.
func decodeJSONColumn(col sql.NullString, v interface{}) error {
	if !col.Valid || col.String == "" {
		return nil
	}
	return json.Unmarshal([]byte(col.String), v)
}

func (s *Store) stringColumn(sqlText string) ([]string, error) {
	rows, err := s.db.Query(sqlText)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("failed to scan value: %w", err)
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

// sortByRank orders values by their rank in the given table; unranked
// values sort last in their incoming order.
func sortByRank(values []string, ranks map[string]int) {
	sort.SliceStable(values, func(i, j int) bool {
		ri, ok := ranks[values[i]]
		if !ok {
			ri = len(ranks) + 1
		}
		rj, ok := ranks[values[j]]
		if !ok {
			rj = len(ranks) + 1
		}
		return ri < rj
	})
}
