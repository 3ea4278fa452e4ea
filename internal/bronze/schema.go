package bronze

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates the bronze schema and the append-only raw
// listings table. Safe to call before every ingestion run: the raw
// layer is the only layer with if-not-exists semantics, because
// ingestion appends new scrape quarters to the same table.
func CreateSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE SCHEMA IF NOT EXISTS bronze`,
		`CREATE TABLE IF NOT EXISTS bronze.listings_raw (
			id bigint,
			listing_url text,
			scrape_id bigint,
			last_scraped text,
			source text,
			name text,
			description text,
			neighborhood_overview text,
			picture_url text,
			host_id bigint,
			host_url text,
			host_name text,
			host_since text,
			host_location text,
			host_about text,
			host_response_time text,
			host_response_rate text,
			host_acceptance_rate text,
			host_is_superhost text,
			host_thumbnail_url text,
			host_picture_url text,
			host_neighbourhood text,
			host_listings_count float,
			host_total_listings_count float,
			host_verifications text,
			host_has_profile_pic text,
			host_identity_verified text,
			neighbourhood text,
			neighbourhood_cleansed text,
			neighbourhood_group_cleansed text,
			latitude float,
			longitude float,
			property_type text,
			room_type text,
			accommodates bigint,
			bathrooms float,
			bathrooms_text text,
			bedrooms float,
			beds float,
			amenities text,
			price text,
			minimum_nights bigint,
			maximum_nights bigint,
			minimum_minimum_nights bigint,
			maximum_minimum_nights bigint,
			minimum_maximum_nights bigint,
			maximum_maximum_nights bigint,
			minimum_nights_avg_ntm float,
			maximum_nights_avg_ntm float,
			calendar_updated text,
			has_availability text,
			availability_30 bigint,
			availability_60 bigint,
			availability_90 bigint,
			availability_365 bigint,
			calendar_last_scraped text,
			number_of_reviews int,
			number_of_reviews_ltm int,
			number_of_reviews_l30d int,
			first_review text,
			last_review text,
			review_scores_rating float,
			review_scores_accuracy float,
			review_scores_cleanliness float,
			review_scores_checkin float,
			review_scores_communication float,
			review_scores_location float,
			review_scores_value float,
			license text,
			instant_bookable text,
			calculated_host_listings_count int,
			calculated_host_listings_count_entire_homes int,
			calculated_host_listings_count_private_rooms int,
			calculated_host_listings_count_shared_rooms int,
			reviews_per_month float,
			city text,
			quarter text,
			year int,
			CONSTRAINT listings_raw_pkey PRIMARY KEY (id, quarter, year)
		)`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create bronze schema: %w", err)
		}
	}
	return nil
}
