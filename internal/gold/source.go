package gold

import (
	"database/sql"
	"fmt"
	"log/slog"
)

// FactRow is one silver.listings row joined against every dimension and
// both host tables. All three summary builds consume the same joined
// shape and resolve recency their own way.
type FactRow struct {
	ID              int64
	DateID          int
	Season          string
	NeighbourhoodID int
	Neighbourhood   string
	CityName        string
	PropertyType    string
	RoomType        string

	Name        string
	Description string
	ListingURL  string
	PictureURL  string
	Latitude    float64
	Longitude   float64

	Accommodates int
	Bedrooms     int
	Bathrooms    int
	MinNights    int
	MaxNights    int

	ReviewMissing bool
	ReviewScore   *float64

	// Raw JSON text of the categorized amenities column; empty when the
	// listing had none.
	Amenities string

	Price float64

	HostName             string
	HostAbout            string
	HostResponseTime     string
	HostPictureURL       string
	HostSuperhost        string
	HostIdentityVerified *string
}

// Builder materializes the gold summary tables from the silver layer.
// Unlike silver, gold tables are dropped and recreated on every run.
type Builder struct {
	db  *sql.DB
	log *slog.Logger
}

// NewBuilder creates a gold layer builder.
func NewBuilder(db *sql.DB, log *slog.Logger) *Builder {
	return &Builder{db: db, log: log}
}

// Build rebuilds all three summary tables from the current silver layer.
func (b *Builder) Build() error {
	if _, err := b.db.Exec(`CREATE SCHEMA IF NOT EXISTS gold`); err != nil {
		return fmt.Errorf("failed to create gold schema: %w", err)
	}

	rows, err := b.fetchFactRows()
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("silver.listings is empty; build the silver layer first")
	}

	calendar, err := b.fetchCalendar()
	if err != nil {
		return err
	}

	if err := b.buildListingsAggregated(rows); err != nil {
		return err
	}
	if err := b.buildEarningsSummary(rows, calendar); err != nil {
		return err
	}
	if err := b.buildRecommendationsSummary(rows); err != nil {
		return err
	}
	return nil
}

// fetchFactRows reads the fully-joined fact table. Host columns come
// from host_details (stable identity) and host_activity (per-period),
// matched on host, period and listing.
func (b *Builder) fetchFactRows() ([]FactRow, error) {
	rows, err := b.db.Query(`
		SELECT
			l.id, l.date_id, l.season,
			n.neighbourhood_id, n.neighbourhood,
			c.city_name, p.property_type, r.room_type,
			l.name, l.description, l.listing_url, l.picture_url,
			l.latitude, l.longitude,
			l.accommodates, l.bedrooms, l.bathrooms,
			l.minimum_nights, l.maximum_nights,
			l.review_missing, l.review_scores_rating,
			l.amenities, l.price,
			h.host_name, ha.host_about, ha.host_response_time,
			ha.host_picture_url, ha.host_is_superhost, ha.host_identity_verified
		FROM silver.listings l
		LEFT JOIN silver.property_types p ON l.property_id = p.property_id
		LEFT JOIN silver.room_types r ON l.room_type_id = r.room_type_id
		LEFT JOIN silver.city c ON l.city_id = c.city_id
		LEFT JOIN silver.neighbourhoods n ON l.neighbourhood_id = n.neighbourhood_id
		LEFT JOIN silver.host_details h ON l.host_id = h.host_id
		LEFT JOIN silver.host_activity ha
			ON l.host_id = ha.host_id
			AND l.date_id = ha.date_id
			AND l.id = ha.listing_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to read silver.listings: %w", err)
	}
	defer rows.Close()

	var facts []FactRow
	for rows.Next() {
		var f FactRow
		var name, description, listingURL, pictureURL sql.NullString
		var review sql.NullFloat64
		var amenities sql.NullString
		var hostName, hostAbout, hostResponse, hostPicture sql.NullString
		var hostSuperhost, hostIdentity sql.NullString
		if err := rows.Scan(
			&f.ID, &f.DateID, &f.Season,
			&f.NeighbourhoodID, &f.Neighbourhood,
			&f.CityName, &f.PropertyType, &f.RoomType,
			&name, &description, &listingURL, &pictureURL,
			&f.Latitude, &f.Longitude,
			&f.Accommodates, &f.Bedrooms, &f.Bathrooms,
			&f.MinNights, &f.MaxNights,
			&f.ReviewMissing, &review,
			&amenities, &f.Price,
			&hostName, &hostAbout, &hostResponse,
			&hostPicture, &hostSuperhost, &hostIdentity,
		); err != nil {
			return nil, fmt.Errorf("failed to scan fact row: %w", err)
		}

		f.Name = name.String
		f.Description = description.String
		f.ListingURL = listingURL.String
		f.PictureURL = pictureURL.String
		if review.Valid {
			v := review.Float64
			f.ReviewScore = &v
		}
		f.Amenities = amenities.String
		f.HostName = hostName.String
		f.HostAbout = hostAbout.String
		f.HostResponseTime = hostResponse.String
		f.HostPictureURL = hostPicture.String
		f.HostSuperhost = hostSuperhost.String
		if hostIdentity.Valid {
			v := hostIdentity.String
			f.HostIdentityVerified = &v
		}
		facts = append(facts, f)
	}
	return facts, rows.Err()
}
