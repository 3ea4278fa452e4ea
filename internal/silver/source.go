package silver

import (
	"database/sql"
	"fmt"
)

// FetchRaw reads the cleaning stage's input columns from
// bronze.listings_raw. The bronze table must exist; a missing raw
// layer is a build precondition violation, not a data-quality issue.
func FetchRaw(db *sql.DB) ([]RawSnapshot, error) {
	rows, err := db.Query(`
		SELECT
			id, name, description, listing_url, picture_url,
			host_id, host_name, host_about, host_since,
			host_response_time, host_is_superhost, host_identity_verified,
			host_picture_url, neighbourhood_cleansed,
			latitude, longitude, property_type, room_type,
			accommodates, bathrooms_text, bedrooms, amenities, price,
			minimum_nights, maximum_nights, review_scores_rating,
			city, quarter, year
		FROM bronze.listings_raw`)
	if err != nil {
		return nil, fmt.Errorf("failed to read bronze.listings_raw: %w", err)
	}
	defer rows.Close()

	var snapshots []RawSnapshot
	for rows.Next() {
		var r RawSnapshot
		var hostID sql.NullInt64
		if err := rows.Scan(
			&r.ID, &r.Name, &r.Description, &r.ListingURL, &r.PictureURL,
			&hostID, &r.HostName, &r.HostAbout, &r.HostSince,
			&r.HostResponseTime, &r.HostIsSuperhost, &r.HostIdentityVerified,
			&r.HostPictureURL, &r.Neighbourhood,
			&r.Latitude, &r.Longitude, &r.PropertyType, &r.RoomType,
			&r.Accommodates, &r.BathroomsText, &r.Bedrooms, &r.Amenities, &r.Price,
			&r.MinimumNights, &r.MaximumNights, &r.ReviewScoresRating,
			&r.City, &r.Quarter, &r.Year,
		); err != nil {
			return nil, fmt.Errorf("failed to scan bronze row: %w", err)
		}
		r.HostID = hostID.Int64
		snapshots = append(snapshots, r)
	}
	return snapshots, rows.Err()
}
