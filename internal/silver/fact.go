package silver

import (
	"encoding/json"
	"fmt"
	"sort"
)

// factKeys holds one cleaned row's resolved surrogate keys.
type factKeys struct {
	cityID          int
	propertyID      int
	roomTypeID      int
	dateID          int
	neighbourhoodID int
}

// resolveKeys maps a cleaned row's natural keys to surrogate keys. A
// neighbourhood with no polygon in the geometry source is a
// data-quality drop (ok false, no error). Any other unresolved
// dimension is a build error: cleaning drops rows with missing
// city/property/room attributes, so every remaining natural value was
// loaded into its dimension by the same build.
func resolveKeys(c CleanedListingPeriod, dims *Dimensions) (factKeys, bool, error) {
	var k factKeys
	var ok bool
	if k.cityID, ok = dims.CityID[c.City]; !ok {
		return k, false, fmt.Errorf("city %q missing from city dimension", c.City)
	}
	if k.propertyID, ok = dims.PropertyID[c.PropertyType]; !ok {
		return k, false, fmt.Errorf("property type %q missing from property dimension", c.PropertyType)
	}
	if k.roomTypeID, ok = dims.RoomTypeID[c.RoomType]; !ok {
		return k, false, fmt.Errorf("room type %q missing from room type dimension", c.RoomType)
	}
	if k.dateID, ok = dims.DateID[c.Period]; !ok {
		return k, false, fmt.Errorf("period %q missing from date dimension", c.Period)
	}
	if k.neighbourhoodID, ok = dims.NeighbourhoodID[NeighbourhoodKey{Name: c.Neighbourhood, CityID: k.cityID}]; !ok {
		return k, false, nil
	}
	return k, true, nil
}

// buildFact loads silver.listings, the central fact table: one row per
// listing per scrape period, every dimensional attribute replaced by
// its surrogate key. Rows whose neighbourhood has no polygon in the
// geometry source are dropped with a warning.
func (b *Builder) buildFact(cleaned []CleanedListingPeriod, dims *Dimensions) error {
	_, err := b.db.Exec(`
		CREATE TABLE silver.listings (
			id bigint NOT NULL,
			date_id smallint NOT NULL,
			name varchar(255),
			description text,
			listing_url text,
			picture_url text,
			latitude double precision,
			longitude double precision,
			property_id smallint NOT NULL,
			room_type_id smallint NOT NULL,
			neighbourhood_id integer NOT NULL,
			city_id smallint NOT NULL,
			host_id bigint,
			accommodates smallint NOT NULL,
			bedrooms smallint NOT NULL,
			bathrooms smallint NOT NULL,
			minimum_nights integer NOT NULL,
			maximum_nights integer NOT NULL,
			season varchar(20) NOT NULL,
			review_scores_rating real,
			review_missing boolean NOT NULL,
			amenities jsonb,
			price double precision NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("failed to create silver.listings (reset required before rerun): %w", err)
	}

	stmt, err := b.db.Prepare(`
		INSERT INTO silver.listings
			(id, date_id, name, description, listing_url, picture_url,
			 latitude, longitude, property_id, room_type_id,
			 neighbourhood_id, city_id, host_id, accommodates, bedrooms,
			 bathrooms, minimum_nights, maximum_nights, season,
			 review_scores_rating, review_missing, amenities, price)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
			$14, $15, $16, $17, $18, $19, $20, $21, $22, $23)`)
	if err != nil {
		return fmt.Errorf("failed to prepare fact insert: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	droppedNeighbourhoods := make(map[string]int)
	for _, c := range cleaned {
		keys, ok, err := resolveKeys(c, dims)
		if err != nil {
			return err
		}
		if !ok {
			droppedNeighbourhoods[c.Neighbourhood]++
			continue
		}

		amenities, err := json.Marshal(c.Amenities)
		if err != nil {
			return fmt.Errorf("failed to encode amenities for listing %d: %w", c.ID, err)
		}

		var hostID interface{}
		if c.HostID != 0 {
			hostID = c.HostID
		}
		var review interface{}
		if c.ReviewScore != nil {
			review = *c.ReviewScore
		}

		if _, err := stmt.Exec(
			c.ID, keys.dateID, nullIfBlank(c.Name), nullIfBlank(c.Description),
			nullIfBlank(c.ListingURL), nullIfBlank(c.PictureURL),
			c.Latitude, c.Longitude, keys.propertyID, keys.roomTypeID,
			keys.neighbourhoodID, keys.cityID, hostID, c.Accommodates, c.Bedrooms,
			c.Bathrooms, c.MinNights, c.MaxNights, c.Season,
			review, c.ReviewMissing, string(amenities), c.Price,
		); err != nil {
			return fmt.Errorf("failed to insert fact row for listing %d: %w", c.ID, err)
		}
		inserted++
	}

	if len(droppedNeighbourhoods) > 0 {
		total := 0
		names := make([]string, 0, len(droppedNeighbourhoods))
		for name, n := range droppedNeighbourhoods {
			total += n
			names = append(names, name)
		}
		sort.Strings(names)
		b.log.Warn("dropped fact rows with no matching neighbourhood polygon",
			"rows", total, "neighbourhoods", names)
	}

	_, err = b.db.Exec(`
		ALTER TABLE silver.listings
		ADD CONSTRAINT pk_listings PRIMARY KEY (id, date_id),
		ADD CONSTRAINT fk_listings_property FOREIGN KEY (property_id) REFERENCES silver.property_types (property_id),
		ADD CONSTRAINT fk_listings_room_type FOREIGN KEY (room_type_id) REFERENCES silver.room_types (room_type_id),
		ADD CONSTRAINT fk_listings_neighbourhood FOREIGN KEY (neighbourhood_id) REFERENCES silver.neighbourhoods (neighbourhood_id),
		ADD CONSTRAINT fk_listings_city FOREIGN KEY (city_id) REFERENCES silver.city (city_id),
		ADD CONSTRAINT fk_listings_date FOREIGN KEY (date_id) REFERENCES silver.dates (date_id),
		ADD CONSTRAINT fk_listings_host FOREIGN KEY (host_id) REFERENCES silver.host_details (host_id)`)
	if err != nil {
		return fmt.Errorf("failed to key silver.listings: %w", err)
	}

	for _, ddl := range []string{
		`CREATE INDEX idx_listings_host ON silver.listings (host_id)`,
		`CREATE INDEX idx_listings_date ON silver.listings (date_id)`,
		`CREATE INDEX idx_listings_id ON silver.listings (id)`,
	} {
		if _, err := b.db.Exec(ddl); err != nil {
			return fmt.Errorf("failed to index silver.listings: %w", err)
		}
	}

	b.log.Info("listings fact loaded", "rows", inserted)
	return nil
}

func nullIfBlank(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
