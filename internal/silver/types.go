package silver

import "time"

// Superhost status is a tri-state enum in the cleaned layer. The raw
// exports use t/f with nulls; nulls become "unknown" so categorical
// encodings stay total.
const (
	SuperhostTrue    = "true"
	SuperhostFalse   = "false"
	SuperhostUnknown = "unknown"
)

// RawSnapshot is the subset of a bronze.listings_raw row the cleaning
// stage consumes. Pointer fields are nullable in the source.
type RawSnapshot struct {
	ID                   int64
	Name                 *string
	Description          *string
	ListingURL           *string
	PictureURL           *string
	HostID               int64
	HostName             *string
	HostAbout            *string
	HostSince            *string
	HostResponseTime     *string
	HostIsSuperhost      *string
	HostIdentityVerified *string
	HostPictureURL       *string
	Neighbourhood        *string
	Latitude             *float64
	Longitude            *float64
	PropertyType         *string
	RoomType             *string
	Accommodates         *int64
	BathroomsText        *string
	Bedrooms             *float64
	Amenities            *string
	Price                *string
	MinimumNights        *int64
	MaximumNights        *int64
	ReviewScoresRating   *float64
	City                 *string
	Quarter              *string
	Year                 *int64
}

// CleanedListingPeriod is one listing observed in one scrape period
// after cleaning and normalization. Created once per cleaning run and
// never mutated; a later run over new raw data supersedes it wholesale.
type CleanedListingPeriod struct {
	ID           int64
	Name         string
	Description  string
	ListingURL   string
	PictureURL   string
	Latitude     float64
	Longitude    float64
	PropertyType string
	RoomType     string
	Accommodates int
	Bedrooms     int
	Bathrooms    int
	MinNights    int
	MaxNights    int

	City          string
	Neighbourhood string
	Period        string // e.g. "Q1_24"
	Season        string

	ReviewMissing bool
	ReviewScore   *float64

	// Category name -> raw amenity strings; "Other" is never a key.
	Amenities map[string][]string

	Price float64

	HostID               int64
	HostName             string
	HostAbout            string
	HostSince            *time.Time
	HostResponseTime     string
	HostSuperhost        string  // tri-state, see Superhost* constants
	HostIdentityVerified *string // "true"/"false", nil when unreported
	HostPictureURL       string
}

// NeighbourhoodGeometry is one row of the external geometry source
// after name normalization: a neighbourhood polygon re-encoded as
// GeoJSON, joined to listings by normalized name.
type NeighbourhoodGeometry struct {
	Name    string
	Group   string
	City    string
	GeoJSON string
}
