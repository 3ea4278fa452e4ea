package bronze

import (
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// The one snapshot row known to be corrupt in the source exports. It is
// excluded by identity rather than by a heuristic so the exclusion is
// auditable.
const corruptListingID = int64(1176931079717865040)

const corruptListingCity = "Madrid"

type columnKind int

const (
	kindText columnKind = iota
	kindInt
	kindFloat
)

type rawColumn struct {
	name string
	kind columnKind
}

// rawColumns mirrors bronze.listings_raw column order. CSV exports are
// matched by header name, not position.
var rawColumns = []rawColumn{
	{"id", kindInt},
	{"listing_url", kindText},
	{"scrape_id", kindInt},
	{"last_scraped", kindText},
	{"source", kindText},
	{"name", kindText},
	{"description", kindText},
	{"neighborhood_overview", kindText},
	{"picture_url", kindText},
	{"host_id", kindInt},
	{"host_url", kindText},
	{"host_name", kindText},
	{"host_since", kindText},
	{"host_location", kindText},
	{"host_about", kindText},
	{"host_response_time", kindText},
	{"host_response_rate", kindText},
	{"host_acceptance_rate", kindText},
	{"host_is_superhost", kindText},
	{"host_thumbnail_url", kindText},
	{"host_picture_url", kindText},
	{"host_neighbourhood", kindText},
	{"host_listings_count", kindFloat},
	{"host_total_listings_count", kindFloat},
	{"host_verifications", kindText},
	{"host_has_profile_pic", kindText},
	{"host_identity_verified", kindText},
	{"neighbourhood", kindText},
	{"neighbourhood_cleansed", kindText},
	{"neighbourhood_group_cleansed", kindText},
	{"latitude", kindFloat},
	{"longitude", kindFloat},
	{"property_type", kindText},
	{"room_type", kindText},
	{"accommodates", kindInt},
	{"bathrooms", kindFloat},
	{"bathrooms_text", kindText},
	{"bedrooms", kindFloat},
	{"beds", kindFloat},
	{"amenities", kindText},
	{"price", kindText},
	{"minimum_nights", kindInt},
	{"maximum_nights", kindInt},
	{"minimum_minimum_nights", kindInt},
	{"maximum_minimum_nights", kindInt},
	{"minimum_maximum_nights", kindInt},
	{"maximum_maximum_nights", kindInt},
	{"minimum_nights_avg_ntm", kindFloat},
	{"maximum_nights_avg_ntm", kindFloat},
	{"calendar_updated", kindText},
	{"has_availability", kindText},
	{"availability_30", kindInt},
	{"availability_60", kindInt},
	{"availability_90", kindInt},
	{"availability_365", kindInt},
	{"calendar_last_scraped", kindText},
	{"number_of_reviews", kindInt},
	{"number_of_reviews_ltm", kindInt},
	{"number_of_reviews_l30d", kindInt},
	{"first_review", kindText},
	{"last_review", kindText},
	{"review_scores_rating", kindFloat},
	{"review_scores_accuracy", kindFloat},
	{"review_scores_cleanliness", kindFloat},
	{"review_scores_checkin", kindFloat},
	{"review_scores_communication", kindFloat},
	{"review_scores_location", kindFloat},
	{"review_scores_value", kindFloat},
	{"license", kindText},
	{"instant_bookable", kindText},
	{"calculated_host_listings_count", kindInt},
	{"calculated_host_listings_count_entire_homes", kindInt},
	{"calculated_host_listings_count_private_rooms", kindInt},
	{"calculated_host_listings_count_shared_rooms", kindInt},
	{"reviews_per_month", kindFloat},
	{"city", kindText},
	{"quarter", kindText},
	{"year", kindInt},
}

// Ingester loads raw listing snapshot exports into bronze.listings_raw
type Ingester struct {
	db  *sql.DB
	log *slog.Logger
}

// NewIngester creates a bronze ingester
func NewIngester(db *sql.DB, log *slog.Logger) *Ingester {
	return &Ingester{db: db, log: log}
}

// IngestListings appends one raw snapshot CSV to bronze.listings_raw.
// Rows already present for the same (id, quarter, year) are skipped, so
// re-ingesting an export is harmless.
func (in *Ingester) IngestListings(csvPath string) error {
	if err := CreateSchema(in.db); err != nil {
		return err
	}

	file, err := os.Open(csvPath)
	if err != nil {
		return fmt.Errorf("failed to open listings CSV: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("failed to read CSV header: %w", err)
	}

	columnMap := make(map[string]int)
	for i, col := range header {
		columnMap[strings.ToLower(strings.TrimSpace(col))] = i
	}

	stmt, err := in.db.Prepare(insertRawSQL())
	if err != nil {
		return fmt.Errorf("failed to prepare bronze insert: %w", err)
	}
	defer stmt.Close()

	inserted, skipped := 0, 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			in.log.Warn("skipping unreadable CSV record", "error", err)
			skipped++
			continue
		}

		if isCorruptRecord(record, columnMap) {
			in.log.Warn("excluding known corrupt snapshot row",
				"id", corruptListingID, "city", corruptListingCity)
			skipped++
			continue
		}

		args := make([]interface{}, 0, len(rawColumns))
		for _, col := range rawColumns {
			raw := columnValue(record, columnMap, col.name)
			switch col.kind {
			case kindInt:
				args = append(args, parseNullableInt(raw))
			case kindFloat:
				args = append(args, parseNullableFloat(raw))
			default:
				args = append(args, nullIfEmpty(raw))
			}
		}

		if _, err := stmt.Exec(args...); err != nil {
			in.log.Warn("failed to insert snapshot row", "error", err)
			skipped++
			continue
		}

		inserted++
		if inserted%10000 == 0 {
			in.log.Info("bronze ingest progress", "rows", inserted)
		}
	}

	in.log.Info("bronze ingest complete", "inserted", inserted, "skipped", skipped)
	return nil
}

func insertRawSQL() string {
	names := make([]string, len(rawColumns))
	placeholders := make([]string, len(rawColumns))
	for i, col := range rawColumns {
		names[i] = col.name
		placeholders[i] = "$" + strconv.Itoa(i+1)
	}
	return fmt.Sprintf(
		"INSERT INTO bronze.listings_raw (%s) VALUES (%s) ON CONFLICT (id, quarter, year) DO NOTHING",
		strings.Join(names, ", "), strings.Join(placeholders, ", "))
}

func isCorruptRecord(record []string, columnMap map[string]int) bool {
	id, err := strconv.ParseInt(columnValue(record, columnMap, "id"), 10, 64)
	if err != nil {
		return false
	}
	return id == corruptListingID && columnValue(record, columnMap, "city") == corruptListingCity
}

func columnValue(record []string, columnMap map[string]int, columnName string) string {
	if idx, exists := columnMap[columnName]; exists && idx < len(record) {
		return strings.TrimSpace(record[idx])
	}
	return ""
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func parseNullableInt(s string) interface{} {
	if s == "" {
		return nil
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	// Exports sometimes carry integer columns as "2.0"
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int64(f)
	}
	return nil
}

func parseNullableFloat(s string) interface{} {
	if s == "" {
		return nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return nil
}
