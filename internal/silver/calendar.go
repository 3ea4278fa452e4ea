package silver

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

// IngestCalendar loads the external calendar fact (listing id, season,
// availability flag, day count) into silver.calendar. Availability is
// recoded t->1, f->0 at ingest; rows with any other flag are dropped.
// The table is created fail-if-exists: rerunning against an existing
// calendar requires a silver reset first.
func IngestCalendar(db *sql.DB, csvPath string, log *slog.Logger) error {
	if _, err := db.Exec(`CREATE SCHEMA IF NOT EXISTS silver`); err != nil {
		return fmt.Errorf("failed to create silver schema: %w", err)
	}
	_, err := db.Exec(`
		CREATE TABLE silver.calendar (
			id bigint NOT NULL,
			season varchar(20) NOT NULL,
			available smallint NOT NULL,
			count integer NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("failed to create silver.calendar (reset required before rerun): %w", err)
	}

	file, err := os.Open(csvPath)
	if err != nil {
		return fmt.Errorf("failed to open calendar CSV: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("failed to read calendar CSV header: %w", err)
	}
	columnMap := make(map[string]int)
	for i, col := range header {
		columnMap[strings.ToLower(strings.TrimSpace(col))] = i
	}

	field := func(record []string, name string) string {
		if idx, ok := columnMap[name]; ok && idx < len(record) {
			return strings.TrimSpace(record[idx])
		}
		return ""
	}

	stmt, err := db.Prepare(`INSERT INTO silver.calendar (id, season, available, count) VALUES ($1, $2, $3, $4)`)
	if err != nil {
		return fmt.Errorf("failed to prepare calendar insert: %w", err)
	}
	defer stmt.Close()

	inserted, dropped := 0, 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			dropped++
			continue
		}

		id, err := strconv.ParseInt(field(record, "listing_id"), 10, 64)
		if err != nil {
			dropped++
			continue
		}
		available, ok := recodeAvailability(field(record, "available"))
		if !ok {
			dropped++
			continue
		}
		count, err := strconv.Atoi(field(record, "count"))
		if err != nil {
			dropped++
			continue
		}
		season := field(record, "season")
		if season == "" {
			dropped++
			continue
		}

		if _, err := stmt.Exec(id, season, available, count); err != nil {
			return fmt.Errorf("failed to insert calendar row: %w", err)
		}
		inserted++
	}

	if _, err := db.Exec(`CREATE INDEX idx_calendar_id_season ON silver.calendar (id, season)`); err != nil {
		return fmt.Errorf("failed to index silver.calendar: %w", err)
	}

	log.Info("calendar ingest complete", "inserted", inserted, "dropped", dropped)
	return nil
}

func recodeAvailability(flag string) (int, bool) {
	switch strings.ToLower(flag) {
	case "t", "true", "1":
		return 1, true
	case "f", "false", "0":
		return 0, true
	default:
		return 0, false
	}
}
