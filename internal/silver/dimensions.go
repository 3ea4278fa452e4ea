package silver

import (
	"database/sql"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strconv"
)

// NeighbourhoodKey joins the fact table to the neighbourhood dimension
// on normalized name within a city.
type NeighbourhoodKey struct {
	Name   string
	CityID int
}

// Dimensions holds the surrogate-key lookups built by one silver run.
// Keys start at 0 and are assigned in deterministic natural-key order,
// so a rebuild over the same data produces identical keys.
type Dimensions struct {
	CityID          map[string]int
	PropertyID      map[string]int
	RoomTypeID      map[string]int
	DateID          map[string]int
	NeighbourhoodID map[NeighbourhoodKey]int
}

var rePeriod = regexp.MustCompile(`^Q([1-4])_(\d{2}|\d{4})$`)

// ParsePeriod splits a period label like "Q1_24" into its calendar
// quarter and year.
func ParsePeriod(period string) (year, quarter int, err error) {
	m := rePeriod.FindStringSubmatch(period)
	if m == nil {
		return 0, 0, fmt.Errorf("invalid period label %q", period)
	}
	quarter, _ = strconv.Atoi(m[1])
	year, _ = strconv.Atoi(m[2])
	if year < 100 {
		year += 2000
	}
	return year, quarter, nil
}

// SortPeriods orders period labels by calendar position (year, then
// quarter), never by label text or first appearance: Q4_23 sorts before
// Q1_24. Fails on any unparsable label.
func SortPeriods(periods []string) ([]string, error) {
	type parsed struct {
		label   string
		year    int
		quarter int
	}
	ps := make([]parsed, len(periods))
	for i, label := range periods {
		year, quarter, err := ParsePeriod(label)
		if err != nil {
			return nil, err
		}
		ps[i] = parsed{label, year, quarter}
	}
	sort.Slice(ps, func(i, j int) bool {
		if ps[i].year != ps[j].year {
			return ps[i].year < ps[j].year
		}
		return ps[i].quarter < ps[j].quarter
	})
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.label
	}
	return out, nil
}

// Builder materializes the silver dimensional model from a cleaned
// dataset. Tables are created fail-if-exists: a rerun against an
// existing silver layer aborts and requires an explicit reset.
type Builder struct {
	db  *sql.DB
	log *slog.Logger
}

// NewBuilder creates a silver layer builder.
func NewBuilder(db *sql.DB, log *slog.Logger) *Builder {
	return &Builder{db: db, log: log}
}

// Build creates and loads every dimension, the host tables and the
// listings fact, in dependency order.
func (b *Builder) Build(cleaned []CleanedListingPeriod, geoms []NeighbourhoodGeometry) error {
	if len(cleaned) == 0 {
		return fmt.Errorf("refusing to build silver layer from empty cleaned dataset")
	}
	if _, err := b.db.Exec(`CREATE SCHEMA IF NOT EXISTS silver`); err != nil {
		return fmt.Errorf("failed to create silver schema: %w", err)
	}

	dims := &Dimensions{}
	var err error

	if dims.CityID, err = b.buildCityDim(cleaned); err != nil {
		return err
	}
	if dims.PropertyID, err = b.buildPropertyDim(cleaned); err != nil {
		return err
	}
	if dims.RoomTypeID, err = b.buildRoomTypeDim(cleaned); err != nil {
		return err
	}
	if dims.NeighbourhoodID, err = b.buildNeighbourhoodDim(geoms, dims.CityID); err != nil {
		return err
	}
	if dims.DateID, err = b.buildDateDim(cleaned); err != nil {
		return err
	}
	if err := b.buildHostTables(cleaned, dims); err != nil {
		return err
	}
	if err := b.buildFact(cleaned, dims); err != nil {
		return err
	}

	b.log.Info("silver layer built",
		"cities", len(dims.CityID),
		"property_types", len(dims.PropertyID),
		"room_types", len(dims.RoomTypeID),
		"neighbourhoods", len(dims.NeighbourhoodID),
		"periods", len(dims.DateID))
	return nil
}

func (b *Builder) buildCityDim(cleaned []CleanedListingPeriod) (map[string]int, error) {
	values := distinctSorted(cleaned, func(c CleanedListingPeriod) string { return c.City })

	_, err := b.db.Exec(`
		CREATE TABLE silver.city (
			city_id smallint NOT NULL,
			city_name varchar(50) NOT NULL UNIQUE
		)`)
	if err != nil {
		return nil, fmt.Errorf("failed to create silver.city (reset required before rerun): %w", err)
	}

	ids := make(map[string]int, len(values))
	for i, v := range values {
		if _, err := b.db.Exec(`INSERT INTO silver.city (city_id, city_name) VALUES ($1, $2)`, i, v); err != nil {
			return nil, fmt.Errorf("failed to insert city %q: %w", v, err)
		}
		ids[v] = i
	}

	if _, err := b.db.Exec(`ALTER TABLE silver.city ADD CONSTRAINT pk_city PRIMARY KEY (city_id)`); err != nil {
		return nil, fmt.Errorf("failed to key silver.city: %w", err)
	}
	return ids, nil
}

func (b *Builder) buildPropertyDim(cleaned []CleanedListingPeriod) (map[string]int, error) {
	values := distinctSorted(cleaned, func(c CleanedListingPeriod) string { return c.PropertyType })

	_, err := b.db.Exec(`
		CREATE TABLE silver.property_types (
			property_id smallint NOT NULL,
			property_type varchar(50) NOT NULL UNIQUE
		)`)
	if err != nil {
		return nil, fmt.Errorf("failed to create silver.property_types (reset required before rerun): %w", err)
	}

	ids := make(map[string]int, len(values))
	for i, v := range values {
		if _, err := b.db.Exec(`INSERT INTO silver.property_types (property_id, property_type) VALUES ($1, $2)`, i, v); err != nil {
			return nil, fmt.Errorf("failed to insert property type %q: %w", v, err)
		}
		ids[v] = i
	}

	if _, err := b.db.Exec(`ALTER TABLE silver.property_types ADD CONSTRAINT pk_property_type PRIMARY KEY (property_id)`); err != nil {
		return nil, fmt.Errorf("failed to key silver.property_types: %w", err)
	}
	return ids, nil
}

func (b *Builder) buildRoomTypeDim(cleaned []CleanedListingPeriod) (map[string]int, error) {
	values := distinctSorted(cleaned, func(c CleanedListingPeriod) string { return c.RoomType })

	_, err := b.db.Exec(`
		CREATE TABLE silver.room_types (
			room_type_id smallint NOT NULL,
			room_type varchar(50) NOT NULL UNIQUE
		)`)
	if err != nil {
		return nil, fmt.Errorf("failed to create silver.room_types (reset required before rerun): %w", err)
	}

	ids := make(map[string]int, len(values))
	for i, v := range values {
		if _, err := b.db.Exec(`INSERT INTO silver.room_types (room_type_id, room_type) VALUES ($1, $2)`, i, v); err != nil {
			return nil, fmt.Errorf("failed to insert room type %q: %w", v, err)
		}
		ids[v] = i
	}

	if _, err := b.db.Exec(`ALTER TABLE silver.room_types ADD CONSTRAINT pk_room_type PRIMARY KEY (room_type_id)`); err != nil {
		return nil, fmt.Errorf("failed to key silver.room_types: %w", err)
	}
	return ids, nil
}

// buildNeighbourhoodDim loads every neighbourhood from the geometry
// source, city foreign key resolved by name where possible. The
// returned lookup only contains neighbourhoods with a resolved city,
// because the fact join requires (name, city_id).
func (b *Builder) buildNeighbourhoodDim(geoms []NeighbourhoodGeometry, cityIDs map[string]int) (map[NeighbourhoodKey]int, error) {
	if len(geoms) == 0 {
		return nil, fmt.Errorf("geometry source is empty; cannot build silver.neighbourhoods")
	}

	_, err := b.db.Exec(`
		CREATE TABLE silver.neighbourhoods (
			neighbourhood_id integer NOT NULL,
			neighbourhood varchar(100) NOT NULL UNIQUE,
			neighbourhood_group varchar(100),
			geometry jsonb,
			city_id smallint
		)`)
	if err != nil {
		return nil, fmt.Errorf("failed to create silver.neighbourhoods (reset required before rerun): %w", err)
	}

	stmt, err := b.db.Prepare(`
		INSERT INTO silver.neighbourhoods
			(neighbourhood_id, neighbourhood, neighbourhood_group, geometry, city_id)
		VALUES ($1, $2, $3, $4, $5)`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare neighbourhood insert: %w", err)
	}
	defer stmt.Close()

	ids := make(map[NeighbourhoodKey]int, len(geoms))
	for i, g := range geoms {
		var cityID interface{}
		if id, ok := cityIDs[g.City]; ok {
			cityID = id
			ids[NeighbourhoodKey{Name: g.Name, CityID: id}] = i
		} else {
			b.log.Warn("neighbourhood city not present in listing data", "neighbourhood", g.Name, "city", g.City)
		}

		var group interface{}
		if g.Group != "" {
			group = g.Group
		}
		if _, err := stmt.Exec(i, g.Name, group, g.GeoJSON, cityID); err != nil {
			return nil, fmt.Errorf("failed to insert neighbourhood %q: %w", g.Name, err)
		}
	}

	_, err = b.db.Exec(`
		ALTER TABLE silver.neighbourhoods
		ADD CONSTRAINT pk_neighbourhood PRIMARY KEY (neighbourhood_id),
		ADD CONSTRAINT fk_city FOREIGN KEY (city_id) REFERENCES silver.city (city_id)`)
	if err != nil {
		return nil, fmt.Errorf("failed to key silver.neighbourhoods: %w", err)
	}
	return ids, nil
}

func (b *Builder) buildDateDim(cleaned []CleanedListingPeriod) (map[string]int, error) {
	distinct := distinctSorted(cleaned, func(c CleanedListingPeriod) string { return c.Period })

	// Canonical calendar ordering, not lexical: time-series consumers
	// depend on date_id being monotonic in real time.
	ordered, err := SortPeriods(distinct)
	if err != nil {
		return nil, fmt.Errorf("failed to order periods: %w", err)
	}

	_, err = b.db.Exec(`
		CREATE TABLE silver.dates (
			date_id smallint NOT NULL,
			date varchar(10) NOT NULL UNIQUE
		)`)
	if err != nil {
		return nil, fmt.Errorf("failed to create silver.dates (reset required before rerun): %w", err)
	}

	ids := make(map[string]int, len(ordered))
	for i, v := range ordered {
		if _, err := b.db.Exec(`INSERT INTO silver.dates (date_id, date) VALUES ($1, $2)`, i, v); err != nil {
			return nil, fmt.Errorf("failed to insert period %q: %w", v, err)
		}
		ids[v] = i
	}

	if _, err := b.db.Exec(`ALTER TABLE silver.dates ADD CONSTRAINT pk_dates PRIMARY KEY (date_id)`); err != nil {
		return nil, fmt.Errorf("failed to key silver.dates: %w", err)
	}
	return ids, nil
}

// distinctSorted collects the distinct non-empty natural values of one
// dimension attribute in sorted order. Sorting makes surrogate keys
// reproducible across rebuilds of the same dataset.
func distinctSorted(cleaned []CleanedListingPeriod, attr func(CleanedListingPeriod) string) []string {
	set := make(map[string]bool)
	for _, c := range cleaned {
		if v := attr(c); v != "" {
			set[v] = true
		}
	}
	values := make([]string, 0, len(set))
	for v := range set {
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}
