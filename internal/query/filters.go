package query

import "strconv"

// Filters is a conjunctive set of dashboard predicates over the gold
// schema. Zero values mean "no filter". Values are always bound as
// query parameters, never interpolated, so neighbourhood names with
// apostrophes pass through safely.
type Filters struct {
	City          string
	Neighbourhood string
	Season        string
	RoomType      string
	Accommodates  int
	// Nights filters to listings whose stay-length window covers this
	// many nights (minimum_nights <= Nights <= maximum_nights).
	Nights     int
	PriceRange string
}

// listingsClause renders the predicates gold.listings_aggregated can
// satisfy. The catalog table collapses all periods into one row and
// has no season or price_range column, so those filters are not
// rendered against it.
func (f Filters) listingsClause() (string, []interface{}) {
	return f.whereClause(false)
}

// recommendationsClause renders the full predicate set for
// gold.recommendations_summary, which keeps one row per season and
// carries the price bucket.
func (f Filters) recommendationsClause() (string, []interface{}) {
	return f.whereClause(true)
}

// whereClause renders the filters as an AND-joined WHERE fragment with
// $n placeholders starting at $1, plus the matching argument list.
// With no filters set it degenerates to WHERE 1=1. seasonal guards the
// season and price_range predicates, which only per-season tables
// have columns for.
func (f Filters) whereClause(seasonal bool) (string, []interface{}) {
	clause := "WHERE 1=1"
	var args []interface{}
	argIndex := 1

	add := func(condition string, value interface{}) {
		clause += " AND " + condition + " $" + strconv.Itoa(argIndex)
		args = append(args, value)
		argIndex++
	}

	if f.City != "" {
		add("city_name =", f.City)
	}
	if f.Neighbourhood != "" {
		add("neighbourhood =", f.Neighbourhood)
	}
	if seasonal && f.Season != "" {
		add("season =", f.Season)
	}
	if f.RoomType != "" {
		add("room_type =", f.RoomType)
	}
	if f.Accommodates > 0 {
		add("accommodates =", f.Accommodates)
	}
	if f.Nights > 0 {
		add("minimum_nights <=", f.Nights)
		add("maximum_nights >=", f.Nights)
	}
	if seasonal && f.PriceRange != "" {
		add("price_range =", f.PriceRange)
	}
	return clause, args
}
