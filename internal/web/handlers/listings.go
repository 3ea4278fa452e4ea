package handlers

import (
	"net/http"

	"github.com/rentscope/internal/query"
)

// ListingsHandler serves the listing catalog and recommendation search
// endpoints.
type ListingsHandler struct {
	Store *query.Store
}

// filtersFromRequest maps query parameters to the shared filter set.
func filtersFromRequest(r *http.Request) query.Filters {
	q := r.URL.Query()
	return query.Filters{
		City:          q.Get("city"),
		Neighbourhood: q.Get("neighbourhood"),
		Season:        q.Get("season"),
		RoomType:      q.Get("room_type"),
		Accommodates:  parseIntParam(q.Get("accommodates"), 0),
		Nights:        parseIntParam(q.Get("nights"), 0),
		PriceRange:    q.Get("price_range"),
	}
}

// SearchListings returns aggregated listings matching the filters,
// newest ids first.
func (h *ListingsHandler) SearchListings(w http.ResponseWriter, r *http.Request) {
	listings, err := h.Store.SearchListings(filtersFromRequest(r))
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"listings": listings,
		"total":    len(listings),
	})
}

// SearchRecommendations returns recommendation rows matching the
// filters, newest ids first.
func (h *ListingsHandler) SearchRecommendations(w http.ResponseWriter, r *http.Request) {
	recommendations, err := h.Store.SearchRecommendations(filtersFromRequest(r))
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"recommendations": recommendations,
		"total":           len(recommendations),
	})
}

// GetNeighbourhoodStats returns the earnings-estimate statistics for
// one neighbourhood.
func (h *ListingsHandler) GetNeighbourhoodStats(w http.ResponseWriter, r *http.Request) {
	neighbourhood := r.URL.Query().Get("neighbourhood")
	if neighbourhood == "" {
		http.Error(w, "neighbourhood parameter is required", http.StatusBadRequest)
		return
	}
	stats, err := h.Store.NeighbourhoodStats(neighbourhood)
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// GetNeighbourhoodLocation returns the average coordinates of a
// neighbourhood's listings.
func (h *ListingsHandler) GetNeighbourhoodLocation(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	city := q.Get("city")
	neighbourhood := q.Get("neighbourhood")
	if city == "" || neighbourhood == "" {
		http.Error(w, "city and neighbourhood parameters are required", http.StatusBadRequest)
		return
	}
	lat, lon, err := h.Store.NeighbourhoodLocation(city, neighbourhood)
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{
		"latitude":  lat,
		"longitude": lon,
	})
}
