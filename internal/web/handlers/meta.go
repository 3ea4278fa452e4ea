package handlers

import (
	"net/http"

	"github.com/rentscope/internal/query"
)

// MetaHandler serves the dashboard's filter vocabularies: cities, room
// types, seasons, price buckets and guest capacities.
type MetaHandler struct {
	Store *query.Store
}

// GetCities returns the distinct city names.
func (h *MetaHandler) GetCities(w http.ResponseWriter, r *http.Request) {
	cities, err := h.Store.Cities()
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"cities": cities})
}

// GetRoomTypes returns the distinct room types.
func (h *MetaHandler) GetRoomTypes(w http.ResponseWriter, r *http.Request) {
	roomTypes, err := h.Store.RoomTypes()
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"room_types": roomTypes})
}

// GetSeasons returns the observed seasons in calendar order.
func (h *MetaHandler) GetSeasons(w http.ResponseWriter, r *http.Request) {
	seasons, err := h.Store.Seasons()
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"seasons": seasons})
}

// GetPriceRanges returns the observed price buckets, cheapest first.
func (h *MetaHandler) GetPriceRanges(w http.ResponseWriter, r *http.Request) {
	ranges, err := h.Store.PriceRangeOptions()
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"price_ranges": ranges})
}

// GetAccommodates returns the distinct guest capacities.
func (h *MetaHandler) GetAccommodates(w http.ResponseWriter, r *http.Request) {
	values, err := h.Store.AccommodatesValues()
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"accommodates": values})
}

// GetNeighbourhoods returns the neighbourhoods of the requested city.
func (h *MetaHandler) GetNeighbourhoods(w http.ResponseWriter, r *http.Request) {
	city := r.URL.Query().Get("city")
	if city == "" {
		http.Error(w, "city parameter is required", http.StatusBadRequest)
		return
	}
	neighbourhoods, err := h.Store.NeighbourhoodsByCity(city)
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"neighbourhoods": neighbourhoods})
}
