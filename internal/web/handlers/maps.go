package handlers

import (
	"net/http"

	"github.com/rentscope/internal/query"
)

// MapsHandler serves neighbourhood polygons for the hotspot map.
type MapsHandler struct {
	Store *query.Store
}

// GetGeometries returns every neighbourhood with its GeoJSON polygon.
func (h *MapsHandler) GetGeometries(w http.ResponseWriter, r *http.Request) {
	geometries, err := h.Store.NeighbourhoodGeometries()
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"neighbourhoods": geometries})
}
