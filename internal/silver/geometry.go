package silver

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/paulmach/orb/geojson"
)

// LoadGeometrySource reads the external neighbourhood geometry CSV
// (neighbourhood, neighbourhood_group, city, WKT geometry). Names are
// normalized the same way listing neighbourhoods are, so the two sides
// of the join agree byte-for-byte. Duplicate names keep the first
// occurrence. Polygons are re-encoded as GeoJSON for the JSONB
// geometry column.
func LoadGeometrySource(csvPath string, log *slog.Logger) ([]NeighbourhoodGeometry, error) {
	file, err := os.Open(csvPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open geometry CSV: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read geometry CSV header: %w", err)
	}
	columnMap := make(map[string]int)
	for i, col := range header {
		columnMap[strings.ToLower(strings.TrimSpace(col))] = i
	}
	for _, required := range []string{"neighbourhood", "geometry"} {
		if _, ok := columnMap[required]; !ok {
			return nil, fmt.Errorf("geometry CSV missing column %q", required)
		}
	}

	field := func(record []string, name string) string {
		if idx, ok := columnMap[name]; ok && idx < len(record) {
			return strings.TrimSpace(record[idx])
		}
		return ""
	}

	var geoms []NeighbourhoodGeometry
	seen := make(map[string]bool)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read geometry CSV record: %w", err)
		}

		name := NormalizeNeighbourhood(field(record, "neighbourhood"))
		if name == "" {
			continue
		}
		if seen[name] {
			log.Warn("duplicate neighbourhood in geometry source, keeping first", "neighbourhood", name)
			continue
		}

		geoJSON, err := wktToGeoJSON(field(record, "geometry"))
		if err != nil {
			return nil, fmt.Errorf("bad geometry for neighbourhood %q: %w", name, err)
		}

		seen[name] = true
		geoms = append(geoms, NeighbourhoodGeometry{
			Name:    name,
			Group:   field(record, "neighbourhood_group"),
			City:    field(record, "city"),
			GeoJSON: geoJSON,
		})
	}

	log.Info("geometry source loaded", "neighbourhoods", len(geoms))
	return geoms, nil
}

// wktToGeoJSON parses a WKT polygon or multipolygon and re-encodes it
// as a GeoJSON geometry object.
func wktToGeoJSON(wktText string) (string, error) {
	geom, err := wkt.Unmarshal(wktText)
	if err != nil {
		return "", fmt.Errorf("failed to parse WKT: %w", err)
	}

	switch geom.(type) {
	case orb.Polygon, orb.MultiPolygon:
	default:
		return "", fmt.Errorf("unsupported geometry type %s", geom.GeoJSONType())
	}

	data, err := json.Marshal(geojson.NewGeometry(geom))
	if err != nil {
		return "", fmt.Errorf("failed to encode GeoJSON: %w", err)
	}
	return string(data), nil
}
