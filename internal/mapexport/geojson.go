package mapexport

import (
	"iftarspot/backend/internal/spotmap"
)

type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

type Feature struct {
	Type       string        `json:"type"`
	ID         string        `json:"id"`
	Geometry   Geometry      `json:"geometry"`
	Properties spotmap.Popup `json:"properties"`
}

// Geometry is a GeoJSON point; Coordinates are [lng, lat].
type Geometry struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

// Build converts markers into a FeatureCollection, skipping the user marker.
func Build(markers []spotmap.Marker) FeatureCollection {
	fc := FeatureCollection{Type: "FeatureCollection", Features: make([]Feature, 0, len(markers))}
	for _, m := range markers {
		if m.User {
			continue
		}
		fc.Features = append(fc.Features, Feature{
			Type: "Feature",
			ID:   m.ID,
			Geometry: Geometry{
				Type:        "Point",
				Coordinates: [2]float64{m.Position.Lng, m.Position.Lat},
			},
			Properties: m.Popup,
		})
	}
	return fc
}
