package spotmap

import (
	"strings"

	"iftarspot/backend/internal/browse"
	"iftarspot/backend/internal/geo"
	"iftarspot/backend/internal/models"
)

const (
	DefaultZoom = 7
	FitPadding  = 40
	FitMaxZoom  = 15
)

// DefaultCenter is the Dhaka centroid used when there is nothing to show.
var DefaultCenter = geo.Coordinate{Lat: 23.8103, Lng: 90.4125}

// GeocodedSpot is a spot with a coordinate resolved from its map link.
type GeocodedSpot struct {
	models.Spot
	Position geo.Coordinate `json:"position"`
}

// Bounds is the smallest box containing a set of coordinates.
type Bounds struct {
	SouthWest geo.Coordinate `json:"southWest"`
	NorthEast geo.Coordinate `json:"northEast"`
}

// Viewport is either a fixed center/zoom or a fit to Bounds. Center is always
// set so surfaces can show a placeholder before fitting.
type Viewport struct {
	Center  geo.Coordinate `json:"center"`
	Zoom    int            `json:"zoom,omitempty"`
	Fit     bool           `json:"fit"`
	Bounds  *Bounds        `json:"bounds,omitempty"`
	Padding int            `json:"padding,omitempty"`
	MaxZoom int            `json:"maxZoom,omitempty"`
}

// ResolveMapListings keeps spots that have a map link, are not expired and
// whose link yields a coordinate. Input order is preserved.
func ResolveMapListings(spots []models.Spot, today string) []GeocodedSpot {
	out, _ := resolve(spots, today)
	return out
}

// resolve also reports how many live links yielded no coordinate.
func resolve(spots []models.Spot, today string) ([]GeocodedSpot, int) {
	out := make([]GeocodedSpot, 0, len(spots))
	unresolved := 0
	for _, s := range spots {
		if strings.TrimSpace(s.MapLink) == "" {
			continue
		}
		if browse.Expired(s, today) {
			continue
		}
		pos, ok := geo.ExtractCoordinates(s.MapLink)
		if !ok {
			unresolved++
			continue
		}
		out = append(out, GeocodedSpot{Spot: s, Position: pos})
	}
	return out, unresolved
}

// ApplySearch keeps entries whose masjid name or area contains query,
// ignoring case. A blank query returns geocoded unchanged.
func ApplySearch(geocoded []GeocodedSpot, query string) []GeocodedSpot {
	if strings.TrimSpace(query) == "" {
		return geocoded
	}
	out := make([]GeocodedSpot, 0, len(geocoded))
	for _, g := range geocoded {
		if browse.MatchesSearch(g.Spot, query) {
			out = append(out, g)
		}
	}
	return out
}

// ComputeViewport returns the default regional view for an empty set, and
// otherwise the centroid plus the bounding box to fit.
func ComputeViewport(geocoded []GeocodedSpot) Viewport {
	if len(geocoded) == 0 {
		return Viewport{Center: DefaultCenter, Zoom: DefaultZoom}
	}
	var sumLat, sumLng float64
	b := Bounds{SouthWest: geocoded[0].Position, NorthEast: geocoded[0].Position}
	for _, g := range geocoded {
		p := g.Position
		sumLat += p.Lat
		sumLng += p.Lng
		if p.Lat < b.SouthWest.Lat {
			b.SouthWest.Lat = p.Lat
		}
		if p.Lng < b.SouthWest.Lng {
			b.SouthWest.Lng = p.Lng
		}
		if p.Lat > b.NorthEast.Lat {
			b.NorthEast.Lat = p.Lat
		}
		if p.Lng > b.NorthEast.Lng {
			b.NorthEast.Lng = p.Lng
		}
	}
	n := float64(len(geocoded))
	return Viewport{
		Center:  geo.Coordinate{Lat: sumLat / n, Lng: sumLng / n},
		Fit:     true,
		Bounds:  &b,
		Padding: FitPadding,
		MaxZoom: FitMaxZoom,
	}
}

// Positions lists the coordinates of geocoded in order.
func Positions(geocoded []GeocodedSpot) []geo.Coordinate {
	out := make([]geo.Coordinate, 0, len(geocoded))
	for _, g := range geocoded {
		out = append(out, g.Position)
	}
	return out
}
