package spotmap

import (
	"iftarspot/backend/internal/browse"
	"iftarspot/backend/internal/geo"
)

// Popup is the content shown when a marker is opened.
type Popup struct {
	MasjidName string   `json:"masjidName"`
	Area       string   `json:"area"`
	AreaDetail string   `json:"areaDetail,omitempty"`
	Date       string   `json:"date,omitempty"`
	Items      []string `json:"items"`
	ItemImage  string   `json:"itemImage"`
	Phone      string   `json:"phone,omitempty"`
	MapLink    string   `json:"mapLink"`
}

// Marker is one renderable pin.
type Marker struct {
	ID       string         `json:"id"`
	Position geo.Coordinate `json:"position"`
	Popup    Popup          `json:"popup"`
	User     bool           `json:"user,omitempty"`
}

// Project turns geocoded spots into markers, one per spot, in order.
func Project(geocoded []GeocodedSpot) []Marker {
	out := make([]Marker, 0, len(geocoded))
	for _, g := range geocoded {
		labels := make([]string, 0, len(g.Items))
		for _, key := range g.Items {
			labels = append(labels, browse.ItemLabel(key))
		}
		if len(labels) == 0 && g.ItemDisplay != "" {
			labels = append(labels, g.ItemDisplay)
		}
		out = append(out, Marker{
			ID:       g.ID,
			Position: g.Position,
			Popup: Popup{
				MasjidName: g.MasjidName,
				Area:       g.Area,
				AreaDetail: g.AreaDetail,
				Date:       g.Date,
				Items:      labels,
				ItemImage:  browse.ItemImage(g.PrimaryItem()),
				Phone:      g.Phone,
				MapLink:    g.MapLink,
			},
		})
	}
	return out
}

// UserMarker is the distinguished "you are here" pin.
func UserMarker(pos geo.Coordinate) Marker {
	return Marker{
		ID:       "user-location",
		Position: pos,
		Popup:    Popup{MasjidName: "You are here"},
		User:     true,
	}
}
