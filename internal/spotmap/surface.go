package spotmap

import (
	"sync"

	"iftarspot/backend/internal/geo"
)

const (
	TileURL         = "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png"
	TileAttribution = "&copy; OpenStreetMap contributors"
	LocateZoom      = 15
)

// MarkerHandle identifies a marker placed on a Surface.
type MarkerHandle int

// Surface is a map-rendering target.
type Surface interface {
	SetTileLayer(url, attribution string)
	AddMarker(m Marker) MarkerHandle
	RemoveMarker(h MarkerHandle)
	FlyTo(center geo.Coordinate, zoom int)
	SetView(center geo.Coordinate, zoom int)
	FitBounds(b Bounds, padding, maxZoom int)
	Destroy()
}

// Renderer owns the markers it placed on one Surface. A new marker set always
// replaces the previous one, and there is at most one user-location marker.
type Renderer struct {
	mu      sync.Mutex
	surface Surface
	markers []MarkerHandle
	user    *MarkerHandle
	closed  bool
}

// NewRenderer installs the tile layer on surface.
func NewRenderer(surface Surface) *Renderer {
	surface.SetTileLayer(TileURL, TileAttribution)
	return &Renderer{surface: surface}
}

// Install removes the current marker set, places markers and applies vp.
func (r *Renderer) Install(markers []Marker, vp Viewport) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	for _, h := range r.markers {
		r.surface.RemoveMarker(h)
	}
	r.markers = r.markers[:0]
	for _, m := range markers {
		r.markers = append(r.markers, r.surface.AddMarker(m))
	}
	r.surface.SetView(vp.Center, vp.Zoom)
	if vp.Fit && vp.Bounds != nil {
		r.surface.FitBounds(*vp.Bounds, vp.Padding, vp.MaxZoom)
	}
	markersInstalled.Set(float64(len(markers)))
}

// ShowUser replaces the user-location marker and moves the view to it.
func (r *Renderer) ShowUser(pos geo.Coordinate) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	if r.user != nil {
		r.surface.RemoveMarker(*r.user)
	}
	h := r.surface.AddMarker(UserMarker(pos))
	r.user = &h
	r.surface.FlyTo(pos, LocateZoom)
}

// MarkerCount reports the installed spot markers, excluding the user marker.
func (r *Renderer) MarkerCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.markers)
}

// Teardown removes every marker and destroys the surface.
func (r *Renderer) Teardown() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	for _, h := range r.markers {
		r.surface.RemoveMarker(h)
	}
	r.markers = nil
	if r.user != nil {
		r.surface.RemoveMarker(*r.user)
		r.user = nil
	}
	r.surface.Destroy()
	r.closed = true
}
