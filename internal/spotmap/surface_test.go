package spotmap

import (
	"testing"

	"iftarspot/backend/internal/geo"
)

type recordingSurface struct {
	next      MarkerHandle
	live      map[MarkerHandle]Marker
	flyTo     []geo.Coordinate
	fits      int
	tile      string
	destroyed bool
}

func newRecordingSurface() *recordingSurface {
	return &recordingSurface{live: map[MarkerHandle]Marker{}}
}

func (s *recordingSurface) SetTileLayer(url, _ string) { s.tile = url }

func (s *recordingSurface) AddMarker(m Marker) MarkerHandle {
	s.next++
	s.live[s.next] = m
	return s.next
}

func (s *recordingSurface) RemoveMarker(h MarkerHandle) { delete(s.live, h) }

func (s *recordingSurface) FlyTo(c geo.Coordinate, _ int) { s.flyTo = append(s.flyTo, c) }

func (s *recordingSurface) SetView(geo.Coordinate, int) {}

func (s *recordingSurface) FitBounds(Bounds, int, int) { s.fits++ }

func (s *recordingSurface) Destroy() { s.destroyed = true }

func (s *recordingSurface) userMarkers() int {
	n := 0
	for _, m := range s.live {
		if m.User {
			n++
		}
	}
	return n
}

func TestRendererReplacesMarkerSet(t *testing.T) {
	surface := newRecordingSurface()
	r := NewRenderer(surface)
	if surface.tile != TileURL {
		t.Fatalf("expected tile layer to be installed")
	}

	first := Project(geocodedFixture())
	r.Install(first, ComputeViewport(geocodedFixture()))
	if len(surface.live) != len(first) {
		t.Fatalf("expected %d live markers, got %d", len(first), len(surface.live))
	}
	if surface.fits != 1 {
		t.Fatalf("expected one fit, got %d", surface.fits)
	}

	second := first[:1]
	r.Install(second, ComputeViewport(nil))
	if len(surface.live) != 1 || r.MarkerCount() != 1 {
		t.Fatalf("stale markers left behind: %d live", len(surface.live))
	}
	if surface.fits != 1 {
		t.Fatalf("empty viewport must not fit bounds")
	}
}

func TestRendererReplacesUserMarker(t *testing.T) {
	surface := newRecordingSurface()
	r := NewRenderer(surface)
	r.Install(Project(geocodedFixture()), ComputeViewport(geocodedFixture()))

	r.ShowUser(geo.Coordinate{Lat: 1, Lng: 1})
	r.ShowUser(geo.Coordinate{Lat: 2, Lng: 2})
	if surface.userMarkers() != 1 {
		t.Fatalf("expected exactly one user marker, got %d", surface.userMarkers())
	}
	if len(surface.flyTo) != 2 || surface.flyTo[1] != (geo.Coordinate{Lat: 2, Lng: 2}) {
		t.Fatalf("expected fly-to the latest fix, got %v", surface.flyTo)
	}
	if r.MarkerCount() != len(geocodedFixture()) {
		t.Fatalf("user marker must not change the spot markers")
	}
}

func TestRendererTeardown(t *testing.T) {
	surface := newRecordingSurface()
	r := NewRenderer(surface)
	r.Install(Project(geocodedFixture()), ComputeViewport(geocodedFixture()))
	r.ShowUser(geo.Coordinate{Lat: 1, Lng: 1})

	r.Teardown()
	if len(surface.live) != 0 || !surface.destroyed {
		t.Fatalf("expected empty destroyed surface, got %d live", len(surface.live))
	}

	r.Install(Project(geocodedFixture()), ComputeViewport(nil))
	if len(surface.live) != 0 {
		t.Fatalf("install after teardown must be a no-op")
	}
}
