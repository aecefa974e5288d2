package spotmap

import (
	"context"
	"sync"

	"iftarspot/backend/internal/models"
)

// Source is a read-only, versioned listing snapshot with change notification.
type Source interface {
	Snapshot() ([]models.Spot, uint64)
	Subscribe() (<-chan struct{}, func())
}

// View caches ResolveMapListings for the current snapshot version and day.
// It never mutates the source.
type View struct {
	source Source

	mu      sync.Mutex
	version uint64
	today   string
	valid   bool
	cached  []GeocodedSpot
}

func NewView(source Source) *View {
	return &View{source: source}
}

// Run drops the cache whenever the source reports a change, until ctx ends.
func (v *View) Run(ctx context.Context) {
	ch, cancel := v.source.Subscribe()
	defer cancel()
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-ch:
			if !ok {
				return
			}
			v.mu.Lock()
			v.valid = false
			v.mu.Unlock()
		}
	}
}

// Geocoded returns the resolved listings for today, recomputing when the
// snapshot version or the day has changed. Callers must not modify the
// returned slice.
func (v *View) Geocoded(today string) []GeocodedSpot {
	spots, version := v.source.Snapshot()
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.valid && v.version == version && v.today == today {
		return v.cached
	}
	cached, unresolved := resolve(spots, today)
	unresolvedLinks.Set(float64(unresolved))
	v.cached = cached
	v.version = version
	v.today = today
	v.valid = true
	return v.cached
}

// Result is one computed map response.
type Result struct {
	Today    string         `json:"today"`
	Query    string         `json:"query,omitempty"`
	Markers  []Marker       `json:"markers"`
	Viewport Viewport       `json:"viewport"`
	Geocoded []GeocodedSpot `json:"-"`
}

// Build runs search, projection and viewport for today and query.
func (v *View) Build(today, query string) Result {
	filtered := ApplySearch(v.Geocoded(today), query)
	return Result{
		Today:    today,
		Query:    query,
		Markers:  Project(filtered),
		Viewport: ComputeViewport(filtered),
		Geocoded: filtered,
	}
}
