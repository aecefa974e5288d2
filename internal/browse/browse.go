package browse

import (
	"sort"
	"strings"
	"time"

	"iftarspot/backend/internal/models"
)

const (
	SpotsPerPage   = 15
	ReviewsPerPage = 6
)

const (
	SortDateAsc    = "date-asc"
	SortDateDesc   = "date-desc"
	SortMasjidName = "masjidName"
	SortArea       = "area"
	SortItem       = "item"
)

// Filter mirrors the home page controls.
type Filter struct {
	Search    string
	TodayOnly bool
	Item      string
	Area      string
	Sort      string
}

// Page is one slice of a paginated list.
type Page[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	PerPage    int `json:"perPage"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// Stats summarises the active spots.
type Stats struct {
	Spots int `json:"spots"`
	Areas int `json:"areas"`
}

// Today formats now in loc as an ISO calendar date.
func Today(now time.Time, loc *time.Location) string {
	if loc != nil {
		now = now.In(loc)
	}
	return now.Format("2006-01-02")
}

// Expired reports whether spot has a date strictly before today. ISO dates
// are fixed width, so string comparison orders them.
func Expired(spot models.Spot, today string) bool {
	return spot.Date != "" && spot.Date < today
}

// MatchesSearch reports whether query is a case-insensitive substring of the
// masjid name or area. An empty query matches everything.
func MatchesSearch(spot models.Spot, query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	if spot.MasjidName != "" && strings.Contains(strings.ToLower(spot.MasjidName), q) {
		return true
	}
	return spot.Area != "" && strings.Contains(strings.ToLower(spot.Area), q)
}

// Active keeps spots that are undated or dated today or later.
func Active(spots []models.Spot, today string) []models.Spot {
	out := make([]models.Spot, 0, len(spots))
	for _, s := range spots {
		if Expired(s, today) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// Archived returns approved spots whose date has passed, newest first.
func Archived(spots []models.Spot, today string) []models.Spot {
	out := make([]models.Spot, 0)
	for _, s := range spots {
		if s.Status != models.SpotStatusApproved || !Expired(s, today) {
			continue
		}
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date > out[j].Date
	})
	return out
}

// Apply filters active spots and sorts them per f.
func Apply(spots []models.Spot, today string, f Filter) []models.Spot {
	area := strings.ToLower(strings.TrimSpace(f.Area))
	out := make([]models.Spot, 0, len(spots))
	for _, s := range spots {
		if Expired(s, today) {
			continue
		}
		if !MatchesSearch(s, f.Search) {
			continue
		}
		if f.TodayOnly && s.Date != today {
			continue
		}
		if f.Item != "" && !containsString(s.Items, f.Item) {
			continue
		}
		if area != "" && !strings.Contains(strings.ToLower(s.Area), area) {
			continue
		}
		out = append(out, s)
	}
	sortSpots(out, f.Sort)
	return out
}

func sortSpots(list []models.Spot, by string) {
	var less func(a, b models.Spot) bool
	switch by {
	case SortDateDesc:
		less = func(a, b models.Spot) bool { return a.Date > b.Date }
	case SortMasjidName:
		less = func(a, b models.Spot) bool { return a.MasjidName < b.MasjidName }
	case SortArea:
		less = func(a, b models.Spot) bool { return a.Area < b.Area }
	case SortItem:
		less = func(a, b models.Spot) bool { return a.PrimaryItem() < b.PrimaryItem() }
	case SortDateAsc, "":
		less = func(a, b models.Spot) bool { return a.Date < b.Date }
	default:
		return
	}
	sort.SliceStable(list, func(i, j int) bool { return less(list[i], list[j]) })
}

// Paginate returns page of list, clamping page into [1, totalPages].
func Paginate[T any](list []T, page, perPage int) Page[T] {
	if perPage <= 0 {
		perPage = SpotsPerPage
	}
	total := len(list)
	totalPages := (total + perPage - 1) / perPage
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}
	start := (page - 1) * perPage
	end := start + perPage
	if end > total {
		end = total
	}
	items := make([]T, 0, end-start)
	items = append(items, list[start:end]...)
	return Page[T]{
		Items:      items,
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	}
}

// ComputeStats counts spots and distinct areas.
func ComputeStats(active []models.Spot) Stats {
	areas := make(map[string]struct{}, len(active))
	for _, s := range active {
		areas[s.Area] = struct{}{}
	}
	return Stats{Spots: len(active), Areas: len(areas)}
}

// SortReviews orders reviews newest first.
func SortReviews(reviews []models.Review) []models.Review {
	out := append([]models.Review(nil), reviews...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func containsString(list []string, val string) bool {
	for _, item := range list {
		if item == val {
			return true
		}
	}
	return false
}
