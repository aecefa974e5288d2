package handlers

import (
	"net/http"
	"testing"

	"iftarspot/backend/internal/browse"
	"iftarspot/backend/internal/models"
)

func TestListSpotsFiltersAndPages(t *testing.T) {
	env := newTestEnv(t, nil)
	env.listings.set(spotFixtures()...)

	cases := []struct {
		name  string
		path  string
		total int
		first string
	}{
		{"active default sort", "/spots", 4, "s4"},
		{"today only", "/spots?today=1", 1, "s1"},
		{"item", "/spots?item=khichuri", 1, "s2"},
		{"search", "/spots?q=STAR", 1, "s2"},
		{"date desc", "/spots?sort=date-desc", 4, "s2"},
		{"page clamps", "/spots?page=99", 4, "s4"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := env.do(t, http.MethodGet, tc.path, nil, "")
			if rec.Code != http.StatusOK {
				t.Fatalf("status %d", rec.Code)
			}
			var resp struct {
				browse.Page[models.Spot]
				Today string `json:"today"`
			}
			decodeBody(t, rec, &resp)
			if resp.Total != tc.total || resp.Today != "2025-03-10" || resp.Page.Page != 1 {
				t.Fatalf("unexpected page %+v", resp.Page)
			}
			if resp.Items[0].ID != tc.first {
				t.Fatalf("expected first %s, got %s", tc.first, resp.Items[0].ID)
			}
		})
	}
}

func TestArchivedAndStats(t *testing.T) {
	env := newTestEnv(t, nil)
	env.listings.set(spotFixtures()...)

	rec := env.do(t, http.MethodGet, "/spots/archived", nil, "")
	var archived browse.Page[models.Spot]
	decodeBody(t, rec, &archived)
	if archived.Total != 1 || archived.Items[0].ID != "s3" {
		t.Fatalf("unexpected archive %+v", archived)
	}

	rec = env.do(t, http.MethodGet, "/spots/stats", nil, "")
	var stats browse.Stats
	decodeBody(t, rec, &stats)
	if stats.Spots != 4 || stats.Areas != 4 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestCreateSpot(t *testing.T) {
	env := newTestEnv(t, nil)
	body := map[string]interface{}{
		"masjidName": " Lalbagh Shahi Masjid ",
		"area":       "Lalbagh",
		"areaDetail": "Near the fort",
		"date":       "2025-03-11",
		"items":      []string{"others"},
		"customItem": "Beef Tehari",
		"phone":      "01700000000",
		"mapLink":    "https://maps.google.com/?q=23.7189,90.3882",
	}

	if rec := env.do(t, http.MethodPost, "/spots", body, ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	token := tokenFor(t, "rahim@example.com", false)
	rec := env.do(t, http.MethodPost, "/spots", body, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var spot models.Spot
	decodeBody(t, rec, &spot)
	if spot.MasjidName != "Lalbagh Shahi Masjid" || spot.CreatedByEmail != "rahim@example.com" {
		t.Fatalf("unexpected spot %+v", spot)
	}
	if len(spot.Items) != 1 || spot.Items[0] != "beeftehari" || spot.ItemDisplay != "Beef Tehari" {
		t.Fatalf("expected custom item key, got %v %q", spot.Items, spot.ItemDisplay)
	}
	if spot.RoleAtCreation != models.RoleUser || spot.Status != models.SpotStatusApproved {
		t.Fatalf("unexpected role/status %+v", spot)
	}
	if env.listings.invalidated != 1 {
		t.Fatalf("expected listings refresh after create")
	}

	rec = env.do(t, http.MethodGet, "/map", nil, "")
	var result struct {
		Markers []struct {
			ID string `json:"id"`
		} `json:"markers"`
	}
	decodeBody(t, rec, &result)
	if len(result.Markers) != 1 || result.Markers[0].ID != spot.ID {
		t.Fatalf("new spot should appear on the map, got %+v", result.Markers)
	}
}

func TestCreateSpotValidation(t *testing.T) {
	env := newTestEnv(t, nil)
	token := tokenFor(t, "rahim@example.com", false)

	cases := []struct {
		name string
		body map[string]interface{}
	}{
		{"missing fields", map[string]interface{}{"masjidName": "X"}},
		{"bad date", map[string]interface{}{
			"masjidName": "X", "area": "Y", "areaDetail": "Z", "phone": "1", "mapLink": "l", "date": "10/03/2025",
		}},
		{"others without text", map[string]interface{}{
			"masjidName": "X", "area": "Y", "areaDetail": "Z", "phone": "1", "mapLink": "l", "items": []string{"others"},
		}},
		{"unknown field", map[string]interface{}{"masjid": "X"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/spots", tc.body, token)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
		})
	}
	if len(env.repo.spots) != 0 {
		t.Fatalf("invalid requests must not create spots")
	}
}

func TestUpdateDeleteOwnership(t *testing.T) {
	env := newTestEnv(t, nil)
	env.listings.set(spotFixtures()...)

	name := map[string]string{"masjidName": "Renamed"}
	stranger := tokenFor(t, "stranger@example.com", false)
	if rec := env.do(t, http.MethodPatch, "/spots/s1", name, stranger); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	if rec := env.do(t, http.MethodPatch, "/spots/missing", name, stranger); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	owner := tokenFor(t, "owner@example.com", false)
	rec := env.do(t, http.MethodPatch, "/spots/s1", name, owner)
	if rec.Code != http.StatusOK {
		t.Fatalf("owner update: %d %s", rec.Code, rec.Body.String())
	}

	admin := tokenFor(t, "admin@ifter.com", true)
	if rec := env.do(t, http.MethodDelete, "/spots/s2", nil, admin); rec.Code != http.StatusNoContent {
		t.Fatalf("admin delete: %d", rec.Code)
	}
	if rec := env.do(t, http.MethodGet, "/spots/s2", nil, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected deleted spot to be gone, got %d", rec.Code)
	}
}

func TestToggleLike(t *testing.T) {
	env := newTestEnv(t, nil)
	env.listings.set(spotFixtures()...)
	token := tokenFor(t, "fan@example.com", false)

	var resp struct {
		Likes []string `json:"likes"`
		Liked bool     `json:"liked"`
		Count int      `json:"count"`
	}
	rec := env.do(t, http.MethodPost, "/spots/s1/like", nil, token)
	decodeBody(t, rec, &resp)
	if !resp.Liked || resp.Count != 1 {
		t.Fatalf("expected like, got %+v", resp)
	}
	if env.listings.invalidated != 0 || env.listings.patched != 1 {
		t.Fatalf("like should patch the snapshot, invalidated=%d patched=%d", env.listings.invalidated, env.listings.patched)
	}
	spots, _ := env.listings.Snapshot()
	for _, s := range spots {
		if s.ID == "s1" && len(s.Likes) != 1 {
			t.Fatalf("expected patched likes on s1, got %v", s.Likes)
		}
	}
	rec = env.do(t, http.MethodPost, "/spots/s1/like", nil, token)
	decodeBody(t, rec, &resp)
	if resp.Liked || resp.Count != 0 {
		t.Fatalf("expected unlike, got %+v", resp)
	}
}

func TestResolveItems(t *testing.T) {
	items, display, ok := resolveItems([]string{"biryani", "others", "biryani"}, "Haleem")
	if !ok || len(items) != 2 || items[1] != "haleem" || display != "Haleem" {
		t.Fatalf("unexpected %v %q %v", items, display, ok)
	}
	if _, _, ok := resolveItems([]string{"others"}, ""); ok {
		t.Fatalf("others without text must fail")
	}
}
