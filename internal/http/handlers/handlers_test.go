package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"iftarspot/backend/internal/auth"
	"iftarspot/backend/internal/config"
	"iftarspot/backend/internal/locate"
	"iftarspot/backend/internal/models"
	"iftarspot/backend/internal/repository"
	"iftarspot/backend/internal/spotmap"

	"github.com/go-chi/chi/v5"
)

const testSecret = "test-secret"

var testNow = time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)

type fakeRepo struct {
	mu       sync.Mutex
	spots    map[string]models.Spot
	comments []models.Comment
	reviews  []models.Review
	users    map[string]models.User
	nextID   int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{spots: map[string]models.Spot{}, users: map[string]models.User{}}
}

func (f *fakeRepo) id(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s-%d", prefix, f.nextID)
}

func (f *fakeRepo) CreateSpot(_ context.Context, spot models.Spot) (models.Spot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	spot.ID = f.id("spot")
	if spot.Likes == nil {
		spot.Likes = []string{}
	}
	f.spots[spot.ID] = spot
	return spot, nil
}

func (f *fakeRepo) GetSpot(_ context.Context, id string) (models.Spot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	spot, ok := f.spots[id]
	if !ok {
		return models.Spot{}, repository.ErrNotFound
	}
	return spot, nil
}

func (f *fakeRepo) ListSpotsByCreator(_ context.Context, email string) ([]models.Spot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Spot{}
	for _, s := range f.spots {
		if s.CreatedByEmail == email {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeRepo) UpdateSpot(_ context.Context, id string, patch models.SpotPatch, actor repository.Actor) (models.Spot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	spot, ok := f.spots[id]
	if !ok {
		return models.Spot{}, repository.ErrNotFound
	}
	if !actor.CanModify(spot.CreatedByEmail) {
		return models.Spot{}, repository.ErrForbidden
	}
	if patch.MasjidName != nil {
		spot.MasjidName = *patch.MasjidName
	}
	f.spots[id] = spot
	return spot, nil
}

func (f *fakeRepo) DeleteSpot(_ context.Context, id string, actor repository.Actor) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	spot, ok := f.spots[id]
	if !ok {
		return repository.ErrNotFound
	}
	if !actor.CanModify(spot.CreatedByEmail) {
		return repository.ErrForbidden
	}
	delete(f.spots, id)
	return nil
}

func (f *fakeRepo) ToggleLike(_ context.Context, id, email string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	spot, ok := f.spots[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	next := []string{}
	found := false
	for _, e := range spot.Likes {
		if e == email {
			found = true
			continue
		}
		next = append(next, e)
	}
	if !found {
		next = append(next, email)
	}
	spot.Likes = next
	f.spots[id] = spot
	return next, nil
}

func (f *fakeRepo) ListComments(_ context.Context, spotID string) ([]models.Comment, error) {
	out := []models.Comment{}
	for _, c := range f.comments {
		if c.SpotID == spotID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeRepo) CreateComment(_ context.Context, spotID string, actor repository.Actor, text string) (models.Comment, error) {
	if _, ok := f.spots[spotID]; !ok {
		return models.Comment{}, repository.ErrNotFound
	}
	c := models.Comment{ID: f.id("c"), SpotID: spotID, Email: actor.Email, Name: actor.Name, Comment: text}
	f.comments = append(f.comments, c)
	return c, nil
}

func (f *fakeRepo) UpdateComment(_ context.Context, id string, actor repository.Actor, text string) (models.Comment, error) {
	for i, c := range f.comments {
		if c.ID == id {
			if !actor.CanModify(c.Email) {
				return models.Comment{}, repository.ErrForbidden
			}
			f.comments[i].Comment = text
			return f.comments[i], nil
		}
	}
	return models.Comment{}, repository.ErrNotFound
}

func (f *fakeRepo) DeleteComment(_ context.Context, id string, actor repository.Actor) error {
	for i, c := range f.comments {
		if c.ID == id {
			if !actor.CanModify(c.Email) {
				return repository.ErrForbidden
			}
			f.comments = append(f.comments[:i], f.comments[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeRepo) ListReviews(context.Context) ([]models.Review, error) {
	return append([]models.Review(nil), f.reviews...), nil
}

func (f *fakeRepo) ListReviewsByEmail(_ context.Context, email string) ([]models.Review, error) {
	out := []models.Review{}
	for _, r := range f.reviews {
		if r.Email == email {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRepo) CreateReview(_ context.Context, actor repository.Actor, comment string, rating int) (models.Review, error) {
	r := models.Review{ID: f.id("r"), Email: actor.Email, Name: actor.Name, Comment: comment, Rating: rating, CreatedAt: testNow}
	f.reviews = append(f.reviews, r)
	return r, nil
}

func (f *fakeRepo) UpdateReview(_ context.Context, id string, actor repository.Actor, comment string, rating int) (models.Review, error) {
	for i, r := range f.reviews {
		if r.ID == id {
			if !actor.CanModify(r.Email) {
				return models.Review{}, repository.ErrForbidden
			}
			f.reviews[i].Comment = comment
			if rating > 0 {
				f.reviews[i].Rating = rating
			}
			return f.reviews[i], nil
		}
	}
	return models.Review{}, repository.ErrNotFound
}

func (f *fakeRepo) DeleteReview(_ context.Context, id string, actor repository.Actor) error {
	for i, r := range f.reviews {
		if r.ID == id {
			if !actor.CanModify(r.Email) {
				return repository.ErrForbidden
			}
			f.reviews = append(f.reviews[:i], f.reviews[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeRepo) CreateUser(_ context.Context, email, name, hash string) (models.User, error) {
	if _, ok := f.users[email]; ok {
		return models.User{}, repository.ErrConflict
	}
	u := models.User{ID: f.id("u"), Email: email, Name: name, PasswordHash: hash}
	f.users[email] = u
	return u, nil
}

func (f *fakeRepo) GetUserByEmail(_ context.Context, email string) (models.User, error) {
	u, ok := f.users[email]
	if !ok {
		return models.User{}, repository.ErrNotFound
	}
	return u, nil
}

// fakeListings mirrors the repository's spots as a versioned snapshot.
type fakeListings struct {
	repo        *fakeRepo
	mu          sync.Mutex
	spots       []models.Spot
	version     uint64
	invalidated int
	patched     int
}

func (l *fakeListings) Snapshot() ([]models.Spot, uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]models.Spot(nil), l.spots...), l.version
}

func (l *fakeListings) Subscribe() (<-chan struct{}, func()) {
	return make(chan struct{}), func() {}
}

func (l *fakeListings) Invalidate(context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.invalidated++
	l.spots = l.spots[:0]
	for _, s := range l.repo.spots {
		l.spots = append(l.spots, s)
	}
	l.version++
	return nil
}

func (l *fakeListings) PatchLikes(_ context.Context, id string, likes []string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.patched++
	next := append([]models.Spot(nil), l.spots...)
	for i := range next {
		if next[i].ID == id {
			next[i].Likes = append([]string{}, likes...)
		}
	}
	l.spots = next
	l.version++
	return nil
}

func (l *fakeListings) set(spots ...models.Spot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.spots = spots
	l.version++
	for _, s := range spots {
		l.repo.spots[s.ID] = s
	}
}

type testEnv struct {
	repo     *fakeRepo
	listings *fakeListings
	handler  *Handler
	router   http.Handler
}

func newTestEnv(t *testing.T, locator locate.Locator) *testEnv {
	return newTestEnvWithGeocoder(t, locator, nil)
}

func newTestEnvWithGeocoder(t *testing.T, locator locate.Locator, geocoder Geocoder) *testEnv {
	t.Helper()
	repo := newFakeRepo()
	listings := &fakeListings{repo: repo}
	cfg := &config.Config{
		JWTSecret:   testSecret,
		AdminEmails: map[string]struct{}{"admin@ifter.com": {}},
		TodayZone:   time.UTC,
		Locate:      config.LocateConfig{Timeout: 50 * time.Millisecond},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := New(repo, listings, spotmap.NewView(listings), locator, geocoder, cfg, logger)
	h.now = func() time.Time { return testNow }
	r := chi.NewRouter()
	h.Mount(r)
	return &testEnv{repo: repo, listings: listings, handler: h, router: r}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func tokenFor(t *testing.T, email string, admin bool) string {
	t.Helper()
	token, err := auth.SignAccessToken(testSecret, "id-"+email, email, "User "+email, admin)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return token
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func spotFixtures() []models.Spot {
	spots := []models.Spot{
		{ID: "s1", MasjidName: "Baitul Mukarram", Area: "Paltan", Date: "2025-03-10", Items: []string{"biryani"},
			MapLink: "https://www.google.com/maps/place/x/@23.7291,90.4120,17z", CreatedByEmail: "owner@example.com", Likes: []string{}},
		{ID: "s2", MasjidName: "Star Mosque", Area: "Armanitola", Date: "2025-03-12", Items: []string{"khichuri"},
			MapLink: "https://maps.google.com/?q=23.7158,90.4020", CreatedByEmail: "owner@example.com", Likes: []string{}},
		{ID: "s3", MasjidName: "Old Spot", Area: "Mirpur", Date: "2025-03-01",
			MapLink: "https://maps.google.com/?q=23.8,90.36", Likes: []string{}},
		{ID: "s4", MasjidName: "Short Link", Area: "Uttara", MapLink: "https://goo.gl/maps/abc", Likes: []string{}},
		{ID: "s5", MasjidName: "No Link", Area: "Gulshan", Likes: []string{}},
	}
	for i := range spots {
		spots[i].Status = models.SpotStatusApproved
	}
	return spots
}
