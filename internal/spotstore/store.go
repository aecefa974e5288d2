package spotstore

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"iftarspot/backend/internal/models"

	"github.com/google/uuid"
)

const (
	cacheKey      = "spots:all"
	cacheTTL      = 5 * time.Minute
	changeChannel = "spots:changed"
)

// Loader reads the full listing from durable storage.
type Loader interface {
	ListSpots(ctx context.Context) ([]models.Spot, error)
}

// Cache shares the loaded listing between API and worker instances.
type Cache interface {
	Get(ctx context.Context, name string, dest interface{}) (bool, error)
	Set(ctx context.Context, name string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, name string) error
}

// Notifier broadcasts listing changes to the other instances.
type Notifier interface {
	Publish(ctx context.Context, channel, message string) error
	Listen(ctx context.Context, channel string) (<-chan string, func() error, error)
}

// change is the message published after a write. A like names the spot and
// carries its new likes so peers can patch in place; a change without a spot
// id makes them reload.
type change struct {
	Origin string   `json:"origin"`
	SpotID string   `json:"spotId,omitempty"`
	Likes  []string `json:"likes"`
}

// Store owns the process-wide listing snapshot. Readers get copies; the
// snapshot only changes through Refresh, Invalidate, PatchLikes or a peer
// notification.
type Store struct {
	loader   Loader
	cache    Cache
	notifier Notifier
	logger   *slog.Logger
	origin   string

	// reloadMu is held across load and install so that the listing installed
	// last is always the one loaded last.
	reloadMu sync.Mutex

	mu      sync.RWMutex
	spots   []models.Spot
	version uint64

	subMu  sync.Mutex
	nextID int
	subs   map[int]chan struct{}
}

// New creates a store. cache may be nil.
func New(loader Loader, cache Cache, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		loader: loader,
		cache:  cache,
		logger: logger,
		origin: uuid.NewString(),
		subs:   make(map[int]chan struct{}),
	}
}

// WithNotifier enables cross-instance change notification.
func (s *Store) WithNotifier(n Notifier) *Store {
	s.notifier = n
	return s
}

// Refresh reloads the listing, preferring the shared cache, and notifies
// subscribers.
func (s *Store) Refresh(ctx context.Context) error {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	spots, err := s.load(ctx)
	if err != nil {
		s.logger.Error("action", "action", "spotstore.refresh", "status", "error", "error", err)
		return err
	}
	s.install(spots, "spotstore.refresh")
	return nil
}

// Invalidate reloads from the database after a local write, replaces the
// shared cache entry and tells the other instances to reload.
func (s *Store) Invalidate(ctx context.Context) error {
	if err := s.reload(ctx, "spotstore.invalidate"); err != nil {
		return err
	}
	s.publish(ctx, change{Origin: s.origin})
	return nil
}

// PatchLikes replaces the likes of one spot without reloading the listing.
// An unknown id falls back to Invalidate.
func (s *Store) PatchLikes(ctx context.Context, id string, likes []string) error {
	s.reloadMu.Lock()
	if !s.patch(id, likes) {
		s.reloadMu.Unlock()
		return s.Invalidate(ctx)
	}
	s.storeCache(ctx)
	s.reloadMu.Unlock()

	s.notify()
	s.publish(ctx, change{Origin: s.origin, SpotID: id, Likes: likes})
	return nil
}

// Watch subscribes to changes published by other instances and applies them
// in the background until ctx ends. It is a no-op without a notifier.
func (s *Store) Watch(ctx context.Context) error {
	if s.notifier == nil {
		return nil
	}
	msgs, closeFn, err := s.notifier.Listen(ctx, changeChannel)
	if err != nil {
		return err
	}
	go func() {
		defer func() {
			_ = closeFn()
		}()
		for {
			select {
			case <-ctx.Done():
				return
			case raw, ok := <-msgs:
				if !ok {
					return
				}
				s.apply(ctx, raw)
			}
		}
	}()
	return nil
}

// RefreshEvery calls Refresh on interval until ctx ends. It bounds staleness
// when a peer notification is missed.
func (s *Store) RefreshEvery(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(interval):
		}
		_ = s.Refresh(ctx)
	}
}

func (s *Store) apply(ctx context.Context, raw string) {
	var msg change
	if err := json.Unmarshal([]byte(raw), &msg); err != nil {
		s.logger.Warn("action", "action", "spotstore.peer_change", "status", "bad_message", "error", err)
		return
	}
	if msg.Origin == s.origin {
		return
	}
	if msg.SpotID != "" {
		s.reloadMu.Lock()
		patched := s.patch(msg.SpotID, msg.Likes)
		s.reloadMu.Unlock()
		if patched {
			s.notify()
			return
		}
	}
	_ = s.reload(ctx, "spotstore.peer_change")
}

// reload bypasses the shared cache, then rewrites it.
func (s *Store) reload(ctx context.Context, action string) error {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	if s.cache != nil {
		if err := s.cache.Delete(ctx, cacheKey); err != nil {
			s.logger.Warn("action", "action", action, "status", "cache_error", "error", err)
		}
	}
	spots, err := s.loader.ListSpots(ctx)
	if err != nil {
		s.logger.Error("action", "action", action, "status", "error", "error", err)
		return err
	}
	s.install(spots, action)
	s.storeCache(ctx)
	return nil
}

func (s *Store) load(ctx context.Context) ([]models.Spot, error) {
	if s.cache != nil {
		var cached []models.Spot
		found, err := s.cache.Get(ctx, cacheKey, &cached)
		if err != nil {
			s.logger.Warn("action", "action", "spotstore.cache_get", "status", "error", "error", err)
		} else if found {
			return cached, nil
		}
	}
	spots, err := s.loader.ListSpots(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, spots, cacheTTL); err != nil {
			s.logger.Warn("action", "action", "spotstore.cache_set", "status", "error", "error", err)
		}
	}
	return spots, nil
}

// install swaps in spots and notifies subscribers. Callers hold reloadMu.
func (s *Store) install(spots []models.Spot, action string) {
	s.mu.Lock()
	s.spots = spots
	s.version++
	version := s.version
	s.mu.Unlock()

	s.logger.Debug("action", "action", action, "status", "ok", "spots", len(spots), "version", version)
	s.notify()
}

// patch reports whether id was found. Callers hold reloadMu.
func (s *Store) patch(id string, likes []string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.spots {
		if s.spots[i].ID != id {
			continue
		}
		next := make([]models.Spot, len(s.spots))
		copy(next, s.spots)
		next[i].Likes = append([]string{}, likes...)
		s.spots = next
		s.version++
		return true
	}
	return false
}

// storeCache writes the installed listing to the shared cache. Callers hold
// reloadMu.
func (s *Store) storeCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	s.mu.RLock()
	spots := s.spots
	s.mu.RUnlock()
	if err := s.cache.Set(ctx, cacheKey, spots, cacheTTL); err != nil {
		s.logger.Warn("action", "action", "spotstore.cache_set", "status", "error", "error", err)
	}
}

func (s *Store) publish(ctx context.Context, msg change) {
	if s.notifier == nil {
		return
	}
	raw, err := json.Marshal(msg)
	if err != nil {
		return
	}
	if err := s.notifier.Publish(ctx, changeChannel, string(raw)); err != nil {
		s.logger.Warn("action", "action", "spotstore.publish", "status", "error", "error", err)
	}
}

// Snapshot returns a copy of the current listing and its version.
func (s *Store) Snapshot() ([]models.Spot, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Spot, len(s.spots))
	copy(out, s.spots)
	return out, s.version
}

// Subscribe returns a channel that receives a value after each change. At
// most one notification is buffered; cancel closes the channel.
func (s *Store) Subscribe() (<-chan struct{}, func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextID
	s.nextID++
	ch := make(chan struct{}, 1)
	s.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

func (s *Store) notify() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
