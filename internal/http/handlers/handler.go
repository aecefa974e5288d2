package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"iftarspot/backend/internal/browse"
	"iftarspot/backend/internal/config"
	"iftarspot/backend/internal/geo"
	"iftarspot/backend/internal/geocode"
	authmw "iftarspot/backend/internal/http/middleware"
	"iftarspot/backend/internal/locate"
	"iftarspot/backend/internal/models"
	"iftarspot/backend/internal/rate"
	"iftarspot/backend/internal/repository"
	"iftarspot/backend/internal/spotmap"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
)

// Repository is the persistence the handlers need.
type Repository interface {
	CreateSpot(ctx context.Context, spot models.Spot) (models.Spot, error)
	GetSpot(ctx context.Context, id string) (models.Spot, error)
	ListSpotsByCreator(ctx context.Context, email string) ([]models.Spot, error)
	UpdateSpot(ctx context.Context, id string, patch models.SpotPatch, actor repository.Actor) (models.Spot, error)
	DeleteSpot(ctx context.Context, id string, actor repository.Actor) error
	ToggleLike(ctx context.Context, id, email string) ([]string, error)

	ListComments(ctx context.Context, spotID string) ([]models.Comment, error)
	CreateComment(ctx context.Context, spotID string, actor repository.Actor, text string) (models.Comment, error)
	UpdateComment(ctx context.Context, id string, actor repository.Actor, text string) (models.Comment, error)
	DeleteComment(ctx context.Context, id string, actor repository.Actor) error

	ListReviews(ctx context.Context) ([]models.Review, error)
	ListReviewsByEmail(ctx context.Context, email string) ([]models.Review, error)
	CreateReview(ctx context.Context, actor repository.Actor, comment string, rating int) (models.Review, error)
	UpdateReview(ctx context.Context, id string, actor repository.Actor, comment string, rating int) (models.Review, error)
	DeleteReview(ctx context.Context, id string, actor repository.Actor) error

	CreateUser(ctx context.Context, email, name, passwordHash string) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
}

// Listings is the shared spot snapshot.
type Listings interface {
	Snapshot() ([]models.Spot, uint64)
	Invalidate(ctx context.Context) error
	PatchLikes(ctx context.Context, id string, likes []string) error
}

// Geocoder names the place at a coordinate.
type Geocoder interface {
	Reverse(ctx context.Context, pos geo.Coordinate) (geocode.Place, error)
}

type Handler struct {
	repo           Repository
	listings       Listings
	view           *spotmap.View
	locator        locate.Locator
	geocoder       Geocoder
	cfg            *config.Config
	logger         *slog.Logger
	validator      *validator.Validate
	likeLimiter    *rate.WindowLimiter
	commentLimiter *rate.WindowLimiter
	now            func() time.Time
}

func New(repo Repository, listings Listings, view *spotmap.View, locator locate.Locator, geocoder Geocoder, cfg *config.Config, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		repo:           repo,
		listings:       listings,
		view:           view,
		locator:        locator,
		geocoder:       geocoder,
		cfg:            cfg,
		logger:         logger,
		validator:      validator.New(),
		likeLimiter:    rate.NewWindowLimiter(30, time.Minute),
		commentLimiter: rate.NewWindowLimiter(5, time.Minute),
		now:            time.Now,
	}
}

func (h *Handler) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, 5*time.Second)
}

func (h *Handler) today() string {
	return browse.Today(h.now(), h.cfg.TodayZone)
}

func (h *Handler) loggerForRequest(r *http.Request) *slog.Logger {
	logger := h.logger
	if logger == nil {
		return slog.Default()
	}
	if reqID := chimw.GetReqID(r.Context()); reqID != "" {
		logger = logger.With("request_id", reqID)
	}
	if id, ok := authmw.IdentityFromContext(r.Context()); ok {
		logger = logger.With("user_id", id.UserID)
	}
	return logger
}

func actorFrom(id authmw.Identity) repository.Actor {
	return repository.Actor{Email: id.Email, Name: id.Name, IsAdmin: id.IsAdmin}
}

// refreshListings reloads the shared snapshot after a write. A failure is
// logged; the write itself already succeeded.
func (h *Handler) refreshListings(ctx context.Context, logger *slog.Logger) {
	if h.listings == nil {
		return
	}
	if err := h.listings.Invalidate(ctx); err != nil {
		logger.Warn("action", "action", "refresh_listings", "status", "error", "error", err)
	}
}
