package handlers

import (
	"net/http"
	"strings"

	"iftarspot/backend/internal/browse"
	"iftarspot/backend/internal/http/middleware"
	"iftarspot/backend/internal/models"

	"github.com/go-chi/chi/v5"
)

type createSpotRequest struct {
	MasjidName string   `json:"masjidName" validate:"required,max=120"`
	Area       string   `json:"area" validate:"required,max=120"`
	AreaDetail string   `json:"areaDetail" validate:"required,max=300"`
	Date       string   `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Items      []string `json:"items" validate:"max=10,dive,required,max=60"`
	CustomItem string   `json:"customItem" validate:"max=60"`
	Phone      string   `json:"phone" validate:"required,max=32"`
	MapLink    string   `json:"mapLink" validate:"required,max=2048"`
	Lat        *float64 `json:"lat" validate:"omitempty,gte=-90,lte=90"`
	Lng        *float64 `json:"lng" validate:"omitempty,gte=-180,lte=180"`
}

type spotListResponse struct {
	browse.Page[models.Spot]
	Today string `json:"today"`
}

// ListSpots serves the home listing: active spots filtered, sorted and paged.
func (h *Handler) ListSpots(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := browse.Filter{
		Search:    q.Get("q"),
		TodayOnly: queryBool(r, "today"),
		Item:      q.Get("item"),
		Area:      q.Get("area"),
		Sort:      q.Get("sort"),
	}
	spots, _ := h.listings.Snapshot()
	today := h.today()
	filtered := browse.Apply(spots, today, filter)
	writeJSON(w, http.StatusOK, spotListResponse{
		Page:  browse.Paginate(filtered, queryInt(r, "page", 1), browse.SpotsPerPage),
		Today: today,
	})
}

func (h *Handler) SpotStats(w http.ResponseWriter, r *http.Request) {
	spots, _ := h.listings.Snapshot()
	writeJSON(w, http.StatusOK, browse.ComputeStats(browse.Active(spots, h.today())))
}

func (h *Handler) ArchivedSpots(w http.ResponseWriter, r *http.Request) {
	spots, _ := h.listings.Snapshot()
	today := h.today()
	writeJSON(w, http.StatusOK, spotListResponse{
		Page:  browse.Paginate(browse.Archived(spots, today), queryInt(r, "page", 1), browse.SpotsPerPage),
		Today: today,
	})
}

func (h *Handler) GetSpot(w http.ResponseWriter, r *http.Request) {
	logger := h.loggerForRequest(r)
	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	spot, err := h.repo.GetSpot(ctx, chi.URLParam(r, "id"))
	if err != nil {
		status, msg := repoStatus(err)
		if status >= 500 {
			logger.Error("action", "action", "get_spot", "status", "db_error", "error", err)
		}
		writeError(w, status, msg)
		return
	}
	writeJSON(w, http.StatusOK, spot)
}

func (h *Handler) MySpots(w http.ResponseWriter, r *http.Request) {
	logger := h.loggerForRequest(r)
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	spots, err := h.repo.ListSpotsByCreator(ctx, id.Email)
	if err != nil {
		logger.Error("action", "action", "my_spots", "status", "db_error", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load spots")
		return
	}
	writeJSON(w, http.StatusOK, spots)
}

func (h *Handler) CreateSpot(w http.ResponseWriter, r *http.Request) {
	logger := h.loggerForRequest(r)
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		logger.Warn("action", "action", "create_spot", "status", "unauthorized")
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req createSpotRequest
	if err := decodeJSON(w, r, &req); err != nil {
		logger.Warn("action", "action", "create_spot", "status", "invalid_json")
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	trimSpotRequest(&req)
	if err := h.validator.Struct(req); err != nil {
		logger.Warn("action", "action", "create_spot", "status", "invalid_fields", "error", err)
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	items, display, ok := resolveItems(req.Items, req.CustomItem)
	if !ok {
		logger.Warn("action", "action", "create_spot", "status", "missing_custom_item")
		writeError(w, http.StatusBadRequest, "customItem: required")
		return
	}

	role := models.RoleUser
	if id.IsAdmin {
		role = models.RoleAdmin
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	spot, err := h.repo.CreateSpot(ctx, models.Spot{
		MasjidName:     req.MasjidName,
		Area:           req.Area,
		AreaDetail:     req.AreaDetail,
		Date:           req.Date,
		Items:          items,
		ItemDisplay:    display,
		Phone:          req.Phone,
		MapLink:        req.MapLink,
		Lat:            req.Lat,
		Lng:            req.Lng,
		CreatedBy:      id.Name,
		CreatedByEmail: id.Email,
		RoleAtCreation: role,
		Status:         models.SpotStatusApproved,
	})
	if err != nil {
		logger.Error("action", "action", "create_spot", "status", "db_error", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create spot")
		return
	}
	h.refreshListings(r.Context(), logger)

	logger.Info("action", "action", "create_spot", "status", "success", "spot_id", spot.ID)
	writeJSON(w, http.StatusCreated, spot)
}

func trimSpotRequest(req *createSpotRequest) {
	req.MasjidName = strings.TrimSpace(req.MasjidName)
	req.Area = strings.TrimSpace(req.Area)
	req.AreaDetail = strings.TrimSpace(req.AreaDetail)
	req.Date = strings.TrimSpace(req.Date)
	req.CustomItem = strings.TrimSpace(req.CustomItem)
	req.Phone = strings.TrimSpace(req.Phone)
	req.MapLink = strings.TrimSpace(req.MapLink)
}

// resolveItems replaces the "others" entry with a key derived from custom.
// The display label is the custom text when one was used.
func resolveItems(items []string, custom string) ([]string, string, bool) {
	out := make([]string, 0, len(items))
	display := ""
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		key := item
		if item == browse.ItemOthers {
			if custom == "" {
				return nil, "", false
			}
			key = browse.CustomItemKey(custom)
			display = custom
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	return out, display, true
}

func (h *Handler) UpdateSpot(w http.ResponseWriter, r *http.Request) {
	logger := h.loggerForRequest(r)
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var patch models.SpotPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		logger.Warn("action", "action", "update_spot", "status", "invalid_json")
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.validator.Struct(patch); err != nil {
		logger.Warn("action", "action", "update_spot", "status", "invalid_fields", "error", err)
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	spotID := chi.URLParam(r, "id")
	spot, err := h.repo.UpdateSpot(ctx, spotID, patch, actorFrom(id))
	if err != nil {
		status, msg := repoStatus(err)
		logger.Warn("action", "action", "update_spot", "status", msg, "spot_id", spotID, "error", err)
		writeError(w, status, msg)
		return
	}
	h.refreshListings(r.Context(), logger)

	logger.Info("action", "action", "update_spot", "status", "success", "spot_id", spot.ID)
	writeJSON(w, http.StatusOK, spot)
}

func (h *Handler) DeleteSpot(w http.ResponseWriter, r *http.Request) {
	logger := h.loggerForRequest(r)
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	spotID := chi.URLParam(r, "id")
	if err := h.repo.DeleteSpot(ctx, spotID, actorFrom(id)); err != nil {
		status, msg := repoStatus(err)
		logger.Warn("action", "action", "delete_spot", "status", msg, "spot_id", spotID, "error", err)
		writeError(w, status, msg)
		return
	}
	h.refreshListings(r.Context(), logger)

	logger.Info("action", "action", "delete_spot", "status", "success", "spot_id", spotID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	logger := h.loggerForRequest(r)
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if !h.likeLimiter.Allow(id.Email) {
		logger.Warn("action", "action", "toggle_like", "status", "rate_limited")
		writeError(w, http.StatusTooManyRequests, "too many requests")
		return
	}
	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	spotID := chi.URLParam(r, "id")
	likes, err := h.repo.ToggleLike(ctx, spotID, id.Email)
	if err != nil {
		status, msg := repoStatus(err)
		logger.Warn("action", "action", "toggle_like", "status", msg, "spot_id", spotID, "error", err)
		writeError(w, status, msg)
		return
	}
	if h.listings != nil {
		if err := h.listings.PatchLikes(r.Context(), spotID, likes); err != nil {
			logger.Warn("action", "action", "refresh_listings", "status", "error", "error", err)
		}
	}

	liked := false
	for _, email := range likes {
		if email == id.Email {
			liked = true
			break
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"likes": likes, "liked": liked, "count": len(likes)})
}

type itemsResponse struct {
	Items      []browse.Item `json:"items"`
	Filterable []browse.Item `json:"filterable"`
}

func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, itemsResponse{Items: browse.Items, Filterable: browse.FilterableItems()})
}
