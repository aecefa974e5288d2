package handlers

import (
	"net/http"
	"strings"

	"iftarspot/backend/internal/browse"
	"iftarspot/backend/internal/http/middleware"

	"github.com/go-chi/chi/v5"
)

type createReviewRequest struct {
	Comment string `json:"comment" validate:"required,max=1000"`
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
}

type updateReviewRequest struct {
	Comment string `json:"comment" validate:"required,max=1000"`
	Rating  int    `json:"rating" validate:"omitempty,min=1,max=5"`
}

// ListReviews pages all reviews newest first, six per page.
func (h *Handler) ListReviews(w http.ResponseWriter, r *http.Request) {
	logger := h.loggerForRequest(r)
	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	reviews, err := h.repo.ListReviews(ctx)
	if err != nil {
		logger.Error("action", "action", "list_reviews", "status", "db_error", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load reviews")
		return
	}
	writeJSON(w, http.StatusOK, browse.Paginate(browse.SortReviews(reviews), queryInt(r, "page", 1), browse.ReviewsPerPage))
}

func (h *Handler) MyReviews(w http.ResponseWriter, r *http.Request) {
	logger := h.loggerForRequest(r)
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	reviews, err := h.repo.ListReviewsByEmail(ctx, id.Email)
	if err != nil {
		logger.Error("action", "action", "my_reviews", "status", "db_error", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load reviews")
		return
	}
	writeJSON(w, http.StatusOK, browse.SortReviews(reviews))
}

func (h *Handler) CreateReview(w http.ResponseWriter, r *http.Request) {
	logger := h.loggerForRequest(r)
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req createReviewRequest
	if err := decodeJSON(w, r, &req); err != nil {
		logger.Warn("action", "action", "create_review", "status", "invalid_json")
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	req.Comment = strings.TrimSpace(req.Comment)
	if err := h.validator.Struct(req); err != nil {
		logger.Warn("action", "action", "create_review", "status", "invalid_fields")
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}
	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	review, err := h.repo.CreateReview(ctx, actorFrom(id), req.Comment, req.Rating)
	if err != nil {
		logger.Error("action", "action", "create_review", "status", "db_error", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create review")
		return
	}
	logger.Info("action", "action", "create_review", "status", "success", "review_id", review.ID)
	writeJSON(w, http.StatusCreated, review)
}

func (h *Handler) UpdateReview(w http.ResponseWriter, r *http.Request) {
	logger := h.loggerForRequest(r)
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req updateReviewRequest
	if err := decodeJSON(w, r, &req); err != nil {
		logger.Warn("action", "action", "update_review", "status", "invalid_json")
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	req.Comment = strings.TrimSpace(req.Comment)
	if err := h.validator.Struct(req); err != nil {
		logger.Warn("action", "action", "update_review", "status", "invalid_fields")
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}
	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	reviewID := chi.URLParam(r, "id")
	review, err := h.repo.UpdateReview(ctx, reviewID, actorFrom(id), req.Comment, req.Rating)
	if err != nil {
		status, msg := repoStatus(err)
		logger.Warn("action", "action", "update_review", "status", msg, "review_id", reviewID, "error", err)
		writeError(w, status, msg)
		return
	}
	writeJSON(w, http.StatusOK, review)
}

func (h *Handler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	logger := h.loggerForRequest(r)
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	reviewID := chi.URLParam(r, "id")
	if err := h.repo.DeleteReview(ctx, reviewID, actorFrom(id)); err != nil {
		status, msg := repoStatus(err)
		logger.Warn("action", "action", "delete_review", "status", msg, "review_id", reviewID, "error", err)
		writeError(w, status, msg)
		return
	}
	logger.Info("action", "action", "delete_review", "status", "success", "review_id", reviewID)
	w.WriteHeader(http.StatusNoContent)
}
