package handlers

import (
	"net/http"
	"strings"

	"iftarspot/backend/internal/http/middleware"

	"github.com/go-chi/chi/v5"
)

type commentRequest struct {
	Comment string `json:"comment" validate:"required,max=500"`
}

func (h *Handler) ListComments(w http.ResponseWriter, r *http.Request) {
	logger := h.loggerForRequest(r)
	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	comments, err := h.repo.ListComments(ctx, chi.URLParam(r, "id"))
	if err != nil {
		logger.Error("action", "action", "list_comments", "status", "db_error", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load comments")
		return
	}
	writeJSON(w, http.StatusOK, comments)
}

func (h *Handler) decodeComment(w http.ResponseWriter, r *http.Request, action string) (string, bool) {
	logger := h.loggerForRequest(r)
	var req commentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		logger.Warn("action", "action", action, "status", "invalid_json")
		writeError(w, http.StatusBadRequest, "invalid json")
		return "", false
	}
	req.Comment = strings.TrimSpace(req.Comment)
	if err := h.validator.Struct(req); err != nil {
		logger.Warn("action", "action", action, "status", "invalid_comment")
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return "", false
	}
	return req.Comment, true
}

func (h *Handler) CreateComment(w http.ResponseWriter, r *http.Request) {
	logger := h.loggerForRequest(r)
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if !h.commentLimiter.Allow(id.Email) {
		logger.Warn("action", "action", "create_comment", "status", "rate_limited")
		writeError(w, http.StatusTooManyRequests, "too many requests")
		return
	}
	text, ok := h.decodeComment(w, r, "create_comment")
	if !ok {
		return
	}
	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	spotID := chi.URLParam(r, "id")
	comment, err := h.repo.CreateComment(ctx, spotID, actorFrom(id), text)
	if err != nil {
		status, msg := repoStatus(err)
		logger.Warn("action", "action", "create_comment", "status", msg, "spot_id", spotID, "error", err)
		writeError(w, status, msg)
		return
	}
	logger.Info("action", "action", "create_comment", "status", "success", "spot_id", spotID, "comment_id", comment.ID)
	writeJSON(w, http.StatusCreated, comment)
}

func (h *Handler) UpdateComment(w http.ResponseWriter, r *http.Request) {
	logger := h.loggerForRequest(r)
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	text, ok := h.decodeComment(w, r, "update_comment")
	if !ok {
		return
	}
	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	commentID := chi.URLParam(r, "id")
	comment, err := h.repo.UpdateComment(ctx, commentID, actorFrom(id), text)
	if err != nil {
		status, msg := repoStatus(err)
		logger.Warn("action", "action", "update_comment", "status", msg, "comment_id", commentID, "error", err)
		writeError(w, status, msg)
		return
	}
	writeJSON(w, http.StatusOK, comment)
}

func (h *Handler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	logger := h.loggerForRequest(r)
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	commentID := chi.URLParam(r, "id")
	if err := h.repo.DeleteComment(ctx, commentID, actorFrom(id)); err != nil {
		status, msg := repoStatus(err)
		logger.Warn("action", "action", "delete_comment", "status", msg, "comment_id", commentID, "error", err)
		writeError(w, status, msg)
		return
	}
	logger.Info("action", "action", "delete_comment", "status", "success", "comment_id", commentID)
	w.WriteHeader(http.StatusNoContent)
}
