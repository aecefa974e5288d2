package handlers

import (
	"errors"
	"net/http"
	"strings"

	"iftarspot/backend/internal/auth"
	"iftarspot/backend/internal/models"
	"iftarspot/backend/internal/repository"
)

type signupRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Name     string `json:"name" validate:"required,max=80"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	AccessToken string      `json:"accessToken"`
	User        models.User `json:"user"`
	IsAdmin     bool        `json:"isAdmin"`
}

func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	logger := h.loggerForRequest(r)
	var req signupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		logger.Warn("action", "action", "signup", "status", "invalid_json")
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	if err := h.validator.Struct(req); err != nil {
		logger.Warn("action", "action", "signup", "status", "invalid_fields")
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		logger.Warn("action", "action", "signup", "status", "invalid_password")
		writeError(w, http.StatusBadRequest, "invalid password")
		return
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	user, err := h.repo.CreateUser(ctx, req.Email, req.Name, hash)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			logger.Warn("action", "action", "signup", "status", "email_taken")
			writeError(w, http.StatusConflict, "email already registered")
			return
		}
		logger.Error("action", "action", "signup", "status", "db_error", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create user")
		return
	}
	h.issueToken(w, r, user, http.StatusCreated, "signup")
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	logger := h.loggerForRequest(r)
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		logger.Warn("action", "action", "login", "status", "invalid_json")
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := h.validator.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	user, err := h.repo.GetUserByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		logger.Error("action", "action", "login", "status", "db_error", "error", err)
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}
	if err != nil || auth.CheckPassword(user.PasswordHash, req.Password) != nil {
		logger.Warn("action", "action", "login", "status", "invalid_credentials")
		writeError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}
	h.issueToken(w, r, user, http.StatusOK, "login")
}

func (h *Handler) issueToken(w http.ResponseWriter, r *http.Request, user models.User, status int, action string) {
	logger := h.loggerForRequest(r)
	isAdmin := auth.IsAdmin(user.Email, h.cfg.AdminEmails)
	token, err := auth.SignAccessToken(h.cfg.JWTSecret, user.ID, user.Email, user.Name, isAdmin)
	if err != nil {
		logger.Error("action", "action", action, "status", "token_error", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to sign token")
		return
	}
	logger.Info("action", "action", action, "status", "success", "user_id", user.ID, "admin", isAdmin)
	writeJSON(w, status, authResponse{AccessToken: token, User: user, IsAdmin: isAdmin})
}
