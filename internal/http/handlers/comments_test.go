package handlers

import (
	"net/http"
	"testing"

	"iftarspot/backend/internal/browse"
	"iftarspot/backend/internal/models"
)

func TestCommentFlow(t *testing.T) {
	env := newTestEnv(t, nil)
	env.listings.set(spotFixtures()...)
	author := tokenFor(t, "author@example.com", false)
	other := tokenFor(t, "other@example.com", false)
	admin := tokenFor(t, "admin@ifter.com", true)

	if rec := env.do(t, http.MethodPost, "/spots/missing/comments", map[string]string{"comment": "hi"}, author); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if rec := env.do(t, http.MethodPost, "/spots/s1/comments", map[string]string{"comment": "   "}, author); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for blank comment, got %d", rec.Code)
	}

	rec := env.do(t, http.MethodPost, "/spots/s1/comments", map[string]string{"comment": " Great food "}, author)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", rec.Code, rec.Body.String())
	}
	var comment models.Comment
	decodeBody(t, rec, &comment)
	if comment.Comment != "Great food" {
		t.Fatalf("unexpected comment %+v", comment)
	}

	var list []models.Comment
	decodeBody(t, env.do(t, http.MethodGet, "/spots/s1/comments", nil, ""), &list)
	if len(list) != 1 {
		t.Fatalf("expected one comment, got %d", len(list))
	}

	if rec := env.do(t, http.MethodPatch, "/comments/"+comment.ID, map[string]string{"comment": "edit"}, other); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	if rec := env.do(t, http.MethodDelete, "/comments/"+comment.ID, nil, admin); rec.Code != http.StatusNoContent {
		t.Fatalf("admin moderation: %d", rec.Code)
	}
}

func TestCommentRateLimit(t *testing.T) {
	env := newTestEnv(t, nil)
	env.listings.set(spotFixtures()...)
	token := tokenFor(t, "chatty@example.com", false)

	last := 0
	for i := 0; i < 6; i++ {
		last = env.do(t, http.MethodPost, "/spots/s1/comments", map[string]string{"comment": "again"}, token).Code
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after limit, got %d", last)
	}
}

func TestReviewFlow(t *testing.T) {
	env := newTestEnv(t, nil)
	token := tokenFor(t, "reviewer@example.com", false)

	if rec := env.do(t, http.MethodPost, "/reviews", map[string]interface{}{"comment": "ok", "rating": 6}, token); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for rating 6, got %d", rec.Code)
	}
	for i := 0; i < 7; i++ {
		if rec := env.do(t, http.MethodPost, "/reviews", map[string]interface{}{"comment": "nice", "rating": 5}, token); rec.Code != http.StatusCreated {
			t.Fatalf("create review: %d", rec.Code)
		}
	}

	var page browse.Page[models.Review]
	decodeBody(t, env.do(t, http.MethodGet, "/reviews?page=2", nil, ""), &page)
	if page.Total != 7 || page.TotalPages != 2 || len(page.Items) != 1 || page.Page != 2 {
		t.Fatalf("unexpected review page %+v", page)
	}

	var mine []models.Review
	decodeBody(t, env.do(t, http.MethodGet, "/me/reviews", nil, token), &mine)
	if len(mine) != 7 {
		t.Fatalf("expected 7 own reviews, got %d", len(mine))
	}

	rec := env.do(t, http.MethodPatch, "/reviews/"+mine[0].ID, map[string]interface{}{"comment": "changed"}, token)
	var updated models.Review
	decodeBody(t, rec, &updated)
	if updated.Rating != 5 || updated.Comment != "changed" {
		t.Fatalf("unexpected update %+v", updated)
	}
	if rec := env.do(t, http.MethodDelete, "/reviews/"+mine[0].ID, nil, tokenFor(t, "x@example.com", false)); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}
