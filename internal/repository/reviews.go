package repository

import (
	"context"
	"strings"

	"iftarspot/backend/internal/models"

	"github.com/jackc/pgx/v5"
)

const reviewColumns = `id, email, name, comment, rating, created_at, updated_at`

func scanReview(row rowScanner) (models.Review, error) {
	var out models.Review
	err := row.Scan(&out.ID, &out.Email, &out.Name, &out.Comment, &out.Rating, &out.CreatedAt, &out.UpdatedAt)
	return out, err
}

func (r *Repository) queryReviews(ctx context.Context, query string, args ...any) ([]models.Review, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]models.Review, 0)
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}

// ListReviews returns all reviews, newest first. Display ordering is
// applied by the caller.
func (r *Repository) ListReviews(ctx context.Context) ([]models.Review, error) {
	return r.queryReviews(ctx, `SELECT `+reviewColumns+` FROM reviews ORDER BY created_at DESC, id`)
}

func (r *Repository) ListReviewsByEmail(ctx context.Context, email string) ([]models.Review, error) {
	return r.queryReviews(ctx, `SELECT `+reviewColumns+` FROM reviews WHERE email = $1 ORDER BY created_at DESC, id`, email)
}

func (r *Repository) CreateReview(ctx context.Context, actor Actor, comment string, rating int) (models.Review, error) {
	row := r.pool.QueryRow(ctx, `
INSERT INTO reviews (id, email, name, comment, rating)
VALUES ($1, $2, $3, $4, $5)
RETURNING `+reviewColumns+`;`, newID(), actor.Email, actor.Name, strings.TrimSpace(comment), rating)
	return scanReview(row)
}

// UpdateReview changes comment and rating. A zero rating keeps the stored one.
func (r *Repository) UpdateReview(ctx context.Context, id string, actor Actor, comment string, rating int) (models.Review, error) {
	var out models.Review
	err := r.WithTx(ctx, func(tx pgx.Tx) error {
		var owner string
		if err := tx.QueryRow(ctx, `SELECT email FROM reviews WHERE id = $1 FOR UPDATE`, id).Scan(&owner); err != nil {
			return notFound(err)
		}
		if !actor.CanModify(owner) {
			return ErrForbidden
		}
		rv, err := scanReview(tx.QueryRow(ctx, `
UPDATE reviews
SET comment = $2,
	rating = CASE WHEN $3 > 0 THEN $3 ELSE rating END,
	updated_at = now()
WHERE id = $1
RETURNING `+reviewColumns+`;`, id, strings.TrimSpace(comment), rating))
		if err != nil {
			return notFound(err)
		}
		out = rv
		return nil
	})
	return out, err
}

func (r *Repository) DeleteReview(ctx context.Context, id string, actor Actor) error {
	return r.WithTx(ctx, func(tx pgx.Tx) error {
		var owner string
		if err := tx.QueryRow(ctx, `SELECT email FROM reviews WHERE id = $1 FOR UPDATE`, id).Scan(&owner); err != nil {
			return notFound(err)
		}
		if !actor.CanModify(owner) {
			return ErrForbidden
		}
		_, err := tx.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, id)
		return err
	})
}
