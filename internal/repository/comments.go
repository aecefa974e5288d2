package repository

import (
	"context"
	"strings"

	"iftarspot/backend/internal/models"

	"github.com/jackc/pgx/v5"
)

const commentColumns = `id, spot_id, email, name, comment, created_at, updated_at`

func scanComment(row rowScanner) (models.Comment, error) {
	var out models.Comment
	err := row.Scan(&out.ID, &out.SpotID, &out.Email, &out.Name, &out.Comment, &out.CreatedAt, &out.UpdatedAt)
	return out, err
}

// ListComments returns a spot's comments, oldest first.
func (r *Repository) ListComments(ctx context.Context, spotID string) ([]models.Comment, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+commentColumns+` FROM spot_comments WHERE spot_id = $1 ORDER BY created_at ASC, id`, spotID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]models.Comment, 0)
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repository) CreateComment(ctx context.Context, spotID string, actor Actor, text string) (models.Comment, error) {
	var out models.Comment
	err := r.WithTx(ctx, func(tx pgx.Tx) error {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM spots WHERE id = $1)`, spotID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
		c, err := scanComment(tx.QueryRow(ctx, `
INSERT INTO spot_comments (id, spot_id, email, name, comment)
VALUES ($1, $2, $3, $4, $5)
RETURNING `+commentColumns+`;`, newID(), spotID, actor.Email, actor.Name, strings.TrimSpace(text)))
		if err != nil {
			return err
		}
		out = c
		return nil
	})
	return out, err
}

func (r *Repository) UpdateComment(ctx context.Context, id string, actor Actor, text string) (models.Comment, error) {
	var out models.Comment
	err := r.WithTx(ctx, func(tx pgx.Tx) error {
		var owner string
		if err := tx.QueryRow(ctx, `SELECT email FROM spot_comments WHERE id = $1 FOR UPDATE`, id).Scan(&owner); err != nil {
			return notFound(err)
		}
		if !actor.CanModify(owner) {
			return ErrForbidden
		}
		c, err := scanComment(tx.QueryRow(ctx, `
UPDATE spot_comments SET comment = $2, updated_at = now()
WHERE id = $1
RETURNING `+commentColumns+`;`, id, strings.TrimSpace(text)))
		if err != nil {
			return notFound(err)
		}
		out = c
		return nil
	})
	return out, err
}

func (r *Repository) DeleteComment(ctx context.Context, id string, actor Actor) error {
	return r.WithTx(ctx, func(tx pgx.Tx) error {
		var owner string
		if err := tx.QueryRow(ctx, `SELECT email FROM spot_comments WHERE id = $1 FOR UPDATE`, id).Scan(&owner); err != nil {
			return notFound(err)
		}
		if !actor.CanModify(owner) {
			return ErrForbidden
		}
		_, err := tx.Exec(ctx, `DELETE FROM spot_comments WHERE id = $1`, id)
		return err
	})
}
