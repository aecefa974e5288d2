package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"iftarspot/backend/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
)

const userColumns = `id, email, name, photo_url, password_hash, created_at`

func scanUser(row rowScanner) (models.User, error) {
	var out models.User
	var photo sql.NullString
	if err := row.Scan(&out.ID, &out.Email, &out.Name, &photo, &out.PasswordHash, &out.CreatedAt); err != nil {
		return out, err
	}
	out.PhotoURL = photo.String
	return out, nil
}

// CreateUser inserts a new account. Emails are stored lowercased and must be
// unique; a duplicate returns ErrConflict.
func (r *Repository) CreateUser(ctx context.Context, email, name, passwordHash string) (models.User, error) {
	row := r.pool.QueryRow(ctx, `
INSERT INTO users (id, email, name, password_hash)
VALUES ($1, $2, $3, $4)
RETURNING `+userColumns+`;`, newID(), normalizeEmail(email), strings.TrimSpace(name), passwordHash)
	user, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return models.User{}, ErrConflict
		}
		return models.User{}, err
	}
	return user, nil
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, normalizeEmail(email))
	user, err := scanUser(row)
	return user, notFound(err)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
