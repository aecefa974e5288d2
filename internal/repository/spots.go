package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"iftarspot/backend/internal/models"

	"github.com/jackc/pgx/v5"
)

const spotColumns = `id, masjid_name, area, area_detail, spot_date, items, item_display, phone, map_link,
	lat, lng, created_by, created_by_email, role_at_creation, likes, status, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSpot(row rowScanner) (models.Spot, error) {
	var out models.Spot
	var areaDetail, date, itemDisplay, phone, mapLink, createdBy, createdByEmail sql.NullString
	var lat, lng sql.NullFloat64
	err := row.Scan(
		&out.ID, &out.MasjidName, &out.Area, &areaDetail, &date, &out.Items, &itemDisplay, &phone, &mapLink,
		&lat, &lng, &createdBy, &createdByEmail, &out.RoleAtCreation, &out.Likes, &out.Status, &out.CreatedAt, &out.UpdatedAt,
	)
	if err != nil {
		return out, err
	}
	out.AreaDetail = areaDetail.String
	out.Date = date.String
	out.ItemDisplay = itemDisplay.String
	out.Phone = phone.String
	out.MapLink = mapLink.String
	out.CreatedBy = createdBy.String
	out.CreatedByEmail = createdByEmail.String
	if lat.Valid {
		v := lat.Float64
		out.Lat = &v
	}
	if lng.Valid {
		v := lng.Float64
		out.Lng = &v
	}
	if out.Items == nil {
		out.Items = []string{}
	}
	if out.Likes == nil {
		out.Likes = []string{}
	}
	return out, nil
}

func collectSpots(rows pgx.Rows) ([]models.Spot, error) {
	defer rows.Close()
	out := make([]models.Spot, 0)
	for rows.Next() {
		spot, err := scanSpot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, spot)
	}
	return out, rows.Err()
}

// CreateSpot stores spot with a fresh id and returns the stored row.
func (r *Repository) CreateSpot(ctx context.Context, spot models.Spot) (models.Spot, error) {
	if err := r.ensurePool(); err != nil {
		return models.Spot{}, err
	}
	items := spot.Items
	if items == nil {
		items = []string{}
	}
	likes := spot.Likes
	if likes == nil {
		likes = []string{}
	}
	status := spot.Status
	if status == "" {
		status = models.SpotStatusApproved
	}
	role := spot.RoleAtCreation
	if role == "" {
		role = models.RoleUser
	}
	query := `
INSERT INTO spots (
	id, masjid_name, area, area_detail, spot_date, items, item_display, phone, map_link,
	lat, lng, created_by, created_by_email, role_at_creation, likes, status
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
RETURNING ` + spotColumns + `;`
	row := r.pool.QueryRow(ctx, query,
		newID(),
		spot.MasjidName,
		spot.Area,
		nullString(spot.AreaDetail),
		nullString(spot.Date),
		items,
		nullString(spot.ItemDisplay),
		nullString(spot.Phone),
		nullString(spot.MapLink),
		spot.Lat,
		spot.Lng,
		nullString(spot.CreatedBy),
		nullString(spot.CreatedByEmail),
		role,
		likes,
		status,
	)
	return scanSpot(row)
}

func (r *Repository) GetSpot(ctx context.Context, id string) (models.Spot, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+spotColumns+` FROM spots WHERE id = $1`, id)
	spot, err := scanSpot(row)
	return spot, notFound(err)
}

// ListSpots returns every spot, newest first.
func (r *Repository) ListSpots(ctx context.Context) ([]models.Spot, error) {
	if err := r.ensurePool(); err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx, `SELECT `+spotColumns+` FROM spots ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, err
	}
	return collectSpots(rows)
}

func (r *Repository) ListSpotsByCreator(ctx context.Context, email string) ([]models.Spot, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+spotColumns+` FROM spots WHERE created_by_email = $1 ORDER BY created_at DESC, id`, email)
	if err != nil {
		return nil, err
	}
	return collectSpots(rows)
}

// UpdateSpot applies patch when actor owns the spot or is an admin. Later
// writes simply overwrite earlier ones.
func (r *Repository) UpdateSpot(ctx context.Context, id string, patch models.SpotPatch, actor Actor) (models.Spot, error) {
	var out models.Spot
	err := r.WithTx(ctx, func(tx pgx.Tx) error {
		var owner sql.NullString
		if err := tx.QueryRow(ctx, `SELECT created_by_email FROM spots WHERE id = $1 FOR UPDATE`, id).Scan(&owner); err != nil {
			return notFound(err)
		}
		if !actor.CanModify(owner.String) {
			return ErrForbidden
		}

		sets := make([]string, 0, 10)
		args := []any{id}
		add := func(column string, val any) {
			args = append(args, val)
			sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
		}
		if patch.MasjidName != nil {
			add("masjid_name", strings.TrimSpace(*patch.MasjidName))
		}
		if patch.Area != nil {
			add("area", strings.TrimSpace(*patch.Area))
		}
		if patch.AreaDetail != nil {
			add("area_detail", nullString(strings.TrimSpace(*patch.AreaDetail)))
		}
		if patch.Date != nil {
			add("spot_date", nullString(strings.TrimSpace(*patch.Date)))
		}
		if patch.Items != nil {
			add("items", *patch.Items)
		}
		if patch.ItemDisplay != nil {
			add("item_display", nullString(strings.TrimSpace(*patch.ItemDisplay)))
		}
		if patch.Phone != nil {
			add("phone", nullString(strings.TrimSpace(*patch.Phone)))
		}
		if patch.MapLink != nil {
			add("map_link", nullString(strings.TrimSpace(*patch.MapLink)))
		}
		if patch.Lat != nil {
			add("lat", *patch.Lat)
		}
		if patch.Lng != nil {
			add("lng", *patch.Lng)
		}
		sets = append(sets, "updated_at = now()")

		query := `UPDATE spots SET ` + strings.Join(sets, ", ") + ` WHERE id = $1 RETURNING ` + spotColumns
		spot, err := scanSpot(tx.QueryRow(ctx, query, args...))
		if err != nil {
			return notFound(err)
		}
		out = spot
		return nil
	})
	return out, err
}

func (r *Repository) DeleteSpot(ctx context.Context, id string, actor Actor) error {
	return r.WithTx(ctx, func(tx pgx.Tx) error {
		var owner sql.NullString
		if err := tx.QueryRow(ctx, `SELECT created_by_email FROM spots WHERE id = $1 FOR UPDATE`, id).Scan(&owner); err != nil {
			return notFound(err)
		}
		if !actor.CanModify(owner.String) {
			return ErrForbidden
		}
		_, err := tx.Exec(ctx, `DELETE FROM spots WHERE id = $1`, id)
		return err
	})
}

// ToggleLike adds email to the spot's likes, or removes it if present.
func (r *Repository) ToggleLike(ctx context.Context, id, email string) ([]string, error) {
	row := r.pool.QueryRow(ctx, `
UPDATE spots
SET likes = CASE
		WHEN $2 = ANY(likes) THEN array_remove(likes, $2)
		ELSE array_append(likes, $2)
	END,
	updated_at = now()
WHERE id = $1
RETURNING likes;`, id, email)
	var likes []string
	if err := row.Scan(&likes); err != nil {
		return nil, notFound(err)
	}
	if likes == nil {
		likes = []string{}
	}
	return likes, nil
}
