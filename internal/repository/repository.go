package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")
	ErrConflict  = errors.New("conflict")
)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Actor identifies who is performing a mutation.
type Actor struct {
	Email   string
	Name    string
	IsAdmin bool
}

// CanModify reports whether the actor may change a row owned by ownerEmail.
func (a Actor) CanModify(ownerEmail string) bool {
	return a.IsAdmin || (a.Email != "" && a.Email == ownerEmail)
}

func (r *Repository) WithTx(ctx context.Context, fn func(pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

func newID() string {
	return uuid.NewString()
}

func nullString(val string) interface{} {
	if val == "" {
		return nil
	}
	return val
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (r *Repository) ensurePool() error {
	if r.pool == nil {
		return fmt.Errorf("db pool is nil")
	}
	return nil
}
