package repo

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/OrmirUlaj/gaming-marketplace/internal/apperr"
	"github.com/OrmirUlaj/gaming-marketplace/internal/db"
)

const pgUniqueViolation = "23505"

type GormRepo struct {
	DB *gorm.DB
}

func (r *GormRepo) Ping(ctx context.Context) error {
	return apperr.Storage(db.Ping(ctx, r.DB))
}

// translate maps driver errors onto the apperr sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperr.ErrNotFound
	case isDuplicate(err):
		return apperr.ErrConflict
	default:
		return apperr.Storage(err)
	}
}

func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
