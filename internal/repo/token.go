package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/OrmirUlaj/gaming-marketplace/internal/apperr"
	"github.com/OrmirUlaj/gaming-marketplace/internal/models"
	"github.com/OrmirUlaj/gaming-marketplace/internal/tokens"
)

// RotationGrace is how long a rotated token is reported as reused rather
// than revoked.
const RotationGrace = 30 * time.Second

func (r *GormRepo) SaveRefreshToken(ctx context.Context, t *models.RefreshToken) error {
	return translate(r.DB.WithContext(ctx).Create(t).Error)
}

// RotateRefreshToken revokes the token identified by oldJTI and stores next in
// one transaction. A token that is unknown, revoked, expired or already
// rotated yields ErrUnauthenticated; one rotated within RotationGrace also
// matches tokens.ErrRefreshReused.
func (r *GormRepo) RotateRefreshToken(ctx context.Context, oldJTI, oldHash string, next *models.RefreshToken) error {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.RefreshToken
		if err := tx.Where("jti = ?", oldJTI).First(&current).Error; err != nil {
			return err
		}
		now := time.Now()
		if current.TokenHash != oldHash || now.After(current.ExpiresAt) {
			return fmt.Errorf("refresh token expired or invalid: %w", apperr.ErrUnauthenticated)
		}
		if current.Revoked {
			if current.RotatedAt != nil && now.Sub(*current.RotatedAt) < RotationGrace {
				return fmt.Errorf("%w: %w", tokens.ErrRefreshReused, apperr.ErrUnauthenticated)
			}
			return fmt.Errorf("refresh token revoked: %w", apperr.ErrUnauthenticated)
		}

		res := tx.Model(&models.RefreshToken{}).
			Where("jti = ? AND revoked = ?", oldJTI, false).
			Updates(map[string]any{"revoked": true, "rotated_at": now})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: %w", tokens.ErrRefreshReused, apperr.ErrUnauthenticated)
		}
		return tx.Create(next).Error
	})
	err = translate(err)
	if errors.Is(err, apperr.ErrNotFound) {
		return fmt.Errorf("refresh token unknown: %w", apperr.ErrUnauthenticated)
	}
	return err
}

func (r *GormRepo) RevokeRefreshToken(ctx context.Context, tokenHash string) error {
	err := r.DB.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("token_hash = ?", tokenHash).
		Update("revoked", true).Error
	return translate(err)
}

func (r *GormRepo) FindRefreshByJTI(ctx context.Context, jti string) (*models.RefreshToken, error) {
	var t models.RefreshToken
	if err := r.DB.WithContext(ctx).Where("jti = ?", jti).First(&t).Error; err != nil {
		return nil, translate(err)
	}
	return &t, nil
}
