package repo

import (
	"context"

	"github.com/google/uuid"

	"github.com/OrmirUlaj/gaming-marketplace/internal/models"
)

func (r *GormRepo) CreateReview(ctx context.Context, rv *models.Review) error {
	return translate(r.DB.WithContext(ctx).Create(rv).Error)
}

func (r *GormRepo) ListReviews(ctx context.Context, productID uuid.UUID) ([]models.Review, error) {
	items := make([]models.Review, 0)
	err := r.DB.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at DESC").
		Find(&items).Error
	if err != nil {
		return nil, translate(err)
	}
	return items, nil
}
