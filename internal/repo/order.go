package repo

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/OrmirUlaj/gaming-marketplace/internal/models"
)

// CreateOrder persists the order and its lines in a single transaction.
func (r *GormRepo) CreateOrder(ctx context.Context, o *models.Order) error {
	return translate(r.DB.WithContext(ctx).Create(o).Error)
}

func (r *GormRepo) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.DB.WithContext(ctx).Preload("Items").Where("id = ?", id).First(&order).Error; err != nil {
		return nil, translate(err)
	}
	return &order, nil
}

// ListOrders returns orders newest first; a nil userID lists every order.
func (r *GormRepo) ListOrders(ctx context.Context, userID *uuid.UUID) ([]models.Order, error) {
	orders := make([]models.Order, 0)
	q := r.DB.WithContext(ctx).Preload("Items").Order("created_at DESC")
	if userID != nil {
		q = q.Where("user_id = ?", *userID)
	}
	if err := q.Find(&orders).Error; err != nil {
		return nil, translate(err)
	}
	return orders, nil
}

// UpdateOrderStatus moves the order from `from` to `to` only if it is still
// in `from`. It reports whether a row changed.
func (r *GormRepo) UpdateOrderStatus(ctx context.Context, id uuid.UUID, from, to models.OrderStatus) (bool, error) {
	res := r.DB.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]any{"status": to, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return false, translate(res.Error)
	}
	return res.RowsAffected > 0, nil
}

