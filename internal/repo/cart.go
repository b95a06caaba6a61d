package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/OrmirUlaj/gaming-marketplace/internal/models"
)

// Carts live in two tables: carts (one row per user, unique user_id) and
// cart_items (unique per cart and product). Every mutation runs in one
// transaction so the pair behaves like a single document.

func (r *GormRepo) GetCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	cart, err := loadCart(r.DB.WithContext(ctx), userID)
	if err != nil {
		return nil, translate(err)
	}
	return cart, nil
}

// UpsertItem sets the quantity of productID, creating the cart or the line as needed.
func (r *GormRepo) UpsertItem(ctx context.Context, userID uuid.UUID, item models.CartItem) (*models.Cart, error) {
	var cart *models.Cart
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		id, err := ensureCart(tx, userID)
		if err != nil {
			return err
		}
		line := models.CartItem{CartID: id, ProductID: item.ProductID, Quantity: item.Quantity}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "cart_id"}, {Name: "product_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"quantity"}),
		}).Create(&line).Error; err != nil {
			return err
		}
		if err := touch(tx, id); err != nil {
			return err
		}
		cart, err = loadCart(tx, userID)
		return err
	})
	if err != nil {
		return nil, translate(err)
	}
	return cart, nil
}

// RemoveItem drops productID from the cart. A missing line is not an error;
// a missing cart is reported as ErrNotFound.
func (r *GormRepo) RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*models.Cart, error) {
	var cart *models.Cart
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if cart, err = loadCart(tx, userID); err != nil {
			return err
		}
		if err := tx.Where("cart_id = ? AND product_id = ?", cart.ID, productID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		if err := touch(tx, cart.ID); err != nil {
			return err
		}
		cart, err = loadCart(tx, userID)
		return err
	})
	if err != nil {
		return nil, translate(err)
	}
	return cart, nil
}

// ReplaceItems swaps the whole item list.
func (r *GormRepo) ReplaceItems(ctx context.Context, userID uuid.UUID, items []models.CartItem) (*models.Cart, error) {
	var cart *models.Cart
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		id, err := ensureCart(tx, userID)
		if err != nil {
			return err
		}
		if err := tx.Where("cart_id = ?", id).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		if len(items) > 0 {
			lines := make([]models.CartItem, 0, len(items))
			for _, it := range items {
				lines = append(lines, models.CartItem{CartID: id, ProductID: it.ProductID, Quantity: it.Quantity})
			}
			if err := tx.Create(&lines).Error; err != nil {
				return err
			}
		}
		if err := touch(tx, id); err != nil {
			return err
		}
		cart, err = loadCart(tx, userID)
		return err
	})
	if err != nil {
		return nil, translate(err)
	}
	return cart, nil
}

func (r *GormRepo) DeleteCart(ctx context.Context, userID uuid.UUID) error {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cart models.Cart
		if err := tx.Where("user_id = ?", userID).First(&cart).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		if err := tx.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&cart).Error
	})
	return translate(err)
}

func ensureCart(tx *gorm.DB, userID uuid.UUID) (uuid.UUID, error) {
	fresh := models.Cart{UserID: userID}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(&fresh).Error; err != nil {
		return uuid.Nil, err
	}

	var cart models.Cart
	if err := tx.Select("id").Where("user_id = ?", userID).First(&cart).Error; err != nil {
		return uuid.Nil, err
	}
	return cart.ID, nil
}

func touch(tx *gorm.DB, cartID uuid.UUID) error {
	return tx.Model(&models.Cart{}).Where("id = ?", cartID).Update("updated_at", time.Now().UTC()).Error
}

func loadCart(tx *gorm.DB, userID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := tx.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("product_id ASC")
	}).Where("user_id = ?", userID).First(&cart).Error
	if err != nil {
		return nil, err
	}
	if cart.Items == nil {
		cart.Items = []models.CartItem{}
	}
	return &cart, nil
}
