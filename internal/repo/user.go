package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/OrmirUlaj/gaming-marketplace/internal/apperr"
	"github.com/OrmirUlaj/gaming-marketplace/internal/models"
)

// CreateUser inserts u unless the email is already registered.
func (r *GormRepo) CreateUser(ctx context.Context, u *models.User) error {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		taken, err := emailTaken(tx, u.Email, uuid.Nil)
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("email %s already registered: %w", u.Email, apperr.ErrConflict)
		}
		return tx.Create(u).Error
	})
	return translate(err)
}

func (r *GormRepo) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *GormRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *GormRepo) ListUsers(ctx context.Context) ([]models.User, error) {
	users := make([]models.User, 0)
	if err := r.DB.WithContext(ctx).Order("created_at ASC").Find(&users).Error; err != nil {
		return nil, translate(err)
	}
	return users, nil
}

// UpdateUser applies column updates; a changed email must stay unique.
func (r *GormRepo) UpdateUser(ctx context.Context, id uuid.UUID, updates map[string]any) (*models.User, error) {
	var user models.User
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&user).Error; err != nil {
			return err
		}
		if email, ok := updates["email"].(string); ok && email != user.Email {
			taken, err := emailTaken(tx, email, id)
			if err != nil {
				return err
			}
			if taken {
				return fmt.Errorf("email %s already registered: %w", email, apperr.ErrConflict)
			}
		}
		if err := tx.Model(&user).Updates(updates).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).First(&user).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// DeleteUser removes the user together with its refresh tokens.
func (r *GormRepo) DeleteUser(ctx context.Context, id uuid.UUID) error {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&models.RefreshToken{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&models.User{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	return translate(err)
}

func emailTaken(tx *gorm.DB, email string, except uuid.UUID) (bool, error) {
	var count int64
	q := tx.Model(&models.User{}).Where("email = ?", email)
	if except != uuid.Nil {
		q = q.Where("id <> ?", except)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
