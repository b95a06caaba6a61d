package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/OrmirUlaj/gaming-marketplace/internal/apperr"
	"github.com/OrmirUlaj/gaming-marketplace/internal/hash"
	"github.com/OrmirUlaj/gaming-marketplace/internal/logging"
	"github.com/OrmirUlaj/gaming-marketplace/internal/models"
	"github.com/OrmirUlaj/gaming-marketplace/internal/mykafka"
	"github.com/OrmirUlaj/gaming-marketplace/internal/repo"
)

type UserService struct {
	Repo      *repo.GormRepo
	Carts     *CartService
	Publisher mykafka.Publisher
}

type ProfilePatch struct {
	Name     *string
	Email    *string
	Password *string
}

type AdminUserPatch struct {
	Name  *string
	Email *string
	Role  *string
}

func (s *UserService) GetProfile(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.Repo.GetUserByID(ctx, id)
}

func (s *UserService) UpdateProfile(ctx context.Context, id uuid.UUID, patch ProfilePatch) (*models.User, error) {
	updates, err := nameEmailUpdates(patch.Name, patch.Email)
	if err != nil {
		return nil, err
	}
	if patch.Password != nil {
		if len(*patch.Password) < MinPasswordLen {
			return nil, apperr.Invalid("password must be at least %d characters", MinPasswordLen)
		}
		h, err := hash.HashPassword(*patch.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		updates["password_hash"] = h
	}
	if len(updates) == 0 {
		return nil, apperr.Invalid("No fields to update")
	}
	return s.Repo.UpdateUser(ctx, id, updates)
}

func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.Repo.ListUsers(ctx)
}

func (s *UserService) UpdateUser(ctx context.Context, id uuid.UUID, patch AdminUserPatch) (*models.User, error) {
	updates, err := nameEmailUpdates(patch.Name, patch.Email)
	if err != nil {
		return nil, err
	}
	if patch.Role != nil {
		if !models.ValidRole(*patch.Role) {
			return nil, apperr.Invalid("role must be user or admin")
		}
		updates["role"] = *patch.Role
	}
	if len(updates) == 0 {
		return nil, apperr.Invalid("No fields to update")
	}
	return s.Repo.UpdateUser(ctx, id, updates)
}

// DeleteUser removes the account, its refresh tokens and its cart.
func (s *UserService) DeleteUser(ctx context.Context, actorID, id uuid.UUID) error {
	l := logging.FromContext(ctx).With("svc", "user.delete", "user_id", id)

	if actorID == id {
		return apperr.Invalid("admins cannot delete their own account")
	}
	if err := s.Repo.DeleteUser(ctx, id); err != nil {
		return err
	}
	if s.Carts != nil {
		if err := s.Carts.ClearCart(ctx, id); err != nil {
			l.Warn("cart_clear_failed", "error", err)
		}
	}

	publish(ctx, s.Publisher, mykafka.TopicUserEvents, id.String(), map[string]any{
		"type":      "user_deleted",
		"userID":    id.String(),
		"deletedBy": actorID.String(),
	})
	return nil
}

func nameEmailUpdates(name, email *string) (map[string]any, error) {
	updates := map[string]any{}
	if name != nil {
		n := strings.TrimSpace(*name)
		if n == "" {
			return nil, apperr.Invalid("name must not be empty")
		}
		updates["name"] = n
	}
	if email != nil {
		e := NormalizeEmail(*email)
		if e == "" || !strings.Contains(e, "@") {
			return nil, apperr.Invalid("email is invalid")
		}
		updates["email"] = e
	}
	return updates, nil
}
