package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OrmirUlaj/gaming-marketplace/internal/apperr"
	"github.com/OrmirUlaj/gaming-marketplace/internal/hash"
	"github.com/OrmirUlaj/gaming-marketplace/internal/models"
)

func ptr[T any](v T) *T { return &v }

func TestUserService_UpdateProfile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice, err := env.Auth.Register(ctx, "Alice", "alice@example.com", "secret1")
	require.NoError(t, err)
	_, err = env.Auth.Register(ctx, "Bob", "bob@example.com", "secret2")
	require.NoError(t, err)

	_, err = env.Users.UpdateProfile(ctx, alice.ID, ProfilePatch{})
	require.ErrorIs(t, err, apperr.ErrInvalidArgument)
	assert.Contains(t, err.Error(), "No fields to update")

	_, err = env.Users.UpdateProfile(ctx, alice.ID, ProfilePatch{Email: ptr("BOB@example.com")})
	assert.ErrorIs(t, err, apperr.ErrConflict)

	_, err = env.Users.UpdateProfile(ctx, alice.ID, ProfilePatch{Password: ptr("123")})
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)

	updated, err := env.Users.UpdateProfile(ctx, alice.ID, ProfilePatch{
		Name:     ptr("Alice Liddell"),
		Password: ptr("new-secret"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Alice Liddell", updated.Name)
	assert.Equal(t, "alice@example.com", updated.Email)
	assert.True(t, hash.CheckPassword(updated.PasswordHash, "new-secret"))
}

func TestUserService_AdminUpdate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	u, err := env.Auth.Register(ctx, "Carol", "carol@example.com", "secret1")
	require.NoError(t, err)

	_, err = env.Users.UpdateUser(ctx, u.ID, AdminUserPatch{Role: ptr("owner")})
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)

	updated, err := env.Users.UpdateUser(ctx, u.ID, AdminUserPatch{Role: ptr(models.RoleAdmin)})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, updated.Role)

	_, err = env.Users.UpdateUser(ctx, uuid.New(), AdminUserPatch{Name: ptr("Ghost")})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestUserService_DeleteUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	adminID := uuid.New()

	u, err := env.Auth.Register(ctx, "Dave", "dave@example.com", "secret1")
	require.NoError(t, err)
	_, err = env.Auth.Login(ctx, "dave@example.com", "secret1")
	require.NoError(t, err)
	_, err = env.Carts.UpsertItem(ctx, u.ID, uuid.New(), 2)
	require.NoError(t, err)

	assert.ErrorIs(t, env.Users.DeleteUser(ctx, adminID, adminID), apperr.ErrInvalidArgument)

	require.NoError(t, env.Users.DeleteUser(ctx, adminID, u.ID))

	_, err = env.Users.GetProfile(ctx, u.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	var tokensLeft int64
	require.NoError(t, env.Repo.DB.Model(&models.RefreshToken{}).Where("user_id = ?", u.ID).Count(&tokensLeft).Error)
	assert.Zero(t, tokensLeft)

	cart, err := env.Carts.GetCart(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)

	assert.ErrorIs(t, env.Users.DeleteUser(ctx, adminID, u.ID), apperr.ErrNotFound)
	assert.Contains(t, env.Events.Types(), "user_deleted")
}
