package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/OrmirUlaj/gaming-marketplace/internal/apperr"
	"github.com/OrmirUlaj/gaming-marketplace/internal/hash"
	"github.com/OrmirUlaj/gaming-marketplace/internal/logging"
	"github.com/OrmirUlaj/gaming-marketplace/internal/models"
	"github.com/OrmirUlaj/gaming-marketplace/internal/mykafka"
	"github.com/OrmirUlaj/gaming-marketplace/internal/repo"
	"github.com/OrmirUlaj/gaming-marketplace/internal/tokens"
)

const MinPasswordLen = 6

type AuthService struct {
	Repo          *repo.GormRepo
	Publisher     mykafka.Publisher
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

type LoginResult struct {
	tokens.Pair
	User *models.User
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	name, email = strings.TrimSpace(name), NormalizeEmail(email)
	switch {
	case name == "":
		return nil, apperr.Invalid("name is required")
	case email == "":
		return nil, apperr.Invalid("email is required")
	case len(password) < MinPasswordLen:
		return nil, apperr.Invalid("password must be at least %d characters", MinPasswordLen)
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: pwHash,
		Role:         models.RoleUser,
	}
	if err := s.Repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			l.Warn("register_conflict", "email", email)
		}
		return nil, err
	}

	publish(ctx, s.Publisher, mykafka.TopicUserEvents, user.ID.String(), map[string]any{
		"type":   "user_registered",
		"userID": user.ID.String(),
		"email":  user.Email,
	})
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperr.Invalid("email and password are required")
	}

	user, err := s.Repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, fmt.Errorf("invalid email or password: %w", apperr.ErrUnauthenticated)
		}
		return nil, err
	}
	if !hash.CheckPassword(user.PasswordHash, password) {
		return nil, fmt.Errorf("invalid email or password: %w", apperr.ErrUnauthenticated)
	}

	pair, stored, err := s.issue(user)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.SaveRefreshToken(ctx, stored); err != nil {
		return nil, err
	}
	return &LoginResult{Pair: *pair, User: user}, nil
}

// Refresh rotates a refresh token. The new access token carries the user's
// current role, so role changes apply from the next refresh.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*tokens.Pair, error) {
	claims, err := tokens.RefreshClaimsFromToken(refreshToken, s.RefreshSecret)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token: %w", apperr.ErrUnauthenticated)
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh subject: %w", apperr.ErrUnauthenticated)
	}

	user, err := s.Repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, fmt.Errorf("user no longer exists: %w", apperr.ErrUnauthenticated)
		}
		return nil, err
	}

	pair, stored, err := s.issue(user)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.RotateRefreshToken(ctx, claims.ID, tokens.Sha256Hex(refreshToken), stored); err != nil {
		return nil, err
	}
	return pair, nil
}

// LogOut revokes the refresh token. An empty token is a no-op.
func (s *AuthService) LogOut(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.Repo.RevokeRefreshToken(ctx, tokens.Sha256Hex(refreshToken))
}

func (s *AuthService) issue(user *models.User) (*tokens.Pair, *models.RefreshToken, error) {
	now := time.Now()
	accessExp := now.Add(s.AccessTTL)
	refreshExp := now.Add(s.RefreshTTL)
	jti := tokens.NewJTI()

	access, err := tokens.NewAccessToken(s.AccessSecret, user.ID.String(), user.Role, accessExp)
	if err != nil {
		return nil, nil, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := tokens.NewRefreshToken(s.RefreshSecret, user.ID.String(), jti, refreshExp)
	if err != nil {
		return nil, nil, fmt.Errorf("sign refresh token: %w", err)
	}

	pair := &tokens.Pair{
		AccessToken:  access,
		RefreshToken: refresh,
		AccessExp:    accessExp,
		RefreshExp:   refreshExp,
		JTI:          jti,
	}
	stored := &models.RefreshToken{
		UserID:    user.ID,
		TokenHash: tokens.Sha256Hex(refresh),
		JTI:       jti,
		ExpiresAt: refreshExp,
	}
	return pair, stored, nil
}
