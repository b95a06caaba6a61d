// Package authz decides whether a caller may run an operation. It has no side
// effects and never touches storage.
package authz

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/OrmirUlaj/gaming-marketplace/internal/apperr"
	"github.com/OrmirUlaj/gaming-marketplace/internal/models"
)

// AuthContext is the verified session claim set for one request.
type AuthContext struct {
	UserID uuid.UUID
	Role   string
}

func (a *AuthContext) IsAdmin() bool {
	return a != nil && a.Role == models.RoleAdmin
}

type Capability int

const (
	Authenticated Capability = iota
	Admin
)

func (c Capability) String() string {
	switch c {
	case Authenticated:
		return "authenticated"
	case Admin:
		return "admin"
	}
	return fmt.Sprintf("capability(%d)", int(c))
}

// Require fails with ErrUnauthenticated when there is no session and with
// ErrForbidden when the session lacks the capability.
func Require(ac *AuthContext, c Capability) error {
	if ac == nil || ac.UserID == uuid.Nil {
		return fmt.Errorf("session required: %w", apperr.ErrUnauthenticated)
	}
	switch c {
	case Authenticated:
		return nil
	case Admin:
		if !ac.IsAdmin() {
			return fmt.Errorf("admin access required: %w", apperr.ErrForbidden)
		}
		return nil
	}
	return fmt.Errorf("unknown %s: %w", c, apperr.ErrForbidden)
}

// RequireOwner allows only the session user to act on owner's resources.
func RequireOwner(ac *AuthContext, owner uuid.UUID) error {
	if err := Require(ac, Authenticated); err != nil {
		return err
	}
	if ac.UserID != owner {
		return fmt.Errorf("resource belongs to another user: %w", apperr.ErrForbidden)
	}
	return nil
}
