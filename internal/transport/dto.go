package transport

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/OrmirUlaj/gaming-marketplace/internal/models"
)

type MessageResponse struct {
	Message string `json:"message"`
}

type RegisterRequest struct {
	Name     string `json:"name"     validate:"required,max=100"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type RegisterResponse struct {
	Message string    `json:"message"`
	UserID  uuid.UUID `json:"userId"`
}

type LoginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	UserID      uuid.UUID `json:"userId"`
	Role        string    `json:"role"`
	IsAdmin     bool      `json:"isAdmin"`
	AccessToken string    `json:"accessToken"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type RefreshResponse struct {
	AccessToken string `json:"accessToken"`
}

type ProfilePatchRequest struct {
	Name     *string `json:"name"     validate:"omitempty,max=100"`
	Email    *string `json:"email"    validate:"omitempty,email"`
	Password *string `json:"password" validate:"omitempty,min=6,max=72"`
}

type AdminUserPatchRequest struct {
	Name  *string `json:"name"  validate:"omitempty,max=100"`
	Email *string `json:"email" validate:"omitempty,email"`
	Role  *string `json:"role"  validate:"omitempty,oneof=user admin"`
}

type UserResponse struct {
	Message string       `json:"message"`
	User    *models.User `json:"user"`
}

type ProductCreateRequest struct {
	Title       string          `json:"title"       validate:"required,max=200"`
	Description string          `json:"description" validate:"max=5000"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"    validate:"required,oneof=PC Console Mobile"`
	ImageURL    string          `json:"imageUrl"    validate:"max=2048"`
	Rating      float64         `json:"rating"      validate:"gte=0,lte=5"`
	Stock       int             `json:"stock"       validate:"gte=0"`
}

type ProductPatchRequest struct {
	Title       *string          `json:"title"       validate:"omitempty,max=200"`
	Description *string          `json:"description" validate:"omitempty,max=5000"`
	Price       *decimal.Decimal `json:"price"`
	Category    *string          `json:"category"    validate:"omitempty,oneof=PC Console Mobile"`
	ImageURL    *string          `json:"imageUrl"    validate:"omitempty,max=2048"`
	Rating      *float64         `json:"rating"      validate:"omitempty,gte=0,lte=5"`
	Stock       *int             `json:"stock"       validate:"omitempty,gte=0"`
}

type CreatedResponse struct {
	ID uuid.UUID `json:"id"`
}

type PageMeta struct {
	Page       int   `json:"page"`
	Size       int   `json:"size"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
	HasPrev    bool  `json:"has_prev"`
	HasNext    bool  `json:"has_next"`
}

type SearchResponse struct {
	Data []models.Product `json:"data"`
	Meta PageMeta         `json:"meta"`
}

type ReviewRequest struct {
	Rating  int    `json:"rating"  validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=2000"`
}

// CartRequest carries either a single item (gameId + quantity) or a full
// item list, never both.
type CartRequest struct {
	UserID   uuid.UUID         `json:"userId"`
	GameID   *uuid.UUID        `json:"gameId"`
	Quantity *int              `json:"quantity"`
	Items    []CartItemRequest `json:"items"`
}

type CartItemRequest struct {
	GameID   uuid.UUID `json:"gameId"`
	Quantity int       `json:"quantity"`
}

type CartDeleteRequest struct {
	UserID uuid.UUID `json:"userId"`
	GameID uuid.UUID `json:"gameId"`
}

type CartResponse struct {
	Message string       `json:"message"`
	Cart    *models.Cart `json:"cart"`
}

type OrderRequest struct {
	UserID   *uuid.UUID         `json:"userId"`
	Products []OrderLineRequest `json:"products"`
}

type OrderLineRequest struct {
	ProductID uuid.UUID `json:"productId"`
	Quantity  int       `json:"quantity"`
}

type OrderCreatedResponse struct {
	Message string             `json:"message"`
	OrderID uuid.UUID          `json:"orderId"`
	Total   decimal.Decimal    `json:"total"`
	Status  models.OrderStatus `json:"status"`
}

type OrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}
