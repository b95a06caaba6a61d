package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Cart is the single per-user cart. A zero ID with no items is the
// empty-cart value returned for users who never mutated their cart.
type Cart struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"                            json:"id,omitzero"`
	UserID    uuid.UUID  `gorm:"type:uuid;uniqueIndex;not null"                  json:"userId"`
	Items     []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"   json:"items"`
	CreatedAt time.Time  `json:"createdAt,omitzero"`
	UpdatedAt time.Time  `json:"updatedAt,omitzero"`
}

func (c *Cart) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

type CartItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"                              json:"-"`
	CartID    uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_cart_product;not null"   json:"-"`
	ProductID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_cart_product;not null"   json:"gameId"`
	Quantity  int       `gorm:"not null;check:quantity > 0"                       json:"quantity"`
}

func (i *CartItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

func EmptyCart(userID uuid.UUID) *Cart {
	return &Cart{UserID: userID, Items: []CartItem{}}
}

func (c *Cart) Quantity(productID uuid.UUID) (int, bool) {
	for _, it := range c.Items {
		if it.ProductID == productID {
			return it.Quantity, true
		}
	}
	return 0, false
}
