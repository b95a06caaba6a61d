package models

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusCompleted, OrderStatusCancelled},
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

func (s OrderStatus) Terminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	return slices.Contains(orderTransitions[s], next)
}

type Order struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"                          json:"id"`
	UserID    uuid.UUID       `gorm:"type:uuid;index;not null"                      json:"userId"`
	Items     []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"products"`
	Total     decimal.Decimal `gorm:"type:numeric(12,2);not null"                   json:"totalAmount"`
	Status    OrderStatus     `gorm:"type:varchar(16);index;not null"               json:"status"`
	CreatedAt time.Time       `gorm:"index"                                         json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// OrderItem prices are copied from the catalog when the order is placed.
type OrderItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"          json:"-"`
	OrderID   uuid.UUID       `gorm:"type:uuid;index;not null"      json:"-"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null"            json:"productId"`
	Quantity  int             `gorm:"not null;check:quantity > 0"   json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:numeric(12,2);not null"   json:"price"`
	LineTotal decimal.Decimal `gorm:"type:numeric(12,2);not null"   json:"lineTotal"`
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
