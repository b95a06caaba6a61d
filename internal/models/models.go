package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

func ValidRole(r string) bool {
	return r == RoleUser || r == RoleAdmin
}

// MaxQuantity caps a single cart or order line.
const MaxQuantity = 1000

// MaxAmount is the first value a numeric(12,2) money column cannot hold.
var MaxAmount = decimal.New(1, 10)

const (
	CategoryPC      = "PC"
	CategoryConsole = "Console"
	CategoryMobile  = "Mobile"
)

func ValidCategory(c string) bool {
	switch c {
	case CategoryPC, CategoryConsole, CategoryMobile:
		return true
	}
	return false
}

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"      json:"id"`
	Name         string    `gorm:"not null"                  json:"name"`
	Email        string    `gorm:"uniqueIndex;not null"      json:"email"`
	PasswordHash string    `gorm:"not null"                  json:"-"`
	Role         string    `gorm:"not null;default:user"     json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

type RefreshToken struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"  json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;index;not null" json:"userId"`
	TokenHash string    `gorm:"uniqueIndex;not null"  json:"-"`
	JTI       string    `gorm:"uniqueIndex;not null"  json:"jti"`
	ExpiresAt time.Time `gorm:"not null"              json:"expiresAt"`
	Revoked   bool       `gorm:"not null;default:false" json:"revoked"`
	RotatedAt *time.Time `json:"rotatedAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

func (t *RefreshToken) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

type Product struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"         json:"id"`
	Title       string          `gorm:"index;not null"               json:"title"`
	Description string          `gorm:"not null;default:''"          json:"description"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null"  json:"price"`
	Category    string          `gorm:"index;not null"               json:"category"`
	ImageURL    string          `json:"imageUrl"`
	Rating      float64         `gorm:"not null;default:0"           json:"rating"`
	Stock       int             `gorm:"not null;default:0;check:stock >= 0" json:"stock"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

type Review struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"                        json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;index;not null"                    json:"userId"`
	ProductID uuid.UUID `gorm:"type:uuid;index;not null"                    json:"gameId"`
	Rating    int       `gorm:"not null;check:rating >= 1 AND rating <= 5"  json:"rating"`
	Comment   string    `gorm:"not null;default:''"                         json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (r *Review) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
