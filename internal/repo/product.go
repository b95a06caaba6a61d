package repo

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/OrmirUlaj/gaming-marketplace/internal/models"
)

// ProductFilter predicates are optional and combined with AND.
type ProductFilter struct {
	Search   string
	Category string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	Offset   int
	Limit    int
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (f ProductFilter) apply(q *gorm.DB) *gorm.DB {
	if f.Search != "" {
		pattern := "%" + likeEscaper.Replace(strings.ToLower(f.Search)) + "%"
		q = q.Where(`LOWER(title) LIKE ? ESCAPE '\'`, pattern)
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.MinPrice != nil {
		q = q.Where("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("price <= ?", *f.MaxPrice)
	}
	return q
}

// ListProducts returns matching products sorted by title and the unpaged total.
func (r *GormRepo) ListProducts(ctx context.Context, f ProductFilter) ([]models.Product, int64, error) {
	var total int64
	if err := f.apply(r.DB.WithContext(ctx).Model(&models.Product{})).Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}

	items := make([]models.Product, 0)
	q := f.apply(r.DB.WithContext(ctx).Model(&models.Product{})).Order("title ASC").Order("id ASC")
	if f.Limit > 0 {
		q = q.Offset(f.Offset).Limit(f.Limit)
	}
	if err := q.Find(&items).Error; err != nil {
		return nil, 0, translate(err)
	}
	return items, total, nil
}

func (r *GormRepo) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&product).Error; err != nil {
		return nil, translate(err)
	}
	return &product, nil
}

// GetProductsByIDs returns the found products keyed by id; missing ids are absent.
func (r *GormRepo) GetProductsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error) {
	var items []models.Product
	if err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&items).Error; err != nil {
		return nil, translate(err)
	}
	out := make(map[uuid.UUID]models.Product, len(items))
	for _, p := range items {
		out[p.ID] = p
	}
	return out, nil
}

func (r *GormRepo) CreateProduct(ctx context.Context, p *models.Product) error {
	return translate(r.DB.WithContext(ctx).Create(p).Error)
}

func (r *GormRepo) UpdateProduct(ctx context.Context, id uuid.UUID, updates map[string]any) (*models.Product, error) {
	var product models.Product
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&product).Error; err != nil {
			return err
		}
		if err := tx.Model(&product).Updates(updates).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).First(&product).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	return &product, nil
}

func (r *GormRepo) CountProducts(ctx context.Context) (int64, error) {
	var n int64
	if err := r.DB.WithContext(ctx).Model(&models.Product{}).Count(&n).Error; err != nil {
		return 0, translate(err)
	}
	return n, nil
}

func (r *GormRepo) CreateProducts(ctx context.Context, items []models.Product) error {
	if len(items) == 0 {
		return nil
	}
	return translate(r.DB.WithContext(ctx).Create(&items).Error)
}
