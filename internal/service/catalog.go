package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/OrmirUlaj/gaming-marketplace/internal/apperr"
	"github.com/OrmirUlaj/gaming-marketplace/internal/logging"
	"github.com/OrmirUlaj/gaming-marketplace/internal/models"
	"github.com/OrmirUlaj/gaming-marketplace/internal/mykafka"
	"github.com/OrmirUlaj/gaming-marketplace/internal/repo"
)

// Searcher is the full-text index. The Elasticsearch index implements it.
type Searcher interface {
	IndexProduct(ctx context.Context, p *models.Product) error
	SearchProducts(ctx context.Context, query string, from, size int) (int64, []models.Product, error)
}

type CatalogService struct {
	Repo      *repo.GormRepo
	Search    Searcher
	Publisher mykafka.Publisher
}

// ProductQuery filters are optional and ANDed. Raw values come straight from
// the query string and are validated here.
type ProductQuery struct {
	Search   string
	Category string
	MinPrice string
	MaxPrice string
	Offset   int
	Limit    int
}

func (q ProductQuery) filter() (repo.ProductFilter, error) {
	f := repo.ProductFilter{
		Search:   strings.TrimSpace(q.Search),
		Category: strings.TrimSpace(q.Category),
		Offset:   q.Offset,
		Limit:    q.Limit,
	}
	if f.Category != "" && !models.ValidCategory(f.Category) {
		return f, apperr.Invalid("unknown category %q", f.Category)
	}
	var err error
	if f.MinPrice, err = parsePrice("minPrice", q.MinPrice); err != nil {
		return f, err
	}
	if f.MaxPrice, err = parsePrice("maxPrice", q.MaxPrice); err != nil {
		return f, err
	}
	if f.MinPrice != nil && f.MaxPrice != nil && f.MinPrice.GreaterThan(*f.MaxPrice) {
		return f, apperr.Invalid("minPrice must not exceed maxPrice")
	}
	return f, nil
}

func parsePrice(name, raw string) (*decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, apperr.Invalid("%s must be a number", name)
	}
	if d.IsNegative() {
		return nil, apperr.Invalid("%s must not be negative", name)
	}
	return &d, nil
}

// ListProducts returns matches sorted by title and the total before paging.
func (s *CatalogService) ListProducts(ctx context.Context, q ProductQuery) ([]models.Product, int64, error) {
	f, err := q.filter()
	if err != nil {
		return nil, 0, err
	}
	return s.Repo.ListProducts(ctx, f)
}

func (s *CatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	return s.Repo.GetProduct(ctx, id)
}

type NewProduct struct {
	Title       string
	Description string
	Price       decimal.Decimal
	Category    string
	ImageURL    string
	Rating      float64
	Stock       int
}

func (s *CatalogService) CreateProduct(ctx context.Context, in NewProduct) (*models.Product, error) {
	p := &models.Product{
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Price:       in.Price,
		Category:    in.Category,
		ImageURL:    in.ImageURL,
		Rating:      in.Rating,
		Stock:       in.Stock,
	}
	if err := validateProduct(p); err != nil {
		return nil, err
	}
	if err := s.Repo.CreateProduct(ctx, p); err != nil {
		return nil, err
	}
	s.indexed(ctx, p, "product_created")
	return p, nil
}

type ProductPatch struct {
	Title       *string
	Description *string
	Price       *decimal.Decimal
	Category    *string
	ImageURL    *string
	Rating      *float64
	Stock       *int
}

func (s *CatalogService) UpdateProduct(ctx context.Context, id uuid.UUID, patch ProductPatch) (*models.Product, error) {
	current, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	next := *current
	updates := map[string]any{}
	if patch.Title != nil {
		next.Title = strings.TrimSpace(*patch.Title)
		updates["title"] = next.Title
	}
	if patch.Description != nil {
		next.Description = *patch.Description
		updates["description"] = next.Description
	}
	if patch.Price != nil {
		next.Price = *patch.Price
		updates["price"] = next.Price
	}
	if patch.Category != nil {
		next.Category = *patch.Category
		updates["category"] = next.Category
	}
	if patch.ImageURL != nil {
		next.ImageURL = *patch.ImageURL
		updates["image_url"] = next.ImageURL
	}
	if patch.Rating != nil {
		next.Rating = *patch.Rating
		updates["rating"] = next.Rating
	}
	if patch.Stock != nil {
		next.Stock = *patch.Stock
		updates["stock"] = next.Stock
	}
	if len(updates) == 0 {
		return nil, apperr.Invalid("no fields to update")
	}
	if err := validateProduct(&next); err != nil {
		return nil, err
	}

	updated, err := s.Repo.UpdateProduct(ctx, id, updates)
	if err != nil {
		return nil, err
	}
	s.indexed(ctx, updated, "product_updated")
	return updated, nil
}

// SearchProducts uses the full-text index when one is configured and falls
// back to the title filter otherwise.
func (s *CatalogService) SearchProducts(ctx context.Context, query string, from, size int) (int64, []models.Product, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return 0, nil, apperr.Invalid("q is required")
	}
	if s.Search != nil {
		total, items, err := s.Search.SearchProducts(ctx, query, from, size)
		if err == nil {
			return total, items, nil
		}
		logging.FromContext(ctx).Warn("search_fallback", "error", err)
	}
	items, total, err := s.Repo.ListProducts(ctx, repo.ProductFilter{Search: query, Offset: from, Limit: size})
	if err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

func (s *CatalogService) indexed(ctx context.Context, p *models.Product, eventType string) {
	if s.Search != nil {
		if err := s.Search.IndexProduct(ctx, p); err != nil {
			logging.FromContext(ctx).Warn("search_index_error", "product_id", p.ID, "error", err)
		}
	}
	publish(ctx, s.Publisher, mykafka.TopicProductEvents, p.ID.String(), map[string]any{
		"type":      eventType,
		"productID": p.ID.String(),
		"title":     p.Title,
		"price":     p.Price.String(),
		"category":  p.Category,
		"stock":     p.Stock,
	})
}

func validateProduct(p *models.Product) error {
	switch {
	case p.Title == "":
		return apperr.Invalid("title is required")
	case p.Price.IsNegative():
		return apperr.Invalid("price must not be negative")
	case p.Price.GreaterThanOrEqual(models.MaxAmount):
		return apperr.Invalid("price is too large")
	case !models.ValidCategory(p.Category):
		return apperr.Invalid("category must be one of PC, Console, Mobile")
	case p.Rating < 0 || p.Rating > 5:
		return apperr.Invalid("rating must be between 0 and 5")
	case p.Stock < 0:
		return apperr.Invalid("stock must not be negative")
	}
	return nil
}
