package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/OrmirUlaj/gaming-marketplace/internal/apperr"
	"github.com/OrmirUlaj/gaming-marketplace/internal/models"
	"github.com/OrmirUlaj/gaming-marketplace/internal/repo"
)

type ReviewService struct {
	Repo *repo.GormRepo
}

func (s *ReviewService) AddReview(ctx context.Context, userID, productID uuid.UUID, rating int, comment string) (*models.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, apperr.Invalid("rating must be between 1 and 5")
	}
	if _, err := s.Repo.GetProduct(ctx, productID); err != nil {
		return nil, err
	}
	rv := &models.Review{
		UserID:    userID,
		ProductID: productID,
		Rating:    rating,
		Comment:   strings.TrimSpace(comment),
	}
	if err := s.Repo.CreateReview(ctx, rv); err != nil {
		return nil, err
	}
	return rv, nil
}

func (s *ReviewService) ListReviews(ctx context.Context, productID uuid.UUID) ([]models.Review, error) {
	if _, err := s.Repo.GetProduct(ctx, productID); err != nil {
		return nil, err
	}
	return s.Repo.ListReviews(ctx, productID)
}
