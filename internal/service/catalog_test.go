package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OrmirUlaj/gaming-marketplace/internal/apperr"
	"github.com/OrmirUlaj/gaming-marketplace/internal/models"
)

type stubSearcher struct {
	indexed []string
	err     error
	hits    []models.Product
}

func (s *stubSearcher) IndexProduct(_ context.Context, p *models.Product) error {
	s.indexed = append(s.indexed, p.Title)
	return nil
}

func (s *stubSearcher) SearchProducts(context.Context, string, int, int) (int64, []models.Product, error) {
	if s.err != nil {
		return 0, nil, s.err
	}
	return int64(len(s.hits)), s.hits, nil
}

func titles(items []models.Product) []string {
	out := make([]string, 0, len(items))
	for _, p := range items {
		out = append(out, p.Title)
	}
	return out
}

func TestCatalogService_ListProducts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.product(t, "Zelda", models.CategoryConsole, "59.99")
	env.product(t, "Minecraft", models.CategoryPC, "26.95")
	env.product(t, "The Witcher 3", models.CategoryPC, "39.99")
	env.product(t, "Cyberpunk 2077", models.CategoryPC, "59.99")

	all, total, err := env.Shop.ListProducts(ctx, ProductQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
	assert.Equal(t, []string{"Cyberpunk 2077", "Minecraft", "The Witcher 3", "Zelda"}, titles(all))

	got, _, err := env.Shop.ListProducts(ctx, ProductQuery{Category: "PC", MinPrice: "10", MaxPrice: "50"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Minecraft", "The Witcher 3"}, titles(got))

	got, _, err = env.Shop.ListProducts(ctx, ProductQuery{Search: "WITCH"})
	require.NoError(t, err)
	assert.Equal(t, []string{"The Witcher 3"}, titles(got))

	got, _, err = env.Shop.ListProducts(ctx, ProductQuery{MinPrice: "59.99", MaxPrice: "59.99"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Cyberpunk 2077", "Zelda"}, titles(got))

	for _, q := range []ProductQuery{
		{MinPrice: "abc"},
		{MinPrice: "50", MaxPrice: "10"},
		{Category: "Arcade"},
		{MaxPrice: "-1"},
	} {
		_, _, err := env.Shop.ListProducts(ctx, q)
		assert.ErrorIs(t, err, apperr.ErrInvalidArgument, "%+v", q)
	}
}

func TestCatalogService_CreateAndUpdate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	idx := &stubSearcher{}
	env.Shop.Search = idx

	_, err := env.Shop.CreateProduct(ctx, NewProduct{Title: "Bad", Category: "Arcade"})
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
	_, err = env.Shop.CreateProduct(ctx, NewProduct{Title: "Bad", Category: models.CategoryPC, Price: decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)

	p, err := env.Shop.CreateProduct(ctx, NewProduct{
		Title:    "Hades",
		Category: models.CategoryPC,
		Price:    decimal.RequireFromString("24.99"),
		Rating:   4.9,
		Stock:    3,
	})
	require.NoError(t, err)

	_, err = env.Shop.UpdateProduct(ctx, p.ID, ProductPatch{})
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
	_, err = env.Shop.UpdateProduct(ctx, p.ID, ProductPatch{Stock: ptr(-2)})
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
	_, err = env.Shop.UpdateProduct(ctx, uuid.New(), ProductPatch{Stock: ptr(2)})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	updated, err := env.Shop.UpdateProduct(ctx, p.ID, ProductPatch{Stock: ptr(20), Title: ptr("Hades II")})
	require.NoError(t, err)
	assert.Equal(t, 20, updated.Stock)
	assert.Equal(t, "Hades II", updated.Title)

	assert.Equal(t, []string{"Hades", "Hades II"}, idx.indexed)
	assert.Equal(t, []string{"product_created", "product_updated"}, env.Events.Types())
}

func TestCatalogService_SearchFallsBackToDatabase(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.product(t, "Super Mario Odyssey", models.CategoryConsole, "49.99")

	_, _, err := env.Shop.SearchProducts(ctx, "  ", 0, 10)
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)

	total, items, err := env.Shop.SearchProducts(ctx, "mario", 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, []string{"Super Mario Odyssey"}, titles(items))

	env.Shop.Search = &stubSearcher{hits: []models.Product{{Title: "From Index"}}}
	_, items, err = env.Shop.SearchProducts(ctx, "mario", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"From Index"}, titles(items))

	env.Shop.Search = &stubSearcher{err: errors.New("cluster down")}
	_, items, err = env.Shop.SearchProducts(ctx, "mario", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"Super Mario Odyssey"}, titles(items))
}

func TestCatalogService_SeedCatalog(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	n, err := env.Shop.SeedCatalog(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(sampleGames()), n)

	n, err = env.Shop.SeedCatalog(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	got, _, err := env.Shop.ListProducts(ctx, ProductQuery{Category: models.CategoryMobile})
	require.NoError(t, err)
	assert.Equal(t, []string{"Call of Duty: Mobile", "Genshin Impact"}, titles(got))
}

func TestReviewService(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := &ReviewService{Repo: env.Repo}
	game := env.product(t, "Celeste", models.CategoryPC, "19.99")
	userID := uuid.New()

	_, err := svc.AddReview(ctx, userID, game.ID, 6, "too good")
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
	_, err = svc.AddReview(ctx, userID, uuid.New(), 5, "ghost")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = svc.ListReviews(ctx, uuid.New())
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	rv, err := svc.AddReview(ctx, userID, game.ID, 5, " great climbing ")
	require.NoError(t, err)
	assert.Equal(t, "great climbing", rv.Comment)

	list, err := svc.ListReviews(ctx, game.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, rv.ID, list[0].ID)
}
