package httpserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/OrmirUlaj/gaming-marketplace/internal/logging"
	authmw "github.com/OrmirUlaj/gaming-marketplace/internal/middleware/auth"
	"github.com/OrmirUlaj/gaming-marketplace/internal/models"
	"github.com/OrmirUlaj/gaming-marketplace/internal/service"
	"github.com/OrmirUlaj/gaming-marketplace/internal/transport"
	"github.com/OrmirUlaj/gaming-marketplace/internal/util"
)

const headerTotalCount = "X-Total-Count"

type ProductHTTP struct {
	Svc     *service.CatalogService
	Reviews *service.ReviewService
}

// ListProducts always answers with a JSON array. Paging is applied only
// when page or size is present.
func (h *ProductHTTP) ListProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "products.list")

	q := service.ProductQuery{
		Search:   c.QueryParam("search"),
		Category: c.QueryParam("category"),
		MinPrice: c.QueryParam("minPrice"),
		MaxPrice: c.QueryParam("maxPrice"),
	}
	if c.QueryParam("page") != "" || c.QueryParam("size") != "" {
		q.Offset, q.Limit = util.Calculate(
			util.ParseIntDefault(c.QueryParam("page"), 1),
			util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize),
		)
	}

	items, total, err := h.Svc.ListProducts(ctx, q)
	if err != nil {
		return fail(l, "list_products_error", err)
	}
	c.Response().Header().Set(headerTotalCount, strconv.FormatInt(total, 10))
	return c.JSON(http.StatusOK, items)
}

func (h *ProductHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "products.get")

	id, err := parseID(c, "id")
	if err != nil {
		return fail(l, "get_product_error", err)
	}
	product, err := h.Svc.GetProduct(ctx, id)
	if err != nil {
		return fail(l, "get_product_error", err)
	}
	return c.JSON(http.StatusOK, product)
}

func (h *ProductHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "products.create")

	var req transport.ProductCreateRequest
	if err := bindStrict(c, &req); err != nil {
		return fail(l, "create_product_error", err)
	}
	product, err := h.Svc.CreateProduct(ctx, service.NewProduct{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		ImageURL:    req.ImageURL,
		Rating:      req.Rating,
		Stock:       req.Stock,
	})
	if err != nil {
		return fail(l, "create_product_error", err)
	}

	l.Info("product_created", "product_id", product.ID)
	return c.JSON(http.StatusCreated, transport.CreatedResponse{ID: product.ID})
}

func (h *ProductHTTP) PatchProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "products.patch")

	id, err := parseID(c, "id")
	if err != nil {
		return fail(l, "patch_product_error", err)
	}
	var req transport.ProductPatchRequest
	if err := bindStrict(c, &req); err != nil {
		return fail(l, "patch_product_error", err)
	}
	product, err := h.Svc.UpdateProduct(ctx, id, service.ProductPatch{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		ImageURL:    req.ImageURL,
		Rating:      req.Rating,
		Stock:       req.Stock,
	})
	if err != nil {
		return fail(l, "patch_product_error", err)
	}
	return c.JSON(http.StatusOK, product)
}

func (h *ProductHTTP) Search(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "products.search")

	page := util.NormalizePage(util.ParseIntDefault(c.QueryParam("page"), 1))
	from, size := util.Calculate(page, util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize))

	total, items, err := h.Svc.SearchProducts(ctx, c.QueryParam("q"), from, size)
	if err != nil {
		return fail(l, "search_error", err)
	}
	if items == nil {
		items = []models.Product{}
	}
	return c.JSON(http.StatusOK, transport.SearchResponse{
		Data: items,
		Meta: transport.PageMeta{
			Page:       page,
			Size:       size,
			Total:      total,
			TotalPages: util.TotalPages(total, size),
			HasPrev:    page > 1,
			HasNext:    int64(from+size) < total,
		},
	})
}

func (h *ProductHTTP) ListReviews(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "reviews.list")

	id, err := parseID(c, "id")
	if err != nil {
		return fail(l, "list_reviews_error", err)
	}
	reviews, err := h.Reviews.ListReviews(ctx, id)
	if err != nil {
		return fail(l, "list_reviews_error", err)
	}
	return c.JSON(http.StatusOK, reviews)
}

func (h *ProductHTTP) AddReview(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "reviews.add")

	id, err := parseID(c, "id")
	if err != nil {
		return fail(l, "add_review_error", err)
	}
	var req transport.ReviewRequest
	if err := bindStrict(c, &req); err != nil {
		return fail(l, "add_review_error", err)
	}
	review, err := h.Reviews.AddReview(ctx, authmw.FromContext(c).UserID, id, req.Rating, req.Comment)
	if err != nil {
		return fail(l, "add_review_error", err)
	}
	return c.JSON(http.StatusCreated, review)
}
