package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/OrmirUlaj/gaming-marketplace/internal/apperr"
	"github.com/OrmirUlaj/gaming-marketplace/internal/authz"
	"github.com/OrmirUlaj/gaming-marketplace/internal/logging"
	"github.com/OrmirUlaj/gaming-marketplace/internal/models"
	"github.com/OrmirUlaj/gaming-marketplace/internal/mykafka"
	"github.com/OrmirUlaj/gaming-marketplace/internal/repo"
)

type LineItem struct {
	ProductID uuid.UUID
	Quantity  int
}

type OrderService struct {
	Repo      *repo.GormRepo
	Publisher mykafka.Publisher
}

// PlaceOrder prices every line from the current catalog and stores the order
// as pending. Nothing is written if any line is invalid.
func (s *OrderService) PlaceOrder(ctx context.Context, userID uuid.UUID, lines []LineItem) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "order.place", "user_id", userID)

	if userID == uuid.Nil {
		return nil, apperr.Invalid("userId is required")
	}
	if len(lines) == 0 {
		return nil, apperr.Invalid("order must contain at least one product")
	}

	ids := make([]uuid.UUID, 0, len(lines))
	for i, ln := range lines {
		if ln.ProductID == uuid.Nil {
			return nil, apperr.Invalid("products[%d]: productId is required", i)
		}
		if ln.Quantity < 1 {
			return nil, apperr.Invalid("products[%d]: quantity must be at least 1", i)
		}
		if ln.Quantity > models.MaxQuantity {
			return nil, apperr.Invalid("products[%d]: quantity must be at most %d", i, models.MaxQuantity)
		}
		ids = append(ids, ln.ProductID)
	}

	catalog, err := s.Repo.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		UserID: userID,
		Status: models.OrderStatusPending,
		Items:  make([]models.OrderItem, 0, len(lines)),
		Total:  decimal.Zero,
	}
	for i, ln := range lines {
		p, ok := catalog[ln.ProductID]
		if !ok {
			return nil, apperr.Invalid("products[%d]: unknown product %s", i, ln.ProductID)
		}
		lineTotal := p.Price.Mul(decimal.NewFromInt(int64(ln.Quantity)))
		order.Items = append(order.Items, models.OrderItem{
			ProductID: ln.ProductID,
			Quantity:  ln.Quantity,
			UnitPrice: p.Price,
			LineTotal: lineTotal,
		})
		order.Total = order.Total.Add(lineTotal)
	}
	order.Total = order.Total.Round(2)
	if order.Total.GreaterThanOrEqual(models.MaxAmount) {
		return nil, apperr.Invalid("order total %s is too large", order.Total.StringFixed(2))
	}

	if err := s.Repo.CreateOrder(ctx, order); err != nil {
		l.Error("order_create_failed", "error", err)
		return nil, err
	}
	l.Info("order_placed", "order_id", order.ID, "total", order.Total.String())

	publish(ctx, s.Publisher, mykafka.TopicOrderEvents, order.ID.String(), map[string]any{
		"type":    "order_placed",
		"orderID": order.ID.String(),
		"userID":  userID.String(),
		"total":   order.Total.String(),
		"items":   len(order.Items),
	})
	return order, nil
}

// ListOrders returns the caller's orders; admins may ask for every order.
func (s *OrderService) ListOrders(ctx context.Context, ac *authz.AuthContext, all bool) ([]models.Order, error) {
	if err := authz.Require(ac, authz.Authenticated); err != nil {
		return nil, err
	}
	if all {
		if err := authz.Require(ac, authz.Admin); err != nil {
			return nil, err
		}
		return s.Repo.ListOrders(ctx, nil)
	}
	return s.Repo.ListOrders(ctx, &ac.UserID)
}

// GetOrder hides orders owned by someone else behind ErrNotFound.
func (s *OrderService) GetOrder(ctx context.Context, ac *authz.AuthContext, id uuid.UUID) (*models.Order, error) {
	if err := authz.Require(ac, authz.Authenticated); err != nil {
		return nil, err
	}
	order, err := s.Repo.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.UserID != ac.UserID && !ac.IsAdmin() {
		return nil, apperr.ErrNotFound
	}
	return order, nil
}

func (s *OrderService) CancelOrder(ctx context.Context, ac *authz.AuthContext, id uuid.UUID) (*models.Order, error) {
	order, err := s.GetOrder(ctx, ac, id)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, order, models.OrderStatusCancelled)
}

func (s *OrderService) UpdateStatus(ctx context.Context, id uuid.UUID, next models.OrderStatus) (*models.Order, error) {
	if !next.Valid() {
		return nil, apperr.Invalid("unknown order status %q", next)
	}
	order, err := s.Repo.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, order, next)
}

func (s *OrderService) transition(ctx context.Context, order *models.Order, next models.OrderStatus) (*models.Order, error) {
	from := order.Status
	if !from.CanTransitionTo(next) {
		return nil, fmt.Errorf("%s -> %s: %w", from, next, apperr.ErrInvalidStateTransition)
	}

	ok, err := s.Repo.UpdateOrderStatus(ctx, order.ID, from, next)
	if err != nil {
		return nil, err
	}
	if !ok {
		// lost a race with another transition
		return nil, fmt.Errorf("order %s is no longer %s: %w", order.ID, from, apperr.ErrInvalidStateTransition)
	}

	updated, err := s.Repo.GetOrder(ctx, order.ID)
	if err != nil {
		return nil, err
	}

	publish(ctx, s.Publisher, mykafka.TopicOrderEvents, order.ID.String(), map[string]any{
		"type":    "order_status_changed",
		"orderID": order.ID.String(),
		"from":    string(from),
		"to":      string(next),
	})
	return updated, nil
}
