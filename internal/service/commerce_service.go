package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/spec-kit/backoffice-suite/internal/domain"
	"github.com/spec-kit/backoffice-suite/internal/events"
	"github.com/spec-kit/backoffice-suite/internal/repository"
	apperrors "github.com/spec-kit/backoffice-suite/pkg/util"
)

// CommerceService coordinates catalog, cart and order workflows.
type CommerceService struct {
	products   repository.ProductRepository
	carts      repository.CartRepository
	orders     repository.OrderRepository
	dispatcher events.Dispatcher
}

// CommerceDependencies bundles repositories for commerce service.
type CommerceDependencies struct {
	ProductRepo repository.ProductRepository
	CartRepo    repository.CartRepository
	OrderRepo   repository.OrderRepository
	Dispatcher  events.Dispatcher
}

// NewCommerceService creates the service.
func NewCommerceService(deps CommerceDependencies) *CommerceService {
	return &CommerceService{
		products:   deps.ProductRepo,
		carts:      deps.CartRepo,
		orders:     deps.OrderRepo,
		dispatcher: deps.Dispatcher,
	}
}

// ProductCreateInput describes product creation payload.
type ProductCreateInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	IsActive    bool
}

// CreateProduct adds a catalog item.
func (s *CommerceService) CreateProduct(ctx context.Context, input ProductCreateInput) (*domain.Product, error) {
	if input.Price.IsNegative() {
		return nil, apperrors.NewValidationError("price must not be negative", nil)
	}
	if input.Stock < 0 {
		return nil, apperrors.NewValidationError("stock must not be negative", nil)
	}

	product := &domain.Product{
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Stock:       input.Stock,
		IsActive:    input.IsActive,
	}
	if err := s.products.Create(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// GetProduct returns an active product; inactive products are hidden.
func (s *CommerceService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	product, err := s.products.GetActiveByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("product", nil)
		}
		return nil, err
	}
	return product, nil
}

// ListProducts returns active catalog items.
func (s *CommerceService) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.products.ListActive(ctx)
}

// GetCart returns the caller's cart, creating an empty one on first access.
func (s *CommerceService) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	return s.carts.GetOrCreate(ctx, userID)
}

// AddCartItem puts quantity units of a product into the caller's cart. Adding
// a product already in the cart increments the existing line.
func (s *CommerceService) AddCartItem(ctx context.Context, userID, productID string, quantity int) (*domain.CartItem, error) {
	if quantity <= 0 {
		return nil, apperrors.NewValidationError("quantity must be positive", nil)
	}

	product, err := s.products.GetActiveByID(ctx, productID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("product", nil)
		}
		return nil, err
	}

	cart, err := s.carts.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.carts.UpsertItem(ctx, cart.ID, product.ID, quantity)
}

// RemoveCartItem deletes a line from the caller's cart. Lines in other users'
// carts are reported as missing.
func (s *CommerceService) RemoveCartItem(ctx context.Context, userID, itemID string) error {
	cart, err := s.carts.GetOrCreate(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.carts.DeleteItem(ctx, cart.ID, itemID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("cart item", nil)
		}
		return err
	}
	return nil
}

// Checkout converts the caller's cart into a PENDING order in one
// transaction: stock is checked and decremented per line, the unit price is
// frozen into each order item, and the cart is emptied. Any line failing its
// stock check aborts the whole checkout.
func (s *CommerceService) Checkout(ctx context.Context, userID string) (*domain.Order, error) {
	var order *domain.Order

	err := s.orders.RunCheckout(ctx, func(tx repository.CheckoutTx) error {
		cartID, lines, err := tx.CartLinesForUpdate(ctx, userID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewBusinessRule("cart is empty", nil)
			}
			return err
		}
		if len(lines) == 0 {
			return apperrors.NewBusinessRule("cart is empty", nil)
		}

		total := decimal.Zero
		for _, line := range lines {
			if line.Stock < line.Quantity {
				return apperrors.NewBusinessRule(
					fmt.Sprintf("insufficient stock for %s", line.ProductName),
					map[string]any{"product_id": line.ProductID},
				)
			}
			total = total.Add(line.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
		}

		order = &domain.Order{
			UserID:      userID,
			Status:      domain.OrderStatusPending,
			TotalAmount: total,
		}
		if err := tx.InsertOrder(ctx, order); err != nil {
			return err
		}

		for _, line := range lines {
			ok, err := tx.DecrementStock(ctx, line.ProductID, line.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				return apperrors.NewBusinessRule(
					fmt.Sprintf("insufficient stock for %s", line.ProductName),
					map[string]any{"product_id": line.ProductID},
				)
			}

			item := domain.OrderItem{
				OrderID:         order.ID,
				ProductID:       line.ProductID,
				Quantity:        line.Quantity,
				PriceAtPurchase: line.Price,
			}
			if err := tx.InsertOrderItem(ctx, &item); err != nil {
				return err
			}
			order.Items = append(order.Items, item)
		}

		return tx.ClearCart(ctx, cartID)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.Event{
		Type: events.EventOrderPlaced,
		Payload: events.OrderPlacedPayload{
			OrderID:   order.ID,
			UserID:    order.UserID,
			ItemCount: len(order.Items),
			Total:     order.TotalAmount.String(),
		},
	})
	return order, nil
}

// ListOrders returns the caller's order history, newest first.
func (s *CommerceService) ListOrders(ctx context.Context, userID string) ([]domain.Order, error) {
	return s.orders.ListByUser(ctx, userID)
}

// UpdateOrderStatus applies the status transition policy: staff may move any
// order to any valid status; everyone else may only cancel their own order
// while it is still pending.
func (s *CommerceService) UpdateOrderStatus(ctx context.Context, caller *domain.User, orderID string, status domain.OrderStatus) (*domain.Order, error) {
	if !domain.ValidOrderStatus(status) {
		return nil, apperrors.NewValidationError(
			"status must be one of PENDING, SHIPPED, DELIVERED, CANCELED", nil)
	}

	var order *domain.Order
	var err error

	switch {
	case caller.IsStaff:
		order, err = s.orders.GetByID(ctx, orderID)
	case status == domain.OrderStatusCanceled:
		// non-staff: order must be the caller's own and still pending; a
		// mismatch on either reads as the order not existing
		order, err = s.orders.GetPendingForUser(ctx, orderID, caller.ID)
	default:
		return nil, apperrors.NewBusinessRule("only cancellation of a pending order is allowed", nil)
	}
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("order", nil)
		}
		return nil, err
	}

	if err := s.orders.UpdateStatus(ctx, order.ID, status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("order", nil)
		}
		return nil, err
	}
	order.Status = status
	return order, nil
}

func (s *CommerceService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
