package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/backoffice-suite/internal/domain"
)

// ProductRepository encapsulates catalog persistence.
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	GetActiveByID(ctx context.Context, id string) (*domain.Product, error)
	ListActive(ctx context.Context) ([]domain.Product, error)
}

// CartRepository persists per-user carts and their line items.
type CartRepository interface {
	// GetOrCreate returns the user's cart with items, creating it on first use.
	GetOrCreate(ctx context.Context, userID string) (*domain.Cart, error)
	// UpsertItem adds quantity to an existing (cart, product) line or inserts
	// a new one; the pair stays unique either way.
	UpsertItem(ctx context.Context, cartID, productID string, quantity int) (*domain.CartItem, error)
	DeleteItem(ctx context.Context, cartID, itemID string) error
}

// CheckoutTx exposes the statements the checkout workflow runs inside one
// transaction.
type CheckoutTx interface {
	// CartLinesForUpdate loads the user's cart lines joined with their product
	// rows, locking both so concurrent checkouts serialize on the products.
	CartLinesForUpdate(ctx context.Context, userID string) (cartID string, lines []domain.CartLine, err error)
	// DecrementStock subtracts quantity guarded by stock >= quantity; a false
	// return means the guard failed and nothing changed.
	DecrementStock(ctx context.Context, productID string, quantity int) (bool, error)
	InsertOrder(ctx context.Context, order *domain.Order) error
	InsertOrderItem(ctx context.Context, item *domain.OrderItem) error
	ClearCart(ctx context.Context, cartID string) error
}

// OrderRepository persists orders and hosts the checkout transaction boundary.
type OrderRepository interface {
	// RunCheckout executes fn inside a single transaction; fn's error rolls
	// back every statement issued through the CheckoutTx.
	RunCheckout(ctx context.Context, fn func(tx CheckoutTx) error) error
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	GetPendingForUser(ctx context.Context, id, userID string) (*domain.Order, error)
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error
}

type productRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository instantiates repository.
func NewProductRepository(pool *pgxpool.Pool) ProductRepository {
	return &productRepository{pool: pool}
}

func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	const query = `
        INSERT INTO products (name, description, price, stock, is_active)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id`
	return r.pool.QueryRow(ctx, query,
		product.Name,
		product.Description,
		product.Price,
		product.Stock,
		product.IsActive,
	).Scan(&product.ID)
}

func (r *productRepository) GetActiveByID(ctx context.Context, id string) (*domain.Product, error) {
	const query = `
        SELECT id, name, description, price, stock, is_active
        FROM products WHERE id=$1 AND is_active`
	var p domain.Product
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.IsActive,
	); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepository) ListActive(ctx context.Context) ([]domain.Product, error) {
	const query = `
        SELECT id, name, description, price, stock, is_active
        FROM products WHERE is_active ORDER BY name`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.IsActive); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

type cartRepository struct {
	pool *pgxpool.Pool
}

// NewCartRepository instantiates repository.
func NewCartRepository(pool *pgxpool.Pool) CartRepository {
	return &cartRepository{pool: pool}
}

func (r *cartRepository) GetOrCreate(ctx context.Context, userID string) (*domain.Cart, error) {
	const insert = `
        INSERT INTO carts (user_id) VALUES ($1)
        ON CONFLICT (user_id) DO NOTHING`
	if _, err := r.pool.Exec(ctx, insert, userID); err != nil {
		return nil, err
	}

	const query = `SELECT id, user_id, created_at FROM carts WHERE user_id=$1`
	var cart domain.Cart
	if err := r.pool.QueryRow(ctx, query, userID).Scan(&cart.ID, &cart.UserID, &cart.CreatedAt); err != nil {
		return nil, err
	}

	const itemsQuery = `
        SELECT id, cart_id, product_id, quantity
        FROM cart_items WHERE cart_id=$1 ORDER BY id`
	rows, err := r.pool.Query(ctx, itemsQuery, cart.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var item domain.CartItem
		if err := rows.Scan(&item.ID, &item.CartID, &item.ProductID, &item.Quantity); err != nil {
			return nil, err
		}
		cart.Items = append(cart.Items, item)
	}
	return &cart, rows.Err()
}

func (r *cartRepository) UpsertItem(ctx context.Context, cartID, productID string, quantity int) (*domain.CartItem, error) {
	const query = `
        INSERT INTO cart_items (cart_id, product_id, quantity)
        VALUES ($1,$2,$3)
        ON CONFLICT (cart_id, product_id)
        DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
        RETURNING id, cart_id, product_id, quantity`
	var item domain.CartItem
	if err := r.pool.QueryRow(ctx, query, cartID, productID, quantity).Scan(
		&item.ID, &item.CartID, &item.ProductID, &item.Quantity,
	); err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *cartRepository) DeleteItem(ctx context.Context, cartID, itemID string) error {
	const query = `DELETE FROM cart_items WHERE id=$1 AND cart_id=$2`
	cmd, err := r.pool.Exec(ctx, query, itemID, cartID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

type orderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository instantiates repository.
func NewOrderRepository(pool *pgxpool.Pool) OrderRepository {
	return &orderRepository{pool: pool}
}

func (r *orderRepository) RunCheckout(ctx context.Context, fn func(tx CheckoutTx) error) error {
	return inTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(&checkoutTx{db: tx})
	})
}

type checkoutTx struct {
	db DB
}

func (t *checkoutTx) CartLinesForUpdate(ctx context.Context, userID string) (string, []domain.CartLine, error) {
	const cartQuery = `SELECT id FROM carts WHERE user_id=$1`
	var cartID string
	if err := t.db.QueryRow(ctx, cartQuery, userID).Scan(&cartID); err != nil {
		return "", nil, err
	}

	// product_id ordering keeps the lock order deterministic across
	// concurrent checkouts touching the same products.
	const linesQuery = `
        SELECT ci.id, ci.product_id, p.name, p.price, p.stock, ci.quantity
        FROM cart_items ci
        JOIN products p ON p.id = ci.product_id
        WHERE ci.cart_id=$1
        ORDER BY ci.product_id
        FOR UPDATE OF ci, p`
	rows, err := t.db.Query(ctx, linesQuery, cartID)
	if err != nil {
		return "", nil, err
	}
	defer rows.Close()

	var lines []domain.CartLine
	for rows.Next() {
		var line domain.CartLine
		if err := rows.Scan(&line.ItemID, &line.ProductID, &line.ProductName, &line.Price, &line.Stock, &line.Quantity); err != nil {
			return "", nil, err
		}
		lines = append(lines, line)
	}
	return cartID, lines, rows.Err()
}

func (t *checkoutTx) DecrementStock(ctx context.Context, productID string, quantity int) (bool, error) {
	const query = `
        UPDATE products SET stock = stock - $1
        WHERE id=$2 AND stock >= $1`
	cmd, err := t.db.Exec(ctx, query, quantity, productID)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() == 1, nil
}

func (t *checkoutTx) InsertOrder(ctx context.Context, order *domain.Order) error {
	const query = `
        INSERT INTO orders (user_id, status, total_amount)
        VALUES ($1,$2,$3)
        RETURNING id, created_at`
	return t.db.QueryRow(ctx, query, order.UserID, order.Status, order.TotalAmount).
		Scan(&order.ID, &order.CreatedAt)
}

func (t *checkoutTx) InsertOrderItem(ctx context.Context, item *domain.OrderItem) error {
	const query = `
        INSERT INTO order_items (order_id, product_id, quantity, price_at_purchase)
        VALUES ($1,$2,$3,$4)
        RETURNING id`
	return t.db.QueryRow(ctx, query, item.OrderID, item.ProductID, item.Quantity, item.PriceAtPurchase).
		Scan(&item.ID)
}

func (t *checkoutTx) ClearCart(ctx context.Context, cartID string) error {
	const query = `DELETE FROM cart_items WHERE cart_id=$1`
	_, err := t.db.Exec(ctx, query, cartID)
	return err
}

func (r *orderRepository) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	const query = `
        SELECT id, user_id, status, total_amount, created_at
        FROM orders WHERE user_id=$1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.Status, &o.TotalAmount, &o.CreatedAt); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range orders {
		items, err := r.itemsForOrder(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}
	return orders, nil
}

func (r *orderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	const query = `
        SELECT id, user_id, status, total_amount, created_at
        FROM orders WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *orderRepository) GetPendingForUser(ctx context.Context, id, userID string) (*domain.Order, error) {
	const query = `
        SELECT id, user_id, status, total_amount, created_at
        FROM orders WHERE id=$1 AND user_id=$2 AND status='PENDING'`
	return r.fetchSingle(ctx, query, id, userID)
}

func (r *orderRepository) fetchSingle(ctx context.Context, query string, args ...any) (*domain.Order, error) {
	var o domain.Order
	if err := r.pool.QueryRow(ctx, query, args...).Scan(
		&o.ID, &o.UserID, &o.Status, &o.TotalAmount, &o.CreatedAt,
	); err != nil {
		return nil, err
	}
	items, err := r.itemsForOrder(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return &o, nil
}

func (r *orderRepository) itemsForOrder(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	const query = `
        SELECT id, order_id, product_id, quantity, price_at_purchase
        FROM order_items WHERE order_id=$1 ORDER BY id`
	rows, err := r.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.PriceAtPurchase); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	const query = `UPDATE orders SET status=$1 WHERE id=$2`
	cmd, err := r.pool.Exec(ctx, query, status, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
