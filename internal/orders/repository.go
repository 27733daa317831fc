package orders

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vendora/backend/internal/catalog"
	"github.com/vendora/backend/internal/domain"
)

// StockDeducter performs the atomic conditional stock decrement inside a
// caller-owned transaction.
type StockDeducter interface {
	DecrementStock(ctx context.Context, q catalog.Execer, productID uuid.UUID, qty int) error
}

type Repository struct {
	db    *sql.DB
	stock StockDeducter
}

func NewRepository(db *sql.DB, stock StockDeducter) *Repository {
	return &Repository{db: db, stock: stock}
}

// Create persists the order with its items and deletes the originating
// cart in the same transaction: an order never exists while its cart
// still does, and a cart is never cleared without a persisted order.
func (r *Repository) Create(ctx context.Context, order *domain.Order, cartID uuid.UUID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (id, customer_id, vendor_id, status, payment_method, total_amount,
		                    delivery_address, delivery_phone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
	`, order.ID, order.CustomerID, order.VendorID, order.Status, order.PaymentMethod,
		order.TotalAmount, order.DeliveryAddress, order.DeliveryPhone, order.CreatedAt)
	if err != nil {
		return err
	}

	for i := range order.Items {
		item := &order.Items[i]
		item.ID = uuid.New()
		item.OrderID = order.ID
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (id, order_id, product_id, quantity, price)
			VALUES ($1, $2, $3, $4, $5)
		`, item.ID, item.OrderID, item.ProductID, item.Quantity, item.Price)
		if err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM carts WHERE id = $1`, cartID); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	order := &domain.Order{}
	var reason sql.NullString

	err := r.db.QueryRowContext(ctx, `
		SELECT id, customer_id, vendor_id, status, payment_method, total_amount,
		       delivery_address, delivery_phone, rejection_reason, created_at,
		       accepted_at, out_for_delivery_at, delivered_at, completed_at, rejected_at
		FROM orders
		WHERE id = $1
	`, id).Scan(&order.ID, &order.CustomerID, &order.VendorID, &order.Status,
		&order.PaymentMethod, &order.TotalAmount, &order.DeliveryAddress, &order.DeliveryPhone,
		&reason, &order.CreatedAt, &order.AcceptedAt, &order.OutForDeliveryAt,
		&order.DeliveredAt, &order.CompletedAt, &order.RejectedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	order.RejectionReason = reason.String

	rows, err := r.db.QueryContext(ctx, `
		SELECT oi.id, oi.order_id, oi.product_id, p.name, oi.quantity, oi.price
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = $1
		ORDER BY oi.id
	`, id)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	order.Items = []domain.OrderItem{}
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.ProductName,
			&item.Quantity, &item.Price); err != nil {
			return nil, err
		}
		order.Items = append(order.Items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return order, nil
}

// Summary is one row of the customer or vendor order list projection.
type Summary struct {
	OrderID     uuid.UUID          `json:"order_id"`
	VendorName  string             `json:"vendor_name"`
	Status      domain.OrderStatus `json:"status"`
	TotalAmount decimal.Decimal    `json:"total_amount"`
	ItemCount   int                `json:"item_count"`
	CreatedAt   time.Time          `json:"created_at"`
}

func (r *Repository) ListByCustomer(ctx context.Context, customerID uuid.UUID, status *domain.OrderStatus, limit, offset int) ([]Summary, error) {
	return r.list(ctx, "o.customer_id", customerID, status, limit, offset)
}

func (r *Repository) ListByVendor(ctx context.Context, vendorID uuid.UUID, status *domain.OrderStatus, limit, offset int) ([]Summary, error) {
	return r.list(ctx, "o.vendor_id", vendorID, status, limit, offset)
}

func (r *Repository) list(ctx context.Context, ownerColumn string, ownerID uuid.UUID, status *domain.OrderStatus, limit, offset int) ([]Summary, error) {
	query := fmt.Sprintf(`
		SELECT o.id, v.business_name, o.status, o.total_amount, o.created_at,
		       (SELECT COUNT(*) FROM order_items oi WHERE oi.order_id = o.id)
		FROM orders o
		JOIN vendors v ON v.id = o.vendor_id
		WHERE %s = $1 AND ($2::text IS NULL OR o.status = $2)
		ORDER BY o.created_at DESC
		LIMIT $3 OFFSET $4
	`, ownerColumn)

	var statusArg any
	if status != nil {
		statusArg = string(*status)
	}

	rows, err := r.db.QueryContext(ctx, query, ownerID, statusArg, limit, offset)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	summaries := []Summary{}
	for rows.Next() {
		var s Summary
		if err := rows.Scan(&s.OrderID, &s.VendorName, &s.Status, &s.TotalAmount,
			&s.CreatedAt, &s.ItemCount); err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return summaries, nil
}

// Transition flips the order status from -> to and stamps the matching
// lifecycle timestamp. The status predicate in the WHERE clause makes the
// write conditional: a false return means the order was no longer in the
// expected state and nothing was written.
func (r *Repository) Transition(ctx context.Context, id uuid.UUID, from, to domain.OrderStatus, when time.Time) (bool, error) {
	query := fmt.Sprintf(`
		UPDATE orders
		SET status = $1, %s = $2, updated_at = $2
		WHERE id = $3 AND status = $4
	`, timestampColumn(to))

	result, err := r.db.ExecContext(ctx, query, to, when, id, from)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

// Reject is Transition plus the durable rejection reason.
func (r *Repository) Reject(ctx context.Context, id uuid.UUID, reason string, when time.Time) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET status = $1, rejected_at = $2, updated_at = $2, rejection_reason = $3
		WHERE id = $4 AND status = $5
	`, domain.OrderStatusRejected, when, reason, id, domain.OrderStatusPlaced)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

// Accept deducts stock for every order item and flips PLACED -> ACCEPTED
// in one transaction. Each deduction is an atomic conditional decrement,
// so two accepts racing over the same product cannot jointly overdraw it:
// the loser rolls back with InsufficientStock and its order stays PLACED.
func (r *Repository) Accept(ctx context.Context, order *domain.Order, when time.Time) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, item := range order.Items {
		if err := r.stock.DecrementStock(ctx, tx, item.ProductID, item.Quantity); err != nil {
			if domain.KindOf(err) == domain.KindInsufficientStock {
				return domain.InsufficientStock("insufficient stock for product: %s", item.ProductName)
			}
			return err
		}
	}

	result, err := tx.ExecContext(ctx, `
		UPDATE orders
		SET status = $1, accepted_at = $2, updated_at = $2
		WHERE id = $3 AND status = $4
	`, domain.OrderStatusAccepted, when, order.ID, domain.OrderStatusPlaced)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.InvalidState("order cannot be accepted")
	}

	return tx.Commit()
}

func timestampColumn(to domain.OrderStatus) string {
	switch to {
	case domain.OrderStatusAccepted:
		return "accepted_at"
	case domain.OrderStatusOutForDelivery:
		return "out_for_delivery_at"
	case domain.OrderStatusDelivered:
		return "delivered_at"
	case domain.OrderStatusCompleted:
		return "completed_at"
	case domain.OrderStatusRejected:
		return "rejected_at"
	default:
		return "updated_at"
	}
}
