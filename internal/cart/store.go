package cart

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/vendora/backend/internal/domain"
)

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

// GetByCustomer loads the customer's active cart with its items, or
// (nil, nil) when no cart exists.
func (s *SQLStore) GetByCustomer(ctx context.Context, customerID uuid.UUID) (*domain.Cart, error) {
	cart := &domain.Cart{}

	err := s.db.QueryRowContext(ctx, `
		SELECT id, customer_id, vendor_id, created_at
		FROM carts
		WHERE customer_id = $1
	`, customerID).Scan(&cart.ID, &cart.CustomerID, &cart.VendorID, &cart.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT ci.id, ci.cart_id, ci.product_id, p.name, ci.quantity, ci.price
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.cart_id = $1
		ORDER BY ci.id
	`, cart.ID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	cart.Items = []domain.CartItem{}
	for rows.Next() {
		var item domain.CartItem
		if err := rows.Scan(&item.ID, &item.CartID, &item.ProductID, &item.ProductName,
			&item.Quantity, &item.Price); err != nil {
			return nil, err
		}
		cart.Items = append(cart.Items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return cart, nil
}

// SaveItem creates the cart row on first use and upserts the line item
// with the final quantity. The ON CONFLICT branch never touches price, so
// the snapshot taken at first add survives quantity updates.
//
// The vendor pin is re-checked inside the transaction: when the upsert
// lands on a cart another request created concurrently, the returned
// vendor_id may differ from the item's, and attaching the item would mix
// vendors in one cart.
func (s *SQLStore) SaveItem(ctx context.Context, customerID, vendorID uuid.UUID, item domain.CartItem) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var (
		cartID       uuid.UUID
		cartVendorID uuid.UUID
	)
	err = tx.QueryRowContext(ctx, `
		INSERT INTO carts (id, customer_id, vendor_id, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (customer_id) DO UPDATE SET customer_id = EXCLUDED.customer_id
		RETURNING id, vendor_id
	`, uuid.New(), customerID, vendorID).Scan(&cartID, &cartVendorID)
	if err != nil {
		return err
	}
	if cartVendorID != vendorID {
		return domain.Conflict("cart already contains products from another vendor")
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO cart_items (id, cart_id, product_id, quantity, price)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (cart_id, product_id) DO UPDATE SET quantity = EXCLUDED.quantity
	`, uuid.New(), cartID, item.ProductID, item.Quantity, item.Price)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// RemoveItem deletes one line from the customer's cart. Removing an item
// that is not there is a no-op.
func (s *SQLStore) RemoveItem(ctx context.Context, customerID, itemID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM cart_items ci
		USING carts c
		WHERE ci.id = $1 AND ci.cart_id = c.id AND c.customer_id = $2
	`, itemID, customerID)
	return err
}

// Clear deletes the cart row entirely; cart_items cascade. The next add
// recreates the cart.
func (s *SQLStore) Clear(ctx context.Context, customerID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM carts WHERE customer_id = $1
	`, customerID)
	return err
}
