// Package address stores customer delivery addresses and supplies the
// default/first fallback used when an order request carries no explicit
// delivery details.
package address

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/vendora/backend/internal/domain"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// ListByCustomer returns the customer's addresses with the default one
// first, so Fallback can simply take the head of the list.
func (r *Repository) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]domain.Address, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, customer_id, address_line, COALESCE(society, ''), COALESCE(house_no, ''),
		       COALESCE(area, ''), COALESCE(city, ''), COALESCE(pincode, ''), COALESCE(phone, ''),
		       latitude, longitude, is_default, created_at
		FROM user_addresses
		WHERE customer_id = $1
		ORDER BY is_default DESC, created_at
	`, customerID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	addresses := []domain.Address{}
	for rows.Next() {
		var a domain.Address
		if err := rows.Scan(&a.ID, &a.CustomerID, &a.AddressLine, &a.Society, &a.HouseNo,
			&a.Area, &a.City, &a.Pincode, &a.Phone, &a.Latitude, &a.Longitude,
			&a.IsDefault, &a.CreatedAt); err != nil {
			return nil, err
		}
		addresses = append(addresses, a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return addresses, nil
}

// Create stores a new address. Marking it default demotes the
// customer's previous default in the same transaction.
func (r *Repository) Create(ctx context.Context, a *domain.Address) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if a.IsDefault {
		_, err = tx.ExecContext(ctx, `
			UPDATE user_addresses SET is_default = FALSE
			WHERE customer_id = $1 AND is_default
		`, a.CustomerID)
		if err != nil {
			return err
		}
	}

	a.ID = uuid.New()
	err = tx.QueryRowContext(ctx, `
		INSERT INTO user_addresses (id, customer_id, address_line, society, house_no,
		                            area, city, pincode, phone, latitude, longitude, is_default)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at
	`, a.ID, a.CustomerID, a.AddressLine, a.Society, a.HouseNo,
		a.Area, a.City, a.Pincode, a.Phone, a.Latitude, a.Longitude, a.IsDefault).Scan(&a.CreatedAt)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// Fallback picks the delivery address for a customer who did not supply
// one explicitly: the default address when present, otherwise the first
// stored address, otherwise nil.
func Fallback(addresses []domain.Address) *domain.Address {
	if len(addresses) == 0 {
		return nil
	}
	for i := range addresses {
		if addresses[i].IsDefault {
			return &addresses[i]
		}
	}
	return &addresses[0]
}
