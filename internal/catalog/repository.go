package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/vendora/backend/internal/domain"
)

// Execer is satisfied by both *sql.DB and *sql.Tx so stock mutations can
// join a caller-owned transaction.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	product := &domain.Product{}

	err := r.db.QueryRowContext(ctx, `
		SELECT id, vendor_id, category_id, name, COALESCE(description, ''), price, stock, is_available, created_at
		FROM products
		WHERE id = $1
	`, id).Scan(&product.ID, &product.VendorID, &product.CategoryID, &product.Name,
		&product.Description, &product.Price, &product.Stock, &product.IsAvailable, &product.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return product, nil
}

// DecrementStock atomically deducts qty from a product's stock. The
// conditional WHERE plus the affected-row check make concurrent deductions
// safe without an explicit row lock: the losing caller sees
// domain.InsufficientStock and stock never goes negative.
func (r *Repository) DecrementStock(ctx context.Context, q Execer, productID uuid.UUID, qty int) error {
	result, err := q.ExecContext(ctx, `
		UPDATE products
		SET stock = stock - $2
		WHERE id = $1 AND stock >= $2
	`, productID, qty)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if affected == 0 {
		return domain.InsufficientStock("insufficient stock for product %s", productID)
	}

	return nil
}

func (r *Repository) CreateProduct(ctx context.Context, product *domain.Product) error {
	product.ID = uuid.New()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO products (id, vendor_id, category_id, name, description, price, stock, is_available, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
	`, product.ID, product.VendorID, product.CategoryID, product.Name,
		product.Description, product.Price, product.Stock, product.IsAvailable)
	return err
}

// UpdateProduct rewrites the mutable fields of a vendor's own product.
// The vendor id in the WHERE clause keeps one vendor from editing
// another's catalog.
func (r *Repository) UpdateProduct(ctx context.Context, product *domain.Product) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE products
		SET name = $3, description = $4, price = $5, stock = $6, is_available = $7
		WHERE id = $1 AND vendor_id = $2
	`, product.ID, product.VendorID, product.Name, product.Description,
		product.Price, product.Stock, product.IsAvailable)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.NotFound("product not found")
	}

	return nil
}

// ListAvailableProducts is the public catalog view: available products of
// active categories only. Soft-deactivated rows stay out of the result
// without being removed from the table.
func (r *Repository) ListAvailableProducts(ctx context.Context, vendorID uuid.UUID) ([]domain.Product, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT p.id, p.vendor_id, p.category_id, p.name, COALESCE(p.description, ''), p.price, p.stock, p.is_available, p.created_at
		FROM products p
		JOIN categories c ON c.id = p.category_id
		WHERE p.vendor_id = $1 AND p.is_available AND c.is_active
		ORDER BY p.name
	`, vendorID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	return scanProducts(rows)
}

// ListVendorProducts is the vendor management view and includes
// unavailable products.
func (r *Repository) ListVendorProducts(ctx context.Context, vendorID uuid.UUID) ([]domain.Product, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, vendor_id, category_id, name, COALESCE(description, ''), price, stock, is_available, created_at
		FROM products
		WHERE vendor_id = $1
		ORDER BY name
	`, vendorID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	return scanProducts(rows)
}

func scanProducts(rows *sql.Rows) ([]domain.Product, error) {
	products := []domain.Product{}
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.VendorID, &p.CategoryID, &p.Name, &p.Description,
			&p.Price, &p.Stock, &p.IsAvailable, &p.CreatedAt); err != nil {
			return nil, err
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return products, nil
}

func (r *Repository) CreateCategory(ctx context.Context, category *domain.Category) error {
	category.ID = uuid.New()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO categories (id, vendor_id, name, description, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
	`, category.ID, category.VendorID, category.Name, category.Description, category.IsActive)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Conflict("category %q already exists", category.Name)
		}
		return err
	}
	return nil
}

func (r *Repository) ListCategories(ctx context.Context, vendorID uuid.UUID) ([]domain.Category, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, vendor_id, name, COALESCE(description, ''), is_active, created_at
		FROM categories
		WHERE vendor_id = $1
		ORDER BY name
	`, vendorID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	categories := []domain.Category{}
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.VendorID, &c.Name, &c.Description, &c.IsActive, &c.CreatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return categories, nil
}

func (r *Repository) GetVendor(ctx context.Context, id uuid.UUID) (*domain.Vendor, error) {
	return r.vendorBy(ctx, "id", id)
}

// VendorByUser resolves the vendor record owned by the acting user.
func (r *Repository) VendorByUser(ctx context.Context, userID uuid.UUID) (*domain.Vendor, error) {
	return r.vendorBy(ctx, "user_id", userID)
}

func (r *Repository) vendorBy(ctx context.Context, column string, id uuid.UUID) (*domain.Vendor, error) {
	vendor := &domain.Vendor{}

	query := fmt.Sprintf(`
		SELECT id, user_id, business_name, COALESCE(phone, ''), status, is_active, created_at
		FROM vendors
		WHERE %s = $1
	`, column)

	err := r.db.QueryRowContext(ctx, query, id).Scan(&vendor.ID, &vendor.UserID,
		&vendor.BusinessName, &vendor.Phone, &vendor.Status, &vendor.IsActive, &vendor.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return vendor, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
