package cart

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/vendora/backend/internal/domain"
)

// Store is the cart persistence the service depends on.
type Store interface {
	GetByCustomer(ctx context.Context, customerID uuid.UUID) (*domain.Cart, error)
	SaveItem(ctx context.Context, customerID, vendorID uuid.UUID, item domain.CartItem) error
	RemoveItem(ctx context.Context, customerID, itemID uuid.UUID) error
	Clear(ctx context.Context, customerID uuid.UUID) error
}

// Catalog is the slice of the catalog store the cart engine consumes.
type Catalog interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	GetVendor(ctx context.Context, id uuid.UUID) (*domain.Vendor, error)
}

type Service struct {
	store   Store
	catalog Catalog
}

func NewService(store Store, catalog Catalog) *Service {
	return &Service{store: store, catalog: catalog}
}

// AddItem adds quantity of a product to the customer's cart, creating the
// cart on first use. Quantities accumulate; the price snapshot is taken at
// first add and never refreshed here. The add-time stock ceiling is
// advisory, placement re-validates against live stock.
func (s *Service) AddItem(ctx context.Context, customerID, productID uuid.UUID, quantity int) (domain.CartView, error) {
	if quantity <= 0 {
		return domain.CartView{}, domain.Validation("quantity must be greater than 0")
	}

	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return domain.CartView{}, fmt.Errorf("load product: %w", err)
	}
	if product == nil {
		return domain.CartView{}, domain.NotFound("product not found")
	}
	if !product.IsAvailable {
		return domain.CartView{}, domain.Validation("product is not available")
	}

	cart, err := s.store.GetByCustomer(ctx, customerID)
	if err != nil {
		return domain.CartView{}, fmt.Errorf("load cart: %w", err)
	}

	// A cart holds items from exactly one vendor at a time.
	if cart != nil && cart.VendorID != product.VendorID {
		return domain.CartView{}, domain.Conflict("cart already contains products from another vendor")
	}

	newQuantity := quantity
	price := product.Price
	if cart != nil {
		if existing := cart.Item(productID); existing != nil {
			newQuantity += existing.Quantity
			price = existing.Price
		}
	}

	if newQuantity > product.Stock {
		return domain.CartView{}, domain.InsufficientStock(
			"not enough stock for %s: requested %d, available %d", product.Name, newQuantity, product.Stock)
	}

	item := domain.CartItem{
		ProductID: productID,
		Quantity:  newQuantity,
		Price:     price,
	}
	if err := s.store.SaveItem(ctx, customerID, product.VendorID, item); err != nil {
		return domain.CartView{}, fmt.Errorf("save cart item: %w", err)
	}

	return s.Get(ctx, customerID)
}

// Get returns the customer's cart view. A customer with no cart gets the
// empty shape, never an error.
func (s *Service) Get(ctx context.Context, customerID uuid.UUID) (domain.CartView, error) {
	cart, err := s.store.GetByCustomer(ctx, customerID)
	if err != nil {
		return domain.CartView{}, fmt.Errorf("load cart: %w", err)
	}
	if cart == nil {
		return domain.EmptyCartView(), nil
	}

	view := domain.CartView{
		CartID:      &cart.ID,
		VendorID:    &cart.VendorID,
		Items:       cart.Items,
		TotalAmount: cart.Total(),
	}

	if vendor, err := s.catalog.GetVendor(ctx, cart.VendorID); err == nil && vendor != nil {
		view.VendorName = vendor.BusinessName
	}

	return view, nil
}

// RemoveItem deletes one line item; removing an unknown item is a no-op.
func (s *Service) RemoveItem(ctx context.Context, customerID, itemID uuid.UUID) (domain.CartView, error) {
	if err := s.store.RemoveItem(ctx, customerID, itemID); err != nil {
		return domain.CartView{}, fmt.Errorf("remove cart item: %w", err)
	}
	return s.Get(ctx, customerID)
}

// Clear drops the cart entirely. Clearing an absent cart is a no-op.
func (s *Service) Clear(ctx context.Context, customerID uuid.UUID) error {
	if err := s.store.Clear(ctx, customerID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}
