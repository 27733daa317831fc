package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vendora/backend/internal/domain"
)

type memStore struct {
	carts map[uuid.UUID]*domain.Cart
}

func newMemStore() *memStore {
	return &memStore{carts: map[uuid.UUID]*domain.Cart{}}
}

func (m *memStore) GetByCustomer(_ context.Context, customerID uuid.UUID) (*domain.Cart, error) {
	cart, ok := m.carts[customerID]
	if !ok {
		return nil, nil
	}
	clone := *cart
	clone.Items = append([]domain.CartItem(nil), cart.Items...)
	return &clone, nil
}

func (m *memStore) SaveItem(_ context.Context, customerID, vendorID uuid.UUID, item domain.CartItem) error {
	cart, ok := m.carts[customerID]
	if !ok {
		cart = &domain.Cart{ID: uuid.New(), CustomerID: customerID, VendorID: vendorID}
		m.carts[customerID] = cart
	}
	for i := range cart.Items {
		if cart.Items[i].ProductID == item.ProductID {
			cart.Items[i].Quantity = item.Quantity
			return nil
		}
	}
	item.ID = uuid.New()
	item.CartID = cart.ID
	cart.Items = append(cart.Items, item)
	return nil
}

func (m *memStore) RemoveItem(_ context.Context, customerID, itemID uuid.UUID) error {
	cart, ok := m.carts[customerID]
	if !ok {
		return nil
	}
	for i := range cart.Items {
		if cart.Items[i].ID == itemID {
			cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *memStore) Clear(_ context.Context, customerID uuid.UUID) error {
	delete(m.carts, customerID)
	return nil
}

type memCatalog struct {
	products map[uuid.UUID]*domain.Product
	vendors  map[uuid.UUID]*domain.Vendor
}

func newMemCatalog() *memCatalog {
	return &memCatalog{
		products: map[uuid.UUID]*domain.Product{},
		vendors:  map[uuid.UUID]*domain.Vendor{},
	}
}

func (m *memCatalog) GetProduct(_ context.Context, id uuid.UUID) (*domain.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, nil
	}
	clone := *p
	return &clone, nil
}

func (m *memCatalog) GetVendor(_ context.Context, id uuid.UUID) (*domain.Vendor, error) {
	v, ok := m.vendors[id]
	if !ok {
		return nil, nil
	}
	clone := *v
	return &clone, nil
}

func (m *memCatalog) addProduct(vendorID uuid.UUID, price string, stock int) *domain.Product {
	p := &domain.Product{
		ID:          uuid.New(),
		VendorID:    vendorID,
		CategoryID:  uuid.New(),
		Name:        "product-" + uuid.NewString()[:8],
		Price:       decimal.RequireFromString(price),
		Stock:       stock,
		IsAvailable: true,
	}
	m.products[p.ID] = p
	return p
}

func newTestService() (*Service, *memStore, *memCatalog, uuid.UUID) {
	store := newMemStore()
	cat := newMemCatalog()
	vendorID := uuid.New()
	cat.vendors[vendorID] = &domain.Vendor{ID: vendorID, BusinessName: "Fresh Corner"}
	return NewService(store, cat), store, cat, vendorID
}

func TestAddItem(t *testing.T) {
	ctx := context.Background()
	customerID := uuid.New()

	t.Run("first add pins cart to product vendor", func(t *testing.T) {
		service, _, cat, vendorID := newTestService()
		product := cat.addProduct(vendorID, "10.00", 5)

		view, err := service.AddItem(ctx, customerID, product.ID, 2)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if view.VendorID == nil || *view.VendorID != vendorID {
			t.Error("expected cart vendor to equal first product's vendor")
		}
		if len(view.Items) != 1 || view.Items[0].Quantity != 2 {
			t.Fatalf("expected one item with quantity 2, got %+v", view.Items)
		}
		if !view.TotalAmount.Equal(decimal.RequireFromString("20.00")) {
			t.Errorf("expected total 20.00, got %s", view.TotalAmount)
		}
		if view.VendorName != "Fresh Corner" {
			t.Errorf("expected vendor name, got %q", view.VendorName)
		}
	})

	t.Run("different vendor is rejected with conflict", func(t *testing.T) {
		service, _, cat, vendorID := newTestService()
		first := cat.addProduct(vendorID, "10.00", 5)
		otherVendor := uuid.New()
		other := cat.addProduct(otherVendor, "3.00", 5)

		if _, err := service.AddItem(ctx, customerID, first.ID, 1); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		_, err := service.AddItem(ctx, customerID, other.ID, 1)
		if domain.KindOf(err) != domain.KindConflict {
			t.Errorf("expected conflict, got %v", err)
		}
	})

	t.Run("same product accumulates quantity", func(t *testing.T) {
		service, _, cat, vendorID := newTestService()
		product := cat.addProduct(vendorID, "10.00", 5)

		if _, err := service.AddItem(ctx, customerID, product.ID, 2); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		view, err := service.AddItem(ctx, customerID, product.ID, 2)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if view.Items[0].Quantity != 4 {
			t.Errorf("expected accumulated quantity 4, got %d", view.Items[0].Quantity)
		}
	})

	t.Run("accumulated quantity above stock fails", func(t *testing.T) {
		service, _, cat, vendorID := newTestService()
		product := cat.addProduct(vendorID, "10.00", 5)

		if _, err := service.AddItem(ctx, customerID, product.ID, 3); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		_, err := service.AddItem(ctx, customerID, product.ID, 3)
		if domain.KindOf(err) != domain.KindInsufficientStock {
			t.Errorf("expected insufficient stock, got %v", err)
		}
	})

	t.Run("price snapshot survives product price change", func(t *testing.T) {
		service, _, cat, vendorID := newTestService()
		product := cat.addProduct(vendorID, "10.00", 10)

		if _, err := service.AddItem(ctx, customerID, product.ID, 1); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		cat.products[product.ID].Price = decimal.RequireFromString("99.00")

		view, err := service.AddItem(ctx, customerID, product.ID, 1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !view.Items[0].Price.Equal(decimal.RequireFromString("10.00")) {
			t.Errorf("expected first-add price snapshot 10.00, got %s", view.Items[0].Price)
		}
		if !view.TotalAmount.Equal(decimal.RequireFromString("20.00")) {
			t.Errorf("expected total 20.00 from snapshot, got %s", view.TotalAmount)
		}
	})

	t.Run("non-positive quantity fails validation", func(t *testing.T) {
		service, _, cat, vendorID := newTestService()
		product := cat.addProduct(vendorID, "10.00", 5)

		for _, qty := range []int{0, -1} {
			_, err := service.AddItem(ctx, customerID, product.ID, qty)
			if domain.KindOf(err) != domain.KindValidation {
				t.Errorf("quantity %d: expected validation error, got %v", qty, err)
			}
		}
	})

	t.Run("unknown product fails not found", func(t *testing.T) {
		service, _, _, _ := newTestService()
		_, err := service.AddItem(ctx, customerID, uuid.New(), 1)
		if domain.KindOf(err) != domain.KindNotFound {
			t.Errorf("expected not found, got %v", err)
		}
	})

	t.Run("unavailable product is rejected", func(t *testing.T) {
		service, _, cat, vendorID := newTestService()
		product := cat.addProduct(vendorID, "10.00", 5)
		cat.products[product.ID].IsAvailable = false

		_, err := service.AddItem(ctx, customerID, product.ID, 1)
		if domain.KindOf(err) != domain.KindValidation {
			t.Errorf("expected validation error, got %v", err)
		}
	})
}

func TestGet(t *testing.T) {
	ctx := context.Background()

	t.Run("no cart yields empty shape", func(t *testing.T) {
		service, _, _, _ := newTestService()

		view, err := service.Get(ctx, uuid.New())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if view.CartID != nil || view.VendorID != nil {
			t.Error("expected nil cart and vendor ids")
		}
		if len(view.Items) != 0 {
			t.Error("expected empty items")
		}
		if !view.TotalAmount.IsZero() {
			t.Errorf("expected zero total, got %s", view.TotalAmount)
		}
	})
}

func TestRemoveAndClear(t *testing.T) {
	ctx := context.Background()
	customerID := uuid.New()

	t.Run("remove is idempotent", func(t *testing.T) {
		service, _, cat, vendorID := newTestService()
		product := cat.addProduct(vendorID, "5.00", 5)

		view, err := service.AddItem(ctx, customerID, product.ID, 1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		itemID := view.Items[0].ID

		view, err = service.RemoveItem(ctx, customerID, itemID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(view.Items) != 0 {
			t.Error("expected empty cart after removal")
		}

		if _, err := service.RemoveItem(ctx, customerID, itemID); err != nil {
			t.Errorf("expected removing a missing item to be a no-op, got %v", err)
		}
	})

	t.Run("clear deletes the cart and a later add recreates it", func(t *testing.T) {
		service, store, cat, vendorID := newTestService()
		product := cat.addProduct(vendorID, "5.00", 5)

		if _, err := service.AddItem(ctx, customerID, product.ID, 1); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := service.Clear(ctx, customerID); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, ok := store.carts[customerID]; ok {
			t.Error("expected cart row gone after clear")
		}

		otherVendor := uuid.New()
		otherProduct := cat.addProduct(otherVendor, "2.00", 5)
		view, err := service.AddItem(ctx, customerID, otherProduct.ID, 1)
		if err != nil {
			t.Fatalf("expected fresh cart to accept any vendor, got %v", err)
		}
		if *view.VendorID != otherVendor {
			t.Error("expected recreated cart pinned to new vendor")
		}
	})
}
