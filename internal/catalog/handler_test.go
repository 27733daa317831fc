package catalog

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vendora/backend/internal/domain"
	"github.com/vendora/backend/internal/identity"
)

type memCatalogStore struct {
	products map[uuid.UUID]*domain.Product
	vendors  map[uuid.UUID]*domain.Vendor
}

func newMemCatalogStore() *memCatalogStore {
	return &memCatalogStore{
		products: map[uuid.UUID]*domain.Product{},
		vendors:  map[uuid.UUID]*domain.Vendor{},
	}
}

func (m *memCatalogStore) GetProduct(_ context.Context, id uuid.UUID) (*domain.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, nil
	}
	clone := *p
	return &clone, nil
}

func (m *memCatalogStore) CreateProduct(_ context.Context, product *domain.Product) error {
	product.ID = uuid.New()
	clone := *product
	m.products[product.ID] = &clone
	return nil
}

func (m *memCatalogStore) UpdateProduct(_ context.Context, product *domain.Product) error {
	clone := *product
	m.products[product.ID] = &clone
	return nil
}

func (m *memCatalogStore) ListAvailableProducts(context.Context, uuid.UUID) ([]domain.Product, error) {
	return nil, nil
}

func (m *memCatalogStore) ListVendorProducts(context.Context, uuid.UUID) ([]domain.Product, error) {
	return nil, nil
}

func (m *memCatalogStore) CreateCategory(context.Context, *domain.Category) error {
	return nil
}

func (m *memCatalogStore) ListCategories(context.Context, uuid.UUID) ([]domain.Category, error) {
	return nil, nil
}

func (m *memCatalogStore) VendorByUser(_ context.Context, userID uuid.UUID) (*domain.Vendor, error) {
	for _, v := range m.vendors {
		if v.UserID == userID {
			clone := *v
			return &clone, nil
		}
	}
	return nil, nil
}

func TestHandleUpdateProduct(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	setup := func() (*Handler, *memCatalogStore, uuid.UUID, *domain.Product) {
		store := newMemCatalogStore()
		vendorUserID := uuid.New()
		vendor := &domain.Vendor{ID: uuid.New(), UserID: vendorUserID, Status: domain.VendorStatusApproved, IsActive: true}
		store.vendors[vendor.ID] = vendor

		product := &domain.Product{
			ID:          uuid.New(),
			VendorID:    vendor.ID,
			Name:        "Basmati Rice 5kg",
			Price:       decimal.RequireFromString("12.50"),
			Stock:       40,
			IsAvailable: true,
		}
		store.products[product.ID] = product

		return NewHandler(store, logger), store, vendorUserID, product
	}

	patch := func(t *testing.T, h *Handler, userID, productID uuid.UUID, body string) *httptest.ResponseRecorder {
		t.Helper()
		mux := http.NewServeMux()
		mux.HandleFunc("PATCH /vendor/products/{id}", h.HandleUpdateProduct)

		r := httptest.NewRequest("PATCH", "/vendor/products/"+productID.String(), strings.NewReader(body))
		r = r.WithContext(identity.WithActor(r.Context(), identity.Actor{UserID: userID, Roles: []identity.Role{identity.RoleVendor}}))
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, r)
		return w
	}

	t.Run("rename leaves stock untouched", func(t *testing.T) {
		h, store, userID, product := setup()

		w := patch(t, h, userID, product.ID, `{"name": "Basmati Rice 10kg"}`)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
		}

		got := store.products[product.ID]
		if got.Name != "Basmati Rice 10kg" {
			t.Errorf("expected name updated, got %q", got.Name)
		}
		if got.Stock != 40 {
			t.Errorf("expected stock untouched at 40, got %d", got.Stock)
		}
	})

	t.Run("explicit stock is applied, including zero", func(t *testing.T) {
		h, store, userID, product := setup()

		w := patch(t, h, userID, product.ID, `{"stock": 0}`)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
		}
		if got := store.products[product.ID]; got.Stock != 0 {
			t.Errorf("expected stock 0, got %d", got.Stock)
		}
	})

	t.Run("negative stock is rejected", func(t *testing.T) {
		h, store, userID, product := setup()

		w := patch(t, h, userID, product.ID, `{"stock": -3}`)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
		if got := store.products[product.ID]; got.Stock != 40 {
			t.Errorf("expected stock untouched at 40, got %d", got.Stock)
		}
	})

	t.Run("another vendor's product reads as not found", func(t *testing.T) {
		h, store, _, product := setup()

		otherUserID := uuid.New()
		other := &domain.Vendor{ID: uuid.New(), UserID: otherUserID, Status: domain.VendorStatusApproved, IsActive: true}
		store.vendors[other.ID] = other

		w := patch(t, h, otherUserID, product.ID, `{"name": "hijacked"}`)
		if w.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", w.Code)
		}
	})
}

func TestHandleCreateProduct(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	post := func(t *testing.T, h *Handler, userID uuid.UUID, body string) *httptest.ResponseRecorder {
		t.Helper()
		r := httptest.NewRequest("POST", "/vendor/products", strings.NewReader(body))
		r = r.WithContext(identity.WithActor(r.Context(), identity.Actor{UserID: userID, Roles: []identity.Role{identity.RoleVendor}}))
		w := httptest.NewRecorder()
		h.HandleCreateProduct(w, r)
		return w
	}

	store := newMemCatalogStore()
	vendorUserID := uuid.New()
	vendor := &domain.Vendor{ID: uuid.New(), UserID: vendorUserID, Status: domain.VendorStatusApproved, IsActive: true}
	store.vendors[vendor.ID] = vendor
	h := NewHandler(store, logger)

	t.Run("omitted stock defaults to zero", func(t *testing.T) {
		w := post(t, h, vendorUserID, `{"name": "Ginger 250g", "price": "1.20"}`)
		if w.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
		}
		for _, p := range store.products {
			if p.Name == "Ginger 250g" && p.Stock != 0 {
				t.Errorf("expected stock 0, got %d", p.Stock)
			}
		}
	})

	t.Run("negative stock is rejected", func(t *testing.T) {
		w := post(t, h, vendorUserID, `{"name": "Chili 100g", "price": "0.80", "stock": -1}`)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})
}
