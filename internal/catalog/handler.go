package catalog

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vendora/backend/internal/domain"
	"github.com/vendora/backend/internal/identity"
)

// Store is the subset of Repository the HTTP layer needs.
type Store interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	CreateProduct(ctx context.Context, product *domain.Product) error
	UpdateProduct(ctx context.Context, product *domain.Product) error
	ListAvailableProducts(ctx context.Context, vendorID uuid.UUID) ([]domain.Product, error)
	ListVendorProducts(ctx context.Context, vendorID uuid.UUID) ([]domain.Product, error)
	CreateCategory(ctx context.Context, category *domain.Category) error
	ListCategories(ctx context.Context, vendorID uuid.UUID) ([]domain.Category, error)
	VendorByUser(ctx context.Context, userID uuid.UUID) (*domain.Vendor, error)
}

type Handler struct {
	repo   Store
	logger *slog.Logger
}

func NewHandler(repo Store, logger *slog.Logger) *Handler {
	return &Handler{
		repo:   repo,
		logger: logger,
	}
}

func (h *Handler) HandleListProducts(w http.ResponseWriter, r *http.Request) {
	vendorID, err := uuid.Parse(r.URL.Query().Get("vendor_id"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "vendor_id query parameter is required")
		return
	}

	products, err := h.repo.ListAvailableProducts(r.Context(), vendorID)
	if err != nil {
		h.logger.Error("failed to list products", "error", err, "vendor_id", vendorID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, products)
}

func (h *Handler) HandleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	product, err := h.repo.GetProduct(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get product", "error", err, "product_id", id)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if product == nil || !product.IsAvailable {
		h.writeError(w, http.StatusNotFound, "product not found")
		return
	}

	h.writeJSON(w, http.StatusOK, product)
}

type productRequest struct {
	CategoryID  uuid.UUID       `json:"category_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       *int            `json:"stock"`
	IsAvailable *bool           `json:"is_available"`
}

func (h *Handler) HandleCreateProduct(w http.ResponseWriter, r *http.Request) {
	vendor, ok := h.actingVendor(w, r)
	if !ok {
		return
	}

	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	stock := 0
	if req.Stock != nil {
		stock = *req.Stock
	}
	if req.Name == "" || req.Price.IsNegative() || stock < 0 {
		h.writeError(w, http.StatusBadRequest, "name, non-negative price and stock are required")
		return
	}

	available := true
	if req.IsAvailable != nil {
		available = *req.IsAvailable
	}

	product := &domain.Product{
		VendorID:    vendor.ID,
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       stock,
		IsAvailable: available,
	}

	if err := h.repo.CreateProduct(r.Context(), product); err != nil {
		h.logger.Error("failed to create product", "error", err, "vendor_id", vendor.ID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("product created", "product_id", product.ID, "vendor_id", vendor.ID)
	h.writeJSON(w, http.StatusCreated, product)
}

func (h *Handler) HandleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	vendor, ok := h.actingVendor(w, r)
	if !ok {
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	product, err := h.repo.GetProduct(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get product", "error", err, "product_id", id)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if product == nil || product.VendorID != vendor.ID {
		h.writeError(w, http.StatusNotFound, "product not found")
		return
	}

	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name != "" {
		product.Name = req.Name
	}
	if req.Description != "" {
		product.Description = req.Description
	}
	if req.Price.IsPositive() {
		product.Price = req.Price
	}
	if req.Stock != nil {
		if *req.Stock < 0 {
			h.writeError(w, http.StatusBadRequest, "stock must be non-negative")
			return
		}
		product.Stock = *req.Stock
	}
	if req.IsAvailable != nil {
		product.IsAvailable = *req.IsAvailable
	}

	if err := h.repo.UpdateProduct(r.Context(), product); err != nil {
		h.writeDomainError(w, err, "failed to update product", "product_id", id)
		return
	}

	h.logger.Info("product updated", "product_id", product.ID, "vendor_id", vendor.ID)
	h.writeJSON(w, http.StatusOK, product)
}

func (h *Handler) HandleListVendorProducts(w http.ResponseWriter, r *http.Request) {
	vendor, ok := h.actingVendor(w, r)
	if !ok {
		return
	}

	products, err := h.repo.ListVendorProducts(r.Context(), vendor.ID)
	if err != nil {
		h.logger.Error("failed to list vendor products", "error", err, "vendor_id", vendor.ID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, products)
}

type categoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *Handler) HandleCreateCategory(w http.ResponseWriter, r *http.Request) {
	vendor, ok := h.actingVendor(w, r)
	if !ok {
		return
	}

	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		h.writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	category := &domain.Category{
		VendorID:    vendor.ID,
		Name:        req.Name,
		Description: req.Description,
		IsActive:    true,
	}

	if err := h.repo.CreateCategory(r.Context(), category); err != nil {
		h.writeDomainError(w, err, "failed to create category", "vendor_id", vendor.ID)
		return
	}

	h.logger.Info("category created", "category_id", category.ID, "vendor_id", vendor.ID)
	h.writeJSON(w, http.StatusCreated, category)
}

func (h *Handler) HandleListCategories(w http.ResponseWriter, r *http.Request) {
	vendor, ok := h.actingVendor(w, r)
	if !ok {
		return
	}

	categories, err := h.repo.ListCategories(r.Context(), vendor.ID)
	if err != nil {
		h.logger.Error("failed to list categories", "error", err, "vendor_id", vendor.ID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, categories)
}

// actingVendor resolves the vendor record owned by the authenticated user,
// writing the error response itself when resolution fails.
func (h *Handler) actingVendor(w http.ResponseWriter, r *http.Request) (*domain.Vendor, bool) {
	actor, ok := identity.ActorFromContext(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "unauthorized")
		return nil, false
	}

	vendor, err := h.repo.VendorByUser(r.Context(), actor.UserID)
	if err != nil {
		h.logger.Error("failed to resolve vendor", "error", err, "user_id", actor.UserID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return nil, false
	}
	if vendor == nil {
		h.writeError(w, http.StatusNotFound, "vendor not found")
		return nil, false
	}

	return vendor, true
}

func (h *Handler) writeDomainError(w http.ResponseWriter, err error, logMsg string, logArgs ...any) {
	switch domain.KindOf(err) {
	case domain.KindNotFound:
		h.writeError(w, http.StatusNotFound, err.Error())
	case domain.KindConflict:
		h.writeError(w, http.StatusConflict, err.Error())
	case domain.KindValidation:
		h.writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error(logMsg, append([]any{"error", err}, logArgs...)...)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
