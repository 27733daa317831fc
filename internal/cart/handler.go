package cart

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/vendora/backend/internal/domain"
	"github.com/vendora/backend/internal/identity"
)

type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

type addItemRequest struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

type cartResponse struct {
	Message string          `json:"message"`
	Cart    domain.CartView `json:"cart"`
}

func (h *Handler) HandleAddItem(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity.ActorFromContext(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ProductID == uuid.Nil {
		h.writeError(w, http.StatusBadRequest, "product_id is required")
		return
	}

	view, err := h.service.AddItem(r.Context(), actor.UserID, req.ProductID, req.Quantity)
	if err != nil {
		h.writeDomainError(w, err, "failed to add cart item", "customer_id", actor.UserID, "product_id", req.ProductID)
		return
	}

	h.logger.Info("cart item added", "customer_id", actor.UserID, "product_id", req.ProductID, "quantity", req.Quantity)
	h.writeJSON(w, http.StatusOK, cartResponse{Message: "Item added to cart", Cart: view})
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity.ActorFromContext(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	view, err := h.service.Get(r.Context(), actor.UserID)
	if err != nil {
		h.logger.Error("failed to get cart", "error", err, "customer_id", actor.UserID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, view)
}

func (h *Handler) HandleRemoveItem(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity.ActorFromContext(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	itemID, err := uuid.Parse(r.PathValue("itemId"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	view, err := h.service.RemoveItem(r.Context(), actor.UserID, itemID)
	if err != nil {
		h.writeDomainError(w, err, "failed to remove cart item", "customer_id", actor.UserID, "item_id", itemID)
		return
	}

	h.logger.Info("cart item removed", "customer_id", actor.UserID, "item_id", itemID)
	h.writeJSON(w, http.StatusOK, cartResponse{Message: "Item removed from cart", Cart: view})
}

func (h *Handler) HandleClear(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity.ActorFromContext(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.service.Clear(r.Context(), actor.UserID); err != nil {
		h.logger.Error("failed to clear cart", "error", err, "customer_id", actor.UserID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("cart cleared", "customer_id", actor.UserID)
	h.writeJSON(w, http.StatusOK, cartResponse{Message: "Cart cleared", Cart: domain.EmptyCartView()})
}

func (h *Handler) writeDomainError(w http.ResponseWriter, err error, logMsg string, logArgs ...any) {
	switch domain.KindOf(err) {
	case domain.KindNotFound:
		h.writeError(w, http.StatusNotFound, err.Error())
	case domain.KindConflict, domain.KindInsufficientStock:
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
