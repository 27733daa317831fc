package orders

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/vendora/backend/internal/domain"
	"github.com/vendora/backend/internal/identity"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
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

func (h *Handler) HandlePlace(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity.ActorFromContext(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req PlaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := h.service.Place(r.Context(), actor.UserID, req)
	if err != nil {
		h.writeDomainError(w, err, "failed to place order", "customer_id", actor.UserID)
		return
	}

	h.writeJSON(w, http.StatusCreated, order)
}

func (h *Handler) HandleListCustomerOrders(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity.ActorFromContext(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	status, limit, offset, err := listParams(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	summaries, err := h.service.ListCustomerOrders(r.Context(), actor.UserID, status, limit, offset)
	if err != nil {
		h.writeDomainError(w, err, "failed to list orders", "customer_id", actor.UserID)
		return
	}

	h.writeJSON(w, http.StatusOK, summaries)
}

func (h *Handler) HandleListVendorOrders(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity.ActorFromContext(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	status, limit, offset, err := listParams(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	summaries, err := h.service.ListVendorOrders(r.Context(), actor.UserID, status, limit, offset)
	if err != nil {
		h.writeDomainError(w, err, "failed to list vendor orders", "user_id", actor.UserID)
		return
	}

	h.writeJSON(w, http.StatusOK, summaries)
}

func (h *Handler) HandleDetails(w http.ResponseWriter, r *http.Request) {
	actor, orderID, ok := h.actorAndOrderID(w, r)
	if !ok {
		return
	}

	order, err := h.service.Details(r.Context(), actor.UserID, orderID)
	if err != nil {
		h.writeDomainError(w, err, "failed to get order", "order_id", orderID)
		return
	}

	h.writeJSON(w, http.StatusOK, order)
}

type trackingResponse struct {
	OrderID  uuid.UUID              `json:"order_id"`
	Status   domain.OrderStatus     `json:"status"`
	Timeline []domain.TimelineEvent `json:"timeline"`
}

func (h *Handler) HandleTrack(w http.ResponseWriter, r *http.Request) {
	actor, orderID, ok := h.actorAndOrderID(w, r)
	if !ok {
		return
	}

	order, err := h.service.Details(r.Context(), actor.UserID, orderID)
	if err != nil {
		h.writeDomainError(w, err, "failed to track order", "order_id", orderID)
		return
	}

	h.writeJSON(w, http.StatusOK, trackingResponse{
		OrderID:  order.ID,
		Status:   order.Status,
		Timeline: order.Timeline(),
	})
}

func (h *Handler) HandleAccept(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "order accepted", h.service.Accept)
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) HandleReject(w http.ResponseWriter, r *http.Request) {
	actor, orderID, ok := h.actorAndOrderID(w, r)
	if !ok {
		return
	}

	var req rejectRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	order, err := h.service.Reject(r.Context(), actor.UserID, orderID, req.Reason)
	if err != nil {
		h.writeDomainError(w, err, "failed to reject order", "order_id", orderID)
		return
	}

	h.writeJSON(w, http.StatusOK, statusResponse{Message: "order rejected", Order: order})
}

func (h *Handler) HandleOutForDelivery(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "order out for delivery", h.service.MarkOutForDelivery)
}

func (h *Handler) HandleDelivered(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "order delivered", h.service.MarkDelivered)
}

func (h *Handler) HandleComplete(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "order completed", h.service.Complete)
}

type statusResponse struct {
	Message string        `json:"message"`
	Order   *domain.Order `json:"order"`
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, message string, fn func(ctx context.Context, userID, orderID uuid.UUID) (*domain.Order, error)) {
	actor, orderID, ok := h.actorAndOrderID(w, r)
	if !ok {
		return
	}

	order, err := fn(r.Context(), actor.UserID, orderID)
	if err != nil {
		h.writeDomainError(w, err, "failed to transition order", "order_id", orderID)
		return
	}

	h.writeJSON(w, http.StatusOK, statusResponse{Message: message, Order: order})
}

func (h *Handler) actorAndOrderID(w http.ResponseWriter, r *http.Request) (identity.Actor, uuid.UUID, bool) {
	actor, ok := identity.ActorFromContext(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "unauthorized")
		return identity.Actor{}, uuid.Nil, false
	}

	orderID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid order id")
		return identity.Actor{}, uuid.Nil, false
	}

	return actor, orderID, true
}

func listParams(r *http.Request) (*domain.OrderStatus, int, int, error) {
	var status *domain.OrderStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		s := domain.OrderStatus(raw)
		if !s.Valid() {
			return nil, 0, 0, domain.Validation("unknown status: %s", raw)
		}
		status = &s
	}

	limit := defaultPageSize
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return nil, 0, 0, domain.Validation("limit must be a positive integer")
		}
		if n > maxPageSize {
			n = maxPageSize
		}
		limit = n
	}

	offset := 0
	if raw := r.URL.Query().Get("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return nil, 0, 0, domain.Validation("offset must be a non-negative integer")
		}
		offset = n
	}

	return status, limit, offset, nil
}

func (h *Handler) writeDomainError(w http.ResponseWriter, err error, logMsg string, logArgs ...any) {
	switch domain.KindOf(err) {
	case domain.KindNotFound:
		h.writeError(w, http.StatusNotFound, err.Error())
	case domain.KindAccessDenied:
		h.writeError(w, http.StatusForbidden, err.Error())
	case domain.KindValidation:
		h.writeError(w, http.StatusBadRequest, err.Error())
	case domain.KindInvalidState, domain.KindConflict, domain.KindInsufficientStock:
		h.writeError(w, http.StatusConflict, err.Error())
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
