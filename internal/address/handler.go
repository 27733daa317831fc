package address

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/vendora/backend/internal/domain"
	"github.com/vendora/backend/internal/identity"
)

type Handler struct {
	repo   *Repository
	logger *slog.Logger
}

func NewHandler(repo *Repository, logger *slog.Logger) *Handler {
	return &Handler{
		repo:   repo,
		logger: logger,
	}
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity.ActorFromContext(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	addresses, err := h.repo.ListByCustomer(r.Context(), actor.UserID)
	if err != nil {
		h.logger.Error("failed to list addresses", "error", err, "customer_id", actor.UserID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, addresses)
}

type createRequest struct {
	AddressLine string  `json:"address_line"`
	Society     string  `json:"society"`
	HouseNo     string  `json:"house_no"`
	Area        string  `json:"area"`
	City        string  `json:"city"`
	Pincode     string  `json:"pincode"`
	Phone       string  `json:"phone"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	IsDefault   bool    `json:"is_default"`
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity.ActorFromContext(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.AddressLine == "" {
		h.writeError(w, http.StatusBadRequest, "address_line is required")
		return
	}

	a := &domain.Address{
		CustomerID:  actor.UserID,
		AddressLine: req.AddressLine,
		Society:     req.Society,
		HouseNo:     req.HouseNo,
		Area:        req.Area,
		City:        req.City,
		Pincode:     req.Pincode,
		Phone:       req.Phone,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		IsDefault:   req.IsDefault,
	}

	if err := h.repo.Create(r.Context(), a); err != nil {
		h.logger.Error("failed to create address", "error", err, "customer_id", actor.UserID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("address created", "address_id", a.ID, "customer_id", actor.UserID)
	h.writeJSON(w, http.StatusCreated, a)
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
