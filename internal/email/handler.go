// Package email is a stand-in delivery endpoint. It logs the message
// and simulates provider latency instead of talking to a real ESP.
package email

import (
	"encoding/json"
	"log/slog"
	"math/rand"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const (
	minLatency = 50 * time.Millisecond
	maxLatency = 200 * time.Millisecond
)

type Handler struct {
	logger *slog.Logger
}

func NewHandler(logger *slog.Logger) *Handler {
	return &Handler{logger: logger}
}

type sendRequest struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type sendResponse struct {
	MessageID string `json:"messageId"`
	Status    string `json:"status"`
}

func (h *Handler) HandleSend(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.To == "" {
		h.writeError(w, http.StatusBadRequest, "recipient is required")
		return
	}

	jitter := time.Duration(rand.Int63n(int64(maxLatency - minLatency)))
	time.Sleep(minLatency + jitter)

	id := uuid.New().String()
	h.logger.Info("email sent",
		"messageId", id,
		"to", req.To,
		"subject", req.Subject,
		"bodyBytes", len(req.Body),
	)

	h.writeJSON(w, http.StatusOK, sendResponse{MessageID: id, Status: "sent"})
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
