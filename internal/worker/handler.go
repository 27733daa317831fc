// Package worker turns order events into customer notifications. It is
// entirely best effort: a failed email is logged and skipped, never
// retried, and never affects the order itself.
package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/vendora/backend/internal/domain"
)

// Recipients resolves the email address of a user.
type Recipients interface {
	EmailFor(ctx context.Context, userID uuid.UUID) (string, error)
}

type NotificationHandler struct {
	emailServiceURL string
	recipients      Recipients
	httpClient      *http.Client
	logger          *slog.Logger
}

func NewNotificationHandler(emailServiceURL string, recipients Recipients, client *http.Client, logger *slog.Logger) *NotificationHandler {
	return &NotificationHandler{
		emailServiceURL: emailServiceURL,
		recipients:      recipients,
		httpClient:      client,
		logger:          logger,
	}
}

func (h *NotificationHandler) HandleOrderPlaced(ctx context.Context, payload []byte) error {
	var event domain.OrderPlacedEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("unmarshal order placed event: %w", err)
	}

	h.logger.Info("processing order placed event", "order_id", event.OrderID, "customer_id", event.CustomerID)

	to, err := h.recipients.EmailFor(ctx, event.CustomerID)
	if err != nil {
		return fmt.Errorf("resolve recipient for order %s: %w", event.OrderID, err)
	}

	subject := fmt.Sprintf("Order %s placed", shortID(event.OrderID))
	body := fmt.Sprintf("Your order of %d item(s) totalling %s has been placed and is waiting for the vendor to confirm.",
		event.ItemCount, event.TotalAmount)

	return h.sendEmail(ctx, to, subject, body)
}

func (h *NotificationHandler) HandleStatusChanged(ctx context.Context, payload []byte) error {
	var event domain.OrderStatusChangedEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("unmarshal order status event: %w", err)
	}

	h.logger.Info("processing order status event", "order_id", event.OrderID, "status", event.Status)

	to, err := h.recipients.EmailFor(ctx, event.CustomerID)
	if err != nil {
		return fmt.Errorf("resolve recipient for order %s: %w", event.OrderID, err)
	}

	subject := fmt.Sprintf("Order %s %s", shortID(event.OrderID), statusPhrase(event.Status))
	body := statusBody(event)

	return h.sendEmail(ctx, to, subject, body)
}

func statusPhrase(status domain.OrderStatus) string {
	switch status {
	case domain.OrderStatusAccepted:
		return "confirmed"
	case domain.OrderStatusRejected:
		return "rejected"
	case domain.OrderStatusOutForDelivery:
		return "out for delivery"
	case domain.OrderStatusDelivered:
		return "delivered"
	case domain.OrderStatusCompleted:
		return "completed"
	default:
		return "updated"
	}
}

func statusBody(event domain.OrderStatusChangedEvent) string {
	if event.Status == domain.OrderStatusRejected && event.Reason != "" {
		return fmt.Sprintf("The vendor rejected your order: %s", event.Reason)
	}
	return fmt.Sprintf("Your order is now %s.", statusPhrase(event.Status))
}

type sendRequest struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

func (h *NotificationHandler) sendEmail(ctx context.Context, to, subject, body string) error {
	data, err := json.Marshal(sendRequest{To: to, Subject: subject, Body: body})
	if err != nil {
		return fmt.Errorf("marshal send request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.emailServiceURL+"/send", bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create send request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	_ = resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("email service returned status %d", resp.StatusCode)
	}

	h.logger.Info("notification sent", "to", to, "subject", subject)
	return nil
}

func shortID(id uuid.UUID) string {
	return id.String()[:8]
}
