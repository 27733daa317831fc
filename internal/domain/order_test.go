package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to OrderStatus }{
		{OrderStatusPlaced, OrderStatusAccepted},
		{OrderStatusPlaced, OrderStatusRejected},
		{OrderStatusAccepted, OrderStatusOutForDelivery},
		{OrderStatusOutForDelivery, OrderStatusDelivered},
		{OrderStatusDelivered, OrderStatusCompleted},
	}
	for _, tc := range allowed {
		if !CanTransition(tc.from, tc.to) {
			t.Errorf("expected %s -> %s to be allowed", tc.from, tc.to)
		}
	}

	t.Run("no backward or skip moves", func(t *testing.T) {
		denied := []struct{ from, to OrderStatus }{
			{OrderStatusOutForDelivery, OrderStatusAccepted},
			{OrderStatusAccepted, OrderStatusPlaced},
			{OrderStatusPlaced, OrderStatusDelivered},
			{OrderStatusPlaced, OrderStatusOutForDelivery},
			{OrderStatusAccepted, OrderStatusRejected},
			{OrderStatusDelivered, OrderStatusRejected},
		}
		for _, tc := range denied {
			if CanTransition(tc.from, tc.to) {
				t.Errorf("expected %s -> %s to be denied", tc.from, tc.to)
			}
		}
	})

	t.Run("terminal states have no exits", func(t *testing.T) {
		for _, from := range []OrderStatus{OrderStatusRejected, OrderStatusCompleted} {
			for _, to := range []OrderStatus{OrderStatusPlaced, OrderStatusAccepted, OrderStatusRejected,
				OrderStatusOutForDelivery, OrderStatusDelivered, OrderStatusCompleted} {
				if CanTransition(from, to) {
					t.Errorf("expected terminal %s to allow no transition, got %s", from, to)
				}
			}
		}
	})
}

func TestOrderStatusTerminal(t *testing.T) {
	if !OrderStatusRejected.Terminal() || !OrderStatusCompleted.Terminal() {
		t.Error("REJECTED and COMPLETED must be terminal")
	}
	if OrderStatusPlaced.Terminal() || OrderStatusDelivered.Terminal() {
		t.Error("PLACED and DELIVERED must not be terminal")
	}
}

func TestOrderTimeline(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	at := func(d time.Duration) *time.Time {
		ts := base.Add(d)
		return &ts
	}

	t.Run("full happy path", func(t *testing.T) {
		order := &Order{
			Status:           OrderStatusCompleted,
			CreatedAt:        base,
			AcceptedAt:       at(time.Minute),
			OutForDeliveryAt: at(2 * time.Minute),
			DeliveredAt:      at(3 * time.Minute),
			CompletedAt:      at(4 * time.Minute),
		}

		timeline := order.Timeline()
		want := []OrderStatus{OrderStatusPlaced, OrderStatusAccepted, OrderStatusOutForDelivery,
			OrderStatusDelivered, OrderStatusCompleted}
		if len(timeline) != len(want) {
			t.Fatalf("expected %d events, got %d", len(want), len(timeline))
		}
		for i, ev := range timeline {
			if ev.Status != want[i] {
				t.Errorf("event %d: expected %s, got %s", i, want[i], ev.Status)
			}
		}
		for i := 1; i < len(timeline); i++ {
			if timeline[i].Timestamp.Before(timeline[i-1].Timestamp) {
				t.Errorf("timeline out of chronological order at %d", i)
			}
		}
	})

	t.Run("rejected branch", func(t *testing.T) {
		order := &Order{
			Status:     OrderStatusRejected,
			CreatedAt:  base,
			RejectedAt: at(time.Minute),
		}

		timeline := order.Timeline()
		if len(timeline) != 2 {
			t.Fatalf("expected 2 events, got %d", len(timeline))
		}
		if timeline[1].Status != OrderStatusRejected {
			t.Errorf("expected terminal REJECTED event, got %s", timeline[1].Status)
		}
	})

	t.Run("rejection timestamp ignored on non-rejected order", func(t *testing.T) {
		order := &Order{
			Status:     OrderStatusPlaced,
			CreatedAt:  base,
			RejectedAt: at(time.Minute),
		}

		if len(order.Timeline()) != 1 {
			t.Error("rejected event must only appear on terminally rejected orders")
		}
	})
}

func TestCartTotals(t *testing.T) {
	price := decimal.RequireFromString("10.00")
	productID := uuid.New()
	cart := &Cart{
		Items: []CartItem{
			{ProductID: productID, Quantity: 2, Price: price},
			{ProductID: uuid.New(), Quantity: 1, Price: decimal.RequireFromString("4.50")},
		},
	}

	if got := cart.Total(); !got.Equal(decimal.RequireFromString("24.50")) {
		t.Errorf("expected total 24.50, got %s", got)
	}

	if item := cart.Item(productID); item == nil || item.Quantity != 2 {
		t.Error("expected to find item with quantity 2")
	}
	if cart.Item(uuid.New()) != nil {
		t.Error("expected nil for unknown product")
	}
}

func TestAddressLine(t *testing.T) {
	addr := &Address{
		HouseNo:     "B-12",
		Society:     "Green Meadows",
		AddressLine: "Main Street",
		City:        "Pune",
		Pincode:     "411001",
	}
	want := "B-12, Green Meadows, Main Street, Pune, 411001"
	if got := addr.Line(); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
