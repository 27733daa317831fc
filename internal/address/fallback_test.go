package address

import (
	"testing"

	"github.com/google/uuid"

	"github.com/vendora/backend/internal/domain"
)

func TestFallback(t *testing.T) {
	defaultAddr := domain.Address{ID: uuid.New(), City: "Pune", IsDefault: true}
	other := domain.Address{ID: uuid.New(), City: "Mumbai"}

	t.Run("prefers the default address regardless of position", func(t *testing.T) {
		got := Fallback([]domain.Address{other, defaultAddr})
		if got == nil || got.ID != defaultAddr.ID {
			t.Errorf("expected the default address, got %+v", got)
		}
	})

	t.Run("falls back to the first address when none is default", func(t *testing.T) {
		got := Fallback([]domain.Address{other, {ID: uuid.New()}})
		if got == nil || got.ID != other.ID {
			t.Errorf("expected the first address, got %+v", got)
		}
	})

	t.Run("nil for a customer with no addresses", func(t *testing.T) {
		if got := Fallback(nil); got != nil {
			t.Errorf("expected nil, got %+v", got)
		}
	})
}
