package orders

import (
	"net/http/httptest"
	"testing"

	"github.com/vendora/backend/internal/domain"
)

func TestListParams(t *testing.T) {
	t.Run("defaults apply when no query parameters are set", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/orders", nil)
		status, limit, offset, err := listParams(r)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if status != nil {
			t.Errorf("expected nil status, got %v", *status)
		}
		if limit != defaultPageSize || offset != 0 {
			t.Errorf("expected limit=%d offset=0, got limit=%d offset=%d", defaultPageSize, limit, offset)
		}
	})

	t.Run("oversized limit is clamped", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/orders?limit=1000&offset=40", nil)
		_, limit, offset, err := listParams(r)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if limit != maxPageSize {
			t.Errorf("expected limit clamped to %d, got %d", maxPageSize, limit)
		}
		if offset != 40 {
			t.Errorf("expected offset 40, got %d", offset)
		}
	})

	t.Run("rejects non-positive limit and negative offset", func(t *testing.T) {
		for _, target := range []string{"/orders?limit=0", "/orders?limit=abc", "/orders?offset=-1"} {
			r := httptest.NewRequest("GET", target, nil)
			if _, _, _, err := listParams(r); domain.KindOf(err) != domain.KindValidation {
				t.Errorf("%s: expected validation error, got %v", target, err)
			}
		}
	})

	t.Run("rejects unknown status values", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/orders?status=SHIPPED", nil)
		if _, _, _, err := listParams(r); domain.KindOf(err) != domain.KindValidation {
			t.Errorf("expected validation error, got %v", err)
		}

		r = httptest.NewRequest("GET", "/orders?status=ACCEPTED", nil)
		status, _, _, err := listParams(r)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if status == nil || *status != domain.OrderStatusAccepted {
			t.Errorf("expected ACCEPTED status filter, got %v", status)
		}
	})
}
