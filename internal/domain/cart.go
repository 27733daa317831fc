package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartItem is a (cart, product) pair, unique per cart. Price is the
// snapshot taken when the product was first added; quantity updates
// never refresh it.
type CartItem struct {
	ID          uuid.UUID       `json:"id"`
	CartID      uuid.UUID       `json:"cart_id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
}

func (i CartItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Cart is the single active cart of one customer, pinned to one vendor.
// It exists only between the first add and checkout or clear.
type Cart struct {
	ID         uuid.UUID  `json:"id"`
	CustomerID uuid.UUID  `json:"customer_id"`
	VendorID   uuid.UUID  `json:"vendor_id"`
	Items      []CartItem `json:"items"`
	CreatedAt  time.Time  `json:"created_at"`
}

func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// Item returns the cart's line for productID, or nil.
func (c *Cart) Item(productID uuid.UUID) *CartItem {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return &c.Items[i]
		}
	}
	return nil
}

// CartView is the projection returned by every cart operation. A customer
// with no cart gets the empty shape (zero ids, empty items, zero total)
// rather than an error.
type CartView struct {
	CartID      *uuid.UUID      `json:"cart_id"`
	VendorID    *uuid.UUID      `json:"vendor_id"`
	VendorName  string          `json:"vendor_name,omitempty"`
	Items       []CartItem      `json:"items"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

func EmptyCartView() CartView {
	return CartView{Items: []CartItem{}, TotalAmount: decimal.Zero}
}
