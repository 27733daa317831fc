package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Address is one delivery address of a customer. Coordinates are captured
// for vendor-proximity features outside this core.
type Address struct {
	ID          uuid.UUID `json:"id"`
	CustomerID  uuid.UUID `json:"customer_id"`
	AddressLine string    `json:"address_line"`
	Society     string    `json:"society,omitempty"`
	HouseNo     string    `json:"house_no,omitempty"`
	Area        string    `json:"area,omitempty"`
	City        string    `json:"city,omitempty"`
	Pincode     string    `json:"pincode,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	IsDefault   bool      `json:"is_default"`
	CreatedAt   time.Time `json:"created_at"`
}

// Line composes the single delivery-address string stored on an order.
func (a *Address) Line() string {
	parts := make([]string, 0, 6)
	for _, p := range []string{a.HouseNo, a.Society, a.AddressLine, a.Area, a.City, a.Pincode} {
		if strings.TrimSpace(p) != "" {
			parts = append(parts, strings.TrimSpace(p))
		}
	}
	return strings.Join(parts, ", ")
}
