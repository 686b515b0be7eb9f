// Package warehouse holds the commerce demo entity graph. It complements
// store with the shapes a projection engine meets in the wild: value-struct
// references, denormalized address snapshots and pointer timestamps.
package warehouse

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Address is a shipping or billing address. Orders embed a value snapshot
// of it, so address edits never rewrite order history.
type Address struct {
	Street     string `json:"street" db:"street"`
	City       string `json:"city" db:"city"`
	PostalCode string `json:"postal_code" db:"postal_code"`
	Country    string `json:"country" db:"country"`
}

// Customer is an account that places orders.
type Customer struct {
	ID           uint64    `json:"id" db:"id"`
	FirstName    string    `json:"first_name" db:"first_name"`
	LastName     string    `json:"last_name" db:"last_name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Addresses    []Address `json:"addresses,omitempty"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Product is a sellable item.
type Product struct {
	ID           uint64 `json:"id" db:"id"`
	SKU          string `json:"sku" db:"sku"`
	Name         string `json:"name" db:"name"`
	Description  string `json:"description" db:"description"`
	PriceCents   int64  `json:"price_cents" db:"price_cents"`
	Stock        int    `json:"stock" db:"stock"`
	Discontinued bool   `json:"discontinued" db:"discontinued"`
}

// Order is one placed purchase. Customer is a value reference and
// ShippingAddress a denormalized snapshot.
type Order struct {
	ID              uint64      `json:"id" db:"id"`
	Number          string      `json:"number" db:"number"`
	Status          string      `json:"status" db:"status"`
	TotalCents      int64       `json:"total_cents" db:"total_cents"`
	Customer        Customer    `json:"customer"`
	Items           []OrderItem `json:"items"`
	ShippingAddress Address     `json:"shipping_address"`
	PlacedAt        *time.Time  `json:"placed_at,omitempty" db:"placed_at"`
}

// OrderItem is a line item, priced at purchase time.
type OrderItem struct {
	ID        uint64  `json:"id" db:"id"`
	Quantity  int     `json:"quantity" db:"quantity"`
	UnitCents int64   `json:"unit_cents" db:"unit_cents"`
	Product   Product `json:"product"`
}

// PriceConverter maps minor-unit cents to a decimal string.
// 1999 <-> "19.99".
type PriceConverter struct{}

// ToView renders cents as a decimal string.
func (PriceConverter) ToView(raw any) (any, error) {
	cents, ok := raw.(int64)
	if !ok {
		return nil, fmt.Errorf("price must be int64 cents, got %T", raw)
	}

	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}

	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100), nil
}

// ToEntity parses a decimal string back to cents.
func (PriceConverter) ToEntity(view any) (any, error) {
	s, ok := view.(string)
	if !ok {
		return nil, fmt.Errorf("price must be a decimal string, got %T", view)
	}

	neg := strings.HasPrefix(s, "-")

	whole, frac, found := strings.Cut(strings.TrimPrefix(s, "-"), ".")
	if !found {
		frac = "00"
	}

	if len(frac) != 2 {
		return nil, fmt.Errorf("price %q must have two decimal places", s)
	}

	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid price %q: %w", s, err)
	}

	rem, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid price %q: %w", s, err)
	}

	cents := units*100 + rem
	if neg {
		cents = -cents
	}

	return cents, nil
}

// ViewType pins the view-side type so resolved plans expose string, not any.
func (PriceConverter) ViewType() reflect.Type {
	return reflect.TypeFor[string]()
}
