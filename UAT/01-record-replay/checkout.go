// Package recordreplay is a small checkout flow exercised with recorded expectations.
package recordreplay

import (
	"context"
	"fmt"
)

// Inventory reserves stock.
type Inventory interface {
	Reserve(sku string, qty int) (string, error)
	Release(reservation string)
	Stock(skus ...string) map[string]int
}

// Payments charges customers.
type Payments interface {
	Charge(ctx context.Context, customer string, cents int) error
}

// Checkout buys items, undoing the reservation when payment fails.
type Checkout struct {
	Inventory Inventory
	Payments  Payments
}

// Buy reserves qty of sku and charges customer for it.
func (c Checkout) Buy(ctx context.Context, customer, sku string, qty, cents int) error {
	reservation, err := c.Inventory.Reserve(sku, qty)
	if err != nil {
		return fmt.Errorf("reserve %s: %w", sku, err)
	}

	err = c.Payments.Charge(ctx, customer, cents*qty)
	if err != nil {
		c.Inventory.Release(reservation)

		return fmt.Errorf("charge %s: %w", customer, err)
	}

	return nil
}

// Available lists the skus with stock left.
func (c Checkout) Available(skus ...string) []string {
	stock := c.Inventory.Stock(skus...)

	available := make([]string, 0, len(skus))

	for _, sku := range skus {
		if stock[sku] > 0 {
			available = append(available, sku)
		}
	}

	return available
}
