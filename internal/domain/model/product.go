package model

import (
	"fmt"
	"strings"

	"receipt-desk-bot/internal/domain"
)

// Product is an immutable catalog entry. Price is in whole currency units.
type Product struct {
	ID          string
	Name        string
	Price       int64
	Description string
}

// Catalog is the read-only product list plus the operator copy shown in the
// payment, FAQ and offer screens. Build it with NewCatalog; it is never
// mutated afterwards.
type Catalog struct {
	Currency     string
	PaymentInfo  string
	FaqText      string
	SpecialOffer string

	order []string
	byID  map[string]Product
}

// NewCatalog validates ids and prices and keeps the given order.
func NewCatalog(currency string, products []Product) (*Catalog, error) {
	c := &Catalog{
		Currency: strings.TrimSpace(currency),
		order:    make([]string, 0, len(products)),
		byID:     make(map[string]Product, len(products)),
	}
	for _, p := range products {
		p.ID = strings.TrimSpace(p.ID)
		if p.ID == "" {
			return nil, fmt.Errorf("product without id: %w", domain.ErrInvalidArgument)
		}
		if p.Price <= 0 {
			return nil, fmt.Errorf("product %q price %d: %w", p.ID, p.Price, domain.ErrInvalidArgument)
		}
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("product %q: %w", p.ID, domain.ErrDuplicateID)
		}
		if p.Name == "" {
			p.Name = p.ID
		}
		c.byID[p.ID] = p
		c.order = append(c.order, p.ID)
	}
	return c, nil
}

// Lookup returns the product for id.
func (c *Catalog) Lookup(id string) (Product, bool) {
	if c == nil {
		return Product{}, false
	}
	p, ok := c.byID[strings.TrimSpace(id)]
	return p, ok
}

// Products returns the catalog in display order.
func (c *Catalog) Products() []Product {
	if c == nil {
		return nil
	}
	out := make([]Product, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.order)
}

// FormatPrice renders an amount with the catalog currency, e.g. "$450 MXN".
func (c *Catalog) FormatPrice(amount int64) string {
	if c == nil || c.Currency == "" {
		return fmt.Sprintf("$%d", amount)
	}
	return fmt.Sprintf("$%d %s", amount, c.Currency)
}
