// Package market provides the static market catalog the console trades against.
package market

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	apperrors "trading-console/internal/errors"
	"trading-console/internal/models"
)

// Listing is an unparsed catalog entry, as read from configuration.
type Listing struct {
	Symbol string
	Name   string
	Price  string
}

// DefaultListings returns the instruments the console ships with.
func DefaultListings() []Listing {
	return []Listing{
		{Symbol: "TCS", Name: "Tata Consultancy Services", Price: "3650.00"},
		{Symbol: "INFY", Name: "Infosys Ltd", Price: "1490.00"},
		{Symbol: "RELI", Name: "Reliance Industries", Price: "2825.00"},
		{Symbol: "HDFC", Name: "HDFC Bank", Price: "1695.00"},
		{Symbol: "ITC", Name: "ITC Limited", Price: "450.00"},
	}
}

// Catalog is an immutable symbol -> instrument lookup.
type Catalog struct {
	bySymbol map[string]models.Instrument
	ordered  []models.Instrument
}

// NewCatalog builds a catalog from instruments, keeping their order for display.
func NewCatalog(instruments []models.Instrument) (*Catalog, error) {
	c := &Catalog{
		bySymbol: make(map[string]models.Instrument, len(instruments)),
		ordered:  make([]models.Instrument, 0, len(instruments)),
	}
	for _, inst := range instruments {
		inst.Symbol = NormalizeSymbol(inst.Symbol)
		if inst.Symbol == "" {
			return nil, apperrors.NewValidationError("symbol", inst.Name, "instrument symbol cannot be empty")
		}
		if inst.Price.IsNegative() {
			return nil, apperrors.NewValidationError("price", inst.Price, fmt.Sprintf("negative price for %s", inst.Symbol))
		}
		if _, dup := c.bySymbol[inst.Symbol]; dup {
			return nil, apperrors.NewValidationError("symbol", inst.Symbol, "duplicate instrument")
		}
		c.bySymbol[inst.Symbol] = inst
		c.ordered = append(c.ordered, inst)
	}
	return c, nil
}

// NewCatalogFromListings parses listings and builds a catalog.
func NewCatalogFromListings(listings []Listing) (*Catalog, error) {
	instruments := make([]models.Instrument, 0, len(listings))
	for _, l := range listings {
		price, err := decimal.NewFromString(strings.TrimSpace(l.Price))
		if err != nil {
			return nil, &apperrors.ValidationError{
				Field:   "price",
				Value:   l.Price,
				Message: fmt.Sprintf("cannot parse price for %s", l.Symbol),
				Err:     apperrors.ErrInvalidPrice,
			}
		}
		instruments = append(instruments, models.Instrument{
			Symbol: l.Symbol,
			Name:   l.Name,
			Price:  price,
		})
	}
	return NewCatalog(instruments)
}

// NormalizeSymbol trims and upper-cases a symbol.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// Lookup returns the instrument listed under symbol.
func (c *Catalog) Lookup(symbol string) (models.Instrument, bool) {
	inst, ok := c.bySymbol[NormalizeSymbol(symbol)]
	return inst, ok
}

// Price returns the current price for symbol.
func (c *Catalog) Price(symbol string) (decimal.Decimal, bool) {
	inst, ok := c.Lookup(symbol)
	if !ok {
		return decimal.Zero, false
	}
	return inst.Price, true
}

// Instruments returns all instruments in listing order.
func (c *Catalog) Instruments() []models.Instrument {
	out := make([]models.Instrument, len(c.ordered))
	copy(out, c.ordered)
	return out
}

// Len returns the number of listed instruments.
func (c *Catalog) Len() int {
	return len(c.ordered)
}
