package models

import "github.com/shopspring/decimal"

// Order represents a market order placed from the console.
// The execution price is always the catalog price at placement time.
type Order struct {
	Symbol   string
	Side     OrderSide
	Quantity int
}

// Position represents a held quantity of one instrument and its average cost.
type Position struct {
	Symbol       string          `json:"symbol"`
	Quantity     int             `json:"quantity"`
	AveragePrice decimal.Decimal `json:"average_price"`
}

// InvestedValue returns quantity * average price.
func (p Position) InvestedValue() decimal.Decimal {
	return p.AveragePrice.Mul(decimal.NewFromInt(int64(p.Quantity)))
}

// IsClosed reports whether nothing is held any more.
func (p Position) IsClosed() bool {
	return p.Quantity == 0
}
