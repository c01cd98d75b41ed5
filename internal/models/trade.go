package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is an immutable record of one executed buy or sell.
type Transaction struct {
	ID         string          `json:"id"`
	Seq        int             `json:"seq"`
	Side       OrderSide       `json:"side"`
	Symbol     string          `json:"symbol"`
	Quantity   int             `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
	ExecutedAt time.Time       `json:"executed_at"`
}

// Value returns quantity * execution price.
func (t Transaction) Value() decimal.Decimal {
	return t.Price.Mul(decimal.NewFromInt(int64(t.Quantity)))
}

// ValuationRow is the derived view of one position at current market prices.
type ValuationRow struct {
	Symbol        string          `json:"symbol"`
	Quantity      int             `json:"quantity"`
	AveragePrice  decimal.Decimal `json:"average_price"`
	MarketPrice   decimal.Decimal `json:"market_price"`
	MarketValue   decimal.Decimal `json:"market_value"`
	InvestedValue decimal.Decimal `json:"invested_value"`
	PnL           decimal.Decimal `json:"pnl"`
	PnLPercent    decimal.Decimal `json:"pnl_percent"`
	Delisted      bool            `json:"delisted,omitempty"`
}

// Valuation is a point-in-time report over all positions.
type Valuation struct {
	Rows          []ValuationRow  `json:"rows"`
	TotalValue    decimal.Decimal `json:"total_value"`
	TotalInvested decimal.Decimal `json:"total_invested"`
	TotalPnL      decimal.Decimal `json:"total_pnl"`
}

// Delisted returns the symbols that had no market price.
func (v Valuation) Delisted() []string {
	var symbols []string
	for _, r := range v.Rows {
		if r.Delisted {
			symbols = append(symbols, r.Symbol)
		}
	}
	return symbols
}
