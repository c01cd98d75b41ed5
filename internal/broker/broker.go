// Package broker provides order execution against the simulated market.
package broker

import (
	"context"

	"trading-console/internal/models"
)

// Broker defines the operations the console performs.
type Broker interface {
	// Market Data
	GetQuote(ctx context.Context, symbol string) (*models.Instrument, error)
	GetInstruments(ctx context.Context) ([]models.Instrument, error)

	// Orders
	PlaceOrder(ctx context.Context, order *models.Order) (*OrderResult, error)

	// Portfolio
	GetPositions(ctx context.Context) ([]models.Position, error)
	GetHistory(ctx context.Context) ([]models.Transaction, error)
	GetValuation(ctx context.Context) (*models.Valuation, error)
}

// OrderResult represents the result of an order placement.
type OrderResult struct {
	Transaction models.Transaction
	Message     string
}
