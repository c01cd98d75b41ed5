// Package portfolio implements the accounting engine behind the console:
// holdings, weighted average cost basis and the transaction log.
package portfolio

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	apperrors "trading-console/internal/errors"
	"trading-console/internal/models"
)

var hundred = decimal.NewFromInt(100)

// PriceSource supplies current market prices for valuation.
type PriceSource interface {
	Price(symbol string) (decimal.Decimal, bool)
}

// Config holds configuration for a portfolio.
type Config struct {
	// DropClosed removes a position once its quantity reaches zero.
	// By default closed positions are kept with their last average price.
	DropClosed bool
	// StrictValuation makes Valuation return a *DelistedError when a held
	// symbol has no market price.
	StrictValuation bool
	Clock           func() time.Time
	NewID           func() string
}

// Portfolio owns positions keyed by symbol and the ordered transaction log.
type Portfolio struct {
	positions map[string]*models.Position
	history   []models.Transaction

	dropClosed bool
	strict     bool
	clock      func() time.Time
	newID      func() string

	mu sync.RWMutex
}

// New creates an empty portfolio.
func New(cfg Config) *Portfolio {
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	newID := cfg.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	return &Portfolio{
		positions:  make(map[string]*models.Position),
		history:    make([]models.Transaction, 0),
		dropClosed: cfg.DropClosed,
		strict:     cfg.StrictValuation,
		clock:      clock,
		newID:      newID,
	}
}

// Buy adds quantity units of symbol at price and re-blends the average cost.
func (p *Portfolio) Buy(symbol string, quantity int, price decimal.Decimal) (models.Transaction, error) {
	if err := validateOrder(symbol, models.OrderSideBuy, quantity, price); err != nil {
		return models.Transaction{}, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	pos, exists := p.positions[symbol]
	if !exists {
		pos = &models.Position{Symbol: symbol}
	}
	if quantity > math.MaxInt-pos.Quantity {
		return models.Transaction{}, apperrors.NewOrderError(symbol, string(models.OrderSideBuy),
			fmt.Sprintf("held %d, adding %d overflows quantity", pos.Quantity, quantity), apperrors.ErrInvalidQuantity)
	}
	p.positions[symbol] = pos

	oldQty := decimal.NewFromInt(int64(pos.Quantity))
	addQty := decimal.NewFromInt(int64(quantity))
	pos.AveragePrice = weightedAvg(pos.AveragePrice, oldQty, price, addQty)
	pos.Quantity += quantity

	return p.record(models.OrderSideBuy, symbol, quantity, price), nil
}

// Sell removes quantity units of symbol at price. The average cost of the
// remaining units is left unchanged. Selling more than is held fails with
// ErrInsufficientHoldings and leaves the portfolio untouched.
func (p *Portfolio) Sell(symbol string, quantity int, price decimal.Decimal) (models.Transaction, error) {
	if err := validateOrder(symbol, models.OrderSideSell, quantity, price); err != nil {
		return models.Transaction{}, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	held := 0
	pos, exists := p.positions[symbol]
	if exists {
		held = pos.Quantity
	}
	if held < quantity {
		return models.Transaction{}, apperrors.NewOrderError(symbol, string(models.OrderSideSell),
			fmt.Sprintf("held %d, requested %d", held, quantity), apperrors.ErrInsufficientHoldings)
	}

	pos.Quantity -= quantity
	if pos.IsClosed() && p.dropClosed {
		delete(p.positions, symbol)
	}

	return p.record(models.OrderSideSell, symbol, quantity, price), nil
}

// record appends a transaction. Callers hold p.mu.
func (p *Portfolio) record(side models.OrderSide, symbol string, quantity int, price decimal.Decimal) models.Transaction {
	tx := models.Transaction{
		ID:         p.newID(),
		Seq:        len(p.history) + 1,
		Side:       side,
		Symbol:     symbol,
		Quantity:   quantity,
		Price:      price,
		ExecutedAt: p.clock(),
	}
	p.history = append(p.history, tx)
	return tx
}

// Position returns the position held in symbol, if any.
func (p *Portfolio) Position(symbol string) (models.Position, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	pos, ok := p.positions[symbol]
	if !ok {
		return models.Position{}, false
	}
	return *pos, true
}

// Positions returns a snapshot of all positions sorted by symbol.
func (p *Portfolio) Positions() []models.Position {
	p.mu.RLock()
	defer p.mu.RUnlock()

	positions := make([]models.Position, 0, len(p.positions))
	for _, pos := range p.positions {
		positions = append(positions, *pos)
	}
	sort.Slice(positions, func(i, j int) bool { return positions[i].Symbol < positions[j].Symbol })
	return positions
}

// History returns all transactions, oldest first.
func (p *Portfolio) History() []models.Transaction {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]models.Transaction, len(p.history))
	copy(out, p.history)
	return out
}

// Valuation prices every position against prices. A symbol missing from
// prices is valued at zero and flagged as delisted; in strict mode the
// report is returned together with a *DelistedError.
func (p *Portfolio) Valuation(prices PriceSource) (models.Valuation, error) {
	positions := p.Positions()

	v := models.Valuation{
		Rows:          make([]models.ValuationRow, 0, len(positions)),
		TotalValue:    decimal.Zero,
		TotalInvested: decimal.Zero,
		TotalPnL:      decimal.Zero,
	}
	for _, pos := range positions {
		row := valueRow(pos, prices)
		v.TotalValue = v.TotalValue.Add(row.MarketValue)
		v.TotalInvested = v.TotalInvested.Add(row.InvestedValue)
		v.TotalPnL = v.TotalPnL.Add(row.PnL)
		v.Rows = append(v.Rows, row)
	}

	if delisted := v.Delisted(); p.strict && len(delisted) > 0 {
		return v, &apperrors.DelistedError{Symbols: delisted}
	}
	return v, nil
}

func valueRow(pos models.Position, prices PriceSource) models.ValuationRow {
	price, ok := prices.Price(pos.Symbol)
	if !ok {
		price = decimal.Zero
	}
	qty := decimal.NewFromInt(int64(pos.Quantity))
	invested := pos.InvestedValue()
	pnl := price.Sub(pos.AveragePrice).Mul(qty)

	pnlPercent := decimal.Zero
	if invested.IsPositive() {
		pnlPercent = pnl.Div(invested).Mul(hundred).Round(2)
	}

	return models.ValuationRow{
		Symbol:        pos.Symbol,
		Quantity:      pos.Quantity,
		AveragePrice:  pos.AveragePrice,
		MarketPrice:   price,
		MarketValue:   price.Mul(qty),
		InvestedValue: invested,
		PnL:           pnl,
		PnLPercent:    pnlPercent,
		Delisted:      !ok,
	}
}

func validateOrder(symbol string, side models.OrderSide, quantity int, price decimal.Decimal) error {
	if strings.TrimSpace(symbol) == "" {
		return apperrors.NewOrderError(symbol, string(side), "symbol cannot be empty", apperrors.ErrInvalidSymbol)
	}
	if quantity <= 0 {
		return apperrors.NewOrderError(symbol, string(side), fmt.Sprintf("quantity must be positive, got %d", quantity), apperrors.ErrInvalidQuantity)
	}
	if price.IsNegative() {
		return apperrors.NewOrderError(symbol, string(side), fmt.Sprintf("price must not be negative, got %s", price), apperrors.ErrInvalidPrice)
	}
	return nil
}

func weightedAvg(existingAvgPrice, existingQty, newPrice, newQty decimal.Decimal) decimal.Decimal {
	if existingQty.IsZero() {
		return newPrice
	}
	return existingAvgPrice.Mul(existingQty).
		Add(newPrice.Mul(newQty)).
		Div(existingQty.Add(newQty))
}
