package broker

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	apperrors "trading-console/internal/errors"
	"trading-console/internal/logging"
	"trading-console/internal/market"
	"trading-console/internal/models"
	"trading-console/internal/portfolio"
	"trading-console/internal/store"
)

// PaperBroker fills market orders at the catalog price against a portfolio.
type PaperBroker struct {
	catalog   *market.Catalog
	portfolio *portfolio.Portfolio
	journal   store.TradeJournal
	logger    zerolog.Logger
	sessionID string
}

// PaperBrokerConfig holds configuration for paper broker.
type PaperBrokerConfig struct {
	Catalog   *market.Catalog
	Portfolio *portfolio.Portfolio
	// Journal is optional.
	Journal   store.TradeJournal
	Logger    zerolog.Logger
	SessionID string
}

// NewPaperBroker creates a new paper trading broker.
func NewPaperBroker(cfg PaperBrokerConfig) *PaperBroker {
	sessionID := cfg.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	return &PaperBroker{
		catalog:   cfg.Catalog,
		portfolio: cfg.Portfolio,
		journal:   cfg.Journal,
		logger:    logging.WithSession(cfg.Logger, sessionID),
		sessionID: sessionID,
	}
}

// SessionID identifies this broker's trades in the journal.
func (p *PaperBroker) SessionID() string {
	return p.sessionID
}

// GetQuote returns the listed instrument for symbol.
func (p *PaperBroker) GetQuote(ctx context.Context, symbol string) (*models.Instrument, error) {
	inst, ok := p.catalog.Lookup(symbol)
	if !ok {
		return nil, apperrors.NewDataError("quote", market.NormalizeSymbol(symbol), "not listed in market", apperrors.ErrSymbolNotFound)
	}
	return &inst, nil
}

// GetInstruments returns every listed instrument in catalog order.
func (p *PaperBroker) GetInstruments(ctx context.Context) ([]models.Instrument, error) {
	return p.catalog.Instruments(), nil
}

// PlaceOrder executes a market order at the current catalog price.
func (p *PaperBroker) PlaceOrder(ctx context.Context, order *models.Order) (*OrderResult, error) {
	if order == nil || !order.Side.Valid() {
		return nil, apperrors.NewOrderError("", "", "order side must be BUY or SELL", apperrors.ErrInvalidOrder)
	}

	logger := logging.WithSymbol(p.logger, market.NormalizeSymbol(order.Symbol))

	quote, err := p.GetQuote(ctx, order.Symbol)
	if err != nil {
		logging.LogRejection(logger, order.Symbol, string(order.Side), order.Quantity, err)
		return nil, err
	}

	var tx models.Transaction
	switch order.Side {
	case models.OrderSideBuy:
		tx, err = p.portfolio.Buy(quote.Symbol, order.Quantity, quote.Price)
	case models.OrderSideSell:
		tx, err = p.portfolio.Sell(quote.Symbol, order.Quantity, quote.Price)
	}
	if err != nil {
		logging.LogRejection(logger, quote.Symbol, string(order.Side), order.Quantity, err)
		return nil, err
	}

	logging.LogTrade(logger, tx.ID, tx.Symbol, string(tx.Side), tx.Quantity, tx.Price)

	if p.journal != nil {
		// The fill stands even if the journal write fails.
		if err := p.journal.LogTrade(ctx, p.sessionID, tx); err != nil {
			logger.Warn().Err(err).Str("tx_id", tx.ID).Msg("Failed to journal trade")
		}
	}

	return &OrderResult{
		Transaction: tx,
		Message:     fmt.Sprintf("%s %d %s @ %s", tx.Side, tx.Quantity, tx.Symbol, tx.Price.StringFixed(2)),
	}, nil
}

// GetPositions returns the portfolio positions sorted by symbol.
func (p *PaperBroker) GetPositions(ctx context.Context) ([]models.Position, error) {
	return p.portfolio.Positions(), nil
}

// GetHistory returns executed transactions, oldest first.
func (p *PaperBroker) GetHistory(ctx context.Context) ([]models.Transaction, error) {
	return p.portfolio.History(), nil
}

// GetValuation values the portfolio at current catalog prices. In strict mode
// the valuation is returned together with a *DelistedError.
func (p *PaperBroker) GetValuation(ctx context.Context) (*models.Valuation, error) {
	v, err := p.portfolio.Valuation(p.catalog)
	if err != nil {
		p.logger.Warn().Err(err).Msg("Valuation found held symbols missing from market")
	}
	return &v, err
}

// Ensure PaperBroker implements Broker interface
var _ Broker = (*PaperBroker)(nil)
