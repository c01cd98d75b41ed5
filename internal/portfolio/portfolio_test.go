package portfolio

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "trading-console/internal/errors"
)

// priceMap is a PriceSource backed by a map.
type priceMap map[string]decimal.Decimal

func (m priceMap) Price(symbol string) (decimal.Decimal, bool) {
	p, ok := m[symbol]
	return p, ok
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newTestPortfolio(cfg Config) *Portfolio {
	n := 0
	cfg.NewID = func() string {
		n++
		return fmt.Sprintf("tx-%d", n)
	}
	cfg.Clock = func() time.Time { return time.Date(2024, 1, 1, 9, 15, 0, 0, time.UTC) }
	return New(cfg)
}

func TestBuySellScenario(t *testing.T) {
	p := newTestPortfolio(Config{})

	_, err := p.Buy("TCS", 10, d("3650.00"))
	require.NoError(t, err)
	pos, ok := p.Position("TCS")
	require.True(t, ok)
	assert.Equal(t, 10, pos.Quantity)
	assert.True(t, pos.AveragePrice.Equal(d("3650")), "avg = %s", pos.AveragePrice)

	_, err = p.Buy("TCS", 10, d("3700.00"))
	require.NoError(t, err)
	pos, _ = p.Position("TCS")
	assert.Equal(t, 20, pos.Quantity)
	assert.True(t, pos.AveragePrice.Equal(d("3675")), "avg = %s", pos.AveragePrice)

	_, err = p.Sell("TCS", 25, d("3700.00"))
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInsufficientHoldings)
	pos, _ = p.Position("TCS")
	assert.Equal(t, 20, pos.Quantity)

	tx, err := p.Sell("TCS", 20, d("3700.00"))
	require.NoError(t, err)
	assert.Equal(t, 3, tx.Seq)
	pos, ok = p.Position("TCS")
	require.True(t, ok, "closed position is retained by default")
	assert.Equal(t, 0, pos.Quantity)
	assert.True(t, pos.IsClosed())
	assert.True(t, pos.AveragePrice.Equal(d("3675")))

	history := p.History()
	require.Len(t, history, 3)
	assert.Equal(t, "BUY", string(history[0].Side))
	assert.Equal(t, "BUY", string(history[1].Side))
	assert.Equal(t, "SELL", string(history[2].Side))
	assert.Equal(t, "tx-1", history[0].ID)
	assert.Equal(t, 20, history[2].Quantity)
	assert.True(t, history[2].Price.Equal(d("3700")))
}

func TestSellUnknownSymbol(t *testing.T) {
	p := newTestPortfolio(Config{})

	_, err := p.Sell("INFY", 1, d("1490"))
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInsufficientHoldings)

	var orderErr *apperrors.OrderError
	require.ErrorAs(t, err, &orderErr)
	assert.Equal(t, "held 0, requested 1", orderErr.Reason)

	assert.Empty(t, p.Positions())
	assert.Empty(t, p.History())
}

func TestOrderValidation(t *testing.T) {
	p := newTestPortfolio(Config{})
	full := newTestPortfolio(Config{})
	_, err := full.Buy("TCS", math.MaxInt, d("1"))
	require.NoError(t, err)

	tests := []struct {
		name   string
		op     func() error
		target error
	}{
		{"buy zero quantity", func() error { _, err := p.Buy("TCS", 0, d("1")); return err }, apperrors.ErrInvalidQuantity},
		{"buy negative quantity", func() error { _, err := p.Buy("TCS", -5, d("1")); return err }, apperrors.ErrInvalidQuantity},
		{"buy negative price", func() error { _, err := p.Buy("TCS", 1, d("-1")); return err }, apperrors.ErrInvalidPrice},
		{"buy empty symbol", func() error { _, err := p.Buy(" ", 1, d("1")); return err }, apperrors.ErrInvalidSymbol},
		{"sell zero quantity", func() error { _, err := p.Sell("TCS", 0, d("1")); return err }, apperrors.ErrInvalidQuantity},
		{"buy overflowing held quantity", func() error { _, err := full.Buy("TCS", 1, d("1")); return err }, apperrors.ErrInvalidQuantity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.op(), tt.target)
		})
	}
	assert.Empty(t, p.Positions())
	assert.Empty(t, p.History())

	pos, _ := full.Position("TCS")
	assert.Equal(t, math.MaxInt, pos.Quantity)
	assert.Len(t, full.History(), 1)
}

func TestBuyAtZeroPrice(t *testing.T) {
	p := newTestPortfolio(Config{})

	_, err := p.Buy("ITC", 10, decimal.Zero)
	require.NoError(t, err)
	_, err = p.Buy("ITC", 10, d("450"))
	require.NoError(t, err)

	pos, _ := p.Position("ITC")
	assert.True(t, pos.AveragePrice.Equal(d("225")))
}

func TestDropClosedPositions(t *testing.T) {
	p := newTestPortfolio(Config{DropClosed: true})

	_, err := p.Buy("HDFC", 5, d("1695"))
	require.NoError(t, err)
	_, err = p.Sell("HDFC", 5, d("1700"))
	require.NoError(t, err)

	_, ok := p.Position("HDFC")
	assert.False(t, ok)
	assert.Empty(t, p.Positions())

	// A fresh buy starts a new cost basis.
	_, err = p.Buy("HDFC", 2, d("1600"))
	require.NoError(t, err)
	pos, _ := p.Position("HDFC")
	assert.True(t, pos.AveragePrice.Equal(d("1600")))
}

func TestRebuyAfterCloseRetained(t *testing.T) {
	p := newTestPortfolio(Config{})

	_, _ = p.Buy("TCS", 10, d("3650"))
	_, _ = p.Sell("TCS", 10, d("3700"))
	_, err := p.Buy("TCS", 4, d("3500"))
	require.NoError(t, err)

	pos, _ := p.Position("TCS")
	assert.Equal(t, 4, pos.Quantity)
	assert.True(t, pos.AveragePrice.Equal(d("3500")), "zero-quantity basis does not leak into a new position")
}

func TestPositionsSorted(t *testing.T) {
	p := newTestPortfolio(Config{})
	for _, s := range []string{"TCS", "HDFC", "ITC", "INFY"} {
		_, err := p.Buy(s, 1, d("100"))
		require.NoError(t, err)
	}

	var symbols []string
	for _, pos := range p.Positions() {
		symbols = append(symbols, pos.Symbol)
	}
	assert.Equal(t, []string{"HDFC", "INFY", "ITC", "TCS"}, symbols)
}

func TestHistoryReturnsCopy(t *testing.T) {
	p := newTestPortfolio(Config{})
	_, _ = p.Buy("TCS", 1, d("1"))

	h := p.History()
	h[0].Quantity = 999

	assert.Equal(t, 1, p.History()[0].Quantity)
}

func TestValuation(t *testing.T) {
	p := newTestPortfolio(Config{})
	_, _ = p.Buy("TCS", 20, d("3675"))
	_, _ = p.Buy("ITC", 100, d("400"))
	_, _ = p.Buy("INFY", 5, d("1500"))
	_, _ = p.Sell("INFY", 5, d("1490"))

	prices := priceMap{"TCS": d("3650"), "ITC": d("450"), "INFY": d("1490")}
	v, err := p.Valuation(prices)
	require.NoError(t, err)
	require.Len(t, v.Rows, 3)

	infy, itc, tcs := v.Rows[0], v.Rows[1], v.Rows[2]

	assert.Equal(t, "INFY", infy.Symbol)
	assert.True(t, infy.MarketValue.IsZero())
	assert.True(t, infy.PnL.IsZero())
	assert.True(t, infy.PnLPercent.IsZero())

	assert.True(t, itc.MarketValue.Equal(d("45000")))
	assert.True(t, itc.PnL.Equal(d("5000")))
	assert.True(t, itc.PnLPercent.Equal(d("12.5")))

	assert.True(t, tcs.MarketValue.Equal(d("73000")))
	assert.True(t, tcs.PnL.Equal(d("-500")))

	assert.True(t, v.TotalValue.Equal(d("118000")))
	assert.True(t, v.TotalInvested.Equal(d("113500")))
	assert.True(t, v.TotalPnL.Equal(d("4500")))
	assert.Empty(t, v.Delisted())
}

func TestValuationNeverTradedAbsent(t *testing.T) {
	p := newTestPortfolio(Config{})
	_, _ = p.Buy("TCS", 1, d("3650"))

	v, err := p.Valuation(priceMap{"TCS": d("3650"), "ITC": d("450")})
	require.NoError(t, err)
	require.Len(t, v.Rows, 1)
	assert.Equal(t, "TCS", v.Rows[0].Symbol)
}

func TestValuationMissingPrice(t *testing.T) {
	p := newTestPortfolio(Config{})
	_, _ = p.Buy("GONE", 10, d("100"))
	_, _ = p.Buy("TCS", 1, d("3650"))
	prices := priceMap{"TCS": d("3650")}

	v, err := p.Valuation(prices)
	require.NoError(t, err)
	require.Len(t, v.Rows, 2)
	assert.True(t, v.Rows[0].Delisted)
	assert.True(t, v.Rows[0].MarketPrice.IsZero())
	assert.True(t, v.Rows[0].PnL.Equal(d("-1000")))
	assert.Equal(t, []string{"GONE"}, v.Delisted())

	strict := newTestPortfolio(Config{StrictValuation: true})
	_, _ = strict.Buy("GONE", 10, d("100"))
	v, err = strict.Valuation(prices)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInstrumentDelisted)
	require.Len(t, v.Rows, 1, "strict valuation still returns the report")
}

func TestValuationDoesNotMutate(t *testing.T) {
	p := newTestPortfolio(Config{})
	_, _ = p.Buy("TCS", 3, d("3600"))
	before := p.History()

	for i := 0; i < 3; i++ {
		_, err := p.Valuation(priceMap{"TCS": d("3700")})
		require.NoError(t, err)
	}

	assert.Equal(t, before, p.History())
	pos, _ := p.Position("TCS")
	assert.Equal(t, 3, pos.Quantity)
	assert.True(t, pos.AveragePrice.Equal(d("3600")))
}
