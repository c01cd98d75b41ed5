package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"

	"trading-console/internal/models"
)

// Property: a transaction written to the journal reads back with the same
// side, symbol, quantity, exact price and execution time.
func TestProperty_TradeRoundTripConsistency(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "journal_property.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	symbols := []string{"TCS", "INFY", "RELI", "HDFC", "ITC"}
	baseTime := time.Date(2024, 1, 1, 9, 15, 0, 0, time.UTC)
	n := 0

	properties.Property("journal round-trip preserves the transaction", prop.ForAll(
		func(symbolIdx int, sell bool, qty int, cents int64, offsetSec int) bool {
			ctx := context.Background()
			n++
			side := models.OrderSideBuy
			if sell {
				side = models.OrderSideSell
			}
			tx := models.Transaction{
				ID:         fmt.Sprintf("prop-%d-%d", n, time.Now().UnixNano()),
				Seq:        n,
				Side:       side,
				Symbol:     symbols[symbolIdx%len(symbols)],
				Quantity:   qty,
				Price:      decimal.New(cents, -2),
				ExecutedAt: baseTime.Add(time.Duration(offsetSec) * time.Second),
			}
			sessionID := "session-" + tx.ID

			if err := store.LogTrade(ctx, sessionID, tx); err != nil {
				t.Logf("Failed to log trade: %v", err)
				return false
			}

			got, err := store.GetTrades(ctx, TradeFilter{SessionID: sessionID})
			if err != nil || len(got) != 1 {
				t.Logf("Unexpected read back: %v (%d rows)", err, len(got))
				return false
			}
			back := got[0].Transaction
			return back.ID == tx.ID &&
				back.Seq == tx.Seq &&
				back.Side == tx.Side &&
				back.Symbol == tx.Symbol &&
				back.Quantity == tx.Quantity &&
				back.Price.Equal(tx.Price) &&
				back.ExecutedAt.Equal(tx.ExecutedAt)
		},
		gen.IntRange(0, len(symbols)-1),
		gen.Bool(),
		gen.IntRange(1, 10000),
		gen.Int64Range(0, 10000000),
		gen.IntRange(0, 86400),
	))

	properties.TestingRun(t)
}
