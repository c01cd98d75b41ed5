package broker

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	apperrors "trading-console/internal/errors"
	"trading-console/internal/models"
	"trading-console/internal/portfolio"
)

// Property: for any stream of orders, every accepted order is journaled
// exactly once, every rejected order leaves no trace, and no position ever
// goes negative.
func TestProperty_OrderStreamKeepsHoldingsConsistent(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	symbols := []string{"TCS", "INFY", "RELI", "HDFC", "ITC", "WIPRO"}

	orderGen := gen.Struct(reflect.TypeOf(models.Order{}), map[string]gopter.Gen{
		"Symbol":   gen.OneConstOf(symbols[0], symbols[1], symbols[2], symbols[3], symbols[4], symbols[5]),
		"Side":     gen.OneConstOf(models.OrderSideBuy, models.OrderSideSell),
		"Quantity": gen.IntRange(1, 100),
	})

	properties.Property("accepted orders journaled once, rejected orders leave no trace", prop.ForAll(
		func(orders []models.Order) bool {
			ctx := context.Background()
			journal := &memoryJournal{}
			b := newTestBroker(t, journal, portfolio.Config{})

			accepted := 0
			held := make(map[string]int)
			for i := range orders {
				order := orders[i]
				_, err := b.PlaceOrder(ctx, &order)
				switch {
				case err == nil:
					accepted++
					if order.Side == models.OrderSideBuy {
						held[order.Symbol] += order.Quantity
					} else {
						held[order.Symbol] -= order.Quantity
					}
				case apperrors.Is(err, apperrors.ErrSymbolNotFound):
					if order.Symbol != "WIPRO" {
						return false
					}
				case apperrors.Is(err, apperrors.ErrInsufficientHoldings):
					if order.Side != models.OrderSideSell || held[order.Symbol] >= order.Quantity {
						return false
					}
				default:
					t.Logf("unexpected error: %v", err)
					return false
				}
			}

			history, _ := b.GetHistory(ctx)
			if len(history) != accepted || len(journal.entries) != accepted {
				return false
			}

			positions, _ := b.GetPositions(ctx)
			for _, pos := range positions {
				if pos.Quantity < 0 || pos.Quantity != held[pos.Symbol] {
					return false
				}
			}
			return true
		},
		gen.SliceOf(orderGen),
	))

	properties.TestingRun(t)
}
