package cli

import (
	"context"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"trading-console/internal/models"
	"trading-console/internal/store"
)

func newMarketCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "market",
		Short: "List tradable instruments",
		Long:  "Display every instrument in the market catalog with its current price.",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := app.output(cmd)
			instruments, err := app.Broker.GetInstruments(cmd.Context())
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(instruments)
			}
			NewReport(output).Market(instruments)
			return nil
		},
	}
}

func newJournalCmd(app *App) *cobra.Command {
	var (
		symbol    string
		side      string
		sessionID string
		limit     int
	)

	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Show trades recorded in the journal",
		Long: `Display trades recorded by earlier sessions, newest first.

The journal is an audit trail only; it is never used to restore holdings.
Enable it with [journal] enabled = true in config.toml or TRADER_JOURNAL_PATH.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := app.output(cmd)
			if app.Journal == nil {
				output.Warning("Trade journal is disabled. Set [journal] enabled = true in config.toml.")
				return nil
			}

			filter := store.TradeFilter{
				Symbol:    strings.ToUpper(strings.TrimSpace(symbol)),
				SessionID: sessionID,
				Limit:     limit,
			}
			if side != "" {
				filter.Side = models.OrderSide(strings.ToUpper(side))
				if !filter.Side.Valid() {
					output.Error("Invalid side %q: use BUY or SELL", side)
					return nil
				}
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			entries, err := app.Journal.GetTrades(ctx, filter)
			if err != nil {
				output.Error("Failed to fetch trades: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(entries)
			}
			NewReport(output).Journal(entries)
			return nil
		},
	}

	cmd.Flags().StringVar(&symbol, "symbol", "", "only trades in this symbol")
	cmd.Flags().StringVar(&side, "side", "", "only BUY or SELL trades")
	cmd.Flags().StringVar(&sessionID, "session", "", "only trades from this session ID")
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum number of trades to show (0 for all)")

	return cmd
}
