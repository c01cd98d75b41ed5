package cli

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"trading-console/internal/models"
	"trading-console/internal/store"
)

// Report renders market, portfolio and history views.
type Report struct {
	out *Output
}

// NewReport creates a report writing to out.
func NewReport(out *Output) *Report {
	return &Report{out: out}
}

// Market prints the listed instruments in catalog order.
func (r *Report) Market(instruments []models.Instrument) {
	r.out.Bold("Market")
	table := NewTable(r.out, "Symbol", "Company", "Price")
	for _, inst := range instruments {
		table.AddRow(inst.Symbol, inst.Name, FormatIndianCurrency(inst.Price))
	}
	table.Render()
}

// Portfolio prints one row per position and the portfolio totals.
func (r *Report) Portfolio(v *models.Valuation) {
	if v == nil || len(v.Rows) == 0 {
		r.out.Info("No holdings yet.")
		return
	}

	r.out.Bold("Portfolio")
	table := NewTable(r.out, "Symbol", "Shares", "Price", "Avg Buy", "Value", "P/L", "P/L %")
	for _, row := range v.Rows {
		price := FormatIndianCurrency(row.MarketPrice)
		if row.Delisted {
			price = r.out.Yellow("n/a")
		}
		pct := "-"
		if row.InvestedValue.IsPositive() {
			pct = r.out.FormatPercent(row.PnLPercent)
		}
		table.AddRow(
			row.Symbol,
			FormatQuantity(row.Quantity),
			price,
			FormatIndianCurrency(row.AveragePrice),
			FormatIndianCurrency(row.MarketValue),
			r.out.FormatPnL(row.PnL),
			pct,
		)
	}
	table.Render()
	r.out.Println()

	r.out.Printf("Total Value:    %s\n", r.out.BoldText(FormatIndianCurrency(v.TotalValue)))
	r.out.Printf("Total Invested: %s\n", FormatIndianCurrency(v.TotalInvested))
	r.out.Printf("Unrealized P/L: %s\n", r.out.FormatPnL(v.TotalPnL))

	if delisted := v.Delisted(); len(delisted) > 0 {
		r.out.Warning("No market price for %s; valued at %s.", strings.Join(delisted, ", "), FormatIndianCurrency(decimal.Zero))
	}
}

// History prints every transaction, oldest first.
func (r *Report) History(history []models.Transaction) {
	if len(history) == 0 {
		r.out.Info("No transactions yet.")
		return
	}
	r.out.Bold("Transaction History")
	for _, tx := range history {
		r.out.Println(formatTransaction(tx))
	}
}

// Journal prints trades read back from the journal, newest first.
func (r *Report) Journal(entries []store.JournalEntry) {
	if len(entries) == 0 {
		r.out.Info("No trades recorded in the journal.")
		return
	}

	r.out.Bold("Trade Journal")
	table := NewTable(r.out, "Time", "Session", "#", "Side", "Symbol", "Qty", "Price", "Value")
	for _, e := range entries {
		tx := e.Transaction
		side := r.out.Green(string(tx.Side))
		if tx.Side == models.OrderSideSell {
			side = r.out.Red(string(tx.Side))
		}
		table.AddRow(
			FormatTimestamp(tx.ExecutedAt),
			shortID(e.SessionID),
			fmt.Sprintf("%d", tx.Seq),
			side,
			tx.Symbol,
			FormatQuantity(tx.Quantity),
			FormatIndianCurrency(tx.Price),
			FormatCompact(tx.Value()),
		)
	}
	table.Render()
	r.out.Dim("%d trade(s)", len(entries))
}

// formatTransaction renders a record as "BUY TCS | Qty: 10 | Price: ₹3,650.00".
func formatTransaction(tx models.Transaction) string {
	return fmt.Sprintf("%s %s | Qty: %d | Price: %s", tx.Side, tx.Symbol, tx.Quantity, FormatIndianCurrency(tx.Price))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
