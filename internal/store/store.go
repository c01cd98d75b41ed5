// Package store provides the trade journal: an audit trail of executed
// trades that outlives the session. Portfolio state is never rebuilt from it.
package store

import (
	"context"
	"time"

	"trading-console/internal/models"
)

// TradeJournal defines the interface for recording executed trades.
type TradeJournal interface {
	LogTrade(ctx context.Context, sessionID string, tx models.Transaction) error
	GetTrades(ctx context.Context, filter TradeFilter) ([]JournalEntry, error)
	Close() error
}

// JournalEntry is a recorded transaction together with the session that made it.
type JournalEntry struct {
	SessionID   string             `json:"session_id"`
	Transaction models.Transaction `json:"transaction"`
	RecordedAt  time.Time          `json:"recorded_at"`
}

// TradeFilter represents filters for querying trades.
type TradeFilter struct {
	Symbol    string
	Side      models.OrderSide
	SessionID string
	StartDate time.Time
	EndDate   time.Time
	Limit     int
}
