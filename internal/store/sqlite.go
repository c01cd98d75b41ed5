// Package store provides data persistence implementations.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	apperrors "trading-console/internal/errors"
	"trading-console/internal/models"
	"trading-console/pkg/utils"
)

// SQLiteStore implements TradeJournal using SQLite.
type SQLiteStore struct {
	db  *sql.DB
	mu  sync.Mutex
	now func() time.Time
}

// NewSQLiteStore opens (or creates) the journal database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open database: %v", apperrors.ErrDatabaseError, err)
	}

	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{
		db:  db,
		now: time.Now,
	}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: failed to initialize schema: %v", apperrors.ErrDatabaseError, err)
	}

	return store, nil
}

// initSchema creates all required tables and indexes.
func (s *SQLiteStore) initSchema() error {
	schema := `
	-- Executed trades, one row per transaction
	CREATE TABLE IF NOT EXISTS trades (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tx_id TEXT NOT NULL UNIQUE,
		session_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		side TEXT NOT NULL,
		symbol TEXT NOT NULL,
		quantity INTEGER NOT NULL,
		price TEXT NOT NULL,
		executed_at DATETIME NOT NULL,
		recorded_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_trades_symbol ON trades(symbol);
	CREATE INDEX IF NOT EXISTS idx_trades_session ON trades(session_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// LogTrade saves a transaction to the journal.
func (s *SQLiteStore) LogTrade(ctx context.Context, sessionID string, tx models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	retry := utils.DefaultRetryConfig()
	retry.Retryable = isBusy

	err := utils.Retry(ctx, retry, func() error {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO trades (tx_id, session_id, seq, side, symbol, quantity, price, executed_at, recorded_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, tx.ID, sessionID, tx.Seq, string(tx.Side), tx.Symbol, tx.Quantity, tx.Price.String(), tx.ExecutedAt.UTC(), s.now().UTC())
		return err
	})
	if err != nil {
		return fmt.Errorf("%w: failed to log trade: %v", apperrors.ErrDatabaseError, err)
	}
	return nil
}

// GetTrades retrieves journal entries, most recent first.
func (s *SQLiteStore) GetTrades(ctx context.Context, filter TradeFilter) ([]JournalEntry, error) {
	query := "SELECT tx_id, session_id, seq, side, symbol, quantity, price, executed_at, recorded_at FROM trades WHERE 1=1"
	args := []interface{}{}

	if filter.Symbol != "" {
		query += " AND symbol = ?"
		args = append(args, filter.Symbol)
	}
	if filter.Side != "" {
		query += " AND side = ?"
		args = append(args, string(filter.Side))
	}
	if filter.SessionID != "" {
		query += " AND session_id = ?"
		args = append(args, filter.SessionID)
	}
	if !filter.StartDate.IsZero() {
		query += " AND executed_at >= ?"
		args = append(args, filter.StartDate.UTC())
	}
	if !filter.EndDate.IsZero() {
		query += " AND executed_at <= ?"
		args = append(args, filter.EndDate.UTC())
	}

	query += " ORDER BY id DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query trades: %v", apperrors.ErrDatabaseError, err)
	}
	defer rows.Close()

	var entries []JournalEntry
	for rows.Next() {
		var (
			e     JournalEntry
			side  string
			price string
		)
		if err := rows.Scan(&e.Transaction.ID, &e.SessionID, &e.Transaction.Seq, &side, &e.Transaction.Symbol,
			&e.Transaction.Quantity, &price, &e.Transaction.ExecutedAt, &e.RecordedAt); err != nil {
			return nil, fmt.Errorf("%w: failed to scan trade: %v", apperrors.ErrDatabaseError, err)
		}
		e.Transaction.Side = models.OrderSide(side)
		e.Transaction.Price, err = decimal.NewFromString(price)
		if err != nil {
			return nil, apperrors.NewDataError("trade", e.Transaction.Symbol, "corrupt price "+price, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

var _ TradeJournal = (*SQLiteStore)(nil)

// isBusy reports whether err is SQLite lock contention, which another
// process reading the journal can cause even with a busy timeout.
func isBusy(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked
	}
	return false
}
