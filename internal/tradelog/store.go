package tradelog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/gw/topstepx-tradelog/internal/roundtrip"
)

type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening db: %w", err)
	}

	// WAL mode for concurrent reads
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}

	// Run schema migration
	if _, err := db.Exec(schemaDDL); err != nil {
		db.Close()
		return nil, fmt.Errorf("schema migration: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) UpsertAccount(ctx context.Context, a *Account) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (account_id, name, balance, is_live, updated_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(account_id) DO UPDATE SET
			name = excluded.name,
			balance = excluded.balance,
			is_live = excluded.is_live,
			updated_at = CURRENT_TIMESTAMP`,
		a.AccountID, a.Name, a.Balance, a.IsLive,
	)
	return err
}

// InsertTrade upserts a round trip keyed by (account, symbol, entry,
// exit). A re-sync of the same key refreshes the exit-side figures but
// never creates a duplicate row.
func (s *Store) InsertTrade(ctx context.Context, t *roundtrip.RoundTrip) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO trades (account_id, symbol, side, entry_time, exit_time,
			entry_price, exit_price, quantity, pnl, fees, duration_seconds)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(account_id, symbol, entry_time, exit_time) DO UPDATE SET
			exit_price = excluded.exit_price,
			quantity = excluded.quantity,
			pnl = excluded.pnl,
			fees = excluded.fees,
			duration_seconds = excluded.duration_seconds`,
		t.AccountID, t.Symbol, string(t.Side), t.EntryTime, t.ExitTime,
		t.EntryPrice, t.ExitPrice, t.Quantity, t.PnL, t.Fees, t.DurationSeconds,
	)
	return err
}

// GetTrades returns an account's round trips, newest entry first. Zero
// start/end times leave that bound open; the bounds compare against the
// calendar date of the entry time.
func (s *Store) GetTrades(ctx context.Context, accountID int, start, end time.Time) ([]roundtrip.RoundTrip, error) {
	query := `
		SELECT account_id, symbol, side, entry_time, exit_time,
			entry_price, exit_price, quantity, pnl, fees, duration_seconds
		FROM trades WHERE account_id = ?`
	args := []any{accountID}
	if !start.IsZero() {
		query += " AND DATE(entry_time) >= ?"
		args = append(args, start.Format("2006-01-02"))
	}
	if !end.IsZero() {
		query += " AND DATE(entry_time) <= ?"
		args = append(args, end.Format("2006-01-02"))
	}
	query += " ORDER BY entry_time DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []roundtrip.RoundTrip
	for rows.Next() {
		var t roundtrip.RoundTrip
		var side string
		if err := rows.Scan(&t.AccountID, &t.Symbol, &side, &t.EntryTime, &t.ExitTime,
			&t.EntryPrice, &t.ExitPrice, &t.Quantity, &t.PnL, &t.Fees, &t.DurationSeconds); err != nil {
			return nil, err
		}
		t.Side = roundtrip.Side(side)
		results = append(results, t)
	}
	return results, rows.Err()
}

func (s *Store) GetAccounts(ctx context.Context) ([]Account, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT account_id, name, balance, is_live, updated_at
		FROM accounts ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []Account
	for rows.Next() {
		var a Account
		if err := rows.Scan(&a.AccountID, &a.Name, &a.Balance, &a.IsLive, &a.UpdatedAt); err != nil {
			return nil, err
		}
		results = append(results, a)
	}
	return results, rows.Err()
}

func (s *Store) UpdateDailyStats(ctx context.Context, d *DailyStat) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO daily_stats (account_id, date, total_pnl, trade_count,
			win_count, loss_count, gross_profit, gross_loss)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(account_id, date) DO UPDATE SET
			total_pnl = excluded.total_pnl,
			trade_count = excluded.trade_count,
			win_count = excluded.win_count,
			loss_count = excluded.loss_count,
			gross_profit = excluded.gross_profit,
			gross_loss = excluded.gross_loss`,
		d.AccountID, d.Date, d.TotalPnL, d.TradeCount,
		d.WinCount, d.LossCount, d.GrossProfit, d.GrossLoss,
	)
	return err
}

func (s *Store) GetDailyStats(ctx context.Context, accountID int, start, end time.Time) ([]DailyStat, error) {
	query := `
		SELECT account_id, date, total_pnl, trade_count, win_count, loss_count,
			gross_profit, gross_loss
		FROM daily_stats WHERE account_id = ?`
	args := []any{accountID}
	if !start.IsZero() {
		query += " AND date >= ?"
		args = append(args, start.Format("2006-01-02"))
	}
	if !end.IsZero() {
		query += " AND date <= ?"
		args = append(args, end.Format("2006-01-02"))
	}
	query += " ORDER BY date"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []DailyStat
	for rows.Next() {
		var d DailyStat
		if err := rows.Scan(&d.AccountID, &d.Date, &d.TotalPnL, &d.TradeCount,
			&d.WinCount, &d.LossCount, &d.GrossProfit, &d.GrossLoss); err != nil {
			return nil, err
		}
		results = append(results, d)
	}
	return results, rows.Err()
}
