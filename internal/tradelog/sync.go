package tradelog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gw/topstepx-tradelog/internal/analytics"
	"github.com/gw/topstepx-tradelog/internal/roundtrip"
	"github.com/gw/topstepx-tradelog/internal/topstepx"
)

// Sync pulls every account's executions from TopstepX, reconstructs
// round trips, and stores them. Live accounts deliver raw fills and go
// through explicit matching; all others come pre-matched from the trade
// feed. The client must already be authenticated.
//
// Sync is not safe to run twice in parallel for the same account; the
// upsert keys make a re-run converge, but callers must serialize.
func Sync(ctx context.Context, client *topstepx.Client, store *Store, matcher *roundtrip.Matcher, lookbackDays int) error {
	accounts, err := client.SearchAccounts(ctx)
	if err != nil {
		return fmt.Errorf("syncing accounts: %w", err)
	}

	for _, acc := range accounts {
		if err := store.UpsertAccount(ctx, &Account{
			AccountID: acc.ID,
			Name:      acc.Name,
			Balance:   acc.Balance,
			IsLive:    IsLive(acc.Name),
		}); err != nil {
			return fmt.Errorf("upserting account %d: %w", acc.ID, err)
		}
	}
	slog.Info("synced accounts", "count", len(accounts))

	for _, acc := range accounts {
		n, err := syncAccount(ctx, client, store, matcher, acc, lookbackDays)
		if err != nil {
			return fmt.Errorf("syncing account %q: %w", acc.Name, err)
		}
		slog.Info("synced trades", "account", acc.Name, "live", IsLive(acc.Name), "count", n)
	}
	return nil
}

// IsLive reports whether an account name marks a live funded account,
// which TopstepX flags with "TOPX".
func IsLive(name string) bool {
	return strings.Contains(strings.ToUpper(name), "TOPX")
}

func syncAccount(ctx context.Context, client *topstepx.Client, store *Store, matcher *roundtrip.Matcher, acc topstepx.Account, lookbackDays int) (int, error) {
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -lookbackDays)

	var execs []roundtrip.Execution
	feed := roundtrip.FeedTrades

	if IsLive(acc.Name) {
		orders, err := client.SearchOrders(ctx, acc.ID, start, end)
		if err != nil {
			return 0, err
		}
		execs = ordersToExecutions(orders)
		feed = roundtrip.FeedOrders
	} else {
		trades, err := client.SearchTrades(ctx, acc.ID, start, end)
		if err != nil {
			return 0, err
		}
		execs = tradesToExecutions(trades)
	}

	trips := matcher.Reconstruct(acc.ID, execs, feed)
	for i := range trips {
		if err := store.InsertTrade(ctx, &trips[i]); err != nil {
			return 0, fmt.Errorf("inserting trade: %w", err)
		}
	}

	if err := updateDailyStats(ctx, store, acc.ID); err != nil {
		return 0, fmt.Errorf("updating daily stats: %w", err)
	}
	return len(trips), nil
}

// updateDailyStats recomputes the account's full daily_stats from the
// stored trade set.
func updateDailyStats(ctx context.Context, store *Store, accountID int) error {
	trips, err := store.GetTrades(ctx, accountID, time.Time{}, time.Time{})
	if err != nil {
		return err
	}

	for _, day := range analytics.New(trips).DailyStats() {
		stat := DailyStat{
			AccountID:   accountID,
			Date:        day.Date.Format("2006-01-02"),
			TotalPnL:    day.TotalPnL,
			TradeCount:  day.TradeCount,
			WinCount:    day.WinCount,
			LossCount:   day.LossCount,
			GrossProfit: day.GrossProfit,
			GrossLoss:   day.GrossLoss,
		}
		if err := store.UpdateDailyStats(ctx, &stat); err != nil {
			return err
		}
	}
	return nil
}

func sideOf(apiSide int) roundtrip.Side {
	if apiSide == 0 {
		return roundtrip.Long
	}
	return roundtrip.Short
}

func tradesToExecutions(trades []topstepx.Trade) []roundtrip.Execution {
	execs := make([]roundtrip.Execution, 0, len(trades))
	for _, t := range trades {
		execs = append(execs, roundtrip.Execution{
			ContractID: t.ContractID,
			Side:       sideOf(t.Side),
			Size:       t.Size,
			Price:      t.Price,
			Timestamp:  t.CreationTimestamp,
			PnL:        t.ProfitAndLoss,
			Fees:       t.Fees,
		})
	}
	return execs
}

func ordersToExecutions(orders []topstepx.Order) []roundtrip.Execution {
	execs := make([]roundtrip.Execution, 0, len(orders))
	for _, o := range orders {
		execs = append(execs, roundtrip.Execution{
			ContractID: o.ContractID,
			Side:       sideOf(o.Side),
			Size:       o.FilledSize(),
			Price:      o.FillPrice(),
			Timestamp:  o.Timestamp(),
		})
	}
	return execs
}
