package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/gw/topstepx-tradelog/internal/analytics"
	"github.com/gw/topstepx-tradelog/internal/config"
	"github.com/gw/topstepx-tradelog/internal/contract"
	"github.com/gw/topstepx-tradelog/internal/roundtrip"
	"github.com/gw/topstepx-tradelog/internal/topstepx"
	"github.com/gw/topstepx-tradelog/internal/tradelog"
)

func main() {
	level := slog.LevelInfo
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		if err := level.UnmarshalText([]byte(v)); err != nil {
			fmt.Fprintf(os.Stderr, "bad LOG_LEVEL %q\n", v)
			os.Exit(1)
		}
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "sync":
		runSync(args)
	case "accounts":
		runAccounts()
	case "trades":
		runTrades(args)
	case "summary":
		runSummary(args)
	case "days":
		runDays(args)
	case "dow":
		runDayOfWeek(args)
	case "durations":
		runDurations(args)
	case "calendar":
		runCalendar(args)
	case "fees":
		runFees(args)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", cmd)
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: tradelog <command>

Commands:
  sync [days]           Fetch executions from TopstepX and rebuild the trade log
  accounts              List synced accounts
  trades [account] [N]  Show last N round trips (default 50)
  summary [account]     Show the performance summary
  days [account]        Show daily P&L with cumulative total
  dow [account]         Show day-of-week breakdown
  durations [account]   Show trade-duration breakdown
  calendar YYYY MM [account]
                        Show the monthly P&L calendar
  fees [set SYM FEE | remove SYM | list]
                        Manage custom round-turn fee overrides`)
}

func envDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func dbPath() string  { return envDefault("DATABASE_PATH", "data/trades.db") }
func feePath() string { return envDefault("FEE_OVERRIDES_PATH", "data/fees.yaml") }

func openStore() *tradelog.Store {
	store, err := tradelog.Open(dbPath())
	if err != nil {
		slog.Error("opening db", "err", err)
		os.Exit(1)
	}
	return store
}

func loadOverrides() *contract.Overrides {
	ov, err := contract.LoadOverrides(feePath())
	if err != nil {
		slog.Error("loading fee overrides", "err", err)
		os.Exit(1)
	}
	return ov
}

// pickAccount resolves the account to report on: an explicit id argument,
// or the only synced account when there is exactly one.
func pickAccount(store *tradelog.Store, args []string) int {
	if len(args) > 0 {
		if id, err := strconv.Atoi(args[0]); err == nil {
			return id
		}
	}

	accounts, err := store.GetAccounts(context.Background())
	if err != nil {
		slog.Error("listing accounts", "err", err)
		os.Exit(1)
	}
	if len(accounts) == 1 {
		return accounts[0].AccountID
	}

	fmt.Fprintln(os.Stderr, "multiple accounts synced; pass an account id:")
	for _, a := range accounts {
		fmt.Fprintf(os.Stderr, "  %d  %s\n", a.AccountID, a.Name)
	}
	os.Exit(1)
	return 0
}

func loadTrips(store *tradelog.Store, accountID int) []roundtrip.RoundTrip {
	trips, err := store.GetTrades(context.Background(), accountID, time.Time{}, time.Time{})
	if err != nil {
		slog.Error("query failed", "err", err)
		os.Exit(1)
	}
	if len(trips) == 0 {
		fmt.Println("No trades. Run 'tradelog sync' first.")
		os.Exit(0)
	}
	return trips
}

func runSync(args []string) {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config error", "err", err)
		os.Exit(1)
	}
	if len(args) > 0 {
		if n, err := strconv.Atoi(args[0]); err == nil {
			cfg.LookbackDays = n
		}
	}

	overrides, err := contract.LoadOverrides(cfg.FeeFile)
	if err != nil {
		slog.Error("loading fee overrides", "err", err)
		os.Exit(1)
	}

	client := topstepx.NewClient(cfg)
	ctx := context.Background()
	if err := client.Authenticate(ctx); err != nil {
		slog.Error("authentication failed", "err", err)
		os.Exit(1)
	}

	store, err := tradelog.Open(cfg.DBPath)
	if err != nil {
		slog.Error("opening db", "err", err)
		os.Exit(1)
	}
	defer store.Close()

	matcher := roundtrip.NewMatcher(contract.NewResolver(overrides))
	matcher.PricePnL = cfg.PricePnL

	if err := tradelog.Sync(ctx, client, store, matcher, cfg.LookbackDays); err != nil {
		slog.Error("sync failed", "err", err)
		os.Exit(1)
	}
	fmt.Println("Sync complete.")
}

func runAccounts() {
	store := openStore()
	defer store.Close()

	accounts, err := store.GetAccounts(context.Background())
	if err != nil {
		slog.Error("query failed", "err", err)
		os.Exit(1)
	}
	if len(accounts) == 0 {
		fmt.Println("No accounts. Run 'tradelog sync' first.")
		return
	}

	fmt.Printf("%-10s %-25s %12s %5s\n", "ID", "Name", "Balance", "Live")
	fmt.Println("-------------------------------------------------------")
	for _, a := range accounts {
		live := " "
		if a.IsLive {
			live = "Y"
		}
		fmt.Printf("%-10d %-25s %12s %5s\n", a.AccountID, a.Name, money(a.Balance), live)
	}
}

func runTrades(args []string) {
	store := openStore()
	defer store.Close()

	account := pickAccount(store, args)
	limit := 50
	if len(args) > 1 {
		if n, err := strconv.Atoi(args[1]); err == nil {
			limit = n
		}
	}

	trips := loadTrips(store, account)
	if len(trips) > limit {
		trips = trips[:limit]
	}

	fmt.Printf("%-20s %-20s %-5s %4s %10s %10s %10s %9s %10s\n",
		"Entry", "Symbol", "Side", "Qty", "Entry", "Exit", "P&L", "Fees", "Net")
	fmt.Println("----------------------------------------------------------------------------------------------------------")
	for _, tr := range trips {
		fmt.Printf("%-20s %-20s %-5s %4d %10.2f %10.2f %10s %9.2f %10s\n",
			tr.EntryTime.Format("2006-01-02 15:04:05"),
			tr.Symbol,
			tr.Side,
			tr.Quantity,
			tr.EntryPrice,
			tr.ExitPrice,
			money(tr.PnL),
			tr.Fees,
			money(tr.NetPnL()),
		)
	}
}

func runSummary(args []string) {
	store := openStore()
	defer store.Close()

	account := pickAccount(store, args)
	s := analytics.New(loadTrips(store, account)).Summary()

	fmt.Printf("Net P&L:           %s  (fees %s over %d trades, %d lots)\n",
		money(s.TotalPnL), money(s.TotalFees), s.TotalTrades, s.TotalLots)
	fmt.Printf("Win rate:          %.1f%%  (%d W / %d L)\n", s.WinRate, s.WinCount, s.LossCount)
	fmt.Printf("Avg win / loss:    %s / %s  (R:R %.2f)\n", money(s.AvgWin), money(s.AvgLoss), s.RRRatio)
	fmt.Printf("Profit factor:     %.2f  (gross %s / %s)\n", s.ProfitFactor, money(s.GrossProfit), money(s.GrossLoss))
	fmt.Printf("Trading days:      %d  (%.1f%% green, %.1f trades/day)\n", s.ActiveDays, s.DayWinPct, s.AvgTradesPerDay)
	fmt.Printf("Best day:          %.1f%% of gross profit\n", s.BestDayPct)
	fmt.Printf("Direction:         %.1f%% long / %.1f%% short\n", s.LongPct, s.ShortPct)
	fmt.Printf("Avg duration:      %s  (wins %s, losses %s)\n",
		analytics.FormatDuration(s.AvgDurationSeconds),
		analytics.FormatDuration(s.AvgWinDuration),
		analytics.FormatDuration(s.AvgLossDuration))
	fmt.Printf("Best trade:        %s  %s %s x%d %.2f -> %.2f (%s)\n",
		money(s.BestTrade.NetPnL), s.BestTrade.Side, s.BestTrade.Symbol, s.BestTrade.Quantity,
		s.BestTrade.EntryPrice, s.BestTrade.ExitPrice, s.BestTrade.ExitTime.Format("2006-01-02"))
	fmt.Printf("Worst trade:       %s  %s %s x%d %.2f -> %.2f (%s)\n",
		money(s.WorstTrade.NetPnL), s.WorstTrade.Side, s.WorstTrade.Symbol, s.WorstTrade.Quantity,
		s.WorstTrade.EntryPrice, s.WorstTrade.ExitPrice, s.WorstTrade.ExitTime.Format("2006-01-02"))
}

func runDays(args []string) {
	store := openStore()
	defer store.Close()

	account := pickAccount(store, args)
	stats := analytics.New(loadTrips(store, account)).DailyStats()

	fmt.Printf("%-12s %6s %4s %4s %12s %12s\n", "Date", "Trades", "W", "L", "Net P&L", "Cumulative")
	fmt.Println("------------------------------------------------------")
	for _, d := range stats {
		fmt.Printf("%-12s %6d %4d %4d %12s %12s\n",
			d.Date.Format("2006-01-02"), d.TradeCount, d.WinCount, d.LossCount,
			money(d.TotalPnL), money(d.CumulativePnL))
	}
}

func runDayOfWeek(args []string) {
	store := openStore()
	defer store.Close()

	account := pickAccount(store, args)
	stats := analytics.New(loadTrips(store, account)).DayOfWeek()

	fmt.Printf("%-10s %6s %8s %12s\n", "Day", "Trades", "Win%", "Net P&L")
	fmt.Println("---------------------------------------")
	for _, d := range stats {
		fmt.Printf("%-10s %6d %7.1f%% %12s\n", d.Day, d.TradeCount, d.WinRate, money(d.TotalPnL))
	}
}

func runDurations(args []string) {
	store := openStore()
	defer store.Close()

	account := pickAccount(store, args)
	buckets := analytics.New(loadTrips(store, account)).DurationBuckets()

	fmt.Printf("%-18s %6s %8s %12s\n", "Duration", "Trades", "Win%", "Net P&L")
	fmt.Println("-----------------------------------------------")
	for _, b := range buckets {
		fmt.Printf("%-18s %6d %7.1f%% %12s\n", b.Label, b.TradeCount, b.WinRate, money(b.TotalPnL))
	}
}

func runCalendar(args []string) {
	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: tradelog calendar YYYY MM [account]")
		os.Exit(1)
	}
	year, err := strconv.Atoi(args[0])
	if err != nil {
		slog.Error("bad year", "arg", args[0])
		os.Exit(1)
	}
	month, err := strconv.Atoi(args[1])
	if err != nil || month < 1 || month > 12 {
		slog.Error("bad month", "arg", args[1])
		os.Exit(1)
	}

	store := openStore()
	defer store.Close()

	account := pickAccount(store, args[2:])
	cal := analytics.New(loadTrips(store, account)).MonthlyCalendar(year, time.Month(month))
	if len(cal) == 0 {
		fmt.Printf("No trades in %04d-%02d.\n", year, month)
		return
	}

	fmt.Printf("%-4s %6s %12s\n", "Day", "Trades", "Net P&L")
	fmt.Println("------------------------")
	for day := 1; day <= 31; day++ {
		d, ok := cal[day]
		if !ok {
			continue
		}
		fmt.Printf("%-4d %6d %12s\n", day, d.TradeCount, money(d.TotalPnL))
	}
}

func runFees(args []string) {
	overrides := loadOverrides()
	resolver := contract.NewResolver(overrides)

	if len(args) == 0 {
		args = []string{"list"}
	}

	switch args[0] {
	case "list":
		syms := overrides.List()
		if len(syms) == 0 {
			fmt.Println("No custom fees set. Table fees apply.")
			return
		}
		fmt.Printf("%-8s %10s\n", "Symbol", "Fee/RT")
		fmt.Println("-------------------")
		for _, sym := range syms {
			fee, _ := overrides.Get(sym)
			fmt.Printf("%-8s %10.2f\n", sym, fee)
		}
	case "set":
		if len(args) < 3 {
			fmt.Fprintln(os.Stderr, "usage: tradelog fees set SYMBOL FEE")
			os.Exit(1)
		}
		fee, err := strconv.ParseFloat(args[2], 64)
		if err != nil || fee < 0 {
			slog.Error("bad fee", "arg", args[2])
			os.Exit(1)
		}
		base := resolver.BaseSymbol(args[1])
		overrides.Set(base, fee)
		if err := overrides.Save(); err != nil {
			slog.Error("saving overrides", "err", err)
			os.Exit(1)
		}
		fmt.Printf("Fee for %s set to %.2f per round turn.\n", base, fee)
	case "remove":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "usage: tradelog fees remove SYMBOL")
			os.Exit(1)
		}
		base := resolver.BaseSymbol(args[1])
		overrides.Remove(base)
		if err := overrides.Save(); err != nil {
			slog.Error("saving overrides", "err", err)
			os.Exit(1)
		}
		fmt.Printf("Custom fee for %s removed.\n", base)
	default:
		fmt.Fprintf(os.Stderr, "unknown fees subcommand: %s\n", args[0])
		os.Exit(1)
	}
}

func money(v float64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s$%.2f", sign, v)
}
