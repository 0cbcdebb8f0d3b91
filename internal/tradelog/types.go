package tradelog

import "time"

type Account struct {
	AccountID int
	Name      string
	Balance   float64
	IsLive    bool // live funded account ("TOPX" in the name)
	UpdatedAt time.Time
}

// DailyStat is one row of the daily_stats table, recomputed in full on
// every sync.
type DailyStat struct {
	AccountID   int
	Date        string // trading date, 2006-01-02
	TotalPnL    float64
	TradeCount  int
	WinCount    int
	LossCount   int
	GrossProfit float64
	GrossLoss   float64
}
