// Package analytics derives performance statistics from a set of
// reconstructed round-turn trades. Every figure is recomputed from
// scratch on each call; nothing here caches or mutates its input.
package analytics

import (
	"time"

	"github.com/gw/topstepx-tradelog/internal/roundtrip"
	"github.com/gw/topstepx-tradelog/internal/tradingday"
)

// Range is an optional trading-date window, inclusive on both ends.
// Zero times leave that end unbounded.
type Range struct {
	Start time.Time
	End   time.Time
}

// row is one trade with its derived per-trade figures.
type row struct {
	trip roundtrip.RoundTrip
	date time.Time // trading date of the entry
	key  string    // date as 2006-01-02
	net  float64
	win  bool
	loss bool
}

// Engine computes metrics over one account's round trips. Trades are
// assigned to trading days by the entry time under the given session rule.
type Engine struct {
	rule tradingday.SessionRule
	rows []row
}

func New(trips []roundtrip.RoundTrip) *Engine {
	return NewFiltered(trips, Range{})
}

// NewFiltered keeps only trades whose entry trading date falls inside r.
func NewFiltered(trips []roundtrip.RoundTrip, r Range) *Engine {
	return newEngine(tradingday.CME, trips, r)
}

func newEngine(rule tradingday.SessionRule, trips []roundtrip.RoundTrip, r Range) *Engine {
	e := &Engine{rule: rule}
	startKey, endKey := "", ""
	if !r.Start.IsZero() {
		startKey = r.Start.Format("2006-01-02")
	}
	if !r.End.IsZero() {
		endKey = r.End.Format("2006-01-02")
	}

	for _, tr := range trips {
		date := e.rule.TradingDate(tr.EntryTime)
		key := date.Format("2006-01-02")
		if startKey != "" && key < startKey {
			continue
		}
		if endKey != "" && key > endKey {
			continue
		}
		net := tr.NetPnL()
		e.rows = append(e.rows, row{
			trip: tr,
			date: date,
			key:  key,
			net:  net,
			win:  net > 0,
			loss: net < 0,
		})
	}
	return e
}

// TradeDetail carries the display fields for a best/worst trade.
type TradeDetail struct {
	NetPnL     float64
	Side       roundtrip.Side
	Symbol     string
	EntryPrice float64
	ExitPrice  float64
	Quantity   int
	ExitTime   time.Time
}

// SummaryMetrics is the full summary block. All ratios and percentages
// are 0 whenever their denominator is 0.
type SummaryMetrics struct {
	TotalPnL    float64
	TotalFees   float64
	TotalTrades int
	WinCount    int
	LossCount   int

	WinRate      float64 // percent
	AvgWin       float64
	AvgLoss      float64 // absolute value
	RRRatio      float64
	ProfitFactor float64
	GrossProfit  float64
	GrossLoss    float64 // absolute value

	TotalLots       int
	ActiveDays      int
	DayWinPct       float64
	AvgTradesPerDay float64
	BestDayPct      float64 // best day's net P&L as % of gross profit; can exceed 100 or go negative

	BestTrade  TradeDetail
	WorstTrade TradeDetail

	AvgDurationSeconds float64
	AvgWinDuration     float64
	AvgLossDuration    float64

	LongPct  float64
	ShortPct float64
}

// Summary computes all summary metrics in one pass over the trade set.
func (e *Engine) Summary() SummaryMetrics {
	var s SummaryMetrics
	if len(e.rows) == 0 {
		return s
	}

	var (
		winDur, lossDur, totalDur float64
		dailyPnL                  = map[string]float64{}
		longCount                 int
		best, worst               = e.rows[0], e.rows[0]
	)

	for _, r := range e.rows {
		s.TotalPnL += r.net
		s.TotalFees += r.trip.Fees
		s.TotalTrades++
		s.TotalLots += r.trip.Quantity
		totalDur += float64(r.trip.DurationSeconds)
		dailyPnL[r.key] += r.net

		if r.win {
			s.WinCount++
			s.GrossProfit += r.net
			winDur += float64(r.trip.DurationSeconds)
		} else if r.loss {
			s.LossCount++
			s.GrossLoss += -r.net
			lossDur += float64(r.trip.DurationSeconds)
		}
		if r.trip.Side == roundtrip.Long {
			longCount++
		}
		if r.net > best.net {
			best = r
		}
		if r.net < worst.net {
			worst = r
		}
	}

	s.WinRate = pct(s.WinCount, s.TotalTrades)
	if s.WinCount > 0 {
		s.AvgWin = s.GrossProfit / float64(s.WinCount)
		s.AvgWinDuration = winDur / float64(s.WinCount)
	}
	if s.LossCount > 0 {
		s.AvgLoss = s.GrossLoss / float64(s.LossCount)
		s.AvgLossDuration = lossDur / float64(s.LossCount)
	}
	if s.AvgLoss > 0 {
		s.RRRatio = s.AvgWin / s.AvgLoss
	}
	if s.GrossLoss > 0 {
		s.ProfitFactor = s.GrossProfit / s.GrossLoss
	}
	s.AvgDurationSeconds = totalDur / float64(s.TotalTrades)

	s.ActiveDays = len(dailyPnL)
	var winningDays int
	var bestDayPnL float64
	first := true
	for _, dayPnL := range dailyPnL {
		if dayPnL > 0 {
			winningDays++
		}
		if first || dayPnL > bestDayPnL {
			bestDayPnL = dayPnL
			first = false
		}
	}
	s.DayWinPct = pct(winningDays, s.ActiveDays)
	s.AvgTradesPerDay = float64(s.TotalTrades) / float64(s.ActiveDays)
	if s.GrossProfit > 0 {
		s.BestDayPct = bestDayPnL / s.GrossProfit * 100
	}

	s.LongPct = pct(longCount, s.TotalTrades)
	s.ShortPct = 100 - s.LongPct
	s.BestTrade = detail(best)
	s.WorstTrade = detail(worst)
	return s
}

func detail(r row) TradeDetail {
	return TradeDetail{
		NetPnL:     r.net,
		Side:       r.trip.Side,
		Symbol:     r.trip.Symbol,
		EntryPrice: r.trip.EntryPrice,
		ExitPrice:  r.trip.ExitPrice,
		Quantity:   r.trip.Quantity,
		ExitTime:   r.trip.ExitTime,
	}
}

func pct(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}
