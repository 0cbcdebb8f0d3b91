package analytics

import (
	"fmt"
	"sort"
	"time"
)

// DailyStat aggregates one trading day.
type DailyStat struct {
	Date          time.Time
	TotalPnL      float64
	TradeCount    int
	WinCount      int
	LossCount     int
	GrossProfit   float64
	GrossLoss     float64
	CumulativePnL float64
}

// DailyStats groups trades by trading day, oldest first, with a running
// cumulative net P&L.
func (e *Engine) DailyStats() []DailyStat {
	byDay := map[string]*DailyStat{}
	for _, r := range e.rows {
		d := byDay[r.key]
		if d == nil {
			d = &DailyStat{Date: r.date}
			byDay[r.key] = d
		}
		d.TotalPnL += r.net
		d.TradeCount++
		if r.win {
			d.WinCount++
			d.GrossProfit += r.net
		} else if r.loss {
			d.LossCount++
			d.GrossLoss += -r.net
		}
	}

	stats := make([]DailyStat, 0, len(byDay))
	for _, d := range byDay {
		stats = append(stats, *d)
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Date.Before(stats[j].Date) })

	var cum float64
	for i := range stats {
		cum += stats[i].TotalPnL
		stats[i].CumulativePnL = cum
	}
	return stats
}

// DayOfWeekStat aggregates trades falling on one weekday.
type DayOfWeekStat struct {
	Day        time.Weekday
	TradeCount int
	TotalPnL   float64
	WinRate    float64
}

// DayOfWeek breaks trades down Monday through Friday by the weekday of
// their trading date. Weekdays without trades are omitted.
func (e *Engine) DayOfWeek() []DayOfWeekStat {
	counts := map[time.Weekday]*DayOfWeekStat{}
	wins := map[time.Weekday]int{}
	for _, r := range e.rows {
		wd := r.date.Weekday()
		s := counts[wd]
		if s == nil {
			s = &DayOfWeekStat{Day: wd}
			counts[wd] = s
		}
		s.TradeCount++
		s.TotalPnL += r.net
		if r.win {
			wins[wd]++
		}
	}

	var stats []DayOfWeekStat
	for wd := time.Monday; wd <= time.Friday; wd++ {
		s := counts[wd]
		if s == nil {
			continue
		}
		s.WinRate = pct(wins[wd], s.TradeCount)
		stats = append(stats, *s)
	}
	return stats
}

// DurationBucket is one populated half-open duration range.
type DurationBucket struct {
	Label      string
	MinSeconds int
	MaxSeconds int // exclusive; -1 for unbounded
	TradeCount int
	WinRate    float64
	TotalPnL   float64
}

// durationRanges are the fixed half-open buckets, in seconds.
var durationRanges = []struct {
	label    string
	min, max int
}{
	{"Under 15 sec", 0, 15},
	{"15-45 sec", 15, 45},
	{"45 sec - 1 min", 45, 60},
	{"1 min - 2 min", 60, 120},
	{"2 min - 5 min", 120, 300},
	{"5 min - 10 min", 300, 600},
	{"10 min - 30 min", 600, 1800},
	{"30 min - 1 hour", 1800, 3600},
	{"1 hour - 2 hours", 3600, 7200},
	{"2 hours - 4 hours", 7200, 14400},
	{"4 hours and up", 14400, -1},
}

// DurationBuckets groups trades into the fixed duration ranges. Empty
// buckets are omitted.
func (e *Engine) DurationBuckets() []DurationBucket {
	var buckets []DurationBucket
	for _, br := range durationRanges {
		b := DurationBucket{Label: br.label, MinSeconds: br.min, MaxSeconds: br.max}
		var wins int
		for _, r := range e.rows {
			d := r.trip.DurationSeconds
			if d < br.min || (br.max >= 0 && d >= br.max) {
				continue
			}
			b.TradeCount++
			b.TotalPnL += r.net
			if r.win {
				wins++
			}
		}
		if b.TradeCount == 0 {
			continue
		}
		b.WinRate = pct(wins, b.TradeCount)
		buckets = append(buckets, b)
	}
	return buckets
}

// CalendarDay is one day of a monthly calendar aggregate.
type CalendarDay struct {
	TotalPnL   float64
	TradeCount int
}

// MonthlyCalendar returns per-day totals for the given month, keyed by
// day of month. Days without trades are absent.
func (e *Engine) MonthlyCalendar(year int, month time.Month) map[int]CalendarDay {
	days := map[int]CalendarDay{}
	for _, r := range e.rows {
		if r.date.Year() != year || r.date.Month() != month {
			continue
		}
		d := days[r.date.Day()]
		d.TotalPnL += r.net
		d.TradeCount++
		days[r.date.Day()] = d
	}
	return days
}

// FormatDuration renders seconds as a short human-readable string.
func FormatDuration(seconds float64) string {
	s := int(seconds)
	switch {
	case s < 60:
		return fmt.Sprintf("%d sec", s)
	case s < 3600:
		return fmt.Sprintf("%d min %d sec", s/60, s%60)
	default:
		return fmt.Sprintf("%d hr %d min", s/3600, (s%3600)/60)
	}
}
