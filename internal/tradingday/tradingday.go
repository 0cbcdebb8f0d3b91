// Package tradingday assigns executions to the trading session they belong
// to. CME sessions run overnight, so a fill before the local session start
// still counts toward the previous calendar date.
package tradingday

import "time"

// JST is the exchange-local reference zone (UTC+9).
var JST = time.FixedZone("JST", 9*3600)

// SessionRule names the session-start boundary used to bucket overnight
// fills. The summer/winter split is a month-level proxy for the US DST
// boundary, not the exact DST calendar.
type SessionRule struct {
	Zone        *time.Location
	SummerStart int        // session start hour in summer months
	WinterStart int        // session start hour in winter months
	SummerFrom  time.Month // first summer month, inclusive
	SummerTo    time.Month // last summer month, inclusive
}

// CME is the rule for CME futures viewed from JST: sessions open 07:00
// local March through October, 08:00 local November through February.
var CME = SessionRule{
	Zone:        JST,
	SummerStart: 7,
	WinterStart: 8,
	SummerFrom:  time.March,
	SummerTo:    time.October,
}

// SessionStartHour returns the local hour at which the session for the
// month of t begins.
func (r SessionRule) SessionStartHour(t time.Time) int {
	m := t.In(r.Zone).Month()
	if m >= r.SummerFrom && m <= r.SummerTo {
		return r.SummerStart
	}
	return r.WinterStart
}

// TradingDate maps an instant to its trading day, as midnight of that day
// in the rule's zone. Instants before the session start carry back to the
// previous calendar date.
func (r SessionRule) TradingDate(t time.Time) time.Time {
	local := t.In(r.Zone)
	if local.Hour() < r.SessionStartHour(t) {
		local = local.AddDate(0, 0, -1)
	}
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, r.Zone)
}

// TradingDate maps an instant to its CME trading day.
func TradingDate(t time.Time) time.Time {
	return CME.TradingDate(t)
}
