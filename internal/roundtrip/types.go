package roundtrip

import "time"

type Side string

const (
	Long  Side = "Long"
	Short Side = "Short"
)

// Opposite returns the other direction.
func (s Side) Opposite() Side {
	if s == Long {
		return Short
	}
	return Long
}

// Feed identifies which execution feed an account delivers.
type Feed int

const (
	// FeedTrades is the pre-matched feed: closing executions already carry
	// realized P&L (TopstepX Trade/search, sim and eval accounts).
	FeedTrades Feed = iota
	// FeedOrders is the raw fill feed: plain fills that need explicit
	// FIFO matching and flip detection (Order/search, live accounts).
	FeedOrders
)

// Execution is one fill or trade event as delivered by the API.
// Timestamp is the raw ISO-8601 string as received; it is only parsed
// when durations are computed.
type Execution struct {
	ContractID string
	Side       Side
	Size       int
	Price      float64
	Timestamp  string
	PnL        *float64 // realized P&L, pre-matched feed only
	Fees       float64  // feed-reported fee for this leg
}

// RoundTrip is a matched opening/closing pair treated as one completed
// trade. Identity is (AccountID, Symbol, EntryTime, ExitTime); the store
// upserts on that key.
type RoundTrip struct {
	AccountID       int
	Symbol          string // raw contract id as seen, not normalized
	Side            Side   // entry side
	EntryTime       time.Time
	ExitTime        time.Time
	EntryPrice      float64
	ExitPrice       float64
	Quantity        int
	PnL             float64
	Fees            float64
	DurationSeconds int
}

// NetPnL is P&L after fees, the figure all analytics are based on.
func (r *RoundTrip) NetPnL() float64 {
	return r.PnL - r.Fees
}
