package roundtrip

import (
	"math"
	"sort"
	"time"

	"github.com/gw/topstepx-tradelog/internal/contract"
)

// Matcher reconstructs round-turn trades from a time-ordered execution
// feed. Per-contract open-lot queues live only for the duration of one
// Reconstruct call.
type Matcher struct {
	Resolver *contract.Resolver

	// PricePnL leaves raw-fill P&L in price points instead of scaling it
	// by the contract point value, for feeds whose prices are already
	// dollar-denominated.
	PricePnL bool
}

func NewMatcher(resolver *contract.Resolver) *Matcher {
	return &Matcher{Resolver: resolver}
}

// Reconstruct matches the executions of one account into round trips.
// The input is not mutated; executions are processed in ascending
// timestamp order regardless of input order.
func (m *Matcher) Reconstruct(accountID int, execs []Execution, feed Feed) []RoundTrip {
	if feed == FeedOrders {
		return m.matchFills(accountID, execs)
	}
	return m.matchTrades(accountID, execs)
}

// openLeg is one queued opening execution awaiting its close.
type openLeg struct {
	side      Side
	price     float64
	size      int
	timestamp string
	fees      float64
}

// matchTrades handles the pre-matched feed: an execution carrying
// realized P&L closes the oldest queued opening leg for its contract.
// A closing leg with no queued entry is dropped.
func (m *Matcher) matchTrades(accountID int, execs []Execution) []RoundTrip {
	sorted := sortByTimestamp(execs)

	var trips []RoundTrip
	open := map[string][]openLeg{}

	for _, ex := range sorted {
		if ex.Size <= 0 {
			continue
		}
		if ex.PnL == nil {
			open[ex.ContractID] = append(open[ex.ContractID], openLeg{
				side:      ex.Side,
				price:     ex.Price,
				size:      ex.Size,
				timestamp: ex.Timestamp,
				fees:      ex.Fees,
			})
			continue
		}

		queue := open[ex.ContractID]
		if len(queue) == 0 {
			continue
		}
		entry := queue[0]
		open[ex.ContractID] = queue[1:]

		entryTime, exitTime, duration := legTimes(entry.timestamp, ex.Timestamp)
		trips = append(trips, RoundTrip{
			AccountID:       accountID,
			Symbol:          ex.ContractID,
			Side:            entry.side,
			EntryTime:       entryTime,
			ExitTime:        exitTime,
			EntryPrice:      entry.price,
			ExitPrice:       ex.Price,
			Quantity:        ex.Size,
			PnL:             *ex.PnL,
			Fees:            ex.Fees + entry.fees,
			DurationSeconds: duration,
		})
	}
	return trips
}

// position is the transient directional queue for one contract.
type position struct {
	side    Side // "" when flat
	entries []openLeg
}

// matchFills handles the raw fill feed. A fill in the direction of the
// current position adds a lot; an opposite fill consumes lots oldest
// first, emitting one round trip per lot touched, and any remainder
// flips the position.
func (m *Matcher) matchFills(accountID int, execs []Execution) []RoundTrip {
	sorted := sortByTimestamp(execs)

	var trips []RoundTrip
	positions := map[string]*position{}

	for _, ex := range sorted {
		if ex.Size <= 0 {
			continue
		}
		pos := positions[ex.ContractID]
		if pos == nil {
			pos = &position{}
			positions[ex.ContractID] = pos
		}

		if pos.side == "" || pos.side == ex.Side {
			pos.side = ex.Side
			pos.entries = append(pos.entries, openLeg{
				price:     ex.Price,
				size:      ex.Size,
				timestamp: ex.Timestamp,
			})
			continue
		}

		remaining := ex.Size
		for remaining > 0 && len(pos.entries) > 0 {
			entry := &pos.entries[0]
			closeSize := min(remaining, entry.size)

			entryTime, exitTime, duration := legTimes(entry.timestamp, ex.Timestamp)

			var pnl float64
			if pos.side == Long {
				pnl = (ex.Price - entry.price) * float64(closeSize)
			} else {
				pnl = (entry.price - ex.Price) * float64(closeSize)
			}
			if !m.PricePnL {
				pnl *= m.Resolver.PointValue(ex.ContractID)
			}
			fee := m.Resolver.FeePerRoundTurn(ex.ContractID) * float64(closeSize)

			trips = append(trips, RoundTrip{
				AccountID:       accountID,
				Symbol:          ex.ContractID,
				Side:            pos.side,
				EntryTime:       entryTime,
				ExitTime:        exitTime,
				EntryPrice:      entry.price,
				ExitPrice:       ex.Price,
				Quantity:        closeSize,
				PnL:             round2(pnl),
				Fees:            round2(fee),
				DurationSeconds: duration,
			})

			remaining -= closeSize
			entry.size -= closeSize
			if entry.size <= 0 {
				pos.entries = pos.entries[1:]
			}
		}

		if len(pos.entries) == 0 {
			pos.side = ""
		}

		// Remainder flips the position.
		if remaining > 0 {
			pos.side = ex.Side
			pos.entries = append(pos.entries, openLeg{
				price:     ex.Price,
				size:      remaining,
				timestamp: ex.Timestamp,
			})
		}
	}
	return trips
}

// sortByTimestamp returns a copy ordered by the raw ISO-8601 timestamp.
// UTC timestamps sort correctly as strings, so no parse is needed here.
func sortByTimestamp(execs []Execution) []Execution {
	sorted := make([]Execution, len(execs))
	copy(sorted, execs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp < sorted[j].Timestamp
	})
	return sorted
}

// legTimes parses both leg timestamps and derives the whole-second
// duration. Unparsable timestamps degrade to the zero time and a zero
// duration rather than failing the pass.
func legTimes(entryRaw, exitRaw string) (entry, exit time.Time, seconds int) {
	entry, okEntry := parseTime(entryRaw)
	exit, okExit := parseTime(exitRaw)
	if okEntry && okExit {
		if d := exit.Sub(entry); d > 0 {
			seconds = int(d.Seconds())
		}
	}
	return entry, exit, seconds
}

func parseTime(s string) (time.Time, bool) {
	t, err := time.Parse(time.RFC3339, s)
	return t, err == nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
