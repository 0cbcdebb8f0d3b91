package roundtrip

import (
	"testing"
	"time"

	"github.com/gw/topstepx-tradelog/internal/contract"
)

func ts(sec int) string {
	return time.Date(2025, time.July, 15, 14, 0, sec, 0, time.UTC).Format(time.RFC3339)
}

func pnl(v float64) *float64 { return &v }

func newMatcher() *Matcher {
	return NewMatcher(contract.NewResolver(nil))
}

func TestMatchTrades(t *testing.T) {
	m := newMatcher()
	execs := []Execution{
		{ContractID: "CON.F.US.MNQ.H26", Side: Long, Size: 2, Price: 21000, Timestamp: ts(0), Fees: 0.74},
		{ContractID: "CON.F.US.MNQ.H26", Side: Short, Size: 2, Price: 21010, Timestamp: ts(30), PnL: pnl(40), Fees: 0.74},
	}

	trips := m.Reconstruct(101, execs, FeedTrades)
	if len(trips) != 1 {
		t.Fatalf("got %d trips, want 1", len(trips))
	}
	tr := trips[0]
	if tr.AccountID != 101 || tr.Symbol != "CON.F.US.MNQ.H26" {
		t.Errorf("identity = %d %q", tr.AccountID, tr.Symbol)
	}
	if tr.Side != Long {
		t.Errorf("side = %s, want entry side Long", tr.Side)
	}
	if tr.EntryPrice != 21000 || tr.ExitPrice != 21010 {
		t.Errorf("prices = %v/%v", tr.EntryPrice, tr.ExitPrice)
	}
	if tr.PnL != 40 {
		t.Errorf("pnl = %v, want feed-reported 40", tr.PnL)
	}
	if tr.Fees != 1.48 {
		t.Errorf("fees = %v, want entry+exit 1.48", tr.Fees)
	}
	if tr.Quantity != 2 || tr.DurationSeconds != 30 {
		t.Errorf("qty/duration = %d/%d", tr.Quantity, tr.DurationSeconds)
	}
}

func TestMatchTradesUnmatchedCloseDropped(t *testing.T) {
	m := newMatcher()
	execs := []Execution{
		{ContractID: "ESH5", Side: Short, Size: 1, Price: 5000, Timestamp: ts(0), PnL: pnl(-25)},
	}
	if trips := m.Reconstruct(1, execs, FeedTrades); len(trips) != 0 {
		t.Errorf("got %d trips, want 0 for close with no entry", len(trips))
	}
}

func TestMatchTradesFIFOPerContract(t *testing.T) {
	m := newMatcher()
	execs := []Execution{
		{ContractID: "ESH5", Side: Long, Size: 1, Price: 5000, Timestamp: ts(0)},
		{ContractID: "NQZ24", Side: Short, Size: 1, Price: 21000, Timestamp: ts(1)},
		{ContractID: "ESH5", Side: Long, Size: 1, Price: 5010, Timestamp: ts(2)},
		{ContractID: "ESH5", Side: Short, Size: 1, Price: 5020, Timestamp: ts(10), PnL: pnl(1000)},
		{ContractID: "NQZ24", Side: Long, Size: 1, Price: 20990, Timestamp: ts(11), PnL: pnl(200)},
	}

	trips := m.Reconstruct(1, execs, FeedTrades)
	if len(trips) != 2 {
		t.Fatalf("got %d trips, want 2", len(trips))
	}
	// Oldest ES entry matched first.
	if trips[0].Symbol != "ESH5" || trips[0].EntryPrice != 5000 {
		t.Errorf("first trip = %q entry %v, want oldest ES entry 5000", trips[0].Symbol, trips[0].EntryPrice)
	}
	if trips[1].Symbol != "NQZ24" || trips[1].Side != Short {
		t.Errorf("second trip = %q %s, want NQ short", trips[1].Symbol, trips[1].Side)
	}
}

func TestMatchFillsLongRoundTrip(t *testing.T) {
	m := newMatcher()
	execs := []Execution{
		{ContractID: "CON.F.US.MNQ.H26", Side: Long, Size: 1, Price: 21000, Timestamp: ts(0)},
		{ContractID: "CON.F.US.MNQ.H26", Side: Short, Size: 1, Price: 21010.5, Timestamp: ts(44)},
	}

	trips := m.Reconstruct(7, execs, FeedOrders)
	if len(trips) != 1 {
		t.Fatalf("got %d trips, want 1", len(trips))
	}
	tr := trips[0]
	// 10.5 points x MNQ point value 2
	if tr.PnL != 21 {
		t.Errorf("pnl = %v, want 21", tr.PnL)
	}
	if tr.Fees != 0.74 {
		t.Errorf("fees = %v, want MNQ round turn 0.74", tr.Fees)
	}
	if tr.Side != Long || tr.Quantity != 1 || tr.DurationSeconds != 44 {
		t.Errorf("side/qty/duration = %s/%d/%d", tr.Side, tr.Quantity, tr.DurationSeconds)
	}
}

func TestMatchFillsShortPnLSign(t *testing.T) {
	m := newMatcher()
	execs := []Execution{
		{ContractID: "ESH5", Side: Short, Size: 2, Price: 5000, Timestamp: ts(0)},
		{ContractID: "ESH5", Side: Long, Size: 2, Price: 5002, Timestamp: ts(10)},
	}

	trips := m.Reconstruct(7, execs, FeedOrders)
	if len(trips) != 1 {
		t.Fatalf("got %d trips, want 1", len(trips))
	}
	// Short loses 2 points x ES point value 50 x 2 contracts.
	if trips[0].PnL != -200 {
		t.Errorf("pnl = %v, want -200", trips[0].PnL)
	}
	if trips[0].Fees != 5.60 {
		t.Errorf("fees = %v, want 2x2.80", trips[0].Fees)
	}
}

func TestMatchFillsPricePnL(t *testing.T) {
	m := newMatcher()
	m.PricePnL = true
	execs := []Execution{
		{ContractID: "CON.F.US.MNQ.H26", Side: Long, Size: 1, Price: 21000, Timestamp: ts(0)},
		{ContractID: "CON.F.US.MNQ.H26", Side: Short, Size: 1, Price: 21010.5, Timestamp: ts(5)},
	}

	trips := m.Reconstruct(7, execs, FeedOrders)
	if len(trips) != 1 {
		t.Fatalf("got %d trips, want 1", len(trips))
	}
	if trips[0].PnL != 10.5 {
		t.Errorf("pnl = %v, want unscaled 10.5", trips[0].PnL)
	}
}

func TestMatchFillsSweepsMultipleEntries(t *testing.T) {
	m := newMatcher()
	execs := []Execution{
		{ContractID: "ESH5", Side: Long, Size: 1, Price: 5000, Timestamp: ts(0)},
		{ContractID: "ESH5", Side: Long, Size: 2, Price: 5001, Timestamp: ts(1)},
		{ContractID: "ESH5", Side: Short, Size: 3, Price: 5003, Timestamp: ts(20)},
	}

	trips := m.Reconstruct(7, execs, FeedOrders)
	if len(trips) != 2 {
		t.Fatalf("got %d trips, want one per entry consumed", len(trips))
	}
	if trips[0].EntryPrice != 5000 || trips[0].Quantity != 1 {
		t.Errorf("first trip entry/qty = %v/%d", trips[0].EntryPrice, trips[0].Quantity)
	}
	if trips[1].EntryPrice != 5001 || trips[1].Quantity != 2 {
		t.Errorf("second trip entry/qty = %v/%d", trips[1].EntryPrice, trips[1].Quantity)
	}
	var total int
	for _, tr := range trips {
		total += tr.Quantity
	}
	if total != 3 {
		t.Errorf("closed quantity = %d, want 3 (nothing fabricated)", total)
	}
}

func TestMatchFillsPartialClose(t *testing.T) {
	m := newMatcher()
	execs := []Execution{
		{ContractID: "ESH5", Side: Long, Size: 3, Price: 5000, Timestamp: ts(0)},
		{ContractID: "ESH5", Side: Short, Size: 1, Price: 5001, Timestamp: ts(10)},
		{ContractID: "ESH5", Side: Short, Size: 2, Price: 5002, Timestamp: ts(20)},
	}

	trips := m.Reconstruct(7, execs, FeedOrders)
	if len(trips) != 2 {
		t.Fatalf("got %d trips, want 2", len(trips))
	}
	if trips[0].Quantity != 1 || trips[1].Quantity != 2 {
		t.Errorf("quantities = %d/%d, want 1/2", trips[0].Quantity, trips[1].Quantity)
	}
	// Both close against the same lot's entry price.
	if trips[0].EntryPrice != 5000 || trips[1].EntryPrice != 5000 {
		t.Errorf("entry prices = %v/%v, want 5000/5000", trips[0].EntryPrice, trips[1].EntryPrice)
	}
}

func TestMatchFillsFlip(t *testing.T) {
	m := newMatcher()
	execs := []Execution{
		{ContractID: "ESH5", Side: Long, Size: 1, Price: 5000, Timestamp: ts(0)},
		// Sell 3: closes the long 1, flips short 2.
		{ContractID: "ESH5", Side: Short, Size: 3, Price: 5005, Timestamp: ts(10)},
		// Buy 2 closes the flipped short.
		{ContractID: "ESH5", Side: Long, Size: 2, Price: 5001, Timestamp: ts(20)},
	}

	trips := m.Reconstruct(7, execs, FeedOrders)
	if len(trips) != 2 {
		t.Fatalf("got %d trips, want 2", len(trips))
	}
	if trips[0].Side != Long || trips[0].Quantity != 1 {
		t.Errorf("first trip = %s x%d, want Long x1", trips[0].Side, trips[0].Quantity)
	}
	if trips[1].Side != Short || trips[1].Quantity != 2 {
		t.Errorf("flip trip = %s x%d, want Short x2", trips[1].Side, trips[1].Quantity)
	}
	if trips[1].EntryPrice != 5005 || trips[1].ExitPrice != 5001 {
		t.Errorf("flip prices = %v/%v, want entry 5005 exit 5001", trips[1].EntryPrice, trips[1].ExitPrice)
	}
	// Short 4 points x 50 x 2 contracts.
	if trips[1].PnL != 400 {
		t.Errorf("flip pnl = %v, want 400", trips[1].PnL)
	}
}

func TestUnparsableTimestampDegradesToZeroDuration(t *testing.T) {
	m := newMatcher()
	execs := []Execution{
		{ContractID: "ESH5", Side: Long, Size: 1, Price: 5000, Timestamp: "not-a-time"},
		{ContractID: "ESH5", Side: Short, Size: 1, Price: 5001, Timestamp: "yet-another"},
	}

	trips := m.Reconstruct(7, execs, FeedOrders)
	if len(trips) != 1 {
		t.Fatalf("got %d trips, want 1 (batch must not abort)", len(trips))
	}
	if trips[0].DurationSeconds != 0 {
		t.Errorf("duration = %d, want 0", trips[0].DurationSeconds)
	}
}

func TestReconstructInvariants(t *testing.T) {
	m := newMatcher()
	execs := []Execution{
		{ContractID: "CON.F.US.MNQ.H26", Side: Long, Size: 2, Price: 21000, Timestamp: ts(0)},
		{ContractID: "CON.F.US.MNQ.H26", Side: Short, Size: 5, Price: 21005, Timestamp: ts(3)},
		{ContractID: "CON.F.US.MNQ.H26", Side: Long, Size: 3, Price: 21002, Timestamp: ts(9)},
		{ContractID: "ESH5", Side: Short, Size: 1, Price: 5000, Timestamp: ts(1)},
		{ContractID: "ESH5", Side: Long, Size: 1, Price: 4999, Timestamp: ts(4)},
	}

	for _, tr := range m.Reconstruct(7, execs, FeedOrders) {
		if tr.Quantity <= 0 {
			t.Errorf("quantity = %d, want > 0", tr.Quantity)
		}
		if tr.ExitTime.Before(tr.EntryTime) {
			t.Errorf("exit %v before entry %v", tr.ExitTime, tr.EntryTime)
		}
		if tr.Fees < 0 {
			t.Errorf("fees = %v, want >= 0", tr.Fees)
		}
		if tr.DurationSeconds < 0 {
			t.Errorf("duration = %d, want >= 0", tr.DurationSeconds)
		}
	}
}

func TestReconstructSortsInput(t *testing.T) {
	m := newMatcher()
	// Exit delivered before entry; sorting must fix the order.
	execs := []Execution{
		{ContractID: "ESH5", Side: Short, Size: 1, Price: 5002, Timestamp: ts(30)},
		{ContractID: "ESH5", Side: Long, Size: 1, Price: 5000, Timestamp: ts(0)},
	}

	trips := m.Reconstruct(7, execs, FeedOrders)
	if len(trips) != 1 {
		t.Fatalf("got %d trips, want 1", len(trips))
	}
	if trips[0].Side != Long || trips[0].PnL != 100 {
		t.Errorf("trip = %s pnl %v, want Long pnl 100", trips[0].Side, trips[0].PnL)
	}
}
