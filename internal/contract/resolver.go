package contract

import (
	"sort"
	"strings"
)

// Resolver normalizes raw contract identifiers and resolves their fee and
// point value. Custom per-symbol fees come from the attached override store;
// a nil store means table fees only.
type Resolver struct {
	overrides *Overrides
}

func NewResolver(overrides *Overrides) *Resolver {
	return &Resolver{overrides: overrides}
}

// knownByLength holds the table symbols longest-first so that prefix
// matching prefers "MES" over "ES".
var knownByLength = func() []string {
	syms := make([]string, 0, len(ExchangeFees))
	for s := range ExchangeFees {
		syms = append(syms, s)
	}
	sort.Slice(syms, func(i, j int) bool {
		if len(syms[i]) != len(syms[j]) {
			return len(syms[i]) > len(syms[j])
		}
		return syms[i] < syms[j]
	})
	return syms
}()

// BaseSymbol extracts the base contract code from a raw identifier.
//
//	"CON.F.US.MNQ.H26" -> "MNQ"
//	"CON.F.US.ENQ.H26" -> "NQ"
//	"F.US.MNQ"         -> "MNQ"
//	"MESZ4"            -> "MES"
//	"NQZ24"            -> "NQ"
func (r *Resolver) BaseSymbol(raw string) string {
	sym := strings.ToUpper(strings.TrimSpace(raw))

	// Dotted exchange formats (TopstepX/Rithmic).
	if parts := strings.Split(sym, "."); len(parts) >= 4 && parts[1] == "F" {
		return canonical(parts[3])
	} else if len(parts) == 3 && parts[0] == "F" {
		return canonical(parts[2])
	}

	// Longest-prefix match against the known symbol table.
	for _, known := range knownByLength {
		if strings.HasPrefix(sym, known) {
			return canonical(known)
		}
	}

	// Fallback: micro contracts are three letters, everything else two.
	if strings.HasPrefix(sym, "M") && len(sym) >= 3 {
		return sym[:3]
	}
	if len(sym) >= 2 {
		return sym[:2]
	}
	return sym
}

// FeePerRoundTurn resolves the total fee per round turn for a contract:
// the user override when one exists, otherwise exchange fee plus the NFA
// regulatory surcharge.
func (r *Resolver) FeePerRoundTurn(raw string) float64 {
	base := r.BaseSymbol(raw)
	if r.overrides != nil {
		if fee, ok := r.overrides.Get(base); ok {
			return fee
		}
	}
	exchange, ok := ExchangeFees[base]
	if !ok {
		exchange = DefaultExchangeFee
	}
	return exchange + NFAFeePerRT
}

// FeePerSide is half of the round-turn fee.
func (r *Resolver) FeePerSide(raw string) float64 {
	return r.FeePerRoundTurn(raw) / 2
}

// PointValue resolves the dollar value of one point of price movement.
func (r *Resolver) PointValue(raw string) float64 {
	if pv, ok := PointValues[r.BaseSymbol(raw)]; ok {
		return pv
	}
	return DefaultPointValue
}

func canonical(base string) string {
	if std, ok := aliases[base]; ok {
		return std
	}
	return base
}
