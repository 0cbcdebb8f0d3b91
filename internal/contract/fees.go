package contract

// Fee schedule for TopstepX live funded accounts, per round turn.
// Source: Topstep commission table, February 2025.

// NFAFeePerRT is the regulatory (NFA) fee applied to every contract.
const NFAFeePerRT = 0.04

// DefaultExchangeFee is used for contracts missing from the table.
const DefaultExchangeFee = 2.76

// DefaultPointValue is used for contracts missing from the table.
const DefaultPointValue = 1

// ExchangeFees maps base symbol to exchange fee per round turn.
var ExchangeFees = map[string]float64{
	// CME equity index
	"ES":  2.76, // E-mini S&P 500
	"NQ":  2.76, // E-mini Nasdaq 100
	"RTY": 2.76, // E-mini Russell 2000
	"YM":  2.76, // E-mini Dow
	"MES": 0.70, // Micro E-mini S&P 500
	"MNQ": 0.70, // Micro E-mini Nasdaq 100
	"M2K": 0.70, // Micro E-mini Russell 2000
	"MYM": 0.70, // Micro E-mini Dow

	// CME FX
	"6A":  3.20, // Australian Dollar
	"6B":  3.20, // British Pound
	"6C":  3.20, // Canadian Dollar
	"6E":  3.20, // Euro
	"6J":  3.20, // Japanese Yen
	"6S":  3.20, // Swiss Franc
	"6N":  3.20, // New Zealand Dollar
	"6M":  3.20, // Mexican Peso
	"M6A": 0.48, // Micro AUD
	"M6B": 0.48, // Micro GBP
	"M6E": 0.48, // Micro EUR

	// COMEX metals
	"GC":  3.20, // Gold
	"SI":  3.20, // Silver
	"HG":  3.20, // Copper
	"MGC": 1.20, // Micro Gold
	"SIL": 1.20, // Micro Silver (1000 oz)

	// NYMEX energy
	"CL":  3.20, // Crude Oil
	"NG":  3.20, // Natural Gas
	"MCL": 1.20, // Micro Crude Oil
	"MNG": 1.20, // Micro Natural Gas

	// CME agricultural
	"LE": 4.20, // Live Cattle
	"HE": 4.20, // Lean Hogs
	"ZC": 3.20, // Corn
	"ZS": 3.20, // Soybeans
	"ZW": 3.20, // Wheat
}

// PointValues maps base symbol to the dollar value of one point of price
// movement for one contract.
var PointValues = map[string]float64{
	// CME equity index
	"ES":  50,
	"NQ":  20,
	"RTY": 50,
	"YM":  5,
	"MES": 5,
	"MNQ": 2,
	"M2K": 5,
	"MYM": 0.5,

	// CME FX
	"6A":  100000,
	"6B":  62500,
	"6C":  100000,
	"6E":  125000,
	"6J":  12500000,
	"6S":  125000,
	"6N":  100000,
	"6M":  500000,
	"M6A": 10000,
	"M6B": 6250,
	"M6E": 12500,

	// COMEX metals
	"GC":  100,
	"SI":  5000,
	"HG":  25000,
	"MGC": 10,
	"SIL": 1000,

	// NYMEX energy
	"CL":  1000,
	"NG":  10000,
	"MCL": 100,
	"MNG": 1000,

	// CME agricultural
	"LE": 400,
	"HE": 400,
	"ZC": 50,
	"ZS": 50,
	"ZW": 50,
}

// aliases maps exchange-reported synonyms to the standard symbol.
var aliases = map[string]string{
	"ENQ": "NQ", // E-mini Nasdaq
	"EMD": "ES", // E-mini S&P (alternative)
}
