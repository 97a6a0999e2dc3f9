// market/instruments.go
package market

import "math"

// InstrumentMeta describes the broker-side properties of a tradable symbol.
type InstrumentMeta struct {
	Name                string
	BaseCurrency        string
	QuoteCurrency       string
	PipLocation         int
	TradeUnitsPrecision int
	MinimumTradeSize    float64
	MarginRate          float64
}

var Instruments = map[string]InstrumentMeta{
	"EUR_USD": {
		Name:                "EUR_USD",
		BaseCurrency:        "EUR",
		QuoteCurrency:       "USD",
		PipLocation:         -4,
		TradeUnitsPrecision: 0,
		MinimumTradeSize:    1,
		MarginRate:          0.02,
	},
	"GBP_USD": {
		Name:                "GBP_USD",
		BaseCurrency:        "GBP",
		QuoteCurrency:       "USD",
		PipLocation:         -4,
		TradeUnitsPrecision: 0,
		MinimumTradeSize:    1,
		MarginRate:          0.03,
	},
	"AUD_USD": {
		Name:                "AUD_USD",
		BaseCurrency:        "AUD",
		QuoteCurrency:       "USD",
		PipLocation:         -4,
		TradeUnitsPrecision: 0,
		MinimumTradeSize:    1,
		MarginRate:          0.03,
	},
	"USD_JPY": {
		Name:                "USD_JPY",
		BaseCurrency:        "USD",
		QuoteCurrency:       "JPY",
		PipLocation:         -2,
		TradeUnitsPrecision: 0,
		MinimumTradeSize:    1,
		MarginRate:          0.02,
	},
	"XAU_USD": {
		Name:                "XAU_USD",
		BaseCurrency:        "XAU",
		QuoteCurrency:       "USD",
		PipLocation:         -1,
		TradeUnitsPrecision: 0,
		MinimumTradeSize:    1,
		MarginRate:          0.05,
	},
	"XAG_USD": {
		Name:                "XAG_USD",
		BaseCurrency:        "XAG",
		QuoteCurrency:       "USD",
		PipLocation:         -4,
		TradeUnitsPrecision: 0,
		MinimumTradeSize:    1,
		MarginRate:          0.10,
	},
}

// Known reports whether the instrument has metadata configured.
func Known(instrument string) bool {
	_, ok := Instruments[instrument]
	return ok
}

// PipSize converts a pip location to its price size, e.g. -4 → 0.0001.
func PipSize(loc int) float64 {
	return math.Pow(10, float64(loc))
}
