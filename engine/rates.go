package engine

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// RATE TABLE - Static currency conversion into the base currency
// =============================================================================

// RateTable converts foreign amounts into a single base currency using
// static per-currency factors (e.g. USD->INR: 84). Rates are a snapshot
// supplied by the caller; the engine never fetches live FX, which keeps
// every aggregation deterministic and replayable.
type RateTable struct {
	Base Currency
	// Rates maps a foreign currency to the number of base-currency units
	// per one foreign unit. The base currency itself needs no entry.
	Rates map[Currency]decimal.Decimal
}

// NewRateTable builds a table from float factors.
func NewRateTable(base Currency, rates map[Currency]float64) RateTable {
	t := RateTable{Base: base, Rates: make(map[Currency]decimal.Decimal, len(rates))}
	for c, r := range rates {
		t.Rates[c] = decimal.NewFromFloat(r)
	}
	return t
}

// Convert expresses m in the table's base currency. A missing rate for a
// non-base currency is an InvalidRateError: letting an unconverted amount
// flow into a roll-up would misstate money.
func (t RateTable) Convert(m Money) (Money, error) {
	if m.Currency == t.Base {
		return m, nil
	}
	rate, ok := t.Rates[m.Currency]
	if !ok {
		return Money{}, &InvalidRateError{
			Amount: m,
			Reason: "no conversion rate for currency " + string(m.Currency),
		}
	}
	return Money{Amount: m.Amount.Mul(rate), Currency: t.Base}, nil
}
