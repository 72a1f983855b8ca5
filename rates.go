package lotfolio

import (
	"github.com/shopspring/decimal"
)

// baseCurrency is the pivot of every rate table: a RateSlice quotes each
// currency as the number of ILS one unit is worth.
const baseCurrency = ILS

// RateSlice quotes currencies against the base at one point in time.
// The key is the currency code, the value is ILS per one unit.
type RateSlice map[string]decimal.Decimal

// agorotRate is the fixed ILA quotation: 1 agora is 0.01 ILS. It is not a
// market rate, so every slice answers it without a table entry.
var agorotRate = decimal.New(1, -2)

// rate returns the base value of one unit of currency, and whether the slice
// knows that currency.
func (s RateSlice) rate(currency string) (decimal.Decimal, bool) {
	switch currency {
	case baseCurrency:
		return decimal.New(1, 0), true
	case ILA:
		return agorotRate, true
	}
	r, ok := s[currency]
	return r, ok
}

// Convert converts an amount between two currencies by pivoting through the
// base. An unknown currency converts to zero; the table handed to the engine
// is assumed complete, recovery belongs to the I/O boundary.
func (s RateSlice) Convert(m Money, to string) Money {
	if m.Currency() == to {
		return m
	}
	from, okFrom := s.rate(m.Currency())
	target, okTo := s.rate(to)
	if !okFrom || !okTo || target.IsZero() {
		return M(0, to)
	}
	return M(m.Decimal().Mul(from).Div(target), to)
}

// Rate returns how many units of to one unit of from is worth, zero when
// either side is unknown.
func (s RateSlice) Rate(from, to string) decimal.Decimal {
	f, okFrom := s.rate(from)
	t, okTo := s.rate(to)
	if !okFrom || !okTo || t.IsZero() {
		return decimal.Zero
	}
	return f.Div(t)
}

// RateTable is the exchange-rate context handed to the engine: the current
// slice plus a set of relative historical slices used by the performance
// calculator and by historical-fact conversion fallbacks.
type RateTable struct {
	Current RateSlice
	At      map[Window]RateSlice
}

// NewRateTable returns a table with the given current slice and no
// historical slices.
func NewRateTable(current RateSlice) *RateTable {
	return &RateTable{Current: current, At: make(map[Window]RateSlice)}
}

// BuildRateTable assembles a table from per-currency daily ILS rate series:
// the latest sample of each series becomes the current slice, and each
// relative window gets the slice in force at its start date.
func BuildRateTable(series map[string]*History, now Date) *RateTable {
	t := NewRateTable(RateSlice{})
	for cur, h := range series {
		if h.Len() == 0 {
			continue
		}
		_, v := h.Latest()
		t.Current[cur] = decimal.NewFromFloat(v)
	}
	for _, w := range Windows {
		slice := RateSlice{}
		for cur, h := range series {
			if v, ok := h.AsOf(w.Start(now)); ok {
				slice[cur] = decimal.NewFromFloat(v)
			}
		}
		if len(slice) > 0 {
			t.At[w] = slice
		}
	}
	return t
}

// Convert converts via the current slice. A nil table converts everything to
// zero, so callers do not need to guard.
func (t *RateTable) Convert(m Money, to string) Money {
	if t == nil {
		return M(0, to)
	}
	return t.Current.Convert(m, to)
}

// Rate returns the current from->to rate.
func (t *RateTable) Rate(from, to string) decimal.Decimal {
	if t == nil {
		return decimal.Zero
	}
	return t.Current.Rate(from, to)
}

// ConvertAt converts via the historical slice of the given window, falling
// back to the current slice when that window was never loaded.
func (t *RateTable) ConvertAt(w Window, m Money, to string) Money {
	if t == nil {
		return M(0, to)
	}
	if s, ok := t.At[w]; ok {
		return s.Convert(m, to)
	}
	return t.Current.Convert(m, to)
}
