package lotfolio

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Well-known currency codes. ILA is the agorot quotation used by the Tel-Aviv
// exchange: 100 ILA == 1 ILS.
const (
	ILS = "ILS"
	ILA = "ILA"
	USD = "USD"
	EUR = "EUR"
)

// Money represents a monetary value: an exact decimal amount and a currency.
type Money struct {
	value decimal.Decimal // as major unit value
	cur   string
}

func M[T float32 | float64 | int | int32 | int64 | decimal.Decimal](value T, currency string) Money {
	return Money{value: newDecimal(value), cur: currency}
}

// currency returns the money's full currency definition.
func (m Money) currency() money.Currency {
	// calling the go-money constructor is the way to get a never-nil currency
	return *money.New(0, m.cur).Currency()
}

// String returns the string representation of the money value.
func (m Money) String() string {
	cur := m.currency()
	dec := m.value.Shift(int32(cur.Fraction))
	return cur.Formatter().Format(dec.IntPart())
}

// SignedString returns the representation with an explicit sign, "-" for zero.
func (m Money) SignedString() string {
	if m.value.IsZero() {
		return "-"
	}
	if m.value.IsPositive() {
		return "+" + m.String()
	}
	return m.String()
}

func (m Money) Currency() string             { return m.cur }
func (m Money) Equal(n Money) bool           { return m.value.Equal(n.value) && m.cur == n.cur }
func (m Money) IsZero() bool                 { return m.value.IsZero() }
func (m Money) IsPositive() bool             { return m.value.IsPositive() }
func (m Money) IsNegative() bool             { return m.value.IsNegative() }
func (m Money) LessThan(n Money) bool        { return m.value.LessThan(n.value) }
func (m Money) GreaterThan(n Money) bool     { return m.value.GreaterThan(n.value) }
func (m Money) Neg() Money                   { return Money{value: m.value.Neg(), cur: m.cur} }
func (m Money) Abs() Money                   { return Money{value: m.value.Abs(), cur: m.cur} }
func (m Money) Mul(n Quantity) Money         { return Money{value: m.value.Mul(n.value), cur: m.cur} }
func (m Money) MulDec(d decimal.Decimal) Money {
	return Money{value: m.value.Mul(d), cur: m.cur}
}
func (m Money) Decimal() decimal.Decimal { return m.value }

// Div divides by a quantity, yielding zero on a zero denominator.
func (m Money) Div(n Quantity) Money {
	if n.value.IsZero() {
		return Money{cur: m.cur}
	}
	return Money{value: m.value.Div(n.value), cur: m.cur}
}

// Ratio returns m/n as a bare decimal, zero when n is zero.
func (m Money) Ratio(n Money) decimal.Decimal {
	if n.value.IsZero() {
		return decimal.Zero
	}
	return m.value.Div(n.value)
}

// binary operators.
func (m Money) Add(n Money) Money { return Money{value: m.value.Add(n.value), cur: cur(m, n)} }
func (m Money) Sub(n Money) Money { return Money{value: m.value.Sub(n.value), cur: cur(m, n)} }

// makes the "" currency totally weak.
func cur(a, b Money) string {
	if a.cur == "" {
		return b.cur
	}
	if b.cur == "" {
		return a.cur
	}
	if a.cur != b.cur {
		panic("currency mismatch " + a.cur + "!=" + b.cur)
	}
	return a.cur
}

// AsFloat is for display boundaries only; the ledger keeps exact decimals.
func (m Money) AsFloat() float64 { return m.value.InexactFloat64() }

func (m Money) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Optional("currency", m.cur)
	w.Append("amount", m.value)
	return w.MarshalJSON()
}

// domestic reports whether a currency is an ILS-base quotation. An ILA-priced
// instrument in an ILS portfolio is still a domestic position.
func domestic(currency string) bool { return currency == ILS || currency == ILA }

// HistoricValue is a monetary fact frozen at the time it happened: the
// original amount plus conversion snapshots taken from the best
// source-of-truth rate available at that time.
//
// The snapshots are set once at construction and never recomputed. Any later
// display of the fact in another currency must prefer them over re-converting
// the amount at today's rate; re-converting would inject apparent gain or
// loss from nothing but FX movement since the original event.
type HistoricValue struct {
	Amount          Money           // in the original currency
	RateToPortfolio decimal.Decimal // original currency -> portfolio currency, at event time
	InUSD           Money
	InILS           Money
}

// Freeze captures amount with conversion snapshots taken from rates as they
// stand now. Use FreezeReported instead when a broker-reported historical
// price is available.
func Freeze(amount Money, portfolioCurrency string, rates *RateTable) HistoricValue {
	return HistoricValue{
		Amount:          amount,
		RateToPortfolio: rates.Rate(amount.Currency(), portfolioCurrency),
		InUSD:           rates.Convert(amount, USD),
		InILS:           rates.Convert(amount, ILS),
	}
}

// FreezeReported captures amount with snapshots derived from broker-reported
// historical values, which take precedence over any rate table.
func FreezeReported(amount Money, rateToPortfolio decimal.Decimal, inUSD, inILS Money) HistoricValue {
	return HistoricValue{Amount: amount, RateToPortfolio: rateToPortfolio, InUSD: inUSD, InILS: inILS}
}

// In expresses the frozen fact in the given display currency. The stored
// snapshots win; conversion through current rates is the accepted-degradation
// fallback for currencies with no snapshot.
func (h HistoricValue) In(currency string, rates *RateTable) Money {
	switch {
	case currency == h.Amount.Currency():
		return h.Amount
	case currency == USD && !h.InUSD.IsZero():
		return h.InUSD
	case currency == ILS && !h.InILS.IsZero():
		return h.InILS
	case domestic(currency) && !h.InILS.IsZero():
		// ILA display of an ILS snapshot is a fixed 1:100 rescale, not a
		// market conversion, so the snapshot still holds.
		return M(h.InILS.Decimal().Mul(decimal.NewFromInt(100)), ILA)
	default:
		return rates.Convert(h.Amount, currency)
	}
}

// InPortfolio expresses the fact in the portfolio currency using the frozen
// event-time rate.
func (h HistoricValue) InPortfolio(portfolioCurrency string) Money {
	if h.Amount.Currency() == portfolioCurrency {
		return h.Amount
	}
	return M(h.Amount.Decimal().Mul(h.RateToPortfolio), portfolioCurrency)
}

// Scale returns the proportional share f of the frozen fact, keeping each
// snapshot consistent with the same share.
func (h HistoricValue) Scale(f decimal.Decimal) HistoricValue {
	return HistoricValue{
		Amount:          h.Amount.MulDec(f),
		RateToPortfolio: h.RateToPortfolio,
		InUSD:           h.InUSD.MulDec(f),
		InILS:           h.InILS.MulDec(f),
	}
}

// AddValue sums two frozen facts share by share. Both must be same-currency
// facts of the same portfolio; the rate snapshot becomes cost-weighted.
func (h HistoricValue) AddValue(o HistoricValue) HistoricValue {
	sum := HistoricValue{
		Amount: h.Amount.Add(o.Amount),
		InUSD:  h.InUSD.Add(o.InUSD),
		InILS:  h.InILS.Add(o.InILS),
	}
	// weight the event-time rate by amount so InPortfolio stays consistent
	if !sum.Amount.IsZero() {
		w := h.Amount.Decimal().Mul(h.RateToPortfolio).Add(o.Amount.Decimal().Mul(o.RateToPortfolio))
		sum.RateToPortfolio = w.Div(sum.Amount.Decimal())
	}
	return sum
}
