package lotfolio

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LotStatus tags a lot's position in its lifecycle. Lots are never deleted;
// a consumed lot stays in the ledger for audit with its status and sale date.
type LotStatus int

const (
	// Active lots still hold their full original quantity.
	Active LotStatus = iota
	// PartiallySold lots have had one or more chunks split off by sales.
	PartiallySold
	// FullySold lots hold no quantity anymore; sold chunks are born in this
	// state.
	FullySold
)

func (s LotStatus) String() string {
	switch s {
	case Active:
		return "active"
	case PartiallySold:
		return "partially-sold"
	case FullySold:
		return "fully-sold"
	default:
		return "unknown"
	}
}

// Lot is a discrete slice of a purchase with its own cost basis, tracked
// separately to support FIFO disposal and partial tax lots.
type Lot struct {
	ID        string
	Ticker    string
	Purchased Date
	Quantity  Quantity // remaining; shrinks when chunks are split off

	UnitCost Money         // per unit, portfolio currency
	Cost     HistoricValue // total cost frozen at purchase
	BuyFee   Money         // portfolio currency, shrinks proportionally on split

	CPIAtBuy decimal.Decimal
	VestDate Date // zero means vested at purchase
	TxnID    string

	Status LotStatus
	Sold   Date // set when the lot (or chunk) is consumed

	// Sale results, set on sold chunks only, portfolio currency.
	Proceeds        Money
	SellFee         Money
	RealizedGainNet Money
	TaxableGain     Money
	Tax             Money // capital gains plus income tax
}

// Vested reports whether the lot is eligible on the given day. Vesting is
// re-evaluated on every recompute, so a lot "completes" over time without
// its transaction being re-processed.
func (l *Lot) Vested(now Date) bool {
	return l.VestDate.IsZero() || !l.VestDate.After(now)
}

// CostIn expresses the lot's frozen total cost in a display currency,
// preferring the purchase-time snapshots over current-rate conversion.
func (l *Lot) CostIn(currency string, rates *RateTable) Money {
	return l.Cost.In(currency, rates)
}

// split carves a sold chunk of the given quantity off the lot. The chunk
// takes the proportional share of cost and buy fees; the parent keeps the
// rest, so that the children's costs always sum to the parent's cost before
// the split, up to rounding.
//
// The caller must ensure 0 < qty <= l.Quantity.
func (l *Lot) split(qty Quantity, on Date) *Lot {
	if qty.Equal(l.Quantity) {
		// fully consumed: the lot itself becomes the sold chunk
		l.Status = FullySold
		l.Sold = on
		return l
	}
	f := qty.Div(l.Quantity).Decimal()
	chunk := &Lot{
		ID:        uuid.NewString(),
		Ticker:    l.Ticker,
		Purchased: l.Purchased,
		Quantity:  qty,
		UnitCost:  l.UnitCost,
		Cost:      l.Cost.Scale(f),
		BuyFee:    l.BuyFee.MulDec(f),
		CPIAtBuy:  l.CPIAtBuy,
		VestDate:  l.VestDate,
		TxnID:     l.TxnID,
		Status:    FullySold,
		Sold:      on,
	}
	// the parent keeps the exact remainder so the split conserves cost
	l.Quantity = l.Quantity.Sub(qty)
	l.Cost = HistoricValue{
		Amount:          l.Cost.Amount.Sub(chunk.Cost.Amount),
		RateToPortfolio: l.Cost.RateToPortfolio,
		InUSD:           l.Cost.InUSD.Sub(chunk.Cost.InUSD),
		InILS:           l.Cost.InILS.Sub(chunk.Cost.InILS),
	}
	l.BuyFee = l.BuyFee.Sub(chunk.BuyFee)
	l.Status = PartiallySold
	return chunk
}
