package lotfolio

import "github.com/shopspring/decimal"

// DividendSlice is one branch of a dividend's disposition, with its own
// prorated share of tax and fee, so downstream reports can account for cash
// and reinvested income independently.
type DividendSlice struct {
	Amount Money
	Tax    Money
	Fee    Money
}

// DividendRecord is a processed dividend: the gross amount frozen with its
// event-time currency snapshots, the net/tax/fee breakdown in portfolio
// currency, and the cash-vs-reinvested split.
type DividendRecord struct {
	Date       Date
	Gross      HistoricValue
	Net        Money
	Tax        Money
	Fee        Money
	Cash       DividendSlice
	Reinvested DividendSlice
}

// processDividend turns a raw per-share event into a record, given the units
// held at the event date and the portfolio's dividend tax and fee policy.
func processDividend(ev DividendEvent, units Quantity, p *Portfolio, rates *RateTable) DividendRecord {
	gross := ev.PerShare.Mul(units)
	frozen := Freeze(gross, p.Currency, rates)
	grossPC := frozen.InPortfolio(p.Currency)

	tax := grossPC.MulDec(p.DividendTax)
	fee := grossPC.MulDec(p.DividendFee)
	net := grossPC.Sub(tax).Sub(fee)

	r := ev.Reinvested
	if r.IsNegative() {
		r = decimal.Zero
	}
	one := decimal.New(1, 0)
	if r.GreaterThan(one) {
		r = one
	}
	cashShare := one.Sub(r)

	return DividendRecord{
		Date:  ev.Date,
		Gross: frozen,
		Net:   net,
		Tax:   tax,
		Fee:   fee,
		Cash: DividendSlice{
			Amount: net.MulDec(cashShare),
			Tax:    tax.MulDec(cashShare),
			Fee:    fee.MulDec(cashShare),
		},
		Reinvested: DividendSlice{
			Amount: net.MulDec(r),
			Tax:    tax.MulDec(r),
			Fee:    fee.MulDec(r),
		},
	}
}
