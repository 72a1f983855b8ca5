package lotfolio

import (
	"github.com/shopspring/decimal"
)

// This file implements the tax policy evaluator: pure functions from a
// sale's gain figures and CPI/FX context to a taxable gain and a tax amount.
// All inputs and outputs are in the portfolio currency unless noted.

// RealTaxableGain computes the taxable gain of a sale under the Israeli
// real-gain rule.
//
// For a domestic instrument (stock and portfolio currency both on the ILS
// base) the real gain is the nominal gain minus the inflation on the cost
// basis between purchase and sale. For a foreign instrument the real gain is
// the position's gain in its own trading currency, converted at current
// rates; this strips the FX component out of the tax base.
//
// Nominal and real are then combined closer-to-zero:
//   - mixed sign: the gain is fully exempt, taxable gain is zero;
//   - both non-negative: the smaller of the two;
//   - both negative: the nominal loss. The real loss is deliberately not
//     used, a loss cannot be inflated for tax relief.
func RealTaxableGain(nominal, gainInStockCcy, costBasis Money, stockCurrency, portfolioCurrency string, cpiAtBuy, cpiAtSell decimal.Decimal, rates *RateTable) Money {
	real := nominal
	if domestic(stockCurrency) && domestic(portfolioCurrency) {
		if cpiAtBuy.IsPositive() && cpiAtSell.IsPositive() {
			inflation := cpiAtSell.Div(cpiAtBuy).Sub(decimal.New(1, 0))
			real = nominal.Sub(costBasis.MulDec(inflation))
		}
		// no CPI context: the nominal gain stands in for the real one
	} else if stockCurrency != portfolioCurrency {
		real = rates.Convert(gainInStockCcy, portfolioCurrency)
	}
	return closerToZero(nominal, real)
}

// closerToZero combines a nominal gain x and a real gain y into the taxable
// base per the mixed-sign rule.
func closerToZero(x, y Money) Money {
	switch {
	case x.IsPositive() && y.IsNegative(), x.IsNegative() && y.IsPositive():
		return M(0, x.Currency())
	case !x.IsNegative() && !y.IsNegative():
		if y.LessThan(x) {
			return y
		}
		return x
	default:
		// both negative: losses are recorded at their nominal size
		return x
	}
}

// TaxableGain dispatches on the portfolio's tax policy. The switch is
// exhaustive over the closed TaxPolicy enum.
func TaxableGain(p *Portfolio, nominal, gainInStockCcy, costBasis Money, stockCurrency string, cpiAtBuy, cpiAtSell decimal.Decimal, rates *RateTable) Money {
	switch p.Policy {
	case TaxFree:
		return M(0, p.Currency)
	case ILRealGain:
		return RealTaxableGain(nominal, gainInStockCcy, costBasis, stockCurrency, p.Currency, cpiAtBuy, cpiAtSell, rates)
	case Nominal:
		return nominal
	default:
		return nominal
	}
}

// CapitalGainsTax returns the tax due on a taxable gain at the rate in force
// on the sale date. A non-positive taxable gain is taxed at zero, not
// refunded.
func CapitalGainsTax(taxableGain Money, cgt RateSchedule, saleDate Date) Money {
	if !taxableGain.IsPositive() {
		return M(0, taxableGain.Currency())
	}
	return taxableGain.MulDec(cgt.At(saleDate))
}

// VestingIncomeTax returns the income tax charged on the cost basis of a
// vesting-type lot when it is sold. It is additive to capital gains tax.
func VestingIncomeTax(soldCostBasis Money, incomeTaxRate decimal.Decimal) Money {
	if incomeTaxRate.IsZero() {
		return M(0, soldCostBasis.Currency())
	}
	return soldCostBasis.MulDec(incomeTaxRate)
}
