package lotfolio

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

// testRates returns the fixed rate table most tests share: 1 USD = 3.5 ILS,
// 1 EUR = 4 ILS.
func testRates() *RateTable {
	return NewRateTable(RateSlice{
		USD: decimal.NewFromFloat(3.5),
		EUR: decimal.NewFromFloat(4.0),
	})
}

// testCPI returns an index with one level per January 1st: 100 in 2023, 105
// in 2024, 110 in 2025.
func testCPI() *CPIIndex {
	cpi := NewCPIIndex()
	cpi.Append(NewDate(2023, time.January, 1), 100)
	cpi.Append(NewDate(2024, time.January, 1), 105)
	cpi.Append(NewDate(2025, time.January, 1), 110)
	return cpi
}

func testEnv(p *Portfolio, now Date) Env {
	return Env{Rates: testRates(), CPI: testCPI(), Portfolio: p, Now: now}
}

// checkMoney fails the test when got is not exactly the wanted amount and
// currency.
func checkMoney(t *testing.T, name string, got Money, want float64, currency string) {
	t.Helper()
	if !got.Decimal().Equal(decimal.NewFromFloat(want)) {
		t.Errorf("%s = %s, want %v", name, got.Decimal(), want)
	}
	if got.Currency() != currency {
		t.Errorf("%s currency = %q, want %q", name, got.Currency(), currency)
	}
}

func checkQuantity(t *testing.T, name string, got Quantity, want float64) {
	t.Helper()
	if !got.Equal(Q(want)) {
		t.Errorf("%s = %s, want %v", name, got, want)
	}
}

func buy(on Date, portfolio, ticker string, qty, price float64, currency string) Transaction {
	return Transaction{
		Date:      on,
		Portfolio: portfolio,
		Ticker:    ticker,
		Type:      TxnBuy,
		Quantity:  Q(qty),
		Price:     M(price, currency),
	}
}

func sell(on Date, portfolio, ticker string, qty, price float64, currency string) Transaction {
	tx := buy(on, portfolio, ticker, qty, price, currency)
	tx.Type = TxnSell
	return tx
}
