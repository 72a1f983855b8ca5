package lotfolio

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestBuildPerfSeries(t *testing.T) {
	prices := &History{}
	prices.Append(NewDate(2025, time.June, 2), 100)
	prices.Append(NewDate(2025, time.June, 3), 105)
	prices.Append(NewDate(2025, time.June, 4), 105)
	prices.Append(NewDate(2025, time.June, 5), 110.25)

	txs := []Transaction{
		buy(NewDate(2025, time.June, 2), "main", "TEVA", 10, 100, ILS),
		// a deposit on June 4 doubles the position without any price move
		buy(NewDate(2025, time.June, 4), "main", "TEVA", 10, 105, ILS),
	}

	points := BuildPerfSeries(txs, prices, ILS, ILS, testRates())
	if len(points) != 4 {
		t.Fatalf("series has %d points, want 4", len(points))
	}

	// day one: bought and valued at the same price, a flat start
	if !points[0].Factor.Equal(decimal.NewFromInt(1)) {
		t.Errorf("day 1 factor = %s, want 1", points[0].Factor)
	}
	checkMoney(t, "day 1 value", points[0].HoldingsValue, 1000, ILS)

	// day two: 5% price move
	if !points[1].Factor.Equal(decimal.NewFromFloat(1.05)) {
		t.Errorf("day 2 factor = %s, want 1.05", points[1].Factor)
	}
	checkMoney(t, "day 2 gains", points[1].GainsValue, 50, ILS)

	// day three: the deposit is a cash flow, not performance
	if !points[2].Factor.Equal(decimal.NewFromFloat(1.05)) {
		t.Errorf("day 3 factor = %s, want 1.05 unchanged by the deposit", points[2].Factor)
	}
	checkMoney(t, "day 3 value", points[2].HoldingsValue, 2100, ILS)
	checkMoney(t, "day 3 gains", points[2].GainsValue, 50, ILS)
	checkMoney(t, "day 3 cost basis", points[2].CostBasis, 2050, ILS)

	// day four: another 5% move chains on the larger base
	if !points[3].Factor.Equal(decimal.NewFromFloat(1.1025)) {
		t.Errorf("day 4 factor = %s, want 1.1025", points[3].Factor)
	}
	checkMoney(t, "day 4 gains", points[3].GainsValue, 155, ILS)
}

func TestBuildPerfSeriesSale(t *testing.T) {
	prices := &History{}
	prices.Append(NewDate(2025, time.June, 2), 100)
	prices.Append(NewDate(2025, time.June, 3), 100)

	txs := []Transaction{
		buy(NewDate(2025, time.June, 2), "main", "TEVA", 10, 100, ILS),
		sell(NewDate(2025, time.June, 3), "main", "TEVA", 4, 100, ILS),
	}

	points := BuildPerfSeries(txs, prices, ILS, ILS, testRates())
	last := points[len(points)-1]

	// selling at cost moves nothing but the basis
	if !last.Factor.Equal(decimal.NewFromInt(1)) {
		t.Errorf("factor = %s, want 1", last.Factor)
	}
	checkMoney(t, "value", last.HoldingsValue, 600, ILS)
	checkMoney(t, "cost basis", last.CostBasis, 600, ILS)
	checkMoney(t, "gains", last.GainsValue, 0, ILS)
}

func TestCalculatePeriodReturns(t *testing.T) {
	now := NewDate(2025, time.June, 30)
	points := []PerfPoint{
		{Date: NewDate(2025, time.January, 1), Factor: decimal.NewFromInt(1), GainsValue: M(0, ILS)},
		{Date: NewDate(2025, time.June, 23), Factor: decimal.NewFromFloat(1.05), GainsValue: M(50, ILS)},
		{Date: NewDate(2025, time.June, 29), Factor: decimal.NewFromFloat(1.1), GainsValue: M(100, ILS)},
		{Date: NewDate(2025, time.June, 30), Factor: decimal.NewFromFloat(1.155), GainsValue: M(150, ILS)},
	}

	returns := CalculatePeriodReturns(points, now)

	testCases := []struct {
		w        Window
		wantPct  Percent
		wantGain float64
	}{
		{Day1, 0.05, 50},
		{Week1, 0.10, 100},
		{YTD, 0.155, 150},
		// windows longer than the series anchor on the first point
		{Year1, 0.155, 150},
	}
	for _, tc := range testCases {
		t.Run(tc.w.String(), func(t *testing.T) {
			r, ok := returns[tc.w]
			if !ok {
				t.Fatalf("window %s missing from the returns", tc.w)
			}
			if !r.Pct.Equal(tc.wantPct) {
				t.Errorf("pct = %s, want %s", r.Pct, tc.wantPct)
			}
			checkMoney(t, "gain", r.Gain, tc.wantGain, ILS)
		})
	}
}

func TestCalculatePeriodReturnsEmpty(t *testing.T) {
	if got := CalculatePeriodReturns(nil, Today()); len(got) != 0 {
		t.Errorf("empty series produced %d returns", len(got))
	}
}

// moverHolding builds a hydrated holding directly, the way the engine leaves
// one after replay and quote hydration.
func moverHolding(t *testing.T, portfolio, ticker string, qty, price float64, perf map[Window]Percent) *Holding {
	t.Helper()
	env := testEnv(nominalPortfolio(), NewDate(2025, time.June, 1))
	h := NewHolding(HoldingKey{Portfolio: portfolio, Ticker: ticker})
	h.AddTransaction(buy(NewDate(2025, time.January, 10), portfolio, ticker, qty, 100, ILS), env)
	h.Price = M(price, ILS)
	for w, p := range perf {
		if w == Day1 {
			h.DayChangePct = p
		}
		h.PeriodPerf[w] = p
	}
	return h
}

func TestTopMoversCombinesPositions(t *testing.T) {
	// the same instrument held in two portfolios is one mover, its
	// percentage weighted by position size
	holdings := []*Holding{
		moverHolding(t, "main", "TEVA", 20, 105, map[Window]Percent{Week1: 0.05}),
		moverHolding(t, "other", "TEVA", 10, 105, map[Window]Percent{Week1: 0.05}),
		moverHolding(t, "main", "NICE", 10, 90, map[Window]Percent{Week1: -0.10}),
	}

	movers := TopMovers(holdings, ILS, testRates(), Week1, ByChange)
	if len(movers) != 2 {
		t.Fatalf("got %d movers, want 2", len(movers))
	}

	// TEVA: 2100 + 1050 now, from 2000 + 1000 a week ago
	if movers[0].Ticker != "TEVA" {
		t.Fatalf("largest change = %s, want TEVA", movers[0].Ticker)
	}
	checkMoney(t, "TEVA change", movers[0].Change, 150, ILS)
	if !movers[0].Pct.Equal(0.05) {
		t.Errorf("TEVA pct = %s, want 5%%", movers[0].Pct)
	}

	// NICE: 900 now from 1000, a 100 drop
	checkMoney(t, "NICE change", movers[1].Change, -100, ILS)
	if !movers[1].Pct.Equal(-0.10) {
		t.Errorf("NICE pct = %s, want -10%%", movers[1].Pct)
	}

	// ranked by percentage the 10% drop beats the 5% rise
	byPct := TopMovers(holdings, ILS, testRates(), Week1, ByPercent)
	if byPct[0].Ticker != "NICE" {
		t.Errorf("largest percentage = %s, want NICE", byPct[0].Ticker)
	}
}

func TestTopMoversSkipsMissingHistory(t *testing.T) {
	holdings := []*Holding{
		moverHolding(t, "main", "TEVA", 10, 105, map[Window]Percent{Week1: 0.05}),
		// no 1w performance recorded: excluded rather than reported as flat
		moverHolding(t, "main", "NICE", 10, 90, nil),
	}
	movers := TopMovers(holdings, ILS, testRates(), Week1, ByChange)
	if len(movers) != 1 || movers[0].Ticker != "TEVA" {
		t.Fatalf("movers = %+v, want only TEVA", movers)
	}
}
