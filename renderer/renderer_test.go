package renderer

import (
	"strings"
	"testing"
	"time"

	"github.com/lotfolio/lotfolio"
	"github.com/shopspring/decimal"
)

func testRates() *lotfolio.RateTable {
	return lotfolio.NewRateTable(lotfolio.RateSlice{
		lotfolio.USD: decimal.NewFromFloat(3.5),
	})
}

// testHolding replays a small buy/sell history and returns the holding.
func testHolding(t *testing.T) *lotfolio.Holding {
	t.Helper()
	p := &lotfolio.Portfolio{
		ID:       "main",
		Currency: lotfolio.ILS,
		Policy:   lotfolio.Nominal,
		CGT:      lotfolio.FixedRate(decimal.NewFromFloat(0.25)),
	}
	env := lotfolio.Env{
		Rates:     testRates(),
		CPI:       lotfolio.NewCPIIndex(),
		Portfolio: p,
		Now:       lotfolio.NewDate(2025, time.June, 1),
	}
	h := lotfolio.NewHolding(lotfolio.HoldingKey{Portfolio: "main", Ticker: "TEVA"})
	h.AddTransaction(lotfolio.Transaction{
		Date: lotfolio.NewDate(2025, time.January, 10), Portfolio: "main", Ticker: "TEVA",
		Type: lotfolio.TxnBuy, Quantity: lotfolio.Q(10), Price: lotfolio.M(100, lotfolio.ILS),
	}, env)
	h.AddTransaction(lotfolio.Transaction{
		Date: lotfolio.NewDate(2025, time.March, 10), Portfolio: "main", Ticker: "TEVA",
		Type: lotfolio.TxnSell, Quantity: lotfolio.Q(4), Price: lotfolio.M(150, lotfolio.ILS),
	}, env)
	h.Price = lotfolio.M(150, lotfolio.ILS)
	return h
}

func TestRenderSummary(t *testing.T) {
	s := lotfolio.Summary{
		Date:            lotfolio.NewDate(2025, time.June, 1),
		Currency:        lotfolio.ILS,
		AUM:             lotfolio.M(5050, lotfolio.ILS),
		TotalUnrealized: lotfolio.M(550, lotfolio.ILS),
		Holdings: []lotfolio.HoldingSummary{
			{
				Key:            lotfolio.HoldingKey{Portfolio: "main", Ticker: "TEVA"},
				MarketValue:    lotfolio.M(1200, lotfolio.ILS),
				UnrealizedGain: lotfolio.M(200, lotfolio.ILS),
				WeightGlobal:   lotfolio.Percent(0.24),
			},
		},
	}

	got := RenderSummary(NewSummary(s))

	for _, want := range []string{
		"# Portfolio Summary on 2025-06-01",
		"TEVA",
		"₪5,050.00",
		"24.00%",
		"Unrealized Gain",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("summary misses %q:\n%s", want, got)
		}
	}
}

func TestRenderHolding(t *testing.T) {
	h := testHolding(t)
	now := lotfolio.NewDate(2025, time.June, 1)

	view := NewHolding(h, lotfolio.ILS, testRates(), now)
	if len(view.ActiveLots) != 1 {
		t.Fatalf("view has %d open lots, want 1", len(view.ActiveLots))
	}
	if len(view.RealizedLots) != 1 {
		t.Fatalf("view has %d closed lots, want 1", len(view.RealizedLots))
	}

	got := RenderHolding(view)
	for _, want := range []string{"TEVA", "Open Lots", "Closed Lots", "2025-01-10", "2025-03-10"} {
		if !strings.Contains(got, want) {
			t.Errorf("holding report misses %q:\n%s", want, got)
		}
	}
}

func TestRenderGains(t *testing.T) {
	h := testHolding(t)

	g := NewGains([]*lotfolio.Holding{h}, lotfolio.ILS,
		testRates(), lotfolio.Date{}, lotfolio.Date{})
	if len(g.Rows) != 1 {
		t.Fatalf("gains has %d rows, want 1", len(g.Rows))
	}
	row := g.Rows[0]
	if !row.Gain.Equal(lotfolio.M(200, lotfolio.ILS)) {
		t.Errorf("gain = %s, want 200", row.Gain.Decimal())
	}
	if !g.TotalTax.Equal(lotfolio.M(50, lotfolio.ILS)) {
		t.Errorf("total tax = %s, want 50", g.TotalTax.Decimal())
	}

	got := RenderGains(g)
	if !strings.Contains(got, "# Realized Gains") || !strings.Contains(got, "TEVA") {
		t.Errorf("gains report misses headline or ticker:\n%s", got)
	}
}

func TestRenderGainsEmpty(t *testing.T) {
	g := NewGains(nil, lotfolio.ILS, testRates(), lotfolio.Date{}, lotfolio.Date{})
	got := RenderGains(g)
	if !strings.Contains(got, "No realized gains in the period.") {
		t.Errorf("empty gains report:\n%s", got)
	}
}

func TestRenderGainsPeriodFilter(t *testing.T) {
	h := testHolding(t)

	// the only sale is on March 10; a window ending before it is empty
	g := NewGains([]*lotfolio.Holding{h}, lotfolio.ILS, testRates(),
		lotfolio.NewDate(2025, time.January, 1), lotfolio.NewDate(2025, time.February, 1))
	if len(g.Rows) != 0 {
		t.Fatalf("gains has %d rows, want 0", len(g.Rows))
	}

	g = NewGains([]*lotfolio.Holding{h}, lotfolio.ILS, testRates(),
		lotfolio.NewDate(2025, time.March, 1), lotfolio.NewDate(2025, time.March, 31))
	if len(g.Rows) != 1 {
		t.Fatalf("gains has %d rows, want 1", len(g.Rows))
	}
}

func TestRenderMovers(t *testing.T) {
	movers := []lotfolio.Mover{
		{Ticker: "TEVA", Change: lotfolio.M(150, lotfolio.ILS), Pct: 0.05},
		{Ticker: "NICE", Change: lotfolio.M(-100, lotfolio.ILS), Pct: -0.10},
		{Ticker: "POLI", Change: lotfolio.M(10, lotfolio.ILS), Pct: 0.01},
	}

	view := NewMovers(movers, lotfolio.Week1, lotfolio.ILS, 2)
	if len(view.Rows) != 2 {
		t.Fatalf("view has %d rows, want the top 2", len(view.Rows))
	}

	got := RenderMovers(view)
	if !strings.Contains(got, "TEVA") || !strings.Contains(got, "NICE") {
		t.Errorf("movers report misses a ticker:\n%s", got)
	}
	if strings.Contains(got, "POLI") {
		t.Errorf("movers report shows a truncated ticker:\n%s", got)
	}
}

func TestRenderPerformance(t *testing.T) {
	returns := map[lotfolio.Window]lotfolio.PeriodReturn{
		lotfolio.Week1: {Pct: 0.05, Gain: lotfolio.M(50, lotfolio.ILS)},
		lotfolio.YTD:   {Pct: 0.155, Gain: lotfolio.M(150, lotfolio.ILS)},
	}
	view := NewPerformance("main/TEVA", lotfolio.ILS,
		lotfolio.NewDate(2025, time.June, 30), returns)

	got := RenderPerformance(view)
	for _, want := range []string{"main/TEVA", "1w", "ytd", "+5.00%"} {
		if !strings.Contains(got, want) {
			t.Errorf("performance report misses %q:\n%s", want, got)
		}
	}
}
