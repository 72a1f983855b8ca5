package lotfolio

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

// nominalPortfolio returns an ILS portfolio taxed on raw nominal gains, which
// keeps the holding tests free of CPI arithmetic.
func nominalPortfolio() *Portfolio {
	return &Portfolio{
		ID:       "main",
		Currency: ILS,
		Policy:   Nominal,
		CGT:      FixedRate(decimal.NewFromFloat(0.25)),
	}
}

func TestHoldingFIFO(t *testing.T) {
	p := nominalPortfolio()
	now := NewDate(2025, time.June, 1)
	env := testEnv(p, now)
	h := NewHolding(HoldingKey{Portfolio: "main", Ticker: "TEVA"})

	h.AddTransaction(buy(NewDate(2025, time.January, 10), "main", "TEVA", 10, 100, ILS), env)
	h.AddTransaction(buy(NewDate(2025, time.February, 10), "main", "TEVA", 10, 200, ILS), env)
	h.AddTransaction(sell(NewDate(2025, time.March, 10), "main", "TEVA", 15, 300, ILS), env)

	checkQuantity(t, "remaining quantity", h.QtyTotal(), 5)

	realized := h.RealizedLots()
	if len(realized) != 2 {
		t.Fatalf("realized %d chunks, want 2", len(realized))
	}

	// the January lot is consumed first, in full
	first := realized[0]
	if first.Purchased != NewDate(2025, time.January, 10) {
		t.Errorf("first chunk purchased %s, want the January lot", first.Purchased)
	}
	checkQuantity(t, "first chunk quantity", first.Quantity, 10)
	checkMoney(t, "first chunk cost", first.Cost.InILS, 1000, ILS)
	checkMoney(t, "first chunk proceeds", first.Proceeds, 3000, ILS)
	checkMoney(t, "first chunk gain", first.RealizedGainNet, 2000, ILS)
	checkMoney(t, "first chunk tax", first.Tax, 500, ILS)

	// then 5 units of the February lot
	second := realized[1]
	if second.Purchased != NewDate(2025, time.February, 10) {
		t.Errorf("second chunk purchased %s, want the February lot", second.Purchased)
	}
	checkQuantity(t, "second chunk quantity", second.Quantity, 5)
	checkMoney(t, "second chunk cost", second.Cost.InILS, 1000, ILS)
	checkMoney(t, "second chunk gain", second.RealizedGainNet, 500, ILS)

	active := h.ActiveLots()
	if len(active) != 1 {
		t.Fatalf("active %d lots, want 1", len(active))
	}
	checkQuantity(t, "active quantity", active[0].Quantity, 5)
	checkMoney(t, "cost basis", h.CostBasis(ILS, env.Rates), 1000, ILS)
	checkMoney(t, "realized gain", h.RealizedGainNet(), 2500, ILS)
	checkMoney(t, "tax paid", h.TotalTaxPaid(), 625, ILS)
}

func TestHoldingSellFeeProRata(t *testing.T) {
	p := nominalPortfolio()
	env := testEnv(p, NewDate(2025, time.June, 1))
	h := NewHolding(HoldingKey{Portfolio: "main", Ticker: "TEVA"})

	h.AddTransaction(buy(NewDate(2025, time.January, 10), "main", "TEVA", 10, 100, ILS), env)
	h.AddTransaction(buy(NewDate(2025, time.February, 10), "main", "TEVA", 10, 100, ILS), env)

	tx := sell(NewDate(2025, time.March, 10), "main", "TEVA", 15, 100, ILS)
	tx.Fee = M(30, ILS)
	h.AddTransaction(tx, env)

	realized := h.RealizedLots()
	if len(realized) != 2 {
		t.Fatalf("realized %d chunks, want 2", len(realized))
	}
	// 10 of 15 units carry two thirds of the fee, 5 carry one third
	checkMoney(t, "first chunk fee", realized[0].SellFee, 20, ILS)
	checkMoney(t, "second chunk fee", realized[1].SellFee, 10, ILS)
	// and the fee reduces the net gain
	checkMoney(t, "first chunk gain", realized[0].RealizedGainNet, -20, ILS)
}

func TestHoldingSellTransferIsNotTaxable(t *testing.T) {
	p := nominalPortfolio()
	env := testEnv(p, NewDate(2025, time.June, 1))
	h := NewHolding(HoldingKey{Portfolio: "main", Ticker: "TEVA"})

	h.AddTransaction(buy(NewDate(2025, time.January, 10), "main", "TEVA", 10, 100, ILS), env)

	out := sell(NewDate(2025, time.March, 10), "main", "TEVA", 10, 150, ILS)
	out.Type = TxnSellTransfer
	consumed := h.TransferOut(out, env)

	// the consumed basis is the purchase cost, not the transfer-time value
	checkMoney(t, "consumed amount", consumed.Amount, 1000, ILS)
	checkMoney(t, "consumed in ILS", consumed.InILS, 1000, ILS)

	realized := h.RealizedLots()
	if len(realized) != 1 {
		t.Fatalf("realized %d chunks, want 1", len(realized))
	}
	chunk := realized[0]
	checkMoney(t, "gain", chunk.RealizedGainNet, 0, ILS)
	checkMoney(t, "taxable gain", chunk.TaxableGain, 0, ILS)
	checkMoney(t, "tax", chunk.Tax, 0, ILS)
	checkQuantity(t, "remaining quantity", h.QtyTotal(), 0)
}

func TestHoldingFrozenCostBasis(t *testing.T) {
	// buy a USD instrument when the dollar is at 3.5: the cost basis in ILS
	// freezes at 3500 and must not move when the dollar does
	p := nominalPortfolio()
	env := testEnv(p, NewDate(2025, time.June, 1))
	h := NewHolding(HoldingKey{Portfolio: "main", Ticker: "VTI"})

	h.AddTransaction(buy(NewDate(2025, time.January, 10), "main", "VTI", 10, 100, USD), env)

	later := NewRateTable(RateSlice{USD: decimal.NewFromFloat(4.0)})
	h.Price = M(110, USD)

	checkMoney(t, "market value", h.MarketValue(ILS, later), 4400, ILS)
	checkMoney(t, "cost basis", h.CostBasis(ILS, later), 3500, ILS)
	// without the frozen snapshot the FX move alone would show 400 of
	// phantom gain on the cost side
	checkMoney(t, "unrealized gain", h.UnrealizedGain(ILS, later), 900, ILS)
}

func TestHoldingAgorotPricedInstrument(t *testing.T) {
	// Tel-Aviv quotes in agorot: 100 units at 1000 ILA cost 1000 ILS
	p := nominalPortfolio()
	env := testEnv(p, NewDate(2025, time.June, 1))
	h := NewHolding(HoldingKey{Portfolio: "main", Ticker: "POLI", Exchange: "TA"})

	h.AddTransaction(buy(NewDate(2025, time.January, 10), "main", "POLI", 100, 1000, ILA), env)

	checkMoney(t, "cost basis", h.CostBasis(ILS, env.Rates), 1000, ILS)
	checkMoney(t, "cost basis vested", h.CostBasisVested(ILS, env.Rates, env.Now), 1000, ILS)
}

func TestHoldingReportedPricePrecedence(t *testing.T) {
	// a broker statement carries the historical per-unit prices; they beat
	// converting the trade price at today's rates
	p := nominalPortfolio()
	env := testEnv(p, NewDate(2025, time.June, 1))
	h := NewHolding(HoldingKey{Portfolio: "main", Ticker: "VTI"})

	tx := buy(NewDate(2020, time.January, 10), "main", "VTI", 10, 100, USD)
	tx.ReportedPriceILA = decimal.NewFromInt(32000) // 320 ILS per unit back then
	tx.ReportedPriceUSD = decimal.NewFromInt(100)
	h.AddTransaction(tx, env)

	lot := h.ActiveLots()[0]
	checkMoney(t, "cost in ILS", lot.Cost.InILS, 3200, ILS)
	checkMoney(t, "cost in USD", lot.Cost.InUSD, 1000, USD)
	// today's 3.5 rate would have said 3500
	checkMoney(t, "cost basis", h.CostBasis(ILS, env.Rates), 3200, ILS)
}

func TestHoldingVesting(t *testing.T) {
	p := nominalPortfolio()
	p.IncomeTax = decimal.NewFromFloat(0.47)
	now := NewDate(2025, time.June, 1)
	env := testEnv(p, now)
	h := NewHolding(HoldingKey{Portfolio: "main", Ticker: "RSU"})

	vested := buy(NewDate(2024, time.January, 10), "main", "RSU", 10, 100, ILS)
	vested.VestDate = NewDate(2025, time.January, 10)
	h.AddTransaction(vested, env)

	unvested := buy(NewDate(2024, time.January, 10), "main", "RSU", 20, 100, ILS)
	unvested.VestDate = NewDate(2026, time.January, 10)
	h.AddTransaction(unvested, env)

	checkQuantity(t, "vested", h.QtyVested(), 10)
	checkQuantity(t, "unvested", h.QtyUnvested(), 20)
	checkQuantity(t, "total", h.QtyTotal(), 30)
	checkMoney(t, "cost basis vested", h.CostBasisVested(ILS, env.Rates, now), 1000, ILS)

	// selling a vesting lot charges income tax on its cost basis on top of
	// capital gains tax
	h.AddTransaction(sell(NewDate(2025, time.March, 1), "main", "RSU", 10, 150, ILS), env)
	realized := h.RealizedLots()
	if len(realized) != 1 {
		t.Fatalf("realized %d chunks, want 1", len(realized))
	}
	// 25% of the 500 gain plus 47% of the 1000 basis
	checkMoney(t, "tax", realized[0].Tax, 595, ILS)
}

func TestHoldingDividend(t *testing.T) {
	p := nominalPortfolio()
	p.DividendTax = decimal.NewFromFloat(0.25)
	env := testEnv(p, NewDate(2025, time.June, 1))
	h := NewHolding(HoldingKey{Portfolio: "main", Ticker: "TEVA"})

	h.AddTransaction(buy(NewDate(2025, time.January, 10), "main", "TEVA", 100, 10, ILS), env)
	h.AddDividend(DividendEvent{
		Ticker:   "TEVA",
		Date:     NewDate(2025, time.February, 1),
		PerShare: M(2, ILS),
	}, env)

	divs := h.Dividends()
	if len(divs) != 1 {
		t.Fatalf("recorded %d dividends, want 1", len(divs))
	}
	checkMoney(t, "gross", divs[0].Gross.Amount, 200, ILS)
	checkMoney(t, "tax", divs[0].Tax, 50, ILS)
	checkMoney(t, "net", divs[0].Net, 150, ILS)
	checkMoney(t, "dividends total", h.DividendsTotal(), 150, ILS)
}

func TestHoldingDividendTransaction(t *testing.T) {
	p := nominalPortfolio()
	p.DividendTax = decimal.NewFromFloat(0.25)
	env := testEnv(p, NewDate(2025, time.June, 1))
	h := NewHolding(HoldingKey{Portfolio: "main", Ticker: "TEVA"})

	h.AddTransaction(buy(NewDate(2025, time.January, 10), "main", "TEVA", 100, 10, ILS), env)

	// a dividend in the transaction stream; its stated quantity wins over
	// the position size
	h.AddTransaction(Transaction{
		Date:      NewDate(2025, time.February, 1),
		Portfolio: "main",
		Ticker:    "TEVA",
		Type:      TxnDividend,
		Quantity:  Q(40),
		Price:     M(2, ILS),
	}, env)

	divs := h.Dividends()
	if len(divs) != 1 {
		t.Fatalf("recorded %d dividends, want 1", len(divs))
	}
	checkMoney(t, "gross", divs[0].Gross.Amount, 80, ILS)
	checkMoney(t, "net", divs[0].Net, 60, ILS)
	checkMoney(t, "dividends total", h.DividendsTotal(), 60, ILS)
}
