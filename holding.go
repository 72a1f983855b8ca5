package lotfolio

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// HoldingKey identifies one holding: a position of one instrument inside one
// portfolio.
type HoldingKey struct {
	Portfolio string
	Ticker    string
	Exchange  string
}

func (k HoldingKey) String() string {
	if k.Exchange == "" {
		return fmt.Sprintf("%s/%s", k.Portfolio, k.Ticker)
	}
	return fmt.Sprintf("%s/%s.%s", k.Portfolio, k.Ticker, k.Exchange)
}

// Env is the read-only context a holding needs to apply a transaction: the
// rate table, the CPI series, the owning portfolio's policy, and the
// evaluation date for vesting.
type Env struct {
	Rates     *RateTable
	CPI       *CPIIndex
	Portfolio *Portfolio
	Now       Date
}

// Holding is the lot ledger for one (portfolio, ticker, exchange) key. Lots
// are append-only: a sale never deletes a lot, it splits a sold chunk off
// and appends it. The active and realized index slices are maintained on
// every mutation, so the derived views never rescan the full lot list.
type Holding struct {
	Key      HoldingKey
	Currency string // the instrument's trading currency, set by the first buy

	lots     []*Lot
	active   []int // indices of lots with remaining quantity, insertion order
	realized []int // indices of sold chunks

	txns      []Transaction
	dividends []DividendRecord
	mgmtFees  Money // accumulated management fees, portfolio currency

	// aggregate quantities, recomputed from lots after every mutation
	qtyVested   Quantity
	qtyUnvested Quantity
	qtyTotal    Quantity

	// hydrated from the live-quote provider after replay
	Price        Money
	DayChangePct Percent
	PeriodPerf   map[Window]Percent
}

// NewHolding creates an empty holding for a key.
func NewHolding(key HoldingKey) *Holding {
	return &Holding{Key: key, PeriodPerf: make(map[Window]Percent)}
}

// AddTransaction applies one event to the ledger. Transfers applied through
// here use the transaction's own price as cost basis; the engine routes
// matched transfers through TransferOut/TransferIn instead so cost carries
// over. Unrecognized types are ignored.
func (h *Holding) AddTransaction(tx Transaction, env Env) {
	switch tx.Type {
	case TxnBuy:
		h.buy(tx, h.freezeCost(tx, env), env)
	case TxnSell:
		h.sell(tx, env, false)
	case TxnSellTransfer:
		h.sell(tx, env, true)
	case TxnBuyTransfer:
		h.buy(tx, h.freezeCost(tx, env), env)
	case TxnDividend:
		h.dividendTxn(tx, env)
	case TxnFee:
		h.fee(tx, env)
	default:
		// forward compatibility: unknown types change no state
	}
}

// TransferOut applies a sell-transfer and returns the cost basis consumed
// from the source lots, for the resolver to carry to the destinations.
func (h *Holding) TransferOut(tx Transaction, env Env) HistoricValue {
	return h.sell(tx, env, true)
}

// TransferIn applies a buy-transfer whose cost basis was carried over from
// the matched sell-transfer. The transfer-time market price plays no part in
// the destination lot's cost.
func (h *Holding) TransferIn(tx Transaction, carried HistoricValue, env Env) {
	if carried.Amount.IsZero() && carried.InILS.IsZero() {
		carried = h.freezeCost(tx, env)
	}
	h.buy(tx, carried, env)
}

// AddDividend processes a raw dividend event against the units held now and
// appends the resulting record.
func (h *Holding) AddDividend(ev DividendEvent, env Env) {
	h.dividends = append(h.dividends, processDividend(ev, h.qtyTotal, env.Portfolio, env.Rates))
}

// dividendTxn applies a dividend recorded directly in the transaction
// stream rather than as an announcement event. The per-share price applies
// to the transaction's own quantity, or to the whole position held when the
// transaction carries none.
func (h *Holding) dividendTxn(tx Transaction, env Env) {
	units := tx.Quantity
	if !units.IsPositive() {
		units = h.qtyTotal
	}
	ev := DividendEvent{
		Ticker:   tx.Ticker,
		Exchange: tx.Exchange,
		Date:     tx.Date,
		PerShare: tx.Price,
	}
	h.dividends = append(h.dividends, processDividend(ev, units, env.Portfolio, env.Rates))
	h.txns = append(h.txns, tx)
}

// freezeCost resolves the total cost of a buy in the portfolio currency,
// frozen with its event-time snapshots. A broker-reported historical price
// takes precedence over converting the trade price at today's rate; missing
// reported fields degrade to current-rate conversion.
func (h *Holding) freezeCost(tx Transaction, env Env) HistoricValue {
	amount := tx.Amount()
	inILS := M(0, ILS)
	if !tx.ReportedPriceILA.IsZero() {
		inILS = M(tx.ReportedPriceILA.Mul(agorotRate).Mul(tx.Quantity.Decimal()), ILS)
	} else if !amount.IsZero() {
		inILS = env.Rates.Convert(amount, ILS)
	}
	inUSD := M(0, USD)
	if !tx.ReportedPriceUSD.IsZero() {
		inUSD = M(tx.ReportedPriceUSD.Mul(tx.Quantity.Decimal()), USD)
	} else if !amount.IsZero() {
		inUSD = env.Rates.Convert(amount, USD)
	}

	// the event-time rate to portfolio currency follows the same precedence
	pc := env.Portfolio.Currency
	var inPC Money
	switch {
	case domestic(pc):
		inPC = inILS
	case pc == USD:
		inPC = inUSD
	default:
		inPC = env.Rates.Convert(amount, pc)
	}
	return HistoricValue{
		Amount:          amount,
		RateToPortfolio: inPC.Ratio(amount),
		InUSD:           inUSD,
		InILS:           inILS,
	}
}

func (h *Holding) buy(tx Transaction, cost HistoricValue, env Env) {
	if !tx.Quantity.IsPositive() {
		return // zero or negative quantity is a no-op, not an error
	}
	if h.Currency == "" {
		h.Currency = tx.Price.Currency()
	}
	pc := env.Portfolio.Currency
	costPC := cost.InPortfolio(pc)
	lot := &Lot{
		ID:        uuid.NewString(),
		Ticker:    tx.Ticker,
		Purchased: tx.Date,
		Quantity:  tx.Quantity,
		UnitCost:  costPC.Div(tx.Quantity),
		Cost:      cost,
		BuyFee:    env.Rates.Convert(tx.Fee, pc),
		CPIAtBuy:  env.CPI.At(tx.Date),
		VestDate:  tx.VestDate,
		TxnID:     tx.ID,
		Status:    Active,
	}
	h.lots = append(h.lots, lot)
	h.active = append(h.active, len(h.lots)-1)
	h.txns = append(h.txns, tx)
	h.recompute(env.Now)
}

// sell consumes active lots in strict FIFO order. Each consumed chunk gets a
// pro-rata share of the sale fee and its own realized gain, taxable gain and
// tax. When transfer is true, the disposal is not a taxable event: realized
// gain and all tax fields are forced to zero.
//
// Selling more than the active quantity is not validated here; the caller
// owns the consistency of the transaction history.
func (h *Holding) sell(tx Transaction, env Env, transfer bool) HistoricValue {
	var consumed HistoricValue
	if !tx.Quantity.IsPositive() {
		return consumed
	}
	p := env.Portfolio
	pc := p.Currency

	// strict FIFO: oldest purchase first
	order := append([]int(nil), h.active...)
	sort.SliceStable(order, func(i, j int) bool {
		return h.lots[order[i]].Purchased.Before(h.lots[order[j]].Purchased)
	})

	sellFeePC := env.Rates.Convert(tx.Fee, pc)
	cpiAtSell := env.CPI.At(tx.Date)
	remaining := tx.Quantity

	for _, idx := range order {
		if remaining.IsZero() {
			break
		}
		lot := h.lots[idx]
		take := lot.Quantity.Min(remaining)
		chunk := lot.split(take, tx.Date)
		if chunk == lot {
			h.dropActive(idx)
			h.realized = append(h.realized, idx)
		} else {
			h.lots = append(h.lots, chunk)
			h.realized = append(h.realized, len(h.lots)-1)
		}

		feeShare := take.Div(tx.Quantity).Decimal()
		chunk.SellFee = sellFeePC.MulDec(feeShare)
		chunk.Proceeds = env.Rates.Convert(tx.Price.Mul(take), pc)

		if transfer {
			// a transfer removes the position mechanically but is not a
			// disposal for tax purposes
			chunk.RealizedGainNet = M(0, pc)
			chunk.TaxableGain = M(0, pc)
			chunk.Tax = M(0, pc)
		} else {
			costPC := chunk.Cost.InPortfolio(pc)
			chunk.RealizedGainNet = chunk.Proceeds.Sub(costPC).Sub(chunk.SellFee).Sub(chunk.BuyFee)
			gainStock := tx.Price.Mul(take).Sub(chunk.Cost.Amount)
			chunk.TaxableGain = TaxableGain(p, chunk.RealizedGainNet, gainStock, costPC, h.Currency, chunk.CPIAtBuy, cpiAtSell, env.Rates)
			chunk.Tax = CapitalGainsTax(chunk.TaxableGain, p.CGT, tx.Date)
			if !chunk.VestDate.IsZero() {
				chunk.Tax = chunk.Tax.Add(VestingIncomeTax(costPC, p.IncomeTax))
			}
		}

		consumed = consumed.AddValue(chunk.Cost)
		remaining = remaining.Sub(take)
	}

	h.txns = append(h.txns, tx)
	h.recompute(env.Now)
	return consumed
}

func (h *Holding) fee(tx Transaction, env Env) {
	pc := env.Portfolio.Currency
	h.mgmtFees = h.mgmtFees.Add(env.Rates.Convert(tx.Fee, pc))
	// a fee transaction carrying a cash value charges that value as well
	if amount := tx.Amount(); !amount.IsZero() {
		h.mgmtFees = h.mgmtFees.Add(env.Rates.Convert(amount, pc))
	}
	h.txns = append(h.txns, tx)
}

// AccrueManagementFee adds a generated recurring fee to the accumulated
// total. The engine computes the amount from the fee schedule and the
// holding value at each charge date.
func (h *Holding) AccrueManagementFee(amount Money) {
	h.mgmtFees = h.mgmtFees.Add(amount)
}

// dropActive removes a lot index from the active list, preserving order.
func (h *Holding) dropActive(idx int) {
	for i, a := range h.active {
		if a == idx {
			h.active = append(h.active[:i], h.active[i+1:]...)
			return
		}
	}
}

// recompute rebuilds the aggregate quantities from the active lots. The
// aggregates are never mutated independently.
func (h *Holding) recompute(now Date) {
	h.qtyVested, h.qtyUnvested, h.qtyTotal = Quantity{}, Quantity{}, Quantity{}
	for _, idx := range h.active {
		lot := h.lots[idx]
		h.qtyTotal = h.qtyTotal.Add(lot.Quantity)
		if lot.Vested(now) {
			h.qtyVested = h.qtyVested.Add(lot.Quantity)
		} else {
			h.qtyUnvested = h.qtyUnvested.Add(lot.Quantity)
		}
	}
}

// --- derived views ---

// ActiveLots returns the unsold lots holding quantity, oldest first.
func (h *Holding) ActiveLots() []*Lot {
	out := make([]*Lot, 0, len(h.active))
	for _, idx := range h.active {
		out = append(out, h.lots[idx])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Purchased.Before(out[j].Purchased) })
	return out
}

// RealizedLots returns the sold chunks in the order they were realized.
func (h *Holding) RealizedLots() []*Lot {
	out := make([]*Lot, 0, len(h.realized))
	for _, idx := range h.realized {
		out = append(out, h.lots[idx])
	}
	return out
}

// VestedLots returns the active lots whose vesting date has passed.
func (h *Holding) VestedLots(now Date) []*Lot {
	var out []*Lot
	for _, lot := range h.ActiveLots() {
		if lot.Vested(now) {
			out = append(out, lot)
		}
	}
	return out
}

func (h *Holding) QtyVested() Quantity   { return h.qtyVested }
func (h *Holding) QtyUnvested() Quantity { return h.qtyUnvested }
func (h *Holding) QtyTotal() Quantity    { return h.qtyTotal }

// MarketValue returns the current value of the whole position in the display
// currency, using the hydrated price and current rates.
func (h *Holding) MarketValue(currency string, rates *RateTable) Money {
	return rates.Convert(h.Price.Mul(h.qtyTotal), currency)
}

// MarketValueVested values only the vested quantity.
func (h *Holding) MarketValueVested(currency string, rates *RateTable) Money {
	return rates.Convert(h.Price.Mul(h.qtyVested), currency)
}

// MarketValueUnvested values only the unvested quantity.
func (h *Holding) MarketValueUnvested(currency string, rates *RateTable) Money {
	return rates.Convert(h.Price.Mul(h.qtyUnvested), currency)
}

// CostBasisVested sums the frozen cost of the vested active lots, expressed
// in the display currency through the purchase-time snapshots.
func (h *Holding) CostBasisVested(currency string, rates *RateTable, now Date) Money {
	total := M(0, currency)
	for _, lot := range h.VestedLots(now) {
		total = total.Add(lot.CostIn(currency, rates))
	}
	return total
}

// CostBasis sums the frozen cost of all active lots in the display currency.
func (h *Holding) CostBasis(currency string, rates *RateTable) Money {
	total := M(0, currency)
	for _, idx := range h.active {
		total = total.Add(h.lots[idx].CostIn(currency, rates))
	}
	return total
}

// UnrealizedGain is the current market value minus the frozen cost basis of
// the active lots. The cost side always comes from the purchase-time
// snapshots; re-converting it at today's rate would let FX movement since
// purchase masquerade as gain.
func (h *Holding) UnrealizedGain(currency string, rates *RateTable) Money {
	return h.MarketValue(currency, rates).Sub(h.CostBasis(currency, rates))
}

// RealizedGainNet sums the net realized gains of the sold chunks, portfolio
// currency.
func (h *Holding) RealizedGainNet() Money {
	var total Money
	for _, idx := range h.realized {
		total = total.Add(h.lots[idx].RealizedGainNet)
	}
	return total
}

// DividendsTotal sums the net dividend income, portfolio currency.
func (h *Holding) DividendsTotal() Money {
	var total Money
	for _, d := range h.dividends {
		total = total.Add(d.Net)
	}
	return total
}

// FeesTotal sums management fees plus the buy and sell fees attached to the
// lots, portfolio currency.
func (h *Holding) FeesTotal() Money {
	total := h.mgmtFees
	for _, lot := range h.lots {
		total = total.Add(lot.BuyFee)
		total = total.Add(lot.SellFee)
	}
	return total
}

// TotalTaxPaid sums the tax attached to realized chunks and dividends,
// portfolio currency.
func (h *Holding) TotalTaxPaid() Money {
	var total Money
	for _, idx := range h.realized {
		total = total.Add(h.lots[idx].Tax)
	}
	for _, d := range h.dividends {
		total = total.Add(d.Tax)
	}
	return total
}

// Transactions returns the raw transaction history applied to this holding.
func (h *Holding) Transactions() []Transaction { return h.txns }

// Dividends returns the processed dividend records.
func (h *Holding) Dividends() []DividendRecord { return h.dividends }

// ManagementFees returns the accumulated management-fee total.
func (h *Holding) ManagementFees() Money { return h.mgmtFees }
