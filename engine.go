package lotfolio

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Engine owns the holdings of all portfolios and rebuilds them from the raw
// event stream. It is an explicitly constructed instance per analysis
// session: caching and persistence belong to the loader, not here.
//
// The engine is single-threaded by design. Replay order is load-bearing:
// FIFO matching and date-varying tax lookups both depend on it.
type Engine struct {
	portfolios map[string]*Portfolio
	holdings   map[HoldingKey]*Holding
	rates      *RateTable
	cpi        *CPIIndex
	now        Date
}

// NewEngine creates an engine for the given portfolios with the rate table
// and CPI series already fetched by the I/O boundary.
func NewEngine(portfolios []*Portfolio, rates *RateTable, cpi *CPIIndex) *Engine {
	e := &Engine{
		portfolios: make(map[string]*Portfolio, len(portfolios)),
		holdings:   make(map[HoldingKey]*Holding),
		rates:      rates,
		cpi:        cpi,
		now:        Today(),
	}
	for _, p := range portfolios {
		e.portfolios[p.ID] = p
	}
	return e
}

// SetNow overrides the evaluation date used for vesting and fee generation.
func (e *Engine) SetNow(d Date) { e.now = d }

// Portfolio returns the declared portfolio with this id, or nil.
func (e *Engine) Portfolio(id string) *Portfolio { return e.portfolios[id] }

// Rates returns the engine's rate table.
func (e *Engine) Rates() *RateTable { return e.rates }

// Holding returns the holding for a key, or nil if no transaction ever
// referenced it.
func (e *Engine) Holding(key HoldingKey) *Holding { return e.holdings[key] }

// Holdings returns all holdings in a stable key order.
func (e *Engine) Holdings() []*Holding {
	keys := make([]HoldingKey, 0, len(e.holdings))
	for k := range e.holdings {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	out := make([]*Holding, 0, len(keys))
	for _, k := range keys {
		out = append(out, e.holdings[k])
	}
	return out
}

// holding returns the holding for a key, creating it lazily on first use.
func (e *Engine) holding(key HoldingKey) *Holding {
	h, ok := e.holdings[key]
	if !ok {
		h = NewHolding(key)
		e.holdings[key] = h
	}
	return h
}

func (e *Engine) env(p *Portfolio) Env {
	return Env{Rates: e.rates, CPI: e.cpi, Portfolio: p, Now: e.now}
}

// Rebuild replays the full event stream into fresh holdings. Transactions
// are sorted ascending by date first; within a date, sell-transfers are
// replayed before buy-transfers so a destination can receive the basis its
// source just released.
func (e *Engine) Rebuild(txs []Transaction, divs []DividendEvent) error {
	e.holdings = make(map[HoldingKey]*Holding)

	ordered := make([]Transaction, len(txs))
	copy(ordered, txs)
	for i := range ordered {
		if ordered[i].ID == "" {
			ordered[i].ID = uuid.NewString()
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Date != ordered[j].Date {
			return ordered[i].Date.Before(ordered[j].Date)
		}
		return replayRank(ordered[i].Type) < replayRank(ordered[j].Type)
	})

	events := make([]DividendEvent, len(divs))
	copy(events, divs)
	sort.SliceStable(events, func(i, j int) bool { return events[i].Date.Before(events[j].Date) })

	plans := planTransfers(ordered, e.rates)
	pending := make(map[string]HistoricValue)

	next := 0 // next dividend event to deliver
	deliver := func(until Date, inclusive bool) error {
		for next < len(events) {
			ev := events[next]
			if ev.Date.After(until) || (!inclusive && ev.Date == until) {
				return nil
			}
			if err := e.applyDividend(ev); err != nil {
				return err
			}
			next++
		}
		return nil
	}

	for _, tx := range ordered {
		// dividends strictly before this transaction's date apply first, so
		// they see the units held at their own date
		if err := deliver(tx.Date, false); err != nil {
			return err
		}
		p := e.portfolios[tx.Portfolio]
		if p == nil {
			return fmt.Errorf("transaction %s references undeclared portfolio %q", tx, tx.Portfolio)
		}
		h := e.holding(tx.Key())
		env := e.env(p)
		switch tx.Type {
		case TxnSellTransfer:
			key := transferKey(tx)
			pending[key] = pending[key].AddValue(h.TransferOut(tx, env))
		case TxnBuyTransfer:
			key := transferKey(tx)
			h.TransferIn(tx, pending[key].Scale(plans[key][tx.ID]), env)
		default:
			h.AddTransaction(tx, env)
		}
	}
	return deliver(e.now, true)
}

// applyDividend routes a dividend event to every holding of the instrument.
func (e *Engine) applyDividend(ev DividendEvent) error {
	for key, h := range e.holdings {
		if key.Ticker != ev.Ticker || (ev.Exchange != "" && key.Exchange != ev.Exchange) {
			continue
		}
		if h.QtyTotal().IsZero() {
			continue
		}
		p := e.portfolios[key.Portfolio]
		if p == nil {
			return fmt.Errorf("dividend %s/%s references undeclared portfolio %q", ev.Ticker, ev.Date, key.Portfolio)
		}
		h.AddDividend(ev, e.env(p))
	}
	return nil
}

// Hydrate attaches live quotes to the holdings. It must run after Rebuild:
// quotes land on holdings that already exist.
func (e *Engine) Hydrate(quotes map[QuoteKey]Quote) {
	for key, h := range e.holdings {
		q, ok := quotes[QuoteKey{Ticker: key.Ticker, Exchange: key.Exchange}]
		if !ok {
			continue
		}
		h.Price = q.Price
		h.DayChangePct = q.DayChangePct
		for w, p := range q.Perf {
			h.PeriodPerf[w] = p
		}
	}
}

// GenerateManagementFees accrues each portfolio's recurring fee onto its
// holdings, charging at every schedule date from the holding's first
// transaction until now. Percentage fees need the holding value at each
// charge date, which comes from the supplied price histories; a charge date
// with no known price is skipped rather than guessed.
func (e *Engine) GenerateManagementFees(histories map[QuoteKey]*History) {
	for key, h := range e.holdings {
		p := e.portfolios[key.Portfolio]
		if p == nil || p.Mgmt.Kind == NoFee {
			continue
		}
		txns := h.Transactions()
		if len(txns) == 0 {
			continue
		}
		first := txns[0].Date
		for _, tx := range txns {
			if tx.Date.Before(first) {
				first = tx.Date
			}
		}
		step := p.Mgmt.Every.Months()
		for charge := first.AddMonth(step); !charge.After(e.now); charge = charge.AddMonth(step) {
			switch p.Mgmt.Kind {
			case FixedFee:
				h.AccrueManagementFee(M(p.Mgmt.Value, p.Currency))
			case PercentFee:
				hist := histories[QuoteKey{Ticker: key.Ticker, Exchange: key.Exchange}]
				if hist == nil {
					continue
				}
				price, ok := hist.AsOf(charge)
				if !ok {
					continue
				}
				qty := h.quantityOn(charge)
				if !qty.IsPositive() {
					continue
				}
				value := e.rates.Convert(M(price, h.Currency).Mul(qty), p.Currency)
				fraction := p.Mgmt.Value.Mul(decimal.NewFromInt(int64(step))).Div(decimal.NewFromInt(12))
				h.AccrueManagementFee(value.MulDec(fraction))
			}
		}
	}
}

// quantityOn reconstructs the units held at the end of a day from the raw
// transaction history.
func (h *Holding) quantityOn(on Date) Quantity {
	var qty Quantity
	for _, tx := range h.txns {
		if tx.Date.After(on) {
			continue
		}
		switch tx.Type {
		case TxnBuy, TxnBuyTransfer:
			qty = qty.Add(tx.Quantity)
		case TxnSell, TxnSellTransfer:
			qty = qty.Sub(tx.Quantity)
		}
	}
	return qty
}

// HoldingSummary is one row of the global snapshot.
type HoldingSummary struct {
	Key               HoldingKey
	MarketValue       Money
	UnrealizedGain    Money
	WeightInPortfolio Percent
	WeightGlobal      Percent
}

// Summary aggregates the whole (optionally filtered) holding set in one
// display currency.
type Summary struct {
	Date            Date
	Currency        string
	AUM             Money
	TotalUnrealized Money
	TotalRealized   Money
	TotalDividends  Money
	TotalFees       Money
	TotalTax        Money
	TotalReturn     Money
	ValueAfterTax   Money
	Holdings        []HoldingSummary
}

// GlobalSummary computes the snapshot-wide aggregates in the display
// currency. A nil filter includes every holding. Per-portfolio figures
// (realized gains, dividends, fees, taxes) are converted from each
// portfolio's currency at current rates; value after tax subtracts the
// estimated liquidation tax on the unrealized gains.
func (e *Engine) GlobalSummary(displayCurrency string, filter func(HoldingKey) bool) Summary {
	s := Summary{
		Date:            e.now,
		Currency:        displayCurrency,
		AUM:             M(0, displayCurrency),
		TotalUnrealized: M(0, displayCurrency),
		TotalRealized:   M(0, displayCurrency),
		TotalDividends:  M(0, displayCurrency),
		TotalFees:       M(0, displayCurrency),
		TotalTax:        M(0, displayCurrency),
	}

	perPortfolio := make(map[string]Money)
	for _, h := range e.Holdings() {
		if filter != nil && !filter(h.Key) {
			continue
		}
		p := e.portfolios[h.Key.Portfolio]
		if p == nil {
			continue
		}
		mv := h.MarketValue(displayCurrency, e.rates)
		s.AUM = s.AUM.Add(mv)
		s.TotalUnrealized = s.TotalUnrealized.Add(h.UnrealizedGain(displayCurrency, e.rates))
		s.TotalRealized = s.TotalRealized.Add(e.rates.Convert(h.RealizedGainNet(), displayCurrency))
		s.TotalDividends = s.TotalDividends.Add(e.rates.Convert(h.DividendsTotal(), displayCurrency))
		s.TotalFees = s.TotalFees.Add(e.rates.Convert(h.FeesTotal(), displayCurrency))
		s.TotalTax = s.TotalTax.Add(e.rates.Convert(h.TotalTaxPaid(), displayCurrency))
		perPortfolio[h.Key.Portfolio] = perPortfolio[h.Key.Portfolio].Add(mv)
		s.Holdings = append(s.Holdings, HoldingSummary{
			Key:            h.Key,
			MarketValue:    mv,
			UnrealizedGain: h.UnrealizedGain(displayCurrency, e.rates),
		})
	}

	latent := M(0, displayCurrency)
	for _, h := range e.Holdings() {
		if filter != nil && !filter(h.Key) {
			continue
		}
		if p := e.portfolios[h.Key.Portfolio]; p != nil {
			latent = latent.Add(e.rates.Convert(e.liquidationTax(h, p), displayCurrency))
		}
	}

	s.TotalReturn = s.TotalUnrealized.Add(s.TotalRealized).Add(s.TotalDividends).Sub(s.TotalFees)
	s.ValueAfterTax = s.AUM.Sub(latent)

	// weights are ratios of market value; a zero denominator yields zero
	for i := range s.Holdings {
		row := &s.Holdings[i]
		row.WeightGlobal = Percent(row.MarketValue.Ratio(s.AUM).InexactFloat64())
		row.WeightInPortfolio = Percent(row.MarketValue.Ratio(perPortfolio[row.Key.Portfolio]).InexactFloat64())
	}
	return s
}

// liquidationTax estimates the tax due if the holding's active lots were all
// sold today at the hydrated price, portfolio currency.
func (e *Engine) liquidationTax(h *Holding, p *Portfolio) Money {
	total := M(0, p.Currency)
	cpiNow := e.cpi.At(e.now)
	for _, lot := range h.ActiveLots() {
		proceeds := e.rates.Convert(h.Price.Mul(lot.Quantity), p.Currency)
		costPC := lot.Cost.InPortfolio(p.Currency)
		nominal := proceeds.Sub(costPC)
		gainStock := h.Price.Mul(lot.Quantity).Sub(lot.Cost.Amount)
		taxable := TaxableGain(p, nominal, gainStock, costPC, h.Currency, lot.CPIAtBuy, cpiNow, e.rates)
		tax := CapitalGainsTax(taxable, p.CGT, e.now)
		if !lot.VestDate.IsZero() {
			tax = tax.Add(VestingIncomeTax(costPC, p.IncomeTax))
		}
		total = total.Add(tax)
	}
	return total
}
