package lotfolio

import (
	"sort"

	"github.com/shopspring/decimal"
)

// PerfPoint is one day of the performance series: the chained time-weighted
// return factor plus the absolute value, cumulative dollar gain, and cost
// basis standing on that day.
type PerfPoint struct {
	Date          Date
	Factor        decimal.Decimal
	HoldingsValue Money
	GainsValue    Money
	CostBasis     Money
}

// BuildPerfSeries walks a price history alongside the instrument's
// transactions and produces the chained return-factor series in the display
// currency. Prices are quoted in priceCurrency, the instrument's trading
// currency.
//
// Cash flows are taken at their transaction cost, so a lot bought and
// revalued on its own purchase day registers its intraday move in the
// factor instead of being treated as a zero-return inception.
func BuildPerfSeries(txs []Transaction, prices *History, priceCurrency, currency string, rates *RateTable) []PerfPoint {
	ordered := make([]Transaction, len(txs))
	copy(ordered, txs)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Date.Before(ordered[j].Date) })

	var points []PerfPoint
	factor := decimal.New(1, 0)
	var qty Quantity
	totalCost := M(0, currency) // average-cost basis of the open position
	netFlow := M(0, currency)   // cumulative buys minus sale proceeds
	prevValue := M(0, currency)
	next := 0

	for day, price := range prices.Values() {
		flow := M(0, currency)
		for next < len(ordered) && !ordered[next].Date.After(day) {
			tx := ordered[next]
			next++
			switch tx.Type {
			case TxnBuy, TxnBuyTransfer:
				cost := rates.Convert(tx.Amount(), currency)
				flow = flow.Add(cost)
				totalCost = totalCost.Add(cost)
				qty = qty.Add(tx.Quantity)
			case TxnSell, TxnSellTransfer:
				proceeds := rates.Convert(tx.Amount(), currency)
				flow = flow.Sub(proceeds)
				// shrink the basis by the average cost of what was sold
				costOfSale := totalCost.MulDec(tx.Quantity.Div(qty).Decimal())
				totalCost = totalCost.Sub(costOfSale)
				qty = qty.Sub(tx.Quantity)
			}
		}
		netFlow = netFlow.Add(flow)

		value := rates.Convert(M(price, priceCurrency).Mul(qty), currency)
		denom := prevValue.Add(flow)
		if denom.IsPositive() {
			factor = factor.Mul(value.Ratio(denom))
		}
		prevValue = value

		points = append(points, PerfPoint{
			Date:          day,
			Factor:        factor,
			HoldingsValue: value,
			GainsValue:    value.Sub(netFlow),
			CostBasis:     totalCost,
		})
	}
	return points
}

// PeriodReturn reports one lookback window's performance. Pct and Gain are
// measured independently: the percentage comes from the chained factors and
// the dollar gain from the cumulative gains series. Deriving one from the
// other via AUM breaks badly after a large deposit or withdrawal.
type PeriodReturn struct {
	Pct  Percent
	Gain Money
}

// CalculatePeriodReturns derives the fixed-lookback returns from a
// performance series. For each window it locates the point at or nearest
// after now minus the window, falling back to the series' first point when
// the window predates all history; year-to-date anchors on the first point
// on or after January 1st. Windows with no usable anchor are omitted.
func CalculatePeriodReturns(points []PerfPoint, now Date) map[Window]PeriodReturn {
	out := make(map[Window]PeriodReturn)
	if len(points) == 0 {
		return out
	}
	latest := points[len(points)-1]

	for _, w := range Windows {
		target := w.Start(now)
		anchor, ok := pointOnOrAfter(points, target)
		if !ok || anchor.Date.After(latest.Date) {
			continue
		}
		pct := Percent(0)
		if anchor.Factor.IsPositive() {
			pct = Percent(latest.Factor.Div(anchor.Factor).Sub(decimal.New(1, 0)).InexactFloat64())
		}
		out[w] = PeriodReturn{
			Pct:  pct,
			Gain: latest.GainsValue.Sub(anchor.GainsValue),
		}
	}
	return out
}

// pointOnOrAfter returns the first point on or after the target date. The
// series is chronological, so the first match is the nearest one.
func pointOnOrAfter(points []PerfPoint, target Date) (PerfPoint, bool) {
	for _, p := range points {
		if !p.Date.Before(target) {
			return p, true
		}
	}
	return PerfPoint{}, false
}

// MoverSort selects the ranking metric for top movers.
type MoverSort int

const (
	ByChange MoverSort = iota
	ByPercent
)

// Mover is one entry of the top-movers ranking: all positions of the same
// instrument combined.
type Mover struct {
	Ticker   string
	Exchange string
	Change   Money
	Pct      Percent
}

// TopMovers ranks instruments by their move over a window, combining
// holdings of the same (ticker, exchange) across portfolios.
//
// Dollar change is summed per group directly. The group percentage is
// value-weighted: each position's period-start value is reconstructed as
// current value minus dollar change, and the total change is divided by the
// total reconstructed start. Averaging the positions' percentages unweighted
// would misstate any group with uneven position sizes.
func TopMovers(holdings []*Holding, displayCurrency string, rates *RateTable, w Window, sortBy MoverSort) []Mover {
	type group struct {
		change decimal.Decimal
		start  decimal.Decimal
	}
	groups := make(map[QuoteKey]*group)

	for _, h := range holdings {
		var pct Percent
		if w == Day1 {
			// the 1-day figure comes straight from the quote provider
			pct = h.DayChangePct
		} else {
			p, ok := h.PeriodPerf[w]
			if !ok {
				continue // no start-of-period history: excluded, not zeroed
			}
			pct = p
		}
		if pct <= -1 {
			continue
		}
		value := h.MarketValue(displayCurrency, rates).Decimal()
		start := value.Div(decimal.NewFromFloat(1 + float64(pct)))
		key := QuoteKey{Ticker: h.Key.Ticker, Exchange: h.Key.Exchange}
		g, ok := groups[key]
		if !ok {
			g = &group{}
			groups[key] = g
		}
		g.change = g.change.Add(value.Sub(start))
		g.start = g.start.Add(start)
	}

	movers := make([]Mover, 0, len(groups))
	for key, g := range groups {
		if g.start.IsZero() {
			continue
		}
		movers = append(movers, Mover{
			Ticker:   key.Ticker,
			Exchange: key.Exchange,
			Change:   M(g.change, displayCurrency),
			Pct:      Percent(g.change.Div(g.start).InexactFloat64()),
		})
	}

	sort.SliceStable(movers, func(i, j int) bool {
		switch sortBy {
		case ByPercent:
			pi, pj := movers[i].Pct, movers[j].Pct
			if pi < 0 {
				pi = -pi
			}
			if pj < 0 {
				pj = -pj
			}
			if pi != pj {
				return pi > pj
			}
		default:
			ci, cj := movers[i].Change.Abs(), movers[j].Change.Abs()
			if !ci.Equal(cj) {
				return cj.LessThan(ci)
			}
		}
		return movers[i].Ticker < movers[j].Ticker
	})
	return movers
}
