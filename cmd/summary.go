package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/lotfolio/lotfolio"
	"github.com/lotfolio/lotfolio/renderer"
)

// summaryCmd holds the flags for the 'summary' subcommand.
type summaryCmd struct {
	date      string
	portfolio string
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "display the global portfolio snapshot" }
func (*summaryCmd) Usage() string {
	return `lotf summary [-d <date>] [-P <portfolio>]

  Displays the global snapshot: every holding with its market value and
  weight, and the portfolio-wide totals including the value after tax.
`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", lotfolio.Today().String(), "Date for the snapshot (YYYY-MM-DD)")
	f.StringVar(&c.portfolio, "P", "", "Restrict to one portfolio. Defaults to all.")
}

func (c *summaryCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	on, err := lotfolio.ParseDate(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}
	eng, err := loadEngine(on)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	var filter func(lotfolio.HoldingKey) bool
	if c.portfolio != "" {
		filter = func(k lotfolio.HoldingKey) bool { return k.Portfolio == c.portfolio }
	}
	s := eng.GlobalSummary(*displayCurrency, filter)
	printMarkdown(renderer.RenderSummary(renderer.NewSummary(s)))
	return subcommands.ExitSuccess
}

// holdingCmd holds the flags for the 'holding' subcommand.
type holdingCmd struct {
	date      string
	portfolio string
	ticker    string
	exchange  string
}

func (*holdingCmd) Name() string     { return "holding" }
func (*holdingCmd) Synopsis() string { return "display the detail of one holding with its lot ledger" }
func (*holdingCmd) Usage() string {
	return `lotf holding -s <ticker> [-P <portfolio>] [-d <date>]

  Displays one holding in detail: quantities, values, and the full lot
  ledger with open and closed lots.
`
}

func (c *holdingCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", lotfolio.Today().String(), "Date for the report (YYYY-MM-DD)")
	f.StringVar(&c.portfolio, "P", "main", "Portfolio of the holding")
	f.StringVar(&c.ticker, "s", "", "Security ticker")
	f.StringVar(&c.exchange, "e", "", "Exchange the security trades on")
}

func (c *holdingCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.ticker == "" {
		f.Usage()
		return subcommands.ExitUsageError
	}
	on, err := lotfolio.ParseDate(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}
	eng, err := loadEngine(on)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	key := lotfolio.HoldingKey{Portfolio: c.portfolio, Ticker: c.ticker, Exchange: c.exchange}
	h := eng.Holding(key)
	if h == nil {
		fmt.Fprintf(os.Stderr, "No holding %s in portfolio %q\n", c.ticker, c.portfolio)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.RenderHolding(renderer.NewHolding(h, *displayCurrency, eng.Rates(), on)))
	return subcommands.ExitSuccess
}

// gainsCmd holds the flags for the 'gains' subcommand.
type gainsCmd struct {
	from      string
	to        string
	portfolio string
}

func (*gainsCmd) Name() string     { return "gains" }
func (*gainsCmd) Synopsis() string { return "display realized gains and taxes over a period" }
func (*gainsCmd) Usage() string {
	return `lotf gains [-s <start>] [-d <end>] [-P <portfolio>]

  Displays every closed lot of the period with its realized gain, taxable
  gain under the portfolio's tax policy, and the tax paid.
`
}

func (c *gainsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.from, "s", "", "Start of the period (YYYY-MM-DD). Defaults to open.")
	f.StringVar(&c.to, "d", lotfolio.Today().String(), "End of the period (YYYY-MM-DD)")
	f.StringVar(&c.portfolio, "P", "", "Restrict to one portfolio. Defaults to all.")
}

func (c *gainsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	to, err := lotfolio.ParseDate(c.to)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing end date: %v\n", err)
		return subcommands.ExitUsageError
	}
	var from lotfolio.Date
	if c.from != "" {
		from, err = lotfolio.ParseDate(c.from)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing start date: %v\n", err)
			return subcommands.ExitUsageError
		}
	}
	eng, err := loadEngine(to)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	holdings := eng.Holdings()
	if c.portfolio != "" {
		var kept []*lotfolio.Holding
		for _, h := range holdings {
			if h.Key.Portfolio == c.portfolio {
				kept = append(kept, h)
			}
		}
		holdings = kept
	}
	g := renderer.NewGains(holdings, *displayCurrency, eng.Rates(), from, to)
	printMarkdown(renderer.RenderGains(g))
	return subcommands.ExitSuccess
}

// moversCmd holds the flags for the 'movers' subcommand.
type moversCmd struct {
	date   string
	window string
	sortBy string
	top    int
}

func (*moversCmd) Name() string     { return "movers" }
func (*moversCmd) Synopsis() string { return "rank instruments by their move over a window" }
func (*moversCmd) Usage() string {
	return `lotf movers [-w <window>] [-sort change|percent] [-top <n>] [-d <date>]

  Ranks the held instruments by their move over the window, combining
  positions of the same instrument across portfolios.
`
}

func (c *moversCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", lotfolio.Today().String(), "Date for the ranking (YYYY-MM-DD)")
	f.StringVar(&c.window, "w", "1d", "Lookback window (1d, 1w, 1m, 3m, ytd, 1y, 3y, 5y)")
	f.StringVar(&c.sortBy, "sort", "change", "Ranking metric: change or percent")
	f.IntVar(&c.top, "top", 10, "Number of entries to show, 0 for all")
}

func (c *moversCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	on, err := lotfolio.ParseDate(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}
	w, err := lotfolio.ParseWindow(c.window)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	var sortBy lotfolio.MoverSort
	switch c.sortBy {
	case "change":
		sortBy = lotfolio.ByChange
	case "percent":
		sortBy = lotfolio.ByPercent
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown sort %q\n", c.sortBy)
		return subcommands.ExitUsageError
	}

	eng, err := loadEngine(on)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	movers := lotfolio.TopMovers(eng.Holdings(), *displayCurrency, eng.Rates(), w, sortBy)
	printMarkdown(renderer.RenderMovers(renderer.NewMovers(movers, w, *displayCurrency, c.top)))
	return subcommands.ExitSuccess
}

// perfCmd holds the flags for the 'perf' subcommand.
type perfCmd struct {
	date      string
	portfolio string
	ticker    string
	exchange  string
}

func (*perfCmd) Name() string     { return "perf" }
func (*perfCmd) Synopsis() string { return "display time-weighted period returns of one holding" }
func (*perfCmd) Usage() string {
	return `lotf perf -s <ticker> [-P <portfolio>] [-d <date>]

  Displays the fixed-lookback returns of one holding: the time-weighted
  percentage and the dollar gain of each window, measured independently.
`
}

func (c *perfCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", lotfolio.Today().String(), "Date for the report (YYYY-MM-DD)")
	f.StringVar(&c.portfolio, "P", "main", "Portfolio of the holding")
	f.StringVar(&c.ticker, "s", "", "Security ticker")
	f.StringVar(&c.exchange, "e", "", "Exchange the security trades on")
}

func (c *perfCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.ticker == "" {
		f.Usage()
		return subcommands.ExitUsageError
	}
	on, err := lotfolio.ParseDate(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}
	eng, err := loadEngine(on)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	key := lotfolio.HoldingKey{Portfolio: c.portfolio, Ticker: c.ticker, Exchange: c.exchange}
	h := eng.Holding(key)
	if h == nil {
		fmt.Fprintf(os.Stderr, "No holding %s in portfolio %q\n", c.ticker, c.portfolio)
		return subcommands.ExitFailure
	}
	prices, err := Store().History(lotfolio.QuoteKey{Ticker: c.ticker, Exchange: c.exchange})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	points := lotfolio.BuildPerfSeries(h.Transactions(), prices, h.Currency, *displayCurrency, eng.Rates())
	returns := lotfolio.CalculatePeriodReturns(points, on)
	p := renderer.NewPerformance(c.ticker, *displayCurrency, on, returns)
	printMarkdown(renderer.RenderPerformance(p))
	return subcommands.ExitSuccess
}
