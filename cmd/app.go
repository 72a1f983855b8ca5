// Package cmd implements the lotf CLI application.
package cmd

import (
	"flag"
	"fmt"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"

	"github.com/lotfolio/lotfolio"
)

// Commands lists every subcommand the lotf binary registers.
var Commands = []subcommands.Command{
	&summaryCmd{},
	&holdingCmd{},
	&gainsCmd{},
	&moversCmd{},
	&perfCmd{},
	&buyCmd{},
	&sellCmd{},
	&dividendCmd{},
	&feeCmd{},
	&transferCmd{},
	&txCmd{},
	&fmtCmd{},
	&fetchCmd{},
	&topicCmd{},
	&AssistCmd{},
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to
// use global variables.

var storePath = flag.String("store", lotfolio.DefaultStorePath(), "Path to the data directory")
var displayCurrency = flag.String("currency", lotfolio.ILS, "Display currency for reports")

// Store opens the application data directory.
func Store() *lotfolio.Store {
	return lotfolio.NewStore(*storePath)
}

// loadEngine loads the full data directory and rebuilds every holding as of
// the given date: declared portfolios, rates, CPI, the raw event stream, the
// recurring management fees, and quotes derived from the stored price series.
func loadEngine(now lotfolio.Date) (*lotfolio.Engine, error) {
	s := Store()

	portfolios, err := s.Portfolios()
	if err != nil {
		return nil, fmt.Errorf("could not load portfolios: %w", err)
	}
	rates, err := s.Rates(now)
	if err != nil {
		return nil, fmt.Errorf("could not load rates: %w", err)
	}
	cpi, err := s.CPI()
	if err != nil {
		return nil, fmt.Errorf("could not load CPI series: %w", err)
	}
	txs, err := s.Transactions()
	if err != nil {
		return nil, fmt.Errorf("could not load transactions: %w", err)
	}
	divs, err := s.Dividends()
	if err != nil {
		return nil, fmt.Errorf("could not load dividends: %w", err)
	}
	histories, err := s.Histories()
	if err != nil {
		return nil, fmt.Errorf("could not load price histories: %w", err)
	}

	eng := lotfolio.NewEngine(portfolios, rates, cpi)
	eng.SetNow(now)
	if err := eng.Rebuild(txs, divs); err != nil {
		return nil, fmt.Errorf("could not rebuild holdings: %w", err)
	}
	eng.GenerateManagementFees(histories)

	currencies := make(map[lotfolio.QuoteKey]string)
	for _, h := range eng.Holdings() {
		currencies[lotfolio.QuoteKey{Ticker: h.Key.Ticker, Exchange: h.Key.Exchange}] = h.Currency
	}
	eng.Hydrate(lotfolio.QuotesFromHistories(histories, currencies, now))
	return eng, nil
}

// printMarkdown renders markdown to the terminal, falling back to the raw
// text when the renderer cannot initialize (dumb terminals, pipes).
func printMarkdown(content string) {
	out, err := glamour.Render(content, "auto")
	if err != nil {
		fmt.Println(content)
		return
	}
	fmt.Print(out)
}
