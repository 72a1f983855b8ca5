package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	"github.com/lotfolio/lotfolio"
	"github.com/lotfolio/lotfolio/boi"
	"github.com/lotfolio/lotfolio/cbs"
	"github.com/lotfolio/lotfolio/quotes"
)

// fetchCmd downloads rates, CPI levels, and live quotes into the store.
type fetchCmd struct {
	date       string
	currencies string
	what       string
	backfill   bool
}

func (*fetchCmd) Name() string     { return "fetch" }
func (*fetchCmd) Synopsis() string { return "download exchange rates, CPI levels, and live quotes" }
func (*fetchCmd) Usage() string {
	return `lotf fetch [-what rates|cpi|quotes|all] [-cur <codes>]

  Downloads market context into the data directory: ILS exchange rates from
  the Bank of Israel, the consumer price index from the CBS, and live quotes
  from the endpoints declared in sources.json.
`
}

func (c *fetchCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", lotfolio.Today().String(), "Date to record the samples on (YYYY-MM-DD)")
	f.StringVar(&c.currencies, "cur", lotfolio.USD+","+lotfolio.EUR, "Comma-separated currency codes to fetch rates for")
	f.StringVar(&c.what, "what", "all", "What to fetch: rates, cpi, quotes, or all")
	f.BoolVar(&c.backfill, "backfill", false, "Also download the historical rate series of the last five years")
}

func (c *fetchCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	on, err := lotfolio.ParseDate(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}
	s := Store()
	client := quotes.Daily()
	status := subcommands.ExitSuccess

	if c.what == "all" || c.what == "rates" {
		rates, err := boi.FetchCurrent(client, strings.Split(c.currencies, ","))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
			status = subcommands.ExitFailure
		}
		for cur, rate := range rates {
			if err := s.AppendRate(cur, on, decimal.NewFromFloat(rate)); err != nil {
				fmt.Fprintf(os.Stderr, "Error saving rate for %s: %v\n", cur, err)
				return subcommands.ExitFailure
			}
		}
		fmt.Printf("Fetched %d exchange rates.\n", len(rates))

		if c.backfill {
			for _, cur := range strings.Split(c.currencies, ",") {
				series, err := boi.FetchSeries(client, cur, on.AddYear(-5), on)
				if err != nil {
					fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
					status = subcommands.ExitFailure
					continue
				}
				for day, rate := range series {
					if err := s.AppendRate(cur, day, decimal.NewFromFloat(rate)); err != nil {
						fmt.Fprintf(os.Stderr, "Error saving rate for %s: %v\n", cur, err)
						return subcommands.ExitFailure
					}
				}
				fmt.Printf("Backfilled %d rates for %s.\n", len(series), cur)
			}
		}
	}

	if c.what == "all" || c.what == "cpi" {
		levels, err := cbs.Fetch(client, cbs.GeneralIndexID, on.AddYear(-1), on)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
			status = subcommands.ExitFailure
		}
		for day, level := range levels {
			if err := s.AppendCPI(day, decimal.NewFromFloat(level)); err != nil {
				fmt.Fprintf(os.Stderr, "Error saving CPI level: %v\n", err)
				return subcommands.ExitFailure
			}
		}
		fmt.Printf("Fetched %d CPI levels.\n", len(levels))
	}

	if c.what == "all" || c.what == "quotes" {
		sources, err := loadSources(s)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
		fetched, failures := quotes.FetchAll(client, sources)
		for key, err := range failures {
			fmt.Fprintf(os.Stderr, "Warning: %s: %v\n", key.Ticker, err)
			status = subcommands.ExitFailure
		}
		for key, q := range fetched {
			if err := s.AppendPrice(key, on, q.Price.Decimal()); err != nil {
				fmt.Fprintf(os.Stderr, "Error saving price for %s: %v\n", key.Ticker, err)
				return subcommands.ExitFailure
			}
		}
		fmt.Printf("Fetched %d quotes.\n", len(fetched))
	}
	return status
}

// loadSources reads the quote endpoint declarations from sources.json in the
// data directory.
func loadSources(s *lotfolio.Store) (map[lotfolio.QuoteKey]quotes.Source, error) {
	filename := filepath.Join(s.Path(), "sources.json")
	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("no quote sources declared: %q does not exist", filename)
		}
		return nil, fmt.Errorf("could not read %q: %w", filename, err)
	}
	var declared []struct {
		Ticker   string        `json:"ticker"`
		Exchange string        `json:"exchange"`
		Source   quotes.Source `json:"source"`
	}
	if err := json.Unmarshal(data, &declared); err != nil {
		return nil, fmt.Errorf("could not parse %q: %w", filename, err)
	}
	sources := make(map[lotfolio.QuoteKey]quotes.Source, len(declared))
	for _, d := range declared {
		sources[lotfolio.QuoteKey{Ticker: d.Ticker, Exchange: d.Exchange}] = d.Source
	}
	return sources, nil
}
