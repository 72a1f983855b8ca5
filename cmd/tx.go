package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	"github.com/lotfolio/lotfolio"
)

// appendTransactions appends transactions to the store's ledger file.
func appendTransactions(txs ...lotfolio.Transaction) subcommands.ExitStatus {
	s := Store()
	if err := s.AppendTransactions(txs...); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing transactions: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Successfully appended %d transaction(s) to %s\n", len(txs), s.Path())
	return subcommands.ExitSuccess
}

// tradeFlags are the flags shared by every trade-shaped command.
type tradeFlags struct {
	date      string
	portfolio string
	ticker    string
	exchange  string
	quantity  float64
	price     float64
	currency  string
	fee       float64
}

func (c *tradeFlags) set(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", lotfolio.Today().String(), "Transaction date (YYYY-MM-DD)")
	f.StringVar(&c.portfolio, "P", "main", "Portfolio the transaction belongs to")
	f.StringVar(&c.ticker, "s", "", "Security ticker")
	f.StringVar(&c.exchange, "e", "", "Exchange the security trades on")
	f.Float64Var(&c.quantity, "q", 0, "Number of shares")
	f.Float64Var(&c.price, "p", 0, "Price per share, in the trade currency")
	f.StringVar(&c.currency, "c", lotfolio.ILS, "Trade currency")
	f.Float64Var(&c.fee, "fee", 0, "Commission, in the trade currency")
}

func (c *tradeFlags) transaction(t lotfolio.TxnType) (lotfolio.Transaction, error) {
	day, err := lotfolio.ParseDate(c.date)
	if err != nil {
		return lotfolio.Transaction{}, fmt.Errorf("error parsing date: %w", err)
	}
	return lotfolio.Transaction{
		Date:      day,
		Portfolio: c.portfolio,
		Ticker:    c.ticker,
		Exchange:  c.exchange,
		Type:      t,
		Quantity:  lotfolio.Q(c.quantity),
		Price:     lotfolio.M(c.price, c.currency),
		Fee:       lotfolio.M(c.fee, c.currency),
	}, nil
}

// --- Buy Command ---

type buyCmd struct {
	tradeFlags
	vestDate    string
	reportedILA float64
	reportedUSD float64
}

func (*buyCmd) Name() string     { return "buy" }
func (*buyCmd) Synopsis() string { return "purchase shares to open or add to a position" }
func (*buyCmd) Usage() string {
	return `lotf buy -s <ticker> -q <quantity> -p <price> [-c <currency>] [-d <date>] [-P <portfolio>]

  Purchases shares of a security, opening a new cost-basis lot. The broker
  statement price can be recorded with -ila or -usd so the lot's cost is
  frozen at the reported figure instead of a rate conversion.
`
}

func (c *buyCmd) SetFlags(f *flag.FlagSet) {
	c.set(f)
	f.StringVar(&c.vestDate, "vest", "", "Vesting date for deferred instruments (YYYY-MM-DD)")
	f.Float64Var(&c.reportedILA, "ila", 0, "Broker-reported price per share in agorot")
	f.Float64Var(&c.reportedUSD, "usd", 0, "Broker-reported price per share in USD")
}

func (c *buyCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.ticker == "" || c.quantity <= 0 || c.price <= 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	tx, err := c.transaction(lotfolio.TxnBuy)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	if c.vestDate != "" {
		tx.VestDate, err = lotfolio.ParseDate(c.vestDate)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing vest date: %v\n", err)
			return subcommands.ExitUsageError
		}
	}
	if c.reportedILA > 0 {
		tx.ReportedPriceILA = decimal.NewFromFloat(c.reportedILA)
	}
	if c.reportedUSD > 0 {
		tx.ReportedPriceUSD = decimal.NewFromFloat(c.reportedUSD)
	}
	return appendTransactions(tx)
}

// --- Sell Command ---

type sellCmd struct {
	tradeFlags
}

func (*sellCmd) Name() string     { return "sell" }
func (*sellCmd) Synopsis() string { return "sell shares against the oldest open lots" }
func (*sellCmd) Usage() string {
	return `lotf sell -s <ticker> -q <quantity> -p <price> [-c <currency>] [-d <date>] [-P <portfolio>]

  Sells shares of a security. Lots are consumed oldest first and the realized
  and taxable gains are computed per consumed chunk.
`
}

func (c *sellCmd) SetFlags(f *flag.FlagSet) { c.set(f) }

func (c *sellCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.ticker == "" || c.quantity <= 0 || c.price < 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	tx, err := c.transaction(lotfolio.TxnSell)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	return appendTransactions(tx)
}

// --- Dividend Command ---

type dividendCmd struct {
	date       string
	ticker     string
	exchange   string
	perShare   float64
	currency   string
	source     string
	reinvested float64
}

func (*dividendCmd) Name() string     { return "dividend" }
func (*dividendCmd) Synopsis() string { return "record a per-share dividend announcement" }
func (*dividendCmd) Usage() string {
	return `lotf dividend -s <ticker> -a <per-share> [-c <currency>] [-d <date>] [-r <fraction>]

  Records a dividend announcement. The engine applies it to every portfolio
  holding the security on the announcement date, splitting the net amount
  between cash and reinvestment by the -r fraction.
`
}

func (c *dividendCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", lotfolio.Today().String(), "Announcement date (YYYY-MM-DD)")
	f.StringVar(&c.ticker, "s", "", "Security ticker")
	f.StringVar(&c.exchange, "e", "", "Exchange, empty matches any")
	f.Float64Var(&c.perShare, "a", 0, "Dividend per share, in the dividend currency")
	f.StringVar(&c.currency, "c", lotfolio.ILS, "Dividend currency")
	f.StringVar(&c.source, "src", "", "Data source of the announcement")
	f.Float64Var(&c.reinvested, "r", 0, "Fraction of the net amount reinvested, 0 to 1")
}

func (c *dividendCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.ticker == "" || c.perShare <= 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	day, err := lotfolio.ParseDate(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}
	ev := lotfolio.DividendEvent{
		Ticker:     c.ticker,
		Exchange:   c.exchange,
		Date:       day,
		PerShare:   lotfolio.M(c.perShare, c.currency),
		Source:     c.source,
		Reinvested: decimal.NewFromFloat(c.reinvested),
	}
	s := Store()
	if err := s.AppendDividends(ev); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing dividend: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Successfully appended dividend to %s\n", s.Path())
	return subcommands.ExitSuccess
}

// --- Fee Command ---

type feeCmd struct {
	date      string
	portfolio string
	ticker    string
	exchange  string
	amount    float64
	currency  string
}

func (*feeCmd) Name() string     { return "fee" }
func (*feeCmd) Synopsis() string { return "record a one-off fee against a holding" }
func (*feeCmd) Usage() string {
	return `lotf fee -s <ticker> -a <amount> [-c <currency>] [-d <date>] [-P <portfolio>]

  Records a one-off fee. Fees reduce the holding's total return but never its
  cost basis.
`
}

func (c *feeCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", lotfolio.Today().String(), "Fee date (YYYY-MM-DD)")
	f.StringVar(&c.portfolio, "P", "main", "Portfolio the fee belongs to")
	f.StringVar(&c.ticker, "s", "", "Security ticker")
	f.StringVar(&c.exchange, "e", "", "Exchange the security trades on")
	f.Float64Var(&c.amount, "a", 0, "Fee amount")
	f.StringVar(&c.currency, "c", lotfolio.ILS, "Fee currency")
}

func (c *feeCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.ticker == "" || c.amount <= 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	day, err := lotfolio.ParseDate(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}
	return appendTransactions(lotfolio.Transaction{
		Date:      day,
		Portfolio: c.portfolio,
		Ticker:    c.ticker,
		Exchange:  c.exchange,
		Type:      lotfolio.TxnFee,
		Fee:       lotfolio.M(c.amount, c.currency),
	})
}

// --- Transfer Command ---

type transferCmd struct {
	date       string
	ticker     string
	exchange   string
	from       string
	to         string
	quantity   float64
	price      float64
	currency   string
	transferID string
}

func (*transferCmd) Name() string     { return "transfer" }
func (*transferCmd) Synopsis() string { return "move shares between portfolios carrying their cost basis" }
func (*transferCmd) Usage() string {
	return `lotf transfer -s <ticker> -q <quantity> -from <portfolio> -to <portfolio> [-p <price>] [-d <date>]

  Moves shares in kind between portfolios. This is not a taxable event: the
  destination inherits the source's cost basis, not the market value on the
  transfer date. The price flag records the market price at transfer time,
  used only to allocate the basis across multiple destinations.
`
}

func (c *transferCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", lotfolio.Today().String(), "Transfer date (YYYY-MM-DD)")
	f.StringVar(&c.ticker, "s", "", "Security ticker")
	f.StringVar(&c.exchange, "e", "", "Exchange the security trades on")
	f.StringVar(&c.from, "from", "", "Source portfolio")
	f.StringVar(&c.to, "to", "", "Destination portfolio")
	f.Float64Var(&c.quantity, "q", 0, "Number of shares to move")
	f.Float64Var(&c.price, "p", 0, "Market price per share at transfer time")
	f.StringVar(&c.currency, "c", lotfolio.ILS, "Price currency")
	f.StringVar(&c.transferID, "id", "", "Explicit transfer group id, defaults to the date")
}

func (c *transferCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.ticker == "" || c.quantity <= 0 || c.from == "" || c.to == "" || c.from == c.to {
		f.Usage()
		return subcommands.ExitUsageError
	}
	day, err := lotfolio.ParseDate(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}
	out := lotfolio.Transaction{
		Date:       day,
		Portfolio:  c.from,
		Ticker:     c.ticker,
		Exchange:   c.exchange,
		Type:       lotfolio.TxnSellTransfer,
		Quantity:   lotfolio.Q(c.quantity),
		Price:      lotfolio.M(c.price, c.currency),
		TransferID: c.transferID,
	}
	in := out
	in.Portfolio = c.to
	in.Type = lotfolio.TxnBuyTransfer
	return appendTransactions(out, in)
}

// --- Tx Command ---

type txCmd struct {
	head int
	tail int
}

func (*txCmd) Name() string     { return "tx" }
func (*txCmd) Synopsis() string { return "list the recorded transactions" }
func (*txCmd) Usage() string {
	return `lotf tx [-head <n>] [-tail <n>]

  Lists the raw transaction stream, with options for limiting the output.
`
}

func (c *txCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.head, "head", 0, "Show only the first N transactions.")
	f.IntVar(&c.tail, "tail", 0, "Show only the last N transactions.")
}

func (c *txCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.head > 0 && c.tail > 0 {
		fmt.Fprintln(os.Stderr, "Error: -head and -tail flags cannot be used together.")
		return subcommands.ExitUsageError
	}
	txs, err := Store().Transactions()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if c.head > 0 && len(txs) > c.head {
		txs = txs[:c.head]
	}
	if c.tail > 0 && len(txs) > c.tail {
		txs = txs[len(txs)-c.tail:]
	}
	for _, tx := range txs {
		fmt.Println(tx)
	}
	return subcommands.ExitSuccess
}

// --- Fmt Command ---

type fmtCmd struct{}

func (*fmtCmd) Name() string { return "fmt" }
func (*fmtCmd) Synopsis() string {
	return "validates and rewrites the ledger file in canonical form"
}
func (*fmtCmd) Usage() string {
	return `lotf fmt

  Reads the transaction stream, validates every transaction against the
  declared portfolios, sorts by date, and writes it back in canonical JSONL.
`
}

func (*fmtCmd) SetFlags(*flag.FlagSet) {}

func (c *fmtCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s := Store()
	txs, err := s.Transactions()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: could not load transactions: %v\n", err)
		return subcommands.ExitFailure
	}
	portfolios, err := s.Portfolios()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: could not load portfolios: %v\n", err)
		return subcommands.ExitFailure
	}

	ordered, err := lotfolio.FormatTransactions(txs, portfolios)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting transactions: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := s.SaveTransactions(ordered); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving transactions: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(os.Stderr, "Successfully formatted %d transactions.\n", len(ordered))
	return subcommands.ExitSuccess
}
