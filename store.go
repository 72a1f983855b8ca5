package lotfolio

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
)

// Store is the on-disk layout of a portfolio data directory:
//
//	transactions.jsonl          the raw transaction stream
//	dividends.jsonl             announced dividend events
//	portfolios.json             per-portfolio tax and fee configuration
//	market/<EXCHANGE>/<TICKER>.jsonl   daily close prices
//	rates/<CUR>.jsonl           daily ILS rate per unit of <CUR>
//	cpi.jsonl                   consumer price index levels
//
// All files are line oriented JSON so that diffs stay readable.
type Store struct {
	path string
}

func NewStore(path string) *Store { return &Store{path: path} }

// Path returns the root of the data directory.
func (s *Store) Path() string { return s.path }

// DefaultStorePath resolves the data directory: $LOTFOLIO_DIR if set,
// otherwise ~/.lotfolio.
func DefaultStorePath() string {
	if dir := os.Getenv("LOTFOLIO_DIR"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".lotfolio"
	}
	return filepath.Join(home, ".lotfolio")
}

func (s *Store) transactionsFile() string { return filepath.Join(s.path, "transactions.jsonl") }
func (s *Store) dividendsFile() string    { return filepath.Join(s.path, "dividends.jsonl") }
func (s *Store) portfoliosFile() string   { return filepath.Join(s.path, "portfolios.json") }
func (s *Store) cpiFile() string          { return filepath.Join(s.path, "cpi.jsonl") }

func (s *Store) marketFile(key QuoteKey) string {
	return filepath.Join(s.path, "market", key.Exchange, key.Ticker+".jsonl")
}

func (s *Store) rateFile(currency string) string {
	return filepath.Join(s.path, "rates", currency+".jsonl")
}

// Transactions loads the full transaction stream. A missing file is an
// empty stream, not an error.
func (s *Store) Transactions() ([]Transaction, error) {
	f, err := os.Open(s.transactionsFile())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("could not open %q: %w", s.transactionsFile(), err)
	}
	defer f.Close()
	return DecodeTransactions(f)
}

// SaveTransactions rewrites the whole transaction stream.
func (s *Store) SaveTransactions(txs []Transaction) error {
	return s.writeFile(s.transactionsFile(), func(f *os.File) error {
		return EncodeTransactions(f, txs...)
	})
}

// AppendTransactions appends new transactions without rewriting the file.
func (s *Store) AppendTransactions(txs ...Transaction) error {
	return s.appendFile(s.transactionsFile(), func(f *os.File) error {
		return EncodeTransactions(f, txs...)
	})
}

// Dividends loads the dividend event stream.
func (s *Store) Dividends() ([]DividendEvent, error) {
	f, err := os.Open(s.dividendsFile())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("could not open %q: %w", s.dividendsFile(), err)
	}
	defer f.Close()
	return DecodeDividends(f)
}

// AppendDividends appends new dividend events.
func (s *Store) AppendDividends(events ...DividendEvent) error {
	return s.appendFile(s.dividendsFile(), func(f *os.File) error {
		return EncodeDividends(f, events...)
	})
}

// Portfolios loads the portfolio configuration file. A missing file yields a
// single default ILS portfolio so a fresh directory is immediately usable.
func (s *Store) Portfolios() ([]*Portfolio, error) {
	data, err := os.ReadFile(s.portfoliosFile())
	if err != nil {
		if os.IsNotExist(err) {
			return []*Portfolio{DefaultPortfolio()}, nil
		}
		return nil, fmt.Errorf("could not read %q: %w", s.portfoliosFile(), err)
	}
	var portfolios []*Portfolio
	if err := json.Unmarshal(data, &portfolios); err != nil {
		return nil, fmt.Errorf("could not parse %q: %w", s.portfoliosFile(), err)
	}
	return portfolios, nil
}

// SavePortfolios writes the portfolio configuration file.
func (s *Store) SavePortfolios(portfolios []*Portfolio) error {
	data, err := json.MarshalIndent(portfolios, "", "  ")
	if err != nil {
		return fmt.Errorf("could not encode portfolios: %w", err)
	}
	return s.writeFile(s.portfoliosFile(), func(f *os.File) error {
		_, err := f.Write(append(data, '\n'))
		return err
	})
}

// samplePoint is one line of a history file.
type samplePoint struct {
	Date  Date            `json:"date"`
	Value decimal.Decimal `json:"value"`
}

// History loads the daily price series for one security.
func (s *Store) History(key QuoteKey) (*History, error) {
	return s.readHistory(s.marketFile(key))
}

// Histories loads every price series found under market/.
func (s *Store) Histories() (map[QuoteKey]*History, error) {
	root := filepath.Join(s.path, "market")
	histories := make(map[QuoteKey]*History)
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return filepath.SkipAll
			}
			return err
		}
		if d.IsDir() || !strings.HasSuffix(p, ".jsonl") {
			return nil
		}
		key := QuoteKey{
			Ticker:   strings.TrimSuffix(d.Name(), ".jsonl"),
			Exchange: filepath.Base(filepath.Dir(p)),
		}
		h, err := s.readHistory(p)
		if err != nil {
			return err
		}
		histories[key] = h
		return nil
	})
	if err != nil {
		return nil, err
	}
	return histories, nil
}

// AppendPrice records one daily close for a security.
func (s *Store) AppendPrice(key QuoteKey, on Date, price decimal.Decimal) error {
	return s.appendSample(s.marketFile(key), on, price)
}

// RateHistory loads the daily ILS rate series for one currency.
func (s *Store) RateHistory(currency string) (*History, error) {
	return s.readHistory(s.rateFile(currency))
}

// AppendRate records one daily ILS rate for a currency.
func (s *Store) AppendRate(currency string, on Date, rate decimal.Decimal) error {
	return s.appendSample(s.rateFile(currency), on, rate)
}

// Rates assembles a RateTable from the persisted per-currency series: the
// latest sample of each currency becomes the current slice, and each relative
// window gets the slice as of its start date.
func (s *Store) Rates(now Date) (*RateTable, error) {
	root := filepath.Join(s.path, "rates")
	series := make(map[string]*History)
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return filepath.SkipAll
			}
			return err
		}
		if d.IsDir() || !strings.HasSuffix(p, ".jsonl") {
			return nil
		}
		h, err := s.readHistory(p)
		if err != nil {
			return err
		}
		series[strings.TrimSuffix(d.Name(), ".jsonl")] = h
		return nil
	})
	if err != nil {
		return nil, err
	}
	return BuildRateTable(series, now), nil
}

// CPI loads the consumer price index series.
func (s *Store) CPI() (*CPIIndex, error) {
	h, err := s.readHistory(s.cpiFile())
	if err != nil {
		return nil, err
	}
	cpi := NewCPIIndex()
	for day, v := range h.Values() {
		cpi.Append(day, v)
	}
	return cpi, nil
}

// AppendCPI records one index level.
func (s *Store) AppendCPI(on Date, level decimal.Decimal) error {
	return s.appendSample(s.cpiFile(), on, level)
}

func (s *Store) readHistory(filename string) (*History, error) {
	h := &History{}
	f, err := os.Open(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return h, nil
		}
		return nil, fmt.Errorf("could not open %q: %w", filename, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}
		var p samplePoint
		if err := json.Unmarshal(line, &p); err != nil {
			return nil, fmt.Errorf("format error in %q line %q: %w", filename, string(line), err)
		}
		h.Append(p.Date, p.Value.InexactFloat64())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("could not read %q: %w", filename, err)
	}
	return h, nil
}

func (s *Store) appendSample(filename string, on Date, value decimal.Decimal) error {
	return s.appendFile(filename, func(f *os.File) error {
		return json.NewEncoder(f).Encode(samplePoint{Date: on, Value: value})
	})
}

func (s *Store) writeFile(filename string, write func(*os.File) error) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return fmt.Errorf("could not create directory for %q: %w", filename, err)
	}
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("could not create %q: %w", filename, err)
	}
	defer f.Close()
	return write(f)
}

func (s *Store) appendFile(filename string, write func(*os.File) error) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return fmt.Errorf("could not create directory for %q: %w", filename, err)
	}
	f, err := os.OpenFile(filename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("could not open %q: %w", filename, err)
	}
	defer f.Close()
	return write(f)
}
