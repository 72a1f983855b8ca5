package lotfolio

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// The raw event stream is persisted as JSONL: one transaction or dividend
// event per line, human readable and git friendly. Only raw inputs are ever
// written; every derived figure is recomputed from scratch on load.

// EncodeTransactions writes transactions one JSON object per line.
func EncodeTransactions(w io.Writer, txs ...Transaction) error {
	enc := json.NewEncoder(w)
	for _, tx := range txs {
		if err := enc.Encode(tx); err != nil {
			return fmt.Errorf("could not encode transaction %s: %w", tx, err)
		}
	}
	return nil
}

// DecodeTransactions reads a JSONL stream of transactions.
func DecodeTransactions(r io.Reader) ([]Transaction, error) {
	var txs []Transaction
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}
		var tx Transaction
		if err := json.Unmarshal(line, &tx); err != nil {
			return nil, fmt.Errorf("format error in line %q: %w", string(line), err)
		}
		txs = append(txs, tx)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("could not read transactions: %w", err)
	}
	return txs, nil
}

// EncodeDividends writes dividend events one JSON object per line.
func EncodeDividends(w io.Writer, events ...DividendEvent) error {
	enc := json.NewEncoder(w)
	for _, ev := range events {
		if err := enc.Encode(ev); err != nil {
			return fmt.Errorf("could not encode dividend %s/%s: %w", ev.Ticker, ev.Date, err)
		}
	}
	return nil
}

// DecodeDividends reads a JSONL stream of dividend events.
func DecodeDividends(r io.Reader) ([]DividendEvent, error) {
	var events []DividendEvent
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}
		var ev DividendEvent
		if err := json.Unmarshal(line, &ev); err != nil {
			return nil, fmt.Errorf("format error in line %q: %w", string(line), err)
		}
		events = append(events, ev)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("could not read dividends: %w", err)
	}
	return events, nil
}
