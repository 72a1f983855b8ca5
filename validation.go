package lotfolio

import (
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// Validate checks one transaction against the declared portfolios. It
// collects every failure rather than stopping at the first, so a formatting
// pass can report all of them at once.
func Validate(tx Transaction, portfolios map[string]*Portfolio) error {
	var errs error
	if _, ok := portfolios[tx.Portfolio]; !ok {
		errs = errors.Join(errs, fmt.Errorf("transaction %s references undeclared portfolio %q", tx, tx.Portfolio))
	}
	if tx.Ticker == "" {
		errs = errors.Join(errs, fmt.Errorf("transaction %s has no ticker", tx))
	}
	if tx.Date.IsZero() {
		errs = errors.Join(errs, fmt.Errorf("transaction %s has no date", tx))
	}
	switch tx.Type {
	case TxnBuy, TxnSell, TxnSellTransfer, TxnBuyTransfer:
		if !tx.Quantity.IsPositive() {
			errs = errors.Join(errs, fmt.Errorf("transaction %s has non-positive quantity", tx))
		}
	case TxnFee:
		if tx.Fee.IsZero() && tx.Amount().IsZero() {
			errs = errors.Join(errs, fmt.Errorf("transaction %s has no fee amount", tx))
		}
	case TxnDividend:
		// dividends normally arrive as announcement events; one recorded in
		// the stream needs a per-share price to apply
		if !tx.Price.IsPositive() {
			errs = errors.Join(errs, fmt.Errorf("transaction %s has no per-share amount", tx))
		}
	default:
		errs = errors.Join(errs, fmt.Errorf("transaction %s has unknown type %q", tx, tx.Type))
	}
	return errs
}

// FormatTransactions validates the stream and returns it in canonical form:
// every transaction carries an id, and the stream is sorted by date with
// sell-transfers ahead of buy-transfers on the same day. The input order is
// otherwise preserved.
func FormatTransactions(txs []Transaction, portfolios []*Portfolio) ([]Transaction, error) {
	byID := make(map[string]*Portfolio, len(portfolios))
	for _, p := range portfolios {
		byID[p.ID] = p
	}

	var errs error
	ordered := make([]Transaction, len(txs))
	copy(ordered, txs)
	for i := range ordered {
		if err := Validate(ordered[i], byID); err != nil {
			errs = errors.Join(errs, err)
		}
		if ordered[i].ID == "" {
			ordered[i].ID = uuid.NewString()
		}
	}
	if errs != nil {
		return nil, errs
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Date != ordered[j].Date {
			return ordered[i].Date.Before(ordered[j].Date)
		}
		return replayRank(ordered[i].Type) < replayRank(ordered[j].Type)
	})
	return ordered, nil
}
