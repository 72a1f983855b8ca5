package lotfolio

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// TxnType identifies the kind of a transaction. The set is closed: the
// engine ignores values it does not recognize, as forward compatibility
// rather than a data error.
type TxnType string

const (
	TxnBuy          TxnType = "buy"
	TxnSell         TxnType = "sell"
	TxnDividend     TxnType = "dividend"
	TxnFee          TxnType = "fee"
	TxnSellTransfer TxnType = "sell-transfer"
	TxnBuyTransfer  TxnType = "buy-transfer"
)

// Transaction is an immutable input event. The whole ledger is rebuilt from
// the raw transaction stream on every load; no derived state is persisted.
type Transaction struct {
	ID        string  `json:"id,omitempty"`
	Date      Date    `json:"date"`
	Portfolio string  `json:"portfolio"`
	Ticker    string  `json:"ticker"`
	Exchange  string  `json:"exchange,omitempty"`
	Type      TxnType `json:"type"`

	Quantity Quantity `json:"quantity,omitempty"`
	Price    Money    `json:"-"` // per unit, in the trade currency
	Fee      Money    `json:"-"` // commission, in the trade currency

	// VestDate defers a lot's eligibility; zero means vested at purchase.
	VestDate Date `json:"vestDate,omitempty"`

	// TransferID pairs a sell-transfer with its buy-transfer destinations
	// when several transfers share a date.
	TransferID string `json:"transferId,omitempty"`

	// Broker-reported per-unit prices recorded at statement time. When set
	// they take precedence over converting Price at current rates, keeping
	// the cost basis free of FX drift.
	ReportedPriceILA decimal.Decimal `json:"reportedPriceIla,omitempty"`
	ReportedPriceUSD decimal.Decimal `json:"reportedPriceUsd,omitempty"`
}

// Key returns the holding key this transaction belongs to.
func (t Transaction) Key() HoldingKey {
	return HoldingKey{Portfolio: t.Portfolio, Ticker: t.Ticker, Exchange: t.Exchange}
}

// Amount returns the transaction's total trade value, quantity times price.
func (t Transaction) Amount() Money { return t.Price.Mul(t.Quantity) }

func (t Transaction) String() string {
	return fmt.Sprintf("%s %s %s %s x %s", t.Date, t.Type, t.Ticker, t.Quantity, t.Price)
}

// MarshalJSON keeps a stable field order in the persisted JSONL, so ledger
// files diff cleanly under version control.
func (t Transaction) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("date", t.Date)
	w.Append("type", t.Type)
	w.Append("portfolio", t.Portfolio)
	w.Append("ticker", t.Ticker)
	w.Optional("exchange", t.Exchange)
	w.Optional("id", t.ID)
	if !t.Quantity.IsZero() {
		w.Append("quantity", t.Quantity)
	}
	if !t.Price.IsZero() {
		w.Append("price", t.Price.Decimal())
		w.Append("currency", t.Price.Currency())
	}
	if !t.Fee.IsZero() {
		w.Append("fee", t.Fee.Decimal())
	}
	if !t.VestDate.IsZero() {
		w.Append("vestDate", t.VestDate)
	}
	w.Optional("transferId", t.TransferID)
	if !t.ReportedPriceILA.IsZero() {
		w.Append("reportedPriceIla", t.ReportedPriceILA)
	}
	if !t.ReportedPriceUSD.IsZero() {
		w.Append("reportedPriceUsd", t.ReportedPriceUSD)
	}
	return w.MarshalJSON()
}

// UnmarshalJSON reads the flat persisted form where price, currency and fee
// are separate scalar fields.
func (t *Transaction) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID               string          `json:"id"`
		Date             Date            `json:"date"`
		Type             TxnType         `json:"type"`
		Portfolio        string          `json:"portfolio"`
		Ticker           string          `json:"ticker"`
		Exchange         string          `json:"exchange"`
		Quantity         Quantity        `json:"quantity"`
		Price            decimal.Decimal `json:"price"`
		Currency         string          `json:"currency"`
		Fee              decimal.Decimal `json:"fee"`
		VestDate         Date            `json:"vestDate"`
		TransferID       string          `json:"transferId"`
		ReportedPriceILA decimal.Decimal `json:"reportedPriceIla"`
		ReportedPriceUSD decimal.Decimal `json:"reportedPriceUsd"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*t = Transaction{
		ID:               raw.ID,
		Date:             raw.Date,
		Type:             raw.Type,
		Portfolio:        raw.Portfolio,
		Ticker:           raw.Ticker,
		Exchange:         raw.Exchange,
		Quantity:         raw.Quantity,
		Price:            M(raw.Price, raw.Currency),
		Fee:              M(raw.Fee, raw.Currency),
		VestDate:         raw.VestDate,
		TransferID:       raw.TransferID,
		ReportedPriceILA: raw.ReportedPriceILA,
		ReportedPriceUSD: raw.ReportedPriceUSD,
	}
	return nil
}

// DividendEvent is a raw per-share dividend announcement from the market
// data collaborator. Reinvested is the fraction of the net amount that was
// used to buy more shares; the rest was paid out as cash.
type DividendEvent struct {
	Ticker     string          `json:"ticker"`
	Exchange   string          `json:"exchange,omitempty"`
	Date       Date            `json:"date"`
	PerShare   Money           `json:"-"`
	Source     string          `json:"source,omitempty"`
	Reinvested decimal.Decimal `json:"reinvested,omitempty"`
}

func (d DividendEvent) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("date", d.Date)
	w.Append("ticker", d.Ticker)
	w.Optional("exchange", d.Exchange)
	w.Append("perShare", d.PerShare.Decimal())
	w.Append("currency", d.PerShare.Currency())
	w.Optional("source", d.Source)
	if !d.Reinvested.IsZero() {
		w.Append("reinvested", d.Reinvested)
	}
	return w.MarshalJSON()
}

func (d *DividendEvent) UnmarshalJSON(data []byte) error {
	var raw struct {
		Ticker     string          `json:"ticker"`
		Exchange   string          `json:"exchange"`
		Date       Date            `json:"date"`
		PerShare   decimal.Decimal `json:"perShare"`
		Currency   string          `json:"currency"`
		Source     string          `json:"source"`
		Reinvested decimal.Decimal `json:"reinvested"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*d = DividendEvent{
		Ticker:     raw.Ticker,
		Exchange:   raw.Exchange,
		Date:       raw.Date,
		PerShare:   M(raw.PerShare, raw.Currency),
		Source:     raw.Source,
		Reinvested: raw.Reinvested,
	}
	return nil
}
