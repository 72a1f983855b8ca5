package renderer

import (
	"github.com/lotfolio/lotfolio"
)

// Holding is the single-position detail report: quantities, values, and the
// full lot ledger of one holding.
type Holding struct {
	Portfolio string        `json:"portfolio"`
	Ticker    string        `json:"ticker"`
	Exchange  string        `json:"exchange"`
	Date      lotfolio.Date `json:"date"`
	Currency  string        `json:"currency"`

	QtyVested   lotfolio.Quantity `json:"qtyVested"`
	QtyUnvested lotfolio.Quantity `json:"qtyUnvested"`
	QtyTotal    lotfolio.Quantity `json:"qtyTotal"`

	MarketValue    lotfolio.Money `json:"marketValue"`
	CostBasis      lotfolio.Money `json:"costBasis"`
	UnrealizedGain lotfolio.Money `json:"unrealizedGain"`
	RealizedGain   lotfolio.Money `json:"realizedGain"`
	Dividends      lotfolio.Money `json:"dividends"`
	Fees           lotfolio.Money `json:"fees"`
	TaxPaid        lotfolio.Money `json:"taxPaid"`

	ActiveLots   []LotRow `json:"activeLots,omitempty"`
	RealizedLots []LotRow `json:"realizedLots,omitempty"`
}

// LotRow is one lot of the ledger.
type LotRow struct {
	Purchased lotfolio.Date     `json:"purchased"`
	Quantity  lotfolio.Quantity `json:"quantity"`
	Cost      lotfolio.Money    `json:"cost"`
	Vests     string            `json:"vests,omitempty"`
	Status    string            `json:"status"`

	Sold     lotfolio.Date  `json:"sold,omitzero"`
	Proceeds lotfolio.Money `json:"proceeds,omitzero"`
	Gain     lotfolio.Money `json:"gain,omitzero"`
	Tax      lotfolio.Money `json:"tax,omitzero"`
}

// NewHolding builds the detail view of one holding in a display currency.
func NewHolding(h *lotfolio.Holding, currency string, rates *lotfolio.RateTable, now lotfolio.Date) *Holding {
	v := &Holding{
		Portfolio: h.Key.Portfolio,
		Ticker:    h.Key.Ticker,
		Exchange:  h.Key.Exchange,
		Date:      now,
		Currency:  currency,

		QtyVested:   h.QtyVested(),
		QtyUnvested: h.QtyUnvested(),
		QtyTotal:    h.QtyTotal(),

		MarketValue:    h.MarketValue(currency, rates),
		CostBasis:      h.CostBasis(currency, rates),
		UnrealizedGain: h.UnrealizedGain(currency, rates),
		RealizedGain:   rates.Convert(h.RealizedGainNet(), currency),
		Dividends:      rates.Convert(h.DividendsTotal(), currency),
		Fees:           rates.Convert(h.FeesTotal(), currency),
		TaxPaid:        rates.Convert(h.TotalTaxPaid(), currency),
	}

	for _, lot := range h.ActiveLots() {
		row := LotRow{
			Purchased: lot.Purchased,
			Quantity:  lot.Quantity,
			Cost:      lot.CostIn(currency, rates),
			Status:    lot.Status.String(),
		}
		if !lot.Vested(now) {
			row.Vests = lot.VestDate.String()
		}
		v.ActiveLots = append(v.ActiveLots, row)
	}
	for _, lot := range h.RealizedLots() {
		v.RealizedLots = append(v.RealizedLots, LotRow{
			Purchased: lot.Purchased,
			Quantity:  lot.Quantity,
			Cost:      lot.CostIn(currency, rates),
			Status:    lot.Status.String(),
			Sold:      lot.Sold,
			Proceeds:  rates.Convert(lot.Proceeds, currency),
			Gain:      rates.Convert(lot.RealizedGainNet, currency),
			Tax:       rates.Convert(lot.Tax, currency),
		})
	}
	return v
}

const holdingMarkdownTemplate = `# {{ .Ticker }} ({{ .Portfolio }}) on {{ .Date }}

| | |
|:---|---:|
| Units held | {{ .QtyTotal }} |
{{- if not .QtyUnvested.IsZero }}
| of which unvested | {{ .QtyUnvested }} |
{{- end }}
| Market Value | {{ .MarketValue }} |
| Cost Basis | {{ .CostBasis }} |
| Unrealized Gain | {{ .UnrealizedGain }} |
| Realized Gain (net) | {{ .RealizedGain }} |
| Dividends (net) | {{ .Dividends }} |
| Fees | {{ .Fees }} |
| Tax Paid | {{ .TaxPaid }} |

{{- if .ActiveLots }}

## Open Lots

| Purchased | Quantity | Cost | Vests | Status |
|:---|---:|---:|:---|:---|
{{- range .ActiveLots }}
| {{ .Purchased }} | {{ .Quantity }} | {{ .Cost }} | {{ .Vests }} | {{ .Status }} |
{{- end }}
{{- end -}}

{{- if .RealizedLots }}

## Closed Lots

| Purchased | Sold | Quantity | Cost | Proceeds | Gain | Tax |
|:---|:---|---:|---:|---:|---:|---:|
{{- range .RealizedLots }}
| {{ .Purchased }} | {{ .Sold }} | {{ .Quantity }} | {{ .Cost }} | {{ .Proceeds }} | {{ .Gain }} | {{ .Tax }} |
{{- end }}
{{- end -}}
`

// RenderHolding renders the Holding view to markdown.
func RenderHolding(h *Holding) string {
	return render("holding", holdingMarkdownTemplate, h)
}
