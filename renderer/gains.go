package renderer

import (
	"sort"

	"github.com/lotfolio/lotfolio"
)

// Gains is the realized gains and tax report: every closed lot chunk of the
// selected holdings, chronologically, with the tax totals.
type Gains struct {
	Date     lotfolio.Date `json:"date"`
	Currency string        `json:"currency"`
	Rows     []GainRow     `json:"rows"`

	TotalProceeds lotfolio.Money `json:"totalProceeds"`
	TotalGain     lotfolio.Money `json:"totalGain"`
	TotalTaxable  lotfolio.Money `json:"totalTaxable"`
	TotalTax      lotfolio.Money `json:"totalTax"`
}

// GainRow is one closed lot chunk.
type GainRow struct {
	Portfolio   string            `json:"portfolio"`
	Ticker      string            `json:"ticker"`
	Purchased   lotfolio.Date     `json:"purchased"`
	Sold        lotfolio.Date     `json:"sold"`
	Quantity    lotfolio.Quantity `json:"quantity"`
	Cost        lotfolio.Money    `json:"cost"`
	Proceeds    lotfolio.Money    `json:"proceeds"`
	Gain        lotfolio.Money    `json:"gain"`
	TaxableGain lotfolio.Money    `json:"taxableGain"`
	Tax         lotfolio.Money    `json:"tax"`
}

// NewGains builds the report from the realized lots of a set of holdings,
// limited to sales inside [from, to]. A zero from or to leaves that side
// open.
func NewGains(holdings []*lotfolio.Holding, currency string, rates *lotfolio.RateTable, from, to lotfolio.Date) *Gains {
	v := &Gains{
		Currency:      currency,
		Date:          to,
		TotalProceeds: lotfolio.M(0, currency),
		TotalGain:     lotfolio.M(0, currency),
		TotalTaxable:  lotfolio.M(0, currency),
		TotalTax:      lotfolio.M(0, currency),
	}
	for _, h := range holdings {
		for _, lot := range h.RealizedLots() {
			if !from.IsZero() && lot.Sold.Before(from) {
				continue
			}
			if !to.IsZero() && lot.Sold.After(to) {
				continue
			}
			row := GainRow{
				Portfolio:   h.Key.Portfolio,
				Ticker:      h.Key.Ticker,
				Purchased:   lot.Purchased,
				Sold:        lot.Sold,
				Quantity:    lot.Quantity,
				Cost:        lot.CostIn(currency, rates),
				Proceeds:    rates.Convert(lot.Proceeds, currency),
				Gain:        rates.Convert(lot.RealizedGainNet, currency),
				TaxableGain: rates.Convert(lot.TaxableGain, currency),
				Tax:         rates.Convert(lot.Tax, currency),
			}
			v.Rows = append(v.Rows, row)
			v.TotalProceeds = v.TotalProceeds.Add(row.Proceeds)
			v.TotalGain = v.TotalGain.Add(row.Gain)
			v.TotalTaxable = v.TotalTaxable.Add(row.TaxableGain)
			v.TotalTax = v.TotalTax.Add(row.Tax)
		}
	}
	sort.SliceStable(v.Rows, func(i, j int) bool {
		if v.Rows[i].Sold != v.Rows[j].Sold {
			return v.Rows[i].Sold.Before(v.Rows[j].Sold)
		}
		return v.Rows[i].Ticker < v.Rows[j].Ticker
	})
	return v
}

const gainsMarkdownTemplate = `# Realized Gains
{{- if .Rows }}

| Portfolio | Ticker | Purchased | Sold | Quantity | Cost | Proceeds | Gain | Taxable | Tax |
|:---|:---|:---|:---|---:|---:|---:|---:|---:|---:|
{{- range .Rows }}
| {{ .Portfolio }} | {{ .Ticker }} | {{ .Purchased }} | {{ .Sold }} | {{ .Quantity }} | {{ .Cost }} | {{ .Proceeds }} | {{ .Gain }} | {{ .TaxableGain }} | {{ .Tax }} |
{{- end }}
| **Total** | | | | | | **{{ .TotalProceeds }}** | **{{ .TotalGain }}** | **{{ .TotalTaxable }}** | **{{ .TotalTax }}** |
{{- else }}

No realized gains in the period.
{{- end }}
`

// RenderGains renders the Gains view to markdown.
func RenderGains(g *Gains) string {
	return render("gains", gainsMarkdownTemplate, g)
}
