package renderer

import (
	"github.com/lotfolio/lotfolio"
)

// Summary is the global snapshot report: every holding with its weight, plus
// the portfolio-wide totals in the display currency.
type Summary struct {
	Date     lotfolio.Date   `json:"date"`
	Currency string          `json:"currency"`
	AUM      lotfolio.Money  `json:"aum"`
	Rows     []SummaryRow    `json:"rows"`
	Totals   []SummaryFigure `json:"totals"`
}

// SummaryRow is one holding in the snapshot.
type SummaryRow struct {
	Portfolio         string            `json:"portfolio"`
	Ticker            string            `json:"ticker"`
	Exchange          string            `json:"exchange"`
	MarketValue       lotfolio.Money    `json:"marketValue"`
	UnrealizedGain    lotfolio.Money    `json:"unrealizedGain"`
	WeightInPortfolio lotfolio.Percent  `json:"weightInPortfolio"`
	WeightGlobal      lotfolio.Percent  `json:"weightGlobal"`
}

// SummaryFigure is one labeled total at the bottom of the report.
type SummaryFigure struct {
	Label string         `json:"label"`
	Value lotfolio.Money `json:"value"`
}

// NewSummary builds the report view from an engine snapshot.
func NewSummary(s lotfolio.Summary) *Summary {
	v := &Summary{
		Date:     s.Date,
		Currency: s.Currency,
		AUM:      s.AUM,
	}
	for _, row := range s.Holdings {
		v.Rows = append(v.Rows, SummaryRow{
			Portfolio:         row.Key.Portfolio,
			Ticker:            row.Key.Ticker,
			Exchange:          row.Key.Exchange,
			MarketValue:       row.MarketValue,
			UnrealizedGain:    row.UnrealizedGain,
			WeightInPortfolio: row.WeightInPortfolio,
			WeightGlobal:      row.WeightGlobal,
		})
	}
	v.Totals = []SummaryFigure{
		{"Unrealized Gain", s.TotalUnrealized},
		{"Realized Gain (net)", s.TotalRealized},
		{"Dividends (net)", s.TotalDividends},
		{"Fees", s.TotalFees},
		{"Tax Paid", s.TotalTax},
		{"Total Return", s.TotalReturn},
		{"Value After Tax", s.ValueAfterTax},
	}
	return v
}

const summaryMarkdownTemplate = `# Portfolio Summary on {{ .Date }}

Assets Under Management: **{{ .AUM }}**
{{- if .Rows }}

| Portfolio | Ticker | Market Value | Unrealized | Weight | Global |
|:---|:---|---:|---:|---:|---:|
{{- range .Rows }}
| {{ .Portfolio }} | {{ .Ticker }} | {{ .MarketValue }} | {{ .UnrealizedGain }} | {{ .WeightInPortfolio }} | {{ .WeightGlobal }} |
{{- end }}
{{- end }}

| | |
|:---|---:|
{{- range .Totals }}
| {{ .Label }} | {{ .Value }} |
{{- end }}
`

// RenderSummary renders the Summary view to markdown.
func RenderSummary(s *Summary) string {
	return render("summary", summaryMarkdownTemplate, s)
}
