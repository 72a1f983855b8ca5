package renderer

import (
	"github.com/lotfolio/lotfolio"
)

// Movers is the top-movers report over one window.
type Movers struct {
	Window   lotfolio.Window `json:"window"`
	Currency string          `json:"currency"`
	Rows     []MoverRow      `json:"rows"`
}

// MoverRow is one instrument of the ranking.
type MoverRow struct {
	Ticker   string           `json:"ticker"`
	Exchange string           `json:"exchange"`
	Change   lotfolio.Money   `json:"change"`
	Pct      lotfolio.Percent `json:"pct"`
}

// NewMovers builds the report from a computed ranking, keeping the top n
// entries (all of them when n <= 0).
func NewMovers(movers []lotfolio.Mover, w lotfolio.Window, currency string, n int) *Movers {
	if n > 0 && len(movers) > n {
		movers = movers[:n]
	}
	v := &Movers{Window: w, Currency: currency}
	for _, m := range movers {
		v.Rows = append(v.Rows, MoverRow{
			Ticker:   m.Ticker,
			Exchange: m.Exchange,
			Change:   m.Change,
			Pct:      m.Pct,
		})
	}
	return v
}

const moversMarkdownTemplate = `# Top Movers ({{ .Window }})
{{- if .Rows }}

| Ticker | Exchange | Change | % |
|:---|:---|---:|---:|
{{- range .Rows }}
| {{ .Ticker }} | {{ .Exchange }} | {{ .Change.SignedString }} | {{ .Pct.SignedString }} |
{{- end }}
{{- else }}

No movers to report.
{{- end }}
`

// RenderMovers renders the Movers view to markdown.
func RenderMovers(m *Movers) string {
	return render("movers", moversMarkdownTemplate, m)
}

// Performance is the period-returns report of one holding or series.
type Performance struct {
	Name     string           `json:"name"`
	Date     lotfolio.Date    `json:"date"`
	Currency string           `json:"currency"`
	Rows     []PerformanceRow `json:"rows"`
}

// PerformanceRow is one lookback window.
type PerformanceRow struct {
	Window lotfolio.Window  `json:"window"`
	Pct    lotfolio.Percent `json:"pct"`
	Gain   lotfolio.Money   `json:"gain"`
}

// NewPerformance builds the report from computed period returns, in window
// order.
func NewPerformance(name, currency string, now lotfolio.Date, returns map[lotfolio.Window]lotfolio.PeriodReturn) *Performance {
	v := &Performance{Name: name, Date: now, Currency: currency}
	for _, w := range lotfolio.Windows {
		r, ok := returns[w]
		if !ok {
			continue
		}
		v.Rows = append(v.Rows, PerformanceRow{Window: w, Pct: r.Pct, Gain: r.Gain})
	}
	return v
}

const performanceMarkdownTemplate = `# Performance{{ if .Name }} of {{ .Name }}{{ end }} on {{ .Date }}
{{- if .Rows }}

| Window | Return | Gain |
|:---|---:|---:|
{{- range .Rows }}
| {{ .Window }} | {{ .Pct.SignedString }} | {{ .Gain.SignedString }} |
{{- end }}
{{- else }}

Not enough history to compute returns.
{{- end }}
`

// RenderPerformance renders the Performance view to markdown.
func RenderPerformance(p *Performance) string {
	return render("performance", performanceMarkdownTemplate, p)
}
