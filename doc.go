// Package lotfolio implements a lot-based cost accounting engine for
// personal investment portfolios under the Israeli tax regime. It is
// designed to be local-first and auditable: every input lives in plain
// JSONL files that can be inspected, diffed, and version-controlled.
//
// The core functionalities include:
//   - Lot Ledger: every purchase opens a cost-basis lot whose cost is
//     frozen at trade time in the trade currency, USD, and ILS. Sales
//     consume lots oldest first, splitting them exactly so that no
//     agora of cost is ever created or destroyed.
//   - Taxable Gains: realized gains are computed per consumed lot chunk,
//     with the real (inflation- or currency-adjusted) gain bounded by
//     the nominal gain under the closer-to-zero rule, and taxed by the
//     portfolio's policy and rate schedule.
//   - Dividends: per-share announcements are applied to every portfolio
//     holding the security, with the net amount split between cash and
//     reinvestment.
//   - Transfers: shares move between portfolios in kind, carrying their
//     cost basis with them instead of realizing a gain.
//   - Replay Engine: holdings are never stored; they are rebuilt from
//     the transaction and dividend streams on every run, so a corrected
//     ledger line retroactively fixes every derived figure.
//   - Performance: daily valuation series, time-weighted returns over
//     standard lookback windows, and top movers.
//
// This package serves as the foundational logic for the `lotf` command
// line tool.
package lotfolio
