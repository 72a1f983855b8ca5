package lotfolio

// QuoteKey identifies an instrument across portfolios.
type QuoteKey struct {
	Ticker   string
	Exchange string
}

// Quote is a live snapshot from the market-data collaborator: the current
// price in the instrument's trading currency plus externally computed
// day and period performance figures.
type Quote struct {
	Price        Money
	DayChangePct Percent
	Perf         map[Window]Percent
}

// QuotesFromHistories derives quotes from stored daily price series, for
// offline reports when no live endpoint was fetched. The price is the latest
// sample, the day change compares the last two samples, and each window's
// performance compares the latest sample with the one in force at the
// window's start. The currencies map gives each instrument's trading
// currency; instruments without one are skipped.
func QuotesFromHistories(histories map[QuoteKey]*History, currencies map[QuoteKey]string, now Date) map[QuoteKey]Quote {
	quotes := make(map[QuoteKey]Quote)
	for key, h := range histories {
		cur, ok := currencies[key]
		if !ok || h.Len() == 0 {
			continue
		}
		_, last := h.Latest()
		q := Quote{Price: M(last, cur), Perf: make(map[Window]Percent)}
		for _, w := range Windows {
			start, ok := h.AsOf(w.Start(now))
			if !ok || start == 0 {
				continue
			}
			p := Percent(last/start - 1)
			if w == Day1 {
				q.DayChangePct = p
			}
			q.Perf[w] = p
		}
		quotes[key] = q
	}
	return quotes
}
