// Package quotes fetches live security quotes from JSON HTTP endpoints.
// Endpoints differ wildly in shape, so a Source describes where each figure
// lives as a jsonpath expression instead of a hardcoded struct per provider.
package quotes

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/PaesslerAG/jsonpath"

	"github.com/lotfolio/lotfolio"
)

// Source describes one quote endpoint. URL may contain {ticker} and
// {exchange} placeholders. PricePath is required; ChangePath and PerfPaths
// are optional and yield day-change and per-window performance fractions.
type Source struct {
	Name string
	URL  string
	// Currency is the trading currency of prices published by the endpoint.
	Currency   string
	PricePath  string
	ChangePath string
	PerfPaths  map[lotfolio.Window]string
}

// Fetch retrieves one quote from the source.
func (s Source) Fetch(client *http.Client, key lotfolio.QuoteKey) (lotfolio.Quote, error) {
	addr := strings.NewReplacer("{ticker}", key.Ticker, "{exchange}", key.Exchange).Replace(s.URL)

	var jobj any
	if err := jwget(client, addr, &jobj); err != nil {
		return lotfolio.Quote{}, fmt.Errorf("error retrieving %s from %s: %w", key.Ticker, s.Name, err)
	}

	price, err := extract(jobj, s.PricePath)
	if err != nil {
		return lotfolio.Quote{}, fmt.Errorf("error parsing %s price from %s: %w", key.Ticker, s.Name, err)
	}
	if price == 0 || math.IsNaN(price) {
		return lotfolio.Quote{}, fmt.Errorf("empty quote for %s from %s", key.Ticker, s.Name)
	}
	q := lotfolio.Quote{Price: lotfolio.M(price, s.Currency)}

	if s.ChangePath != "" {
		change, err := extract(jobj, s.ChangePath)
		if err != nil {
			return lotfolio.Quote{}, fmt.Errorf("error parsing %s day change from %s: %w", key.Ticker, s.Name, err)
		}
		q.DayChangePct = lotfolio.Percent(change)
	}
	if len(s.PerfPaths) > 0 {
		q.Perf = make(map[lotfolio.Window]lotfolio.Percent, len(s.PerfPaths))
		for w, path := range s.PerfPaths {
			perf, err := extract(jobj, path)
			if err != nil {
				// A window the endpoint stopped publishing should not sink
				// the quote; the performance report treats it as unknown.
				continue
			}
			q.Perf[w] = lotfolio.Percent(perf)
		}
	}
	return q, nil
}

// FetchAll retrieves one quote per security, collecting per-security errors
// instead of failing the whole batch.
func FetchAll(client *http.Client, sources map[lotfolio.QuoteKey]Source) (map[lotfolio.QuoteKey]lotfolio.Quote, map[lotfolio.QuoteKey]error) {
	result := make(map[lotfolio.QuoteKey]lotfolio.Quote, len(sources))
	failures := make(map[lotfolio.QuoteKey]error)
	for key, src := range sources {
		q, err := src.Fetch(client, key)
		if err != nil {
			failures[key] = err
			continue
		}
		result[key] = q
	}
	return result, failures
}

// extract evaluates a jsonpath expression and coerces the result to a float.
func extract(jobj any, path string) (float64, error) {
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return math.NaN(), fmt.Errorf("jsonpath %q: %w", path, err)
	}
	// jsonpath sometimes returns a one-element list instead of a scalar;
	// keep the first element if so.
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		jval = jlist[0]
	}
	switch v := jval.(type) {
	case float64:
		return v, nil
	case string:
		// Some endpoints quote numbers as localized strings.
		v = strings.ReplaceAll(v, ",", ".")
		v = strings.ReplaceAll(v, " ", "")
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return math.NaN(), fmt.Errorf("jsonpath %q: invalid number %q: %w", path, v, err)
		}
		return f, nil
	default:
		return math.NaN(), fmt.Errorf("jsonpath %q: not a number: %v", path, jval)
	}
}
