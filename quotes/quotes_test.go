package quotes

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lotfolio/lotfolio"
)

func TestSourceFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/POLI.TA") {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, `{
			"quote": {"last": 3550.0, "changePercent": 0.012},
			"perf": {"week": 0.05, "ytd": "7,5"}
		}`)
	}))
	defer srv.Close()

	src := Source{
		Name:       "test",
		URL:        srv.URL + "/quote/{ticker}.{exchange}",
		Currency:   lotfolio.ILA,
		PricePath:  "$.quote.last",
		ChangePath: "$.quote.changePercent",
		PerfPaths: map[lotfolio.Window]string{
			lotfolio.Week1: "$.perf.week",
			// a localized string number, decimal comma and all
			lotfolio.YTD: "$.perf.ytd",
			// a path the endpoint does not publish
			lotfolio.Year1: "$.perf.year",
		},
	}

	q, err := src.Fetch(srv.Client(), lotfolio.QuoteKey{Ticker: "POLI", Exchange: "TA"})
	if err != nil {
		t.Fatalf("Fetch() failed: %v", err)
	}
	if !q.Price.Equal(lotfolio.M(3550, lotfolio.ILA)) {
		t.Errorf("price = %s %s, want 3550 ILA", q.Price.Decimal(), q.Price.Currency())
	}
	if !q.DayChangePct.Equal(0.012) {
		t.Errorf("day change = %s, want 1.20%%", q.DayChangePct)
	}
	if !q.Perf[lotfolio.Week1].Equal(0.05) {
		t.Errorf("1w perf = %s, want 5%%", q.Perf[lotfolio.Week1])
	}
	if !q.Perf[lotfolio.YTD].Equal(7.5) {
		t.Errorf("ytd perf = %s, want 750%%", q.Perf[lotfolio.YTD])
	}
	// the unpublished window is absent, not zero
	if _, ok := q.Perf[lotfolio.Year1]; ok {
		t.Error("unpublished window should be missing from the quote")
	}
}

func TestSourceFetchZeroPrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"price": 0}`)
	}))
	defer srv.Close()

	src := Source{Name: "test", URL: srv.URL, Currency: lotfolio.USD, PricePath: "$.price"}
	if _, err := src.Fetch(srv.Client(), lotfolio.QuoteKey{Ticker: "VTI"}); err == nil {
		t.Fatal("Fetch() accepted a zero price")
	}
}

func TestSourceFetchListResult(t *testing.T) {
	// some endpoints answer with a one-element list instead of a scalar
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"items": [{"price": 101.5}]}`)
	}))
	defer srv.Close()

	src := Source{Name: "test", URL: srv.URL, Currency: lotfolio.USD, PricePath: "$.items[*].price"}
	q, err := src.Fetch(srv.Client(), lotfolio.QuoteKey{Ticker: "VTI"})
	if err != nil {
		t.Fatalf("Fetch() failed: %v", err)
	}
	if !q.Price.Equal(lotfolio.M(101.5, lotfolio.USD)) {
		t.Errorf("price = %s, want 101.5", q.Price.Decimal())
	}
}

func TestFetchAllCollectsFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "BAD") {
			http.Error(w, "no such ticker", http.StatusNotFound)
			return
		}
		fmt.Fprint(w, `{"price": 42}`)
	}))
	defer srv.Close()

	sources := map[lotfolio.QuoteKey]Source{
		{Ticker: "GOOD"}: {Name: "test", URL: srv.URL + "/{ticker}", Currency: lotfolio.USD, PricePath: "$.price"},
		{Ticker: "BAD"}:  {Name: "test", URL: srv.URL + "/{ticker}", Currency: lotfolio.USD, PricePath: "$.price"},
	}

	result, failures := FetchAll(srv.Client(), sources)
	if len(result) != 1 {
		t.Fatalf("got %d quotes, want 1", len(result))
	}
	if _, ok := result[lotfolio.QuoteKey{Ticker: "GOOD"}]; !ok {
		t.Error("the good ticker is missing from the results")
	}
	if len(failures) != 1 {
		t.Fatalf("got %d failures, want 1", len(failures))
	}
	if _, ok := failures[lotfolio.QuoteKey{Ticker: "BAD"}]; !ok {
		t.Error("the bad ticker is missing from the failures")
	}
}
