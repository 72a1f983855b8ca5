package cbs

import (
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/lotfolio/lotfolio"
)

type fixture struct {
	status int
	body   string
}

func (f fixture) RoundTrip(req *http.Request) (*http.Response, error) {
	return &http.Response{
		StatusCode: f.status,
		Status:     http.StatusText(f.status),
		Body:       io.NopCloser(strings.NewReader(f.body)),
		Header:     make(http.Header),
		Request:    req,
	}, nil
}

func fixtureClient(status int, body string) *http.Client {
	return &http.Client{Transport: fixture{status, body}}
}

func TestFetch(t *testing.T) {
	client := fixtureClient(http.StatusOK, `{"month":[{
		"code":"120010","name":"Consumer Price Index - General",
		"date":[
			{"year":2025,"month":1,"currBase":{"value":108.5}},
			{"year":2025,"month":2,"currBase":{"value":109.1}},
			{"year":2024,"month":12,"currBase":{"value":108.2}}
		]
	}]}`)

	levels, err := Fetch(client, GeneralIndexID,
		lotfolio.NewDate(2024, time.December, 1), lotfolio.NewDate(2025, time.February, 28))
	if err != nil {
		t.Fatalf("Fetch() failed: %v", err)
	}
	if len(levels) != 3 {
		t.Fatalf("got %d levels, want 3", len(levels))
	}

	// each level keys to the last day of its month, December handling the
	// year rollover
	testCases := []struct {
		day  lotfolio.Date
		want float64
	}{
		{lotfolio.NewDate(2025, time.January, 31), 108.5},
		{lotfolio.NewDate(2025, time.February, 28), 109.1},
		{lotfolio.NewDate(2024, time.December, 31), 108.2},
	}
	for _, tc := range testCases {
		if got := levels[tc.day]; got != tc.want {
			t.Errorf("level on %s = %v, want %v", tc.day, got, tc.want)
		}
	}
}

func TestFetchEmpty(t *testing.T) {
	client := fixtureClient(http.StatusOK, `{"month":[]}`)
	_, err := Fetch(client, GeneralIndexID,
		lotfolio.NewDate(2025, time.January, 1), lotfolio.NewDate(2025, time.February, 1))
	if err == nil {
		t.Fatal("Fetch() accepted a response without observations")
	}
}

func TestFetchInvalidMonth(t *testing.T) {
	client := fixtureClient(http.StatusOK, `{"month":[{
		"date":[{"year":2025,"month":13,"currBase":{"value":100}}]
	}]}`)
	_, err := Fetch(client, GeneralIndexID,
		lotfolio.NewDate(2025, time.January, 1), lotfolio.NewDate(2025, time.February, 1))
	if err == nil {
		t.Fatal("Fetch() accepted an invalid month")
	}
}

func TestFetchBadStatus(t *testing.T) {
	client := fixtureClient(http.StatusTooManyRequests, "slow down")
	_, err := Fetch(client, GeneralIndexID,
		lotfolio.NewDate(2025, time.January, 1), lotfolio.NewDate(2025, time.February, 1))
	if err == nil {
		t.Fatal("Fetch() accepted a non-200 response")
	}
}
