// Package boi fetches ILS exchange rates from the Bank of Israel public API.
package boi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/lotfolio/lotfolio"
)

const ratesURL = "https://boi.org.il/PublicApi/GetExchangeRates"

// rateEntry is one currency in the BOI response. Rates are quoted as ILS per
// Unit units of the currency.
type rateEntry struct {
	Key        string  `json:"key"`
	Rate       float64 `json:"currentExchangeRate"`
	Unit       float64 `json:"unit"`
	LastUpdate string  `json:"lastUpdate"`
}

type ratesResponse struct {
	ExchangeRates []rateEntry `json:"exchangeRates"`
}

// FetchCurrent retrieves the latest published representative rates for the
// requested currencies. The result maps currency code to ILS per one unit,
// normalized for currencies the bank quotes per 10 or 100 units.
func FetchCurrent(client *http.Client, currencies []string) (map[string]float64, error) {
	if client == nil {
		client = http.DefaultClient
	}
	log.Println("Downloading from Bank of Israel:", ratesURL)
	resp, err := client.Get(ratesURL)
	if err != nil {
		return nil, fmt.Errorf("failed to download BOI rates: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download BOI rates: received status %s", resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read BOI response: %w", err)
	}

	var parsed ratesResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse BOI response: %w", err)
	}

	wanted := make(map[string]bool, len(currencies))
	for _, c := range currencies {
		wanted[c] = true
	}

	rates := make(map[string]float64)
	var errs error
	for _, e := range parsed.ExchangeRates {
		if len(wanted) > 0 && !wanted[e.Key] {
			continue
		}
		if e.Unit <= 0 {
			errs = errors.Join(errs, fmt.Errorf("BOI quotes %s with unit %v", e.Key, e.Unit))
			continue
		}
		rates[e.Key] = e.Rate / e.Unit
	}
	for c := range wanted {
		if _, ok := rates[c]; !ok {
			errs = errors.Join(errs, fmt.Errorf("BOI did not publish a rate for %s", c))
		}
	}
	return rates, errs
}

const seriesURL = "https://edge.boi.gov.il/FusionEdgeServer/sdmx/v2/data/dataflow/BOI.STATISTICS/EXR/1.0/RER_%s_ILS"

// seriesResponse is the SDMX-JSON shape of one historical rate series.
type seriesResponse struct {
	Data struct {
		DataSets []struct {
			Series map[string]struct {
				Observations map[string][]float64 `json:"observations"`
			} `json:"series"`
		} `json:"dataSets"`
		Structures []struct {
			Dimensions struct {
				Observation []struct {
					ID     string `json:"id"`
					Values []struct {
						Value string `json:"value"`
					} `json:"values"`
				} `json:"observation"`
			} `json:"dimensions"`
		} `json:"structures"`
	} `json:"data"`
}

// FetchSeries retrieves the daily representative rate series of one currency
// between two dates, as date to ILS-per-unit.
func FetchSeries(client *http.Client, currency string, from, to lotfolio.Date) (map[lotfolio.Date]float64, error) {
	if client == nil {
		client = http.DefaultClient
	}
	addr := fmt.Sprintf(seriesURL, url.PathEscape(currency))
	addr += fmt.Sprintf("?startPeriod=%s&endPeriod=%s&format=sdmx-json", from, to)
	log.Println("Downloading from Bank of Israel:", addr)

	resp, err := client.Get(addr)
	if err != nil {
		return nil, fmt.Errorf("failed to download BOI series for %s: %w", currency, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download BOI series for %s: received status %s", currency, resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read BOI series response: %w", err)
	}

	var parsed seriesResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse BOI series for %s: %w", currency, err)
	}
	return decodeSeries(&parsed, currency)
}

// decodeSeries flattens the SDMX observation structure: observation keys are
// indices into the TIME_PERIOD dimension values.
func decodeSeries(parsed *seriesResponse, currency string) (map[lotfolio.Date]float64, error) {
	var periods []string
	for _, s := range parsed.Data.Structures {
		for _, dim := range s.Dimensions.Observation {
			if dim.ID != "TIME_PERIOD" {
				continue
			}
			for _, v := range dim.Values {
				periods = append(periods, v.Value)
			}
		}
	}
	if len(periods) == 0 {
		return nil, fmt.Errorf("BOI series for %s has no time periods", currency)
	}

	values := make(map[lotfolio.Date]float64)
	for _, ds := range parsed.Data.DataSets {
		for _, series := range ds.Series {
			for key, obs := range series.Observations {
				var idx int
				if _, err := fmt.Sscanf(key, "%d", &idx); err != nil || idx < 0 || idx >= len(periods) {
					return nil, fmt.Errorf("BOI series for %s has unexpected observation key %q", currency, key)
				}
				if len(obs) == 0 {
					continue
				}
				day, err := parsePeriod(periods[idx])
				if err != nil {
					return nil, err
				}
				values[day] = obs[0]
			}
		}
	}
	return values, nil
}

func parsePeriod(s string) (lotfolio.Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return lotfolio.Date{}, fmt.Errorf("invalid BOI time period %q: %w", s, err)
	}
	return lotfolio.NewDate(t.Year(), t.Month(), t.Day()), nil
}
