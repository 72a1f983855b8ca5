// Package cbs fetches the Israeli consumer price index from the Central
// Bureau of Statistics public API.
package cbs

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/lotfolio/lotfolio"
)

// GeneralIndexID is the series id of the general consumer price index.
const GeneralIndexID = "120010"

const indexURL = "https://api.cbs.gov.il/index/data/price?id=%s&format=json&startPeriod=%s&endPeriod=%s"

// indexResponse is the CBS JSON shape: one series holding monthly
// observations, each with the index level against the current base.
type indexResponse struct {
	Month []struct {
		Code string `json:"code"`
		Name string `json:"name"`
		Date []struct {
			Year     int `json:"year"`
			Month    int `json:"month"`
			CurrBase struct {
				Value float64 `json:"value"`
			} `json:"currBase"`
		} `json:"date"`
	} `json:"month"`
}

// Fetch retrieves the monthly index levels of a series between two dates.
// Each level is keyed to the last day of its month, so an as-of lookup on any
// later date sees the published figure.
func Fetch(client *http.Client, seriesID string, from, to lotfolio.Date) (map[lotfolio.Date]float64, error) {
	if client == nil {
		client = http.DefaultClient
	}
	addr := fmt.Sprintf(indexURL, seriesID, monthOf(from), monthOf(to))
	log.Println("Downloading from CBS:", addr)

	resp, err := client.Get(addr)
	if err != nil {
		return nil, fmt.Errorf("failed to download CBS index %s: %w", seriesID, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download CBS index %s: received status %s", seriesID, resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read CBS response: %w", err)
	}

	var parsed indexResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse CBS index %s: %w", seriesID, err)
	}

	levels := make(map[lotfolio.Date]float64)
	for _, series := range parsed.Month {
		for _, obs := range series.Date {
			if obs.Month < 1 || obs.Month > 12 {
				return nil, fmt.Errorf("invalid month %d in CBS index %s", obs.Month, seriesID)
			}
			// Day 0 of the next month is the last day of this one.
			day := lotfolio.NewDate(obs.Year, time.Month(obs.Month)+1, 0)
			levels[day] = obs.CurrBase.Value
		}
	}
	if len(levels) == 0 {
		return nil, fmt.Errorf("CBS index %s returned no observations", seriesID)
	}
	return levels, nil
}

func monthOf(d lotfolio.Date) string {
	return fmt.Sprintf("%02d-%04d", int(d.Month()), d.Year())
}
