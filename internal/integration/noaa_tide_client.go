package integration

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/abelzeko/angler-bot/internal/entities"
	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"
)

// DefaultNOAAURL is the NOAA CO-OPS data API endpoint
const DefaultNOAAURL = "https://api.tidesandcurrents.noaa.gov/api/prod/datagetter"

const noaaTimeLayout = "2006-01-02 15:04"

// NOAATideClient fetches high/low tide predictions from NOAA CO-OPS
type NOAATideClient struct {
	baseURL string
	client  *http.Client
	now     func() time.Time
}

// NewNOAATideClient creates a new NOAA tide client; empty baseURL selects the public API
func NewNOAATideClient(baseURL string, client *http.Client) *NOAATideClient {
	if baseURL == "" {
		baseURL = DefaultNOAAURL
	}
	return &NOAATideClient{
		baseURL: baseURL,
		client:  newHTTPClient(client),
		now:     time.Now,
	}
}

// FetchTide retrieves hi/lo predictions from a day back to two days ahead
func (nc *NOAATideClient) FetchTide(ctx context.Context, loc entities.Location) (entities.TideData, error) {
	if !loc.HasTide() {
		return entities.TideData{}, entities.ErrNoTideStation
	}

	now := nc.now().UTC()
	q := url.Values{}
	q.Set("product", "predictions")
	q.Set("application", "angler-bot")
	q.Set("begin_date", now.Add(-24*time.Hour).Format("20060102"))
	q.Set("end_date", now.Add(48*time.Hour).Format("20060102"))
	q.Set("datum", "MLLW")
	q.Set("station", loc.TideStation)
	q.Set("time_zone", "gmt")
	q.Set("interval", "hilo")
	q.Set("units", "metric")
	q.Set("format", "json")

	log.Info().Str("station", loc.TideStation).Msg("Requesting tide predictions from NOAA")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, nc.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return entities.TideData{}, fmt.Errorf("failed to build tide request: %w", err)
	}

	res, err := nc.client.Do(req)
	if err != nil {
		return entities.TideData{}, fmt.Errorf("failed to fetch tide predictions: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return entities.TideData{}, fmt.Errorf("unexpected tide status code: %d %s", res.StatusCode, res.Status)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return entities.TideData{}, fmt.Errorf("failed to read tide response: %w", err)
	}

	events, err := parseNOAAPredictions(body)
	if err != nil {
		return entities.TideData{}, fmt.Errorf("station %s: %w", loc.TideStation, err)
	}

	data := entities.TideData{
		LocationID: loc.ID,
		Station:    loc.TideStation,
		Events:     events,
	}
	log.Info().Str("station", loc.TideStation).Int("events", len(events)).Msg("Received tide predictions")
	return data.Derive(now), nil
}

func parseNOAAPredictions(body []byte) ([]entities.TideEvent, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("tide response is not valid JSON")
	}
	if msg := gjson.GetBytes(body, "error.message"); msg.Exists() {
		return nil, fmt.Errorf("NOAA error: %s", msg.String())
	}

	var events []entities.TideEvent
	var parseErr error
	gjson.GetBytes(body, "predictions").ForEach(func(_, p gjson.Result) bool {
		t, err := time.ParseInLocation(noaaTimeLayout, p.Get("t").String(), time.UTC)
		if err != nil {
			parseErr = fmt.Errorf("failed to parse prediction time %q: %w", p.Get("t").String(), err)
			return false
		}
		height, err := strconv.ParseFloat(p.Get("v").String(), 64)
		if err != nil {
			parseErr = fmt.Errorf("failed to parse prediction height %q: %w", p.Get("v").String(), err)
			return false
		}

		tideType := entities.TideLow
		if p.Get("type").String() == "H" {
			tideType = entities.TideHigh
		}
		events = append(events, entities.TideEvent{Type: tideType, Time: t, Height: height})
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	if len(events) == 0 {
		return nil, fmt.Errorf("no tide predictions returned")
	}
	return events, nil
}
