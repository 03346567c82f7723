package integration

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/abelzeko/angler-bot/internal/entities"
	"github.com/rs/zerolog/log"
)

// TideTableScraper reads tide events from an HTML tide table page.
// The URL template must contain {station}.
type TideTableScraper struct {
	urlTemplate string
	location    *time.Location
	client      *http.Client
	now         func() time.Time
}

// timeLayouts are the timestamp formats seen in tide tables
var timeLayouts = []string{
	"2006-01-02 15:04",
	"02.01.2006 15:04",
	"2006-01-02T15:04",
	"01/02/2006 15:04",
}

// NewTideTableScraper creates a new scraper; tz names the zone the table's times are in
func NewTideTableScraper(urlTemplate, tz string, client *http.Client) (*TideTableScraper, error) {
	if !strings.Contains(urlTemplate, "{station}") {
		return nil, fmt.Errorf("tide table url must contain {station}: %s", urlTemplate)
	}

	loc := time.UTC
	if tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("failed to load tide table timezone %s: %w", tz, err)
		}
		loc = l
	}

	return &TideTableScraper{
		urlTemplate: urlTemplate,
		location:    loc,
		client:      newHTTPClient(client),
		now:         time.Now,
	}, nil
}

// FetchTide scrapes the tide table for the location's station
func (ts *TideTableScraper) FetchTide(ctx context.Context, loc entities.Location) (entities.TideData, error) {
	if !loc.HasTide() {
		return entities.TideData{}, entities.ErrNoTideStation
	}

	pageURL := strings.ReplaceAll(ts.urlTemplate, "{station}", loc.TideStation)
	log.Info().Str("url", pageURL).Msg("Sending HTTP request to tide table page")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return entities.TideData{}, fmt.Errorf("failed to build tide table request: %w", err)
	}
	res, err := ts.client.Do(req)
	if err != nil {
		return entities.TideData{}, fmt.Errorf("failed to fetch the tide table: %w", err)
	}
	defer res.Body.Close()

	// Check for successful response
	if res.StatusCode != http.StatusOK {
		return entities.TideData{}, fmt.Errorf("unexpected status code: %d %s", res.StatusCode, res.Status)
	}

	// Parse the HTML document
	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return entities.TideData{}, fmt.Errorf("failed to parse the tide table: %w", err)
	}

	events := ts.ParseTideTable(doc)
	if len(events) == 0 {
		return entities.TideData{}, fmt.Errorf("no tide events found for station %s", loc.TideStation)
	}

	data := entities.TideData{
		LocationID: loc.ID,
		Station:    loc.TideStation,
		Events:     events,
	}
	return data.Derive(ts.now()), nil
}

// ParseTideTable extracts high/low events from rows of time | type | height
func (ts *TideTableScraper) ParseTideTable(doc *goquery.Document) []entities.TideEvent {
	var events []entities.TideEvent
	processedRows := 0
	skippedRows := 0

	doc.Find("table tr").Each(func(index int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 3 {
			return
		}
		processedRows++

		timeStr := strings.TrimSpace(cells.Eq(0).Text())
		typeStr := strings.ToLower(strings.TrimSpace(cells.Eq(1).Text()))
		heightStr := strings.TrimSpace(cells.Eq(2).Text())

		var tideType entities.TideType
		switch {
		case strings.HasPrefix(typeStr, "high") || typeStr == "h" || typeStr == "hw":
			tideType = entities.TideHigh
		case strings.HasPrefix(typeStr, "low") || typeStr == "l" || typeStr == "lw":
			tideType = entities.TideLow
		default:
			skippedRows++
			return
		}

		t, ok := ts.parseTime(timeStr)
		if !ok {
			log.Warn().Str("value", timeStr).Msg("Skipping row with invalid timestamp format")
			skippedRows++
			return
		}

		height, err := parseHeight(heightStr)
		if err != nil {
			log.Warn().Str("value", heightStr).Msg("Skipping row with invalid height")
			skippedRows++
			return
		}

		events = append(events, entities.TideEvent{Type: tideType, Time: t, Height: height})
	})

	log.Info().
		Int("processed", processedRows).
		Int("valid", len(events)).
		Int("skipped", skippedRows).
		Msg("Parsed tide table")
	return events
}

func (ts *TideTableScraper) parseTime(s string) (time.Time, bool) {
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, ts.location); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseHeight accepts values like "1.23", "1,23 m" or "-0.1m"
func parseHeight(s string) (float64, error) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "m"))
	s = strings.ReplaceAll(s, ",", ".")
	return strconv.ParseFloat(s, 64)
}
