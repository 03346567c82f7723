// Package integration handles external service interactions
package integration

import (
	"context"
	"net/http"
	"time"

	"github.com/abelzeko/angler-bot/internal/entities"
)

// DefaultHTTPTimeout bounds every outgoing request made by the providers
const DefaultHTTPTimeout = 15 * time.Second

// WeatherProvider fetches current weather for a location
type WeatherProvider interface {
	FetchWeather(ctx context.Context, loc entities.Location) (entities.WeatherData, error)
}

// TideProvider fetches tide events for a location's station
type TideProvider interface {
	FetchTide(ctx context.Context, loc entities.Location) (entities.TideData, error)
}

func newHTTPClient(client *http.Client) *http.Client {
	if client != nil {
		return client
	}
	return &http.Client{Timeout: DefaultHTTPTimeout}
}
