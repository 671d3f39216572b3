// Package weather proxies current-conditions lookups to OpenWeatherMap.
package weather

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/tidwall/gjson"

	"github.com/biokuam/portal/internal/domain"
	"github.com/biokuam/portal/internal/observability/metrics"
	"github.com/biokuam/portal/internal/reliability/circuitbreaker"
	"github.com/biokuam/portal/internal/reliability/retry"
)

const defaultBaseURL = "https://api.openweathermap.org"

// Report is the reshaped upstream response.
type Report struct {
	Temp        float64 `json:"temp"`
	Description string  `json:"description"`
	Emoji       string  `json:"emoji"`
	Humedad     float64 `json:"humedad"`
	Viento      float64 `json:"viento"`
}

// iconEmojis maps the first two characters of an OpenWeather icon code to a
// display glyph. Unknown codes fall back to a thermometer.
var iconEmojis = map[string]string{
	"01": "☀️",
	"02": "⛅",
	"03": "☁️",
	"04": "☁️",
	"09": "🌧️",
	"10": "🌦️",
	"11": "⛈️",
	"13": "❄️",
	"50": "🌫️",
}

const unknownEmoji = "🌡️"

// Config holds client settings. BaseURL is overridable for tests.
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// Client calls the current-weather endpoint with a server-held key.
type Client struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	logger     *slog.Logger
	breaker    *circuitbreaker.Breaker
	retryCfg   *retry.Config
}

// NewClient creates a weather client. The key may be empty; each call then
// fails with ErrUnavailable so the rest of the server stays usable.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	breaker := circuitbreaker.New(5, 2, 30*time.Second)
	breaker.OnStateChange(func(from, to circuitbreaker.State) {
		logger.Warn("weather circuit state changed",
			slog.String("from", from.String()),
			slog.String("to", to.String()),
		)
	})

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		apiKey:     cfg.APIKey,
		baseURL:    cfg.BaseURL,
		logger:     logger,
		breaker:    breaker,
		retryCfg:   retry.DefaultConfig(),
	}
}

type httpResult struct {
	status int
	body   []byte
}

// Current fetches the conditions at lat/lon in metric units with Spanish
// descriptions.
func (c *Client) Current(ctx context.Context, lat, lon string) (*Report, error) {
	if c.apiKey == "" {
		return nil, domain.NewError(domain.ErrUnavailable, "Servicio de clima no disponible")
	}
	if !c.breaker.Allow() {
		metrics.ObserveUpstream("weather", "circuit_open")
		return nil, domain.NewError(domain.ErrUpstream, "Error consultando el clima")
	}

	q := url.Values{}
	q.Set("lat", lat)
	q.Set("lon", lon)
	q.Set("appid", c.apiKey)
	q.Set("units", "metric")
	q.Set("lang", "es")
	endpoint := c.baseURL + "/data/2.5/weather?" + q.Encode()

	result, err := retry.Do(ctx, c.retryCfg, c.logger, "weather.current",
		func(ctx context.Context) (httpResult, error) {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
			if err != nil {
				return httpResult{}, err
			}
			resp, err := c.httpClient.Do(req)
			if err != nil {
				return httpResult{}, fmt.Errorf("weather request: %w", err)
			}
			defer resp.Body.Close()
			data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
			if err != nil {
				return httpResult{}, fmt.Errorf("weather response: %w", err)
			}
			return httpResult{status: resp.StatusCode, body: data}, nil
		})
	if err != nil {
		c.breaker.Failure()
		metrics.ObserveUpstream("weather", "network_error")
		c.logger.Error("weather call failed", slog.String("error", err.Error()))
		return nil, domain.NewError(domain.ErrUpstream, "Error consultando el clima")
	}

	if result.status != http.StatusOK {
		c.breaker.Failure()
		metrics.ObserveUpstream("weather", "upstream_error")
		c.logger.Error("weather returned non-success status", slog.Int("status", result.status))
		return nil, domain.NewError(domain.ErrUpstream, "Error consultando el clima")
	}

	c.breaker.Success()
	metrics.ObserveUpstream("weather", "ok")

	body := result.body
	return &Report{
		Temp:        gjson.GetBytes(body, "main.temp").Float(),
		Description: gjson.GetBytes(body, "weather.0.description").String(),
		Emoji:       emojiForIcon(gjson.GetBytes(body, "weather.0.icon").String()),
		Humedad:     gjson.GetBytes(body, "main.humidity").Float(),
		Viento:      gjson.GetBytes(body, "wind.speed").Float(),
	}, nil
}

func emojiForIcon(icon string) string {
	if len(icon) < 2 {
		return unknownEmoji
	}
	if e, ok := iconEmojis[icon[:2]]; ok {
		return e
	}
	return unknownEmoji
}
