package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/biokuam/portal/internal/observability/metrics"
	"github.com/biokuam/portal/internal/upstream/weather"
	"github.com/biokuam/portal/pkg/cache"
)

// WeatherResponse is the success envelope for GET /api/clima.
type WeatherResponse struct {
	Success     bool    `json:"success"`
	Temp        float64 `json:"temp"`
	Description string  `json:"description"`
	Emoji       string  `json:"emoji"`
	Humedad     float64 `json:"humedad"`
	Viento      float64 `json:"viento"`
}

// WeatherHandler handles GET /api/clima. Responses are cached per
// coordinate pair to spare the upstream quota.
type WeatherHandler struct {
	client   *weather.Client
	cache    cache.Store
	cacheTTL time.Duration
	logger   *slog.Logger
}

// NewWeatherHandler creates a weather proxy handler. cacheStore may be nil
// to disable caching.
func NewWeatherHandler(client *weather.Client, cacheStore cache.Store, cacheTTL time.Duration, logger *slog.Logger) *WeatherHandler {
	return &WeatherHandler{client: client, cache: cacheStore, cacheTTL: cacheTTL, logger: logger}
}

func (h *WeatherHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	lat := r.URL.Query().Get("lat")
	lon := r.URL.Query().Get("lon")
	if lat == "" || lon == "" {
		writeError(w, http.StatusBadRequest, "Parámetros lat y lon requeridos")
		return
	}

	key := "clima:" + lat + ":" + lon
	if h.cache != nil {
		if cached, ok := h.cache.Get(r.Context(), key); ok {
			metrics.ObserveWeatherCache("hit")
			var report weather.Report
			if err := json.Unmarshal([]byte(cached), &report); err == nil {
				h.respond(w, &report)
				return
			}
		}
		metrics.ObserveWeatherCache("miss")
	}

	report, err := h.client.Current(r.Context(), lat, lon)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	if h.cache != nil && h.cacheTTL > 0 {
		if data, err := json.Marshal(report); err == nil {
			h.cache.Set(r.Context(), key, string(data), h.cacheTTL)
		}
	}
	h.respond(w, report)
}

func (h *WeatherHandler) respond(w http.ResponseWriter, report *weather.Report) {
	writeJSON(w, http.StatusOK, WeatherResponse{
		Success:     true,
		Temp:        report.Temp,
		Description: report.Description,
		Emoji:       report.Emoji,
		Humedad:     report.Humedad,
		Viento:      report.Viento,
	})
}
