// Package gemini proxies chat requests to the Google generative language API.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
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

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com"
	defaultModel   = "gemini-2.5-flash-preview-09-2025"

	// FallbackText is returned when the upstream answers without a usable
	// candidate.
	FallbackText = "Sin respuesta del asistente."
)

// systemInstruction pins the assistant to its Biokuam persona. It is injected
// server-side so clients cannot override it.
const systemInstruction = `Eres el Asistente Virtual de Biokuam, un proyecto social enfocado en ayudar a los campesinos del municipio de Simijaca, Colombia, para el cultivo de maíz. ` +
	`Tu rol es responder preguntas sobre agricultura, manejo de cultivos de maíz, y análisis de la calidad del agua (pH y temperatura) basado en los parámetros ideales. ` +
	`Parámetros óptimos para maíz: pH ideal entre 6.0 y 7.5, temperatura del agua entre 20°C y 30°C. ` +
	`Sé amigable y alentador, con respuestas claras, prácticas y concisas en lenguaje sencillo adecuado para un agricultor. ` +
	`Cuando se te pida evaluar el agua usa los parámetros óptimos; si el usuario no proporciona datos, pídele los valores de pH y temperatura.`

// Config holds client settings. BaseURL is overridable for tests.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// Client calls the generateContent endpoint with a server-held key.
type Client struct {
	httpClient *http.Client
	apiKey     string
	model      string
	baseURL    string
	logger     *slog.Logger
	breaker    *circuitbreaker.Breaker
	retryCfg   *retry.Config
}

// NewClient creates a Gemini client. The key may be empty; each call then
// fails with ErrUnavailable so the rest of the server stays usable.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	breaker := circuitbreaker.New(5, 2, 30*time.Second)
	breaker.OnStateChange(func(from, to circuitbreaker.State) {
		logger.Warn("gemini circuit state changed",
			slog.String("from", from.String()),
			slog.String("to", to.String()),
		)
	})

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
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

// Generate forwards the client's conversation history and returns the first
// candidate's text. The raw upstream body is never surfaced to callers.
func (c *Client) Generate(ctx context.Context, contents json.RawMessage) (string, error) {
	if c.apiKey == "" {
		return "", domain.NewError(domain.ErrUnavailable, "Asistente no disponible")
	}
	if !c.breaker.Allow() {
		metrics.ObserveUpstream("gemini", "circuit_open")
		return "", domain.NewError(domain.ErrUpstream, "Error consultando el asistente")
	}

	if len(contents) == 0 {
		contents = json.RawMessage(`[]`)
	}
	payload := map[string]any{
		"contents": contents,
		"systemInstruction": map[string]any{
			"parts": []map[string]string{{"text": systemInstruction}},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode gemini payload: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		c.baseURL, c.model, url.QueryEscape(c.apiKey))

	// Only transport errors are retried; an HTTP response of any status ends
	// the attempt loop.
	result, err := retry.Do(ctx, c.retryCfg, c.logger, "gemini.generate",
		func(ctx context.Context) (httpResult, error) {
			req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
			if err != nil {
				return httpResult{}, err
			}
			req.Header.Set("Content-Type", "application/json")

			resp, err := c.httpClient.Do(req)
			if err != nil {
				return httpResult{}, fmt.Errorf("gemini request: %w", err)
			}
			defer resp.Body.Close()
			data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
			if err != nil {
				return httpResult{}, fmt.Errorf("gemini response: %w", err)
			}
			return httpResult{status: resp.StatusCode, body: data}, nil
		})
	if err != nil {
		c.breaker.Failure()
		metrics.ObserveUpstream("gemini", "network_error")
		c.logger.Error("gemini call failed", slog.String("error", err.Error()))
		return "", domain.NewError(domain.ErrUpstream, "Error consultando el asistente")
	}

	if result.status != http.StatusOK {
		c.breaker.Failure()
		metrics.ObserveUpstream("gemini", "upstream_error")
		// Log the status only; the upstream body may echo the key.
		c.logger.Error("gemini returned non-success status", slog.Int("status", result.status))
		return "", domain.NewError(domain.ErrUpstream, "Error consultando el asistente")
	}

	c.breaker.Success()
	metrics.ObserveUpstream("gemini", "ok")

	text := gjson.GetBytes(result.body, "candidates.0.content.parts.0.text")
	if !text.Exists() || text.String() == "" {
		return FallbackText, nil
	}
	return text.String(), nil
}
