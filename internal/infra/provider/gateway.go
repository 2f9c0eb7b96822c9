package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"rental-notify/internal/domain/entity"
	"rental-notify/internal/observability/tracing"
	"rental-notify/internal/resilience/circuitbreaker"
	"rental-notify/internal/resilience/retry"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel/attribute"
)

const (
	defaultGatewayTimeout = 10 * time.Second
	maxResponseBytes      = 1 << 20
	maxErrorBodyLength    = 512
)

// gatewayConfig tunes the shared HTTP plumbing of one adapter.
type gatewayConfig struct {
	Channel entity.Channel

	// Timeout is the HTTP request timeout for gateway API calls
	Timeout time.Duration

	// RequestsPerSecond / Burst configure the token bucket for this gateway
	RequestsPerSecond float64
	Burst             int
}

// gateway is the HTTP client every adapter delegates to. It layers the
// per-channel rate limiter, the per-channel circuit breaker and a short
// retry around a JSON POST, and folds every failure mode into a Result.
type gateway struct {
	channel     entity.Channel
	httpClient  *http.Client
	rateLimiter *RateLimiter
	breaker     *circuitbreaker.CircuitBreaker
}

func newGateway(cfg gatewayConfig) *gateway {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultGatewayTimeout
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 5.0
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 10
	}

	return &gateway{
		channel: cfg.Channel,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		rateLimiter: NewRateLimiter(cfg.RequestsPerSecond, cfg.Burst),
		breaker:     circuitbreaker.New(circuitbreaker.ProviderConfig(string(cfg.Channel))),
	}
}

// postJSON sends payload to url and returns the response body on 2xx.
// On any failure the second return value carries the normalized Result
// and the body is nil.
func (g *gateway) postJSON(ctx context.Context, rawURL string, header http.Header, payload any) ([]byte, *Result) {
	ctx, span := tracing.StartSpan(ctx, "provider.post")
	span.SetAttributes(attribute.String("provider.channel", string(g.channel)))
	defer span.End()

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, failp(ErrCodeTransport, fmt.Sprintf("marshal gateway payload: %v", err))
	}

	if err := g.rateLimiter.Allow(ctx); err != nil {
		return nil, failp(ErrCodeTransport, fmt.Sprintf("rate limiter: %v", err))
	}

	var body []byte
	_, err = g.breaker.Execute(func() (interface{}, error) {
		return nil, retry.WithBackoff(ctx, retry.ProviderConfig(), func() error {
			b, reqErr := g.doPost(ctx, rawURL, header, jsonData)
			if reqErr != nil {
				return reqErr
			}
			body = b
			return nil
		})
	})
	if err != nil {
		span.SetAttributes(attribute.Bool("error", true))
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, failp(ErrCodeCircuitOpen, fmt.Sprintf("%s gateway circuit open", g.channel))
		}
		var httpErr *retry.HTTPError
		if errors.As(err, &httpErr) {
			return nil, failp(fmt.Sprintf("http_%d", httpErr.StatusCode), httpErr.Message)
		}
		return nil, failp(ErrCodeTransport, err.Error())
	}

	return body, nil
}

// transportError stands in for *url.Error on the way out of the gateway.
// Gateway URLs embed credentials (Telegram puts the bot token in the
// request path), and a raw *url.Error prints the full URL, so the error
// would otherwise carry the secret into the delivery ledger, worker
// responses and retry logs. Only the channel and the underlying cause
// are kept; Unwrap preserves the cause so the retry layer can still
// classify timeouts and connection errors.
type transportError struct {
	channel entity.Channel
	op      string
	err     error
}

func (e *transportError) Error() string {
	return fmt.Sprintf("%s %s gateway: %v", e.op, e.channel, e.err)
}

func (e *transportError) Unwrap() error { return e.err }

// wrapTransport strips the request URL out of err. *url.Error is
// replaced by its inner cause; anything else is wrapped as-is.
func (g *gateway) wrapTransport(op string, err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		err = uerr.Err
	}
	return &transportError{channel: g.channel, op: op, err: err}
}

// doPost performs a single HTTP POST. Non-2xx responses come back as
// *retry.HTTPError so the retry layer can tell 5xx/429 from hard 4xx.
func (g *gateway) doPost(ctx context.Context, rawURL string, header http.Header, jsonData []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, bytes.NewReader(jsonData))
	if err != nil {
		return nil, g.wrapTransport("create request for", err)
	}

	req.Header.Set("Content-Type", "application/json")
	for key, values := range header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, g.wrapTransport("post", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return body, nil
	}

	return nil, &retry.HTTPError{
		StatusCode: resp.StatusCode,
		Message:    truncateBody(body, maxErrorBodyLength),
	}
}

func failp(code, message string) *Result {
	r := failed(code, message)
	return &r
}

// decodeResponse unmarshals body into out (best effort, gateways are not
// trusted to honor their own schema) and returns the raw map for the
// ledger's audit column.
func decodeResponse(body []byte, out any) map[string]any {
	_ = json.Unmarshal(body, out)
	return rawBody(body)
}

// rawBody decodes the gateway's JSON response for the ledger's audit
// column. Non-JSON bodies are kept verbatim under a single key.
func rawBody(body []byte) map[string]any {
	if len(body) == 0 {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(body, &m); err != nil {
		return map[string]any{"body": truncateBody(body, maxErrorBodyLength)}
	}
	return m
}

func truncateBody(body []byte, maxLength int) string {
	s := string(body)
	if len(s) <= maxLength {
		return s
	}
	return s[:maxLength] + "..."
}
