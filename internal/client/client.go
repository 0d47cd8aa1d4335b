// Package client is the data layer for the HealthCompare backend: a
// request wrapper that normalizes every failure into one error type,
// and the catalog of domain operations the pages invoke. Operations
// translate shapes and transport; all business logic stays server-side.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/sudha-nunna/healthcare-project/internal/model"
	"github.com/sudha-nunna/healthcare-project/pkg/apierror"
	"github.com/sudha-nunna/healthcare-project/pkg/circuitbreaker"
	"github.com/sudha-nunna/healthcare-project/pkg/logger"
	"github.com/sudha-nunna/healthcare-project/pkg/metrics"
)

// DefaultTimeout is the fixed upper bound on a round trip.
const DefaultTimeout = 10 * time.Second

var validate = validator.New()

// SessionStore is the slice of the session store the client needs:
// read the token on every request, write on login/signup, clear on
// logout. Nothing else mutates it.
type SessionStore interface {
	Token() string
	Current() model.Session
	Set(ctx context.Context, sess model.Session) error
	Clear(ctx context.Context) error
}

// Config configures the client.
type Config struct {
	// BaseURL is the backend address, read once at startup.
	BaseURL string
	// Timeout bounds each round trip; defaults to DefaultTimeout.
	Timeout time.Duration
	// HTTPClient overrides the default client (tests inject one). A
	// cookie jar is attached when absent so cookies travel alongside
	// the bearer token.
	HTTPClient *http.Client
	// Session supplies the bearer token; nil means anonymous.
	Session SessionStore
	// RateLimitRPS throttles outgoing requests; zero disables.
	RateLimitRPS int
	// BreakerMaxFailures is the connection-failure streak that opens
	// the circuit; BreakerCooldown how long it stays open.
	BreakerMaxFailures int
	BreakerCooldown    time.Duration

	Logger  *logger.Logger
	Metrics *metrics.Metrics
}

// Client is the request wrapper.
type Client struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	session    SessionStore
	limiter    *rate.Limiter
	breaker    *circuitbreaker.CircuitBreaker
	log        *logger.Logger
	metrics    *metrics.Metrics
}

func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Nop()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NewNop()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create cookie jar: %w", err)
		}
		httpClient = &http.Client{Jar: jar}
	}

	var limiter *rate.Limiter
	if cfg.RateLimitRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitRPS)
	}

	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		timeout:    cfg.Timeout,
		httpClient: httpClient,
		session:    cfg.Session,
		limiter:    limiter,
		breaker: circuitbreaker.NewCircuitBreaker(circuitbreaker.Settings{
			Name:        "healthcompare-api",
			MaxFailures: cfg.BreakerMaxFailures,
			Timeout:     cfg.BreakerCooldown,
		}),
		log:     cfg.Logger,
		metrics: cfg.Metrics,
	}, nil
}

// BaseURL returns the configured backend address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) token() string {
	if c.session == nil {
		return ""
	}
	return c.session.Token()
}

// do performs one JSON round trip. Every failure path ends in a typed
// *apierror.Error, never a silent empty result.
func (c *Client) do(ctx context.Context, op, method, path string, body, out interface{}) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return apierror.NewNetworkUnreachable("rate limiter interrupted", err)
		}
	}

	// The health probe always goes through so the connectivity
	// self-test can close the circuit.
	if op != "health" {
		if err := c.breaker.Allow(); err != nil {
			c.metrics.BreakerShortCuts.Inc()
			c.countError(op, apierror.NetworkUnreachable)
			return apierror.NewNetworkUnreachable(
				fmt.Sprintf("backend at %s is unreachable (failing fast)", c.baseURL), err)
		}
	}

	var bodyReader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return apierror.NewValidation("request body is not serializable", err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return apierror.NewValidation("failed to build request", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if token := c.token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	c.log.Debug("api request", "operation", op, "method", method, "path", path)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.RequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())

	if err != nil {
		return c.transportError(op, err)
	}
	defer resp.Body.Close()

	c.breaker.RecordSuccess()

	// Read as text first; an unparsable body becomes the error
	// payload instead of crashing the decode.
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.countError(op, apierror.NetworkUnreachable)
		return apierror.NewNetworkUnreachable("failed to read response body", err)
	}
	text := string(raw)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := errorMessage(raw, resp)
		c.log.Debug("api error", "operation", op, "status", resp.StatusCode, "message", msg)
		c.countError(op, apierror.HTTPError)
		return apierror.NewHTTP(resp.StatusCode, msg)
	}

	c.metrics.RequestsTotal.WithLabelValues(op, "ok").Inc()

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		// Partial success: whatever decoded stays in out, the raw
		// payload travels on the error.
		c.countError(op, apierror.MalformedResponse)
		return apierror.NewMalformedResponse(text, err)
	}
	return nil
}

// transportError classifies a failed round trip: deadline exceeded is
// a Timeout, everything else at the connection level is
// NetworkUnreachable and counts against the breaker.
func (c *Client) transportError(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		c.countError(op, apierror.Timeout)
		return apierror.NewTimeout(
			fmt.Sprintf("backend at %s did not respond within %s", c.baseURL, c.timeout), err)
	}
	if errors.Is(err, context.Canceled) {
		c.countError(op, apierror.Timeout)
		return apierror.NewTimeout("request canceled", err)
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		c.countError(op, apierror.Timeout)
		return apierror.NewTimeout(
			fmt.Sprintf("backend at %s did not respond within %s", c.baseURL, c.timeout), err)
	}

	wasOpen := c.breaker.State() == "open"
	c.breaker.RecordFailure()
	if !wasOpen && c.breaker.State() == "open" {
		c.metrics.BreakerOpens.Inc()
		c.log.Warn("circuit opened after connection failures", "base_url", c.baseURL)
	}

	c.countError(op, apierror.NetworkUnreachable)
	return apierror.NewNetworkUnreachable(
		fmt.Sprintf("cannot connect to backend at %s", c.baseURL), err)
}

func (c *Client) countError(op string, kind apierror.Kind) {
	c.metrics.RequestsTotal.WithLabelValues(op, "error").Inc()
	c.metrics.RequestErrors.WithLabelValues(op, kind.String()).Inc()
}

type errorEnvelope struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// errorMessage picks the surfaced message for a non-2xx response:
// body.message, else body.error, else the HTTP status text.
func errorMessage(raw []byte, resp *http.Response) string {
	var envelope errorEnvelope
	if err := json.Unmarshal(raw, &envelope); err == nil {
		if envelope.Message != "" {
			return envelope.Message
		}
		if envelope.Error != "" {
			return envelope.Error
		}
	}
	if text := http.StatusText(resp.StatusCode); text != "" {
		return text
	}
	return "request failed"
}

func (c *Client) get(ctx context.Context, op, path string, out interface{}) error {
	return c.do(ctx, op, http.MethodGet, path, nil, out)
}

func (c *Client) post(ctx context.Context, op, path string, body, out interface{}) error {
	return c.do(ctx, op, http.MethodPost, path, body, out)
}

func (c *Client) put(ctx context.Context, op, path string, body, out interface{}) error {
	return c.do(ctx, op, http.MethodPut, path, body, out)
}

func (c *Client) delete(ctx context.Context, op, path string, out interface{}) error {
	return c.do(ctx, op, http.MethodDelete, path, nil, out)
}

// validateRequest runs required-field presence checks and wraps any
// failure as a ValidationError raised before the network call.
func validateRequest(req interface{}) error {
	if err := validate.Struct(req); err != nil {
		return apierror.NewValidation("missing or invalid required fields", err)
	}
	return nil
}
