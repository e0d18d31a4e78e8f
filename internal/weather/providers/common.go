package providers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-dashboard/internal/metrics"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

// BackoffConfig controls exponential backoff behaviour.
// MaxRetries of 0 disables retries.
type BackoffConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// HTTPClientConfig bundles HTTP client and resilience settings.
type HTTPClientConfig struct {
	Client  *http.Client
	Backoff BackoffConfig
}

const maxErrorBody = 4 << 10

var (
	errCircuitOpen   = errors.New("circuit breaker open")
	errNoHTTPClient  = errors.New("http client not configured")
	errInvalidConfig = errors.New("invalid backoff configuration")
)

func newCircuitBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
		// An unknown location says nothing about upstream health.
		IsSuccessful: func(err error) bool {
			return err == nil || weather.KindOf(err) == weather.KindNotFound
		},
	})
}

// classifyStatus maps a non-2xx response to a FetchError.
func classifyStatus(status int, body string) *weather.FetchError {
	kind := weather.KindHTTP
	switch status {
	case http.StatusUnauthorized:
		kind = weather.KindAPIKey
	case http.StatusNotFound:
		kind = weather.KindNotFound
	case http.StatusTooManyRequests:
		kind = weather.KindRateLimit
	}
	return &weather.FetchError{Kind: kind, Status: status, Body: body}
}

func networkError(err error) *weather.FetchError {
	return &weather.FetchError{Kind: weather.KindNetwork, Err: err}
}

func retryable(err error) bool {
	switch weather.KindOf(err) {
	case weather.KindNetwork, weather.KindRateLimit:
		return true
	case weather.KindHTTP:
		var fe *weather.FetchError
		return errors.As(err, &fe) && fe.Status >= 500
	default:
		return false
	}
}

// doRequestWithResilience executes the HTTP request through the circuit breaker,
// retrying with exponential backoff when configured to. Every returned error
// is a *weather.FetchError.
func doRequestWithResilience(
	ctx context.Context,
	endpoint string,
	cfg HTTPClientConfig,
	cb *gobreaker.CircuitBreaker,
	buildRequest func() (*http.Request, error),
) (*http.Response, error) {
	resp, err := doRequest(ctx, cfg, cb, buildRequest)
	result := "ok"
	if err != nil {
		result = string(weather.KindOf(err))
	}
	metrics.UpstreamRequestsTotal.WithLabelValues(endpoint, result).Inc()
	return resp, err
}

func doRequest(
	ctx context.Context,
	cfg HTTPClientConfig,
	cb *gobreaker.CircuitBreaker,
	buildRequest func() (*http.Request, error),
) (*http.Response, error) {
	if cfg.Client == nil {
		return nil, networkError(errNoHTTPClient)
	}
	if cfg.Backoff.MaxRetries < 0 || (cfg.Backoff.MaxRetries > 0 && cfg.Backoff.InitialInterval <= 0) {
		return nil, networkError(errInvalidConfig)
	}

	var attempt int

	for {
		if ctx.Err() != nil {
			return nil, networkError(ctx.Err())
		}

		req, err := buildRequest()
		if err != nil {
			return nil, networkError(err)
		}

		// Ensure the request obeys context cancellation.
		req = req.WithContext(ctx)

		result, err := cb.Execute(func() (interface{}, error) {
			resp, execErr := cfg.Client.Do(req)
			if execErr != nil {
				return nil, networkError(execErr)
			}

			if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				defer resp.Body.Close()
				body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
				return nil, classifyStatus(resp.StatusCode, string(body))
			}

			return resp, nil
		})

		if err == nil {
			resp, ok := result.(*http.Response)
			if !ok {
				return nil, networkError(fmt.Errorf("unexpected result type from circuit breaker"))
			}
			return resp, nil
		}

		// If circuit is open, propagate immediately.
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, networkError(fmt.Errorf("%w: %v", errCircuitOpen, err))
		}

		if attempt >= cfg.Backoff.MaxRetries || !retryable(err) {
			return nil, err
		}

		delay := cfg.Backoff.InitialInterval * time.Duration(math.Pow(2, float64(attempt)))
		if delay > cfg.Backoff.MaxInterval && cfg.Backoff.MaxInterval > 0 {
			delay = cfg.Backoff.MaxInterval
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, networkError(ctx.Err())
		case <-timer.C:
		}

		attempt++
	}
}
