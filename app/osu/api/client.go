package api

//go:generate mockgen -source=client.go -destination=mocks/mock_client.go -package=mocks

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Black-And-White-Club/discord-osu-bot/app/observability"
	"github.com/Black-And-White-Club/discord-osu-bot/app/observability/attr"
	"github.com/bytedance/sonic"
	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/oauth2/clientcredentials"
)

// apiVersion pins the response format of the scores endpoints.
const apiVersion = "20220705"

const maxResponseBytes = 4 << 20

// OsuClient is the part of the osu! API v2 the bot reads.
type OsuClient interface {
	GetUser(ctx context.Context, username string) (*User, error)
	GetUserTopScores(ctx context.Context, userID int64, limit int) ([]Score, error)
	GetDifficultyAttributes(ctx context.Context, beatmapID int64, mods Mods) (*DifficultyAttributes, error)
}

// Config configures the osu! API client.
type Config struct {
	BaseURL      string
	TokenURL     string
	ClientID     string
	ClientSecret string
	Timeout      time.Duration
	MaxRetries   uint64
}

// Client talks to the osu! API v2 with a client-credentials token. Requests
// are retried with backoff on 429/5xx and guarded by a circuit breaker.
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	newBackOff func() backoff.BackOff
	maxRetries uint64
	logger     *slog.Logger
	metrics    observability.OsuMetrics
	tracer     trace.Tracer
}

// NewClient builds a client. Tokens are fetched lazily on the first request
// and refreshed by the oauth2 transport before they expire.
func NewClient(ctx context.Context, cfg Config, logger *slog.Logger, metrics observability.OsuMetrics) *Client {
	creds := clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.TokenURL,
		Scopes:       []string{"public"},
	}
	// The token source outlives the caller's context.
	httpClient := creds.Client(context.WithoutCancel(ctx))
	httpClient.Timeout = cfg.Timeout

	c := &Client{
		baseURL:    cfg.BaseURL,
		httpClient: httpClient,
		maxRetries: cfg.MaxRetries,
		logger:     logger,
		metrics:    metrics,
		tracer:     otel.Tracer("osu-api"),
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 250 * time.Millisecond
			b.MaxInterval = 4 * time.Second
			b.MaxElapsedTime = 0
			return b
		},
	}

	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "osu-api",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			var apiErr *APIError
			if errors.As(err, &apiErr) {
				return !apiErr.Retryable()
			}
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if logger != nil {
				logger.Warn("Circuit breaker state changed",
					attr.String("breaker", name),
					attr.String("from", from.String()),
					attr.String("to", to.String()),
				)
			}
		},
	})

	return c
}

// GetUser looks a player up by username.
func (c *Client) GetUser(ctx context.Context, username string) (*User, error) {
	path := "/users/@" + url.PathEscape(username) + "/osu"
	user, err := doJSON[User](ctx, c, "users", http.MethodGet, path, nil, nil)
	if err != nil {
		if IsNotFound(err) {
			return nil, &UserNotFoundError{Username: username}
		}
		return nil, err
	}
	return user, nil
}

// GetUserTopScores returns a player's best osu! standard plays, best first.
func (c *Client) GetUserTopScores(ctx context.Context, userID int64, limit int) ([]Score, error) {
	query := url.Values{}
	query.Set("mode", "osu")
	query.Set("limit", strconv.Itoa(limit))
	query.Set("legacy_only", "1")

	path := "/users/" + strconv.FormatInt(userID, 10) + "/scores/best"
	scores, err := doJSON[[]Score](ctx, c, "scores_best", http.MethodGet, path, query, nil)
	if err != nil {
		return nil, err
	}
	return *scores, nil
}

// GetDifficultyAttributes returns the mod-adjusted difficulty of a beatmap.
func (c *Client) GetDifficultyAttributes(ctx context.Context, beatmapID int64, mods Mods) (*DifficultyAttributes, error) {
	body := map[string]any{
		"mods":    []string(mods),
		"ruleset": "osu",
	}
	if mods == nil {
		body["mods"] = []string{}
	}

	path := "/beatmaps/" + strconv.FormatInt(beatmapID, 10) + "/attributes"
	resp, err := doJSON[difficultyAttributesResponse](ctx, c, "beatmap_attributes", http.MethodPost, path, nil, body)
	if err != nil {
		return nil, err
	}
	return &resp.Attributes, nil
}

func doJSON[T any](ctx context.Context, c *Client, endpoint, method, path string, query url.Values, body any) (*T, error) {
	ctx, span := c.tracer.Start(ctx, "osu."+endpoint, trace.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("osu.endpoint", endpoint),
	))
	defer span.End()

	start := time.Now()
	var out T

	op := func() error {
		_, err := c.breaker.Execute(func() (interface{}, error) {
			return nil, c.do(ctx, endpoint, method, path, query, body, &out)
		})
		if err != nil && !isRetryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(c.newBackOff(), c.maxRetries), ctx)
	err := backoff.RetryNotify(op, policy, func(err error, wait time.Duration) {
		if c.logger != nil {
			c.logger.WarnContext(ctx, "Retrying osu! API request",
				attr.String("endpoint", endpoint),
				attr.Duration("retry_in", wait),
				attr.Error(err),
			)
		}
	})

	if c.metrics != nil {
		c.metrics.RecordOsuRequest(endpoint, outcome(err), time.Since(start))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, endpoint, method, path string, query url.Values, body any, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := sonic.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode %s request: %w", endpoint, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", endpoint, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("x-api-version", apiVersion)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", endpoint, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("failed to read %s response: %w", endpoint, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Endpoint: endpoint, StatusCode: resp.StatusCode, Body: truncate(string(data), 200)}
	}

	if err := sonic.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", endpoint, err)
	}
	return nil
}

func isRetryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Retryable()
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func outcome(err error) string {
	var apiErr *APIError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &apiErr):
		return strconv.Itoa(apiErr.StatusCode)
	case errors.Is(err, gobreaker.ErrOpenState):
		return "breaker_open"
	default:
		return "error"
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
