package discord

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/Black-And-White-Club/discord-osu-bot/app/observability/attr"
	"github.com/bwmarrin/discordgo"
	"github.com/cenkalti/backoff/v4"
)

const (
	maxDiscordAPIRetryAttempts = 5
	discordAPIBaseRetryDelay   = 200 * time.Millisecond
	discordAPIMaxRetryDelay    = 3 * time.Second
)

// discordBackOff is swapped in tests to avoid real sleeps.
var discordBackOff = func() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = discordAPIBaseRetryDelay
	b.MaxInterval = discordAPIMaxRetryDelay
	b.RandomizationFactor = 0.5
	b.MaxElapsedTime = 0
	return b
}

// RetryDiscordAPI retries transient Discord API failures with exponential backoff and jitter.
// Non-retryable errors are returned after the first attempt.
func RetryDiscordAPI(ctx context.Context, logger *slog.Logger, operation string, fn func() error) error {
	attempt := 0
	op := func() error {
		attempt++
		err := fn()
		if err != nil && !isRetryableDiscordError(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(discordBackOff(), maxDiscordAPIRetryAttempts-1),
		ctx,
	)

	return backoff.RetryNotify(op, policy, func(err error, wait time.Duration) {
		if logger != nil {
			logger.WarnContext(ctx, "Retrying transient Discord API failure",
				attr.String("operation", operation),
				attr.Int("attempt", attempt),
				attr.Duration("retry_in", wait),
				attr.Error(err),
			)
		}
	})
}

func isRetryableDiscordError(err error) bool {
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) {
		if restErr.Response != nil {
			status := restErr.Response.StatusCode
			return status == http.StatusTooManyRequests || status >= 500
		}
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}

	return false
}
