package discord

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/cenkalti/backoff/v4"
)

func instantBackOff(t *testing.T) {
	t.Helper()
	original := discordBackOff
	discordBackOff = func() backoff.BackOff { return &backoff.ZeroBackOff{} }
	t.Cleanup(func() { discordBackOff = original })
}

func restError(status int) error {
	return &discordgo.RESTError{Response: &http.Response{StatusCode: status}}
}

func TestRetryDiscordAPI(t *testing.T) {
	instantBackOff(t)

	tests := []struct {
		name      string
		errs      []error
		wantCalls int
		wantErr   bool
	}{
		{name: "succeeds first try", errs: []error{nil}, wantCalls: 1},
		{name: "retries rate limit then succeeds", errs: []error{restError(429), restError(502), nil}, wantCalls: 3},
		{name: "does not retry client error", errs: []error{restError(403)}, wantCalls: 1, wantErr: true},
		{name: "does not retry plain error", errs: []error{errors.New("boom")}, wantCalls: 1, wantErr: true},
		{
			name:      "gives up after max attempts",
			errs:      []error{restError(500), restError(500), restError(500), restError(500), restError(500), nil},
			wantCalls: maxDiscordAPIRetryAttempts,
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := RetryDiscordAPI(context.Background(), testLogger(), "test", func() error {
				e := tt.errs[calls]
				calls++
				return e
			})
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRetryDiscordAPI_PermanentErrorIsUnwrapped(t *testing.T) {
	instantBackOff(t)
	want := restError(404)
	err := RetryDiscordAPI(context.Background(), nil, "test", func() error { return want })

	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) || restErr.Response.StatusCode != 404 {
		t.Fatalf("expected the original REST error, got %v", err)
	}
}
