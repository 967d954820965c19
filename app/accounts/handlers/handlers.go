package handlers

import (
	"context"
	"log/slog"

	"github.com/Black-And-White-Club/discord-osu-bot/app/accounts/linkstore"
	accountevents "github.com/Black-And-White-Club/discord-osu-bot/app/events/accounts"
	"github.com/Black-And-White-Club/discord-osu-bot/app/observability/attr"
)

// Handlers consumes account events.
type Handlers interface {
	HandleAccountLinked(ctx context.Context, payload *accountevents.AccountLinkedPayloadV1) error
	HandleAccountUnlinked(ctx context.Context, payload *accountevents.AccountUnlinkedPayloadV1) error
}

// Metrics is what the audit consumer records.
type Metrics interface {
	RecordAccountEvent(topic string)
	SetLinkedAccounts(n int)
}

// AccountHandlers writes an audit log line per event and keeps the linked
// accounts gauge current.
type AccountHandlers struct {
	logger  *slog.Logger
	store   linkstore.Store
	metrics Metrics
}

func NewAccountHandlers(logger *slog.Logger, store linkstore.Store, metrics Metrics) Handlers {
	return &AccountHandlers{
		logger:  logger,
		store:   store,
		metrics: metrics,
	}
}

func (h *AccountHandlers) HandleAccountLinked(ctx context.Context, payload *accountevents.AccountLinkedPayloadV1) error {
	args := []any{
		attr.UserID(payload.DiscordUserID),
		attr.OsuUsername(payload.OsuUsername),
		attr.DiscordChannelID(payload.ChannelID),
	}
	if payload.PreviousUsername != "" {
		args = append(args, attr.String("previous_username", payload.PreviousUsername))
	}
	h.logger.InfoContext(ctx, "osu! account linked", args...)

	h.record(ctx, accountevents.AccountLinkedV1)
	return nil
}

func (h *AccountHandlers) HandleAccountUnlinked(ctx context.Context, payload *accountevents.AccountUnlinkedPayloadV1) error {
	h.logger.InfoContext(ctx, "osu! account unlinked",
		attr.UserID(payload.DiscordUserID),
		attr.OsuUsername(payload.OsuUsername),
		attr.DiscordChannelID(payload.ChannelID),
	)

	h.record(ctx, accountevents.AccountUnlinkedV1)
	return nil
}

// record never fails the event: a stale gauge is refreshed by the next event
// or the periodic job.
func (h *AccountHandlers) record(ctx context.Context, topic string) {
	if h.metrics == nil {
		return
	}
	h.metrics.RecordAccountEvent(topic)

	n, err := h.store.Count(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "Failed to count linked accounts", attr.Error(err))
		return
	}
	h.metrics.SetLinkedAccounts(n)
}
