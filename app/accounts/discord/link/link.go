package link

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Black-And-White-Club/discord-osu-bot/app/accounts/linkstore"
	"github.com/Black-And-White-Club/discord-osu-bot/app/commands"
	discord "github.com/Black-And-White-Club/discord-osu-bot/app/discordgo"
	accountevents "github.com/Black-And-White-Club/discord-osu-bot/app/events/accounts"
	"github.com/Black-And-White-Club/discord-osu-bot/app/observability"
	"github.com/Black-And-White-Club/discord-osu-bot/app/observability/attr"
	messagecreator "github.com/Black-And-White-Club/discord-osu-bot/app/shared/utils"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/bwmarrin/discordgo"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const (
	replyMissingUsername = "❌ Please provide your osu! username to link."
	replyLinked          = "✅ Linked your osu! account as `%s`"
	replyNotLinked       = "❌ No osu! account linked."
	replyUnlinked        = "✅ Your osu! account has been unlinked."
)

type LinkManager interface {
	HandleLinkCommand(ctx context.Context, m *discordgo.MessageCreate, cmd commands.Command) (LinkOperationResult, error)
	HandleUnlinkCommand(ctx context.Context, m *discordgo.MessageCreate, cmd commands.Command) (LinkOperationResult, error)
}

type linkManager struct {
	operations       discord.Operations
	store            linkstore.Store
	publisher        message.Publisher
	logger           *slog.Logger
	tracer           trace.Tracer
	metrics          observability.DiscordMetrics
	now              func() time.Time
	operationWrapper func(ctx context.Context, opName string, fn func(ctx context.Context) (LinkOperationResult, error)) (LinkOperationResult, error)
}

type LinkOperationResult struct {
	Success interface{}
	Failure interface{}
	Error   error
}

func NewLinkManager(
	operations discord.Operations,
	store linkstore.Store,
	publisher message.Publisher,
	logger *slog.Logger,
	tracer trace.Tracer,
	metrics observability.DiscordMetrics,
) LinkManager {
	if logger != nil {
		logger.InfoContext(context.Background(), "Creating LinkManager")
	}
	return &linkManager{
		operations: operations,
		store:      store,
		publisher:  publisher,
		logger:     logger,
		tracer:     tracer,
		metrics:    metrics,
		now:        time.Now,
		operationWrapper: func(ctx context.Context, opName string, fn func(ctx context.Context) (LinkOperationResult, error)) (LinkOperationResult, error) {
			return wrapLinkOperation(ctx, opName, fn, logger, tracer, metrics)
		},
	}
}

func (lm *linkManager) HandleLinkCommand(ctx context.Context, m *discordgo.MessageCreate, cmd commands.Command) (LinkOperationResult, error) {
	return lm.operationWrapper(ctx, "handle_link_command", func(ctx context.Context) (LinkOperationResult, error) {
		username := strings.TrimSpace(strings.Join(cmd.Args, " "))
		if username == "" {
			if _, err := lm.operations.Reply(ctx, m.Message, replyMissingUsername); err != nil {
				return LinkOperationResult{Error: err}, nil
			}
			return LinkOperationResult{Failure: "missing username"}, nil
		}

		previous, _, err := lm.store.Get(ctx, m.Author.ID)
		if err != nil {
			return LinkOperationResult{}, fmt.Errorf("failed to read linked account: %w", err)
		}
		if err := lm.store.Set(ctx, m.Author.ID, username); err != nil {
			return LinkOperationResult{}, fmt.Errorf("failed to store linked account: %w", err)
		}

		lm.publish(ctx, accountevents.AccountLinkedV1, accountevents.AccountLinkedPayloadV1{
			DiscordUserID:    m.Author.ID,
			OsuUsername:      username,
			PreviousUsername: previous,
			ChannelID:        m.ChannelID,
			LinkedAt:         lm.now().UTC(),
		}, m)

		if _, err := lm.operations.Reply(ctx, m.Message, fmt.Sprintf(replyLinked, username)); err != nil {
			return LinkOperationResult{Error: err}, nil
		}
		return LinkOperationResult{Success: username}, nil
	})
}

func (lm *linkManager) HandleUnlinkCommand(ctx context.Context, m *discordgo.MessageCreate, _ commands.Command) (LinkOperationResult, error) {
	return lm.operationWrapper(ctx, "handle_unlink_command", func(ctx context.Context) (LinkOperationResult, error) {
		username, _, err := lm.store.Get(ctx, m.Author.ID)
		if err != nil {
			return LinkOperationResult{}, fmt.Errorf("failed to read linked account: %w", err)
		}

		removed, err := lm.store.Remove(ctx, m.Author.ID)
		if err != nil {
			return LinkOperationResult{}, fmt.Errorf("failed to remove linked account: %w", err)
		}
		if !removed {
			if _, err := lm.operations.Reply(ctx, m.Message, replyNotLinked); err != nil {
				return LinkOperationResult{Error: err}, nil
			}
			return LinkOperationResult{Failure: "not linked"}, nil
		}

		lm.publish(ctx, accountevents.AccountUnlinkedV1, accountevents.AccountUnlinkedPayloadV1{
			DiscordUserID: m.Author.ID,
			OsuUsername:   username,
			ChannelID:     m.ChannelID,
			UnlinkedAt:    lm.now().UTC(),
		}, m)

		if _, err := lm.operations.Reply(ctx, m.Message, replyUnlinked); err != nil {
			return LinkOperationResult{Error: err}, nil
		}
		return LinkOperationResult{Success: username}, nil
	})
}

// publish is best effort: the link is already stored, so a lost audit event
// must not turn into a failed command.
func (lm *linkManager) publish(ctx context.Context, topic string, payload interface{}, m *discordgo.MessageCreate) {
	if lm.publisher == nil {
		return
	}
	msg, err := messagecreator.BuildWatermillMessageFromCommand(topic, payload, m)
	if err == nil {
		err = lm.publisher.Publish(topic, msg)
	}
	if err != nil && lm.logger != nil {
		lm.logger.WarnContext(ctx, "Failed to publish account event",
			attr.Topic(topic),
			attr.UserID(m.Author.ID),
			attr.Error(err),
		)
	}
}

func wrapLinkOperation(
	ctx context.Context,
	operationName string,
	fn func(ctx context.Context) (LinkOperationResult, error),
	logger *slog.Logger,
	tracer trace.Tracer,
	metrics observability.DiscordMetrics,
) (result LinkOperationResult, err error) {
	if fn == nil {
		return LinkOperationResult{Error: errors.New("operation function is nil")}, nil
	}

	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("noop")
	}

	ctx, span := tracer.Start(ctx, operationName, trace.WithAttributes(
		attribute.String("operation", operationName),
	))
	defer span.End()

	start := time.Now()
	defer func() {
		if metrics != nil {
			metrics.RecordAPIRequestDuration(ctx, operationName, time.Since(start))
		}
	}()

	defer func() {
		if r := recover(); r != nil {
			recoveredErr := fmt.Errorf("panic in %s: %v", operationName, r)
			span.RecordError(recoveredErr)
			if logger != nil {
				logger.ErrorContext(ctx, "Recovered from panic", attr.Error(recoveredErr))
			}
			if metrics != nil {
				metrics.RecordAPIError(ctx, operationName, "panic")
			}
			result = LinkOperationResult{Error: recoveredErr}
			err = recoveredErr
		}
	}()

	result, err = fn(ctx)
	if err != nil {
		wrapped := fmt.Errorf("%s operation error: %w", operationName, err)
		span.RecordError(wrapped)
		if logger != nil {
			logger.ErrorContext(ctx, fmt.Sprintf("Error in %s", operationName), attr.Error(wrapped))
		}
		if metrics != nil {
			metrics.RecordAPIError(ctx, operationName, "operation_error")
		}
		return LinkOperationResult{Error: wrapped}, wrapped
	}

	if result.Error != nil {
		span.RecordError(result.Error)
		if metrics != nil {
			metrics.RecordAPIError(ctx, operationName, "result_error")
		}
	} else if metrics != nil {
		metrics.RecordAPIRequest(ctx, operationName)
	}

	return result, nil
}
