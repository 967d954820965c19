package setprefix

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Black-And-White-Club/discord-osu-bot/app/commands"
	discord "github.com/Black-And-White-Club/discord-osu-bot/app/discordgo"
	"github.com/Black-And-White-Club/discord-osu-bot/app/observability"
	"github.com/Black-And-White-Club/discord-osu-bot/app/observability/attr"
	"github.com/Black-And-White-Club/discord-osu-bot/app/settings"
	"github.com/bwmarrin/discordgo"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

var problemReplies = map[settings.PrefixProblem]string{
	settings.PrefixEmpty:         "❌ Please provide a new prefix.",
	settings.PrefixTooLong:       fmt.Sprintf("❌ Prefix is too long. Please use %d characters or less.", settings.MaxPrefixLength),
	settings.PrefixHasWhitespace: "❌ Prefix cannot contain spaces.",
}

// PrefixWriter persists the command prefix.
type PrefixWriter interface {
	SetPrefix(ctx context.Context, prefix string) error
}

type SetPrefixManager interface {
	HandleSetPrefixCommand(ctx context.Context, m *discordgo.MessageCreate, cmd commands.Command) (SetPrefixOperationResult, error)
}

type SetPrefixOperationResult struct {
	Success interface{}
	Failure interface{}
	Error   error
}

type setPrefixManager struct {
	operations       discord.Operations
	prefixes         PrefixWriter
	logger           *slog.Logger
	tracer           trace.Tracer
	metrics          observability.DiscordMetrics
	operationWrapper func(ctx context.Context, opName string, fn func(ctx context.Context) (SetPrefixOperationResult, error)) (SetPrefixOperationResult, error)
}

func NewSetPrefixManager(operations discord.Operations, prefixes PrefixWriter, logger *slog.Logger, tracer trace.Tracer, metrics observability.DiscordMetrics) SetPrefixManager {
	return &setPrefixManager{
		operations: operations,
		prefixes:   prefixes,
		logger:     logger,
		tracer:     tracer,
		metrics:    metrics,
		operationWrapper: func(ctx context.Context, opName string, fn func(ctx context.Context) (SetPrefixOperationResult, error)) (SetPrefixOperationResult, error) {
			return wrapSetPrefixOperation(ctx, opName, fn, logger, tracer, metrics)
		},
	}
}

func (sm *setPrefixManager) HandleSetPrefixCommand(ctx context.Context, m *discordgo.MessageCreate, cmd commands.Command) (SetPrefixOperationResult, error) {
	return sm.operationWrapper(ctx, "handle_setprefix_command", func(ctx context.Context) (SetPrefixOperationResult, error) {
		prefix := strings.TrimSpace(strings.Join(cmd.Args, " "))

		err := sm.prefixes.SetPrefix(ctx, prefix)
		var invalid *settings.InvalidPrefixError
		if errors.As(err, &invalid) {
			if _, replyErr := sm.operations.Reply(ctx, m.Message, problemReplies[invalid.Problem]); replyErr != nil {
				return SetPrefixOperationResult{Error: replyErr}, nil
			}
			return SetPrefixOperationResult{Failure: invalid.Error()}, nil
		}
		if err != nil {
			return SetPrefixOperationResult{}, fmt.Errorf("failed to save prefix: %w", err)
		}

		sm.logger.InfoContext(ctx, "Prefix updated by command", attr.UserID(m.Author.ID))
		if _, err := sm.operations.Reply(ctx, m.Message, fmt.Sprintf("✅ Prefix updated to `%s`", prefix)); err != nil {
			return SetPrefixOperationResult{Error: err}, nil
		}
		return SetPrefixOperationResult{Success: prefix}, nil
	})
}

func wrapSetPrefixOperation(
	ctx context.Context,
	operationName string,
	fn func(ctx context.Context) (SetPrefixOperationResult, error),
	logger *slog.Logger,
	tracer trace.Tracer,
	metrics observability.DiscordMetrics,
) (result SetPrefixOperationResult, err error) {
	if fn == nil {
		return SetPrefixOperationResult{Error: errors.New("operation function is nil")}, nil
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
			result = SetPrefixOperationResult{Error: recoveredErr}
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
		return SetPrefixOperationResult{Error: wrapped}, wrapped
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
