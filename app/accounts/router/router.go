package router

import (
	"context"
	"fmt"
	"log/slog"

	accounthandlers "github.com/Black-And-White-Club/discord-osu-bot/app/accounts/handlers"
	accountevents "github.com/Black-And-White-Club/discord-osu-bot/app/events/accounts"
	"github.com/Black-And-White-Club/discord-osu-bot/app/observability/attr"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/bytedance/sonic"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// AccountsRouter routes account events to their consumers.
type AccountsRouter struct {
	logger     *slog.Logger
	Router     *message.Router
	subscriber message.Subscriber
	tracer     trace.Tracer
}

func NewAccountsRouter(
	logger *slog.Logger,
	router *message.Router,
	subscriber message.Subscriber,
	tracer trace.Tracer,
) *AccountsRouter {
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("noop")
	}
	return &AccountsRouter{
		logger:     logger,
		Router:     router,
		subscriber: subscriber,
		tracer:     tracer,
	}
}

// Configure sets up the router.
func (r *AccountsRouter) Configure(ctx context.Context, handlers accounthandlers.Handlers) error {
	r.Router.AddMiddleware(
		middleware.CorrelationID,
		middleware.Recoverer,
	)

	if err := r.RegisterHandlers(ctx, handlers); err != nil {
		return fmt.Errorf("failed to register account handlers: %w", err)
	}
	r.logger.InfoContext(ctx, "AccountsRouter configured")
	return nil
}

type handlerDeps struct {
	router     *message.Router
	subscriber message.Subscriber
	logger     *slog.Logger
	tracer     trace.Tracer
}

// registerHandler decodes the payload into T and runs handler inside a span.
// Payloads that do not decode are logged and acked; retrying them cannot succeed.
func registerHandler[T any](deps handlerDeps, topic string, handler func(context.Context, *T) error) {
	handlerName := "osu-accounts." + topic

	deps.router.AddNoPublisherHandler(
		handlerName,
		topic,
		deps.subscriber,
		func(msg *message.Message) error {
			ctx, span := deps.tracer.Start(msg.Context(), handlerName, trace.WithAttributes(
				attribute.String("topic", topic),
				attribute.String("message_id", msg.UUID),
			))
			defer span.End()

			var payload T
			if err := sonic.Unmarshal(msg.Payload, &payload); err != nil {
				span.RecordError(err)
				deps.logger.ErrorContext(ctx, "Dropping undecodable account event",
					attr.Topic(topic),
					attr.CorrelationID(middleware.MessageCorrelationID(msg)),
					attr.Error(err),
				)
				return nil
			}

			if err := handler(ctx, &payload); err != nil {
				span.RecordError(err)
				return fmt.Errorf("%s: %w", handlerName, err)
			}
			return nil
		},
	)
}

func (r *AccountsRouter) RegisterHandlers(ctx context.Context, handlers accounthandlers.Handlers) error {
	deps := handlerDeps{
		router:     r.Router,
		subscriber: r.subscriber,
		logger:     r.logger,
		tracer:     r.tracer,
	}

	registerHandler(deps, accountevents.AccountLinkedV1, handlers.HandleAccountLinked)
	registerHandler(deps, accountevents.AccountUnlinkedV1, handlers.HandleAccountUnlinked)

	r.logger.DebugContext(ctx, "Account handlers registered",
		attr.Int("count", 2),
	)
	return nil
}

// Close stops the router.
func (r *AccountsRouter) Close() error {
	return r.Router.Close()
}
