package accounts

import (
	"context"
	"fmt"
	"log/slog"

	accountsdiscord "github.com/Black-And-White-Club/discord-osu-bot/app/accounts/discord"
	"github.com/Black-And-White-Club/discord-osu-bot/app/accounts/discord/link"
	accounthandlers "github.com/Black-And-White-Club/discord-osu-bot/app/accounts/handlers"
	"github.com/Black-And-White-Club/discord-osu-bot/app/accounts/linkstore"
	accountsrouter "github.com/Black-And-White-Club/discord-osu-bot/app/accounts/router"
	"github.com/Black-And-White-Club/discord-osu-bot/app/commands"
	discord "github.com/Black-And-White-Club/discord-osu-bot/app/discordgo"
	"github.com/Black-And-White-Club/discord-osu-bot/app/observability"
	"github.com/Black-And-White-Club/discord-osu-bot/app/observability/attr"
	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel"
)

// Metrics is what the accounts module records.
type Metrics interface {
	observability.DiscordMetrics
	accounthandlers.Metrics
}

// InitializeAccountsModule registers link and unlink with the dispatcher and
// subscribes the account event consumers on router.
func InitializeAccountsModule(
	ctx context.Context,
	operations discord.Operations,
	router *message.Router,
	dispatcher *commands.Dispatcher,
	publisher message.Publisher,
	subscriber message.Subscriber,
	store linkstore.Store,
	logger *slog.Logger,
	metrics Metrics,
) (*accountsrouter.AccountsRouter, error) {
	tracer := otel.Tracer("accounts-module")

	accountsDiscord := accountsdiscord.NewAccountsDiscord(operations, store, publisher, logger, tracer, metrics)
	link.RegisterHandlers(dispatcher, accountsDiscord.GetLinkManager())

	accountHandlers := accounthandlers.NewAccountHandlers(logger, store, metrics)

	accountsRouter := accountsrouter.NewAccountsRouter(logger, router, subscriber, tracer)
	if err := accountsRouter.Configure(ctx, accountHandlers); err != nil {
		logger.ErrorContext(ctx, "Failed to configure accounts router", attr.Error(err))
		return nil, fmt.Errorf("failed to configure accounts router: %w", err)
	}

	return accountsRouter, nil
}
