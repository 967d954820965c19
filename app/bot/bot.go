package bot

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Black-And-White-Club/discord-osu-bot/app/accounts"
	"github.com/Black-And-White-Club/discord-osu-bot/app/accounts/linkstore"
	"github.com/Black-And-White-Club/discord-osu-bot/app/commands"
	discord "github.com/Black-And-White-Club/discord-osu-bot/app/discordgo"
	"github.com/Black-And-White-Club/discord-osu-bot/app/health"
	"github.com/Black-And-White-Club/discord-osu-bot/app/interactions"
	"github.com/Black-And-White-Club/discord-osu-bot/app/observability"
	"github.com/Black-And-White-Club/discord-osu-bot/app/observability/attr"
	"github.com/Black-And-White-Club/discord-osu-bot/app/osu"
	"github.com/Black-And-White-Club/discord-osu-bot/app/osu/api"
	"github.com/Black-And-White-Club/discord-osu-bot/app/osu/scores"
	"github.com/Black-And-White-Club/discord-osu-bot/app/settings"
	"github.com/Black-And-White-Club/discord-osu-bot/app/settings/discord/setprefix"
	cache "github.com/Black-And-White-Club/discord-osu-bot/bigcache"
	"github.com/Black-And-White-Club/discord-osu-bot/config"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/bwmarrin/discordgo"
	"go.opentelemetry.io/otel"
)

// Intents are the gateway events the bot needs: guild and DM messages, with their content.
const Intents = discordgo.IntentsGuildMessages | discordgo.IntentsDirectMessages | discordgo.IntentsMessageContent

// Metrics is every collector the modules record into.
type Metrics interface {
	accounts.Metrics
	osu.Metrics
}

type DiscordBot struct {
	Session         discord.Session
	Logger          *slog.Logger
	Config          *config.Config
	WatermillRouter *message.Router
	PubSub          *gochannel.GoChannel
	Health          *health.Handler

	client    api.OsuClient
	links     linkstore.Store
	settings  *settings.Store
	starCache cache.CacheInterface
	emojis    scores.Emojis
	metrics   Metrics

	dispatcher      *commands.Dispatcher
	registry        *interactions.Registry
	messageRegistry *interactions.MessageRegistry
}

// Deps are the long-lived collaborators built in main.
type Deps struct {
	Client    api.OsuClient
	Links     linkstore.Store
	Settings  *settings.Store
	StarCache cache.CacheInterface
	Emojis    scores.Emojis
	Metrics   Metrics
	Health    *health.Handler
}

func NewDiscordBot(session discord.Session, cfg *config.Config, logger *slog.Logger, deps Deps) (*DiscordBot, error) {
	logger.Info("Creating DiscordBot")

	wmLogger := watermill.NewSlogLogger(logger)
	router, err := message.NewRouter(message.RouterConfig{}, wmLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to create watermill router: %w", err)
	}

	return &DiscordBot{
		Session:         session,
		Logger:          logger,
		Config:          cfg,
		WatermillRouter: router,
		PubSub:          gochannel.NewGoChannel(gochannel.Config{}, wmLogger),
		Health:          deps.Health,
		client:          deps.Client,
		links:           deps.Links,
		settings:        deps.Settings,
		starCache:       deps.StarCache,
		emojis:          deps.Emojis,
		metrics:         deps.Metrics,
	}, nil
}

// wire builds the dispatcher and registries and initializes every module.
func (bot *DiscordBot) wire(ctx context.Context) error {
	operations := discord.NewOperations(bot.Session, bot.Logger)

	bot.dispatcher = commands.NewDispatcher(bot.settings, operations, bot.Logger, bot.metrics)
	bot.registry = interactions.NewRegistry(bot.Logger)
	bot.messageRegistry = interactions.NewMessageRegistry(bot.Logger)

	if _, err := accounts.InitializeAccountsModule(ctx, operations, bot.WatermillRouter, bot.dispatcher,
		bot.PubSub, bot.PubSub, bot.links, bot.Logger, bot.metrics); err != nil {
		bot.Logger.ErrorContext(ctx, "Failed to initialize accounts module", attr.Error(err))
		return err
	}

	osu.InitializeOsuModule(ctx, bot.Session, operations, bot.dispatcher, bot.registry,
		bot.client, bot.links, bot.starCache, bot.emojis, bot.Config.TopPlays, bot.Logger, bot.metrics)

	setprefix.RegisterHandlers(bot.dispatcher,
		setprefix.NewSetPrefixManager(operations, bot.settings, bot.Logger, otel.Tracer("settings-module"), bot.metrics))

	bot.messageRegistry.RegisterMessageCreateHandler(bot.dispatcher.HandleMessageCreate)
	return nil
}

// startRouter runs the watermill router until ctx is done and waits for it to accept messages.
func (bot *DiscordBot) startRouter(ctx context.Context) {
	go func() {
		if err := bot.WatermillRouter.Run(ctx); err != nil {
			bot.Logger.ErrorContext(ctx, "Watermill router stopped", attr.Error(err))
		}
	}()
	<-bot.WatermillRouter.Running()
}

func (bot *DiscordBot) Run(ctx context.Context) error {
	bot.Logger.InfoContext(ctx, "Entering bot.Run()...")

	if err := bot.wire(ctx); err != nil {
		return err
	}
	bot.startRouter(ctx)

	discordgoSession := bot.Session.(*discord.DiscordSession).GetUnderlyingSession()
	discordgoSession.Identify.Intents = Intents

	bot.messageRegistry.RegisterWithSession(discordgoSession, bot.Session)
	discordgoSession.AddHandler(bot.registry.HandleInteraction)

	discordgoSession.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		bot.Logger.InfoContext(ctx, "Discord bot is connected and ready.",
			attr.String("bot_user", r.User.Username),
			attr.String("prefix", bot.settings.Prefix()),
		)
		if bot.Health != nil {
			bot.Health.SetReady(true)
		}
	})

	if err := bot.Session.Open(); err != nil {
		bot.Logger.ErrorContext(ctx, "Error opening discord connection", attr.Error(err))
		return err
	}

	bot.Logger.InfoContext(ctx, "Discord bot is now running.")
	return nil
}

// Close stops the router, the gateway connection and the pubsub, in that order.
func (bot *DiscordBot) Close() {
	bot.Logger.Info("Closing bot")
	if bot.Health != nil {
		bot.Health.SetReady(false)
	}
	if bot.WatermillRouter != nil {
		if err := bot.WatermillRouter.Close(); err != nil {
			bot.Logger.Error("Failed to close Watermill router", attr.Error(err))
		}
	}
	if err := bot.Session.Close(); err != nil {
		bot.Logger.Error("Failed to close Discord session", attr.Error(err))
	}
	if bot.PubSub != nil {
		if err := bot.PubSub.Close(); err != nil {
			bot.Logger.Error("Failed to close pubsub", attr.Error(err))
		}
	}
}

// *observability.Metrics is the production implementation.
var _ Metrics = (*observability.Metrics)(nil)
