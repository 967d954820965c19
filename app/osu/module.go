package osu

import (
	"context"
	"log/slog"

	"github.com/Black-And-White-Club/discord-osu-bot/app/accounts/linkstore"
	"github.com/Black-And-White-Club/discord-osu-bot/app/commands"
	discord "github.com/Black-And-White-Club/discord-osu-bot/app/discordgo"
	"github.com/Black-And-White-Club/discord-osu-bot/app/interactions"
	"github.com/Black-And-White-Club/discord-osu-bot/app/observability"
	"github.com/Black-And-White-Club/discord-osu-bot/app/osu/api"
	osudiscord "github.com/Black-And-White-Club/discord-osu-bot/app/osu/discord"
	"github.com/Black-And-White-Club/discord-osu-bot/app/osu/discord/profile"
	"github.com/Black-And-White-Club/discord-osu-bot/app/osu/discord/topplays"
	"github.com/Black-And-White-Club/discord-osu-bot/app/osu/scores"
	cache "github.com/Black-And-White-Club/discord-osu-bot/bigcache"
	"github.com/Black-And-White-Club/discord-osu-bot/config"
	"go.opentelemetry.io/otel"
)

// Metrics is what the osu! module records.
type Metrics interface {
	topplays.Metrics
	observability.CacheMetrics
}

// InitializeOsuModule wires profile and topplays onto the dispatcher and the
// top plays navigation buttons onto the interaction registry.
func InitializeOsuModule(
	ctx context.Context,
	session discord.Session,
	operations discord.Operations,
	dispatcher *commands.Dispatcher,
	registry *interactions.Registry,
	client api.OsuClient,
	links linkstore.Store,
	starCache cache.CacheInterface,
	emojis scores.Emojis,
	cfg config.TopPlaysConfig,
	logger *slog.Logger,
	metrics Metrics,
) osudiscord.OsuDiscordInterface {
	tracer := otel.Tracer("osu-module")

	ratings := scores.NewStarRatings(client, scores.NewStarCache(starCache), logger, metrics)
	if cfg.StarRatingTimeout > 0 {
		ratings.Timeout = cfg.StarRatingTimeout
	}
	renderer := &scores.Renderer{
		Ratings:   ratings,
		Formatter: scores.Formatter{Emojis: emojis},
	}

	opts := topplays.Options{
		Limit:       cfg.Limit,
		PageSize:    cfg.PageSize,
		IdleTimeout: cfg.SessionIdle,
	}
	osuDiscord := osudiscord.NewOsuDiscord(osudiscord.Deps{
		Session:    session,
		Operations: operations,
		Client:     client,
		Links:      links,
		Renderer:   renderer,
		Emojis:     emojis,
		Logger:     logger,
		Tracer:     tracer,
		Metrics:    metrics,
	}, topplays.NewSessionStore(ctx, opts.IdleTimeout), opts)

	profile.RegisterHandlers(dispatcher, osuDiscord.GetProfileManager())
	topplays.RegisterHandlers(dispatcher, registry, osuDiscord.GetTopPlaysManager())

	logger.InfoContext(ctx, "osu! module initialized")
	return osuDiscord
}
