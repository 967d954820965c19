package osudiscord

import (
	"log/slog"

	"github.com/Black-And-White-Club/discord-osu-bot/app/accounts/linkstore"
	discord "github.com/Black-And-White-Club/discord-osu-bot/app/discordgo"
	"github.com/Black-And-White-Club/discord-osu-bot/app/osu/api"
	"github.com/Black-And-White-Club/discord-osu-bot/app/osu/discord/profile"
	"github.com/Black-And-White-Club/discord-osu-bot/app/osu/discord/topplays"
	"github.com/Black-And-White-Club/discord-osu-bot/app/osu/scores"
	"go.opentelemetry.io/otel/trace"
)

// OsuDiscordInterface defines the interface for OsuDiscord.
type OsuDiscordInterface interface {
	GetProfileManager() profile.ProfileManager
	GetTopPlaysManager() topplays.TopPlaysManager
}

// OsuDiscord encapsulates the osu! lookup commands.
type OsuDiscord struct {
	ProfileManager  profile.ProfileManager
	TopPlaysManager topplays.TopPlaysManager
}

// Deps are the collaborators shared by the osu! managers.
type Deps struct {
	Session    discord.Session
	Operations discord.Operations
	Client     api.OsuClient
	Links      linkstore.Store
	Renderer   *scores.Renderer
	Emojis     scores.Emojis
	Logger     *slog.Logger
	Tracer     trace.Tracer
	Metrics    topplays.Metrics
}

func NewOsuDiscord(deps Deps, sessions topplays.SessionStore, opts topplays.Options) OsuDiscordInterface {
	return &OsuDiscord{
		ProfileManager: profile.NewProfileManager(deps.Operations, deps.Client, deps.Links, deps.Emojis, deps.Logger, deps.Tracer, deps.Metrics),
		TopPlaysManager: topplays.NewTopPlaysManager(
			deps.Session, deps.Operations, deps.Client, deps.Links, deps.Renderer,
			sessions, opts, deps.Logger, deps.Tracer, deps.Metrics,
		),
	}
}

// GetProfileManager returns the ProfileManager.
func (od *OsuDiscord) GetProfileManager() profile.ProfileManager {
	return od.ProfileManager
}

// GetTopPlaysManager returns the TopPlaysManager.
func (od *OsuDiscord) GetTopPlaysManager() topplays.TopPlaysManager {
	return od.TopPlaysManager
}
