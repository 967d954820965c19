package accountsdiscord

import (
	"log/slog"

	"github.com/Black-And-White-Club/discord-osu-bot/app/accounts/discord/link"
	"github.com/Black-And-White-Club/discord-osu-bot/app/accounts/linkstore"
	discord "github.com/Black-And-White-Club/discord-osu-bot/app/discordgo"
	"github.com/Black-And-White-Club/discord-osu-bot/app/observability"
	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel/trace"
)

// AccountsDiscordInterface defines the interface for AccountsDiscord.
type AccountsDiscordInterface interface {
	GetLinkManager() link.LinkManager
}

// AccountsDiscord holds the Discord-facing account services.
type AccountsDiscord struct {
	LinkManager link.LinkManager
}

func NewAccountsDiscord(
	operations discord.Operations,
	store linkstore.Store,
	publisher message.Publisher,
	logger *slog.Logger,
	tracer trace.Tracer,
	metrics observability.DiscordMetrics,
) AccountsDiscordInterface {
	return &AccountsDiscord{
		LinkManager: link.NewLinkManager(operations, store, publisher, logger, tracer, metrics),
	}
}

// GetLinkManager returns the LinkManager.
func (ad *AccountsDiscord) GetLinkManager() link.LinkManager {
	return ad.LinkManager
}
