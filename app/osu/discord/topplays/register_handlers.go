package topplays

import (
	"context"

	"github.com/Black-And-White-Club/discord-osu-bot/app/commands"
	"github.com/Black-And-White-Club/discord-osu-bot/app/interactions"
	"github.com/Black-And-White-Club/discord-osu-bot/app/shared/discordutils"
	"github.com/bwmarrin/discordgo"
)

func RegisterHandlers(dispatcher *commands.Dispatcher, registry *interactions.Registry, manager TopPlaysManager) {
	dispatcher.Register("topplays", func(ctx context.Context, m *discordgo.MessageCreate, cmd commands.Command) error {
		_, err := manager.HandleTopPlaysCommand(ctx, m, cmd)
		return err
	}, "top", "osutop")

	navigate := func(ctx context.Context, i *discordgo.InteractionCreate) {
		manager.HandleNavigation(ctx, i)
	}
	registry.RegisterHandler(discordutils.CustomID(ActionPrev, ""), navigate)
	registry.RegisterHandler(discordutils.CustomID(ActionNext, ""), navigate)
}
