package profile

import (
	"context"

	"github.com/Black-And-White-Club/discord-osu-bot/app/commands"
	"github.com/bwmarrin/discordgo"
)

func RegisterHandlers(dispatcher *commands.Dispatcher, manager ProfileManager) {
	dispatcher.Register("profile", func(ctx context.Context, m *discordgo.MessageCreate, cmd commands.Command) error {
		_, err := manager.HandleProfileCommand(ctx, m, cmd)
		return err
	})
}
