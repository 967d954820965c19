package link

import (
	"context"

	"github.com/Black-And-White-Club/discord-osu-bot/app/commands"
	"github.com/bwmarrin/discordgo"
)

func RegisterHandlers(dispatcher *commands.Dispatcher, manager LinkManager) {
	dispatcher.Register("link", func(ctx context.Context, m *discordgo.MessageCreate, cmd commands.Command) error {
		_, err := manager.HandleLinkCommand(ctx, m, cmd)
		return err
	})
	dispatcher.Register("unlink", func(ctx context.Context, m *discordgo.MessageCreate, cmd commands.Command) error {
		_, err := manager.HandleUnlinkCommand(ctx, m, cmd)
		return err
	})
}
