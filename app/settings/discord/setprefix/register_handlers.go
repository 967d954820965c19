package setprefix

import (
	"context"

	"github.com/Black-And-White-Club/discord-osu-bot/app/commands"
	"github.com/bwmarrin/discordgo"
)

func RegisterHandlers(dispatcher *commands.Dispatcher, manager SetPrefixManager) {
	dispatcher.Register("setprefix", func(ctx context.Context, m *discordgo.MessageCreate, cmd commands.Command) error {
		_, err := manager.HandleSetPrefixCommand(ctx, m, cmd)
		return err
	})
}
