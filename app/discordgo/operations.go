package discord

import (
	"context"
	"log/slog"

	"github.com/bwmarrin/discordgo"
)

// Operations defines the higher-level Discord calls the command handlers make.
// Every call goes through RetryDiscordAPI.
type Operations interface {
	Reply(ctx context.Context, m *discordgo.Message, content string) (*discordgo.Message, error)
	ReplyComplex(ctx context.Context, m *discordgo.Message, data *discordgo.MessageSend) (*discordgo.Message, error)
	EditMessage(ctx context.Context, edit *discordgo.MessageEdit) (*discordgo.Message, error)
	Typing(ctx context.Context, channelID string)
}

type discordOperations struct {
	session Session
	logger  *slog.Logger
}

// NewOperations creates a new Operations instance.
func NewOperations(session Session, logger *slog.Logger) Operations {
	return &discordOperations{
		session: session,
		logger:  logger,
	}
}
