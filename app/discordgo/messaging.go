package discord

import (
	"context"
	"fmt"

	"github.com/Black-And-White-Club/discord-osu-bot/app/observability/attr"
	"github.com/bwmarrin/discordgo"
)

// Reply sends a plain text reply that references m.
func (d *discordOperations) Reply(ctx context.Context, m *discordgo.Message, content string) (*discordgo.Message, error) {
	return d.ReplyComplex(ctx, m, &discordgo.MessageSend{Content: content})
}

// ReplyComplex sends data as a reply to m. Mentions of the author are suppressed.
func (d *discordOperations) ReplyComplex(ctx context.Context, m *discordgo.Message, data *discordgo.MessageSend) (*discordgo.Message, error) {
	if m == nil || data == nil {
		return nil, fmt.Errorf("reply requires a message and a payload")
	}
	data.Reference = m.Reference()
	if data.AllowedMentions == nil {
		data.AllowedMentions = &discordgo.MessageAllowedMentions{}
	}

	var sent *discordgo.Message
	err := RetryDiscordAPI(ctx, d.logger, "reply", func() error {
		var sendErr error
		sent, sendErr = d.session.ChannelMessageSendComplex(m.ChannelID, data)
		return sendErr
	})
	if err != nil {
		d.logger.ErrorContext(ctx, "Failed to send reply",
			attr.DiscordChannelID(m.ChannelID),
			attr.DiscordMessageID(m.ID),
			attr.Error(err),
		)
		return nil, fmt.Errorf("failed to send reply: %w", err)
	}
	return sent, nil
}

// EditMessage edits a message the bot previously sent.
func (d *discordOperations) EditMessage(ctx context.Context, edit *discordgo.MessageEdit) (*discordgo.Message, error) {
	var msg *discordgo.Message
	err := RetryDiscordAPI(ctx, d.logger, "edit_message", func() error {
		var editErr error
		msg, editErr = d.session.ChannelMessageEditComplex(edit)
		return editErr
	})
	if err != nil {
		return nil, fmt.Errorf("failed to edit message: %w", err)
	}
	return msg, nil
}

// Typing shows the typing indicator. Failures are only logged.
func (d *discordOperations) Typing(ctx context.Context, channelID string) {
	if err := d.session.ChannelTyping(channelID); err != nil {
		d.logger.DebugContext(ctx, "Failed to send typing indicator",
			attr.DiscordChannelID(channelID),
			attr.Error(err),
		)
	}
}
