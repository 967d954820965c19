package messagecreator

import (
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/bwmarrin/discordgo"
	"github.com/bytedance/sonic"
)

// BuildWatermillMessageFromCommand encodes payload as a message on topic,
// tagged with the Discord message that triggered it. The Discord message ID
// doubles as the correlation ID.
func BuildWatermillMessageFromCommand(topic string, payload interface{}, m *discordgo.MessageCreate) (*message.Message, error) {
	body, err := sonic.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload for %s: %w", topic, err)
	}

	msg := message.NewMessage(watermill.NewUUID(), body)
	msg.Metadata.Set("topic", topic)
	msg.Metadata.Set("domain", "discord")
	msg.Metadata.Set("handler_name", "command")

	if m != nil && m.Message != nil {
		middleware.SetCorrelationID(m.ID, msg)
		msg.Metadata.Set("channel_id", m.ChannelID)
		if m.GuildID != "" {
			msg.Metadata.Set("guild_id", m.GuildID)
		}
		if m.Author != nil {
			msg.Metadata.Set("user_id", m.Author.ID)
		}
	} else {
		middleware.SetCorrelationID(watermill.NewUUID(), msg)
	}

	return msg, nil
}
