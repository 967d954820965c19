// interactions/message_registry.go
package interactions

import (
	"context"
	"log/slog"
	"runtime/debug"

	discord "github.com/Black-And-White-Club/discord-osu-bot/app/discordgo"
	"github.com/Black-And-White-Club/discord-osu-bot/app/observability/attr"
	"github.com/bwmarrin/discordgo"
)

type discordgoAdder interface {
	AddHandler(handler interface{}) func()
}

// MessageHandlerCreate defines the signature for message creation handlers with context
type MessageHandlerCreate func(ctx context.Context, s discord.Session, m *discordgo.MessageCreate)

// MessageRegistry manages message event handlers
type MessageRegistry struct {
	messageCreateHandlers []MessageHandlerCreate
	logger                *slog.Logger
}

// NewMessageRegistry creates a new MessageRegistry
func NewMessageRegistry(logger *slog.Logger) *MessageRegistry {
	return &MessageRegistry{
		messageCreateHandlers: make([]MessageHandlerCreate, 0),
		logger:                logger,
	}
}

// RegisterMessageCreateHandler registers a handler for MessageCreate events
func (r *MessageRegistry) RegisterMessageCreateHandler(handler MessageHandlerCreate) {
	r.messageCreateHandlers = append(r.messageCreateHandlers, handler)
}

// RegisterWithSession installs one discordgo MessageCreate handler that fans
// out to every registered handler in order, each on the wrapper session.
func (r *MessageRegistry) RegisterWithSession(session discordgoAdder, wrapperSession discord.Session) {
	session.AddHandler(func(_ *discordgo.Session, e *discordgo.MessageCreate) {
		if !r.accepts(e) {
			return
		}

		ctx := context.Background()
		if r.logger != nil {
			r.logger.Debug("Processing MessageCreate handlers",
				attr.UserID(e.Author.ID),
				attr.DiscordChannelID(e.ChannelID),
				attr.DiscordMessageID(e.ID))
		}
		for idx, handler := range r.messageCreateHandlers {
			r.runMessageCreateHandler(ctx, wrapperSession, e, idx, handler)
		}
	})
}

// accepts drops malformed events and anything written by a bot account.
// Author.Bot is set on this bot's own replies as well as on other bots, so no
// self user ID check is needed.
func (r *MessageRegistry) accepts(e *discordgo.MessageCreate) bool {
	switch {
	case e == nil || e.Message == nil:
		if r.logger != nil {
			r.logger.Warn("Ignoring MessageCreate event with nil payload")
		}
		return false
	case e.Author == nil:
		if r.logger != nil {
			r.logger.Warn("Ignoring MessageCreate event with nil author",
				attr.DiscordChannelID(e.ChannelID),
				attr.DiscordMessageID(e.ID))
		}
		return false
	default:
		return !e.Author.Bot
	}
}

func (r *MessageRegistry) runMessageCreateHandler(ctx context.Context, wrapperSession discord.Session, e *discordgo.MessageCreate, index int, handler MessageHandlerCreate) {
	if handler == nil {
		if r.logger != nil {
			r.logger.Warn("Skipping nil MessageCreate handler", attr.Int("handler_index", index))
		}
		return
	}

	defer func() {
		if recovered := recover(); recovered != nil && r.logger != nil {
			r.logger.Error("Recovered panic from MessageCreate handler",
				attr.Int("handler_index", index),
				attr.DiscordChannelID(e.ChannelID),
				attr.DiscordMessageID(e.ID),
				attr.Any("panic", recovered),
				attr.String("stack_trace", string(debug.Stack())))
		}
	}()

	handler(ctx, wrapperSession, e)
}
