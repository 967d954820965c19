// Package commands routes prefixed chat messages to command handlers.
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	discord "github.com/Black-And-White-Club/discord-osu-bot/app/discordgo"
	"github.com/Black-And-White-Club/discord-osu-bot/app/observability"
	"github.com/Black-And-White-Club/discord-osu-bot/app/observability/attr"
	"github.com/bwmarrin/discordgo"
)

// GenericErrorReply is sent when a handler fails in a way it did not report to the user itself.
const GenericErrorReply = "There was an error executing this command."

// Command is a parsed chat command.
type Command struct {
	// Name is the lowercased command word as typed, possibly an alias.
	Name string
	Args []string
	// Prefix is the prefix the message used, for help texts.
	Prefix string
}

// Handler runs one command. Errors it returns produce GenericErrorReply.
type Handler func(ctx context.Context, m *discordgo.MessageCreate, cmd Command) error

// PrefixSource yields the current command prefix. It may change at runtime.
type PrefixSource interface {
	Prefix() string
}

type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string]Handler
	aliases  map[string]string
	prefixes PrefixSource
	ops      discord.Operations
	logger   *slog.Logger
	metrics  observability.DiscordMetrics
}

func NewDispatcher(prefixes PrefixSource, ops discord.Operations, logger *slog.Logger, metrics observability.DiscordMetrics) *Dispatcher {
	return &Dispatcher{
		handlers: make(map[string]Handler),
		aliases:  make(map[string]string),
		prefixes: prefixes,
		ops:      ops,
		logger:   logger,
		metrics:  metrics,
	}
}

// Register binds name and its aliases to h. Names are case-insensitive.
func (d *Dispatcher) Register(name string, h Handler, aliases ...string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	name = strings.ToLower(name)
	d.handlers[name] = h
	for _, alias := range aliases {
		d.aliases[strings.ToLower(alias)] = name
	}
}

// Parse splits content into a command when it starts with prefix.
func Parse(content, prefix string) (Command, bool) {
	if prefix == "" || !strings.HasPrefix(content, prefix) {
		return Command{}, false
	}
	fields := strings.Fields(content[len(prefix):])
	if len(fields) == 0 {
		return Command{}, false
	}
	return Command{
		Name:   strings.ToLower(fields[0]),
		Args:   fields[1:],
		Prefix: prefix,
	}, true
}

func (d *Dispatcher) lookup(name string) (string, Handler) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if canonical, ok := d.aliases[name]; ok {
		name = canonical
	}
	return name, d.handlers[name]
}

// HandleMessageCreate is registered with the message registry, which already
// drops messages from bots.
func (d *Dispatcher) HandleMessageCreate(ctx context.Context, _ discord.Session, m *discordgo.MessageCreate) {
	if m == nil || m.Message == nil || m.Author == nil || m.Author.Bot {
		return
	}

	cmd, ok := Parse(m.Content, d.prefixes.Prefix())
	if !ok {
		return
	}
	name, handler := d.lookup(cmd.Name)
	if handler == nil {
		return
	}

	d.logger.InfoContext(ctx, "Dispatching command",
		attr.Command(name),
		attr.UserID(m.Author.ID),
		attr.DiscordChannelID(m.ChannelID),
	)

	start := time.Now()
	err := d.run(ctx, handler, m, cmd)
	if d.metrics != nil {
		d.metrics.RecordAPIRequestDuration(ctx, "command."+name, time.Since(start))
	}
	if err == nil {
		if d.metrics != nil {
			d.metrics.RecordAPIRequest(ctx, "command."+name)
		}
		return
	}

	d.logger.ErrorContext(ctx, "Command failed",
		attr.Command(name),
		attr.UserID(m.Author.ID),
		attr.Error(err),
	)
	if d.metrics != nil {
		d.metrics.RecordAPIError(ctx, "command."+name, "handler_error")
	}
	if _, replyErr := d.ops.Reply(ctx, m.Message, GenericErrorReply); replyErr != nil {
		d.logger.ErrorContext(ctx, "Failed to send error reply", attr.Error(replyErr))
	}
}

func (d *Dispatcher) run(ctx context.Context, handler Handler, m *discordgo.MessageCreate, cmd Command) (err error) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.ErrorContext(ctx, "Recovered panic from command handler",
				attr.Any("panic", r),
				attr.String("stack_trace", string(debug.Stack())),
			)
			err = fmt.Errorf("panic in %s: %v", cmd.Name, r)
		}
	}()
	return handler(ctx, m, cmd)
}
