// interactions/registry.go
package interactions

import (
	"context"
	"log/slog"
	"runtime/debug"
	"strings"
	"sync"

	"github.com/Black-And-White-Club/discord-osu-bot/app/observability/attr"
	"github.com/bwmarrin/discordgo"
)

// Registry routes message component interactions to handlers by custom ID.
// An exact match wins; otherwise the longest registered prefix is used, which
// lets handlers own a family of IDs such as "topplays_next|<session>".
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]func(ctx context.Context, i *discordgo.InteractionCreate)
	logger   *slog.Logger
}

func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		handlers: make(map[string]func(ctx context.Context, i *discordgo.InteractionCreate)),
		logger:   logger,
	}
}

func (r *Registry) RegisterHandler(id string, handler func(ctx context.Context, i *discordgo.InteractionCreate)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[id] = handler
}

func (r *Registry) HandleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i == nil || i.Interaction == nil || i.Type != discordgo.InteractionMessageComponent {
		return
	}

	id := i.MessageComponentData().CustomID
	handler := r.lookup(id)
	if handler == nil {
		if r.logger != nil {
			r.logger.Debug("No handler for component interaction", attr.String("custom_id", id))
		}
		return
	}

	defer func() {
		if recovered := recover(); recovered != nil && r.logger != nil {
			r.logger.Error("Recovered panic from interaction handler",
				attr.String("custom_id", id),
				attr.Any("panic", recovered),
				attr.String("stack_trace", string(debug.Stack())))
		}
	}()

	handler(context.Background(), i)
}

func (r *Registry) lookup(id string) func(ctx context.Context, i *discordgo.InteractionCreate) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if handler, ok := r.handlers[id]; ok {
		return handler
	}

	var (
		best    func(ctx context.Context, i *discordgo.InteractionCreate)
		bestLen int
	)
	for key, handler := range r.handlers {
		if strings.HasPrefix(id, key) && len(key) > bestLen {
			best, bestLen = handler, len(key)
		}
	}
	return best
}
