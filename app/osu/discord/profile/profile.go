package profile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/discord-osu-bot/app/accounts/linkstore"
	"github.com/Black-And-White-Club/discord-osu-bot/app/commands"
	discord "github.com/Black-And-White-Club/discord-osu-bot/app/discordgo"
	"github.com/Black-And-White-Club/discord-osu-bot/app/observability"
	"github.com/Black-And-White-Club/discord-osu-bot/app/observability/attr"
	"github.com/Black-And-White-Club/discord-osu-bot/app/osu/api"
	osuprofile "github.com/Black-And-White-Club/discord-osu-bot/app/osu/profile"
	"github.com/Black-And-White-Club/discord-osu-bot/app/osu/scores"
	"github.com/bwmarrin/discordgo"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const (
	embedColor = 0x2f3136

	replyMissingInput = "❌ Please provide a username or link your account using `%slink <username>`."
	replyUserNotFound = "User not found."
	replyFetchFailed  = "An error occurred while fetching the profile."
)

type ProfileManager interface {
	HandleProfileCommand(ctx context.Context, m *discordgo.MessageCreate, cmd commands.Command) (ProfileOperationResult, error)
}

type profileManager struct {
	operations       discord.Operations
	client           api.OsuClient
	store            linkstore.Store
	emojis           scores.Emojis
	logger           *slog.Logger
	tracer           trace.Tracer
	metrics          observability.DiscordMetrics
	now              func() time.Time
	operationWrapper func(ctx context.Context, opName string, fn func(ctx context.Context) (ProfileOperationResult, error)) (ProfileOperationResult, error)
}

type ProfileOperationResult struct {
	Success interface{}
	Failure interface{}
	Error   error
}

func NewProfileManager(
	operations discord.Operations,
	client api.OsuClient,
	store linkstore.Store,
	emojis scores.Emojis,
	logger *slog.Logger,
	tracer trace.Tracer,
	metrics observability.DiscordMetrics,
) ProfileManager {
	if logger != nil {
		logger.InfoContext(context.Background(), "Creating ProfileManager")
	}
	return &profileManager{
		operations: operations,
		client:     client,
		store:      store,
		emojis:     emojis,
		logger:     logger,
		tracer:     tracer,
		metrics:    metrics,
		now:        time.Now,
		operationWrapper: func(ctx context.Context, opName string, fn func(ctx context.Context) (ProfileOperationResult, error)) (ProfileOperationResult, error) {
			return wrapProfileOperation(ctx, opName, fn, logger, tracer, metrics)
		},
	}
}

func (pm *profileManager) HandleProfileCommand(ctx context.Context, m *discordgo.MessageCreate, cmd commands.Command) (ProfileOperationResult, error) {
	return pm.operationWrapper(ctx, "handle_profile_command", func(ctx context.Context) (ProfileOperationResult, error) {
		username, err := linkstore.Resolve(ctx, pm.store, m.Author.ID, cmd.Args)
		if linkstore.IsMissingInput(err) {
			return pm.reply(ctx, m, fmt.Sprintf(replyMissingInput, cmd.Prefix), ProfileOperationResult{Failure: "missing username"})
		}
		if err != nil {
			return ProfileOperationResult{}, fmt.Errorf("failed to resolve username: %w", err)
		}

		pm.operations.Typing(ctx, m.ChannelID)

		user, err := pm.client.GetUser(ctx, username)
		if api.IsUserNotFound(err) {
			return pm.reply(ctx, m, replyUserNotFound, ProfileOperationResult{Failure: "user not found"})
		}
		if err != nil {
			pm.logger.ErrorContext(ctx, "Failed to fetch osu! profile",
				attr.OsuUsername(username),
				attr.Error(err),
			)
			res, replyErr := pm.reply(ctx, m, replyFetchFailed, ProfileOperationResult{Error: err})
			if replyErr != nil {
				return res, replyErr
			}
			return ProfileOperationResult{Error: err}, nil
		}

		embed := BuildEmbed(osuprofile.Map(*user, pm.emojis), pm.now())
		if _, err := pm.operations.ReplyComplex(ctx, m.Message, &discordgo.MessageSend{
			Embeds: []*discordgo.MessageEmbed{embed},
		}); err != nil {
			return ProfileOperationResult{Error: err}, nil
		}
		return ProfileOperationResult{Success: user.Username}, nil
	})
}

func (pm *profileManager) reply(ctx context.Context, m *discordgo.MessageCreate, content string, res ProfileOperationResult) (ProfileOperationResult, error) {
	if _, err := pm.operations.Reply(ctx, m.Message, content); err != nil {
		return ProfileOperationResult{Error: err}, nil
	}
	return res, nil
}

// BuildEmbed renders the profile display model.
func BuildEmbed(p osuprofile.Profile, now time.Time) *discordgo.MessageEmbed {
	fields := make([]*discordgo.MessageEmbedField, 0, len(p.Fields))
	for _, f := range p.Fields {
		fields = append(fields, &discordgo.MessageEmbedField{Name: f.Name, Value: f.Value, Inline: f.Inline})
	}

	embed := &discordgo.MessageEmbed{
		Color: embedColor,
		Author: &discordgo.MessageEmbedAuthor{
			Name:    p.Author,
			URL:     p.AuthorURL,
			IconURL: p.AuthorIcon,
		},
		Fields:    fields,
		Footer:    &discordgo.MessageEmbedFooter{Text: p.Footer},
		Timestamp: now.UTC().Format(time.RFC3339),
	}
	if p.Thumbnail != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: p.Thumbnail}
	}
	return embed
}

func wrapProfileOperation(
	ctx context.Context,
	operationName string,
	fn func(ctx context.Context) (ProfileOperationResult, error),
	logger *slog.Logger,
	tracer trace.Tracer,
	metrics observability.DiscordMetrics,
) (result ProfileOperationResult, err error) {
	if fn == nil {
		return ProfileOperationResult{Error: errors.New("operation function is nil")}, nil
	}

	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("noop")
	}

	ctx, span := tracer.Start(ctx, operationName, trace.WithAttributes(
		attribute.String("operation", operationName),
	))
	defer span.End()

	start := time.Now()
	defer func() {
		if metrics != nil {
			metrics.RecordAPIRequestDuration(ctx, operationName, time.Since(start))
		}
	}()

	defer func() {
		if r := recover(); r != nil {
			recoveredErr := fmt.Errorf("panic in %s: %v", operationName, r)
			span.RecordError(recoveredErr)
			if logger != nil {
				logger.ErrorContext(ctx, "Recovered from panic", attr.Error(recoveredErr))
			}
			if metrics != nil {
				metrics.RecordAPIError(ctx, operationName, "panic")
			}
			result = ProfileOperationResult{Error: recoveredErr}
			err = recoveredErr
		}
	}()

	result, err = fn(ctx)
	if err != nil {
		wrapped := fmt.Errorf("%s operation error: %w", operationName, err)
		span.RecordError(wrapped)
		if logger != nil {
			logger.ErrorContext(ctx, fmt.Sprintf("Error in %s", operationName), attr.Error(wrapped))
		}
		if metrics != nil {
			metrics.RecordAPIError(ctx, operationName, "operation_error")
		}
		return ProfileOperationResult{Error: wrapped}, wrapped
	}

	if result.Error != nil {
		span.RecordError(result.Error)
		if metrics != nil {
			metrics.RecordAPIError(ctx, operationName, "result_error")
		}
	} else if metrics != nil {
		metrics.RecordAPIRequest(ctx, operationName)
	}

	return result, nil
}
