package topplays

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Black-And-White-Club/discord-osu-bot/app/accounts/linkstore"
	"github.com/Black-And-White-Club/discord-osu-bot/app/commands"
	discord "github.com/Black-And-White-Club/discord-osu-bot/app/discordgo"
	"github.com/Black-And-White-Club/discord-osu-bot/app/observability"
	"github.com/Black-And-White-Club/discord-osu-bot/app/observability/attr"
	"github.com/Black-And-White-Club/discord-osu-bot/app/osu/api"
	"github.com/Black-And-White-Club/discord-osu-bot/app/osu/scores"
	"github.com/Black-And-White-Club/discord-osu-bot/app/paginator"
	"github.com/Black-And-White-Club/discord-osu-bot/app/shared/storage"
	"github.com/bwmarrin/discordgo"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultPageSize   = 5
	DefaultFetchLimit = 100

	replyMissingInput = "❌ Provide a username or link your account."
	replyNoPlays      = "No top plays found."
	replyFetchFailed  = "Error fetching top plays."
	replyUserNotFound = "User not found."
	replyNotOwner     = "You can't control this."
)

// Options tunes a manager. Zero values take the defaults.
type Options struct {
	Limit       int
	PageSize    int
	IdleTimeout time.Duration
}

func (o Options) withDefaults() Options {
	if o.Limit <= 0 {
		o.Limit = DefaultFetchLimit
	}
	if o.PageSize <= 0 {
		o.PageSize = DefaultPageSize
	}
	if o.IdleTimeout <= 0 {
		o.IdleTimeout = paginator.DefaultIdleTimeout
	}
	return o
}

// Metrics adds the open-session gauge to the per-operation metrics.
type Metrics interface {
	observability.DiscordMetrics
	SessionOpened()
	SessionClosed()
}

type TopPlaysManager interface {
	HandleTopPlaysCommand(ctx context.Context, m *discordgo.MessageCreate, cmd commands.Command) (TopPlaysOperationResult, error)
	HandleNavigation(ctx context.Context, i *discordgo.InteractionCreate) (TopPlaysOperationResult, error)
}

type TopPlaysOperationResult struct {
	Success interface{}
	Failure interface{}
	Error   error
}

// playsSession is one rendered top plays message and the data behind it.
type playsSession struct {
	pager    *paginator.Session
	username string
	user     api.User
	plays    []scores.NormalizedScore

	mu        sync.Mutex
	channelID string
	messageID string
}

func (s *playsSession) setMessage(channelID, messageID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.channelID, s.messageID = channelID, messageID
}

func (s *playsSession) message() (channelID, messageID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.channelID, s.messageID
}

type topPlaysManager struct {
	session          discord.Session
	operations       discord.Operations
	client           api.OsuClient
	store            linkstore.Store
	renderer         *scores.Renderer
	sessions         SessionStore
	opts             Options
	logger           *slog.Logger
	tracer           trace.Tracer
	metrics          Metrics
	now              func() time.Time
	operationWrapper func(ctx context.Context, opName string, fn func(ctx context.Context) (TopPlaysOperationResult, error)) (TopPlaysOperationResult, error)
}

func NewTopPlaysManager(
	session discord.Session,
	operations discord.Operations,
	client api.OsuClient,
	store linkstore.Store,
	renderer *scores.Renderer,
	sessions SessionStore,
	opts Options,
	logger *slog.Logger,
	tracer trace.Tracer,
	metrics Metrics,
) TopPlaysManager {
	if logger != nil {
		logger.InfoContext(context.Background(), "Creating TopPlaysManager")
	}
	return &topPlaysManager{
		session:    session,
		operations: operations,
		client:     client,
		store:      store,
		renderer:   renderer,
		sessions:   sessions,
		opts:       opts.withDefaults(),
		logger:     logger,
		tracer:     tracer,
		metrics:    metrics,
		now:        time.Now,
		operationWrapper: func(ctx context.Context, opName string, fn func(ctx context.Context) (TopPlaysOperationResult, error)) (TopPlaysOperationResult, error) {
			return wrapTopPlaysOperation(ctx, opName, fn, logger, tracer, metrics)
		},
	}
}

// SessionStore holds the open top plays sessions by session ID.
type SessionStore = storage.ISInterface[*playsSession]

// NewSessionStore keeps sessions a little longer than their idle timeout so
// the expiry callback always finds its own entry.
func NewSessionStore(ctx context.Context, idleTimeout time.Duration) SessionStore {
	if idleTimeout <= 0 {
		idleTimeout = paginator.DefaultIdleTimeout
	}
	return storage.NewInteractionStore[*playsSession](ctx, idleTimeout+time.Minute, time.Minute)
}

func (tm *topPlaysManager) HandleTopPlaysCommand(ctx context.Context, m *discordgo.MessageCreate, cmd commands.Command) (TopPlaysOperationResult, error) {
	return tm.operationWrapper(ctx, "handle_topplays_command", func(ctx context.Context) (TopPlaysOperationResult, error) {
		page, rest := ParsePageArg(cmd.Args)

		username, err := linkstore.Resolve(ctx, tm.store, m.Author.ID, rest)
		if linkstore.IsMissingInput(err) {
			return tm.reply(ctx, m, replyMissingInput, TopPlaysOperationResult{Failure: "missing username"})
		}
		if err != nil {
			return TopPlaysOperationResult{}, fmt.Errorf("failed to resolve username: %w", err)
		}

		tm.operations.Typing(ctx, m.ChannelID)

		user, plays, err := tm.fetch(ctx, username)
		if api.IsUserNotFound(err) {
			return tm.reply(ctx, m, replyUserNotFound, TopPlaysOperationResult{Failure: "user not found"})
		}
		if err != nil {
			tm.logger.ErrorContext(ctx, "Failed to fetch top plays",
				attr.OsuUsername(username),
				attr.Error(err),
			)
			res, replyErr := tm.reply(ctx, m, replyFetchFailed, TopPlaysOperationResult{Error: err})
			if replyErr != nil {
				return res, replyErr
			}
			return TopPlaysOperationResult{Error: err}, nil
		}
		if len(plays) == 0 {
			return tm.reply(ctx, m, replyNoPlays, TopPlaysOperationResult{Failure: "no top plays"})
		}

		sess := &playsSession{
			username: username,
			user:     *user,
			plays:    scores.NormalizeAll(plays),
		}
		sess.pager = paginator.NewSession(m.Author.ID, paginator.TotalPages(len(plays), tm.opts.PageSize),
			paginator.WithIdleTimeout(tm.opts.IdleTimeout),
			paginator.WithOnExpire(func(*paginator.Session) { tm.expire(sess) }),
		)

		page, err = sess.pager.Render(page)
		if err != nil {
			return TopPlaysOperationResult{}, err
		}
		if err := tm.sessions.Set(ctx, sess.pager.ID, sess); err != nil {
			sess.pager.Expire()
			return TopPlaysOperationResult{}, fmt.Errorf("failed to store pagination session: %w", err)
		}
		if tm.metrics != nil {
			tm.metrics.SessionOpened()
		}

		embed := tm.renderEmbed(ctx, sess, page)
		sent, err := tm.operations.ReplyComplex(ctx, m.Message, &discordgo.MessageSend{
			Embeds:     []*discordgo.MessageEmbed{embed},
			Components: []discordgo.MessageComponent{NavButtons(sess.pager.ID, sess.pager.HasPrev(), sess.pager.HasNext())},
		})
		if err != nil {
			sess.pager.Expire()
			return TopPlaysOperationResult{Error: err}, nil
		}
		sess.setMessage(sent.ChannelID, sent.ID)

		tm.logger.InfoContext(ctx, "Opened top plays session",
			attr.SessionID(sess.pager.ID),
			attr.OsuUsername(username),
			attr.Int("page", page+1),
			attr.Int("total_pages", sess.pager.TotalPages()),
		)
		return TopPlaysOperationResult{Success: sess.pager.ID}, nil
	})
}

// fetch loads the profile and the top plays concurrently. The scores endpoint
// is keyed by user id, so the scores branch waits for the lookup to publish it.
func (tm *topPlaysManager) fetch(ctx context.Context, username string) (*api.User, []api.Score, error) {
	var (
		user  *api.User
		plays []api.Score
	)
	resolved := make(chan struct{})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		u, err := tm.client.GetUser(gctx, username)
		if err != nil {
			return err
		}
		if u == nil {
			return &api.UserNotFoundError{Username: username}
		}
		user = u
		close(resolved)
		return nil
	})
	g.Go(func() error {
		select {
		case <-resolved:
		case <-gctx.Done():
			return gctx.Err()
		}
		var err error
		plays, err = tm.client.GetUserTopScores(gctx, user.ID, tm.opts.Limit)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return user, plays, nil
}

func (tm *topPlaysManager) renderEmbed(ctx context.Context, sess *playsSession, page int) *discordgo.MessageEmbed {
	items := paginator.Page(sess.plays, page, tm.opts.PageSize)
	plays := tm.renderer.RenderPage(ctx, items, page*tm.opts.PageSize)
	return BuildEmbed(sess.username, sess.user, plays, page, sess.pager.TotalPages(), tm.now())
}

// expire runs on the session's idle timer. The buttons are disabled in place.
func (tm *topPlaysManager) expire(sess *playsSession) {
	ctx := context.Background()
	tm.sessions.Delete(ctx, sess.pager.ID)
	if tm.metrics != nil {
		tm.metrics.SessionClosed()
	}

	channelID, messageID := sess.message()
	if messageID == "" {
		return
	}
	components := []discordgo.MessageComponent{NavButtons(sess.pager.ID, false, false)}
	if _, err := tm.operations.EditMessage(ctx, &discordgo.MessageEdit{
		ID:         messageID,
		Channel:    channelID,
		Components: &components,
	}); err != nil {
		tm.logger.WarnContext(ctx, "Failed to disable expired top plays buttons",
			attr.SessionID(sess.pager.ID),
			attr.Error(err),
		)
		return
	}
	tm.logger.DebugContext(ctx, "Top plays session expired", attr.SessionID(sess.pager.ID))
}

func (tm *topPlaysManager) reply(ctx context.Context, m *discordgo.MessageCreate, content string, res TopPlaysOperationResult) (TopPlaysOperationResult, error) {
	if _, err := tm.operations.Reply(ctx, m.Message, content); err != nil {
		return TopPlaysOperationResult{Error: err}, nil
	}
	return res, nil
}

func wrapTopPlaysOperation(
	ctx context.Context,
	operationName string,
	fn func(ctx context.Context) (TopPlaysOperationResult, error),
	logger *slog.Logger,
	tracer trace.Tracer,
	metrics observability.DiscordMetrics,
) (result TopPlaysOperationResult, err error) {
	if fn == nil {
		return TopPlaysOperationResult{Error: errors.New("operation function is nil")}, nil
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
			result = TopPlaysOperationResult{Error: recoveredErr}
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
		return TopPlaysOperationResult{Error: wrapped}, wrapped
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
