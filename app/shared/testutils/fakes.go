package testutils

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	discord "github.com/Black-And-White-Club/discord-osu-bot/app/discordgo"
	"github.com/Black-And-White-Club/discord-osu-bot/app/observability"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/bwmarrin/discordgo"
)

func NoOpLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// FakePublisher records published messages. PublishFunc, when set, decides the result.
type FakePublisher struct {
	mu          sync.Mutex
	published   map[string][]*message.Message
	PublishFunc func(topic string, messages ...*message.Message) error
}

func (f *FakePublisher) Publish(topic string, messages ...*message.Message) error {
	f.mu.Lock()
	if f.published == nil {
		f.published = make(map[string][]*message.Message)
	}
	f.published[topic] = append(f.published[topic], messages...)
	f.mu.Unlock()

	if f.PublishFunc != nil {
		return f.PublishFunc(topic, messages...)
	}
	return nil
}

func (f *FakePublisher) Close() error { return nil }

// Published returns the messages sent to topic so far.
func (f *FakePublisher) Published(topic string) []*message.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*message.Message(nil), f.published[topic]...)
}

// FakeStorage is a generic programmable fake for storage interfaces
type FakeStorage[T any] struct {
	GetFunc    func(ctx context.Context, key string) (T, error)
	SetFunc    func(ctx context.Context, key string, value T) error
	DeleteFunc func(ctx context.Context, key string)
	LenFunc    func() int
}

func (f *FakeStorage[T]) Get(ctx context.Context, key string) (T, error) {
	if f.GetFunc != nil {
		return f.GetFunc(ctx, key)
	}
	var zero T
	return zero, nil
}

func (f *FakeStorage[T]) Set(ctx context.Context, key string, value T) error {
	if f.SetFunc != nil {
		return f.SetFunc(ctx, key, value)
	}
	return nil
}

func (f *FakeStorage[T]) Delete(ctx context.Context, key string) {
	if f.DeleteFunc != nil {
		f.DeleteFunc(ctx, key)
	}
}

func (f *FakeStorage[T]) Len() int {
	if f.LenFunc != nil {
		return f.LenFunc()
	}
	return 0
}

// FakeDiscordMetrics is a programmable fake for DiscordMetrics
type FakeDiscordMetrics struct {
	RecordAPIRequestFunc         func(ctx context.Context, operation string)
	RecordAPIErrorFunc           func(ctx context.Context, operation, errorType string)
	RecordAPIRequestDurationFunc func(ctx context.Context, operation string, duration time.Duration)
}

func (f *FakeDiscordMetrics) RecordAPIRequest(ctx context.Context, endpoint string) {
	if f.RecordAPIRequestFunc != nil {
		f.RecordAPIRequestFunc(ctx, endpoint)
	}
}

func (f *FakeDiscordMetrics) RecordAPIError(ctx context.Context, endpoint string, errorType string) {
	if f.RecordAPIErrorFunc != nil {
		f.RecordAPIErrorFunc(ctx, endpoint, errorType)
	}
}

func (f *FakeDiscordMetrics) RecordAPIRequestDuration(ctx context.Context, endpoint string, duration time.Duration) {
	if f.RecordAPIRequestDurationFunc != nil {
		f.RecordAPIRequestDurationFunc(ctx, endpoint, duration)
	}
}

// ReplyRecorder wires a FakeSession so every sent or edited message is kept.
type ReplyRecorder struct {
	mu    sync.Mutex
	Sent  []*discordgo.MessageSend
	Edits []*discordgo.MessageEdit
}

// NewRecordingSession returns a FakeSession whose sends and edits land in the recorder.
func NewRecordingSession() (*discord.FakeSession, *ReplyRecorder) {
	rec := &ReplyRecorder{}
	session := discord.NewFakeSession()
	session.ChannelMessageSendComplexFunc = func(channelID string, data *discordgo.MessageSend, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
		rec.mu.Lock()
		defer rec.mu.Unlock()
		rec.Sent = append(rec.Sent, data)
		return &discordgo.Message{ID: "sent-" + channelID, ChannelID: channelID}, nil
	}
	session.ChannelMessageEditComplexFunc = func(edit *discordgo.MessageEdit, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
		rec.mu.Lock()
		defer rec.mu.Unlock()
		rec.Edits = append(rec.Edits, edit)
		return &discordgo.Message{ID: edit.ID, ChannelID: edit.Channel}, nil
	}
	return session, rec
}

// Contents lists the text of every sent message in order.
func (r *ReplyRecorder) Contents() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.Sent))
	for _, m := range r.Sent {
		out = append(out, m.Content)
	}
	return out
}

// LastSent returns the most recent message, nil if none.
func (r *ReplyRecorder) LastSent() *discordgo.MessageSend {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Sent) == 0 {
		return nil
	}
	return r.Sent[len(r.Sent)-1]
}

// EditCount is the number of message edits so far.
func (r *ReplyRecorder) EditCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Edits)
}

// LastEdit returns the most recent edit, nil if none.
func (r *ReplyRecorder) LastEdit() *discordgo.MessageEdit {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Edits) == 0 {
		return nil
	}
	return r.Edits[len(r.Edits)-1]
}

// MessageCreate builds a user message as the gateway would deliver it.
func MessageCreate(authorID, content string) *discordgo.MessageCreate {
	return &discordgo.MessageCreate{Message: &discordgo.Message{
		ID:        "msg-" + authorID,
		ChannelID: "channel-1",
		GuildID:   "guild-1",
		Content:   content,
		Author:    &discordgo.User{ID: authorID, Username: "user-" + authorID},
	}}
}

// Interface assertions
var _ message.Publisher = (*FakePublisher)(nil)
var _ observability.DiscordMetrics = (*FakeDiscordMetrics)(nil)
