package interactions

import (
	"context"
	"io"
	"log/slog"
	"testing"

	discord "github.com/Black-And-White-Club/discord-osu-bot/app/discordgo"
	"github.com/bwmarrin/discordgo"
)

type testDiscordgoAdder struct {
	handler func(s *discordgo.Session, e *discordgo.MessageCreate)
}

func (a *testDiscordgoAdder) AddHandler(handler interface{}) func() {
	fn, ok := handler.(func(s *discordgo.Session, e *discordgo.MessageCreate))
	if !ok {
		panic("unexpected handler type")
	}
	a.handler = fn
	return func() {}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestMessageRegistry_RegisterWithSession_fansOutToHandlers(t *testing.T) {
	wrapper := discord.Session(discord.NewFakeSession())
	reg := NewMessageRegistry(discardLogger())

	var called []string
	reg.RegisterMessageCreateHandler(func(_ context.Context, s discord.Session, m *discordgo.MessageCreate) {
		if s != wrapper {
			t.Fatalf("expected wrapper session to be passed through")
		}
		if m.ID != "msg-1" {
			t.Fatalf("unexpected message: %+v", m)
		}
		called = append(called, "h1")
	})
	reg.RegisterMessageCreateHandler(func(_ context.Context, _ discord.Session, _ *discordgo.MessageCreate) {
		panic("handler blew up")
	})
	reg.RegisterMessageCreateHandler(func(_ context.Context, _ discord.Session, _ *discordgo.MessageCreate) {
		called = append(called, "h3")
	})

	adder := &testDiscordgoAdder{}
	reg.RegisterWithSession(adder, wrapper)
	if adder.handler == nil {
		t.Fatalf("expected a discordgo MessageCreate handler to be registered")
	}

	adder.handler(&discordgo.Session{}, &discordgo.MessageCreate{Message: &discordgo.Message{
		ID:     "msg-1",
		Author: &discordgo.User{ID: "u1"},
	}})

	if len(called) != 2 || called[0] != "h1" || called[1] != "h3" {
		t.Fatalf("unexpected call order: %v", called)
	}
}

func TestMessageRegistry_IgnoresBotsAndNilAuthors(t *testing.T) {
	reg := NewMessageRegistry(discardLogger())
	calls := 0
	reg.RegisterMessageCreateHandler(func(context.Context, discord.Session, *discordgo.MessageCreate) { calls++ })

	adder := &testDiscordgoAdder{}
	reg.RegisterWithSession(adder, discord.NewFakeSession())

	adder.handler(nil, &discordgo.MessageCreate{Message: &discordgo.Message{ID: "1", Author: &discordgo.User{ID: "b", Bot: true}}})
	adder.handler(nil, &discordgo.MessageCreate{Message: &discordgo.Message{ID: "2"}})
	adder.handler(nil, nil)

	if calls != 0 {
		t.Fatalf("expected no handler calls, got %d", calls)
	}
}
