package commands

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"sync"
	"testing"

	discord "github.com/Black-And-White-Club/discord-osu-bot/app/discordgo"
	"github.com/bwmarrin/discordgo"
)

type staticPrefix string

func (p staticPrefix) Prefix() string { return string(p) }

type sentReplies struct {
	mu   sync.Mutex
	msgs []*discordgo.MessageSend
}

func (s *sentReplies) contents() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.msgs))
	for _, m := range s.msgs {
		out = append(out, m.Content)
	}
	return out
}

func newTestDispatcher(prefix string) (*Dispatcher, *sentReplies) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	replies := &sentReplies{}
	session := discord.NewFakeSession()
	session.ChannelMessageSendComplexFunc = func(_ string, data *discordgo.MessageSend, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
		replies.mu.Lock()
		defer replies.mu.Unlock()
		replies.msgs = append(replies.msgs, data)
		return &discordgo.Message{ID: "reply"}, nil
	}
	return NewDispatcher(staticPrefix(prefix), discord.NewOperations(session, logger), logger, nil), replies
}

func message(content string) *discordgo.MessageCreate {
	return &discordgo.MessageCreate{Message: &discordgo.Message{
		ID:        "m1",
		ChannelID: "c1",
		Content:   content,
		Author:    &discordgo.User{ID: "u1"},
	}}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		content string
		prefix  string
		want    Command
		ok      bool
	}{
		{name: "simple", content: "!profile", prefix: "!", want: Command{Name: "profile", Args: []string{}, Prefix: "!"}, ok: true},
		{name: "args and case", content: "!TopPlays  mrekk   page 2", prefix: "!", want: Command{Name: "topplays", Args: []string{"mrekk", "page", "2"}, Prefix: "!"}, ok: true},
		{name: "space after prefix", content: "!  link peppy", prefix: "!", want: Command{Name: "link", Args: []string{"peppy"}, Prefix: "!"}, ok: true},
		{name: "multi-char prefix", content: "o!top", prefix: "o!", want: Command{Name: "top", Args: []string{}, Prefix: "o!"}, ok: true},
		{name: "no prefix", content: "profile", prefix: "!", ok: false},
		{name: "prefix only", content: "!   ", prefix: "!", ok: false},
		{name: "other prefix", content: "?profile", prefix: "!", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Parse(tt.content, tt.prefix)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestDispatcher_RoutesCommandsAndAliases(t *testing.T) {
	d, _ := newTestDispatcher("!")

	var got []Command
	d.Register("topplays", func(_ context.Context, _ *discordgo.MessageCreate, cmd Command) error {
		got = append(got, cmd)
		return nil
	}, "top", "osutop")

	for _, content := range []string{"!topplays a", "!top b", "!OSUTOP c", "!unknown", "hello"} {
		d.HandleMessageCreate(context.Background(), nil, message(content))
	}

	if len(got) != 3 {
		t.Fatalf("expected 3 dispatches, got %d", len(got))
	}
	if got[1].Name != "top" || got[1].Args[0] != "b" {
		t.Errorf("alias dispatch = %+v", got[1])
	}
}

func TestDispatcher_IgnoresBots(t *testing.T) {
	d, _ := newTestDispatcher("!")
	called := false
	d.Register("profile", func(context.Context, *discordgo.MessageCreate, Command) error {
		called = true
		return nil
	})

	m := message("!profile")
	m.Author.Bot = true
	d.HandleMessageCreate(context.Background(), nil, m)

	if called {
		t.Error("bot messages must not be dispatched")
	}
}

func TestDispatcher_ErrorAndPanicReplyGeneric(t *testing.T) {
	d, replies := newTestDispatcher("!")
	d.Register("broken", func(context.Context, *discordgo.MessageCreate, Command) error {
		return errors.New("boom")
	})
	d.Register("panics", func(context.Context, *discordgo.MessageCreate, Command) error {
		panic("kaboom")
	})

	d.HandleMessageCreate(context.Background(), nil, message("!broken"))
	d.HandleMessageCreate(context.Background(), nil, message("!panics"))

	want := []string{GenericErrorReply, GenericErrorReply}
	if got := replies.contents(); !reflect.DeepEqual(got, want) {
		t.Errorf("replies = %v, want %v", got, want)
	}
}

type mutablePrefix struct {
	mu sync.Mutex
	p  string
}

func (m *mutablePrefix) Prefix() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.p
}

func TestDispatcher_FollowsPrefixChanges(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	prefix := &mutablePrefix{p: "!"}
	d := NewDispatcher(prefix, discord.NewOperations(discord.NewFakeSession(), logger), logger, nil)

	calls := 0
	d.Register("profile", func(context.Context, *discordgo.MessageCreate, Command) error {
		calls++
		return nil
	})

	d.HandleMessageCreate(context.Background(), nil, message("!profile"))
	prefix.mu.Lock()
	prefix.p = "o!"
	prefix.mu.Unlock()
	d.HandleMessageCreate(context.Background(), nil, message("!profile"))
	d.HandleMessageCreate(context.Background(), nil, message("o!profile"))

	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}
