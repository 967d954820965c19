package discord

import (
	"context"
	"errors"
	"testing"

	"github.com/bwmarrin/discordgo"
)

func TestOperations_ReplyReferencesOriginalMessage(t *testing.T) {
	fake := NewFakeSession()
	var gotChannel string
	var gotData *discordgo.MessageSend
	fake.ChannelMessageSendComplexFunc = func(channelID string, data *discordgo.MessageSend, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
		gotChannel = channelID
		gotData = data
		return &discordgo.Message{ID: "reply-1", ChannelID: channelID}, nil
	}

	ops := NewOperations(fake, testLogger())
	orig := &discordgo.Message{ID: "orig-1", ChannelID: "chan-1", GuildID: "guild-1"}

	sent, err := ops.Reply(context.Background(), orig, "✅ done")
	if err != nil {
		t.Fatalf("Reply: %v", err)
	}
	if sent.ID != "reply-1" || gotChannel != "chan-1" {
		t.Fatalf("unexpected send: %+v to %q", sent, gotChannel)
	}
	if gotData.Content != "✅ done" {
		t.Errorf("content = %q", gotData.Content)
	}
	if gotData.Reference == nil || gotData.Reference.MessageID != "orig-1" {
		t.Errorf("reply does not reference the original message: %+v", gotData.Reference)
	}
	if gotData.AllowedMentions == nil {
		t.Errorf("expected mentions to be suppressed")
	}
}

func TestOperations_ReplyError(t *testing.T) {
	instantBackOff(t)
	fake := NewFakeSession()
	fake.ChannelMessageSendComplexFunc = func(string, *discordgo.MessageSend, ...discordgo.RequestOption) (*discordgo.Message, error) {
		return nil, errors.New("missing access")
	}

	ops := NewOperations(fake, testLogger())
	if _, err := ops.Reply(context.Background(), &discordgo.Message{ID: "1", ChannelID: "c"}, "x"); err == nil {
		t.Fatal("expected error")
	}
}

func TestOperations_TypingIgnoresErrors(t *testing.T) {
	fake := NewFakeSession()
	fake.ChannelTypingFunc = func(string, ...discordgo.RequestOption) error { return errors.New("nope") }

	NewOperations(fake, testLogger()).Typing(context.Background(), "chan")

	if trace := fake.Trace(); len(trace) != 1 || trace[0] != "ChannelTyping" {
		t.Fatalf("trace = %v", trace)
	}
}
