// Package attr provides the structured logging attributes shared across the bot.
package attr

import (
	"log/slog"
	"time"
)

func String(key, value string) slog.Attr { return slog.String(key, value) }

func Int(key string, value int) slog.Attr { return slog.Int(key, value) }

func Int64(key string, value int64) slog.Attr { return slog.Int64(key, value) }

func Bool(key string, value bool) slog.Attr { return slog.Bool(key, value) }

func Any(key string, value any) slog.Attr { return slog.Any(key, value) }

func Duration(key string, value time.Duration) slog.Attr { return slog.Duration(key, value) }

// Error returns an "error" attribute; a nil error renders as an empty string.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.String("error", err.Error())
}

func UserID(id string) slog.Attr { return slog.String("user_id", id) }

func OsuUsername(name string) slog.Attr { return slog.String("osu_username", name) }

func DiscordChannelID(id string) slog.Attr { return slog.String("channel_id", id) }

func DiscordMessageID(id string) slog.Attr { return slog.String("message_id", id) }

func Command(name string) slog.Attr { return slog.String("command", name) }

func SessionID(id string) slog.Attr { return slog.String("session_id", id) }

func Topic(topic string) slog.Attr { return slog.String("topic", topic) }

func CorrelationID(id string) slog.Attr { return slog.String("correlation_id", id) }
