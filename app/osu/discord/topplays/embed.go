package topplays

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/Black-And-White-Club/discord-osu-bot/app/osu/api"
	osuprofile "github.com/Black-And-White-Club/discord-osu-bot/app/osu/profile"
	"github.com/Black-And-White-Club/discord-osu-bot/app/osu/scores"
	"github.com/Black-And-White-Club/discord-osu-bot/app/shared/discordutils"
	"github.com/bwmarrin/discordgo"
)

const (
	embedColor = 0x2f3136

	ActionPrev = "topplays_prev"
	ActionNext = "topplays_next"
)

// BuildEmbed renders one page of plays under the player's header.
func BuildEmbed(username string, user api.User, plays []scores.Play, page, totalPages int, now time.Time) *discordgo.MessageEmbed {
	blocks := make([]string, 0, len(plays))
	for _, p := range plays {
		blocks = append(blocks, p.String())
	}

	embed := &discordgo.MessageEmbed{
		Color: embedColor,
		Author: &discordgo.MessageEmbedAuthor{
			Name:    osuprofile.AuthorLine(username, user),
			IconURL: osuprofile.FlagURL(user.CountryCode),
		},
		Description: strings.Join(blocks, "\n\n"),
		Footer:      &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("osu!top plays • Page %d/%d", page+1, totalPages)},
		Timestamp:   now.UTC().Format(time.RFC3339),
	}
	if user.AvatarURL != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: user.AvatarURL}
	}
	return embed
}

// NavButtons is the ◀️/▶️ row of a session.
func NavButtons(sessionID string, prevEnabled, nextEnabled bool) discordgo.ActionsRow {
	return discordgo.ActionsRow{
		Components: []discordgo.MessageComponent{
			discordgo.Button{
				Label:    "◀️",
				Style:    discordgo.PrimaryButton,
				CustomID: discordutils.CustomID(ActionPrev, sessionID),
				Disabled: !prevEnabled,
			},
			discordgo.Button{
				Label:    "▶️",
				Style:    discordgo.PrimaryButton,
				CustomID: discordutils.CustomID(ActionNext, sessionID),
				Disabled: !nextEnabled,
			},
		},
	}
}

// ParsePageArg pulls "page N" out of args. N is 1-based; a non-numeric or
// non-positive N selects the first page. The first "page" is consumed
// together with its value only when a value follows it.
func ParsePageArg(args []string) (page int, rest []string) {
	idx := slices.IndexFunc(args, func(a string) bool { return strings.EqualFold(a, "page") })
	if idx < 0 || idx+1 >= len(args) {
		return 0, args
	}
	if n, err := strconv.Atoi(args[idx+1]); err == nil && n > 0 {
		page = n - 1
	}
	rest = append(slices.Clone(args[:idx]), args[idx+2:]...)
	return page, rest
}
