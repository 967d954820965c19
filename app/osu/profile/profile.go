// Package profile maps an osu! user record onto the fields of the profile embed.
package profile

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/Black-And-White-Club/discord-osu-bot/app/osu/api"
	"github.com/Black-And-White-Club/discord-osu-bot/app/osu/format"
	"github.com/Black-And-White-Club/discord-osu-bot/app/osu/scores"
	"github.com/samber/lo"
)

const (
	flagURL    = "https://osu.ppy.sh/images/flags/%s.png"
	userURL    = "https://osu.ppy.sh/users/%d"
	noGrades   = "None"
	joinLayout = "Jan 2, 2006"
)

// Field is one name/value pair of the embed.
type Field struct {
	Name   string
	Value  string
	Inline bool
}

// Profile is the display model of a user. Fields without data are left out.
type Profile struct {
	Username    string
	CountryCode string
	// Author is "name · 1234.56pp · 🌍 #12 · US #3", skipping unknown parts.
	Author     string
	AuthorURL  string
	AuthorIcon string
	Thumbnail  string
	Fields     []Field
	// Grades is the joined grade counts line, "None" when every count is zero.
	Grades string
	Footer string
}

// Map builds the display model for u.
func Map(u api.User, emojis scores.Emojis) Profile {
	stats := u.Statistics
	cc := strings.ToUpper(u.CountryCode)

	p := Profile{
		Username:    lo.Ternary(u.Username != "", u.Username, "Unknown"),
		CountryCode: cc,
		Thumbnail:   u.AvatarURL,
		AuthorIcon:  u.AvatarURL,
		Grades:      GradesLine(stats.Grades, emojis),
	}
	if cc != "" {
		p.AuthorIcon = FlagURL(cc)
	}
	if u.ID != 0 {
		p.AuthorURL = fmt.Sprintf(userURL, u.ID)
	}

	p.Author = AuthorLine(p.Username, u)

	add := func(name string, value *string) {
		if value != nil {
			p.Fields = append(p.Fields, Field{Name: name, Value: *value, Inline: true})
		}
	}
	add("Total score", number(stats.TotalScore))
	add("Ranked score", number(stats.RankedScore))
	add("Level", fixed(stats.Level, "%.2f"))
	add("Accuracy", fixed(stats.HitAccuracy, "%.2f%%"))
	add("Max combo", number(stats.MaximumCombo))
	add("Replays watched", number(stats.ReplaysWatched))
	add("Playcount / Playtime", playcount(stats))
	add("Total hits / Hits per play", hitsPerPlay(stats))

	if p.Grades != noGrades {
		p.Fields = append(p.Fields, Field{Name: "Grades", Value: p.Grades})
	}

	if joined, ok := parseJoinDate(u.JoinDate); ok {
		p.Footer = "osu!profile • Joined " + joined.Format(joinLayout)
	} else {
		p.Footer = "osu!profile"
	}
	return p
}

// AuthorLine renders "name · 1234.56pp · 🌍 #12 · US #3" from u's
// statistics, skipping unknown parts. The country rank needs a country code.
func AuthorLine(name string, u api.User) string {
	stats := u.Statistics
	cc := strings.ToUpper(u.CountryCode)

	parts := []string{name}
	if stats.PP != nil {
		parts = append(parts, fmt.Sprintf("%.2fpp", *stats.PP))
	}
	if stats.GlobalRank != nil && *stats.GlobalRank > 0 {
		parts = append(parts, "🌍 #"+format.Number(*stats.GlobalRank))
	}
	if cc != "" && stats.CountryRank != nil && *stats.CountryRank > 0 {
		parts = append(parts, cc+" #"+format.Number(*stats.CountryRank))
	}
	return strings.Join(parts, " · ")
}

// FlagURL is the flag image of a country code, empty when unknown.
func FlagURL(countryCode string) string {
	if countryCode == "" {
		return ""
	}
	return fmt.Sprintf(flagURL, strings.ToUpper(countryCode))
}

type gradeCount struct {
	key   string
	count int64
}

// GradesLine lists non-zero grade counts from SS+ down to A.
func GradesLine(g api.GradeCounts, emojis scores.Emojis) string {
	order := []gradeCount{
		{"ssh", g.SSH}, {"ss", g.SS}, {"sh", g.SH}, {"s", g.S}, {"a", g.A},
	}

	parts := lo.FilterMap(order, func(e gradeCount, _ int) (string, bool) {
		if e.count == 0 {
			return "", false
		}
		label := emojis[e.key]
		if label == "" {
			label = strings.ToUpper(e.key)
		}
		return fmt.Sprintf("%s **%s**", label, format.Number(e.count)), true
	})

	if len(parts) == 0 {
		return noGrades
	}
	return strings.Join(parts, " • ")
}

func number(v *int64) *string {
	if v == nil {
		return nil
	}
	s := format.Number(*v)
	return &s
}

func fixed(v *float64, layout string) *string {
	if v == nil {
		return nil
	}
	s := fmt.Sprintf(layout, *v)
	return &s
}

// playcount needs both values, matching the combined field.
func playcount(s api.UserStatistics) *string {
	if s.PlayCount == nil || *s.PlayCount == 0 || s.PlayTime == nil || *s.PlayTime == 0 {
		return nil
	}
	hours := int64(math.Round(float64(*s.PlayTime) / 3600))
	v := fmt.Sprintf("%s / %s hrs", format.Number(*s.PlayCount), format.Number(hours))
	return &v
}

func hitsPerPlay(s api.UserStatistics) *string {
	if s.TotalHits == nil || *s.TotalHits == 0 || s.PlayCount == nil || *s.PlayCount == 0 {
		return nil
	}
	per := float64(*s.TotalHits) / float64(*s.PlayCount)
	v := fmt.Sprintf("%s / %.2f", format.Number(*s.TotalHits), per)
	return &v
}

func parseJoinDate(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
