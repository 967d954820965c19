package scores

import (
	"fmt"
	"strings"

	"github.com/Black-And-White-Club/discord-osu-bot/app/osu/api"
	"github.com/Black-And-White-Club/discord-osu-bot/app/osu/format"
)

const (
	notAvailable  = "N/A"
	unknown       = "Unknown"
	beatmapsetURL = "https://osu.ppy.sh/beatmapsets/%d"
)

// Play is one rendered entry of a top plays page. Each field falls back to
// "N/A" or "Unknown" on its own.
type Play struct {
	Ordinal    int
	Title      string
	Mods       string
	StarRating string
	Grade      string
	PP         string
	Accuracy   string
	Combo      string
	HitCounts  string
	Recency    string
	// MapPlays is how often the beatmapset was played, abbreviated.
	MapPlays string
}

// String renders the play as the two-line block used in the top plays embed.
func (p Play) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "**%d.** **%s**", p.Ordinal, p.Title)
	if p.Mods != "" {
		b.WriteString(" " + p.Mods)
	}
	if p.StarRating != notAvailable {
		fmt.Fprintf(&b, " [%s]", p.StarRating)
	}

	pp := p.PP
	if pp != notAvailable {
		pp = "**" + pp + "**"
	}
	fmt.Fprintf(&b, "\n%s • %s • 🎯 %s • %s • %s • ⏰ %s",
		p.Grade, pp, p.Accuracy, p.Combo, p.HitCounts, p.Recency)
	if p.MapPlays != notAvailable {
		fmt.Fprintf(&b, " • ▶️ %s", p.MapPlays)
	}
	return b.String()
}

// Formatter renders plays with a fixed set of helpers and grade emojis.
type Formatter struct {
	Helpers format.Helpers
	Emojis  Emojis
}

// FormatPlay renders one normalized score using text grade glyphs.
func FormatPlay(n NormalizedScore, index int, starRating *float64, helpers format.Helpers) Play {
	return Formatter{Helpers: helpers}.FormatPlay(n, index, starRating)
}

// FormatPlay renders n as the index-th entry (0-based) of a list.
func (f Formatter) FormatPlay(n NormalizedScore, index int, starRating *float64) Play {
	h := f.helpers()

	play := Play{
		Ordinal:    index + 1,
		Title:      title(n),
		Mods:       n.Mods.Suffix(),
		StarRating: notAvailable,
		Grade:      f.Emojis.RankGlyph(n.Rank),
		PP:         notAvailable,
		Accuracy:   notAvailable,
		Combo:      combo(n.Score, h),
		HitCounts:  hitCounts(n.Statistics, h),
		Recency:    unknown,
		MapPlays:   notAvailable,
	}

	if starRating != nil {
		play.StarRating = fmt.Sprintf("%.2f★", *starRating)
	}
	if n.PP != nil {
		play.PP = fmt.Sprintf("%.2fpp", *n.PP)
	}
	if acc := Accuracy(n.Score); acc != nil {
		play.Accuracy = fmt.Sprintf("%.2f%%", *acc)
	}
	if n.ParsedTimestamp != nil {
		play.Recency = h.Relative(*n.ParsedTimestamp)
	}
	if n.Beatmapset != nil && n.Beatmapset.PlayCount != nil {
		play.MapPlays = format.BigNumber(float64(*n.Beatmapset.PlayCount))
	}
	return play
}

func (f Formatter) helpers() format.Helpers {
	h := f.Helpers
	if h.Number == nil {
		h.Number = format.Number
	}
	if h.Relative == nil {
		h.Relative = format.DiscordRelative
	}
	return h
}

// Accuracy returns the play accuracy in percent. The reported value wins;
// otherwise it is derived from the hit counts. Nil when neither is usable.
func Accuracy(s api.Score) *float64 {
	if s.Accuracy != nil {
		pct := *s.Accuracy * 100
		return &pct
	}
	return HitCountAccuracy(s.Statistics)
}

// HitCountAccuracy is the osu!standard accuracy formula over the judgement
// counts, nil when no objects were hit.
func HitCountAccuracy(h api.HitCounts) *float64 {
	total := h.Total()
	if total == 0 {
		return nil
	}
	weighted := 300*val(h.Count300) + 100*val(h.Count100) + 50*val(h.Count50)
	pct := float64(weighted) / float64(300*total) * 100
	return &pct
}

func title(n NormalizedScore) string {
	artist, name, version := "", unknown, ""
	if n.Beatmapset != nil {
		artist = n.Beatmapset.Artist
		if n.Beatmapset.Title != "" {
			name = n.Beatmapset.Title
		}
	}
	if n.Beatmap != nil {
		version = n.Beatmap.Version
	}

	text := name
	if artist != "" {
		text = artist + " - " + name
	}
	if version != "" {
		text += " [" + version + "]"
	}
	if n.ResolvedMapID == nil {
		return text
	}
	return fmt.Sprintf("[%s]("+beatmapsetURL+")", text, *n.ResolvedMapID)
}

func combo(s api.Score, h format.Helpers) string {
	if s.MaxCombo == nil {
		return notAvailable
	}
	c := "x" + h.Number(int64(*s.MaxCombo))
	if s.Beatmap != nil && s.Beatmap.MaxCombo != nil {
		c += "/" + h.Number(int64(*s.Beatmap.MaxCombo))
	}
	return c
}

func hitCounts(c api.HitCounts, h format.Helpers) string {
	parts := make([]string, 0, 4)
	for _, n := range []*int{c.Count300, c.Count100, c.Count50, c.CountMiss} {
		if n == nil {
			parts = append(parts, "?")
			continue
		}
		parts = append(parts, h.Number(int64(*n)))
	}
	return "[" + strings.Join(parts, " • ") + "]"
}

func val(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
