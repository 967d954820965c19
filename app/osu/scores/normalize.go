// Package scores turns decoded osu! scores into the lines the top plays embed shows.
package scores

import (
	"strconv"
	"strings"
	"time"

	"github.com/Black-And-White-Club/discord-osu-bot/app/osu/api"
)

// NormalizedScore is a score plus the two values every renderer needs.
type NormalizedScore struct {
	api.Score
	// ParsedTimestamp is the end time in epoch seconds, nil when it could not be parsed.
	ParsedTimestamp *int64
	// ResolvedMapID is the beatmapset id used for links, nil when none was sent.
	ResolvedMapID *int64
}

var endedAtLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Normalize derives the timestamp and map id. It never mutates s and running
// it again on the embedded score gives the same result.
func Normalize(s api.Score) NormalizedScore {
	return NormalizedScore{
		Score:           s,
		ParsedTimestamp: parseEndedAt(s.EndedAt),
		ResolvedMapID:   resolveMapID(s),
	}
}

// NormalizeAll normalizes each score, keeping order.
func NormalizeAll(in []api.Score) []NormalizedScore {
	out := make([]NormalizedScore, len(in))
	for i, s := range in {
		out[i] = Normalize(s)
	}
	return out
}

func parseEndedAt(raw string) *int64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	for _, layout := range endedAtLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			sec := t.Unix()
			return &sec
		}
	}

	// Bare epochs: milliseconds when they are too large to be seconds.
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		if n > 1e12 {
			n /= 1000
		}
		return &n
	}
	return nil
}

func resolveMapID(s api.Score) *int64 {
	if s.Beatmapset != nil && s.Beatmapset.ID != nil {
		return s.Beatmapset.ID
	}
	if s.BeatmapsetID != nil {
		return s.BeatmapsetID
	}
	if s.Beatmap != nil {
		if s.Beatmap.BeatmapsetID != nil {
			return s.Beatmap.BeatmapsetID
		}
		if s.Beatmap.SetID != nil {
			return s.Beatmap.SetID
		}
	}
	return nil
}
