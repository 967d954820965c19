package api

import (
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeScore(t *testing.T, payload string) Score {
	t.Helper()
	var s Score
	require.NoError(t, sonic.Unmarshal([]byte(payload), &s))
	return s
}

func TestScore_DecodesV2Payload(t *testing.T) {
	s := decodeScore(t, `{
		"id": 42,
		"rank": "XH",
		"mods": [{"acronym": "HD"}, {"acronym": "DT"}],
		"pp": 512.345,
		"accuracy": 0.9931,
		"max_combo": 1234,
		"ended_at": "2024-03-01T12:00:00Z",
		"statistics": {"great": 980, "ok": 15, "meh": 0, "miss": 1},
		"beatmap": {"id": 111, "beatmapset_id": 222, "version": "Insane", "difficulty_rating": 5.67, "max_combo": 1500},
		"beatmapset": {"id": 222, "artist": "xi", "title": "FREEDOM DiVE"}
	}`)

	assert.Equal(t, int64(42), s.ID)
	assert.Equal(t, "XH", s.Rank)
	assert.Equal(t, Mods{"HD", "DT"}, s.Mods)
	require.NotNil(t, s.PP)
	assert.InDelta(t, 512.345, *s.PP, 1e-9)
	require.NotNil(t, s.Accuracy)
	assert.InDelta(t, 0.9931, *s.Accuracy, 1e-9)
	assert.Equal(t, 1234, *s.MaxCombo)
	assert.Equal(t, "2024-03-01T12:00:00Z", s.EndedAt)
	assert.Equal(t, 980, *s.Statistics.Count300)
	assert.Equal(t, 1, *s.Statistics.CountMiss)
	assert.Equal(t, 996, s.Statistics.Total())
	require.NotNil(t, s.Beatmap)
	assert.Equal(t, int64(111), s.Beatmap.ID)
	assert.Equal(t, "Insane", s.Beatmap.Version)
	assert.Equal(t, int64(222), *s.Beatmapset.ID)
	assert.Equal(t, "FREEDOM DiVE", s.Beatmapset.Title)
}

func TestScore_DecodesLegacyAliases(t *testing.T) {
	s := decodeScore(t, `{
		"grade": "SH",
		"mod_list": "HD HR",
		"pp_raw": "301.5",
		"accuracy": "98.5",
		"maxcombo": "700",
		"count300": "500", "count100": "10", "count50": "2", "countmiss": "0",
		"beatmapset_id": 999,
		"beatmap": {"beatmap_id": 5, "difficulty": "Hard", "difficultyrating": "4.2", "maxcombo": 800}
	}`)

	assert.Equal(t, "SH", s.Rank)
	assert.Equal(t, Mods{"HD", "HR"}, s.Mods)
	assert.InDelta(t, 301.5, *s.PP, 1e-9)
	assert.InDelta(t, 0.985, *s.Accuracy, 1e-9, "percent strings are stored as fractions")
	assert.Equal(t, 700, *s.MaxCombo)
	assert.Equal(t, 500, *s.Statistics.Count300)
	assert.Equal(t, 10, *s.Statistics.Count100)
	assert.Equal(t, int64(999), *s.BeatmapsetID)
	assert.Nil(t, s.Beatmapset)
	assert.Equal(t, int64(5), s.Beatmap.ID)
	assert.Equal(t, "Hard", s.Beatmap.Version)
	assert.InDelta(t, 4.2, *s.Beatmap.DifficultyRating, 1e-9)
	assert.Equal(t, 800, *s.Beatmap.MaxCombo)
}

func TestScore_FirstNonNullAliasWins(t *testing.T) {
	s := decodeScore(t, `{"pp": null, "pp_raw": 12, "rank": null, "grade": "A", "statistics": null, "counts": {"count_300": 3}}`)

	assert.InDelta(t, 12, *s.PP, 1e-9)
	assert.Equal(t, "A", s.Rank)
	assert.Equal(t, 3, *s.Statistics.Count300)
}

func TestScore_WrongShapedFieldIsSkipped(t *testing.T) {
	s := decodeScore(t, `{"pp": {"value": 1}, "pp_value": 44.5, "max_combo": "lots"}`)

	assert.InDelta(t, 44.5, *s.PP, 1e-9)
	assert.Nil(t, s.MaxCombo)
}

func TestMods_Shapes(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    Mods
	}{
		{"string with spaces", `"HD DT"`, Mods{"HD", "DT"}},
		{"packed string", `"HDDT"`, Mods{"HD", "DT"}},
		{"empty string", `"  "`, nil},
		{"list of strings", `["HR", "DT"]`, Mods{"HR", "DT"}},
		{"list of objects", `[{"code": "NF"}, {"name": "EZ"}, {"acronym": "HT", "settings": {}}]`, Mods{"NF", "EZ", "HT"}},
		{"list with numbers", `[8, "HR"]`, Mods{"8", "HR"}},
		{"flags object keeps order", `{"HR": true, "NF": false, "DT": 1, "HD": true}`, Mods{"HR", "DT", "HD"}},
		{"nested acronyms", `{"acronyms": ["FL", "HD"]}`, Mods{"FL", "HD"}},
		{"nested values objects", `{"values": [{"acronym": "SO"}]}`, Mods{"SO"}},
		{"null", `null`, nil},
		{"number", `24`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var m Mods
			require.NoError(t, sonic.Unmarshal([]byte(tt.payload), &m))
			assert.Equal(t, tt.want, m)
		})
	}
}

func TestMods_SuffixAndKey(t *testing.T) {
	assert.Equal(t, "+HRDT", Mods{"HR", "DT"}.Suffix())
	assert.Equal(t, "", Mods(nil).Suffix())
	assert.Equal(t, "DTHR", Mods{"HR", "DT"}.Key())
	assert.Equal(t, Mods{"HR", "DT"}.Key(), Mods{"DT", "HR"}.Key())
}

func TestUser_DecodesGradeCountConventions(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    GradeCounts
	}{
		{
			name:    "grade_counts",
			payload: `{"username": "peppy", "statistics": {"grade_counts": {"ssh": 1, "ss": 2, "sh": 3, "s": 4, "a": 5}}}`,
			want:    GradeCounts{SSH: 1, SS: 2, SH: 3, S: 4, A: 5},
		},
		{
			name:    "counts",
			payload: `{"username": "peppy", "stats": {"counts": {"ss_h": 6, "ss": 7, "s_h": 8, "s": 9, "a": 10}}}`,
			want:    GradeCounts{SSH: 6, SS: 7, SH: 8, S: 9, A: 10},
		},
		{
			name:    "mixed and missing",
			payload: `{"statistics": {"grade_counts": {"ss": 2}, "counts": {"ss_h": 1}}}`,
			want:    GradeCounts{SSH: 1, SS: 2},
		},
		{
			name:    "no statistics",
			payload: `{"username": "nobody"}`,
			want:    GradeCounts{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var u User
			require.NoError(t, sonic.Unmarshal([]byte(tt.payload), &u))
			assert.Equal(t, tt.want, u.Statistics.Grades)
		})
	}
}

func TestUser_DecodesProfile(t *testing.T) {
	var u User
	require.NoError(t, sonic.Unmarshal([]byte(`{
		"id": 2,
		"username": "peppy",
		"country": {"code": "AU", "name": "Australia"},
		"avatar_url": "https://a.ppy.sh/2",
		"join_date": "2007-08-28T03:09:12+00:00",
		"statistics": {
			"global_rank": 123, "country_rank": 4, "pp": 1234.5, "hit_accuracy": 98.76,
			"play_count": 1000, "play_time": 7200, "total_hits": 50000,
			"total_score": 99999, "ranked_score": 8888, "maximum_combo": 2000,
			"replays_watched_by_others": 77, "level": {"current": 100, "progress": 45}
		}
	}`), &u))

	assert.Equal(t, int64(2), u.ID)
	assert.Equal(t, "AU", u.CountryCode)
	assert.Equal(t, int64(123), *u.Statistics.GlobalRank)
	assert.InDelta(t, 98.76, *u.Statistics.HitAccuracy, 1e-9)
	assert.Equal(t, int64(77), *u.Statistics.ReplaysWatched)
	assert.InDelta(t, 100, *u.Statistics.Level, 1e-9)
}
