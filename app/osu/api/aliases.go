package api

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
)

// The osu! API has shipped the same value under several names across API
// versions and client libraries. Each table maps a canonical field to the
// source paths to try, in priority order; dotted paths address nested
// objects. The first present, non-null value that decodes cleanly wins.
type aliasTable map[string][]string

var scoreFields = aliasTable{
	"id":            {"id", "score_id"},
	"rank":          {"rank", "grade", "rank_old"},
	"mods":          {"mods", "modifiers", "mod", "mod_list", "modArray"},
	"pp":            {"pp", "pp_raw", "pp_amount", "pp_value"},
	"accuracy":      {"accuracy"},
	"max_combo":     {"max_combo", "maxcombo", "combo"},
	"statistics":    {"statistics", "counts"},
	"ended_at":      {"ended_at", "created_at", "date"},
	"beatmap":       {"beatmap"},
	"beatmapset":    {"beatmapset"},
	"beatmapset_id": {"beatmapset_id"},
}

var hitCountFields = aliasTable{
	"count_300":  {"count_300", "count300", "great"},
	"count_100":  {"count_100", "count100", "ok"},
	"count_50":   {"count_50", "count50", "meh"},
	"count_miss": {"count_miss", "countmiss", "miss"},
}

var beatmapFields = aliasTable{
	"id":                {"id", "beatmap_id"},
	"beatmapset_id":     {"beatmapset_id"},
	"set_id":            {"set_id"},
	"version":           {"version", "difficulty"},
	"difficulty_rating": {"difficulty_rating", "difficultyrating", "rating"},
	"max_combo":         {"max_combo", "maxcombo"},
}

var beatmapsetFields = aliasTable{
	"id":         {"id", "beatmapset_id"},
	"artist":     {"artist", "metadata.artist"},
	"title":      {"title", "metadata.title"},
	"play_count": {"play_count", "playcount"},
}

var userFields = aliasTable{
	"id":           {"id", "user_id"},
	"username":     {"username"},
	"country_code": {"country.code", "country_code"},
	"avatar_url":   {"avatar_url"},
	"join_date":    {"join_date", "joined_at"},
	"statistics":   {"statistics", "stats"},
}

var userStatisticsFields = aliasTable{
	"global_rank":     {"global_rank", "pp_rank"},
	"country_rank":    {"country_rank", "pp_country_rank"},
	"pp":              {"pp", "pp_raw"},
	"hit_accuracy":    {"hit_accuracy"},
	"play_count":      {"play_count", "playcount"},
	"play_time":       {"play_time", "total_seconds_played"},
	"total_hits":      {"total_hits"},
	"total_score":     {"total_score"},
	"ranked_score":    {"ranked_score"},
	"maximum_combo":   {"maximum_combo"},
	"replays_watched": {"replays_watched_by_others"},
	"level":           {"level.current", "level"},
	"grade_ssh":       {"grade_counts.ssh", "counts.ss_h", "count_rank_ssh"},
	"grade_ss":        {"grade_counts.ss", "counts.ss", "count_rank_ss"},
	"grade_sh":        {"grade_counts.sh", "counts.s_h", "count_rank_sh"},
	"grade_s":         {"grade_counts.s", "counts.s", "count_rank_s"},
	"grade_a":         {"grade_counts.a", "counts.a", "count_rank_a"},
}

type rawObject map[string]json.RawMessage

func parseObject(data []byte) (rawObject, error) {
	var obj rawObject
	if err := sonic.Unmarshal(data, &obj); err != nil {
		return nil, err
	}
	return obj, nil
}

func isNull(raw json.RawMessage) bool {
	return len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// lookup resolves a dotted path. Null values count as absent.
func (o rawObject) lookup(path string) (json.RawMessage, bool) {
	head, rest, nested := strings.Cut(path, ".")
	raw, ok := o[head]
	if !ok || isNull(raw) {
		return nil, false
	}
	if !nested {
		return raw, true
	}
	child, err := parseObject(raw)
	if err != nil {
		return nil, false
	}
	return child.lookup(rest)
}

// decode unmarshals the first alias of field that is present and decodes into
// dst. A value of the wrong shape is skipped rather than failing the whole
// payload. dst is untouched when nothing matched.
func (t aliasTable) decode(o rawObject, field string, dst any) bool {
	for _, path := range t[field] {
		raw, ok := o.lookup(path)
		if !ok {
			continue
		}
		if err := sonic.Unmarshal(raw, dst); err == nil {
			return true
		}
	}
	return false
}

func (t aliasTable) float(o rawObject, field string) *float64 {
	var v flexNumber
	if !t.decode(o, field, &v) {
		return nil
	}
	f := v.value
	return &f
}

func (t aliasTable) int64(o rawObject, field string) *int64 {
	f := t.float(o, field)
	if f == nil {
		return nil
	}
	n := int64(*f)
	return &n
}

func (t aliasTable) int(o rawObject, field string) *int {
	n := t.int64(o, field)
	if n == nil {
		return nil
	}
	i := int(*n)
	return &i
}

func (t aliasTable) text(o rawObject, field string) string {
	var v flexText
	if !t.decode(o, field, &v) {
		return ""
	}
	return string(v)
}

// flexNumber accepts a JSON number or a string holding one, which older
// endpoints return for counts and pp.
type flexNumber struct {
	value      float64
	fromString bool
}

func (n *flexNumber) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := sonic.Unmarshal(b, &s); err != nil {
			return err
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return err
		}
		n.value, n.fromString = v, true
		return nil
	}
	v, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return err
	}
	n.value, n.fromString = v, false
	return nil
}

// flexText accepts a JSON string or number and keeps its text form.
type flexText string

func (t *flexText) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := sonic.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = flexText(s)
		return nil
	}
	if _, err := strconv.ParseFloat(string(b), 64); err != nil {
		return err
	}
	*t = flexText(b)
	return nil
}
