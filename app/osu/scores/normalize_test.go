package scores

import (
	"reflect"
	"testing"

	"github.com/Black-And-White-Club/discord-osu-bot/app/osu/api"
)

func ptr[T any](v T) *T { return &v }

func TestNormalize_Timestamp(t *testing.T) {
	tests := []struct {
		name    string
		endedAt string
		want    *int64
	}{
		{name: "rfc3339 utc", endedAt: "2024-03-01T12:00:00Z", want: ptr(int64(1709294400))},
		{name: "fractional seconds floor", endedAt: "2024-03-01T12:00:00.999Z", want: ptr(int64(1709294400))},
		{name: "offset", endedAt: "2024-03-01T13:00:00+01:00", want: ptr(int64(1709294400))},
		{name: "no zone", endedAt: "2024-03-01T12:00:00", want: ptr(int64(1709294400))},
		{name: "space separated", endedAt: "2024-03-01 12:00:00", want: ptr(int64(1709294400))},
		{name: "epoch seconds", endedAt: "1709294400", want: ptr(int64(1709294400))},
		{name: "epoch milliseconds", endedAt: "1709294400123", want: ptr(int64(1709294400))},
		{name: "empty", endedAt: "", want: nil},
		{name: "garbage", endedAt: "yesterday-ish", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(api.Score{EndedAt: tt.endedAt}).ParsedTimestamp
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParsedTimestamp = %v, want %v", deref(got), deref(tt.want))
			}
		})
	}
}

func deref(p *int64) any {
	if p == nil {
		return nil
	}
	return *p
}

func TestNormalize_MapIDPriority(t *testing.T) {
	tests := []struct {
		name  string
		score api.Score
		want  *int64
	}{
		{
			name: "beatmapset object wins",
			score: api.Score{
				Beatmapset:   &api.Beatmapset{ID: ptr(int64(1))},
				BeatmapsetID: ptr(int64(2)),
				Beatmap:      &api.Beatmap{BeatmapsetID: ptr(int64(3)), SetID: ptr(int64(4))},
			},
			want: ptr(int64(1)),
		},
		{
			name: "top-level set id",
			score: api.Score{
				Beatmapset:   &api.Beatmapset{Title: "no id"},
				BeatmapsetID: ptr(int64(2)),
				Beatmap:      &api.Beatmap{BeatmapsetID: ptr(int64(3))},
			},
			want: ptr(int64(2)),
		},
		{
			name:  "beatmap set id",
			score: api.Score{Beatmap: &api.Beatmap{BeatmapsetID: ptr(int64(3)), SetID: ptr(int64(4))}},
			want:  ptr(int64(3)),
		},
		{
			name:  "legacy set_id",
			score: api.Score{Beatmap: &api.Beatmap{SetID: ptr(int64(4))}},
			want:  ptr(int64(4)),
		},
		{
			name:  "none",
			score: api.Score{Beatmap: &api.Beatmap{ID: 99}},
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.score).ResolvedMapID
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ResolvedMapID = %v, want %v", deref(got), deref(tt.want))
			}
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	in := api.Score{
		Rank:    "S",
		EndedAt: "2024-03-01T12:00:00Z",
		Beatmap: &api.Beatmap{ID: 10, SetID: ptr(int64(7))},
	}
	before := in

	once := Normalize(in)
	twice := Normalize(once.Score)

	if !reflect.DeepEqual(once, twice) {
		t.Errorf("normalizing twice changed the result: %+v vs %+v", once, twice)
	}
	if !reflect.DeepEqual(in, before) {
		t.Errorf("input was mutated")
	}
}

func TestNormalizeAll_KeepsOrder(t *testing.T) {
	got := NormalizeAll([]api.Score{{ID: 3}, {ID: 1}, {ID: 2}})
	if len(got) != 3 || got[0].ID != 3 || got[1].ID != 1 || got[2].ID != 2 {
		t.Errorf("unexpected order: %+v", got)
	}
}
