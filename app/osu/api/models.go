package api

// Score is one play as returned by the scores endpoints. Optional values are
// pointers; nil means upstream did not send them.
type Score struct {
	ID         int64
	Rank       string
	Mods       Mods
	PP         *float64
	Accuracy   *float64 // 0..1
	MaxCombo   *int
	Statistics HitCounts
	EndedAt    string
	Beatmap    *Beatmap
	Beatmapset *Beatmapset
	// BeatmapsetID is the top-level set id some payloads carry next to the
	// nested beatmap objects.
	BeatmapsetID *int64
}

// HitCounts are the judgement counts of a play.
type HitCounts struct {
	Count300  *int
	Count100  *int
	Count50   *int
	CountMiss *int
}

// Total sums every judgement, treating absent counts as zero.
func (h HitCounts) Total() int {
	return deref(h.Count300) + deref(h.Count100) + deref(h.Count50) + deref(h.CountMiss)
}

// Beatmap is a single difficulty.
type Beatmap struct {
	ID               int64
	BeatmapsetID     *int64
	SetID            *int64
	Version          string
	DifficultyRating *float64
	MaxCombo         *int
}

// Beatmapset groups the difficulties of one song.
type Beatmapset struct {
	ID        *int64
	Artist    string
	Title     string
	PlayCount *int64
}

// User is a player profile.
type User struct {
	ID          int64
	Username    string
	CountryCode string
	AvatarURL   string
	JoinDate    string
	Statistics  UserStatistics
}

// UserStatistics are the ruleset statistics shown on a profile.
type UserStatistics struct {
	GlobalRank     *int64
	CountryRank    *int64
	PP             *float64
	HitAccuracy    *float64 // percent
	PlayCount      *int64
	PlayTime       *int64 // seconds
	TotalHits      *int64
	TotalScore     *int64
	RankedScore    *int64
	MaximumCombo   *int64
	ReplaysWatched *int64
	Level          *float64
	Grades         GradeCounts
}

// GradeCounts holds how many plays reached each top grade. Absent counts are zero.
type GradeCounts struct {
	SSH int64
	SS  int64
	SH  int64
	S   int64
	A   int64
}

// DifficultyAttributes is the response of the beatmap attributes endpoint.
type DifficultyAttributes struct {
	StarRating float64 `json:"star_rating"`
	MaxCombo   int     `json:"max_combo"`
}

type difficultyAttributesResponse struct {
	Attributes DifficultyAttributes `json:"attributes"`
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

func (s *Score) UnmarshalJSON(data []byte) error {
	obj, err := parseObject(data)
	if err != nil {
		return err
	}

	var out Score
	scoreFields.decode(obj, "id", &out.ID)
	out.Rank = scoreFields.text(obj, "rank")
	scoreFields.decode(obj, "mods", &out.Mods)
	out.PP = scoreFields.float(obj, "pp")
	out.Accuracy = decodeAccuracy(obj)
	out.MaxCombo = scoreFields.int(obj, "max_combo")
	out.EndedAt = scoreFields.text(obj, "ended_at")
	out.BeatmapsetID = scoreFields.int64(obj, "beatmapset_id")

	var beatmap Beatmap
	if scoreFields.decode(obj, "beatmap", &beatmap) {
		out.Beatmap = &beatmap
	}
	var set Beatmapset
	if scoreFields.decode(obj, "beatmapset", &set) {
		out.Beatmapset = &set
	}

	// Flat payloads put the judgement counts on the score itself.
	if !scoreFields.decode(obj, "statistics", &out.Statistics) {
		out.Statistics = hitCountsFrom(obj)
	}

	*s = out
	return nil
}

// decodeAccuracy normalises accuracy to a 0..1 fraction. Numbers are already
// fractions. Strings above 1 are read as percentages.
func decodeAccuracy(obj rawObject) *float64 {
	var v flexNumber
	if !scoreFields.decode(obj, "accuracy", &v) {
		return nil
	}
	acc := v.value
	if v.fromString && acc > 1 {
		acc /= 100
	}
	return &acc
}

func (h *HitCounts) UnmarshalJSON(data []byte) error {
	obj, err := parseObject(data)
	if err != nil {
		return err
	}
	*h = hitCountsFrom(obj)
	return nil
}

func hitCountsFrom(obj rawObject) HitCounts {
	return HitCounts{
		Count300:  hitCountFields.int(obj, "count_300"),
		Count100:  hitCountFields.int(obj, "count_100"),
		Count50:   hitCountFields.int(obj, "count_50"),
		CountMiss: hitCountFields.int(obj, "count_miss"),
	}
}

func (b *Beatmap) UnmarshalJSON(data []byte) error {
	obj, err := parseObject(data)
	if err != nil {
		return err
	}
	*b = Beatmap{
		BeatmapsetID:     beatmapFields.int64(obj, "beatmapset_id"),
		SetID:            beatmapFields.int64(obj, "set_id"),
		Version:          beatmapFields.text(obj, "version"),
		DifficultyRating: beatmapFields.float(obj, "difficulty_rating"),
		MaxCombo:         beatmapFields.int(obj, "max_combo"),
	}
	if id := beatmapFields.int64(obj, "id"); id != nil {
		b.ID = *id
	}
	return nil
}

func (b *Beatmapset) UnmarshalJSON(data []byte) error {
	obj, err := parseObject(data)
	if err != nil {
		return err
	}
	*b = Beatmapset{
		ID:        beatmapsetFields.int64(obj, "id"),
		Artist:    beatmapsetFields.text(obj, "artist"),
		Title:     beatmapsetFields.text(obj, "title"),
		PlayCount: beatmapsetFields.int64(obj, "play_count"),
	}
	return nil
}

func (u *User) UnmarshalJSON(data []byte) error {
	obj, err := parseObject(data)
	if err != nil {
		return err
	}
	out := User{
		Username:    userFields.text(obj, "username"),
		CountryCode: userFields.text(obj, "country_code"),
		AvatarURL:   userFields.text(obj, "avatar_url"),
		JoinDate:    userFields.text(obj, "join_date"),
	}
	if id := userFields.int64(obj, "id"); id != nil {
		out.ID = *id
	}
	userFields.decode(obj, "statistics", &out.Statistics)
	*u = out
	return nil
}

func (s *UserStatistics) UnmarshalJSON(data []byte) error {
	obj, err := parseObject(data)
	if err != nil {
		return err
	}
	t := userStatisticsFields
	*s = UserStatistics{
		GlobalRank:     t.int64(obj, "global_rank"),
		CountryRank:    t.int64(obj, "country_rank"),
		PP:             t.float(obj, "pp"),
		HitAccuracy:    t.float(obj, "hit_accuracy"),
		PlayCount:      t.int64(obj, "play_count"),
		PlayTime:       t.int64(obj, "play_time"),
		TotalHits:      t.int64(obj, "total_hits"),
		TotalScore:     t.int64(obj, "total_score"),
		RankedScore:    t.int64(obj, "ranked_score"),
		MaximumCombo:   t.int64(obj, "maximum_combo"),
		ReplaysWatched: t.int64(obj, "replays_watched"),
		Level:          t.float(obj, "level"),
		Grades: GradeCounts{
			SSH: deref(t.int64(obj, "grade_ssh")),
			SS:  deref(t.int64(obj, "grade_ss")),
			SH:  deref(t.int64(obj, "grade_sh")),
			S:   deref(t.int64(obj, "grade_s")),
			A:   deref(t.int64(obj, "grade_a")),
		},
	}
	return nil
}
