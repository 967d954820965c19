package scores

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/bytedance/sonic"
)

// Emojis maps a grade key (ssh, ss, sh, s, a, b, c, d, f) to the custom emoji
// shown in its place.
type Emojis map[string]string

// LoadEmojis reads the optional emoji override file. A missing file yields an
// empty set and no error.
func LoadEmojis(path string) (Emojis, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Emojis{}, nil
	}
	if err != nil {
		return Emojis{}, fmt.Errorf("failed to read emojis file: %w", err)
	}

	var e Emojis
	if err := sonic.Unmarshal(data, &e); err != nil {
		return Emojis{}, fmt.Errorf("failed to parse emojis file %s: %w", path, err)
	}
	return e, nil
}

var gradeKeys = map[string]string{
	"XH": "ssh", "SSH": "ssh", "SS+": "ssh",
	"X": "ss", "SS": "ss",
	"SH": "sh", "S+": "sh",
	"S": "s", "A": "a", "B": "b", "C": "c", "D": "d", "F": "f",
}

var gradeLabels = map[string]string{
	"ssh": "SS+", "ss": "SS", "sh": "S+",
	"s": "S", "a": "A", "b": "B", "c": "C", "d": "D", "f": "F",
}

// GradeKey maps a rank letter from the API onto its grade key, "" if unknown.
func GradeKey(rank string) string {
	return gradeKeys[strings.ToUpper(strings.TrimSpace(rank))]
}

// Glyph renders a grade key: the configured emoji, else its bold label.
func (e Emojis) Glyph(key string) string {
	if emoji := e[key]; emoji != "" {
		return emoji
	}
	if label, ok := gradeLabels[key]; ok {
		return "**" + label + "**"
	}
	return "**?**"
}

// RankGlyph renders a rank letter, falling back to a bold "?" when unrecognised.
func (e Emojis) RankGlyph(rank string) string {
	return e.Glyph(GradeKey(rank))
}
