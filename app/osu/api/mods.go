package api

import (
	"bytes"
	"encoding/json"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/bytedance/sonic"
	"github.com/samber/lo"
)

// Mods is the list of mod acronyms on a score, in the order upstream sent them.
//
// Upstream encodes mods as a space-delimited string, a list of acronyms, a
// list of objects (acronym, code or name), or an object of flags. The shapes
// are tried in that order.
type Mods []string

// Suffix renders the mods as "+HRDT", or "" when there are none.
func (m Mods) Suffix() string {
	if len(m) == 0 {
		return ""
	}
	return "+" + strings.Join(m, "")
}

// Key is the sorted concatenation of the acronyms, e.g. "DTHR".
func (m Mods) Key() string {
	sorted := append([]string(nil), m...)
	sort.Strings(sorted)
	return strings.Join(sorted, "")
}

func (m *Mods) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*m = nil
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := sonic.Unmarshal(data, &s); err != nil {
			return err
		}
		*m = modsFromString(s)
	case '[':
		var items []json.RawMessage
		if err := sonic.Unmarshal(data, &items); err != nil {
			return err
		}
		*m = modsFromList(items)
	case '{':
		mods, err := modsFromObject(data)
		if err != nil {
			return err
		}
		*m = mods
	default:
		*m = nil
	}
	return nil
}

// modsFromString splits "HR DT", "HR,DT" or "HRDT" into acronyms.
func modsFromString(s string) Mods {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == ',' || r == '+'
	})
	var out Mods
	for _, f := range fields {
		out = append(out, splitPacked(f)...)
	}
	return out
}

// splitPacked cuts a run of two-letter acronyms such as "HRDT" apart.
func splitPacked(s string) []string {
	if len(s) <= 2 || len(s)%2 != 0 || strings.IndexFunc(s, func(r rune) bool { return !unicode.IsUpper(r) }) >= 0 {
		return []string{s}
	}
	return lo.ChunkString(s, 2)
}

func modsFromList(items []json.RawMessage) Mods {
	out := lo.FilterMap(items, func(raw json.RawMessage, _ int) (string, bool) {
		raw = bytes.TrimSpace(raw)
		if isNull(raw) {
			return "", false
		}
		switch raw[0] {
		case '"':
			var s string
			if sonic.Unmarshal(raw, &s) != nil {
				return "", false
			}
			s = strings.Join(strings.Fields(s), "")
			return s, s != ""
		case '{':
			obj, err := parseObject(raw)
			if err != nil {
				return "", false
			}
			for _, key := range []string{"acronym", "code", "name"} {
				var s string
				if v, ok := obj.lookup(key); ok && sonic.Unmarshal(v, &s) == nil && s != "" {
					return s, true
				}
			}
			return "", false
		default:
			if _, err := strconv.ParseFloat(string(raw), 64); err != nil {
				return "", false
			}
			return string(raw), true
		}
	})
	if len(out) == 0 {
		return nil
	}
	return out
}

// modsFromObject reads a flags object ({"HD": true, "DT": 1}) keeping key
// order, and otherwise falls back to a nested list under acronyms, list, mods
// or values.
func modsFromObject(data []byte) (Mods, error) {
	keys, values, err := orderedObject(data)
	if err != nil {
		return nil, err
	}

	var flags Mods
	for i, key := range keys {
		v := bytes.TrimSpace(values[i])
		if bytes.Equal(v, []byte("true")) || bytes.Equal(v, []byte("1")) {
			flags = append(flags, key)
		}
	}
	if len(flags) > 0 {
		return flags, nil
	}

	obj := make(rawObject, len(keys))
	for i, key := range keys {
		obj[key] = values[i]
	}
	for _, key := range []string{"acronyms", "list", "mods", "values"} {
		raw, ok := obj.lookup(key)
		if !ok || bytes.TrimSpace(raw)[0] != '[' {
			continue
		}
		var items []json.RawMessage
		if sonic.Unmarshal(raw, &items) == nil {
			return modsFromList(items), nil
		}
	}
	return nil, nil
}

// orderedObject walks the top level of a JSON object and returns its keys in
// document order. Go maps lose that order, and flag order is display order.
func orderedObject(data []byte) ([]string, []json.RawMessage, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil {
		return nil, nil, err
	}

	var (
		keys   []string
		values []json.RawMessage
	)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, _ := tok.(string)
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, nil, err
		}
		keys = append(keys, key)
		values = append(values, raw)
	}
	return keys, values, nil
}
