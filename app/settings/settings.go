// Package settings holds the bot-wide settings file, currently just the command prefix.
package settings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/Black-And-White-Club/discord-osu-bot/app/observability/attr"
	"github.com/bytedance/sonic"
)

const (
	DefaultPrefix   = "!"
	MaxPrefixLength = 5
	prefixKey       = "defaultPrefix"
)

// fileAPI keeps numbers exact and writes keys in a stable order.
var fileAPI = sonic.Config{UseNumber: true, SortMapKeys: true, EscapeHTML: false}.Froze()

type PrefixProblem int

const (
	PrefixEmpty PrefixProblem = iota
	PrefixTooLong
	PrefixHasWhitespace
)

// InvalidPrefixError explains why a prefix was rejected.
type InvalidPrefixError struct {
	Prefix  string
	Problem PrefixProblem
}

func (e *InvalidPrefixError) Error() string {
	switch e.Problem {
	case PrefixEmpty:
		return "prefix is empty"
	case PrefixTooLong:
		return fmt.Sprintf("prefix %q is longer than %d characters", e.Prefix, MaxPrefixLength)
	default:
		return fmt.Sprintf("prefix %q contains whitespace", e.Prefix)
	}
}

func IsInvalidPrefix(err error) bool {
	var target *InvalidPrefixError
	return errors.As(err, &target)
}

// ValidatePrefix accepts 1 to MaxPrefixLength characters without whitespace.
func ValidatePrefix(prefix string) error {
	switch {
	case prefix == "":
		return &InvalidPrefixError{Prefix: prefix, Problem: PrefixEmpty}
	case utf8.RuneCountInString(prefix) > MaxPrefixLength:
		return &InvalidPrefixError{Prefix: prefix, Problem: PrefixTooLong}
	case strings.IndexFunc(prefix, unicode.IsSpace) >= 0:
		return &InvalidPrefixError{Prefix: prefix, Problem: PrefixHasWhitespace}
	}
	return nil
}

// Store is the settings file plus the in-memory prefix every message is parsed with.
type Store struct {
	path   string
	logger *slog.Logger

	mu     sync.RWMutex
	prefix string
}

// Load reads path. A missing file or missing key means DefaultPrefix; an
// invalid stored prefix is logged and replaced by DefaultPrefix.
func Load(path string, logger *slog.Logger) (*Store, error) {
	s := &Store{path: path, logger: logger, prefix: DefaultPrefix}

	values, err := s.read()
	if err != nil {
		return nil, err
	}
	raw, ok := values[prefixKey].(string)
	if !ok || raw == "" {
		return s, nil
	}
	if err := ValidatePrefix(raw); err != nil {
		logger.Warn("Ignoring invalid stored prefix", attr.String("prefix", raw), attr.Error(err))
		return s, nil
	}
	s.prefix = raw
	return s, nil
}

func (s *Store) Prefix() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prefix
}

// SetPrefix validates prefix, rewrites the file keeping every other key, and
// then switches the in-memory prefix.
func (s *Store) SetPrefix(ctx context.Context, prefix string) error {
	if err := ValidatePrefix(prefix); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.read()
	if err != nil {
		return err
	}
	values[prefixKey] = prefix

	data, err := fileAPI.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}

	old := s.prefix
	s.prefix = prefix
	s.logger.InfoContext(ctx, "Command prefix changed",
		attr.String("old_prefix", old),
		attr.String("new_prefix", prefix),
	)
	return nil
}

func (s *Store) read() (map[string]interface{}, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]interface{}{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	var values map[string]interface{}
	if err := fileAPI.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("failed to parse settings file %s: %w", s.path, err)
	}
	if values == nil {
		values = map[string]interface{}{}
	}
	return values, nil
}
