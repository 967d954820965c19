// Package linkstore persists which osu! username each Discord user linked.
package linkstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/Black-And-White-Club/discord-osu-bot/app/observability/attr"
	"github.com/bytedance/sonic"
)

//go:generate mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks

type Store interface {
	Get(ctx context.Context, discordUserID string) (string, bool, error)
	Set(ctx context.Context, discordUserID, osuUsername string) error
	Remove(ctx context.Context, discordUserID string) (bool, error)
	Count(ctx context.Context) (int, error)
}

// FileStore keeps every link in one JSON object on disk, rewritten whole on
// each change. The mutex only serializes this process; another process
// writing the same file can still lose updates (last writer wins).
type FileStore struct {
	path   string
	mu     sync.Mutex
	logger *slog.Logger
}

func NewFileStore(path string, logger *slog.Logger) *FileStore {
	return &FileStore{path: path, logger: logger}
}

func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Get(_ context.Context, discordUserID string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	links, err := s.load()
	if err != nil {
		return "", false, err
	}
	username, ok := links[discordUserID]
	if !ok || username == "" {
		return "", false, nil
	}
	return username, true, nil
}

// Set links discordUserID to osuUsername, replacing any previous link.
func (s *FileStore) Set(ctx context.Context, discordUserID, osuUsername string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	links, err := s.load()
	if err != nil {
		return err
	}
	links[discordUserID] = osuUsername
	if err := s.save(links); err != nil {
		return err
	}

	if s.logger != nil {
		s.logger.DebugContext(ctx, "Stored account link",
			attr.String("discord_user_id", discordUserID),
			attr.OsuUsername(osuUsername),
		)
	}
	return nil
}

// Remove deletes the link and reports whether there was one.
func (s *FileStore) Remove(_ context.Context, discordUserID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	links, err := s.load()
	if err != nil {
		return false, err
	}
	if links[discordUserID] == "" {
		return false, nil
	}
	delete(links, discordUserID)
	return true, s.save(links)
}

func (s *FileStore) Count(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	links, err := s.load()
	if err != nil {
		return 0, err
	}
	return len(links), nil
}

// load must be called with mu held. A missing file is created as {}.
func (s *FileStore) load() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		if err := os.WriteFile(s.path, []byte("{}"), 0o644); err != nil {
			return nil, fmt.Errorf("failed to create linked accounts file: %w", err)
		}
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read linked accounts file: %w", err)
	}

	var links map[string]string
	if err := sonic.ConfigStd.Unmarshal(bytes.TrimSpace(data), &links); err != nil {
		return nil, &MalformedStateError{Path: s.path, Err: err}
	}
	if links == nil {
		links = map[string]string{}
	}
	return links, nil
}

// save must be called with mu held. The new content goes to a temp file in
// the same directory and replaces the old one by rename.
func (s *FileStore) save(links map[string]string) error {
	data, err := sonic.ConfigStd.MarshalIndent(links, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode linked accounts: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".linkedAccounts-*.json")
	if err != nil {
		return fmt.Errorf("failed to write linked accounts file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write linked accounts file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write linked accounts file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write linked accounts file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace linked accounts file: %w", err)
	}
	return nil
}
