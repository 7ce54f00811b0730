// Package store persists session snapshots as JSON files. Each session
// is one export envelope on disk, which keeps the persisted shape and
// the bulk export/import shape identical.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/propdeck/challenge-backend/pkg/types"
	"go.uber.org/zap"
)

// Store provides file-backed session persistence.
type Store struct {
	mu      sync.RWMutex
	logger  *zap.Logger
	dataDir string
}

// NewStore creates a session store rooted at dataDir.
func NewStore(logger *zap.Logger, dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &Store{logger: logger, dataDir: dataDir}, nil
}

// SaveSession writes a session envelope to disk. The write goes
// through a temp file and rename so readers never see a torn file.
func (s *Store) SaveSession(name string, env *types.ExportEnvelope) error {
	path, err := s.sessionPath(name)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to finalize session file: %w", err)
	}

	s.logger.Info("session saved",
		zap.String("session", name),
		zap.Int("trades", len(env.TradeData)))
	return nil
}

// LoadSession reads a session envelope from disk.
func (s *Store) LoadSession(name string) (*types.ExportEnvelope, error) {
	path, err := s.sessionPath(name)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var env types.ExportEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to parse session file: %w", err)
	}
	return &env, nil
}

// ListSessions returns the names of all stored sessions, sorted.
func (s *Store) ListSessions() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list data directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), ".json"))
	}
	sort.Strings(names)
	return names, nil
}

// DeleteSession removes a stored session.
func (s *Store) DeleteSession(name string) error {
	path, err := s.sessionPath(name)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// sessionPath validates a session name and maps it to its file path.
func (s *Store) sessionPath(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\.`) {
		return "", fmt.Errorf("invalid session name %q", name)
	}
	return filepath.Join(s.dataDir, name+".json"), nil
}
