// Package config owns the Claude Code settings file. All reads and writes
// of ~/.claude/settings.json go through the Store; no other package touches
// the file directly.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"cswitch/config/models"
	"cswitch/config/storage"
)

var (
	// ErrParse indicates the settings file is not valid JSON or does not
	// match the expected shape.
	ErrParse = errors.New("settings file is malformed")
	// ErrWrite indicates an I/O failure while saving the settings file.
	ErrWrite = errors.New("failed to write settings file")
)

// Store manages the settings file consumed by Claude Code.
type Store struct {
	path string
	mu   sync.Mutex
}

// NewStore creates a Store for the default path ~/.claude/settings.json.
func NewStore() (*Store, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}
	return NewStoreAt(filepath.Join(homeDir, ".claude", "settings.json")), nil
}

// NewStoreAt creates a Store for an explicit settings path.
func NewStoreAt(path string) *Store {
	return &Store{path: path}
}

// Path returns the settings file path.
func (s *Store) Path() string {
	return s.path
}

// Exists reports whether the settings file exists. No side effects.
func (s *Store) Exists() bool {
	return storage.FileExists(s.path)
}

// Load reads the settings file. When the file does not exist yet, an empty
// configuration is created, persisted and returned.
func (s *Store) Load() (*models.Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !storage.FileExists(s.path) {
		cfg := models.New()
		if err := s.save(cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}
	return decode(data)
}

// Save serializes the configuration and writes it atomically. Top-level
// keys other than env are preserved so foreign Claude Code settings
// survive a switch.
func (s *Store) Save(cfg *models.Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(cfg)
}

func (s *Store) save(cfg *models.Config) error {
	raw := []byte("{}")
	if storage.FileExists(s.path) {
		existing, err := os.ReadFile(s.path)
		if err == nil && gjson.ValidBytes(existing) {
			raw = existing
		}
	}

	// json.Marshal sorts map keys, which keeps the env block deterministic.
	envJSON, err := json.Marshal(cfg.Env)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}

	updated, err := sjson.SetRawBytes(raw, "env", envJSON)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, updated, "", "  "); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	pretty.WriteByte('\n')

	if err := storage.AtomicWriteFile(s.path, pretty.Bytes(), 0600); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	return nil
}

// ReadRaw returns the settings file's exact bytes.
func (s *Store) ReadRaw() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return os.ReadFile(s.path)
}

// SaveRaw atomically replaces the settings file with the given bytes.
// Used by backup restore, which must reproduce a snapshot exactly.
func (s *Store) SaveRaw(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := storage.AtomicWriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	return nil
}

// decode parses settings bytes into a Config, probing the shape with gjson
// before committing to a full unmarshal.
func decode(data []byte) (*models.Config, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return models.New(), nil
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrParse)
	}

	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, fmt.Errorf("%w: top level is not an object", ErrParse)
	}
	env := root.Get("env")
	if env.Exists() && !env.IsObject() {
		return nil, fmt.Errorf("%w: env is not an object", ErrParse)
	}

	var cfg models.Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if cfg.Env == nil {
		cfg.Env = map[string]models.EnvValue{}
	}
	return &cfg, nil
}
