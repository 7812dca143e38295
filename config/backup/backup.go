// Package backup snapshots the settings file before every mutation and
// keeps a bounded, ordered history of prior states.
package backup

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"cswitch/config"
	"cswitch/config/storage"
)

// Retention is the number of backups kept. Oldest records beyond the bound
// are deleted after every Create.
const Retention = 20

const metadataFile = "backups_metadata.json"

var (
	// ErrBackup indicates a snapshot or metadata write failure.
	ErrBackup = errors.New("backup failed")
	// ErrNotFound indicates the snapshot file referenced by a record is gone.
	ErrNotFound = errors.New("backup snapshot not found")
)

// Record describes one retained snapshot of the settings file.
type Record struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Provider  string    `json:"providerLabel"`
	Filename  string    `json:"filename"`
}

// Engine owns the snapshot files and the metadata list. Snapshots are
// byte-for-byte copies of the settings file, so a restore reproduces the
// exact prior content including formatting and unknown fields.
type Engine struct {
	store *config.Store
	dir   string
	mu    sync.Mutex
	now   func() time.Time
}

// NewEngine creates an Engine storing snapshots in dir, typically
// ~/.claude/backups.
func NewEngine(store *config.Store, dir string) (*Engine, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("%w: failed to create backups directory: %v", ErrBackup, err)
	}
	return &Engine{store: store, dir: dir, now: time.Now}, nil
}

// DefaultDir returns the default backups directory next to the settings file.
func DefaultDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".claude", "backups"), nil
}

// Create snapshots the current settings file, labeled with the provider
// active at backup time, and prepends a new record to the metadata list.
// When the settings file does not exist yet an empty configuration is
// snapshotted instead.
func (e *Engine) Create(label string) (*Record, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.create(label)
}

func (e *Engine) create(label string) (*Record, error) {
	ts := e.now()
	id := uuid.NewString()
	filename := fmt.Sprintf("settings.json.backup.%s_%s", ts.Format("20060102_150405"), id[:8])

	if err := e.writeSnapshot(filepath.Join(e.dir, filename)); err != nil {
		return nil, err
	}

	rec := Record{ID: id, Timestamp: ts, Provider: label, Filename: filename}
	records := append([]Record{rec}, e.list()...)

	// Enforce the retention bound, oldest first.
	if len(records) > Retention {
		for _, old := range records[Retention:] {
			e.removeSnapshot(old)
		}
		records = records[:Retention]
	}

	if err := e.saveMetadata(records); err != nil {
		return nil, err
	}
	return &rec, nil
}

// writeSnapshot copies the settings file byte for byte, or writes the
// serialization of an empty configuration when no file exists.
func (e *Engine) writeSnapshot(dst string) error {
	if e.store.Exists() {
		if err := storage.CopyFile(e.store.Path(), dst); err != nil {
			return fmt.Errorf("%w: failed to copy settings file: %v", ErrBackup, err)
		}
		return nil
	}
	if err := os.WriteFile(dst, []byte("{\n  \"env\": {}\n}\n"), 0600); err != nil {
		return fmt.Errorf("%w: failed to write snapshot: %v", ErrBackup, err)
	}
	return nil
}

// List returns all retained records ordered by timestamp descending.
// Missing or unreadable metadata degrades to an empty list, never an error.
func (e *Engine) List() []Record {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.list()
}

func (e *Engine) list() []Record {
	data, err := os.ReadFile(filepath.Join(e.dir, metadataFile))
	if err != nil {
		return nil
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		// Metadata is a convenience index; corruption means "no backups".
		return nil
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp.After(records[j].Timestamp)
	})
	return records
}

// Restore replaces the settings file with the snapshot's bytes. A fresh
// backup of the current state is taken first, so a restore is always
// undoable. currentLabel names the provider active before the restore.
func (e *Engine) Restore(rec Record, currentLabel string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	snapshotPath := filepath.Join(e.dir, rec.Filename)
	if !storage.FileExists(snapshotPath) {
		return fmt.Errorf("%w: %s", ErrNotFound, rec.Filename)
	}

	if _, err := e.create(currentLabel); err != nil {
		return err
	}

	data, err := os.ReadFile(snapshotPath)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrNotFound, rec.Filename)
	}
	return e.store.SaveRaw(data)
}

// Delete removes the snapshot file (best-effort) and its metadata entry.
func (e *Engine) Delete(rec Record) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	records := e.list()
	e.removeSnapshot(rec)

	kept := records[:0]
	for _, r := range records {
		if r.ID != rec.ID {
			kept = append(kept, r)
		}
	}
	return e.saveMetadata(kept)
}

// removeSnapshot removes a snapshot file. A missing file is not an error.
func (e *Engine) removeSnapshot(rec Record) {
	os.Remove(filepath.Join(e.dir, rec.Filename))
}

// Find locates a record whose ID starts with the given prefix.
func (e *Engine) Find(idPrefix string) (*Record, error) {
	if idPrefix == "" {
		return nil, fmt.Errorf("%w: empty backup id", ErrNotFound)
	}
	var match *Record
	for _, r := range e.List() {
		if len(r.ID) >= len(idPrefix) && r.ID[:len(idPrefix)] == idPrefix {
			if match != nil {
				return nil, fmt.Errorf("backup id %q is ambiguous", idPrefix)
			}
			rec := r
			match = &rec
		}
	}
	if match == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, idPrefix)
	}
	return match, nil
}

func (e *Engine) saveMetadata(records []Record) error {
	if records == nil {
		records = []Record{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: failed to serialize metadata: %v", ErrBackup, err)
	}
	if err := storage.AtomicWriteFile(filepath.Join(e.dir, metadataFile), data, 0600); err != nil {
		return fmt.Errorf("%w: failed to write metadata: %v", ErrBackup, err)
	}
	return nil
}
