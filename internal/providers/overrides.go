package providers

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"cswitch/config/storage"
)

// modelOverride holds the user's replacement model names for one built-in
// provider. Empty fields mean "use the compiled-in default".
type modelOverride struct {
	DefaultModel string `json:"defaultModel,omitempty"`
	FastModel    string `json:"fastModel,omitempty"`
}

// overrideStore persists per-provider model overrides keyed by provider
// identifier. Entries equal to the compiled-in default are removed to keep
// the store minimal.
type overrideStore struct {
	path string
	mu   sync.Mutex
}

func newOverrideStore(path string) *overrideStore {
	return &overrideStore{path: path}
}

func (s *overrideStore) load() map[string]modelOverride {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return map[string]modelOverride{}
	}
	var overrides map[string]modelOverride
	if err := json.Unmarshal(data, &overrides); err != nil || overrides == nil {
		return map[string]modelOverride{}
	}
	return overrides
}

func (s *overrideStore) get(id string) modelOverride {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()[id]
}

func (s *overrideStore) update(id string, fn func(*modelOverride)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	overrides := s.load()
	ov := overrides[id]
	fn(&ov)
	if ov == (modelOverride{}) {
		delete(overrides, id)
	} else {
		overrides[id] = ov
	}

	data, err := json.MarshalIndent(overrides, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize model overrides: %w", err)
	}
	return storage.AtomicWriteFile(s.path, data, 0600)
}
