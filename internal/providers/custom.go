package providers

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"

	"cswitch/config/storage"
)

// CustomProvider is a user-defined backend. The identifier is generated
// once and stays stable for the life of the entry.
type CustomProvider struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	BaseURL      string `json:"baseURL"`
	DefaultModel string `json:"defaultModel"`
	FastModel    string `json:"fastModel,omitempty"`
	Icon         string `json:"iconName,omitempty"`
}

// HasFastModel reports whether the provider declares a fast model.
func (p CustomProvider) HasFastModel() bool {
	return p.FastModel != ""
}

// customStore persists custom providers as an ordered JSON list.
type customStore struct {
	path string
	mu   sync.Mutex
}

func newCustomStore(path string) *customStore {
	return &customStore{path: path}
}

// load returns all custom providers. A missing or unreadable file means
// "no custom providers yet".
func (s *customStore) load() []CustomProvider {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil
	}
	var list []CustomProvider
	if err := json.Unmarshal(data, &list); err != nil {
		return nil
	}
	return list
}

// save upserts a provider by ID; an empty ID gets one generated.
func (s *customStore) save(p *CustomProvider) error {
	if p.Name == "" {
		return fmt.Errorf("custom provider name cannot be empty")
	}
	if p.BaseURL == "" {
		return fmt.Errorf("custom provider base URL cannot be empty")
	}
	if p.DefaultModel == "" {
		return fmt.Errorf("custom provider default model cannot be empty")
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.load()
	replaced := false
	for i := range list {
		if list[i].ID == p.ID {
			list[i] = *p
			replaced = true
			break
		}
	}
	if !replaced {
		list = append(list, *p)
	}
	return s.write(list)
}

func (s *customStore) delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.load()
	kept := list[:0]
	for _, p := range list {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(list) {
		return fmt.Errorf("custom provider '%s' does not exist", id)
	}
	return s.write(kept)
}

func (s *customStore) write(list []CustomProvider) error {
	if list == nil {
		list = []CustomProvider{}
	}
	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize custom providers: %w", err)
	}
	return storage.AtomicWriteFile(s.path, data, 0600)
}
