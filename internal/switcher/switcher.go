// Package switcher orchestrates a provider switch: backup the current
// state, resolve the API key, rewrite the settings file, then mirror the
// change to the remote account when a session exists.
package switcher

import (
	"errors"
	"fmt"
	"sync"

	"cswitch/config"
	"cswitch/config/backup"
	"cswitch/config/models"
	"cswitch/internal/credstore"
	"cswitch/internal/providers"
	"cswitch/internal/remote"
)

// ErrMissingKey indicates a switch was requested with no key supplied and
// none stored. The primary provider is exempt.
var ErrMissingKey = errors.New("no API key supplied and none stored for provider")

// SwitchError wraps the failure of a switch attempt with the stage it
// failed in.
type SwitchError struct {
	Stage string
	Err   error
}

func (e *SwitchError) Error() string {
	return fmt.Sprintf("switch failed while %s: %v", e.Stage, e.Err)
}

func (e *SwitchError) Unwrap() error {
	return e.Err
}

// Switcher coordinates one switch at a time. All collaborators are
// injected; the mutex serializes overlapping SwitchTo calls so backup and
// write steps never interleave.
type Switcher struct {
	store   *config.Store
	backups *backup.Engine
	creds   credstore.Store
	catalog *providers.Catalog
	mirror  *remote.Mirror // nil when no authenticated session exists

	mu sync.Mutex
}

// New creates a Switcher. mirror may be nil to disable remote mirroring.
func New(store *config.Store, backups *backup.Engine, creds credstore.Store, catalog *providers.Catalog, mirror *remote.Mirror) *Switcher {
	return &Switcher{
		store:   store,
		backups: backups,
		creds:   creds,
		catalog: catalog,
		mirror:  mirror,
	}
}

// Result reports what a successful switch did.
type Result struct {
	Target    providers.Target
	Model     string
	KeyStored bool   // a supplied key was written to the credential store
	Mirrored  bool   // the switch was handed to the remote mirror queue
	BackupID  string // record created before the mutation
}

// SwitchTo makes the target provider active. suppliedKey, when non-empty,
// is stored in the credential store and used; otherwise the previously
// stored key is read. The settings file is never mutated without a
// preceding successful backup.
func (s *Switcher) SwitchTo(target providers.Target, suppliedKey string) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Backing-up: label with the provider active before any change.
	current, err := s.store.Load()
	if err != nil {
		return nil, &SwitchError{Stage: "loading current configuration", Err: err}
	}
	rec, err := s.backups.Create(s.catalog.DisplayName(s.catalog.Infer(current)))
	if err != nil {
		return nil, &SwitchError{Stage: "backing up", Err: err}
	}

	// Resolving-Key.
	key, keyStored, err := s.resolveKey(target, suppliedKey)
	if err != nil {
		return nil, err
	}

	// Writing-Config.
	cfg := current.Clone()
	applyTarget(cfg, target, key)
	if err := s.store.Save(cfg); err != nil {
		// The backup from the first step remains available for recovery.
		return nil, &SwitchError{Stage: "writing configuration", Err: err}
	}

	res := &Result{
		Target:    target,
		Model:     target.DefaultModel,
		KeyStored: keyStored,
		BackupID:  rec.ID,
	}

	// Mirroring-Remote: best-effort, never gates local success.
	if s.mirror != nil {
		res.Mirrored = s.mirror.Enqueue(remote.Task{ProviderCode: target.ID, APIKey: suppliedKey})
	}
	return res, nil
}

// resolveKey stores a supplied key or reads the stored one. The primary
// provider requires no key and proceeds without one.
func (s *Switcher) resolveKey(target providers.Target, suppliedKey string) (string, bool, error) {
	service, account := credentialLocation(target)

	if suppliedKey != "" {
		if err := s.creds.Set(service, account, suppliedKey); err != nil {
			return "", false, &SwitchError{Stage: "storing API key", Err: err}
		}
		return suppliedKey, true, nil
	}

	key, err := s.creds.Get(service, account)
	if err != nil {
		if errors.Is(err, credstore.ErrKeyNotFound) {
			if target.Primary() {
				return "", false, nil
			}
			return "", false, fmt.Errorf("%w: %s", ErrMissingKey, target.Name)
		}
		return "", false, &SwitchError{Stage: "reading API key", Err: err}
	}
	return key, false, nil
}

// applyTarget computes the new env entries for the target.
func applyTarget(cfg *models.Config, target providers.Target, key string) {
	if target.Primary() {
		// Official API: drop third-party routing, use the plain key entry.
		cfg.Remove(models.EnvBaseURL)
		cfg.Remove(models.EnvAuthToken)
		cfg.SetString(models.EnvAPIKey, key)
		return
	}

	cfg.SetString(models.EnvAuthToken, key)
	cfg.SetString(models.EnvBaseURL, target.BaseURL)
	cfg.SetString(models.EnvModel, target.DefaultModel)
	if target.FastModel != "" {
		cfg.SetString(models.EnvFastModel, target.FastModel)
	} else {
		cfg.Remove(models.EnvFastModel)
	}
}

// credentialLocation maps a target to its credential store service and
// account, keeping built-in and custom namespaces separate.
func credentialLocation(target providers.Target) (service, account string) {
	if target.Custom {
		return credstore.ServiceCustomPrefix + target.ID, target.ID
	}
	return credstore.ServiceBuiltin, target.Name
}

// SetKey stores an API key for a provider without switching.
func (s *Switcher) SetKey(target providers.Target, key string) error {
	if key == "" {
		return fmt.Errorf("API key cannot be empty")
	}
	service, account := credentialLocation(target)
	return s.creds.Set(service, account, key)
}

// DeleteKey removes a provider's stored API key.
func (s *Switcher) DeleteKey(target providers.Target) error {
	service, account := credentialLocation(target)
	return s.creds.Delete(service, account)
}

// HasKey reports whether a key is stored for the provider.
func (s *Switcher) HasKey(target providers.Target) (bool, error) {
	service, account := credentialLocation(target)
	return credstore.Has(s.creds, service, account)
}

// State is a snapshot of the active configuration for display.
type State struct {
	ProviderID   string
	ProviderName string
	Model        string
	BaseURL      string
	Token        string
	TimeoutMS    int64
}

// Current reads the settings file and reports the active provider state.
func (s *Switcher) Current() (*State, error) {
	cfg, err := s.store.Load()
	if err != nil {
		return nil, err
	}
	id := s.catalog.Infer(cfg)
	token, _ := cfg.APIToken()
	return &State{
		ProviderID:   id,
		ProviderName: s.catalog.DisplayName(id),
		Model:        cfg.CurrentModel(),
		BaseURL:      cfg.BaseURL(),
		Token:        token,
		TimeoutMS:    cfg.Timeout(),
	}, nil
}
