// Package credstore stores per-provider API keys. The default backend is
// the OS credential store; an encrypted file backend serves headless
// environments without one. No other package reads or writes the
// underlying secret storage.
package credstore

import (
	"errors"
	"fmt"
)

// Service names. Built-in providers share one service and are keyed by
// display name; custom providers get a namespaced service per generated
// identifier, so the two spaces cannot collide.
const (
	ServiceBuiltin      = "com.paicoding.paiswitch.apikey"
	ServiceCustomPrefix = "com.paicoding.paiswitch.custom."
	ServiceSession      = "com.paicoding.paiswitch.session"
)

var (
	// ErrCredStore indicates a secure-storage backend failure.
	ErrCredStore = errors.New("credential store failure")
	// ErrKeyNotFound indicates no entry exists for the account. Absence is
	// a valid state meaning "no key configured".
	ErrKeyNotFound = errors.New("no API key stored")
)

// Store is key-value secret storage keyed by (service, account). A write
// replaces any previous entry.
type Store interface {
	Set(service, account, secret string) error
	Get(service, account string) (string, error)
	Delete(service, account string) error
}

// Has reports whether an entry exists, mapping ErrKeyNotFound to false.
func Has(s Store, service, account string) (bool, error) {
	_, err := s.Get(service, account)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, ErrKeyNotFound) {
		return false, nil
	}
	return false, err
}

// Open selects a backend by name: "keyring" for the OS credential store,
// "file" for the encrypted file store under dir. When the keyring is
// requested but the platform has none, the file backend is used instead.
func Open(backend, dir string) (Store, error) {
	switch backend {
	case "", "keyring":
		kr := &Keyring{}
		if kr.available() {
			return kr, nil
		}
		return OpenFileStore(dir)
	case "file":
		return OpenFileStore(dir)
	default:
		return nil, fmt.Errorf("%w: unknown backend %q", ErrCredStore, backend)
	}
}
