package credstore

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

// Keyring stores secrets in the OS-native credential store (Keychain,
// Secret Service, Windows Credential Manager).
type Keyring struct{}

// available probes the platform backend. ErrNotFound means the store
// works and simply has no such entry.
func (k *Keyring) available() bool {
	_, err := keyring.Get(ServiceBuiltin, "__probe__")
	return err == nil || errors.Is(err, keyring.ErrNotFound)
}

func (k *Keyring) Set(service, account, secret string) error {
	if err := keyring.Set(service, account, secret); err != nil {
		return fmt.Errorf("%w: %v", ErrCredStore, err)
	}
	return nil
}

func (k *Keyring) Get(service, account string) (string, error) {
	secret, err := keyring.Get(service, account)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrKeyNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrCredStore, err)
	}
	return secret, nil
}

// Delete removes an entry. A missing entry is not an error.
func (k *Keyring) Delete(service, account string) error {
	err := keyring.Delete(service, account)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("%w: %v", ErrCredStore, err)
	}
	return nil
}
