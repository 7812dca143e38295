package credstore

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"cswitch/config/storage"
)

// encryptedPrefix marks values produced by the file store's cipher.
const encryptedPrefix = "ENC:"

// FileStore keeps secrets in an encrypted JSON file. Values are sealed
// with AES-GCM under a key derived from machine-specific data, so the
// file is useless when copied to another machine.
type FileStore struct {
	path string
	key  []byte
	mu   sync.Mutex
}

// OpenFileStore opens (or prepares) the encrypted store under dir.
func OpenFileStore(dir string) (*FileStore, error) {
	key, err := deriveKey()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to derive encryption key: %v", ErrCredStore, err)
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCredStore, err)
	}
	return &FileStore{path: filepath.Join(dir, "credentials.enc"), key: key}, nil
}

// deriveKey generates an encryption key based on machine-specific data.
func deriveKey() ([]byte, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = "unknown"
	}

	seed := fmt.Sprintf("%s-%s-cswitch-credentials-v1", homeDir, hostname)
	hash := sha256.Sum256([]byte(seed))
	return hash[:], nil
}

func entryKey(service, account string) string {
	return service + "\x00" + account
}

func (f *FileStore) Set(service, account, secret string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.load()
	if err != nil {
		return err
	}
	sealed, err := f.encrypt(secret)
	if err != nil {
		return err
	}
	entries[entryKey(service, account)] = sealed
	return f.save(entries)
}

func (f *FileStore) Get(service, account string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.load()
	if err != nil {
		return "", err
	}
	sealed, ok := entries[entryKey(service, account)]
	if !ok {
		return "", ErrKeyNotFound
	}
	return f.decrypt(sealed)
}

// Delete removes an entry. A missing entry is not an error.
func (f *FileStore) Delete(service, account string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.load()
	if err != nil {
		return err
	}
	if _, ok := entries[entryKey(service, account)]; !ok {
		return nil
	}
	delete(entries, entryKey(service, account))
	return f.save(entries)
}

func (f *FileStore) load() (map[string]string, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrCredStore, err)
	}
	var entries map[string]string
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: credentials file is corrupt: %v", ErrCredStore, err)
	}
	if entries == nil {
		entries = map[string]string{}
	}
	return entries, nil
}

func (f *FileStore) save(entries map[string]string) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCredStore, err)
	}
	if err := storage.AtomicWriteFile(f.path, data, 0600); err != nil {
		return fmt.Errorf("%w: %v", ErrCredStore, err)
	}
	return nil
}

func (f *FileStore) encrypt(plaintext string) (string, error) {
	block, err := aes.NewCipher(f.key)
	if err != nil {
		return "", fmt.Errorf("%w: failed to create cipher: %v", ErrCredStore, err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("%w: failed to create GCM: %v", ErrCredStore, err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("%w: failed to generate nonce: %v", ErrCredStore, err)
	}

	ciphertext := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return encryptedPrefix + base64.StdEncoding.EncodeToString(ciphertext), nil
}

func (f *FileStore) decrypt(sealed string) (string, error) {
	data := strings.TrimPrefix(sealed, encryptedPrefix)
	decoded, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return "", fmt.Errorf("%w: failed to decode ciphertext: %v", ErrCredStore, err)
	}

	block, err := aes.NewCipher(f.key)
	if err != nil {
		return "", fmt.Errorf("%w: failed to create cipher: %v", ErrCredStore, err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("%w: failed to create GCM: %v", ErrCredStore, err)
	}

	nonceSize := gcm.NonceSize()
	if len(decoded) < nonceSize {
		return "", fmt.Errorf("%w: ciphertext too short", ErrCredStore)
	}

	nonce, ciphertext := decoded[:nonceSize], decoded[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("%w: failed to decrypt: %v", ErrCredStore, err)
	}
	return string(plaintext), nil
}
