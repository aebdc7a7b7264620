// Package vault provides at-rest encryption for ticket attachments: a
// persisted symmetric key and an authenticated envelope codec.
package vault

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"log/slog"
	"os"
	"strings"
)

// KeySize is the AES-256 key length in bytes.
const KeySize = 32

// fallbackSeed derives the deterministic development key used when the key
// file cannot be read or written. The derived key is reproducible across
// restarts but offers no real confidentiality once the seed is known.
const fallbackSeed = "TFM-DEMO-TICKETS-KEY"

// Keystore owns the ticket-file encryption key for the process lifetime.
// It is provisioned once at startup; there is no rotation.
type Keystore struct {
	key      []byte
	fallback bool
}

// NewKeystore loads the key from path, provisioning a fresh random key on
// first start. Persistence failures degrade to the deterministic fallback
// key with a warning rather than failing the caller, so uploads keep working
// at the cost of confidentiality for that deployment.
func NewKeystore(path string, logger *slog.Logger) *Keystore {
	key, err := loadOrProvision(path)
	if err != nil {
		if logger != nil {
			logger.Warn("ticket key unavailable, using fallback development key",
				slog.String("path", path), slog.Any("error", err))
		}
		sum := sha256.Sum256([]byte(fallbackSeed))
		return &Keystore{key: sum[:], fallback: true}
	}
	return &Keystore{key: key}
}

// Key returns the 32-byte AES key.
func (k *Keystore) Key() []byte {
	return k.key
}

// Fallback reports whether the deterministic development key is in use.
func (k *Keystore) Fallback() bool {
	return k.fallback
}

func loadOrProvision(path string) ([]byte, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		fresh := make([]byte, KeySize)
		if _, err := rand.Read(fresh); err != nil {
			return nil, err
		}
		if err := os.WriteFile(path, []byte(base64.StdEncoding.EncodeToString(fresh)), 0o600); err != nil {
			return nil, err
		}
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	key, err := base64.StdEncoding.DecodeString(strings.TrimSpace(string(raw)))
	if err != nil {
		return nil, err
	}
	if len(key) != KeySize {
		return nil, ErrBadKeyLength
	}
	return key, nil
}
