package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/meridian-hq/meridian/internal/platform/httpx"
)

const (
	nonceSize = 12
	tagSize   = 16
)

var (
	// ErrBadKeyLength is returned when the persisted key is not 32 bytes.
	ErrBadKeyLength = errors.New("vault: key must be 32 bytes")
	// ErrShortEnvelope is returned when an envelope cannot hold nonce and tag.
	ErrShortEnvelope = fmt.Errorf("vault: envelope too short: %w", httpx.ErrIntegrity)
)

// Seal encrypts plaintext with AES-256-GCM under key using a fresh random
// nonce and returns the on-disk envelope: nonce(12) || tag(16) || ciphertext.
// GCM emits ciphertext||tag, so the tag is moved in front to keep the stored
// layout compatible with previously written envelopes.
func Seal(plaintext, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("vault: nonce: %w", err)
	}

	sealed := gcm.Seal(nil, nonce, plaintext, nil)
	ct := sealed[:len(sealed)-tagSize]
	tag := sealed[len(sealed)-tagSize:]

	envelope := make([]byte, 0, nonceSize+tagSize+len(ct))
	envelope = append(envelope, nonce...)
	envelope = append(envelope, tag...)
	envelope = append(envelope, ct...)
	return envelope, nil
}

// Open splits the envelope by position, then decrypts and verifies the tag
// in one operation. A failed tag check aborts with an integrity error and
// never returns partial plaintext.
func Open(envelope, key []byte) ([]byte, error) {
	if len(envelope) < nonceSize+tagSize {
		return nil, ErrShortEnvelope
	}

	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := envelope[:nonceSize]
	tag := envelope[nonceSize : nonceSize+tagSize]
	ct := envelope[nonceSize+tagSize:]

	sealed := make([]byte, 0, len(ct)+tagSize)
	sealed = append(sealed, ct...)
	sealed = append(sealed, tag...)

	plaintext, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, fmt.Errorf("vault: open envelope: %w", httpx.ErrIntegrity)
	}
	if plaintext == nil {
		// GCM yields a nil slice for empty plaintext; callers get the same
		// bytes they sealed.
		plaintext = []byte{}
	}
	return plaintext, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != KeySize {
		return nil, ErrBadKeyLength
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("vault: cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("vault: gcm: %w", err)
	}
	return gcm, nil
}
