package vault

import (
	"crypto/sha256"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewKeystoreProvisionsAndReloadsKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tickets.key")

	ks := NewKeystore(path, nil)
	require.False(t, ks.Fallback())
	require.Len(t, ks.Key(), KeySize)

	// A second open must read back the very same key.
	again := NewKeystore(path, nil)
	require.False(t, again.Fallback())
	require.Equal(t, ks.Key(), again.Key())
}

func TestNewKeystoreFallsBackWhenUnwritable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing-dir", "tickets.key")

	ks := NewKeystore(path, nil)
	require.True(t, ks.Fallback())

	want := sha256.Sum256([]byte(fallbackSeed))
	require.Equal(t, want[:], ks.Key(), "fallback key must be deterministic")
}

func TestNewKeystoreFallsBackOnCorruptKeyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tickets.key")
	require.NoError(t, os.WriteFile(path, []byte("not base64!!"), 0o600))

	ks := NewKeystore(path, nil)
	require.True(t, ks.Fallback())
	require.Len(t, ks.Key(), KeySize)
}

func TestRefFromPath(t *testing.T) {
	ref := RefFromPath("/data/uploads/a1b2.pdf.enc")
	require.True(t, ref.Encrypted)

	legacy := RefFromPath("/data/uploads/old-receipt.pdf")
	require.False(t, legacy.Encrypted)

	fresh := NewEncryptedRef("/data/uploads/new.jpg")
	require.True(t, fresh.Encrypted)
	require.Equal(t, "/data/uploads/new.jpg.enc", fresh.Path)
}
