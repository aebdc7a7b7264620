package vault

import (
	"bytes"
	"crypto/rand"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meridian-hq/meridian/internal/platform/httpx"
)

func testKey(t *testing.T) []byte {
	t.Helper()
	key := make([]byte, KeySize)
	_, err := rand.Read(key)
	require.NoError(t, err)
	return key
}

func TestSealOpenRoundTrip(t *testing.T) {
	key := testKey(t)
	for _, plaintext := range [][]byte{
		[]byte("receipt scan bytes"),
		{},
		bytes.Repeat([]byte{0xAB}, 1<<16),
	} {
		envelope, err := Seal(plaintext, key)
		require.NoError(t, err)
		require.Len(t, envelope[:nonceSize+tagSize], nonceSize+tagSize)

		got, err := Open(envelope, key)
		require.NoError(t, err)
		require.NotNil(t, got, "decrypted payload must never be nil")
		require.Equal(t, plaintext, got)
	}
}

func TestOpenDetectsTampering(t *testing.T) {
	key := testKey(t)
	envelope, err := Seal([]byte("approved expense receipt"), key)
	require.NoError(t, err)

	// Flip one bit in every region after the nonce: tag and ciphertext.
	for pos := nonceSize; pos < len(envelope); pos++ {
		mutated := append([]byte(nil), envelope...)
		mutated[pos] ^= 0x01

		_, err := Open(mutated, key)
		require.Error(t, err, "bit flip at %d must not decrypt", pos)
		require.ErrorIs(t, err, httpx.ErrIntegrity)
	}
}

func TestOpenWrongKeyFails(t *testing.T) {
	envelope, err := Seal([]byte("payload"), testKey(t))
	require.NoError(t, err)

	_, err = Open(envelope, testKey(t))
	require.ErrorIs(t, err, httpx.ErrIntegrity)
}

func TestSealNonceUniqueness(t *testing.T) {
	key := testKey(t)
	plaintext := []byte("identical plaintext")

	first, err := Seal(plaintext, key)
	require.NoError(t, err)
	second, err := Seal(plaintext, key)
	require.NoError(t, err)

	require.NotEqual(t, first[:nonceSize], second[:nonceSize], "nonce must be fresh per call")
	require.NotEqual(t, first[nonceSize+tagSize:], second[nonceSize+tagSize:], "ciphertext must differ under fresh nonces")
}

func TestOpenShortEnvelope(t *testing.T) {
	_, err := Open(make([]byte, nonceSize+tagSize-1), testKey(t))
	require.Error(t, err)
	require.ErrorIs(t, err, httpx.ErrIntegrity)
}

func TestSealRejectsBadKey(t *testing.T) {
	_, err := Seal([]byte("x"), make([]byte, 16))
	require.True(t, errors.Is(err, ErrBadKeyLength))
}
