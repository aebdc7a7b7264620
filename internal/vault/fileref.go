package vault

import "strings"

// EncryptedExt marks envelopes on disk. Files stored before encryption was
// introduced carry no marker and are served as plaintext.
const EncryptedExt = ".enc"

// FileRef is a tagged reference to a stored attachment. The encrypted/legacy
// distinction lives here instead of in suffix checks scattered around the
// callers.
type FileRef struct {
	Path      string
	Encrypted bool
}

// RefFromPath classifies a stored path loaded from the database.
func RefFromPath(path string) FileRef {
	return FileRef{Path: path, Encrypted: strings.HasSuffix(path, EncryptedExt)}
}

// NewEncryptedRef returns the reference for a freshly written envelope.
// New writes are always encrypted.
func NewEncryptedRef(plainPath string) FileRef {
	return FileRef{Path: plainPath + EncryptedExt, Encrypted: true}
}
