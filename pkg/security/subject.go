package security

import (
	"encoding/hex"
	"errors"
	"strings"

	"golang.org/x/crypto/blake2b"
)

var ErrInvalidKeySize = errors.New("invalid key size")

// SubjectHasher pseudonymizes personal identifiers (e-mail addresses) so
// they can be correlated in the audit trail without being stored.
type SubjectHasher interface {
	Hash(subject string) string
}

type blake2bHasher struct {
	key []byte
}

// NewSubjectHasher returns a keyed BLAKE2b-256 hasher. The key must be at
// most 64 bytes; an empty key yields an unkeyed hash.
func NewSubjectHasher(key []byte) (SubjectHasher, error) {
	if len(key) > blake2b.Size {
		return nil, ErrInvalidKeySize
	}
	return &blake2bHasher{key: key}, nil
}

// Hash normalizes the subject (trimmed, lower-cased) and returns the hex
// digest, or "" for an empty subject.
func (h *blake2bHasher) Hash(subject string) string {
	subject = strings.ToLower(strings.TrimSpace(subject))
	if subject == "" {
		return ""
	}

	d, err := blake2b.New256(h.key)
	if err != nil {
		return ""
	}
	d.Write([]byte(subject))
	return hex.EncodeToString(d.Sum(nil))
}
