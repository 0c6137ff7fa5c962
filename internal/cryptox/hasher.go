// Package cryptox implements the credential hasher used to store and verify
// account passwords.
package cryptox

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/letterdesk/internal/common"
	"golang.org/x/crypto/argon2"
)

const (
	SchemeSHA256   = "sha256"
	SchemeArgon2ID = "argon2id"
)

var ErrUnknownScheme = errors.New("unknown hash scheme")

// Hasher turns a plaintext secret into a storable digest and checks a
// candidate secret against a stored digest.
type Hasher interface {
	Hash(secret string) (string, error)
	Verify(secret, digest string) bool
}

// NewHasher returns the hasher for the configured scheme. An empty scheme
// selects SHA-256.
func NewHasher(scheme string) (Hasher, error) {
	switch strings.ToLower(scheme) {
	case "", SchemeSHA256:
		return SHA256Hasher{}, nil
	case SchemeArgon2ID:
		return Argon2Hasher{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownScheme, scheme)
	}
}

// SHA256Hasher produces unsalted lowercase hex SHA-256 digests. Equal secrets
// always give equal digests.
type SHA256Hasher struct{}

func (SHA256Hasher) Hash(secret string) (string, error) {
	return HashSecret(secret), nil
}

// Verify also accepts argon2id digests, so switching schemes back keeps
// existing accounts usable.
func (SHA256Hasher) Verify(secret, digest string) bool {
	if strings.HasPrefix(digest, SchemeArgon2ID+"$") {
		return verifyArgon2(secret, digest)
	}
	return verifySHA256(secret, digest)
}

func verifySHA256(secret, digest string) bool {
	return subtle.ConstantTimeCompare([]byte(HashSecret(secret)), []byte(digest)) == 1
}

// HashSecret is the 64-char hex SHA-256 digest of secret.
func HashSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

// Argon2Hasher stores digests as "argon2id$<salt hex>$<key hex>".
type Argon2Hasher struct{}

func deriveKey(secret string, salt []byte) []byte {
	return argon2.IDKey([]byte(secret), salt, 1, 64*1024, 4, 32)
}

func (Argon2Hasher) Hash(secret string) (string, error) {
	salt := common.GenerateRandByteArray(16)
	key := deriveKey(secret, salt)
	return SchemeArgon2ID + "$" + hex.EncodeToString(salt) + "$" + hex.EncodeToString(key), nil
}

// Verify also accepts 64-char hex SHA-256 digests stored before the scheme
// was switched to argon2id.
func (Argon2Hasher) Verify(secret, digest string) bool {
	if isSHA256Digest(digest) {
		return verifySHA256(secret, digest)
	}
	return verifyArgon2(secret, digest)
}

func isSHA256Digest(digest string) bool {
	if len(digest) != sha256.Size*2 {
		return false
	}
	_, err := hex.DecodeString(digest)
	return err == nil
}

func verifyArgon2(secret, digest string) bool {
	parts := strings.Split(digest, "$")
	if len(parts) != 3 || parts[0] != SchemeArgon2ID {
		return false
	}
	salt, err := hex.DecodeString(parts[1])
	if err != nil {
		return false
	}
	want, err := hex.DecodeString(parts[2])
	if err != nil {
		return false
	}
	got := deriveKey(secret, salt)
	defer common.WipeByteArray(got)
	return subtle.ConstantTimeCompare(want, got) == 1
}
