// Package cryptox holds the credential primitives used by the local identity
// provider: argon2id password verifiers and keyed hashes of one-time codes.
package cryptox

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"

	"github.com/dmitrijs2005/crux/internal/common"
	"golang.org/x/crypto/argon2"
)

// SaltSize is the length of a freshly generated password salt.
const SaltSize = 32

// NewSalt returns SaltSize random bytes.
func NewSalt() []byte {
	return common.GenerateRandByteArray(SaltSize)
}

// DeriveKey stretches password with argon2id (1 pass, 64 MiB, 4 lanes).
func DeriveKey(password []byte, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, 32)
}

// MakeVerifier hashes a derived key into the value that is stored at rest.
func MakeVerifier(key []byte) []byte {
	hash := sha256.Sum256(key)
	return hash[:]
}

// PasswordVerifier is MakeVerifier(DeriveKey(password, salt)).
func PasswordVerifier(password []byte, salt []byte) []byte {
	key := DeriveKey(password, salt)
	defer common.WipeByteArray(key)
	return MakeVerifier(key)
}

// CheckPassword compares password against a stored salt/verifier pair in
// constant time.
func CheckPassword(password, salt, verifier []byte) bool {
	candidate := PasswordVerifier(password, salt)
	return subtle.ConstantTimeCompare(candidate, verifier) == 1
}

// HashCode returns HMAC-SHA256(secret, code). One-time codes are stored
// hashed so a leaked database does not reveal pending codes.
func HashCode(secret []byte, code string) []byte {
	m := hmac.New(sha256.New, secret)
	m.Write([]byte(code))
	return m.Sum(nil)
}

// CheckCode compares code with a stored HashCode value in constant time.
func CheckCode(secret []byte, code string, hashed []byte) bool {
	return hmac.Equal(HashCode(secret, code), hashed)
}
