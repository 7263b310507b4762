package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"errors"
)

// saltSize is the keyed-hash key length in bytes.
const saltSize = 64

// CreateCredential derives a keyed hash of the password under a fresh random
// salt. Every call generates a new salt; callers must never share a salt
// between identities.
func CreateCredential(password string) (hash, salt []byte, err error) {
	if len(password) == 0 {
		return nil, nil, errors.New("password is empty")
	}
	salt = make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, nil, err
	}
	mac := hmac.New(sha256.New, salt)
	mac.Write([]byte(password))
	return mac.Sum(nil), salt, nil
}

// VerifyCredential recomputes the keyed hash under the stored salt and
// compares it against the stored hash in constant time. Any mismatch,
// including a wrong hash length, reports false rather than an error.
func VerifyCredential(password string, hash, salt []byte) bool {
	mac := hmac.New(sha256.New, salt)
	mac.Write([]byte(password))
	return hmac.Equal(mac.Sum(nil), hash)
}
