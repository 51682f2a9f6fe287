package session

import (
	"crypto/subtle"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// CredentialVerifier hashes new passwords and checks presented ones against
// what is stored.
type CredentialVerifier interface {
	Hash(password string) (string, error)
	Verify(stored, presented string) bool
}

// PlaintextVerifier keeps passwords as typed, like the browser build did.
type PlaintextVerifier struct{}

func (PlaintextVerifier) Hash(password string) (string, error) { return password, nil }

func (PlaintextVerifier) Verify(stored, presented string) bool {
	if stored == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(presented)) == 1
}

// BcryptVerifier stores bcrypt hashes. Stored values that are not bcrypt
// hashes (imported plaintext records, built-in defaults) are compared as
// plaintext so they keep working until the password is changed.
type BcryptVerifier struct {
	Cost int
}

func (b BcryptVerifier) Hash(password string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func (b BcryptVerifier) Verify(stored, presented string) bool {
	if !isBcryptHash(stored) {
		return PlaintextVerifier{}.Verify(stored, presented)
	}
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(presented)) == nil
}

func isBcryptHash(s string) bool {
	return len(s) == 60 && (strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$"))
}

// NewVerifier maps a configured scheme name to a verifier. Anything other
// than "bcrypt" is plaintext.
func NewVerifier(scheme string) CredentialVerifier {
	if scheme == "bcrypt" {
		return BcryptVerifier{}
	}
	return PlaintextVerifier{}
}
