package vault

import (
	"crypto/subtle"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Verifier checks an entered passcode against its stored form and produces
// that form when a passcode is set.
type Verifier interface {
	Hash(passcode string) (string, error)
	Verify(stored, input string) bool
}

const (
	ModePlain  = "plain"
	ModeBcrypt = "bcrypt"
)

// NewVerifier returns the verifier for a PASSCODE_MODE value.
func NewVerifier(mode string) (Verifier, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", ModePlain:
		return PlainVerifier{}, nil
	case ModeBcrypt:
		return BcryptVerifier{Cost: bcrypt.DefaultCost}, nil
	}
	return nil, fmt.Errorf("unknown passcode mode %q", mode)
}

// PlainVerifier stores the passcode as entered.
type PlainVerifier struct{}

func (PlainVerifier) Hash(p string) (string, error) { return p, nil }

func (PlainVerifier) Verify(stored, input string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(input)) == 1
}

// BcryptVerifier stores a bcrypt hash. A stored value that is not a bcrypt
// hash was written in plain mode and is compared as such.
type BcryptVerifier struct {
	Cost int
}

func (v BcryptVerifier) Hash(p string) (string, error) {
	cost := v.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(p), cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

func (BcryptVerifier) Verify(stored, input string) bool {
	if !strings.HasPrefix(stored, "$2") {
		return PlainVerifier{}.Verify(stored, input)
	}
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(input)) == nil
}
