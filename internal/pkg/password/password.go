// Package password wraps bcrypt for account credentials.
package password

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// bcrypt silently ignores input past 72 bytes, so longer passwords are
// rejected up front instead of being truncated.
const maxPasswordBytes = 72

const hashCost = bcrypt.DefaultCost

func Hash(plain string) (string, error) {
	if len(plain) > maxPasswordBytes {
		return "", fmt.Errorf("password longer than %d bytes", maxPasswordBytes)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), hashCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Compare returns nil when plain matches hash.
func Compare(hash, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
}
