package password

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Bcrypt hashes and verifies passwords. A zero Cost uses bcrypt.DefaultCost.
type Bcrypt struct {
	Cost int
}

func (b Bcrypt) Hash(plain string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Verify reports whether plain matches hash. Malformed hashes never match.
func (b Bcrypt) Verify(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
