package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword hashes a passenger's password with bcrypt.  A cost below
// bcrypt's minimum (including the zero value of an unset config) falls
// back to the library default rather than producing a weak hash.
func HashPassword(plain string, cost int) (string, error) {
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword reports whether plain matches the stored bcrypt hash.
// The comparison is constant-time inside bcrypt; callers treat any
// mismatch or malformed hash the same way, as failed credentials.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
