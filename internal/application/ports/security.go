package ports

// PasswordHasher hashes and verifies passwords. Verify returns false for a
// malformed digest instead of erroring.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

// TokenIssuer signs and validates bearer tokens (HS256, subject = user id).
// Validate collapses every failure (bad signature, expired, malformed) into a
// single error so callers cannot leak which one occurred.
type TokenIssuer interface {
	Issue(userID string) (string, error)
	Validate(tokenString string) (userID string, err error)
}
