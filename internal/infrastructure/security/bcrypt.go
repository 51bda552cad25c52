package security

import (
	"context"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"

	"github.com/avdeev/authgate/internal/application/ports"
)

// BcryptHasher implements ports.PasswordHasher using bcrypt. Hashing is
// CPU-bound with a tunable work factor, so concurrent hashes are capped with
// a weighted semaphore to keep a burst of registrations from starving the
// rest of the process.
type BcryptHasher struct {
	cost int
	sem  *semaphore.Weighted
}

// NewBcryptHasher creates a hasher with the given cost and concurrency cap.
// Out-of-range cost falls back to bcrypt.DefaultCost; maxConcurrent <= 0
// falls back to 4.
func NewBcryptHasher(cost int, maxConcurrent int64) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	if maxConcurrent <= 0 {
		maxConcurrent = 4
	}
	return &BcryptHasher{cost: cost, sem: semaphore.NewWeighted(maxConcurrent)}
}

// Hash returns a salted digest. The salt is generated per call, so two
// hashes of the same password differ.
func (h *BcryptHasher) Hash(password string) (string, error) {
	if err := h.sem.Acquire(context.Background(), 1); err != nil {
		return "", err
	}
	defer h.sem.Release(1)
	digest, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// Verify compares in constant time. A malformed digest yields false, never
// a panic or error.
func (h *BcryptHasher) Verify(password, hash string) bool {
	if err := h.sem.Acquire(context.Background(), 1); err != nil {
		return false
	}
	defer h.sem.Release(1)
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

var _ ports.PasswordHasher = (*BcryptHasher)(nil)
