package ports

import "context"

// FailedLoginStore tracks failed login attempts and cooldown per email.
type FailedLoginStore interface {
	// IsLocked returns true if the account is locked, and the remaining cooldown in seconds.
	IsLocked(ctx context.Context, email string) (locked bool, retryAfterSeconds int)
	// RecordFailure records a failed login; may lock the account after N failures.
	RecordFailure(ctx context.Context, email string)
	// RecordSuccess clears the failure count for the account.
	RecordSuccess(ctx context.Context, email string)
}
