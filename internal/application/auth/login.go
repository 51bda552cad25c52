package auth

import (
	"context"
	"time"

	"github.com/avdeev/authgate/internal/application/ports"
	"github.com/avdeev/authgate/internal/domain"
	domerrors "github.com/avdeev/authgate/internal/domain/errors"
)

type LoginInput struct {
	Email    string
	Password string
}

type LoginResult struct {
	Token string
	User  *domain.User
}

// Login verifies credentials and issues a token. Unknown email and wrong
// password both return ErrInvalidCredentials so accounts cannot be
// enumerated.
type Login struct {
	users    ports.UserRepository
	hasher   ports.PasswordHasher
	issuer   ports.TokenIssuer
	failures ports.FailedLoginStore
}

func NewLogin(users ports.UserRepository, hasher ports.PasswordHasher, issuer ports.TokenIssuer, failures ports.FailedLoginStore) *Login {
	return &Login{users: users, hasher: hasher, issuer: issuer, failures: failures}
}

func (uc *Login) Execute(ctx context.Context, input LoginInput) (*LoginResult, error) {
	if uc.failures != nil {
		if locked, _ := uc.failures.IsLocked(ctx, input.Email); locked {
			return nil, domerrors.ErrTooManyAttempts
		}
	}
	user, err := uc.users.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if user == nil || !uc.hasher.Verify(input.Password, user.PasswordHash) {
		if uc.failures != nil {
			uc.failures.RecordFailure(ctx, input.Email)
		}
		return nil, domerrors.ErrInvalidCredentials
	}
	if uc.failures != nil {
		uc.failures.RecordSuccess(ctx, input.Email)
	}
	if err := uc.users.TouchLastLogin(ctx, user.ID); err != nil {
		return nil, err
	}
	now := time.Now()
	user.LastLoginAt = &now
	token, err := uc.issuer.Issue(user.ID.String())
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, User: user}, nil
}
