package auth

import (
	"context"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/avdeev/authgate/internal/application/ports"
	"github.com/avdeev/authgate/internal/domain"
	domerrors "github.com/avdeev/authgate/internal/domain/errors"
)

// MinPasswordLength is the policy minimum enforced by the workflow, not the
// hasher.
const MinPasswordLength = 8

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

type RegisterResult struct {
	Token string
	User  *domain.User
}

// Register creates a user with a hashed password and issues a token for it.
type Register struct {
	users  ports.UserRepository
	hasher ports.PasswordHasher
	issuer ports.TokenIssuer
}

func NewRegister(users ports.UserRepository, hasher ports.PasswordHasher, issuer ports.TokenIssuer) *Register {
	return &Register{users: users, hasher: hasher, issuer: issuer}
}

func (uc *Register) Execute(ctx context.Context, input RegisterInput) (*RegisterResult, error) {
	if !emailRegex.MatchString(input.Email) {
		return nil, domerrors.ErrValidation
	}
	if len(input.Password) < MinPasswordLength {
		return nil, domerrors.ErrValidation
	}
	if input.FirstName == "" || input.LastName == "" {
		return nil, domerrors.ErrValidation
	}
	existing, err := uc.users.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domerrors.ErrEmailExists
	}
	hash, err := uc.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	user := &domain.User{
		ID:           domain.NewUserID(uuid.New()),
		Email:        input.Email,
		PasswordHash: hash,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	// The store's unique constraint is the authority; the lookup above only
	// makes the common case fail before the expensive hash.
	if err := uc.users.Create(ctx, user); err != nil {
		return nil, err
	}
	token, err := uc.issuer.Issue(user.ID.String())
	if err != nil {
		return nil, err
	}
	return &RegisterResult{Token: token, User: user}, nil
}
