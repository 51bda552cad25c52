package auth

import (
	"context"

	"github.com/google/uuid"

	"github.com/avdeev/authgate/internal/application/ports"
	"github.com/avdeev/authgate/internal/domain"
	domerrors "github.com/avdeev/authgate/internal/domain/errors"
)

type GetProfileInput struct {
	UserID string
}

type ProfileResult struct {
	User *domain.User
}

// GetProfile resolves a token subject to its user record. A subject that no
// longer resolves is treated as unauthenticated.
type GetProfile struct {
	users ports.UserRepository
}

func NewGetProfile(users ports.UserRepository) *GetProfile {
	return &GetProfile{users: users}
}

func (uc *GetProfile) Execute(ctx context.Context, input GetProfileInput) (*ProfileResult, error) {
	id, err := uuid.Parse(input.UserID)
	if err != nil {
		return nil, domerrors.ErrUnauthenticated
	}
	user, err := uc.users.GetByID(ctx, domain.NewUserID(id))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domerrors.ErrUnauthenticated
	}
	return &ProfileResult{User: user}, nil
}

type UpdateProfileInput struct {
	UserID    string
	FirstName *string
	LastName  *string
	// EmailProvided marks that the payload carried an email field. Email is
	// immutable through this surface, so its presence alone fails validation.
	EmailProvided bool
}

// UpdateProfile applies the permitted name fields to the token subject's
// record. Last write wins; there is no optimistic concurrency token.
type UpdateProfile struct {
	users ports.UserRepository
}

func NewUpdateProfile(users ports.UserRepository) *UpdateProfile {
	return &UpdateProfile{users: users}
}

func (uc *UpdateProfile) Execute(ctx context.Context, input UpdateProfileInput) (*ProfileResult, error) {
	if input.EmailProvided {
		return nil, domerrors.ErrValidation
	}
	id, err := uuid.Parse(input.UserID)
	if err != nil {
		return nil, domerrors.ErrUnauthenticated
	}
	user, err := uc.users.GetByID(ctx, domain.NewUserID(id))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domerrors.ErrUnauthenticated
	}
	firstName := user.FirstName
	if input.FirstName != nil {
		firstName = *input.FirstName
	}
	lastName := user.LastName
	if input.LastName != nil {
		lastName = *input.LastName
	}
	updated, err := uc.users.UpdateProfile(ctx, user.ID, firstName, lastName)
	if err != nil {
		return nil, err
	}
	return &ProfileResult{User: updated}, nil
}
