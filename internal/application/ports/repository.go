package ports

import (
	"context"

	"github.com/avdeev/authgate/internal/domain"
)

// UserRepository defines persistence for users. Lookups return (nil, nil)
// when no row matches; the store enforces email uniqueness atomically and
// Create returns domerrors.ErrEmailExists on a duplicate.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, userID domain.UserID) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID domain.UserID, firstName, lastName string) (*domain.User, error)
	TouchLastLogin(ctx context.Context, userID domain.UserID) error
}
