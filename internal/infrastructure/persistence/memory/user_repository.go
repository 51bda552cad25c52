package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/avdeev/authgate/internal/application/ports"
	"github.com/avdeev/authgate/internal/domain"
	domerrors "github.com/avdeev/authgate/internal/domain/errors"
)

// UserRepository is an in-memory ports.UserRepository for tests and dev runs.
// The mutex stands in for the unique-constraint atomicity a real store
// provides on email.
type UserRepository struct {
	mu      sync.RWMutex
	byID    map[string]*domain.User
	byEmail map[string]string // lower(email) -> id
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:    make(map[string]*domain.User),
		byEmail: make(map[string]string),
	}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	key := strings.ToLower(user.Email)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byEmail[key]; exists {
		return domerrors.ErrEmailExists
	}
	cp := *user
	r.byID[user.ID.String()] = &cp
	r.byEmail[key] = user.ID.String()
	return nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, nil
	}
	cp := *r.byID[id]
	return &cp, nil
}

func (r *UserRepository) GetByID(ctx context.Context, userID domain.UserID) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[userID.String()]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, userID domain.UserID, firstName, lastName string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[userID.String()]
	if !ok {
		return nil, domerrors.ErrUserNotFound
	}
	u.FirstName = firstName
	u.LastName = lastName
	u.UpdatedAt = time.Now()
	cp := *u
	return &cp, nil
}

func (r *UserRepository) TouchLastLogin(ctx context.Context, userID domain.UserID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[userID.String()]
	if !ok {
		return domerrors.ErrUserNotFound
	}
	now := time.Now()
	u.LastLoginAt = &now
	u.UpdatedAt = now
	return nil
}

var _ ports.UserRepository = (*UserRepository)(nil)
