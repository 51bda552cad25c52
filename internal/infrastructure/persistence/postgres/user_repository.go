package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/avdeev/authgate/internal/application/ports"
	"github.com/avdeev/authgate/internal/domain"
	domerrors "github.com/avdeev/authgate/internal/domain/errors"
)

const (
	insertUserSQL = `INSERT INTO users (id, email, password_hash, first_name, last_name, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	selectUserByEmailSQL = `SELECT id, email, password_hash, first_name, last_name, last_login_at, created_at, updated_at
FROM users WHERE email = $1`
	selectUserByIDSQL = `SELECT id, email, password_hash, first_name, last_name, last_login_at, created_at, updated_at
FROM users WHERE id = $1`
	updateProfileSQL = `UPDATE users SET first_name = $1, last_name = $2, updated_at = NOW() WHERE id = $3
RETURNING id, email, password_hash, first_name, last_name, last_login_at, created_at, updated_at`
	touchLastLoginSQL = `UPDATE users SET last_login_at = NOW(), updated_at = NOW() WHERE id = $1`
)

// Querier is the subset of pgxpool.Pool the repository uses; pgxmock
// satisfies it in tests.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// UserRepository persists users in Postgres. Email uniqueness is enforced by
// the users_email_key constraint, which makes duplicate registration atomic.
type UserRepository struct {
	db Querier
}

func NewUserRepository(db Querier) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	_, err := r.db.Exec(ctx, insertUserSQL,
		user.ID.UUID, user.Email, user.PasswordHash,
		user.FirstName, user.LastName, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return domerrors.ErrEmailExists
		}
		return err
	}
	return nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.scanUser(r.db.QueryRow(ctx, selectUserByEmailSQL, email))
}

func (r *UserRepository) GetByID(ctx context.Context, userID domain.UserID) (*domain.User, error) {
	return r.scanUser(r.db.QueryRow(ctx, selectUserByIDSQL, userID.UUID))
}

func (r *UserRepository) UpdateProfile(ctx context.Context, userID domain.UserID, firstName, lastName string) (*domain.User, error) {
	u, err := r.scanUser(r.db.QueryRow(ctx, updateProfileSQL, firstName, lastName, userID.UUID))
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domerrors.ErrUserNotFound
	}
	return u, nil
}

func (r *UserRepository) TouchLastLogin(ctx context.Context, userID domain.UserID) error {
	tag, err := r.db.Exec(ctx, touchLastLoginSQL, userID.UUID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domerrors.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) scanUser(row pgx.Row) (*domain.User, error) {
	var (
		u           domain.User
		lastLoginAt *time.Time
	)
	err := row.Scan(&u.ID.UUID, &u.Email, &u.PasswordHash,
		&u.FirstName, &u.LastName, &lastLoginAt, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	u.LastLoginAt = lastLoginAt
	return &u, nil
}

var _ ports.UserRepository = (*UserRepository)(nil)
