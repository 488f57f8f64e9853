// Package store persists and looks up user accounts.
package store

import (
	"context"
	"errors"

	"github.com/eventrite/eventrite/models"
)

var (
	// ErrEmailTaken is returned by Create when the email address is
	// already registered. Uniqueness is enforced by the database index,
	// so concurrent registrations cannot both succeed.
	ErrEmailTaken = errors.New("email is already registered")

	// ErrUsernameTaken is returned by Create when the username belongs to
	// another account. Enforced by a unique index, like ErrEmailTaken, so
	// login by username resolves to exactly one user.
	ErrUsernameTaken = errors.New("username is already taken")

	// ErrNotFound is returned by lookups that match no user.
	ErrNotFound = errors.New("user not found")
)

// UserStore is the persistence boundary for user accounts.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByID(ctx context.Context, id uint) (*models.User, error)
}
