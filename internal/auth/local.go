package auth

import (
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/eventrite/eventrite/internal/store"
	"github.com/eventrite/eventrite/models"
)

// dummyHash is compared against when the username does not exist, so a
// missing account costs roughly the same as a wrong password. It matches no
// real credential.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// Local verifies a username/password form submission against the user
// store. Registered under the name "local".
type Local struct {
	users store.UserStore
}

func NewLocal(users store.UserStore) *Local {
	return &Local{users: users}
}

func (l *Local) Name() string { return "local" }

func (l *Local) Authenticate(r *http.Request) (*models.User, error) {
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")
	if username == "" || password == "" {
		return nil, ErrBadCredentials
	}

	user, err := l.users.FindByUsername(r.Context(), username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
			return nil, ErrBadCredentials
		}
		return nil, fmt.Errorf("look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrBadCredentials
	}
	return user, nil
}
