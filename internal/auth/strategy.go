// Package auth provides credential verification strategies and cookie
// session management for the Eventrite server.
package auth

import (
	"errors"
	"net/http"

	"github.com/eventrite/eventrite/models"
)

// ErrBadCredentials is returned by strategies when the supplied credentials
// do not resolve to an account. Login handlers surface it as a flash
// message, never as a server error.
var ErrBadCredentials = errors.New("invalid username or password")

// Strategy is a pluggable credential-verification policy, looked up by name
// when a login route runs.
type Strategy interface {
	Name() string
	Authenticate(r *http.Request) (*models.User, error)
}

// Registry maps strategy names to implementations.
type Registry struct {
	strategies map[string]Strategy
}

func NewRegistry(strategies ...Strategy) *Registry {
	r := &Registry{strategies: make(map[string]Strategy, len(strategies))}
	for _, s := range strategies {
		r.strategies[s.Name()] = s
	}
	return r
}

// Get returns the named strategy, if registered.
func (r *Registry) Get(name string) (Strategy, bool) {
	s, ok := r.strategies[name]
	return s, ok
}
