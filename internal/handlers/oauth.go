package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"

	"github.com/eventrite/eventrite/internal/auth"
	"github.com/eventrite/eventrite/internal/store"
	"github.com/eventrite/eventrite/models"
)

// OAuth handles provider-based sign-in (Google) as an alternative to the
// local strategy. Accounts are matched by email and created on first login.
type OAuth struct {
	users    store.UserStore
	sessions *auth.Sessions
	log      *slog.Logger
}

func NewOAuth(users store.UserStore, sessions *auth.Sessions, log *slog.Logger) *OAuth {
	return &OAuth{users: users, sessions: sessions, log: log}
}

// Begin serves POST /auth/{provider}. A request that already carries a
// completed provider session skips straight to sign-in.
func (h *OAuth) Begin(w http.ResponseWriter, r *http.Request) {
	if gothUser, err := gothic.CompleteUserAuth(w, r); err == nil {
		h.signIn(w, r, gothUser)
		return
	}
	gothic.BeginAuthHandler(w, r)
}

// Callback serves GET /auth/{provider}/callback.
func (h *OAuth) Callback(w http.ResponseWriter, r *http.Request) {
	gothUser, err := gothic.CompleteUserAuth(w, r)
	if err != nil {
		h.log.Warn("oauth callback", "err", err)
		h.sessions.FlashError(w, r, "Sign-in failed, please try again")
		http.Redirect(w, r, "/users/login", http.StatusFound)
		return
	}
	h.signIn(w, r, gothUser)
}

func (h *OAuth) signIn(w http.ResponseWriter, r *http.Request, gothUser goth.User) {
	ctx := r.Context()

	user, err := h.users.FindByEmail(ctx, gothUser.Email)
	if errors.Is(err, store.ErrNotFound) {
		user = &models.User{
			Name:     displayName(gothUser),
			Email:    gothUser.Email,
			Username: oauthUsername(gothUser),
			Image:    gothUser.AvatarURL,
			// No local password; the account authenticates via the
			// provider until one is set.
			PasswordHash: "",
		}
		createErr := h.users.Create(ctx, user)
		if errors.Is(createErr, store.ErrUsernameTaken) {
			// The provider nickname belongs to another account; retry
			// with a generated one.
			user.Username = fmt.Sprintf("%s_%s", user.Username, uuid.NewString()[:8])
			createErr = h.users.Create(ctx, user)
		}
		if createErr != nil {
			if errors.Is(createErr, store.ErrEmailTaken) {
				// Lost a race with a concurrent registration; the row
				// exists now.
				user, err = h.users.FindByEmail(ctx, gothUser.Email)
			} else {
				err = createErr
			}
			if err != nil {
				h.log.Error("create oauth user", "email", gothUser.Email, "err", err)
				http.Error(w, "Failed to create user", http.StatusInternalServerError)
				return
			}
		}
	} else if err != nil {
		h.log.Error("find oauth user", "email", gothUser.Email, "err", err)
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	if err := h.sessions.SignIn(w, r, user.ID); err != nil {
		h.log.Error("save session", "err", err)
		http.Error(w, "Failed to save session", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

func displayName(u goth.User) string {
	if u.Name != "" {
		return u.Name
	}
	return u.NickName
}

func oauthUsername(u goth.User) string {
	if u.NickName != "" {
		return u.NickName
	}
	local, _, _ := strings.Cut(u.Email, "@")
	return local
}
