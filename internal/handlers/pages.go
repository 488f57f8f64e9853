package handlers

import (
	"log/slog"
	"net/http"

	"github.com/eventrite/eventrite/internal/auth"
	"github.com/eventrite/eventrite/internal/render"
	"github.com/eventrite/eventrite/internal/store"
)

// Pages serves the landing page and the authenticated dashboard.
type Pages struct {
	users    store.UserStore
	sessions *auth.Sessions
	render   *render.Renderer
	log      *slog.Logger
}

func NewPages(users store.UserStore, sessions *auth.Sessions, renderer *render.Renderer, log *slog.Logger) *Pages {
	return &Pages{users: users, sessions: sessions, render: renderer, log: log}
}

// Home serves GET /.
func (h *Pages) Home(w http.ResponseWriter, r *http.Request) {
	success, failure := h.sessions.Flashes(w, r)
	h.render.HTML(w, http.StatusOK, "index.html", render.Page{
		Title:   "Welcome",
		Success: success,
		Failure: failure,
	})
}

// Dashboard serves GET /dashboard behind RequireUser.
func (h *Pages) Dashboard(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/users/login", http.StatusFound)
		return
	}

	user, err := h.users.FindByID(r.Context(), id)
	if err != nil {
		// The session points at an account that no longer exists.
		h.log.Warn("dashboard user lookup", "user_id", id, "err", err)
		_ = h.sessions.SignOut(w, r)
		http.Redirect(w, r, "/users/login", http.StatusFound)
		return
	}

	success, failure := h.sessions.Flashes(w, r)
	h.render.HTML(w, http.StatusOK, "dashboard.html", render.Page{
		Title:    "Dashboard",
		Success:  success,
		Failure:  failure,
		Username: user.Username,
	})
}
