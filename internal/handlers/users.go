// Package handlers contains the HTTP handlers for the Eventrite server.
package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/eventrite/eventrite/internal/auth"
	"github.com/eventrite/eventrite/internal/avatars"
	"github.com/eventrite/eventrite/internal/mailer"
	"github.com/eventrite/eventrite/internal/render"
	"github.com/eventrite/eventrite/internal/storage"
	"github.com/eventrite/eventrite/internal/store"
	"github.com/eventrite/eventrite/internal/upload"
	"github.com/eventrite/eventrite/models"
)

const (
	// bcryptCost matches the salt work factor used for stored passwords.
	bcryptCost = 10

	// requestBodyLimit caps the whole multipart request so oversized
	// uploads are rejected before the handler does any work. The slack
	// above upload.MaxFileSize covers the text fields and part framing.
	requestBodyLimit = upload.MaxFileSize + 64*1024

	maxFormMemory = 4 << 20
)

// Mailer is the outbound-mail boundary; satisfied by *mailer.Worker.
type Mailer interface {
	Enqueue(msg mailer.Message)
}

// Users serves registration, login, and logout.
type Users struct {
	users      store.UserStore
	strategies *auth.Registry
	sessions   *auth.Sessions
	gate       *upload.Gate
	avatars    storage.Store
	mail       Mailer
	render     *render.Renderer
	log        *slog.Logger
}

func NewUsers(
	users store.UserStore,
	strategies *auth.Registry,
	sessions *auth.Sessions,
	gate *upload.Gate,
	avatarStore storage.Store,
	mail Mailer,
	renderer *render.Renderer,
	log *slog.Logger,
) *Users {
	return &Users{
		users:      users,
		strategies: strategies,
		sessions:   sessions,
		gate:       gate,
		avatars:    avatarStore,
		mail:       mail,
		render:     renderer,
		log:        log,
	}
}

// LoginForm serves GET /users/login.
func (h *Users) LoginForm(w http.ResponseWriter, r *http.Request) {
	success, failure := h.sessions.Flashes(w, r)
	h.render.HTML(w, http.StatusOK, "login.html", render.Page{
		Title:   "Login",
		Success: success,
		Failure: failure,
	})
}

// RegisterForm serves GET /users/register.
func (h *Users) RegisterForm(w http.ResponseWriter, r *http.Request) {
	success, failure := h.sessions.Flashes(w, r)
	h.render.HTML(w, http.StatusOK, "register.html", render.Page{
		Title:   "Register",
		Success: success,
		Failure: failure,
	})
}

// Register serves POST /users/register. Every validation failure is
// accumulated and echoed back on the re-rendered form; password fields are
// never echoed. The avatar is written to storage only after all text-field
// checks pass, and is removed again if persisting the user fails.
func (h *Users) Register(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, requestBodyLimit)
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "Uploaded image is too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	name := r.PostFormValue("name")
	email := r.PostFormValue("email")
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")
	password2 := r.PostFormValue("password2")

	file, header, fileErr := r.FormFile(h.gate.Field())
	if fileErr == nil {
		defer file.Close()
	}

	var errs []string
	if name == "" || email == "" || username == "" || fileErr != nil || password == "" || password2 == "" {
		errs = append(errs, "Please fill in all fields")
	}
	if password != password2 {
		errs = append(errs, "Passwords do not match")
	}
	if len(password) < 6 {
		errs = append(errs, "Password should be at least 6 characters")
	}

	var avatarName string
	if fileErr == nil {
		var gateErr error
		avatarName, gateErr = h.gate.Admit(header)
		if gateErr != nil {
			errs = append(errs, gateErr.Error())
		}
	}

	// Password fields are deliberately absent from the echoed values.
	values := map[string]string{
		"name":     name,
		"email":    email,
		"username": username,
	}

	if len(errs) > 0 {
		h.render.HTML(w, http.StatusOK, "register.html", render.Page{
			Title:  "Register",
			Errors: errs,
			Values: values,
		})
		return
	}

	ctx := r.Context()
	data, err := io.ReadAll(file)
	if err != nil {
		h.log.Error("read uploaded avatar", "err", err)
		http.Error(w, "Something went wrong saving your avatar", http.StatusInternalServerError)
		return
	}

	contentType := header.Header.Get("Content-Type")
	avatarRef, err := h.avatars.Save(ctx, avatarName, contentType, data)
	if err != nil {
		h.log.Error("store avatar", "err", err)
		http.Error(w, "Something went wrong saving your avatar", http.StatusInternalServerError)
		return
	}

	// Thumbnail generation is best effort; registration proceeds without it.
	var thumbRef string
	if thumb, err := avatars.Thumbnail(data); err != nil {
		h.log.Warn("thumbnail avatar", "err", err)
	} else if thumbRef, err = h.avatars.Save(ctx, avatars.ThumbnailName(avatarName), contentType, thumb); err != nil {
		h.log.Warn("store avatar thumbnail", "err", err)
		thumbRef = ""
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		h.discardAvatars(ctx, avatarRef, thumbRef)
		h.log.Error("hash password", "err", err)
		http.Error(w, "Something went wrong creating your account", http.StatusInternalServerError)
		return
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		Username:     username,
		Image:        avatarRef,
		PasswordHash: string(hash),
	}
	if err := h.users.Create(ctx, user); err != nil {
		h.discardAvatars(ctx, avatarRef, thumbRef)
		var taken string
		switch {
		case errors.Is(err, store.ErrEmailTaken):
			taken = "Email is already registered"
		case errors.Is(err, store.ErrUsernameTaken):
			taken = "Username is already taken"
		default:
			h.log.Error("create user", "email", email, "err", err)
			http.Error(w, "Something went wrong creating your account", http.StatusInternalServerError)
			return
		}
		h.render.HTML(w, http.StatusOK, "register.html", render.Page{
			Title:  "Register",
			Errors: []string{taken},
			Values: values,
		})
		return
	}

	h.mail.Enqueue(mailer.Welcome(user.Email, user.Username))
	h.sessions.FlashSuccess(w, r, "You are now registered and can log in")
	http.Redirect(w, r, "/users/login", http.StatusFound)
}

// Login serves POST /users/login by delegating to the "local" strategy.
func (h *Users) Login(w http.ResponseWriter, r *http.Request) {
	strategy, ok := h.strategies.Get("local")
	if !ok {
		h.log.Error("local strategy not registered")
		http.Error(w, "Something went wrong", http.StatusInternalServerError)
		return
	}

	user, err := strategy.Authenticate(r)
	if err != nil {
		if !errors.Is(err, auth.ErrBadCredentials) {
			h.log.Error("authenticate", "err", err)
		}
		h.sessions.FlashError(w, r, "Invalid username or password")
		http.Redirect(w, r, "/users/login", http.StatusFound)
		return
	}

	if err := h.sessions.SignIn(w, r, user.ID); err != nil {
		h.log.Error("save session", "err", err)
		http.Error(w, "Something went wrong", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

// Logout serves GET /users/logout.
func (h *Users) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.SignOut(w, r); err != nil {
		h.log.Error("clear session", "err", err)
	}
	h.sessions.FlashSuccess(w, r, "You are logged out")
	http.Redirect(w, r, "/users/login", http.StatusFound)
}

func (h *Users) discardAvatars(ctx context.Context, refs ...string) {
	for _, ref := range refs {
		if ref == "" {
			continue
		}
		if err := h.avatars.Remove(ctx, ref); err != nil {
			h.log.Warn("remove orphaned avatar", "ref", ref, "err", err)
		}
	}
}
