package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSessions() *Sessions {
	return NewSessions([]byte("0123456789abcdef0123456789abcdef"), 3600, false)
}

// carry copies the session cookies from a recorded response onto a new
// request, simulating the browser's next request.
func carry(t *testing.T, w *httptest.ResponseRecorder, method, target string) *http.Request {
	t.Helper()
	r := httptest.NewRequest(method, target, nil)
	for _, c := range w.Result().Cookies() {
		r.AddCookie(c)
	}
	return r
}

func TestSignInRoundTrip(t *testing.T) {
	s := newSessions()

	w := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "/users/login", nil)
	require.NoError(t, s.SignIn(w, r, 42))

	next := carry(t, w, "GET", "/dashboard")
	id, ok := s.UserID(next)
	require.True(t, ok)
	assert.Equal(t, uint(42), id)
}

func TestSignOutClearsUser(t *testing.T) {
	s := newSessions()

	w := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "/users/login", nil)
	require.NoError(t, s.SignIn(w, r, 42))

	r2 := carry(t, w, "GET", "/users/logout")
	w2 := httptest.NewRecorder()
	require.NoError(t, s.SignOut(w2, r2))

	r3 := carry(t, w2, "GET", "/dashboard")
	_, ok := s.UserID(r3)
	assert.False(t, ok)
}

func TestFlashesAreReadOnce(t *testing.T) {
	s := newSessions()

	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/", nil)
	s.FlashSuccess(w, r, "You are now registered and can log in")
	s.FlashError(w, r, "Something minor")

	r2 := carry(t, w, "GET", "/users/login")
	w2 := httptest.NewRecorder()
	success, failure := s.Flashes(w2, r2)
	assert.Equal(t, []string{"You are now registered and can log in"}, success)
	assert.Equal(t, []string{"Something minor"}, failure)

	// Flashes are cleared after the first read.
	r3 := carry(t, w2, "GET", "/users/login")
	w3 := httptest.NewRecorder()
	success, failure = s.Flashes(w3, r3)
	assert.Empty(t, success)
	assert.Empty(t, failure)
}

func TestRepeatedSavesEmitOneSessionCookie(t *testing.T) {
	s := newSessions()

	// SignOut followed by a flash, as the logout handler does. Both writes
	// must collapse into a single session cookie on the response, or the
	// browser keeps whichever comes first.
	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/users/logout", nil)
	require.NoError(t, s.SignOut(w, r))
	s.FlashSuccess(w, r, "You are logged out")

	var count int
	for _, c := range w.Result().Cookies() {
		if c.Name == sessionName {
			count++
		}
	}
	assert.Equal(t, 1, count)

	r2 := carry(t, w, "GET", "/users/login")
	w2 := httptest.NewRecorder()
	success, _ := s.Flashes(w2, r2)
	assert.Equal(t, []string{"You are logged out"}, success)
}

func TestRequireUserRedirectsAnonymous(t *testing.T) {
	s := newSessions()

	var reached bool
	h := s.RequireUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/dashboard", nil))

	assert.False(t, reached)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/users/login", w.Header().Get("Location"))
}

func TestRequireUserPassesSignedIn(t *testing.T) {
	s := newSessions()

	w := httptest.NewRecorder()
	require.NoError(t, s.SignIn(w, httptest.NewRequest("POST", "/users/login", nil), 7))

	var gotID uint
	h := s.RequireUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID, _ = UserIDFromContext(r.Context())
	}))

	w2 := httptest.NewRecorder()
	h.ServeHTTP(w2, carry(t, w, "GET", "/dashboard"))

	assert.Equal(t, uint(7), gotID)
}
