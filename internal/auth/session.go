package auth

import (
	"net/http"
	"strings"

	"github.com/gorilla/sessions"
)

const (
	sessionName  = "eventrite_session"
	userKey      = "user_id"
	flashSuccess = "_flash_success"
	flashError   = "_flash_error"
)

// Sessions wraps a cookie session store with the operations the handlers
// need: sign-in/out and one-time flash messages.
type Sessions struct {
	store sessions.Store
}

func NewSessions(secret []byte, maxAge int, secure bool) *Sessions {
	cs := sessions.NewCookieStore(secret)
	cs.MaxAge(maxAge)
	cs.Options.Path = "/"
	cs.Options.HttpOnly = true
	cs.Options.Secure = secure
	return &Sessions{store: cs}
}

// Store exposes the underlying cookie store, for collaborators (gothic)
// that manage their own session data.
func (s *Sessions) Store() sessions.Store { return s.store }

// SignIn records the user id in the session.
func (s *Sessions) SignIn(w http.ResponseWriter, r *http.Request, userID uint) error {
	sess, _ := s.store.Get(r, sessionName)
	sess.Values[userKey] = userID
	return s.save(w, r, sess)
}

// SignOut removes the user id from the session.
func (s *Sessions) SignOut(w http.ResponseWriter, r *http.Request) error {
	sess, _ := s.store.Get(r, sessionName)
	delete(sess.Values, userKey)
	return s.save(w, r, sess)
}

// UserID returns the signed-in user's id, if any.
func (s *Sessions) UserID(r *http.Request) (uint, bool) {
	sess, err := s.store.Get(r, sessionName)
	if err != nil {
		return 0, false
	}
	id, ok := sess.Values[userKey].(uint)
	return id, ok
}

// FlashSuccess queues a one-time success message.
func (s *Sessions) FlashSuccess(w http.ResponseWriter, r *http.Request, msg string) {
	s.flash(w, r, flashSuccess, msg)
}

// FlashError queues a one-time failure message.
func (s *Sessions) FlashError(w http.ResponseWriter, r *http.Request, msg string) {
	s.flash(w, r, flashError, msg)
}

func (s *Sessions) flash(w http.ResponseWriter, r *http.Request, key, msg string) {
	sess, _ := s.store.Get(r, sessionName)
	sess.AddFlash(msg, key)
	_ = s.save(w, r, sess)
}

// Flashes pops all queued flash messages, clearing them from the session.
func (s *Sessions) Flashes(w http.ResponseWriter, r *http.Request) (success, failure []string) {
	sess, err := s.store.Get(r, sessionName)
	if err != nil {
		return nil, nil
	}
	for _, f := range sess.Flashes(flashSuccess) {
		if msg, ok := f.(string); ok {
			success = append(success, msg)
		}
	}
	for _, f := range sess.Flashes(flashError) {
		if msg, ok := f.(string); ok {
			failure = append(failure, msg)
		}
	}
	_ = s.save(w, r, sess)
	return success, failure
}

// save writes the session cookie, replacing any session cookie an earlier
// save already put on this response. Gorilla appends a Set-Cookie header on
// every Save, and clients keep the first match, so a second plain Save on
// the same response would leave the stale cookie winning.
func (s *Sessions) save(w http.ResponseWriter, r *http.Request, sess *sessions.Session) error {
	header := w.Header()
	var kept []string
	for _, c := range header["Set-Cookie"] {
		if !strings.HasPrefix(c, sessionName+"=") {
			kept = append(kept, c)
		}
	}
	header.Del("Set-Cookie")
	for _, c := range kept {
		header.Add("Set-Cookie", c)
	}
	return sess.Save(r, w)
}
