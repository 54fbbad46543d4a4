package session

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// ErrInvalidCredentials is returned by Login when the supplied password does
// not match the configured admin password.
var ErrInvalidCredentials = errors.New("invalid credentials")

const cookieName = "wo_session"

// Flash is a one-shot user-facing message, shown on the next page render and
// then discarded.
type Flash struct {
	Category string // "success" or "error"
	Message  string
}

type state struct {
	loggedIn bool
	flashes  []Flash
}

// Manager keeps all session state server side, keyed by a random token. The
// browser only ever sees the token plus an HMAC signature of it; a cookie
// that fails verification is treated as no session at all.
type Manager struct {
	secret        []byte
	adminPassword string

	mu       sync.RWMutex
	sessions map[string]*state
}

func NewManager(sessionSecret, adminPassword string) *Manager {
	return &Manager{
		secret:        []byte(sessionSecret),
		adminPassword: adminPassword,
		sessions:      make(map[string]*state),
	}
}

func (m *Manager) sign(token string) string {
	mac := hmac.New(sha256.New, m.secret)
	mac.Write([]byte(token))
	return hex.EncodeToString(mac.Sum(nil))
}

// verify splits a cookie value of the form "<token>.<signature>" and checks
// the signature.
func (m *Manager) verify(value string) (string, bool) {
	token, sig, ok := strings.Cut(value, ".")
	if !ok || token == "" {
		return "", false
	}
	want := m.sign(token)
	if !hmac.Equal([]byte(sig), []byte(want)) {
		return "", false
	}
	return token, true
}

// token extracts a verified session token from the request, if any. All
// cookies with the session name are scanned so one stale, unverifiable
// cookie cannot mask a valid one added later in the same request.
func (m *Manager) token(r *http.Request) (string, bool) {
	for _, c := range r.Cookies() {
		if c.Name != cookieName {
			continue
		}
		if token, ok := m.verify(c.Value); ok {
			return token, true
		}
	}
	return "", false
}

// ensure returns the request's session state, creating one when the request
// carries none. A verified token whose server-side state is gone (logout,
// restart) is reused rather than reissued.
func (m *Manager) ensure(w http.ResponseWriter, r *http.Request) *state {
	token, ok := m.token(r)
	if !ok {
		token = uuid.NewString()
		// Later lookups within this same request won't see the
		// Set-Cookie header, so attach the cookie to the request too.
		r.AddCookie(&http.Cookie{Name: cookieName, Value: token + "." + m.sign(token)})
	}

	m.mu.Lock()
	st := m.sessions[token]
	created := st == nil
	if created {
		st = &state{}
		m.sessions[token] = st
	}
	m.mu.Unlock()

	if created {
		// Re-set the cookie even for reused tokens: a preceding Logout
		// in the same request queued a deletion and the last Set-Cookie
		// wins.
		http.SetCookie(w, &http.Cookie{
			Name:     cookieName,
			Value:    token + "." + m.sign(token),
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return st
}

func (m *Manager) lookup(r *http.Request) *state {
	token, ok := m.token(r)
	if !ok {
		return nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[token]
}

// LoggedIn reports whether the request carries an authenticated session.
func (m *Manager) LoggedIn(r *http.Request) bool {
	st := m.lookup(r)
	if st == nil {
		return false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return st.loggedIn
}

// Login checks the password against the configured admin password and, on
// match, marks the session authenticated. On mismatch no session state
// changes.
func (m *Manager) Login(w http.ResponseWriter, r *http.Request, password string) error {
	if subtle.ConstantTimeCompare([]byte(password), []byte(m.adminPassword)) != 1 {
		return ErrInvalidCredentials
	}
	st := m.ensure(w, r)
	m.mu.Lock()
	st.loggedIn = true
	m.mu.Unlock()
	return nil
}

// Logout drops all server-side state for the caller's session and expires
// the cookie. Safe to call with no session.
func (m *Manager) Logout(w http.ResponseWriter, r *http.Request) {
	if token, ok := m.token(r); ok {
		m.mu.Lock()
		delete(m.sessions, token)
		m.mu.Unlock()
	}
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

// AddFlash queues a one-shot message on the caller's session, creating a
// session if needed so the message survives the following redirect.
func (m *Manager) AddFlash(w http.ResponseWriter, r *http.Request, category, message string) {
	st := m.ensure(w, r)
	m.mu.Lock()
	st.flashes = append(st.flashes, Flash{Category: category, Message: message})
	m.mu.Unlock()
}

// TakeFlashes drains and returns the queued messages for the caller's
// session. Rendering a page consumes its flashes.
func (m *Manager) TakeFlashes(r *http.Request) []Flash {
	st := m.lookup(r)
	if st == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := st.flashes
	st.flashes = nil
	return out
}
