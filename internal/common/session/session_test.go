package session

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newRequestWithCookies(t *testing.T, rec *httptest.ResponseRecorder) *http.Request {
	t.Helper()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		r.AddCookie(c)
	}
	return r
}

func TestLoginSetsSessionFlag(t *testing.T) {
	m := NewManager("secret", "hunter2")

	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/login", nil)

	if err := m.Login(rec, r, "hunter2"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if !m.LoggedIn(r) {
		t.Fatalf("expected logged-in session after Login")
	}

	// The issued cookie carries the flag across requests.
	next := newRequestWithCookies(t, rec)
	if !m.LoggedIn(next) {
		t.Fatalf("expected cookie to carry authenticated session")
	}
}

func TestLoginWrongPasswordChangesNothing(t *testing.T) {
	m := NewManager("secret", "hunter2")

	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/login", nil)

	err := m.Login(rec, r, "wrong")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if m.LoggedIn(r) {
		t.Fatalf("session must stay unauthenticated after failed login")
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Errorf("failed login must not issue a session cookie")
	}
}

func TestTamperedCookieRejected(t *testing.T) {
	m := NewManager("secret", "hunter2")

	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/login", nil)
	if err := m.Login(rec, r, "hunter2"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	cookie := rec.Result().Cookies()[0]
	token, _, _ := strings.Cut(cookie.Value, ".")

	tampered := httptest.NewRequest(http.MethodGet, "/", nil)
	tampered.AddCookie(&http.Cookie{Name: cookie.Name, Value: token + ".deadbeef"})
	if m.LoggedIn(tampered) {
		t.Fatalf("tampered signature must not authenticate")
	}

	bare := httptest.NewRequest(http.MethodGet, "/", nil)
	bare.AddCookie(&http.Cookie{Name: cookie.Name, Value: token})
	if m.LoggedIn(bare) {
		t.Fatalf("unsigned token must not authenticate")
	}
}

func TestLogoutIdempotent(t *testing.T) {
	m := NewManager("secret", "hunter2")

	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/login", nil)
	if err := m.Login(rec, r, "hunter2"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	out := httptest.NewRecorder()
	m.Logout(out, r)
	if m.LoggedIn(r) {
		t.Fatalf("expected session cleared after Logout")
	}
	// Second logout on the same request is a no-op.
	m.Logout(httptest.NewRecorder(), r)

	// A fresh request without cookies is also fine.
	m.Logout(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/logout", nil))
}

func TestFlashesDrainOnce(t *testing.T) {
	m := NewManager("secret", "hunter2")

	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	m.AddFlash(rec, r, "error", "Please log in first.")
	m.AddFlash(rec, r, "success", "Logged in.")

	flashes := m.TakeFlashes(r)
	if len(flashes) != 2 {
		t.Fatalf("expected 2 flashes, got %d", len(flashes))
	}
	if flashes[0].Category != "error" || flashes[0].Message != "Please log in first." {
		t.Errorf("unexpected first flash: %+v", flashes[0])
	}
	if flashes[1].Category != "success" {
		t.Errorf("unexpected second flash: %+v", flashes[1])
	}

	if again := m.TakeFlashes(r); len(again) != 0 {
		t.Fatalf("flashes must be consumed on first take, got %v", again)
	}
}

func TestFlashSurvivesRedirect(t *testing.T) {
	m := NewManager("secret", "hunter2")

	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/wo/1/delete", nil)
	m.AddFlash(rec, r, "success", "Work order deleted.")

	// Browser follows the redirect carrying the cookie issued above.
	next := newRequestWithCookies(t, rec)
	flashes := m.TakeFlashes(next)
	if len(flashes) != 1 || flashes[0].Message != "Work order deleted." {
		t.Fatalf("expected queued flash on next request, got %v", flashes)
	}
}

func TestLogoutThenFlashReissuesSession(t *testing.T) {
	m := NewManager("secret", "hunter2")

	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/logout", nil)
	if err := m.Login(rec, r, "hunter2"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	out := httptest.NewRecorder()
	m.Logout(out, r)
	m.AddFlash(out, r, "success", "Logged out.")

	next := newRequestWithCookies(t, out)
	if m.LoggedIn(next) {
		t.Fatalf("logout must not leave an authenticated session")
	}
	flashes := m.TakeFlashes(next)
	if len(flashes) != 1 || flashes[0].Message != "Logged out." {
		t.Fatalf("expected logout flash to survive, got %v", flashes)
	}
}
