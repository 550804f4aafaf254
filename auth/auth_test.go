package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"notesbox/config"
)

func TestMain(m *testing.M) {
	config.AppConfig.SessionKey = "test-secret-key-12345678901234567890123456789012"
	InitStore()
	m.Run()
}

func carryCookies(w *httptest.ResponseRecorder) *http.Request {
	r := httptest.NewRequest("GET", "/", nil)
	for _, c := range w.Result().Cookies() {
		r.AddCookie(c)
	}
	return r
}

func TestSessionIdentity(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/", nil)

	if GetUserID(r) != 0 {
		t.Error("Fresh session should be anonymous")
	}

	SetSession(w, r, 42)

	// SetSession writes cookies; replay them on a new request
	r2 := carryCookies(w)
	if got := GetUserID(r2); got != 42 {
		t.Errorf("Expected userID 42, got %d", got)
	}
}

func TestClearSession(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/", nil)
	SetSession(w, r, 7)
	r2 := carryCookies(w)

	w2 := httptest.NewRecorder()
	ClearSession(w2, r2)

	var cleared bool
	for _, c := range w2.Result().Cookies() {
		if c.Name == SessionName && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("ClearSession did not expire the session cookie")
	}
}

func TestClearSessionIdempotent(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/", nil)

	// No session established; clearing must not panic or error
	ClearSession(w, r)
	ClearSession(w, r)
}

func TestFlashIsOneShot(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/", nil)

	Flash(w, r, "Invalid credentials")
	r2 := carryCookies(w)

	w2 := httptest.NewRecorder()
	if got := PopFlash(w2, r2); got != "Invalid credentials" {
		t.Errorf("Expected flash 'Invalid credentials', got %q", got)
	}

	// The pop must have cleared it
	r3 := carryCookies(w2)
	w3 := httptest.NewRecorder()
	if got := PopFlash(w3, r3); got != "" {
		t.Errorf("Flash survived a pop: %q", got)
	}
}

func TestPopFlashEmpty(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/", nil)
	if got := PopFlash(w, r); got != "" {
		t.Errorf("Expected empty flash, got %q", got)
	}
}
