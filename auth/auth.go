package auth

import (
	"crypto/sha256"
	"net/http"

	"github.com/gorilla/sessions"

	"notesbox/config"
)

var Store *sessions.CookieStore

func InitStore() {
	// Derive two 32-byte keys from the session key to ensure secure encryption
	// Auth key for signing (HMAC)
	authKey := sha256.Sum256([]byte(config.AppConfig.SessionKey + "auth"))
	// Encryption key for content encryption (AES)
	encKey := sha256.Sum256([]byte(config.AppConfig.SessionKey + "encryption"))

	Store = sessions.NewCookieStore(authKey[:], encKey[:])

	Store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   config.AppConfig.ListenPort != 8080, // Default to true unless dev port
		SameSite: http.SameSiteLaxMode,
	}
}

const SessionName = "notesbox-session"

// GetUserID returns the authenticated user's id, or 0 for an anonymous session.
func GetUserID(r *http.Request) int {
	session, _ := Store.Get(r, SessionName)
	if id, ok := session.Values["userID"].(int); ok {
		return id
	}
	return 0
}

func SetSession(w http.ResponseWriter, r *http.Request, userID int) {
	session, _ := Store.Get(r, SessionName)
	session.Values["userID"] = userID
	session.Save(r, w)
}

func ClearSession(w http.ResponseWriter, r *http.Request) {
	session, _ := Store.Get(r, SessionName)
	session.Options.MaxAge = -1
	session.Save(r, w)
}

// Flash queues a one-shot message for the next rendered page.
func Flash(w http.ResponseWriter, r *http.Request, message string) {
	session, _ := Store.Get(r, SessionName)
	session.Values["error"] = message
	session.Save(r, w)
}

// PopFlash returns the pending flash message and clears it, so a refresh
// never re-shows a stale error. Empty string when nothing is pending.
func PopFlash(w http.ResponseWriter, r *http.Request) string {
	session, _ := Store.Get(r, SessionName)
	msg, ok := session.Values["error"].(string)
	if !ok {
		return ""
	}
	delete(session.Values, "error")
	session.Save(r, w)
	return msg
}
