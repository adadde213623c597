// Package session reads the current user from a browser cookie. It replaces
// the original UI's local-storage shim: the cookie holds the identity, the
// controllers only see the Session port.
package session

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"billed/internal/core"
)

const CookieName = "billed_user"

// CookieStore adapts one request's cookie to the controllers' Session port.
type CookieStore struct {
	r *http.Request
}

func FromRequest(r *http.Request) *CookieStore {
	return &CookieStore{r: r}
}

// CurrentUser decodes the user cookie. A missing or undecodable cookie
// means no user; an empty email is propagated as-is, never defaulted.
func (s *CookieStore) CurrentUser() (core.User, bool) {
	c, err := s.r.Cookie(CookieName)
	if err != nil {
		return core.User{}, false
	}
	raw, err := base64.URLEncoding.DecodeString(c.Value)
	if err != nil {
		return core.User{}, false
	}
	var u core.User
	if err := json.Unmarshal(raw, &u); err != nil {
		return core.User{}, false
	}
	if u.Type == "" {
		return core.User{}, false
	}
	return u, true
}

// Write stores the user identity on the response.
func Write(w http.ResponseWriter, u core.User) error {
	raw, err := json.Marshal(u)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    base64.URLEncoding.EncodeToString(raw),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Clear removes the identity cookie.
func Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:   CookieName,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
}
