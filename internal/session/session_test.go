package session

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"billed/internal/core"
)

func roundTrip(t *testing.T, u core.User) *http.Request {
	t.Helper()
	rr := httptest.NewRecorder()
	if err := Write(rr, u); err != nil {
		t.Fatalf("write: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/bills", nil)
	for _, c := range rr.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func TestCurrentUserRoundTrip(t *testing.T) {
	req := roundTrip(t, core.User{Type: "Employee", Email: "johndoe@email.com"})
	u, ok := FromRequest(req).CurrentUser()
	if !ok {
		t.Fatalf("expected a user")
	}
	if u.Type != "Employee" || u.Email != "johndoe@email.com" {
		t.Fatalf("identity lost: %+v", u)
	}
}

func TestCurrentUserWithoutEmail(t *testing.T) {
	req := roundTrip(t, core.User{Type: "Employee"})
	u, ok := FromRequest(req).CurrentUser()
	if !ok {
		t.Fatalf("expected a user")
	}
	if u.Email != "" {
		t.Fatalf("email must stay empty, got %q", u.Email)
	}
}

func TestCurrentUserMissingCookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/bills", nil)
	if _, ok := FromRequest(req).CurrentUser(); ok {
		t.Fatalf("no cookie must mean no user")
	}
}

func TestCurrentUserGarbageCookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/bills", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "%%%not-base64"})
	if _, ok := FromRequest(req).CurrentUser(); ok {
		t.Fatalf("garbage cookie must mean no user")
	}
}
