package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/Richardv10/food-blog/internal/auth"
	"github.com/Richardv10/food-blog/internal/middleware"
)

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.SessionCookieName {
			return c
		}
	}
	return nil
}

func TestRegisterStartsSession(t *testing.T) {
	env := newTestEnv(t)

	rec := httptest.NewRecorder()
	env.auth.Register(rec, postForm("/register", url.Values{
		"username":         {"alice"},
		"password":         {"correct-horse"},
		"password_confirm": {"correct-horse"},
	}))

	assertRedirect(t, rec, "/")
	c := sessionCookie(rec)
	if c == nil || c.Value == "" {
		t.Fatal("expected session cookie")
	}
	if !c.HttpOnly {
		t.Error("session cookie should be HttpOnly")
	}

	u, err := env.users.GetByUsername(context.Background(), "alice")
	if err != nil || u == nil {
		t.Fatalf("GetByUsername = %v, %v", u, err)
	}
	if u.PasswordHash == "correct-horse" {
		t.Error("password stored in plain text")
	}
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "bob", false)

	tests := []struct {
		name string
		form url.Values
		want string
	}{
		{"short password", url.Values{"username": {"alice"}, "password": {"short"}, "password_confirm": {"short"}}, "Password must be at least 8 characters"},
		{"mismatch", url.Values{"username": {"alice"}, "password": {"longenough"}, "password_confirm": {"different1"}}, "does not match"},
		{"taken", url.Values{"username": {"BOB"}, "password": {"longenough"}, "password_confirm": {"longenough"}}, "already taken"},
		{"missing username", url.Values{"password": {"longenough"}, "password_confirm": {"longenough"}}, "Username is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			env.auth.Register(rec, postForm("/register", tt.form))
			assertRedirect(t, rec, "/register")
			f := responseFlash(t, rec)
			if f == nil || !strings.Contains(f.Message, tt.want) {
				t.Errorf("flash = %+v, want %q", f, tt.want)
			}
			if sessionCookie(rec) != nil {
				t.Error("no session should be started")
			}
		})
	}
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	hash, err := auth.HashPassword("correct-horse")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if _, err := env.users.Create(context.Background(), "alice", hash, false); err != nil {
		t.Fatalf("create user: %v", err)
	}

	rec := httptest.NewRecorder()
	env.auth.Login(rec, postForm("/login", url.Values{"username": {"alice"}, "password": {"wrong-password"}}))
	assertRedirect(t, rec, "/login")
	if sessionCookie(rec) != nil {
		t.Error("failed login should not set a session")
	}

	rec = httptest.NewRecorder()
	env.auth.Login(rec, postForm("/login", url.Values{
		"username": {"alice"},
		"password": {"correct-horse"},
		"next":     {"/my-recipes"},
	}))
	assertRedirect(t, rec, "/my-recipes")
	if sessionCookie(rec) == nil {
		t.Error("expected session cookie")
	}
}

func TestLoginUnknownUserKeepsNext(t *testing.T) {
	env := newTestEnv(t)

	rec := httptest.NewRecorder()
	env.auth.Login(rec, postForm("/login", url.Values{
		"username": {"ghost"},
		"password": {"whatever1"},
		"next":     {"/create"},
	}))
	assertRedirect(t, rec, "/login?next=%2Fcreate")
}

func TestLogoutClearsCookie(t *testing.T) {
	env := newTestEnv(t)
	u := env.createUser(t, "alice", false)

	rec := httptest.NewRecorder()
	env.auth.Logout(rec, asUser(postForm("/logout", nil), u))

	assertRedirect(t, rec, "/")
	c := sessionCookie(rec)
	if c == nil || c.MaxAge >= 0 {
		t.Errorf("session cookie = %+v, want expired", c)
	}
}
