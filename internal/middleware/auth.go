package middleware

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/Richardv10/food-blog/internal/auth"
	"github.com/Richardv10/food-blog/internal/store"
)

// SessionCookieName is the cookie holding the session token.
const SessionCookieName = "foodblog_session"

// Session resolves the session cookie and, when it names a live session,
// populates AuthContext. Anonymous requests pass through unchanged.
func Session(sessions *store.SessionStore, users *store.UserStore, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			sess, err := sessions.GetByToken(r.Context(), cookie.Value)
			if err != nil {
				logger.Error("session lookup failed", "error", err)
			}
			if sess == nil {
				next.ServeHTTP(w, r)
				return
			}

			user, err := users.GetByID(r.Context(), sess.UserID)
			if err != nil {
				logger.Error("session user lookup failed", "user_id", sess.UserID, "error", err)
			}
			if user == nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := auth.WithAuth(r.Context(), auth.AuthContext{
				UserID:    user.ID,
				Username:  user.Username,
				IsAdmin:   user.IsAdmin,
				SessionID: sess.ID,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth sends anonymous requests to the login page.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !auth.IsAuthenticated(r.Context()) {
			redirectToLogin(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin checks that the authenticated user is an admin.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !auth.IsAuthenticated(r.Context()) {
			redirectToLogin(w, r)
			return
		}
		if !auth.IsAdmin(r.Context()) {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	target := "/login"
	if r.Method == http.MethodGet && r.URL.Path != "/" {
		target += "?next=" + url.QueryEscape(r.URL.RequestURI())
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
