package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/Richardv10/food-blog/internal/auth"
	"github.com/Richardv10/food-blog/internal/middleware"
	"github.com/Richardv10/food-blog/internal/model"
	"github.com/Richardv10/food-blog/internal/store"
	"github.com/Richardv10/food-blog/internal/validation"
)

type registerForm struct {
	Username        string `form:"username" validate:"required,alphanum,min=3,max=150"`
	Password        string `form:"password" validate:"required,min=8"`
	PasswordConfirm string `form:"password_confirm" validate:"required,eqfield=Password"`
}

type loginForm struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
}

type AuthHandler struct {
	users         *store.UserStore
	sessions      *store.SessionStore
	render        *Renderer
	secureCookies bool
	logger        *slog.Logger
}

func NewAuthHandler(us *store.UserStore, ss *store.SessionStore, rn *Renderer, secureCookies bool, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		users:         us,
		sessions:      ss,
		render:        rn,
		secureCookies: secureCookies,
		logger:        logger.With("component", "auth"),
	}
}

func (h *AuthHandler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	if auth.IsAuthenticated(r.Context()) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	h.render.Render(w, r, http.StatusOK, "register", map[string]any{
		"Title":       "Register",
		"MinPassword": auth.MinPasswordLength,
	})
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	form := registerForm{
		Username:        strings.TrimSpace(r.FormValue("username")),
		Password:        r.FormValue("password"),
		PasswordConfirm: r.FormValue("password_confirm"),
	}
	if err := validation.Struct(form); err != nil {
		redirectWithFlash(w, r, "/register", "error", formError(err))
		return
	}

	existing, err := h.users.GetByUsername(r.Context(), form.Username)
	if err != nil {
		h.logger.Error("register lookup", "error", err)
		h.render.Error(w, r, http.StatusInternalServerError, "Something went wrong.")
		return
	}
	if existing != nil {
		redirectWithFlash(w, r, "/register", "error", "That username is already taken.")
		return
	}

	hash, err := auth.HashPassword(form.Password)
	if err != nil {
		h.logger.Error("hash password", "error", err)
		h.render.Error(w, r, http.StatusInternalServerError, "Something went wrong.")
		return
	}
	user, err := h.users.Create(r.Context(), form.Username, hash, false)
	if err != nil {
		h.logger.Error("create user", "error", err)
		redirectWithFlash(w, r, "/register", "error", "Could not create the account. Try a different username.")
		return
	}
	h.logger.Info("user registered", "user_id", user.ID, "username", user.Username)

	if !h.startSession(w, r, user) {
		return
	}
	redirectWithFlash(w, r, "/", "success", "Welcome, "+user.Username+"!")
}

func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	next := safeNext(r.URL.Query().Get("next"), "/")
	if auth.IsAuthenticated(r.Context()) {
		http.Redirect(w, r, next, http.StatusSeeOther)
		return
	}
	h.render.Render(w, r, http.StatusOK, "login", map[string]any{
		"Title": "Log in",
		"Next":  next,
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	form := loginForm{
		Username: strings.TrimSpace(r.FormValue("username")),
		Password: r.FormValue("password"),
	}
	next := safeNext(r.FormValue("next"), "/")
	retry := "/login"
	if next != "/" {
		retry += "?next=" + url.QueryEscape(next)
	}

	if err := validation.Struct(form); err != nil {
		redirectWithFlash(w, r, retry, "error", formError(err))
		return
	}

	user, err := h.users.GetByUsername(r.Context(), form.Username)
	if err != nil {
		h.logger.Error("login lookup", "error", err)
		h.render.Error(w, r, http.StatusInternalServerError, "Something went wrong.")
		return
	}
	if user == nil {
		redirectWithFlash(w, r, retry, "error", "Invalid username or password.")
		return
	}
	if err := auth.CheckPassword(user.PasswordHash, form.Password); err != nil {
		if !errors.Is(err, auth.ErrInvalidCredentials) {
			h.logger.Error("check password", "error", err)
		}
		redirectWithFlash(w, r, retry, "error", "Invalid username or password.")
		return
	}

	if !h.startSession(w, r, user) {
		return
	}
	h.logger.Info("user logged in", "user_id", user.ID)
	http.Redirect(w, r, next, http.StatusSeeOther)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if ac, ok := auth.FromContext(r.Context()); ok && ac.SessionID != 0 {
		if err := h.sessions.Delete(r.Context(), ac.SessionID); err != nil {
			h.logger.Error("delete session", "error", err)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   h.secureCookies || r.TLS != nil,
	})
	redirectWithFlash(w, r, "/", "info", "You have been logged out.")
}

// startSession creates a session for user and sets the cookie. It renders
// an error page and returns false on failure.
func (h *AuthHandler) startSession(w http.ResponseWriter, r *http.Request, user *model.User) bool {
	sess, err := h.sessions.Create(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("create session", "error", err)
		h.render.Error(w, r, http.StatusInternalServerError, "Something went wrong.")
		return false
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    sess.Token,
		Path:     "/",
		MaxAge:   int(store.SessionTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   h.secureCookies || r.TLS != nil,
	})
	return true
}
