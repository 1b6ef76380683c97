package handler

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
)

const flashCookieName = "foodblog_flash"

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	Kind    string `json:"kind"` // success, error or info
	Message string `json:"message"`
}

func setFlash(w http.ResponseWriter, kind, message string) {
	data, err := json.Marshal(Flash{Kind: kind, Message: message})
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    base64.RawURLEncoding.EncodeToString(data),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// popFlash reads and clears the pending flash message, if any.
func popFlash(w http.ResponseWriter, r *http.Request) *Flash {
	cookie, err := r.Cookie(flashCookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	data, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return nil
	}
	var f Flash
	if err := json.Unmarshal(data, &f); err != nil || f.Message == "" {
		return nil
	}
	return &f
}

// redirectWithFlash sets a flash message and redirects with 303.
func redirectWithFlash(w http.ResponseWriter, r *http.Request, target, kind, message string) {
	setFlash(w, kind, message)
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// safeNext returns target if it is a local path, else fallback.
func safeNext(target, fallback string) string {
	if target == "" || !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return fallback
	}
	u, err := url.Parse(target)
	if err != nil || u.IsAbs() || u.Host != "" {
		return fallback
	}
	return target
}
