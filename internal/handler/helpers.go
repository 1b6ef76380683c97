package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/Richardv10/food-blog/internal/recipes"
	"github.com/Richardv10/food-blog/internal/validation"
)

// errMalformedNumber reports a numeric form field that did not parse.
type errMalformedNumber struct {
	field string
}

func (e errMalformedNumber) Error() string {
	return e.field + " must be a whole number"
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// formInt parses an optional integer form field. A blank field is nil.
func formInt(r *http.Request, field, label string) (*int, error) {
	raw := strings.TrimSpace(r.FormValue(field))
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, errMalformedNumber{field: label}
	}
	return &n, nil
}

// formError returns the message to flash for a form parse or validation error.
func formError(err error) string {
	var malformed errMalformedNumber
	if errors.As(err, &malformed) {
		return malformed.Error() + "."
	}
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		return verrs.Error() + "."
	}
	return "Please check the form and try again."
}

// serviceError maps a recipe service error onto a response. Missing records
// redirect to fallback with a flash message and API failures render a 502.
func serviceError(w http.ResponseWriter, r *http.Request, rn *Renderer, logger *slog.Logger, err error, fallback, notFound string) {
	switch {
	case recipes.IsNotFound(err):
		redirectWithFlash(w, r, fallback, "error", notFound)
	case recipes.IsUpstream(err):
		logger.Warn("recipe api failed", "path", r.URL.Path, "error", err)
		rn.Error(w, r, http.StatusBadGateway, "The recipe service is unavailable right now. Please try again later.")
	default:
		logger.Error("request failed", "path", r.URL.Path, "error", err)
		rn.Error(w, r, http.StatusInternalServerError, "Something went wrong.")
	}
}
