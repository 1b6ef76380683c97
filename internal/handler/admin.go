package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/Richardv10/food-blog/internal/auth"
	"github.com/Richardv10/food-blog/internal/store"
)

var adminTables = []string{"recipes", "library", "comments", "created", "users"}

const adminTimeFormat = "2006-01-02 15:04"

type adminRow struct {
	ID    int64
	Cells []string
}

type AdminStores struct {
	Users    *store.UserStore
	Recipes  *store.RecipeStore
	Library  *store.LibraryStore
	Comments *store.CommentStore
	Created  *store.CreatedRecipeStore
}

// AdminHandler serves the list, search and filter screens for each table.
type AdminHandler struct {
	stores AdminStores
	render *Renderer
	logger *slog.Logger
}

func NewAdminHandler(stores AdminStores, rn *Renderer, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		stores: stores,
		render: rn,
		logger: logger.With("component", "admin"),
	}
}

func (h *AdminHandler) Index(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, r, http.StatusOK, "admin_index", map[string]any{
		"Title":  "Admin",
		"Tables": adminTables,
	})
}

func optionalInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func (h *AdminHandler) Table(w http.ResponseWriter, r *http.Request) {
	table := r.PathValue("table")
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	ctx := r.Context()

	var (
		columns []string
		rows    []adminRow
		filter  string
		err     error
	)

	switch table {
	case "recipes":
		columns = []string{"recipe_id", "title"}
		list, lerr := h.stores.Recipes.Search(ctx, query, 0)
		err = lerr
		for _, rec := range list {
			rows = append(rows, adminRow{ID: rec.ID, Cells: []string{rec.RecipeID, rec.Title}})
		}

	case "library":
		columns = []string{"user", "recipe", "is_shared", "rating", "created_at"}
		filter = r.URL.Query().Get("shared")
		var shared *bool
		switch filter {
		case "yes":
			shared = new(bool)
			*shared = true
		case "no":
			shared = new(bool)
		default:
			filter = ""
		}
		list, lerr := h.stores.Library.AdminList(ctx, query, shared)
		err = lerr
		for _, e := range list {
			rows = append(rows, adminRow{ID: e.ID, Cells: []string{
				e.Username, e.Recipe.DisplayTitle(), yesNo(e.IsShared), optionalInt(e.Rating), e.CreatedAt.Format(adminTimeFormat),
			}})
		}

	case "comments":
		columns = []string{"user", "recipe", "rating", "comment", "created_at"}
		filter = strings.TrimSpace(r.URL.Query().Get("rating"))
		rating, perr := formInt(r, "rating", "Rating")
		if perr != nil {
			redirectWithFlash(w, r, "/admin/comments", "error", formError(perr))
			return
		}
		list, lerr := h.stores.Comments.AdminList(ctx, query, rating)
		err = lerr
		for _, c := range list {
			rows = append(rows, adminRow{ID: c.ID, Cells: []string{
				c.Username, c.RecipeTitle, optionalInt(c.Rating), c.Comment, c.CreatedAt.Format(adminTimeFormat),
			}})
		}

	case "created":
		columns = []string{"title", "creator", "created_at", "servings", "ready_in_minutes"}
		filter = strings.TrimSpace(r.URL.Query().Get("creator"))
		var creatorID int64
		if filter != "" {
			creatorID, err = strconv.ParseInt(filter, 10, 64)
			if err != nil {
				redirectWithFlash(w, r, "/admin/created", "error", "Creator must be a whole number.")
				return
			}
		}
		list, lerr := h.stores.Created.AdminList(ctx, query, creatorID)
		err = lerr
		for _, c := range list {
			rows = append(rows, adminRow{ID: c.ID, Cells: []string{
				c.Title, c.CreatorUsername, c.CreatedAt.Format(adminTimeFormat), optionalInt(c.Servings), optionalInt(c.ReadyInMinutes),
			}})
		}

	case "users":
		columns = []string{"username", "is_admin", "created_at"}
		list, lerr := h.stores.Users.List(ctx, query)
		err = lerr
		for _, u := range list {
			rows = append(rows, adminRow{ID: u.ID, Cells: []string{u.Username, yesNo(u.IsAdmin), u.CreatedAt.Format(adminTimeFormat)}})
		}

	default:
		h.render.Error(w, r, http.StatusNotFound, "Unknown table.")
		return
	}

	if err != nil {
		h.logger.Error("admin list", "table", table, "error", err)
		h.render.Error(w, r, http.StatusInternalServerError, "Could not load "+table+".")
		return
	}

	h.render.Render(w, r, http.StatusOK, "admin_table", map[string]any{
		"Title":   "Admin: " + table,
		"Table":   table,
		"Query":   query,
		"Filter":  filter,
		"Columns": columns,
		"Rows":    rows,
	})
}

// DeleteUser removes a user and everything they own.
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.render.Error(w, r, http.StatusNotFound, "User not found.")
		return
	}
	if id == auth.UserID(r.Context()) {
		redirectWithFlash(w, r, "/admin/users", "error", "You cannot delete your own account.")
		return
	}

	if err := h.stores.Users.Delete(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			redirectWithFlash(w, r, "/admin/users", "error", "User not found.")
			return
		}
		h.logger.Error("delete user", "user_id", id, "error", err)
		h.render.Error(w, r, http.StatusInternalServerError, "Could not delete the user.")
		return
	}
	h.logger.Info("user deleted", "user_id", id, "by", auth.UserID(r.Context()))
	redirectWithFlash(w, r, "/admin/users", "success", "User deleted.")
}

