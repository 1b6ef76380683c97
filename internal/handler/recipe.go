package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/Richardv10/food-blog/internal/auth"
	"github.com/Richardv10/food-blog/internal/recipes"
	"github.com/Richardv10/food-blog/internal/spoonacular"
	"github.com/Richardv10/food-blog/internal/store"
	"github.com/Richardv10/food-blog/internal/validation"
)

type shareForm struct {
	Message string `form:"message" validate:"max=1000"`
	Rating  *int   `form:"rating" validate:"omitempty,min=0,max=5"`
}

type commentForm struct {
	Comment string `form:"comment" validate:"required,max=2000"`
	Rating  *int   `form:"rating" validate:"omitempty,min=0,max=5"`
}

// RecipeHandler serves the feed, search and external recipe pages.
type RecipeHandler struct {
	service *recipes.Service
	render  *Renderer
	logger  *slog.Logger
}

func NewRecipeHandler(svc *recipes.Service, rn *Renderer, logger *slog.Logger) *RecipeHandler {
	return &RecipeHandler{
		service: svc,
		render:  rn,
		logger:  logger.With("component", "recipe_handler"),
	}
}

func recipePath(id int64) string {
	return "/recipes/" + strconv.FormatInt(id, 10)
}

func (h *RecipeHandler) Home(w http.ResponseWriter, r *http.Request) {
	feed, err := h.service.Feed(r.Context())
	if err != nil {
		h.logger.Error("load feed", "error", err)
		h.render.Error(w, r, http.StatusInternalServerError, "Could not load the feed.")
		return
	}
	h.render.Render(w, r, http.StatusOK, "home", map[string]any{
		"Title": "Home",
		"Feed":  feed,
	})
}

// Search renders the search form, and results when a query is given. Both
// GET ?query= and a POSTed form are accepted.
func (h *RecipeHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.FormValue("query"))
	data := map[string]any{
		"Title": "Search",
		"Query": query,
	}
	if query == "" {
		h.render.Render(w, r, http.StatusOK, "search", data)
		return
	}

	results, err := h.service.Search(r.Context(), query)
	if err != nil {
		serviceError(w, r, h.render, h.logger, err, "/search", "No recipes found.")
		return
	}
	data["Results"] = results
	data["Next"] = "/search?query=" + url.QueryEscape(query)
	h.render.Render(w, r, http.StatusOK, "search", data)
}

func (h *RecipeHandler) Detail(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.render.Error(w, r, http.StatusNotFound, "Recipe not found.")
		return
	}

	recipe, err := h.service.Detail(r.Context(), id)
	if err != nil {
		if errors.Is(err, spoonacular.ErrNotFound) {
			h.render.Error(w, r, http.StatusNotFound, "Recipe not found.")
			return
		}
		serviceError(w, r, h.render, h.logger, err, "/", "Recipe not found.")
		return
	}

	comments, err := h.service.Comments(r.Context(), recipe.ID)
	if err != nil {
		h.logger.Error("load comments", "recipe_id", recipe.RecipeID, "error", err)
	}

	saved := false
	if userID := auth.UserID(r.Context()); userID != 0 {
		if saved, err = h.service.IsSaved(r.Context(), userID, id); err != nil {
			h.logger.Error("check saved", "recipe_id", recipe.RecipeID, "error", err)
		}
	}

	h.render.Render(w, r, http.StatusOK, "recipe_detail", map[string]any{
		"Title":    recipe.DisplayTitle(),
		"Recipe":   recipe,
		"Comments": comments,
		"Saved":    saved,
	})
}

// Random fetches a random recipe and redirects to its detail page.
func (h *RecipeHandler) Random(w http.ResponseWriter, r *http.Request) {
	recipe, err := h.service.Random(r.Context())
	if err != nil {
		serviceError(w, r, h.render, h.logger, err, "/", "No random recipe available.")
		return
	}
	http.Redirect(w, r, "/recipes/"+recipe.RecipeID, http.StatusSeeOther)
}

func (h *RecipeHandler) Save(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.render.Error(w, r, http.StatusNotFound, "Recipe not found.")
		return
	}
	next := safeNext(r.FormValue("next"), recipePath(id))

	created, err := h.service.Save(r.Context(), auth.UserID(r.Context()), id)
	if err != nil {
		serviceError(w, r, h.render, h.logger, err, next, "Recipe not found.")
		return
	}
	if created {
		redirectWithFlash(w, r, next, "success", "Recipe saved to your collection.")
		return
	}
	redirectWithFlash(w, r, next, "info", "Recipe is already in your collection.")
}

func (h *RecipeHandler) SharePage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.render.Error(w, r, http.StatusNotFound, "Recipe not found.")
		return
	}
	recipe, err := h.service.Detail(r.Context(), id)
	if err != nil {
		serviceError(w, r, h.render, h.logger, err, "/my-recipes", "Recipe not found.")
		return
	}
	h.render.Render(w, r, http.StatusOK, "share", map[string]any{
		"Title":  "Share " + recipe.DisplayTitle(),
		"Recipe": recipe,
	})
}

func (h *RecipeHandler) Share(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.render.Error(w, r, http.StatusNotFound, "Recipe not found.")
		return
	}
	back := recipePath(id) + "/share"

	rating, err := formInt(r, "rating", "Rating")
	if err != nil {
		redirectWithFlash(w, r, back, "error", formError(err))
		return
	}
	form := shareForm{Message: strings.TrimSpace(r.FormValue("message")), Rating: rating}
	if err := validation.Struct(form); err != nil {
		redirectWithFlash(w, r, back, "error", formError(err))
		return
	}

	_, created, err := h.service.Share(r.Context(), auth.UserID(r.Context()), id, form.Message, form.Rating)
	if err != nil {
		if errors.Is(err, store.ErrInvalidRating) {
			redirectWithFlash(w, r, back, "error", "Rating must be between 0 and 5.")
			return
		}
		serviceError(w, r, h.render, h.logger, err, "/", "Recipe not found.")
		return
	}
	if created {
		redirectWithFlash(w, r, "/", "success", "Recipe saved and shared.")
		return
	}
	redirectWithFlash(w, r, "/", "success", "Recipe shared.")
}

func (h *RecipeHandler) Unshare(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.render.Error(w, r, http.StatusNotFound, "Recipe not found.")
		return
	}
	if err := h.service.Unshare(r.Context(), auth.UserID(r.Context()), id); err != nil {
		serviceError(w, r, h.render, h.logger, err, "/my-recipes", "Recipe not found in your collection.")
		return
	}
	redirectWithFlash(w, r, "/my-recipes", "success", "Recipe removed from the feed.")
}

// Delete removes a recipe from the user's library.
func (h *RecipeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.render.Error(w, r, http.StatusNotFound, "Recipe not found.")
		return
	}
	if err := h.service.Unsave(r.Context(), auth.UserID(r.Context()), id); err != nil {
		serviceError(w, r, h.render, h.logger, err, "/my-recipes", "Recipe not found in your collection.")
		return
	}
	redirectWithFlash(w, r, "/my-recipes", "success", "Recipe removed from your collection.")
}

func (h *RecipeHandler) Comment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.render.Error(w, r, http.StatusNotFound, "Recipe not found.")
		return
	}
	back := recipePath(id)

	rating, err := formInt(r, "rating", "Rating")
	if err != nil {
		redirectWithFlash(w, r, back, "error", formError(err))
		return
	}
	form := commentForm{Comment: strings.TrimSpace(r.FormValue("comment")), Rating: rating}
	if err := validation.Struct(form); err != nil {
		redirectWithFlash(w, r, back, "error", formError(err))
		return
	}

	if _, err := h.service.Comment(r.Context(), auth.UserID(r.Context()), id, form.Comment, form.Rating); err != nil {
		if errors.Is(err, store.ErrInvalidRating) {
			redirectWithFlash(w, r, back, "error", "Rating must be between 0 and 5.")
			return
		}
		serviceError(w, r, h.render, h.logger, err, "/", "Recipe not found.")
		return
	}
	redirectWithFlash(w, r, back, "success", "Comment added.")
}

func (h *RecipeHandler) MyRecipes(w http.ResponseWriter, r *http.Request) {
	saved, created, err := h.service.Library(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("load library", "error", err)
		h.render.Error(w, r, http.StatusInternalServerError, "Could not load your recipes.")
		return
	}
	h.render.Render(w, r, http.StatusOK, "my_recipes", map[string]any{
		"Title":   "My Recipes",
		"Saved":   saved,
		"Created": created,
	})
}
