package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/Richardv10/food-blog/internal/auth"
	"github.com/Richardv10/food-blog/internal/imagestore"
	"github.com/Richardv10/food-blog/internal/model"
	"github.com/Richardv10/food-blog/internal/recipes"
	"github.com/Richardv10/food-blog/internal/validation"
)

const maxUploadBytes = imagestore.MaxImageSize + 1<<20

type createdForm struct {
	Title          string `form:"title" validate:"required,max=200"`
	Description    string `form:"description" validate:"max=2000"`
	Ingredients    string `form:"ingredients" validate:"required"`
	Instructions   string `form:"instructions" validate:"required"`
	ReadyInMinutes *int   `form:"ready_in_minutes" validate:"omitempty,min=1"`
	Servings       *int   `form:"servings" validate:"omitempty,min=1"`
}

// Uploader stores featured images.
type Uploader interface {
	Enabled() bool
	Put(ctx context.Context, filename string, body io.Reader) (string, error)
	Delete(ctx context.Context, key string) error
}

// CreatedHandler serves user-authored recipes.
type CreatedHandler struct {
	service *recipes.Service
	images  Uploader
	render  *Renderer
	logger  *slog.Logger
}

func NewCreatedHandler(svc *recipes.Service, images Uploader, rn *Renderer, logger *slog.Logger) *CreatedHandler {
	return &CreatedHandler{
		service: svc,
		images:  images,
		render:  rn,
		logger:  logger.With("component", "created_handler"),
	}
}

func createdPath(id int64) string {
	return "/created/" + strconv.FormatInt(id, 10)
}

func (h *CreatedHandler) uploadsEnabled() bool {
	return h.images != nil && h.images.Enabled()
}

// parseForm reads and validates the recipe form, uploading the featured
// image when one is attached. The returned key is "" when no image was stored.
// The request body is capped at maxUploadBytes.
func (h *CreatedHandler) parseForm(w http.ResponseWriter, r *http.Request) (model.CreatedRecipe, string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return model.CreatedRecipe{}, "", err
	}

	readyIn, err := formInt(r, "ready_in_minutes", "Ready in minutes")
	if err != nil {
		return model.CreatedRecipe{}, "", err
	}
	servings, err := formInt(r, "servings", "Servings")
	if err != nil {
		return model.CreatedRecipe{}, "", err
	}
	form := createdForm{
		Title:          strings.TrimSpace(r.FormValue("title")),
		Description:    strings.TrimSpace(r.FormValue("description")),
		Ingredients:    strings.TrimSpace(r.FormValue("ingredients")),
		Instructions:   strings.TrimSpace(r.FormValue("instructions")),
		ReadyInMinutes: readyIn,
		Servings:       servings,
	}
	if err := validation.Struct(form); err != nil {
		return model.CreatedRecipe{}, "", err
	}

	c := model.CreatedRecipe{
		Title:          form.Title,
		Description:    form.Description,
		Ingredients:    form.Ingredients,
		Instructions:   form.Instructions,
		ReadyInMinutes: form.ReadyInMinutes,
		Servings:       form.Servings,
	}

	if !h.uploadsEnabled() {
		return c, "", nil
	}
	file, header, err := r.FormFile("featured_image")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return c, "", nil
	}
	if err != nil {
		return model.CreatedRecipe{}, "", err
	}
	defer file.Close()
	if header.Size == 0 {
		return c, "", nil
	}

	key, err := h.images.Put(r.Context(), header.Filename, file)
	if err != nil {
		return model.CreatedRecipe{}, "", err
	}
	return c, key, nil
}

// discard removes an image uploaded for a form that was then not saved.
func (h *CreatedHandler) discard(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := h.images.Delete(ctx, key); err != nil {
		h.logger.Warn("delete unsaved image", "key", key, "error", err)
	}
}

// uploadError returns the flash message for a failed form, or "" if err is
// not the user's fault.
func uploadError(err error) string {
	var malformed errMalformedNumber
	var verrs validation.Errors
	switch {
	case errors.As(err, &malformed), errors.As(err, &verrs):
		return formError(err)
	case errors.Is(err, imagestore.ErrNotImage):
		return "Featured image must be an image file."
	}
	var tooBig *http.MaxBytesError
	if errors.Is(err, imagestore.ErrTooLarge) || errors.As(err, &tooBig) {
		return "Featured image must be 5 MB or smaller."
	}
	if errors.Is(err, http.ErrMissingBoundary) {
		return "The upload could not be read."
	}
	return ""
}

func (h *CreatedHandler) New(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, r, http.StatusOK, "created_form", map[string]any{
		"Title":          "Create a recipe",
		"Recipe":         &model.CreatedRecipe{},
		"UploadsEnabled": h.uploadsEnabled(),
	})
}

func (h *CreatedHandler) Create(w http.ResponseWriter, r *http.Request) {
	c, key, err := h.parseForm(w, r)
	if err != nil {
		h.formFailed(w, r, err, "/create")
		return
	}
	c.CreatorID = auth.UserID(r.Context())
	c.FeaturedImage = key

	created, err := h.service.CreateRecipe(r.Context(), c)
	if err != nil {
		h.discard(r.Context(), key)
		h.logger.Error("create recipe", "error", err)
		h.render.Error(w, r, http.StatusInternalServerError, "Could not save the recipe.")
		return
	}
	h.logger.Info("recipe created", "id", created.ID, "creator_id", created.CreatorID)
	redirectWithFlash(w, r, createdPath(created.ID), "success", "Recipe created.")
}

func (h *CreatedHandler) formFailed(w http.ResponseWriter, r *http.Request, err error, back string) {
	if msg := uploadError(err); msg != "" {
		redirectWithFlash(w, r, back, "error", msg)
		return
	}
	h.logger.Error("recipe form", "error", err)
	h.render.Error(w, r, http.StatusInternalServerError, "Could not save the recipe.")
}

// Detail is the owner's view of a created recipe.
func (h *CreatedHandler) Detail(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.render.Error(w, r, http.StatusNotFound, "Recipe not found.")
		return
	}
	c, err := h.service.OwnedRecipe(r.Context(), id, auth.UserID(r.Context()))
	if err != nil {
		serviceError(w, r, h.render, h.logger, err, "/my-recipes", "Recipe not found.")
		return
	}
	h.render.Render(w, r, http.StatusOK, "created_detail", map[string]any{
		"Title":  c.Title,
		"Recipe": c,
		"Owner":  true,
	})
}

func (h *CreatedHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.render.Error(w, r, http.StatusNotFound, "Recipe not found.")
		return
	}
	c, err := h.service.OwnedRecipe(r.Context(), id, auth.UserID(r.Context()))
	if err != nil {
		serviceError(w, r, h.render, h.logger, err, "/my-recipes", "Recipe not found.")
		return
	}
	h.render.Render(w, r, http.StatusOK, "created_form", map[string]any{
		"Title":          "Edit " + c.Title,
		"Recipe":         c,
		"UploadsEnabled": h.uploadsEnabled(),
	})
}

func (h *CreatedHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.render.Error(w, r, http.StatusNotFound, "Recipe not found.")
		return
	}
	userID := auth.UserID(r.Context())
	if _, err := h.service.OwnedRecipe(r.Context(), id, userID); err != nil {
		serviceError(w, r, h.render, h.logger, err, "/my-recipes", "Recipe not found.")
		return
	}
	c, key, err := h.parseForm(w, r)
	if err != nil {
		h.formFailed(w, r, err, createdPath(id)+"/edit")
		return
	}
	c.ID = id
	c.CreatorID = userID
	c.FeaturedImage = key

	if _, err := h.service.UpdateCreated(r.Context(), c); err != nil {
		h.discard(r.Context(), key)
		serviceError(w, r, h.render, h.logger, err, "/my-recipes", "Recipe not found.")
		return
	}
	redirectWithFlash(w, r, createdPath(id), "success", "Recipe updated.")
}

func (h *CreatedHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.render.Error(w, r, http.StatusNotFound, "Recipe not found.")
		return
	}
	if err := h.service.DeleteCreated(r.Context(), id, auth.UserID(r.Context())); err != nil {
		serviceError(w, r, h.render, h.logger, err, "/my-recipes", "Recipe not found.")
		return
	}
	redirectWithFlash(w, r, "/my-recipes", "success", "Recipe deleted.")
}

func (h *CreatedHandler) Share(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.render.Error(w, r, http.StatusNotFound, "Recipe not found.")
		return
	}
	form := shareForm{Message: strings.TrimSpace(r.FormValue("message"))}
	if err := validation.Struct(form); err != nil {
		redirectWithFlash(w, r, createdPath(id), "error", formError(err))
		return
	}
	if err := h.service.ShareCreated(r.Context(), id, auth.UserID(r.Context()), form.Message); err != nil {
		serviceError(w, r, h.render, h.logger, err, "/my-recipes", "Recipe not found.")
		return
	}
	redirectWithFlash(w, r, createdPath(id), "success", "Recipe shared to the feed.")
}

func (h *CreatedHandler) Unshare(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.render.Error(w, r, http.StatusNotFound, "Recipe not found.")
		return
	}
	if err := h.service.UnshareCreated(r.Context(), id, auth.UserID(r.Context())); err != nil {
		serviceError(w, r, h.render, h.logger, err, "/my-recipes", "Recipe not found.")
		return
	}
	redirectWithFlash(w, r, createdPath(id), "success", "Recipe removed from the feed.")
}

// PublicDetail shows a shared created recipe to anyone.
func (h *CreatedHandler) PublicDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.render.Error(w, r, http.StatusNotFound, "Recipe not found.")
		return
	}
	c, err := h.service.PublicRecipe(r.Context(), id)
	if err != nil {
		serviceError(w, r, h.render, h.logger, err, "/", "That recipe is not shared.")
		return
	}
	h.render.Render(w, r, http.StatusOK, "created_detail", map[string]any{
		"Title":  c.Title,
		"Recipe": c,
		"Owner":  c.CreatorID == auth.UserID(r.Context()),
	})
}
