package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/Richardv10/food-blog/internal/auth"
	"github.com/Richardv10/food-blog/internal/database"
	"github.com/Richardv10/food-blog/internal/imagestore"
	"github.com/Richardv10/food-blog/internal/model"
	"github.com/Richardv10/food-blog/internal/recipes"
	"github.com/Richardv10/food-blog/internal/spoonacular"
	"github.com/Richardv10/food-blog/internal/store"
	"github.com/Richardv10/food-blog/web"
)

type fakeAPI struct {
	recipes map[int64]spoonacular.RecipeInfo
	err     error
}

func (f *fakeAPI) Search(_ context.Context, query string, _ int) ([]spoonacular.SearchResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []spoonacular.SearchResult
	for id, r := range f.recipes {
		if strings.Contains(strings.ToLower(r.Title), strings.ToLower(query)) {
			out = append(out, spoonacular.SearchResult{ID: id, Title: r.Title, Image: r.Image})
		}
	}
	return out, nil
}

func (f *fakeAPI) Information(_ context.Context, id int64) (*spoonacular.RecipeInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	r, ok := f.recipes[id]
	if !ok {
		return nil, spoonacular.ErrNotFound
	}
	return &r, nil
}

func (f *fakeAPI) Random(ctx context.Context) (*spoonacular.RecipeInfo, error) {
	for id := range f.recipes {
		return f.Information(ctx, id)
	}
	return nil, spoonacular.ErrUpstream
}

// fakeImages stores uploads in memory, sniffing content like imagestore does.
type fakeImages struct {
	mu      sync.Mutex
	stored  map[string][]byte
	deleted []string
	next    int
}

func newFakeImages() *fakeImages {
	return &fakeImages{stored: make(map[string][]byte)}
}

func (f *fakeImages) Enabled() bool { return true }

func (f *fakeImages) Put(_ context.Context, _ string, body io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(body, imagestore.MaxImageSize+1))
	if err != nil {
		return "", err
	}
	if len(data) > imagestore.MaxImageSize {
		return "", imagestore.ErrTooLarge
	}
	if !strings.HasPrefix(http.DetectContentType(data), "image/") {
		return "", imagestore.ErrNotImage
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	key := fmt.Sprintf("recipes/test-%d.png", f.next)
	f.stored[key] = data
	return key, nil
}

func (f *fakeImages) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, key)
	delete(f.stored, key)
	return nil
}

func (f *fakeImages) URL(key string) string { return "https://cdn.test/" + key }

func (f *fakeImages) storedKeys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	keys := make([]string, 0, len(f.stored))
	for k := range f.stored {
		keys = append(keys, k)
	}
	return keys
}

// pngBytes is enough for content sniffing to report image/png.
var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type testEnv struct {
	db      *sql.DB
	api     *fakeAPI
	users   *store.UserStore
	svc     *recipes.Service
	recipes *RecipeHandler
	created *CreatedHandler
	auth    *AuthHandler
	admin   *AdminHandler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return setupEnv(t, nil)
}

// newUploadEnv is newTestEnv with featured image uploads enabled.
func newUploadEnv(t *testing.T) (*testEnv, *fakeImages) {
	t.Helper()
	images := newFakeImages()
	return setupEnv(t, images), images
}

func setupEnv(t *testing.T, images *fakeImages) *testEnv {
	t.Helper()
	var (
		uploader  Uploader
		svcImages recipes.Images
	)
	if images != nil {
		uploader = images
		svcImages = images
	}

	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	rn, err := NewRenderer(web.FS, nil, logger)
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}

	api := &fakeAPI{recipes: map[int64]spoonacular.RecipeInfo{
		716429: {ID: 716429, Title: "Pasta with Garlic", Summary: "Quick pasta.", Instructions: "Boil.\nServe.", Servings: 2},
		715538: {ID: 715538, Title: "Bruschetta", ReadyInMinutes: 35},
	}}
	stores := store.NewUserStore(db)
	adminStores := AdminStores{
		Users:    stores,
		Recipes:  store.NewRecipeStore(db),
		Library:  store.NewLibraryStore(db),
		Comments: store.NewCommentStore(db),
		Created:  store.NewCreatedRecipeStore(db),
	}
	svc := recipes.New(api, recipes.Stores{
		Recipes:  adminStores.Recipes,
		Library:  adminStores.Library,
		Comments: adminStores.Comments,
		Created:  adminStores.Created,
	}, nil, svcImages, logger)

	return &testEnv{
		db:      db,
		api:     api,
		users:   stores,
		svc:     svc,
		recipes: NewRecipeHandler(svc, rn, logger),
		created: NewCreatedHandler(svc, uploader, rn, logger),
		auth:    NewAuthHandler(stores, store.NewSessionStore(db), rn, false, logger),
		admin:   NewAdminHandler(adminStores, rn, logger),
	}
}

func (e *testEnv) createUser(t *testing.T, username string, isAdmin bool) *model.User {
	t.Helper()
	u, err := e.users.Create(context.Background(), username, "hash", isAdmin)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func asUser(r *http.Request, u *model.User) *http.Request {
	return r.WithContext(auth.WithAuth(r.Context(), auth.AuthContext{
		UserID:   u.ID,
		Username: u.Username,
		IsAdmin:  u.IsAdmin,
	}))
}

func postForm(target string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

// multipartForm builds a recipe form post with an optional featured image.
func multipartForm(t *testing.T, target string, fields url.Values, filename string, image []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for name, values := range fields {
		for _, v := range values {
			if err := mw.WriteField(name, v); err != nil {
				t.Fatalf("write field %s: %v", name, err)
			}
		}
	}
	if filename != "" {
		part, err := mw.CreateFormFile("featured_image", filename)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := part.Write(image); err != nil {
			t.Fatalf("write image: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func withID(r *http.Request, id string) *http.Request {
	r.SetPathValue("id", id)
	return r
}

func responseFlash(t *testing.T, rec *httptest.ResponseRecorder) *Flash {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name != flashCookieName || c.Value == "" {
			continue
		}
		data, err := base64.RawURLEncoding.DecodeString(c.Value)
		if err != nil {
			t.Fatalf("decode flash: %v", err)
		}
		var f Flash
		if err := json.Unmarshal(data, &f); err != nil {
			t.Fatalf("unmarshal flash: %v", err)
		}
		return &f
	}
	return nil
}

func assertRedirect(t *testing.T, rec *httptest.ResponseRecorder, want string) {
	t.Helper()
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d; body: %s", rec.Code, http.StatusSeeOther, rec.Body.String())
	}
	if got := rec.Header().Get("Location"); got != want {
		t.Errorf("Location = %q, want %q", got, want)
	}
}
