package recipes

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/Richardv10/food-blog/internal/model"
	"github.com/Richardv10/food-blog/internal/spoonacular"
	"github.com/Richardv10/food-blog/internal/store"
	"github.com/Richardv10/food-blog/internal/websocket"
)

// FeedLimit is the number of entries shown on the home page.
const FeedLimit = 50

// API is the external recipe source.
type API interface {
	Search(ctx context.Context, query string, number int) ([]spoonacular.SearchResult, error)
	Information(ctx context.Context, id int64) (*spoonacular.RecipeInfo, error)
	Random(ctx context.Context) (*spoonacular.RecipeInfo, error)
}

// Notifier receives feed change notifications.
type Notifier interface {
	Broadcast(msg websocket.Message)
}

// Images resolves and removes featured image objects.
type Images interface {
	URL(key string) string
	Delete(ctx context.Context, key string) error
}

type Stores struct {
	Recipes  *store.RecipeStore
	Library  *store.LibraryStore
	Comments *store.CommentStore
	Created  *store.CreatedRecipeStore
}

// Service coordinates the recipe cache, user libraries, comments and
// user-authored recipes.
type Service struct {
	api      API
	recipes  *store.RecipeStore
	library  *store.LibraryStore
	comments *store.CommentStore
	created  *store.CreatedRecipeStore
	notifier Notifier
	images   Images
	logger   *slog.Logger
	now      func() time.Time
}

func New(api API, stores Stores, notifier Notifier, images Images, logger *slog.Logger) *Service {
	return &Service{
		api:      api,
		recipes:  stores.Recipes,
		library:  stores.Library,
		comments: stores.Comments,
		created:  stores.Created,
		notifier: notifier,
		images:   images,
		logger:   logger.With("component", "recipes"),
		now:      time.Now,
	}
}

func externalKey(id int64) string {
	return strconv.FormatInt(id, 10)
}

func fromInfo(info *spoonacular.RecipeInfo) model.Recipe {
	r := model.Recipe{
		RecipeID:     externalKey(info.ID),
		Title:        info.Title,
		ImageURL:     info.Image,
		Summary:      spoonacular.StripTags(info.Summary),
		Instructions: spoonacular.StripTags(info.Instructions),
	}
	if info.ReadyInMinutes > 0 {
		v := info.ReadyInMinutes
		r.ReadyInMinutes = &v
	}
	if info.Servings > 0 {
		v := info.Servings
		r.Servings = &v
	}
	for _, ing := range info.ExtendedIngredients {
		r.Ingredients = append(r.Ingredients, model.Ingredient{Original: ing.Original})
	}
	return r
}

func (s *Service) Search(ctx context.Context, query string) ([]spoonacular.SearchResult, error) {
	return s.api.Search(ctx, query, spoonacular.SearchLimit)
}

// Detail returns the cached copy of a recipe, fetching and caching it first
// if the local row is missing or holds only a title.
func (s *Service) Detail(ctx context.Context, id int64) (*model.Recipe, error) {
	r, err := s.recipes.GetByRecipeID(ctx, externalKey(id))
	if err != nil {
		return nil, err
	}
	if r != nil && r.IsCached {
		return r, nil
	}
	info, err := s.api.Information(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.recipes.Upsert(ctx, fromInfo(info))
}

// Random fetches a random recipe and caches it so it can be saved or shared.
func (s *Service) Random(ctx context.Context) (*model.Recipe, error) {
	info, err := s.api.Random(ctx)
	if err != nil {
		return nil, err
	}
	return s.recipes.Upsert(ctx, fromInfo(info))
}

// ensure returns the cached copy of an external recipe, fetching it from the
// API when the row is missing or not yet cached.
func (s *Service) ensure(ctx context.Context, id int64) (*model.Recipe, error) {
	return s.Detail(ctx, id)
}

// Save adds a recipe to the user's library and reports whether it was new.
func (s *Service) Save(ctx context.Context, userID, id int64) (bool, error) {
	r, err := s.ensure(ctx, id)
	if err != nil {
		return false, err
	}
	_, created, err := s.library.Save(ctx, userID, r.ID)
	return created, err
}

// Share puts a recipe on the public feed, adding it to the library if needed.
func (s *Service) Share(ctx context.Context, userID, id int64, message string, rating *int) (*model.UserRecipe, bool, error) {
	r, err := s.ensure(ctx, id)
	if err != nil {
		return nil, false, err
	}
	entry, created, err := s.library.Share(ctx, userID, r.ID, message, rating, s.now())
	if err != nil {
		return nil, false, err
	}
	s.notify(websocket.FeedShared, entry.Recipe, entry.Username)
	return entry, created, nil
}

// Unshare takes a recipe off the feed and keeps it in the library.
func (s *Service) Unshare(ctx context.Context, userID, id int64) error {
	r, err := s.recipes.GetByRecipeID(ctx, externalKey(id))
	if err != nil {
		return err
	}
	if r == nil {
		return store.ErrNotFound
	}
	if err := s.library.Unshare(ctx, userID, r.ID); err != nil {
		return err
	}
	s.notify(websocket.FeedUnshared, *r, "")
	return nil
}

// Unsave removes a recipe from the user's library.
func (s *Service) Unsave(ctx context.Context, userID, id int64) error {
	r, err := s.recipes.GetByRecipeID(ctx, externalKey(id))
	if err != nil {
		return err
	}
	if r == nil {
		return store.ErrNotFound
	}
	entry, err := s.library.Get(ctx, userID, r.ID)
	if err != nil {
		return err
	}
	if entry == nil {
		return store.ErrNotFound
	}
	if err := s.library.Remove(ctx, userID, r.RecipeID); err != nil {
		return err
	}
	if entry.IsShared {
		s.notify(websocket.FeedUnshared, *r, "")
	}
	return nil
}

func (s *Service) IsSaved(ctx context.Context, userID, id int64) (bool, error) {
	return s.library.IsSaved(ctx, userID, externalKey(id))
}

// Comment adds a comment with an optional rating to an external recipe.
func (s *Service) Comment(ctx context.Context, userID, id int64, text string, rating *int) (*model.RecipeComment, error) {
	r, err := s.ensure(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.comments.Create(ctx, r.ID, userID, text, rating)
}

func (s *Service) Comments(ctx context.Context, recipeRowID int64) ([]model.RecipeComment, error) {
	return s.comments.ListForRecipe(ctx, recipeRowID)
}

// Feed returns the public feed, most recently shared first.
func (s *Service) Feed(ctx context.Context) ([]model.UserRecipe, error) {
	return s.library.Feed(ctx, FeedLimit)
}

// Library returns a user's saved recipes and the recipes they authored.
func (s *Service) Library(ctx context.Context, userID int64) ([]model.UserRecipe, []model.CreatedRecipe, error) {
	saved, err := s.library.ListForUser(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	created, err := s.created.ListForCreator(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	return saved, created, nil
}

func (s *Service) notify(kind string, r model.Recipe, username string) {
	if s.notifier == nil {
		return
	}
	s.notifier.Broadcast(websocket.Message{
		Type:     kind,
		RecipeID: r.RecipeID,
		Title:    r.DisplayTitle(),
		Username: username,
		Link:     r.Link(),
	})
}

// IsNotFound reports whether err means the requested record does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound) || errors.Is(err, spoonacular.ErrNotFound)
}

// IsUpstream reports whether err came from the external recipe API.
func IsUpstream(err error) bool {
	return errors.Is(err, spoonacular.ErrUpstream)
}
