package recipes

import (
	"context"
	"errors"
	"fmt"

	"github.com/Richardv10/food-blog/internal/model"
	"github.com/Richardv10/food-blog/internal/store"
	"github.com/Richardv10/food-blog/internal/websocket"
)

// mirrorOf builds the recipe cache row that represents a created recipe in the feed.
func (s *Service) mirrorOf(c *model.CreatedRecipe) model.Recipe {
	r := model.Recipe{
		RecipeID:       model.CreatedRecipeKey(c.ID),
		Title:          c.Title,
		Summary:        c.Description,
		Instructions:   c.Instructions,
		ReadyInMinutes: c.ReadyInMinutes,
		Servings:       c.Servings,
	}
	if c.HasImage() && s.images != nil {
		r.ImageURL = s.images.URL(c.FeaturedImage)
	}
	for _, line := range c.IngredientsList() {
		r.Ingredients = append(r.Ingredients, model.Ingredient{Original: line})
	}
	return r
}

func (s *Service) CreateRecipe(ctx context.Context, c model.CreatedRecipe) (*model.CreatedRecipe, error) {
	return s.created.Create(ctx, c)
}

// OwnedRecipe returns a created recipe if userID is its creator, else store.ErrNotFound.
func (s *Service) OwnedRecipe(ctx context.Context, id, userID int64) (*model.CreatedRecipe, error) {
	c, err := s.created.GetForCreator(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, store.ErrNotFound
	}
	return c, nil
}

// PublicRecipe returns a created recipe only while it is shared.
func (s *Service) PublicRecipe(ctx context.Context, id int64) (*model.CreatedRecipe, error) {
	c, err := s.created.GetShared(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, store.ErrNotFound
	}
	return c, nil
}

// UpdateCreated saves edits. A replaced image is deleted from storage, and a
// shared recipe has its feed copy refreshed.
func (s *Service) UpdateCreated(ctx context.Context, c model.CreatedRecipe) (*model.CreatedRecipe, error) {
	before, err := s.OwnedRecipe(ctx, c.ID, c.CreatorID)
	if err != nil {
		return nil, err
	}
	updated, err := s.created.Update(ctx, c)
	if err != nil {
		return nil, err
	}
	if before.FeaturedImage != updated.FeaturedImage {
		s.deleteImage(ctx, before.FeaturedImage)
	}
	if updated.IsShared {
		if _, err := s.recipes.Upsert(ctx, s.mirrorOf(updated)); err != nil {
			return nil, fmt.Errorf("refresh feed copy: %w", err)
		}
	}
	return updated, nil
}

// DeleteCreated deletes a created recipe, its feed copy and its image.
func (s *Service) DeleteCreated(ctx context.Context, id, userID int64) error {
	c, err := s.OwnedRecipe(ctx, id, userID)
	if err != nil {
		return err
	}
	if err := s.created.Delete(ctx, id, userID); err != nil {
		return err
	}
	if err := s.recipes.Delete(ctx, model.CreatedRecipeKey(id)); err != nil {
		return fmt.Errorf("delete feed copy: %w", err)
	}
	s.deleteImage(ctx, c.FeaturedImage)
	if c.IsShared {
		s.notify(websocket.FeedUnshared, s.mirrorOf(c), c.CreatorUsername)
	}
	return nil
}

// ShareCreated mirrors a created recipe into the feed as a recipe cache row
// plus the creator's shared library entry.
func (s *Service) ShareCreated(ctx context.Context, id, userID int64, message string) error {
	c, err := s.OwnedRecipe(ctx, id, userID)
	if err != nil {
		return err
	}
	mirror, err := s.recipes.Upsert(ctx, s.mirrorOf(c))
	if err != nil {
		return fmt.Errorf("write feed copy: %w", err)
	}
	now := s.now()
	entry, _, err := s.library.Share(ctx, userID, mirror.ID, message, nil, now)
	if err != nil {
		return err
	}
	if err := s.created.SetShared(ctx, id, message, now); err != nil {
		return err
	}
	s.notify(websocket.FeedShared, entry.Recipe, entry.Username)
	return nil
}

// UnshareCreated takes a created recipe off the feed.
func (s *Service) UnshareCreated(ctx context.Context, id, userID int64) error {
	c, err := s.OwnedRecipe(ctx, id, userID)
	if err != nil {
		return err
	}
	if err := s.created.ClearShared(ctx, id); err != nil {
		return err
	}
	mirror, err := s.recipes.GetByRecipeID(ctx, model.CreatedRecipeKey(id))
	if err != nil {
		return err
	}
	if mirror != nil {
		if err := s.library.Unshare(ctx, userID, mirror.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}
	}
	s.notify(websocket.FeedUnshared, s.mirrorOf(c), c.CreatorUsername)
	return nil
}

func (s *Service) deleteImage(ctx context.Context, key string) {
	if s.images == nil || key == "" || key == model.PlaceholderImage {
		return
	}
	if err := s.images.Delete(ctx, key); err != nil {
		s.logger.Warn("delete image failed", "key", key, "error", err)
	}
}
