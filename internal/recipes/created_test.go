package recipes

import (
	"context"
	"testing"

	"github.com/Richardv10/food-blog/internal/model"
	"github.com/Richardv10/food-blog/internal/websocket"
)

func (f *fixture) createdRecipe(t *testing.T, creatorID int64) *model.CreatedRecipe {
	t.Helper()
	c, err := f.svc.CreateRecipe(context.Background(), model.CreatedRecipe{
		CreatorID:     creatorID,
		Title:         "Grandma's Pie",
		Description:   "Flaky",
		Ingredients:   "flour\n\nbutter\n",
		Instructions:  "Mix\r\nBake",
		FeaturedImage: "recipes/pie.jpg",
	})
	if err != nil {
		t.Fatalf("create recipe: %v", err)
	}
	return c
}

func TestCreatedRecipeNotInFeedUntilShared(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	u := f.user(t, "alice")
	c := f.createdRecipe(t, u.ID)

	feed, _ := f.svc.Feed(ctx)
	if len(feed) != 0 {
		t.Fatalf("feed = %d entries before sharing, want 0", len(feed))
	}
	if _, err := f.svc.PublicRecipe(ctx, c.ID); !IsNotFound(err) {
		t.Errorf("public view before sharing: err = %v, want not found", err)
	}

	if err := f.svc.ShareCreated(ctx, c.ID, u.ID, "family recipe"); err != nil {
		t.Fatalf("share created: %v", err)
	}

	feed, _ = f.svc.Feed(ctx)
	if len(feed) != 1 {
		t.Fatalf("feed = %d entries after sharing, want 1", len(feed))
	}
	item := feed[0]
	if item.Recipe.RecipeID != model.CreatedRecipeKey(c.ID) || item.Message != "family recipe" {
		t.Errorf("feed item = %+v", item)
	}
	if item.Recipe.Link() != "/community/1" {
		t.Errorf("link = %q", item.Recipe.Link())
	}
	if item.Recipe.ImageURL != "https://cdn.test/recipes/pie.jpg" {
		t.Errorf("image = %q", item.Recipe.ImageURL)
	}
	if len(item.Recipe.Ingredients) != 2 {
		t.Errorf("ingredients = %+v", item.Recipe.Ingredients)
	}

	pub, err := f.svc.PublicRecipe(ctx, c.ID)
	if err != nil || pub.SharedMessage != "family recipe" {
		t.Errorf("public recipe = %+v, err = %v", pub, err)
	}

	// Mirror rows stay out of the saved list.
	saved, created, _ := f.svc.Library(ctx, u.ID)
	if len(saved) != 0 || len(created) != 1 {
		t.Errorf("library = %d saved, %d created; want 0, 1", len(saved), len(created))
	}
}

func TestUnshareCreatedRemovesFromFeed(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	u := f.user(t, "alice")
	c := f.createdRecipe(t, u.ID)

	f.svc.ShareCreated(ctx, c.ID, u.ID, "")
	if err := f.svc.UnshareCreated(ctx, c.ID, u.ID); err != nil {
		t.Fatalf("unshare created: %v", err)
	}

	feed, _ := f.svc.Feed(ctx)
	if len(feed) != 0 {
		t.Errorf("feed = %d entries, want 0", len(feed))
	}
	got, _ := f.svc.OwnedRecipe(ctx, c.ID, u.ID)
	if got.IsShared {
		t.Error("expected created recipe to be unshared")
	}

	last := f.notifier.messages[len(f.notifier.messages)-1]
	if last.Type != websocket.FeedUnshared {
		t.Errorf("last message = %+v", last)
	}
}

func TestCreatedRecipeOwnerOnly(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	c := f.createdRecipe(t, alice.ID)

	if err := f.svc.ShareCreated(ctx, c.ID, bob.ID, ""); !IsNotFound(err) {
		t.Errorf("share by non-owner: err = %v, want not found", err)
	}
	if err := f.svc.DeleteCreated(ctx, c.ID, bob.ID); !IsNotFound(err) {
		t.Errorf("delete by non-owner: err = %v, want not found", err)
	}
}

func TestUpdateSharedCreatedRefreshesFeed(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	u := f.user(t, "alice")
	c := f.createdRecipe(t, u.ID)
	f.svc.ShareCreated(ctx, c.ID, u.ID, "")

	edit := *c
	edit.Title = "Better Pie"
	edit.FeaturedImage = "recipes/new.jpg"
	if _, err := f.svc.UpdateCreated(ctx, edit); err != nil {
		t.Fatalf("update: %v", err)
	}

	feed, _ := f.svc.Feed(ctx)
	if len(feed) != 1 || feed[0].Recipe.Title != "Better Pie" {
		t.Errorf("feed = %+v", feed)
	}
	if len(f.images.deleted) != 1 || f.images.deleted[0] != "recipes/pie.jpg" {
		t.Errorf("deleted images = %v", f.images.deleted)
	}
}

func TestDeleteCreatedRemovesMirror(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	u := f.user(t, "alice")
	c := f.createdRecipe(t, u.ID)
	f.svc.ShareCreated(ctx, c.ID, u.ID, "")

	if err := f.svc.DeleteCreated(ctx, c.ID, u.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	feed, _ := f.svc.Feed(ctx)
	if len(feed) != 0 {
		t.Errorf("feed = %d entries, want 0", len(feed))
	}
	mirror, _ := f.stores.Recipes.GetByRecipeID(ctx, model.CreatedRecipeKey(c.ID))
	if mirror != nil {
		t.Error("expected mirror row to be deleted")
	}
	if len(f.images.deleted) != 1 {
		t.Errorf("deleted images = %v", f.images.deleted)
	}
}
