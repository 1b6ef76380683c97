package store

import (
	"context"
	"testing"

	"github.com/Richardv10/food-blog/internal/model"
)

func TestRecipeUpsert(t *testing.T) {
	rs := NewRecipeStore(setupTestDB(t))
	ctx := context.Background()

	stub, err := rs.Upsert(ctx, model.Recipe{RecipeID: "42", Title: "Stub"})
	if err != nil {
		t.Fatalf("upsert stub: %v", err)
	}

	r, err := rs.Upsert(ctx, model.Recipe{
		RecipeID:       "42",
		Title:          "Soup",
		ImageURL:       "https://spoonacular.com/recipeImages/42-312x231.jpg",
		Summary:        "Warm",
		Instructions:   "Boil\nServe",
		Ingredients:    []model.Ingredient{{Original: "1 onion"}, {Original: "2 cups water"}},
		ReadyInMinutes: intp(20),
		Servings:       intp(4),
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if r.ID != stub.ID {
		t.Errorf("id = %d, want existing row %d", r.ID, stub.ID)
	}
	if !r.IsCached {
		t.Error("expected cached flag after upsert")
	}
	if len(r.Ingredients) != 2 || r.Ingredients[1].Original != "2 cups water" {
		t.Errorf("ingredients = %+v", r.Ingredients)
	}
	if r.ReadyInMinutes == nil || *r.ReadyInMinutes != 20 {
		t.Errorf("ready_in_minutes = %v, want 20", r.ReadyInMinutes)
	}

	r, err = rs.Upsert(ctx, model.Recipe{RecipeID: "42", Title: "Better Soup"})
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if r.Title != "Better Soup" || r.Servings != nil || len(r.Ingredients) != 0 {
		t.Errorf("got %+v after overwrite", r)
	}
}

func TestRecipeGetByRecipeIDNotFound(t *testing.T) {
	rs := NewRecipeStore(setupTestDB(t))

	r, err := rs.GetByRecipeID(context.Background(), "missing")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if r != nil {
		t.Error("expected nil for missing recipe")
	}
}

func TestRecipeSearch(t *testing.T) {
	db := setupTestDB(t)
	rs := NewRecipeStore(db)
	ctx := context.Background()

	createTestRecipe(t, db, "1", "Tomato Soup")
	createTestRecipe(t, db, "2", "Green Salad")
	createTestRecipe(t, db, "31", "Bread")

	got, err := rs.Search(ctx, "soup", 0)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 1 || got[0].RecipeID != "1" {
		t.Errorf("search soup = %+v", got)
	}

	got, _ = rs.Search(ctx, "3", 0)
	if len(got) != 1 || got[0].Title != "Bread" {
		t.Errorf("search by recipe id = %+v", got)
	}

	got, _ = rs.Search(ctx, "", 0)
	if len(got) != 3 {
		t.Errorf("empty query returned %d rows, want 3", len(got))
	}
}

func TestRecipeDelete(t *testing.T) {
	db := setupTestDB(t)
	rs := NewRecipeStore(db)
	ls := NewLibraryStore(db)
	ctx := context.Background()

	u := createTestUser(t, db, "alice")
	r := createTestRecipe(t, db, model.CreatedRecipeKey(7), "Mine")
	ls.Save(ctx, u.ID, r.ID)

	if err := rs.Delete(ctx, r.RecipeID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got, _ := rs.GetByRecipeID(ctx, r.RecipeID); got != nil {
		t.Error("expected recipe to be gone")
	}
	if got, _ := ls.Get(ctx, u.ID, r.ID); got != nil {
		t.Error("expected library entry to cascade")
	}
}
