package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/Richardv10/food-blog/internal/database"
	"github.com/Richardv10/food-blog/internal/model"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestUser(t *testing.T, db *sql.DB, username string) *model.User {
	t.Helper()
	u, err := NewUserStore(db).Create(context.Background(), username, "hash", false)
	if err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return u
}

func createTestRecipe(t *testing.T, db *sql.DB, recipeID, title string) *model.Recipe {
	t.Helper()
	r, err := NewRecipeStore(db).Upsert(context.Background(), model.Recipe{RecipeID: recipeID, Title: title})
	if err != nil {
		t.Fatalf("create recipe %s: %v", recipeID, err)
	}
	return r
}

func intp(v int) *int { return &v }
