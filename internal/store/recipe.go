package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/Richardv10/food-blog/internal/model"
)

// RecipeStore persists recipe cache rows keyed by external recipe id.
type RecipeStore struct {
	db *sql.DB
}

func NewRecipeStore(db *sql.DB) *RecipeStore {
	return &RecipeStore{db: db}
}

// Upsert writes the full cached copy of a recipe and marks it cached.
func (s *RecipeStore) Upsert(ctx context.Context, r model.Recipe) (*model.Recipe, error) {
	ingredients := r.Ingredients
	if ingredients == nil {
		ingredients = []model.Ingredient{}
	}
	encoded, err := json.Marshal(ingredients)
	if err != nil {
		return nil, fmt.Errorf("encode ingredients: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO recipes (recipe_id, title, image_url, summary, instructions, ingredients, ready_in_minutes, servings, is_cached)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, 1)
		 ON CONFLICT(recipe_id) DO UPDATE SET
		   title = excluded.title,
		   image_url = excluded.image_url,
		   summary = excluded.summary,
		   instructions = excluded.instructions,
		   ingredients = excluded.ingredients,
		   ready_in_minutes = excluded.ready_in_minutes,
		   servings = excluded.servings,
		   is_cached = 1,
		   updated_at = CURRENT_TIMESTAMP`,
		r.RecipeID, r.Title, r.ImageURL, r.Summary, r.Instructions, string(encoded),
		nullInt(r.ReadyInMinutes), nullInt(r.Servings),
	)
	if err != nil {
		return nil, fmt.Errorf("upsert recipe: %w", err)
	}
	return s.GetByRecipeID(ctx, r.RecipeID)
}

func (s *RecipeStore) GetByRecipeID(ctx context.Context, recipeID string) (*model.Recipe, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+recipeCols+` FROM recipes WHERE recipe_id = ?`, recipeID)
	r, err := scanRecipe(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get recipe: %w", err)
	}
	return r, nil
}

// Delete removes the row for recipeID. Library entries and comments on it
// cascade. Deleting a missing row is not an error.
func (s *RecipeStore) Delete(ctx context.Context, recipeID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM recipes WHERE recipe_id = ?`, recipeID)
	if err != nil {
		return fmt.Errorf("delete recipe: %w", err)
	}
	return nil
}

// Search matches query against recipe_id and title, newest first.
func (s *RecipeStore) Search(ctx context.Context, query string, limit int) ([]model.Recipe, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	pattern := likePattern(query)
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+recipeCols+` FROM recipes
		 WHERE ? = '' OR recipe_id LIKE ? ESCAPE '\' OR title LIKE ? ESCAPE '\'
		 ORDER BY id DESC
		 LIMIT ?`,
		query, pattern, pattern, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("search recipes: %w", err)
	}
	defer rows.Close()

	var recipes []model.Recipe
	for rows.Next() {
		r, err := scanRecipe(rows)
		if err != nil {
			return nil, fmt.Errorf("scan recipe: %w", err)
		}
		recipes = append(recipes, *r)
	}
	return recipes, rows.Err()
}
