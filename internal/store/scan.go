package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Richardv10/food-blog/internal/model"
)

type scanner interface{ Scan(...any) error }

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	return &t.Time
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// likePattern wraps q for a case-insensitive substring LIKE match.
func likePattern(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(q) + "%"
}

const recipeCols = `id, recipe_id, title, image_url, summary, instructions, ingredients, ready_in_minutes, servings, is_cached, created_at, updated_at`

// joinedRecipeCols is recipeCols qualified by the "r" table alias.
const joinedRecipeCols = `r.id, r.recipe_id, r.title, r.image_url, r.summary, r.instructions, r.ingredients, r.ready_in_minutes, r.servings, r.is_cached, r.created_at, r.updated_at`

// recipeRow holds the scan destinations for a recipes row.
type recipeRow struct {
	r           model.Recipe
	ingredients string
	ready       sql.NullInt64
	servings    sql.NullInt64
}

func (rr *recipeRow) dest() []any {
	return []any{
		&rr.r.ID, &rr.r.RecipeID, &rr.r.Title, &rr.r.ImageURL, &rr.r.Summary, &rr.r.Instructions,
		&rr.ingredients, &rr.ready, &rr.servings, &rr.r.IsCached, &rr.r.CreatedAt, &rr.r.UpdatedAt,
	}
}

func (rr *recipeRow) recipe() (model.Recipe, error) {
	r := rr.r
	r.ReadyInMinutes = intPtr(rr.ready)
	r.Servings = intPtr(rr.servings)
	if rr.ingredients != "" {
		if err := json.Unmarshal([]byte(rr.ingredients), &r.Ingredients); err != nil {
			return model.Recipe{}, fmt.Errorf("decode ingredients: %w", err)
		}
	}
	return r, nil
}

func scanRecipe(s scanner) (*model.Recipe, error) {
	var rr recipeRow
	if err := s.Scan(rr.dest()...); err != nil {
		return nil, err
	}
	r, err := rr.recipe()
	if err != nil {
		return nil, err
	}
	return &r, nil
}
