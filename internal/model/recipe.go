package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// CreatedRecipePrefix marks recipe cache rows that mirror a user-authored
// recipe rather than an external API recipe.
const CreatedRecipePrefix = "created_"

// Ingredient is one line of an ingredient list, in the API's "original" form.
type Ingredient struct {
	Original string `json:"original"`
}

// Recipe is a locally cached copy of recipe data keyed by external id.
type Recipe struct {
	ID             int64        `json:"id"`
	RecipeID       string       `json:"recipe_id"`
	Title          string       `json:"title"`
	ImageURL       string       `json:"image_url"`
	Summary        string       `json:"summary"`
	Instructions   string       `json:"instructions"`
	Ingredients    []Ingredient `json:"ingredients"`
	ReadyInMinutes *int         `json:"ready_in_minutes"`
	Servings       *int         `json:"servings"`
	IsCached       bool         `json:"is_cached"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// DisplayTitle returns the title, falling back to "Recipe <id>".
func (r Recipe) DisplayTitle() string {
	if r.Title != "" {
		return r.Title
	}
	return fmt.Sprintf("Recipe %s", r.RecipeID)
}

// CreatedRecipeID reports the created recipe id this row mirrors, if any.
func (r Recipe) CreatedRecipeID() (int64, bool) {
	rest, ok := strings.CutPrefix(r.RecipeID, CreatedRecipePrefix)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// Link returns the public page for the recipe.
func (r Recipe) Link() string {
	if id, ok := r.CreatedRecipeID(); ok {
		return fmt.Sprintf("/community/%d", id)
	}
	return "/recipes/" + r.RecipeID
}

// InstructionSteps splits cached instructions into non-empty lines.
func (r Recipe) InstructionSteps() []string {
	return splitLines(r.Instructions)
}

// CreatedRecipeKey returns the recipe cache key used to mirror a created recipe.
func CreatedRecipeKey(createdID int64) string {
	return CreatedRecipePrefix + strconv.FormatInt(createdID, 10)
}

func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
