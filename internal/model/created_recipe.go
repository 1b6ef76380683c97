package model

import "time"

// PlaceholderImage is stored when a created recipe has no uploaded image.
const PlaceholderImage = "placeholder"

// CreatedRecipe is a recipe authored by a user, independent of the external API.
type CreatedRecipe struct {
	ID             int64      `json:"id"`
	CreatorID      int64      `json:"creator_id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Ingredients    string     `json:"ingredients"`
	Instructions   string     `json:"instructions"`
	ReadyInMinutes *int       `json:"ready_in_minutes"`
	Servings       *int       `json:"servings"`
	FeaturedImage  string     `json:"featured_image"`
	IsShared       bool       `json:"is_shared"`
	SharedMessage  string     `json:"shared_message"`
	SharedAt       *time.Time `json:"shared_at"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	CreatorUsername string `json:"creator_username"`
}

// IngredientsList returns one ingredient per non-empty line.
func (c CreatedRecipe) IngredientsList() []string {
	return splitLines(c.Ingredients)
}

// InstructionsList returns one step per non-empty line.
func (c CreatedRecipe) InstructionsList() []string {
	return splitLines(c.Instructions)
}

// HasImage reports whether an image was uploaded.
func (c CreatedRecipe) HasImage() bool {
	return c.FeaturedImage != "" && c.FeaturedImage != PlaceholderImage
}
