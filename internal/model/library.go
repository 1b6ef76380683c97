package model

import "time"

// UserRecipe is a library entry: a user's saved or shared association with a recipe.
type UserRecipe struct {
	ID        int64      `json:"id"`
	UserID    int64      `json:"user_id"`
	RecipeID  int64      `json:"recipe_id"`
	IsShared  bool       `json:"is_shared"`
	Message   string     `json:"message"`
	Rating    *int       `json:"rating"`
	CreatedAt time.Time  `json:"created_at"`
	SharedAt  *time.Time `json:"shared_at"`

	Username string `json:"username"`
	Recipe   Recipe `json:"recipe"`
}

// Status returns "shared" or "saved".
func (ur UserRecipe) Status() string {
	if ur.IsShared {
		return "shared"
	}
	return "saved"
}
