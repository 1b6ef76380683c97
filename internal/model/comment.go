package model

import "time"

type RecipeComment struct {
	ID        int64     `json:"id"`
	RecipeID  int64     `json:"recipe_id"`
	UserID    int64     `json:"user_id"`
	Comment   string    `json:"comment"`
	Rating    *int      `json:"rating"`
	CreatedAt time.Time `json:"created_at"`

	Username    string `json:"username"`
	RecipeTitle string `json:"recipe_title"`
}
