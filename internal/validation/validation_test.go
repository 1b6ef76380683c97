package validation

import (
	"errors"
	"testing"
)

type recipeForm struct {
	Title    string `form:"title" validate:"required,max=10"`
	Servings *int   `form:"servings" validate:"omitempty,min=1"`
	Username string `form:"username" validate:"omitempty,alphanum,min=3"`
}

func TestStructValid(t *testing.T) {
	four := 4
	if err := Struct(recipeForm{Title: "Soup", Servings: &four, Username: "alice"}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := Struct(recipeForm{Title: "Soup"}); err != nil {
		t.Errorf("optional fields: unexpected error: %v", err)
	}
}

func TestStructMessages(t *testing.T) {
	zero := 0
	tests := []struct {
		name string
		form recipeForm
		want string
	}{
		{"required", recipeForm{}, "Title is required"},
		{"max string", recipeForm{Title: "A very long title"}, "Title must be at most 10 characters"},
		{"min number", recipeForm{Title: "Soup", Servings: &zero}, "Servings must be at least 1"},
		{"alphanum", recipeForm{Title: "Soup", Username: "al ice"}, "Username may contain only letters and numbers"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(tt.form)
			var verrs Errors
			if !errors.As(err, &verrs) {
				t.Fatalf("err = %v, want Errors", err)
			}
			if len(verrs) != 1 || verrs[0].Message != tt.want {
				t.Errorf("messages = %+v, want %q", verrs, tt.want)
			}
		})
	}
}

func TestHumanize(t *testing.T) {
	if got := humanize("ready_in_minutes"); got != "Ready in minutes" {
		t.Errorf("humanize = %q", got)
	}
}
