package store

import "errors"

var (
	// ErrNotFound is returned by mutations that match no row.
	ErrNotFound = errors.New("not found")
	// ErrInvalidRating is returned when a rating falls outside 0-5.
	ErrInvalidRating = errors.New("rating must be between 0 and 5")
)

const (
	MinRating = 0
	MaxRating = 5
)

func checkRating(rating *int) error {
	if rating != nil && (*rating < MinRating || *rating > MaxRating) {
		return ErrInvalidRating
	}
	return nil
}
