package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Richardv10/food-blog/internal/model"
)

// LibraryStore persists user_recipes, the per-user library of saved and
// shared recipes. A (user, recipe) pair appears at most once.
type LibraryStore struct {
	db *sql.DB
}

func NewLibraryStore(db *sql.DB) *LibraryStore {
	return &LibraryStore{db: db}
}

const entryCols = `ur.id, ur.user_id, ur.recipe_id, ur.is_shared, ur.message, ur.rating, ur.created_at, ur.shared_at, u.username, ` + joinedRecipeCols

const entryFrom = ` FROM user_recipes ur
	JOIN users u ON u.id = ur.user_id
	JOIN recipes r ON r.id = ur.recipe_id`

func scanEntry(s scanner) (*model.UserRecipe, error) {
	var (
		e        model.UserRecipe
		message  sql.NullString
		rating   sql.NullInt64
		sharedAt sql.NullTime
		rr       recipeRow
	)
	dest := append([]any{
		&e.ID, &e.UserID, &e.RecipeID, &e.IsShared, &message, &rating, &e.CreatedAt, &sharedAt, &e.Username,
	}, rr.dest()...)
	if err := s.Scan(dest...); err != nil {
		return nil, err
	}
	e.Message = message.String
	e.Rating = intPtr(rating)
	e.SharedAt = timePtr(sharedAt)
	recipe, err := rr.recipe()
	if err != nil {
		return nil, err
	}
	e.Recipe = recipe
	return &e, nil
}

func (s *LibraryStore) queryEntries(ctx context.Context, where, order string, args ...any) ([]model.UserRecipe, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+entryCols+entryFrom+` WHERE `+where+` ORDER BY `+order, args...)
	if err != nil {
		return nil, fmt.Errorf("list library: %w", err)
	}
	defer rows.Close()

	var entries []model.UserRecipe
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan library entry: %w", err)
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

// Get returns the entry for (userID, recipeRowID), or nil.
func (s *LibraryStore) Get(ctx context.Context, userID, recipeRowID int64) (*model.UserRecipe, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+entryCols+entryFrom+` WHERE ur.user_id = ? AND ur.recipe_id = ?`,
		userID, recipeRowID,
	)
	e, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get library entry: %w", err)
	}
	return e, nil
}

// Save adds a recipe to the user's library. Saving an already saved recipe
// leaves the existing entry untouched; the bool reports whether one was created.
func (s *LibraryStore) Save(ctx context.Context, userID, recipeRowID int64) (*model.UserRecipe, bool, error) {
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO user_recipes (user_id, recipe_id) VALUES (?, ?)
		 ON CONFLICT(user_id, recipe_id) DO NOTHING`,
		userID, recipeRowID,
	)
	if err != nil {
		return nil, false, fmt.Errorf("insert library entry: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("rows affected: %w", err)
	}
	e, err := s.Get(ctx, userID, recipeRowID)
	if err != nil {
		return nil, false, err
	}
	return e, n == 1, nil
}

// Share marks the entry shared, creating it if needed. The message and
// shared_at are always replaced; an existing rating is kept when rating is nil.
func (s *LibraryStore) Share(ctx context.Context, userID, recipeRowID int64, message string, rating *int, at time.Time) (*model.UserRecipe, bool, error) {
	if err := checkRating(rating); err != nil {
		return nil, false, err
	}

	existing, err := s.Get(ctx, userID, recipeRowID)
	if err != nil {
		return nil, false, err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO user_recipes (user_id, recipe_id, is_shared, message, rating, shared_at)
		 VALUES (?, ?, 1, ?, ?, ?)
		 ON CONFLICT(user_id, recipe_id) DO UPDATE SET
		   is_shared = 1,
		   message = excluded.message,
		   shared_at = excluded.shared_at,
		   rating = COALESCE(excluded.rating, user_recipes.rating)`,
		userID, recipeRowID, nullString(message), nullInt(rating), at.UTC(),
	)
	if err != nil {
		return nil, false, fmt.Errorf("share library entry: %w", err)
	}

	e, err := s.Get(ctx, userID, recipeRowID)
	if err != nil {
		return nil, false, err
	}
	return e, existing == nil, nil
}

// Unshare removes the entry from the public feed but keeps it in the library.
func (s *LibraryStore) Unshare(ctx context.Context, userID, recipeRowID int64) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE user_recipes SET is_shared = 0, shared_at = NULL WHERE user_id = ? AND recipe_id = ?`,
		userID, recipeRowID,
	)
	if err != nil {
		return fmt.Errorf("unshare library entry: %w", err)
	}
	return requireAffected(result)
}

// SetRating updates the rating on an existing entry.
func (s *LibraryStore) SetRating(ctx context.Context, userID, recipeRowID int64, rating *int) error {
	if err := checkRating(rating); err != nil {
		return err
	}
	result, err := s.db.ExecContext(ctx,
		`UPDATE user_recipes SET rating = ? WHERE user_id = ? AND recipe_id = ?`,
		nullInt(rating), userID, recipeRowID,
	)
	if err != nil {
		return fmt.Errorf("set rating: %w", err)
	}
	return requireAffected(result)
}

// Remove deletes the user's entry for the recipe with the given external id.
func (s *LibraryStore) Remove(ctx context.Context, userID int64, externalID string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM user_recipes
		 WHERE user_id = ? AND recipe_id = (SELECT id FROM recipes WHERE recipe_id = ?)`,
		userID, externalID,
	)
	if err != nil {
		return fmt.Errorf("remove library entry: %w", err)
	}
	return requireAffected(result)
}

// IsSaved reports whether the user has the recipe with the given external id.
func (s *LibraryStore) IsSaved(ctx context.Context, userID int64, externalID string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (
		   SELECT 1 FROM user_recipes ur JOIN recipes r ON r.id = ur.recipe_id
		   WHERE ur.user_id = ? AND r.recipe_id = ?
		 )`,
		userID, externalID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check saved: %w", err)
	}
	return exists, nil
}

// ListForUser returns the user's saved API recipes, newest first. Mirror rows
// of the user's own created recipes are listed with the created recipes instead.
func (s *LibraryStore) ListForUser(ctx context.Context, userID int64) ([]model.UserRecipe, error) {
	return s.queryEntries(ctx,
		`ur.user_id = ? AND r.recipe_id NOT LIKE ? ESCAPE '\'`,
		`ur.created_at DESC, ur.id DESC`,
		userID, likePrefix(model.CreatedRecipePrefix),
	)
}

// Feed returns shared entries from all users, most recently shared first.
func (s *LibraryStore) Feed(ctx context.Context, limit int) ([]model.UserRecipe, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.queryEntries(ctx,
		`ur.is_shared = 1`,
		`ur.shared_at DESC, ur.id DESC LIMIT ?`,
		limit,
	)
}

// AdminList returns entries whose username or recipe title contains query,
// optionally filtered by shared status.
func (s *LibraryStore) AdminList(ctx context.Context, query string, shared *bool) ([]model.UserRecipe, error) {
	pattern := likePattern(query)
	var sharedFilter sql.NullBool
	if shared != nil {
		sharedFilter = sql.NullBool{Bool: *shared, Valid: true}
	}
	return s.queryEntries(ctx,
		`(? = '' OR u.username LIKE ? ESCAPE '\' OR r.title LIKE ? ESCAPE '\')
		 AND (? IS NULL OR ur.is_shared = ?)`,
		`ur.created_at DESC, ur.id DESC LIMIT 500`,
		query, pattern, pattern, sharedFilter, sharedFilter,
	)
}

func likePrefix(prefix string) string {
	p := likePattern(prefix)
	return p[1:]
}
