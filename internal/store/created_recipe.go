package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Richardv10/food-blog/internal/model"
)

// CreatedRecipeStore persists recipes authored by users.
type CreatedRecipeStore struct {
	db *sql.DB
}

func NewCreatedRecipeStore(db *sql.DB) *CreatedRecipeStore {
	return &CreatedRecipeStore{db: db}
}

const createdCols = `c.id, c.creator_id, c.title, c.description, c.ingredients, c.instructions,
	c.ready_in_minutes, c.servings, c.featured_image, c.is_shared, c.shared_message, c.shared_at,
	c.created_at, c.updated_at, u.username`

const createdFrom = ` FROM created_recipes c JOIN users u ON u.id = c.creator_id`

func scanCreated(s scanner) (*model.CreatedRecipe, error) {
	var (
		c             model.CreatedRecipe
		description   sql.NullString
		ready         sql.NullInt64
		servings      sql.NullInt64
		sharedMessage sql.NullString
		sharedAt      sql.NullTime
	)
	err := s.Scan(&c.ID, &c.CreatorID, &c.Title, &description, &c.Ingredients, &c.Instructions,
		&ready, &servings, &c.FeaturedImage, &c.IsShared, &sharedMessage, &sharedAt,
		&c.CreatedAt, &c.UpdatedAt, &c.CreatorUsername)
	if err != nil {
		return nil, err
	}
	c.Description = description.String
	c.ReadyInMinutes = intPtr(ready)
	c.Servings = intPtr(servings)
	c.SharedMessage = sharedMessage.String
	c.SharedAt = timePtr(sharedAt)
	return &c, nil
}

func (s *CreatedRecipeStore) get(ctx context.Context, where string, args ...any) (*model.CreatedRecipe, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+createdCols+createdFrom+` WHERE `+where, args...)
	c, err := scanCreated(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get created recipe: %w", err)
	}
	return c, nil
}

func (s *CreatedRecipeStore) list(ctx context.Context, where string, args ...any) ([]model.CreatedRecipe, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+createdCols+createdFrom+` WHERE `+where+` ORDER BY c.created_at DESC, c.id DESC LIMIT 500`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("list created recipes: %w", err)
	}
	defer rows.Close()

	var recipes []model.CreatedRecipe
	for rows.Next() {
		c, err := scanCreated(rows)
		if err != nil {
			return nil, fmt.Errorf("scan created recipe: %w", err)
		}
		recipes = append(recipes, *c)
	}
	return recipes, rows.Err()
}

// Create inserts a recipe owned by c.CreatorID. An empty FeaturedImage is
// stored as the placeholder.
func (s *CreatedRecipeStore) Create(ctx context.Context, c model.CreatedRecipe) (*model.CreatedRecipe, error) {
	image := c.FeaturedImage
	if image == "" {
		image = model.PlaceholderImage
	}
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO created_recipes (creator_id, title, description, ingredients, instructions, ready_in_minutes, servings, featured_image)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.CreatorID, c.Title, nullString(c.Description), c.Ingredients, c.Instructions,
		nullInt(c.ReadyInMinutes), nullInt(c.Servings), image,
	)
	if err != nil {
		return nil, fmt.Errorf("insert created recipe: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *CreatedRecipeStore) GetByID(ctx context.Context, id int64) (*model.CreatedRecipe, error) {
	return s.get(ctx, `c.id = ?`, id)
}

// GetForCreator returns the recipe only if creatorID owns it.
func (s *CreatedRecipeStore) GetForCreator(ctx context.Context, id, creatorID int64) (*model.CreatedRecipe, error) {
	return s.get(ctx, `c.id = ? AND c.creator_id = ?`, id, creatorID)
}

// GetShared returns the recipe only if it is currently shared.
func (s *CreatedRecipeStore) GetShared(ctx context.Context, id int64) (*model.CreatedRecipe, error) {
	return s.get(ctx, `c.id = ? AND c.is_shared = 1`, id)
}

// Update rewrites the editable fields of a recipe owned by c.CreatorID.
// An empty FeaturedImage keeps the current image.
func (s *CreatedRecipeStore) Update(ctx context.Context, c model.CreatedRecipe) (*model.CreatedRecipe, error) {
	result, err := s.db.ExecContext(ctx,
		`UPDATE created_recipes SET
		   title = ?, description = ?, ingredients = ?, instructions = ?,
		   ready_in_minutes = ?, servings = ?,
		   featured_image = COALESCE(NULLIF(?, ''), featured_image),
		   updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND creator_id = ?`,
		c.Title, nullString(c.Description), c.Ingredients, c.Instructions,
		nullInt(c.ReadyInMinutes), nullInt(c.Servings), c.FeaturedImage,
		c.ID, c.CreatorID,
	)
	if err != nil {
		return nil, fmt.Errorf("update created recipe: %w", err)
	}
	if err := requireAffected(result); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, c.ID)
}

func (s *CreatedRecipeStore) Delete(ctx context.Context, id, creatorID int64) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM created_recipes WHERE id = ? AND creator_id = ?`, id, creatorID,
	)
	if err != nil {
		return fmt.Errorf("delete created recipe: %w", err)
	}
	return requireAffected(result)
}

// ListForCreator returns the creator's recipes, newest first.
func (s *CreatedRecipeStore) ListForCreator(ctx context.Context, creatorID int64) ([]model.CreatedRecipe, error) {
	return s.list(ctx, `c.creator_id = ?`, creatorID)
}

// SetShared marks the recipe shared with message. The first share time is
// kept across re-shares.
func (s *CreatedRecipeStore) SetShared(ctx context.Context, id int64, message string, at time.Time) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE created_recipes SET
		   is_shared = 1, shared_message = ?, shared_at = COALESCE(shared_at, ?),
		   updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		nullString(message), at.UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("share created recipe: %w", err)
	}
	return requireAffected(result)
}

func (s *CreatedRecipeStore) ClearShared(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE created_recipes SET is_shared = 0, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, id,
	)
	if err != nil {
		return fmt.Errorf("unshare created recipe: %w", err)
	}
	return requireAffected(result)
}

// AdminList searches title and creator username. A zero creatorID matches
// every creator.
func (s *CreatedRecipeStore) AdminList(ctx context.Context, query string, creatorID int64) ([]model.CreatedRecipe, error) {
	pattern := likePattern(query)
	return s.list(ctx,
		`(? = '' OR c.title LIKE ? ESCAPE '\' OR u.username LIKE ? ESCAPE '\')
		 AND (? = 0 OR c.creator_id = ?)`,
		query, pattern, pattern, creatorID, creatorID,
	)
}
