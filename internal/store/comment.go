package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Richardv10/food-blog/internal/model"
)

type CommentStore struct {
	db *sql.DB
}

func NewCommentStore(db *sql.DB) *CommentStore {
	return &CommentStore{db: db}
}

const commentCols = `c.id, c.recipe_id, c.user_id, c.comment, c.rating, c.created_at, u.username, r.title`

const commentFrom = ` FROM recipe_comments c
	JOIN users u ON u.id = c.user_id
	JOIN recipes r ON r.id = c.recipe_id`

func scanComment(s scanner) (*model.RecipeComment, error) {
	var (
		c      model.RecipeComment
		rating sql.NullInt64
	)
	err := s.Scan(&c.ID, &c.RecipeID, &c.UserID, &c.Comment, &rating, &c.CreatedAt, &c.Username, &c.RecipeTitle)
	if err != nil {
		return nil, err
	}
	c.Rating = intPtr(rating)
	return &c, nil
}

// Create appends a comment to a recipe. The rating is optional.
func (s *CommentStore) Create(ctx context.Context, recipeRowID, userID int64, text string, rating *int) (*model.RecipeComment, error) {
	if err := checkRating(rating); err != nil {
		return nil, err
	}
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO recipe_comments (recipe_id, user_id, comment, rating) VALUES (?, ?, ?, ?)`,
		recipeRowID, userID, text, nullInt(rating),
	)
	if err != nil {
		return nil, fmt.Errorf("insert comment: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *CommentStore) GetByID(ctx context.Context, id int64) (*model.RecipeComment, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+commentCols+commentFrom+` WHERE c.id = ?`, id)
	c, err := scanComment(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get comment: %w", err)
	}
	return c, nil
}

func (s *CommentStore) list(ctx context.Context, where string, args ...any) ([]model.RecipeComment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+commentCols+commentFrom+` WHERE `+where+` ORDER BY c.created_at DESC, c.id DESC LIMIT 500`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	var comments []model.RecipeComment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, *c)
	}
	return comments, rows.Err()
}

// ListForRecipe returns comments on a recipe, newest first.
func (s *CommentStore) ListForRecipe(ctx context.Context, recipeRowID int64) ([]model.RecipeComment, error) {
	return s.list(ctx, `c.recipe_id = ?`, recipeRowID)
}

// AdminList searches username, recipe title and comment text, optionally
// restricted to a single rating.
func (s *CommentStore) AdminList(ctx context.Context, query string, rating *int) ([]model.RecipeComment, error) {
	pattern := likePattern(query)
	return s.list(ctx,
		`(? = '' OR u.username LIKE ? ESCAPE '\' OR r.title LIKE ? ESCAPE '\' OR c.comment LIKE ? ESCAPE '\')
		 AND (? IS NULL OR c.rating = ?)`,
		query, pattern, pattern, pattern, nullInt(rating), nullInt(rating),
	)
}
