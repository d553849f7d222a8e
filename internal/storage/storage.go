// Package storage keeps posts and enforces that a post is only ever listed,
// updated or deleted through a filter on both its id and its owner.
package storage

import (
	"context"

	"github.com/ikolcov/learnit/internal/models"
)

type Storage interface {
	// GetUserPosts returns every post owned by userId with the owner's
	// public profile joined in.
	GetUserPosts(ctx context.Context, userId models.UserID) ([]models.Post, error)
	// AddPost stores a new post and returns it with the generated id.
	AddPost(ctx context.Context, post models.Post) (models.Post, error)
	// UpdatePost replaces title, description, url and status of the post
	// matching both postUpdate.Id and postUpdate.AuthorId.
	UpdatePost(ctx context.Context, postUpdate models.Post) (models.Post, error)
	// DeletePost removes the post matching both postId and userId.
	DeletePost(ctx context.Context, postId models.PostID, userId models.UserID) (models.Post, error)
	Close(ctx context.Context) error
}
