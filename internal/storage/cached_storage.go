package storage

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/redis/go-redis/v9"

	"github.com/ikolcov/learnit/internal/models"
)

// CachedStorage keeps each user's post list in redis. Lists are cached
// under a per-user generation and every successful mutation bumps that
// generation, so a list read before a write can only ever fill a key that
// no later read looks at.
type CachedStorage struct {
	client            *redis.Client
	persistentStorage Storage
	ttl               time.Duration
	logger            *slog.Logger
}

func (s *CachedStorage) GetUserPosts(ctx context.Context, userId models.UserID) ([]models.Post, error) {
	gen, ok := s.generation(ctx, userId)
	if !ok {
		return s.persistentStorage.GetUserPosts(ctx, userId)
	}
	key := s.redisKey(userId, gen)
	if posts := s.load(ctx, key); posts != nil {
		return posts, nil
	}
	posts, err := s.persistentStorage.GetUserPosts(ctx, userId)
	if err != nil {
		return nil, err
	}
	s.store(ctx, key, posts)
	return posts, nil
}

func (s *CachedStorage) AddPost(ctx context.Context, post models.Post) (models.Post, error) {
	created, err := s.persistentStorage.AddPost(ctx, post)
	if err != nil {
		return created, err
	}
	s.invalidate(ctx, created.AuthorId)
	return created, nil
}

func (s *CachedStorage) UpdatePost(ctx context.Context, postUpdate models.Post) (models.Post, error) {
	post, err := s.persistentStorage.UpdatePost(ctx, postUpdate)
	if err != nil {
		return post, err
	}
	s.invalidate(ctx, post.AuthorId)
	return post, nil
}

func (s *CachedStorage) DeletePost(ctx context.Context, postId models.PostID, userId models.UserID) (models.Post, error) {
	post, err := s.persistentStorage.DeletePost(ctx, postId, userId)
	if err != nil {
		return post, err
	}
	s.invalidate(ctx, userId)
	return post, nil
}

func (s *CachedStorage) Close(ctx context.Context) error {
	var result error
	if err := s.client.Close(); err != nil {
		result = multierror.Append(result, err)
	}
	if err := s.persistentStorage.Close(ctx); err != nil {
		result = multierror.Append(result, err)
	}
	return result
}

func (s *CachedStorage) generation(ctx context.Context, userId models.UserID) (int64, bool) {
	gen, err := s.client.Get(ctx, s.generationKey(userId)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, true
	}
	if err != nil {
		s.logger.Warn("failed to read cache generation", "user", userId, "error", err)
		return 0, false
	}
	return gen, true
}

func (s *CachedStorage) store(ctx context.Context, key string, posts []models.Post) {
	value, err := json.Marshal(posts)
	if err != nil {
		s.logger.Error("failed to encode cached posts", "key", key, "error", err)
		return
	}
	if err := s.client.Set(ctx, key, value, s.ttl).Err(); err != nil {
		s.logger.Warn("failed to cache posts", "key", key, "error", err)
		return
	}
	s.logger.Debug("successful store", "key", key, "count", len(posts))
}

func (s *CachedStorage) load(ctx context.Context, key string) []models.Post {
	result, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		s.logger.Warn("failed to load cached posts", "key", key, "error", err)
		return nil
	}
	posts := make([]models.Post, 0)
	if err := json.Unmarshal([]byte(result), &posts); err != nil {
		s.logger.Warn("failed to decode cached posts", "key", key, "error", err)
		return nil
	}
	s.logger.Debug("successful load", "key", key, "count", len(posts))
	return posts
}

// invalidate moves the user to a new generation. Lists cached under older
// generations are never read again and expire with the ttl.
func (s *CachedStorage) invalidate(ctx context.Context, userId models.UserID) {
	if err := s.client.Incr(ctx, s.generationKey(userId)).Err(); err != nil {
		s.logger.Error("failed to invalidate cached posts", "user", userId, "error", err)
	}
}

// add a prefix not to collide with other data stored in the same redis
func (s *CachedStorage) redisKey(userId models.UserID, gen int64) string {
	return "userposts:list:" + string(userId) + ":" + strconv.FormatInt(gen, 10)
}

func (s *CachedStorage) generationKey(userId models.UserID) string {
	return "userposts:gen:" + string(userId)
}

// NewCachedStorage accepts either a redis:// URL or a bare host:port.
func NewCachedStorage(redisUrl string, ttl time.Duration, persistentStorage Storage, logger *slog.Logger) *CachedStorage {
	opts, err := redis.ParseURL(redisUrl)
	if err != nil {
		opts = &redis.Options{Addr: redisUrl}
	}
	return &CachedStorage{
		client:            redis.NewClient(opts),
		persistentStorage: persistentStorage,
		ttl:               ttl,
		logger:            logger,
	}
}
