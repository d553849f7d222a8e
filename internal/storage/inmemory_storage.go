package storage

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ikolcov/learnit/internal/models"
)

type InMemoryStorage struct {
	posts       map[models.PostID]models.Post
	postsByUser map[models.UserID][]models.PostID
	usernames   map[models.UserID]string
	mutex       sync.RWMutex
}

func (s *InMemoryStorage) RegisterUser(userId models.UserID, username string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.usernames[userId] = username
}

func (s *InMemoryStorage) GetUserPosts(_ context.Context, userId models.UserID) ([]models.Post, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var author *models.Author
	if username, ok := s.usernames[userId]; ok {
		author = &models.Author{Id: userId, Username: username}
	}

	posts := make([]models.Post, 0, len(s.postsByUser[userId]))
	for _, id := range s.postsByUser[userId] {
		post := s.posts[id]
		post.Author = author
		posts = append(posts, post)
	}
	return posts, nil
}

func (s *InMemoryStorage) AddPost(_ context.Context, post models.Post) (models.Post, error) {
	if err := post.Validate(); err != nil {
		return models.Post{}, err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	post.Id = models.PostID(uuid.NewString())
	post.Author = nil
	post.CreatedAt = time.Now().UTC()
	s.posts[post.Id] = post
	s.postsByUser[post.AuthorId] = append(s.postsByUser[post.AuthorId], post.Id)

	return post, nil
}

func (s *InMemoryStorage) UpdatePost(_ context.Context, postUpdate models.Post) (models.Post, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	post, ok := s.posts[postUpdate.Id]
	if !ok || post.AuthorId != postUpdate.AuthorId {
		return models.Post{}, models.ErrNotFound
	}
	post.Title = postUpdate.Title
	post.Description = postUpdate.Description
	post.URL = postUpdate.URL
	post.Status = postUpdate.Status
	s.posts[post.Id] = post

	return post, nil
}

func (s *InMemoryStorage) DeletePost(_ context.Context, postId models.PostID, userId models.UserID) (models.Post, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	post, ok := s.posts[postId]
	if !ok || post.AuthorId != userId {
		return models.Post{}, models.ErrNotFound
	}
	delete(s.posts, postId)

	ids := s.postsByUser[userId]
	for i, id := range ids {
		if id == postId {
			s.postsByUser[userId] = append(ids[:i:i], ids[i+1:]...)
			break
		}
	}
	return post, nil
}

func (s *InMemoryStorage) Close(context.Context) error {
	return nil
}

func NewInMemoryStorage() *InMemoryStorage {
	return &InMemoryStorage{
		posts:       make(map[models.PostID]models.Post),
		postsByUser: make(map[models.UserID][]models.PostID),
		usernames:   make(map[models.UserID]string),
	}
}
