package models

import (
	"strings"
	"time"
)

type PostID string

type UserID string

const (
	DefaultStatus = "TO LEARN"
	URLScheme     = "https://"
)

// Author is the public part of a user profile joined into listed posts.
type Author struct {
	Id       UserID `json:"_id"`
	Username string `json:"username"`
}

type Post struct {
	Id          PostID    `json:"_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	Status      string    `json:"status"`
	AuthorId    UserID    `json:"user"`
	Author      *Author   `json:"author,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Validate reports ErrBadRequest or ErrUnauthorized when the post cannot be stored.
func (p Post) Validate() error {
	if p.Title == "" {
		return ErrBadRequest
	}
	if p.AuthorId == "" {
		return ErrUnauthorized
	}
	return nil
}

// NormalizeURL prefixes url with the https scheme unless it already has it.
// An empty url stays empty.
func NormalizeURL(url string) string {
	if url == "" || strings.HasPrefix(url, URLScheme) {
		return url
	}
	return URLScheme + url
}

// NormalizeStatus falls back to DefaultStatus for an empty label.
func NormalizeStatus(status string) string {
	if status == "" {
		return DefaultStatus
	}
	return status
}
