package app

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ikolcov/learnit/internal/models"
	"github.com/ikolcov/learnit/internal/utils"
)

const (
	messageTitleRequired = "Title is required!"
	messageInvalidBody   = "Invalid request body"
	messageCreated       = "Happy learning!"
	messageUpdated       = "Excellent progress!"
	messageDeleted       = "Post deleted!"
	// Deliberately the same for a missing post and a post owned by someone else.
	messageNotFound = "Post not found or user not authorized"
)

// postRequest carries the client-writable fields. The owner always comes
// from the resolved identity.
type postRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Status      string `json:"status"`
}

// decodePost answers with 400 and returns false when the body is not a
// usable post.
func decodePost(w http.ResponseWriter, r *http.Request) (postRequest, bool) {
	var req postRequest
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(&req); errors.Is(err, io.EOF) {
		utils.BadRequest(w, messageTitleRequired)
		return postRequest{}, false
	} else if err != nil {
		utils.BadRequest(w, messageInvalidBody)
		return postRequest{}, false
	}
	// the body must hold exactly one JSON value
	if _, err := decoder.Token(); !errors.Is(err, io.EOF) {
		utils.BadRequest(w, messageInvalidBody)
		return postRequest{}, false
	}
	if req.Title == "" {
		utils.BadRequest(w, messageTitleRequired)
		return postRequest{}, false
	}
	return req, true
}

func (req postRequest) toPost(userId models.UserID) models.Post {
	return models.Post{
		Title:       req.Title,
		Description: req.Description,
		URL:         models.NormalizeURL(req.URL),
		Status:      models.NormalizeStatus(req.Status),
		AuthorId:    userId,
	}
}

func (a *App) listPosts(w http.ResponseWriter, r *http.Request, userId models.UserID) {
	posts, err := a.storage.GetUserPosts(r.Context(), userId)
	if err != nil {
		a.serverError(w, r, "list posts", err)
		return
	}
	_ = utils.Posts(w, posts)
}

func (a *App) createPost(w http.ResponseWriter, r *http.Request, userId models.UserID) {
	req, ok := decodePost(w, r)
	if !ok {
		return
	}

	post, err := a.storage.AddPost(r.Context(), req.toPost(userId))
	if err != nil {
		a.serverError(w, r, "create post", err)
		return
	}
	_ = utils.Success(w, messageCreated, &post)
}

func (a *App) updatePost(w http.ResponseWriter, r *http.Request, userId models.UserID) {
	req, ok := decodePost(w, r)
	if !ok {
		return
	}

	postUpdate := req.toPost(userId)
	postUpdate.Id = models.PostID(chi.URLParam(r, "id"))

	post, err := a.storage.UpdatePost(r.Context(), postUpdate)
	if errors.Is(err, models.ErrNotFound) {
		utils.Unauthorized(w, messageNotFound)
		return
	} else if err != nil {
		a.serverError(w, r, "update post", err)
		return
	}
	_ = utils.Success(w, messageUpdated, &post)
}

func (a *App) deletePost(w http.ResponseWriter, r *http.Request, userId models.UserID) {
	postId := models.PostID(chi.URLParam(r, "id"))

	post, err := a.storage.DeletePost(r.Context(), postId, userId)
	if errors.Is(err, models.ErrNotFound) {
		utils.Unauthorized(w, messageNotFound)
		return
	} else if err != nil {
		a.serverError(w, r, "delete post", err)
		return
	}
	_ = utils.Success(w, messageDeleted, &post)
}
