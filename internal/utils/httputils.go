package utils

import (
	"encoding/json"
	"net/http"

	"github.com/ikolcov/learnit/internal/models"
)

const MessageInternalError = "Internal server error"

// Envelope is the body of every response served under /api.
type Envelope struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Post    *models.Post `json:"post,omitempty"`
}

type PostsEnvelope struct {
	Success bool          `json:"success"`
	Posts   []models.Post `json:"posts"`
}

func RespondJSON(w http.ResponseWriter, status int, data interface{}) error {
	response, err := json.Marshal(data)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_, _ = w.Write(response)

	return nil
}

func Success(w http.ResponseWriter, message string, post *models.Post) error {
	return RespondJSON(w, http.StatusOK, Envelope{Success: true, Message: message, Post: post})
}

func Posts(w http.ResponseWriter, posts []models.Post) error {
	if posts == nil {
		posts = make([]models.Post, 0)
	}
	return RespondJSON(w, http.StatusOK, PostsEnvelope{Success: true, Posts: posts})
}

func Fail(w http.ResponseWriter, status int, message string) {
	_ = RespondJSON(w, status, Envelope{Success: false, Message: message})
}

func Unauthorized(w http.ResponseWriter, message string) {
	Fail(w, http.StatusUnauthorized, message)
}

func Forbidden(w http.ResponseWriter, message string) {
	Fail(w, http.StatusForbidden, message)
}

func BadRequest(w http.ResponseWriter, message string) {
	Fail(w, http.StatusBadRequest, message)
}

func InternalError(w http.ResponseWriter) {
	Fail(w, http.StatusInternalServerError, MessageInternalError)
}
