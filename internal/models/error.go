package models

import "errors"

var ErrBadRequest = errors.New("post is invalid")
var ErrUnauthorized = errors.New("post has no owner")
var ErrNotFound = errors.New("post not found or user not authorized")
