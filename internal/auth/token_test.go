package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"github.com/golang-jwt/jwt/v5"

	"github.com/ikolcov/learnit/internal/auth"
	"github.com/ikolcov/learnit/internal/models"
)

const secret = "test-secret"

func TestVerifier_IssuedTokenResolvesUser(t *testing.T) {
	c := qt.New(t)
	v := auth.NewVerifier(secret)

	token, err := v.Issue("64b7f0c2e4b0a1a2b3c4d5e6", time.Hour)
	c.Assert(err, qt.IsNil)

	userId, err := v.Verify(token)
	c.Assert(err, qt.IsNil)
	c.Assert(userId, qt.Equals, models.UserID("64b7f0c2e4b0a1a2b3c4d5e6"))
}

func TestVerifier_RejectsTokens(t *testing.T) {
	sign := func(c *qt.C, method jwt.SigningMethod, key string, claims auth.Claims) string {
		token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(key))
		c.Assert(err, qt.IsNil)
		return token
	}

	tests := []struct {
		name  string
		token func(c *qt.C) string
	}{
		{
			name: "garbage",
			token: func(*qt.C) string {
				return "not-a-jwt"
			},
		},
		{
			name: "wrong secret",
			token: func(c *qt.C) string {
				return sign(c, jwt.SigningMethodHS256, "other", auth.Claims{UserID: "alice"})
			},
		},
		{
			name: "unexpected algorithm",
			token: func(c *qt.C) string {
				return sign(c, jwt.SigningMethodHS512, secret, auth.Claims{UserID: "alice"})
			},
		},
		{
			name: "expired",
			token: func(c *qt.C) string {
				return sign(c, jwt.SigningMethodHS256, secret, auth.Claims{
					UserID: "alice",
					RegisteredClaims: jwt.RegisteredClaims{
						ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
					},
				})
			},
		},
		{
			name: "no user id",
			token: func(c *qt.C) string {
				return sign(c, jwt.SigningMethodHS256, secret, auth.Claims{})
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)

			_, err := auth.NewVerifier(secret).Verify(tt.token(c))
			c.Assert(err, qt.ErrorIs, auth.ErrInvalidToken)
		})
	}
}

func TestVerifier_Authenticate(t *testing.T) {
	v := auth.NewVerifier(secret)
	valid, err := v.Issue("alice", 0)
	qt.Assert(t, err, qt.IsNil)

	tests := []struct {
		name    string
		header  string
		userId  models.UserID
		wantErr error
	}{
		{name: "bearer token", header: "Bearer " + valid, userId: "alice"},
		{name: "no header", header: "", wantErr: auth.ErrMissingToken},
		{name: "bearer without token", header: "Bearer ", wantErr: auth.ErrMissingToken},
		{name: "other scheme", header: "Basic YWxpY2U6cHc=", wantErr: auth.ErrMissingToken},
		{name: "invalid token", header: "Bearer nope", wantErr: auth.ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)

			r := httptest.NewRequest(http.MethodGet, "/api/posts", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}

			userId, err := v.Authenticate(r)
			if tt.wantErr != nil {
				c.Assert(err, qt.ErrorIs, tt.wantErr)
				return
			}
			c.Assert(err, qt.IsNil)
			c.Assert(userId, qt.Equals, tt.userId)
		})
	}
}
