package storage_test

import (
	"context"
	"os"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ikolcov/learnit/internal/models"
	"github.com/ikolcov/learnit/internal/storage"
)

func newPostgresFixture(dsn string) func(c *qt.C) fixture {
	return func(c *qt.C) fixture {
		ctx := context.Background()

		s, err := storage.NewPostgresStorage(ctx, dsn)
		c.Assert(err, qt.IsNil)

		conn, err := pgx.Connect(ctx, dsn)
		c.Assert(err, qt.IsNil)

		var users []string
		c.Cleanup(func() {
			_, _ = conn.Exec(ctx, `DELETE FROM posts WHERE owner = ANY($1)`, users)
			_, _ = conn.Exec(ctx, `DELETE FROM users WHERE id = ANY($1)`, users)
			_ = conn.Close(ctx)
			_ = s.Close(ctx)
		})

		return fixture{
			storage: s,
			newUserID: func() models.UserID {
				id := uuid.NewString()
				users = append(users, id)
				return models.UserID(id)
			},
			registerUser: func(c *qt.C, userId models.UserID, username string) {
				_, err := conn.Exec(ctx, `INSERT INTO users (id, username) VALUES ($1, $2)`, string(userId), username)
				c.Assert(err, qt.IsNil)
			},
		}
	}
}

func TestPostgresStorage(t *testing.T) {
	dsn := os.Getenv("POSTGRES_TEST_DSN")
	if dsn == "" {
		t.Skip("Skipping postgres storage test: POSTGRES_TEST_DSN environment variable not set")
	}
	runStorageSuite(t, newPostgresFixture(dsn))
}
