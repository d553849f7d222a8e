package storage_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/ikolcov/learnit/internal/models"
	"github.com/ikolcov/learnit/internal/storage"
)

type fixture struct {
	storage      storage.Storage
	newUserID    func() models.UserID
	registerUser func(c *qt.C, userId models.UserID, username string)
}

func newPost(title string, owner models.UserID) models.Post {
	return models.Post{
		Title:       title,
		Description: "about " + title,
		URL:         "https://example.com/" + title,
		Status:      models.DefaultStatus,
		AuthorId:    owner,
	}
}

// runStorageSuite checks the owner scoping contract every storage must honour.
func runStorageSuite(t *testing.T, newFixture func(c *qt.C) fixture) {
	ctx := context.Background()

	t.Run("add and list by owner", func(t *testing.T) {
		c := qt.New(t)
		f := newFixture(c)
		alice, bob := f.newUserID(), f.newUserID()
		f.registerUser(c, alice, "alice")

		first, err := f.storage.AddPost(ctx, newPost("go", alice))
		c.Assert(err, qt.IsNil)
		c.Assert(first.Id, qt.Not(qt.Equals), models.PostID(""))
		c.Assert(first.AuthorId, qt.Equals, alice)
		c.Assert(first.CreatedAt.IsZero(), qt.IsFalse)

		second, err := f.storage.AddPost(ctx, newPost("rust", alice))
		c.Assert(err, qt.IsNil)
		c.Assert(second.Id, qt.Not(qt.Equals), first.Id)

		_, err = f.storage.AddPost(ctx, newPost("zig", bob))
		c.Assert(err, qt.IsNil)

		posts, err := f.storage.GetUserPosts(ctx, alice)
		c.Assert(err, qt.IsNil)
		c.Assert(posts, qt.HasLen, 2)
		titles := map[string]bool{}
		for _, p := range posts {
			c.Assert(p.AuthorId, qt.Equals, alice)
			c.Assert(p.Author, qt.IsNotNil)
			c.Assert(p.Author.Username, qt.Equals, "alice")
			titles[p.Title] = true
		}
		c.Assert(titles, qt.DeepEquals, map[string]bool{"go": true, "rust": true})

		posts, err = f.storage.GetUserPosts(ctx, bob)
		c.Assert(err, qt.IsNil)
		c.Assert(posts, qt.HasLen, 1)
		c.Assert(posts[0].Title, qt.Equals, "zig")
		c.Assert(posts[0].Author, qt.IsNil)
	})

	t.Run("list of unknown user is empty", func(t *testing.T) {
		c := qt.New(t)
		f := newFixture(c)

		posts, err := f.storage.GetUserPosts(ctx, f.newUserID())
		c.Assert(err, qt.IsNil)
		c.Assert(posts, qt.IsNotNil)
		c.Assert(posts, qt.HasLen, 0)
	})

	t.Run("add rejects invalid posts", func(t *testing.T) {
		c := qt.New(t)
		f := newFixture(c)

		_, err := f.storage.AddPost(ctx, newPost("", f.newUserID()))
		c.Assert(err, qt.ErrorIs, models.ErrBadRequest)

		_, err = f.storage.AddPost(ctx, newPost("go", ""))
		c.Assert(err, qt.ErrorIs, models.ErrUnauthorized)
	})

	t.Run("owner updates post", func(t *testing.T) {
		c := qt.New(t)
		f := newFixture(c)
		alice := f.newUserID()

		created, err := f.storage.AddPost(ctx, newPost("go", alice))
		c.Assert(err, qt.IsNil)

		updated, err := f.storage.UpdatePost(ctx, models.Post{
			Id:       created.Id,
			Title:    "go generics",
			URL:      "https://go.dev",
			Status:   "LEARNING",
			AuthorId: alice,
		})
		c.Assert(err, qt.IsNil)
		c.Assert(updated.Id, qt.Equals, created.Id)
		c.Assert(updated.AuthorId, qt.Equals, alice)
		c.Assert(updated.Title, qt.Equals, "go generics")
		c.Assert(updated.Description, qt.Equals, "")
		c.Assert(updated.URL, qt.Equals, "https://go.dev")
		c.Assert(updated.Status, qt.Equals, "LEARNING")

		posts, err := f.storage.GetUserPosts(ctx, alice)
		c.Assert(err, qt.IsNil)
		c.Assert(posts, qt.HasLen, 1)
		c.Assert(posts[0].Title, qt.Equals, "go generics")
	})

	t.Run("update by another user is not found", func(t *testing.T) {
		c := qt.New(t)
		f := newFixture(c)
		alice, bob := f.newUserID(), f.newUserID()

		created, err := f.storage.AddPost(ctx, newPost("go", alice))
		c.Assert(err, qt.IsNil)

		_, err = f.storage.UpdatePost(ctx, models.Post{Id: created.Id, Title: "hijacked", AuthorId: bob})
		c.Assert(err, qt.ErrorIs, models.ErrNotFound)

		_, err = f.storage.UpdatePost(ctx, models.Post{Id: "does-not-exist", Title: "x", AuthorId: alice})
		c.Assert(err, qt.ErrorIs, models.ErrNotFound)

		posts, err := f.storage.GetUserPosts(ctx, alice)
		c.Assert(err, qt.IsNil)
		c.Assert(posts, qt.HasLen, 1)
		c.Assert(posts[0].Title, qt.Equals, "go")
		c.Assert(posts[0].Description, qt.Equals, "about go")
	})

	t.Run("delete is owner scoped", func(t *testing.T) {
		c := qt.New(t)
		f := newFixture(c)
		alice, bob := f.newUserID(), f.newUserID()

		created, err := f.storage.AddPost(ctx, newPost("go", alice))
		c.Assert(err, qt.IsNil)

		_, err = f.storage.DeletePost(ctx, created.Id, bob)
		c.Assert(err, qt.ErrorIs, models.ErrNotFound)

		posts, err := f.storage.GetUserPosts(ctx, alice)
		c.Assert(err, qt.IsNil)
		c.Assert(posts, qt.HasLen, 1)

		deleted, err := f.storage.DeletePost(ctx, created.Id, alice)
		c.Assert(err, qt.IsNil)
		c.Assert(deleted.Id, qt.Equals, created.Id)
		c.Assert(deleted.Title, qt.Equals, "go")

		_, err = f.storage.DeletePost(ctx, created.Id, alice)
		c.Assert(err, qt.ErrorIs, models.ErrNotFound)

		posts, err = f.storage.GetUserPosts(ctx, alice)
		c.Assert(err, qt.IsNil)
		c.Assert(posts, qt.HasLen, 0)
	})

	t.Run("concurrent deletes remove a post once", func(t *testing.T) {
		c := qt.New(t)
		f := newFixture(c)
		alice := f.newUserID()

		created, err := f.storage.AddPost(ctx, newPost("go", alice))
		c.Assert(err, qt.IsNil)

		const workers = 8
		var wg sync.WaitGroup
		errs := make(chan error, workers)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := f.storage.DeletePost(ctx, created.Id, alice)
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)

		succeeded := 0
		for err := range errs {
			if err == nil {
				succeeded++
				continue
			}
			c.Assert(errors.Is(err, models.ErrNotFound), qt.IsTrue)
		}
		c.Assert(succeeded, qt.Equals, 1)
	})
}
