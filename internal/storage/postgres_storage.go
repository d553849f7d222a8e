package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ikolcov/learnit/internal/models"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS users (
	id       TEXT PRIMARY KEY,
	username TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS posts (
	id          TEXT PRIMARY KEY,
	title       TEXT NOT NULL CHECK (title <> ''),
	description TEXT NOT NULL DEFAULT '',
	url         TEXT NOT NULL DEFAULT '',
	status      TEXT NOT NULL DEFAULT 'TO LEARN',
	owner       TEXT NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS posts_owner_idx ON posts (owner);
`

const postColumns = `id, title, description, url, status, owner, created_at`

type PostgresStorage struct {
	pool *pgxpool.Pool
}

func scanPost(row pgx.Row) (models.Post, error) {
	var p models.Post
	err := row.Scan(&p.Id, &p.Title, &p.Description, &p.URL, &p.Status, &p.AuthorId, &p.CreatedAt)
	return p, err
}

func (s *PostgresStorage) GetUserPosts(ctx context.Context, userId models.UserID) ([]models.Post, error) {
	const q = `
	SELECT p.id, p.title, p.description, p.url, p.status, p.owner, p.created_at, u.username
	FROM posts p
	LEFT JOIN users u ON u.id = p.owner
	WHERE p.owner = $1;
	`
	rows, err := s.pool.Query(ctx, q, userId)
	if err != nil {
		return nil, fmt.Errorf("query user posts: %w", err)
	}
	defer rows.Close()

	posts := make([]models.Post, 0)
	for rows.Next() {
		var p models.Post
		var username *string
		if err := rows.Scan(&p.Id, &p.Title, &p.Description, &p.URL, &p.Status, &p.AuthorId, &p.CreatedAt, &username); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		if username != nil {
			p.Author = &models.Author{Id: p.AuthorId, Username: *username}
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

func (s *PostgresStorage) AddPost(ctx context.Context, post models.Post) (models.Post, error) {
	if err := post.Validate(); err != nil {
		return models.Post{}, err
	}
	q := `INSERT INTO posts (` + postColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING ` + postColumns
	created, err := scanPost(s.pool.QueryRow(ctx, q,
		uuid.NewString(), post.Title, post.Description, post.URL, post.Status, post.AuthorId,
		time.Now().UTC().Truncate(time.Microsecond)))
	if err != nil {
		return models.Post{}, fmt.Errorf("insert post: %w", err)
	}
	return created, nil
}

func (s *PostgresStorage) UpdatePost(ctx context.Context, postUpdate models.Post) (models.Post, error) {
	q := `UPDATE posts SET title = $1, description = $2, url = $3, status = $4
	WHERE id = $5 AND owner = $6 RETURNING ` + postColumns
	post, err := scanPost(s.pool.QueryRow(ctx, q,
		postUpdate.Title, postUpdate.Description, postUpdate.URL, postUpdate.Status,
		postUpdate.Id, postUpdate.AuthorId))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Post{}, models.ErrNotFound
	} else if err != nil {
		return models.Post{}, fmt.Errorf("update post: %w", err)
	}
	return post, nil
}

func (s *PostgresStorage) DeletePost(ctx context.Context, postId models.PostID, userId models.UserID) (models.Post, error) {
	q := `DELETE FROM posts WHERE id = $1 AND owner = $2 RETURNING ` + postColumns
	post, err := scanPost(s.pool.QueryRow(ctx, q, postId, userId))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Post{}, models.ErrNotFound
	} else if err != nil {
		return models.Post{}, fmt.Errorf("delete post: %w", err)
	}
	return post, nil
}

func (s *PostgresStorage) Close(context.Context) error {
	s.pool.Close()
	return nil
}

// NewPostgresStorage connects to dsn and creates the schema when missing.
func NewPostgresStorage(ctx context.Context, dsn string) (*PostgresStorage, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	cfg.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeCacheStatement
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &PostgresStorage{pool: pool}, nil
}
