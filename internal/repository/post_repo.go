package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"mindful-chat/internal/domain"
)

type PostRepository interface {
	Create(ctx context.Context, post domain.Post) error
	GetByID(ctx context.Context, id string) (domain.Post, error)
	ListLatest(ctx context.Context, limit int) ([]domain.Post, error)
}

type PgPostRepository struct {
	pool *pgxpool.Pool
}

func NewPgPostRepository(pool *pgxpool.Pool) *PgPostRepository {
	return &PgPostRepository{pool: pool}
}

func (r *PgPostRepository) Create(ctx context.Context, post domain.Post) error {
	const query = `
		INSERT INTO posts (id, title, content, tags, author_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	tags := post.Tags
	if tags == nil {
		tags = []string{}
	}
	_, err := r.pool.Exec(ctx, query,
		post.ID,
		post.Title,
		post.Content,
		tags,
		post.AuthorID,
		post.CreatedAt,
	)
	return err
}

func (r *PgPostRepository) GetByID(ctx context.Context, id string) (domain.Post, error) {
	const query = `
		SELECT id, title, content, tags, author_id, created_at
		FROM posts
		WHERE id = $1
	`
	var post domain.Post
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&post.ID,
		&post.Title,
		&post.Content,
		&post.Tags,
		&post.AuthorID,
		&post.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Post{}, err
	}
	return post, err
}

func (r *PgPostRepository) ListLatest(ctx context.Context, limit int) ([]domain.Post, error) {
	const query = `
		SELECT id, title, content, tags, author_id, created_at
		FROM posts
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []domain.Post{}
	for rows.Next() {
		var post domain.Post
		if err := rows.Scan(
			&post.ID,
			&post.Title,
			&post.Content,
			&post.Tags,
			&post.AuthorID,
			&post.CreatedAt,
		); err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return posts, nil
}
