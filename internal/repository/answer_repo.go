package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"mindful-chat/internal/domain"
)

type AnswerRepository interface {
	Create(ctx context.Context, answer domain.Answer) error
	GetByID(ctx context.Context, id string) (domain.Answer, error)
	ListByPostID(ctx context.Context, postID string) ([]domain.Answer, error)
	// MarkSolution deja answerID como única solución de postID en una sola transacción.
	MarkSolution(ctx context.Context, postID, answerID string) error
}

type PgAnswerRepository struct {
	pool *pgxpool.Pool
}

func NewPgAnswerRepository(pool *pgxpool.Pool) *PgAnswerRepository {
	return &PgAnswerRepository{pool: pool}
}

func (r *PgAnswerRepository) Create(ctx context.Context, answer domain.Answer) error {
	const query = `
		INSERT INTO answers (id, post_id, content, author_id, is_solution, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.pool.Exec(ctx, query,
		answer.ID,
		answer.PostID,
		answer.Content,
		answer.AuthorID,
		answer.IsSolution,
		answer.CreatedAt,
	)
	return err
}

func (r *PgAnswerRepository) GetByID(ctx context.Context, id string) (domain.Answer, error) {
	const query = `
		SELECT id, post_id, content, author_id, is_solution, created_at
		FROM answers
		WHERE id = $1
	`
	var answer domain.Answer
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&answer.ID,
		&answer.PostID,
		&answer.Content,
		&answer.AuthorID,
		&answer.IsSolution,
		&answer.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Answer{}, err
	}
	return answer, err
}

// ListByPostID devuelve primero la solución y luego las más recientes.
func (r *PgAnswerRepository) ListByPostID(ctx context.Context, postID string) ([]domain.Answer, error) {
	const query = `
		SELECT id, post_id, content, author_id, is_solution, created_at
		FROM answers
		WHERE post_id = $1
		ORDER BY is_solution DESC, created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	answers := []domain.Answer{}
	for rows.Next() {
		var answer domain.Answer
		if err := rows.Scan(
			&answer.ID,
			&answer.PostID,
			&answer.Content,
			&answer.AuthorID,
			&answer.IsSolution,
			&answer.CreatedAt,
		); err != nil {
			return nil, err
		}
		answers = append(answers, answer)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return answers, nil
}

// MarkSolution bloquea la fila del post para serializar escritores concurrentes del mismo post.
// Se desmarcan las demás antes de marcar la nueva: el índice único parcial se verifica por fila.
func (r *PgAnswerRepository) MarkSolution(ctx context.Context, postID, answerID string) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var lockedID string
		if err := tx.QueryRow(ctx, `SELECT id FROM posts WHERE id = $1 FOR UPDATE`, postID).Scan(&lockedID); err != nil {
			return err
		}

		if _, err := tx.Exec(ctx,
			`UPDATE answers SET is_solution = false WHERE post_id = $1 AND is_solution AND id <> $2`,
			postID, answerID,
		); err != nil {
			return err
		}

		tag, err := tx.Exec(ctx,
			`UPDATE answers SET is_solution = true WHERE id = $1 AND post_id = $2`,
			answerID, postID,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return pgx.ErrNoRows
		}
		return nil
	})
}
