package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"mindful-chat/internal/domain"
)

// ErrBlankSession se devuelve al intentar escribir sin identificador de sesión.
var ErrBlankSession = errors.New("blank session id")

// HistoryRepository guarda el log de conversación por sesión. Cada operación es atómica por clave.
type HistoryRepository interface {
	Get(ctx context.Context, sessionID string) ([]domain.Turn, error)
	Append(ctx context.Context, sessionID string, turns ...domain.Turn) error
	Replace(ctx context.Context, sessionID string, log []domain.Turn) error
	Clear(ctx context.Context, sessionID string) error
}

type PgHistoryRepository struct {
	pool *pgxpool.Pool
}

func NewPgHistoryRepository(pool *pgxpool.Pool) *PgHistoryRepository {
	return &PgHistoryRepository{pool: pool}
}

func (r *PgHistoryRepository) Get(ctx context.Context, sessionID string) ([]domain.Turn, error) {
	if strings.TrimSpace(sessionID) == "" {
		return []domain.Turn{}, nil
	}
	const query = `
		SELECT role, content
		FROM chat_turns
		WHERE session_id = $1
		ORDER BY id ASC
	`

	rows, err := r.pool.Query(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	turns := []domain.Turn{}
	for rows.Next() {
		var (
			role string
			t    domain.Turn
		)
		if err := rows.Scan(&role, &t.Text); err != nil {
			return nil, err
		}
		t.Role = domain.Role(role)
		turns = append(turns, t)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return turns, nil
}

// Append inserta todos los turnos en una sola sentencia para que lleguen juntos y en orden.
func (r *PgHistoryRepository) Append(ctx context.Context, sessionID string, turns ...domain.Turn) error {
	if strings.TrimSpace(sessionID) == "" {
		return ErrBlankSession
	}
	if len(turns) == 0 {
		return nil
	}
	return insertTurns(ctx, r.pool, sessionID, turns)
}

func (r *PgHistoryRepository) Replace(ctx context.Context, sessionID string, log []domain.Turn) error {
	if strings.TrimSpace(sessionID) == "" {
		return ErrBlankSession
	}
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM chat_turns WHERE session_id = $1`, sessionID); err != nil {
			return err
		}
		if len(log) == 0 {
			return nil
		}
		return insertTurns(ctx, tx, sessionID, log)
	})
}

func (r *PgHistoryRepository) Clear(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return nil
	}
	_, err := r.pool.Exec(ctx, `DELETE FROM chat_turns WHERE session_id = $1`, sessionID)
	return err
}

type execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

func insertTurns(ctx context.Context, db execer, sessionID string, turns []domain.Turn) error {
	query, args := buildInsertTurns(sessionID, turns)
	_, err := db.Exec(ctx, query, args...)
	return err
}

// buildInsertTurns arma un INSERT multi-fila; los ids seriales respetan el orden de VALUES.
func buildInsertTurns(sessionID string, turns []domain.Turn) (string, []any) {
	var sb strings.Builder
	sb.WriteString("INSERT INTO chat_turns (session_id, role, content) VALUES ")
	args := make([]any, 0, len(turns)*3)
	for i, t := range turns {
		if i > 0 {
			sb.WriteString(", ")
		}
		n := i * 3
		fmt.Fprintf(&sb, "($%d, $%d, $%d)", n+1, n+2, n+3)
		args = append(args, sessionID, string(t.Role), t.Text)
	}
	return sb.String(), args
}
