package repository

import (
	"context"
	"unicode/utf8"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"medigenius/internal/domain"
)

const previewLimit = 50

type SessionRepository interface {
	List(ctx context.Context) ([]domain.Session, error)
	Delete(ctx context.Context, id string) error
}

type PgSessionRepository struct {
	pool *pgxpool.Pool
}

func NewPgSessionRepository(pool *pgxpool.Pool) *PgSessionRepository {
	return &PgSessionRepository{pool: pool}
}

// List devuelve las sesiones por actividad descendente con el primer mensaje del usuario como preview.
func (r *PgSessionRepository) List(ctx context.Context) ([]domain.Session, error) {
	const query = `
		SELECT s.session_id, s.created_at, s.last_active,
			(SELECT m.content FROM messages m
			 WHERE m.session_id = s.session_id AND m.role = 'user'
			 ORDER BY m.created_at ASC, m.id ASC LIMIT 1) AS first_message
		FROM sessions s
		ORDER BY s.last_active DESC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := []domain.Session{}
	for rows.Next() {
		var s domain.Session
		var first *string
		if err := rows.Scan(&s.ID, &s.CreatedAt, &s.LastActive, &first); err != nil {
			return nil, err
		}
		if first != nil {
			s.Preview = Preview(*first)
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

func (r *PgSessionRepository) Delete(ctx context.Context, id string) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM messages WHERE session_id = $1`, id); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `DELETE FROM sessions WHERE session_id = $1`, id)
		return err
	})
}

// Preview recorta el texto a 50 caracteres y agrega "..." si era más largo.
func Preview(s string) string {
	if utf8.RuneCountInString(s) <= previewLimit {
		return s
	}
	runes := []rune(s)
	return string(runes[:previewLimit]) + "..."
}
