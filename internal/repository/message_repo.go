package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"medigenius/internal/domain"
)

type MessageRepository interface {
	Create(ctx context.Context, message domain.Message) error
	ListBySessionID(ctx context.Context, sessionID string) ([]domain.Message, error)
}

type PgMessageRepository struct {
	pool *pgxpool.Pool
}

func NewPgMessageRepository(pool *pgxpool.Pool) *PgMessageRepository {
	return &PgMessageRepository{pool: pool}
}

// Create asegura la sesión, actualiza su actividad e inserta el mensaje en una transacción.
func (r *PgMessageRepository) Create(ctx context.Context, message domain.Message) error {
	const ensureSession = `
		INSERT INTO sessions (session_id, created_at, last_active)
		VALUES ($1, $2, $2)
		ON CONFLICT (session_id) DO UPDATE SET last_active = EXCLUDED.last_active
	`
	const insertMessage = `
		INSERT INTO messages (session_id, role, content, source, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	var source interface{}
	if message.Source != "" {
		source = message.Source
	}

	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, ensureSession, message.SessionID, message.CreatedAt); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, insertMessage,
			message.SessionID,
			message.Role,
			message.Content,
			source,
			message.CreatedAt,
		)
		return err
	})
}

func (r *PgMessageRepository) ListBySessionID(ctx context.Context, sessionID string) ([]domain.Message, error) {
	const query = `
		SELECT id, session_id, role, content, source, created_at
		FROM messages
		WHERE session_id = $1
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.pool.Query(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := []domain.Message{}
	for rows.Next() {
		var msg domain.Message
		var source *string

		err = rows.Scan(
			&msg.ID,
			&msg.SessionID,
			&msg.Role,
			&msg.Content,
			&source,
			&msg.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		if source != nil {
			msg.Source = *source
		}
		messages = append(messages, msg)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return messages, nil
}
