package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	"medigenius/internal/domain"
)

type KnowledgeRepository interface {
	Add(ctx context.Context, title, content string, embedding []float32) (int64, error)
	Search(ctx context.Context, embedding []float32, k int) ([]domain.Passage, error)
	Count(ctx context.Context) (int64, error)
}

type PgKnowledgeRepository struct {
	pool *pgxpool.Pool
}

func NewPgKnowledgeRepository(pool *pgxpool.Pool) *PgKnowledgeRepository {
	return &PgKnowledgeRepository{pool: pool}
}

func (r *PgKnowledgeRepository) Add(ctx context.Context, title, content string, embedding []float32) (int64, error) {
	const query = `
		INSERT INTO knowledge_passages (title, content, embedding)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	var id int64
	err := r.pool.QueryRow(ctx, query, title, content, pgvector.NewVector(embedding)).Scan(&id)
	return id, err
}

// Search devuelve los k pasajes más cercanos por distancia coseno.
func (r *PgKnowledgeRepository) Search(ctx context.Context, embedding []float32, k int) ([]domain.Passage, error) {
	if k <= 0 {
		k = 3
	}
	const query = `
		SELECT id, title, content, embedding <=> $1 AS distance
		FROM knowledge_passages
		ORDER BY embedding <=> $1
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, pgvector.NewVector(embedding), k)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var passages []domain.Passage
	for rows.Next() {
		var p domain.Passage
		if err := rows.Scan(&p.ID, &p.Title, &p.Content, &p.Distance); err != nil {
			return nil, err
		}
		passages = append(passages, p)
	}
	return passages, rows.Err()
}

func (r *PgKnowledgeRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM knowledge_passages`).Scan(&n)
	return n, err
}
