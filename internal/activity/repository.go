package activity

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provê acesso à tabela system_activities.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository cria instância do repositório.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Insert grava uma nova linha de auditoria.
func (r *Repository) Insert(ctx context.Context, entry Entry) error {
	const query = `
        INSERT INTO system_activities (user_id, action_type, description, resource_type, resource_id, metadata)
        VALUES ($1, $2, $3, $4, $5, $6)
    `

	var metadata []byte
	if entry.Metadata != nil {
		raw, err := json.Marshal(entry.Metadata)
		if err != nil {
			return err
		}
		metadata = raw
	}

	_, err := r.pool.Exec(ctx, query,
		entry.UserID,
		entry.ActionType,
		entry.Description,
		entry.ResourceType,
		entry.ResourceID,
		metadata,
	)
	return err
}

// List devolve o histórico mais recente com dados do ator (profiles).
func (r *Repository) List(ctx context.Context, limit, offset int) ([]EntryWithActor, error) {
	const query = `
        SELECT a.id, a.user_id, a.action_type, a.description, a.resource_type, a.resource_id, a.metadata, a.created_at,
               COALESCE(p.full_name, ''), COALESCE(p.email, '')
        FROM system_activities a
        LEFT JOIN profiles p ON p.id = a.user_id
        ORDER BY a.created_at DESC, a.id DESC
        LIMIT $1 OFFSET $2
    `

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []EntryWithActor
	for rows.Next() {
		var (
			e   EntryWithActor
			raw []byte
		)
		if err := rows.Scan(&e.ID, &e.UserID, &e.ActionType, &e.Description, &e.ResourceType, &e.ResourceID, &raw, &e.CreatedAt, &e.AtorNome, &e.AtorEmail); err != nil {
			return nil, err
		}
		if len(raw) > 0 {
			_ = json.Unmarshal(raw, &e.Metadata)
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// Count devolve o total de linhas de auditoria.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM system_activities`).Scan(&total)
	return total, err
}
