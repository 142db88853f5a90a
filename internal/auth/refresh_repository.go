package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RefreshRepository persiste refresh tokens hasheados na tabela
// refresh_tokens. O Redis serve de fast-path de consumo; esta tabela é a
// fonte durável, então sessões sobrevivem a um flush do cache.
type RefreshRepository struct {
	pool *pgxpool.Pool
}

// NewRefreshRepository cria instância do repositório.
func NewRefreshRepository(pool *pgxpool.Pool) *RefreshRepository {
	return &RefreshRepository{pool: pool}
}

// Save grava o hash do token com dono e validade.
func (r *RefreshRepository) Save(ctx context.Context, hash string, userID uuid.UUID, expiresAt time.Time) error {
	_, err := r.pool.Exec(ctx, `
        INSERT INTO refresh_tokens (token_hash, user_id, expira_em)
        VALUES ($1, $2, $3)`,
		hash, userID, expiresAt)
	return err
}

// Consume remove o hash e devolve o dono. DELETE ... RETURNING garante que o
// mesmo token nunca é consumido duas vezes; expirados contam como ausentes.
func (r *RefreshRepository) Consume(ctx context.Context, hash string) (uuid.UUID, error) {
	var userID uuid.UUID
	err := r.pool.QueryRow(ctx, `
        DELETE FROM refresh_tokens
        WHERE token_hash = $1 AND expira_em > now()
        RETURNING user_id`,
		hash).Scan(&userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, ErrInvalidRefresh
		}
		return uuid.Nil, err
	}
	return userID, nil
}

// Delete revoga o hash; revogar um hash ausente não é erro.
func (r *RefreshRepository) Delete(ctx context.Context, hash string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM refresh_tokens WHERE token_hash = $1`, hash)
	return err
}
