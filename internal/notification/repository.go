package notification

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const notificacaoColumns = `id, user_id, tipo, titulo, mensagem, action_url, metadata, lida, expira_em, criada_em`

// criada_em não é única; o id desempata para a paginação ser estável.
const listOrder = "criada_em DESC, id DESC"

// Repository provê acesso à tabela notificacoes.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository cria instância do repositório.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Insert grava uma notificação para um destinatário.
func (r *Repository) Insert(ctx context.Context, userID uuid.UUID, input Input) (*Notificacao, error) {
	const query = `
        INSERT INTO notificacoes (user_id, tipo, titulo, mensagem, action_url, metadata, lida, expira_em)
        VALUES ($1, $2, $3, $4, $5, $6, FALSE, $7)
        RETURNING ` + notificacaoColumns

	metadata, err := marshalMetadata(input.Metadata)
	if err != nil {
		return nil, err
	}

	row := r.pool.QueryRow(ctx, query,
		userID,
		strings.ToLower(strings.TrimSpace(input.Tipo)),
		strings.TrimSpace(input.Titulo),
		strings.TrimSpace(input.Mensagem),
		input.ActionURL,
		metadata,
		input.ExpiraEm,
	)
	return scanNotificacao(row)
}

// InsertMany grava uma linha por destinatário num único batch. Devolve a
// quantidade efetivamente inserida; falhas parciais não são revertidas.
func (r *Repository) InsertMany(ctx context.Context, userIDs []uuid.UUID, input Input) (int, error) {
	if len(userIDs) == 0 {
		return 0, nil
	}

	metadata, err := marshalMetadata(input.Metadata)
	if err != nil {
		return 0, err
	}

	const query = `
        INSERT INTO notificacoes (user_id, tipo, titulo, mensagem, action_url, metadata, lida, expira_em)
        VALUES ($1, $2, $3, $4, $5, $6, FALSE, $7)
    `

	batch := &pgx.Batch{}
	for _, userID := range userIDs {
		batch.Queue(query,
			userID,
			strings.ToLower(strings.TrimSpace(input.Tipo)),
			strings.TrimSpace(input.Titulo),
			strings.TrimSpace(input.Mensagem),
			input.ActionURL,
			metadata,
			input.ExpiraEm,
		)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	inserted := 0
	var firstErr error
	for range userIDs {
		if _, err := results.Exec(); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		inserted++
	}

	return inserted, firstErr
}

// ListByUser devolve notificações do dono, mais recentes primeiro, omitindo
// as expiradas.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID, onlyUnread bool, limit, offset int) ([]Notificacao, int64, error) {
	clauses := []string{"user_id = $1", "(expira_em IS NULL OR expira_em > now())"}
	if onlyUnread {
		clauses = append(clauses, "lida = FALSE")
	}
	where := " WHERE " + strings.Join(clauses, " AND ")

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM notificacoes`+where, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + notificacaoColumns + ` FROM notificacoes` + where +
		" ORDER BY " + listOrder + " LIMIT $2 OFFSET $3"

	rows, err := r.pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var notificacoes []Notificacao
	for rows.Next() {
		n, err := scanNotificacao(rows)
		if err != nil {
			return nil, 0, err
		}
		notificacoes = append(notificacoes, *n)
	}

	return notificacoes, total, rows.Err()
}

// MarkRead marca como lida. O filtro por user_id garante o escopo de dono:
// id de outro usuário resulta em ErrNotFound.
func (r *Repository) MarkRead(ctx context.Context, id, userID uuid.UUID) (*Notificacao, error) {
	const query = `
        UPDATE notificacoes SET lida = TRUE
        WHERE id = $1 AND user_id = $2
        RETURNING ` + notificacaoColumns

	row := r.pool.QueryRow(ctx, query, id, userID)
	return scanNotificacao(row)
}

// MarkAllRead marca todas as notificações do dono como lidas.
func (r *Repository) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE notificacoes SET lida = TRUE WHERE user_id = $1 AND lida = FALSE`, userID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// Delete remove a notificação do dono.
func (r *Repository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM notificacoes WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CountUnread conta notificações não lidas do dono.
func (r *Repository) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	var total int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM notificacoes WHERE user_id = $1 AND lida = FALSE AND (expira_em IS NULL OR expira_em > now())`,
		userID,
	).Scan(&total)
	return total, err
}

func marshalMetadata(metadata map[string]any) ([]byte, error) {
	if metadata == nil {
		return nil, nil
	}
	return json.Marshal(metadata)
}

func scanNotificacao(row pgx.Row) (*Notificacao, error) {
	var (
		n   Notificacao
		raw []byte
	)
	if err := row.Scan(&n.ID, &n.UserID, &n.Tipo, &n.Titulo, &n.Mensagem, &n.ActionURL, &raw, &n.Lida, &n.ExpiraEm, &n.CriadaEm); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &n.Metadata)
	}
	return &n, nil
}
