package event

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const eventoColumns = `id, titulo, descricao, tipo, categoria, data_inicio, data_fim, horario_exibicao, local, instrutor, status, criado_em, atualizado_em`

// Repository provê acesso à tabela eventos.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository cria instância do repositório.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create insere um novo evento.
func (r *Repository) Create(ctx context.Context, input CreateInput) (*Evento, error) {
	const query = `
        INSERT INTO eventos (titulo, descricao, tipo, categoria, data_inicio, data_fim, horario_exibicao, local, instrutor, status)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        RETURNING ` + eventoColumns

	row := r.pool.QueryRow(ctx, query,
		strings.TrimSpace(input.Titulo),
		input.Descricao,
		strings.TrimSpace(input.Tipo),
		strings.ToLower(input.Categoria),
		input.DataInicio,
		input.DataFim,
		strings.TrimSpace(input.HorarioExibicao),
		strings.TrimSpace(input.Local),
		input.Instrutor,
		strings.ToLower(input.Status),
	)
	return scanEvento(row)
}

// GetByID busca evento pelo identificador.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Evento, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+eventoColumns+` FROM eventos WHERE id = $1`, id)
	return scanEvento(row)
}

// ListUpcoming devolve eventos ativos a partir da data informada.
func (r *Repository) ListUpcoming(ctx context.Context, from time.Time, limit, offset int) ([]Evento, int64, error) {
	var total int64
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM eventos WHERE data_fim >= $1 AND status = 'ativo'`, from,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	const query = `
        SELECT ` + eventoColumns + `
        FROM eventos
        WHERE data_fim >= $1 AND status = 'ativo'
        ORDER BY data_inicio ASC, id ASC
        LIMIT $2 OFFSET $3
    `

	rows, err := r.pool.Query(ctx, query, from, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var eventos []Evento
	for rows.Next() {
		ev, err := scanEvento(rows)
		if err != nil {
			return nil, 0, err
		}
		eventos = append(eventos, *ev)
	}

	return eventos, total, rows.Err()
}

// Update aplica alterações parciais ao evento.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*Evento, error) {
	setParts := []string{}
	args := []any{}
	idx := 1

	appendSet := func(column string, value any) {
		setParts = append(setParts, fmt.Sprintf("%s = $%d", column, idx))
		args = append(args, value)
		idx++
	}

	if input.Titulo != nil {
		appendSet("titulo", strings.TrimSpace(*input.Titulo))
	}
	if input.Descricao != nil {
		appendSet("descricao", *input.Descricao)
	}
	if input.Tipo != nil {
		appendSet("tipo", strings.TrimSpace(*input.Tipo))
	}
	if input.Categoria != nil {
		appendSet("categoria", strings.ToLower(*input.Categoria))
	}
	if input.DataInicio != nil {
		appendSet("data_inicio", *input.DataInicio)
	}
	if input.DataFim != nil {
		appendSet("data_fim", *input.DataFim)
	}
	if input.HorarioExibicao != nil {
		appendSet("horario_exibicao", strings.TrimSpace(*input.HorarioExibicao))
	}
	if input.Local != nil {
		appendSet("local", strings.TrimSpace(*input.Local))
	}
	if input.Instrutor != nil {
		appendSet("instrutor", *input.Instrutor)
	}
	if input.Status != nil {
		appendSet("status", strings.ToLower(*input.Status))
	}

	if len(setParts) == 0 {
		return r.GetByID(ctx, id)
	}

	setParts = append(setParts, "atualizado_em = now()")
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE eventos SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(setParts, ", "), idx, eventoColumns)

	row := r.pool.QueryRow(ctx, query, args...)
	return scanEvento(row)
}

// Delete remove o evento.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM eventos WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CountUpcoming conta eventos ativos ainda não encerrados.
func (r *Repository) CountUpcoming(ctx context.Context, from time.Time) (int64, error) {
	var total int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM eventos WHERE data_fim >= $1 AND status = 'ativo'`, from,
	).Scan(&total)
	return total, err
}

func scanEvento(row pgx.Row) (*Evento, error) {
	var ev Evento
	if err := row.Scan(&ev.ID, &ev.Titulo, &ev.Descricao, &ev.Tipo, &ev.Categoria, &ev.DataInicio, &ev.DataFim, &ev.HorarioExibicao, &ev.Local, &ev.Instrutor, &ev.Status, &ev.CriadoEm, &ev.AtualizadoEm); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &ev, nil
}
