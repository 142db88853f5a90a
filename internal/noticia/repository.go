package noticia

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const noticiaColumns = `id, titulo, slug, conteudo, resumo, imagem, categoria, autor_id, destaque, data_publicacao, status, criado_em, atualizado_em`

// Repository provê acesso à tabela noticias.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository cria instância do repositório.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create insere uma nova notícia. Slug duplicado devolve violação única,
// tratada como conflito pela camada HTTP.
func (r *Repository) Create(ctx context.Context, input CreateInput) (*Noticia, error) {
	const query = `
        INSERT INTO noticias (titulo, slug, conteudo, resumo, imagem, categoria, autor_id, destaque, data_publicacao, status)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, CASE WHEN $9 = 'publicado' THEN now() ELSE NULL END, $9)
        RETURNING ` + noticiaColumns

	row := r.pool.QueryRow(ctx, query,
		strings.TrimSpace(input.Titulo),
		strings.TrimSpace(input.Slug),
		input.Conteudo,
		strings.TrimSpace(input.Resumo),
		input.Imagem,
		strings.TrimSpace(input.Categoria),
		input.AutorID,
		input.Destaque,
		strings.ToLower(input.Status),
	)
	return scanNoticia(row)
}

// GetByID busca notícia pelo identificador.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Noticia, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+noticiaColumns+` FROM noticias WHERE id = $1`, id)
	return scanNoticia(row)
}

// GetPublishedBySlug busca notícia publicada pelo slug.
func (r *Repository) GetPublishedBySlug(ctx context.Context, slug string) (*Noticia, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+noticiaColumns+` FROM noticias WHERE slug = $1 AND status = 'publicado'`,
		strings.TrimSpace(slug),
	)
	return scanNoticia(row)
}

// ListPublished devolve notícias publicadas, mais recentes primeiro.
func (r *Repository) ListPublished(ctx context.Context, filter Filter) ([]Noticia, int64, error) {
	clauses := []string{"status = 'publicado'"}
	args := []any{}
	idx := 1

	if categoria := strings.TrimSpace(filter.Categoria); categoria != "" {
		clauses = append(clauses, fmt.Sprintf("categoria = $%d", idx))
		args = append(args, categoria)
		idx++
	}

	where := " WHERE " + strings.Join(clauses, " AND ")

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM noticias`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + noticiaColumns + ` FROM noticias` + where +
		fmt.Sprintf(" ORDER BY destaque DESC, data_publicacao DESC, id DESC LIMIT $%d OFFSET $%d", idx, idx+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var noticias []Noticia
	for rows.Next() {
		n, err := scanNoticia(rows)
		if err != nil {
			return nil, 0, err
		}
		noticias = append(noticias, *n)
	}

	return noticias, total, rows.Err()
}

// Update aplica alterações parciais. Ao publicar sem data definida, a data de
// publicação é preenchida com o momento da promoção.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*Noticia, error) {
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
	if input.Slug != nil {
		appendSet("slug", strings.TrimSpace(*input.Slug))
	}
	if input.Conteudo != nil {
		appendSet("conteudo", *input.Conteudo)
	}
	if input.Resumo != nil {
		appendSet("resumo", strings.TrimSpace(*input.Resumo))
	}
	if input.Imagem != nil {
		appendSet("imagem", *input.Imagem)
	}
	if input.Categoria != nil {
		appendSet("categoria", strings.TrimSpace(*input.Categoria))
	}
	if input.Destaque != nil {
		appendSet("destaque", *input.Destaque)
	}
	if input.DataPublicacao != nil {
		appendSet("data_publicacao", *input.DataPublicacao)
	}
	if input.Status != nil {
		status := strings.ToLower(*input.Status)
		appendSet("status", status)
		if status == StatusPublicado && input.DataPublicacao == nil {
			setParts = append(setParts, "data_publicacao = COALESCE(data_publicacao, now())")
		}
	}

	if len(setParts) == 0 {
		return r.GetByID(ctx, id)
	}

	setParts = append(setParts, "atualizado_em = now()")
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE noticias SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(setParts, ", "), idx, noticiaColumns)

	row := r.pool.QueryRow(ctx, query, args...)
	return scanNoticia(row)
}

// Delete remove a notícia.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM noticias WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CountPublished conta notícias publicadas.
func (r *Repository) CountPublished(ctx context.Context) (int64, error) {
	var total int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM noticias WHERE status = 'publicado'`).Scan(&total)
	return total, err
}

func scanNoticia(row pgx.Row) (*Noticia, error) {
	var n Noticia
	if err := row.Scan(&n.ID, &n.Titulo, &n.Slug, &n.Conteudo, &n.Resumo, &n.Imagem, &n.Categoria, &n.AutorID, &n.Destaque, &n.DataPublicacao, &n.Status, &n.CriadoEm, &n.AtualizadoEm); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &n, nil
}
