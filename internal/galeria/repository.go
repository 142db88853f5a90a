package galeria

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/erickreisti/patrulha-area-civil-sub003/internal/db"
)

const (
	categoriaColumns = `c.id, c.nome, c.slug, c.descricao, c.tipo, c.ordem, c.status, c.arquivada, c.criado_em, c.atualizado_em`
	itemColumns      = `id, titulo, descricao, categoria_id, tipo, arquivo_url, thumbnail_url, ordem, autor_id, status, destaque, views, criado_em`
)

// Repository provê acesso às tabelas galeria_categorias e galeria_itens.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository cria instância do repositório.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateCategoria insere nova categoria.
func (r *Repository) CreateCategoria(ctx context.Context, input CategoriaInput) (*Categoria, error) {
	const query = `
        INSERT INTO galeria_categorias (nome, slug, descricao, tipo, ordem, status, arquivada)
        VALUES ($1, $2, $3, $4, $5, TRUE, FALSE)
        RETURNING id, nome, slug, descricao, tipo, ordem, status, arquivada, criado_em, atualizado_em
    `

	row := r.pool.QueryRow(ctx, query,
		strings.TrimSpace(input.Nome),
		strings.TrimSpace(input.Slug),
		input.Descricao,
		strings.ToLower(input.Tipo),
		input.Ordem,
	)
	return scanCategoria(row)
}

// GetCategoria busca categoria pelo identificador.
func (r *Repository) GetCategoria(ctx context.Context, id uuid.UUID) (*Categoria, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, nome, slug, descricao, tipo, ordem, status, arquivada, criado_em, atualizado_em FROM galeria_categorias WHERE id = $1`, id)
	return scanCategoria(row)
}

// ListCategoriasAtivas devolve categorias ativas não arquivadas com os
// atributos derivados dos itens (contagem, destaque, última imagem).
func (r *Repository) ListCategoriasAtivas(ctx context.Context) ([]CategoriaResumo, error) {
	const query = `
        SELECT ` + categoriaColumns + `,
               COUNT(i.id) FILTER (WHERE i.status = TRUE) AS item_count,
               COALESCE(BOOL_OR(i.destaque) FILTER (WHERE i.status = TRUE), FALSE) AS tem_destaque,
               (SELECT arquivo_url FROM galeria_itens it
                 WHERE it.categoria_id = c.id AND it.status = TRUE AND it.tipo = 'foto'
                 ORDER BY it.criado_em DESC LIMIT 1) AS ultima_imagem_url
        FROM galeria_categorias c
        LEFT JOIN galeria_itens i ON i.categoria_id = c.id
        WHERE c.status = TRUE AND c.arquivada = FALSE
        GROUP BY c.id
        ORDER BY c.ordem ASC, c.nome ASC
    `

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var resumos []CategoriaResumo
	for rows.Next() {
		var res CategoriaResumo
		if err := rows.Scan(&res.ID, &res.Nome, &res.Slug, &res.Descricao, &res.Tipo, &res.Ordem, &res.Status, &res.Arquivada, &res.CriadoEm, &res.AtualizadoEm,
			&res.ItemCount, &res.TemDestaque, &res.UltimaImagemURL); err != nil {
			return nil, err
		}
		resumos = append(resumos, res)
	}

	return resumos, rows.Err()
}

// UpdateCategoria aplica alterações parciais (inclui arquivamento lógico).
func (r *Repository) UpdateCategoria(ctx context.Context, id uuid.UUID, input CategoriaUpdate) (*Categoria, error) {
	setParts := []string{}
	args := []any{}
	idx := 1

	appendSet := func(column string, value any) {
		setParts = append(setParts, fmt.Sprintf("%s = $%d", column, idx))
		args = append(args, value)
		idx++
	}

	if input.Nome != nil {
		appendSet("nome", strings.TrimSpace(*input.Nome))
	}
	if input.Slug != nil {
		appendSet("slug", strings.TrimSpace(*input.Slug))
	}
	if input.Descricao != nil {
		appendSet("descricao", *input.Descricao)
	}
	if input.Tipo != nil {
		appendSet("tipo", strings.ToLower(*input.Tipo))
	}
	if input.Ordem != nil {
		appendSet("ordem", *input.Ordem)
	}
	if input.Status != nil {
		appendSet("status", *input.Status)
	}
	if input.Arquivada != nil {
		appendSet("arquivada", *input.Arquivada)
	}

	if len(setParts) == 0 {
		return r.GetCategoria(ctx, id)
	}

	setParts = append(setParts, "atualizado_em = now()")
	args = append(args, id)

	query := fmt.Sprintf(`
        UPDATE galeria_categorias SET %s WHERE id = $%d
        RETURNING id, nome, slug, descricao, tipo, ordem, status, arquivada, criado_em, atualizado_em
    `, strings.Join(setParts, ", "), idx)

	row := r.pool.QueryRow(ctx, query, args...)
	return scanCategoria(row)
}

// DeleteCategoria remove a categoria e desvincula os itens na mesma
// transação: os itens sobrevivem órfãos (categoria_id nulo), nunca somem em
// cascata junto com a categoria.
func (r *Repository) DeleteCategoria(ctx context.Context, id uuid.UUID) error {
	return db.WithTx(ctx, r.pool, func(tctx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(tctx, `UPDATE galeria_itens SET categoria_id = NULL WHERE categoria_id = $1`, id); err != nil {
			return err
		}

		tag, err := tx.Exec(tctx, `DELETE FROM galeria_categorias WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrCategoriaNotFound
		}
		return nil
	})
}

// CreateItem insere novo item de galeria.
func (r *Repository) CreateItem(ctx context.Context, input ItemInput) (*Item, error) {
	const query = `
        INSERT INTO galeria_itens (titulo, descricao, categoria_id, tipo, arquivo_url, thumbnail_url, ordem, autor_id, status, destaque, views)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, TRUE, $9, 0)
        RETURNING ` + itemColumns

	row := r.pool.QueryRow(ctx, query,
		strings.TrimSpace(input.Titulo),
		input.Descricao,
		input.CategoriaID,
		strings.ToLower(input.Tipo),
		input.ArquivoURL,
		input.ThumbnailURL,
		input.Ordem,
		input.AutorID,
		input.Destaque,
	)
	return scanItem(row)
}

// GetItem busca item pelo identificador.
func (r *Repository) GetItem(ctx context.Context, id uuid.UUID) (*Item, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+itemColumns+` FROM galeria_itens WHERE id = $1`, id)
	return scanItem(row)
}

// ListItensBySlug devolve itens ativos da categoria identificada pelo slug.
func (r *Repository) ListItensBySlug(ctx context.Context, slug string, limit, offset int) ([]Item, int64, error) {
	var categoriaID uuid.UUID
	err := r.pool.QueryRow(ctx,
		`SELECT id FROM galeria_categorias WHERE slug = $1 AND status = TRUE AND arquivada = FALSE`,
		strings.TrimSpace(slug),
	).Scan(&categoriaID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, 0, ErrCategoriaNotFound
		}
		return nil, 0, err
	}

	var total int64
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM galeria_itens WHERE categoria_id = $1 AND status = TRUE`, categoriaID,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	const query = `
        SELECT ` + itemColumns + `
        FROM galeria_itens
        WHERE categoria_id = $1 AND status = TRUE
        ORDER BY destaque DESC, ordem ASC, criado_em DESC, id DESC
        LIMIT $2 OFFSET $3
    `

	rows, err := r.pool.Query(ctx, query, categoriaID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var itens []Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, 0, err
		}
		itens = append(itens, *item)
	}

	return itens, total, rows.Err()
}

// UpdateItem aplica alterações parciais ao item.
func (r *Repository) UpdateItem(ctx context.Context, id uuid.UUID, input ItemUpdate) (*Item, error) {
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
	if input.CategoriaID != nil {
		appendSet("categoria_id", *input.CategoriaID)
	}
	if input.Ordem != nil {
		appendSet("ordem", *input.Ordem)
	}
	if input.Status != nil {
		appendSet("status", *input.Status)
	}
	if input.Destaque != nil {
		appendSet("destaque", *input.Destaque)
	}
	if input.ThumbnailURL != nil {
		appendSet("thumbnail_url", *input.ThumbnailURL)
	}

	if len(setParts) == 0 {
		return r.GetItem(ctx, id)
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE galeria_itens SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(setParts, ", "), idx, itemColumns)

	row := r.pool.QueryRow(ctx, query, args...)
	return scanItem(row)
}

// DeleteItem remove o item.
func (r *Repository) DeleteItem(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM galeria_itens WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}

// IncrementViews soma visualizações dos itens da categoria. Best-effort:
// o chamador ignora erros aqui.
func (r *Repository) IncrementViews(ctx context.Context, itemIDs []uuid.UUID) error {
	if len(itemIDs) == 0 {
		return nil
	}
	_, err := r.pool.Exec(ctx, `UPDATE galeria_itens SET views = views + 1 WHERE id = ANY($1)`, itemIDs)
	return err
}

// CountItens conta itens ativos.
func (r *Repository) CountItens(ctx context.Context) (int64, error) {
	var total int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM galeria_itens WHERE status = TRUE`).Scan(&total)
	return total, err
}

func scanCategoria(row pgx.Row) (*Categoria, error) {
	var c Categoria
	if err := row.Scan(&c.ID, &c.Nome, &c.Slug, &c.Descricao, &c.Tipo, &c.Ordem, &c.Status, &c.Arquivada, &c.CriadoEm, &c.AtualizadoEm); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCategoriaNotFound
		}
		return nil, err
	}
	return &c, nil
}

func scanItem(row pgx.Row) (*Item, error) {
	var i Item
	if err := row.Scan(&i.ID, &i.Titulo, &i.Descricao, &i.CategoriaID, &i.Tipo, &i.ArquivoURL, &i.ThumbnailURL, &i.Ordem, &i.AutorID, &i.Status, &i.Destaque, &i.Views, &i.CriadoEm); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return &i, nil
}
