package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const profileColumns = `id, matricula, email, full_name, role, status, avatar_url, graduacao, uf, senha_hash, created_at, updated_at`

// full_name não é único; o id desempata para a paginação ser estável.
const listOrder = "full_name ASC, id ASC"

// Repository provê acesso à tabela profiles.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository cria instância do repositório.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create insere um novo perfil.
func (r *Repository) Create(ctx context.Context, input CreateInput) (*Profile, error) {
	const query = `
        INSERT INTO profiles (matricula, email, full_name, role, status, senha_hash, graduacao, uf)
        VALUES ($1, $2, $3, $4, TRUE, $5, $6, $7)
        RETURNING ` + profileColumns

	row := r.pool.QueryRow(ctx, query,
		strings.TrimSpace(input.Matricula),
		strings.ToLower(strings.TrimSpace(input.Email)),
		strings.TrimSpace(input.FullName),
		strings.ToLower(input.Role),
		input.SenhaHash,
		input.Graduacao,
		input.UF,
	)
	return scanProfile(row)
}

// GetByID busca perfil pelo identificador.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Profile, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id)
	return scanProfile(row)
}

// GetByEmail busca perfil pelo e-mail normalizado.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*Profile, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE email = $1`, strings.ToLower(strings.TrimSpace(email)))
	return scanProfile(row)
}

// List devolve perfis paginados com o total para o envelope de paginação.
func (r *Repository) List(ctx context.Context, filter Filter) ([]Profile, int64, error) {
	var (
		clauses []string
		args    []any
		idx     = 1
	)

	if filter.Status != nil {
		clauses = append(clauses, fmt.Sprintf("status = $%d", idx))
		args = append(args, *filter.Status)
		idx++
	}
	if uf := strings.ToUpper(strings.TrimSpace(filter.UF)); uf != "" {
		clauses = append(clauses, fmt.Sprintf("uf = $%d", idx))
		args = append(args, uf)
		idx++
	}
	if busca := strings.TrimSpace(filter.Busca); busca != "" {
		clauses = append(clauses, fmt.Sprintf("(full_name ILIKE $%d OR email ILIKE $%d OR matricula ILIKE $%d)", idx, idx, idx))
		args = append(args, "%"+busca+"%")
		idx++
	}

	where := ""
	if len(clauses) > 0 {
		where = " WHERE " + strings.Join(clauses, " AND ")
	}

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM profiles`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + profileColumns + ` FROM profiles` + where +
		fmt.Sprintf(" ORDER BY "+listOrder+" LIMIT $%d OFFSET $%d", idx, idx+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var profiles []Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, 0, err
		}
		profiles = append(profiles, *p)
	}

	return profiles, total, rows.Err()
}

// UpdateStatus liga/desliga o perfil e devolve a linha atualizada.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status bool) (*Profile, error) {
	const query = `
        UPDATE profiles SET status = $1, updated_at = now()
        WHERE id = $2
        RETURNING ` + profileColumns

	row := r.pool.QueryRow(ctx, query, status, id)
	return scanProfile(row)
}

// UpdateMatricula altera o identificador funcional.
func (r *Repository) UpdateMatricula(ctx context.Context, id uuid.UUID, matricula string) (*Profile, error) {
	const query = `
        UPDATE profiles SET matricula = $1, updated_at = now()
        WHERE id = $2
        RETURNING ` + profileColumns

	row := r.pool.QueryRow(ctx, query, strings.TrimSpace(matricula), id)
	return scanProfile(row)
}

// UpdateAvatar grava a URL pública do avatar.
func (r *Repository) UpdateAvatar(ctx context.Context, id uuid.UUID, avatarURL string) (*Profile, error) {
	const query = `
        UPDATE profiles SET avatar_url = $1, updated_at = now()
        WHERE id = $2
        RETURNING ` + profileColumns

	row := r.pool.QueryRow(ctx, query, avatarURL, id)
	return scanProfile(row)
}

// UpdateSelf aplica alterações permitidas ao próprio agente.
func (r *Repository) UpdateSelf(ctx context.Context, id uuid.UUID, input SelfUpdateInput) (*Profile, error) {
	setParts := []string{}
	args := []any{}
	idx := 1

	if input.FullName != nil {
		setParts = append(setParts, fmt.Sprintf("full_name = $%d", idx))
		args = append(args, strings.TrimSpace(*input.FullName))
		idx++
	}
	if input.Graduacao != nil {
		setParts = append(setParts, fmt.Sprintf("graduacao = $%d", idx))
		args = append(args, strings.TrimSpace(*input.Graduacao))
		idx++
	}
	if input.UF != nil {
		setParts = append(setParts, fmt.Sprintf("uf = $%d", idx))
		args = append(args, strings.ToUpper(strings.TrimSpace(*input.UF)))
		idx++
	}

	if len(setParts) == 0 {
		return r.GetByID(ctx, id)
	}

	setParts = append(setParts, "updated_at = now()")
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE profiles SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(setParts, ", "), idx, profileColumns)

	row := r.pool.QueryRow(ctx, query, args...)
	return scanProfile(row)
}

// Delete remove o perfil. Devolve ErrNotFound quando nada foi removido.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM profiles WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListActiveAdmins devolve os administradores ativos (alvo do fan-out).
func (r *Repository) ListActiveAdmins(ctx context.Context) ([]Profile, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+profileColumns+` FROM profiles WHERE role = $1 AND status = TRUE ORDER BY full_name ASC`, RoleAdmin)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var admins []Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		admins = append(admins, *p)
	}

	return admins, rows.Err()
}

// Count conta perfis, opcionalmente só os ativos.
func (r *Repository) Count(ctx context.Context, onlyActive bool) (int64, error) {
	query := `SELECT COUNT(*) FROM profiles`
	if onlyActive {
		query += ` WHERE status = TRUE`
	}

	var total int64
	err := r.pool.QueryRow(ctx, query).Scan(&total)
	return total, err
}

func scanProfile(row pgx.Row) (*Profile, error) {
	var p Profile
	if err := row.Scan(&p.ID, &p.Matricula, &p.Email, &p.FullName, &p.Role, &p.Status, &p.AvatarURL, &p.Graduacao, &p.UF, &p.SenhaHash, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}
