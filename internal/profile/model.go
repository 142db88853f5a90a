package profile

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound indica perfil inexistente.
	ErrNotFound = errors.New("perfil não encontrado")
)

// Papéis aceitos para um perfil.
const (
	RoleAdmin  = "admin"
	RoleAgente = "agente"
)

// Profile representa a identidade de um agente ou administrador.
type Profile struct {
	ID        uuid.UUID `json:"id"`
	Matricula string    `json:"matricula"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Role      string    `json:"role"`
	Status    bool      `json:"status"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
	Graduacao *string   `json:"graduacao,omitempty"`
	UF        *string   `json:"uf,omitempty"`
	SenhaHash string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsAdmin indica papel administrativo.
func (p Profile) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// CreateInput encapsula campos para criação de agente.
type CreateInput struct {
	Matricula string
	Email     string
	FullName  string
	Role      string
	SenhaHash string
	Graduacao *string
	UF        *string
}

// SelfUpdateInput cobre os campos que o próprio agente pode alterar.
// Role, status e matrícula ficam de fora por contrato: são admin-only.
type SelfUpdateInput struct {
	FullName  *string
	Graduacao *string
	UF        *string
}

// Filter parametriza a listagem paginada de perfis.
type Filter struct {
	Status *bool
	UF     string
	Busca  string
	Limit  int
	Offset int
}
