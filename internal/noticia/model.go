package noticia

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound indica notícia inexistente.
	ErrNotFound = errors.New("notícia não encontrada")
)

// Estados do ciclo de publicação.
const (
	StatusRascunho  = "rascunho"
	StatusPublicado = "publicado"
	StatusArquivado = "arquivado"
)

// Statuses lista os estados válidos.
var Statuses = []string{StatusRascunho, StatusPublicado, StatusArquivado}

// Noticia representa uma matéria do portal.
type Noticia struct {
	ID             uuid.UUID  `json:"id"`
	Titulo         string     `json:"titulo"`
	Slug           string     `json:"slug"`
	Conteudo       string     `json:"conteudo"`
	Resumo         string     `json:"resumo"`
	Imagem         *string    `json:"imagem,omitempty"`
	Categoria      string     `json:"categoria"`
	AutorID        uuid.UUID  `json:"autor_id"`
	Destaque       bool       `json:"destaque"`
	DataPublicacao *time.Time `json:"data_publicacao,omitempty"`
	Status         string     `json:"status"`
	CriadoEm       time.Time  `json:"criado_em"`
	AtualizadoEm   time.Time  `json:"atualizado_em"`
}

// CreateInput encapsula campos para criação de notícia.
type CreateInput struct {
	Titulo    string
	Slug      string
	Conteudo  string
	Resumo    string
	Imagem    *string
	Categoria string
	AutorID   uuid.UUID
	Destaque  bool
	Status    string
}

// UpdateInput permite atualização parcial.
type UpdateInput struct {
	Titulo         *string
	Slug           *string
	Conteudo       *string
	Resumo         *string
	Imagem         *string
	Categoria      *string
	Destaque       *bool
	Status         *string
	DataPublicacao *time.Time
}

// Filter parametriza a listagem pública.
type Filter struct {
	Categoria string
	Limit     int
	Offset    int
}
