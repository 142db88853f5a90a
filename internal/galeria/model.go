package galeria

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrCategoriaNotFound indica categoria inexistente.
	ErrCategoriaNotFound = errors.New("categoria não encontrada")
	// ErrItemNotFound indica item inexistente.
	ErrItemNotFound = errors.New("item não encontrado")
)

// Tipos de mídia aceitos.
const (
	TipoFotos  = "fotos"
	TipoVideos = "videos"

	TipoItemFoto  = "foto"
	TipoItemVideo = "video"
)

// Categoria agrupa itens de galeria sob um slug público.
type Categoria struct {
	ID           uuid.UUID `json:"id"`
	Nome         string    `json:"nome"`
	Slug         string    `json:"slug"`
	Descricao    *string   `json:"descricao,omitempty"`
	Tipo         string    `json:"tipo"`
	Ordem        int       `json:"ordem"`
	Status       bool      `json:"status"`
	Arquivada    bool      `json:"arquivada"`
	CriadoEm     time.Time `json:"criado_em"`
	AtualizadoEm time.Time `json:"atualizado_em"`
}

// CategoriaResumo agrega atributos derivados dos itens relacionados.
// Nenhum deles é persistido na categoria.
type CategoriaResumo struct {
	Categoria
	ItemCount       int64   `json:"item_count"`
	TemDestaque     bool    `json:"tem_destaque"`
	UltimaImagemURL *string `json:"ultima_imagem_url,omitempty"`
}

// Item representa uma foto ou vídeo da galeria.
type Item struct {
	ID           uuid.UUID  `json:"id"`
	Titulo       string     `json:"titulo"`
	Descricao    *string    `json:"descricao,omitempty"`
	CategoriaID  *uuid.UUID `json:"categoria_id,omitempty"`
	Tipo         string     `json:"tipo"`
	ArquivoURL   string     `json:"arquivo_url"`
	ThumbnailURL *string    `json:"thumbnail_url,omitempty"`
	Ordem        int        `json:"ordem"`
	AutorID      *uuid.UUID `json:"autor_id,omitempty"`
	Status       bool       `json:"status"`
	Destaque     bool       `json:"destaque"`
	Views        int64      `json:"views"`
	CriadoEm     time.Time  `json:"criado_em"`
}

// CategoriaInput encapsula criação de categoria.
type CategoriaInput struct {
	Nome      string
	Slug      string
	Descricao *string
	Tipo      string
	Ordem     int
}

// CategoriaUpdate permite atualização parcial, incluindo arquivamento.
type CategoriaUpdate struct {
	Nome      *string
	Slug      *string
	Descricao *string
	Tipo      *string
	Ordem     *int
	Status    *bool
	Arquivada *bool
}

// ItemInput encapsula criação de item.
type ItemInput struct {
	Titulo       string
	Descricao    *string
	CategoriaID  *uuid.UUID
	Tipo         string
	ArquivoURL   string
	ThumbnailURL *string
	Ordem        int
	AutorID      *uuid.UUID
	Destaque     bool
}

// ItemUpdate permite atualização parcial de item.
type ItemUpdate struct {
	Titulo       *string
	Descricao    *string
	CategoriaID  *uuid.UUID
	Ordem        *int
	Status       *bool
	Destaque     *bool
	ThumbnailURL *string
}
