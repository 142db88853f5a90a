package notification

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound cobre dois casos de propósito: registro inexistente e
	// registro de outro dono. Não revelamos existência a quem não é dono.
	ErrNotFound = errors.New("notificação não encontrada")
)

// Tipos de notificação aceitos.
const (
	TipoSystem        = "system"
	TipoUserCreated   = "user_created"
	TipoNewsPublished = "news_published"
	TipoGalleryUpload = "gallery_upload"
	TipoWarning       = "warning"
	TipoInfo          = "info"
)

// Tipos lista os valores válidos.
var Tipos = []string{TipoSystem, TipoUserCreated, TipoNewsPublished, TipoGalleryUpload, TipoWarning, TipoInfo}

// Notificacao pertence exclusivamente ao user_id. Só o dono lê, marca como
// lida ou remove — inclusive administradores não atravessam essa regra.
type Notificacao struct {
	ID        uuid.UUID      `json:"id"`
	UserID    uuid.UUID      `json:"user_id"`
	Tipo      string         `json:"tipo"`
	Titulo    string         `json:"titulo"`
	Mensagem  string         `json:"mensagem"`
	ActionURL *string        `json:"action_url,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Lida      bool           `json:"lida"`
	ExpiraEm  *time.Time     `json:"expira_em,omitempty"`
	CriadaEm  time.Time      `json:"criada_em"`
}

// Input encapsula o conteúdo de uma nova notificação.
type Input struct {
	Tipo      string
	Titulo    string
	Mensagem  string
	ActionURL *string
	Metadata  map[string]any
	ExpiraEm  *time.Time
}
