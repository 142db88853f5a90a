package activity

import (
	"time"

	"github.com/google/uuid"
)

// Tipos de ação registrados no trilho de auditoria.
const (
	ActionAgentCreated    = "agent_creation"
	ActionAgentDeleted    = "agent_deletion"
	ActionStatusChanged   = "agent_status_change"
	ActionMatriculaChange = "agent_matricula_change"
	ActionAvatarUpload    = "avatar_upload"
	ActionMediaUpload     = "media_upload"
	ActionEventoMutation  = "evento_mutation"
	ActionNoticiaMutation = "noticia_mutation"
	ActionGaleriaMutation = "galeria_mutation"
	ActionBroadcast       = "notification_broadcast"
)

// Entry descreve uma linha do log de sistema. Registros são append-only:
// nunca atualizados nem removidos por esta camada.
type Entry struct {
	ID           uuid.UUID      `json:"id"`
	UserID       uuid.UUID      `json:"user_id"`
	ActionType   string         `json:"action_type"`
	Description  string         `json:"description"`
	ResourceType string         `json:"resource_type"`
	ResourceID   *string        `json:"resource_id,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

// EntryWithActor agrega a linha com nome/e-mail de quem executou a ação.
type EntryWithActor struct {
	Entry
	AtorNome  string `json:"ator_nome"`
	AtorEmail string `json:"ator_email"`
}
