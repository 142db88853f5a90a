package event

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound indica evento inexistente.
	ErrNotFound = errors.New("evento não encontrado")
)

// Categorias aceitas para eventos.
const (
	CategoriaTreinamento = "treinamento"
	CategoriaOperacao    = "operacao"
	CategoriaReuniao     = "reuniao"
)

// Categorias lista os valores válidos na ordem de exibição.
var Categorias = []string{CategoriaTreinamento, CategoriaOperacao, CategoriaReuniao}

// Evento representa uma atividade agendada da unidade.
type Evento struct {
	ID              uuid.UUID `json:"id"`
	Titulo          string    `json:"titulo"`
	Descricao       *string   `json:"descricao,omitempty"`
	Tipo            string    `json:"tipo"`
	Categoria       string    `json:"categoria"`
	DataInicio      time.Time `json:"data_inicio"`
	DataFim         time.Time `json:"data_fim"`
	HorarioExibicao string    `json:"horario_exibicao"`
	Local           string    `json:"local"`
	Instrutor       *string   `json:"instrutor,omitempty"`
	Status          string    `json:"status"`
	CriadoEm        time.Time `json:"criado_em"`
	AtualizadoEm    time.Time `json:"atualizado_em"`
}

// CreateInput encapsula campos para criação de evento.
type CreateInput struct {
	Titulo          string
	Descricao       *string
	Tipo            string
	Categoria       string
	DataInicio      time.Time
	DataFim         time.Time
	HorarioExibicao string
	Local           string
	Instrutor       *string
	Status          string
}

// UpdateInput permite atualização parcial de evento.
type UpdateInput struct {
	Titulo          *string
	Descricao       *string
	Tipo            *string
	Categoria       *string
	DataInicio      *time.Time
	DataFim         *time.Time
	HorarioExibicao *string
	Local           *string
	Instrutor       *string
	Status          *string
}
