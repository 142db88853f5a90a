package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/erickreisti/patrulha-area-civil-sub003/internal/activity"
	"github.com/erickreisti/patrulha-area-civil-sub003/internal/event"
	"github.com/erickreisti/patrulha-area-civil-sub003/internal/util"
)

type eventoPayload struct {
	Titulo          *string `json:"titulo"`
	Descricao       *string `json:"descricao"`
	Tipo            *string `json:"tipo"`
	Categoria       *string `json:"categoria"`
	DataInicio      *string `json:"data_inicio"`
	DataFim         *string `json:"data_fim"`
	HorarioExibicao *string `json:"horario_exibicao"`
	Local           *string `json:"local"`
	Instrutor       *string `json:"instrutor"`
	Status          *string `json:"status"`
}

// CreateEvento cadastra um evento e registra a ação no log de sistema.
func (h *Handler) CreateEvento(w http.ResponseWriter, r *http.Request) {
	adminID, err := h.subjectUUID(r)
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "Não autorizado", nil)
		return
	}

	var payload eventoPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "JSON inválido", nil)
		return
	}

	fieldErrs := util.FieldErrors{}
	fieldErrs.Check("titulo", deref(payload.Titulo), util.Required(), util.MaxLen(160))
	fieldErrs.Check("categoria", deref(payload.Categoria), util.OneOf(event.Categorias...))
	fieldErrs.Check("data_inicio", deref(payload.DataInicio), util.Required(), util.ISODate())
	fieldErrs.Check("data_fim", deref(payload.DataFim), util.Required(), util.ISODate())
	fieldErrs.Check("local", deref(payload.Local), util.Required(), util.MaxLen(200))

	var inicio, fim time.Time
	if fieldErrs.Empty() {
		inicio, _ = util.ParseISODate(*payload.DataInicio)
		fim, _ = util.ParseISODate(*payload.DataFim)
		if fim.Before(inicio) {
			fieldErrs.Add("data_fim", "deve ser igual ou posterior a data_inicio")
		}
	}
	if !fieldErrs.Empty() {
		WriteError(w, http.StatusBadRequest, "Erro de validação", fieldErrs)
		return
	}

	status := deref(payload.Status)
	if status == "" {
		status = "ativo"
	}
	tipo := deref(payload.Tipo)
	if tipo == "" {
		tipo = deref(payload.Categoria)
	}

	created, err := h.eventos.Create(r.Context(), event.CreateInput{
		Titulo:          *payload.Titulo,
		Descricao:       payload.Descricao,
		Tipo:            tipo,
		Categoria:       *payload.Categoria,
		DataInicio:      inicio,
		DataFim:         fim,
		HorarioExibicao: deref(payload.HorarioExibicao),
		Local:           *payload.Local,
		Instrutor:       payload.Instrutor,
		Status:          status,
	})
	if err != nil {
		h.writeInternal(w, err, "Não foi possível criar o evento")
		return
	}

	h.recordEventoMutation(r, adminID, created.ID.String(), fmt.Sprintf("Evento %q criado", created.Titulo))

	WriteMessage(w, http.StatusCreated, created, "Evento criado com sucesso")
}

// UpdateEvento aplica atualização parcial a um evento.
func (h *Handler) UpdateEvento(w http.ResponseWriter, r *http.Request) {
	adminID, err := h.subjectUUID(r)
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "Não autorizado", nil)
		return
	}

	id, ok := pathUUID(w, r)
	if !ok {
		return
	}

	var payload eventoPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "JSON inválido", nil)
		return
	}

	fieldErrs := util.FieldErrors{}
	fieldErrs.CheckOptional("titulo", payload.Titulo, util.MaxLen(160))
	fieldErrs.CheckOptional("categoria", payload.Categoria, util.OneOf(event.Categorias...))
	fieldErrs.CheckOptional("data_inicio", payload.DataInicio, util.ISODate())
	fieldErrs.CheckOptional("data_fim", payload.DataFim, util.ISODate())
	fieldErrs.CheckOptional("status", payload.Status, util.OneOf("ativo", "cancelado", "concluido"))
	if !fieldErrs.Empty() {
		WriteError(w, http.StatusBadRequest, "Erro de validação", fieldErrs)
		return
	}

	input := event.UpdateInput{
		Titulo:          payload.Titulo,
		Descricao:       payload.Descricao,
		Tipo:            payload.Tipo,
		Categoria:       payload.Categoria,
		HorarioExibicao: payload.HorarioExibicao,
		Local:           payload.Local,
		Instrutor:       payload.Instrutor,
		Status:          payload.Status,
	}
	if payload.DataInicio != nil {
		inicio, _ := util.ParseISODate(*payload.DataInicio)
		input.DataInicio = &inicio
	}
	if payload.DataFim != nil {
		fim, _ := util.ParseISODate(*payload.DataFim)
		input.DataFim = &fim
	}

	atual, err := h.eventos.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, event.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "Evento não encontrado", nil)
			return
		}
		h.writeInternal(w, err, "Não foi possível carregar o evento")
		return
	}

	// O intervalo precisa continuar válido após mesclar campos parciais.
	inicio, fim := atual.DataInicio, atual.DataFim
	if input.DataInicio != nil {
		inicio = *input.DataInicio
	}
	if input.DataFim != nil {
		fim = *input.DataFim
	}
	if fim.Before(inicio) {
		WriteError(w, http.StatusBadRequest, "Erro de validação", map[string][]string{
			"data_fim": {"deve ser igual ou posterior a data_inicio"},
		})
		return
	}

	updated, err := h.eventos.Update(r.Context(), id, input)
	if err != nil {
		if errors.Is(err, event.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "Evento não encontrado", nil)
			return
		}
		h.writeInternal(w, err, "Não foi possível atualizar o evento")
		return
	}

	h.recordEventoMutation(r, adminID, updated.ID.String(), fmt.Sprintf("Evento %q atualizado", updated.Titulo))

	WriteSuccess(w, http.StatusOK, updated)
}

// DeleteEvento remove um evento.
func (h *Handler) DeleteEvento(w http.ResponseWriter, r *http.Request) {
	adminID, err := h.subjectUUID(r)
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "Não autorizado", nil)
		return
	}

	id, ok := pathUUID(w, r)
	if !ok {
		return
	}

	alvo, err := h.eventos.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, event.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "Evento não encontrado", nil)
			return
		}
		h.writeInternal(w, err, "Não foi possível carregar o evento")
		return
	}

	if err := h.eventos.Delete(r.Context(), id); err != nil {
		if errors.Is(err, event.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "Evento não encontrado", nil)
			return
		}
		h.writeInternal(w, err, "Não foi possível remover o evento")
		return
	}

	h.recordEventoMutation(r, adminID, alvo.ID.String(), fmt.Sprintf("Evento %q removido", alvo.Titulo))

	WriteMessage(w, http.StatusOK, nil, "Evento removido com sucesso")
}

func (h *Handler) recordEventoMutation(r *http.Request, adminID uuid.UUID, resourceID, description string) {
	ctx, cancel := sideEffectCtx(r.Context())
	defer cancel()

	h.auditoria.Record(ctx, activity.Entry{
		UserID:       adminID,
		ActionType:   activity.ActionEventoMutation,
		Description:  description,
		ResourceType: "evento",
		ResourceID:   &resourceID,
	})
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
