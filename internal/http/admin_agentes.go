package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/erickreisti/patrulha-area-civil-sub003/internal/activity"
	"github.com/erickreisti/patrulha-area-civil-sub003/internal/auth"
	"github.com/erickreisti/patrulha-area-civil-sub003/internal/db"
	"github.com/erickreisti/patrulha-area-civil-sub003/internal/notification"
	"github.com/erickreisti/patrulha-area-civil-sub003/internal/profile"
	"github.com/erickreisti/patrulha-area-civil-sub003/internal/util"
)

// ListAgentes devolve perfis paginados com filtro por status, UF e busca.
func (h *Handler) ListAgentes(w http.ResponseWriter, r *http.Request) {
	page, limit, offset := parsePagination(r)

	filter := profile.Filter{
		UF:     strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("uf"))),
		Busca:  strings.TrimSpace(r.URL.Query().Get("busca")),
		Limit:  limit,
		Offset: offset,
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		status, err := strconv.ParseBool(raw)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "Erro de validação", map[string][]string{
				"status": {"valor deve ser true ou false"},
			})
			return
		}
		filter.Status = &status
	}

	agentes, total, err := h.profiles.List(r.Context(), filter)
	if err != nil {
		h.writeInternal(w, err, "Não foi possível listar os agentes")
		return
	}

	WritePage(w, http.StatusOK, agentes, NewPagination(page, limit, total))
}

// CreateAgente cadastra um perfil, notifica o novo agente e os demais
// administradores e registra a ação no log de sistema.
func (h *Handler) CreateAgente(w http.ResponseWriter, r *http.Request) {
	adminID, err := h.subjectUUID(r)
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "Não autorizado", nil)
		return
	}

	var payload struct {
		Matricula string  `json:"matricula"`
		Email     string  `json:"email"`
		FullName  string  `json:"full_name"`
		Role      string  `json:"role"`
		Senha     string  `json:"senha"`
		Graduacao *string `json:"graduacao"`
		UF        *string `json:"uf"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "JSON inválido", nil)
		return
	}

	if payload.Role == "" {
		payload.Role = profile.RoleAgente
	}

	fieldErrs := util.FieldErrors{}
	fieldErrs.Check("matricula", payload.Matricula, util.Required(), util.MinLen(4), util.MaxLen(20))
	fieldErrs.Check("email", payload.Email, util.Required(), util.Email())
	fieldErrs.Check("full_name", payload.FullName, util.Required(), util.MinLen(3), util.MaxLen(120))
	fieldErrs.Check("role", payload.Role, util.OneOf(profile.RoleAdmin, profile.RoleAgente))
	fieldErrs.Check("senha", payload.Senha, util.Required(), util.MinLen(8))
	fieldErrs.CheckOptional("uf", payload.UF, util.MinLen(2), util.MaxLen(2))
	if !fieldErrs.Empty() {
		WriteError(w, http.StatusBadRequest, "Erro de validação", fieldErrs)
		return
	}

	senhaHash, err := auth.Hash(payload.Senha)
	if err != nil {
		h.writeInternal(w, err, "Não foi possível processar a senha")
		return
	}

	created, err := h.profiles.Create(r.Context(), profile.CreateInput{
		Matricula: strings.TrimSpace(payload.Matricula),
		Email:     strings.ToLower(strings.TrimSpace(payload.Email)),
		FullName:  strings.TrimSpace(payload.FullName),
		Role:      payload.Role,
		SenhaHash: senhaHash,
		Graduacao: payload.Graduacao,
		UF:        payload.UF,
	})
	if err != nil {
		if db.IsUniqueViolation(err) {
			WriteError(w, http.StatusConflict, "Matrícula ou e-mail já cadastrado", nil)
			return
		}
		h.writeInternal(w, err, "Não foi possível criar o agente")
		return
	}

	// Efeitos colaterais: nenhum deles reverte a criação já persistida.
	sideCtx, cancel := sideEffectCtx(r.Context())
	defer cancel()

	if _, err := h.notifier.Notify(sideCtx, created.ID, notification.Input{
		Tipo:     notification.TipoUserCreated,
		Titulo:   "Bem-vindo à Patrulha Aérea Civil",
		Mensagem: fmt.Sprintf("Olá %s, seu cadastro foi concluído com a matrícula %s.", created.FullName, created.Matricula),
	}); err != nil {
		log.Warn().Err(err).Str("agente_id", created.ID.String()).Msg("notificação de boas-vindas falhou")
	}

	h.notifier.NotifyAdminsAsync(r.Context(), notification.Input{
		Tipo:     notification.TipoUserCreated,
		Titulo:   "Novo agente cadastrado",
		Mensagem: fmt.Sprintf("%s (%s) entrou para a unidade.", created.FullName, created.Matricula),
		Metadata: map[string]any{"agente_id": created.ID.String()},
	})

	resourceID := created.ID.String()
	h.auditoria.Record(sideCtx, activity.Entry{
		UserID:       adminID,
		ActionType:   activity.ActionAgentCreated,
		Description:  fmt.Sprintf("Agente %s (%s) criado", created.FullName, created.Email),
		ResourceType: "profile",
		ResourceID:   &resourceID,
		Metadata:     map[string]any{"matricula": created.Matricula, "role": created.Role},
	})

	WriteMessage(w, http.StatusCreated, created, "Agente criado com sucesso")
}

// UpdateAgenteStatus ativa ou desativa um perfil.
func (h *Handler) UpdateAgenteStatus(w http.ResponseWriter, r *http.Request) {
	adminID, err := h.subjectUUID(r)
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "Não autorizado", nil)
		return
	}

	id, ok := pathUUID(w, r)
	if !ok {
		return
	}

	var payload struct {
		Status *bool `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Status == nil {
		WriteError(w, http.StatusBadRequest, "Erro de validação", map[string][]string{
			"status": {"campo obrigatório"},
		})
		return
	}

	updated, err := h.profiles.UpdateStatus(r.Context(), id, *payload.Status)
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "Agente não encontrado", nil)
			return
		}
		h.writeInternal(w, err, "Não foi possível atualizar o status")
		return
	}

	sideCtx, cancel := sideEffectCtx(r.Context())
	defer cancel()

	estado := "desativado"
	if updated.Status {
		estado = "ativado"
	}
	resourceID := updated.ID.String()
	h.auditoria.Record(sideCtx, activity.Entry{
		UserID:       adminID,
		ActionType:   activity.ActionStatusChanged,
		Description:  fmt.Sprintf("Agente %s (%s) %s", updated.FullName, updated.Email, estado),
		ResourceType: "profile",
		ResourceID:   &resourceID,
		Metadata:     map[string]any{"status": updated.Status},
	})

	WriteSuccess(w, http.StatusOK, updated)
}

// UpdateAgenteMatricula altera a matrícula de um perfil.
func (h *Handler) UpdateAgenteMatricula(w http.ResponseWriter, r *http.Request) {
	adminID, err := h.subjectUUID(r)
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "Não autorizado", nil)
		return
	}

	id, ok := pathUUID(w, r)
	if !ok {
		return
	}

	var payload struct {
		Matricula string `json:"matricula"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "JSON inválido", nil)
		return
	}

	fieldErrs := util.FieldErrors{}
	fieldErrs.Check("matricula", payload.Matricula, util.Required(), util.MinLen(4), util.MaxLen(20))
	if !fieldErrs.Empty() {
		WriteError(w, http.StatusBadRequest, "Erro de validação", fieldErrs)
		return
	}

	anterior, err := h.profiles.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "Agente não encontrado", nil)
			return
		}
		h.writeInternal(w, err, "Não foi possível carregar o agente")
		return
	}

	updated, err := h.profiles.UpdateMatricula(r.Context(), id, strings.TrimSpace(payload.Matricula))
	if err != nil {
		if db.IsUniqueViolation(err) {
			WriteError(w, http.StatusConflict, "Matrícula já cadastrada", nil)
			return
		}
		if errors.Is(err, profile.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "Agente não encontrado", nil)
			return
		}
		h.writeInternal(w, err, "Não foi possível atualizar a matrícula")
		return
	}

	sideCtx, cancel := sideEffectCtx(r.Context())
	defer cancel()

	resourceID := updated.ID.String()
	h.auditoria.Record(sideCtx, activity.Entry{
		UserID:       adminID,
		ActionType:   activity.ActionMatriculaChange,
		Description:  fmt.Sprintf("Matrícula de %s alterada de %s para %s", updated.FullName, anterior.Matricula, updated.Matricula),
		ResourceType: "profile",
		ResourceID:   &resourceID,
		Metadata:     map[string]any{"de": anterior.Matricula, "para": updated.Matricula},
	})

	WriteSuccess(w, http.StatusOK, updated)
}

// DeleteAgente remove um perfil. O snapshot é lido antes da remoção para que
// o log de sistema preserve nome e e-mail de quem deixou de existir.
func (h *Handler) DeleteAgente(w http.ResponseWriter, r *http.Request) {
	adminID, err := h.subjectUUID(r)
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "Não autorizado", nil)
		return
	}

	id, ok := pathUUID(w, r)
	if !ok {
		return
	}

	alvo, err := h.profiles.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "Agente não encontrado", nil)
			return
		}
		h.writeInternal(w, err, "Não foi possível carregar o agente")
		return
	}

	// O log de sistema identifica quem removeu pelo e-mail, não só pelo UUID.
	atorLabel := adminID.String()
	if ator, atorErr := h.profiles.GetByID(r.Context(), adminID); atorErr == nil {
		atorLabel = ator.Email
	}

	if err := h.profiles.Delete(r.Context(), id); err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "Agente não encontrado", nil)
			return
		}
		h.writeInternal(w, err, "Não foi possível remover o agente")
		return
	}

	sideCtx, cancel := sideEffectCtx(r.Context())
	defer cancel()

	resourceID := alvo.ID.String()
	h.auditoria.Record(sideCtx, activity.Entry{
		UserID:       adminID,
		ActionType:   activity.ActionAgentDeleted,
		Description:  fmt.Sprintf("Agente %s (%s) removido por %s", alvo.FullName, alvo.Email, atorLabel),
		ResourceType: "profile",
		ResourceID:   &resourceID,
		Metadata:     map[string]any{"matricula": alvo.Matricula, "email": alvo.Email},
	})

	WriteMessage(w, http.StatusOK, nil, "Agente removido com sucesso")
}
