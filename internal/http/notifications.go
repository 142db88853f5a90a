package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/erickreisti/patrulha-area-civil-sub003/internal/activity"
	"github.com/erickreisti/patrulha-area-civil-sub003/internal/notification"
	"github.com/erickreisti/patrulha-area-civil-sub003/internal/util"
)

// ListNotifications devolve as notificações do próprio sujeito, mais novas
// primeiro, com contagem de não lidas.
func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	userID, err := h.subjectUUID(r)
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "Não autorizado", nil)
		return
	}

	page, limit, offset := parsePagination(r)

	onlyUnread := false
	if raw := strings.TrimSpace(r.URL.Query().Get("unread")); raw != "" {
		if v, parseErr := strconv.ParseBool(raw); parseErr == nil {
			onlyUnread = v
		}
	}

	items, total, err := h.notificacoes.ListByUser(r.Context(), userID, onlyUnread, limit, offset)
	if err != nil {
		h.writeInternal(w, err, "Não foi possível listar as notificações")
		return
	}

	unread, err := h.notificacoes.CountUnread(r.Context(), userID)
	if err != nil {
		h.writeInternal(w, err, "Não foi possível contar as notificações")
		return
	}

	WritePage(w, http.StatusOK, map[string]any{
		"notificacoes": items,
		"nao_lidas":    unread,
	}, NewPagination(page, limit, total))
}

// MarkNotificationRead marca como lida uma notificação do próprio sujeito.
// Notificação de outro dono responde 404, nunca 403.
func (h *Handler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	userID, err := h.subjectUUID(r)
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "Não autorizado", nil)
		return
	}

	id, ok := pathUUID(w, r)
	if !ok {
		return
	}

	updated, err := h.notificacoes.MarkRead(r.Context(), id, userID)
	if err != nil {
		if errors.Is(err, notification.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "Notificação não encontrada", nil)
			return
		}
		h.writeInternal(w, err, "Não foi possível atualizar a notificação")
		return
	}

	WriteSuccess(w, http.StatusOK, updated)
}

// MarkAllNotificationsRead marca todas as notificações do sujeito como lidas.
func (h *Handler) MarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	userID, err := h.subjectUUID(r)
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "Não autorizado", nil)
		return
	}

	affected, err := h.notificacoes.MarkAllRead(r.Context(), userID)
	if err != nil {
		h.writeInternal(w, err, "Não foi possível atualizar as notificações")
		return
	}

	WriteMessage(w, http.StatusOK, map[string]int64{"atualizadas": affected}, "Notificações marcadas como lidas")
}

// DeleteNotification remove uma notificação do próprio sujeito.
func (h *Handler) DeleteNotification(w http.ResponseWriter, r *http.Request) {
	userID, err := h.subjectUUID(r)
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "Não autorizado", nil)
		return
	}

	id, ok := pathUUID(w, r)
	if !ok {
		return
	}

	if err := h.notificacoes.Delete(r.Context(), id, userID); err != nil {
		if errors.Is(err, notification.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "Notificação não encontrada", nil)
			return
		}
		h.writeInternal(w, err, "Não foi possível remover a notificação")
		return
	}

	WriteMessage(w, http.StatusOK, nil, "Notificação removida")
}

// BroadcastNotification entrega a mesma notificação a todos os
// administradores ativos e registra a ação no log de sistema.
func (h *Handler) BroadcastNotification(w http.ResponseWriter, r *http.Request) {
	adminID, err := h.subjectUUID(r)
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "Não autorizado", nil)
		return
	}

	var payload struct {
		Tipo      string         `json:"tipo"`
		Titulo    string         `json:"titulo"`
		Mensagem  string         `json:"mensagem"`
		ActionURL *string        `json:"action_url"`
		Metadata  map[string]any `json:"metadata"`
		ExpiraEm  *string        `json:"expira_em"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "JSON inválido", nil)
		return
	}

	if payload.Tipo == "" {
		payload.Tipo = notification.TipoSystem
	}

	fieldErrs := util.FieldErrors{}
	fieldErrs.Check("tipo", payload.Tipo, util.OneOf(notification.Tipos...))
	fieldErrs.Check("titulo", payload.Titulo, util.Required(), util.MaxLen(160))
	fieldErrs.Check("mensagem", payload.Mensagem, util.Required(), util.MaxLen(2000))

	var expiraEm *time.Time
	if payload.ExpiraEm != nil && *payload.ExpiraEm != "" {
		parsed, parseErr := util.ParseISODate(*payload.ExpiraEm)
		if parseErr != nil {
			fieldErrs.Add("expira_em", "data inválida")
		} else {
			expiraEm = &parsed
		}
	}

	if !fieldErrs.Empty() {
		WriteError(w, http.StatusBadRequest, "Erro de validação", fieldErrs)
		return
	}

	delivered, err := h.notifier.NotifyAdmins(r.Context(), notification.Input{
		Tipo:      payload.Tipo,
		Titulo:    payload.Titulo,
		Mensagem:  payload.Mensagem,
		ActionURL: payload.ActionURL,
		Metadata:  payload.Metadata,
		ExpiraEm:  expiraEm,
	})
	if err != nil {
		h.writeInternal(w, err, "Não foi possível entregar as notificações")
		return
	}

	sideCtx, cancel := sideEffectCtx(r.Context())
	defer cancel()

	h.auditoria.Record(sideCtx, activity.Entry{
		UserID:       adminID,
		ActionType:   activity.ActionBroadcast,
		Description:  "Notificação enviada aos administradores: " + payload.Titulo,
		ResourceType: "notification",
		Metadata:     map[string]any{"entregues": delivered, "tipo": payload.Tipo},
	})

	WriteMessage(w, http.StatusOK, map[string]int{"entregues": delivered}, "Notificações entregues")
}
