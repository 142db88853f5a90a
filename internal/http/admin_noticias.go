package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/erickreisti/patrulha-area-civil-sub003/internal/activity"
	"github.com/erickreisti/patrulha-area-civil-sub003/internal/db"
	"github.com/erickreisti/patrulha-area-civil-sub003/internal/noticia"
	"github.com/erickreisti/patrulha-area-civil-sub003/internal/notification"
	"github.com/erickreisti/patrulha-area-civil-sub003/internal/util"
)

const noticiasListCacheKey = "noticias:publicadas"

// CreateNoticia cadastra uma notícia. Slug ausente é derivado do título;
// publicação imediata dispara fan-out para administradores.
func (h *Handler) CreateNoticia(w http.ResponseWriter, r *http.Request) {
	adminID, err := h.subjectUUID(r)
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "Não autorizado", nil)
		return
	}

	var payload struct {
		Titulo    string  `json:"titulo"`
		Slug      string  `json:"slug"`
		Conteudo  string  `json:"conteudo"`
		Resumo    string  `json:"resumo"`
		Imagem    *string `json:"imagem"`
		Categoria string  `json:"categoria"`
		Destaque  bool    `json:"destaque"`
		Status    string  `json:"status"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "JSON inválido", nil)
		return
	}

	if payload.Status == "" {
		payload.Status = noticia.StatusRascunho
	}
	if payload.Slug == "" {
		payload.Slug = util.Slugify(payload.Titulo)
	}

	fieldErrs := util.FieldErrors{}
	fieldErrs.Check("titulo", payload.Titulo, util.Required(), util.MaxLen(200))
	fieldErrs.Check("slug", payload.Slug, util.Required(), util.SlugFormat())
	fieldErrs.Check("conteudo", payload.Conteudo, util.Required())
	fieldErrs.Check("categoria", payload.Categoria, util.Required(), util.MaxLen(60))
	fieldErrs.Check("status", payload.Status, util.OneOf(noticia.Statuses...))
	if !fieldErrs.Empty() {
		WriteError(w, http.StatusBadRequest, "Erro de validação", fieldErrs)
		return
	}

	created, err := h.noticias.Create(r.Context(), noticia.CreateInput{
		Titulo:    strings.TrimSpace(payload.Titulo),
		Slug:      payload.Slug,
		Conteudo:  payload.Conteudo,
		Resumo:    payload.Resumo,
		Imagem:    payload.Imagem,
		Categoria: payload.Categoria,
		AutorID:   adminID,
		Destaque:  payload.Destaque,
		Status:    payload.Status,
	})
	if err != nil {
		if db.IsUniqueViolation(err) {
			WriteError(w, http.StatusConflict, "Slug já cadastrado", nil)
			return
		}
		h.writeInternal(w, err, "Não foi possível criar a notícia")
		return
	}

	if created.Status == noticia.StatusPublicado {
		h.announceNoticia(r, created)
	}
	h.invalidatePublicCaches(r, noticiasListCacheKey, noticiaCacheKey(created.Slug))
	h.recordNoticiaMutation(r, adminID, created.ID.String(), fmt.Sprintf("Notícia %q criada (%s)", created.Titulo, created.Status))

	WriteMessage(w, http.StatusCreated, created, "Notícia criada com sucesso")
}

// UpdateNoticia aplica atualização parcial. A transição para publicado
// preserva data_publicacao já existente e dispara fan-out uma única vez.
func (h *Handler) UpdateNoticia(w http.ResponseWriter, r *http.Request) {
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
		Titulo    *string `json:"titulo"`
		Slug      *string `json:"slug"`
		Conteudo  *string `json:"conteudo"`
		Resumo    *string `json:"resumo"`
		Imagem    *string `json:"imagem"`
		Categoria *string `json:"categoria"`
		Destaque  *bool   `json:"destaque"`
		Status    *string `json:"status"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "JSON inválido", nil)
		return
	}

	fieldErrs := util.FieldErrors{}
	fieldErrs.CheckOptional("titulo", payload.Titulo, util.MaxLen(200))
	fieldErrs.CheckOptional("slug", payload.Slug, util.SlugFormat())
	fieldErrs.CheckOptional("status", payload.Status, util.OneOf(noticia.Statuses...))
	if !fieldErrs.Empty() {
		WriteError(w, http.StatusBadRequest, "Erro de validação", fieldErrs)
		return
	}

	anterior, err := h.noticias.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, noticia.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "Notícia não encontrada", nil)
			return
		}
		h.writeInternal(w, err, "Não foi possível carregar a notícia")
		return
	}

	updated, err := h.noticias.Update(r.Context(), id, noticia.UpdateInput{
		Titulo:    payload.Titulo,
		Slug:      payload.Slug,
		Conteudo:  payload.Conteudo,
		Resumo:    payload.Resumo,
		Imagem:    payload.Imagem,
		Categoria: payload.Categoria,
		Destaque:  payload.Destaque,
		Status:    payload.Status,
	})
	if err != nil {
		if db.IsUniqueViolation(err) {
			WriteError(w, http.StatusConflict, "Slug já cadastrado", nil)
			return
		}
		if errors.Is(err, noticia.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "Notícia não encontrada", nil)
			return
		}
		h.writeInternal(w, err, "Não foi possível atualizar a notícia")
		return
	}

	if anterior.Status != noticia.StatusPublicado && updated.Status == noticia.StatusPublicado {
		h.announceNoticia(r, updated)
	}
	h.invalidatePublicCaches(r, noticiasListCacheKey, noticiaCacheKey(anterior.Slug), noticiaCacheKey(updated.Slug))
	h.recordNoticiaMutation(r, adminID, updated.ID.String(), fmt.Sprintf("Notícia %q atualizada", updated.Titulo))

	WriteSuccess(w, http.StatusOK, updated)
}

// DeleteNoticia remove uma notícia.
func (h *Handler) DeleteNoticia(w http.ResponseWriter, r *http.Request) {
	adminID, err := h.subjectUUID(r)
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "Não autorizado", nil)
		return
	}

	id, ok := pathUUID(w, r)
	if !ok {
		return
	}

	alvo, err := h.noticias.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, noticia.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "Notícia não encontrada", nil)
			return
		}
		h.writeInternal(w, err, "Não foi possível carregar a notícia")
		return
	}

	if err := h.noticias.Delete(r.Context(), id); err != nil {
		if errors.Is(err, noticia.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "Notícia não encontrada", nil)
			return
		}
		h.writeInternal(w, err, "Não foi possível remover a notícia")
		return
	}

	h.invalidatePublicCaches(r, noticiasListCacheKey, noticiaCacheKey(alvo.Slug))
	h.recordNoticiaMutation(r, adminID, alvo.ID.String(), fmt.Sprintf("Notícia %q removida", alvo.Titulo))

	WriteMessage(w, http.StatusOK, nil, "Notícia removida com sucesso")
}

func (h *Handler) announceNoticia(r *http.Request, n *noticia.Noticia) {
	actionURL := "/noticias/" + n.Slug
	h.notifier.NotifyAdminsAsync(r.Context(), notification.Input{
		Tipo:      notification.TipoNewsPublished,
		Titulo:    "Notícia publicada",
		Mensagem:  n.Titulo,
		ActionURL: &actionURL,
		Metadata:  map[string]any{"noticia_id": n.ID.String(), "slug": n.Slug},
	})
}

func (h *Handler) recordNoticiaMutation(r *http.Request, adminID uuid.UUID, resourceID, description string) {
	ctx, cancel := sideEffectCtx(r.Context())
	defer cancel()

	h.auditoria.Record(ctx, activity.Entry{
		UserID:       adminID,
		ActionType:   activity.ActionNoticiaMutation,
		Description:  description,
		ResourceType: "noticia",
		ResourceID:   &resourceID,
	})
}
