package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/erickreisti/patrulha-area-civil-sub003/internal/activity"
	"github.com/erickreisti/patrulha-area-civil-sub003/internal/db"
	"github.com/erickreisti/patrulha-area-civil-sub003/internal/galeria"
	"github.com/erickreisti/patrulha-area-civil-sub003/internal/notification"
	"github.com/erickreisti/patrulha-area-civil-sub003/internal/util"
)

const galeriaCategoriasCacheKey = "galeria:categorias"

// CreateGaleriaCategoria cadastra uma categoria de galeria.
func (h *Handler) CreateGaleriaCategoria(w http.ResponseWriter, r *http.Request) {
	adminID, err := h.subjectUUID(r)
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "Não autorizado", nil)
		return
	}

	var payload struct {
		Nome      string  `json:"nome"`
		Slug      string  `json:"slug"`
		Descricao *string `json:"descricao"`
		Tipo      string  `json:"tipo"`
		Ordem     int     `json:"ordem"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "JSON inválido", nil)
		return
	}

	if payload.Slug == "" {
		payload.Slug = util.Slugify(payload.Nome)
	}
	if payload.Tipo == "" {
		payload.Tipo = galeria.TipoFotos
	}

	fieldErrs := util.FieldErrors{}
	fieldErrs.Check("nome", payload.Nome, util.Required(), util.MaxLen(120))
	fieldErrs.Check("slug", payload.Slug, util.Required(), util.SlugFormat())
	fieldErrs.Check("tipo", payload.Tipo, util.OneOf(galeria.TipoFotos, galeria.TipoVideos))
	if !fieldErrs.Empty() {
		WriteError(w, http.StatusBadRequest, "Erro de validação", fieldErrs)
		return
	}

	created, err := h.galeria.CreateCategoria(r.Context(), galeria.CategoriaInput{
		Nome:      payload.Nome,
		Slug:      payload.Slug,
		Descricao: payload.Descricao,
		Tipo:      payload.Tipo,
		Ordem:     payload.Ordem,
	})
	if err != nil {
		if db.IsUniqueViolation(err) {
			WriteError(w, http.StatusConflict, "Slug já cadastrado", nil)
			return
		}
		h.writeInternal(w, err, "Não foi possível criar a categoria")
		return
	}

	h.invalidatePublicCaches(r, galeriaCategoriasCacheKey)
	h.recordGaleriaMutation(r, adminID, "galeria_categoria", created.ID.String(), fmt.Sprintf("Categoria %q criada", created.Nome))

	WriteMessage(w, http.StatusCreated, created, "Categoria criada com sucesso")
}

// UpdateGaleriaCategoria aplica atualização parcial, incluindo arquivamento.
func (h *Handler) UpdateGaleriaCategoria(w http.ResponseWriter, r *http.Request) {
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
		Nome      *string `json:"nome"`
		Slug      *string `json:"slug"`
		Descricao *string `json:"descricao"`
		Tipo      *string `json:"tipo"`
		Ordem     *int    `json:"ordem"`
		Status    *bool   `json:"status"`
		Arquivada *bool   `json:"arquivada"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "JSON inválido", nil)
		return
	}

	fieldErrs := util.FieldErrors{}
	fieldErrs.CheckOptional("nome", payload.Nome, util.MaxLen(120))
	fieldErrs.CheckOptional("slug", payload.Slug, util.SlugFormat())
	fieldErrs.CheckOptional("tipo", payload.Tipo, util.OneOf(galeria.TipoFotos, galeria.TipoVideos))
	if !fieldErrs.Empty() {
		WriteError(w, http.StatusBadRequest, "Erro de validação", fieldErrs)
		return
	}

	updated, err := h.galeria.UpdateCategoria(r.Context(), id, galeria.CategoriaUpdate{
		Nome:      payload.Nome,
		Slug:      payload.Slug,
		Descricao: payload.Descricao,
		Tipo:      payload.Tipo,
		Ordem:     payload.Ordem,
		Status:    payload.Status,
		Arquivada: payload.Arquivada,
	})
	if err != nil {
		if db.IsUniqueViolation(err) {
			WriteError(w, http.StatusConflict, "Slug já cadastrado", nil)
			return
		}
		if errors.Is(err, galeria.ErrCategoriaNotFound) {
			WriteError(w, http.StatusNotFound, "Categoria não encontrada", nil)
			return
		}
		h.writeInternal(w, err, "Não foi possível atualizar a categoria")
		return
	}

	h.invalidatePublicCaches(r, galeriaCategoriasCacheKey)
	h.recordGaleriaMutation(r, adminID, "galeria_categoria", updated.ID.String(), fmt.Sprintf("Categoria %q atualizada", updated.Nome))

	WriteSuccess(w, http.StatusOK, updated)
}

// DeleteGaleriaCategoria remove uma categoria. Itens relacionados ficam
// órfãos (categoria_id nulo), nunca são removidos em cascata.
func (h *Handler) DeleteGaleriaCategoria(w http.ResponseWriter, r *http.Request) {
	adminID, err := h.subjectUUID(r)
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "Não autorizado", nil)
		return
	}

	id, ok := pathUUID(w, r)
	if !ok {
		return
	}

	alvo, err := h.galeria.GetCategoria(r.Context(), id)
	if err != nil {
		if errors.Is(err, galeria.ErrCategoriaNotFound) {
			WriteError(w, http.StatusNotFound, "Categoria não encontrada", nil)
			return
		}
		h.writeInternal(w, err, "Não foi possível carregar a categoria")
		return
	}

	if err := h.galeria.DeleteCategoria(r.Context(), id); err != nil {
		if errors.Is(err, galeria.ErrCategoriaNotFound) {
			WriteError(w, http.StatusNotFound, "Categoria não encontrada", nil)
			return
		}
		h.writeInternal(w, err, "Não foi possível remover a categoria")
		return
	}

	h.invalidatePublicCaches(r, galeriaCategoriasCacheKey)
	h.recordGaleriaMutation(r, adminID, "galeria_categoria", alvo.ID.String(), fmt.Sprintf("Categoria %q removida", alvo.Nome))

	WriteMessage(w, http.StatusOK, nil, "Categoria removida com sucesso")
}

// CreateGaleriaItem cadastra um item apontando para mídia já enviada.
func (h *Handler) CreateGaleriaItem(w http.ResponseWriter, r *http.Request) {
	adminID, err := h.subjectUUID(r)
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "Não autorizado", nil)
		return
	}

	var payload struct {
		Titulo       string  `json:"titulo"`
		Descricao    *string `json:"descricao"`
		CategoriaID  *string `json:"categoria_id"`
		Tipo         string  `json:"tipo"`
		ArquivoURL   string  `json:"arquivo_url"`
		ThumbnailURL *string `json:"thumbnail_url"`
		Ordem        int     `json:"ordem"`
		Destaque     bool    `json:"destaque"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "JSON inválido", nil)
		return
	}

	if payload.Tipo == "" {
		payload.Tipo = galeria.TipoItemFoto
	}

	fieldErrs := util.FieldErrors{}
	fieldErrs.Check("titulo", payload.Titulo, util.Required(), util.MaxLen(160))
	fieldErrs.Check("tipo", payload.Tipo, util.OneOf(galeria.TipoItemFoto, galeria.TipoItemVideo))
	fieldErrs.Check("arquivo_url", payload.ArquivoURL, util.Required())
	fieldErrs.CheckOptional("categoria_id", payload.CategoriaID, util.UUIDFormat())
	if !fieldErrs.Empty() {
		WriteError(w, http.StatusBadRequest, "Erro de validação", fieldErrs)
		return
	}

	var categoriaID *uuid.UUID
	if payload.CategoriaID != nil && *payload.CategoriaID != "" {
		parsed, _ := uuid.Parse(*payload.CategoriaID)
		categoriaID = &parsed
	}

	created, err := h.galeria.CreateItem(r.Context(), galeria.ItemInput{
		Titulo:       payload.Titulo,
		Descricao:    payload.Descricao,
		CategoriaID:  categoriaID,
		Tipo:         payload.Tipo,
		ArquivoURL:   payload.ArquivoURL,
		ThumbnailURL: payload.ThumbnailURL,
		Ordem:        payload.Ordem,
		AutorID:      &adminID,
		Destaque:     payload.Destaque,
	})
	if err != nil {
		h.writeInternal(w, err, "Não foi possível criar o item")
		return
	}

	h.notifier.NotifyAdminsAsync(r.Context(), notification.Input{
		Tipo:     notification.TipoGalleryUpload,
		Titulo:   "Novo item na galeria",
		Mensagem: created.Titulo,
		Metadata: map[string]any{"item_id": created.ID.String(), "tipo": created.Tipo},
	})

	h.invalidatePublicCaches(r, galeriaCategoriasCacheKey)
	h.recordGaleriaMutation(r, adminID, "galeria_item", created.ID.String(), fmt.Sprintf("Item %q criado", created.Titulo))

	WriteMessage(w, http.StatusCreated, created, "Item criado com sucesso")
}

// UpdateGaleriaItem aplica atualização parcial a um item.
func (h *Handler) UpdateGaleriaItem(w http.ResponseWriter, r *http.Request) {
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
		Titulo       *string `json:"titulo"`
		Descricao    *string `json:"descricao"`
		CategoriaID  *string `json:"categoria_id"`
		Ordem        *int    `json:"ordem"`
		Status       *bool   `json:"status"`
		Destaque     *bool   `json:"destaque"`
		ThumbnailURL *string `json:"thumbnail_url"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "JSON inválido", nil)
		return
	}

	fieldErrs := util.FieldErrors{}
	fieldErrs.CheckOptional("titulo", payload.Titulo, util.MaxLen(160))
	fieldErrs.CheckOptional("categoria_id", payload.CategoriaID, util.UUIDFormat())
	if !fieldErrs.Empty() {
		WriteError(w, http.StatusBadRequest, "Erro de validação", fieldErrs)
		return
	}

	input := galeria.ItemUpdate{
		Titulo:       payload.Titulo,
		Descricao:    payload.Descricao,
		Ordem:        payload.Ordem,
		Status:       payload.Status,
		Destaque:     payload.Destaque,
		ThumbnailURL: payload.ThumbnailURL,
	}
	if payload.CategoriaID != nil && *payload.CategoriaID != "" {
		parsed, _ := uuid.Parse(*payload.CategoriaID)
		input.CategoriaID = &parsed
	}

	updated, err := h.galeria.UpdateItem(r.Context(), id, input)
	if err != nil {
		if errors.Is(err, galeria.ErrItemNotFound) {
			WriteError(w, http.StatusNotFound, "Item não encontrado", nil)
			return
		}
		h.writeInternal(w, err, "Não foi possível atualizar o item")
		return
	}

	h.invalidatePublicCaches(r, galeriaCategoriasCacheKey)
	h.recordGaleriaMutation(r, adminID, "galeria_item", updated.ID.String(), fmt.Sprintf("Item %q atualizado", updated.Titulo))

	WriteSuccess(w, http.StatusOK, updated)
}

// DeleteGaleriaItem remove um item da galeria.
func (h *Handler) DeleteGaleriaItem(w http.ResponseWriter, r *http.Request) {
	adminID, err := h.subjectUUID(r)
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "Não autorizado", nil)
		return
	}

	id, ok := pathUUID(w, r)
	if !ok {
		return
	}

	alvo, err := h.galeria.GetItem(r.Context(), id)
	if err != nil {
		if errors.Is(err, galeria.ErrItemNotFound) {
			WriteError(w, http.StatusNotFound, "Item não encontrado", nil)
			return
		}
		h.writeInternal(w, err, "Não foi possível carregar o item")
		return
	}

	if err := h.galeria.DeleteItem(r.Context(), id); err != nil {
		if errors.Is(err, galeria.ErrItemNotFound) {
			WriteError(w, http.StatusNotFound, "Item não encontrado", nil)
			return
		}
		h.writeInternal(w, err, "Não foi possível remover o item")
		return
	}

	h.invalidatePublicCaches(r, galeriaCategoriasCacheKey)
	h.recordGaleriaMutation(r, adminID, "galeria_item", alvo.ID.String(), fmt.Sprintf("Item %q removido", alvo.Titulo))

	WriteMessage(w, http.StatusOK, nil, "Item removido com sucesso")
}

func (h *Handler) recordGaleriaMutation(r *http.Request, adminID uuid.UUID, resourceType, resourceID, description string) {
	ctx, cancel := sideEffectCtx(r.Context())
	defer cancel()

	h.auditoria.Record(ctx, activity.Entry{
		UserID:       adminID,
		ActionType:   activity.ActionGaleriaMutation,
		Description:  description,
		ResourceType: resourceType,
		ResourceID:   &resourceID,
	})
}
