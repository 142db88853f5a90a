package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/erickreisti/patrulha-area-civil-sub003/internal/activity"
	"github.com/erickreisti/patrulha-area-civil-sub003/internal/profile"
	"github.com/erickreisti/patrulha-area-civil-sub003/internal/storage"
	"github.com/erickreisti/patrulha-area-civil-sub003/internal/util"
)

// multipart: o limite de memória cobre só o buffer, não o tamanho aceito.
const multipartMemory = 8 << 20

// UploadAvatar recebe a imagem de avatar de um agente, envia ao storage e
// grava a URL resultante no perfil.
func (h *Handler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	adminID, err := h.subjectUUID(r)
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "Não autorizado", nil)
		return
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		WriteError(w, http.StatusBadRequest, "Formulário multipart inválido", nil)
		return
	}

	rawID := r.FormValue("agente_id")
	fieldErrs := util.FieldErrors{}
	fieldErrs.Check("agente_id", rawID, util.Required(), util.UUIDFormat())
	if !fieldErrs.Empty() {
		WriteError(w, http.StatusBadRequest, "Erro de validação", fieldErrs)
		return
	}
	agenteID, _ := uuid.Parse(rawID)

	alvo, err := h.profiles.GetByID(r.Context(), agenteID)
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "Agente não encontrado", nil)
			return
		}
		h.writeInternal(w, err, "Não foi possível carregar o agente")
		return
	}

	body, filename, contentType, ok := h.readUploadFile(w, r, "file", storage.MaxImageBytes)
	if !ok {
		return
	}

	key := storage.BuildKey("avatars", util.Slugify(alvo.FullName), filename, contentType, time.Now())
	result, err := h.storage.Upload(r.Context(), storage.UploadInput{
		Key:          key,
		Body:         body,
		ContentType:  contentType,
		CacheControl: "public, max-age=31536000",
	})
	if err != nil {
		h.writeInternal(w, err, "Não foi possível enviar o arquivo")
		return
	}

	updated, err := h.profiles.UpdateAvatar(r.Context(), agenteID, result.URL)
	if err != nil {
		h.writeInternal(w, err, "Não foi possível gravar o avatar")
		return
	}

	sideCtx, cancel := sideEffectCtx(r.Context())
	defer cancel()

	resourceID := agenteID.String()
	h.auditoria.Record(sideCtx, activity.Entry{
		UserID:       adminID,
		ActionType:   activity.ActionAvatarUpload,
		Description:  fmt.Sprintf("Avatar de %s atualizado", alvo.FullName),
		ResourceType: "profile",
		ResourceID:   &resourceID,
		Metadata:     map[string]any{"key": result.Key},
	})

	WriteMessage(w, http.StatusOK, updated, "Avatar atualizado com sucesso")
}

// UploadMedia recebe mídia de galeria e devolve a URL pública. A criação do
// item correspondente acontece em chamada separada.
func (h *Handler) UploadMedia(w http.ResponseWriter, r *http.Request) {
	adminID, err := h.subjectUUID(r)
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "Não autorizado", nil)
		return
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		WriteError(w, http.StatusBadRequest, "Formulário multipart inválido", nil)
		return
	}

	titulo := r.FormValue("titulo")
	if titulo == "" {
		titulo = "midia"
	}

	body, filename, contentType, ok := h.readUploadFile(w, r, "file", storage.MaxVideoBytes)
	if !ok {
		return
	}

	key := storage.BuildKey("galeria", util.Slugify(titulo), filename, contentType, time.Now())
	result, err := h.storage.Upload(r.Context(), storage.UploadInput{
		Key:          key,
		Body:         body,
		ContentType:  contentType,
		CacheControl: "public, max-age=31536000",
	})
	if err != nil {
		h.writeInternal(w, err, "Não foi possível enviar o arquivo")
		return
	}

	sideCtx, cancel := sideEffectCtx(r.Context())
	defer cancel()

	h.auditoria.Record(sideCtx, activity.Entry{
		UserID:       adminID,
		ActionType:   activity.ActionMediaUpload,
		Description:  fmt.Sprintf("Mídia %q enviada", filename),
		ResourceType: "galeria_item",
		Metadata:     map[string]any{"key": result.Key, "content_type": contentType},
	})

	WriteMessage(w, http.StatusCreated, result, "Arquivo enviado com sucesso")
}

// readUploadFile lê o campo de arquivo, aplica limite duro de leitura e valida
// MIME/tamanho. Em falha a resposta já foi escrita.
func (h *Handler) readUploadFile(w http.ResponseWriter, r *http.Request, field string, hardLimit int) ([]byte, string, string, bool) {
	file, header, err := r.FormFile(field)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Erro de validação", map[string][]string{
			field: {"arquivo obrigatório"},
		})
		return nil, "", "", false
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")

	body, err := io.ReadAll(io.LimitReader(file, int64(hardLimit)+1))
	if err != nil {
		h.writeInternal(w, err, "Não foi possível ler o arquivo")
		return nil, "", "", false
	}

	if err := storage.ValidatePayload(contentType, len(body)); err != nil {
		switch {
		case errors.Is(err, storage.ErrUnsupportedType):
			WriteError(w, http.StatusBadRequest, "Tipo de arquivo não permitido", map[string]string{
				"content_type": contentType,
			})
		case errors.Is(err, storage.ErrTooLarge):
			WriteError(w, http.StatusRequestEntityTooLarge, "Arquivo excede o tamanho máximo", nil)
		default:
			h.writeInternal(w, err, "Não foi possível validar o arquivo")
		}
		return nil, "", "", false
	}

	return body, header.Filename, contentType, true
}
