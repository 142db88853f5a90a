package http

import (
	"net/http"
)

// ListSystemActivities devolve o log de sistema paginado, do mais recente
// para o mais antigo, com nome e e-mail de quem executou cada ação.
func (h *Handler) ListSystemActivities(w http.ResponseWriter, r *http.Request) {
	page, limit, offset := parsePagination(r)

	entries, err := h.atividades.List(r.Context(), limit, offset)
	if err != nil {
		h.writeInternal(w, err, "Não foi possível listar as atividades")
		return
	}

	total, err := h.atividades.Count(r.Context())
	if err != nil {
		h.writeInternal(w, err, "Não foi possível contar as atividades")
		return
	}

	WritePage(w, http.StatusOK, entries, NewPagination(page, limit, total))
}
