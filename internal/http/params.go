package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// pathUUID extrai e valida o parâmetro de rota {id}. Em caso de formato
// inválido já escreve a resposta 400 e sinaliza pelo retorno.
func pathUUID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := chi.URLParam(r, "id")
	id, err := uuid.Parse(raw)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Erro de validação", map[string][]string{
			"id": {"identificador inválido"},
		})
		return uuid.Nil, false
	}
	return id, true
}
