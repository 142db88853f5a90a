package http

import (
	"encoding/json"
	"net/http"
	"time"
)

// Envelope é o formato uniforme de toda resposta JSON da API. Consumidores
// decidem apenas pelo campo success.
type Envelope struct {
	Success    bool        `json:"success"`
	Data       any         `json:"data,omitempty"`
	Message    string      `json:"message,omitempty"`
	Error      string      `json:"error,omitempty"`
	Details    any         `json:"details,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
	Timestamp  string      `json:"timestamp"`
}

// Pagination descreve a janela devolvida em listagens.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// NewPagination calcula totalPages = ceil(total/limit).
func NewPagination(page, limit int, total int64) *Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}
	return &Pagination{Page: page, Limit: limit, Total: total, TotalPages: totalPages}
}

// WriteSuccess escreve envelope de sucesso com dados.
func WriteSuccess(w http.ResponseWriter, status int, data any) {
	writeEnvelope(w, status, Envelope{Success: true, Data: data})
}

// WriteMessage escreve sucesso com mensagem legível além dos dados.
func WriteMessage(w http.ResponseWriter, status int, data any, message string) {
	writeEnvelope(w, status, Envelope{Success: true, Data: data, Message: message})
}

// WritePage escreve sucesso com dados paginados.
func WritePage(w http.ResponseWriter, status int, data any, pagination *Pagination) {
	writeEnvelope(w, status, Envelope{Success: true, Data: data, Pagination: pagination})
}

// WriteError escreve envelope de erro e mantém formato consistente.
func WriteError(w http.ResponseWriter, status int, message string, details any) {
	writeEnvelope(w, status, Envelope{Success: false, Error: message, Details: details})
}

func writeEnvelope(w http.ResponseWriter, status int, env Envelope) {
	env.Timestamp = time.Now().UTC().Format(time.RFC3339)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}
