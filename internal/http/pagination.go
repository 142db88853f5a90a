package http

import (
	"net/http"
	"strconv"
	"strings"
)

const (
	defaultPageLimit = 50
	maxPageLimit     = 100
)

// parsePagination lê page (1-indexado) e limit da query, aplicando defaults e
// teto, e devolve o offset correspondente.
func parsePagination(r *http.Request) (page, limit, offset int) {
	page = 1
	limit = defaultPageLimit

	if raw := strings.TrimSpace(r.URL.Query().Get("page")); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			page = v
		}
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			limit = v
		}
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	return page, limit, (page - 1) * limit
}
