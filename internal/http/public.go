package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/erickreisti/patrulha-area-civil-sub003/internal/galeria"
	"github.com/erickreisti/patrulha-area-civil-sub003/internal/noticia"
)

// ListNoticias devolve notícias publicadas, destaques primeiro.
func (h *Handler) ListNoticias(w http.ResponseWriter, r *http.Request) {
	page, limit, offset := parsePagination(r)
	categoria := strings.TrimSpace(r.URL.Query().Get("categoria"))

	// Só a primeira página sem filtro passa pelo cache: é a visão que a home
	// consulta a cada carregamento.
	cacheable := page == 1 && limit == defaultPageLimit && categoria == ""
	if cacheable {
		var cached struct {
			Items []noticia.Noticia `json:"items"`
			Total int64             `json:"total"`
		}
		if h.cacheRead.Get(r.Context(), noticiasListCacheKey, &cached) {
			WritePage(w, http.StatusOK, cached.Items, NewPagination(page, limit, cached.Total))
			return
		}
	}

	items, total, err := h.noticias.ListPublished(r.Context(), noticia.Filter{
		Categoria: categoria,
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		h.writeInternal(w, err, "Não foi possível listar as notícias")
		return
	}

	if cacheable {
		h.cacheRead.Set(r.Context(), noticiasListCacheKey, struct {
			Items []noticia.Noticia `json:"items"`
			Total int64             `json:"total"`
		}{Items: items, Total: total})
	}

	WritePage(w, http.StatusOK, items, NewPagination(page, limit, total))
}

// GetNoticia resolve o slug de uma notícia publicada, com cache de leitura.
func (h *Handler) GetNoticia(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	cacheKey := noticiaCacheKey(slug)
	var cached noticia.Noticia
	if h.cacheRead.Get(r.Context(), cacheKey, &cached) {
		WriteSuccess(w, http.StatusOK, cached)
		return
	}

	n, err := h.noticias.GetPublishedBySlug(r.Context(), slug)
	if err != nil {
		if errors.Is(err, noticia.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "Notícia não encontrada", nil)
			return
		}
		h.writeInternal(w, err, "Não foi possível carregar a notícia")
		return
	}

	h.cacheRead.Set(r.Context(), cacheKey, n)
	WriteSuccess(w, http.StatusOK, n)
}

// ListGaleriaCategorias devolve categorias ativas com atributos derivados
// (contagem, destaque, última imagem), com cache de leitura.
func (h *Handler) ListGaleriaCategorias(w http.ResponseWriter, r *http.Request) {
	var cached []galeria.CategoriaResumo
	if h.cacheRead.Get(r.Context(), galeriaCategoriasCacheKey, &cached) {
		WriteSuccess(w, http.StatusOK, cached)
		return
	}

	categorias, err := h.galeria.ListCategoriasAtivas(r.Context())
	if err != nil {
		h.writeInternal(w, err, "Não foi possível listar as categorias")
		return
	}

	h.cacheRead.Set(r.Context(), galeriaCategoriasCacheKey, categorias)
	WriteSuccess(w, http.StatusOK, categorias)
}

// ListGaleriaItens lista itens ativos de uma categoria e incrementa views em
// lote, sem bloquear a resposta.
func (h *Handler) ListGaleriaItens(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	page, limit, offset := parsePagination(r)

	items, total, err := h.galeria.ListItensBySlug(r.Context(), slug, limit, offset)
	if err != nil {
		if errors.Is(err, galeria.ErrCategoriaNotFound) {
			WriteError(w, http.StatusNotFound, "Categoria não encontrada", nil)
			return
		}
		h.writeInternal(w, err, "Não foi possível listar os itens")
		return
	}

	if len(items) > 0 {
		ids := make([]uuid.UUID, len(items))
		for i, item := range items {
			ids[i] = item.ID
		}
		ctx, cancel := sideEffectCtx(r.Context())
		go func() {
			defer cancel()
			if err := h.galeria.IncrementViews(ctx, ids); err != nil {
				log.Warn().Err(err).Str("slug", slug).Msg("incremento de views falhou")
			}
		}()
	}

	WritePage(w, http.StatusOK, items, NewPagination(page, limit, total))
}

// ListEventos devolve eventos ativos a partir de agora, em ordem cronológica.
func (h *Handler) ListEventos(w http.ResponseWriter, r *http.Request) {
	page, limit, offset := parsePagination(r)

	eventos, total, err := h.eventos.ListUpcoming(r.Context(), time.Now(), limit, offset)
	if err != nil {
		h.writeInternal(w, err, "Não foi possível listar os eventos")
		return
	}

	WritePage(w, http.StatusOK, eventos, NewPagination(page, limit, total))
}

// invalidatePublicCaches derruba as chaves de leitura afetadas por mutações
// de conteúdo público.
func (h *Handler) invalidatePublicCaches(r *http.Request, keys ...string) {
	ctx, cancel := sideEffectCtx(r.Context())
	defer cancel()
	h.cache.Invalidate(ctx, keys...)
}

func noticiaCacheKey(slug string) string {
	return "noticia:" + slug
}
