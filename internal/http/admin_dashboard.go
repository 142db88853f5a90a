package http

import (
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
)

// DashboardStats agrega contadores do painel em consultas paralelas.
func (h *Handler) DashboardStats(w http.ResponseWriter, r *http.Request) {
	var (
		totalAgentes    int64
		agentesAtivos   int64
		proximosEventos int64
		noticiasAtivas  int64
		itensGaleria    int64
	)

	g, ctx := errgroup.WithContext(r.Context())

	g.Go(func() error {
		var err error
		totalAgentes, err = h.profiles.Count(ctx, false)
		return err
	})
	g.Go(func() error {
		var err error
		agentesAtivos, err = h.profiles.Count(ctx, true)
		return err
	})
	g.Go(func() error {
		var err error
		proximosEventos, err = h.eventos.CountUpcoming(ctx, time.Now())
		return err
	})
	g.Go(func() error {
		var err error
		noticiasAtivas, err = h.noticias.CountPublished(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		itensGaleria, err = h.galeria.CountItens(ctx)
		return err
	})

	if err := g.Wait(); err != nil {
		h.writeInternal(w, err, "Não foi possível carregar as estatísticas")
		return
	}

	WriteSuccess(w, http.StatusOK, map[string]int64{
		"total_agentes":       totalAgentes,
		"agentes_ativos":      agentesAtivos,
		"proximos_eventos":    proximosEventos,
		"noticias_publicadas": noticiasAtivas,
		"itens_galeria":       itensGaleria,
	})
}
