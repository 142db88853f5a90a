package http

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/erickreisti/patrulha-area-civil-sub003/internal/activity"
	"github.com/erickreisti/patrulha-area-civil-sub003/internal/cache"
	"github.com/erickreisti/patrulha-area-civil-sub003/internal/config"
	"github.com/erickreisti/patrulha-area-civil-sub003/internal/event"
	"github.com/erickreisti/patrulha-area-civil-sub003/internal/galeria"
	httpmiddleware "github.com/erickreisti/patrulha-area-civil-sub003/internal/http/middleware"
	"github.com/erickreisti/patrulha-area-civil-sub003/internal/noticia"
	"github.com/erickreisti/patrulha-area-civil-sub003/internal/notification"
	"github.com/erickreisti/patrulha-area-civil-sub003/internal/profile"
	"github.com/erickreisti/patrulha-area-civil-sub003/internal/service"
	"github.com/erickreisti/patrulha-area-civil-sub003/internal/storage"
)

// NewRouter devolve roteador configurado com todas as dependências injetadas.
func NewRouter(cfg *config.Config, pool *pgxpool.Pool, redisClient *redis.Client, authService *service.AuthService) (http.Handler, error) {
	devCookies := false
	for _, origin := range cfg.AllowOrigins {
		if strings.Contains(origin, "localhost") {
			devCookies = true
			break
		}
	}

	var uploader storage.Uploader = storage.NoopUploader{}
	switch cfg.Storage.Provider {
	case "", "noop":
		// mantém uploader padrão
	case "s3", "r2", "cloudflare-r2":
		s3, err := storage.NewS3Uploader(storage.S3Config{
			Endpoint:     cfg.Storage.Endpoint,
			Region:       cfg.Storage.Region,
			Bucket:       cfg.Storage.Bucket,
			AccessKey:    cfg.Storage.AccessKey,
			SecretKey:    cfg.Storage.SecretKey,
			PublicDomain: cfg.Storage.PublicURL,
		})
		if err != nil {
			return nil, fmt.Errorf("storage: %w", err)
		}
		uploader = s3
	default:
		return nil, fmt.Errorf("storage: provedor %s não suportado", cfg.Storage.Provider)
	}

	profileRepo := profile.NewRepository(pool)
	eventoRepo := event.NewRepository(pool)
	noticiaRepo := noticia.NewRepository(pool)
	galeriaRepo := galeria.NewRepository(pool)
	notificacaoRepo := notification.NewRepository(pool)
	atividadeRepo := activity.NewRepository(pool)

	viewCache := cache.New(redisClient, cfg.CacheTTL)

	h := &Handler{
		cfg:          cfg,
		authService:  authService,
		profiles:     profileRepo,
		eventos:      eventoRepo,
		noticias:     noticiaRepo,
		galeria:      galeriaRepo,
		notificacoes: notificacaoRepo,
		notifier:     notification.NewService(notificacaoRepo, profileRepo),
		atividades:   atividadeRepo,
		auditoria:    activity.NewRecorder(atividadeRepo),
		cacheRead:    viewCache,
		cache:        viewCache,
		storage:      uploader,
		dbPing:       pool.Ping,
		redisPing:    func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		devCookies:   devCookies,
	}

	publicLimiter := httpmiddleware.NewRateLimiter(cfg.RateLimitPublic.RequestsPerSecond, cfg.RateLimitPublic.Burst)
	authLimiter := httpmiddleware.NewRateLimiter(cfg.RateLimitAuth.RequestsPerSecond, cfg.RateLimitAuth.Burst)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(httpmiddleware.Logging)
	r.Use(httpmiddleware.Recover)
	r.Use(httpmiddleware.CORS(cfg.AllowOrigins))
	r.Use(chimiddleware.Timeout(30 * time.Second))

	r.Group(func(public chi.Router) {
		public.Use(httpmiddleware.IPRateLimit(publicLimiter))

		public.Get("/health", h.Health)
		public.Get("/ready", h.Ready)

		public.Route("/api/auth", func(auth chi.Router) {
			auth.Post("/login", h.Login)
			auth.Post("/code", h.IssueLoginCode)
			auth.Get("/callback", h.AuthCallback)
			auth.Post("/refresh", h.Refresh)
			auth.Post("/logout", h.Logout)
		})

		public.Get("/api/noticias", h.ListNoticias)
		public.Get("/api/noticias/{slug}", h.GetNoticia)
		public.Get("/api/galeria/categorias", h.ListGaleriaCategorias)
		public.Get("/api/galeria/categorias/{slug}/itens", h.ListGaleriaItens)
		public.Get("/api/eventos", h.ListEventos)
	})

	r.Group(func(private chi.Router) {
		private.Use(httpmiddleware.Auth(authService.JWT()))
		private.Use(httpmiddleware.UserRateLimit(authLimiter))

		private.Get("/api/me", h.Me)
		private.Patch("/api/me", h.UpdateMe)

		private.Route("/api/notifications", func(n chi.Router) {
			n.Get("/", h.ListNotifications)
			n.Patch("/read-all", h.MarkAllNotificationsRead)
			n.Patch("/{id}", h.MarkNotificationRead)
			n.Delete("/{id}", h.DeleteNotification)
		})

		private.Group(func(admin chi.Router) {
			admin.Use(httpmiddleware.RequireAdmin)

			admin.Route("/api/admin/agentes", func(a chi.Router) {
				a.Get("/", h.ListAgentes)
				a.Post("/", h.CreateAgente)
				a.Patch("/{id}/status", h.UpdateAgenteStatus)
				a.Patch("/{id}/matricula", h.UpdateAgenteMatricula)
				a.Delete("/{id}", h.DeleteAgente)
			})

			admin.Get("/api/admin/dashboard/stats", h.DashboardStats)
			admin.Get("/api/system", h.ListSystemActivities)
			admin.Post("/api/admin/upload-avatar", h.UploadAvatar)
			admin.Post("/api/admin/upload-media", h.UploadMedia)
			admin.Post("/api/admin/notifications/broadcast", h.BroadcastNotification)

			admin.Route("/api/admin/eventos", func(e chi.Router) {
				e.Post("/", h.CreateEvento)
				e.Patch("/{id}", h.UpdateEvento)
				e.Delete("/{id}", h.DeleteEvento)
			})

			admin.Route("/api/admin/noticias", func(n chi.Router) {
				n.Post("/", h.CreateNoticia)
				n.Patch("/{id}", h.UpdateNoticia)
				n.Delete("/{id}", h.DeleteNoticia)
			})

			admin.Route("/api/admin/galeria", func(g chi.Router) {
				g.Post("/categorias", h.CreateGaleriaCategoria)
				g.Patch("/categorias/{id}", h.UpdateGaleriaCategoria)
				g.Delete("/categorias/{id}", h.DeleteGaleriaCategoria)
				g.Post("/itens", h.CreateGaleriaItem)
				g.Patch("/itens/{id}", h.UpdateGaleriaItem)
				g.Delete("/itens/{id}", h.DeleteGaleriaItem)
			})
		})
	})

	return r, nil
}

// Health responde status simples.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready valida conexões com Postgres e Redis.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	dbErr := h.dbPing(ctx)
	redisErr := h.redisPing(ctx)

	if dbErr != nil || redisErr != nil {
		WriteError(w, http.StatusServiceUnavailable, "Dependências indisponíveis", map[string]any{
			"db":    errorString(dbErr),
			"redis": errorString(redisErr),
		})
		return
	}

	WriteSuccess(w, http.StatusOK, map[string]bool{"ready": true})
}

func errorString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
