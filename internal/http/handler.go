package http

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/erickreisti/patrulha-area-civil-sub003/internal/activity"
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

type profileStore interface {
	Create(ctx context.Context, input profile.CreateInput) (*profile.Profile, error)
	GetByID(ctx context.Context, id uuid.UUID) (*profile.Profile, error)
	List(ctx context.Context, filter profile.Filter) ([]profile.Profile, int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status bool) (*profile.Profile, error)
	UpdateMatricula(ctx context.Context, id uuid.UUID, matricula string) (*profile.Profile, error)
	UpdateAvatar(ctx context.Context, id uuid.UUID, avatarURL string) (*profile.Profile, error)
	UpdateSelf(ctx context.Context, id uuid.UUID, input profile.SelfUpdateInput) (*profile.Profile, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context, onlyActive bool) (int64, error)
}

type eventoStore interface {
	Create(ctx context.Context, input event.CreateInput) (*event.Evento, error)
	GetByID(ctx context.Context, id uuid.UUID) (*event.Evento, error)
	ListUpcoming(ctx context.Context, from time.Time, limit, offset int) ([]event.Evento, int64, error)
	Update(ctx context.Context, id uuid.UUID, input event.UpdateInput) (*event.Evento, error)
	Delete(ctx context.Context, id uuid.UUID) error
	CountUpcoming(ctx context.Context, from time.Time) (int64, error)
}

type noticiaStore interface {
	Create(ctx context.Context, input noticia.CreateInput) (*noticia.Noticia, error)
	GetByID(ctx context.Context, id uuid.UUID) (*noticia.Noticia, error)
	GetPublishedBySlug(ctx context.Context, slug string) (*noticia.Noticia, error)
	ListPublished(ctx context.Context, filter noticia.Filter) ([]noticia.Noticia, int64, error)
	Update(ctx context.Context, id uuid.UUID, input noticia.UpdateInput) (*noticia.Noticia, error)
	Delete(ctx context.Context, id uuid.UUID) error
	CountPublished(ctx context.Context) (int64, error)
}

type galeriaStore interface {
	CreateCategoria(ctx context.Context, input galeria.CategoriaInput) (*galeria.Categoria, error)
	GetCategoria(ctx context.Context, id uuid.UUID) (*galeria.Categoria, error)
	ListCategoriasAtivas(ctx context.Context) ([]galeria.CategoriaResumo, error)
	UpdateCategoria(ctx context.Context, id uuid.UUID, input galeria.CategoriaUpdate) (*galeria.Categoria, error)
	DeleteCategoria(ctx context.Context, id uuid.UUID) error
	CreateItem(ctx context.Context, input galeria.ItemInput) (*galeria.Item, error)
	GetItem(ctx context.Context, id uuid.UUID) (*galeria.Item, error)
	ListItensBySlug(ctx context.Context, slug string, limit, offset int) ([]galeria.Item, int64, error)
	UpdateItem(ctx context.Context, id uuid.UUID, input galeria.ItemUpdate) (*galeria.Item, error)
	DeleteItem(ctx context.Context, id uuid.UUID) error
	IncrementViews(ctx context.Context, itemIDs []uuid.UUID) error
	CountItens(ctx context.Context) (int64, error)
}

type notificacaoStore interface {
	ListByUser(ctx context.Context, userID uuid.UUID, onlyUnread bool, limit, offset int) ([]notification.Notificacao, int64, error)
	MarkRead(ctx context.Context, id, userID uuid.UUID) (*notification.Notificacao, error)
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
	Delete(ctx context.Context, id, userID uuid.UUID) error
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
}

type notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, input notification.Input) (*notification.Notificacao, error)
	NotifyAdmins(ctx context.Context, input notification.Input) (int, error)
	NotifyAdminsAsync(ctx context.Context, input notification.Input)
}

type atividadeStore interface {
	List(ctx context.Context, limit, offset int) ([]activity.EntryWithActor, error)
	Count(ctx context.Context) (int64, error)
}

type auditor interface {
	Record(ctx context.Context, entry activity.Entry)
}

type invalidator interface {
	Invalidate(ctx context.Context, keys ...string)
}

type reader interface {
	Get(ctx context.Context, key string, dest any) bool
	Set(ctx context.Context, key string, value any)
}

// Handler agrega as dependências da camada HTTP. Tudo entra por injeção
// explícita: nenhum cliente privilegiado vive em estado global.
type Handler struct {
	cfg          *config.Config
	authService  *service.AuthService
	profiles     profileStore
	eventos      eventoStore
	noticias     noticiaStore
	galeria      galeriaStore
	notificacoes notificacaoStore
	notifier     notifier
	atividades   atividadeStore
	auditoria    auditor
	cacheRead    reader
	cache        invalidator
	storage      storage.Uploader
	dbPing       func(ctx context.Context) error
	redisPing    func(ctx context.Context) error
	devCookies   bool
}

// subjectUUID devolve o sujeito autenticado da requisição.
func (h *Handler) subjectUUID(r *http.Request) (uuid.UUID, error) {
	return httpmiddleware.SubjectUUID(r.Context())
}

// sideEffectCtx desvincula efeitos colaterais (auditoria, fan-out,
// invalidação) do cancelamento da resposta, mantendo um teto de tempo.
func sideEffectCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
}
