package notification

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/erickreisti/patrulha-area-civil-sub003/internal/profile"
)

type store interface {
	Insert(ctx context.Context, userID uuid.UUID, input Input) (*Notificacao, error)
	InsertMany(ctx context.Context, userIDs []uuid.UUID, input Input) (int, error)
}

type adminLister interface {
	ListActiveAdmins(ctx context.Context) ([]profile.Profile, error)
}

// Service concentra entrega de notificações, incluindo o fan-out para
// administradores ativos.
type Service struct {
	store  store
	admins adminLister
}

// NewService cria o serviço de notificações.
func NewService(store store, admins adminLister) *Service {
	return &Service{store: store, admins: admins}
}

// Notify entrega uma notificação a um único destinatário.
func (s *Service) Notify(ctx context.Context, userID uuid.UUID, input Input) (*Notificacao, error) {
	return s.store.Insert(ctx, userID, input)
}

// NotifyAdmins grava uma linha por administrador ativo com o mesmo conteúdo.
// Sem administradores ativos, nada é gravado e não há erro. A operação não é
// transacional: falha parcial é possível e não é revertida.
func (s *Service) NotifyAdmins(ctx context.Context, input Input) (int, error) {
	admins, err := s.admins.ListActiveAdmins(ctx)
	if err != nil {
		return 0, err
	}
	if len(admins) == 0 {
		return 0, nil
	}

	targets := make([]uuid.UUID, len(admins))
	for i, admin := range admins {
		targets[i] = admin.ID
	}

	inserted, err := s.store.InsertMany(ctx, targets, input)
	if err != nil {
		log.Error().Err(err).
			Int("alvos", len(targets)).
			Int("inseridas", inserted).
			Str("tipo", input.Tipo).
			Msg("notificação: fan-out parcial ou falho")
	}
	return inserted, err
}

// asyncTimeout limita o fan-out desanexado: sem ele, uma chamada travada ao
// pool seguraria a goroutine para sempre.
const asyncTimeout = 5 * time.Second

// NotifyAdminsAsync dispara o fan-out como efeito colateral best-effort: a
// falha é logada pelo NotifyAdmins e nunca propaga ao chamador.
func (s *Service) NotifyAdminsAsync(ctx context.Context, input Input) {
	detached, cancel := context.WithTimeout(context.WithoutCancel(ctx), asyncTimeout)
	go func() {
		defer cancel()
		_, _ = s.NotifyAdmins(detached, input)
	}()
}
