package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erickreisti/patrulha-area-civil-sub003/internal/profile"
)

type stubStore struct {
	inserted   []uuid.UUID
	insertErr  error
	partial    int
	usePartial bool
}

func (s *stubStore) Insert(_ context.Context, userID uuid.UUID, _ Input) (*Notificacao, error) {
	if s.insertErr != nil {
		return nil, s.insertErr
	}
	s.inserted = append(s.inserted, userID)
	return &Notificacao{ID: uuid.New(), UserID: userID}, nil
}

func (s *stubStore) InsertMany(_ context.Context, userIDs []uuid.UUID, _ Input) (int, error) {
	if s.insertErr != nil {
		if s.usePartial {
			return s.partial, s.insertErr
		}
		return 0, s.insertErr
	}
	s.inserted = append(s.inserted, userIDs...)
	return len(userIDs), nil
}

type stubAdmins struct {
	admins []profile.Profile
	err    error
}

func (s *stubAdmins) ListActiveAdmins(context.Context) ([]profile.Profile, error) {
	return s.admins, s.err
}

func TestNotifyAdminsFanOut(t *testing.T) {
	admins := []profile.Profile{
		{ID: uuid.New()},
		{ID: uuid.New()},
		{ID: uuid.New()},
	}
	store := &stubStore{}
	svc := NewService(store, &stubAdmins{admins: admins})

	count, err := svc.NotifyAdmins(context.Background(), Input{Tipo: TipoSystem, Titulo: "aviso", Mensagem: "m"})
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	seen := map[uuid.UUID]bool{}
	for _, id := range store.inserted {
		assert.False(t, seen[id], "destinatário duplicado")
		seen[id] = true
	}
	assert.Len(t, seen, 3)
}

func TestNotifyAdminsSemAdmins(t *testing.T) {
	store := &stubStore{}
	svc := NewService(store, &stubAdmins{})

	count, err := svc.NotifyAdmins(context.Background(), Input{Tipo: TipoSystem, Titulo: "aviso", Mensagem: "m"})
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Empty(t, store.inserted)
}

func TestNotifyAdminsFalhaParcial(t *testing.T) {
	admins := []profile.Profile{{ID: uuid.New()}, {ID: uuid.New()}}
	store := &stubStore{insertErr: errors.New("conexão caiu"), usePartial: true, partial: 1}
	svc := NewService(store, &stubAdmins{admins: admins})

	count, err := svc.NotifyAdmins(context.Background(), Input{Tipo: TipoWarning, Titulo: "t", Mensagem: "m"})
	assert.Error(t, err)
	assert.Equal(t, 1, count)
}

func TestNotifyAdminsErroNaListagem(t *testing.T) {
	store := &stubStore{}
	svc := NewService(store, &stubAdmins{err: errors.New("sem banco")})

	_, err := svc.NotifyAdmins(context.Background(), Input{Tipo: TipoInfo, Titulo: "t", Mensagem: "m"})
	assert.Error(t, err)
	assert.Empty(t, store.inserted)
}

type ctxCaptureStore struct {
	stubStore
	hasDeadline bool
	ctxErr      error
	done        chan struct{}
}

func (s *ctxCaptureStore) InsertMany(ctx context.Context, userIDs []uuid.UUID, in Input) (int, error) {
	_, s.hasDeadline = ctx.Deadline()
	s.ctxErr = ctx.Err()
	defer close(s.done)
	return s.stubStore.InsertMany(ctx, userIDs, in)
}

func TestNotifyAdminsAsyncSobreviveAoCancelamento(t *testing.T) {
	admins := []profile.Profile{{ID: uuid.New()}}
	store := &ctxCaptureStore{done: make(chan struct{})}
	svc := NewService(store, &stubAdmins{admins: admins})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc.NotifyAdminsAsync(ctx, Input{Tipo: TipoSystem, Titulo: "aviso", Mensagem: "m"})

	select {
	case <-store.done:
	case <-time.After(2 * time.Second):
		t.Fatal("fan-out não executou")
	}

	// o contexto desanexado ignora o cancelamento do pai, mas tem prazo próprio
	assert.NoError(t, store.ctxErr)
	assert.True(t, store.hasDeadline)
	assert.Len(t, store.inserted, 1)
}

func TestNotify(t *testing.T) {
	store := &stubStore{}
	svc := NewService(store, &stubAdmins{})
	target := uuid.New()

	n, err := svc.Notify(context.Background(), target, Input{Tipo: TipoUserCreated, Titulo: "bem-vindo", Mensagem: "m"})
	require.NoError(t, err)
	assert.Equal(t, target, n.UserID)
}
