package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erickreisti/patrulha-area-civil-sub003/internal/activity"
	"github.com/erickreisti/patrulha-area-civil-sub003/internal/config"
	httpmiddleware "github.com/erickreisti/patrulha-area-civil-sub003/internal/http/middleware"
	"github.com/erickreisti/patrulha-area-civil-sub003/internal/notification"
	"github.com/erickreisti/patrulha-area-civil-sub003/internal/profile"
)

type stubProfiles struct {
	byID       map[uuid.UUID]*profile.Profile
	deleted    []uuid.UUID
	deleteErr  error
	created    []profile.CreateInput
	listResult []profile.Profile
	listTotal  int64
}

func (s *stubProfiles) Create(_ context.Context, input profile.CreateInput) (*profile.Profile, error) {
	s.created = append(s.created, input)
	return &profile.Profile{
		ID:        uuid.New(),
		Matricula: input.Matricula,
		Email:     input.Email,
		FullName:  input.FullName,
		Role:      input.Role,
		Status:    true,
	}, nil
}

func (s *stubProfiles) GetByID(_ context.Context, id uuid.UUID) (*profile.Profile, error) {
	if p, ok := s.byID[id]; ok {
		return p, nil
	}
	return nil, profile.ErrNotFound
}

func (s *stubProfiles) List(_ context.Context, _ profile.Filter) ([]profile.Profile, int64, error) {
	return s.listResult, s.listTotal, nil
}

func (s *stubProfiles) UpdateStatus(_ context.Context, id uuid.UUID, status bool) (*profile.Profile, error) {
	p, ok := s.byID[id]
	if !ok {
		return nil, profile.ErrNotFound
	}
	clone := *p
	clone.Status = status
	return &clone, nil
}

func (s *stubProfiles) UpdateMatricula(_ context.Context, id uuid.UUID, matricula string) (*profile.Profile, error) {
	p, ok := s.byID[id]
	if !ok {
		return nil, profile.ErrNotFound
	}
	clone := *p
	clone.Matricula = matricula
	return &clone, nil
}

func (s *stubProfiles) UpdateAvatar(_ context.Context, id uuid.UUID, avatarURL string) (*profile.Profile, error) {
	p, ok := s.byID[id]
	if !ok {
		return nil, profile.ErrNotFound
	}
	clone := *p
	clone.AvatarURL = &avatarURL
	return &clone, nil
}

func (s *stubProfiles) UpdateSelf(_ context.Context, id uuid.UUID, input profile.SelfUpdateInput) (*profile.Profile, error) {
	p, ok := s.byID[id]
	if !ok {
		return nil, profile.ErrNotFound
	}
	clone := *p
	if input.FullName != nil {
		clone.FullName = *input.FullName
	}
	return &clone, nil
}

func (s *stubProfiles) Delete(_ context.Context, id uuid.UUID) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	if _, ok := s.byID[id]; !ok {
		return profile.ErrNotFound
	}
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *stubProfiles) Count(_ context.Context, _ bool) (int64, error) {
	return s.listTotal, nil
}

type stubNotificacoes struct {
	byOwner map[uuid.UUID][]notification.Notificacao
	marked  []uuid.UUID
}

func (s *stubNotificacoes) ListByUser(_ context.Context, userID uuid.UUID, _ bool, _, _ int) ([]notification.Notificacao, int64, error) {
	items := s.byOwner[userID]
	return items, int64(len(items)), nil
}

func (s *stubNotificacoes) MarkRead(_ context.Context, id, userID uuid.UUID) (*notification.Notificacao, error) {
	for _, n := range s.byOwner[userID] {
		if n.ID == id {
			n.Lida = true
			s.marked = append(s.marked, id)
			return &n, nil
		}
	}
	return nil, notification.ErrNotFound
}

func (s *stubNotificacoes) MarkAllRead(_ context.Context, userID uuid.UUID) (int64, error) {
	return int64(len(s.byOwner[userID])), nil
}

func (s *stubNotificacoes) Delete(_ context.Context, id, userID uuid.UUID) error {
	for _, n := range s.byOwner[userID] {
		if n.ID == id {
			return nil
		}
	}
	return notification.ErrNotFound
}

func (s *stubNotificacoes) CountUnread(_ context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	for _, n := range s.byOwner[userID] {
		if !n.Lida {
			count++
		}
	}
	return count, nil
}

type recordingAuditor struct {
	entries []activity.Entry
}

func (r *recordingAuditor) Record(_ context.Context, entry activity.Entry) {
	r.entries = append(r.entries, entry)
}

type stubNotifier struct {
	single    []uuid.UUID
	broadcast []notification.Input
}

func (s *stubNotifier) Notify(_ context.Context, userID uuid.UUID, _ notification.Input) (*notification.Notificacao, error) {
	s.single = append(s.single, userID)
	return &notification.Notificacao{ID: uuid.New(), UserID: userID}, nil
}

func (s *stubNotifier) NotifyAdmins(_ context.Context, input notification.Input) (int, error) {
	s.broadcast = append(s.broadcast, input)
	return 2, nil
}

func (s *stubNotifier) NotifyAdminsAsync(_ context.Context, input notification.Input) {
	s.broadcast = append(s.broadcast, input)
}

type nopCache struct{}

func (nopCache) Get(context.Context, string, any) bool { return false }
func (nopCache) Set(context.Context, string, any)      {}
func (nopCache) Invalidate(context.Context, ...string) {}

func newTestHandler(profiles *stubProfiles, notifs *stubNotificacoes, rec *recordingAuditor, notifier *stubNotifier) *Handler {
	return &Handler{
		cfg:          &config.Config{Env: "test"},
		profiles:     profiles,
		notificacoes: notifs,
		notifier:     notifier,
		auditoria:    rec,
		cacheRead:    nopCache{},
		cache:        nopCache{},
	}
}

func authedRequest(method, target string, body []byte, subject uuid.UUID, roles ...string) *http.Request {
	var r *http.Request
	if body != nil {
		r = httptest.NewRequest(method, target, bytes.NewReader(body))
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	ctx := context.WithValue(r.Context(), httpmiddleware.ContextKeySubject, subject.String())
	ctx = context.WithValue(ctx, httpmiddleware.ContextKeyRoles, roles)
	return r.WithContext(ctx)
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var env map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestRequireAdminBloqueiaAgente(t *testing.T) {
	profiles := &stubProfiles{byID: map[uuid.UUID]*profile.Profile{}}
	rec := &recordingAuditor{}
	h := newTestHandler(profiles, &stubNotificacoes{}, rec, &stubNotifier{})

	guarded := httpmiddleware.RequireAdmin(http.HandlerFunc(h.DeleteAgente))

	r := authedRequest(http.MethodDelete, "/api/admin/agentes/"+uuid.NewString(), nil, uuid.New(), "AGENTE")
	w := httptest.NewRecorder()
	guarded.ServeHTTP(w, r)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, profiles.deleted)
	assert.Empty(t, rec.entries)

	env := decodeEnvelope(t, w)
	assert.Equal(t, false, env["success"])
	assert.Equal(t, "Acesso restrito a administradores", env["error"])
}

func TestDeleteAgenteRegistraAuditoria(t *testing.T) {
	alvo := &profile.Profile{
		ID:        uuid.New(),
		Matricula: "PAC-0042",
		Email:     "ana@pac.org.br",
		FullName:  "Ana Souza",
		Role:      profile.RoleAgente,
	}
	admin := &profile.Profile{
		ID:       uuid.New(),
		Email:    "comandante@pac.org.br",
		FullName: "Comandante Dias",
		Role:     profile.RoleAdmin,
	}
	profiles := &stubProfiles{byID: map[uuid.UUID]*profile.Profile{
		alvo.ID:  alvo,
		admin.ID: admin,
	}}
	rec := &recordingAuditor{}
	h := newTestHandler(profiles, &stubNotificacoes{}, rec, &stubNotifier{})

	r := authedRequest(http.MethodDelete, "/api/admin/agentes/"+alvo.ID.String(), nil, admin.ID, "ADMIN")
	r = withURLParam(r, "id", alvo.ID.String())
	w := httptest.NewRecorder()
	h.DeleteAgente(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []uuid.UUID{alvo.ID}, profiles.deleted)

	require.Len(t, rec.entries, 1)
	entry := rec.entries[0]
	assert.Equal(t, activity.ActionAgentDeleted, entry.ActionType)
	assert.Equal(t, admin.ID, entry.UserID)

	// a descrição identifica o removido pelo nome e quem removeu pelo e-mail
	assert.Contains(t, entry.Description, "Ana Souza")
	assert.Contains(t, entry.Description, "ana@pac.org.br")
	assert.Contains(t, entry.Description, "comandante@pac.org.br")
}

func TestDeleteAgenteIDInvalido(t *testing.T) {
	profiles := &stubProfiles{byID: map[uuid.UUID]*profile.Profile{}}
	h := newTestHandler(profiles, &stubNotificacoes{}, &recordingAuditor{}, &stubNotifier{})

	r := authedRequest(http.MethodDelete, "/api/admin/agentes/nao-e-uuid", nil, uuid.New(), "ADMIN")
	r = withURLParam(r, "id", "nao-e-uuid")
	w := httptest.NewRecorder()
	h.DeleteAgente(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	env := decodeEnvelope(t, w)
	assert.Equal(t, false, env["success"])
	assert.Equal(t, "Erro de validação", env["error"])
	details, ok := env["details"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, details, "id")
}

func TestCreateAgenteValidaCampos(t *testing.T) {
	profiles := &stubProfiles{byID: map[uuid.UUID]*profile.Profile{}}
	h := newTestHandler(profiles, &stubNotificacoes{}, &recordingAuditor{}, &stubNotifier{})

	body := []byte(`{"email":"invalido","full_name":"A","senha":"123"}`)
	r := authedRequest(http.MethodPost, "/api/admin/agentes", body, uuid.New(), "ADMIN")
	w := httptest.NewRecorder()
	h.CreateAgente(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, profiles.created)

	env := decodeEnvelope(t, w)
	details, ok := env["details"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, details, "email")
	assert.Contains(t, details, "matricula")
	assert.Contains(t, details, "senha")
}

func TestCreateAgenteNotificaEAudita(t *testing.T) {
	profiles := &stubProfiles{byID: map[uuid.UUID]*profile.Profile{}}
	rec := &recordingAuditor{}
	notifier := &stubNotifier{}
	h := newTestHandler(profiles, &stubNotificacoes{}, rec, notifier)

	body := []byte(`{"matricula":"PAC-0099","email":"novo@pac.org.br","full_name":"Bruno Lima","senha":"senha-forte-1"}`)
	r := authedRequest(http.MethodPost, "/api/admin/agentes", body, uuid.New(), "ADMIN")
	w := httptest.NewRecorder()
	h.CreateAgente(w, r)

	assert.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, profiles.created, 1)
	assert.Equal(t, profile.RoleAgente, profiles.created[0].Role)
	assert.NotEqual(t, "senha-forte-1", profiles.created[0].SenhaHash)

	assert.Len(t, notifier.single, 1, "boas-vindas ao novo agente")
	assert.Len(t, notifier.broadcast, 1, "fan-out para administradores")

	require.Len(t, rec.entries, 1)
	assert.Equal(t, activity.ActionAgentCreated, rec.entries[0].ActionType)
}

func TestNotificationsDeOutroDonoRespondem404(t *testing.T) {
	dona := uuid.New()
	intrusa := uuid.New()
	alheia := notification.Notificacao{ID: uuid.New(), UserID: dona, Tipo: notification.TipoInfo}

	notifs := &stubNotificacoes{byOwner: map[uuid.UUID][]notification.Notificacao{
		dona: {alheia},
	}}
	h := newTestHandler(&stubProfiles{byID: map[uuid.UUID]*profile.Profile{}}, notifs, &recordingAuditor{}, &stubNotifier{})

	r := authedRequest(http.MethodPatch, "/api/notifications/"+alheia.ID.String(), nil, intrusa, "AGENTE")
	r = withURLParam(r, "id", alheia.ID.String())
	w := httptest.NewRecorder()
	h.MarkNotificationRead(w, r)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Empty(t, notifs.marked)

	r = authedRequest(http.MethodDelete, "/api/notifications/"+alheia.ID.String(), nil, intrusa, "AGENTE")
	r = withURLParam(r, "id", alheia.ID.String())
	w = httptest.NewRecorder()
	h.DeleteNotification(w, r)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListNotificationsDoProprioDono(t *testing.T) {
	dono := uuid.New()
	notifs := &stubNotificacoes{byOwner: map[uuid.UUID][]notification.Notificacao{
		dono: {
			{ID: uuid.New(), UserID: dono, Lida: false},
			{ID: uuid.New(), UserID: dono, Lida: true},
		},
	}}
	h := newTestHandler(&stubProfiles{byID: map[uuid.UUID]*profile.Profile{}}, notifs, &recordingAuditor{}, &stubNotifier{})

	r := authedRequest(http.MethodGet, "/api/notifications", nil, dono, "AGENTE")
	w := httptest.NewRecorder()
	h.ListNotifications(w, r)

	assert.Equal(t, http.StatusOK, w.Code)

	env := decodeEnvelope(t, w)
	data, ok := env["data"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 1, data["nao_lidas"])

	pagination, ok := env["pagination"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 2, pagination["total"])
}

func TestBroadcastNotification(t *testing.T) {
	rec := &recordingAuditor{}
	notifier := &stubNotifier{}
	h := newTestHandler(&stubProfiles{byID: map[uuid.UUID]*profile.Profile{}}, &stubNotificacoes{}, rec, notifier)

	body := []byte(`{"titulo":"Manutenção","mensagem":"Sistema indisponível no sábado"}`)
	r := authedRequest(http.MethodPost, "/api/admin/notifications/broadcast", body, uuid.New(), "ADMIN")
	w := httptest.NewRecorder()
	h.BroadcastNotification(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, notifier.broadcast, 1)
	assert.Equal(t, notification.TipoSystem, notifier.broadcast[0].Tipo)

	require.Len(t, rec.entries, 1)
	assert.Equal(t, activity.ActionBroadcast, rec.entries[0].ActionType)
}

func TestEnvelopeTemTimestamp(t *testing.T) {
	w := httptest.NewRecorder()
	WriteSuccess(w, http.StatusOK, map[string]string{"ok": "sim"})

	env := decodeEnvelope(t, w)
	assert.Equal(t, true, env["success"])

	ts, ok := env["timestamp"].(string)
	require.True(t, ok)
	_, err := time.Parse(time.RFC3339, ts)
	assert.NoError(t, err)
}

func TestNewPagination(t *testing.T) {
	tests := []struct {
		total      int64
		limit      int
		totalPages int
	}{
		{0, 50, 0},
		{1, 50, 1},
		{50, 50, 1},
		{51, 50, 2},
		{100, 25, 4},
		{101, 25, 5},
	}

	for _, tt := range tests {
		p := NewPagination(1, tt.limit, tt.total)
		assert.Equal(t, tt.totalPages, p.TotalPages, "total=%d limit=%d", tt.total, tt.limit)
	}
}
