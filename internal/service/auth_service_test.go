package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erickreisti/patrulha-area-civil-sub003/internal/auth"
	"github.com/erickreisti/patrulha-area-civil-sub003/internal/profile"
)

type stubProfiles struct {
	byEmail map[string]*profile.Profile
	byID    map[uuid.UUID]*profile.Profile
}

func (s *stubProfiles) GetByEmail(_ context.Context, email string) (*profile.Profile, error) {
	if p, ok := s.byEmail[email]; ok {
		return p, nil
	}
	return nil, profile.ErrNotFound
}

func (s *stubProfiles) GetByID(_ context.Context, id uuid.UUID) (*profile.Profile, error) {
	if p, ok := s.byID[id]; ok {
		return p, nil
	}
	return nil, profile.ErrNotFound
}

// fakeRedis simula apenas os comandos usados pelo serviço.
type fakeRedis struct {
	values map[string]string
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{values: map[string]string{}}
}

func (f *fakeRedis) Set(_ context.Context, key string, value any, _ time.Duration) *redis.StatusCmd {
	f.values[key] = value.(string)
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) GetDel(_ context.Context, key string) *redis.StringCmd {
	val, ok := f.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	delete(f.values, key)
	return redis.NewStringResult(val, nil)
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	var removed int64
	for _, key := range keys {
		if _, ok := f.values[key]; ok {
			delete(f.values, key)
			removed++
		}
	}
	return redis.NewIntResult(removed, nil)
}

// fakeRefreshStore simula a tabela refresh_tokens em memória.
type fakeRefreshStore struct {
	rows map[string]fakeRefreshRow
}

type fakeRefreshRow struct {
	userID    uuid.UUID
	expiresAt time.Time
}

func newFakeRefreshStore() *fakeRefreshStore {
	return &fakeRefreshStore{rows: map[string]fakeRefreshRow{}}
}

func (f *fakeRefreshStore) Save(_ context.Context, hash string, userID uuid.UUID, expiresAt time.Time) error {
	f.rows[hash] = fakeRefreshRow{userID: userID, expiresAt: expiresAt}
	return nil
}

func (f *fakeRefreshStore) Consume(_ context.Context, hash string) (uuid.UUID, error) {
	row, ok := f.rows[hash]
	if !ok || !row.expiresAt.After(time.Now()) {
		return uuid.Nil, auth.ErrInvalidRefresh
	}
	delete(f.rows, hash)
	return row.userID, nil
}

func (f *fakeRefreshStore) Delete(_ context.Context, hash string) error {
	delete(f.rows, hash)
	return nil
}

func newTestService(t *testing.T) (*AuthService, *fakeRedis, *fakeRefreshStore, *profile.Profile) {
	t.Helper()

	hash, err := auth.Hash("senha-correta")
	require.NoError(t, err)

	user := &profile.Profile{
		ID:        uuid.New(),
		Matricula: "PAC-0001",
		Email:     "agente@pac.org.br",
		FullName:  "Agente Teste",
		Role:      profile.RoleAgente,
		Status:    true,
		SenhaHash: hash,
	}

	profiles := &stubProfiles{
		byEmail: map[string]*profile.Profile{user.Email: user},
		byID:    map[uuid.UUID]*profile.Profile{user.ID: user},
	}
	rdb := newFakeRedis()
	tokens := newFakeRefreshStore()
	jwtMgr := auth.NewJWTManager("segredo-de-teste", 15*time.Minute)

	return NewAuthServiceWith(profiles, rdb, tokens, jwtMgr, 24*time.Hour), rdb, tokens, user
}

func TestLogin(t *testing.T) {
	svc, rdb, tokens, user := newTestService(t)

	result, err := svc.Login(context.Background(), "Agente@PAC.org.br ", "senha-correta")
	require.NoError(t, err)

	assert.NotEmpty(t, result.AccessToken)
	assert.NotEmpty(t, result.RefreshToken)
	assert.Equal(t, []string{"AGENTE"}, result.Roles)
	assert.Equal(t, user.ID, result.Profile.ID)
	assert.EqualValues(t, (15 * time.Minute).Seconds(), result.ExpiresIn)

	// refresh fica guardado apenas como hash, no cache e na tabela durável
	hash := auth.HashToken(result.RefreshToken)
	assert.Equal(t, user.ID.String(), rdb.values[auth.RefreshRedisKey(hash)])
	assert.Contains(t, tokens.rows, hash)
	for stored := range rdb.values {
		assert.NotContains(t, stored, result.RefreshToken)
	}

	claims, err := svc.JWT().ParseAndValidate(result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims.Subject)
}

func TestLoginSenhaErrada(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, err := svc.Login(context.Background(), "agente@pac.org.br", "senha-errada")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginEmailDesconhecido(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, err := svc.Login(context.Background(), "ninguem@pac.org.br", "senha-correta")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginContaDesativada(t *testing.T) {
	svc, _, _, user := newTestService(t)
	user.Status = false

	_, err := svc.Login(context.Background(), user.Email, "senha-correta")
	assert.ErrorIs(t, err, ErrAccountDisabled)
}

func TestRefreshRotaciona(t *testing.T) {
	svc, rdb, tokens, _ := newTestService(t)

	first, err := svc.Login(context.Background(), "agente@pac.org.br", "senha-correta")
	require.NoError(t, err)

	second, err := svc.Refresh(context.Background(), first.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	// o token antigo foi consumido na rotação
	_, err = svc.Refresh(context.Background(), first.RefreshToken)
	assert.ErrorIs(t, err, auth.ErrInvalidRefresh)

	// o novo continua válido
	third, err := svc.Refresh(context.Background(), second.RefreshToken)
	require.NoError(t, err)

	// a cada rotação existe exatamente um refresh ativo em cada armazenamento
	hash := auth.HashToken(third.RefreshToken)
	assert.Contains(t, rdb.values, auth.RefreshRedisKey(hash))
	assert.Len(t, rdb.values, 1)
	assert.Contains(t, tokens.rows, hash)
	assert.Len(t, tokens.rows, 1)
}

func TestRefreshSobreviveAoFlushDoCache(t *testing.T) {
	svc, rdb, tokens, user := newTestService(t)

	first, err := svc.Login(context.Background(), "agente@pac.org.br", "senha-correta")
	require.NoError(t, err)

	// cache reiniciado: só a tabela durável conhece o token
	rdb.values = map[string]string{}

	second, err := svc.Refresh(context.Background(), first.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, second.Profile.ID)

	// o consumo durável também é de uso único
	_, err = svc.Refresh(context.Background(), first.RefreshToken)
	assert.ErrorIs(t, err, auth.ErrInvalidRefresh)
	assert.NotContains(t, tokens.rows, auth.HashToken(first.RefreshToken))
}

func TestRefreshDesconhecido(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, err := svc.Refresh(context.Background(), "token-que-nunca-existiu")
	assert.ErrorIs(t, err, auth.ErrInvalidRefresh)
}

func TestExchangeCodeUsoUnico(t *testing.T) {
	svc, _, _, user := newTestService(t)

	code, err := svc.IssueLoginCode(context.Background(), user.Email, "senha-correta")
	require.NoError(t, err)
	require.NotEmpty(t, code)

	result, err := svc.ExchangeCode(context.Background(), code)
	require.NoError(t, err)
	assert.Equal(t, user.ID, result.Profile.ID)

	// segunda troca do mesmo código falha
	_, err = svc.ExchangeCode(context.Background(), code)
	assert.ErrorIs(t, err, auth.ErrInvalidCode)
}

func TestLogoutRevogaRefresh(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	result, err := svc.Login(context.Background(), "agente@pac.org.br", "senha-correta")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), result.RefreshToken))

	_, err = svc.Refresh(context.Background(), result.RefreshToken)
	assert.ErrorIs(t, err, auth.ErrInvalidRefresh)
}
