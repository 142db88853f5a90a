package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erickreisti/patrulha-area-civil-sub003/internal/auth"
)

func okHandler(t *testing.T, wantSubject string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, wantSubject, GetSubject(r.Context()))
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthComBearer(t *testing.T) {
	mgr := auth.NewJWTManager("segredo", 5*time.Minute)
	token, _, err := mgr.GenerateAccessToken("sujeito-1", []string{"AGENTE"})
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	Auth(mgr)(okHandler(t, "sujeito-1")).ServeHTTP(w, r)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthComCookie(t *testing.T) {
	mgr := auth.NewJWTManager("segredo", 5*time.Minute)
	token, _, err := mgr.GenerateAccessToken("sujeito-2", []string{"ADMIN"})
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	r.AddCookie(&http.Cookie{Name: AccessCookie, Value: token})
	w := httptest.NewRecorder()

	Auth(mgr)(okHandler(t, "sujeito-2")).ServeHTTP(w, r)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthSemToken(t *testing.T) {
	mgr := auth.NewJWTManager("segredo", 5*time.Minute)

	r := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	w := httptest.NewRecorder()

	called := false
	Auth(mgr)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true })).ServeHTTP(w, r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, called)
	assert.Contains(t, w.Body.String(), "Não autorizado")
}

func TestAuthTokenAssinadoComOutroSegredo(t *testing.T) {
	intruso := auth.NewJWTManager("outro-segredo", 5*time.Minute)
	token, _, err := intruso.GenerateAccessToken("sujeito-3", nil)
	require.NoError(t, err)

	mgr := auth.NewJWTManager("segredo", 5*time.Minute)
	r := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	Auth(mgr)(okHandler(t, "sujeito-3")).ServeHTTP(w, r)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthTokenExpirado(t *testing.T) {
	mgr := auth.NewJWTManager("segredo", -1*time.Minute)
	token, _, err := mgr.GenerateAccessToken("sujeito-4", nil)
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	Auth(mgr)(okHandler(t, "sujeito-4")).ServeHTTP(w, r)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
