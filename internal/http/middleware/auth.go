package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/erickreisti/patrulha-area-civil-sub003/internal/auth"
)

type contextKey string

const (
	ContextKeySubject contextKey = "subject"
	ContextKeyRoles   contextKey = "roles"
)

// AccessCookie é o cookie de sessão aceito como alternativa ao header Bearer.
const AccessCookie = "pac_access"

// RoleAdmin é o papel exigido pelas rotas administrativas.
const RoleAdmin = "ADMIN"

// Auth valida o JWT de acesso (Bearer ou cookie de sessão) e injeta claims no
// contexto. Nenhum handler toca o banco antes desta verificação.
func Auth(jwtManager *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				if cookie, err := r.Cookie(AccessCookie); err == nil {
					token = cookie.Value
				}
			}
			if token == "" {
				writeGuardError(w, http.StatusUnauthorized, "Não autorizado")
				return
			}

			claims, err := jwtManager.ParseAndValidate(token)
			if err != nil {
				writeGuardError(w, http.StatusUnauthorized, "Não autorizado")
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeySubject, claims.Subject)
			ctx = context.WithValue(ctx, ContextKeyRoles, claims.Roles)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin garante papel administrativo após autenticação.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, role := range GetRoles(r.Context()) {
			if strings.EqualFold(role, RoleAdmin) {
				next.ServeHTTP(w, r)
				return
			}
		}

		writeGuardError(w, http.StatusForbidden, "Acesso restrito a administradores")
	})
}

// GetSubject recupera subject do contexto.
func GetSubject(ctx context.Context) string {
	val, _ := ctx.Value(ContextKeySubject).(string)
	return val
}

// GetRoles recupera roles do contexto.
func GetRoles(ctx context.Context) []string {
	val, _ := ctx.Value(ContextKeyRoles).([]string)
	return val
}

// SubjectUUID devolve o subject como UUID.
func SubjectUUID(ctx context.Context) (uuid.UUID, error) {
	return uuid.Parse(GetSubject(ctx))
}

func bearerToken(r *http.Request) string {
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func writeGuardError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success":   false,
		"error":     message,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
