package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/erickreisti/patrulha-area-civil-sub003/internal/auth"
	httpmiddleware "github.com/erickreisti/patrulha-area-civil-sub003/internal/http/middleware"
	"github.com/erickreisti/patrulha-area-civil-sub003/internal/profile"
	"github.com/erickreisti/patrulha-area-civil-sub003/internal/service"
	"github.com/erickreisti/patrulha-area-civil-sub003/internal/util"
)

const refreshCookie = "pac_refresh"

// Login autentica por e-mail e senha e devolve tokens no corpo.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email string `json:"email"`
		Senha string `json:"senha"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "JSON inválido", nil)
		return
	}

	fieldErrs := util.FieldErrors{}
	fieldErrs.Check("email", payload.Email, util.Required(), util.Email())
	fieldErrs.Check("senha", payload.Senha, util.Required())
	if !fieldErrs.Empty() {
		WriteError(w, http.StatusBadRequest, "Erro de validação", fieldErrs)
		return
	}

	result, err := h.authService.Login(r.Context(), payload.Email, payload.Senha)
	if err != nil {
		h.handleAuthError(w, err)
		return
	}

	h.setSessionCookies(w, result)
	WriteSuccess(w, http.StatusOK, result)
}

// IssueLoginCode autentica e devolve um código de uso único para o fluxo de
// callback (navegação top-level que precisa receber cookies).
func (h *Handler) IssueLoginCode(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email string `json:"email"`
		Senha string `json:"senha"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "JSON inválido", nil)
		return
	}

	code, err := h.authService.IssueLoginCode(r.Context(), payload.Email, payload.Senha)
	if err != nil {
		h.handleAuthError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, map[string]string{"code": code})
}

// AuthCallback troca o código de uso único por sessão (cookies) e redireciona.
func (h *Handler) AuthCallback(w http.ResponseWriter, r *http.Request) {
	code := strings.TrimSpace(r.URL.Query().Get("code"))
	if code == "" {
		WriteError(w, http.StatusBadRequest, "Erro de validação", map[string][]string{"code": {"campo obrigatório"}})
		return
	}

	result, err := h.authService.ExchangeCode(r.Context(), code)
	if err != nil {
		h.handleAuthError(w, err)
		return
	}

	h.setSessionCookies(w, result)

	target := h.safeRedirect(r.URL.Query().Get("redirect"))
	http.Redirect(w, r, target, http.StatusFound)
}

// Refresh rotaciona o refresh token (corpo ou cookie).
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	raw := h.refreshTokenFrom(r)
	if raw == "" {
		WriteError(w, http.StatusUnauthorized, "Não autorizado", nil)
		return
	}

	result, err := h.authService.Refresh(r.Context(), raw)
	if err != nil {
		h.handleAuthError(w, err)
		return
	}

	h.setSessionCookies(w, result)
	WriteSuccess(w, http.StatusOK, result)
}

// Logout revoga o refresh token e limpa cookies de sessão.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if raw := h.refreshTokenFrom(r); raw != "" {
		if err := h.authService.Logout(r.Context(), raw); err != nil {
			h.writeInternal(w, err, "Não foi possível encerrar a sessão")
			return
		}
	}

	h.clearSessionCookies(w)
	WriteMessage(w, http.StatusOK, nil, "Sessão encerrada")
}

// Me devolve o perfil do sujeito autenticado.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID, err := h.subjectUUID(r)
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "Não autorizado", nil)
		return
	}

	p, err := h.authService.GetProfile(r.Context(), userID)
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "Perfil não encontrado", nil)
			return
		}
		h.writeInternal(w, err, "Não foi possível carregar o perfil")
		return
	}

	WriteSuccess(w, http.StatusOK, p)
}

// UpdateMe altera os campos permitidos do próprio perfil. Papel, status e
// matrícula nunca passam por aqui.
func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	userID, err := h.subjectUUID(r)
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "Não autorizado", nil)
		return
	}

	var payload struct {
		FullName  *string `json:"full_name"`
		Graduacao *string `json:"graduacao"`
		UF        *string `json:"uf"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "JSON inválido", nil)
		return
	}

	fieldErrs := util.FieldErrors{}
	fieldErrs.CheckOptional("full_name", payload.FullName, util.MinLen(3), util.MaxLen(120))
	fieldErrs.CheckOptional("uf", payload.UF, util.MinLen(2), util.MaxLen(2))
	if !fieldErrs.Empty() {
		WriteError(w, http.StatusBadRequest, "Erro de validação", fieldErrs)
		return
	}

	p, err := h.profiles.UpdateSelf(r.Context(), userID, profile.SelfUpdateInput{
		FullName:  payload.FullName,
		Graduacao: payload.Graduacao,
		UF:        payload.UF,
	})
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "Perfil não encontrado", nil)
			return
		}
		h.writeInternal(w, err, "Não foi possível atualizar o perfil")
		return
	}

	WriteSuccess(w, http.StatusOK, p)
}

func (h *Handler) handleAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidRefresh),
		errors.Is(err, auth.ErrInvalidCode):
		WriteError(w, http.StatusUnauthorized, "Não autorizado", nil)
	case errors.Is(err, service.ErrAccountDisabled):
		WriteError(w, http.StatusForbidden, "Conta desativada", nil)
	default:
		h.writeInternal(w, err, "Falha na autenticação")
	}
}

func (h *Handler) refreshTokenFrom(r *http.Request) string {
	var payload struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err == nil && strings.TrimSpace(payload.RefreshToken) != "" {
		return strings.TrimSpace(payload.RefreshToken)
	}
	if cookie, err := r.Cookie(refreshCookie); err == nil {
		return cookie.Value
	}
	return ""
}

func (h *Handler) setSessionCookies(w http.ResponseWriter, result *service.LoginResult) {
	secure := !h.devCookies
	http.SetCookie(w, &http.Cookie{
		Name:     httpmiddleware.AccessCookie,
		Value:    result.AccessToken,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(result.ExpiresIn),
	})
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookie,
		Value:    result.RefreshToken,
		Path:     "/api/auth",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) clearSessionCookies(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{Name: httpmiddleware.AccessCookie, Value: "", Path: "/", MaxAge: -1})
	http.SetCookie(w, &http.Cookie{Name: refreshCookie, Value: "", Path: "/api/auth", MaxAge: -1})
}

// safeRedirect só aceita destinos relativos ou com origem na allowlist.
func (h *Handler) safeRedirect(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "/"
	}
	if strings.HasPrefix(raw, "/") && !strings.HasPrefix(raw, "//") {
		return raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "/"
	}
	origin := u.Scheme + "://" + u.Host
	for _, allowed := range h.cfg.AllowOrigins {
		if strings.EqualFold(allowed, origin) {
			return raw
		}
	}
	return "/"
}

func (h *Handler) writeInternal(w http.ResponseWriter, err error, message string) {
	if h.cfg != nil && !h.cfg.IsProduction() && err != nil {
		WriteError(w, http.StatusInternalServerError, message, map[string]string{"cause": err.Error()})
		return
	}
	WriteError(w, http.StatusInternalServerError, message, nil)
}
