package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/erickreisti/patrulha-area-civil-sub003/internal/auth"
	"github.com/erickreisti/patrulha-area-civil-sub003/internal/profile"
)

var (
	// ErrInvalidCredentials indica falha na autenticação.
	ErrInvalidCredentials = errors.New("credenciais inválidas")
	// ErrAccountDisabled indica conta desativada.
	ErrAccountDisabled = errors.New("conta desativada")
)

const loginCodeTTL = 5 * time.Minute

type profileStore interface {
	GetByEmail(ctx context.Context, email string) (*profile.Profile, error)
	GetByID(ctx context.Context, id uuid.UUID) (*profile.Profile, error)
}

type redisCommander interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	GetDel(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type refreshStore interface {
	Save(ctx context.Context, hash string, userID uuid.UUID, expiresAt time.Time) error
	Consume(ctx context.Context, hash string) (uuid.UUID, error)
	Delete(ctx context.Context, hash string) error
}

// AuthService concentra regras de autenticação e sessões. Refresh tokens
// vivem em dois lugares: o Postgres é a fonte durável e o Redis o fast-path
// de consumo.
type AuthService struct {
	profiles   profileStore
	redis      redisCommander
	tokens     refreshStore
	jwt        *auth.JWTManager
	refreshTTL time.Duration
}

// NewAuthService cria novo serviço.
func NewAuthService(profiles profileStore, redisClient *redis.Client, tokens *auth.RefreshRepository, jwtMgr *auth.JWTManager, refreshTTL time.Duration) *AuthService {
	return &AuthService{profiles: profiles, redis: redisClient, tokens: tokens, jwt: jwtMgr, refreshTTL: refreshTTL}
}

// NewAuthServiceWith permite injetar dependências substituíveis em teste.
func NewAuthServiceWith(profiles profileStore, rdb redisCommander, tokens refreshStore, jwtMgr *auth.JWTManager, refreshTTL time.Duration) *AuthService {
	return &AuthService{profiles: profiles, redis: rdb, tokens: tokens, jwt: jwtMgr, refreshTTL: refreshTTL}
}

// JWT expõe gerenciador de JWT (útil em middlewares).
func (s *AuthService) JWT() *auth.JWTManager {
	return s.jwt
}

// LoginResult representa retorno padrão de autenticações.
type LoginResult struct {
	AccessToken  string           `json:"access_token"`
	RefreshToken string           `json:"refresh_token"`
	ExpiresIn    int64            `json:"expires_in"`
	Roles        []string         `json:"roles"`
	Profile      *profile.Profile `json:"profile"`
}

// Login autentica por e-mail e senha.
func (s *AuthService) Login(ctx context.Context, email, senha string) (*LoginResult, error) {
	user, err := s.authenticate(ctx, email, senha)
	if err != nil {
		return nil, err
	}
	return s.issueSession(ctx, user)
}

// IssueLoginCode autentica e devolve um código de uso único que o navegador
// troca por cookies de sessão no callback.
func (s *AuthService) IssueLoginCode(ctx context.Context, email, senha string) (string, error) {
	user, err := s.authenticate(ctx, email, senha)
	if err != nil {
		return "", err
	}

	raw, hashed, err := auth.GenerateToken()
	if err != nil {
		return "", err
	}

	key := auth.LoginCodeRedisKey(hashed)
	if err := s.redis.Set(ctx, key, user.ID.String(), loginCodeTTL).Err(); err != nil {
		return "", err
	}

	return raw, nil
}

// ExchangeCode consome o código de uso único e emite uma sessão. GETDEL
// garante consumo atômico: o mesmo código nunca troca duas sessões.
func (s *AuthService) ExchangeCode(ctx context.Context, code string) (*LoginResult, error) {
	key := auth.LoginCodeRedisKey(auth.HashToken(strings.TrimSpace(code)))

	subject, err := s.redis.GetDel(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, auth.ErrInvalidCode
		}
		return nil, err
	}

	userID, err := uuid.Parse(subject)
	if err != nil {
		return nil, auth.ErrInvalidCode
	}

	user, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			return nil, auth.ErrInvalidCode
		}
		return nil, err
	}
	if !user.Status {
		return nil, ErrAccountDisabled
	}

	return s.issueSession(ctx, user)
}

// Refresh rotaciona o refresh token: o antigo é consumido e um novo par é
// emitido para o mesmo sujeito. O consumo tenta o Redis primeiro e cai para
// o Postgres quando a chave não está lá (cache reiniciado, por exemplo).
func (s *AuthService) Refresh(ctx context.Context, rawRefresh string) (*LoginResult, error) {
	hash := auth.HashToken(strings.TrimSpace(rawRefresh))

	userID, err := s.consumeRefresh(ctx, hash)
	if err != nil {
		return nil, err
	}

	user, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			return nil, auth.ErrInvalidRefresh
		}
		return nil, err
	}
	if !user.Status {
		return nil, ErrAccountDisabled
	}

	return s.issueSession(ctx, user)
}

// Logout revoga o refresh token apresentado nos dois armazenamentos.
func (s *AuthService) Logout(ctx context.Context, rawRefresh string) error {
	hash := auth.HashToken(strings.TrimSpace(rawRefresh))
	if err := s.redis.Del(ctx, auth.RefreshRedisKey(hash)).Err(); err != nil {
		return err
	}
	return s.tokens.Delete(ctx, hash)
}

// consumeRefresh consome o hash com GETDEL no Redis e, no hit, sincroniza a
// remoção durável. No miss, o Consume no Postgres decide sozinho: tokens que
// sobreviveram a um flush do cache continuam válidos uma única vez.
func (s *AuthService) consumeRefresh(ctx context.Context, hash string) (uuid.UUID, error) {
	subject, err := s.redis.GetDel(ctx, auth.RefreshRedisKey(hash)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return s.tokens.Consume(ctx, hash)
		}
		return uuid.Nil, err
	}

	userID, err := uuid.Parse(subject)
	if err != nil {
		return uuid.Nil, auth.ErrInvalidRefresh
	}

	if err := s.tokens.Delete(ctx, hash); err != nil {
		log.Warn().Err(err).Msg("refresh: falha ao remover token durável")
	}
	return userID, nil
}

// GetProfile carrega o perfil do sujeito autenticado.
func (s *AuthService) GetProfile(ctx context.Context, id uuid.UUID) (*profile.Profile, error) {
	return s.profiles.GetByID(ctx, id)
}

func (s *AuthService) authenticate(ctx context.Context, email, senha string) (*profile.Profile, error) {
	user, err := s.profiles.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			log.Warn().Msg("login: perfil não encontrado")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := auth.Verify(senha, user.SenhaHash)
	if err != nil || !ok {
		log.Warn().Msg("login: senha inválida")
		return nil, ErrInvalidCredentials
	}

	if !user.Status {
		return nil, ErrAccountDisabled
	}

	return user, nil
}

func (s *AuthService) issueSession(ctx context.Context, user *profile.Profile) (*LoginResult, error) {
	roles := []string{strings.ToUpper(user.Role)}

	access, _, err := s.jwt.GenerateAccessToken(user.ID.String(), roles)
	if err != nil {
		return nil, err
	}

	rawRefresh, refreshHash, err := auth.GenerateToken()
	if err != nil {
		return nil, err
	}

	expiresAt := time.Now().Add(s.refreshTTL)
	if err := s.tokens.Save(ctx, refreshHash, user.ID, expiresAt); err != nil {
		return nil, err
	}
	if err := s.redis.Set(ctx, auth.RefreshRedisKey(refreshHash), user.ID.String(), s.refreshTTL).Err(); err != nil {
		return nil, err
	}

	return &LoginResult{
		AccessToken:  access,
		RefreshToken: rawRefresh,
		ExpiresIn:    int64(s.jwt.AccessTTL().Seconds()),
		Roles:        roles,
		Profile:      user,
	}, nil
}
