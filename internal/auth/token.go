package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
)

var (
	// ErrInvalidRefresh é retornado quando o token de refresh é inválido ou expirado.
	ErrInvalidRefresh = errors.New("refresh token inválido")
	// ErrInvalidCode é retornado quando o código de login é inválido, expirado ou já consumido.
	ErrInvalidCode = errors.New("código de login inválido")
)

// GenerateToken cria token aleatório seguro e seu hash persistível. Serve tanto
// para refresh tokens quanto para códigos de login de uso único.
func GenerateToken() (raw string, hashed string, err error) {
	buf := make([]byte, 32)
	if _, err = rand.Read(buf); err != nil {
		return "", "", err
	}

	raw = base64.RawURLEncoding.EncodeToString(buf)
	hashed = HashToken(raw)
	return raw, hashed, nil
}

// HashToken produz hash SHA-256 base64.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// RefreshRedisKey monta chave única para guardar estado do refresh.
func RefreshRedisKey(hash string) string {
	return fmt.Sprintf("refresh:%s:%s", Audience, hash)
}

// LoginCodeRedisKey monta chave do código de login de uso único.
func LoginCodeRedisKey(hash string) string {
	return fmt.Sprintf("logincode:%s:%s", Audience, hash)
}
