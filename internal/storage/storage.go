package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"
)

// Limites de payload por tipo de mídia.
const (
	MaxImageBytes = 10 << 20  // 10 MB
	MaxVideoBytes = 100 << 20 // 100 MB
)

var (
	// ErrTooLarge indica payload acima do limite para o tipo.
	ErrTooLarge = errors.New("storage: arquivo excede o tamanho máximo")
	// ErrUnsupportedType indica MIME fora da lista permitida.
	ErrUnsupportedType = errors.New("storage: tipo de arquivo não permitido")
)

var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
	"video/mp4":  ".mp4",
	"video/webm": ".webm",
}

// UploadInput representa uma operação de upload simples.
type UploadInput struct {
	Key          string
	Body         []byte
	ContentType  string
	CacheControl string
}

// UploadResult descreve o artefato persistido.
type UploadResult struct {
	URL  string
	Key  string
	ETag string
}

// Uploader define comportamento básico para armazenar blobs.
type Uploader interface {
	Upload(ctx context.Context, input UploadInput) (*UploadResult, error)
}

// ValidatePayload confere MIME e tamanho antes de qualquer round-trip.
func ValidatePayload(contentType string, size int) error {
	ext, ok := allowedTypes[strings.ToLower(strings.TrimSpace(contentType))]
	if !ok {
		return ErrUnsupportedType
	}

	limit := MaxImageBytes
	if ext == ".mp4" || ext == ".webm" {
		limit = MaxVideoBytes
	}
	if size > limit {
		return ErrTooLarge
	}

	return nil
}

// BuildKey deriva uma chave resistente a colisão: slug + timestamp + extensão
// original. A extensão vem do nome do arquivo quando reconhecível, senão do
// content-type.
func BuildKey(prefix, slug, filename, contentType string, now time.Time) string {
	ext := strings.ToLower(path.Ext(filename))
	if ext == "" || len(ext) > 5 {
		ext = allowedTypes[strings.ToLower(strings.TrimSpace(contentType))]
	}

	return fmt.Sprintf("%s/%s-%d%s", strings.Trim(prefix, "/"), slug, now.UnixMilli(), ext)
}
