package storage

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidatePayload(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		size        int
		wantErr     error
	}{
		{"jpeg dentro do limite", "image/jpeg", 1 << 20, nil},
		{"jpeg no limite", "image/jpeg", MaxImageBytes, nil},
		{"jpeg acima do limite", "image/jpeg", MaxImageBytes + 1, ErrTooLarge},
		{"mp4 grande permitido", "video/mp4", 50 << 20, nil},
		{"mp4 acima do limite", "video/mp4", MaxVideoBytes + 1, ErrTooLarge},
		{"pdf rejeitado", "application/pdf", 100, ErrUnsupportedType},
		{"svg rejeitado", "image/svg+xml", 100, ErrUnsupportedType},
		{"case-insensitive", "IMAGE/PNG", 100, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePayload(tt.contentType, tt.size)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestBuildKey(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	key := BuildKey("avatars", "joao-silva", "foto.JPG", "image/jpeg", now)
	assert.Equal(t, fmt.Sprintf("avatars/joao-silva-%d.jpg", now.UnixMilli()), key)

	// sem extensão no nome, cai no content-type
	key = BuildKey("galeria", "operacao", "upload", "image/webp", now)
	assert.Equal(t, fmt.Sprintf("galeria/operacao-%d.webp", now.UnixMilli()), key)

	// prefixo com barras extras é normalizado
	key = BuildKey("/galeria/", "video", "v.mp4", "video/mp4", now)
	assert.Equal(t, fmt.Sprintf("galeria/video-%d.mp4", now.UnixMilli()), key)
}
