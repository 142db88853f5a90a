package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// InvalidateChannel é o canal pub/sub usado para avisar assinantes de que uma
// visão ficou obsoleta. O sinal é consultivo: leituras obsoletas continuam
// possíveis entre a mutação e a invalidação.
const InvalidateChannel = "cache:invalidate"

const keyPrefix = "cache:"

// Cache guarda respostas de leitura pública em Redis com TTL curto.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New cria o cache com TTL padrão para entradas.
func New(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// Get tenta carregar a entrada no destino. Falhas de Redis contam como miss.
func (c *Cache) Get(ctx context.Context, key string, dest any) bool {
	if c == nil || c.client == nil {
		return false
	}

	raw, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		return false
	}

	return json.Unmarshal(raw, dest) == nil
}

// Set grava a entrada de forma best-effort.
func (c *Cache) Set(ctx context.Context, key string, value any) {
	if c == nil || c.client == nil {
		return
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return
	}

	if err := c.client.Set(ctx, keyPrefix+key, raw, c.ttl).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache: falha ao gravar entrada")
	}
}

// Invalidate remove as chaves e publica o sinal para assinantes interessados.
// Erros são apenas logados: invalidação nunca falha a operação primária.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) {
	if c == nil || c.client == nil || len(keys) == 0 {
		return
	}

	prefixed := make([]string, len(keys))
	for i, key := range keys {
		prefixed[i] = keyPrefix + key
	}

	if err := c.client.Del(ctx, prefixed...).Err(); err != nil {
		log.Warn().Err(err).Strs("keys", keys).Msg("cache: falha ao invalidar")
	}

	for _, key := range keys {
		if err := c.client.Publish(ctx, InvalidateChannel, key).Err(); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("cache: falha ao publicar invalidação")
		}
	}
}
