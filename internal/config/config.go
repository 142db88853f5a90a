package config

import (
	"errors"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config centraliza a configuração carregada do ambiente.
type Config struct {
	Env             string
	Port            int
	DBDSN           string
	RedisURL        string
	JWTSecret       string
	JWTAccessTTL    time.Duration
	JWTRefreshTTL   time.Duration
	AllowOrigins    []string
	RateLimitPublic RateLimitConfig
	RateLimitAuth   RateLimitConfig
	Storage         StorageConfig
	CacheTTL        time.Duration
}

// RateLimitConfig representa limites simples para throttling.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// StorageConfig descreve o bucket S3/R2 usado para mídia e avatares.
type StorageConfig struct {
	Provider  string
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	PublicURL string
}

// IsProduction indica ambiente de produção.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load carrega variáveis de ambiente e aplica defaults seguros.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	cfg.Env = strings.ToLower(strings.TrimSpace(getEnv("APP_ENV", "development")))

	portStr := getEnv("PORT", "8080")
	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 {
		return nil, errors.New("PORT inválida")
	}
	cfg.Port = port

	cfg.DBDSN = getEnv("DB_DSN", "")
	if cfg.DBDSN == "" {
		return nil, errors.New("DB_DSN obrigatório")
	}

	cfg.RedisURL = getEnv("REDIS_URL", "")
	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL obrigatório")
	}

	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", ""))
	if len(cfg.JWTSecret) < 32 {
		return nil, errors.New("JWT_SECRET deve ter pelo menos 32 caracteres")
	}

	accessTTL, err := parseDurationEnv("JWT_ACCESS_TTL", 15*time.Minute)
	if err != nil {
		return nil, err
	}
	cfg.JWTAccessTTL = accessTTL

	refreshTTL, err := parseDurationEnv("JWT_REFRESH_TTL", 30*24*time.Hour)
	if err != nil {
		return nil, err
	}
	cfg.JWTRefreshTTL = refreshTTL

	cacheTTL, err := parseDurationEnv("CACHE_TTL", 5*time.Minute)
	if err != nil {
		return nil, err
	}
	cfg.CacheTTL = cacheTTL

	for _, origin := range strings.Split(getEnv("ALLOW_ORIGINS", ""), ",") {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			cfg.AllowOrigins = append(cfg.AllowOrigins, origin)
		}
	}

	cfg.RateLimitPublic = RateLimitConfig{RequestsPerSecond: 10, Burst: 20}
	cfg.RateLimitAuth = RateLimitConfig{RequestsPerSecond: 10, Burst: 40}

	cfg.Storage = StorageConfig{
		Provider:  strings.ToLower(strings.TrimSpace(getEnv("STORAGE_PROVIDER", "noop"))),
		Endpoint:  strings.TrimSpace(getEnv("STORAGE_S3_ENDPOINT", "")),
		Region:    strings.TrimSpace(getEnv("STORAGE_S3_REGION", "auto")),
		Bucket:    strings.TrimSpace(getEnv("STORAGE_S3_BUCKET", "")),
		AccessKey: strings.TrimSpace(getEnv("STORAGE_S3_ACCESS_KEY", "")),
		SecretKey: strings.TrimSpace(getEnv("STORAGE_S3_SECRET_KEY", "")),
		PublicURL: strings.TrimSpace(getEnv("STORAGE_S3_PUBLIC_URL", "")),
	}

	if cfg.IsProduction() {
		if err := validateRemoteURL("STORAGE_S3_ENDPOINT", cfg.Storage.Endpoint, cfg.Storage.Provider != "noop"); err != nil {
			return nil, err
		}
		if err := validateRemoteURL("STORAGE_S3_PUBLIC_URL", cfg.Storage.PublicURL, false); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// validateRemoteURL rejeita endpoints sem HTTPS ou apontando para loopback.
func validateRemoteURL(name, raw string, required bool) error {
	if strings.TrimSpace(raw) == "" {
		if required {
			return errors.New(name + " obrigatório em produção")
		}
		return nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return errors.New(name + " inválida")
	}
	if u.Scheme != "https" {
		return errors.New(name + " deve usar HTTPS em produção")
	}

	host := strings.ToLower(u.Hostname())
	if host == "localhost" || strings.HasSuffix(host, ".local") {
		return errors.New(name + " não pode apontar para host local em produção")
	}
	if ip := net.ParseIP(host); ip != nil && ip.IsLoopback() {
		return errors.New(name + " não pode apontar para loopback em produção")
	}

	return nil
}

func getEnv(key, def string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return def
}

func parseDurationEnv(key string, def time.Duration) (time.Duration, error) {
	val := getEnv(key, "")
	if val == "" {
		return def, nil
	}
	dur, err := time.ParseDuration(val)
	if err != nil {
		return 0, errors.New(key + " inválido")
	}
	return dur, nil
}
