package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config centraliza a configuração carregada do ambiente.
type Config struct {
	Port         int
	DBDSN        string
	RedisURL     string
	JWTSecret    string
	AllowOrigins []string

	Sync            SyncConfig
	Retry           RetryConfig
	Realtime        RealtimeConfig
	NotifyWebhook   string
	NotaAutores     []string
	RateLimitPublic RateLimitConfig
	RateLimitAuth   RateLimitConfig
}

// SyncConfig controla o comportamento do cache por coleção.
type SyncConfig struct {
	CacheTTL time.Duration
}

// RetryConfig define a política canônica de retry dos gateways.
type RetryConfig struct {
	MaxTentativas int
	DelayBase     time.Duration
	DelayMax      time.Duration
	Timeout       time.Duration
}

// RealtimeConfig controla debounce e reconexão do stream de mudanças.
type RealtimeConfig struct {
	DebounceJanela    time.Duration
	EspacoMinimo      time.Duration
	MaxReconexoes     int
	ReconexaoDelayMax time.Duration
	ReconexaoCooldown time.Duration
}

// RateLimitConfig representa limites simples para throttling.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// Load carrega variáveis de ambiente e aplica defaults seguros.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

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

	cacheTTL, err := parseDurationEnv("CACHE_TTL", 2*time.Second)
	if err != nil {
		return nil, err
	}
	cfg.Sync = SyncConfig{CacheTTL: cacheTTL}

	maxTentativas, err := parseIntEnv("RETRY_TENTATIVAS", 3)
	if err != nil {
		return nil, err
	}
	delayBase, err := parseDurationEnv("RETRY_DELAY_BASE", time.Second)
	if err != nil {
		return nil, err
	}
	delayMax, err := parseDurationEnv("RETRY_DELAY_MAX", 30*time.Second)
	if err != nil {
		return nil, err
	}
	timeout, err := parseDurationEnv("REQUEST_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	cfg.Retry = RetryConfig{
		MaxTentativas: maxTentativas,
		DelayBase:     delayBase,
		DelayMax:      delayMax,
		Timeout:       timeout,
	}

	debounce, err := parseDurationEnv("DEBOUNCE_JANELA", 300*time.Millisecond)
	if err != nil {
		return nil, err
	}
	espaco, err := parseDurationEnv("REFRESH_ESPACO_MINIMO", 500*time.Millisecond)
	if err != nil {
		return nil, err
	}
	maxReconexoes, err := parseIntEnv("RECONEXAO_TENTATIVAS", 10)
	if err != nil {
		return nil, err
	}
	reconexaoMax, err := parseDurationEnv("RECONEXAO_DELAY_MAX", 30*time.Second)
	if err != nil {
		return nil, err
	}
	cooldown, err := parseDurationEnv("RECONEXAO_COOLDOWN", time.Minute)
	if err != nil {
		return nil, err
	}
	cfg.Realtime = RealtimeConfig{
		DebounceJanela:    debounce,
		EspacoMinimo:      espaco,
		MaxReconexoes:     maxReconexoes,
		ReconexaoDelayMax: reconexaoMax,
		ReconexaoCooldown: cooldown,
	}

	cfg.NotifyWebhook = strings.TrimSpace(getEnv("NOTIFY_WEBHOOK_URL", ""))

	autores := strings.Split(getEnv("NOTA_AUTORES", "coordenacao,producao,comercial"), ",")
	for _, autor := range autores {
		autor = strings.TrimSpace(autor)
		if autor != "" {
			cfg.NotaAutores = append(cfg.NotaAutores, autor)
		}
	}
	if len(cfg.NotaAutores) == 0 {
		return nil, errors.New("NOTA_AUTORES não pode ser vazio")
	}

	allowOrigins := strings.Split(getEnv("ALLOW_ORIGINS", ""), ",")
	cfg.AllowOrigins = nil
	for _, origin := range allowOrigins {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			cfg.AllowOrigins = append(cfg.AllowOrigins, origin)
		}
	}

	cfg.RateLimitPublic = RateLimitConfig{RequestsPerSecond: 10, Burst: 20}
	cfg.RateLimitAuth = RateLimitConfig{RequestsPerSecond: 10, Burst: 40}

	return cfg, nil
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

func parseIntEnv(key string, def int) (int, error) {
	val := getEnv(key, "")
	if val == "" {
		return def, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil || n < 0 {
		return 0, errors.New(key + " inválido")
	}
	return n, nil
}
