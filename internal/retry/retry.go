// Package retry concentra a política de retry dos gateways remotos.
// Toda chamada de rede do sincronizador passa por Do: os call sites não
// carregam backoff próprio.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// ErrEsgotado indica que todas as tentativas falharam.
var ErrEsgotado = errors.New("tentativas esgotadas")

// Config parametriza backoff exponencial e timeout por tentativa.
type Config struct {
	// MaxTentativas é o número de repetições após a primeira tentativa.
	MaxTentativas int
	DelayBase     time.Duration
	// DelayMax limita o backoff exponencial; sem teto a espera cresceria
	// sem limite.
	DelayMax time.Duration
	Timeout  time.Duration
	// NaoRepetir identifica falhas permanentes (validação, registro
	// inexistente) que devem subir sem novas tentativas.
	NaoRepetir func(error) bool
}

// DefaultConfig é a política canônica: 3 retries, base 1s, teto 30s,
// timeout de 10s por tentativa.
func DefaultConfig() Config {
	return Config{
		MaxTentativas: 3,
		DelayBase:     time.Second,
		DelayMax:      30 * time.Second,
		Timeout:       10 * time.Second,
	}
}

func (c Config) normalizada() Config {
	if c.MaxTentativas < 0 {
		c.MaxTentativas = 0
	}
	if c.DelayBase <= 0 {
		c.DelayBase = time.Second
	}
	if c.DelayMax <= 0 {
		c.DelayMax = 30 * time.Second
	}
	return c
}

// Do executa op com backoff exponencial limitado. Cada tentativa recebe
// um contexto com timeout próprio; estourar o timeout conta como falha
// transitória e é repetido como qualquer outra. Cancelamento do contexto
// pai interrompe entre tentativas.
func Do[T any](ctx context.Context, logger zerolog.Logger, nome string, cfg Config, op func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	cfg = cfg.normalizada()

	var ultimoErr error
	for tentativa := 0; tentativa <= cfg.MaxTentativas; tentativa++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		resultado, err := executar(ctx, cfg.Timeout, op)
		if err == nil {
			if tentativa > 0 {
				logger.Info().Str("operacao", nome).Int("tentativa", tentativa+1).Msg("retry: recuperado")
			}
			return resultado, nil
		}

		if cfg.NaoRepetir != nil && cfg.NaoRepetir(err) {
			logger.Warn().Err(err).Str("operacao", nome).Msg("retry: falha permanente")
			return zero, err
		}

		ultimoErr = err
		logger.Warn().Err(err).Str("operacao", nome).Int("tentativa", tentativa+1).Msg("retry: tentativa falhou")

		if tentativa == cfg.MaxTentativas {
			break
		}

		espera := Backoff(cfg.DelayBase, cfg.DelayMax, tentativa)
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(espera):
		}
	}

	logger.Error().Err(ultimoErr).Str("operacao", nome).Msg("retry: tentativas esgotadas")
	return zero, fmt.Errorf("%w: %s: %w", ErrEsgotado, nome, ultimoErr)
}

func executar[T any](ctx context.Context, timeout time.Duration, op func(ctx context.Context) (T, error)) (T, error) {
	if timeout <= 0 {
		return op(ctx)
	}
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return op(attemptCtx)
}

// Backoff calcula base·2^tentativa limitado a max.
func Backoff(base, max time.Duration, tentativa int) time.Duration {
	espera := base
	for i := 0; i < tentativa; i++ {
		espera *= 2
		if espera >= max {
			return max
		}
	}
	if espera > max {
		return max
	}
	return espera
}
