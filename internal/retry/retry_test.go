package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func configRapida() Config {
	return Config{
		MaxTentativas: 3,
		DelayBase:     time.Millisecond,
		DelayMax:      5 * time.Millisecond,
		Timeout:       time.Second,
	}
}

func TestDoRetornaNaPrimeiraTentativa(t *testing.T) {
	chamadas := 0
	got, err := Do(context.Background(), zerolog.Nop(), "op", configRapida(), func(ctx context.Context) (int, error) {
		chamadas++
		return 42, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 42 {
		t.Fatalf("expected 42, got %d", got)
	}
	if chamadas != 1 {
		t.Fatalf("expected 1 call, got %d", chamadas)
	}
}

func TestDoRecuperaAposFalhasTransitorias(t *testing.T) {
	chamadas := 0
	got, err := Do(context.Background(), zerolog.Nop(), "op", configRapida(), func(ctx context.Context) (string, error) {
		chamadas++
		if chamadas < 3 {
			return "", errors.New("rede caiu")
		}
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "ok" {
		t.Fatalf("expected ok, got %q", got)
	}
	if chamadas != 3 {
		t.Fatalf("expected 3 calls, got %d", chamadas)
	}
}

func TestDoEsgotaTentativas(t *testing.T) {
	falha := errors.New("indisponível")
	chamadas := 0
	_, err := Do(context.Background(), zerolog.Nop(), "op", configRapida(), func(ctx context.Context) (int, error) {
		chamadas++
		return 0, falha
	})
	if !errors.Is(err, ErrEsgotado) {
		t.Fatalf("expected ErrEsgotado, got %v", err)
	}
	if !errors.Is(err, falha) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
	// 1 tentativa inicial + 3 retries
	if chamadas != 4 {
		t.Fatalf("expected 4 calls, got %d", chamadas)
	}
}

func TestDoNaoRepeteFalhaPermanente(t *testing.T) {
	permanente := errors.New("registro não existe")
	cfg := configRapida()
	cfg.NaoRepetir = func(err error) bool { return errors.Is(err, permanente) }

	chamadas := 0
	_, err := Do(context.Background(), zerolog.Nop(), "op", cfg, func(ctx context.Context) (int, error) {
		chamadas++
		return 0, permanente
	})
	if !errors.Is(err, permanente) {
		t.Fatalf("expected permanent error, got %v", err)
	}
	if errors.Is(err, ErrEsgotado) {
		t.Fatalf("permanent error must not be wrapped as exhaustion: %v", err)
	}
	if chamadas != 1 {
		t.Fatalf("expected 1 call, got %d", chamadas)
	}
}

func TestDoRespeitaCancelamento(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	chamadas := 0
	_, err := Do(ctx, zerolog.Nop(), "op", configRapida(), func(ctx context.Context) (int, error) {
		chamadas++
		return 0, errors.New("não deveria rodar")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if chamadas != 0 {
		t.Fatalf("expected 0 calls, got %d", chamadas)
	}
}

func TestDoAplicaTimeoutPorTentativa(t *testing.T) {
	cfg := configRapida()
	cfg.MaxTentativas = 0
	cfg.Timeout = 10 * time.Millisecond

	_, err := Do(context.Background(), zerolog.Nop(), "op", cfg, func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	})
	if !errors.Is(err, ErrEsgotado) {
		t.Fatalf("expected ErrEsgotado after timeout, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline cause, got %v", err)
	}
}

func TestBackoffExponencialComTeto(t *testing.T) {
	casos := []struct {
		tentativa int
		quer      time.Duration
	}{
		{0, time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{4, 16 * time.Second},
		{5, 30 * time.Second},
		{10, 30 * time.Second},
	}
	for _, caso := range casos {
		if got := Backoff(time.Second, 30*time.Second, caso.tentativa); got != caso.quer {
			t.Fatalf("attempt %d: expected %s, got %s", caso.tentativa, caso.quer, got)
		}
	}
}
