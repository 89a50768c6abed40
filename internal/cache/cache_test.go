package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/gestaopalco/painel/internal/retry"
)

func configSemRetry() retry.Config {
	return retry.Config{
		MaxTentativas: 0,
		DelayBase:     time.Millisecond,
		DelayMax:      time.Millisecond,
		Timeout:       time.Second,
	}
}

func TestGetServeDoCacheDentroDoTTL(t *testing.T) {
	var buscas int32
	store := NewStore("eventos", time.Minute, configSemRetry(), zerolog.Nop(), func(ctx context.Context) ([]string, error) {
		atomic.AddInt32(&buscas, 1)
		return []string{"a", "b"}, nil
	})

	ctx := context.Background()
	if _, err := store.Get(ctx, false); err != nil {
		t.Fatalf("first get: %v", err)
	}
	dados, err := store.Get(ctx, false)
	if err != nil {
		t.Fatalf("second get: %v", err)
	}
	if len(dados) != 2 {
		t.Fatalf("expected 2 items, got %d", len(dados))
	}
	if n := atomic.LoadInt32(&buscas); n != 1 {
		t.Fatalf("expected 1 fetch, got %d", n)
	}
	if !store.Fresca() {
		t.Fatal("expected fresh cache")
	}
}

func TestGetForcadoIgnoraTTL(t *testing.T) {
	var buscas int32
	store := NewStore("eventos", time.Minute, configSemRetry(), zerolog.Nop(), func(ctx context.Context) ([]string, error) {
		atomic.AddInt32(&buscas, 1)
		return []string{"a"}, nil
	})

	ctx := context.Background()
	if _, err := store.Get(ctx, false); err != nil {
		t.Fatalf("first get: %v", err)
	}
	if _, err := store.Get(ctx, true); err != nil {
		t.Fatalf("forced get: %v", err)
	}
	if n := atomic.LoadInt32(&buscas); n != 2 {
		t.Fatalf("expected 2 fetches, got %d", n)
	}
}

func TestGetCoalesceBuscasConcorrentes(t *testing.T) {
	var buscas int32
	segure := make(chan struct{})
	store := NewStore("eventos", time.Minute, configSemRetry(), zerolog.Nop(), func(ctx context.Context) ([]string, error) {
		atomic.AddInt32(&buscas, 1)
		<-segure
		return []string{"a"}, nil
	})

	ctx := context.Background()
	const chamadores = 8

	var wg sync.WaitGroup
	prontos := make(chan struct{}, chamadores)
	for i := 0; i < chamadores; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			prontos <- struct{}{}
			if _, err := store.Get(ctx, false); err != nil {
				t.Errorf("get: %v", err)
			}
		}()
	}
	for i := 0; i < chamadores; i++ {
		<-prontos
	}
	// dá tempo de todos chegarem ao Get antes de liberar a busca
	time.Sleep(20 * time.Millisecond)
	close(segure)
	wg.Wait()

	if n := atomic.LoadInt32(&buscas); n != 1 {
		t.Fatalf("expected 1 coalesced fetch, got %d", n)
	}
}

func TestGetDegradaParaDadosVelhos(t *testing.T) {
	var falhar atomic.Bool
	store := NewStore("eventos", time.Nanosecond, configSemRetry(), zerolog.Nop(), func(ctx context.Context) ([]string, error) {
		if falhar.Load() {
			return nil, errors.New("remoto fora do ar")
		}
		return []string{"bom"}, nil
	})

	ctx := context.Background()
	if _, err := store.Get(ctx, false); err != nil {
		t.Fatalf("seed get: %v", err)
	}

	falhar.Store(true)
	time.Sleep(time.Millisecond) // expira o TTL curtíssimo

	dados, err := store.Get(ctx, false)
	if err != nil {
		t.Fatalf("expected stale fallback without error, got %v", err)
	}
	if len(dados) != 1 || dados[0] != "bom" {
		t.Fatalf("expected stale data, got %v", dados)
	}
	if !store.Degradada() {
		t.Fatal("expected degraded store")
	}

	falhar.Store(false)
	if _, err := store.Get(ctx, true); err != nil {
		t.Fatalf("recovery get: %v", err)
	}
	if store.Degradada() {
		t.Fatal("expected degraded flag cleared after success")
	}
}

func TestGetSemDadosPropagaErroTipado(t *testing.T) {
	store := NewStore("eventos", time.Minute, configSemRetry(), zerolog.Nop(), func(ctx context.Context) ([]string, error) {
		return nil, errors.New("remoto fora do ar")
	})

	dados, err := store.Get(context.Background(), false)
	if !errors.Is(err, retry.ErrEsgotado) {
		t.Fatalf("expected ErrEsgotado, got %v", err)
	}
	if dados == nil || len(dados) != 0 {
		t.Fatalf("expected empty non-nil slice, got %v", dados)
	}
}

func TestInvalidateForcaNovaBusca(t *testing.T) {
	var buscas int32
	store := NewStore("eventos", time.Minute, configSemRetry(), zerolog.Nop(), func(ctx context.Context) ([]string, error) {
		atomic.AddInt32(&buscas, 1)
		return []string{"a"}, nil
	})

	ctx := context.Background()
	if _, err := store.Get(ctx, false); err != nil {
		t.Fatalf("first get: %v", err)
	}
	store.Invalidate()
	if store.Fresca() {
		t.Fatal("expected stale cache after invalidate")
	}
	if _, err := store.Get(ctx, false); err != nil {
		t.Fatalf("second get: %v", err)
	}
	if n := atomic.LoadInt32(&buscas); n != 2 {
		t.Fatalf("expected 2 fetches, got %d", n)
	}
}
