// Package cache guarda o último resultado bem-sucedido de cada coleção
// por um TTL curto, com coalescência de buscas concorrentes e fallback
// para dados velhos quando o remoto está fora do ar.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/gestaopalco/painel/internal/retry"
)

// Fetcher busca a coleção inteira no armazenamento remoto.
type Fetcher[T any] func(ctx context.Context) ([]T, error)

type voo[T any] struct {
	feito chan struct{}
	dados []T
	err   error
}

// Store é o cache de uma única coleção. Estados: vazio → carregando →
// fresco → velho → carregando → ... Uma falha com dados anteriores
// degrada para os dados velhos; sem dados anteriores propaga o erro.
type Store[T any] struct {
	nome   string
	ttl    time.Duration
	cfg    retry.Config
	buscar Fetcher[T]
	logger zerolog.Logger

	mu           sync.Mutex
	dados        []T
	temDados     bool
	atualizadoEm time.Time
	degradada    bool
	emVoo        *voo[T]
}

// NewStore cria o cache da coleção nomeada.
func NewStore[T any](nome string, ttl time.Duration, cfg retry.Config, logger zerolog.Logger, buscar Fetcher[T]) *Store[T] {
	return &Store[T]{
		nome:   nome,
		ttl:    ttl,
		cfg:    cfg,
		buscar: buscar,
		logger: logger.With().Str("colecao", nome).Logger(),
	}
}

// Get devolve a coleção. Sem forçar, dados dentro do TTL são servidos
// direto; uma busca já em andamento é aguardada em vez de duplicada
// (inclusive por chamadores forçados: nunca há mais de uma busca em voo
// por coleção). Depois de esgotar os retries a última versão boa é
// servida como degradada; sem versão boa, o erro tipado sobe junto de
// uma coleção vazia.
func (s *Store[T]) Get(ctx context.Context, forcar bool) ([]T, error) {
	s.mu.Lock()

	if !forcar && s.temDados && time.Since(s.atualizadoEm) < s.ttl {
		dados := s.dados
		s.mu.Unlock()
		return dados, nil
	}

	if s.emVoo != nil {
		atual := s.emVoo
		s.mu.Unlock()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-atual.feito:
		}
		return atual.dados, atual.err
	}

	atual := &voo[T]{feito: make(chan struct{})}
	s.emVoo = atual
	s.mu.Unlock()

	dados, err := retry.Do(ctx, s.logger, "listar "+s.nome, s.cfg, s.buscar)

	s.mu.Lock()
	if err == nil {
		s.dados = dados
		s.temDados = true
		s.atualizadoEm = time.Now()
		s.degradada = false
		atual.dados = dados
	} else if s.temDados {
		// degradação graciosa: serve o último resultado bom
		s.degradada = true
		atual.dados = s.dados
		s.logger.Warn().Err(err).Msg("cache: servindo dados velhos após falha")
	} else {
		atual.dados = []T{}
		atual.err = err
	}
	s.emVoo = nil
	s.mu.Unlock()

	close(atual.feito)
	return atual.dados, atual.err
}

// Invalidate zera o relógio do TTL: o próximo Get vai à rede.
func (s *Store[T]) Invalidate() {
	s.mu.Lock()
	s.atualizadoEm = time.Time{}
	s.mu.Unlock()
}

// Degradada indica se a última leitura caiu no fallback de dados velhos.
func (s *Store[T]) Degradada() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.degradada
}

// Fresca indica se há dados dentro do TTL.
func (s *Store[T]) Fresca() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.temDados && time.Since(s.atualizadoEm) < s.ttl
}
