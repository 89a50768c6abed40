// Package realtime consome o stream de mudanças do armazenamento remoto.
// Rajadas de eventos são colapsadas por debounce e entregues num canal
// que o sincronizador percorre; a assinatura é supervisionada com
// reconexão e nunca desiste em definitivo.
package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/gestaopalco/painel/internal/config"
	"github.com/gestaopalco/painel/internal/retry"
)

const (
	AcaoInsert = "insert"
	AcaoUpdate = "update"
	AcaoDelete = "delete"
)

// Mudanca é o evento de mudança como trafega no canal pub/sub.
type Mudanca struct {
	Acao     string          `json:"acao"`
	ID       string          `json:"id"`
	Registro json.RawMessage `json:"registro,omitempty"`
}

// CanalPara devolve o nome do canal pub/sub de uma coleção.
func CanalPara(colecao string) string {
	return "painel:mudancas:" + colecao
}

// Fonte abre assinaturas duráveis por canal.
type Fonte interface {
	Assinar(ctx context.Context, canal string) (Assinatura, error)
}

// Assinatura entrega mensagens até falhar ou ser fechada.
type Assinatura interface {
	Receber(ctx context.Context) ([]byte, error)
	Fechar() error
}

// Assinante supervisiona uma assinatura por coleção e publica, no canal
// de saída, o nome de cada coleção que mudou (já debounced).
type Assinante struct {
	fonte  Fonte
	cfg    config.RealtimeConfig
	logger zerolog.Logger

	saida    chan string
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	iniciou  sync.Once
	encerrou sync.Once
}

// NewAssinante cria o supervisor de assinaturas.
func NewAssinante(fonte Fonte, cfg config.RealtimeConfig, logger zerolog.Logger) *Assinante {
	return &Assinante{
		fonte:  fonte,
		cfg:    cfg,
		logger: logger,
		saida:  make(chan string),
	}
}

// Iniciar abre uma assinatura por coleção e devolve o canal de avisos.
// Safe para chamar uma única vez; chamadas repetidas devolvem o mesmo
// canal sem abrir novas assinaturas.
func (a *Assinante) Iniciar(ctx context.Context, colecoes []string) <-chan string {
	a.iniciou.Do(func() {
		ctx, cancel := context.WithCancel(ctx)
		a.cancel = cancel
		for _, colecao := range colecoes {
			a.wg.Add(1)
			go a.supervisionar(ctx, colecao)
		}
	})
	return a.saida
}

// Encerrar derruba todas as assinaturas e timers pendentes de uma vez.
// Idempotente: chamadas repetidas não têm efeito.
func (a *Assinante) Encerrar() {
	a.encerrou.Do(func() {
		if a.cancel != nil {
			a.cancel()
		}
		a.wg.Wait()
		close(a.saida)
	})
}

func (a *Assinante) supervisionar(ctx context.Context, colecao string) {
	defer a.wg.Done()

	logger := a.logger.With().Str("colecao", colecao).Logger()

	brutos := make(chan struct{}, 1)
	a.wg.Add(1)
	go a.debounce(ctx, colecao, brutos)

	tentativa := 0
	for {
		if ctx.Err() != nil {
			return
		}

		assinatura, err := a.fonte.Assinar(ctx, CanalPara(colecao))
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Warn().Err(err).Msg("realtime: falha ao assinar")
			if !a.esperarReconexao(ctx, logger, &tentativa) {
				return
			}
			continue
		}

		tentativa = 0
		logger.Info().Msg("realtime: assinatura aberta")

		for {
			payload, err := assinatura.Receber(ctx)
			if err != nil {
				_ = assinatura.Fechar()
				if ctx.Err() != nil {
					return
				}
				logger.Warn().Err(err).Msg("realtime: assinatura caiu")
				if !a.esperarReconexao(ctx, logger, &tentativa) {
					return
				}
				break
			}

			var mudanca Mudanca
			if err := json.Unmarshal(payload, &mudanca); err != nil {
				logger.Warn().Err(err).Msg("realtime: mensagem inválida descartada")
				continue
			}
			logger.Debug().Str("acao", mudanca.Acao).Str("id", mudanca.ID).Msg("realtime: mudança recebida")

			// envio não bloqueante: o debounce colapsa rajadas de
			// qualquer forma
			select {
			case brutos <- struct{}{}:
			default:
			}
		}
	}
}

// esperarReconexao aplica backoff exponencial limitado e, estourado o
// número de tentativas, um cooldown longo antes de voltar ao ciclo
// curto. Devolve false apenas quando o contexto morreu.
func (a *Assinante) esperarReconexao(ctx context.Context, logger zerolog.Logger, tentativa *int) bool {
	*tentativa++

	var espera time.Duration
	if a.cfg.MaxReconexoes > 0 && *tentativa > a.cfg.MaxReconexoes {
		espera = a.cfg.ReconexaoCooldown
		*tentativa = 0
		logger.Error().Dur("cooldown", espera).Msg("realtime: reconexões esgotadas, entrando em cooldown")
	} else {
		espera = retry.Backoff(time.Second, a.cfg.ReconexaoDelayMax, *tentativa-1)
		logger.Info().Dur("espera", espera).Int("tentativa", *tentativa).Msg("realtime: reconectando")
	}

	select {
	case <-ctx.Done():
		return false
	case <-time.After(espera):
		return true
	}
}

// debounce colapsa eventos dentro da janela e impõe espaçamento mínimo
// entre avisos consecutivos, evitando que tempestades de eventos saturem
// o caminho de refresh.
func (a *Assinante) debounce(ctx context.Context, colecao string, brutos <-chan struct{}) {
	defer a.wg.Done()

	limiter := rate.NewLimiter(rate.Every(a.cfg.EspacoMinimo), 1)

	var janela <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case <-brutos:
			janela = time.After(a.cfg.DebounceJanela)
		case <-janela:
			janela = nil
			if err := limiter.Wait(ctx); err != nil {
				return
			}
			select {
			case a.saida <- colecao:
			case <-ctx.Done():
				return
			}
		}
	}
}
