package painel

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gestaopalco/painel/internal/cache"
	"github.com/gestaopalco/painel/internal/crm"
	"github.com/gestaopalco/painel/internal/demanda"
	"github.com/gestaopalco/painel/internal/evento"
	"github.com/gestaopalco/painel/internal/nota"
	"github.com/gestaopalco/painel/internal/notify"
	"github.com/gestaopalco/painel/internal/realtime"
	"github.com/gestaopalco/painel/internal/retry"
)

// Deps agrupa as dependências injetadas do sincronizador.
type Deps struct {
	Eventos  EventoGateway
	Demandas DemandaGateway
	CRM      CRMGateway
	Notas    NotaGateway

	Autores    *nota.Autores
	Publicador Publicador
	Notifier   notify.Notifier
	Assinante  *realtime.Assinante
	Ping       func(ctx context.Context) error

	CacheTTL time.Duration
	Retry    retry.Config
	Logger   zerolog.Logger
	Agora    func() time.Time
}

// Service é o orquestrador: dono do estado de sincronização (caches,
// último snapshot, carimbo), sem variáveis globais, para que instâncias
// independentes convivam.
type Service struct {
	deps   Deps
	logger zerolog.Logger
	agora  func() time.Time

	cacheEventos  *cache.Store[evento.Evento]
	cacheDemandas *cache.Store[demanda.Demanda]
	cacheCRM      *cache.Store[crm.Registro]
	cacheNotas    *cache.Store[nota.Nota]

	mu       sync.RWMutex
	snapshot *Snapshot

	iniciou sync.Once
	wg      sync.WaitGroup
}

// NewService monta o orquestrador com um cache por coleção.
func NewService(deps Deps) *Service {
	if deps.Agora == nil {
		deps.Agora = time.Now
	}
	if deps.CacheTTL <= 0 {
		deps.CacheTTL = 2 * time.Second
	}
	if deps.Retry.NaoRepetir == nil {
		deps.Retry.NaoRepetir = naoRepetivel
	}

	s := &Service{
		deps:   deps,
		logger: deps.Logger,
		agora:  deps.Agora,
	}

	s.cacheEventos = cache.NewStore(ColecaoEventos, deps.CacheTTL, deps.Retry, deps.Logger, deps.Eventos.List)
	s.cacheDemandas = cache.NewStore(ColecaoDemandas, deps.CacheTTL, deps.Retry, deps.Logger, deps.Demandas.List)
	s.cacheCRM = cache.NewStore(ColecaoCRM, deps.CacheTTL, deps.Retry, deps.Logger, deps.CRM.List)
	s.cacheNotas = cache.NewStore(ColecaoNotas, deps.CacheTTL, deps.Retry, deps.Logger, deps.Notas.List)

	return s
}

// Iniciar liga o consumo do stream de mudanças: cada aviso colapsado
// invalida a coleção e dispara um refresh.
func (s *Service) Iniciar(ctx context.Context) {
	if s.deps.Assinante == nil {
		return
	}
	s.iniciou.Do(func() {
		avisos := s.deps.Assinante.Iniciar(ctx, Colecoes())
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			for colecao := range avisos {
				s.logger.Debug().Str("colecao", colecao).Msg("painel: mudança remota, recarregando")
				if err := s.InvalidarCache(colecao); err != nil {
					continue
				}
				if _, err := s.AtualizarTudo(ctx, false, false); err != nil {
					s.logger.Warn().Err(err).Msg("painel: refresh disparado por mudança falhou")
				}
			}
		}()
	})
}

// Encerrar derruba assinaturas e aguarda o consumidor. Idempotente.
func (s *Service) Encerrar() {
	if s.deps.Assinante != nil {
		s.deps.Assinante.Encerrar()
	}
	s.wg.Wait()
}

// naoRepetivel marca as falhas de domínio que nunca valem nova
// tentativa: o remoto respondeu, só que o registro não existe.
func naoRepetivel(err error) bool {
	return errors.Is(err, evento.ErrNotFound) ||
		errors.Is(err, demanda.ErrNotFound) ||
		errors.Is(err, crm.ErrNotFound) ||
		errors.Is(err, nota.ErrNotFound)
}

type resultadoColeta struct {
	eventos  []evento.Evento
	demandas []demanda.Demanda
	crm      []crm.Registro
	notas    []nota.Nota
	erros    map[string]error
}

// AtualizarTudo recarrega as quatro coleções em paralelo, tolerando
// falha parcial, junta demandas aos seus eventos e publica o snapshot
// combinado. Com notificar, o resumo de contagens vai ao colaborador de
// UI.
func (s *Service) AtualizarTudo(ctx context.Context, forcar, notificar bool) (*Snapshot, error) {
	if forcar {
		_ = s.InvalidarCache("")
	}

	resultado := s.coletar(ctx, forcar)

	if len(resultado.erros) == len(Colecoes()) {
		anterior := s.Snapshot()
		if anterior == nil {
			s.logger.Error().Msg("painel: carga inicial sem conectividade")
			return nil, ErrSemConectividade
		}
		s.logger.Warn().Msg("painel: refresh falhou por inteiro, mantendo snapshot anterior")
		return anterior, ErrAtualizacao
	}

	agora := s.agora()

	demandas := make([]demanda.Demanda, len(resultado.demandas))
	copy(demandas, resultado.demandas)
	for i := range demandas {
		demandas[i].Urgencia = demanda.ClassificarUrgencia(demandas[i].Data, agora)
	}

	eventos := juntarDemandas(resultado.eventos, demandas)

	snapshot := &Snapshot{
		Eventos:        eventos,
		Demandas:       demandas,
		CRM:            resultado.crm,
		Notas:          resultado.notas,
		Degradadas:     s.degradadas(resultado.erros),
		SincronizadoEm: agora,
	}
	if snapshot.CRM == nil {
		snapshot.CRM = []crm.Registro{}
	}
	if snapshot.Notas == nil {
		snapshot.Notas = []nota.Nota{}
	}

	s.mu.Lock()
	s.snapshot = snapshot
	s.mu.Unlock()

	if notificar && s.deps.Notifier != nil {
		resumo := notify.Resumo{
			Eventos:        len(snapshot.Eventos),
			Demandas:       len(snapshot.Demandas),
			CRM:            len(snapshot.CRM),
			Notas:          len(snapshot.Notas),
			SincronizadoEm: agora,
		}
		if err := s.deps.Notifier.Notificar(ctx, resumo); err != nil {
			s.logger.Warn().Err(err).Msg("painel: falha ao notificar resumo")
		}
	}

	return snapshot, nil
}

// coletar dispara as quatro buscas sem esperar umas pelas outras e só
// junta depois que todas assentaram; a falha de uma não aborta as
// demais.
func (s *Service) coletar(ctx context.Context, forcar bool) resultadoColeta {
	resultado := resultadoColeta{erros: make(map[string]error)}

	var wg sync.WaitGroup
	var mu sync.Mutex

	registrar := func(colecao string, err error) {
		if err == nil {
			return
		}
		mu.Lock()
		resultado.erros[colecao] = err
		mu.Unlock()
	}

	wg.Add(4)
	go func() {
		defer wg.Done()
		dados, err := s.cacheEventos.Get(ctx, forcar)
		resultado.eventos = dados
		registrar(ColecaoEventos, err)
	}()
	go func() {
		defer wg.Done()
		dados, err := s.cacheDemandas.Get(ctx, forcar)
		resultado.demandas = dados
		registrar(ColecaoDemandas, err)
	}()
	go func() {
		defer wg.Done()
		dados, err := s.cacheCRM.Get(ctx, forcar)
		resultado.crm = dados
		registrar(ColecaoCRM, err)
	}()
	go func() {
		defer wg.Done()
		dados, err := s.cacheNotas.Get(ctx, forcar)
		resultado.notas = dados
		registrar(ColecaoNotas, err)
	}()
	wg.Wait()

	return resultado
}

// degradadas reúne coleções servidas de cache velho ou que falharam de
// vez, na ordem canônica.
func (s *Service) degradadas(erros map[string]error) []string {
	caiu := map[string]bool{
		ColecaoEventos:  s.cacheEventos.Degradada(),
		ColecaoDemandas: s.cacheDemandas.Degradada(),
		ColecaoCRM:      s.cacheCRM.Degradada(),
		ColecaoNotas:    s.cacheNotas.Degradada(),
	}
	for colecao := range erros {
		caiu[colecao] = true
	}

	var nomes []string
	for _, colecao := range Colecoes() {
		if caiu[colecao] {
			nomes = append(nomes, colecao)
		}
	}
	return nomes
}

// juntarDemandas anexa a cada evento as demandas cujo evento_id bate.
// Demandas órfãs (evento removido ou ainda não carregado) são
// descartadas em silêncio.
func juntarDemandas(eventos []evento.Evento, demandas []demanda.Demanda) []evento.Evento {
	porEvento := make(map[uuid.UUID][]demanda.Demanda, len(eventos))
	for _, ev := range eventos {
		porEvento[ev.ID] = []demanda.Demanda{}
	}
	for _, d := range demandas {
		if _, ok := porEvento[d.EventoID]; ok {
			porEvento[d.EventoID] = append(porEvento[d.EventoID], d)
		}
	}

	juntados := make([]evento.Evento, len(eventos))
	copy(juntados, eventos)
	for i := range juntados {
		juntados[i].Demandas = porEvento[juntados[i].ID]
	}
	return juntados
}

// Snapshot devolve a última visão publicada, ou nil antes da primeira
// sincronização.
func (s *Service) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// InvalidarCache força a próxima leitura da coleção a ir à rede; nome
// vazio invalida todas.
func (s *Service) InvalidarCache(colecao string) error {
	switch colecao {
	case "":
		s.cacheEventos.Invalidate()
		s.cacheDemandas.Invalidate()
		s.cacheCRM.Invalidate()
		s.cacheNotas.Invalidate()
	case ColecaoEventos:
		s.cacheEventos.Invalidate()
	case ColecaoDemandas:
		s.cacheDemandas.Invalidate()
	case ColecaoCRM:
		s.cacheCRM.Invalidate()
	case ColecaoNotas:
		s.cacheNotas.Invalidate()
	default:
		return ErrColecaoDesconhecida
	}
	return nil
}

// VerificarConectividade responde se o remoto está alcançável agora.
func (s *Service) VerificarConectividade(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if s.deps.Ping != nil {
		return s.deps.Ping(ctx) == nil
	}
	_, err := s.deps.Eventos.List(ctx)
	return err == nil
}

func (s *Service) publicar(ctx context.Context, colecao, acao string, id uuid.UUID, registro any) {
	if s.deps.Publicador == nil {
		return
	}
	s.deps.Publicador.Publicar(ctx, colecao, acao, id.String(), registro)
}

// aposEscrita invalida a coleção mutada e força um refresh completo
// para manter os joins derivados consistentes.
func (s *Service) aposEscrita(ctx context.Context, colecoes ...string) {
	for _, colecao := range colecoes {
		_ = s.InvalidarCache(colecao)
	}
	if _, err := s.AtualizarTudo(ctx, true, false); err != nil {
		s.logger.Warn().Err(err).Msg("painel: refresh pós-escrita falhou")
	}
}

// CriarEvento valida, grava via gateway com retry e ressincroniza.
func (s *Service) CriarEvento(ctx context.Context, input evento.CreateEventoInput) (*evento.Evento, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	ev, err := retry.Do(ctx, s.logger, "criar evento", s.deps.Retry, func(ctx context.Context) (*evento.Evento, error) {
		return s.deps.Eventos.Create(ctx, input)
	})
	if err != nil {
		return nil, err
	}
	s.publicar(ctx, ColecaoEventos, realtime.AcaoInsert, ev.ID, ev)
	s.aposEscrita(ctx, ColecaoEventos)
	return ev, nil
}

// AtualizarEvento aplica atualização parcial e ressincroniza.
func (s *Service) AtualizarEvento(ctx context.Context, input evento.UpdateEventoInput) (*evento.Evento, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	ev, err := retry.Do(ctx, s.logger, "atualizar evento", s.deps.Retry, func(ctx context.Context) (*evento.Evento, error) {
		return s.deps.Eventos.Update(ctx, input)
	})
	if err != nil {
		return nil, err
	}
	s.publicar(ctx, ColecaoEventos, realtime.AcaoUpdate, ev.ID, ev)
	s.aposEscrita(ctx, ColecaoEventos)
	return ev, nil
}

// RemoverEvento apaga o evento (e suas demandas, em cascata no gateway).
func (s *Service) RemoverEvento(ctx context.Context, id uuid.UUID) error {
	_, err := retry.Do(ctx, s.logger, "remover evento", s.deps.Retry, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.deps.Eventos.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.publicar(ctx, ColecaoEventos, realtime.AcaoDelete, id, nil)
	s.aposEscrita(ctx, ColecaoEventos, ColecaoDemandas)
	return nil
}

// CriarDemanda valida, grava e devolve a demanda já com urgência.
func (s *Service) CriarDemanda(ctx context.Context, input demanda.CreateDemandaInput) (*demanda.Demanda, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	d, err := retry.Do(ctx, s.logger, "criar demanda", s.deps.Retry, func(ctx context.Context) (*demanda.Demanda, error) {
		return s.deps.Demandas.Create(ctx, input)
	})
	if err != nil {
		return nil, err
	}
	d.Urgencia = demanda.ClassificarUrgencia(d.Data, s.agora())
	s.publicar(ctx, ColecaoDemandas, realtime.AcaoInsert, d.ID, d)
	s.aposEscrita(ctx, ColecaoDemandas)
	return d, nil
}

// AtualizarDemanda aplica atualização parcial; mudança de data recalcula
// a urgência.
func (s *Service) AtualizarDemanda(ctx context.Context, input demanda.UpdateDemandaInput) (*demanda.Demanda, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	d, err := retry.Do(ctx, s.logger, "atualizar demanda", s.deps.Retry, func(ctx context.Context) (*demanda.Demanda, error) {
		return s.deps.Demandas.Update(ctx, input)
	})
	if err != nil {
		return nil, err
	}
	d.Urgencia = demanda.ClassificarUrgencia(d.Data, s.agora())
	s.publicar(ctx, ColecaoDemandas, realtime.AcaoUpdate, d.ID, d)
	s.aposEscrita(ctx, ColecaoDemandas)
	return d, nil
}

// RemoverDemanda apaga a demanda.
func (s *Service) RemoverDemanda(ctx context.Context, id uuid.UUID) error {
	_, err := retry.Do(ctx, s.logger, "remover demanda", s.deps.Retry, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.deps.Demandas.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.publicar(ctx, ColecaoDemandas, realtime.AcaoDelete, id, nil)
	s.aposEscrita(ctx, ColecaoDemandas)
	return nil
}

// CriarRegistroCRM valida e grava um novo contato.
func (s *Service) CriarRegistroCRM(ctx context.Context, input crm.CreateRegistroInput) (*crm.Registro, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	reg, err := retry.Do(ctx, s.logger, "criar registro crm", s.deps.Retry, func(ctx context.Context) (*crm.Registro, error) {
		return s.deps.CRM.Create(ctx, input)
	})
	if err != nil {
		return nil, err
	}
	s.publicar(ctx, ColecaoCRM, realtime.AcaoInsert, reg.ID, reg)
	s.aposEscrita(ctx, ColecaoCRM)
	return reg, nil
}

// AtualizarRegistroCRM aplica atualização parcial ao contato.
func (s *Service) AtualizarRegistroCRM(ctx context.Context, input crm.UpdateRegistroInput) (*crm.Registro, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	reg, err := retry.Do(ctx, s.logger, "atualizar registro crm", s.deps.Retry, func(ctx context.Context) (*crm.Registro, error) {
		return s.deps.CRM.Update(ctx, input)
	})
	if err != nil {
		return nil, err
	}
	s.publicar(ctx, ColecaoCRM, realtime.AcaoUpdate, reg.ID, reg)
	s.aposEscrita(ctx, ColecaoCRM)
	return reg, nil
}

// RemoverRegistroCRM apaga o contato.
func (s *Service) RemoverRegistroCRM(ctx context.Context, id uuid.UUID) error {
	_, err := retry.Do(ctx, s.logger, "remover registro crm", s.deps.Retry, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.deps.CRM.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.publicar(ctx, ColecaoCRM, realtime.AcaoDelete, id, nil)
	s.aposEscrita(ctx, ColecaoCRM)
	return nil
}

// CriarNota valida o autor contra o conjunto permitido e grava.
func (s *Service) CriarNota(ctx context.Context, input nota.CreateNotaInput) (*nota.Nota, error) {
	if err := input.Validate(s.deps.Autores); err != nil {
		return nil, err
	}
	n, err := retry.Do(ctx, s.logger, "criar nota", s.deps.Retry, func(ctx context.Context) (*nota.Nota, error) {
		return s.deps.Notas.Create(ctx, input)
	})
	if err != nil {
		return nil, err
	}
	s.publicar(ctx, ColecaoNotas, realtime.AcaoInsert, n.ID, n)
	s.aposEscrita(ctx, ColecaoNotas)
	return n, nil
}

// AtualizarNota aplica atualização parcial à nota.
func (s *Service) AtualizarNota(ctx context.Context, input nota.UpdateNotaInput) (*nota.Nota, error) {
	if err := input.Validate(s.deps.Autores); err != nil {
		return nil, err
	}
	n, err := retry.Do(ctx, s.logger, "atualizar nota", s.deps.Retry, func(ctx context.Context) (*nota.Nota, error) {
		return s.deps.Notas.Update(ctx, input)
	})
	if err != nil {
		return nil, err
	}
	s.publicar(ctx, ColecaoNotas, realtime.AcaoUpdate, n.ID, n)
	s.aposEscrita(ctx, ColecaoNotas)
	return n, nil
}

// RemoverNota apaga a nota.
func (s *Service) RemoverNota(ctx context.Context, id uuid.UUID) error {
	_, err := retry.Do(ctx, s.logger, "remover nota", s.deps.Retry, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.deps.Notas.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.publicar(ctx, ColecaoNotas, realtime.AcaoDelete, id, nil)
	s.aposEscrita(ctx, ColecaoNotas)
	return nil
}
