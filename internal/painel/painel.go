// Package painel é o coordenador de sincronização do dashboard: mantém
// as quatro coleções consistentes contra o armazenamento remoto e expõe
// um snapshot único para os consumidores.
package painel

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/gestaopalco/painel/internal/crm"
	"github.com/gestaopalco/painel/internal/demanda"
	"github.com/gestaopalco/painel/internal/evento"
	"github.com/gestaopalco/painel/internal/nota"
)

var (
	// ErrSemConectividade sinaliza carga inicial sem remoto e sem
	// nenhum dado em cache para degradar.
	ErrSemConectividade = errors.New("sem conectividade com o armazenamento remoto")
	// ErrAtualizacao sinaliza refresh que falhou por inteiro mas ainda
	// há um snapshot anterior sendo servido.
	ErrAtualizacao = errors.New("falha temporária ao atualizar o painel")
	// ErrColecaoDesconhecida é devolvido para nomes fora das quatro
	// coleções fixas.
	ErrColecaoDesconhecida = errors.New("coleção desconhecida")
)

// As quatro coleções são fixas e conhecidas em tempo de build.
const (
	ColecaoEventos  = "eventos"
	ColecaoDemandas = "demandas"
	ColecaoCRM      = "crm"
	ColecaoNotas    = "notas"
)

// Colecoes lista as coleções na ordem canônica.
func Colecoes() []string {
	return []string{ColecaoEventos, ColecaoDemandas, ColecaoCRM, ColecaoNotas}
}

// Snapshot é a visão combinada publicada após cada sincronização.
// Eventos já carregam suas demandas juntadas por evento_id; Degradadas
// lista as coleções servidas de cache velho ou vazias por falha.
type Snapshot struct {
	Eventos        []evento.Evento   `json:"eventos"`
	Demandas       []demanda.Demanda `json:"demandas"`
	CRM            []crm.Registro    `json:"crm"`
	Notas          []nota.Nota       `json:"notas"`
	Degradadas     []string          `json:"degradadas,omitempty"`
	SincronizadoEm time.Time         `json:"sincronizado_em"`
}

// EventoGateway é a fronteira CRUD da coleção de eventos.
type EventoGateway interface {
	List(ctx context.Context) ([]evento.Evento, error)
	Create(ctx context.Context, input evento.CreateEventoInput) (*evento.Evento, error)
	Update(ctx context.Context, input evento.UpdateEventoInput) (*evento.Evento, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// DemandaGateway é a fronteira CRUD da coleção de demandas.
type DemandaGateway interface {
	List(ctx context.Context) ([]demanda.Demanda, error)
	Create(ctx context.Context, input demanda.CreateDemandaInput) (*demanda.Demanda, error)
	Update(ctx context.Context, input demanda.UpdateDemandaInput) (*demanda.Demanda, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// CRMGateway é a fronteira CRUD da coleção de CRM.
type CRMGateway interface {
	List(ctx context.Context) ([]crm.Registro, error)
	Create(ctx context.Context, input crm.CreateRegistroInput) (*crm.Registro, error)
	Update(ctx context.Context, input crm.UpdateRegistroInput) (*crm.Registro, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// NotaGateway é a fronteira CRUD da coleção de notas.
type NotaGateway interface {
	List(ctx context.Context) ([]nota.Nota, error)
	Create(ctx context.Context, input nota.CreateNotaInput) (*nota.Nota, error)
	Update(ctx context.Context, input nota.UpdateNotaInput) (*nota.Nota, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Publicador anuncia mutações locais no stream de mudanças.
type Publicador interface {
	Publicar(ctx context.Context, colecao, acao, id string, registro any)
}
