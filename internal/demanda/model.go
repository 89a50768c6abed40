package demanda

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound          = errors.New("demanda não encontrada")
	ErrEventoObrigatorio = errors.New("evento da demanda é obrigatório")
	ErrTituloObrigatorio = errors.New("título da demanda é obrigatório")
	ErrDataObrigatoria   = errors.New("data da demanda é obrigatória")
)

// Demanda representa uma pendência vinculada a um evento.
// Urgencia é derivada da data contra o relógio e recalculada pelo
// sincronizador a cada snapshot; o repositório a devolve zerada.
type Demanda struct {
	ID        uuid.UUID `json:"id"`
	EventoID  uuid.UUID `json:"evento_id"`
	Titulo    string    `json:"titulo"`
	Assunto   string    `json:"assunto"`
	Data      time.Time `json:"data"`
	Concluida bool      `json:"concluida"`
	Urgencia  Urgencia  `json:"urgencia"`
	CriadoEm  time.Time `json:"criado_em"`
}

// CreateDemandaInput encapsula campos para criação de demanda.
type CreateDemandaInput struct {
	EventoID uuid.UUID
	Titulo   string
	Assunto  string
	Data     time.Time
}

// UpdateDemandaInput permite atualização parcial da demanda.
type UpdateDemandaInput struct {
	ID        uuid.UUID
	Titulo    *string
	Assunto   *string
	Data      *time.Time
	Concluida *bool
}

// Validate garante os campos obrigatórios de criação.
func (in CreateDemandaInput) Validate() error {
	if in.EventoID == uuid.Nil {
		return ErrEventoObrigatorio
	}
	if strings.TrimSpace(in.Titulo) == "" {
		return ErrTituloObrigatorio
	}
	if in.Data.IsZero() {
		return ErrDataObrigatoria
	}
	return nil
}

// Validate rejeita atualizações que esvaziariam campos obrigatórios.
func (in UpdateDemandaInput) Validate() error {
	if in.ID == uuid.Nil {
		return ErrNotFound
	}
	if in.Titulo != nil && strings.TrimSpace(*in.Titulo) == "" {
		return ErrTituloObrigatorio
	}
	if in.Data != nil && in.Data.IsZero() {
		return ErrDataObrigatoria
	}
	return nil
}
