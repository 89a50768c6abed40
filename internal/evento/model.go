package evento

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gestaopalco/painel/internal/demanda"
)

var (
	ErrNotFound        = errors.New("evento não encontrado")
	ErrNomeObrigatorio = errors.New("nome do evento é obrigatório")
	ErrDataObrigatoria = errors.New("data do evento é obrigatória")
)

// Evento representa um evento de produção acompanhado pelo painel.
// Demandas é uma visão derivada: preenchida pelo join do sincronizador,
// nunca pelo repositório.
type Evento struct {
	ID        uuid.UUID         `json:"id"`
	Nome      string            `json:"nome"`
	Data      time.Time         `json:"data"`
	LogoURL   *string           `json:"logo_url,omitempty"`
	Arquivado bool              `json:"arquivado"`
	Demandas  []demanda.Demanda `json:"demandas"`
	CriadoEm  time.Time         `json:"criado_em"`
}

// CreateEventoInput encapsula campos para criação de evento.
type CreateEventoInput struct {
	Nome    string
	Data    time.Time
	LogoURL *string
}

// UpdateEventoInput permite atualização parcial do evento.
type UpdateEventoInput struct {
	ID        uuid.UUID
	Nome      *string
	Data      *time.Time
	LogoURL   *string
	ClearLogo bool
	Arquivado *bool
}

// Validate garante os campos obrigatórios de criação.
func (in CreateEventoInput) Validate() error {
	if strings.TrimSpace(in.Nome) == "" {
		return ErrNomeObrigatorio
	}
	if in.Data.IsZero() {
		return ErrDataObrigatoria
	}
	return nil
}

// Validate rejeita atualizações que esvaziariam campos obrigatórios.
func (in UpdateEventoInput) Validate() error {
	if in.ID == uuid.Nil {
		return ErrNotFound
	}
	if in.Nome != nil && strings.TrimSpace(*in.Nome) == "" {
		return ErrNomeObrigatorio
	}
	if in.Data != nil && in.Data.IsZero() {
		return ErrDataObrigatoria
	}
	return nil
}
