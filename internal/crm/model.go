package crm

import (
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound        = errors.New("registro de CRM não encontrado")
	ErrNomeObrigatorio = errors.New("nome do contato é obrigatório")
	ErrEmailInvalido   = errors.New("email inválido")
	ErrDataObrigatoria = errors.New("data do registro é obrigatória")
	ErrStatusInvalido  = errors.New("status deve ser Ativo ou Inativo")
)

const (
	StatusAtivo   = "Ativo"
	StatusInativo = "Inativo"
)

// Registro representa um contato acompanhado no CRM do painel.
// Concluido carrega o semântico feito/pendente; Status é a variante
// Ativo/Inativo usada por parte dos consumidores e fica opcional para
// que ambas as representações continuem funcionando.
type Registro struct {
	ID         uuid.UUID `json:"id"`
	Nome       string    `json:"nome"`
	Contato    string    `json:"contato"`
	Email      string    `json:"email"`
	Assunto    string    `json:"assunto"`
	ArquivoURL *string   `json:"arquivo_url,omitempty"`
	Data       time.Time `json:"data"`
	Concluido  bool      `json:"concluido"`
	Status     *string   `json:"status,omitempty"`
	CriadoEm   time.Time `json:"criado_em"`
}

// CreateRegistroInput encapsula campos para criação de registro.
type CreateRegistroInput struct {
	Nome       string
	Contato    string
	Email      string
	Assunto    string
	ArquivoURL *string
	Data       time.Time
	Status     *string
}

// UpdateRegistroInput permite atualização parcial do registro.
type UpdateRegistroInput struct {
	ID           uuid.UUID
	Nome         *string
	Contato      *string
	Email        *string
	Assunto      *string
	ArquivoURL   *string
	ClearArquivo bool
	Data         *time.Time
	Concluido    *bool
	Status       *string
	ClearStatus  bool
}

// IsValidStatus aceita apenas o par Ativo/Inativo.
func IsValidStatus(status string) bool {
	return status == StatusAtivo || status == StatusInativo
}

// Validate garante os campos obrigatórios de criação.
func (in CreateRegistroInput) Validate() error {
	if strings.TrimSpace(in.Nome) == "" {
		return ErrNomeObrigatorio
	}
	if email := strings.TrimSpace(in.Email); email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return ErrEmailInvalido
		}
	}
	if in.Data.IsZero() {
		return ErrDataObrigatoria
	}
	if in.Status != nil && !IsValidStatus(*in.Status) {
		return ErrStatusInvalido
	}
	return nil
}

// Validate rejeita atualizações inválidas.
func (in UpdateRegistroInput) Validate() error {
	if in.ID == uuid.Nil {
		return ErrNotFound
	}
	if in.Nome != nil && strings.TrimSpace(*in.Nome) == "" {
		return ErrNomeObrigatorio
	}
	if in.Email != nil && strings.TrimSpace(*in.Email) != "" {
		if _, err := mail.ParseAddress(strings.TrimSpace(*in.Email)); err != nil {
			return ErrEmailInvalido
		}
	}
	if in.Data != nil && in.Data.IsZero() {
		return ErrDataObrigatoria
	}
	if in.Status != nil && !IsValidStatus(*in.Status) {
		return ErrStatusInvalido
	}
	return nil
}
