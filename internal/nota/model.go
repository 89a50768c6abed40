package nota

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound           = errors.New("nota não encontrada")
	ErrTituloObrigatorio  = errors.New("título da nota é obrigatório")
	ErrDataObrigatoria    = errors.New("data da nota é obrigatória")
	ErrAutorNaoPermitido = errors.New("autor não pertence ao conjunto permitido")
)

// Nota representa uma anotação livre do painel.
type Nota struct {
	ID       uuid.UUID `json:"id"`
	Titulo   string    `json:"titulo"`
	Assunto  string    `json:"assunto"`
	Data     time.Time `json:"data"`
	Autor    string    `json:"autor"`
	CriadoEm time.Time `json:"criado_em"`
}

// CreateNotaInput encapsula campos para criação de nota.
type CreateNotaInput struct {
	Titulo  string
	Assunto string
	Data    time.Time
	Autor   string
}

// UpdateNotaInput permite atualização parcial da nota.
type UpdateNotaInput struct {
	ID      uuid.UUID
	Titulo  *string
	Assunto *string
	Data    *time.Time
	Autor   *string
}

// Autores é o conjunto fechado de autores aceitos, vindo da configuração.
type Autores struct {
	permitidos map[string]struct{}
}

// NewAutores monta o conjunto a partir da lista configurada.
func NewAutores(nomes []string) *Autores {
	permitidos := make(map[string]struct{}, len(nomes))
	for _, nome := range nomes {
		nome = strings.TrimSpace(nome)
		if nome != "" {
			permitidos[strings.ToLower(nome)] = struct{}{}
		}
	}
	return &Autores{permitidos: permitidos}
}

// Permitido indica se o autor pertence ao conjunto.
func (a *Autores) Permitido(autor string) bool {
	_, ok := a.permitidos[strings.ToLower(strings.TrimSpace(autor))]
	return ok
}

// Validate garante os campos obrigatórios de criação.
func (in CreateNotaInput) Validate(autores *Autores) error {
	if strings.TrimSpace(in.Titulo) == "" {
		return ErrTituloObrigatorio
	}
	if in.Data.IsZero() {
		return ErrDataObrigatoria
	}
	if !autores.Permitido(in.Autor) {
		return ErrAutorNaoPermitido
	}
	return nil
}

// Validate rejeita atualizações inválidas.
func (in UpdateNotaInput) Validate(autores *Autores) error {
	if in.ID == uuid.Nil {
		return ErrNotFound
	}
	if in.Titulo != nil && strings.TrimSpace(*in.Titulo) == "" {
		return ErrTituloObrigatorio
	}
	if in.Data != nil && in.Data.IsZero() {
		return ErrDataObrigatoria
	}
	if in.Autor != nil && !autores.Permitido(*in.Autor) {
		return ErrAutorNaoPermitido
	}
	return nil
}
