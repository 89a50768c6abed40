package http

import (
	"net/http"
	"strings"

	"github.com/gestaopalco/painel/internal/crm"
)

type crmCreatePayload struct {
	Nome       string  `json:"nome"`
	Contato    string  `json:"contato"`
	Email      string  `json:"email"`
	Assunto    string  `json:"assunto"`
	ArquivoURL *string `json:"arquivo_url"`
	Data       string  `json:"data"`
	Status     *string `json:"status"`
}

type crmUpdatePayload struct {
	Nome       *string `json:"nome"`
	Contato    *string `json:"contato"`
	Email      *string `json:"email"`
	Assunto    *string `json:"assunto"`
	ArquivoURL *string `json:"arquivo_url"`
	Data       *string `json:"data"`
	Concluido  *bool   `json:"concluido"`
	Status     *string `json:"status"`
}

// CreateRegistroCRM cria um registro de contato.
func (h *Handler) CreateRegistroCRM(w http.ResponseWriter, r *http.Request) {
	var payload crmCreatePayload
	if err := decodeJSON(r, &payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "payload inválido", nil)
		return
	}

	data, err := parseData(payload.Data)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}

	reg, err := h.painel.CriarRegistroCRM(r.Context(), crm.CreateRegistroInput{
		Nome:       strings.TrimSpace(payload.Nome),
		Contato:    strings.TrimSpace(payload.Contato),
		Email:      strings.TrimSpace(payload.Email),
		Assunto:    strings.TrimSpace(payload.Assunto),
		ArquivoURL: payload.ArquivoURL,
		Data:       data,
		Status:     payload.Status,
	})
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, reg)
}

// UpdateRegistroCRM aplica atualização parcial; arquivo_url ou status
// vazios limpam os respectivos campos.
func (h *Handler) UpdateRegistroCRM(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}

	var payload crmUpdatePayload
	if err := decodeJSON(r, &payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "payload inválido", nil)
		return
	}

	data, err := parseDataOpcional(payload.Data)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}

	input := crm.UpdateRegistroInput{
		ID:        id,
		Nome:      payload.Nome,
		Contato:   payload.Contato,
		Email:     payload.Email,
		Assunto:   payload.Assunto,
		Data:      data,
		Concluido: payload.Concluido,
	}
	if payload.ArquivoURL != nil {
		if strings.TrimSpace(*payload.ArquivoURL) == "" {
			input.ClearArquivo = true
		} else {
			input.ArquivoURL = payload.ArquivoURL
		}
	}
	if payload.Status != nil {
		if strings.TrimSpace(*payload.Status) == "" {
			input.ClearStatus = true
		} else {
			input.Status = payload.Status
		}
	}

	reg, err := h.painel.AtualizarRegistroCRM(r.Context(), input)
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, reg)
}

// DeleteRegistroCRM remove o registro.
func (h *Handler) DeleteRegistroCRM(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}

	if err := h.painel.RemoverRegistroCRM(r.Context(), id); err != nil {
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]bool{"removido": true})
}
