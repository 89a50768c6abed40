package http

import (
	"net/http"
	"strings"

	"github.com/gestaopalco/painel/internal/evento"
)

type eventoCreatePayload struct {
	Nome    string  `json:"nome"`
	Data    string  `json:"data"`
	LogoURL *string `json:"logo_url"`
}

type eventoUpdatePayload struct {
	Nome      *string `json:"nome"`
	Data      *string `json:"data"`
	LogoURL   *string `json:"logo_url"`
	Arquivado *bool   `json:"arquivado"`
}

// CreateEvento cria um evento e ressincroniza o painel.
func (h *Handler) CreateEvento(w http.ResponseWriter, r *http.Request) {
	var payload eventoCreatePayload
	if err := decodeJSON(r, &payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "payload inválido", nil)
		return
	}

	data, err := parseData(payload.Data)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}

	ev, err := h.painel.CriarEvento(r.Context(), evento.CreateEventoInput{
		Nome:    strings.TrimSpace(payload.Nome),
		Data:    data,
		LogoURL: payload.LogoURL,
	})
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, ev)
}

// UpdateEvento aplica atualização parcial; logo_url vazio limpa o campo.
func (h *Handler) UpdateEvento(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}

	var payload eventoUpdatePayload
	if err := decodeJSON(r, &payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "payload inválido", nil)
		return
	}

	data, err := parseDataOpcional(payload.Data)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}

	input := evento.UpdateEventoInput{
		ID:        id,
		Nome:      payload.Nome,
		Data:      data,
		Arquivado: payload.Arquivado,
	}
	if payload.LogoURL != nil {
		if strings.TrimSpace(*payload.LogoURL) == "" {
			input.ClearLogo = true
		} else {
			input.LogoURL = payload.LogoURL
		}
	}

	ev, err := h.painel.AtualizarEvento(r.Context(), input)
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, ev)
}

// DeleteEvento remove o evento e suas demandas em cascata.
func (h *Handler) DeleteEvento(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}

	if err := h.painel.RemoverEvento(r.Context(), id); err != nil {
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]bool{"removido": true})
}
