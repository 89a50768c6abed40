package http

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/gestaopalco/painel/internal/demanda"
)

type demandaCreatePayload struct {
	EventoID string `json:"evento_id"`
	Titulo   string `json:"titulo"`
	Assunto  string `json:"assunto"`
	Data     string `json:"data"`
}

type demandaUpdatePayload struct {
	Titulo    *string `json:"titulo"`
	Assunto   *string `json:"assunto"`
	Data      *string `json:"data"`
	Concluida *bool   `json:"concluida"`
}

// CreateDemanda cria uma demanda vinculada a um evento.
func (h *Handler) CreateDemanda(w http.ResponseWriter, r *http.Request) {
	var payload demandaCreatePayload
	if err := decodeJSON(r, &payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "payload inválido", nil)
		return
	}

	eventoID, err := uuid.Parse(payload.EventoID)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "evento_id inválido", nil)
		return
	}
	data, err := parseData(payload.Data)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}

	d, err := h.painel.CriarDemanda(r.Context(), demanda.CreateDemandaInput{
		EventoID: eventoID,
		Titulo:   strings.TrimSpace(payload.Titulo),
		Assunto:  strings.TrimSpace(payload.Assunto),
		Data:     data,
	})
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, d)
}

// UpdateDemanda aplica atualização parcial da demanda.
func (h *Handler) UpdateDemanda(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}

	var payload demandaUpdatePayload
	if err := decodeJSON(r, &payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "payload inválido", nil)
		return
	}

	data, err := parseDataOpcional(payload.Data)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}

	d, err := h.painel.AtualizarDemanda(r.Context(), demanda.UpdateDemandaInput{
		ID:        id,
		Titulo:    payload.Titulo,
		Assunto:   payload.Assunto,
		Data:      data,
		Concluida: payload.Concluida,
	})
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, d)
}

// DeleteDemanda remove a demanda.
func (h *Handler) DeleteDemanda(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}

	if err := h.painel.RemoverDemanda(r.Context(), id); err != nil {
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]bool{"removido": true})
}
