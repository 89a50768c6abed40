package http

import (
	"net/http"
	"strings"

	"github.com/gestaopalco/painel/internal/nota"
)

type notaCreatePayload struct {
	Titulo  string `json:"titulo"`
	Assunto string `json:"assunto"`
	Data    string `json:"data"`
	Autor   string `json:"autor"`
}

type notaUpdatePayload struct {
	Titulo  *string `json:"titulo"`
	Assunto *string `json:"assunto"`
	Data    *string `json:"data"`
	Autor   *string `json:"autor"`
}

// CreateNota cria uma nota com autor do conjunto permitido.
func (h *Handler) CreateNota(w http.ResponseWriter, r *http.Request) {
	var payload notaCreatePayload
	if err := decodeJSON(r, &payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "payload inválido", nil)
		return
	}

	data, err := parseData(payload.Data)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}

	n, err := h.painel.CriarNota(r.Context(), nota.CreateNotaInput{
		Titulo:  strings.TrimSpace(payload.Titulo),
		Assunto: strings.TrimSpace(payload.Assunto),
		Data:    data,
		Autor:   strings.TrimSpace(payload.Autor),
	})
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, n)
}

// UpdateNota aplica atualização parcial da nota.
func (h *Handler) UpdateNota(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}

	var payload notaUpdatePayload
	if err := decodeJSON(r, &payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "payload inválido", nil)
		return
	}

	data, err := parseDataOpcional(payload.Data)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}

	n, err := h.painel.AtualizarNota(r.Context(), nota.UpdateNotaInput{
		ID:      id,
		Titulo:  payload.Titulo,
		Assunto: payload.Assunto,
		Data:    data,
		Autor:   payload.Autor,
	})
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, n)
}

// DeleteNota remove a nota.
func (h *Handler) DeleteNota(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}

	if err := h.painel.RemoverNota(r.Context(), id); err != nil {
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]bool{"removido": true})
}
