package http

import (
	"errors"
	"net/http"

	"github.com/gestaopalco/painel/internal/painel"
)

// GetPainel devolve o snapshot corrente. Com ?atualizar=1 força um
// refresh antes de responder; com ?notificar=1 envia o resumo ao
// webhook configurado.
func (h *Handler) GetPainel(w http.ResponseWriter, r *http.Request) {
	forcar := r.URL.Query().Get("atualizar") == "1"
	notificar := r.URL.Query().Get("notificar") == "1"

	snapshot := h.painel.Snapshot()
	if snapshot == nil || forcar {
		atualizado, err := h.painel.AtualizarTudo(r.Context(), forcar, notificar)
		if err != nil && !errors.Is(err, painel.ErrAtualizacao) {
			WriteDomainError(w, err)
			return
		}
		snapshot = atualizado
	}

	WriteJSON(w, http.StatusOK, snapshot)
}

// AtualizarPainel dispara um refresh forçado das quatro coleções.
func (h *Handler) AtualizarPainel(w http.ResponseWriter, r *http.Request) {
	notificar := r.URL.Query().Get("notificar") == "1"

	snapshot, err := h.painel.AtualizarTudo(r.Context(), true, notificar)
	if err != nil && !errors.Is(err, painel.ErrAtualizacao) {
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, snapshot)
}

// InvalidarPainel expira o cache de uma coleção (ou de todas).
func (h *Handler) InvalidarPainel(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Colecao string `json:"colecao"`
	}
	if r.ContentLength > 0 {
		if err := decodeJSON(r, &payload); err != nil {
			WriteError(w, http.StatusBadRequest, "VALIDATION", "payload inválido", nil)
			return
		}
	}

	if err := h.painel.InvalidarCache(payload.Colecao); err != nil {
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]bool{"invalidado": true})
}

// Conectividade responde se o remoto está alcançável agora.
func (h *Handler) Conectividade(w http.ResponseWriter, r *http.Request) {
	online := h.painel.VerificarConectividade(r.Context())
	WriteJSON(w, http.StatusOK, map[string]bool{"online": online})
}
