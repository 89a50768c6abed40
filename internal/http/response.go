package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gestaopalco/painel/internal/crm"
	"github.com/gestaopalco/painel/internal/demanda"
	"github.com/gestaopalco/painel/internal/evento"
	"github.com/gestaopalco/painel/internal/nota"
	"github.com/gestaopalco/painel/internal/painel"
	"github.com/gestaopalco/painel/internal/retry"
)

// SuccessEnvelope padroniza respostas com dados.
type SuccessEnvelope struct {
	Data  any `json:"data"`
	Error any `json:"error"`
}

// ErrorEnvelope padroniza respostas de erro.
type ErrorEnvelope struct {
	Data  any        `json:"data"`
	Error *ErrorBody `json:"error"`
}

// ErrorBody descreve falhas normalizadas.
type ErrorBody struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// WriteJSON escreve envelope de sucesso.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(SuccessEnvelope{Data: data, Error: nil})
}

// WriteDomainError traduz erros de domínio para status e código HTTP.
func WriteDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, evento.ErrNotFound),
		errors.Is(err, demanda.ErrNotFound),
		errors.Is(err, crm.ErrNotFound),
		errors.Is(err, nota.ErrNotFound):
		WriteError(w, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	case errors.Is(err, evento.ErrNomeObrigatorio),
		errors.Is(err, evento.ErrDataObrigatoria),
		errors.Is(err, demanda.ErrEventoObrigatorio),
		errors.Is(err, demanda.ErrTituloObrigatorio),
		errors.Is(err, demanda.ErrDataObrigatoria),
		errors.Is(err, crm.ErrNomeObrigatorio),
		errors.Is(err, crm.ErrEmailInvalido),
		errors.Is(err, crm.ErrDataObrigatoria),
		errors.Is(err, crm.ErrStatusInvalido),
		errors.Is(err, nota.ErrTituloObrigatorio),
		errors.Is(err, nota.ErrDataObrigatoria),
		errors.Is(err, nota.ErrAutorNaoPermitido),
		errors.Is(err, painel.ErrColecaoDesconhecida):
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
	case errors.Is(err, painel.ErrSemConectividade):
		WriteError(w, http.StatusServiceUnavailable, "CONNECTIVITY", err.Error(), nil)
	case errors.Is(err, retry.ErrEsgotado), errors.Is(err, painel.ErrAtualizacao):
		WriteError(w, http.StatusServiceUnavailable, "UNAVAILABLE", err.Error(), nil)
	default:
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "erro interno", nil)
	}
}

// WriteError escreve envelope de erro e mantém formato consistente.
func WriteError(w http.ResponseWriter, status int, code, message string, details interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorEnvelope{
		Data:  nil,
		Error: &ErrorBody{Code: code, Message: message, Details: details},
	})
}
