package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// decodeJSON lê o corpo limitado a 1MB e rejeita campos desconhecidos.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// idFromURL extrai e valida o parâmetro {id} da rota.
func idFromURL(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errors.New("id inválido")
	}
	return id, nil
}

// parseData aceita timestamps RFC3339 ou datas simples (2006-01-02).
func parseData(valor string) (time.Time, error) {
	valor = strings.TrimSpace(valor)
	if t, err := time.Parse(time.RFC3339, valor); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", valor)
	if err != nil {
		return time.Time{}, errors.New("data inválida, use RFC3339 ou AAAA-MM-DD")
	}
	return t, nil
}

// parseDataOpcional trata ponteiro de payload parcial.
func parseDataOpcional(valor *string) (*time.Time, error) {
	if valor == nil {
		return nil, nil
	}
	t, err := parseData(*valor)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
