package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gestaopalco/painel/internal/crm"
	"github.com/gestaopalco/painel/internal/demanda"
	"github.com/gestaopalco/painel/internal/evento"
	"github.com/gestaopalco/painel/internal/nota"
	"github.com/gestaopalco/painel/internal/painel"
	"github.com/gestaopalco/painel/internal/retry"
)

func TestParseData(t *testing.T) {
	rfc, err := parseData("2026-05-20T15:04:05Z")
	if err != nil {
		t.Fatalf("rfc3339: %v", err)
	}
	if rfc.Hour() != 15 {
		t.Fatalf("expected hour preserved, got %d", rfc.Hour())
	}

	simples, err := parseData("2026-05-20")
	if err != nil {
		t.Fatalf("date only: %v", err)
	}
	if !simples.Equal(time.Date(2026, 5, 20, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected parsed date: %s", simples)
	}

	if _, err := parseData("20/05/2026"); err == nil {
		t.Fatal("expected error for unsupported format")
	}
	if _, err := parseData(""); err == nil {
		t.Fatal("expected error for empty value")
	}
}

func TestDecodeJSONRejeitaCampoDesconhecido(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"nome":"x","intruso":true}`))
	var payload struct {
		Nome string `json:"nome"`
	}
	if err := decodeJSON(req, &payload); err == nil {
		t.Fatal("expected unknown field rejection")
	}
}

func TestWriteDomainErrorMapeiaStatus(t *testing.T) {
	casos := []struct {
		err    error
		status int
		code   string
	}{
		{evento.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{demanda.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{evento.ErrNomeObrigatorio, http.StatusBadRequest, "VALIDATION"},
		{crm.ErrStatusInvalido, http.StatusBadRequest, "VALIDATION"},
		{nota.ErrAutorNaoPermitido, http.StatusBadRequest, "VALIDATION"},
		{painel.ErrColecaoDesconhecida, http.StatusBadRequest, "VALIDATION"},
		{painel.ErrSemConectividade, http.StatusServiceUnavailable, "CONNECTIVITY"},
		{fmt.Errorf("%w: listar eventos: %w", retry.ErrEsgotado, errTeste), http.StatusServiceUnavailable, "UNAVAILABLE"},
		{errTeste, http.StatusInternalServerError, "INTERNAL"},
	}

	for _, caso := range casos {
		rec := httptest.NewRecorder()
		WriteDomainError(rec, caso.err)

		if rec.Code != caso.status {
			t.Fatalf("%v: expected status %d, got %d", caso.err, caso.status, rec.Code)
		}

		var envelope ErrorEnvelope
		if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
			t.Fatalf("%v: invalid body: %v", caso.err, err)
		}
		if envelope.Error == nil || envelope.Error.Code != caso.code {
			t.Fatalf("%v: expected code %s, got %v", caso.err, caso.code, envelope.Error)
		}
	}
}

var errTeste = fmt.Errorf("falha qualquer")
