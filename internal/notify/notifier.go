// Package notify entrega o resumo de sincronização ao colaborador
// externo de UI (toast/webhook). O núcleo só conhece a interface.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"
)

// Resumo agrega as contagens por coleção após um refresh.
type Resumo struct {
	Eventos        int       `json:"eventos"`
	Demandas       int       `json:"demandas"`
	CRM            int       `json:"crm"`
	Notas          int       `json:"notas"`
	SincronizadoEm time.Time `json:"sincronizado_em"`
}

// Notifier envia resumos para canais externos.
type Notifier interface {
	Notificar(ctx context.Context, resumo Resumo) error
}

// WebhookNotifier posta o resumo em um endpoint HTTP configurado.
type WebhookNotifier struct {
	webhookURL string
	client     *http.Client
}

// NewWebhookNotifier devolve nil quando não há webhook configurado.
func NewWebhookNotifier(webhookURL string) *WebhookNotifier {
	if webhookURL == "" {
		return nil
	}
	return &WebhookNotifier{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 5 * time.Second},
	}
}

func (n *WebhookNotifier) Notificar(ctx context.Context, resumo Resumo) error {
	if n == nil || n.webhookURL == "" {
		return errors.New("webhook não configurado")
	}

	body, err := json.Marshal(resumo)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return errors.New("notificação recusada pelo webhook")
	}
	return nil
}
