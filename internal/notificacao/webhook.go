package notificacao

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Evento enviado quando um documento encerra o fluxo de assinatura.
type Evento struct {
	Tipo        string    `json:"tipo"` // "documento.concluido" ou "documento.rejeitado"
	DocumentoID string    `json:"documentoId"`
	Status      string    `json:"status"`
	Mensagem    string    `json:"mensagem"`
	Em          time.Time `json:"em"`
}

// Webhook publica eventos via POST JSON. URL vazia desliga o envio.
type Webhook struct {
	URL    string
	Client *http.Client
	Log    *zap.Logger
}

func NewWebhook(url string, log *zap.Logger) *Webhook {
	if log == nil {
		log = zap.NewNop()
	}
	return &Webhook{
		URL:    url,
		Client: &http.Client{Timeout: 5 * time.Second},
		Log:    log,
	}
}

// Enviar publica o evento. Respostas fora de 2xx viram erro.
func (w *Webhook) Enviar(ctx context.Context, ev Evento) error {
	if w == nil || w.URL == "" {
		return nil
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("serializar evento: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("montar requisição do webhook: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.Client.Do(req)
	if err != nil {
		w.Log.Warn("erro ao enviar webhook", zap.String("documento_id", ev.DocumentoID), zap.Error(err))
		return fmt.Errorf("enviar webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		w.Log.Warn("webhook respondeu com erro",
			zap.String("documento_id", ev.DocumentoID),
			zap.Int("status", resp.StatusCode))
		return fmt.Errorf("webhook respondeu %d", resp.StatusCode)
	}
	w.Log.Debug("webhook enviado", zap.String("documento_id", ev.DocumentoID), zap.String("tipo", ev.Tipo))
	return nil
}
