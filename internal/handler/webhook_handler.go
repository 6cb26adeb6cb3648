package handler

import (
	"net/http"

	"orderdesk/internal/models"
	"orderdesk/internal/service"
)

// maxWebhookBody caps a single webhook delivery
const maxWebhookBody = 1 << 20

// WebhookHandler receives order webhooks from the sales channels
type WebhookHandler struct {
	ingest *service.IngestService
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(ingest *service.IngestService) *WebhookHandler {
	return &WebhookHandler{ingest: ingest}
}

// Shopify handles POST /webhook/shopify
func (h *WebhookHandler) Shopify(w http.ResponseWriter, r *http.Request) {
	h.receive(w, r, models.SourceShopify)
}

// Shiprocket handles POST /webhook/shiprocket
func (h *WebhookHandler) Shiprocket(w http.ResponseWriter, r *http.Request) {
	h.receive(w, r, models.SourceShiprocket)
}

// receive always acknowledges, whatever became of the payload, so the channel
// never retries a delivery
func (h *WebhookHandler) receive(w http.ResponseWriter, r *http.Request, channel models.Source) {
	body := http.MaxBytesReader(w, r.Body, maxWebhookBody)
	h.ingest.Ingest(r.Context(), channel, body)

	WriteOK(w, map[string]string{"status": "received"})
}
