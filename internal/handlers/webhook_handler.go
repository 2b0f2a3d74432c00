package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/causafund/backend/internal/jobs"
	"github.com/causafund/backend/internal/queue"
)

// WebhookHandler receives payment provider confirmations and hands them to
// the settlement queue. The endpoint acknowledges as soon as the job is
// persisted; the worker does the settlement.
type WebhookHandler struct {
	queue *queue.Client
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(q *queue.Client) *WebhookHandler {
	return &WebhookHandler{queue: q}
}

// knownProviders are the provider-settled payment channels
var knownProviders = map[string]bool{
	"stripe":    true,
	"paypal":    true,
	"pagomovil": true,
}

// PaymentWebhookRequest is the normalized provider confirmation payload
type PaymentWebhookRequest struct {
	Reference   string `json:"reference" binding:"required"`
	Status      string `json:"status" binding:"required"`
	ProviderRef string `json:"provider_ref"`
}

// PaymentWebhook enqueues a settlement job for a provider confirmation
func (h *WebhookHandler) PaymentWebhook(c *gin.Context) {
	provider := c.Param("provider")
	if !knownProviders[provider] {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown payment provider"})
		return
	}

	var req PaymentWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	payload := jobs.SettlementPayload{
		Provider:    provider,
		Reference:   req.Reference,
		Succeeded:   req.Status == "succeeded" || req.Status == "completed",
		ProviderRef: req.ProviderRef,
	}

	jobID, err := h.queue.Enqueue(queue.JobTypeSettlePayment, payload)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to enqueue settlement"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"message": "Webhook accepted",
		"job_id":  jobID,
	})
}
