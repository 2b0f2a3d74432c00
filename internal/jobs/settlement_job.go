package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/causafund/backend/internal/queue"
	"github.com/causafund/backend/internal/services/donation"
)

// SettlementPayload carries a provider payment confirmation from the
// webhook endpoint to the settlement worker
type SettlementPayload struct {
	Provider    string `json:"provider"`
	Reference   string `json:"reference"`
	Succeeded   bool   `json:"succeeded"`
	ProviderRef string `json:"provider_ref"`
}

// SettlementJob settles provider payment confirmations asynchronously so
// the webhook endpoint can acknowledge immediately
type SettlementJob struct {
	donations *donation.Service
}

// NewSettlementJob creates a settlement job handler
func NewSettlementJob(donations *donation.Service) *SettlementJob {
	return &SettlementJob{donations: donations}
}

// Handle processes one settlement job. A donation that was already settled
// is treated as success: providers redeliver webhooks and the settlement
// guard already made the first delivery win.
func (j *SettlementJob) Handle(ctx context.Context, job queue.Job) error {
	var payload SettlementPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("failed to unmarshal settlement payload: %w", err)
	}

	settled, err := j.donations.SettleProviderPayment(payload.Reference, payload.Succeeded, payload.ProviderRef)
	if err != nil {
		if errors.Is(err, donation.ErrAlreadySettled) {
			log.Printf("Donation %s already settled, skipping duplicate %s webhook", payload.Reference, payload.Provider)
			return nil
		}
		return fmt.Errorf("failed to settle donation %s: %w", payload.Reference, err)
	}

	log.Printf("Settled donation %s via %s: %s", settled.Reference, payload.Provider, settled.Status)
	return nil
}
