package jobs

import (
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/causafund/backend/internal/services/exchange"
)

// StartScheduler starts the recurring jobs: the exchange rate refresh runs
// immediately and then every interval. The returned scheduler is stopped
// on shutdown.
func StartScheduler(rates *exchange.Service, refreshInterval time.Duration) *gocron.Scheduler {
	scheduler := gocron.NewScheduler(time.UTC)

	_, err := scheduler.Every(refreshInterval).StartImmediately().Do(func() {
		if err := rates.Refresh(); err != nil {
			log.Printf("Exchange rate refresh failed: %v", err)
		}
	})
	if err != nil {
		log.Printf("Failed to schedule exchange rate refresh: %v", err)
	}

	scheduler.StartAsync()
	return scheduler
}
