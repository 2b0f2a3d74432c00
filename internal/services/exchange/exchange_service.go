package exchange

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/causafund/backend/internal/models"
)

// DisplayCurrency is the only rate the platform serves. Settlement always
// operates in USD; VEF is display-only.
const DisplayCurrency = "VEF"

// DefaultSource names the reference rate publisher
const DefaultSource = "BCV"

// DefaultRateUSD is the fallback rate used when no fetch has succeeded yet
const DefaultRateUSD = 41.25

// Service provides the USD->VEF display rate, refreshed periodically and
// cached in memory with a persisted history of snapshots
type Service struct {
	db       *gorm.DB
	rateURL  string
	current  float64
	updated  time.Time
	source   string
	mutex    sync.RWMutex
}

// rateResponse is the shape of the external rate feed
type rateResponse struct {
	Currency string  `json:"currency"`
	RateUSD  float64 `json:"rate_usd"`
	Source   string  `json:"source"`
}

// NewService creates an exchange rate service. rateURL may be empty, in
// which case the service serves the last persisted snapshot or the static
// default.
func NewService(db *gorm.DB, rateURL string) *Service {
	s := &Service{
		db:      db,
		rateURL: rateURL,
		current: DefaultRateUSD,
		updated: time.Now(),
		source:  DefaultSource,
	}

	// Warm the cache from the latest persisted snapshot
	var last models.ExchangeRate
	if err := db.Where("currency = ?", DisplayCurrency).Order("fetched_at desc").First(&last).Error; err == nil {
		s.current = last.RateUSD
		s.updated = last.FetchedAt
		s.source = last.Source
	}

	return s
}

// CurrentRate returns the cached USD->VEF rate
func (s *Service) CurrentRate() float64 {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.current
}

// Snapshot returns the cached rate with its metadata
func (s *Service) Snapshot() (rate float64, source string, updated time.Time) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.current, s.source, s.updated
}

// Refresh fetches the rate from the configured feed and persists a
// snapshot. A fetch failure keeps the previous rate.
func (s *Service) Refresh() error {
	if s.rateURL == "" {
		// No feed configured; persist the static rate so the API has a
		// lastUpdated timestamp to serve.
		return s.store(DefaultRateUSD, DefaultSource)
	}

	resp, err := http.Get(s.rateURL)
	if err != nil {
		return fmt.Errorf("failed to fetch exchange rate: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("exchange rate feed returned status code %d", resp.StatusCode)
	}

	var rateResp rateResponse
	if err := json.NewDecoder(resp.Body).Decode(&rateResp); err != nil {
		return fmt.Errorf("failed to decode exchange rate response: %w", err)
	}

	if rateResp.RateUSD <= 0 {
		return fmt.Errorf("exchange rate feed returned invalid rate %f", rateResp.RateUSD)
	}

	source := rateResp.Source
	if source == "" {
		source = DefaultSource
	}

	return s.store(rateResp.RateUSD, source)
}

// store persists a snapshot and updates the in-memory cache
func (s *Service) store(rate float64, source string) error {
	now := time.Now()

	snapshot := models.ExchangeRate{
		Currency:  DisplayCurrency,
		RateUSD:   rate,
		Source:    source,
		FetchedAt: now,
	}
	if err := s.db.Create(&snapshot).Error; err != nil {
		return fmt.Errorf("error persisting exchange rate: %w", err)
	}

	s.mutex.Lock()
	s.current = rate
	s.source = source
	s.updated = now
	s.mutex.Unlock()

	log.Printf("Exchange rate refreshed: 1 USD = %.2f %s (%s)", rate, DisplayCurrency, source)
	return nil
}
