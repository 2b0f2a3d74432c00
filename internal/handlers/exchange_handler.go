package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/causafund/backend/internal/services/exchange"
)

// ExchangeHandler serves the display exchange rate
type ExchangeHandler struct {
	rates *exchange.Service
}

// NewExchangeHandler creates a new exchange handler
func NewExchangeHandler(rates *exchange.Service) *ExchangeHandler {
	return &ExchangeHandler{rates: rates}
}

// CurrentRate returns the USD to VEF display rate
func (h *ExchangeHandler) CurrentRate(c *gin.Context) {
	rate, source, updated := h.rates.Snapshot()

	c.JSON(http.StatusOK, gin.H{
		"currency":     exchange.DisplayCurrency,
		"rate_usd":     rate,
		"source":       source,
		"last_updated": updated,
	})
}
