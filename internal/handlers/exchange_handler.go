package handlers

import (
	"net/http"

	"github.com/Kevinnyanez/IosSpace-Gesstor-clientes/internal/exchange"

	"github.com/gin-gonic/gin"
)

var ratePoller *exchange.Poller

// SetRatePoller hands the handler the poller main started.
func SetRatePoller(p *exchange.Poller) {
	ratePoller = p
}

// --- GET: /api/exchange-rate ---
func GetExchangeRate(c *gin.Context) {
	if ratePoller == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Exchange rate service not running"})
		return
	}
	c.JSON(http.StatusOK, ratePoller.Current())
}
