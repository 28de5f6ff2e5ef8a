package handlers

import (
	"net/http"

	"github.com/Kevinnyanez/IosSpace-Gesstor-clientes/internal/database"

	"github.com/gin-gonic/gin"
)

// --- GET: /api/reports ---
// The dashboard card numbers in one payload.
func GetDashboardReport(c *gin.Context) {
	stats, err := database.GetDashboardStats(database.DB)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build report"})
		return
	}

	c.JSON(http.StatusOK, stats)
}
