package handlers

import (
	"net/http"

	"github.com/Kevinnyanez/IosSpace-Gesstor-clientes/internal/database"

	"github.com/gin-gonic/gin"
)

// --- GET: The configuracion singleton ---
func GetSettings(c *gin.Context) {
	settings, err := database.GetSettings(database.DB)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch settings"})
		return
	}
	c.JSON(http.StatusOK, settings)
}

type SettingsRequest struct {
	PorcentajeRecargo *float64 `json:"porcentaje_recargo"`
	DiasParaRecargo   *int     `json:"dias_para_recargo"`
	MonedaDefault     *string  `json:"moneda_default"`
}

// --- PUT: Update policy parameters (admin only) ---
func UpdateSettings(c *gin.Context) {
	var input SettingsRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	settings, err := database.GetSettings(database.DB)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch settings"})
		return
	}

	updates := map[string]interface{}{}
	if input.PorcentajeRecargo != nil {
		if *input.PorcentajeRecargo < 0 || *input.PorcentajeRecargo > 100 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "El porcentaje debe estar entre 0 y 100"})
			return
		}
		updates["porcentaje_recargo"] = *input.PorcentajeRecargo
	}
	if input.DiasParaRecargo != nil {
		if *input.DiasParaRecargo < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Los días deben ser al menos 1"})
			return
		}
		updates["dias_para_recargo"] = *input.DiasParaRecargo
	}
	if input.MonedaDefault != nil {
		if *input.MonedaDefault != "ARS" && *input.MonedaDefault != "USD" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Moneda no soportada"})
			return
		}
		updates["moneda_default"] = *input.MonedaDefault
	}

	if len(updates) > 0 {
		if err := database.DB.Model(&settings).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update settings"})
			return
		}
	}

	c.JSON(http.StatusOK, settings)
}
