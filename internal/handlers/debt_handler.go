package handlers

import (
	"net/http"
	"time"

	"github.com/Kevinnyanez/IosSpace-Gesstor-clientes/internal/database"
	"github.com/Kevinnyanez/IosSpace-Gesstor-clientes/internal/ledger"
	"github.com/Kevinnyanez/IosSpace-Gesstor-clientes/internal/models"

	"github.com/gin-gonic/gin"
)

// --- GET: List debts with their client, open ones first ---
func GetDebts(c *gin.Context) {
	var deudas []models.Debt

	query := database.DB.Preload("Cliente").Order("fecha_vencimiento")
	if estado := c.Query("estado"); estado != "" {
		query = query.Where("estado = ?", estado)
	}
	if clienteID := c.Query("cliente_id"); clienteID != "" {
		query = query.Where("cliente_id = ?", clienteID)
	}

	if err := query.Find(&deudas).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch debts"})
		return
	}

	c.JSON(http.StatusOK, deudas)
}

// DebtRequest is one submission of the "Nueva Deuda" form. A Cuotas > 1
// expands into sibling installment debts.
type DebtRequest struct {
	ClienteID        string  `json:"cliente_id" binding:"required"`
	Concepto         string  `json:"concepto" binding:"required"`
	MontoTotal       float64 `json:"monto_total" binding:"required"`
	AbonoInicial     float64 `json:"monto_abonado"`
	Cuotas           int     `json:"cuotas"`
	FechaVencimiento string  `json:"fecha_vencimiento" binding:"required"`
	Moneda           string  `json:"moneda"`
	Notas            *string `json:"notas"`
}

// --- POST: Create a debt (or its N installments, atomically) ---
func AddDebt(c *gin.Context) {
	var input DebtRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	var cliente models.Client
	if err := database.DB.First(&cliente, "id = ?", input.ClienteID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Cliente no encontrado"})
		return
	}

	vencimiento, err := time.Parse("2006-01-02", input.FechaVencimiento)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Fecha de vencimiento inválida (YYYY-MM-DD)"})
		return
	}

	if input.Cuotas == 0 {
		input.Cuotas = 1
	}
	if input.Moneda == "" {
		settings, err := database.GetSettings(database.DB)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read settings"})
			return
		}
		input.Moneda = settings.MonedaDefault
	}

	debts, err := ledgerService().CreateDebt(ledger.PlanInput{
		ClienteID:        input.ClienteID,
		Concepto:         input.Concepto,
		MontoTotal:       input.MontoTotal,
		AbonoInicial:     input.AbonoInicial,
		Cuotas:           input.Cuotas,
		FechaVencimiento: vencimiento,
		Moneda:           input.Moneda,
		Notas:            input.Notas,
	})
	if err != nil {
		abortLedgerError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Deuda registrada",
		"cuotas":  len(debts),
		"deudas":  debts,
	})
}

// --- PUT: Update descriptive fields only. Amounts and status move through
// payments and surcharges, never through a direct edit. ---
func UpdateDebt(c *gin.Context) {
	id := c.Param("id")

	var deuda models.Debt
	if err := database.DB.First(&deuda, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Deuda no encontrada"})
		return
	}

	var input struct {
		Concepto         *string `json:"concepto"`
		FechaVencimiento *string `json:"fecha_vencimiento"`
		Notas            *string `json:"notas"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	updates := map[string]interface{}{}
	if input.Concepto != nil {
		updates["concepto"] = *input.Concepto
	}
	if input.FechaVencimiento != nil {
		vencimiento, err := time.Parse("2006-01-02", *input.FechaVencimiento)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Fecha de vencimiento inválida (YYYY-MM-DD)"})
			return
		}
		updates["fecha_vencimiento"] = vencimiento
	}
	if input.Notas != nil {
		updates["notas"] = *input.Notas
	}

	if len(updates) > 0 {
		if err := database.DB.Model(&deuda).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update debt"})
			return
		}
	}

	c.JSON(http.StatusOK, deuda)
}

// --- DELETE: Remove a debt and its payments together ---
func DeleteDebt(c *gin.Context) {
	if err := ledgerService().DeleteDebt(c.Param("id")); err != nil {
		abortLedgerError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Deuda eliminada"})
}

// --- POST: Manual surcharge on one debt (operator override) ---
func ApplySurcharge(c *gin.Context) {
	settings, err := database.GetSettings(database.DB)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read settings"})
		return
	}

	deuda, monto, err := ledgerService().ApplySurchargeToDebt(
		c.Param("id"), settings.PorcentajeRecargo, time.Now(), idempotencyKey(c))
	if err != nil {
		abortLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Recargo aplicado",
		"recargo": monto,
		"deuda":   deuda,
	})
}

// --- POST: Bulk sweep over every eligible overdue debt ---
func ApplySurcharges(c *gin.Context) {
	settings, err := database.GetSettings(database.DB)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read settings"})
		return
	}

	updated, err := ledgerService().SweepSurcharges(settings.PorcentajeRecargo, time.Now())
	if err != nil {
		abortLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":             "Recargos aplicados",
		"deudas_actualizadas": updated,
	})
}
