package handlers

import (
	"net/http"
	"time"

	"github.com/Kevinnyanez/IosSpace-Gesstor-clientes/internal/database"
	"github.com/Kevinnyanez/IosSpace-Gesstor-clientes/internal/models"

	"github.com/gin-gonic/gin"
)

// --- GET: Payments of one debt, newest first ---
func GetDebtPayments(c *gin.Context) {
	var pagos []models.Payment

	err := database.DB.
		Where("deuda_id = ?", c.Param("id")).
		Order("fecha_pago desc").
		Find(&pagos).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch payments"})
		return
	}

	c.JSON(http.StatusOK, pagos)
}

// PaymentRequest is the "Registrar Abono" form.
type PaymentRequest struct {
	Monto      float64 `json:"monto" binding:"required"`
	FechaPago  string  `json:"fecha_pago"`
	MetodoPago *string `json:"metodo_pago"`
	Notas      *string `json:"notas"`
}

// --- POST: Partial payment (abono) against one debt ---
func RegisterPayment(c *gin.Context) {
	var input PaymentRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	var fechaPago time.Time
	if input.FechaPago != "" {
		var err error
		fechaPago, err = time.Parse("2006-01-02", input.FechaPago)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Fecha de pago inválida (YYYY-MM-DD)"})
			return
		}
	}

	pago, err := ledgerService().RegisterPayment(
		c.Param("id"), input.Monto, fechaPago, input.MetodoPago, input.Notas, idempotencyKey(c))
	if err != nil {
		abortLedgerError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Abono registrado",
		"pago":    pago,
	})
}

// SettleRequest pays off a whole installment group in one action.
type SettleRequest struct {
	ClienteID    string  `json:"cliente_id" binding:"required"`
	ConceptoBase string  `json:"concepto_base" binding:"required"`
	FechaPago    string  `json:"fecha_pago"`
	MetodoPago   *string `json:"metodo_pago"`
}

// --- POST: Full payment across sibling installments ---
func SettleDebtGroup(c *gin.Context) {
	var input SettleRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	var fechaPago time.Time
	if input.FechaPago != "" {
		var err error
		fechaPago, err = time.Parse("2006-01-02", input.FechaPago)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Fecha de pago inválida (YYYY-MM-DD)"})
			return
		}
	}

	settled, total, err := ledgerService().SettleGroup(
		input.ClienteID, input.ConceptoBase, fechaPago, input.MetodoPago, idempotencyKey(c))
	if err != nil {
		abortLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":        "Pago completo registrado",
		"cuotas_pagadas": settled,
		"total_cobrado":  total,
	})
}

// --- GET: Payment history (reporting snapshot), newest first ---
func GetPaymentHistory(c *gin.Context) {
	var historial []models.PaymentHistory

	query := database.DB.Order("fecha_pago desc")
	if moneda := c.Query("moneda"); moneda != "" {
		query = query.Where("moneda = ?", moneda)
	}

	if err := query.Find(&historial).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch payment history"})
		return
	}

	c.JSON(http.StatusOK, historial)
}

// --- POST: Prune history older than 30 days (also runs nightly) ---
func CleanupPaymentHistory(c *gin.Context) {
	deleted, err := ledgerService().PruneHistory(30 * 24 * time.Hour)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clean payment history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":              "Historial limpiado",
		"registros_eliminados": deleted,
	})
}
