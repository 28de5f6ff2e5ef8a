package handlers

import (
	"errors"
	"net/http"

	"github.com/Kevinnyanez/IosSpace-Gesstor-clientes/internal/database"
	"github.com/Kevinnyanez/IosSpace-Gesstor-clientes/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// --- GET: List clients, active first ---
func GetClients(c *gin.Context) {
	var clientes []models.Client

	query := database.DB.Order("nombre")
	if c.Query("activo") == "true" {
		query = query.Where("activo = ?", true)
	}

	if err := query.Find(&clientes).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch clients"})
		return
	}

	c.JSON(http.StatusOK, clientes)
}

type ClientRequest struct {
	Nombre    string  `json:"nombre" binding:"required"`
	Apellido  string  `json:"apellido" binding:"required"`
	Email     *string `json:"email"`
	Telefono  *string `json:"telefono"`
	Direccion *string `json:"direccion"`
}

// --- POST: Register a new client ---
func AddClient(c *gin.Context) {
	var input ClientRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nombre y apellido son obligatorios"})
		return
	}

	cliente := models.Client{
		Nombre:    input.Nombre,
		Apellido:  input.Apellido,
		Email:     input.Email,
		Telefono:  input.Telefono,
		Direccion: input.Direccion,
		Activo:    true,
	}

	if err := database.DB.Create(&cliente).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create client"})
		return
	}

	c.JSON(http.StatusCreated, cliente)
}

// --- PUT: Partial update (only the fields that were sent) ---
func UpdateClient(c *gin.Context) {
	id := c.Param("id")

	var cliente models.Client
	if err := database.DB.First(&cliente, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Client not found"})
		return
	}

	var updateData map[string]interface{}
	if err := c.ShouldBindJSON(&updateData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	delete(updateData, "id")

	if err := database.DB.Model(&cliente).Updates(updateData).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update client"})
		return
	}

	c.JSON(http.StatusOK, cliente)
}

var errDeudasAbiertas = errors.New("el cliente tiene deudas pendientes")

// --- DELETE: Hard delete, refused while the client still owes money. Paid
// debts and their payments go with the client so the FK never blocks it. ---
func DeleteClient(c *gin.Context) {
	id := c.Param("id")

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var abiertas int64
		if err := tx.Model(&models.Debt{}).
			Where("cliente_id = ? AND estado <> ?", id, models.EstadoPagado).
			Count(&abiertas).Error; err != nil {
			return err
		}
		if abiertas > 0 {
			return errDeudasAbiertas
		}

		if err := tx.Where("deuda_id IN (?)",
			tx.Model(&models.Debt{}).Select("id").Where("cliente_id = ?", id),
		).Delete(&models.Payment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("cliente_id = ?", id).Delete(&models.Debt{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Client{}, "id = ?", id).Error
	})
	if errors.Is(err, errDeudasAbiertas) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "El cliente tiene deudas pendientes"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete client"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Cliente eliminado"})
}
