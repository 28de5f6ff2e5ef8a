package handlers

import (
	"net/http"

	"github.com/Kevinnyanez/IosSpace-Gesstor-clientes/internal/database"
	"github.com/Kevinnyanez/IosSpace-Gesstor-clientes/internal/models"

	"github.com/gin-gonic/gin"
)

func GetCategories(c *gin.Context) {
	var categorias []models.Category

	query := database.DB.Order("nombre")
	if c.Query("activa") == "true" {
		query = query.Where("activa = ?", true)
	}

	if err := query.Find(&categorias).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch categories"})
		return
	}

	c.JSON(http.StatusOK, categorias)
}

type CategoryRequest struct {
	Nombre      string  `json:"nombre" binding:"required"`
	Descripcion *string `json:"descripcion"`
}

func AddCategory(c *gin.Context) {
	var input CategoryRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "El nombre es obligatorio"})
		return
	}

	categoria := models.Category{
		Nombre:      input.Nombre,
		Descripcion: input.Descripcion,
		Activa:      true,
	}

	if err := database.DB.Create(&categoria).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create category"})
		return
	}

	c.JSON(http.StatusCreated, categoria)
}

func UpdateCategory(c *gin.Context) {
	id := c.Param("id")

	var categoria models.Category
	if err := database.DB.First(&categoria, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
		return
	}

	var updateData map[string]interface{}
	if err := c.ShouldBindJSON(&updateData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	delete(updateData, "id")

	if err := database.DB.Model(&categoria).Updates(updateData).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update category"})
		return
	}

	c.JSON(http.StatusOK, categoria)
}

// Soft delete; products keep pointing at the inactive category.
func DeleteCategory(c *gin.Context) {
	id := c.Param("id")

	result := database.DB.Model(&models.Category{}).
		Where("id = ?", id).
		Update("activa", false)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete category"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Categoría desactivada"})
}
