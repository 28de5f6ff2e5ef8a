package handlers

import (
	"net/http"

	"github.com/Kevinnyanez/IosSpace-Gesstor-clientes/internal/database"
	"github.com/Kevinnyanez/IosSpace-Gesstor-clientes/internal/models"

	"github.com/gin-gonic/gin"
)

// --- GET: List products with their category ---
func GetProducts(c *gin.Context) {
	var productos []models.Product

	query := database.DB.Preload("Categoria").Order("nombre")
	if c.Query("activo") == "true" {
		query = query.Where("activo = ?", true)
	}
	if categoriaID := c.Query("categoria_id"); categoriaID != "" {
		query = query.Where("categoria_id = ?", categoriaID)
	}

	if err := query.Find(&productos).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
		return
	}

	c.JSON(http.StatusOK, productos)
}

type ProductRequest struct {
	Nombre      string  `json:"nombre" binding:"required"`
	Codigo      *string `json:"codigo"`
	Descripcion *string `json:"descripcion"`
	Precio      float64 `json:"precio" binding:"required"`
	Moneda      string  `json:"moneda"`
	StockActual int     `json:"stock_actual"`
	StockMinimo int     `json:"stock_minimo"`
	CategoriaID *string `json:"categoria_id"`
}

// --- POST: Add a new product ---
func AddProduct(c *gin.Context) {
	var input ProductRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	if input.Precio <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "El precio debe ser mayor a 0"})
		return
	}

	if input.Moneda == "" {
		settings, err := database.GetSettings(database.DB)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read settings"})
			return
		}
		input.Moneda = settings.MonedaDefault
	}

	producto := models.Product{
		Nombre:      input.Nombre,
		Codigo:      input.Codigo,
		Descripcion: input.Descripcion,
		Precio:      input.Precio,
		Moneda:      input.Moneda,
		StockActual: input.StockActual,
		StockMinimo: input.StockMinimo,
		CategoriaID: input.CategoriaID,
		Activo:      true,
	}

	if err := database.DB.Create(&producto).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
		return
	}

	c.JSON(http.StatusCreated, producto)
}

// --- PUT: Partial update (only what was sent) ---
func UpdateProduct(c *gin.Context) {
	id := c.Param("id")

	var producto models.Product
	if err := database.DB.First(&producto, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	var updateData map[string]interface{}
	if err := c.ShouldBindJSON(&updateData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	delete(updateData, "id")

	if err := database.DB.Model(&producto).Updates(updateData).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product"})
		return
	}

	c.JSON(http.StatusOK, producto)
}

// --- DELETE: Soft delete, the product stays for old references ---
func DeleteProduct(c *gin.Context) {
	id := c.Param("id")

	result := database.DB.Model(&models.Product{}).
		Where("id = ?", id).
		Update("activo", false)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete product"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Producto desactivado"})
}

// StockRequest is one inventory movement: entrada adds, salida subtracts,
// ajuste sets the level outright.
type StockRequest struct {
	TipoMovimiento string  `json:"tipo_movimiento" binding:"required"`
	Cantidad       int     `json:"cantidad" binding:"required"`
	Motivo         *string `json:"motivo"`
}

// --- POST: Register a stock movement and update the product level ---
func RegisterStockMovement(c *gin.Context) {
	var input StockRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	switch input.TipoMovimiento {
	case models.MovimientoEntrada, models.MovimientoSalida, models.MovimientoAjuste:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Tipo de movimiento inválido"})
		return
	}
	if input.Cantidad < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "La cantidad no puede ser negativa"})
		return
	}

	tx := database.DB.Begin()

	var producto models.Product
	if err := tx.First(&producto, "id = ?", c.Param("id")).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	nuevoStock := producto.StockActual
	switch input.TipoMovimiento {
	case models.MovimientoEntrada:
		nuevoStock += input.Cantidad
	case models.MovimientoSalida:
		nuevoStock -= input.Cantidad
	case models.MovimientoAjuste:
		nuevoStock = input.Cantidad
	}
	if nuevoStock < 0 {
		tx.Rollback()
		c.JSON(http.StatusBadRequest, gin.H{"error": "Stock insuficiente"})
		return
	}

	movimiento := models.StockMovement{
		ProductoID:     producto.ID,
		TipoMovimiento: input.TipoMovimiento,
		Cantidad:       input.Cantidad,
		Motivo:         input.Motivo,
	}
	if err := tx.Create(&movimiento).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record movement"})
		return
	}

	if err := tx.Model(&producto).Update("stock_actual", nuevoStock).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update stock"})
		return
	}

	tx.Commit()

	c.JSON(http.StatusCreated, gin.H{
		"message":      "Movimiento registrado",
		"stock_actual": nuevoStock,
		"movimiento":   movimiento,
	})
}

// --- GET: Movement log, newest first ---
func GetStockMovements(c *gin.Context) {
	var movimientos []models.StockMovement

	query := database.DB.Order("fecha_movimiento desc").Limit(200)
	if productoID := c.Query("producto_id"); productoID != "" {
		query = query.Where("producto_id = ?", productoID)
	}

	if err := query.Find(&movimientos).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch stock movements"})
		return
	}

	c.JSON(http.StatusOK, movimientos)
}
