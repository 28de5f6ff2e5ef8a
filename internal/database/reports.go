package database

import (
	"time"

	"github.com/Kevinnyanez/IosSpace-Gesstor-clientes/internal/models"

	"gorm.io/gorm"
)

// CurrencyTotal is one remaining-balance bucket per currency.
type CurrencyTotal struct {
	Moneda string  `json:"moneda"`
	Total  float64 `json:"total"`
}

// DashboardStats holds the numbers the dashboard cards show.
type DashboardStats struct {
	ClientesActivos  int64           `json:"clientes_activos"`
	DeudasPendientes int64           `json:"deudas_pendientes"`
	DeudasVencidas   int64           `json:"deudas_vencidas"`
	SaldoPorMoneda   []CurrencyTotal `json:"saldo_por_moneda"`
	CobradoDelMes    float64         `json:"cobrado_del_mes"`
	ProductosBajos   int64           `json:"productos_bajo_stock"`
}

// GetDashboardStats aggregates the dashboard in a handful of queries.
// COALESCE ensures we get 0 instead of NULL when a table is empty.
func GetDashboardStats(db *gorm.DB) (*DashboardStats, error) {
	var stats DashboardStats

	err := db.Model(&models.Client{}).
		Where("activo = ?", true).
		Count(&stats.ClientesActivos).Error
	if err != nil {
		return nil, err
	}

	err = db.Model(&models.Debt{}).
		Where("estado = ?", models.EstadoPendiente).
		Count(&stats.DeudasPendientes).Error
	if err != nil {
		return nil, err
	}

	err = db.Model(&models.Debt{}).
		Where("estado = ?", models.EstadoVencido).
		Count(&stats.DeudasVencidas).Error
	if err != nil {
		return nil, err
	}

	err = db.Model(&models.Debt{}).
		Where("estado <> ?", models.EstadoPagado).
		Select("moneda, COALESCE(SUM(monto_restante), 0) as total").
		Group("moneda").
		Scan(&stats.SaldoPorMoneda).Error
	if err != nil {
		return nil, err
	}

	now := time.Now()
	inicioMes := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	err = db.Model(&models.PaymentHistory{}).
		Where("fecha_pago >= ?", inicioMes).
		Select("COALESCE(SUM(monto_pago), 0)").
		Scan(&stats.CobradoDelMes).Error
	if err != nil {
		return nil, err
	}

	err = db.Model(&models.Product{}).
		Where("activo = ? AND stock_actual <= stock_minimo", true).
		Count(&stats.ProductosBajos).Error
	if err != nil {
		return nil, err
	}

	return &stats, nil
}
