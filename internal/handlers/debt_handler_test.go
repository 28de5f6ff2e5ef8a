package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Kevinnyanez/IosSpace-Gesstor-clientes/internal/database"
	"github.com/Kevinnyanez/IosSpace-Gesstor-clientes/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupAPI points the global DB at an in-memory sqlite and builds an
// unauthenticated router with the same routes the server mounts.
func setupAPI(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Client{},
		&models.Debt{},
		&models.Payment{},
		&models.PaymentHistory{},
		&models.Settings{},
		&models.Category{},
		&models.Product{},
		&models.StockMovement{},
		&models.IdempotencyKey{},
	))
	require.NoError(t, db.Create(&models.Settings{
		PorcentajeRecargo: 10,
		DiasParaRecargo:   30,
		MonedaDefault:     "ARS",
	}).Error)
	database.DB = db

	r := gin.New()
	r.GET("/clients", GetClients)
	r.POST("/clients", AddClient)
	r.DELETE("/clients/:id", DeleteClient)
	r.GET("/debts", GetDebts)
	r.POST("/debts", AddDebt)
	r.DELETE("/debts/:id", DeleteDebt)
	r.GET("/debts/:id/payments", GetDebtPayments)
	r.POST("/debts/:id/payments", RegisterPayment)
	r.POST("/debts/settle", SettleDebtGroup)
	r.POST("/debts/:id/surcharge", ApplySurcharge)
	r.POST("/debts/surcharges/apply", ApplySurcharges)
	r.GET("/payment-history", GetPaymentHistory)
	return r
}

func seedAPIClient(t *testing.T) models.Client {
	t.Helper()
	cliente := models.Client{Nombre: "Ana", Apellido: "Gómez", Activo: true}
	require.NoError(t, database.DB.Create(&cliente).Error)
	return cliente
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAddDebt_SinglePending(t *testing.T) {
	r := setupAPI(t)
	cliente := seedAPIClient(t)

	w := doJSON(t, r, http.MethodPost, "/debts", gin.H{
		"cliente_id":        cliente.ID,
		"concepto":          "Heladera",
		"monto_total":       1000,
		"cuotas":            1,
		"fecha_vencimiento": "2024-07-15",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var deudas []models.Debt
	require.NoError(t, database.DB.Find(&deudas).Error)
	require.Len(t, deudas, 1)
	assert.Equal(t, models.EstadoPendiente, deudas[0].Estado)
	assert.Equal(t, 1000.0, deudas[0].MontoRestante)
	assert.Equal(t, "ARS", deudas[0].Moneda) // default currency from settings
}

func TestAddDebt_ThreeInstallments(t *testing.T) {
	r := setupAPI(t)
	cliente := seedAPIClient(t)

	w := doJSON(t, r, http.MethodPost, "/debts", gin.H{
		"cliente_id":        cliente.ID,
		"concepto":          "Cocina",
		"monto_total":       900,
		"cuotas":            3,
		"fecha_vencimiento": "2024-01-01",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var deudas []models.Debt
	require.NoError(t, database.DB.Order("fecha_vencimiento").Find(&deudas).Error)
	require.Len(t, deudas, 3)
	for _, d := range deudas {
		assert.Equal(t, 300.0, d.MontoTotal)
		assert.Equal(t, models.EstadoPendiente, d.Estado)
	}
	assert.Equal(t, time.January, deudas[0].FechaVencimiento.Month())
	assert.Equal(t, time.February, deudas[1].FechaVencimiento.Month())
	assert.Equal(t, time.March, deudas[2].FechaVencimiento.Month())
}

func TestAddDebt_InitialPaymentExceedsTotal(t *testing.T) {
	r := setupAPI(t)
	cliente := seedAPIClient(t)

	w := doJSON(t, r, http.MethodPost, "/debts", gin.H{
		"cliente_id":        cliente.ID,
		"concepto":          "TV",
		"monto_total":       100,
		"monto_abonado":     200,
		"cuotas":            1,
		"fecha_vencimiento": "2024-07-15",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var count int64
	require.NoError(t, database.DB.Model(&models.Debt{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestRegisterPayment_SettlesDebtEndToEnd(t *testing.T) {
	r := setupAPI(t)
	cliente := seedAPIClient(t)

	deuda := models.Debt{
		ClienteID:        cliente.ID,
		Concepto:         "Ventilador",
		MontoTotal:       500,
		MontoRestante:    500,
		Estado:           models.EstadoPendiente,
		FechaVencimiento: time.Now(),
		Moneda:           "ARS",
	}
	require.NoError(t, database.DB.Create(&deuda).Error)

	w := doJSON(t, r, http.MethodPost, fmt.Sprintf("/debts/%s/payments", deuda.ID), gin.H{
		"monto": 500,
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var updated models.Debt
	require.NoError(t, database.DB.First(&updated, "id = ?", deuda.ID).Error)
	assert.Equal(t, models.EstadoPagado, updated.Estado)
	assert.Equal(t, 0.0, updated.MontoRestante)

	// Snapshot lands in the reporting history
	var historial []models.PaymentHistory
	require.NoError(t, database.DB.Find(&historial).Error)
	require.Len(t, historial, 1)
	assert.Equal(t, "Ana Gómez", historial[0].ClienteNombre)
}

func TestRegisterPayment_IdempotencyKeyBlocksReplay(t *testing.T) {
	r := setupAPI(t)
	cliente := seedAPIClient(t)

	deuda := models.Debt{
		ClienteID:        cliente.ID,
		Concepto:         "Microondas",
		MontoTotal:       1000,
		MontoRestante:    1000,
		Estado:           models.EstadoPendiente,
		FechaVencimiento: time.Now(),
		Moneda:           "ARS",
	}
	require.NoError(t, database.DB.Create(&deuda).Error)

	headers := map[string]string{"Idempotency-Key": "abc-123"}
	path := fmt.Sprintf("/debts/%s/payments", deuda.ID)

	w := doJSON(t, r, http.MethodPost, path, gin.H{"monto": 100}, headers)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, r, http.MethodPost, path, gin.H{"monto": 100}, headers)
	assert.Equal(t, http.StatusConflict, w.Code)

	var pagos int64
	require.NoError(t, database.DB.Model(&models.Payment{}).Count(&pagos).Error)
	assert.EqualValues(t, 1, pagos)
}

func TestApplySurcharges_SweepEndToEnd(t *testing.T) {
	r := setupAPI(t)
	cliente := seedAPIClient(t)

	deuda := models.Debt{
		ClienteID:        cliente.ID,
		Concepto:         "Vencida",
		MontoTotal:       1000,
		MontoRestante:    1000,
		Estado:           models.EstadoPendiente,
		FechaVencimiento: time.Now().AddDate(0, 0, -5),
		Moneda:           "ARS",
	}
	require.NoError(t, database.DB.Create(&deuda).Error)

	w := doJSON(t, r, http.MethodPost, "/debts/surcharges/apply", nil, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		DeudasActualizadas int `json:"deudas_actualizadas"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.DeudasActualizadas)

	var updated models.Debt
	require.NoError(t, database.DB.First(&updated, "id = ?", deuda.ID).Error)
	assert.Equal(t, 100.0, updated.Recargos)
	assert.Equal(t, 1100.0, updated.MontoTotal)
	assert.Equal(t, 1100.0, updated.MontoRestante)
	assert.Equal(t, models.EstadoVencido, updated.Estado)
}

func TestSettleDebtGroup_EndToEnd(t *testing.T) {
	r := setupAPI(t)
	cliente := seedAPIClient(t)

	w := doJSON(t, r, http.MethodPost, "/debts", gin.H{
		"cliente_id":        cliente.ID,
		"concepto":          "Lavarropas",
		"monto_total":       900,
		"cuotas":            3,
		"fecha_vencimiento": "2024-01-01",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, r, http.MethodPost, "/debts/settle", gin.H{
		"cliente_id":    cliente.ID,
		"concepto_base": "Lavarropas",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var abiertas int64
	require.NoError(t, database.DB.Model(&models.Debt{}).
		Where("estado <> ?", models.EstadoPagado).Count(&abiertas).Error)
	assert.EqualValues(t, 0, abiertas)
}

func TestDeleteDebt_RemovesPaymentsEndToEnd(t *testing.T) {
	r := setupAPI(t)
	cliente := seedAPIClient(t)

	deuda := models.Debt{
		ClienteID:        cliente.ID,
		Concepto:         "Estufa",
		MontoTotal:       400,
		MontoRestante:    400,
		Estado:           models.EstadoPendiente,
		FechaVencimiento: time.Now(),
		Moneda:           "ARS",
	}
	require.NoError(t, database.DB.Create(&deuda).Error)

	w := doJSON(t, r, http.MethodPost, fmt.Sprintf("/debts/%s/payments", deuda.ID), gin.H{"monto": 100}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, r, http.MethodDelete, "/debts/"+deuda.ID, nil, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var deudas, pagos int64
	require.NoError(t, database.DB.Model(&models.Debt{}).Count(&deudas).Error)
	require.NoError(t, database.DB.Model(&models.Payment{}).Count(&pagos).Error)
	assert.EqualValues(t, 0, deudas)
	assert.EqualValues(t, 0, pagos)
}
