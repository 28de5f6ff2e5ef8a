package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Debt lifecycle states. Estado is stored in Spanish to keep the
// production schema intact for existing data.
const (
	EstadoPendiente = "pendiente"
	EstadoVencido   = "vencido"
	EstadoPagado    = "pagado"
)

// Stock movement types
const (
	MovimientoEntrada = "entrada"
	MovimientoSalida  = "salida"
	MovimientoAjuste  = "ajuste"
)

// User - API operator ('admin' or 'staff')
type User struct {
	ID           string    `gorm:"type:uuid;primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:50" json:"username"`
	PasswordHash string    `json:"-"` // Never return this in JSON
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

func (User) TableName() string { return "usuarios" }

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// Client - the person who owes money (tabla "clientes")
type Client struct {
	ID            string    `gorm:"type:uuid;primaryKey" json:"id"`
	Nombre        string    `gorm:"column:nombre" json:"nombre"`
	Apellido      string    `gorm:"column:apellido" json:"apellido"`
	Email         *string   `gorm:"column:email" json:"email"`
	Telefono      *string   `gorm:"column:telefono" json:"telefono"`
	Direccion     *string   `gorm:"column:direccion" json:"direccion"`
	FechaRegistro time.Time `gorm:"column:fecha_registro" json:"fecha_registro"`
	Activo        bool      `gorm:"column:activo;default:true" json:"activo"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (Client) TableName() string { return "clientes" }

func (c *Client) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.FechaRegistro.IsZero() {
		c.FechaRegistro = time.Now()
	}
	return nil
}

// Debt - a tracked amount owed, one row per installment (tabla "deudas").
// Invariant: MontoRestante == max(0, MontoTotal - MontoAbonado) after every
// committed mutation, and Estado == "pagado" exactly when MontoRestante <= 0.
type Debt struct {
	ID               string     `gorm:"type:uuid;primaryKey" json:"id"`
	ClienteID        string     `gorm:"column:cliente_id;type:uuid;index" json:"cliente_id"`
	Cliente          *Client    `gorm:"foreignKey:ClienteID" json:"cliente,omitempty"`
	Concepto         string     `gorm:"column:concepto" json:"concepto"`
	MontoTotal       float64    `gorm:"column:monto_total" json:"monto_total"`
	MontoAbonado     float64    `gorm:"column:monto_abonado;default:0" json:"monto_abonado"`
	MontoRestante    float64    `gorm:"column:monto_restante;default:0" json:"monto_restante"`
	Moneda           string     `gorm:"column:moneda;default:ARS" json:"moneda"`
	FechaVencimiento time.Time  `gorm:"column:fecha_vencimiento" json:"fecha_vencimiento"`
	FechaCreacion    time.Time  `gorm:"column:fecha_creacion" json:"fecha_creacion"`
	Recargos         float64    `gorm:"column:recargos;default:0" json:"recargos"`
	UltimoRecargo    *time.Time `gorm:"column:ultimo_recargo" json:"ultimo_recargo"`
	Estado           string     `gorm:"column:estado;default:pendiente" json:"estado"`
	Notas            *string    `gorm:"column:notas" json:"notas"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func (Debt) TableName() string { return "deudas" }

func (d *Debt) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.FechaCreacion.IsZero() {
		d.FechaCreacion = time.Now()
	}
	return nil
}

// Payment - immutable once created (tabla "pagos")
type Payment struct {
	ID         string    `gorm:"type:uuid;primaryKey" json:"id"`
	DeudaID    string    `gorm:"column:deuda_id;type:uuid;index" json:"deuda_id"`
	Monto      float64   `gorm:"column:monto" json:"monto"`
	Moneda     string    `gorm:"column:moneda;default:ARS" json:"moneda"`
	FechaPago  time.Time `gorm:"column:fecha_pago" json:"fecha_pago"`
	MetodoPago *string   `gorm:"column:metodo_pago" json:"metodo_pago"`
	Notas      *string   `gorm:"column:notas" json:"notas"`
	CreatedAt  time.Time `json:"created_at"`
}

func (Payment) TableName() string { return "pagos" }

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.FechaPago.IsZero() {
		p.FechaPago = time.Now()
	}
	return nil
}

// PaymentHistory - denormalized reporting snapshot, pruned after 30 days
// (tabla "historial_pagos"). DeudaID is nullable so history survives the
// hard delete of its debt.
type PaymentHistory struct {
	ID            string    `gorm:"type:uuid;primaryKey" json:"id"`
	DeudaID       *string   `gorm:"column:deuda_id;type:uuid" json:"deuda_id"`
	ClienteNombre string    `gorm:"column:cliente_nombre" json:"cliente_nombre"`
	Concepto      string    `gorm:"column:concepto" json:"concepto"`
	MontoPago     float64   `gorm:"column:monto_pago" json:"monto_pago"`
	Moneda        string    `gorm:"column:moneda;default:ARS" json:"moneda"`
	FechaPago     time.Time `gorm:"column:fecha_pago" json:"fecha_pago"`
	MetodoPago    *string   `gorm:"column:metodo_pago" json:"metodo_pago"`
	Notas         *string   `gorm:"column:notas" json:"notas"`
	CreatedAt     time.Time `json:"created_at"`
}

func (PaymentHistory) TableName() string { return "historial_pagos" }

func (h *PaymentHistory) BeforeCreate(tx *gorm.DB) error {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	return nil
}

// Settings - process-wide singleton (tabla "configuracion"), seeded on boot
type Settings struct {
	ID                string    `gorm:"type:uuid;primaryKey" json:"id"`
	PorcentajeRecargo float64   `gorm:"column:porcentaje_recargo;default:10" json:"porcentaje_recargo"`
	DiasParaRecargo   int       `gorm:"column:dias_para_recargo;default:30" json:"dias_para_recargo"`
	MonedaDefault     string    `gorm:"column:moneda_default;default:ARS" json:"moneda_default"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func (Settings) TableName() string { return "configuracion" }

func (s *Settings) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// Category (tabla "categorias") - soft delete via Activa
type Category struct {
	ID          string    `gorm:"type:uuid;primaryKey" json:"id"`
	Nombre      string    `gorm:"column:nombre" json:"nombre"`
	Descripcion *string   `gorm:"column:descripcion" json:"descripcion"`
	Activa      bool      `gorm:"column:activa;default:true" json:"activa"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Category) TableName() string { return "categorias" }

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// Product (tabla "productos") - soft delete via Activo. Stock is only ever
// set through movements, never derived from sales.
type Product struct {
	ID          string    `gorm:"type:uuid;primaryKey" json:"id"`
	Nombre      string    `gorm:"column:nombre" json:"nombre"`
	Codigo      *string   `gorm:"column:codigo" json:"codigo"`
	Descripcion *string   `gorm:"column:descripcion" json:"descripcion"`
	Precio      float64   `gorm:"column:precio" json:"precio"`
	Moneda      string    `gorm:"column:moneda;default:ARS" json:"moneda"`
	StockActual int       `gorm:"column:stock_actual;default:0" json:"stock_actual"`
	StockMinimo int       `gorm:"column:stock_minimo;default:0" json:"stock_minimo"`
	CategoriaID *string   `gorm:"column:categoria_id;type:uuid" json:"categoria_id"`
	Categoria   *Category `gorm:"foreignKey:CategoriaID" json:"categoria,omitempty"`
	Activo      bool      `gorm:"column:activo;default:true" json:"activo"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Product) TableName() string { return "productos" }

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// StockMovement (tabla "movimientos_stock")
type StockMovement struct {
	ID              string    `gorm:"type:uuid;primaryKey" json:"id"`
	ProductoID      string    `gorm:"column:producto_id;type:uuid;index" json:"producto_id"`
	TipoMovimiento  string    `gorm:"column:tipo_movimiento" json:"tipo_movimiento"`
	Cantidad        int       `gorm:"column:cantidad" json:"cantidad"`
	Motivo          *string   `gorm:"column:motivo" json:"motivo"`
	FechaMovimiento time.Time `gorm:"column:fecha_movimiento" json:"fecha_movimiento"`
	CreatedAt       time.Time `json:"created_at"`
}

func (StockMovement) TableName() string { return "movimientos_stock" }

func (m *StockMovement) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.FechaMovimiento.IsZero() {
		m.FechaMovimiento = time.Now()
	}
	return nil
}

// IdempotencyKey - guards payment/surcharge mutations against double-submit.
// Inserted in the same transaction as the mutation it protects; a unique-key
// violation means the action already ran.
type IdempotencyKey struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	Key       string    `gorm:"uniqueIndex;size:100" json:"key"`
	Action    string    `gorm:"size:50" json:"action"`
	CreatedAt time.Time `json:"created_at"`
}

func (IdempotencyKey) TableName() string { return "idempotency_keys" }

func (k *IdempotencyKey) BeforeCreate(tx *gorm.DB) error {
	if k.ID == "" {
		k.ID = uuid.NewString()
	}
	return nil
}
