package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Caja is a physical cash drawer. Its balance is never stored: it is the
// aggregate of its live MovimientoCaja rows.
// Estado: "abierta" | "cerrada"
type Caja struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre    string     `gorm:"not null"`
	PersonaID *uuid.UUID `gorm:"type:uuid;index"` // assigned cashier
	Estado    string     `gorm:"type:varchar(20);not null;default:'abierta'"`
	Tipo      string     `gorm:"type:varchar(20);not null;default:'principal'"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`

	Movimientos []MovimientoCaja `gorm:"foreignKey:CajaID"`
}

func (Caja) TableName() string { return "cajas" }

// Direccion of a till movement. Sales are inflows, purchases outflows.
type Direccion string

const (
	DireccionIngreso Direccion = "ingreso"
	DireccionEgreso  Direccion = "egreso"
)

// MovimientoCaja is one signed cash movement in a till.
// Monto is positive for ingreso and negative for egreso so that SUM(monto)
// is the till balance. ReferenciaID links to the Venta or Compra it settles;
// manual movements leave it nil.
type MovimientoCaja struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CajaID       uuid.UUID       `gorm:"type:uuid;index;not null"`
	ReferenciaID *uuid.UUID      `gorm:"type:uuid;index"`
	Descripcion  string          `gorm:"not null"`
	Monto        decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Direccion    Direccion       `gorm:"type:varchar(10);not null"`
	Fecha        time.Time       `gorm:"not null"`
	CreatedAt    time.Time
	DeletedAt    gorm.DeletedAt `gorm:"index"`

	Comprobantes []ComprobantePago `gorm:"foreignKey:MovimientoCajaID"`
}

func (MovimientoCaja) TableName() string { return "movimientos_caja" }

// ComprobantePago is the tender record backing a till movement (cash, card, ...).
type ComprobantePago struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	MovimientoCajaID uuid.UUID `gorm:"type:uuid;index;not null"`
	TipoPagoID       uuid.UUID `gorm:"type:uuid;not null"`
	Descriptor       *string
	CreatedAt        time.Time
	DeletedAt        gorm.DeletedAt `gorm:"index"`
}

func (ComprobantePago) TableName() string { return "comprobantes_pago" }
