package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Venta is a sale header. Estado: "activa" | "cancelada" | "devuelta".
// Rows are never erased: deletion sets DeletedAt.
type Venta struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PersonaID uuid.UUID       `gorm:"type:uuid;index;not null"`
	CajaID    uuid.UUID       `gorm:"type:uuid;index;not null"`
	Fecha     time.Time       `gorm:"not null"`
	Numero    string          `gorm:"type:varchar(30);uniqueIndex;not null"`
	Estado    string          `gorm:"type:varchar(20);not null;default:'activa'"`
	Total     decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`

	Detalles []VentaDetalle `gorm:"foreignKey:VentaID"`
}

func (Venta) TableName() string { return "ventas" }

// VentaDetalle is one sold line; its lifecycle is tied to the Venta header.
type VentaDetalle struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	VentaID        uuid.UUID       `gorm:"type:uuid;index;not null"`
	ProductoID     uuid.UUID       `gorm:"type:uuid;index;not null"`
	PrecioUnitario decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Cantidad       decimal.Decimal `gorm:"type:decimal(14,3);not null"`
	CreatedAt      time.Time
	DeletedAt      gorm.DeletedAt `gorm:"index"`

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}

func (VentaDetalle) TableName() string { return "venta_detalles" }
