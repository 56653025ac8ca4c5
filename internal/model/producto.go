package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Producto is a stock-keeping item.
// Cantidad is written only by the stock ledger; when UnidadMedida disallows
// decimals it always holds an integral value.
type Producto struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre         string          `gorm:"index;not null"`
	PrecioCosto    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PrecioVenta    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Cantidad       decimal.Decimal `gorm:"type:decimal(14,3);not null;default:0"`
	CategoriaID    *uuid.UUID      `gorm:"type:uuid;index"`
	MarcaID        *uuid.UUID      `gorm:"type:uuid;index"`
	TipoImpuestoID *uuid.UUID      `gorm:"type:uuid"`
	UnidadMedidaID *uuid.UUID      `gorm:"type:uuid;index"`
	Activo         bool            `gorm:"not null;default:true"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
	DeletedAt      gorm.DeletedAt `gorm:"index"`

	UnidadMedida *UnidadMedida `gorm:"foreignKey:UnidadMedidaID"`
}

func (Producto) TableName() string { return "productos" }
