package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MovimientoStock records every change applied to Producto.Cantidad.
// Rows are append-only: reversals write their own inverse entries.
type MovimientoStock struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductoID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	Tipo             string          `gorm:"type:varchar(30);not null"` // see service.OperacionStock
	Cantidad         decimal.Decimal `gorm:"type:decimal(14,3);not null"` // positive = entrada, negative = salida
	CantidadAnterior decimal.Decimal `gorm:"type:decimal(14,3);not null"`
	CantidadNueva    decimal.Decimal `gorm:"type:decimal(14,3);not null"`
	Motivo           string
	ReferenciaID     *uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt        time.Time

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}

// TableName overrides GORM's default pluralization (movimiento_stocks → movimientos_stock).
func (MovimientoStock) TableName() string { return "movimientos_stock" }
